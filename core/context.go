package core

import (
	"context"

	"golang.org/x/sync/semaphore"

	"stockfeed/config"
	m "stockfeed/models"
	"stockfeed/progress"
)

// QuoteFetcher retrieves one symbol from the upstream provider. An error
// means no data for that symbol; it never aborts a batch on its own.
type QuoteFetcher interface {
	FetchStock(symbol string) (*m.StockRecord, error)
}

// StockStore is the slice of the repository the service layer uses.
// *repos.Postgres satisfies it; tests substitute fakes.
type StockStore interface {
	SaveStock(ctx context.Context, rec *m.StockRecord) error
	GetStockBySymbol(ctx context.Context, symbol string) (*m.StockRecord, error)
	ListStocksPaginated(ctx context.Context, page, perPage int) (*m.StockPage, error)
	DeleteStock(ctx context.Context, symbol string) (bool, error)
	CountStocks(ctx context.Context) (int64, error)
	StartFetchLog(ctx context.Context, taskId, symbol string) (int32, error)
	CompleteFetchLog(ctx context.Context, id int32, message string, stockDataId int32) error
	ErrorFetchLog(ctx context.Context, id int32, message, errorDetail string) error
	GetFetchLogsByTask(ctx context.Context, taskId string) ([]*m.FetchLogEntry, error)
}

type ServiceContext struct {
	Context context.Context
	Config  *config.Config
	Store   StockStore
	Fetcher QuoteFetcher
	Tracker *progress.Tracker

	batchSem *semaphore.Weighted
}

func GetServiceContext(ctx context.Context, cfg *config.Config, store StockStore, fetcher QuoteFetcher, tracker *progress.Tracker) *ServiceContext {
	return &ServiceContext{
		Context:  ctx,
		Config:   cfg,
		Store:    store,
		Fetcher:  fetcher,
		Tracker:  tracker,
		batchSem: semaphore.NewWeighted(cfg.MaxConcurrentBatches),
	}
}
