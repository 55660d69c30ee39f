package repos

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5"

	m "stockfeed/models"
	q "stockfeed/queries"
)

// SaveStock upserts a record by symbol: if the symbol exists every mutable
// field is replaced and updated_at refreshed, otherwise a new row is
// inserted. The record's Id is populated either way.
func (pg *Postgres) SaveStock(ctx context.Context, rec *m.StockRecord) error {
	args := pgx.NamedArgs{
		"symbol":          rec.Symbol,
		"company_name":    rec.CompanyName,
		"current_price":   rec.CurrentPrice,
		"currency":        rec.Currency,
		"market_state":    rec.MarketState,
		"timezone":        rec.Timezone,
		"exchange":        rec.Exchange,
		"historical_data": rec.Historical,
	}

	err := pg.db.QueryRow(ctx, q.Get(q.QueryHelper.Update.StockBySymbol), args).Scan(&rec.Id)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("error updating stock %s: %w", rec.Symbol, err)
	}

	if err := pg.db.QueryRow(ctx, q.Get(q.QueryHelper.Insert.Stock), args).Scan(&rec.Id); err != nil {
		return fmt.Errorf("error inserting stock %s: %w", rec.Symbol, err)
	}

	return nil
}

// GetStockBySymbol returns the record for symbol, or nil when absent.
func (pg *Postgres) GetStockBySymbol(ctx context.Context, symbol string) (*m.StockRecord, error) {
	args := pgx.NamedArgs{
		"symbol": symbol,
	}

	res, err := QuerySingle[m.StockRecord](ctx, pg, q.Get(q.QueryHelper.Select.StockBySymbol), args)
	if err != nil {
		return nil, fmt.Errorf("unable to query stock by symbol (%s): %w", symbol, err)
	}

	return res, nil
}

// ListStocksPaginated returns one page of records ordered most recently
// updated first. Out-of-range pages come back with an empty item list but
// an accurate total and page count.
func (pg *Postgres) ListStocksPaginated(ctx context.Context, page, perPage int) (*m.StockPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 1
	}

	total, err := QueryValue[int64](ctx, pg, q.Get(q.QueryHelper.Select.StockCount), pgx.NamedArgs{})
	if err != nil {
		return nil, fmt.Errorf("unable to count stocks: %w", err)
	}

	args := pgx.NamedArgs{
		"limit":  perPage,
		"offset": (page - 1) * perPage,
	}

	items, err := Query[m.StockListItem](ctx, pg, q.Get(q.QueryHelper.Select.StocksPaginated), args)
	if err != nil {
		return nil, fmt.Errorf("unable to query stock page %d: %w", page, err)
	}

	if items == nil {
		items = []*m.StockListItem{}
	}

	return &m.StockPage{
		Items: items,
		Pagination: m.Pagination{
			Page:    page,
			PerPage: perPage,
			Total:   total,
			Pages:   int(math.Ceil(float64(total) / float64(perPage))),
		},
	}, nil
}

// DeleteStock removes the record for symbol. The bool reports whether a
// row existed.
func (pg *Postgres) DeleteStock(ctx context.Context, symbol string) (bool, error) {
	args := pgx.NamedArgs{
		"symbol": symbol,
	}

	tag, err := pg.db.Exec(ctx, q.Get(q.QueryHelper.Delete.StockBySymbol), args)
	if err != nil {
		return false, fmt.Errorf("error deleting stock %s: %w", symbol, err)
	}

	return tag.RowsAffected() > 0, nil
}

// CountStocks returns the number of stored records.
func (pg *Postgres) CountStocks(ctx context.Context) (int64, error) {
	return QueryValue[int64](ctx, pg, q.Get(q.QueryHelper.Select.StockCount), pgx.NamedArgs{})
}
