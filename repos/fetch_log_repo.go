package repos

import (
	"context"
	"fmt"
	"time"

	"github.com/guregu/null/v6"
	"github.com/jackc/pgx/v5"

	m "stockfeed/models"
	q "stockfeed/queries"
)

// StartFetchLog opens an audit entry for one fetch attempt (status pending)
// and returns its id.
func (pg *Postgres) StartFetchLog(ctx context.Context, taskId, symbol string) (int32, error) {
	args := pgx.NamedArgs{
		"task_id":    taskId,
		"symbol":     symbol,
		"status":     m.FetchStatusPending,
		"message":    nil,
		"started_at": time.Now().UTC(),
	}

	var id int32
	if err := pg.db.QueryRow(ctx, q.Get(q.QueryHelper.Insert.FetchLog), args).Scan(&id); err != nil {
		return 0, fmt.Errorf("error inserting fetch log for %s: %w", symbol, err)
	}

	return id, nil
}

// CompleteFetchLog closes an audit entry as success, linked to the stored
// record.
func (pg *Postgres) CompleteFetchLog(ctx context.Context, id int32, message string, stockDataId int32) error {
	return pg.finishFetchLog(ctx, id, m.FetchStatusSuccess, message, null.String{}, null.IntFrom(int64(stockDataId)))
}

// ErrorFetchLog closes an audit entry as failed.
func (pg *Postgres) ErrorFetchLog(ctx context.Context, id int32, message, errorDetail string) error {
	return pg.finishFetchLog(ctx, id, m.FetchStatusError, message, null.StringFrom(errorDetail), null.Int{})
}

func (pg *Postgres) finishFetchLog(ctx context.Context, id int32, status, message string, errorDetail null.String, stockDataId null.Int) error {
	args := pgx.NamedArgs{
		"id":            id,
		"status":        status,
		"message":       message,
		"error_detail":  errorDetail,
		"completed_at":  time.Now().UTC(),
		"stock_data_id": stockDataId,
	}

	if _, err := pg.db.Exec(ctx, q.Get(q.QueryHelper.Update.FetchLogResult), args); err != nil {
		return fmt.Errorf("error closing fetch log %d: %w", id, err)
	}

	return nil
}

// GetFetchLogsByTask returns the audit entries of one batch in start order.
func (pg *Postgres) GetFetchLogsByTask(ctx context.Context, taskId string) ([]*m.FetchLogEntry, error) {
	args := pgx.NamedArgs{
		"task_id": taskId,
	}

	res, err := Query[m.FetchLogEntry](ctx, pg, q.Get(q.QueryHelper.Select.FetchLogsByTask), args)
	if err != nil {
		return nil, fmt.Errorf("unable to query fetch logs for task %s: %w", taskId, err)
	}

	return res, nil
}
