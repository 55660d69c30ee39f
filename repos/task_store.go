package repos

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	m "stockfeed/models"
	q "stockfeed/queries"
)

// TaskStateStore persists the tracker's task table in Postgres. Save
// replaces the whole table in one transaction so concurrent readers never
// observe a partial write.
type TaskStateStore struct {
	pg  *Postgres
	ctx context.Context
}

func NewTaskStateStore(ctx context.Context, pg *Postgres) *TaskStateStore {
	return &TaskStateStore{pg: pg, ctx: ctx}
}

type taskStateRow struct {
	TaskId string `db:"task_id"`
	State  []byte `db:"state"`
}

func (s *TaskStateStore) Load() (map[string]*m.TaskState, error) {
	rows, err := Query[taskStateRow](s.ctx, s.pg, q.Get(q.QueryHelper.Select.AllTaskStates), pgx.NamedArgs{})
	if err != nil {
		return nil, fmt.Errorf("unable to load task states: %w", err)
	}

	tasks := make(map[string]*m.TaskState, len(rows))
	for _, row := range rows {
		var state m.TaskState
		if err := json.Unmarshal(row.State, &state); err != nil {
			return nil, fmt.Errorf("error unmarshaling task state %s: %w", row.TaskId, err)
		}
		tasks[row.TaskId] = &state
	}

	return tasks, nil
}

func (s *TaskStateStore) Save(tasks map[string]*m.TaskState) error {
	tx, err := s.pg.GetTransaction(s.ctx)
	if err != nil {
		return fmt.Errorf("error beginning task state transaction: %w", err)
	}
	defer tx.Rollback(s.ctx) // this will kick off if we return before committing

	if _, err := tx.Exec(s.ctx, q.Get(q.QueryHelper.Delete.AllTaskStates)); err != nil {
		return fmt.Errorf("error clearing task states: %w", err)
	}

	insert := q.Get(q.QueryHelper.Insert.TaskState)
	for taskId, state := range tasks {
		data, err := json.Marshal(state)
		if err != nil {
			return fmt.Errorf("error marshaling task state %s: %w", taskId, err)
		}

		args := pgx.NamedArgs{
			"task_id":    taskId,
			"state":      data,
			"created_at": state.CreatedAt,
		}

		if _, err := tx.Exec(s.ctx, insert, args); err != nil {
			return fmt.Errorf("error inserting task state %s: %w", taskId, err)
		}
	}

	if err := tx.Commit(s.ctx); err != nil {
		return fmt.Errorf("error committing task states: %w", err)
	}

	return nil
}
