package models

import "time"

// Task statuses. Transitions are one-directional: running moves to
// completed or error, terminal states never change again.
const (
	TaskStatusRunning   = "running"
	TaskStatusCompleted = "completed"
	TaskStatusError     = "error"
)

// DetailRingSize caps the per-task detail history; older entries are
// dropped in FIFO order.
const DetailRingSize = 20

// TaskDetail is one progress event in a task's detail ring.
type TaskDetail struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Item      int       `json:"item"`
}

// TaskState is the tracked state of one batch fetch operation. The task id
// is the map key in the tracker and the persisted table, not a field here.
type TaskState struct {
	Status      string       `json:"status"`
	Progress    int          `json:"progress"`
	Total       int          `json:"total"`
	CurrentItem int          `json:"current_item"`
	Message     string       `json:"message"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	CompletedAt *time.Time   `json:"completed_at"`
	Error       *string      `json:"error"`
	Details     []TaskDetail `json:"details"`
}

// Terminal reports whether the task has reached a final status.
func (t *TaskState) Terminal() bool {
	return t.Status == TaskStatusCompleted || t.Status == TaskStatusError
}

// Copy returns an independent copy; mutating it never affects tracker state.
func (t *TaskState) Copy() *TaskState {
	c := *t
	if t.CompletedAt != nil {
		ts := *t.CompletedAt
		c.CompletedAt = &ts
	}
	if t.Error != nil {
		e := *t.Error
		c.Error = &e
	}
	c.Details = make([]TaskDetail, len(t.Details))
	copy(c.Details, t.Details)
	return &c
}
