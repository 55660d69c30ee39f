package progress

import (
	"fmt"
	"log"
	"sync"
	"time"

	m "stockfeed/models"
)

// Tracker owns the lifecycle of batch fetch tasks: initialize, advance,
// complete, fail, query, expire. All mutations are serialized behind one
// mutex and persisted through the store before the call returns; reads
// hand out independent copies.
type Tracker struct {
	mu    sync.Mutex
	tasks map[string]*m.TaskState
	store TaskStore
}

// NewTracker loads any previously persisted task table from the store.
// A load failure starts the tracker empty rather than refusing to start.
func NewTracker(store TaskStore) *Tracker {
	tasks, err := store.Load()
	if err != nil {
		log.Printf("error loading task table, starting empty: %v", err)
		tasks = map[string]*m.TaskState{}
	}

	return &Tracker{
		tasks: tasks,
		store: store,
	}
}

// Initialize registers a new running task with total items to process.
// Callers must guarantee id uniqueness; an existing id is overwritten.
func (tr *Tracker) Initialize(taskId string, totalItems int) {
	now := time.Now().UTC()

	tr.mu.Lock()
	defer tr.mu.Unlock()

	tr.tasks[taskId] = &m.TaskState{
		Status:      m.TaskStatusRunning,
		Progress:    0,
		Total:       totalItems,
		CurrentItem: 0,
		Message:     "task started",
		CreatedAt:   now,
		UpdatedAt:   now,
		Details:     []m.TaskDetail{},
	}

	tr.persist()
}

// UpdateProgress advances a task to currentItem. The percentage is
// floor(current/total*100), not clamped; the caller owns current <= total.
// Returns false without mutating anything when the id is unknown.
func (tr *Tracker) UpdateProgress(taskId string, currentItem int, message string) bool {
	now := time.Now().UTC()

	tr.mu.Lock()
	defer tr.mu.Unlock()

	task, ok := tr.tasks[taskId]
	if !ok {
		return false
	}

	task.CurrentItem = currentItem
	if task.Total > 0 {
		task.Progress = currentItem * 100 / task.Total
	}
	if message == "" {
		message = fmt.Sprintf("%d/%d done", currentItem, task.Total)
	}
	task.Message = message
	task.UpdatedAt = now

	task.Details = append(task.Details, m.TaskDetail{
		Timestamp: now,
		Message:   message,
		Item:      currentItem,
	})
	if len(task.Details) > m.DetailRingSize {
		task.Details = task.Details[len(task.Details)-m.DetailRingSize:]
	}

	tr.persist()
	return true
}

// Complete moves a task to its terminal completed state, forcing progress
// to 100 regardless of the last update. Returns false when the id is
// unknown or the task is already terminal.
func (tr *Tracker) Complete(taskId string) bool {
	now := time.Now().UTC()

	tr.mu.Lock()
	defer tr.mu.Unlock()

	task, ok := tr.tasks[taskId]
	if !ok || task.Terminal() {
		return false
	}

	task.Status = m.TaskStatusCompleted
	task.Progress = 100
	task.Message = "task completed"
	task.CompletedAt = &now
	task.UpdatedAt = now

	tr.persist()
	return true
}

// Fail moves a task to its terminal error state. CompletedAt stays unset;
// the error detail is the only internal information exposed to pollers.
// Returns false when the id is unknown or the task is already terminal.
func (tr *Tracker) Fail(taskId string, errorMessage string) bool {
	now := time.Now().UTC()

	tr.mu.Lock()
	defer tr.mu.Unlock()

	task, ok := tr.tasks[taskId]
	if !ok || task.Terminal() {
		return false
	}

	task.Status = m.TaskStatusError
	task.Message = "an error occurred"
	task.Error = &errorMessage
	task.UpdatedAt = now

	tr.persist()
	return true
}

// Status returns an independent copy of a task's state, or nil when the id
// is unknown.
func (tr *Tracker) Status(taskId string) *m.TaskState {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	task, ok := tr.tasks[taskId]
	if !ok {
		return nil
	}

	return task.Copy()
}

// AllTasks returns a point-in-time snapshot of every tracked task.
func (tr *Tracker) AllTasks() map[string]*m.TaskState {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	snapshot := make(map[string]*m.TaskState, len(tr.tasks))
	for id, task := range tr.tasks {
		snapshot[id] = task.Copy()
	}

	return snapshot
}

// CleanupOldTasks drops every task created before now minus maxAgeDays,
// regardless of status, and returns how many were removed.
func (tr *Tracker) CleanupOldTasks(maxAgeDays int) int {
	cutoff := time.Now().UTC().AddDate(0, 0, -maxAgeDays)

	tr.mu.Lock()
	defer tr.mu.Unlock()

	removed := 0
	for id, task := range tr.tasks {
		if task.CreatedAt.Before(cutoff) {
			delete(tr.tasks, id)
			removed++
		}
	}

	if removed > 0 {
		tr.persist()
	}

	return removed
}

// persist writes the full task table through the store. Best-effort: a
// store failure is logged, never surfaced to the caller. Must be called
// with the mutex held.
func (tr *Tracker) persist() {
	if err := tr.store.Save(tr.tasks); err != nil {
		log.Printf("error persisting task table: %v", err)
	}
}
