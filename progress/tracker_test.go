package progress

import (
	"fmt"
	"testing"
	"time"

	ex "stockfeed/extensions"
	m "stockfeed/models"
)

// memStore is an in-memory TaskStore for tracker tests. It counts saves so
// tests can assert the persist-on-every-mutation discipline.
type memStore struct {
	saves   int
	preload map[string]*m.TaskState
	fail    bool
}

func (s *memStore) Load() (map[string]*m.TaskState, error) {
	if s.preload == nil {
		return map[string]*m.TaskState{}, nil
	}
	return s.preload, nil
}

func (s *memStore) Save(tasks map[string]*m.TaskState) error {
	s.saves++
	if s.fail {
		return fmt.Errorf("store unavailable")
	}
	return nil
}

func newTestTracker() (*Tracker, *memStore) {
	store := &memStore{}
	return NewTracker(store), store
}

func Test_Tracker_InitializeSetsRunningZeroProgress(t *testing.T) {
	tr, store := newTestTracker()
	tr.Initialize("t1", 3)

	status := tr.Status("t1")
	ex.AssertNillability(t, "status", false, status)
	ex.AssertAreEqual(t, "status", m.TaskStatusRunning, status.Status)
	ex.AssertAreEqual(t, "progress", 0, status.Progress)
	ex.AssertAreEqual(t, "total", 3, status.Total)
	ex.AssertAreEqual(t, "current", 0, status.CurrentItem)
	ex.AssertAreEqual(t, "message", "task started", status.Message)
	ex.AssertAreEqual(t, "details", 0, len(status.Details))
	ex.AssertNillability(t, "completed_at", true, status.CompletedAt)
	ex.AssertNillability(t, "error", true, status.Error)
	ex.AssertAreEqual(t, "saves", 1, store.saves)
}

func Test_Tracker_UpdateProgressFloorsPercentage(t *testing.T) {
	tr, _ := newTestTracker()
	tr.Initialize("t1", 3)

	if !tr.UpdateProgress("t1", 1, "") {
		t.Fatal("update on known task returned false")
	}

	status := tr.Status("t1")
	ex.AssertAreEqual(t, "progress", 33, status.Progress)
	ex.AssertAreEqual(t, "message", "1/3 done", status.Message)
	ex.AssertAreEqual(t, "details", 1, len(status.Details))
	ex.AssertAreEqual(t, "detail item", 1, status.Details[0].Item)

	tr.UpdateProgress("t1", 3, "")
	status = tr.Status("t1")
	ex.AssertAreEqual(t, "progress", 100, status.Progress)
}

func Test_Tracker_CompleteForcesFullProgress(t *testing.T) {
	tr, _ := newTestTracker()
	tr.Initialize("t1", 3)
	tr.UpdateProgress("t1", 1, "")

	if !tr.Complete("t1") {
		t.Fatal("complete on running task returned false")
	}

	status := tr.Status("t1")
	ex.AssertAreEqual(t, "status", m.TaskStatusCompleted, status.Status)
	ex.AssertAreEqual(t, "progress", 100, status.Progress)
	ex.AssertAreEqual(t, "message", "task completed", status.Message)
	ex.AssertNillability(t, "completed_at", false, status.CompletedAt)
}

func Test_Tracker_FailSetsErrorWithoutCompletedAt(t *testing.T) {
	tr, _ := newTestTracker()
	tr.Initialize("t2", 5)

	if !tr.Fail("t2", "network down") {
		t.Fatal("fail on running task returned false")
	}

	status := tr.Status("t2")
	ex.AssertAreEqual(t, "status", m.TaskStatusError, status.Status)
	ex.AssertAreEqual(t, "message", "an error occurred", status.Message)
	ex.AssertNillability(t, "error", false, status.Error)
	ex.AssertAreEqual(t, "error detail", "network down", *status.Error)
	ex.AssertNillability(t, "completed_at", true, status.CompletedAt)
}

func Test_Tracker_TerminalStatesAreOneWay(t *testing.T) {
	tr, _ := newTestTracker()
	tr.Initialize("t1", 1)
	tr.Complete("t1")

	if tr.Complete("t1") {
		t.Fatal("complete on completed task should return false")
	}
	if tr.Fail("t1", "late failure") {
		t.Fatal("fail on completed task should return false")
	}

	status := tr.Status("t1")
	ex.AssertAreEqual(t, "status", m.TaskStatusCompleted, status.Status)
	ex.AssertNillability(t, "error", true, status.Error)
}

func Test_Tracker_DetailRingCapsAtTwenty(t *testing.T) {
	tr, _ := newTestTracker()
	tr.Initialize("t1", 30)

	for i := 1; i <= 25; i++ {
		tr.UpdateProgress("t1", i, "")
	}

	status := tr.Status("t1")
	ex.AssertAreEqual(t, "detail count", m.DetailRingSize, len(status.Details))

	// oldest entries evicted FIFO, remaining are the most recent in order
	ex.AssertAreEqual(t, "oldest kept item", 6, status.Details[0].Item)
	ex.AssertAreEqual(t, "newest item", 25, status.Details[len(status.Details)-1].Item)
	for i := 1; i < len(status.Details); i++ {
		if status.Details[i].Item != status.Details[i-1].Item+1 {
			t.Fatalf("details out of order at %d: %+v", i, status.Details)
		}
	}
}

func Test_Tracker_UnknownTaskIds(t *testing.T) {
	tr, store := newTestTracker()
	saves := store.saves

	ex.AssertNillability(t, "status", true, tr.Status("nope"))
	if tr.UpdateProgress("nope", 1, "") {
		t.Fatal("update on unknown task returned true")
	}
	if tr.Complete("nope") {
		t.Fatal("complete on unknown task returned true")
	}
	if tr.Fail("nope", "boom") {
		t.Fatal("fail on unknown task returned true")
	}
	ex.AssertAreEqual(t, "no persistence on no-ops", saves, store.saves)
}

func Test_Tracker_StatusReturnsIndependentCopy(t *testing.T) {
	tr, _ := newTestTracker()
	tr.Initialize("t1", 2)
	tr.UpdateProgress("t1", 1, "first")

	status := tr.Status("t1")
	status.Message = "mutated"
	status.Details[0].Message = "mutated"
	status.Details = append(status.Details, m.TaskDetail{Message: "extra"})

	fresh := tr.Status("t1")
	ex.AssertAreEqual(t, "message", "first", fresh.Message)
	ex.AssertAreEqual(t, "detail message", "first", fresh.Details[0].Message)
	ex.AssertAreEqual(t, "detail count", 1, len(fresh.Details))
}

func Test_Tracker_AllTasksSnapshot(t *testing.T) {
	tr, _ := newTestTracker()
	tr.Initialize("t1", 1)
	tr.Initialize("t2", 2)

	all := tr.AllTasks()
	ex.AssertAreEqual(t, "task count", 2, len(all))

	all["t1"].Message = "mutated"
	ex.AssertAreEqual(t, "message", "task started", tr.Status("t1").Message)
}

func Test_Tracker_CleanupRemovesOnlyExpiredTasks(t *testing.T) {
	now := time.Now().UTC()
	store := &memStore{preload: map[string]*m.TaskState{
		"old-running":   {Status: m.TaskStatusRunning, CreatedAt: now.AddDate(0, 0, -10)},
		"old-completed": {Status: m.TaskStatusCompleted, CreatedAt: now.AddDate(0, 0, -8)},
		"fresh":         {Status: m.TaskStatusRunning, CreatedAt: now.AddDate(0, 0, -1)},
	}}
	tr := NewTracker(store)

	removed := tr.CleanupOldTasks(7)
	ex.AssertAreEqual(t, "removed", 2, removed)

	// age alone decides, running tasks included
	ex.AssertNillability(t, "old running", true, tr.Status("old-running"))
	ex.AssertNillability(t, "old completed", true, tr.Status("old-completed"))
	ex.AssertNillability(t, "fresh", false, tr.Status("fresh"))
	ex.AssertAreEqual(t, "saves", 1, store.saves)

	// nothing left to remove
	ex.AssertAreEqual(t, "second pass", 0, tr.CleanupOldTasks(7))
	ex.AssertAreEqual(t, "no save without removal", 1, store.saves)
}

func Test_Tracker_StoreFailureIsSwallowed(t *testing.T) {
	store := &memStore{fail: true}
	tr := NewTracker(store)

	tr.Initialize("t1", 2)
	if !tr.UpdateProgress("t1", 1, "") {
		t.Fatal("update should succeed even when persistence fails")
	}
	if !tr.Complete("t1") {
		t.Fatal("complete should succeed even when persistence fails")
	}

	status := tr.Status("t1")
	ex.AssertAreEqual(t, "status", m.TaskStatusCompleted, status.Status)
}
