package progress

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	m "stockfeed/models"
)

// TaskStore persists the tracker's full task table. Implementations must
// make Save atomic: a reader loading concurrently sees either the old or
// the new table, never a partial write.
type TaskStore interface {
	Load() (map[string]*m.TaskState, error)
	Save(tasks map[string]*m.TaskState) error
}

// FileTaskStore keeps the task table as one JSON object keyed by task id.
// Writes go to a temp file in the same directory and are swapped in with
// os.Rename.
type FileTaskStore struct {
	path string
}

func NewFileTaskStore(path string) *FileTaskStore {
	return &FileTaskStore{path: path}
}

// Load reads the task table from disk. A missing file is an empty table.
func (s *FileTaskStore) Load() (map[string]*m.TaskState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]*m.TaskState{}, nil
		}
		return nil, fmt.Errorf("error reading task file %s: %w", s.path, err)
	}

	tasks := map[string]*m.TaskState{}
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("error parsing task file %s: %w", s.path, err)
	}

	return tasks, nil
}

func (s *FileTaskStore) Save(tasks map[string]*m.TaskState) error {
	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling task table: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating task dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("error creating temp task file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("error writing temp task file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("error closing temp task file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("error swapping task file: %w", err)
	}

	return nil
}
