package taskstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/chainweave/agentkit/pkg/a2a"
	agenterrors "github.com/chainweave/agentkit/pkg/errors"
)

// DefaultDir is the file store's base directory when none is configured,
// relative to the process working directory.
const DefaultDir = ".a2a-tasks"

const historySuffix = ".history.json"

// historyFile is the on-disk envelope of a task's message history.
type historyFile struct {
	MessageHistory []*a2a.Message `json:"messageHistory"`
}

// FileStore persists each task as <dir>/<id>.json and its history as
// <dir>/<id>.history.json, both pretty-printed JSON. Writes go through a
// temp-file-and-rename so a crash never leaves a half-written file; the
// history lands before the task so a visible task always has a readable
// or absent history.
type FileStore struct {
	dir string
}

// NewFileStore creates the base directory if needed and returns a store
// over it. An empty dir selects DefaultDir.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, agenterrors.NewInternal("create task store directory", err)
	}
	return &FileStore{dir: dir}, nil
}

// Save writes the history file, then the task file.
func (s *FileStore) Save(ctx context.Context, rec TaskAndHistory) error {
	if err := validateRecord(rec); err != nil {
		return err
	}
	history := rec.History
	if history == nil {
		history = []*a2a.Message{}
	}
	if err := s.writeJSON(s.historyPath(rec.Task.ID), historyFile{MessageHistory: history}); err != nil {
		return err
	}
	return s.writeJSON(s.taskPath(rec.Task.ID), rec.Task)
}

// Load reads the task file; a missing task is nil, a missing or malformed
// history degrades to an empty history.
func (s *FileStore) Load(ctx context.Context, taskID string) (*TaskAndHistory, error) {
	if err := ValidateTaskID(taskID); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.taskPath(taskID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, agenterrors.NewInternal("read task file", err)
	}
	var task a2a.Task
	if err := json.Unmarshal(data, &task); err != nil {
		return nil, agenterrors.NewInternal("decode task file", err).WithDetail("taskId", taskID)
	}

	history := []*a2a.Message{}
	if raw, err := os.ReadFile(s.historyPath(taskID)); err == nil {
		var hf historyFile
		if err := json.Unmarshal(raw, &hf); err == nil && hf.MessageHistory != nil {
			history = hf.MessageHistory
		}
	}

	return &TaskAndHistory{Task: &task, History: history}, nil
}

// ListByContext scans the task files and returns matches, newest first by
// status timestamp.
func (s *FileStore) ListByContext(ctx context.Context, contextID string) ([]*a2a.Task, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, agenterrors.NewInternal("read task store directory", err)
	}

	var out []*a2a.Task
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") || strings.HasSuffix(name, historySuffix) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			continue
		}
		var task a2a.Task
		if err := json.Unmarshal(data, &task); err != nil {
			continue
		}
		if task.ContextID == contextID {
			out = append(out, &task)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Status.Timestamp > out[j].Status.Timestamp
	})
	return out, nil
}

func (s *FileStore) taskPath(taskID string) string {
	return filepath.Join(s.dir, taskID+".json")
}

func (s *FileStore) historyPath(taskID string) string {
	return filepath.Join(s.dir, taskID+historySuffix)
}

func (s *FileStore) writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return agenterrors.NewInternal("encode task record", err)
	}
	tmp, err := os.CreateTemp(s.dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return agenterrors.NewInternal("create temp file", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return agenterrors.NewInternal("write task record", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return agenterrors.NewInternal("close temp file", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return agenterrors.NewInternal(fmt.Sprintf("rename %s into place", filepath.Base(path)), err)
	}
	return nil
}

var _ Store = (*FileStore)(nil)
