// Package taskstore durably associates a task with its message history,
// keyed by task id, with in-memory, file-backed and SQLite backends.
package taskstore

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/chainweave/agentkit/pkg/a2a"
	agenterrors "github.com/chainweave/agentkit/pkg/errors"
)

// TaskAndHistory pairs a task with its full ordered message history. It is
// the store's atomicity unit: Save lands both or neither.
type TaskAndHistory struct {
	Task    *a2a.Task      `json:"task"`
	History []*a2a.Message `json:"history"`
}

// Store provides durable task+history persistence. Save and Load are safe
// to call concurrently for different task ids; the store does not provide
// per-task locking across calls for the same id. Returned values are
// defensive copies.
type Store interface {
	// Save overwrites any existing entry for the task's id.
	Save(ctx context.Context, rec TaskAndHistory) error

	// Load returns the stored pair, or nil when the task id is unknown. A
	// task whose history is missing or unreadable loads with an empty
	// history rather than failing.
	Load(ctx context.Context, taskID string) (*TaskAndHistory, error)

	// ListByContext returns the tasks sharing a context id, newest first.
	ListByContext(ctx context.Context, contextID string) ([]*a2a.Task, error)
}

var taskIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateTaskID rejects ids that could escape the store's keyspace
// before they reach any backend. Anything with path separators or dot-dot
// segments never touches the filesystem.
func ValidateTaskID(id string) error {
	if id == "" {
		return agenterrors.NewValidation("task id is required")
	}
	if strings.Contains(id, "..") || filepath.Base(id) != id || !taskIDPattern.MatchString(id) {
		return agenterrors.NewValidation("invalid task id").WithDetail("taskId", id)
	}
	return nil
}

func validateRecord(rec TaskAndHistory) error {
	if rec.Task == nil {
		return agenterrors.NewValidation("task is required")
	}
	return ValidateTaskID(rec.Task.ID)
}
