package taskstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/chainweave/agentkit/pkg/a2a"
	agenterrors "github.com/chainweave/agentkit/pkg/errors"
)

const taskTable = "agent_tasks"

// SQLiteStore persists task records in a SQLite database. Task and
// history share one row, so the pair is atomic without a rename dance.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (or creates) the database at path and ensures the
// schema.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, agenterrors.NewInternal("open task database", err)
	}
	store, err := NewSQLiteStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewSQLiteStore wraps an existing database handle and ensures the schema.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, agenterrors.NewValidation("db is nil")
	}
	if err := ensureSchema(db); err != nil {
		return nil, agenterrors.NewInternal("ensure task schema", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func ensureSchema(db *sql.DB) error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			context_id TEXT NOT NULL,
			status_state TEXT NOT NULL,
			updated_at INTEGER NOT NULL,
			task_json BLOB NOT NULL,
			history_json BLOB NOT NULL
		);`, taskTable),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_context ON %s(context_id);`, taskTable, taskTable),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_updated ON %s(updated_at);`, taskTable, taskTable),
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Save upserts the task row.
func (s *SQLiteStore) Save(ctx context.Context, rec TaskAndHistory) error {
	if err := validateRecord(rec); err != nil {
		return err
	}
	taskJSON, err := json.Marshal(rec.Task)
	if err != nil {
		return agenterrors.NewInternal("encode task", err)
	}
	history := rec.History
	if history == nil {
		history = []*a2a.Message{}
	}
	historyJSON, err := json.Marshal(history)
	if err != nil {
		return agenterrors.NewInternal("encode history", err)
	}

	_, err = s.db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (id, context_id, status_state, updated_at, task_json, history_json)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				context_id = excluded.context_id,
				status_state = excluded.status_state,
				updated_at = excluded.updated_at,
				task_json = excluded.task_json,
				history_json = excluded.history_json`, taskTable),
		rec.Task.ID, rec.Task.ContextID, string(rec.Task.Status.State), nowMilli(), taskJSON, historyJSON)
	if err != nil {
		return agenterrors.NewInternal("write task row", err)
	}
	return nil
}

// Load returns the stored pair, nil for an unknown id. A corrupt history
// blob degrades to an empty history.
func (s *SQLiteStore) Load(ctx context.Context, taskID string) (*TaskAndHistory, error) {
	if err := ValidateTaskID(taskID); err != nil {
		return nil, err
	}
	var taskJSON, historyJSON []byte
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT task_json, history_json FROM %s WHERE id = ?", taskTable), taskID).
		Scan(&taskJSON, &historyJSON)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, agenterrors.NewInternal("read task row", err)
	}

	var task a2a.Task
	if err := json.Unmarshal(taskJSON, &task); err != nil {
		return nil, agenterrors.NewInternal("decode task", err).WithDetail("taskId", taskID)
	}
	history := []*a2a.Message{}
	if len(historyJSON) > 0 {
		var decoded []*a2a.Message
		if err := json.Unmarshal(historyJSON, &decoded); err == nil && decoded != nil {
			history = decoded
		}
	}
	return &TaskAndHistory{Task: &task, History: history}, nil
}

// ListByContext returns tasks sharing a context id, newest first.
func (s *SQLiteStore) ListByContext(ctx context.Context, contextID string) ([]*a2a.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf("SELECT task_json FROM %s WHERE context_id = ? ORDER BY updated_at DESC, id ASC", taskTable), contextID)
	if err != nil {
		return nil, agenterrors.NewInternal("list tasks", err)
	}
	defer rows.Close()

	var out []*a2a.Task
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, agenterrors.NewInternal("scan task row", err)
		}
		var task a2a.Task
		if err := json.Unmarshal(payload, &task); err != nil {
			return nil, agenterrors.NewInternal("decode task", err)
		}
		out = append(out, &task)
	}
	if err := rows.Err(); err != nil {
		return nil, agenterrors.NewInternal("iterate task rows", err)
	}
	return out, nil
}

func nowMilli() int64 {
	return time.Now().UTC().UnixMilli()
}

var _ Store = (*SQLiteStore)(nil)
