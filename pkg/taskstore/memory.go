package taskstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/chainweave/agentkit/pkg/a2a"
)

// MemoryStore keeps task records in memory. It is the default backend for
// tests and single-run agents.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*memoryRecord
}

type memoryRecord struct {
	rec       TaskAndHistory
	updatedAt time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*memoryRecord)}
}

// Save overwrites any existing entry for the task's id.
func (s *MemoryStore) Save(ctx context.Context, rec TaskAndHistory) error {
	if err := validateRecord(rec); err != nil {
		return err
	}
	stored := cloneRecord(rec)
	s.mu.Lock()
	s.records[rec.Task.ID] = &memoryRecord{rec: stored, updatedAt: time.Now().UTC()}
	s.mu.Unlock()
	return nil
}

// Load returns a copy of the stored pair, or nil for an unknown id.
func (s *MemoryStore) Load(ctx context.Context, taskID string) (*TaskAndHistory, error) {
	if err := ValidateTaskID(taskID); err != nil {
		return nil, err
	}
	s.mu.RLock()
	record, ok := s.records[taskID]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	out := cloneRecord(record.rec)
	if out.History == nil {
		out.History = []*a2a.Message{}
	}
	return &out, nil
}

// ListByContext returns tasks sharing a context id, newest first.
func (s *MemoryStore) ListByContext(ctx context.Context, contextID string) ([]*a2a.Task, error) {
	s.mu.RLock()
	type entry struct {
		task      *a2a.Task
		updatedAt time.Time
	}
	var entries []entry
	for _, record := range s.records {
		if record.rec.Task.ContextID != contextID {
			continue
		}
		entries = append(entries, entry{task: cloneTask(record.rec.Task), updatedAt: record.updatedAt})
	}
	s.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].updatedAt.After(entries[j].updatedAt)
	})
	out := make([]*a2a.Task, len(entries))
	for i, e := range entries {
		out[i] = e.task
	}
	return out, nil
}

var _ Store = (*MemoryStore)(nil)
