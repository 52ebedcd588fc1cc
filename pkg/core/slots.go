package core

import "sync"

// SlotRegistry coordinates work that must run at most once per kind per
// agent instance (a background monitor, a long poll). It replaces ambient
// module-level "current task" flags with explicit claim/release
// operations owned by the shared context, so correctness holds under
// genuinely concurrent invocations.
type SlotRegistry struct {
	mu     sync.Mutex
	owners map[string]string
}

// NewSlotRegistry creates an empty registry.
func NewSlotRegistry() *SlotRegistry {
	return &SlotRegistry{owners: make(map[string]string)}
}

// Claim atomically takes the slot for kind on behalf of owner. It returns
// false when another owner already holds it. Claiming a slot you already
// hold succeeds.
func (r *SlotRegistry) Claim(kind, owner string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, held := r.owners[kind]
	if held && current != owner {
		return false
	}
	r.owners[kind] = owner
	return true
}

// Release frees the slot for kind. Only the holder can release; releasing
// an unheld or foreign slot returns false.
func (r *SlotRegistry) Release(kind, owner string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, held := r.owners[kind]
	if !held || current != owner {
		return false
	}
	delete(r.owners, kind)
	return true
}

// Owner reports who currently holds the slot for kind.
func (r *SlotRegistry) Owner(kind string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	owner, held := r.owners[kind]
	return owner, held
}
