package resource

import (
	"sync"

	"github.com/timewave-computer/causality/infrastructure/errors"
	"github.com/timewave-computer/causality/infrastructure/hash"
)

// Store is an in-memory register table, map+mutex guarded the way the
// teacher's automation Scheduler guards its trigger map.
type Store struct {
	mu        sync.RWMutex
	registers map[hash.ContentId]*ResourceRegister
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{registers: make(map[hash.ContentId]*ResourceRegister)}
}

// Put inserts or replaces r, keyed by r.ID.
func (s *Store) Put(r *ResourceRegister) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registers[r.ID] = r
}

// Get returns the register for id, or a ResourceNotFound error.
func (s *Store) Get(id hash.ContentId) (*ResourceRegister, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.registers[id]
	if !ok {
		return nil, errors.ResourceNotFound(id.String())
	}
	return r, nil
}

// Delete removes id from the store, if present.
func (s *Store) Delete(id hash.ContentId) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.registers, id)
}

// List returns a snapshot of every register currently held.
func (s *Store) List() []*ResourceRegister {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*ResourceRegister, 0, len(s.registers))
	for _, r := range s.registers {
		out = append(out, r)
	}
	return out
}

// Len returns the number of registers currently held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.registers)
}
