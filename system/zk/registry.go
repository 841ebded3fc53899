package zk

import (
	"sync"

	causalityerrors "github.com/timewave-computer/causality/infrastructure/errors"
)

// BackendRegistry looks up a ZkBackend by name, returning a mock backend
// when no name is given so callers can run against an unconfigured engine.
type BackendRegistry struct {
	mu       sync.RWMutex
	backends map[string]ZkBackend
	fallback ZkBackend
}

// NewBackendRegistry builds a BackendRegistry seeded with a mock backend
// as both the "mock" entry and the default fallback.
func NewBackendRegistry() *BackendRegistry {
	mock := NewMockBackend(nil)
	return &BackendRegistry{
		backends: map[string]ZkBackend{mockBackendName: mock},
		fallback: mock,
	}
}

// Register installs or replaces a backend under name.
func (r *BackendRegistry) Register(name string, b ZkBackend) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backends[name] = b
}

// Get returns the backend registered under name, or the mock fallback if
// name is empty; an unregistered name is a Registry error.
func (r *BackendRegistry) Get(name string) (ZkBackend, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if name == "" {
		return r.fallback, nil
	}
	b, ok := r.backends[name]
	if !ok {
		return nil, causalityerrors.Registry("zk backend not registered", nil).WithContext("name", name)
	}
	return b, nil
}

// Names returns the currently registered backend names.
func (r *BackendRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.backends))
	for name := range r.backends {
		names = append(names, name)
	}
	return names
}
