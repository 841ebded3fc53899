package capability

import (
	"sync"

	causalityerrors "github.com/timewave-computer/causality/infrastructure/errors"
)

// Agent is a principal holding a capability set, optionally scoped to a
// single domain — the Rust original's Account capability binding (§3,
// SUPPLEMENTED FEATURES #5), minus the balance/account-ledger concerns
// that belong to an unrelated subsystem.
type Agent struct {
	ID           string
	Domain       *string
	Capabilities Set
}

// NewAgent builds an Agent with the given initial capability grants.
func NewAgent(id string, domain *string, caps ...Capability) *Agent {
	return &Agent{ID: id, Domain: domain, Capabilities: NewSet(caps...)}
}

// Grant adds c to the agent's capability set.
func (a *Agent) Grant(c Capability) {
	if a.Capabilities == nil {
		a.Capabilities = Set{}
	}
	a.Capabilities[c] = struct{}{}
}

// Revoke removes c from the agent's capability set.
func (a *Agent) Revoke(c Capability) {
	delete(a.Capabilities, c)
}

// Authorize reports whether required is a subset of the agent's granted
// capabilities, and — when domain is non-empty — that the agent's scope
// either is unset (unscoped, any domain) or matches domain exactly.
// Capability checks are pure: no I/O, no state beyond the registry.
func (a *Agent) Authorize(required Set, domain string) bool {
	if !required.Subset(a.Capabilities) {
		return false
	}
	if domain == "" || a.Domain == nil {
		return true
	}
	return *a.Domain == domain
}

// Registry is the process-wide table of known agents, the only state
// capability checks consult (§4.7).
type Registry struct {
	mu     sync.RWMutex
	agents map[string]*Agent
}

// NewRegistry returns an empty agent registry.
func NewRegistry() *Registry {
	return &Registry{agents: make(map[string]*Agent)}
}

// Put registers or replaces an agent.
func (r *Registry) Put(a *Agent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.agents[a.ID] = a
}

// Get looks up an agent by id.
func (r *Registry) Get(id string) (*Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.agents[id]
	if !ok {
		return nil, causalityerrors.ResourceNotFound(id)
	}
	return a, nil
}

// Remove deletes an agent from the registry.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.agents, id)
}

// List returns a snapshot of every registered agent.
func (r *Registry) List() []*Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Agent, 0, len(r.agents))
	for _, a := range r.agents {
		out = append(out, a)
	}
	return out
}
