// Package api implements Causality's admin HTTP surface: a gin-driven
// submit/query API for effect programs, a chi-routed mock per-domain
// prover backend standing in for a remote domain's proving service, a
// gorilla/mux router for external-system webhooks, and a gorilla/websocket
// stream announcing each program's completion or failure (no per-node
// status events). Grounded on the teacher's
// infrastructure/service.Runner (mux.Router-backed HTTP service with
// graceful shutdown) and applications/httpapi handler bundle, generalized
// from Neo-chain oracle endpoints to effect-program submission.
package api

import (
	"sync"

	"github.com/timewave-computer/causality/domain/effect"
	"github.com/timewave-computer/causality/system/coordinator"
	"github.com/timewave-computer/causality/system/executor"
)

// run is one submitted program's accumulated state: the graph it was
// compiled to, its execution result once available, and its composite
// proof once generated.
type run struct {
	mu        sync.RWMutex
	graph     *effect.Graph
	result    *executor.TegResult
	composite *coordinator.CompositeProof
}

// store is the process's in-memory table of submitted programs, keyed by
// the caller-supplied program id. A real deployment
// would back this with the log segment store (§4.6); an in-memory table
// is sufficient for the admin surface's own bookkeeping.
type store struct {
	mu      sync.RWMutex
	byID    map[string]*run
	watcher *eventHub
}

func newStore(hub *eventHub) *store {
	return &store{byID: make(map[string]*run), watcher: hub}
}

func (s *store) create(id string, graph *effect.Graph) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[id] = &run{graph: graph}
}

func (s *store) get(id string) (*run, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.byID[id]
	return r, ok
}

func (s *store) setResult(id string, result *executor.TegResult) {
	s.mu.RLock()
	r, ok := s.byID[id]
	s.mu.RUnlock()
	if !ok {
		return
	}
	r.mu.Lock()
	r.result = result
	r.mu.Unlock()
	if s.watcher != nil {
		s.watcher.broadcastResult(id, result)
	}
}

func (s *store) setComposite(id string, proof *coordinator.CompositeProof) {
	s.mu.RLock()
	r, ok := s.byID[id]
	s.mu.RUnlock()
	if !ok {
		return
	}
	r.mu.Lock()
	r.composite = proof
	r.mu.Unlock()
}

func (r *run) snapshotResult() (*executor.TegResult, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.result, r.result != nil
}

func (r *run) snapshotComposite() (*coordinator.CompositeProof, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.composite, r.composite != nil
}
