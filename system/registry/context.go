// Package registry implements SystemContext, the process-wide glue the
// teacher's services assemble by hand in each service constructor: the
// ZK backend table keyed by domain, the effect handler table keyed by
// tag, the shared circuit cache, and a cron-scheduled maintenance sweep
// over both. Grounded on the teacher's automation service's own
// schedule-a-recurring-job shape, generalized from chain-automation
// triggers to process maintenance.
package registry

import (
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/timewave-computer/causality/infrastructure/cache"
	causalityerrors "github.com/timewave-computer/causality/infrastructure/errors"
	"github.com/timewave-computer/causality/infrastructure/hash"
	"github.com/timewave-computer/causality/system/executor"
	"github.com/timewave-computer/causality/system/zk"
)

// DomainBackends maps a domain id to its registered ZkBackend, falling
// back to a mock backend rather than erroring on an unscoped lookup —
// §4.5 requires absence of a backend for a *required* domain to be
// fatal, which callers enforce explicitly via Required.
type DomainBackends struct {
	mu       sync.RWMutex
	byDomain map[string]zk.ZkBackend
	fallback zk.ZkBackend
}

// NewDomainBackends seeds the table with mock as the default fallback.
func NewDomainBackends(fallback zk.ZkBackend) *DomainBackends {
	if fallback == nil {
		fallback = zk.NewMockBackend(nil)
	}
	return &DomainBackends{byDomain: make(map[string]zk.ZkBackend), fallback: fallback}
}

// Register installs the backend for domain.
func (d *DomainBackends) Register(domain string, b zk.ZkBackend) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.byDomain[domain] = b
}

// Get returns the domain's backend, or the default fallback if
// unregistered.
func (d *DomainBackends) Get(domain string) zk.ZkBackend {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if b, ok := d.byDomain[domain]; ok {
		return b
	}
	return d.fallback
}

// Required returns the domain's backend, erroring instead of falling
// back to the mock — for call sites where §4.5's "absence is fatal"
// rule applies.
func (d *DomainBackends) Required(domain string) (zk.ZkBackend, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	b, ok := d.byDomain[domain]
	if !ok {
		return nil, causalityerrors.New(causalityerrors.KindProofGeneration, "no backend registered for required domain").WithContext("domain", domain)
	}
	return b, nil
}

// SystemContext is the process-wide set of shared tables and caches a
// running engine threads through the executor, coordinator and API
// layers, assembled once at startup.
type SystemContext struct {
	Hash     *hash.Registry
	Backends *DomainBackends
	Handlers *executor.HandlerRegistry
	Circuits *zk.CircuitCache

	log  *zap.Logger
	cron *cron.Cron
}

// New builds a SystemContext with fresh registries and a stopped cron
// scheduler. log may be nil for a no-op logger.
func New(log *zap.Logger) *SystemContext {
	if log == nil {
		log = zap.NewNop()
	}
	reg := hash.NewRegistry()
	return &SystemContext{
		Hash:     reg,
		Backends: NewDomainBackends(nil),
		Handlers: executor.NewHandlerRegistry(),
		Circuits: zk.NewCircuitCache(zk.NewCompiler(reg), cache.DefaultConfig()),
		log:      log,
		cron:     cron.New(),
	}
}

// ScheduleMaintenance registers a recurring maintenance sweep (circuit
// cache eviction accounting, rolling-average decay hooks, ...) on the
// standard 5-field cron spec and starts the scheduler. Returns the
// cron.EntryID for later removal.
func (sc *SystemContext) ScheduleMaintenance(spec string, sweep func()) (cron.EntryID, error) {
	id, err := sc.cron.AddFunc(spec, func() {
		sc.log.Debug("running system context maintenance sweep")
		sweep()
	})
	if err != nil {
		return 0, causalityerrors.Wrap(causalityerrors.KindSystem, "scheduling maintenance sweep", err)
	}
	sc.cron.Start()
	return id, nil
}

// StopMaintenance stops the cron scheduler, waiting for any running job
// to finish.
func (sc *SystemContext) StopMaintenance() {
	<-sc.cron.Stop().Done()
}
