package coordinator

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	causalityerrors "github.com/timewave-computer/causality/infrastructure/errors"
	"github.com/timewave-computer/causality/infrastructure/logging"
	"github.com/timewave-computer/causality/infrastructure/metrics"
	"github.com/timewave-computer/causality/infrastructure/resilience"
	"github.com/timewave-computer/causality/system/zk"
)

// CompositeProof bundles every domain's proof together with the
// consistency digest that binds them, per §4.5.
type CompositeProof struct {
	ID               string
	DomainProofs     map[string]*DomainProof
	ConsistencyProof [32]byte
	GlobalInputs     *zk.PublicInputs
	Timestamp        int64
}

// GlobalConstraint checks a property across every domain's public
// outputs (resource conservation, causality ordering, ...); callers
// supply these since they are specific to the program being proven.
type GlobalConstraint func(domainOutputs map[string]*zk.PublicInputs) bool

// Coordinator partitions an instruction stream, drives per-domain proof
// generation through a backend lookup, and composes the results. Every
// call into a domain's backend is wrapped in a per-domain circuit
// breaker and bounded retry so one unreachable backend degrades that
// domain instead of the whole composite.
type Coordinator struct {
	log          *zap.Logger
	compiler     zk.CircuitCompiler
	backends     DomainBackendLookup
	buildWitness DomainWitnessBuilder

	breakerLog *logging.Logger
	retryCfg   resilience.RetryConfig

	breakersMu sync.Mutex
	breakers   map[string]*resilience.CircuitBreaker
}

// NewCoordinator builds a Coordinator. log may be nil for a no-op logger.
// Backend calls retry with resilience.DefaultRetryConfig and trip a
// per-domain circuit breaker under resilience.DefaultBackendCBConfig;
// WithResilience replaces the retry policy and the breaker logger, while
// the breaker thresholds stay DefaultBackendCBConfig's.
func NewCoordinator(log *zap.Logger, compiler zk.CircuitCompiler, backends DomainBackendLookup, buildWitness DomainWitnessBuilder) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Coordinator{
		log:          log,
		compiler:     compiler,
		backends:     backends,
		buildWitness: buildWitness,
		breakerLog:   logging.New("coordinator", "info", "json"),
		retryCfg:     resilience.DefaultRetryConfig(),
		breakers:     make(map[string]*resilience.CircuitBreaker),
	}
}

// WithResilience overrides the retry policy and the logger passed to
// each domain's circuit breaker. Returns c for chaining at construction.
func (c *Coordinator) WithResilience(retryCfg resilience.RetryConfig, logger *logging.Logger) *Coordinator {
	c.retryCfg = retryCfg
	if logger != nil {
		c.breakerLog = logger
	}
	return c
}

// breakerFor returns the circuit breaker guarding domain's backend,
// creating it on first use.
func (c *Coordinator) breakerFor(domain string) *resilience.CircuitBreaker {
	c.breakersMu.Lock()
	defer c.breakersMu.Unlock()

	if b, ok := c.breakers[domain]; ok {
		return b
	}
	b := resilience.New(resilience.DefaultBackendCBConfig(domain, c.breakerLog))
	c.breakers[domain] = b
	return b
}

// GenerateComposite partitions instructions with strategy, proves each
// partition, and returns the composed CompositeProof. Absence of a
// registered backend for any required domain aborts with a fatal error;
// other per-domain failures are aggregated via multierror so the caller
// sees every domain's failure, not just the first.
func (c *Coordinator) GenerateComposite(ctx context.Context, id string, instructions []Instruction, strategy PartitionStrategy, global *zk.Witness, timestamp int64) (*CompositeProof, error) {
	partitions := strategy.Partition(instructions)
	domains := SortedDomains(partitions)

	for _, domain := range domains {
		if _, ok := c.backends(domain); !ok {
			return nil, causalityerrors.New(causalityerrors.KindProofGeneration, "no backend registered for required domain").WithContext("domain", domain)
		}
	}

	proofs := make(map[string]*DomainProof, len(domains))
	var errs *multierror.Error

	for _, domain := range domains {
		dp, err := c.proveDomain(ctx, domain, partitions[domain], global)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("domain %s: %w", domain, err))
			continue
		}
		proofs[domain] = dp
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, causalityerrors.ProofGeneration("per-domain proof generation failed", err)
	}

	binding := consistencyBinding(domains, proofs)

	c.log.Info("composite proof generated",
		zap.String("id", id),
		zap.Int("domains", len(domains)))

	return &CompositeProof{
		ID:               id,
		DomainProofs:     proofs,
		ConsistencyProof: binding,
		Timestamp:        timestamp,
	}, nil
}

func (c *Coordinator) proveDomain(ctx context.Context, domain string, instructions []Instruction, global *zk.Witness) (*DomainProof, error) {
	backend, ok := c.backends(domain)
	if !ok {
		return nil, causalityerrors.New(causalityerrors.KindProofGeneration, "no backend registered for required domain").WithContext("domain", domain)
	}

	raw := make([][]byte, len(instructions))
	for i, ins := range instructions {
		raw[i] = ins.Bytes
	}
	circuit, err := c.compiler.Compile(raw, zk.OptimizationStandard)
	if err != nil {
		return nil, causalityerrors.ProofGeneration("compiling domain circuit", err)
	}

	witness, err := c.buildWitness(domain, instructions, global)
	if err != nil {
		return nil, causalityerrors.ProofGeneration("building domain witness", err)
	}

	breaker := c.breakerFor(domain)
	var proof *zk.Proof
	callErr := breaker.Execute(ctx, func() error {
		return resilience.Retry(ctx, c.retryCfg, func() error {
			p, genErr := backend.GenerateProof(ctx, circuit, witness)
			if genErr != nil {
				return genErr
			}
			proof = p
			return nil
		})
	})
	if callErr != nil {
		return nil, causalityerrors.ProofGeneration("backend proof generation", callErr)
	}

	c.log.Debug("domain proof generated",
		zap.String("domain", domain),
		zap.String("backend", backend.Name()),
		zap.Int("instructions", len(instructions)))

	return &DomainProof{
		Domain:        domain,
		Proof:         proof,
		PublicOutputs: proof.PublicInputs,
	}, nil
}

// VerifyComposite checks a CompositeProof per §4.5: every domain proof
// verifies under its registered backend, the consistency binding
// recomputes to the same digest, and every global constraint holds over
// the domains' public outputs.
func (c *Coordinator) VerifyComposite(ctx context.Context, composite *CompositeProof, globalConstraints []GlobalConstraint) (bool, error) {
	domains := make([]string, 0, len(composite.DomainProofs))
	for d := range composite.DomainProofs {
		domains = append(domains, d)
	}
	sort.Strings(domains)

	outputs := make(map[string]*zk.PublicInputs, len(domains))
	for _, domain := range domains {
		dp := composite.DomainProofs[domain]
		backend, ok := c.backends(domain)
		if !ok {
			return false, causalityerrors.New(causalityerrors.KindProofVerification, "no backend registered for domain").WithContext("domain", domain)
		}
		breaker := c.breakerFor(domain)
		var ok2 bool
		callErr := breaker.Execute(ctx, func() error {
			return resilience.Retry(ctx, c.retryCfg, func() error {
				valid, verifyErr := backend.VerifyProof(ctx, dp.Proof, dp.PublicOutputs)
				if verifyErr != nil {
					return verifyErr
				}
				ok2 = valid
				return nil
			})
		})
		if callErr != nil {
			return false, causalityerrors.Wrap(causalityerrors.KindProofVerification, "domain proof verification failed", callErr)
		}
		if !ok2 {
			metrics.ProofVerifications.WithLabelValues("composite", "fail").Inc()
			return false, nil
		}
		outputs[domain] = dp.PublicOutputs
	}

	recomputed := consistencyBinding(domains, composite.DomainProofs)
	if recomputed != composite.ConsistencyProof {
		metrics.ProofVerifications.WithLabelValues("composite", "fail").Inc()
		return false, nil
	}

	for _, constraint := range globalConstraints {
		if !constraint(outputs) {
			metrics.ProofVerifications.WithLabelValues("composite", "fail").Inc()
			return false, nil
		}
	}

	metrics.ProofVerifications.WithLabelValues("composite", "pass").Inc()
	return true, nil
}
