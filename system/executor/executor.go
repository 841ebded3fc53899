package executor

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"

	"github.com/timewave-computer/causality/domain/effect"
	causalityerrors "github.com/timewave-computer/causality/infrastructure/errors"
	"github.com/timewave-computer/causality/infrastructure/metrics"
	"github.com/timewave-computer/causality/infrastructure/tracing"
)

// readyQueueWait bounds how long a worker blocks on the global
// ready-queue before retrying its own deque, per §5's suspension points.
const readyQueueWait = 5 * time.Millisecond

// idleSleep is how long a worker with no local, global or stealable
// work sleeps before retrying, per §5(c).
const idleSleep = time.Millisecond

// TegResult is execute's outcome: per-node results, run statistics and
// any execution errors encountered.
type TegResult struct {
	Results map[effect.NodeId]*NodeResult
	Stats   Stats
	Errors  []error
}

// Stats summarizes one execution run.
type Stats struct {
	TotalTime              time.Duration
	NodesCompletedParallel int
	CriticalPathLength     int64
}

// Config tunes an Executor's scheduling behavior.
type Config struct {
	Workers          int
	NodeTimeout      time.Duration
	GlobalTimeout    time.Duration
	AdaptiveSchedule bool
}

// DefaultConfig returns a Config with a CPU-count worker pool, a 30s
// node timeout and adaptive scheduling on, per §4.3/§5 defaults.
func DefaultConfig() Config {
	workers, err := cpu.Counts(true)
	if err != nil || workers <= 0 {
		workers = 4
	}
	return Config{
		Workers:          workers,
		NodeTimeout:      30 * time.Second,
		GlobalTimeout:    5 * time.Minute,
		AdaptiveSchedule: true,
	}
}

// Executor drains a TEG with a work-stealing worker pool.
type Executor struct {
	cfg      Config
	handlers *HandlerRegistry
	log      zerolog.Logger
	tracer   tracing.Tracer

	mu            sync.Mutex
	status        map[effect.NodeId]NodeStatus
	results       map[effect.NodeId]*NodeResult
	errs          *multierror.Error
	completed     map[effect.NodeId]struct{}
	pendingOut    int // nodes neither Completed nor Failed
	adaptiveCosts map[string]*rollingAverage
}

// NewExecutor builds an Executor dispatching Perform effects through
// handlers, logging through log. Pass zerolog.Nop() for no logging.
func NewExecutor(cfg Config, handlers *HandlerRegistry, log zerolog.Logger) *Executor {
	if cfg.Workers <= 0 {
		cfg = DefaultConfig()
	}
	return &Executor{
		cfg:           cfg,
		handlers:      handlers,
		log:           log,
		tracer:        tracing.Noop,
		adaptiveCosts: make(map[string]*rollingAverage),
	}
}

// WithTracer installs t as the span tracer for node dispatch, returning
// ex for chaining. A nil t restores the no-op tracer.
func (ex *Executor) WithTracer(t tracing.Tracer) *Executor {
	if t == nil {
		t = tracing.Noop
	}
	ex.tracer = t
	return ex
}

// Execute drives graph to completion or first-fatal-error per §4.3's
// completion contract, returning partial results on timeout.
func (ex *Executor) Execute(ctx context.Context, graph *effect.Graph) *TegResult {
	start := time.Now()

	ex.status = make(map[effect.NodeId]NodeStatus, len(graph.Nodes))
	ex.results = make(map[effect.NodeId]*NodeResult, len(graph.Nodes))
	ex.completed = make(map[effect.NodeId]struct{}, len(graph.Nodes))
	ex.errs = nil
	ex.pendingOut = len(graph.Nodes)
	for id := range graph.Nodes {
		ex.status[id] = StatusPending
	}

	ctx, cancel := context.WithTimeout(ctx, ex.cfg.GlobalTimeout)
	defer cancel()

	ready := newReadyQueue()
	deques := make([]*deque, ex.cfg.Workers)
	for i := range deques {
		deques[i] = newDeque()
	}

	var completedCount int64
	var wg sync.WaitGroup
	done := make(chan struct{})

	for _, n := range graph.Ready(nil) {
		ex.markReady(n.ID)
		ready.push(n)
	}

	metrics.ActiveWorkers.Set(float64(ex.cfg.Workers))
	for i := 0; i < ex.cfg.Workers; i++ {
		wg.Add(1)
		go ex.runWorker(ctx, i, graph, deques, ready, done, &completedCount, &wg)
	}

	// Watch for completion: every node finished, an error was recorded,
	// or the global timeout expired, signalled by closing `done` exactly
	// once per §4.3's three completion conditions.
	var once sync.Once
	closeDone := func() { once.Do(func() { close(done); ready.close() }) }

	go func() {
		for {
			select {
			case <-ctx.Done():
				closeDone()
				return
			case <-time.After(idleSleep):
				ex.mu.Lock()
				finished := ex.pendingOut == 0
				hasErrs := ex.errs.ErrorOrNil() != nil
				ex.mu.Unlock()
				if finished || hasErrs {
					closeDone()
					return
				}
			}
		}
	}()

	wg.Wait()
	metrics.ActiveWorkers.Set(0)

	ex.mu.Lock()
	defer ex.mu.Unlock()

	var errs []error
	if me := ex.errs.ErrorOrNil(); me != nil {
		if m, ok := me.(*multierror.Error); ok {
			errs = m.Errors
		} else {
			errs = []error{me}
		}
	}

	return &TegResult{
		Results: ex.results,
		Stats: Stats{
			TotalTime:              time.Since(start),
			NodesCompletedParallel: int(completedCount),
			CriticalPathLength:     criticalPathLength(graph),
		},
		Errors: errs,
	}
}

func criticalPathLength(graph *effect.Graph) int64 {
	var max int64
	for _, n := range graph.Nodes {
		if n.CriticalPath > max {
			max = n.CriticalPath
		}
	}
	return max
}

func (ex *Executor) markReady(id effect.NodeId) {
	ex.mu.Lock()
	defer ex.mu.Unlock()
	ex.status[id] = StatusReady
}

func (ex *Executor) runWorker(ctx context.Context, id int, graph *effect.Graph, deques []*deque, ready *readyQueue, done chan struct{}, completedCount *int64, wg *sync.WaitGroup) {
	defer wg.Done()
	own := deques[id]

	for {
		select {
		case <-done:
			return
		default:
		}

		n, ok := own.popLocal()
		if !ok {
			n, ok = ready.popWait(readyQueueWait)
		}
		if !ok {
			n, ok = ex.stealFrom(deques, id)
		}
		if !ok {
			select {
			case <-done:
				return
			case <-time.After(idleSleep):
			}
			continue
		}

		ex.execNode(ctx, n)
		atomic.AddInt64(completedCount, 1)

		ex.dispatchNewlyReady(graph, n.ID, own, ready)
	}
}

func (ex *Executor) stealFrom(deques []*deque, selfIdx int) (*effect.Node, bool) {
	order := rand.Perm(len(deques))
	for _, i := range order {
		if i == selfIdx {
			continue
		}
		if n, ok := deques[i].steal(); ok {
			metrics.WorkStolen.WithLabelValues(nodeWorkerLabel(selfIdx)).Inc()
			return n, true
		}
	}
	return nil, false
}

func nodeWorkerLabel(i int) string {
	return "worker-" + strconv.Itoa(i)
}

// dispatchNewlyReady recomputes the ready set touching n's completion
// and pushes any newly-unblocked nodes onto the dispatching worker's
// local deque, falling back to the global queue when full.
func (ex *Executor) dispatchNewlyReady(graph *effect.Graph, completedID effect.NodeId, own *deque, ready *readyQueue) {
	ex.mu.Lock()
	completedSnapshot := make(map[effect.NodeId]struct{}, len(ex.completed))
	for id := range ex.completed {
		completedSnapshot[id] = struct{}{}
	}
	ex.mu.Unlock()

	for _, n := range graph.Ready(completedSnapshot) {
		ex.mu.Lock()
		status := ex.status[n.ID]
		if status != StatusPending {
			ex.mu.Unlock()
			continue
		}
		ex.status[n.ID] = StatusReady
		ex.mu.Unlock()

		if own.len() < loadBalanceThreshold {
			own.pushLocal(n)
		} else {
			ready.push(n)
		}
	}
}

func (ex *Executor) execNode(ctx context.Context, n *effect.Node) {
	ex.mu.Lock()
	ex.status[n.ID] = StatusExecuting
	ex.mu.Unlock()

	tag := effectTag(n)
	spanCtx, finishSpan := ex.tracer.StartSpan(ctx, "executor.node", map[string]string{
		"node_id": n.ID.String(),
		"tag":     tag,
	})

	nodeCtx, cancel := context.WithTimeout(spanCtx, ex.cfg.NodeTimeout)
	defer cancel()

	type out struct {
		value []byte
		err   error
	}
	resultCh := make(chan out, 1)
	startedAt := time.Now()

	go func() {
		value, err := ex.invoke(n)
		resultCh <- out{value: value, err: err}
	}()

	var result out
	select {
	case result = <-resultCh:
	case <-nodeCtx.Done():
		result = out{err: causalityerrors.NodeTimeout(n.ID.String())}
	}

	duration := time.Since(startedAt)
	metrics.NodeDuration.WithLabelValues(tag).Observe(duration.Seconds())
	if ex.cfg.AdaptiveSchedule {
		ex.recordCost(tag, duration)
	}
	finishSpan(result.err)

	ex.mu.Lock()
	defer ex.mu.Unlock()
	if result.err != nil {
		ex.status[n.ID] = StatusFailed
		ex.errs = multierror.Append(ex.errs, result.err)
		ex.results[n.ID] = &NodeResult{Err: result.err}
		metrics.NodesDispatched.WithLabelValues("failed").Inc()
		ex.log.Error().Str("node_id", n.ID.String()).Str("tag", tag).Err(result.err).Msg("node execution failed")
	} else {
		ex.status[n.ID] = StatusCompleted
		ex.results[n.ID] = &NodeResult{Value: result.value}
		metrics.NodesDispatched.WithLabelValues("completed").Inc()
		ex.log.Debug().Str("node_id", n.ID.String()).Str("tag", tag).Dur("duration", duration).Msg("node completed")
	}
	ex.completed[n.ID] = struct{}{}
	ex.pendingOut--
}

func (ex *Executor) invoke(n *effect.Node) ([]byte, error) {
	e := n.Effect
	switch e.Kind {
	case effect.KindPure:
		return e.Term, nil
	case effect.KindPerform:
		if ex.handlers == nil {
			return nil, causalityerrors.EffectHandling(e.Tag, nil)
		}
		h, ok := ex.handlers.Lookup(e.Tag)
		if !ok {
			return nil, causalityerrors.Registry("no handler registered for effect tag", nil).WithContext("tag", e.Tag)
		}
		return h.Invoke(e.Tag, e.Args)
	default:
		return nil, nil
	}
}

func effectTag(n *effect.Node) string {
	if n.Effect.Kind == effect.KindPerform {
		return n.Effect.Tag
	}
	return n.Effect.Kind.String()
}

// rollingAverage tracks a per-tag exponential moving average of node
// execution time for adaptive scheduling.
type rollingAverage struct {
	mu    sync.Mutex
	value time.Duration
	seen  bool
}

const rollingAverageWeight = 0.2

func (r *rollingAverage) observe(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.seen {
		r.value = d
		r.seen = true
		return
	}
	r.value = time.Duration(float64(r.value)*(1-rollingAverageWeight) + float64(d)*rollingAverageWeight)
}

func (r *rollingAverage) get() (time.Duration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.value, r.seen
}

func (ex *Executor) recordCost(tag string, d time.Duration) {
	ex.mu.Lock()
	ra, ok := ex.adaptiveCosts[tag]
	if !ok {
		ra = &rollingAverage{}
		ex.adaptiveCosts[tag] = ra
	}
	ex.mu.Unlock()
	ra.observe(d)
}

// EstimatedCost returns the adaptive-scheduling rolling average recorded
// for tag, if any observations exist yet.
func (ex *Executor) EstimatedCost(tag string) (time.Duration, bool) {
	ex.mu.Lock()
	ra, ok := ex.adaptiveCosts[tag]
	ex.mu.Unlock()
	if !ok {
		return 0, false
	}
	return ra.get()
}
