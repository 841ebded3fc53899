// Package executor drains a Temporal Effect Graph to completion with a
// work-stealing worker pool (§4.3, concurrency model in §5): a bounded
// local LIFO deque per worker, a global FIFO ready-queue, and FIFO
// stealing from a peer's public deque half when a worker runs dry.
// Grounded on the teacher's worker-pool-over-a-shared-queue pattern in
// its gas accounting and automation services, generalized to a
// dependency-aware scheduler with priorities from domain/effect.
package executor

import "context"

// EffectHandler invokes a Perform effect's named handler. domain/effect's
// ScriptHandler already satisfies this interface.
type EffectHandler interface {
	Invoke(tag string, args []byte) ([]byte, error)
}

// EffectHandlerFunc adapts a plain function to an EffectHandler.
type EffectHandlerFunc func(tag string, args []byte) ([]byte, error)

func (f EffectHandlerFunc) Invoke(tag string, args []byte) ([]byte, error) { return f(tag, args) }

// HandlerRegistry maps an effect tag to the handler that serves it,
// mirroring the teacher's dispatcher-by-name registries. Unlike
// domain/capability.Registry it holds no mutex: Register and Lookup are
// not synchronized with each other.
type HandlerRegistry struct {
	handlers map[string]EffectHandler
}

// NewHandlerRegistry returns an empty HandlerRegistry.
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{handlers: make(map[string]EffectHandler)}
}

// Register installs or replaces the handler for tag.
func (r *HandlerRegistry) Register(tag string, h EffectHandler) {
	r.handlers[tag] = h
}

// Lookup returns the handler registered for tag, if any.
func (r *HandlerRegistry) Lookup(tag string) (EffectHandler, bool) {
	h, ok := r.handlers[tag]
	return h, ok
}

// Interpreter pairs a cancellation context with a handler registry. The
// Executor does not build or pass one: it invokes a handler with only the
// effect's tag and args.
type Interpreter struct {
	Ctx      context.Context
	Handlers *HandlerRegistry
}
