package zk

import (
	"fmt"

	"github.com/timewave-computer/causality/infrastructure/cache"
	"github.com/timewave-computer/causality/infrastructure/metrics"
)

// CircuitCache LRU-caches compiled circuits by instruction fingerprint,
// tracking hit/miss counts as required by §4.4.
type CircuitCache struct {
	compiler CircuitCompiler
	cache    *cache.Cache[string, *Circuit]
}

// NewCircuitCache builds a CircuitCache delegating misses to compiler.
func NewCircuitCache(compiler CircuitCompiler, cfg cache.Config) *CircuitCache {
	return &CircuitCache{compiler: compiler, cache: cache.New[string, *Circuit](cfg, nil)}
}

// GetOrCompile returns the cached circuit for instructions+level if
// present, otherwise compiles, caches and returns it.
func (c *CircuitCache) GetOrCompile(instructions [][]byte, level OptimizationLevel) (*Circuit, error) {
	key := fmt.Sprintf("%s:%d", Fingerprint(instructions), level)
	if circuit, ok := c.cache.Get(key); ok {
		metrics.CircuitCacheOps.WithLabelValues("hit").Inc()
		return circuit, nil
	}
	metrics.CircuitCacheOps.WithLabelValues("miss").Inc()

	circuit, err := c.compiler.Compile(instructions, level)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, circuit)
	return circuit, nil
}

// Stats exposes the underlying cache's hit/miss/eviction counters.
func (c *CircuitCache) Stats() cache.Stats {
	return c.cache.Stats()
}

// Compile satisfies CircuitCompiler by delegating to GetOrCompile at the
// given level, letting a CircuitCache stand in anywhere a bare
// Compiler would, transparently caching compiles driven through it.
func (c *CircuitCache) Compile(instructions [][]byte, level OptimizationLevel) (*Circuit, error) {
	return c.GetOrCompile(instructions, level)
}
