package zk

import (
	"testing"

	"github.com/timewave-computer/causality/infrastructure/cache"
	"github.com/timewave-computer/causality/infrastructure/hash"
)

type countingCompiler struct {
	calls int
	inner *Compiler
}

func (c *countingCompiler) Compile(instructions [][]byte, level OptimizationLevel) (*Circuit, error) {
	c.calls++
	return c.inner.Compile(instructions, level)
}

func TestCircuitCacheHitsAvoidRecompile(t *testing.T) {
	compiler := &countingCompiler{inner: NewCompiler(hash.NewRegistry())}
	c := NewCircuitCache(compiler, cache.DefaultConfig())

	instructions := [][]byte{[]byte("push 1")}

	first, err := c.GetOrCompile(instructions, OptimizationStandard)
	if err != nil {
		t.Fatalf("get or compile: %v", err)
	}
	second, err := c.GetOrCompile(instructions, OptimizationStandard)
	if err != nil {
		t.Fatalf("get or compile: %v", err)
	}

	if compiler.calls != 1 {
		t.Fatalf("expected exactly one compile call, got %d", compiler.calls)
	}
	if first.ID != second.ID {
		t.Fatal("expected cached circuit to match the freshly compiled one")
	}

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestCircuitCacheDistinguishesOptimizationLevel(t *testing.T) {
	compiler := &countingCompiler{inner: NewCompiler(hash.NewRegistry())}
	c := NewCircuitCache(compiler, cache.DefaultConfig())

	instructions := [][]byte{[]byte("push 1")}
	if _, err := c.GetOrCompile(instructions, OptimizationNone); err != nil {
		t.Fatalf("get or compile: %v", err)
	}
	if _, err := c.GetOrCompile(instructions, OptimizationAggressive); err != nil {
		t.Fatalf("get or compile: %v", err)
	}

	if compiler.calls != 2 {
		t.Fatalf("expected a separate compile per optimization level, got %d calls", compiler.calls)
	}
}
