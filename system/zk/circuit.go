// Package zk implements the circuit/witness/proof backend contract
// (§4.4): compiling an instruction stream into a circuit, extracting a
// witness from an execution trace, deriving public inputs, and the
// pluggable ZkBackend interface with a deterministic mock implementation
// for tests. Grounded on the teacher's pluggable-backend registries
// (services/* dispatcher-by-name pattern) and its zap-based structured
// logging in the confidential-compute/TEE packages.
package zk

import (
	"github.com/timewave-computer/causality/infrastructure/codec"
	"github.com/timewave-computer/causality/infrastructure/hash"
)

// OptimizationLevel tunes how aggressively a CircuitCompiler rewrites
// the instruction stream.
type OptimizationLevel uint8

const (
	OptimizationNone OptimizationLevel = iota
	OptimizationStandard
	OptimizationAggressive
)

func (o OptimizationLevel) String() string {
	switch o {
	case OptimizationNone:
		return "none"
	case OptimizationStandard:
		return "standard"
	case OptimizationAggressive:
		return "aggressive"
	default:
		return "unknown"
	}
}

// CircuitId identifies a compiled circuit by the content hash of its
// canonical form.
type CircuitId hash.ContentId

// Circuit is a compiled representation of an instruction sequence.
type Circuit struct {
	ID           CircuitId
	Instructions [][]byte
	Level        OptimizationLevel
}

// CircuitCompiler turns an instruction slice into a Circuit.
type CircuitCompiler interface {
	Compile(instructions [][]byte, level OptimizationLevel) (*Circuit, error)
}

// Compiler is the reference CircuitCompiler: the actual arithmetization
// of instructions into a real proving-system circuit is out of scope
// (§1 excludes concrete cryptographic primitives), so compilation here
// is the identity transform with circuit-id derivation and optimization
// bookkeeping — the part of §4.4 this engine actually owns.
type Compiler struct {
	reg *hash.Registry
}

// NewCompiler builds a Compiler using reg for circuit-id derivation.
func NewCompiler(reg *hash.Registry) *Compiler {
	return &Compiler{reg: reg}
}

// Fingerprint returns the canonical instruction-slice fingerprint used
// as the circuit cache key, independent of optimization level.
func Fingerprint(instructions [][]byte) string {
	w := codec.NewWriter(64)
	w.Uint32(uint32(len(instructions)))
	for _, ins := range instructions {
		w.Bytes_(ins)
	}
	return string(w.Bytes())
}

// Compile derives a CircuitId from instructions and level and returns
// the Circuit.
func (c *Compiler) Compile(instructions [][]byte, level OptimizationLevel) (*Circuit, error) {
	w := codec.NewWriter(64)
	w.RawBytes([]byte(Fingerprint(instructions)))
	w.Uint8(uint8(level))
	id, err := c.reg.ContentIdDefault(w.Bytes())
	if err != nil {
		return nil, err
	}
	return &Circuit{ID: CircuitId(id), Instructions: instructions, Level: level}, nil
}
