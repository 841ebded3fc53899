// Package coordinator implements the cross-domain ZK coordinator (§4.5):
// partitioning an instruction stream across domains, generating a
// per-domain proof for each partition, and composing them into a single
// proof bound together by a SHA-256 consistency digest. Grounded on
// domain/capability.Registry's map+mutex convention for the domain
// backend table and on the teacher's zap-based structured logging for
// the proof pipeline.
package coordinator

import (
	"fmt"
	"sort"

	"github.com/timewave-computer/causality/domain/effect"
)

// Instruction is one step of the instruction stream the executor
// produces while draining a TEG; it carries enough of the originating
// effect to classify it for partitioning and the raw bytes fed to a
// CircuitCompiler.
type Instruction struct {
	Index int
	Kind  effect.Kind
	Bytes []byte
}

// PartitionStrategy assigns each instruction in a stream to a domain.
type PartitionStrategy interface {
	Partition(instructions []Instruction) map[string][]Instruction
}

// ByEffectType classifies each instruction by its operational kind:
// resource operations, computation, control flow, or parallel
// combinators.
type ByEffectType struct{}

func (ByEffectType) Partition(instructions []Instruction) map[string][]Instruction {
	out := map[string][]Instruction{}
	for _, ins := range instructions {
		domain := classifyEffectKind(ins.Kind)
		out[domain] = append(out[domain], ins)
	}
	return out
}

func classifyEffectKind(k effect.Kind) string {
	switch k {
	case effect.KindPerform:
		return "resource"
	case effect.KindPure:
		return "computation"
	case effect.KindParallel:
		return "parallel"
	default:
		return "control"
	}
}

// ByComplexity splits the stream into a "simple" first half and a
// "complex" second half by instruction count.
type ByComplexity struct{}

func (ByComplexity) Partition(instructions []Instruction) map[string][]Instruction {
	mid := len(instructions) / 2
	out := map[string][]Instruction{}
	out["simple"] = append(out["simple"], instructions[:mid]...)
	out["complex"] = append(out["complex"], instructions[mid:]...)
	return out
}

// ByDataFlow round-robins instructions into K lanes named flow_0..flow_{K-1}.
type ByDataFlow struct {
	K int
}

func (s ByDataFlow) Partition(instructions []Instruction) map[string][]Instruction {
	k := s.K
	if k <= 0 {
		k = 3
	}
	out := map[string][]Instruction{}
	for i, ins := range instructions {
		domain := fmt.Sprintf("flow_%d", i%k)
		out[domain] = append(out[domain], ins)
	}
	return out
}

// Custom assigns instructions explicitly by index; indices missing from
// Mapping fall back to "default".
type Custom struct {
	Mapping map[int]string
}

func (s Custom) Partition(instructions []Instruction) map[string][]Instruction {
	out := map[string][]Instruction{}
	for _, ins := range instructions {
		domain, ok := s.Mapping[ins.Index]
		if !ok {
			domain = "default"
		}
		out[domain] = append(out[domain], ins)
	}
	return out
}

// ByCircuitSize routes instructions above Threshold bytes to "large" and
// the rest to "small".
type ByCircuitSize struct {
	Threshold int
}

func (s ByCircuitSize) Partition(instructions []Instruction) map[string][]Instruction {
	out := map[string][]Instruction{}
	for _, ins := range instructions {
		domain := "small"
		if len(ins.Bytes) > s.Threshold {
			domain = "large"
		}
		out[domain] = append(out[domain], ins)
	}
	return out
}

// SortedDomains returns the keys of a partition map in lexical order,
// the iteration order §4.5's consistency binding requires.
func SortedDomains(partitions map[string][]Instruction) []string {
	domains := make([]string, 0, len(partitions))
	for d := range partitions {
		domains = append(domains, d)
	}
	sort.Strings(domains)
	return domains
}
