package coordinator

import (
	"context"
	"testing"

	"github.com/timewave-computer/causality/domain/effect"
	"github.com/timewave-computer/causality/infrastructure/codec"
	"github.com/timewave-computer/causality/infrastructure/hash"
	"github.com/timewave-computer/causality/system/zk"
)

func buildTestWitness(seed byte) *zk.Witness {
	w := codec.NewWriter(8)
	w.Uint64(uint64(seed))
	return zk.NewWitness(1, 0, nil, nil, map[uint32][]byte{0: w.Bytes()})
}

func testCoordinator() *Coordinator {
	compiler := zk.NewCompiler(hash.NewRegistry())
	backend := zk.NewMockBackend(nil)
	lookup := func(domain string) (zk.ZkBackend, bool) { return backend, true }
	buildWitness := func(domain string, instructions []Instruction, global *zk.Witness) (*zk.Witness, error) {
		return buildTestWitness(byte(len(instructions))), nil
	}
	return NewCoordinator(nil, compiler, lookup, buildWitness)
}

func TestGenerateCompositeThenVerify(t *testing.T) {
	c := testCoordinator()
	instructions := []Instruction{
		{Index: 0, Kind: effect.KindPerform, Bytes: []byte("perform-a")},
		{Index: 1, Kind: effect.KindPure, Bytes: []byte("pure-b")},
	}

	composite, err := c.GenerateComposite(context.Background(), "run-1", instructions, ByEffectType{}, nil, 1700000000)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(composite.DomainProofs) != 2 {
		t.Fatalf("expected 2 domain proofs, got %d", len(composite.DomainProofs))
	}

	ok, err := c.VerifyComposite(context.Background(), composite, nil)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !ok {
		t.Fatal("expected composite proof to verify")
	}
}

func TestVerifyCompositeDetectsTamperedBinding(t *testing.T) {
	c := testCoordinator()
	instructions := []Instruction{
		{Index: 0, Kind: effect.KindPerform, Bytes: []byte("perform-a")},
	}

	composite, err := c.GenerateComposite(context.Background(), "run-1", instructions, ByEffectType{}, nil, 1700000000)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	composite.ConsistencyProof[0] ^= 0xFF

	ok, err := c.VerifyComposite(context.Background(), composite, nil)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if ok {
		t.Fatal("expected tampered consistency binding to fail verification")
	}
}

func TestGenerateCompositeFailsFastOnMissingBackend(t *testing.T) {
	compiler := zk.NewCompiler(hash.NewRegistry())
	lookup := func(domain string) (zk.ZkBackend, bool) { return nil, false }
	buildWitness := func(domain string, instructions []Instruction, global *zk.Witness) (*zk.Witness, error) {
		return buildTestWitness(0), nil
	}
	c := NewCoordinator(nil, compiler, lookup, buildWitness)

	instructions := []Instruction{{Index: 0, Kind: effect.KindPerform, Bytes: []byte("a")}}
	if _, err := c.GenerateComposite(context.Background(), "run-1", instructions, ByEffectType{}, nil, 0); err == nil {
		t.Fatal("expected missing backend to be a fatal error")
	}
}

func TestVerifyCompositeRunsGlobalConstraints(t *testing.T) {
	c := testCoordinator()
	instructions := []Instruction{
		{Index: 0, Kind: effect.KindPerform, Bytes: []byte("perform-a")},
	}
	composite, err := c.GenerateComposite(context.Background(), "run-1", instructions, ByEffectType{}, nil, 0)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	alwaysFails := func(outputs map[string]*zk.PublicInputs) bool { return false }
	ok, err := c.VerifyComposite(context.Background(), composite, []GlobalConstraint{alwaysFails})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if ok {
		t.Fatal("expected a failing global constraint to fail verification")
	}
}
