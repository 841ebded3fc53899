package zk

import (
	"context"
	"testing"

	"github.com/timewave-computer/causality/infrastructure/hash"
)

func sampleCircuit(t *testing.T) *Circuit {
	t.Helper()
	c, err := NewCompiler(hash.NewRegistry()).Compile([][]byte{[]byte("push 1")}, OptimizationStandard)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return c
}

func TestMockBackendGenerateThenVerify(t *testing.T) {
	b := NewMockBackend(nil)
	circuit := sampleCircuit(t)
	witness := sampleWitness()

	proof, err := b.GenerateProof(context.Background(), circuit, witness)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if proof.Backend != mockBackendName {
		t.Fatalf("unexpected backend label: %s", proof.Backend)
	}

	ok, err := b.VerifyProof(context.Background(), proof, proof.PublicInputs)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !ok {
		t.Fatal("expected proof to verify against its own public inputs")
	}
}

func TestMockBackendVerifyRejectsMismatchedPublicInputs(t *testing.T) {
	b := NewMockBackend(nil)
	circuit := sampleCircuit(t)
	witness := sampleWitness()

	proof, err := b.GenerateProof(context.Background(), circuit, witness)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	tampered := &PublicInputs{Values: []Value{IntValue(999)}}
	ok, err := b.VerifyProof(context.Background(), proof, tampered)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if ok {
		t.Fatal("expected verification to fail against tampered public inputs")
	}
}

func TestMockBackendAvailableAndName(t *testing.T) {
	b := NewMockBackend(nil)
	if !b.Available() {
		t.Fatal("expected mock backend to always be available")
	}
	if b.Name() != "mock" {
		t.Fatalf("unexpected name: %s", b.Name())
	}
}
