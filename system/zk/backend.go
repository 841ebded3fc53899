package zk

import (
	"context"

	"github.com/timewave-computer/causality/infrastructure/hash"
)

// Proof is a backend-produced proof bound to a circuit and a public
// input sequence.
type Proof struct {
	CircuitID    CircuitId
	Backend      string
	Data         []byte
	PublicInputs *PublicInputs
}

// ZkBackend is the pluggable proving-system contract: compiled circuit
// plus witness in, Proof out; a Proof plus the public inputs it claims
// back in, bool out. Real backends (Groth16, Plonk, ...) are identified
// by Name and registered at runtime rather than compiled in, per §1's
// exclusion of concrete cryptographic primitives.
type ZkBackend interface {
	// Name identifies this backend for registry lookup and metrics labels.
	Name() string
	// Available reports whether this backend can currently generate and
	// verify proofs (e.g. a remote prover is reachable).
	Available() bool
	// GenerateProof produces a Proof for circuit given witness.
	GenerateProof(ctx context.Context, circuit *Circuit, witness *Witness) (*Proof, error)
	// VerifyProof checks a Proof against the public inputs it claims.
	VerifyProof(ctx context.Context, proof *Proof, publicInputs *PublicInputs) (bool, error)
}

// CircuitIDBytes is the fixed-width encoding of a CircuitId, used when a
// Proof needs to be bound into a larger consistency digest (§4.5).
func CircuitIDBytes(id CircuitId) []byte {
	return hash.Hash(id).EncodeBinary()
}
