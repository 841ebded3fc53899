package zk

import (
	"bytes"
	"context"
	"crypto/sha256"
	"time"

	"go.uber.org/zap"

	causalityerrors "github.com/timewave-computer/causality/infrastructure/errors"
	"github.com/timewave-computer/causality/infrastructure/hash"
	"github.com/timewave-computer/causality/infrastructure/metrics"
)

const mockBackendName = "mock"

// MockBackend is a deterministic ZkBackend stand-in for tests and local
// development: a "proof" is the SHA-256 digest of the circuit id, the
// witness encoding and the derived public inputs. Verification does not
// recompute the digest: it checks that the proof's recorded public inputs
// match the ones presented. §4.4 requires at least
// one backend of this shape be registered by default.
type MockBackend struct {
	log *zap.Logger
}

// NewMockBackend builds a MockBackend logging through log, or a no-op
// logger if nil.
func NewMockBackend(log *zap.Logger) *MockBackend {
	if log == nil {
		log = zap.NewNop()
	}
	return &MockBackend{log: log}
}

func (b *MockBackend) Name() string { return mockBackendName }

func (b *MockBackend) Available() bool { return true }

func (b *MockBackend) GenerateProof(ctx context.Context, circuit *Circuit, witness *Witness) (*Proof, error) {
	start := time.Now()
	defer func() {
		metrics.ProofDuration.WithLabelValues("mock", mockBackendName).Observe(time.Since(start).Seconds())
	}()

	if circuit == nil || witness == nil {
		return nil, causalityerrors.ProofGeneration("mock backend requires a circuit and witness", nil)
	}

	publicInputs, err := DerivePublicInputs(witness, sortedRegisterIDs(witness.Registers), inferRegisterKinds(witness.Registers))
	if err != nil {
		return nil, causalityerrors.ProofGeneration("deriving public inputs", err)
	}

	digest := digestProof(circuit.ID, witness.Encode(), publicInputs.CanonicalEncode())

	b.log.Debug("mock proof generated",
		zap.String("circuit_id", hash.ContentId(circuit.ID).String()),
		zap.Int("trace_len", len(witness.Trace)))

	return &Proof{CircuitID: circuit.ID, Backend: mockBackendName, Data: digest[:], PublicInputs: publicInputs}, nil
}

func (b *MockBackend) VerifyProof(ctx context.Context, proof *Proof, publicInputs *PublicInputs) (bool, error) {
	if proof == nil || publicInputs == nil {
		return false, causalityerrors.ProofVerification("mock backend requires a proof and public inputs")
	}

	// The mock backend has no witness at verification time; it trusts the
	// public inputs supplied by the caller and only checks that the
	// proof's own recorded public inputs (captured at generation time)
	// match what the verifier is now presenting.
	ok := proof.Backend == mockBackendName &&
		bytes.Equal(proof.PublicInputs.CanonicalEncode(), publicInputs.CanonicalEncode())

	result := "fail"
	if ok {
		result = "pass"
	}
	metrics.ProofVerifications.WithLabelValues("domain", result).Inc()

	b.log.Debug("mock proof verified",
		zap.String("circuit_id", hash.ContentId(proof.CircuitID).String()),
		zap.Bool("ok", ok))

	return ok, nil
}

func digestProof(circuitID CircuitId, witnessBytes, publicInputBytes []byte) [sha256.Size]byte {
	h := sha256.New()
	h.Write(CircuitIDBytes(circuitID))
	h.Write(witnessBytes)
	h.Write(publicInputBytes)
	var out [sha256.Size]byte
	copy(out[:], h.Sum(nil))
	return out
}

func sortedRegisterIDs(registers map[uint32][]byte) []uint32 {
	ids := make([]uint32, 0, len(registers))
	for id := range registers {
		ids = append(ids, id)
	}
	sortUint32s(ids)
	return ids
}

// inferRegisterKinds treats every register as a raw integer for the
// mock backend, since the witness carries no separate type tag per
// register; real backends pair a witness with the circuit's own
// register type map instead.
func inferRegisterKinds(registers map[uint32][]byte) map[uint32]ValueKind {
	kinds := make(map[uint32]ValueKind, len(registers))
	for id := range registers {
		kinds[id] = ValueInt
	}
	return kinds
}
