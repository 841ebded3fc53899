package hash

import (
	"fmt"
	"sync"

	"golang.org/x/crypto/blake2b"
)

// HashFn computes a 32-byte digest over arbitrary bytes.
type HashFn func(data []byte) ([Size]byte, error)

// Registry maps an Algorithm tag to its HashFn. The source conditionally
// compiled one hash implementation per build; Causality threads the
// choice through an explicit, per-SystemContext registry instead (§9).
type Registry struct {
	mu    sync.RWMutex
	funcs map[Algorithm]HashFn
}

// NewRegistry returns a Registry seeded with the default Blake3-tagged
// implementation (golang.org/x/crypto/blake2b, see DESIGN.md) and a
// Poseidon stub that reports ErrAlgorithmUnavailable until a circuit-
// friendly hash is wired in.
func NewRegistry() *Registry {
	r := &Registry{funcs: make(map[Algorithm]HashFn, 2)}
	r.Register(Blake3, blake2bHash)
	r.Register(Poseidon, unavailableHash)
	return r
}

// Register installs or replaces the HashFn for algo.
func (r *Registry) Register(algo Algorithm, fn HashFn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[algo] = fn
}

// Lookup returns the HashFn registered for algo, if any.
func (r *Registry) Lookup(algo Algorithm) (HashFn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[algo]
	return fn, ok
}

// ContentHash computes content_hash(bytes) under algo.
func (r *Registry) ContentHash(algo Algorithm, data []byte) (Hash, error) {
	fn, ok := r.Lookup(algo)
	if !ok {
		return Hash{}, fmt.Errorf("hash: no implementation registered for %s", algo)
	}
	digest, err := fn(data)
	if err != nil {
		return Hash{}, err
	}
	return Hash{Algo: algo, Bytes: digest}, nil
}

// ContentHashDefault computes content_hash(bytes) with the default
// (Blake3-tagged) algorithm, matching ContentId := content_hash(bytes).
func (r *Registry) ContentHashDefault(data []byte) (Hash, error) {
	return r.ContentHash(Blake3, data)
}

// ContentIdDefault computes a ContentId under the default algorithm.
func (r *Registry) ContentIdDefault(data []byte) (ContentId, error) {
	h, err := r.ContentHashDefault(data)
	if err != nil {
		return ContentId{}, err
	}
	return ContentId(h), nil
}

// ErrAlgorithmUnavailable is returned by stub algorithms that are
// registered as placeholders but not yet backed by a real primitive.
var ErrAlgorithmUnavailable = fmt.Errorf("hash: algorithm not available")

func unavailableHash([]byte) ([Size]byte, error) {
	return [Size]byte{}, ErrAlgorithmUnavailable
}

func blake2bHash(data []byte) ([Size]byte, error) {
	return blake2b.Sum256(data), nil
}

// XORMock is an intentionally weak, non-cryptographic nullifier mixer kept
// only for tests that need a fast, dependency-free stand-in. Production
// code must never call this: §9 fixes the cryptographic hash for
// `consume`. See resource.DeriveNullifier.
func XORMock(a, b [Size]byte) [Size]byte {
	var out [Size]byte
	for i := range out {
		out[i] = a[i] ^ b[i]
	}
	return out
}
