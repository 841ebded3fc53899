// Package hash implements Causality's content-addressing primitives: a
// fixed-width tagged digest (Hash), the ContentId identity built from it,
// and a runtime registry of pluggable hash algorithms (the source's
// hash-algorithm conditional compilation, redesigned per DESIGN.md as a
// runtime table).
package hash

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Algorithm identifies which digest function produced a Hash.
type Algorithm uint8

const (
	// Blake3 is the default strong hash. The concrete primitive backing
	// this tag is golang.org/x/crypto/blake2b (see DESIGN.md for why).
	Blake3 Algorithm = iota
	// Poseidon is reserved for a future arithmetic-circuit-friendly hash.
	Poseidon
)

func (a Algorithm) String() string {
	switch a {
	case Blake3:
		return "blake3"
	case Poseidon:
		return "poseidon"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(a))
	}
}

// ParseAlgorithm parses the lower-case wire name of an Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch s {
	case "blake3":
		return Blake3, nil
	case "poseidon":
		return Poseidon, nil
	default:
		return 0, fmt.Errorf("hash: unknown algorithm %q", s)
	}
}

// Size is the fixed digest width in bytes.
const Size = 32

// Hash is a fixed 32-byte digest plus an algorithm tag. Two hashes are
// equal iff both tag and bytes match.
type Hash struct {
	Algo  Algorithm
	Bytes [Size]byte
}

// New builds a Hash from a tag and a 32-byte digest.
func New(algo Algorithm, digest []byte) (Hash, error) {
	if len(digest) != Size {
		return Hash{}, fmt.Errorf("hash: digest must be %d bytes, got %d", Size, len(digest))
	}
	var h Hash
	h.Algo = algo
	copy(h.Bytes[:], digest)
	return h, nil
}

// Equal reports whether two hashes have the same algorithm and bytes.
func (h Hash) Equal(o Hash) bool {
	return h.Algo == o.Algo && h.Bytes == o.Bytes
}

// IsZero reports whether h is the zero value.
func (h Hash) IsZero() bool {
	return h.Algo == 0 && h.Bytes == [Size]byte{}
}

// String renders "<algo>:<lower-hex>".
func (h Hash) String() string {
	return fmt.Sprintf("%s:%s", h.Algo, hex.EncodeToString(h.Bytes[:]))
}

// MarshalText implements encoding.TextMarshaler.
func (h Hash) MarshalText() ([]byte, error) { return []byte(h.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Hash) UnmarshalText(text []byte) error {
	parsed, err := ParseHash(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// ParseHash parses "<algo>:<lower-hex>".
func ParseHash(s string) (Hash, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return Hash{}, fmt.Errorf("hash: malformed hash string %q", s)
	}
	algo, err := ParseAlgorithm(parts[0])
	if err != nil {
		return Hash{}, err
	}
	digest, err := hex.DecodeString(parts[1])
	if err != nil {
		return Hash{}, fmt.Errorf("hash: bad hex in %q: %w", s, err)
	}
	return New(algo, digest)
}

// EncodeBinary returns the 1-byte-tag + 32-byte-digest wire form.
func (h Hash) EncodeBinary() []byte {
	out := make([]byte, 1+Size)
	out[0] = byte(h.Algo)
	copy(out[1:], h.Bytes[:])
	return out
}

// DecodeBinary parses the 1-byte-tag + 32-byte-digest wire form.
func DecodeBinary(b []byte) (Hash, error) {
	if len(b) != 1+Size {
		return Hash{}, fmt.Errorf("hash: binary form must be %d bytes, got %d", 1+Size, len(b))
	}
	return New(Algorithm(b[0]), b[1:])
}

// ContentId is a Hash used as an identity.
type ContentId Hash

// String renders "cid:<algo>:<lower-hex>".
func (c ContentId) String() string {
	return fmt.Sprintf("cid:%s", Hash(c).String())
}

// MarshalText implements encoding.TextMarshaler.
func (c ContentId) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *ContentId) UnmarshalText(text []byte) error {
	s := string(text)
	if !strings.HasPrefix(s, "cid:") {
		return fmt.Errorf("hash: malformed content id %q", s)
	}
	h, err := ParseHash(strings.TrimPrefix(s, "cid:"))
	if err != nil {
		return err
	}
	*c = ContentId(h)
	return nil
}

// Equal reports whether two content ids are identical.
func (c ContentId) Equal(o ContentId) bool { return Hash(c).Equal(Hash(o)) }

// IsZero reports whether c is the zero value.
func (c ContentId) IsZero() bool { return Hash(c).IsZero() }

// ContentAddressed is the capability any durable Causality value provides:
// a canonical encoding, the derived content hash, and a verify predicate.
type ContentAddressed interface {
	CanonicalEncode() []byte
	ContentHash(reg *Registry) (Hash, error)
	Verify(reg *Registry) (bool, error)
}
