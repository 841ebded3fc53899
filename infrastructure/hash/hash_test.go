package hash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashStringRoundTrip(t *testing.T) {
	reg := NewRegistry()
	h, err := reg.ContentHashDefault([]byte("payload"))
	require.NoError(t, err)

	s := h.String()
	require.Contains(t, s, "blake3:")

	parsed, err := ParseHash(s)
	require.NoError(t, err)
	require.True(t, h.Equal(parsed))
}

func TestContentIdPrefix(t *testing.T) {
	reg := NewRegistry()
	cid, err := reg.ContentIdDefault([]byte("x"))
	require.NoError(t, err)
	require.Contains(t, cid.String(), "cid:blake3:")
}

// P1: decode(encode(v)) == v and content_hash is stable across runs.
func TestHashStability(t *testing.T) {
	reg := NewRegistry()
	h1, err := reg.ContentHashDefault([]byte("stable payload"))
	require.NoError(t, err)
	h2, err := reg.ContentHashDefault([]byte("stable payload"))
	require.NoError(t, err)
	require.True(t, h1.Equal(h2))

	bin := h1.EncodeBinary()
	decoded, err := DecodeBinary(bin)
	require.NoError(t, err)
	require.True(t, h1.Equal(decoded))
}

// P2: flipping any byte of the input changes the hash.
func TestHashSensitivity(t *testing.T) {
	reg := NewRegistry()
	base := []byte("sensitive payload 0123456789")
	h1, err := reg.ContentHashDefault(base)
	require.NoError(t, err)

	for i := range base {
		mutated := append([]byte(nil), base...)
		mutated[i] ^= 0x01
		h2, err := reg.ContentHashDefault(mutated)
		require.NoError(t, err)
		require.Falsef(t, h1.Equal(h2), "flipping byte %d did not change the hash", i)
	}
}

func TestPoseidonUnavailableByDefault(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.ContentHash(Poseidon, []byte("x"))
	require.ErrorIs(t, err, ErrAlgorithmUnavailable)
}

func TestRegisterOverride(t *testing.T) {
	reg := NewRegistry()
	reg.Register(Poseidon, blake2bHash)
	h, err := reg.ContentHash(Poseidon, []byte("x"))
	require.NoError(t, err)
	require.Equal(t, Poseidon, h.Algo)
}
