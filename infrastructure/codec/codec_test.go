package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriterReaderRoundTrip(t *testing.T) {
	w := NewWriter(0)
	w.Uint8(7)
	w.Bool(true)
	w.Uint32(1234)
	w.Uint64(9999999999)
	w.Bytes_([]byte("hello"))
	w.String("world")
	w.Presence(true)
	w.Tag(3)
	w.StringMap(map[string]string{"b": "2", "a": "1"})

	r := NewReader(w.Bytes())

	u8, err := r.Uint8()
	require.NoError(t, err)
	require.Equal(t, uint8(7), u8)

	b, err := r.Bool()
	require.NoError(t, err)
	require.True(t, b)

	u32, err := r.Uint32()
	require.NoError(t, err)
	require.Equal(t, uint32(1234), u32)

	u64, err := r.Uint64()
	require.NoError(t, err)
	require.Equal(t, uint64(9999999999), u64)

	bs, err := r.Bytes()
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), bs)

	s, err := r.String()
	require.NoError(t, err)
	require.Equal(t, "world", s)

	p, err := r.Presence()
	require.NoError(t, err)
	require.True(t, p)

	tag, err := r.Tag()
	require.NoError(t, err)
	require.Equal(t, uint8(3), tag)

	m, err := r.StringMap()
	require.NoError(t, err)
	require.Equal(t, map[string]string{"a": "1", "b": "2"}, m)

	require.Equal(t, 0, r.Remaining())
}

func TestStringMapCanonicalOrder(t *testing.T) {
	w1 := NewWriter(0)
	w1.StringMap(map[string]string{"z": "1", "a": "2"})

	w2 := NewWriter(0)
	w2.StringMap(map[string]string{"a": "2", "z": "1"})

	require.Equal(t, w1.Bytes(), w2.Bytes(), "map encoding must not depend on Go map iteration order")
}

func TestShortReadErrors(t *testing.T) {
	r := NewReader([]byte{0x01})
	_, err := r.Uint32()
	require.Error(t, err)
}
