// Package codec implements the canonical byte encoding used throughout
// Causality for content hashing and proof bindings. Encoding is total and
// injective up to value equality: two semantically different values never
// produce the same byte string, and decoding an encoded value always
// recovers it.
package codec

import (
	"encoding/binary"
	"fmt"
	"sort"
)

// Writer accumulates a canonical byte encoding. Zero value is usable.
type Writer struct {
	buf []byte
}

// NewWriter returns a Writer with a pre-sized backing buffer.
func NewWriter(sizeHint int) *Writer {
	return &Writer{buf: make([]byte, 0, sizeHint)}
}

// Bytes returns the accumulated encoding.
func (w *Writer) Bytes() []byte { return w.buf }

// Uint8 writes a single byte.
func (w *Writer) Uint8(v uint8) { w.buf = append(w.buf, v) }

// Bool writes 0x00 or 0x01.
func (w *Writer) Bool(v bool) {
	if v {
		w.buf = append(w.buf, 0x01)
	} else {
		w.buf = append(w.buf, 0x00)
	}
}

// Uint32 writes a little-endian u32.
func (w *Writer) Uint32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// Uint64 writes a little-endian u64.
func (w *Writer) Uint64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// Uint128 writes a little-endian 128-bit unsigned integer given as hi/lo u64.
func (w *Writer) Uint128(hi, lo uint64) {
	w.Uint64(lo)
	w.Uint64(hi)
}

// Bytes_ writes a u32-length-prefixed byte slice.
func (w *Writer) Bytes_(v []byte) {
	w.Uint32(uint32(len(v)))
	w.buf = append(w.buf, v...)
}

// RawBytes writes raw bytes with no length prefix (fixed-width fields).
func (w *Writer) RawBytes(v []byte) {
	w.buf = append(w.buf, v...)
}

// String writes a u32-byte-length-prefixed UTF-8 string.
func (w *Writer) String(v string) {
	w.Uint32(uint32(len(v)))
	w.buf = append(w.buf, v...)
}

// Presence writes the one-byte optional presence tag.
func (w *Writer) Presence(present bool) { w.Bool(present) }

// Tag writes a single-byte tagged-union discriminant.
func (w *Writer) Tag(v uint8) { w.Uint8(v) }

// StringMap writes a map<string,string> sorted by canonical key bytes.
func (w *Writer) StringMap(m map[string]string) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	w.Uint32(uint32(len(keys)))
	for _, k := range keys {
		w.String(k)
		w.String(m[k])
	}
}

// StringUint64Map writes a map<string,uint64> sorted by canonical key bytes.
func (w *Writer) StringUint64Map(m map[string]uint64) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	w.Uint32(uint32(len(keys)))
	for _, k := range keys {
		w.String(k)
		w.Uint64(m[k])
	}
}

// StringSet writes a set<string> in byte-lexicographic order.
func (w *Writer) StringSet(s map[string]struct{}) {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	w.Uint32(uint32(len(keys)))
	for _, k := range keys {
		w.String(k)
	}
}

// Reader decodes a canonical byte encoding produced by Writer.
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps buf for canonical decoding.
func NewReader(buf []byte) *Reader { return &Reader{buf: buf} }

// Remaining reports how many bytes are left to consume.
func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

func (r *Reader) need(n int) error {
	if r.Remaining() < n {
		return fmt.Errorf("codec: short read, need %d have %d", n, r.Remaining())
	}
	return nil
}

// Uint8 reads a single byte.
func (r *Reader) Uint8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

// Bool reads a boolean byte.
func (r *Reader) Bool() (bool, error) {
	v, err := r.Uint8()
	if err != nil {
		return false, err
	}
	switch v {
	case 0x00:
		return false, nil
	case 0x01:
		return true, nil
	default:
		return false, fmt.Errorf("codec: invalid bool byte 0x%02x", v)
	}
}

// Uint32 reads a little-endian u32.
func (r *Reader) Uint32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

// Uint64 reads a little-endian u64.
func (r *Reader) Uint64() (uint64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(r.buf[r.pos:])
	r.pos += 8
	return v, nil
}

// Uint128 reads a little-endian 128-bit unsigned integer as hi/lo u64.
func (r *Reader) Uint128() (hi, lo uint64, err error) {
	lo, err = r.Uint64()
	if err != nil {
		return 0, 0, err
	}
	hi, err = r.Uint64()
	if err != nil {
		return 0, 0, err
	}
	return hi, lo, nil
}

// Bytes reads a u32-length-prefixed byte slice.
func (r *Reader) Bytes() ([]byte, error) {
	n, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	if err := r.need(int(n)); err != nil {
		return nil, err
	}
	v := make([]byte, n)
	copy(v, r.buf[r.pos:r.pos+int(n)])
	r.pos += int(n)
	return v, nil
}

// RawBytes reads exactly n raw bytes.
func (r *Reader) RawBytes(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	v := make([]byte, n)
	copy(v, r.buf[r.pos:r.pos+n])
	r.pos += n
	return v, nil
}

// String reads a u32-byte-length-prefixed UTF-8 string.
func (r *Reader) String() (string, error) {
	b, err := r.Bytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Presence reads the one-byte optional presence tag.
func (r *Reader) Presence() (bool, error) { return r.Bool() }

// Tag reads a single-byte tagged-union discriminant.
func (r *Reader) Tag() (uint8, error) { return r.Uint8() }

// StringMap reads a map<string,string>.
func (r *Reader) StringMap() (map[string]string, error) {
	n, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	m := make(map[string]string, n)
	for i := uint32(0); i < n; i++ {
		k, err := r.String()
		if err != nil {
			return nil, err
		}
		v, err := r.String()
		if err != nil {
			return nil, err
		}
		m[k] = v
	}
	return m, nil
}

// StringUint64Map reads a map<string,uint64>.
func (r *Reader) StringUint64Map() (map[string]uint64, error) {
	n, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	m := make(map[string]uint64, n)
	for i := uint32(0); i < n; i++ {
		k, err := r.String()
		if err != nil {
			return nil, err
		}
		v, err := r.Uint64()
		if err != nil {
			return nil, err
		}
		m[k] = v
	}
	return m, nil
}

// StringSet reads a set<string>.
func (r *Reader) StringSet() (map[string]struct{}, error) {
	n, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	s := make(map[string]struct{}, n)
	for i := uint32(0); i < n; i++ {
		k, err := r.String()
		if err != nil {
			return nil, err
		}
		s[k] = struct{}{}
	}
	return s, nil
}

// Encodable is any value with a canonical byte encoding.
type Encodable interface {
	EncodeCanonical(w *Writer)
}

// Encode runs v's canonical encoder into a fresh buffer.
func Encode(v Encodable) []byte {
	w := NewWriter(128)
	v.EncodeCanonical(w)
	return w.Bytes()
}
