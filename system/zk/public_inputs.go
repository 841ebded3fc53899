package zk

import (
	"fmt"

	"github.com/timewave-computer/causality/infrastructure/codec"
	causalityerrors "github.com/timewave-computer/causality/infrastructure/errors"
	"github.com/timewave-computer/causality/infrastructure/hash"
)

// ValueKind tags a public-input Value's variant.
type ValueKind uint8

const (
	ValueInt ValueKind = iota
	ValueBool
	ValueResource
	ValueTensor
	// ValueLambda is never revealed as a concrete value; only its presence
	// is recorded via a sentinel marker.
	ValueLambda
)

// Value is a single public input revealed to a proof's verifier: integers
// and booleans are revealed directly, resource identifiers by their
// bytes, tensors as a length followed by their elements. Lambda values
// are never revealed, only a sentinel marking that one occurred.
type Value struct {
	Kind     ValueKind
	Int      int64
	Bool     bool
	Resource hash.ContentId
	Tensor   []Value
}

// IntValue wraps an integer as a public input.
func IntValue(v int64) Value { return Value{Kind: ValueInt, Int: v} }

// BoolValue wraps a boolean as a public input.
func BoolValue(v bool) Value { return Value{Kind: ValueBool, Bool: v} }

// ResourceValue wraps a resource identifier as a public input.
func ResourceValue(id hash.ContentId) Value { return Value{Kind: ValueResource, Resource: id} }

// TensorValue wraps a sequence of values as a public input.
func TensorValue(elems []Value) Value { return Value{Kind: ValueTensor, Tensor: elems} }

// LambdaSentinel marks that a lambda occurred without revealing it.
func LambdaSentinel() Value { return Value{Kind: ValueLambda} }

func (v Value) encode(w *codec.Writer) {
	w.Tag(uint8(v.Kind))
	switch v.Kind {
	case ValueInt:
		w.Uint64(uint64(v.Int))
	case ValueBool:
		w.Bool(v.Bool)
	case ValueResource:
		w.RawBytes(hash.Hash(v.Resource).EncodeBinary())
	case ValueTensor:
		w.Uint32(uint32(len(v.Tensor)))
		for _, elem := range v.Tensor {
			elem.encode(w)
		}
	case ValueLambda:
		// sentinel only, no payload
	}
}

// PublicInputs is the canonically-encoded, ordered sequence of public
// inputs a Backend binds a Proof to.
type PublicInputs struct {
	Values []Value
}

// CanonicalEncode returns the deterministic byte encoding of the public
// input sequence, used both as the verifier-facing payload and as input
// to any consistency binding (§4.5).
func (p *PublicInputs) CanonicalEncode() []byte {
	w := codec.NewWriter(128)
	w.Uint32(uint32(len(p.Values)))
	for _, v := range p.Values {
		v.encode(w)
	}
	return w.Bytes()
}

// DerivePublicInputs extracts the public-input sequence from a witness's
// final-register state for the given register ids, in the order given.
// Lambda-typed registers are represented with a sentinel rather than a
// revealed value. regTypes maps register id to the ValueKind a caller
// expects it to hold; tensors and resources decode from the register's
// raw bytes accordingly.
func DerivePublicInputs(w *Witness, order []uint32, regTypes map[uint32]ValueKind) (*PublicInputs, error) {
	values := make([]Value, 0, len(order))
	for _, regID := range order {
		kind := regTypes[regID]
		if kind == ValueLambda {
			values = append(values, LambdaSentinel())
			continue
		}
		raw, ok := w.Registers[regID]
		if !ok {
			return nil, causalityerrors.Validation("register_id", fmt.Sprintf("register %d not present in witness", regID))
		}
		v, err := decodeRegisterValue(kind, raw)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return &PublicInputs{Values: values}, nil
}

func decodeRegisterValue(kind ValueKind, raw []byte) (Value, error) {
	r := codec.NewReader(raw)
	switch kind {
	case ValueInt:
		n, err := r.Uint64()
		if err != nil {
			return Value{}, err
		}
		return IntValue(int64(n)), nil
	case ValueBool:
		b, err := r.Bool()
		if err != nil {
			return Value{}, err
		}
		return BoolValue(b), nil
	case ValueResource:
		b, err := r.RawBytes(1 + hash.Size)
		if err != nil {
			return Value{}, err
		}
		h, err := hash.DecodeBinary(b)
		if err != nil {
			return Value{}, err
		}
		return ResourceValue(hash.ContentId(h)), nil
	case ValueTensor:
		n, err := r.Uint32()
		if err != nil {
			return Value{}, err
		}
		elems := make([]Value, 0, n)
		for i := uint32(0); i < n; i++ {
			elem, err := r.Uint64()
			if err != nil {
				return Value{}, err
			}
			elems = append(elems, IntValue(int64(elem)))
		}
		return TensorValue(elems), nil
	default:
		return LambdaSentinel(), nil
	}
}
