// Package resource implements the ResourceRegister value+cell abstraction:
// a content-addressed, state-machine-governed unit that carries fungible
// or non-fungible quantity, cross-domain provenance and pluggable storage
// visibility. Grounded on the teacher's domain model packages (plain
// exported structs, string-typed status enums, doc comments naming the
// field's counterpart) generalized from a Neo wallet/job model to a
// content-addressed register.
package resource

import (
	"math/big"
	"sort"

	"github.com/timewave-computer/causality/infrastructure/codec"
	"github.com/timewave-computer/causality/infrastructure/hash"
)

// LogicKind identifies the resource's fungibility/logic category.
type LogicKind uint8

const (
	LogicFungible LogicKind = iota
	LogicNonFungible
	LogicCapability
	LogicData
	LogicCustom
)

func (k LogicKind) String() string {
	switch k {
	case LogicFungible:
		return "fungible"
	case LogicNonFungible:
		return "non_fungible"
	case LogicCapability:
		return "capability"
	case LogicData:
		return "data"
	case LogicCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// Logic is the resource's logic tag, with an associated name when Kind is
// LogicCustom.
type Logic struct {
	Kind       LogicKind
	CustomName string
}

// State is a ResourceRegister's position in the lifecycle state machine.
type State uint8

const (
	StateInitial State = iota
	StateActive
	StateLocked
	StateFrozen
	StatePending
	StateConsumed
	StateArchived
)

func (s State) String() string {
	switch s {
	case StateInitial:
		return "initial"
	case StateActive:
		return "active"
	case StateLocked:
		return "locked"
	case StateFrozen:
		return "frozen"
	case StatePending:
		return "pending"
	case StateConsumed:
		return "consumed"
	case StateArchived:
		return "archived"
	default:
		return "unknown"
	}
}

// StorageKind selects where a register's contents physically live.
type StorageKind uint8

const (
	StorageFullyOnChain StorageKind = iota
	StorageCommitmentBased
	StorageHybrid
)

// Storage describes a register's physical storage model. Only the fields
// relevant to Kind are meaningful.
type Storage struct {
	Kind          StorageKind
	Visibility    string   // FullyOnChain
	Commitment    []byte   // CommitmentBased, Hybrid
	Nullifier     []byte   // CommitmentBased (pre-computed commitment-side nullifier, distinct from consume-time nullifier)
	FieldsOnChain []string // Hybrid
}

// TimeSnapshot maps a domain name to the block height at which a register
// was last observed in that domain.
type TimeSnapshot map[string]uint64

// ResourceRegister is the unified value+cell abstraction: identity,
// fungible/non-fungible accounting, lifecycle state and cross-domain
// provenance for one register.
type ResourceRegister struct {
	ID           hash.ContentId
	Logic        Logic
	DomainTag    string
	Quantity     *big.Int
	Metadata     map[string]string
	State        State
	NullifierKey *[32]byte
	Controller   *string
	ObservedAt   TimeSnapshot
	Storage      Storage
	Contents     []byte
	Version      uint64
}

// identityFields are encoded into the content hash; State, Version,
// Quantity and ObservedAt are excluded because they mutate during the
// lifecycle of a register while its identity stays fixed — see DESIGN.md.
func (r *ResourceRegister) encodeIdentityFields(w *codec.Writer) {
	w.Uint8(uint8(r.Logic.Kind))
	w.String(r.Logic.CustomName)
	w.String(r.DomainTag)
	w.StringMap(r.Metadata)
	w.Presence(r.NullifierKey != nil)
	if r.NullifierKey != nil {
		w.RawBytes(r.NullifierKey[:])
	}
	w.Presence(r.Controller != nil)
	if r.Controller != nil {
		w.String(*r.Controller)
	}
	w.Uint8(uint8(r.Storage.Kind))
	w.String(r.Storage.Visibility)
	w.Bytes_(r.Storage.Commitment)
	w.Bytes_(r.Storage.Nullifier)
	fields := append([]string(nil), r.Storage.FieldsOnChain...)
	sort.Strings(fields)
	w.Uint32(uint32(len(fields)))
	for _, f := range fields {
		w.String(f)
	}
	w.Bytes_(r.Contents)
}

// CanonicalEncode implements hash.ContentAddressed, encoding the fields
// that determine identity (I1).
func (r *ResourceRegister) CanonicalEncode() []byte {
	w := codec.NewWriter(128 + len(r.Contents))
	r.encodeIdentityFields(w)
	return w.Bytes()
}

// ContentHash derives the register's identity hash from its canonical
// encoding using reg's default algorithm.
func (r *ResourceRegister) ContentHash(reg *hash.Registry) (hash.Hash, error) {
	return reg.ContentHashDefault(r.CanonicalEncode())
}

// Verify recomputes the content hash and compares it against r.ID (I1).
func (r *ResourceRegister) Verify(reg *hash.Registry) (bool, error) {
	h, err := r.ContentHash(reg)
	if err != nil {
		return false, err
	}
	return hash.ContentId(h).Equal(r.ID), nil
}

// New constructs a ResourceRegister in StateInitial with id derived from
// its identity fields.
func New(reg *hash.Registry, logic Logic, domainTag string, quantity *big.Int, storage Storage, contents []byte) (*ResourceRegister, error) {
	if quantity == nil {
		quantity = big.NewInt(0)
	}
	r := &ResourceRegister{
		Logic:      logic,
		DomainTag:  domainTag,
		Quantity:   quantity,
		Metadata:   map[string]string{},
		State:      StateInitial,
		ObservedAt: TimeSnapshot{},
		Storage:    storage,
		Contents:   contents,
		Version:    0,
	}
	id, err := reg.ContentIdDefault(r.CanonicalEncode())
	if err != nil {
		return nil, err
	}
	r.ID = id
	return r, nil
}

// SetContents replaces a register's contents, bumping Version (I5). Only
// legal while the register is Active.
func (r *ResourceRegister) SetContents(contents []byte) error {
	if r.State != StateActive {
		return ErrInvalidState("contents may only change in active state")
	}
	r.Contents = contents
	r.Version++
	return nil
}

// SetQuantity mutates quantity, legal only in StateActive (I4).
func (r *ResourceRegister) SetQuantity(q *big.Int) error {
	if r.State != StateActive {
		return ErrInvalidState("quantity may only change in active state")
	}
	r.Quantity = q
	return nil
}

// Observe records the block height at which this register was seen in
// domain.
func (r *ResourceRegister) Observe(domain string, blockHeight uint64) {
	if r.ObservedAt == nil {
		r.ObservedAt = TimeSnapshot{}
	}
	r.ObservedAt[domain] = blockHeight
}
