package resource

import "github.com/timewave-computer/causality/infrastructure/hash"

// Op identifies a lifecycle operation on a ResourceRegister.
type Op uint8

const (
	OpActivate Op = iota
	OpLock
	OpUnlock
	OpFreeze
	OpUnfreeze
	OpMarkPending
	OpConsume
	OpArchive
	OpUnarchive
)

func (o Op) String() string {
	switch o {
	case OpActivate:
		return "activate"
	case OpLock:
		return "lock"
	case OpUnlock:
		return "unlock"
	case OpFreeze:
		return "freeze"
	case OpUnfreeze:
		return "unfreeze"
	case OpMarkPending:
		return "mark_pending"
	case OpConsume:
		return "consume"
	case OpArchive:
		return "archive"
	case OpUnarchive:
		return "unarchive"
	default:
		return "unknown"
	}
}

// transitions is the legal-transition table: state -> op -> next state.
// Any (state, op) pair absent here is illegal.
var transitions = map[State]map[Op]State{
	StateInitial: {
		OpActivate:    StateActive,
		OpMarkPending: StatePending,
	},
	StateActive: {
		OpLock:        StateLocked,
		OpFreeze:      StateFrozen,
		OpMarkPending: StatePending,
		OpConsume:     StateConsumed,
		OpArchive:     StateArchived,
	},
	StatePending: {
		OpActivate: StateActive,
		OpConsume:  StateConsumed,
	},
	StateLocked: {
		OpActivate: StateActive,
		OpUnlock:   StateActive,
		OpConsume:  StateConsumed,
	},
	StateFrozen: {
		OpActivate: StateActive,
		OpUnfreeze: StateActive,
		OpConsume:  StateConsumed,
	},
	StateConsumed: {},
	StateArchived: {
		OpActivate:  StateActive,
		OpUnarchive: StateActive,
	},
}

// apply runs op against r's current state, mutating it in place on
// success. On failure r is left unchanged (P3).
func (r *ResourceRegister) apply(op Op) error {
	next, ok := transitions[r.State][op]
	if !ok {
		return ErrInvalidState("illegal transition " + op.String() + " from " + r.State.String())
	}
	r.State = next
	return nil
}

// Activate transitions Initial|Pending|Locked|Frozen|Archived -> Active.
func (r *ResourceRegister) Activate() error { return r.apply(OpActivate) }

// Lock transitions Active -> Locked.
func (r *ResourceRegister) Lock() error { return r.apply(OpLock) }

// Unlock transitions Locked -> Active.
func (r *ResourceRegister) Unlock() error { return r.apply(OpUnlock) }

// Freeze transitions Active -> Frozen.
func (r *ResourceRegister) Freeze() error { return r.apply(OpFreeze) }

// Unfreeze transitions Frozen -> Active.
func (r *ResourceRegister) Unfreeze() error { return r.apply(OpUnfreeze) }

// MarkPending transitions Initial|Active -> Pending.
func (r *ResourceRegister) MarkPending() error { return r.apply(OpMarkPending) }

// Archive transitions Active -> Archived.
func (r *ResourceRegister) Archive() error { return r.apply(OpArchive) }

// Unarchive transitions Archived -> Active.
func (r *ResourceRegister) Unarchive() error { return r.apply(OpUnarchive) }

// Consume transitions Active|Pending|Locked|Frozen -> Consumed, deriving
// and returning the nullifier (I3). Requires NullifierKey to be set.
func (r *ResourceRegister) Consume(reg *hash.Registry) (hash.Hash, error) {
	if r.NullifierKey == nil {
		return hash.Hash{}, ErrInvalidState("no nullifier key")
	}
	nullifier, err := DeriveNullifier(reg, r.NullifierKey, r.ID)
	if err != nil {
		return hash.Hash{}, err
	}
	if err := r.apply(OpConsume); err != nil {
		return hash.Hash{}, err
	}
	return nullifier, nil
}
