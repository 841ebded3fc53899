package resource

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/timewave-computer/causality/infrastructure/hash"
)

func newTestRegister(t *testing.T) (*hash.Registry, *ResourceRegister) {
	t.Helper()
	reg := hash.NewRegistry()
	r, err := New(reg, Logic{Kind: LogicFungible}, "USDC", big.NewInt(100), Storage{Kind: StorageFullyOnChain, Visibility: "public"}, []byte("payload"))
	require.NoError(t, err)
	return reg, r
}

func TestNewRegisterIDMatchesCanonicalEncoding(t *testing.T) {
	reg, r := newTestRegister(t)
	ok, err := r.Verify(reg)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestSameFieldsProduceSameID(t *testing.T) {
	reg, _ := newTestRegister(t)
	storage := Storage{Kind: StorageFullyOnChain, Visibility: "public"}
	r1, err := New(reg, Logic{Kind: LogicFungible}, "USDC", big.NewInt(100), storage, []byte("payload"))
	require.NoError(t, err)
	r2, err := New(reg, Logic{Kind: LogicFungible}, "USDC", big.NewInt(999), storage, []byte("payload"))
	require.NoError(t, err)
	// Quantity is excluded from identity, so two registers differing only
	// in quantity share an id.
	require.True(t, r1.ID.Equal(r2.ID))
}

func TestActivateThenLockThenUnlock(t *testing.T) {
	_, r := newTestRegister(t)
	require.NoError(t, r.Activate())
	require.Equal(t, StateActive, r.State)
	require.NoError(t, r.Lock())
	require.Equal(t, StateLocked, r.State)
	require.NoError(t, r.Unlock())
	require.Equal(t, StateActive, r.State)
}

func TestIllegalTransitionLeavesStateUnchanged(t *testing.T) {
	_, r := newTestRegister(t)
	require.Equal(t, StateInitial, r.State)
	err := r.Lock()
	require.Error(t, err)
	require.Equal(t, StateInitial, r.State)
}

func TestConsumeRequiresNullifierKey(t *testing.T) {
	reg, r := newTestRegister(t)
	require.NoError(t, r.Activate())
	_, err := r.Consume(reg)
	require.Error(t, err)
	require.Equal(t, StateActive, r.State)
}

func TestConsumeProducesNullifierAndTerminalState(t *testing.T) {
	reg, r := newTestRegister(t)
	require.NoError(t, r.Activate())
	var key [32]byte
	key[0] = 0x42
	r.NullifierKey = &key

	n, err := r.Consume(reg)
	require.NoError(t, err)
	require.False(t, n.IsZero())
	require.Equal(t, StateConsumed, r.State)

	_, err = r.Consume(reg)
	require.Error(t, err)
}

func TestDistinctRegistersProduceDistinctNullifiers(t *testing.T) {
	reg, r1 := newTestRegister(t)
	_, r2 := newTestRegister(t)
	r2.Contents = []byte("different")
	id2, err := reg.ContentIdDefault(r2.CanonicalEncode())
	require.NoError(t, err)
	r2.ID = id2

	require.NoError(t, r1.Activate())
	require.NoError(t, r2.Activate())
	var key [32]byte
	key[0] = 7
	r1.NullifierKey = &key
	r2.NullifierKey = &key

	n1, err := r1.Consume(reg)
	require.NoError(t, err)
	n2, err := r2.Consume(reg)
	require.NoError(t, err)
	require.False(t, n1.Equal(n2))
}

func TestSetQuantityOnlyLegalInActive(t *testing.T) {
	_, r := newTestRegister(t)
	require.Error(t, r.SetQuantity(big.NewInt(5)))
	require.NoError(t, r.Activate())
	require.NoError(t, r.SetQuantity(big.NewInt(5)))
}

func TestSetContentsBumpsVersion(t *testing.T) {
	_, r := newTestRegister(t)
	require.NoError(t, r.Activate())
	require.Equal(t, uint64(0), r.Version)
	require.NoError(t, r.SetContents([]byte("new")))
	require.Equal(t, uint64(1), r.Version)
}

func TestArchiveAndUnarchive(t *testing.T) {
	_, r := newTestRegister(t)
	require.NoError(t, r.Activate())
	require.NoError(t, r.Archive())
	require.Equal(t, StateArchived, r.State)
	require.NoError(t, r.Unarchive())
	require.Equal(t, StateActive, r.State)
}

func TestStoreRoundTrip(t *testing.T) {
	_, r := newTestRegister(t)
	s := NewStore()
	s.Put(r)

	got, err := s.Get(r.ID)
	require.NoError(t, err)
	require.Same(t, r, got)
	require.Equal(t, 1, s.Len())

	s.Delete(r.ID)
	_, err = s.Get(r.ID)
	require.Error(t, err)
}
