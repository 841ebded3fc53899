package errors

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorStringIncludesKindAndMessage(t *testing.T) {
	err := New(KindValidation, "bad input")
	require.True(t, strings.HasPrefix(err.Error(), "[Validation] bad input"))
}

func TestWrapPreservesCauseChain(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(KindBoundary, "external call failed", cause)
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.LogMessage(), "root cause")
	require.NotContains(t, err.UserMessage(), "root cause")
}

func TestContextBoundedEntries(t *testing.T) {
	err := New(KindSystem, "overloaded context")
	for i := 0; i < maxContextEntries+4; i++ {
		err.WithContext(string(rune('a'+i)), "v")
	}
	require.LessOrEqual(t, len(err.Context), maxContextEntries)
}

func TestContextTruncatesLongValues(t *testing.T) {
	err := New(KindSystem, "long value")
	long := strings.Repeat("x", maxContextValueLen*2)
	err.WithContext("field", long)
	require.Len(t, err.Context["field"], maxContextValueLen)
}

func TestIsAndAs(t *testing.T) {
	err := ResourceNotFound("cid:blake3:deadbeef")
	require.True(t, Is(err, KindResourceNotFound))
	extracted, ok := As(err)
	require.True(t, ok)
	require.Equal(t, "cid:blake3:deadbeef", extracted.Context["id"])
}

func TestPerKindConstructors(t *testing.T) {
	require.Equal(t, KindResourceInvalidState, ResourceInvalidState("no nullifier key").Kind)
	require.Equal(t, KindNodeTimeout, NodeTimeout("node-1").Kind)
	require.Equal(t, KindConsistency, Consistency("binding mismatch").Kind)
}
