package relationship

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/timewave-computer/causality/infrastructure/hash"
)

func contentID(t *testing.T, seed byte) hash.ContentId {
	t.Helper()
	reg := hash.NewRegistry()
	id, err := reg.ContentIdDefault([]byte{seed})
	require.NoError(t, err)
	return id
}

func TestRecordIndexesBothEndpoints(t *testing.T) {
	tr := NewTracker()
	a, b := contentID(t, 1), contentID(t, 2)
	r := tr.Record(a, b, TypeDependency, DirectionBidirectional, nil)

	require.Len(t, tr.OfResource(a), 1)
	require.Len(t, tr.OfResource(b), 1)
	require.Equal(t, r.ID, tr.OfResource(a)[0].ID)
}

func TestDeleteRemovesFromAllIndexes(t *testing.T) {
	tr := NewTracker()
	a, b := contentID(t, 1), contentID(t, 2)
	r := tr.Record(a, b, TypeParentChild, DirectionParentToChild, nil)

	require.NoError(t, tr.Delete(r.ID))
	require.Empty(t, tr.OfResource(a))
	require.Empty(t, tr.OfResource(b))
}

func TestDeleteUnknownReturnsError(t *testing.T) {
	tr := NewTracker()
	err := tr.Delete(NewRelationshipID())
	require.Error(t, err)
}

func TestChildrenAndParents(t *testing.T) {
	tr := NewTracker()
	parent, child := contentID(t, 1), contentID(t, 2)
	tr.Record(parent, child, TypeParentChild, DirectionParentToChild, nil)

	children := tr.Children(parent)
	require.Contains(t, children, child)

	parents := tr.Parents(child)
	require.Contains(t, parents, parent)
}

func TestDependenciesAndDependents(t *testing.T) {
	tr := NewTracker()
	a, b := contentID(t, 1), contentID(t, 2)
	tr.Record(a, b, TypeDependency, DirectionBidirectional, nil)

	require.Contains(t, tr.Dependencies(a), b)
	require.Contains(t, tr.Dependents(b), a)
}

func TestInvalidateCallbackFiresOnRecordAndDelete(t *testing.T) {
	tr := NewTracker()
	var touched []hash.ContentId
	tr.OnInvalidate(func(id hash.ContentId) { touched = append(touched, id) })

	a, b := contentID(t, 1), contentID(t, 2)
	r := tr.Record(a, b, TypeDependency, DirectionBidirectional, nil)
	require.Len(t, touched, 2)

	require.NoError(t, tr.Delete(r.ID))
	require.Len(t, touched, 4)
}
