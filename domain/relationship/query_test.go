package relationship

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/timewave-computer/causality/infrastructure/cache"
)

func TestExecuteFindsDirectPath(t *testing.T) {
	tr := NewTracker()
	a, b := contentID(t, 1), contentID(t, 2)
	tr.Record(a, b, TypeDependency, DirectionBidirectional, nil)

	e := NewQueryExecutor(tr, cache.Config{MaxEntries: 10, TTL: time.Minute})
	target := b
	result := e.Execute(Query{Source: a, Target: &target, MaxDepth: 2, MaxResults: 10})

	require.Len(t, result.Paths, 1)
	require.Equal(t, []interface{}{a, b}, toAnySlice(result.Paths[0].Nodes))
}

func TestExecuteRespectsMaxDepth(t *testing.T) {
	tr := NewTracker()
	a, b, c := contentID(t, 1), contentID(t, 2), contentID(t, 3)
	tr.Record(a, b, TypeDependency, DirectionBidirectional, nil)
	tr.Record(b, c, TypeDependency, DirectionBidirectional, nil)

	e := NewQueryExecutor(tr, cache.Config{MaxEntries: 10, TTL: time.Minute})
	target := c
	result := e.Execute(Query{Source: a, Target: &target, MaxDepth: 1, MaxResults: 10})
	require.Empty(t, result.Paths)
}

func TestExecuteBreaksCycles(t *testing.T) {
	tr := NewTracker()
	a, b := contentID(t, 1), contentID(t, 2)
	tr.Record(a, b, TypeDependency, DirectionBidirectional, nil)
	tr.Record(b, a, TypeDependency, DirectionBidirectional, nil)

	e := NewQueryExecutor(tr, cache.Config{MaxEntries: 10, TTL: time.Minute})
	result := e.Execute(Query{Source: a, MaxDepth: 5, MaxResults: 10})
	require.NotEmpty(t, result.Paths)
}

func TestCacheInvalidatedOnNewRelationship(t *testing.T) {
	tr := NewTracker()
	a, b := contentID(t, 1), contentID(t, 2)
	e := NewQueryExecutor(tr, cache.Config{MaxEntries: 10, TTL: time.Minute})

	empty := e.Execute(Query{Source: a, MaxDepth: 2, MaxResults: 10})
	require.Empty(t, empty.Paths)

	tr.Record(a, b, TypeDependency, DirectionBidirectional, nil)

	refreshed := e.Execute(Query{Source: a, MaxDepth: 2, MaxResults: 10})
	require.NotEmpty(t, refreshed.Paths)
}

func TestMaxResultsTruncates(t *testing.T) {
	tr := NewTracker()
	a := contentID(t, 1)
	for i := byte(2); i < 10; i++ {
		tr.Record(a, contentID(t, i), TypeDependency, DirectionBidirectional, nil)
	}

	e := NewQueryExecutor(tr, cache.Config{MaxEntries: 10, TTL: time.Minute})
	result := e.Execute(Query{Source: a, MaxDepth: 1, MaxResults: 3})
	require.Len(t, result.Paths, 3)
	require.True(t, result.Truncated)
}

func toAnySlice[T any](in []T) []interface{} {
	out := make([]interface{}, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
