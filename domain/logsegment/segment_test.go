package logsegment

import (
	"testing"
	"time"

	"github.com/timewave-computer/causality/infrastructure/hash"
)

func mustEntry(t *testing.T, payload string) LogEntry {
	t.Helper()
	e, err := NewLogEntry(hash.NewRegistry(), KindFact, []byte(payload), nil, nil, nil)
	if err != nil {
		t.Fatalf("new entry: %v", err)
	}
	return e
}

func TestSegmentBoundsEmpty(t *testing.T) {
	s := NewSegment()
	first, last := s.Bounds()
	if !first.IsZero() || !last.IsZero() {
		t.Fatal("expected zero bounds for empty segment")
	}
}

func TestSegmentBoundsTracksMinMax(t *testing.T) {
	s := NewSegment()
	e1 := mustEntry(t, "a")
	e1.Timestamp = time.Unix(100, 0)
	e2 := mustEntry(t, "b")
	e2.Timestamp = time.Unix(50, 0)
	e3 := mustEntry(t, "c")
	e3.Timestamp = time.Unix(200, 0)
	s.Append(e1)
	s.Append(e2)
	s.Append(e3)

	first, last := s.Bounds()
	if !first.Equal(time.Unix(50, 0)) || !last.Equal(time.Unix(200, 0)) {
		t.Fatalf("unexpected bounds: %v %v", first, last)
	}
}

func TestSegmentIntersects(t *testing.T) {
	s := NewSegment()
	e := mustEntry(t, "a")
	e.Timestamp = time.Unix(100, 0)
	s.Append(e)

	if !s.Intersects(time.Unix(50, 0), time.Unix(150, 0)) {
		t.Fatal("expected intersection")
	}
	if s.Intersects(time.Unix(200, 0), time.Unix(300, 0)) {
		t.Fatal("expected no intersection")
	}
}

func TestSegmentSizeSumsPayloads(t *testing.T) {
	s := NewSegment()
	s.Append(mustEntry(t, "abc"))
	s.Append(mustEntry(t, "de"))
	if s.Size() != 5 {
		t.Fatalf("expected size 5, got %d", s.Size())
	}
}

func TestMergeSortsByTimestampAndLeavesInputsUnmutated(t *testing.T) {
	s1 := NewSegment()
	e1 := mustEntry(t, "a")
	e1.Timestamp = time.Unix(200, 0)
	s1.Append(e1)

	s2 := NewSegment()
	e2 := mustEntry(t, "b")
	e2.Timestamp = time.Unix(100, 0)
	s2.Append(e2)

	merged := Merge([]*Segment{s1, s2})
	if !merged.ReadOnly {
		t.Fatal("merged segment should be read-only")
	}
	if len(merged.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(merged.Entries))
	}
	if !merged.Entries[0].Timestamp.Equal(time.Unix(100, 0)) {
		t.Fatal("expected earliest entry first after merge sort")
	}
	if len(s1.Entries) != 1 || len(s2.Entries) != 1 {
		t.Fatal("merge mutated an input segment")
	}
}
