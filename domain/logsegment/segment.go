package logsegment

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// SegmentID identifies a Segment.
type SegmentID string

// NewSegmentID generates a fresh SegmentID.
func NewSegmentID() SegmentID {
	return SegmentID(uuid.New().String())
}

// Segment is one chunk of the append-only log: an ordered run of entries
// between rotation boundaries.
type Segment struct {
	ID        SegmentID
	CreatedAt time.Time
	ReadOnly  bool
	Entries   []LogEntry
}

// NewSegment returns a fresh active (not read-only) segment.
func NewSegment() *Segment {
	return &Segment{ID: NewSegmentID(), CreatedAt: time.Now().UTC()}
}

// Append adds an entry to an active segment.
func (s *Segment) Append(e LogEntry) {
	s.Entries = append(s.Entries, e)
}

// Bounds returns the segment's [first, last] timestamp interval. The zero
// value is returned for an empty segment.
func (s *Segment) Bounds() (first, last time.Time) {
	if len(s.Entries) == 0 {
		return time.Time{}, time.Time{}
	}
	first, last = s.Entries[0].Timestamp, s.Entries[0].Timestamp
	for _, e := range s.Entries[1:] {
		if e.Timestamp.Before(first) {
			first = e.Timestamp
		}
		if e.Timestamp.After(last) {
			last = e.Timestamp
		}
	}
	return first, last
}

// Intersects reports whether s's bounds intersect [start, end].
func (s *Segment) Intersects(start, end time.Time) bool {
	if len(s.Entries) == 0 {
		return false
	}
	first, last := s.Bounds()
	return !last.Before(start) && !first.After(end)
}

// Size returns the total byte size of the segment's entry payloads, used
// by the bytes-per-segment rotation policy.
func (s *Segment) Size() int {
	total := 0
	for _, e := range s.Entries {
		total += len(e.Payload)
	}
	return total
}

// Merge combines segments into a single new read-only segment with
// entries sorted by timestamp. The inputs are not mutated.
func Merge(segments []*Segment) *Segment {
	merged := NewSegment()
	merged.ReadOnly = true
	for _, s := range segments {
		merged.Entries = append(merged.Entries, s.Entries...)
	}
	sort.Slice(merged.Entries, func(i, j int) bool {
		return merged.Entries[i].Timestamp.Before(merged.Entries[j].Timestamp)
	})
	return merged
}
