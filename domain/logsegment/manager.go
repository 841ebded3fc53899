package logsegment

import (
	"context"
	"sync"
	"time"

	"github.com/timewave-computer/causality/infrastructure/cache"
)

// RotationPolicy triggers a rotation when ANY configured threshold is
// crossed: entries-per-segment, bytes-per-segment, time-since-last-
// rotation, or a custom predicate.
type RotationPolicy struct {
	MaxEntries     int
	MaxBytes       int
	MaxAge         time.Duration
	ShouldRotate   func(active *Segment) bool
}

func (p RotationPolicy) triggered(active *Segment, lastRotation time.Time) bool {
	if p.MaxEntries > 0 && len(active.Entries) >= p.MaxEntries {
		return true
	}
	if p.MaxBytes > 0 && active.Size() >= p.MaxBytes {
		return true
	}
	if p.MaxAge > 0 && time.Since(lastRotation) >= p.MaxAge {
		return true
	}
	if p.ShouldRotate != nil && p.ShouldRotate(active) {
		return true
	}
	return false
}

// Manager owns the active segment, a bounded LRU cache of read-only
// segments, and a durable Store for segments evicted from the cache or
// never loaded into it.
type Manager struct {
	mu           sync.Mutex
	policy       RotationPolicy
	active       *Segment
	lastRotation time.Time
	readOnly     *cache.Cache[SegmentID, *Segment]
	index        []Index
	store        Store
}

// NewManager constructs a Manager with the given rotation policy, cache
// sizing and durable store.
func NewManager(policy RotationPolicy, cacheCfg cache.Config, store Store) *Manager {
	return &Manager{
		policy:       policy,
		active:       NewSegment(),
		lastRotation: time.Now(),
		readOnly:     cache.New[SegmentID, *Segment](cacheCfg, nil),
		store:        store,
	}
}

// Append adds an entry to the active segment, rotating first if the
// policy requires it.
func (m *Manager) Append(ctx context.Context, e LogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.policy.triggered(m.active, m.lastRotation) {
		if err := m.rotateLocked(ctx); err != nil {
			return err
		}
	}
	m.active.Append(e)
	return nil
}

// Flush persists the active segment without rotating it.
func (m *Manager) Flush(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.SaveSegment(ctx, m.active)
}

// Rotate forces rotation of the active segment regardless of policy.
func (m *Manager) Rotate(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rotateLocked(ctx)
}

func (m *Manager) rotateLocked(ctx context.Context) error {
	m.active.ReadOnly = true
	if err := m.store.SaveSegment(ctx, m.active); err != nil {
		return err
	}
	first, last := m.active.Bounds()
	m.index = append(m.index, Index{ID: m.active.ID, First: first, Last: last, ReadOnly: true})
	m.readOnly.Set(m.active.ID, m.active)

	m.active = NewSegment()
	m.lastRotation = time.Now()
	return nil
}

// EntriesInRange returns every entry from every segment (cached, active,
// or reloaded from the store) whose interval intersects [start, end].
func (m *Manager) EntriesInRange(ctx context.Context, start, end time.Time) ([]LogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []LogEntry
	if m.active.Intersects(start, end) {
		out = append(out, m.active.Entries...)
	}

	for _, idx := range m.index {
		if idx.Last.Before(start) || idx.First.After(end) {
			continue
		}
		seg, err := m.loadSegmentLocked(ctx, idx.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, seg.Entries...)
	}
	return out, nil
}

func (m *Manager) loadSegmentLocked(ctx context.Context, id SegmentID) (*Segment, error) {
	if seg, ok := m.readOnly.Get(id); ok {
		return seg, nil
	}
	seg, err := m.store.LoadSegment(ctx, id)
	if err != nil {
		return nil, err
	}
	m.readOnly.Set(id, seg)
	return seg, nil
}

// MergeSegments merges the named read-only segments into a single new
// read-only segment, persists it, and removes the originals from the
// index and store.
func (m *Manager) MergeSegments(ctx context.Context, ids []SegmentID) (*Segment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	segments := make([]*Segment, 0, len(ids))
	for _, id := range ids {
		seg, err := m.loadSegmentLocked(ctx, id)
		if err != nil {
			return nil, err
		}
		segments = append(segments, seg)
	}

	merged := Merge(segments)
	if err := m.store.SaveSegment(ctx, merged); err != nil {
		return nil, err
	}
	first, last := merged.Bounds()

	removed := make(map[SegmentID]struct{}, len(ids))
	for _, id := range ids {
		removed[id] = struct{}{}
		m.readOnly.Remove(id)
		_ = m.store.DeleteSegment(ctx, id)
	}
	newIndex := m.index[:0]
	for _, idx := range m.index {
		if _, ok := removed[idx.ID]; !ok {
			newIndex = append(newIndex, idx)
		}
	}
	m.index = append(newIndex, Index{ID: merged.ID, First: first, Last: last, ReadOnly: true})
	m.readOnly.Set(merged.ID, merged)

	return merged, nil
}
