package relationship

import (
	"sync"
	"time"

	"github.com/timewave-computer/causality/infrastructure/errors"
	"github.com/timewave-computer/causality/infrastructure/hash"
)

// Tracker records relationships and maintains the two mandated indexes —
// by endpoint and by type — kept consistent under one mutex the way the
// teacher's Scheduler guards its trigger maps.
type Tracker struct {
	mu          sync.RWMutex
	byID        map[RelationshipID]*Relationship
	byEndpoint  map[hash.ContentId]map[RelationshipID]struct{}
	byType      map[Type]map[RelationshipID]struct{}
	invalidated []func(touched hash.ContentId)
}

// NewTracker returns an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{
		byID:       make(map[RelationshipID]*Relationship),
		byEndpoint: make(map[hash.ContentId]map[RelationshipID]struct{}),
		byType:     make(map[Type]map[RelationshipID]struct{}),
	}
}

// OnInvalidate registers a callback invoked with the touched resource id
// whenever a relationship mentioning it is recorded or deleted. The
// relationship query cache subscribes through this to implement its
// write-invalidation rule.
func (t *Tracker) OnInvalidate(fn func(touched hash.ContentId)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.invalidated = append(t.invalidated, fn)
}

func (t *Tracker) notify(id hash.ContentId) {
	for _, fn := range t.invalidated {
		fn(id)
	}
}

// Record creates and indexes a new Relationship.
func (t *Tracker) Record(source, target hash.ContentId, typ Type, direction Direction, tx *string) *Relationship {
	r := &Relationship{
		ID:        NewRelationshipID(),
		SourceID:  source,
		TargetID:  target,
		Type:      typ,
		Direction: direction,
		CreatedAt: time.Now(),
		Tx:        tx,
		Metadata:  map[string]string{},
	}

	t.mu.Lock()
	t.byID[r.ID] = r
	t.indexEndpoint(source, r.ID)
	t.indexEndpoint(target, r.ID)
	t.indexType(typ, r.ID)
	t.mu.Unlock()

	t.notify(source)
	t.notify(target)
	return r
}

func (t *Tracker) indexEndpoint(id hash.ContentId, rid RelationshipID) {
	set, ok := t.byEndpoint[id]
	if !ok {
		set = make(map[RelationshipID]struct{})
		t.byEndpoint[id] = set
	}
	set[rid] = struct{}{}
}

func (t *Tracker) indexType(typ Type, rid RelationshipID) {
	set, ok := t.byType[typ]
	if !ok {
		set = make(map[RelationshipID]struct{})
		t.byType[typ] = set
	}
	set[rid] = struct{}{}
}

// Delete removes a relationship from every index atomically.
func (t *Tracker) Delete(id RelationshipID) error {
	t.mu.Lock()
	r, ok := t.byID[id]
	if !ok {
		t.mu.Unlock()
		return errors.New(errors.KindResourceNotFound, "relationship not found").WithContext("relationship_id", string(id))
	}
	delete(t.byID, id)
	delete(t.byEndpoint[r.SourceID], id)
	delete(t.byEndpoint[r.TargetID], id)
	delete(t.byType[r.Type], id)
	t.mu.Unlock()

	t.notify(r.SourceID)
	t.notify(r.TargetID)
	return nil
}

// OfResource returns every relationship mentioning id.
func (t *Tracker) OfResource(id hash.ContentId) []*Relationship {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*Relationship, 0, len(t.byEndpoint[id]))
	for rid := range t.byEndpoint[id] {
		out = append(out, t.byID[rid])
	}
	return out
}

// OfResourceByType returns every relationship mentioning id with the
// given type.
func (t *Tracker) OfResourceByType(id hash.ContentId, typ Type) []*Relationship {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*Relationship, 0)
	for rid := range t.byEndpoint[id] {
		r := t.byID[rid]
		if r.Type == typ {
			out = append(out, r)
		}
	}
	return out
}

// Related returns the set of resource ids connected to id by a
// relationship of typ, optionally filtered by direction (nil = any).
func (t *Tracker) Related(id hash.ContentId, typ Type, direction *Direction) map[hash.ContentId]struct{} {
	out := make(map[hash.ContentId]struct{})
	for _, r := range t.OfResourceByType(id, typ) {
		if direction != nil && r.Direction != *direction {
			continue
		}
		if r.SourceID.Equal(id) {
			out[r.TargetID] = struct{}{}
		} else if r.TargetID.Equal(id) {
			out[r.SourceID] = struct{}{}
		}
	}
	return out
}

// Children returns resources id is a parent of.
func (t *Tracker) Children(id hash.ContentId) map[hash.ContentId]struct{} {
	return t.parentChild(id, true)
}

// Parents returns resources id is a child of.
func (t *Tracker) Parents(id hash.ContentId) map[hash.ContentId]struct{} {
	return t.parentChild(id, false)
}

// parentChild uses each ParentChild relationship's Direction to decide
// which endpoint is the parent, and returns id's children (or parents).
func (t *Tracker) parentChild(id hash.ContentId, wantChildren bool) map[hash.ContentId]struct{} {
	out := make(map[hash.ContentId]struct{})
	for _, r := range t.OfResourceByType(id, TypeParentChild) {
		parent, child := r.SourceID, r.TargetID
		if r.Direction == DirectionChildToParent {
			parent, child = child, parent
		}
		if wantChildren && parent.Equal(id) {
			out[child] = struct{}{}
		} else if !wantChildren && child.Equal(id) {
			out[parent] = struct{}{}
		}
	}
	return out
}

// Dependencies returns resources linked to id by a Dependency
// relationship, in either direction and of any Direction value.
func (t *Tracker) Dependencies(id hash.ContentId) map[hash.ContentId]struct{} {
	return t.Related(id, TypeDependency, nil)
}

// Dependents returns the same set as Dependencies: the tracker does not
// distinguish which endpoint of a Dependency relationship depends on the
// other.
func (t *Tracker) Dependents(id hash.ContentId) map[hash.ContentId]struct{} {
	return t.Related(id, TypeDependency, nil)
}
