// Package relationship implements the typed directed-relationship graph
// between resources: recording, indexing and bounded-BFS path queries
// across domains. Grounded on the teacher's domain model texture
// (domain/gasbank, domain/automation) generalized from account/job
// records to a graph edge type, and on the teacher's in-memory
// map+mutex index pattern used by its schedulers.
package relationship

import (
	"time"

	"github.com/google/uuid"

	"github.com/timewave-computer/causality/infrastructure/hash"
)

// RelationshipID identifies a Relationship. Relationships are not
// content-addressed — the same two resources may be linked more than
// once, at different times, so identity comes from a generated id rather
// than from content (google/uuid, matching the domain/logsegment segment
// id convention).
type RelationshipID string

// NewRelationshipID generates a fresh RelationshipID.
func NewRelationshipID() RelationshipID {
	return RelationshipID(uuid.New().String())
}

// Type classifies a Relationship.
type Type uint8

const (
	TypeParentChild Type = iota
	TypeDependency
	TypeCustom
)

func (t Type) String() string {
	switch t {
	case TypeParentChild:
		return "parent_child"
	case TypeDependency:
		return "dependency"
	case TypeCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// Direction describes which endpoint is semantically "first".
type Direction uint8

const (
	DirectionParentToChild Direction = iota
	DirectionChildToParent
	DirectionBidirectional
)

func (d Direction) String() string {
	switch d {
	case DirectionParentToChild:
		return "parent_to_child"
	case DirectionChildToParent:
		return "child_to_parent"
	case DirectionBidirectional:
		return "bidirectional"
	default:
		return "unknown"
	}
}

// Relationship is a typed, directed edge between two resources.
type Relationship struct {
	ID         RelationshipID
	SourceID   hash.ContentId
	TargetID   hash.ContentId
	Type       Type
	TypeName   string // populated when Type == TypeCustom
	Direction  Direction
	CreatedAt  time.Time
	Tx         *string
	Metadata   map[string]string
}

// Endpoints returns the relationship's two endpoints in (source, target)
// order, regardless of Direction.
func (r *Relationship) Endpoints() (hash.ContentId, hash.ContentId) {
	return r.SourceID, r.TargetID
}

// Mentions reports whether id is either endpoint of r.
func (r *Relationship) Mentions(id hash.ContentId) bool {
	return r.SourceID.Equal(id) || r.TargetID.Equal(id)
}
