// Package logsegment implements the append-only log: LogEntry records,
// segment rotation policies, a bounded LRU segment cache, and a
// Postgres-backed store. Grounded on the teacher's persistence layer
// shape (infrastructure/database's repository pattern) generalized from
// Supabase-REST calls to sqlx/lib/pq, the concrete stack already present,
// unused, in the teacher's go.mod.
package logsegment

import (
	"time"

	"github.com/timewave-computer/causality/infrastructure/codec"
	"github.com/timewave-computer/causality/infrastructure/hash"
)

// Kind classifies a LogEntry's payload shape.
type Kind uint8

const (
	KindFact Kind = iota
	KindEffect
	KindResourceAccess
	KindSystemEvent
	KindOperation
	KindEvent
	KindCustom
)

func (k Kind) String() string {
	switch k {
	case KindFact:
		return "fact"
	case KindEffect:
		return "effect"
	case KindResourceAccess:
		return "resource_access"
	case KindSystemEvent:
		return "system_event"
	case KindOperation:
		return "operation"
	case KindEvent:
		return "event"
	case KindCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// LogEntry is one immutable, append-only record in the log.
type LogEntry struct {
	ID        hash.ContentId
	Timestamp time.Time
	Kind      Kind
	KindName  string // populated when Kind == KindCustom
	Payload   []byte
	TraceID   *string
	ParentID  *hash.ContentId
	Metadata  map[string]string
}

// NewLogEntry builds a LogEntry with id = content_hash(encoding with id
// field cleared).
func NewLogEntry(reg *hash.Registry, kind Kind, payload []byte, traceID *string, parentID *hash.ContentId, metadata map[string]string) (LogEntry, error) {
	if metadata == nil {
		metadata = map[string]string{}
	}
	e := LogEntry{
		Timestamp: time.Now().UTC(),
		Kind:      kind,
		Payload:   payload,
		TraceID:   traceID,
		ParentID:  parentID,
		Metadata:  metadata,
	}
	id, err := reg.ContentIdDefault(e.encode())
	if err != nil {
		return LogEntry{}, err
	}
	e.ID = id
	return e, nil
}

func (e LogEntry) encode() []byte {
	w := codec.NewWriter(64 + len(e.Payload))
	w.Uint64(uint64(e.Timestamp.UnixNano()))
	w.Uint8(uint8(e.Kind))
	w.String(e.KindName)
	w.Bytes_(e.Payload)
	w.Presence(e.TraceID != nil)
	if e.TraceID != nil {
		w.String(*e.TraceID)
	}
	w.Presence(e.ParentID != nil)
	if e.ParentID != nil {
		w.RawBytes(hash.Hash(*e.ParentID).EncodeBinary())
	}
	w.StringMap(e.Metadata)
	return w.Bytes()
}
