package logsegment

import (
	"testing"

	"github.com/timewave-computer/causality/infrastructure/hash"
)

func TestNewLogEntryIDStable(t *testing.T) {
	reg := hash.NewRegistry()
	trace := "trace-1"
	e1, err := NewLogEntry(reg, KindEffect, []byte("abc"), &trace, nil, map[string]string{"k": "v"})
	if err != nil {
		t.Fatalf("new entry: %v", err)
	}
	expected, err := reg.ContentIdDefault(e1.encode())
	if err != nil {
		t.Fatalf("content id: %v", err)
	}
	if !e1.ID.Equal(expected) {
		t.Fatal("entry id does not match its own encoding hash")
	}
}

func TestNewLogEntryNilMetadataDefaultsEmpty(t *testing.T) {
	reg := hash.NewRegistry()
	e, err := NewLogEntry(reg, KindFact, []byte("x"), nil, nil, nil)
	if err != nil {
		t.Fatalf("new entry: %v", err)
	}
	if e.Metadata == nil {
		t.Fatal("expected non-nil metadata map")
	}
}

func TestDistinctPayloadsProduceDistinctIDs(t *testing.T) {
	reg := hash.NewRegistry()
	a, err := NewLogEntry(reg, KindFact, []byte("a"), nil, nil, nil)
	if err != nil {
		t.Fatalf("new entry a: %v", err)
	}
	b, err := NewLogEntry(reg, KindFact, []byte("b"), nil, nil, nil)
	if err != nil {
		t.Fatalf("new entry b: %v", err)
	}
	if a.ID.Equal(b.ID) {
		t.Fatal("distinct payloads produced the same entry id")
	}
}

func TestParentLinkAffectsID(t *testing.T) {
	reg := hash.NewRegistry()
	parentless, err := NewLogEntry(reg, KindFact, []byte("x"), nil, nil, nil)
	if err != nil {
		t.Fatalf("new entry: %v", err)
	}
	parentID := parentless.ID
	withParent, err := NewLogEntry(reg, KindFact, []byte("x"), nil, &parentID, nil)
	if err != nil {
		t.Fatalf("new entry with parent: %v", err)
	}
	if parentless.ID.Equal(withParent.ID) {
		t.Fatal("parent linkage did not change the entry id")
	}
}
