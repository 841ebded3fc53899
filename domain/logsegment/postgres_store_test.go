package logsegment

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/timewave-computer/causality/infrastructure/hash"
)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	sqlxDB := sqlx.NewDb(db, "postgres")
	return &PostgresStore{db: sqlxDB}, mock, func() { db.Close() }
}

func sampleEntry(t *testing.T) LogEntry {
	t.Helper()
	reg := hash.NewRegistry()
	e, err := NewLogEntry(reg, KindFact, []byte("payload"), nil, nil, nil)
	if err != nil {
		t.Fatalf("new entry: %v", err)
	}
	return e
}

func TestSaveSegmentInsertsSegmentAndEntries(t *testing.T) {
	store, mock, closeDB := newMockStore(t)
	defer closeDB()

	seg := NewSegment()
	seg.Append(sampleEntry(t))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO log_segments").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO log_entries").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := store.SaveSegment(context.Background(), seg); err != nil {
		t.Fatalf("save segment: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSaveSegmentRollsBackOnEntryError(t *testing.T) {
	store, mock, closeDB := newMockStore(t)
	defer closeDB()

	seg := NewSegment()
	seg.Append(sampleEntry(t))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO log_segments").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO log_entries").WillReturnError(context.DeadlineExceeded)
	mock.ExpectRollback()

	if err := store.SaveSegment(context.Background(), seg); err == nil {
		t.Fatal("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestLoadSegmentReturnsEntries(t *testing.T) {
	store, mock, closeDB := newMockStore(t)
	defer closeDB()

	entry := sampleEntry(t)
	segID := NewSegmentID()
	now := time.Now().UTC()

	segRows := sqlmock.NewRows([]string{"id", "created_at", "read_only", "first_ts", "last_ts"}).
		AddRow(string(segID), now, false, now, now)
	mock.ExpectQuery("SELECT id, created_at, read_only, first_ts, last_ts FROM log_segments").
		WillReturnRows(segRows)

	entryRows := sqlmock.NewRows([]string{"id", "segment_id", "timestamp", "kind", "kind_name", "payload", "trace_id", "parent_id", "metadata"}).
		AddRow(entry.ID.String(), string(segID), entry.Timestamp, int16(entry.Kind), entry.KindName, entry.Payload, nil, nil, []byte("{}"))
	mock.ExpectQuery("SELECT id, segment_id, timestamp, kind, kind_name, payload, trace_id, parent_id, metadata FROM log_entries").
		WillReturnRows(entryRows)

	seg, err := store.LoadSegment(context.Background(), segID)
	if err != nil {
		t.Fatalf("load segment: %v", err)
	}
	if len(seg.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(seg.Entries))
	}
	if !seg.Entries[0].ID.Equal(entry.ID) {
		t.Fatal("entry id mismatch after round trip")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestLoadSegmentNotFound(t *testing.T) {
	store, mock, closeDB := newMockStore(t)
	defer closeDB()

	mock.ExpectQuery("SELECT id, created_at, read_only, first_ts, last_ts FROM log_segments").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "read_only", "first_ts", "last_ts"}))

	_, err := store.LoadSegment(context.Background(), NewSegmentID())
	if err == nil {
		t.Fatal("expected not-found error")
	}
}

func TestDeleteSegmentExecutesDelete(t *testing.T) {
	store, mock, closeDB := newMockStore(t)
	defer closeDB()

	mock.ExpectExec("DELETE FROM log_segments").WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.DeleteSegment(context.Background(), NewSegmentID()); err != nil {
		t.Fatalf("delete segment: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestIndexListsSegments(t *testing.T) {
	store, mock, closeDB := newMockStore(t)
	defer closeDB()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "created_at", "read_only", "first_ts", "last_ts"}).
		AddRow("seg-1", now, true, now, now).
		AddRow("seg-2", now, false, now, now)
	mock.ExpectQuery("SELECT id, created_at, read_only, first_ts, last_ts FROM log_segments").
		WillReturnRows(rows)

	idx, err := store.Index(context.Background())
	if err != nil {
		t.Fatalf("index: %v", err)
	}
	if len(idx) != 2 {
		t.Fatalf("expected 2 index entries, got %d", len(idx))
	}
}
