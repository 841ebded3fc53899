package logsegment

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/timewave-computer/causality/domain/logsegment/migrations"
	"github.com/timewave-computer/causality/infrastructure/hash"
)

// Migrate applies every pending migration in migrations.Files against db.
func Migrate(db *sql.DB) error {
	driver, err := pgmigrate.WithInstance(db, &pgmigrate.Config{})
	if err != nil {
		return fmt.Errorf("logsegment: migration driver: %w", err)
	}
	src, err := iofs.New(migrations.Files, ".")
	if err != nil {
		return fmt.Errorf("logsegment: migration source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("logsegment: migration init: %w", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("logsegment: migration up: %w", err)
	}
	return nil
}

// PostgresStore persists segments and entries with sqlx/lib/pq.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore wraps an already-open *sql.DB.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: sqlx.NewDb(db, "postgres")}
}

type segmentRow struct {
	ID        string       `db:"id"`
	CreatedAt time.Time    `db:"created_at"`
	ReadOnly  bool         `db:"read_only"`
	First     sql.NullTime `db:"first_ts"`
	Last      sql.NullTime `db:"last_ts"`
}

type entryRow struct {
	ID        string         `db:"id"`
	SegmentID string         `db:"segment_id"`
	Timestamp time.Time      `db:"timestamp"`
	Kind      int16          `db:"kind"`
	KindName  string         `db:"kind_name"`
	Payload   []byte         `db:"payload"`
	TraceID   sql.NullString `db:"trace_id"`
	ParentID  sql.NullString `db:"parent_id"`
	Metadata  []byte         `db:"metadata"`
}

// SaveSegment upserts seg and all of its entries inside one transaction.
func (p *PostgresStore) SaveSegment(ctx context.Context, seg *Segment) error {
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("logsegment: begin tx: %w", err)
	}
	defer tx.Rollback()

	first, last := seg.Bounds()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO log_segments (id, created_at, read_only, first_ts, last_ts)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET read_only = $3, first_ts = $4, last_ts = $5
	`, string(seg.ID), seg.CreatedAt, seg.ReadOnly, nullableTime(first), nullableTime(last))
	if err != nil {
		return fmt.Errorf("logsegment: upsert segment: %w", err)
	}

	for _, e := range seg.Entries {
		row, err := toEntryRow(seg.ID, e)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO log_entries (id, segment_id, timestamp, kind, kind_name, payload, trace_id, parent_id, metadata)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (id) DO NOTHING
		`, row.ID, row.SegmentID, row.Timestamp, row.Kind, row.KindName, row.Payload, row.TraceID, row.ParentID, row.Metadata)
		if err != nil {
			return fmt.Errorf("logsegment: insert entry: %w", err)
		}
	}

	return tx.Commit()
}

// LoadSegment reloads a segment and its entries.
func (p *PostgresStore) LoadSegment(ctx context.Context, id SegmentID) (*Segment, error) {
	var sr segmentRow
	if err := p.db.GetContext(ctx, &sr, `SELECT id, created_at, read_only, first_ts, last_ts FROM log_segments WHERE id = $1`, string(id)); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSegmentNotFound(id)
		}
		return nil, fmt.Errorf("logsegment: load segment: %w", err)
	}

	var rows []entryRow
	if err := p.db.SelectContext(ctx, &rows, `SELECT id, segment_id, timestamp, kind, kind_name, payload, trace_id, parent_id, metadata FROM log_entries WHERE segment_id = $1 ORDER BY timestamp ASC`, string(id)); err != nil {
		return nil, fmt.Errorf("logsegment: load entries: %w", err)
	}

	seg := &Segment{ID: id, CreatedAt: sr.CreatedAt, ReadOnly: sr.ReadOnly}
	for _, row := range rows {
		entry, err := fromEntryRow(row)
		if err != nil {
			return nil, err
		}
		seg.Entries = append(seg.Entries, entry)
	}
	return seg, nil
}

// DeleteSegment removes a segment and its entries (cascade).
func (p *PostgresStore) DeleteSegment(ctx context.Context, id SegmentID) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM log_segments WHERE id = $1`, string(id))
	if err != nil {
		return fmt.Errorf("logsegment: delete segment: %w", err)
	}
	return nil
}

// Index lists every segment's range metadata.
func (p *PostgresStore) Index(ctx context.Context) ([]Index, error) {
	var rows []segmentRow
	if err := p.db.SelectContext(ctx, &rows, `SELECT id, created_at, read_only, first_ts, last_ts FROM log_segments`); err != nil {
		return nil, fmt.Errorf("logsegment: index: %w", err)
	}
	out := make([]Index, 0, len(rows))
	for _, r := range rows {
		out = append(out, Index{
			ID:       SegmentID(r.ID),
			First:    r.First.Time,
			Last:     r.Last.Time,
			ReadOnly: r.ReadOnly,
		})
	}
	return out, nil
}

func nullableTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

func toEntryRow(segID SegmentID, e LogEntry) (entryRow, error) {
	metadata, err := json.Marshal(e.Metadata)
	if err != nil {
		return entryRow{}, fmt.Errorf("logsegment: encode metadata: %w", err)
	}
	row := entryRow{
		ID:        e.ID.String(),
		SegmentID: string(segID),
		Timestamp: e.Timestamp,
		Kind:      int16(e.Kind),
		KindName:  e.KindName,
		Payload:   e.Payload,
		Metadata:  metadata,
	}
	if e.TraceID != nil {
		row.TraceID = sql.NullString{String: *e.TraceID, Valid: true}
	}
	if e.ParentID != nil {
		row.ParentID = sql.NullString{String: e.ParentID.String(), Valid: true}
	}
	return row, nil
}

func fromEntryRow(row entryRow) (LogEntry, error) {
	var id hash.ContentId
	if err := id.UnmarshalText([]byte(row.ID)); err != nil {
		return LogEntry{}, fmt.Errorf("logsegment: parse entry id: %w", err)
	}
	e := LogEntry{
		ID:        id,
		Timestamp: row.Timestamp,
		Kind:      Kind(row.Kind),
		KindName:  row.KindName,
		Payload:   row.Payload,
	}
	if len(row.Metadata) > 0 {
		if err := json.Unmarshal(row.Metadata, &e.Metadata); err != nil {
			return LogEntry{}, fmt.Errorf("logsegment: decode metadata: %w", err)
		}
	}
	if row.TraceID.Valid {
		traceID := row.TraceID.String
		e.TraceID = &traceID
	}
	if row.ParentID.Valid {
		var parentID hash.ContentId
		if err := parentID.UnmarshalText([]byte(row.ParentID.String)); err != nil {
			return LogEntry{}, fmt.Errorf("logsegment: parse parent id: %w", err)
		}
		e.ParentID = &parentID
	}
	return e, nil
}
