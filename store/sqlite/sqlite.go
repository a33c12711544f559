package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/smallnest/nodegraphgo/store"
)

// SqliteRunStore implements store.RunStore using SQLite
type SqliteRunStore struct {
	db        *sql.DB
	tableName string
}

var _ store.RunStore = (*SqliteRunStore)(nil)

// SqliteOptions configuration for SQLite connection
type SqliteOptions struct {
	Path      string
	TableName string // Default "runs"
}

// NewSqliteRunStore opens the database and creates the table if needed
func NewSqliteRunStore(opts SqliteOptions) (*SqliteRunStore, error) {
	db, err := sql.Open("sqlite3", opts.Path)
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	tableName := opts.TableName
	if tableName == "" {
		tableName = "runs"
	}

	s := &SqliteRunStore{
		db:        db,
		tableName: tableName,
	}

	if err := s.InitSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// InitSchema creates the necessary table if it doesn't exist
func (s *SqliteRunStore) InitSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			graph_id TEXT NOT NULL,
			started_at DATETIME NOT NULL,
			duration_ns INTEGER NOT NULL,
			executed TEXT NOT NULL,
			residue TEXT NOT NULL,
			script TEXT,
			error TEXT,
			metadata TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_%s_graph_id ON %s (graph_id);
	`, s.tableName, s.tableName, s.tableName)

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *SqliteRunStore) Close() error {
	return s.db.Close()
}

// Save stores a record
func (s *SqliteRunStore) Save(ctx context.Context, record *store.RunRecord) error {
	if err := store.CheckRecord(record); err != nil {
		return err
	}
	executed, residue, script, metadata, err := encodeColumns(record)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, graph_id, started_at, duration_ns, executed, residue, script, error, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			graph_id = excluded.graph_id,
			started_at = excluded.started_at,
			duration_ns = excluded.duration_ns,
			executed = excluded.executed,
			residue = excluded.residue,
			script = excluded.script,
			error = excluded.error,
			metadata = excluded.metadata
	`, s.tableName)

	_, err = s.db.ExecContext(ctx, query,
		record.ID,
		record.GraphID,
		record.StartedAt,
		int64(record.Duration),
		executed,
		residue,
		script,
		record.Error,
		metadata,
	)
	if err != nil {
		return fmt.Errorf("failed to save run record: %w", err)
	}
	return nil
}

func encodeColumns(record *store.RunRecord) (executed, residue, script, metadata string, err error) {
	fields := []struct {
		dst *string
		val any
	}{
		{&executed, nonNilInts(record.Executed)},
		{&residue, nonNilInts(record.Residue)},
		{&script, record.Script},
		{&metadata, record.Metadata},
	}
	for _, f := range fields {
		data, err := json.Marshal(f.val)
		if err != nil {
			return "", "", "", "", fmt.Errorf("failed to marshal run record: %w", err)
		}
		*f.dst = string(data)
	}
	return executed, residue, script, metadata, nil
}

func nonNilInts(v []int) []int {
	if v == nil {
		return []int{}
	}
	return v
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*store.RunRecord, error) {
	var (
		rec                                 store.RunRecord
		durationNS                          int64
		executed, residue, script, metadata string
		errText                             sql.NullString
	)
	if err := row.Scan(&rec.ID, &rec.GraphID, &rec.StartedAt, &durationNS, &executed, &residue, &script, &errText, &metadata); err != nil {
		return nil, err
	}
	rec.Duration = time.Duration(durationNS)
	rec.Error = errText.String

	targets := []struct {
		src string
		dst any
	}{
		{executed, &rec.Executed},
		{residue, &rec.Residue},
		{script, &rec.Script},
		{metadata, &rec.Metadata},
	}
	for _, t := range targets {
		if t.src == "" {
			continue
		}
		if err := json.Unmarshal([]byte(t.src), t.dst); err != nil {
			return nil, fmt.Errorf("failed to unmarshal run record %s: %w", rec.ID, err)
		}
	}
	return &rec, nil
}

// Load retrieves a record by ID
func (s *SqliteRunStore) Load(ctx context.Context, runID string) (*store.RunRecord, error) {
	query := fmt.Sprintf(`
		SELECT id, graph_id, started_at, duration_ns, executed, residue, script, error, metadata
		FROM %s
		WHERE id = ?
	`, s.tableName)

	rec, err := scanRecord(s.db.QueryRowContext(ctx, query, runID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", store.ErrRunNotFound, runID)
		}
		return nil, fmt.Errorf("failed to load run record: %w", err)
	}
	return rec, nil
}

// List returns the records of a graph ordered by start time
func (s *SqliteRunStore) List(ctx context.Context, graphID string) ([]*store.RunRecord, error) {
	query := fmt.Sprintf(`
		SELECT id, graph_id, started_at, duration_ns, executed, residue, script, error, metadata
		FROM %s
		WHERE graph_id = ?
		ORDER BY started_at ASC, id ASC
	`, s.tableName)

	rows, err := s.db.QueryContext(ctx, query, graphID)
	if err != nil {
		return nil, fmt.Errorf("failed to list run records: %w", err)
	}
	defer rows.Close()

	records := []*store.RunRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run record row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating run record rows: %w", err)
	}
	return records, nil
}

// Delete removes a record
func (s *SqliteRunStore) Delete(ctx context.Context, runID string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", s.tableName)
	res, err := s.db.ExecContext(ctx, query, runID)
	if err != nil {
		return fmt.Errorf("failed to delete run record: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", store.ErrRunNotFound, runID)
	}
	return nil
}

// Clear removes every record of a graph
func (s *SqliteRunStore) Clear(ctx context.Context, graphID string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE graph_id = ?", s.tableName)
	if _, err := s.db.ExecContext(ctx, query, graphID); err != nil {
		return fmt.Errorf("failed to clear run records: %w", err)
	}
	return nil
}
