package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/smallnest/nodegraphgo/store"
)

// DBPool defines the interface for database connection pool
type DBPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresRunStore implements store.RunStore using PostgreSQL
type PostgresRunStore struct {
	pool      DBPool
	tableName string
}

var _ store.RunStore = (*PostgresRunStore)(nil)

// PostgresOptions configuration for Postgres connection
type PostgresOptions struct {
	ConnString string
	TableName  string // Default "runs"
}

// NewPostgresRunStore creates a new Postgres run store
func NewPostgresRunStore(ctx context.Context, opts PostgresOptions) (*PostgresRunStore, error) {
	pool, err := pgxpool.New(ctx, opts.ConnString)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	return NewPostgresRunStoreWithPool(pool, opts.TableName), nil
}

// NewPostgresRunStoreWithPool creates a store over an existing pool, such as a pgxmock pool
func NewPostgresRunStoreWithPool(pool DBPool, tableName string) *PostgresRunStore {
	if tableName == "" {
		tableName = "runs"
	}
	return &PostgresRunStore{
		pool:      pool,
		tableName: tableName,
	}
}

// InitSchema creates the necessary table if it doesn't exist
func (s *PostgresRunStore) InitSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			graph_id TEXT NOT NULL,
			started_at TIMESTAMPTZ NOT NULL,
			duration_ns BIGINT NOT NULL,
			executed JSONB NOT NULL,
			residue JSONB NOT NULL,
			script JSONB,
			error TEXT,
			metadata JSONB
		);
		CREATE INDEX IF NOT EXISTS idx_%s_graph_id ON %s (graph_id);
	`, s.tableName, s.tableName, s.tableName)

	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the connection pool
func (s *PostgresRunStore) Close() {
	s.pool.Close()
}

func encodeColumns(record *store.RunRecord) (executed, residue, script, metadata []byte, err error) {
	ints := func(v []int) []int {
		if v == nil {
			return []int{}
		}
		return v
	}
	if executed, err = json.Marshal(ints(record.Executed)); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to marshal executed: %w", err)
	}
	if residue, err = json.Marshal(ints(record.Residue)); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to marshal residue: %w", err)
	}
	if script, err = json.Marshal(record.Script); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to marshal script: %w", err)
	}
	if metadata, err = json.Marshal(record.Metadata); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}
	return executed, residue, script, metadata, nil
}

// Save stores a record
func (s *PostgresRunStore) Save(ctx context.Context, record *store.RunRecord) error {
	if err := store.CheckRecord(record); err != nil {
		return err
	}
	executed, residue, script, metadata, err := encodeColumns(record)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, graph_id, started_at, duration_ns, executed, residue, script, error, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			graph_id = EXCLUDED.graph_id,
			started_at = EXCLUDED.started_at,
			duration_ns = EXCLUDED.duration_ns,
			executed = EXCLUDED.executed,
			residue = EXCLUDED.residue,
			script = EXCLUDED.script,
			error = EXCLUDED.error,
			metadata = EXCLUDED.metadata
	`, s.tableName)

	_, err = s.pool.Exec(ctx, query,
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

func scanRecord(row pgx.Row) (*store.RunRecord, error) {
	var (
		rec                                 store.RunRecord
		durationNS                          int64
		executed, residue, script, metadata []byte
	)
	if err := row.Scan(&rec.ID, &rec.GraphID, &rec.StartedAt, &durationNS, &executed, &residue, &script, &rec.Error, &metadata); err != nil {
		return nil, err
	}
	rec.Duration = time.Duration(durationNS)

	targets := []struct {
		src []byte
		dst any
	}{
		{executed, &rec.Executed},
		{residue, &rec.Residue},
		{script, &rec.Script},
		{metadata, &rec.Metadata},
	}
	for _, t := range targets {
		if len(t.src) == 0 {
			continue
		}
		if err := json.Unmarshal(t.src, t.dst); err != nil {
			return nil, fmt.Errorf("failed to unmarshal run record %s: %w", rec.ID, err)
		}
	}
	return &rec, nil
}

// Load retrieves a record by ID
func (s *PostgresRunStore) Load(ctx context.Context, runID string) (*store.RunRecord, error) {
	query := fmt.Sprintf("SELECT id, graph_id, started_at, duration_ns, executed, residue, script, COALESCE(error, ''), metadata FROM %s WHERE id = $1", s.tableName)

	rec, err := scanRecord(s.pool.QueryRow(ctx, query, runID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", store.ErrRunNotFound, runID)
		}
		return nil, fmt.Errorf("failed to load run record: %w", err)
	}
	return rec, nil
}

// List returns the records of a graph ordered by start time
func (s *PostgresRunStore) List(ctx context.Context, graphID string) ([]*store.RunRecord, error) {
	query := fmt.Sprintf("SELECT id, graph_id, started_at, duration_ns, executed, residue, script, COALESCE(error, ''), metadata FROM %s WHERE graph_id = $1 ORDER BY started_at ASC, id ASC", s.tableName)

	rows, err := s.pool.Query(ctx, query, graphID)
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
func (s *PostgresRunStore) Delete(ctx context.Context, runID string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", s.tableName)
	tag, err := s.pool.Exec(ctx, query, runID)
	if err != nil {
		return fmt.Errorf("failed to delete run record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", store.ErrRunNotFound, runID)
	}
	return nil
}

// Clear removes every record of a graph
func (s *PostgresRunStore) Clear(ctx context.Context, graphID string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE graph_id = $1", s.tableName)
	if _, err := s.pool.Exec(ctx, query, graphID); err != nil {
		return fmt.Errorf("failed to clear run records: %w", err)
	}
	return nil
}
