// Package pgstore stores task records as JSONB documents in PostgreSQL.
package pgstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	domain "github.com/example/task-server/domain/task"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store keeps one row per task: the id and the full record as JSONB.
type Store struct {
	pool  *pgxpool.Pool
	table string // quoted identifier
}

var (
	_ domain.Store  = (*Store)(nil)
	_ domain.Pinger = (*Store)(nil)
)

// Open connects to databaseURL and creates the table if needed.
func Open(ctx context.Context, databaseURL, table string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s, err := New(ctx, pool, table)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// New uses an existing pool and creates the table if needed.
func New(ctx context.Context, pool *pgxpool.Pool, table string) (*Store, error) {
	s := &Store{pool: pool, table: pgx.Identifier{table}.Sanitize()}

	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id   TEXT PRIMARY KEY,
	item JSONB NOT NULL
)`, s.table)
	if _, err := pool.Exec(ctx, ddl); err != nil {
		return nil, fmt.Errorf("failed to create table %s: %w", table, err)
	}
	return s, nil
}

func (s *Store) Get(ctx context.Context, id string) (*domain.Task, error) {
	var item []byte
	err := s.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT item FROM %s WHERE id = $1`, s.table), id,
	).Scan(&item)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound(id)
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return decode(item)
}

// Put writes the full record, replacing any existing document.
func (s *Store) Put(ctx context.Context, t *domain.Task) error {
	item, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		fmt.Sprintf(`INSERT INTO %s (id, item) VALUES ($1, $2)
ON CONFLICT (id) DO UPDATE SET item = EXCLUDED.item`, s.table),
		t.ID, item,
	)
	if err != nil {
		return fmt.Errorf("failed to put task: %w", err)
	}
	return nil
}

// patchDoc is the set of top-level keys an update merges into the document.
type patchDoc struct {
	domain.Patch
	UpdatedAt time.Time `json:"updated_at"`
}

// Update merges the patch into the stored document in a single statement.
// No row means no task and no write.
func (s *Store) Update(ctx context.Context, id string, p domain.Patch, at time.Time) (*domain.Task, error) {
	// A nil list would merge as JSON null and read back as absent.
	if v, ok := p.Solutions.Get(); ok && v == nil {
		p.Solutions = domain.Some([]string{})
	}
	doc, err := json.Marshal(patchDoc{Patch: p, UpdatedAt: at})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal patch: %w", err)
	}

	var item []byte
	err = s.pool.QueryRow(ctx,
		fmt.Sprintf(`UPDATE %s SET item = item || $2::jsonb WHERE id = $1 RETURNING item`, s.table),
		id, doc,
	).Scan(&item)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound(id)
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return decode(item)
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, s.table), id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// Scan filters on the document's status and caps the result at q.Limit.
func (s *Store) Scan(ctx context.Context, q domain.Query) ([]domain.Task, error) {
	status, _ := q.Status.Get()
	rows, err := s.pool.Query(ctx,
		fmt.Sprintf(`SELECT item FROM %s
WHERE ($1 = '' OR item->>'status' = $1)
ORDER BY (item->>'created_at')::timestamptz, id
LIMIT $2`, s.table),
		string(status), q.Limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	items, err := pgx.CollectRows(rows, pgx.RowTo[[]byte])
	if err != nil {
		return nil, fmt.Errorf("failed to read tasks: %w", err)
	}

	tasks := make([]domain.Task, 0, len(items))
	for _, item := range items {
		t, err := decode(item)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func decode(item []byte) (*domain.Task, error) {
	var t domain.Task
	if err := json.Unmarshal(item, &t); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task: %w", err)
	}
	return &t, nil
}
