// Package postgres provides a Postgres-backed document store. It mirrors the
// in-memory semantics and writes every change through to a documents table.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"fmeacore/internal/infra/persistence/memory"
	"fmeacore/pkg/domain"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.DocumentStore = (*Store)(nil)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/fmea?sslmode=disable"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Store persists documents to Postgres while serving reads from memory.
type Store struct {
	*memory.Store
	db *sql.DB
	mu sync.Mutex
}

// NewStore opens a Postgres-backed store using dsn (falls back to defaultDSN),
// ensures the documents table exists and hydrates the cache.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := ensureDocumentsTable(ctx, db); err != nil {
		return nil, err
	}
	snapshot, err := loadSnapshot(ctx, db)
	if err != nil {
		return nil, err
	}
	mem := memory.NewStore()
	mem.ImportState(snapshot)
	return &Store{Store: mem, db: db}, nil
}

func ensureDocumentsTable(ctx context.Context, db *sql.DB) error {
	ddl := `CREATE TABLE IF NOT EXISTS documents (
		project_id TEXT PRIMARY KEY,
		payload JSONB NOT NULL,
		updated_at TEXT NOT NULL
	)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure documents table: %w", err)
	}
	return nil
}

func loadSnapshot(ctx context.Context, db *sql.DB) (memory.Snapshot, error) {
	rows, err := db.QueryContext(ctx, `SELECT project_id, payload, updated_at FROM documents`)
	if err != nil {
		return memory.Snapshot{}, fmt.Errorf("select documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	snapshot := memory.Snapshot{Records: make(map[string]memory.Record)}
	for rows.Next() {
		var (
			id      string
			payload []byte
			updated string
		)
		if err := rows.Scan(&id, &payload, &updated); err != nil {
			return memory.Snapshot{}, fmt.Errorf("scan documents: %w", err)
		}
		if len(payload) == 0 {
			continue
		}
		doc, err := domain.DecodeDocument(payload)
		if err != nil {
			return memory.Snapshot{}, fmt.Errorf("decode %s: %w", id, err)
		}
		at, err := time.Parse(time.RFC3339Nano, updated)
		if err != nil {
			return memory.Snapshot{}, fmt.Errorf("parse updated_at for %s: %w", id, err)
		}
		snapshot.Records[id] = memory.Record{Document: doc, UpdatedAt: at}
	}
	if err := rows.Err(); err != nil {
		return memory.Snapshot{}, fmt.Errorf("iterate documents: %w", err)
	}
	return snapshot, nil
}

// Save upserts the document inside a transaction, then refreshes the cache.
func (s *Store) Save(ctx context.Context, doc domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, had := s.Record(doc.Project.ID)
	rec, err := s.Put(ctx, doc)
	if err != nil {
		return err
	}
	if err := s.persist(ctx, rec); err != nil {
		if had {
			s.Replace(prev)
		} else {
			_, _ = s.Store.Delete(context.Background(), doc.Project.ID)
		}
		return err
	}
	return nil
}

func (s *Store) persist(ctx context.Context, rec memory.Record) error {
	payload, err := domain.EncodeDocument(rec.Document)
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO documents(project_id,payload,updated_at) VALUES($1,$2,$3) ON CONFLICT(project_id) DO UPDATE SET payload=EXCLUDED.payload, updated_at=EXCLUDED.updated_at`,
		rec.Document.Project.ID, payload, rec.UpdatedAt.Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("upsert %s: %w", rec.Document.Project.ID, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

// Delete removes the row and the cached document.
func (s *Store) Delete(ctx context.Context, projectID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE project_id = $1`, projectID); err != nil {
		return false, fmt.Errorf("delete %s: %w", projectID, err)
	}
	return s.Store.Delete(ctx, projectID)
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// OverrideSQLOpen swaps the sqlOpen function for tests and returns a restore function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}
