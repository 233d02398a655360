// Package sqlite provides an embedded SQLite document store. Documents are
// held in an in-memory cache and written through to a single table as JSON.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"fmeacore/internal/infra/persistence/memory"
	"fmeacore/pkg/domain"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.DocumentStore = (*Store)(nil)

const defaultPath = "fmea.db"

// Store persists interchange documents to SQLite.
type Store struct {
	*memory.Store
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// NewStore opens (creating if needed) the database at path and hydrates the
// cache from it. An empty path uses ./fmea.db.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = defaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS documents (
		project_id TEXT PRIMARY KEY,
		payload BLOB NOT NULL,
		updated_at TEXT NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create documents table: %w", err)
	}
	s := &Store{Store: memory.NewStore(), db: db, path: path}
	if err := s.load(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) load(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `SELECT project_id, payload, updated_at FROM documents`)
	if err != nil {
		return fmt.Errorf("select documents: %w", err)
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
			return fmt.Errorf("scan: %w", err)
		}
		doc, err := domain.DecodeDocument(payload)
		if err != nil {
			return fmt.Errorf("decode %s: %w", id, err)
		}
		at, err := time.Parse(time.RFC3339Nano, updated)
		if err != nil {
			return fmt.Errorf("parse updated_at for %s: %w", id, err)
		}
		snapshot.Records[id] = memory.Record{Document: doc, UpdatedAt: at}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate documents: %w", err)
	}
	s.ImportState(snapshot)
	return nil
}

// Save upserts the document row, then refreshes the cache. On a write error
// the cache keeps its previous value.
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
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO documents(project_id,payload,updated_at) VALUES(?,?,?) ON CONFLICT(project_id) DO UPDATE SET payload=excluded.payload, updated_at=excluded.updated_at`,
		rec.Document.Project.ID, payload, rec.UpdatedAt.Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("upsert %s: %w", rec.Document.Project.ID, err)
	}
	return nil
}

// Delete removes the row and the cached document.
func (s *Store) Delete(ctx context.Context, projectID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE project_id = ?`, projectID); err != nil {
		return false, fmt.Errorf("delete %s: %w", projectID, err)
	}
	return s.Store.Delete(ctx, projectID)
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }
