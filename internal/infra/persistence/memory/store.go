// Package memory provides an in-memory document store used for tests,
// ephemeral sessions and as the read cache of the SQL-backed stores.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"fmeacore/pkg/domain"
)

// Compile-time contract assertion ensuring memory.Store adheres to the domain persistence interface.
var _ domain.DocumentStore = (*Store)(nil)

// ErrMissingProjectID is returned when saving a document without a project id.
var ErrMissingProjectID = errors.New("document has no project id")

// Record is one stored document with its last write time.
type Record struct {
	Document  domain.Document `json:"document"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Snapshot is a point-in-time copy of every stored record keyed by project id.
type Snapshot struct {
	Records map[string]Record `json:"records"`
}

// Store keeps deep-copied documents in a map guarded by a RWMutex.
type Store struct {
	mu      sync.RWMutex
	records map[string]Record
	now     func() time.Time
}

// NewStore constructs an empty in-memory store.
func NewStore() *Store {
	return &Store{
		records: make(map[string]Record),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// NowFunc exposes the clock used to stamp saved records.
func (s *Store) NowFunc() func() time.Time { return s.now }

// SetNowFunc overrides the clock; nil restores the system clock.
func (s *Store) SetNowFunc(now func() time.Time) {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

// Save inserts or replaces the document keyed by its project id.
func (s *Store) Save(ctx context.Context, doc domain.Document) error {
	_, err := s.Put(ctx, doc)
	return err
}

// Put stores doc and returns the record as written.
func (s *Store) Put(ctx context.Context, doc domain.Document) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	if doc.Project.ID == "" {
		return Record{}, ErrMissingProjectID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := Record{Document: doc.Clone(), UpdatedAt: s.now()}
	s.records[doc.Project.ID] = rec
	return Record{Document: rec.Document.Clone(), UpdatedAt: rec.UpdatedAt}, nil
}

// Load returns a copy of the stored document or domain.ErrNotFound.
func (s *Store) Load(ctx context.Context, projectID string) (domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return domain.Document{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[projectID]
	if !ok {
		return domain.Document{}, domain.ErrNotFound{Entity: domain.EntityProject, ID: projectID}
	}
	return rec.Document.Clone(), nil
}

// List returns project summaries ordered by project id.
func (s *Store) List(ctx context.Context) ([]domain.ProjectSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]domain.ProjectSummary, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, domain.SummaryOf(rec.Document, rec.UpdatedAt))
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Delete removes the document and reports whether it existed.
func (s *Store) Delete(ctx context.Context, projectID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.records[projectID]
	delete(s.records, projectID)
	return ok, nil
}

// ExportState returns a deep copy of every record.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := Snapshot{Records: make(map[string]Record, len(s.records))}
	for id, rec := range s.records {
		out.Records[id] = Record{Document: rec.Document.Clone(), UpdatedAt: rec.UpdatedAt}
	}
	return out
}

// ImportState replaces the store contents with snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	records := make(map[string]Record, len(snapshot.Records))
	for id, rec := range snapshot.Records {
		records[id] = Record{Document: rec.Document.Clone(), UpdatedAt: rec.UpdatedAt}
	}
	s.mu.Lock()
	s.records = records
	s.mu.Unlock()
}

// Record returns a copy of the stored record for projectID.
func (s *Store) Record(projectID string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[projectID]
	if !ok {
		return Record{}, false
	}
	return Record{Document: rec.Document.Clone(), UpdatedAt: rec.UpdatedAt}, true
}

// Replace stores rec as is, keeping its timestamp.
func (s *Store) Replace(rec Record) {
	s.mu.Lock()
	s.records[rec.Document.Project.ID] = Record{Document: rec.Document.Clone(), UpdatedAt: rec.UpdatedAt}
	s.mu.Unlock()
}
