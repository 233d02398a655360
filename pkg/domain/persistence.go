package domain

import (
	"context"
	"fmt"
	"time"
)

// ProjectSummary is the listing view of a stored document.
type ProjectSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Number    string    `json:"number"`
	Type      FmeaType  `json:"type"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DocumentStore is a minimal abstraction over durable backends holding one
// interchange document per project id.
type DocumentStore interface {
	// Save inserts or replaces the document keyed by doc.Project.ID.
	Save(ctx context.Context, doc Document) error
	// Load returns the document or ErrNotFound.
	Load(ctx context.Context, projectID string) (Document, error)
	// List returns summaries ordered by project id.
	List(ctx context.Context) ([]ProjectSummary, error)
	// Delete removes the document; returns true if it existed. Idempotent.
	Delete(ctx context.Context, projectID string) (bool, error)
}

// ErrNotFound is returned when a store lookup misses.
type ErrNotFound struct {
	Entity EntityType
	ID     string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// SummaryOf derives the listing view for a document.
func SummaryOf(doc Document, updatedAt time.Time) ProjectSummary {
	return ProjectSummary{
		ID:        doc.Project.ID,
		Name:      doc.Project.Name,
		Number:    doc.Project.Number,
		Type:      doc.Project.Type,
		UpdatedAt: updatedAt,
	}
}
