// Package report renders FMEA documents into tabular and document artifacts
// and stores them in a blob.Store.
package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"fmeacore/internal/blob"
	"fmeacore/internal/core"
	"fmeacore/pkg/domain"
)

var (
	// ErrUnknownView is returned for views other than risk, export and optimization.
	ErrUnknownView = errors.New("report: unknown view")
	// ErrUnknownFormat is returned for unsupported artifact formats.
	ErrUnknownFormat = errors.New("report: unknown format")
	// ErrNoStore is returned when exporting without an artifact store.
	ErrNoStore = errors.New("report: no artifact store configured")
)

// Artifact describes one stored rendering.
type Artifact struct {
	Key         string    `json:"key"`
	Format      Format    `json:"format"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	Rows        int       `json:"rows"`
	ETag        string    `json:"etag,omitempty"`
	URL         string    `json:"url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Request asks for one document to be rendered in one or more formats.
type Request struct {
	Document    domain.Document
	View        View
	Formats     []Format
	RequestedBy string
}

// Record is the outcome of an export.
type Record struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"project_id"`
	View        View       `json:"view"`
	Formats     []Format   `json:"formats"`
	Artifacts   []Artifact `json:"artifacts"`
	RequestedBy string     `json:"requested_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Exporter renders documents and stores the artifacts.
type Exporter struct {
	store  blob.Store
	logger core.Logger
	audit  core.AuditRecorder
	now    func() time.Time
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithLogger sets the structured logger.
func WithLogger(l core.Logger) Option {
	return func(e *Exporter) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithAuditRecorder records one entry per export.
func WithAuditRecorder(a core.AuditRecorder) Option {
	return func(e *Exporter) { e.audit = a }
}

// WithClock overrides the time source used for keys and timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) {
		if now != nil {
			e.now = now
		}
	}
}

// NewExporter returns an exporter writing into store.
func NewExporter(store blob.Store, opts ...Option) *Exporter {
	e := &Exporter{
		store:  store,
		logger: core.NopLogger(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export renders req.Document once per distinct format and stores every
// artifact under <project id>/<view>-<timestamp>-<id>.<format>. Formats
// default to CSV and JSON; the view defaults to export. Nothing is stored
// when a rendering fails; artifacts stored before a later store failure are
// removed again.
func (e *Exporter) Export(ctx context.Context, req Request) (rec Record, err error) {
	if e.store == nil {
		return Record{}, ErrNoStore
	}
	started := e.now()
	defer func() { e.record(ctx, req, started, err) }()

	view := req.View
	if view == "" {
		view = ViewExport
	}
	if !view.Valid() {
		return Record{}, fmt.Errorf("%w: %q", ErrUnknownView, view)
	}
	formats := dedupFormats(req.Formats)
	if len(formats) == 0 {
		formats = []Format{FormatCSV, FormatJSON}
	}

	type rendered struct {
		format  Format
		payload []byte
		rows    int
	}
	pending := make([]rendered, 0, len(formats))
	for _, f := range formats {
		payload, rows, err := Render(req.Document, view, f)
		if err != nil {
			return Record{}, fmt.Errorf("render %s: %w", f, err)
		}
		pending = append(pending, rendered{format: f, payload: payload, rows: rows})
	}

	id := uuid.NewString()
	rec = Record{
		ID:          id,
		ProjectID:   req.Document.Project.ID,
		View:        view,
		Formats:     formats,
		RequestedBy: req.RequestedBy,
		CreatedAt:   started,
	}
	prefix := keyPrefix(req.Document.Project)
	stamp := started.Format("20060102T150405Z")
	for _, r := range pending {
		key := fmt.Sprintf("%s/%s-%s-%s.%s", prefix, view, stamp, id[:8], r.format)
		info, err := e.store.Put(ctx, key, bytes.NewReader(r.payload), blob.PutOptions{
			ContentType: r.format.ContentType(),
			Metadata: map[string]string{
				"project": req.Document.Project.ID,
				"view":    string(view),
				"rows":    strconv.Itoa(r.rows),
				"export":  id,
			},
		})
		if err != nil {
			e.rollback(ctx, rec.Artifacts)
			return Record{}, fmt.Errorf("store %s: %w", key, err)
		}
		rec.Artifacts = append(rec.Artifacts, Artifact{
			Key:         info.Key,
			Format:      r.format,
			ContentType: r.format.ContentType(),
			SizeBytes:   int64(len(r.payload)),
			Rows:        r.rows,
			ETag:        info.ETag,
			URL:         info.URL,
			CreatedAt:   started,
		})
	}
	e.logger.Info("report exported", "export", id, "project", rec.ProjectID, "view", view, "artifacts", len(rec.Artifacts))
	return rec, nil
}

// List returns the stored artifacts of a project.
func (e *Exporter) List(ctx context.Context, project domain.Project) ([]blob.Info, error) {
	if e.store == nil {
		return nil, ErrNoStore
	}
	return e.store.List(ctx, keyPrefix(project)+"/")
}

func (e *Exporter) rollback(ctx context.Context, artifacts []Artifact) {
	for _, a := range artifacts {
		if _, err := e.store.Delete(ctx, a.Key); err != nil {
			e.logger.Warn("report rollback failed", "key", a.Key, "error", err)
		}
	}
}

func (e *Exporter) record(ctx context.Context, req Request, started time.Time, err error) {
	if e.audit == nil {
		return
	}
	entry := core.AuditEntry{
		Operation: "export_report",
		ProjectID: req.Document.Project.ID,
		Status:    core.AuditStatusSuccess,
		Duration:  e.now().Sub(started),
		At:        started,
	}
	if err != nil {
		entry.Status = core.AuditStatusError
		entry.Error = err.Error()
	}
	e.audit.Record(ctx, entry)
}

// keyPrefix is the project id, or a slug of the name for projects without one.
func keyPrefix(p domain.Project) string {
	if p.ID != "" {
		return p.ID
	}
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		}
		return '_'
	}, strings.TrimSpace(p.Name))
	if slug == "" {
		return "unnamed"
	}
	return slug
}

func dedupFormats(in []Format) []Format {
	out := make([]Format, 0, len(in))
	seen := make(map[Format]struct{}, len(in))
	for _, f := range in {
		f = Format(strings.ToLower(string(f)))
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}
