package core

import (
	"context"
	"errors"
	"sync"
	"time"

	"fmeacore/pkg/domain"
)

// ErrNoStore is returned by persistence operations on a session without a store.
var ErrNoStore = errors.New("core: session has no document store")

// Session owns the current (project, tree) reference of one analysis. Edits
// are serialized: each reads the current snapshot, computes a new one and
// swaps it in. Readers always see a complete snapshot.
type Session struct {
	mu      sync.Mutex
	project domain.Project
	tree    Tree

	engine  *RulesEngine
	store   DocumentStore
	logger  Logger
	metrics MetricsRecorder
	tracer  Tracer
	audit   AuditRecorder
	clock   Clock

	plugins map[string]PluginMetadata
}

// Option configures a Session.
type Option func(*Session)

// WithRulesEngine overrides the review rules (default NewDefaultRulesEngine).
func WithRulesEngine(engine *RulesEngine) Option {
	return func(s *Session) {
		if engine != nil {
			s.engine = engine
		}
	}
}

// WithStore attaches a document store for Save and Load.
func WithStore(store DocumentStore) Option {
	return func(s *Session) { s.store = store }
}

// WithLogger sets the structured logger.
func WithLogger(logger Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetricsRecorder sets the metrics sink.
func WithMetricsRecorder(m MetricsRecorder) Option {
	return func(s *Session) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithTracer sets the tracer.
func WithTracer(t Tracer) Option {
	return func(s *Session) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithAuditRecorder sets the audit sink.
func WithAuditRecorder(a AuditRecorder) Option {
	return func(s *Session) {
		if a != nil {
			s.audit = a
		}
	}
}

// WithClock overrides the clock used for audit timestamps and durations.
func WithClock(c Clock) Option {
	return func(s *Session) {
		if c != nil {
			s.clock = c
		}
	}
}

// NewSession starts a session on doc.
func NewSession(doc domain.Document, opts ...Option) *Session {
	s := &Session{
		project: doc.Project,
		tree:    normalizedTree(doc.Structure),
		engine:  NewDefaultRulesEngine(),
		logger:  noopLogger{},
		metrics: noopMetrics{},
		tracer:  noopTracer{},
		audit:   noopAudit{},
		clock:   systemClock{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Project returns the current project metadata.
func (s *Session) Project() domain.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.project
}

// Tree returns the current tree snapshot. Callers must treat it as read-only.
func (s *Session) Tree() Tree {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree
}

// Document returns a deep copy of the current state.
func (s *Session) Document() domain.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.Document{Project: s.project, Structure: domain.CloneNodes(s.tree)}
}

// Apply runs edit on the current tree and installs its result. On error the
// session keeps its previous tree.
func (s *Session) Apply(ctx context.Context, op string, edit func(Tree) (Tree, error)) (Tree, error) {
	var out Tree
	err := s.run(ctx, op, func(context.Context) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		next, err := edit(s.tree)
		if err != nil {
			return err
		}
		s.tree = next
		out = next
		return nil
	})
	return out, err
}

// UpdateProject edits the project metadata. The tree is untouched.
func (s *Session) UpdateProject(ctx context.Context, mutate func(*domain.Project) error) (domain.Project, error) {
	var out domain.Project
	err := s.run(ctx, "update_project", func(context.Context) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		p := s.project
		if err := mutate(&p); err != nil {
			return err
		}
		s.project = p
		out = p
		return nil
	})
	return out, err
}

// Replace swaps in a whole document, e.g. after an import.
func (s *Session) Replace(ctx context.Context, doc domain.Document) error {
	return s.run(ctx, "replace_document", func(context.Context) error {
		s.mu.Lock()
		s.project = doc.Project
		s.tree = normalizedTree(doc.Structure)
		s.mu.Unlock()
		return nil
	})
}

// Review evaluates the rules engine against the current document.
func (s *Session) Review(ctx context.Context) (Result, error) {
	var res Result
	err := s.run(ctx, "review", func(ctx context.Context) error {
		var err error
		res, err = s.engine.Evaluate(ctx, s.Document())
		return err
	})
	return res, err
}

// Save reviews the current document and persists it unless a blocking
// violation is found, in which case a domain.RuleViolationError is returned.
func (s *Session) Save(ctx context.Context) (Result, error) {
	var res Result
	err := s.run(ctx, "save", func(ctx context.Context) error {
		if s.store == nil {
			return ErrNoStore
		}
		doc := s.Document()
		var err error
		res, err = s.engine.Evaluate(ctx, doc)
		if err != nil {
			return err
		}
		for _, v := range res.Violations {
			if v.Severity == domain.SeverityWarn {
				s.logger.Warn("review finding", "rule", v.Rule, "entity", v.Entity, "id", v.EntityID, "message", v.Message)
			}
		}
		if res.HasBlocking() {
			return domain.RuleViolationError{Result: res}
		}
		return s.store.Save(ctx, doc)
	})
	return res, err
}

// Load replaces the session state with the stored document for projectID.
func (s *Session) Load(ctx context.Context, projectID string) error {
	return s.run(ctx, "load", func(ctx context.Context) error {
		if s.store == nil {
			return ErrNoStore
		}
		doc, err := s.store.Load(ctx, projectID)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.project = doc.Project
		s.tree = normalizedTree(doc.Structure)
		s.mu.Unlock()
		return nil
	})
}

// normalizedTree deep-copies nodes and re-derives every stored priority.
func normalizedTree(nodes []domain.StructureNode) Tree {
	out := domain.CloneNodes(nodes)
	var visit func([]domain.StructureNode)
	visit = func(nodes []domain.StructureNode) {
		for i := range nodes {
			for j := range nodes[i].Functions {
				for k := range nodes[i].Functions[j].Failures {
					causes := nodes[i].Functions[j].Failures[k].Causes
					for c := range causes {
						causes[c] = domain.NormalizeCause(causes[c])
					}
				}
			}
			visit(nodes[i].Children)
		}
	}
	visit(out)
	return Tree(out)
}

func (s *Session) run(ctx context.Context, op string, fn func(context.Context) error) (err error) {
	started := s.clock.Now()
	ctx, span := s.tracer.Start(ctx, op)
	projectID := s.Project().ID
	defer func() {
		duration := s.clock.Now().Sub(started)
		span.End(err)
		s.metrics.Observe(ctx, op, err == nil, duration)
		entry := AuditEntry{Operation: op, ProjectID: projectID, Status: AuditStatusSuccess, Duration: duration, At: started}
		if err != nil {
			entry.Status = AuditStatusError
			entry.Error = err.Error()
			s.logger.Error("fmea operation failed", "operation", op, "project", projectID, "error", err)
		} else {
			s.logger.Debug("fmea operation", "operation", op, "project", projectID, "duration", duration.Round(time.Microsecond))
		}
		s.audit.Record(ctx, entry)
	}()
	if err = ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}
