package core

import (
	"context"
	"errors"
	"strings"
	"testing"

	"fmeacore/pkg/domain"
)

type namedRule struct {
	name     string
	severity domain.Severity
}

func (r namedRule) Name() string { return r.name }

func (r namedRule) Evaluate(context.Context, domain.Document) (domain.Result, error) {
	return domain.Result{Violations: []domain.Violation{{Rule: r.name, Severity: r.severity, Message: "checked"}}}, nil
}

type testPlugin struct {
	name  string
	rules []Rule
	err   error
}

func (p testPlugin) Name() string    { return p.name }
func (p testPlugin) Version() string { return "1.0.0" }

func (p testPlugin) Register(r *PluginRegistry) error {
	if p.err != nil {
		return p.err
	}
	for _, rule := range p.rules {
		if err := r.RegisterRule(rule); err != nil {
			return err
		}
	}
	return nil
}

func TestInstallPluginAddsRules(t *testing.T) {
	s := NewSession(domain.Document{Project: domain.NewProject("p")})
	meta, err := s.InstallPlugin(testPlugin{name: "oem", rules: []Rule{namedRule{name: "oem_naming", severity: domain.SeverityWarn}}})
	if err != nil {
		t.Fatalf("install: %v", err)
	}
	if meta.Name != "oem" || meta.Version != "1.0.0" || len(meta.Rules) != 1 || meta.Rules[0] != "oem_naming" {
		t.Fatalf("unexpected metadata %+v", meta)
	}
	res, err := s.Review(context.Background())
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	found := false
	for _, v := range res.Violations {
		found = found || v.Rule == "oem_naming"
	}
	if !found {
		t.Fatalf("expected plugin rule to run, got %+v", res.Violations)
	}
	if got := s.RegisteredPlugins(); len(got) != 1 || got[0].Name != "oem" {
		t.Fatalf("unexpected plugins %+v", got)
	}
}

func TestInstallPluginRejections(t *testing.T) {
	s := NewSession(domain.Document{Project: domain.NewProject("p")})
	before := len(s.engine.Rules())

	if _, err := s.InstallPlugin(nil); !errors.Is(err, ErrNilPlugin) {
		t.Fatalf("expected ErrNilPlugin, got %v", err)
	}
	boom := errors.New("boom")
	if _, err := s.InstallPlugin(testPlugin{name: "bad", err: boom}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped register error, got %v", err)
	}
	dup := testPlugin{name: "dup", rules: []Rule{namedRule{name: "x"}, namedRule{name: "x"}}}
	if _, err := s.InstallPlugin(dup); err == nil || !strings.Contains(err.Error(), "registered twice") {
		t.Fatalf("expected duplicate rule error, got %v", err)
	}
	clash := testPlugin{name: "clash", rules: []Rule{namedRule{name: "fresh"}, namedRule{name: "unique_ids"}}}
	if _, err := s.InstallPlugin(clash); err == nil {
		t.Fatalf("expected clash with built-in rule")
	}
	if got := len(s.engine.Rules()); got != before {
		t.Fatalf("failed installs must not register rules: %d -> %d", before, got)
	}

	ok := testPlugin{name: "ok"}
	if _, err := s.InstallPlugin(ok); err != nil {
		t.Fatalf("install: %v", err)
	}
	if _, err := s.InstallPlugin(ok); err == nil {
		t.Fatalf("expected second install to fail")
	}
}

func TestPluginRegistryIgnoresNilRule(t *testing.T) {
	r := NewPluginRegistry()
	if err := r.RegisterRule(nil); err != nil {
		t.Fatalf("nil rule: %v", err)
	}
	if len(r.Rules()) != 0 {
		t.Fatalf("expected no rules")
	}
}
