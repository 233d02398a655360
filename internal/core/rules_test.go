package core

import (
	"context"
	"errors"
	"testing"

	"fmeacore/pkg/domain"
)

func fixtureDocument(f fixture) domain.Document {
	project := domain.NewProject("Brakes")
	return domain.Document{Project: project, Structure: f.tree}
}

func violationsFor(t *testing.T, rule domain.Rule, doc domain.Document) []domain.Violation {
	t.Helper()
	res, err := rule.Evaluate(context.Background(), doc)
	if err != nil {
		t.Fatalf("%s: unexpected error %v", rule.Name(), err)
	}
	return res.Violations
}

func TestDefaultRulesEngineAcceptsFixture(t *testing.T) {
	engine := NewDefaultRulesEngine()
	want := []string{"unique_ids", "rating_range", "priority_consistency", "parent_references", "high_priority_actions"}
	names := engine.Rules()
	if len(names) != len(want) {
		t.Fatalf("expected %d rules, got %v", len(want), names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("rule %d: expected %s, got %s", i, want[i], names[i])
		}
	}
	res, err := engine.Evaluate(context.Background(), fixtureDocument(newFixture()))
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(res.Violations) != 0 {
		t.Fatalf("expected clean review, got %+v", res.Violations)
	}
	if len(NewRulesEngine().Rules()) != 0 {
		t.Fatalf("expected empty engine")
	}
}

func TestUniqueIDsRule(t *testing.T) {
	f := newFixture()
	dup := domain.NewCause(f.failure.ID, "Duplicate")
	dup.ID = f.cause.ID
	tree := UpdateCauses(f.tree, f.failurePath(), []domain.Cause{f.cause, dup})
	tree = AddNode(tree, nil, domain.StructureNode{Name: "No id"})

	got := violationsFor(t, UniqueIDsRule(), domain.Document{Structure: tree})
	if len(got) != 2 {
		t.Fatalf("expected duplicate and missing id, got %+v", got)
	}
	for _, v := range got {
		if v.Severity != domain.SeverityBlock || v.Rule != "unique_ids" {
			t.Fatalf("unexpected violation %+v", v)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := UniqueIDsRule().Evaluate(ctx, fixtureDocument(f)); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
}

func TestRatingRangeRule(t *testing.T) {
	f := newFixture()
	tree := SetCauseField(f.tree, f.causePath(), CauseFieldOccurrence, "11")
	tree = SetActionField(tree, f.actionPath(), ActionFieldNewDetection, "-1")
	got := violationsFor(t, RatingRangeRule(), domain.Document{Structure: tree})
	if len(got) != 2 {
		t.Fatalf("expected two out of range ratings, got %+v", got)
	}
	if got[0].Entity != domain.EntityCause || got[1].Entity != domain.EntityAction {
		t.Fatalf("unexpected entities %+v", got)
	}
}

func TestPriorityConsistencyRule(t *testing.T) {
	f := newFixture()
	tampered := Tree(domain.CloneNodes(f.tree))
	cause := &tampered[0].Children[0].Functions[0].Failures[0].Causes[0]
	cause.ActionPriority = domain.PriorityLow
	cause.Actions[0].NewActionPriority = domain.PriorityLow

	got := violationsFor(t, PriorityConsistencyRule(), domain.Document{Structure: tampered})
	if len(got) != 2 || got[0].EntityID != f.cause.ID || got[1].EntityID != f.action.ID {
		t.Fatalf("unexpected violations %+v", got)
	}
	if len(violationsFor(t, PriorityConsistencyRule(), fixtureDocument(f))) != 0 {
		t.Fatalf("fixture priorities must be consistent")
	}
}

func TestParentReferencesRule(t *testing.T) {
	f := newFixture()
	broken := Tree(domain.CloneNodes(f.tree))
	broken[0].Children[0].Functions[0].NodeID = "elsewhere"

	got := violationsFor(t, ParentReferencesRule(), domain.Document{Structure: broken})
	if len(got) != 1 {
		t.Fatalf("expected one violation, got %+v", got)
	}
	if got[0].Severity != domain.SeverityWarn || got[0].EntityID != f.fn.ID {
		t.Fatalf("unexpected violation %+v", got[0])
	}
}

func TestHighPriorityActionsRule(t *testing.T) {
	f := newFixture()
	if got := violationsFor(t, HighPriorityActionsRule(), fixtureDocument(f)); len(got) != 0 {
		t.Fatalf("open action should satisfy the rule, got %+v", got)
	}
	discarded := SetActionField(f.tree, f.actionPath(), ActionFieldStatus, string(domain.StatusDiscarded))
	got := violationsFor(t, HighPriorityActionsRule(), domain.Document{Structure: discarded})
	if len(got) != 1 || got[0].EntityID != f.cause.ID {
		t.Fatalf("expected warning for discarded-only cause, got %+v", got)
	}
	bare := RemoveAction(f.tree, f.actionPath())
	if got := violationsFor(t, HighPriorityActionsRule(), domain.Document{Structure: bare}); len(got) != 1 {
		t.Fatalf("expected warning for cause without actions, got %+v", got)
	}
}

func TestEngineWarningsDoNotBlock(t *testing.T) {
	f := newFixture()
	bare := RemoveAction(f.tree, f.actionPath())
	res, err := NewDefaultRulesEngine().Evaluate(context.Background(), domain.Document{Structure: bare})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(res.Violations) != 1 || res.HasBlocking() {
		t.Fatalf("expected a single non-blocking warning, got %+v", res.Violations)
	}
}
