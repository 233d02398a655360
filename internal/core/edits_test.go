package core

import (
	"reflect"
	"testing"

	"fmeacore/pkg/domain"
)

func TestAddActionStartsFromCauseRatings(t *testing.T) {
	f := newFixture()
	out, created := AddAction(f.tree, f.causePath(), "Add redundant sensor")
	if created.ID == "" {
		t.Fatalf("expected action to be created")
	}
	got, ok := FindAction(out, f.causePath().Action(created.ID))
	if !ok {
		t.Fatalf("created action not found")
	}
	if got.NewSeverity != f.cause.Severity || got.NewOccurrence != f.cause.Occurrence || got.NewDetection != f.cause.Detection {
		t.Fatalf("expected re-rating copied from cause, got %+v", got)
	}
	if got.NewActionPriority != f.cause.ActionPriority || got.Status != domain.StatusOpen || got.Description != "Add redundant sensor" {
		t.Fatalf("unexpected defaults %+v", got)
	}
	cause, _ := FindCause(out, f.causePath())
	if len(cause.Actions) != 2 || cause.Actions[0].ID != f.action.ID {
		t.Fatalf("expected action appended after existing one")
	}

	bad := f.causePath()
	bad.CauseID = "missing"
	same, none := AddAction(f.tree, bad, "x")
	if none.ID != "" || !reflect.DeepEqual(same, f.tree) {
		t.Fatalf("unknown cause must be a no-op")
	}
}

func TestSetCauseFieldRecomputesPriority(t *testing.T) {
	f := newFixture()
	out := SetCauseField(f.tree, f.causePath(), CauseFieldSeverity, "3")
	got, _ := FindCause(out, f.causePath())
	if got.Severity != 3 || got.ActionPriority != domain.PriorityLow {
		t.Fatalf("expected LOW after severity 3, got %+v", got)
	}
	out = SetCauseField(out, f.causePath(), CauseFieldOccurrence, "abc")
	got, _ = FindCause(out, f.causePath())
	if got.Occurrence != 0 {
		t.Fatalf("expected unparsable score to become 0, got %d", got.Occurrence)
	}
	out = SetCauseField(out, f.causePath(), CauseFieldPreventionControl, "Inspection")
	out = SetCauseField(out, f.causePath(), CauseFieldDetectionControl, "EOL test")
	out = SetCauseField(out, f.causePath(), CauseFieldDescription, "Pad glazing")
	out = SetCauseField(out, f.causePath(), CauseFieldDetection, " 9 ")
	got, _ = FindCause(out, f.causePath())
	if got.PreventionControl != "Inspection" || got.DetectionControl != "EOL test" || got.Description != "Pad glazing" || got.Detection != 9 {
		t.Fatalf("unexpected cause %+v", got)
	}
	if same := SetCauseField(f.tree, f.causePath(), CauseField("bogus"), "1"); !reflect.DeepEqual(same, f.tree) {
		t.Fatalf("unknown field must be a no-op")
	}
}

func TestSetActionFieldRecomputesNewPriority(t *testing.T) {
	f := newFixture()
	path := f.actionPath()
	out := SetActionField(f.tree, path, ActionFieldNewOccurrence, "1")
	out = SetActionField(out, path, ActionFieldNewDetection, "1")
	got, _ := FindAction(out, path)
	if got.NewActionPriority != domain.PriorityMedium {
		t.Fatalf("expected MEDIUM after mitigation, got %s", got.NewActionPriority)
	}
	out = SetActionField(out, path, ActionFieldNewSeverity, "2")
	got, _ = FindAction(out, path)
	if got.NewActionPriority != domain.PriorityLow {
		t.Fatalf("expected LOW, got %s", got.NewActionPriority)
	}
	for field, value := range map[ActionField]string{
		ActionFieldDescription:    "d",
		ActionFieldResponsible:    "QA",
		ActionFieldTargetDate:     "2025-01-01",
		ActionFieldStatus:         string(domain.StatusCompleted),
		ActionFieldTakenAction:    "done",
		ActionFieldCompletionDate: "2025-02-01",
	} {
		out = SetActionField(out, path, field, value)
	}
	got, _ = FindAction(out, path)
	if got.Responsible != "QA" || got.Status != domain.StatusCompleted || got.TakenAction != "done" || got.CompletionDate != "2025-02-01" || got.TargetDate != "2025-01-01" || got.Description != "d" {
		t.Fatalf("unexpected action %+v", got)
	}
	cause, _ := FindCause(out, f.causePath())
	if cause.ActionPriority != f.cause.ActionPriority {
		t.Fatalf("action edits must not change the cause priority")
	}
}

func TestRemoveEditsCascade(t *testing.T) {
	f := newFixture()
	out := RemoveAction(f.tree, f.actionPath())
	if Contains(out, f.action.ID) || !Contains(out, f.cause.ID) {
		t.Fatalf("remove action went wrong")
	}
	out = RemoveCause(f.tree, f.causePath())
	if Contains(out, f.cause.ID) || Contains(out, f.action.ID) {
		t.Fatalf("remove cause must drop its actions")
	}
	out = RemoveFailure(f.tree, f.failurePath())
	if Contains(out, f.failure.ID) || Contains(out, f.cause.ID) {
		t.Fatalf("remove failure must drop its causes")
	}
	for name, same := range map[string]Tree{
		"action":   RemoveAction(f.tree, f.causePath().Action("x")),
		"cause":    RemoveCause(f.tree, f.failurePath().Cause("x")),
		"failure":  RemoveFailure(f.tree, f.functionPath().Failure("x")),
		"function": RemoveFunction(f.tree, FunctionPath{NodeID: f.component.ID, FunctionID: "x"}),
	} {
		if !reflect.DeepEqual(same, f.tree) {
			t.Fatalf("removing unknown %s must be a no-op", name)
		}
	}
}

func TestEditMutatorsRebindReferences(t *testing.T) {
	f := newFixture()
	out := EditFunction(f.tree, f.functionPath(), func(fn *domain.Function) {
		fn.Requirements = "< 35m"
	})
	got, _ := FindFunction(out, f.functionPath())
	if got.Requirements != "< 35m" || got.NodeID != f.component.ID {
		t.Fatalf("unexpected function %+v", got)
	}
	out = EditFailure(out, f.failurePath(), func(fl *domain.Failure) {
		fl.FailureEffects = append(fl.FailureEffects, "Injury")
		extra := domain.NewCause("elsewhere", "Fluid leak")
		fl.Causes = append(fl.Causes, extra)
	})
	failure, _ := FindFailure(out, f.failurePath())
	if len(failure.FailureEffects) != 2 || failure.Causes[1].FailureID != f.failure.ID {
		t.Fatalf("unexpected failure %+v", failure)
	}
	out = EditAction(out, f.actionPath(), func(a *domain.Action) {
		a.NewSeverity = 1
		a.CauseID = "elsewhere"
	})
	action, _ := FindAction(out, f.actionPath())
	if action.CauseID != f.cause.ID || action.NewActionPriority != domain.PriorityLow {
		t.Fatalf("unexpected action %+v", action)
	}
	orig, _ := FindFailure(f.tree, f.failurePath())
	if len(orig.FailureEffects) != 1 {
		t.Fatalf("mutator leaked into the input tree")
	}
}

func TestScoreFieldsRejectOutOfRange(t *testing.T) {
	f := newFixture()
	for _, value := range []string{"15", "-1", "11"} {
		out := SetCauseField(f.tree, f.causePath(), CauseFieldSeverity, value)
		out = SetCauseField(out, f.causePath(), CauseFieldOccurrence, value)
		out = SetCauseField(out, f.causePath(), CauseFieldDetection, value)
		cause, _ := FindCause(out, f.causePath())
		if cause.Severity != 0 || cause.Occurrence != 0 || cause.Detection != 0 {
			t.Fatalf("%q: expected unset cause ratings, got %+v", value, cause)
		}
		if cause.ActionPriority != domain.Classify(0, 0, 0) {
			t.Fatalf("%q: priority not recomputed: %s", value, cause.ActionPriority)
		}

		out = SetActionField(f.tree, f.actionPath(), ActionFieldNewSeverity, value)
		out = SetActionField(out, f.actionPath(), ActionFieldNewOccurrence, value)
		out = SetActionField(out, f.actionPath(), ActionFieldNewDetection, value)
		action, _ := FindAction(out, f.actionPath())
		if action.NewSeverity != 0 || action.NewOccurrence != 0 || action.NewDetection != 0 {
			t.Fatalf("%q: expected unset action ratings, got %+v", value, action)
		}
	}
	out := SetCauseField(f.tree, f.causePath(), CauseFieldSeverity, "10")
	if cause, _ := FindCause(out, f.causePath()); cause.Severity != 10 {
		t.Fatalf("expected upper bound to be kept, got %d", cause.Severity)
	}
}
