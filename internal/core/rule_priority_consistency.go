package core

import (
	"context"
	"fmt"

	"fmeacore/pkg/domain"
)

// PriorityConsistencyRule blocks documents whose stored action priorities
// disagree with the active classifier, e.g. hand-edited files.
func PriorityConsistencyRule() domain.Rule {
	return priorityConsistencyRule{}
}

type priorityConsistencyRule struct{}

func (priorityConsistencyRule) Name() string { return "priority_consistency" }

func (priorityConsistencyRule) Evaluate(_ context.Context, doc domain.Document) (domain.Result, error) {
	res := domain.Result{}
	eachCause(doc.Structure, func(_ RiskRow, c domain.Cause) {
		if want := domain.Classify(c.Severity, c.Occurrence, c.Detection); c.ActionPriority != want {
			res.Violations = append(res.Violations, priorityViolation(domain.EntityCause, c.ID, c.ActionPriority, want))
		}
		for _, a := range c.Actions {
			if want := domain.Classify(a.NewSeverity, a.NewOccurrence, a.NewDetection); a.NewActionPriority != want {
				res.Violations = append(res.Violations, priorityViolation(domain.EntityAction, a.ID, a.NewActionPriority, want))
			}
		}
	})
	return res, nil
}

func priorityViolation(entity domain.EntityType, id string, got, want domain.ActionPriority) domain.Violation {
	return domain.Violation{
		Rule:     "priority_consistency",
		Severity: domain.SeverityBlock,
		Message:  fmt.Sprintf("%s %s stores priority %q, ratings give %q", entity, id, got, want),
		Entity:   entity,
		EntityID: id,
	}
}
