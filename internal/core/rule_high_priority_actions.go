package core

import (
	"context"
	"fmt"

	"fmeacore/pkg/domain"
)

// HighPriorityActionsRule warns about HIGH priority causes that have no open
// or completed optimization action.
func HighPriorityActionsRule() domain.Rule {
	return highPriorityActionsRule{}
}

type highPriorityActionsRule struct{}

func (highPriorityActionsRule) Name() string { return "high_priority_actions" }

func (highPriorityActionsRule) Evaluate(_ context.Context, doc domain.Document) (domain.Result, error) {
	res := domain.Result{}
	eachCause(doc.Structure, func(row RiskRow, c domain.Cause) {
		if c.ActionPriority != domain.PriorityHigh {
			return
		}
		for _, a := range c.Actions {
			if a.Status != domain.StatusDiscarded {
				return
			}
		}
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     "high_priority_actions",
			Severity: domain.SeverityWarn,
			Message:  fmt.Sprintf("cause %q of %s / %s is HIGH priority without an active action", c.Description, row.Element, row.FailureMode),
			Entity:   domain.EntityCause,
			EntityID: c.ID,
		})
	})
	return res, nil
}
