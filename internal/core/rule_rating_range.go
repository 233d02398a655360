package core

import (
	"context"
	"fmt"

	"fmeacore/pkg/domain"
)

// RatingRangeRule blocks S/O/D ratings outside [0,10] on causes and actions.
func RatingRangeRule() domain.Rule {
	return ratingRangeRule{}
}

type ratingRangeRule struct{}

func (ratingRangeRule) Name() string { return "rating_range" }

func (ratingRangeRule) Evaluate(_ context.Context, doc domain.Document) (domain.Result, error) {
	res := domain.Result{}
	check := func(entity domain.EntityType, id, label string, v int) {
		if domain.ValidRating(v) {
			return
		}
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     "rating_range",
			Severity: domain.SeverityBlock,
			Message:  fmt.Sprintf("%s %s has %s %d outside %d..%d", entity, id, label, v, domain.MinRating, domain.MaxRating),
			Entity:   entity,
			EntityID: id,
		})
	}
	eachCause(doc.Structure, func(_ RiskRow, c domain.Cause) {
		check(domain.EntityCause, c.ID, "severity", c.Severity)
		check(domain.EntityCause, c.ID, "occurrence", c.Occurrence)
		check(domain.EntityCause, c.ID, "detection", c.Detection)
		for _, a := range c.Actions {
			check(domain.EntityAction, a.ID, "new severity", a.NewSeverity)
			check(domain.EntityAction, a.ID, "new occurrence", a.NewOccurrence)
			check(domain.EntityAction, a.ID, "new detection", a.NewDetection)
		}
	})
	return res, nil
}
