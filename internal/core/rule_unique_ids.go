package core

import (
	"context"
	"fmt"

	"fmeacore/pkg/domain"
)

// UniqueIDsRule blocks documents in which two entities share an id or an
// entity has no id at all.
func UniqueIDsRule() domain.Rule {
	return uniqueIDsRule{}
}

type uniqueIDsRule struct{}

func (uniqueIDsRule) Name() string { return "unique_ids" }

func (uniqueIDsRule) Evaluate(ctx context.Context, doc domain.Document) (domain.Result, error) {
	res := domain.Result{}
	seen := make(map[string]domain.EntityType)
	Walk(doc.Structure, func(ref Ref) bool {
		if ref.ID == "" {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "unique_ids",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("%s without id under %q", ref.Entity, ref.Owner),
				Entity:   ref.Entity,
			})
			return true
		}
		if first, dup := seen[ref.ID]; dup {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "unique_ids",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("%s %s reuses the id of a %s", ref.Entity, ref.ID, first),
				Entity:   ref.Entity,
				EntityID: ref.ID,
			})
			return true
		}
		seen[ref.ID] = ref.Entity
		return ctx.Err() == nil
	})
	return res, ctx.Err()
}
