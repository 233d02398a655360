package core

import (
	"context"
	"fmt"

	"fmeacore/pkg/domain"
)

// ParentReferencesRule warns when a stored back-reference does not name the
// entity that actually owns the record.
func ParentReferencesRule() domain.Rule {
	return parentReferencesRule{}
}

type parentReferencesRule struct{}

func (parentReferencesRule) Name() string { return "parent_references" }

func (parentReferencesRule) Evaluate(_ context.Context, doc domain.Document) (domain.Result, error) {
	res := domain.Result{}
	Walk(doc.Structure, func(ref Ref) bool {
		if ref.Declared == ref.Owner {
			return true
		}
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     "parent_references",
			Severity: domain.SeverityWarn,
			Message:  fmt.Sprintf("%s %s references %q but is owned by %q", ref.Entity, ref.ID, ref.Declared, ref.Owner),
			Entity:   ref.Entity,
			EntityID: ref.ID,
		})
		return true
	})
	return res, nil
}
