package core

import "fmeacore/pkg/domain"

type (
	Rule        = domain.Rule
	RulesEngine = domain.RulesEngine
	Result      = domain.Result
	Violation   = domain.Violation
)

// NewRulesEngine constructs an empty engine.
func NewRulesEngine() *RulesEngine {
	return domain.NewRulesEngine()
}

// NewDefaultRulesEngine builds a rules engine with the built-in review set.
func NewDefaultRulesEngine() *RulesEngine {
	engine := domain.NewRulesEngine()
	engine.Register(UniqueIDsRule())
	engine.Register(RatingRangeRule())
	engine.Register(PriorityConsistencyRule())
	engine.Register(ParentReferencesRule())
	engine.Register(HighPriorityActionsRule())
	return engine
}
