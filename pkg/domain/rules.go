package domain

import (
	"context"
	"fmt"
	"sync"
)

// Severity captures review rule outcomes.
type Severity string

// Rule evaluation severities determine save behavior and logging.
const (
	// SeverityBlock blocks the document from being saved.
	SeverityBlock Severity = "block"
	// SeverityWarn reports a finding but allows the save.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// Rule defines a review check evaluated against a whole document.
type Rule interface {
	Name() string
	Evaluate(ctx context.Context, doc Document) (Result, error)
}

// RulesEngine orchestrates rule evaluation. It is safe for concurrent use.
type RulesEngine struct {
	mu    sync.RWMutex
	rules []Rule
}

// NewRulesEngine constructs an engine instance.
func NewRulesEngine() *RulesEngine {
	return &RulesEngine{}
}

// Register appends a rule to the engine.
func (e *RulesEngine) Register(rule Rule) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rules = append(e.rules, rule)
}

// Rules returns the registered rule names in registration order.
func (e *RulesEngine) Rules() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, len(e.rules))
	for i, r := range e.rules {
		names[i] = r.Name()
	}
	return names
}

// Evaluate executes all registered rules and aggregates their results.
func (e *RulesEngine) Evaluate(ctx context.Context, doc Document) (Result, error) {
	e.mu.RLock()
	rules := append([]Rule(nil), e.rules...)
	e.mu.RUnlock()
	var combined Result
	for _, rule := range rules {
		res, err := rule.Evaluate(ctx, doc)
		if err != nil {
			return Result{}, fmt.Errorf("rule %s: %w", rule.Name(), err)
		}
		combined.Merge(res)
	}
	return combined, nil
}

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string     `json:"rule"`
	Severity Severity   `json:"severity"`
	Message  string     `json:"message"`
	Entity   EntityType `json:"entity"`
	EntityID string     `json:"entity_id"`
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation `json:"violations"`
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	return fmt.Sprintf("document blocked by %d review violation(s)", len(e.Result.Violations))
}
