// Package suggest asks a language model for analysis content and merges the
// answers into a structure tree.
package suggest

import (
	"context"
	"errors"

	"fmeacore/pkg/domain"
)

// ErrNoSuggestions is returned when the service answered with nothing usable.
var ErrNoSuggestions = errors.New("suggest: no suggestions returned")

// FunctionSuggestion is one proposed function with its requirements.
type FunctionSuggestion struct {
	Description  string `json:"description"`
	Requirements string `json:"requirements"`
}

// RiskSuggestion is a proposed effect, cause and control pair for one failure mode.
type RiskSuggestion struct {
	Effect     string `json:"effect"`
	Cause      string `json:"cause"`
	Prevention string `json:"prevention"`
	Detection  string `json:"detection"`
}

// Empty reports whether no field carries text.
func (r RiskSuggestion) Empty() bool {
	return r.Effect == "" && r.Cause == "" && r.Prevention == "" && r.Detection == ""
}

// Provider is the suggestion-service boundary.
type Provider interface {
	SuggestStructure(ctx context.Context, scope string, kind domain.FmeaType) ([]string, error)
	SuggestFunctions(ctx context.Context, item string, kind domain.FmeaType) ([]FunctionSuggestion, error)
	SuggestFailureModes(ctx context.Context, function string, kind domain.FmeaType) ([]string, error)
	SuggestRiskAnalysis(ctx context.Context, mode string, kind domain.FmeaType) (RiskSuggestion, error)
}
