package suggest

import (
	"context"

	"fmeacore/internal/core"
	"fmeacore/pkg/domain"
)

// Assistant runs suggestions against a session: it asks the provider outside
// the session lock, then merges the answer with Session.Apply.
type Assistant struct {
	provider Provider
	session  *core.Session
}

// NewAssistant binds provider to session.
func NewAssistant(provider Provider, session *core.Session) *Assistant {
	return &Assistant{provider: provider, session: session}
}

// Structure suggests child elements for the project scope.
func (a *Assistant) Structure(ctx context.Context) (core.Tree, error) {
	project := a.session.Project()
	names, err := a.provider.SuggestStructure(ctx, project.Scope, project.Type)
	if err != nil {
		return nil, err
	}
	return a.session.Apply(ctx, "suggest_structure", func(t core.Tree) (core.Tree, error) {
		return MergeStructure(t, project.Scope, names)
	})
}

// Functions suggests functions for the node.
func (a *Assistant) Functions(ctx context.Context, nodeID string) (core.Tree, error) {
	node, ok := core.FindNode(a.session.Tree(), nodeID)
	if !ok {
		return nil, domain.ErrNotFound{Entity: domain.EntityNode, ID: nodeID}
	}
	fns, err := a.provider.SuggestFunctions(ctx, node.Name, a.session.Project().Type)
	if err != nil {
		return nil, err
	}
	return a.session.Apply(ctx, "suggest_functions", func(t core.Tree) (core.Tree, error) {
		return MergeFunctions(t, nodeID, fns)
	})
}

// FailureModes suggests failure modes for the function.
func (a *Assistant) FailureModes(ctx context.Context, path core.FunctionPath) (core.Tree, error) {
	fn, ok := core.FindFunction(a.session.Tree(), path)
	if !ok {
		return nil, domain.ErrNotFound{Entity: domain.EntityFunction, ID: path.FunctionID}
	}
	modes, err := a.provider.SuggestFailureModes(ctx, fn.Description, a.session.Project().Type)
	if err != nil {
		return nil, err
	}
	return a.session.Apply(ctx, "suggest_failure_modes", func(t core.Tree) (core.Tree, error) {
		return MergeFailureModes(t, path, modes)
	})
}

// RiskAnalysis suggests an effect, cause and controls for the failure.
func (a *Assistant) RiskAnalysis(ctx context.Context, path core.FailurePath) (core.Tree, error) {
	failure, ok := core.FindFailure(a.session.Tree(), path)
	if !ok {
		return nil, domain.ErrNotFound{Entity: domain.EntityFailure, ID: path.FailureID}
	}
	risk, err := a.provider.SuggestRiskAnalysis(ctx, failure.FailureMode, a.session.Project().Type)
	if err != nil {
		return nil, err
	}
	return a.session.Apply(ctx, "suggest_risk_analysis", func(t core.Tree) (core.Tree, error) {
		return MergeRiskAnalysis(t, path, risk)
	})
}
