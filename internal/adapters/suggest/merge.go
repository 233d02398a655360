package suggest

import (
	"fmeacore/internal/core"
	"fmeacore/pkg/domain"
)

// DefaultRootName names the root created for an empty tree without a scope.
const DefaultRootName = "Root System"

// DefaultCauseName is used when a risk suggestion carries no cause text.
const DefaultCauseName = "Suggested Cause"

// MergeStructure adds names as component children. An empty tree gets a new
// system root named after scope; otherwise the first root receives them.
func MergeStructure(tree core.Tree, scope string, names []string) (core.Tree, error) {
	names = nonEmpty(names)
	if len(names) == 0 {
		return tree, ErrNoSuggestions
	}
	if len(tree) == 0 {
		if scope == "" {
			scope = DefaultRootName
		}
		root := domain.NewStructureNode(nil, scope, domain.KindSystem)
		for _, name := range names {
			root.Children = append(root.Children, domain.NewStructureNode(&root.ID, name, domain.KindComponent))
		}
		return core.AddNode(tree, nil, root), nil
	}
	rootID := tree[0].ID
	out := tree
	for _, name := range names {
		out = core.AddNode(out, &rootID, domain.NewStructureNode(&rootID, name, domain.KindComponent))
	}
	return out, nil
}

// MergeFunctions appends the suggested functions to the node.
func MergeFunctions(tree core.Tree, nodeID string, suggestions []FunctionSuggestion) (core.Tree, error) {
	node, ok := core.FindNode(tree, nodeID)
	if !ok {
		return tree, domain.ErrNotFound{Entity: domain.EntityNode, ID: nodeID}
	}
	fns := append([]domain.Function(nil), node.Functions...)
	added := 0
	for _, s := range suggestions {
		if s.Description == "" {
			continue
		}
		fns = append(fns, domain.NewFunction(nodeID, s.Description, s.Requirements))
		added++
	}
	if added == 0 {
		return tree, ErrNoSuggestions
	}
	return core.UpdateFunctions(tree, nodeID, fns), nil
}

// MergeFailureModes appends one failure per suggested mode to the function.
func MergeFailureModes(tree core.Tree, path core.FunctionPath, modes []string) (core.Tree, error) {
	fn, ok := core.FindFunction(tree, path)
	if !ok {
		return tree, domain.ErrNotFound{Entity: domain.EntityFunction, ID: path.FunctionID}
	}
	modes = nonEmpty(modes)
	if len(modes) == 0 {
		return tree, ErrNoSuggestions
	}
	failures := append([]domain.Failure(nil), fn.Failures...)
	for _, mode := range modes {
		failures = append(failures, domain.NewFailure(fn.ID, mode))
	}
	return core.UpdateFailures(tree, path, failures), nil
}

// MergeRiskAnalysis appends the suggested effect to the failure and adds an
// unrated cause carrying the suggested controls.
func MergeRiskAnalysis(tree core.Tree, path core.FailurePath, s RiskSuggestion) (core.Tree, error) {
	if _, ok := core.FindFailure(tree, path); !ok {
		return tree, domain.ErrNotFound{Entity: domain.EntityFailure, ID: path.FailureID}
	}
	if s.Empty() {
		return tree, ErrNoSuggestions
	}
	return core.EditFailure(tree, path, func(f *domain.Failure) {
		if s.Effect != "" {
			f.FailureEffects = append(f.FailureEffects, s.Effect)
		}
		description := s.Cause
		if description == "" {
			description = DefaultCauseName
		}
		cause := domain.NewCause(f.ID, description)
		cause.PreventionControl = s.Prevention
		cause.DetectionControl = s.Detection
		f.Causes = append(f.Causes, cause)
	}), nil
}
