package core

import (
	"strconv"
	"strings"

	"fmeacore/pkg/domain"
)

// CauseField names an editable cause field.
type CauseField string

// Editable cause fields. Score fields take decimal integers; anything
// unparsable is stored as 0 (unset).
const (
	CauseFieldDescription       CauseField = "description"
	CauseFieldPreventionControl CauseField = "preventionControl"
	CauseFieldDetectionControl  CauseField = "detectionControl"
	CauseFieldSeverity          CauseField = "severity"
	CauseFieldOccurrence        CauseField = "occurrence"
	CauseFieldDetection         CauseField = "detection"
)

// ActionField names an editable action field.
type ActionField string

// Editable action fields.
const (
	ActionFieldDescription    ActionField = "description"
	ActionFieldResponsible    ActionField = "responsible"
	ActionFieldTargetDate     ActionField = "targetDate"
	ActionFieldStatus         ActionField = "status"
	ActionFieldTakenAction    ActionField = "takenAction"
	ActionFieldCompletionDate ActionField = "completionDate"
	ActionFieldNewSeverity    ActionField = "newSeverity"
	ActionFieldNewOccurrence  ActionField = "newOccurrence"
	ActionFieldNewDetection   ActionField = "newDetection"
)

// AddFunction appends fn to the node's functions.
func AddFunction(tree Tree, nodeID string, fn domain.Function) Tree {
	node, ok := FindNode(tree, nodeID)
	if !ok {
		return tree
	}
	return UpdateFunctions(tree, nodeID, appendCopy(node.Functions, fn))
}

// RemoveFunction drops the function and everything it owns.
func RemoveFunction(tree Tree, path FunctionPath) Tree {
	node, ok := FindNode(tree, path.NodeID)
	if !ok {
		return tree
	}
	for i, fn := range node.Functions {
		if fn.ID == path.FunctionID {
			return UpdateFunctions(tree, path.NodeID, removeAt(node.Functions, i))
		}
	}
	return tree
}

// EditFunction applies mutate to a copy of the function at path.
func EditFunction(tree Tree, path FunctionPath, mutate func(*domain.Function)) Tree {
	return mapFunction(tree, path, func(fn domain.Function) (domain.Function, bool) {
		fn.Failures = cloneSlice(fn.Failures)
		mutate(&fn)
		fn.Failures = bindFailures(fn.ID, fn.Failures)
		return fn, true
	})
}

// AddFailure appends failure to the function at path.
func AddFailure(tree Tree, path FunctionPath, failure domain.Failure) Tree {
	fn, ok := FindFunction(tree, path)
	if !ok {
		return tree
	}
	return UpdateFailures(tree, path, appendCopy(fn.Failures, failure))
}

// RemoveFailure drops the failure and everything it owns.
func RemoveFailure(tree Tree, path FailurePath) Tree {
	fn, ok := FindFunction(tree, path.FunctionPath)
	if !ok {
		return tree
	}
	for i, f := range fn.Failures {
		if f.ID == path.FailureID {
			return UpdateFailures(tree, path.FunctionPath, removeAt(fn.Failures, i))
		}
	}
	return tree
}

// EditFailure applies mutate to a copy of the failure at path.
func EditFailure(tree Tree, path FailurePath, mutate func(*domain.Failure)) Tree {
	return mapFailure(tree, path, func(f domain.Failure) (domain.Failure, bool) {
		f.FailureEffects = cloneSlice(f.FailureEffects)
		f.Causes = cloneSlice(f.Causes)
		mutate(&f)
		f.Causes = bindCauses(f.ID, f.Causes)
		return f, true
	})
}

// AddCause appends cause to the failure at path.
func AddCause(tree Tree, path FailurePath, cause domain.Cause) Tree {
	failure, ok := FindFailure(tree, path)
	if !ok {
		return tree
	}
	return UpdateCauses(tree, path, appendCopy(failure.Causes, cause))
}

// RemoveCause drops the cause and its actions.
func RemoveCause(tree Tree, path CausePath) Tree {
	failure, ok := FindFailure(tree, path.FailurePath)
	if !ok {
		return tree
	}
	for i, c := range failure.Causes {
		if c.ID == path.CauseID {
			return UpdateCauses(tree, path.FailurePath, removeAt(failure.Causes, i))
		}
	}
	return tree
}

// EditCause applies mutate to a copy of the cause at path and re-derives its
// priority.
func EditCause(tree Tree, path CausePath, mutate func(*domain.Cause)) Tree {
	return mapCause(tree, path, func(c domain.Cause) (domain.Cause, bool) {
		c.Actions = cloneSlice(c.Actions)
		mutate(&c)
		c.Actions = bindActions(c.ID, c.Actions)
		return c, true
	})
}

// SetCauseField sets one cause field from its textual form. Unknown fields
// are ignored.
func SetCauseField(tree Tree, path CausePath, field CauseField, value string) Tree {
	return mapCause(tree, path, func(c domain.Cause) (domain.Cause, bool) {
		switch field {
		case CauseFieldDescription:
			c.Description = value
		case CauseFieldPreventionControl:
			c.PreventionControl = value
		case CauseFieldDetectionControl:
			c.DetectionControl = value
		case CauseFieldSeverity:
			c.Severity = parseScore(value)
		case CauseFieldOccurrence:
			c.Occurrence = parseScore(value)
		case CauseFieldDetection:
			c.Detection = parseScore(value)
		default:
			return c, false
		}
		return c, true
	})
}

// AddAction appends a new open action to the cause at path. The action's
// re-rating starts from the cause's current ratings. The created action is
// returned; its ID is empty when the cause was not found.
func AddAction(tree Tree, path CausePath, description string) (Tree, domain.Action) {
	var created domain.Action
	out := mapCause(tree, path, func(c domain.Cause) (domain.Cause, bool) {
		created = domain.NewAction(c)
		created.Description = description
		c.Actions = appendCopy(c.Actions, created)
		return c, true
	})
	return out, created
}

// RemoveAction drops the action.
func RemoveAction(tree Tree, path ActionPath) Tree {
	cause, ok := FindCause(tree, path.CausePath)
	if !ok {
		return tree
	}
	for i, a := range cause.Actions {
		if a.ID == path.ActionID {
			return UpdateActions(tree, path.CausePath, removeAt(cause.Actions, i))
		}
	}
	return tree
}

// EditAction applies mutate to a copy of the action at path and re-derives
// its post-mitigation priority.
func EditAction(tree Tree, path ActionPath, mutate func(*domain.Action)) Tree {
	return mapAction(tree, path, func(a domain.Action) (domain.Action, bool) {
		mutate(&a)
		a.CauseID = path.CauseID
		return domain.NormalizeAction(a), true
	})
}

// SetActionField sets one action field from its textual form. Unknown fields
// are ignored.
func SetActionField(tree Tree, path ActionPath, field ActionField, value string) Tree {
	return mapAction(tree, path, func(a domain.Action) (domain.Action, bool) {
		switch field {
		case ActionFieldDescription:
			a.Description = value
		case ActionFieldResponsible:
			a.Responsible = value
		case ActionFieldTargetDate:
			a.TargetDate = value
		case ActionFieldStatus:
			a.Status = domain.ActionStatus(value)
		case ActionFieldTakenAction:
			a.TakenAction = value
		case ActionFieldCompletionDate:
			a.CompletionDate = value
		case ActionFieldNewSeverity:
			a.NewSeverity = parseScore(value)
		case ActionFieldNewOccurrence:
			a.NewOccurrence = parseScore(value)
		case ActionFieldNewDetection:
			a.NewDetection = parseScore(value)
		default:
			return a, false
		}
		return domain.NormalizeAction(a), true
	})
}

func parseScore(value string) int {
	v, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || !domain.ValidRating(v) {
		return 0
	}
	return v
}

func appendCopy[E any](s []E, v E) []E {
	out := make([]E, len(s), len(s)+1)
	copy(out, s)
	return append(out, v)
}

// cloneSlice copies the top level of s so a mutator can assign elements
// without touching the input tree. A nil slice stays nil.
func cloneSlice[E any](s []E) []E {
	if s == nil {
		return nil
	}
	out := make([]E, len(s))
	copy(out, s)
	return out
}
