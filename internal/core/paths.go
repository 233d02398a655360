package core

// FunctionPath addresses a function by its owning node.
type FunctionPath struct {
	NodeID     string
	FunctionID string
}

// Failure extends the path to a failure of the function.
func (p FunctionPath) Failure(failureID string) FailurePath {
	return FailurePath{FunctionPath: p, FailureID: failureID}
}

// FailurePath addresses a failure by its full ancestor chain.
type FailurePath struct {
	FunctionPath
	FailureID string
}

// Cause extends the path to a cause of the failure.
func (p FailurePath) Cause(causeID string) CausePath {
	return CausePath{FailurePath: p, CauseID: causeID}
}

// CausePath addresses a cause by its full ancestor chain.
type CausePath struct {
	FailurePath
	CauseID string
}

// Action extends the path to an action of the cause.
func (p CausePath) Action(actionID string) ActionPath {
	return ActionPath{CausePath: p, ActionID: actionID}
}

// ActionPath addresses an action by its full ancestor chain.
type ActionPath struct {
	CausePath
	ActionID string
}
