package core

import "fmeacore/pkg/domain"

// Tree is one immutable snapshot of the structure forest. Operations never
// mutate their input; they return a new snapshot that shares every subtree
// outside the edited path. Edits addressed to an unknown id or path are
// no-ops and return the input unchanged.
type Tree []domain.StructureNode

// NodeField names a scalar field of a structure node.
type NodeField string

// Editable node fields.
const (
	NodeFieldName NodeField = "name"
	NodeFieldKind NodeField = "kind"
)

// AddNode appends node to the children of parentID, or to the top level when
// parentID is nil. Back-references inside node are rebound to its new owner.
// A node whose id is already taken in the tree is ignored.
func AddNode(tree Tree, parentID *string, node domain.StructureNode) Tree {
	if Contains(tree, node.ID) {
		return tree
	}
	if parentID == nil {
		node = bindNode(nil, node)
		return appendNode(tree, node)
	}
	out, _ := mapNode(tree, *parentID, func(parent domain.StructureNode) (domain.StructureNode, bool) {
		parent.Children = appendNode(parent.Children, bindNode(&parent.ID, node))
		return parent, true
	})
	return out
}

// DeleteNode removes the node with id together with everything it owns.
func DeleteNode(tree Tree, id string) Tree {
	out, _ := removeNode(tree, id)
	return out
}

// UpdateNodeField replaces a scalar field of the node. Children and functions
// are left untouched. Unknown fields are ignored.
func UpdateNodeField(tree Tree, id string, field NodeField, value string) Tree {
	out, _ := mapNode(tree, id, func(n domain.StructureNode) (domain.StructureNode, bool) {
		switch field {
		case NodeFieldName:
			n.Name = value
		case NodeFieldKind:
			n.Kind = domain.NodeKind(value)
		default:
			return n, false
		}
		return n, true
	})
	return out
}

// UpdateFunctions replaces the function sequence of the node.
func UpdateFunctions(tree Tree, nodeID string, fns []domain.Function) Tree {
	out, _ := mapNode(tree, nodeID, func(n domain.StructureNode) (domain.StructureNode, bool) {
		n.Functions = bindFunctions(n.ID, fns)
		return n, true
	})
	return out
}

// UpdateFailures replaces the failure sequence of the function at path.
func UpdateFailures(tree Tree, path FunctionPath, failures []domain.Failure) Tree {
	return mapFunction(tree, path, func(fn domain.Function) (domain.Function, bool) {
		fn.Failures = bindFailures(fn.ID, failures)
		return fn, true
	})
}

// UpdateCauses replaces the cause sequence of the failure at path. Every
// cause and action priority is re-derived.
func UpdateCauses(tree Tree, path FailurePath, causes []domain.Cause) Tree {
	return mapFailure(tree, path, func(f domain.Failure) (domain.Failure, bool) {
		f.Causes = bindCauses(f.ID, causes)
		return f, true
	})
}

// UpdateActions replaces the action sequence of the cause at path. Every
// action priority is re-derived.
func UpdateActions(tree Tree, path CausePath, actions []domain.Action) Tree {
	return mapCause(tree, path, func(c domain.Cause) (domain.Cause, bool) {
		c.Actions = bindActions(c.ID, actions)
		return c, true
	})
}

// FindNode locates a node anywhere in the tree, depth-first.
func FindNode(tree Tree, id string) (domain.StructureNode, bool) {
	for _, n := range tree {
		if n.ID == id {
			return n, true
		}
		if found, ok := FindNode(n.Children, id); ok {
			return found, true
		}
	}
	return domain.StructureNode{}, false
}

// FindFunction locates a function by path.
func FindFunction(tree Tree, path FunctionPath) (domain.Function, bool) {
	node, ok := FindNode(tree, path.NodeID)
	if !ok {
		return domain.Function{}, false
	}
	for _, fn := range node.Functions {
		if fn.ID == path.FunctionID {
			return fn, true
		}
	}
	return domain.Function{}, false
}

// FindFailure locates a failure by path.
func FindFailure(tree Tree, path FailurePath) (domain.Failure, bool) {
	fn, ok := FindFunction(tree, path.FunctionPath)
	if !ok {
		return domain.Failure{}, false
	}
	for _, f := range fn.Failures {
		if f.ID == path.FailureID {
			return f, true
		}
	}
	return domain.Failure{}, false
}

// FindCause locates a cause by path.
func FindCause(tree Tree, path CausePath) (domain.Cause, bool) {
	failure, ok := FindFailure(tree, path.FailurePath)
	if !ok {
		return domain.Cause{}, false
	}
	for _, c := range failure.Causes {
		if c.ID == path.CauseID {
			return c, true
		}
	}
	return domain.Cause{}, false
}

// FindAction locates an action by path.
func FindAction(tree Tree, path ActionPath) (domain.Action, bool) {
	cause, ok := FindCause(tree, path.CausePath)
	if !ok {
		return domain.Action{}, false
	}
	for _, a := range cause.Actions {
		if a.ID == path.ActionID {
			return a, true
		}
	}
	return domain.Action{}, false
}

// Contains reports whether any entity in the tree, at any level, has id.
func Contains(tree Tree, id string) bool {
	found := false
	Walk(tree, func(ref Ref) bool {
		if ref.ID == id {
			found = true
			return false
		}
		return true
	})
	return found
}

// Count returns the number of entities at every level of the tree.
func Count(tree Tree) int {
	n := 0
	Walk(tree, func(Ref) bool {
		n++
		return true
	})
	return n
}

// Ref describes one visited entity. Declared is the back-reference stored on
// the entity; Owner is the id of the entity that actually holds it. Both are
// empty for top-level nodes.
type Ref struct {
	Entity   domain.EntityType
	ID       string
	Declared string
	Owner    string
}

// Walk visits every entity depth-first, parent before children, in sibling
// order. Returning false from fn stops the walk.
func Walk(tree Tree, fn func(Ref) bool) {
	walkNodes(tree, "", fn)
}

func walkNodes(nodes []domain.StructureNode, owner string, fn func(Ref) bool) bool {
	for _, n := range nodes {
		declared := ""
		if n.ParentID != nil {
			declared = *n.ParentID
		}
		if !fn(Ref{Entity: domain.EntityNode, ID: n.ID, Declared: declared, Owner: owner}) {
			return false
		}
		for _, f := range n.Functions {
			if !walkFunction(f, n.ID, fn) {
				return false
			}
		}
		if !walkNodes(n.Children, n.ID, fn) {
			return false
		}
	}
	return true
}

func walkFunction(f domain.Function, owner string, fn func(Ref) bool) bool {
	if !fn(Ref{Entity: domain.EntityFunction, ID: f.ID, Declared: f.NodeID, Owner: owner}) {
		return false
	}
	for _, failure := range f.Failures {
		if !fn(Ref{Entity: domain.EntityFailure, ID: failure.ID, Declared: failure.FunctionID, Owner: f.ID}) {
			return false
		}
		for _, c := range failure.Causes {
			if !fn(Ref{Entity: domain.EntityCause, ID: c.ID, Declared: c.FailureID, Owner: failure.ID}) {
				return false
			}
			for _, a := range c.Actions {
				if !fn(Ref{Entity: domain.EntityAction, ID: a.ID, Declared: a.CauseID, Owner: c.ID}) {
					return false
				}
			}
		}
	}
	return true
}

// mapNode rebuilds the ancestors of the node with id after applying edit.
// When the node is missing or edit declines, the input is returned as is.
func mapNode(nodes Tree, id string, edit func(domain.StructureNode) (domain.StructureNode, bool)) (Tree, bool) {
	for i, n := range nodes {
		if n.ID == id {
			updated, ok := edit(n)
			if !ok {
				return nodes, false
			}
			return replaceAt(nodes, i, updated), true
		}
		if children, ok := mapNode(n.Children, id, edit); ok {
			n.Children = children
			return replaceAt(nodes, i, n), true
		}
	}
	return nodes, false
}

func mapFunction(tree Tree, path FunctionPath, edit func(domain.Function) (domain.Function, bool)) Tree {
	out, _ := mapNode(tree, path.NodeID, func(n domain.StructureNode) (domain.StructureNode, bool) {
		for i, fn := range n.Functions {
			if fn.ID != path.FunctionID {
				continue
			}
			updated, ok := edit(fn)
			if !ok {
				return n, false
			}
			n.Functions = replaceAt(n.Functions, i, updated)
			return n, true
		}
		return n, false
	})
	return out
}

func mapFailure(tree Tree, path FailurePath, edit func(domain.Failure) (domain.Failure, bool)) Tree {
	return mapFunction(tree, path.FunctionPath, func(fn domain.Function) (domain.Function, bool) {
		for i, f := range fn.Failures {
			if f.ID != path.FailureID {
				continue
			}
			updated, ok := edit(f)
			if !ok {
				return fn, false
			}
			fn.Failures = replaceAt(fn.Failures, i, updated)
			return fn, true
		}
		return fn, false
	})
}

func mapCause(tree Tree, path CausePath, edit func(domain.Cause) (domain.Cause, bool)) Tree {
	return mapFailure(tree, path.FailurePath, func(f domain.Failure) (domain.Failure, bool) {
		for i, c := range f.Causes {
			if c.ID != path.CauseID {
				continue
			}
			updated, ok := edit(c)
			if !ok {
				return f, false
			}
			f.Causes = replaceAt(f.Causes, i, domain.NormalizeCause(updated))
			return f, true
		}
		return f, false
	})
}

func mapAction(tree Tree, path ActionPath, edit func(domain.Action) (domain.Action, bool)) Tree {
	return mapCause(tree, path.CausePath, func(c domain.Cause) (domain.Cause, bool) {
		for i, a := range c.Actions {
			if a.ID != path.ActionID {
				continue
			}
			updated, ok := edit(a)
			if !ok {
				return c, false
			}
			c.Actions = replaceAt(c.Actions, i, updated)
			return c, true
		}
		return c, false
	})
}

func removeNode(nodes Tree, id string) (Tree, bool) {
	for i, n := range nodes {
		if n.ID == id {
			return removeAt(nodes, i), true
		}
		if children, ok := removeNode(n.Children, id); ok {
			n.Children = children
			return replaceAt(nodes, i, n), true
		}
	}
	return nodes, false
}

// replaceAt returns a copy of s with index i set to v.
func replaceAt[S ~[]E, E any](s S, i int, v E) S {
	out := make(S, len(s))
	copy(out, s)
	out[i] = v
	return out
}

// removeAt returns a copy of s without index i.
func removeAt[S ~[]E, E any](s S, i int) S {
	out := make(S, 0, len(s)-1)
	out = append(out, s[:i]...)
	return append(out, s[i+1:]...)
}

func appendNode[S ~[]domain.StructureNode](s S, n domain.StructureNode) S {
	out := make(S, len(s), len(s)+1)
	copy(out, s)
	return append(out, n)
}

// bindNode rebinds every back-reference in the subtree rooted at n.
func bindNode(parentID *string, n domain.StructureNode) domain.StructureNode {
	if parentID != nil {
		id := *parentID
		n.ParentID = &id
	} else {
		n.ParentID = nil
	}
	if n.Children != nil {
		children := make([]domain.StructureNode, len(n.Children))
		for i, c := range n.Children {
			children[i] = bindNode(&n.ID, c)
		}
		n.Children = children
	}
	n.Functions = bindFunctions(n.ID, n.Functions)
	return n
}

func bindFunctions(nodeID string, fns []domain.Function) []domain.Function {
	if fns == nil {
		return nil
	}
	out := make([]domain.Function, len(fns))
	for i, fn := range fns {
		fn.NodeID = nodeID
		fn.Failures = bindFailures(fn.ID, fn.Failures)
		out[i] = fn
	}
	return out
}

func bindFailures(functionID string, failures []domain.Failure) []domain.Failure {
	if failures == nil {
		return nil
	}
	out := make([]domain.Failure, len(failures))
	for i, f := range failures {
		f.FunctionID = functionID
		if f.FailureEffects != nil {
			effects := make([]string, len(f.FailureEffects))
			copy(effects, f.FailureEffects)
			f.FailureEffects = effects
		}
		f.Causes = bindCauses(f.ID, f.Causes)
		out[i] = f
	}
	return out
}

func bindCauses(failureID string, causes []domain.Cause) []domain.Cause {
	if causes == nil {
		return nil
	}
	out := make([]domain.Cause, len(causes))
	for i, c := range causes {
		c.FailureID = failureID
		c.Actions = bindActions(c.ID, c.Actions)
		out[i] = domain.NormalizeCause(c)
	}
	return out
}

func bindActions(causeID string, actions []domain.Action) []domain.Action {
	if actions == nil {
		return nil
	}
	out := make([]domain.Action, len(actions))
	for i, a := range actions {
		a.CauseID = causeID
		out[i] = domain.NormalizeAction(a)
	}
	return out
}
