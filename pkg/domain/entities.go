// Package domain defines the FMEA analysis entities, the action-priority
// policy and the interchange document used by fmeacore.
package domain

import "github.com/google/uuid"

// EntityType identifies the kind of record addressed by rules and stores.
type EntityType string

// Supported entity type identifiers used in violations and not-found errors.
const (
	// EntityProject identifies the analysis project metadata.
	EntityProject EntityType = "project"
	// EntityNode identifies a structure node (system, component, process step).
	EntityNode EntityType = "structure_node"
	// EntityFunction identifies a function attached to a structure node.
	EntityFunction EntityType = "function"
	// EntityFailure identifies a failure mode of a function.
	EntityFailure EntityType = "failure"
	// EntityCause identifies a failure cause carrying S/O/D ratings.
	EntityCause EntityType = "cause"
	// EntityAction identifies an optimization action attached to a cause.
	EntityAction EntityType = "action"
)

// FmeaType selects the AIAG-VDA analysis flavour.
type FmeaType string

// Analysis types recognised by the planning step and the suggestion prompts.
const (
	TypeDesign          FmeaType = "DFMEA"
	TypeProcess         FmeaType = "PFMEA"
	TypeMonitorResponse FmeaType = "FMEA-MSR"
)

// Valid reports whether t is one of the known analysis types.
func (t FmeaType) Valid() bool {
	switch t {
	case TypeDesign, TypeProcess, TypeMonitorResponse:
		return true
	}
	return false
}

// NodeKind tags a structure node with its role in the decomposition.
type NodeKind string

// Canonical structure node kinds.
const (
	KindSystem      NodeKind = "system"
	KindSubsystem   NodeKind = "subsystem"
	KindComponent   NodeKind = "component"
	KindProcessStep NodeKind = "process_step"
	KindWorkElement NodeKind = "work_element"
)

// ActionStatus enumerates optimization action lifecycle states.
type ActionStatus string

// Canonical action statuses.
const (
	StatusOpen      ActionStatus = "Open"
	StatusCompleted ActionStatus = "Completed"
	StatusDiscarded ActionStatus = "Discarded"
)

// Project carries analysis metadata. It is edited directly by callers and
// never touched by tree operations.
type Project struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Number      string   `json:"number" yaml:"number"`
	Type        FmeaType `json:"type" yaml:"type"`
	Manager     string   `json:"manager" yaml:"manager"`
	TeamMembers string   `json:"teamMembers" yaml:"teamMembers"`
	Date        string   `json:"date" yaml:"date"`
	Scope       string   `json:"scope" yaml:"scope"`
}

// StructureNode is one system, subsystem, component, process step or work
// element. Children and functions are exclusively owned.
type StructureNode struct {
	ID        string          `json:"id" yaml:"id"`
	ParentID  *string         `json:"parentId" yaml:"parentId"`
	Name      string          `json:"name" yaml:"name"`
	Kind      NodeKind        `json:"type" yaml:"type"`
	Children  []StructureNode `json:"children" yaml:"children"`
	Functions []Function      `json:"functions" yaml:"functions"`
}

// Function describes what a structure node must do, plus its requirements.
type Function struct {
	ID           string    `json:"id" yaml:"id"`
	NodeID       string    `json:"nodeId" yaml:"nodeId"`
	Description  string    `json:"description" yaml:"description"`
	Requirements string    `json:"requirements" yaml:"requirements"`
	Failures     []Failure `json:"failures" yaml:"failures"`
}

// Failure is a failure mode of a function with its effects and causes.
type Failure struct {
	ID             string   `json:"id" yaml:"id"`
	FunctionID     string   `json:"functionId" yaml:"functionId"`
	FailureMode    string   `json:"failureMode" yaml:"failureMode"`
	FailureEffects []string `json:"failureEffects" yaml:"failureEffects"`
	Causes         []Cause  `json:"failureCauses" yaml:"failureCauses"`
}

// Cause is a failure cause with its current controls and S/O/D ratings.
// ActionPriority is derived from the ratings and must not be set by hand.
type Cause struct {
	ID                string         `json:"id" yaml:"id"`
	FailureID         string         `json:"failureId" yaml:"failureId"`
	Description       string         `json:"description" yaml:"description"`
	PreventionControl string         `json:"preventionControl" yaml:"preventionControl"`
	DetectionControl  string         `json:"detectionControl" yaml:"detectionControl"`
	Severity          int            `json:"severity" yaml:"severity"`
	Occurrence        int            `json:"occurrence" yaml:"occurrence"`
	Detection         int            `json:"detection" yaml:"detection"`
	ActionPriority    ActionPriority `json:"actionPriority" yaml:"actionPriority"`
	Actions           []Action       `json:"actions" yaml:"actions"`
}

// Action is an optimization step for a cause together with the re-rating
// expected once it is taken.
type Action struct {
	ID                string         `json:"id" yaml:"id"`
	CauseID           string         `json:"causeId" yaml:"causeId"`
	Description       string         `json:"description" yaml:"description"`
	Responsible       string         `json:"responsible" yaml:"responsible"`
	TargetDate        string         `json:"targetDate" yaml:"targetDate"`
	Status            ActionStatus   `json:"status" yaml:"status"`
	TakenAction       string         `json:"takenAction" yaml:"takenAction"`
	CompletionDate    string         `json:"completionDate" yaml:"completionDate"`
	NewSeverity       int            `json:"newSeverity" yaml:"newSeverity"`
	NewOccurrence     int            `json:"newOccurrence" yaml:"newOccurrence"`
	NewDetection      int            `json:"newDetection" yaml:"newDetection"`
	NewActionPriority ActionPriority `json:"newActionPriority" yaml:"newActionPriority"`
}

// NewID returns a fresh globally unique entity identifier.
func NewID() string {
	return uuid.NewString()
}

// NewProject returns a design FMEA project with a fresh id.
func NewProject(name string) Project {
	return Project{
		ID:     NewID(),
		Name:   name,
		Number: "FMEA-001",
		Type:   TypeDesign,
	}
}

// NewStructureNode returns an empty node. A nil parentID marks a top-level node.
func NewStructureNode(parentID *string, name string, kind NodeKind) StructureNode {
	var parent *string
	if parentID != nil {
		p := *parentID
		parent = &p
	}
	return StructureNode{
		ID:        NewID(),
		ParentID:  parent,
		Name:      name,
		Kind:      kind,
		Children:  []StructureNode{},
		Functions: []Function{},
	}
}

// NewFunction returns an empty function owned by nodeID.
func NewFunction(nodeID, description, requirements string) Function {
	return Function{
		ID:           NewID(),
		NodeID:       nodeID,
		Description:  description,
		Requirements: requirements,
		Failures:     []Failure{},
	}
}

// NewFailure returns a failure mode owned by functionID with no effects or causes.
func NewFailure(functionID, mode string) Failure {
	return Failure{
		ID:             NewID(),
		FunctionID:     functionID,
		FailureMode:    mode,
		FailureEffects: []string{},
		Causes:         []Cause{},
	}
}

// NewCause returns an unrated cause owned by failureID.
func NewCause(failureID, description string) Cause {
	return NormalizeCause(Cause{
		ID:          NewID(),
		FailureID:   failureID,
		Description: description,
		Actions:     []Action{},
	})
}

// NewAction returns an open action for cause whose re-rating starts at the
// cause's current ratings.
func NewAction(cause Cause) Action {
	return NormalizeAction(Action{
		ID:            NewID(),
		CauseID:       cause.ID,
		Status:        StatusOpen,
		NewSeverity:   cause.Severity,
		NewOccurrence: cause.Occurrence,
		NewDetection:  cause.Detection,
	})
}

// NormalizeCause re-derives the cause's action priority and the priorities
// of its actions.
func NormalizeCause(c Cause) Cause {
	c.ActionPriority = Classify(c.Severity, c.Occurrence, c.Detection)
	if len(c.Actions) > 0 {
		actions := make([]Action, len(c.Actions))
		for i, a := range c.Actions {
			actions[i] = NormalizeAction(a)
		}
		c.Actions = actions
	}
	return c
}

// NormalizeAction re-derives the action's post-mitigation priority.
func NormalizeAction(a Action) Action {
	a.NewActionPriority = Classify(a.NewSeverity, a.NewOccurrence, a.NewDetection)
	return a
}
