package core

import (
	"slices"
	"strconv"
	"strings"

	"fmeacore/pkg/domain"
)

const (
	// NoneSentinel fills the action columns of a cause without actions.
	NoneSentinel = "None"
	// DittoMark stands for "same as the row above" in exported tables.
	DittoMark = `"`
	// EffectSeparator joins failure effects into a single cell.
	EffectSeparator = "; "
)

var riskHeader = []string{
	"System Element", "Function", "Requirement", "Failure Mode", "Effect",
	"S", "Cause", "O", "Prevention", "Detection", "D", "AP",
}

var actionHeader = []string{
	"Action", "Resp.", "Date", "Action Taken", "S", "O", "D", "AP",
}

// RiskHeader returns the column names of a risk row.
func RiskHeader() []string {
	return append([]string(nil), riskHeader...)
}

// ExportHeader returns the column names of an export row: the risk columns
// followed by the optimization columns.
func ExportHeader() []string {
	out := make([]string, 0, len(riskHeader)+len(actionHeader))
	out = append(out, riskHeader...)
	return append(out, actionHeader...)
}

// RiskRow is one (failure, cause) pair flattened with its element and
// function context.
type RiskRow struct {
	Path              CausePath
	Element           string
	Function          string
	Requirement       string
	FailureMode       string
	Effects           []string
	Severity          int
	Cause             string
	Occurrence        int
	PreventionControl string
	DetectionControl  string
	Detection         int
	Priority          domain.ActionPriority
	Actions           int
}

// Cells renders the row in RiskHeader column order.
func (r RiskRow) Cells() []string {
	return []string{
		r.Element,
		r.Function,
		r.Requirement,
		r.FailureMode,
		strings.Join(r.Effects, EffectSeparator),
		strconv.Itoa(r.Severity),
		r.Cause,
		strconv.Itoa(r.Occurrence),
		r.PreventionControl,
		r.DetectionControl,
		strconv.Itoa(r.Detection),
		string(r.Priority),
	}
}

// ExportRow is one (cause, action) pair. Action is nil for a cause without
// actions. Ditto marks a second or later action of the same cause.
type ExportRow struct {
	Risk   RiskRow
	Action *domain.Action
	Ditto  bool
}

// Cells renders the row in ExportHeader column order. Ditto rows repeat the
// element name and mark every other risk column with DittoMark.
func (r ExportRow) Cells() []string {
	out := make([]string, 0, len(riskHeader)+len(actionHeader))
	if r.Ditto {
		out = append(out, r.Risk.Element)
		for range riskHeader[1:] {
			out = append(out, DittoMark)
		}
	} else {
		out = append(out, r.Risk.Cells()...)
	}
	if r.Action == nil {
		out = append(out, NoneSentinel)
		for range actionHeader[1:] {
			out = append(out, "")
		}
		return out
	}
	a := r.Action
	return append(out,
		a.Description,
		a.Responsible,
		a.TargetDate,
		a.TakenAction,
		strconv.Itoa(a.NewSeverity),
		strconv.Itoa(a.NewOccurrence),
		strconv.Itoa(a.NewDetection),
		string(a.NewActionPriority),
	)
}

// RiskRows flattens the tree into one row per (failure, cause) in traversal
// order. Failures without causes produce no rows.
func RiskRows(tree Tree) []RiskRow {
	var rows []RiskRow
	eachCause(tree, func(r RiskRow, _ domain.Cause) {
		rows = append(rows, r)
	})
	return rows
}

func eachCause(tree Tree, emit func(RiskRow, domain.Cause)) {
	var visit func(nodes []domain.StructureNode)
	visit = func(nodes []domain.StructureNode) {
		for _, n := range nodes {
			for _, fn := range n.Functions {
				for _, f := range fn.Failures {
					for _, c := range f.Causes {
						emit(RiskRow{
							Path:              FunctionPath{NodeID: n.ID, FunctionID: fn.ID}.Failure(f.ID).Cause(c.ID),
							Element:           n.Name,
							Function:          fn.Description,
							Requirement:       fn.Requirements,
							FailureMode:       f.FailureMode,
							Effects:           slices.Clone(f.FailureEffects),
							Severity:          c.Severity,
							Cause:             c.Description,
							Occurrence:        c.Occurrence,
							PreventionControl: c.PreventionControl,
							DetectionControl:  c.DetectionControl,
							Detection:         c.Detection,
							Priority:          c.ActionPriority,
							Actions:           len(c.Actions),
						}, c)
					}
				}
			}
			visit(n.Children)
		}
	}
	visit(tree)
}

// ExportRows flattens the tree into one row per (cause, action). Rows hold
// copies, so editing a row leaves the tree untouched.
func ExportRows(tree Tree) []ExportRow {
	var rows []ExportRow
	eachCause(tree, func(risk RiskRow, cause domain.Cause) {
		if len(cause.Actions) == 0 {
			rows = append(rows, ExportRow{Risk: risk})
			return
		}
		for i, a := range cause.Actions {
			a := a // per-iteration copy (go.mod targets go 1.21)
			row := risk
			row.Effects = slices.Clone(risk.Effects)
			rows = append(rows, ExportRow{Risk: row, Action: &a, Ditto: i > 0})
		}
	})
	return rows
}

// OptimizationRows returns the risk rows that need optimization review:
// causes whose priority is not LOW or that already carry actions.
func OptimizationRows(tree Tree) []RiskRow {
	var rows []RiskRow
	for _, r := range RiskRows(tree) {
		if r.Priority == domain.PriorityLow && r.Actions == 0 {
			continue
		}
		rows = append(rows, r)
	}
	return rows
}
