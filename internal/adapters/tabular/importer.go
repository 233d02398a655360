// Package tabular imports FMEA worksheets from delimited text. Each line is
// one worksheet row with the columns element, function, requirement, failure
// mode, effect, severity, cause, occurrence, prevention control, detection
// control and detection. Empty cells and lone quotes inherit the value of the
// row above.
package tabular

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"fmeacore/internal/core"
	"fmeacore/pkg/domain"
)

// ErrNothingImportable is returned when a table yields no structure element.
var ErrNothingImportable = errors.New("tabular: nothing importable")

// ErrInvalidDelimiter is returned for delimiters that collide with quoting or
// line breaks.
var ErrInvalidDelimiter = errors.New("tabular: invalid delimiter")

// NoneCause is the cause cell value that never creates a cause.
const NoneCause = "None"

// Column positions of the worksheet.
const (
	colElement = iota
	colFunction
	colRequirement
	colFailureMode
	colEffect
	colSeverity
	colCause
	colOccurrence
	colPrevention
	colDetectionControl
	colDetection
	columnCount
)

// headerTitles holds the lower-cased column and group titles a header cell
// may consist of.
var headerTitles = func() map[string]struct{} {
	titles := []string{
		"element", "structure element", "function", "requirements", "failure",
		"failure effect", "effects", "severity", "failure cause", "occurrence",
		"prevention control", "detection control", "action priority",
		"structure analysis", "function analysis", "failure analysis",
		"risk analysis", "optimization",
	}
	titles = append(titles, core.ExportHeader()...)
	set := make(map[string]struct{}, len(titles))
	for _, t := range titles {
		set[normalizeTitle(t)] = struct{}{}
	}
	return set
}()

func normalizeTitle(cell string) string {
	return strings.ToLower(strings.Join(strings.Fields(cell), " "))
}

// Stats counts the distinct entities created by an import.
type Stats struct {
	Elements  int `json:"elements"`
	Functions int `json:"functions"`
	Failures  int `json:"failures"`
	Causes    int `json:"causes"`
}

// String renders a one-line summary.
func (s Stats) String() string {
	return fmt.Sprintf("%d elements, %d functions, %d failures, %d causes", s.Elements, s.Functions, s.Failures, s.Causes)
}

// Result is the imported structure with its counts.
type Result struct {
	Structure []domain.StructureNode
	Stats     Stats
}

// Options tune the importer. The zero value reads comma separated text.
type Options struct {
	// Delimiter separates cells. Defaults to ','.
	Delimiter rune
}

// Parse imports text with default options.
func Parse(text string) (Result, error) {
	return Options{}.Parse(text)
}

// ParseReader imports everything readable from r with default options.
func ParseReader(r io.Reader) (Result, error) {
	return Options{}.ParseReader(r)
}

// ParseReader imports everything readable from r.
func (o Options) ParseReader(r io.Reader) (Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Result{}, fmt.Errorf("read table: %w", err)
	}
	return o.Parse(string(data))
}

// Parse imports text. A table without any resolvable element returns
// ErrNothingImportable.
func (o Options) Parse(text string) (Result, error) {
	delim := o.Delimiter
	if delim == 0 {
		delim = ','
	}
	if delim == '"' || delim == '\n' || delim == '\r' {
		return Result{}, fmt.Errorf("%w: %q", ErrInvalidDelimiter, delim)
	}

	lines := contentLines(text)
	for skipped := 0; skipped < 2 && len(lines) > 0 && isHeader(splitLine(lines[0], delim)); skipped++ {
		lines = lines[1:]
	}

	b := newBuilder()
	st := state{element: -1, function: -1, failure: -1}
	for _, line := range lines {
		st = b.row(st, splitLine(line, delim))
	}
	if len(b.nodes) == 0 {
		return Result{}, ErrNothingImportable
	}
	return Result{Structure: b.nodes, Stats: b.stats}, nil
}

func contentLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

// isHeader treats a line as a header when none of the score columns is
// numeric, at least two cells are column titles and titles make up at least
// half of the non-empty cells.
func isHeader(cells []string) bool {
	for _, col := range []int{colSeverity, colOccurrence, colDetection} {
		if col < len(cells) {
			if _, err := strconv.Atoi(cells[col]); err == nil {
				return false
			}
		}
	}
	hits, filled := 0, 0
	for _, cell := range cells {
		title := normalizeTitle(cell)
		if title == "" {
			continue
		}
		filled++
		if _, ok := headerTitles[title]; ok {
			hits++
		}
	}
	return hits >= 2 && 2*hits >= filled
}

// state is the carry-forward context threaded from row to row. Indices point
// into the builder's slices; -1 means nothing to inherit.
type state struct {
	element  int
	function int
	failure  int
}

type builder struct {
	nodes []domain.StructureNode
	stats Stats
}

func newBuilder() *builder {
	return &builder{nodes: []domain.StructureNode{}}
}

// row folds one line into the structure and returns the next state.
func (b *builder) row(st state, cells []string) state {
	if filled(cells) < 2 {
		return st
	}
	for len(cells) < columnCount {
		cells = append(cells, "")
	}

	elem, ok := b.resolveElement(st, cells[colElement])
	if !ok {
		return st
	}
	if elem != st.element {
		st = state{element: elem, function: -1, failure: -1}
	}

	node := &b.nodes[elem]
	fn, ok := b.resolveFunction(node, st, cells[colFunction], cells[colRequirement])
	if !ok {
		return st
	}
	if fn != st.function {
		st.function, st.failure = fn, -1
	}

	function := &node.Functions[fn]
	fl, ok := b.resolveFailure(function, st, cells[colFailureMode])
	if !ok {
		return st
	}
	st.failure = fl

	failure := &function.Failures[fl]
	if effect := value(cells[colEffect]); effect != "" && !containsString(failure.FailureEffects, effect) {
		failure.FailureEffects = append(failure.FailureEffects, effect)
	}
	b.addCause(failure, cells)
	return st
}

func (b *builder) resolveElement(st state, cell string) (int, bool) {
	if inherits(cell) {
		return st.element, st.element >= 0
	}
	for i, n := range b.nodes {
		if n.Name == cell {
			return i, true
		}
	}
	b.nodes = append(b.nodes, domain.NewStructureNode(nil, cell, domain.KindSystem))
	b.stats.Elements++
	return len(b.nodes) - 1, true
}

func (b *builder) resolveFunction(node *domain.StructureNode, st state, cell, requirement string) (int, bool) {
	if inherits(cell) {
		return st.function, st.function >= 0
	}
	for i, fn := range node.Functions {
		if fn.Description == cell {
			return i, true
		}
	}
	node.Functions = append(node.Functions, domain.NewFunction(node.ID, cell, value(requirement)))
	b.stats.Functions++
	return len(node.Functions) - 1, true
}

func (b *builder) resolveFailure(fn *domain.Function, st state, cell string) (int, bool) {
	if inherits(cell) {
		return st.failure, st.failure >= 0
	}
	for i, f := range fn.Failures {
		if f.FailureMode == cell {
			return i, true
		}
	}
	fn.Failures = append(fn.Failures, domain.NewFailure(fn.ID, cell))
	b.stats.Failures++
	return len(fn.Failures) - 1, true
}

func (b *builder) addCause(failure *domain.Failure, cells []string) {
	desc := value(cells[colCause])
	if desc == "" || desc == NoneCause {
		return
	}
	for _, c := range failure.Causes {
		if c.Description == desc {
			return
		}
	}
	c := domain.NewCause(failure.ID, desc)
	c.PreventionControl = value(cells[colPrevention])
	c.DetectionControl = value(cells[colDetectionControl])
	c.Severity = score(cells[colSeverity])
	c.Occurrence = score(cells[colOccurrence])
	c.Detection = score(cells[colDetection])
	failure.Causes = append(failure.Causes, domain.NormalizeCause(c))
	b.stats.Causes++
}

func inherits(cell string) bool {
	return cell == "" || cell == CarryMark
}

// value maps the carry mark to an empty string for columns that do not
// inherit.
func value(cell string) string {
	if cell == CarryMark {
		return ""
	}
	return cell
}

// score parses a rating cell. Anything that is not an integer in [0,10]
// reads as 0 (unset).
func score(cell string) int {
	v, err := strconv.Atoi(strings.TrimSpace(cell))
	if err != nil || !domain.ValidRating(v) {
		return 0
	}
	return v
}

func filled(cells []string) int {
	n := 0
	for _, c := range cells {
		if c != "" {
			n++
		}
	}
	return n
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
