package domain

import (
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrInvalidDocument is returned when an interchange document lacks its
// project or structure field or cannot be parsed.
var ErrInvalidDocument = errors.New("domain: invalid fmea document")

// Document is the full-project interchange format: project metadata plus the
// complete structure tree inline.
type Document struct {
	Project   Project         `json:"project" yaml:"project"`
	Structure []StructureNode `json:"structure" yaml:"structure"`
}

// wireDocument detects missing top-level fields; a null field counts as missing.
type wireDocument struct {
	Project   *Project         `json:"project" yaml:"project"`
	Structure *[]StructureNode `json:"structure" yaml:"structure"`
}

func (w wireDocument) document() (Document, error) {
	if w.Project == nil {
		return Document{}, fmt.Errorf("%w: missing project", ErrInvalidDocument)
	}
	if w.Structure == nil {
		return Document{}, fmt.Errorf("%w: missing structure", ErrInvalidDocument)
	}
	return Document{Project: *w.Project, Structure: CloneNodes(*w.Structure)}, nil
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	return Document{Project: d.Project, Structure: CloneNodes(d.Structure)}
}

// EncodeDocument renders doc as indented JSON. Nil sequences are written as
// empty arrays.
func EncodeDocument(doc Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc.Clone(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}

// DecodeDocument parses a JSON interchange document.
func DecodeDocument(data []byte) (Document, error) {
	var w wireDocument
	if err := json.Unmarshal(data, &w); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return w.document()
}

// EncodeDocumentYAML renders doc as YAML using the same field names as JSON.
func EncodeDocumentYAML(doc Document) ([]byte, error) {
	data, err := yaml.Marshal(doc.Clone())
	if err != nil {
		return nil, fmt.Errorf("encode document yaml: %w", err)
	}
	return data, nil
}

// DecodeDocumentYAML parses a YAML interchange document.
func DecodeDocumentYAML(data []byte) (Document, error) {
	var w wireDocument
	if err := yaml.Unmarshal(data, &w); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return w.document()
}

// CloneNodes deep-copies a structure sequence. Nil sequences at any level
// come back as empty, non-nil slices.
func CloneNodes(nodes []StructureNode) []StructureNode {
	out := make([]StructureNode, len(nodes))
	for i, n := range nodes {
		out[i] = cloneNode(n)
	}
	return out
}

func cloneNode(n StructureNode) StructureNode {
	if n.ParentID != nil {
		p := *n.ParentID
		n.ParentID = &p
	}
	n.Children = CloneNodes(n.Children)
	fns := make([]Function, len(n.Functions))
	for i, f := range n.Functions {
		fns[i] = cloneFunction(f)
	}
	n.Functions = fns
	return n
}

func cloneFunction(f Function) Function {
	failures := make([]Failure, len(f.Failures))
	for i, fail := range f.Failures {
		failures[i] = cloneFailure(fail)
	}
	f.Failures = failures
	return f
}

func cloneFailure(f Failure) Failure {
	effects := make([]string, len(f.FailureEffects))
	copy(effects, f.FailureEffects)
	f.FailureEffects = effects
	causes := make([]Cause, len(f.Causes))
	for i, c := range f.Causes {
		actions := make([]Action, len(c.Actions))
		copy(actions, c.Actions)
		c.Actions = actions
		causes[i] = c
	}
	f.Causes = causes
	return f
}
