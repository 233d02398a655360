package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"html/template"
	"io"

	"fmeacore/internal/core"
	"fmeacore/pkg/domain"
)

// View selects which flattening of the tree a tabular report shows.
type View string

const (
	ViewRisk         View = "risk"         // one row per (failure, cause)
	ViewExport       View = "export"       // one row per (cause, action)
	ViewOptimization View = "optimization" // risks that need optimization review
)

// Valid reports whether v names a known view.
func (v View) Valid() bool {
	switch v {
	case ViewRisk, ViewExport, ViewOptimization:
		return true
	}
	return false
}

// Format is the encoding of a rendered artifact.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatHTML Format = "html"
)

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatJSON:
		return "application/json"
	case FormatYAML:
		return "application/yaml"
	case FormatHTML:
		return "text/html"
	}
	return "application/octet-stream"
}

// Table returns the header and cell rows of view over tree.
func Table(view View, tree core.Tree) ([]string, [][]string, error) {
	switch view {
	case ViewRisk, ViewOptimization:
		rows := core.RiskRows(tree)
		if view == ViewOptimization {
			rows = core.OptimizationRows(tree)
		}
		cells := make([][]string, len(rows))
		for i, r := range rows {
			cells[i] = r.Cells()
		}
		return core.RiskHeader(), cells, nil
	case ViewExport:
		rows := core.ExportRows(tree)
		cells := make([][]string, len(rows))
		for i, r := range rows {
			cells[i] = r.Cells()
		}
		return core.ExportHeader(), cells, nil
	}
	return nil, nil, fmt.Errorf("%w: %q", ErrUnknownView, view)
}

// WriteCSV writes view over tree as RFC 4180 text and returns the number of
// data rows.
func WriteCSV(w io.Writer, view View, tree core.Tree) (int, error) {
	header, rows, err := Table(view, tree)
	if err != nil {
		return 0, err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return 0, err
	}
	if err := cw.WriteAll(rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

var htmlTable = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body><h1>{{.Title}}</h1><table>
<thead><tr>{{range .Header}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{end}}</tbody></table></body></html>
`))

// WriteHTML writes view over the document as a standalone HTML table and
// returns the number of data rows.
func WriteHTML(w io.Writer, view View, doc domain.Document) (int, error) {
	header, rows, err := Table(view, doc.Structure)
	if err != nil {
		return 0, err
	}
	title := doc.Project.Name
	if doc.Project.Number != "" {
		title = doc.Project.Number + " " + title
	}
	err = htmlTable.Execute(w, struct {
		Title  string
		Header []string
		Rows   [][]string
	}{Title: title, Header: header, Rows: rows})
	return len(rows), err
}

// Render encodes doc in format. Tabular formats use view; document formats
// ignore it and report a row count of 0.
func Render(doc domain.Document, view View, format Format) ([]byte, int, error) {
	switch format {
	case FormatCSV:
		var buf bytes.Buffer
		n, err := WriteCSV(&buf, view, doc.Structure)
		return buf.Bytes(), n, err
	case FormatHTML:
		var buf bytes.Buffer
		n, err := WriteHTML(&buf, view, doc)
		return buf.Bytes(), n, err
	case FormatJSON:
		b, err := domain.EncodeDocument(doc)
		return b, 0, err
	case FormatYAML:
		b, err := domain.EncodeDocumentYAML(doc)
		return b, 0, err
	}
	return nil, 0, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}
