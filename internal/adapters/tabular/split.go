package tabular

import "strings"

// CarryMark is the lone-quote cell meaning "same as the row above".
const CarryMark = `"`

// splitLine splits one table line into cells. Quoted fields may contain the
// delimiter and escape a quote by doubling it. A cell holding a single bare
// quote is returned as CarryMark instead of opening a quoted field. Cells are
// trimmed of surrounding whitespace; an unterminated quote runs to the end of
// the line.
func splitLine(line string, delim rune) []string {
	var cells []string
	rest := line
	for {
		cell, tail, more := nextCell(rest, delim)
		cells = append(cells, strings.TrimSpace(cell))
		if !more {
			return cells
		}
		rest = tail
	}
}

func nextCell(s string, delim rune) (cell, tail string, more bool) {
	trimmed := strings.TrimLeft(s, " \t")
	if delim == '\t' {
		trimmed = strings.TrimLeft(s, " ")
	}
	if !strings.HasPrefix(trimmed, `"`) {
		i := strings.IndexRune(s, delim)
		if i < 0 {
			return s, "", false
		}
		return s[:i], s[i+len(string(delim)):], true
	}
	after := trimmed[1:]
	if isCarry(after, delim) {
		i := strings.IndexRune(after, delim)
		if i < 0 {
			return CarryMark, "", false
		}
		return CarryMark, after[i+len(string(delim)):], true
	}

	var b strings.Builder
	for i := 0; i < len(after); i++ {
		c := after[i]
		if c != '"' {
			b.WriteByte(c)
			continue
		}
		if i+1 < len(after) && after[i+1] == '"' {
			b.WriteByte('"')
			i++
			continue
		}
		// Closing quote: keep anything up to the next delimiter.
		remainder := after[i+1:]
		j := strings.IndexRune(remainder, delim)
		if j < 0 {
			b.WriteString(remainder)
			return b.String(), "", false
		}
		b.WriteString(remainder[:j])
		return b.String(), remainder[j+len(string(delim)):], true
	}
	return b.String(), "", false
}

// isCarry reports whether the text following an opening quote ends the cell
// right away, i.e. the cell is a lone quote.
func isCarry(after string, delim rune) bool {
	rest := strings.TrimLeft(after, " ")
	if delim != '\t' {
		rest = strings.TrimLeft(rest, "\t")
	}
	return rest == "" || strings.HasPrefix(rest, string(delim))
}
