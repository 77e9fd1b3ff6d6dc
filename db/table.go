package db

import (
	"io"
	"strings"
	"unicode/utf8"
)

// SimpleTable renders rows as an ASCII grid:
//
//	+------+-----------+
//	| name | type      |
//	+------+-----------+
//	| id   | int(10)   |
//	+------+-----------+
type SimpleTable struct {
	writer  io.Writer
	headers []string
	rows    [][]string
}

func NewTable(w io.Writer) *SimpleTable {
	return &SimpleTable{writer: w}
}

func (t *SimpleTable) Header(headers []string) {
	t.headers = headers
}

func (t *SimpleTable) Row(row []string) {
	t.rows = append(t.rows, row)
}

func (t *SimpleTable) Bulk(rows [][]string) {
	t.rows = append(t.rows, rows...)
}

func (t *SimpleTable) Render() {
	if len(t.headers) == 0 && len(t.rows) == 0 {
		return
	}

	widths := t.widths()
	rule := t.rule(widths)

	var out strings.Builder
	out.WriteString(rule)
	if len(t.headers) > 0 {
		t.line(&out, t.headers, widths)
		out.WriteString(rule)
	}
	for _, row := range t.rows {
		t.line(&out, row, widths)
	}
	out.WriteString(rule)

	io.WriteString(t.writer, out.String())
}

// widths is the display width of each column, at least 1.
func (t *SimpleTable) widths() []int {
	columns := len(t.headers)
	for _, row := range t.rows {
		columns = max(columns, len(row))
	}

	widths := make([]int, columns)
	for i := range widths {
		widths[i] = 1
	}
	measure := func(cells []string) {
		for i, cell := range cells {
			widths[i] = max(widths[i], utf8.RuneCountInString(cell))
		}
	}

	measure(t.headers)
	for _, row := range t.rows {
		measure(row)
	}
	return widths
}

func (t *SimpleTable) rule(widths []int) string {
	var b strings.Builder
	for _, w := range widths {
		b.WriteByte('+')
		b.WriteString(strings.Repeat("-", w+2))
	}
	b.WriteString("+\n")
	return b.String()
}

func (t *SimpleTable) line(out *strings.Builder, cells []string, widths []int) {
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		out.WriteString("| ")
		out.WriteString(cell)
		out.WriteString(strings.Repeat(" ", w-utf8.RuneCountInString(cell)+1))
	}
	out.WriteString("|\n")
}
