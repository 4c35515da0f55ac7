// Package table renders plain-text tables with per-column alignment.
// Cell widths are computed on the visible text, so ANSI color sequences do
// not break alignment.
package table

import (
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Alignment controls how cell content is padded within its column.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
	AlignCenter
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripAnsi(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

// Table accumulates rows and renders them with box-drawing borders.
type Table struct {
	writer          io.Writer
	header          []string
	rows            [][]string
	columnAlignment []Alignment
	headerAlignment []Alignment
}

// NewTable creates a table that renders to the given writer.
func NewTable(writer io.Writer) *Table {
	return &Table{writer: writer}
}

// WithHeader sets the header row.
func (t *Table) WithHeader(header []string) *Table {
	t.header = header
	return t
}

// WithColumnAlignment sets per-column alignment for body rows.
func (t *Table) WithColumnAlignment(alignment []Alignment) *Table {
	t.columnAlignment = alignment
	return t
}

// WithHeaderAlignment sets per-column alignment for the header row.
func (t *Table) WithHeaderAlignment(alignment []Alignment) *Table {
	t.headerAlignment = alignment
	return t
}

// WithRows replaces the body rows.
func (t *Table) WithRows(rows [][]string) *Table {
	t.rows = rows
	return t
}

// Append adds one body row.
func (t *Table) Append(row []string) *Table {
	t.rows = append(t.rows, row)
	return t
}

func (t *Table) columnCount() int {
	n := len(t.header)
	for _, row := range t.rows {
		if len(row) > n {
			n = len(row)
		}
	}
	return n
}

func (t *Table) columnWidths(n int) []int {
	widths := make([]int, n)
	measure := func(row []string) {
		for i, cell := range row {
			if w := len(stripAnsi(cell)); w > widths[i] {
				widths[i] = w
			}
		}
	}
	measure(t.header)
	for _, row := range t.rows {
		measure(row)
	}
	return widths
}

func pad(cell string, width int, alignment Alignment) string {
	visible := len(stripAnsi(cell))
	gap := width - visible
	if gap <= 0 {
		return cell
	}
	switch alignment {
	case AlignRight:
		return strings.Repeat(" ", gap) + cell
	case AlignCenter:
		left := gap / 2
		return strings.Repeat(" ", left) + cell + strings.Repeat(" ", gap-left)
	default:
		return cell + strings.Repeat(" ", gap)
	}
}

func alignmentAt(alignments []Alignment, i int) Alignment {
	if i < len(alignments) {
		return alignments[i]
	}
	return AlignLeft
}

// Render writes the table. Borders appear above and below the header and at
// the bottom.
func (t *Table) Render() {
	n := t.columnCount()
	if n == 0 {
		return
	}
	widths := t.columnWidths(n)

	var border strings.Builder
	border.WriteString("+")
	for _, w := range widths {
		border.WriteString(strings.Repeat("-", w+2))
		border.WriteString("+")
	}

	writeRow := func(row []string, alignments []Alignment) {
		var b strings.Builder
		b.WriteString("|")
		for i := 0; i < n; i++ {
			var cell string
			if i < len(row) {
				cell = row[i]
			}
			b.WriteString(" ")
			b.WriteString(pad(cell, widths[i], alignmentAt(alignments, i)))
			b.WriteString(" |")
		}
		fmt.Fprintln(t.writer, b.String())
	}

	fmt.Fprintln(t.writer, border.String())
	if len(t.header) > 0 {
		writeRow(t.header, t.headerAlignment)
		fmt.Fprintln(t.writer, border.String())
	}
	for _, row := range t.rows {
		writeRow(row, t.columnAlignment)
	}
	fmt.Fprintln(t.writer, border.String())
}
