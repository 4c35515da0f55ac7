package errors

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Formatter renders compile errors in a consistent, Rust-like style with
// optional ANSI colors.
type Formatter struct {
	UseColor bool
}

// NewFormatter creates a new error formatter.
func NewFormatter(useColor bool) *Formatter {
	return &Formatter{UseColor: useColor}
}

var (
	colorErrorBold = color.New(color.FgRed, color.Bold)
	colorCode      = color.New(color.FgHiBlack)
	colorLocation  = color.New(color.FgCyan)
	colorPipe      = color.New(color.FgHiBlack)
	colorCaret     = color.New(color.FgHiRed)
	colorHint      = color.New(color.FgHiYellow)
	colorNote      = color.New(color.FgHiBlue)
)

func (f *Formatter) paint(c *color.Color, s string) string {
	if !f.UseColor {
		return s
	}
	return c.Sprint(s)
}

// Format renders a single compile error.
func (f *Formatter) Format(e *CompileError) string {
	var b strings.Builder

	// Header: error[E2003]: message
	b.WriteString(f.paint(colorErrorBold, "error"))
	if e.Code != "" {
		b.WriteString(f.paint(colorCode, fmt.Sprintf("[%s]", e.Code)))
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	b.WriteString("\n")

	loc := e.Location
	lineNumWidth := len(fmt.Sprintf("%d", loc.Line))
	if lineNumWidth < 2 {
		lineNumWidth = 2
	}
	pad := strings.Repeat(" ", lineNumWidth)

	// Location arrow: "  --> model.ftm:12:5"
	if !loc.IsZero() {
		b.WriteString(pad)
		b.WriteString(f.paint(colorLocation, "--> "))
		b.WriteString(loc.String())
		b.WriteString("\n")
	}

	// Source snippet with caret
	if loc.Source != "" {
		b.WriteString(pad)
		b.WriteString(f.paint(colorPipe, " |\n"))
		b.WriteString(f.paint(colorPipe, fmt.Sprintf("%*d | ", lineNumWidth, loc.Line)))
		b.WriteString(loc.Source)
		b.WriteString("\n")
		if loc.Column > 0 {
			b.WriteString(pad)
			b.WriteString(f.paint(colorPipe, " | "))
			b.WriteString(strings.Repeat(" ", loc.Column-1))
			b.WriteString(f.paint(colorCaret, "^"))
			b.WriteString("\n")
		}
	}

	if hint := FormatSuggestions(e.Suggestions); hint != "" {
		b.WriteString(pad)
		b.WriteString(f.paint(colorHint, " = hint: "))
		b.WriteString(hint)
		b.WriteString("\n")
	}
	if e.Note != "" {
		b.WriteString(pad)
		b.WriteString(f.paint(colorNote, " = note: "))
		b.WriteString(e.Note)
		b.WriteString("\n")
	}
	return b.String()
}
