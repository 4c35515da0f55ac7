// Package dis supports inspection of compiled programs by disassembling
// them. It works with the opcodes defined in the `op` package and the
// Program type from the `bytecode` package.
package dis

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/fathom-lang/fathom/bytecode"
	"github.com/fathom-lang/fathom/internal/table"
	"github.com/fathom-lang/fathom/op"
	"github.com/fathom-lang/fathom/types"
)

// Instruction is one decoded instruction with display-ready annotations.
type Instruction struct {
	Offset     int
	Name       string
	Opcode     op.Code
	Sources    []string
	Dests      []string
	Annotation string
	Stochastic bool
}

// Options controls rendering.
type Options struct {
	UseColor bool
}

var (
	colorOpcode     = color.New(color.Bold)
	colorConstant   = color.New(color.FgYellow)
	colorString     = color.New(color.FgGreen)
	colorStochastic = color.New(color.FgMagenta)
	colorHeading    = color.New(color.FgCyan)
)

func paint(useColor bool, c *color.Color, s string) string {
	if !useColor {
		return s
	}
	return c.Sprint(s)
}

// Disassemble decodes every instruction of a program. Constant operands are
// annotated with their pooled values so a reader can follow data flow
// without cross-referencing the pools by hand.
func Disassemble(prog *bytecode.Program) []Instruction {
	instructions := make([]Instruction, len(prog.Instructions))
	for i, ins := range prog.Instructions {
		instructions[i] = Instruction{
			Offset:     i,
			Name:       op.Name(ins.Op),
			Opcode:     ins.Op,
			Sources:    operandStrings(ins.Src),
			Dests:      operandStrings(ins.Dst),
			Annotation: annotate(prog, ins.Src),
			Stochastic: ins.Stochastic,
		}
	}
	return instructions
}

func operandStrings(operands []types.Operand) []string {
	out := make([]string, len(operands))
	for i, o := range operands {
		out[i] = o.String()
	}
	return out
}

// annotate renders the pooled values of the constant sources, in operand
// order, e.g. `$s0=0.3 $s1=100`.
func annotate(prog *bytecode.Program, src []types.Operand) string {
	var parts []string
	seen := make(map[types.Operand]bool)
	for _, o := range src {
		if o.Kind != types.Constant || seen[o] {
			continue
		}
		seen[o] = true
		v, ok := constantValue(prog, o)
		if !ok {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%s", o, v))
	}
	return strings.Join(parts, " ")
}

func constantValue(prog *bytecode.Program, o types.Operand) (string, bool) {
	i := int(o.Index)
	switch o.Class {
	case types.Scalar:
		if i < len(prog.ScalarPool) {
			return formatFloat(prog.ScalarPool[i]), true
		}
	case types.Vector:
		if i < len(prog.VectorPool) {
			return formatVector(prog.VectorPool[i]), true
		}
	case types.Boolean:
		if i < len(prog.BoolPool) {
			return fmt.Sprintf("%t", prog.BoolPool[i]), true
		}
	case types.String:
		if i < len(prog.StringPool) {
			s := prog.StringPool[i]
			if len(s) > 40 {
				s = s[:37] + "..."
			}
			return fmt.Sprintf("%q", s), true
		}
	}
	return "", false
}

func formatFloat(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.6f", v), "0"), ".")
}

func formatVector(v []float64) string {
	if len(v) > 6 {
		return fmt.Sprintf("[%d values]", len(v))
	}
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = formatFloat(x)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Print renders the instruction listing as a table.
func Print(instructions []Instruction, writer io.Writer, opts Options) {
	rows := make([][]string, 0, len(instructions))
	for _, ins := range instructions {
		marker := ""
		if ins.Stochastic {
			marker = paint(opts.UseColor, colorStochastic, "~")
		}
		annotation := ins.Annotation
		if annotation != "" {
			c := colorConstant
			if strings.Contains(annotation, `"`) {
				c = colorString
			}
			annotation = paint(opts.UseColor, c, annotation)
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", ins.Offset),
			paint(opts.UseColor, colorOpcode, ins.Name),
			strings.Join(ins.Sources, ", "),
			strings.Join(ins.Dests, ", "),
			marker,
			annotation,
		})
	}
	table.NewTable(writer).
		WithHeader([]string{"OFFSET", "OPCODE", "SOURCES", "DESTS", "RAND", "CONSTANTS"}).
		WithColumnAlignment([]table.Alignment{
			table.AlignRight,
			table.AlignLeft,
			table.AlignLeft,
			table.AlignLeft,
			table.AlignCenter,
			table.AlignLeft,
		}).
		WithHeaderAlignment([]table.Alignment{
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
		}).
		WithRows(rows).
		Render()
}

// PrintProgram renders the full program: a header summary followed by the
// instruction listing.
func PrintProgram(prog *bytecode.Program, writer io.Writer, opts Options) {
	heading := func(s string) string { return paint(opts.UseColor, colorHeading, s) }

	fmt.Fprintf(writer, "%s %d\n", heading("iterations:"), prog.Iterations)
	fmt.Fprintf(writer, "%s %s\n", heading("output:"), prog.Output)
	fmt.Fprintf(writer, "%s scalar=%d vector=%d boolean=%d string=%d\n",
		heading("registers:"),
		prog.RegisterCounts[types.Scalar],
		prog.RegisterCounts[types.Vector],
		prog.RegisterCounts[types.Boolean],
		prog.RegisterCounts[types.String])
	fmt.Fprintf(writer, "%s scalar=%d vector=%d boolean=%d string=%d\n",
		heading("constants:"),
		len(prog.ScalarPool),
		len(prog.VectorPool),
		len(prog.BoolPool),
		len(prog.StringPool))
	fmt.Fprintln(writer)
	Print(Disassemble(prog), writer, opts)
}
