// Package recipe defines the parsed representation of a Fathom script: the
// unit the grammar-driven frontend produces and the compiler backend
// consumes. A Root is owned by a single compilation for its entire lifetime;
// it is mutated by import merging and never shared across compilations.
package recipe

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fathom-lang/fathom/types"
)

// Directive keys understood by the compiler.
const (
	DirectiveIterations = "iterations"
	DirectiveOutput     = "output"
	DirectiveModule     = "module"
)

// KnownDirectives lists every directive key the compiler accepts.
var KnownDirectives = []string{DirectiveIterations, DirectiveOutput, DirectiveModule}

// Position is a location in the source script. Line and Column are 1-based.
type Position struct {
	Line   int `json:"line,omitempty"`
	Column int `json:"column,omitempty"`
}

// Expr is an expression node: a literal, a variable reference, or a call.
type Expr interface {
	exprNode()
	Pos() Position
	String() string
}

// ScalarLit is a numeric literal. All Fathom numbers are float64.
type ScalarLit struct {
	Value    float64
	Position Position
}

func (e *ScalarLit) exprNode()     {}
func (e *ScalarLit) Pos() Position { return e.Position }
func (e *ScalarLit) String() string {
	return strconv.FormatFloat(e.Value, 'g', -1, 64)
}

// BoolLit is a boolean literal.
type BoolLit struct {
	Value    bool
	Position Position
}

func (e *BoolLit) exprNode()      {}
func (e *BoolLit) Pos() Position  { return e.Position }
func (e *BoolLit) String() string { return strconv.FormatBool(e.Value) }

// StringLit is a string literal.
type StringLit struct {
	Value    string
	Position Position
}

func (e *StringLit) exprNode()      {}
func (e *StringLit) Pos() Position  { return e.Position }
func (e *StringLit) String() string { return strconv.Quote(e.Value) }

// VectorLit is a vector literal, e.g. [1, 2, 3].
type VectorLit struct {
	Values   []float64
	Position Position
}

func (e *VectorLit) exprNode()     {}
func (e *VectorLit) Pos() Position { return e.Position }
func (e *VectorLit) String() string {
	parts := make([]string, len(e.Values))
	for i, v := range e.Values {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Ident is a reference to a declared variable.
type Ident struct {
	Name     string
	Position Position
}

func (e *Ident) exprNode()      {}
func (e *Ident) Pos() Position  { return e.Position }
func (e *Ident) String() string { return e.Name }

// Call is an invocation of a builtin or user-defined function. Nested calls
// are permitted anywhere an expression is.
type Call struct {
	Func     string
	Args     []Expr
	Position Position
}

func (e *Call) exprNode()     {}
func (e *Call) Pos() Position { return e.Position }
func (e *Call) String() string {
	args := make([]string, len(e.Args))
	for i, a := range e.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", e.Func, strings.Join(args, ", "))
}

// Step is one execution step: a let declaration or an assignment.
type Step interface {
	stepNode()
	Pos() Position
}

// Let declares one or more names of a single class. Value is optional:
// declaring without defining is legal, and a later assignment may fill the
// slot. With a Value present, the let both declares and defines.
type Let struct {
	Names    []string
	Class    types.Class
	Value    Expr
	Position Position
}

func (s *Let) stepNode()     {}
func (s *Let) Pos() Position { return s.Position }

// Assign binds the value of an expression to one or more targets. A target
// that was never declared is implicitly declared with the inferred class.
// Multiple targets require the value to be a single call whose destination
// pattern has matching arity.
type Assign struct {
	Targets  []string
	Value    Expr
	Position Position
}

func (s *Assign) stepNode()     {}
func (s *Assign) Pos() Position { return s.Position }

// Param is a typed parameter of a user-defined function.
type Param struct {
	Name  string
	Class types.Class
}

// FuncDef is a user-defined function. Parameter and return classes are
// declared in the source; the body is a sequence of steps ending in one
// return expression per declared return class.
type FuncDef struct {
	Name     string
	Params   []Param
	Returns  []types.Class
	Body     []Step
	Return   []Expr
	Position Position
}

// Directive is a key/literal pair such as iterations, output, or module.
type Directive struct {
	Key      string
	Value    Expr
	Position Position
}

// Import names another script whose definitions (and, for modules, steps)
// merge into the importing unit.
type Import struct {
	Path     string
	Position Position
}

// Root is the top-level unit of one script file.
type Root struct {
	Path       string
	Imports    []Import
	Directives []Directive
	Steps      []Step
	Funcs      []FuncDef
}

// Directive returns the directive with the given key, or nil.
func (r *Root) Directive(key string) *Directive {
	for i := range r.Directives {
		if r.Directives[i].Key == key {
			return &r.Directives[i]
		}
	}
	return nil
}

// IsModule reports whether the file carries a true module directive, which
// marks its steps for splicing into importers.
func (r *Root) IsModule() bool {
	d := r.Directive(DirectiveModule)
	if d == nil {
		return false
	}
	b, ok := d.Value.(*BoolLit)
	return ok && b.Value
}
