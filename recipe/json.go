package recipe

import (
	"encoding/json"
	"fmt"

	"github.com/fathom-lang/fathom/types"
)

// The frontend grammar engine emits parsed scripts as JSON documents; this
// file decodes that interchange format into a Root. The schema is part of
// the frontend contract: expressions are objects tagged by "type", steps by
// "kind". Syntactic validity is the frontend's failure domain, so decoding
// only checks structure, not semantics.

type jsonRoot struct {
	Path       string          `json:"path"`
	Imports    []jsonImport    `json:"imports"`
	Directives []jsonDirective `json:"directives"`
	Steps      []jsonStep      `json:"steps"`
	Functions  []jsonFunc      `json:"functions"`
}

type jsonImport struct {
	Path string `json:"path"`
	Position
}

type jsonDirective struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
	Position
}

type jsonStep struct {
	Kind    string          `json:"kind"`
	Names   []string        `json:"names,omitempty"`
	Class   string          `json:"class,omitempty"`
	Targets []string        `json:"targets,omitempty"`
	Value   json.RawMessage `json:"value,omitempty"`
	Position
}

type jsonExpr struct {
	Type   string            `json:"type"`
	Value  json.RawMessage   `json:"value,omitempty"`
	Values []float64         `json:"values,omitempty"`
	Name   string            `json:"name,omitempty"`
	Func   string            `json:"func,omitempty"`
	Args   []json.RawMessage `json:"args,omitempty"`
	Position
}

type jsonParam struct {
	Name  string `json:"name"`
	Class string `json:"class"`
}

type jsonFunc struct {
	Name    string            `json:"name"`
	Params  []jsonParam       `json:"params"`
	Returns []string          `json:"returns"`
	Body    []jsonStep        `json:"body,omitempty"`
	Return  []json.RawMessage `json:"return"`
	Position
}

// FromJSON decodes a frontend-emitted recipe document.
func FromJSON(data []byte) (*Root, error) {
	var doc jsonRoot
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("malformed recipe document: %w", err)
	}
	root := &Root{Path: doc.Path}
	for _, imp := range doc.Imports {
		root.Imports = append(root.Imports, Import{Path: imp.Path, Position: imp.Position})
	}
	for _, d := range doc.Directives {
		value, err := decodeExpr(d.Value)
		if err != nil {
			return nil, fmt.Errorf("directive %q: %w", d.Key, err)
		}
		root.Directives = append(root.Directives, Directive{
			Key:      d.Key,
			Value:    value,
			Position: d.Position,
		})
	}
	for i, s := range doc.Steps {
		step, err := decodeStep(s)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		root.Steps = append(root.Steps, step)
	}
	for _, f := range doc.Functions {
		fn, err := decodeFunc(f)
		if err != nil {
			return nil, fmt.Errorf("function %q: %w", f.Name, err)
		}
		root.Funcs = append(root.Funcs, fn)
	}
	return root, nil
}

func decodeStep(s jsonStep) (Step, error) {
	switch s.Kind {
	case "let":
		if len(s.Names) == 0 {
			return nil, fmt.Errorf("let step with no names")
		}
		class, err := types.ParseClass(s.Class)
		if err != nil {
			return nil, err
		}
		let := &Let{Names: s.Names, Class: class, Position: s.Position}
		if len(s.Value) > 0 {
			value, err := decodeExpr(s.Value)
			if err != nil {
				return nil, err
			}
			let.Value = value
		}
		return let, nil
	case "assign":
		if len(s.Targets) == 0 {
			return nil, fmt.Errorf("assign step with no targets")
		}
		value, err := decodeExpr(s.Value)
		if err != nil {
			return nil, err
		}
		return &Assign{Targets: s.Targets, Value: value, Position: s.Position}, nil
	default:
		return nil, fmt.Errorf("unknown step kind %q", s.Kind)
	}
}

func decodeExpr(raw json.RawMessage) (Expr, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("missing expression")
	}
	var e jsonExpr
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("malformed expression: %w", err)
	}
	switch e.Type {
	case "scalar":
		var v float64
		if err := json.Unmarshal(e.Value, &v); err != nil {
			return nil, fmt.Errorf("scalar literal: %w", err)
		}
		return &ScalarLit{Value: v, Position: e.Position}, nil
	case "boolean":
		var v bool
		if err := json.Unmarshal(e.Value, &v); err != nil {
			return nil, fmt.Errorf("boolean literal: %w", err)
		}
		return &BoolLit{Value: v, Position: e.Position}, nil
	case "string":
		var v string
		if err := json.Unmarshal(e.Value, &v); err != nil {
			return nil, fmt.Errorf("string literal: %w", err)
		}
		return &StringLit{Value: v, Position: e.Position}, nil
	case "vector":
		return &VectorLit{Values: e.Values, Position: e.Position}, nil
	case "ident":
		if e.Name == "" {
			return nil, fmt.Errorf("ident with no name")
		}
		return &Ident{Name: e.Name, Position: e.Position}, nil
	case "call":
		if e.Func == "" {
			return nil, fmt.Errorf("call with no function name")
		}
		call := &Call{Func: e.Func, Position: e.Position}
		for i, arg := range e.Args {
			decoded, err := decodeExpr(arg)
			if err != nil {
				return nil, fmt.Errorf("argument %d of %s: %w", i+1, e.Func, err)
			}
			call.Args = append(call.Args, decoded)
		}
		return call, nil
	default:
		return nil, fmt.Errorf("unknown expression type %q", e.Type)
	}
}

func decodeFunc(f jsonFunc) (FuncDef, error) {
	fn := FuncDef{Name: f.Name, Position: f.Position}
	if fn.Name == "" {
		return fn, fmt.Errorf("function with no name")
	}
	for _, p := range f.Params {
		class, err := types.ParseClass(p.Class)
		if err != nil {
			return fn, fmt.Errorf("parameter %q: %w", p.Name, err)
		}
		fn.Params = append(fn.Params, Param{Name: p.Name, Class: class})
	}
	if len(f.Returns) == 0 {
		return fn, fmt.Errorf("function declares no return classes")
	}
	for _, r := range f.Returns {
		class, err := types.ParseClass(r)
		if err != nil {
			return fn, err
		}
		fn.Returns = append(fn.Returns, class)
	}
	for i, s := range f.Body {
		step, err := decodeStep(s)
		if err != nil {
			return fn, fmt.Errorf("body step %d: %w", i, err)
		}
		fn.Body = append(fn.Body, step)
	}
	if len(f.Return) != len(fn.Returns) {
		return fn, fmt.Errorf("declares %d return class(es) but returns %d expression(s)",
			len(fn.Returns), len(f.Return))
	}
	for i, raw := range f.Return {
		expr, err := decodeExpr(raw)
		if err != nil {
			return fn, fmt.Errorf("return expression %d: %w", i+1, err)
		}
		fn.Return = append(fn.Return, expr)
	}
	return fn, nil
}
