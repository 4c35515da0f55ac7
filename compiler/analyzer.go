package compiler

import (
	"fmt"
	"math"

	"github.com/fathom-lang/fathom/bytecode"
	"github.com/fathom-lang/fathom/errors"
	"github.com/fathom-lang/fathom/op"
	"github.com/fathom-lang/fathom/recipe"
	"github.com/fathom-lang/fathom/registry"
	"github.com/fathom-lang/fathom/types"
)

// scope resolves variable names during analysis. The compilation unit's
// register allocator is the root scope; each inlined function body gets its
// own scope so that locals neither leak out nor collide with the caller's
// names, while register allocation stays global.
type scope interface {
	Lookup(name string) (*Binding, bool)
	Declare(name string, class types.Class) (*Binding, bool)
	Names() []string
}

// inlineScope is the local namespace of one inlined function call. Register
// indices still come from the shared allocator; only name resolution is
// isolated.
type inlineScope struct {
	alloc    *RegisterAllocator
	bindings map[string]*Binding
	order    []string
}

func newInlineScope(alloc *RegisterAllocator) *inlineScope {
	return &inlineScope{alloc: alloc, bindings: make(map[string]*Binding)}
}

func (s *inlineScope) Lookup(name string) (*Binding, bool) {
	b, ok := s.bindings[name]
	return b, ok
}

func (s *inlineScope) Declare(name string, class types.Class) (*Binding, bool) {
	if existing, ok := s.bindings[name]; ok {
		return existing, false
	}
	b := &Binding{
		Name:    name,
		Class:   class,
		Operand: s.alloc.Allocate(class),
		State:   Declared,
	}
	s.bind(b)
	return b, true
}

func (s *inlineScope) bind(b *Binding) {
	s.bindings[b.Name] = b
	s.order = append(s.order, b.Name)
}

func (s *inlineScope) Names() []string {
	names := make([]string, len(s.order))
	copy(names, s.order)
	return names
}

// value is the analyzed result of an expression: where it lives, what class
// it has, and whether any random draw feeds it.
type value struct {
	operand    types.Operand
	class      types.Class
	stochastic bool
}

func operandsOf(args []value) []types.Operand {
	ops := make([]types.Operand, len(args))
	for i, a := range args {
		ops[i] = a.operand
	}
	return ops
}

func moveOp(class types.Class) op.Code {
	switch class {
	case types.Scalar:
		return op.Move_S_S
	case types.Vector:
		return op.Move_V_V
	case types.Boolean:
		return op.Move_B_B
	default:
		return op.Move_STR_STR
	}
}

func (c *Compiler) analyzeStep(file string, step recipe.Step, sc scope) error {
	switch s := step.(type) {
	case *recipe.Let:
		for _, name := range s.Names {
			if _, created := sc.Declare(name, s.Class); !created {
				return errors.NewDuplicateDefinition(name, "", c.loc(file, s.Position))
			}
		}
		if s.Value == nil {
			return nil
		}
		return c.assign(file, s.Names, s.Value, s.Position, sc)
	case *recipe.Assign:
		return c.assign(file, s.Targets, s.Value, s.Position, sc)
	default:
		return fmt.Errorf("unsupported step type %T", step)
	}
}

func (c *Compiler) assign(file string, targets []string, expr recipe.Expr, pos recipe.Position, sc scope) error {
	if call, ok := expr.(*recipe.Call); ok {
		return c.assignCall(file, targets, call, sc)
	}
	if len(targets) != 1 {
		return errors.NewAssignmentCount(expr.String(), 1, len(targets), c.loc(file, pos))
	}
	v, err := c.evalExpr(file, expr, sc)
	if err != nil {
		return err
	}
	return c.store(file, targets[0], v, pos, sc)
}

// assignCall handles a statement-level call. Builtin results are written
// straight into the target registers with no intermediate move; inlined
// user functions produce values that are then moved into the targets.
func (c *Compiler) assignCall(file string, targets []string, call *recipe.Call, sc scope) error {
	cloc := c.loc(file, call.Position)
	res, args, err := c.resolveCall(file, call, sc)
	if err != nil {
		return err
	}

	if res.Def != nil {
		results, err := c.inline(file, res.Def, args, cloc)
		if err != nil {
			return err
		}
		if len(results) != len(targets) {
			return errors.NewAssignmentCount(call.Func, len(results), len(targets), cloc)
		}
		for i, target := range targets {
			if err := c.store(file, target, results[i], call.Position, sc); err != nil {
				return err
			}
		}
		return nil
	}

	if len(res.Dests) != len(targets) {
		return errors.NewAssignmentCount(call.Func, len(res.Dests), len(targets), cloc)
	}
	taint := res.Stochastic
	for _, a := range args {
		taint = taint || a.stochastic
	}
	dsts := make([]types.Operand, len(targets))
	for i, target := range targets {
		b, err := c.defineTarget(file, target, res.Dests[i], taint, call.Position, sc)
		if err != nil {
			return err
		}
		dsts[i] = b.Operand
	}
	c.emitInstruction(bytecode.Instruction{
		Op:         res.Opcode,
		Src:        operandsOf(args),
		Dst:        dsts,
		Stochastic: taint,
	}, cloc)
	return nil
}

// store moves an already-computed value into a named target register.
func (c *Compiler) store(file, target string, v value, pos recipe.Position, sc scope) error {
	b, err := c.defineTarget(file, target, v.class, v.stochastic, pos, sc)
	if err != nil {
		return err
	}
	c.emitInstruction(bytecode.Instruction{
		Op:         moveOp(v.class),
		Src:        []types.Operand{v.operand},
		Dst:        []types.Operand{b.Operand},
		Stochastic: v.stochastic,
	}, c.loc(file, pos))
	return nil
}

// defineTarget resolves the binding an assignment writes to, implicitly
// declaring unknown names with the inferred class. Rebinding keeps the
// existing register but requires the same class. Inlined parameters are
// borrowed from the caller, whether constant or register; rebinding one
// gets a fresh register so the caller's operand stays untouched.
func (c *Compiler) defineTarget(file, name string, class types.Class, stochastic bool, pos recipe.Position, sc scope) (*Binding, error) {
	b, ok := sc.Lookup(name)
	if ok {
		if b.Class != class {
			return nil, errors.NewAssignmentTypeMismatch(name, b.Class, class, c.loc(file, pos))
		}
		if b.Operand.Kind != types.Register || b.Borrowed {
			b.Operand = c.regs.Allocate(class)
			b.Borrowed = false
		}
	} else {
		b, _ = sc.Declare(name, class)
	}
	b.State = Defined
	b.Stochastic = stochastic
	return b, nil
}

func (c *Compiler) evalExpr(file string, expr recipe.Expr, sc scope) (value, error) {
	switch e := expr.(type) {
	case *recipe.ScalarLit:
		return value{operand: c.pools.InternScalar(e.Value), class: types.Scalar}, nil
	case *recipe.VectorLit:
		return value{operand: c.pools.InternVector(e.Values), class: types.Vector}, nil
	case *recipe.BoolLit:
		return value{operand: c.pools.InternBool(e.Value), class: types.Boolean}, nil
	case *recipe.StringLit:
		return value{operand: c.pools.InternString(e.Value), class: types.String}, nil
	case *recipe.Ident:
		b, ok := sc.Lookup(e.Name)
		if !ok {
			return value{}, errors.NewUndeclaredVariable(e.Name, sc.Names(), c.loc(file, e.Position))
		}
		if b.State != Defined {
			return value{}, errors.NewUseBeforeDefinition(e.Name, c.loc(file, e.Position))
		}
		return value{operand: b.Operand, class: b.Class, stochastic: b.Stochastic}, nil
	case *recipe.Call:
		return c.evalCall(file, e, sc)
	default:
		return value{}, fmt.Errorf("unsupported expression type %T", expr)
	}
}

// evalCall handles a call in expression position. The single result lands
// in a fresh intermediate register.
func (c *Compiler) evalCall(file string, call *recipe.Call, sc scope) (value, error) {
	cloc := c.loc(file, call.Position)
	res, args, err := c.resolveCall(file, call, sc)
	if err != nil {
		return value{}, err
	}

	if res.Def != nil {
		results, err := c.inline(file, res.Def, args, cloc)
		if err != nil {
			return value{}, err
		}
		if len(results) != 1 {
			return value{}, errors.NewExpressionCount(call.Func, len(results), cloc)
		}
		return results[0], nil
	}

	if len(res.Dests) != 1 {
		return value{}, errors.NewExpressionCount(call.Func, len(res.Dests), cloc)
	}
	taint := res.Stochastic
	for _, a := range args {
		taint = taint || a.stochastic
	}
	dst := c.regs.Allocate(res.Dests[0])
	c.emitInstruction(bytecode.Instruction{
		Op:         res.Opcode,
		Src:        operandsOf(args),
		Dst:        []types.Operand{dst},
		Stochastic: taint,
	}, cloc)
	return value{operand: dst, class: res.Dests[0], stochastic: taint}, nil
}

// resolveCall evaluates the arguments left to right, then resolves the
// callee against the resulting classes.
func (c *Compiler) resolveCall(file string, call *recipe.Call, sc scope) (registry.Resolution, []value, error) {
	args := make([]value, len(call.Args))
	classes := make([]types.Class, len(call.Args))
	for i, argExpr := range call.Args {
		v, err := c.evalExpr(file, argExpr, sc)
		if err != nil {
			return registry.Resolution{}, nil, err
		}
		args[i] = v
		classes[i] = v.class
	}
	res, err := c.reg.Resolve(call.Func, classes)
	if err != nil {
		if ce, ok := err.(*errors.CompileError); ok && ce.Location.IsZero() {
			ce.Location = c.loc(file, call.Position)
		}
		return registry.Resolution{}, nil, err
	}
	return res, args, nil
}

// inline expands a user-defined function body at the call site. Parameters
// bind directly to the caller's operands, so a constant argument stays a
// constant in the emitted instructions; reassigning a parameter switches it
// to a fresh register. The definition stack catches
// recursion, which has no representation in the instruction stream.
func (c *Compiler) inline(callFile string, def *recipe.FuncDef, args []value, cloc errors.SourceLocation) ([]value, error) {
	for _, name := range c.inlineStack {
		if name == def.Name {
			return nil, errors.NewRecursiveCall(def.Name, cloc)
		}
	}
	c.inlineStack = append(c.inlineStack, def.Name)
	defer func() { c.inlineStack = c.inlineStack[:len(c.inlineStack)-1] }()

	file := c.defFiles[def]
	if file == "" {
		file = callFile
	}

	sc := newInlineScope(c.regs)
	for i, p := range def.Params {
		sc.bind(&Binding{
			Name:       p.Name,
			Class:      p.Class,
			Operand:    args[i].operand,
			State:      Defined,
			Stochastic: args[i].stochastic,
			Borrowed:   true,
		})
	}
	for _, step := range def.Body {
		if err := c.analyzeStep(file, step, sc); err != nil {
			return nil, err
		}
	}
	results := make([]value, len(def.Return))
	for i, e := range def.Return {
		v, err := c.evalExpr(file, e, sc)
		if err != nil {
			return nil, err
		}
		if v.class != def.Returns[i] {
			return nil, errors.NewReturnTypeMismatch(def.Name, i+1, def.Returns[i], v.class, c.loc(file, e.Pos()))
		}
		results[i] = v
	}
	return results, nil
}

func (c *Compiler) validateDirectives(file string, r *recipe.Root, isMain bool) error {
	for _, d := range r.Directives {
		dloc := c.loc(file, d.Position)
		switch d.Key {
		case recipe.DirectiveIterations:
			lit, ok := d.Value.(*recipe.ScalarLit)
			if !ok {
				return errors.NewInvalidDirectiveValue(d.Key, "must be a positive integer literal", dloc)
			}
			v := lit.Value
			if v < 1 || v != math.Trunc(v) || v >= math.MaxUint64 {
				return errors.NewInvalidDirectiveValue(d.Key,
					fmt.Sprintf("must be a positive integer, got %s", lit.String()), dloc)
			}
			if isMain {
				c.iterations = uint64(v)
				c.hasIterations = true
			}
		case recipe.DirectiveOutput:
			lit, ok := d.Value.(*recipe.StringLit)
			if !ok || lit.Value == "" {
				return errors.NewInvalidDirectiveValue(d.Key, "must be the name of a variable", dloc)
			}
			if isMain {
				c.outputName = lit.Value
				c.outputLoc = dloc
			}
		case recipe.DirectiveModule:
			if _, ok := d.Value.(*recipe.BoolLit); !ok {
				return errors.NewInvalidDirectiveValue(d.Key, "must be true or false", dloc)
			}
		default:
			return errors.NewUnknownDirective(d.Key, recipe.KnownDirectives, dloc)
		}
	}
	return nil
}

func (c *Compiler) requireDirectives() error {
	if !c.hasIterations {
		return errors.NewMissingDirective(recipe.DirectiveIterations)
	}
	if c.outputName == "" {
		return errors.NewMissingDirective(recipe.DirectiveOutput)
	}
	return nil
}

// resolveOutput checks the output directive against the final bindings: the
// named variable must exist, hold a value, and be a scalar or vector, since
// those are the only classes the runtime can aggregate across iterations.
func (c *Compiler) resolveOutput() error {
	b, ok := c.regs.Lookup(c.outputName)
	if !ok {
		return errors.NewUndefinedOutput(c.outputName, "is never declared", c.outputLoc)
	}
	if b.State != Defined {
		return errors.NewUndefinedOutput(c.outputName, "is declared but never assigned a value", c.outputLoc)
	}
	if b.Class != types.Scalar && b.Class != types.Vector {
		return errors.NewUndefinedOutput(c.outputName,
			fmt.Sprintf("has class %s; outputs must be scalar or vector", b.Class), c.outputLoc)
	}
	c.output = b.Operand
	c.outputStochastic = b.Stochastic
	return nil
}
