package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fathom-lang/fathom/bytecode"
	ferrors "github.com/fathom-lang/fathom/errors"
	"github.com/fathom-lang/fathom/op"
	"github.com/fathom-lang/fathom/recipe"
	"github.com/fathom-lang/fathom/types"
)

func num(v float64) recipe.Expr { return &recipe.ScalarLit{Value: v} }

func str(v string) recipe.Expr { return &recipe.StringLit{Value: v} }

func ident(name string) recipe.Expr { return &recipe.Ident{Name: name} }

func call(fn string, args ...recipe.Expr) *recipe.Call {
	return &recipe.Call{Func: fn, Args: args}
}

func assign(value recipe.Expr, targets ...string) recipe.Step {
	return &recipe.Assign{Targets: targets, Value: value}
}

func mainRecipe(output string, steps ...recipe.Step) *recipe.Root {
	return &recipe.Root{
		Path: "model.ftm",
		Directives: []recipe.Directive{
			{Key: recipe.DirectiveIterations, Value: &recipe.ScalarLit{Value: 10000}},
			{Key: recipe.DirectiveOutput, Value: &recipe.StringLit{Value: output}},
		},
		Steps: steps,
	}
}

func mapLoader(files map[string]*recipe.Root) Loader {
	return LoaderFunc(func(path string) (*recipe.Root, error) {
		r, ok := files[path]
		if !ok {
			return nil, fmt.Errorf("no such file: %s", path)
		}
		return r, nil
	})
}

func compileErr(t *testing.T, root *recipe.Root, cfg *Config) *ferrors.CompileError {
	t.Helper()
	prog, err := Compile(root, cfg)
	require.Error(t, err)
	require.Nil(t, prog)
	ce, ok := err.(*ferrors.CompileError)
	require.True(t, ok, "expected *errors.CompileError, got %T: %v", err, err)
	return ce
}

func TestCompileSirModel(t *testing.T) {
	root := mainRecipe("infected",
		assign(call("SirModel",
			num(1000), num(1), num(0), num(0.3), num(0.1), num(100), num(1)),
			"susceptible", "infected", "recovered"),
	)
	prog, err := Compile(root, nil)
	require.NoError(t, err)

	require.Equal(t, uint64(10000), prog.Iterations)
	require.Equal(t, types.NewRegister(types.Vector, 1), prog.Output)
	require.Equal(t, uint32(0), prog.RegisterCounts[types.Scalar])
	require.Equal(t, uint32(3), prog.RegisterCounts[types.Vector])

	// The literal 1 appears twice in the call and interns to one slot.
	require.Equal(t, []float64{1000, 1, 0, 0.3, 0.1, 100}, prog.ScalarPool)

	require.Len(t, prog.Instructions, 1)
	ins := prog.Instructions[0]
	require.Equal(t, op.SirModel_VVV_SSSSSSS, ins.Op)
	require.Equal(t, []types.Operand{
		types.NewConst(types.Scalar, 0),
		types.NewConst(types.Scalar, 1),
		types.NewConst(types.Scalar, 2),
		types.NewConst(types.Scalar, 3),
		types.NewConst(types.Scalar, 4),
		types.NewConst(types.Scalar, 5),
		types.NewConst(types.Scalar, 1),
	}, ins.Src)
	require.Equal(t, []types.Operand{
		types.NewRegister(types.Vector, 0),
		types.NewRegister(types.Vector, 1),
		types.NewRegister(types.Vector, 2),
	}, ins.Dst)
	require.True(t, ins.Stochastic)

	require.NoError(t, prog.Validate())
}

func TestCompileSirModelWithDeclaredTargets(t *testing.T) {
	root := mainRecipe("i",
		&recipe.Let{Names: []string{"s", "i", "r"}, Class: types.Vector},
		assign(call("SirModel",
			num(1000), num(1), num(0), num(0.3), num(0.1), num(100), num(1)),
			"s", "i", "r"),
	)
	prog, err := Compile(root, nil)
	require.NoError(t, err)

	// Declared targets keep the registers the let reserved.
	require.Equal(t, uint32(3), prog.RegisterCounts[types.Vector])
	require.Equal(t, types.NewRegister(types.Vector, 1), prog.Output)
	require.Len(t, prog.Instructions, 1)
	require.Equal(t, []types.Operand{
		types.NewRegister(types.Vector, 0),
		types.NewRegister(types.Vector, 1),
		types.NewRegister(types.Vector, 2),
	}, prog.Instructions[0].Dst)
}

func TestCompileBlackScholes(t *testing.T) {
	root := mainRecipe("price",
		&recipe.Let{
			Names: []string{"price"},
			Class: types.Scalar,
			Value: call("BlackScholes",
				num(100), num(95), num(0.25), num(0.05), num(0.2), str("call")),
		},
	)
	prog, err := Compile(root, nil)
	require.NoError(t, err)

	require.Equal(t, []float64{100, 95, 0.25, 0.05, 0.2}, prog.ScalarPool)
	require.Equal(t, []string{"call"}, prog.StringPool)
	require.Equal(t, types.NewRegister(types.Scalar, 0), prog.Output)

	require.Len(t, prog.Instructions, 1)
	ins := prog.Instructions[0]
	require.Equal(t, op.BlackScholes_S_SSSSSSTR, ins.Op)
	require.Equal(t, types.NewConst(types.String, 0), ins.Src[5])
	require.Equal(t, []types.Operand{types.NewRegister(types.Scalar, 0)}, ins.Dst)
	require.False(t, ins.Stochastic)
}

func TestCompileDeterministic(t *testing.T) {
	build := func() *recipe.Root {
		return mainRecipe("infected",
			assign(call("Normal", num(0.3), num(0.05)), "beta"),
			assign(call("SirModel",
				num(1000), num(1), num(0), ident("beta"), num(0.1), num(100), num(1)),
				"susceptible", "infected", "recovered"),
		)
	}
	a, err := Compile(build(), nil)
	require.NoError(t, err)
	b, err := Compile(build(), nil)
	require.NoError(t, err)

	// Compilation IDs differ, but the wire encoding does not carry them:
	// identical input produces byte-identical output.
	require.NotEqual(t, a.ID, b.ID)
	abytes, err := bytecode.Marshal(a)
	require.NoError(t, err)
	bbytes, err := bytecode.Marshal(b)
	require.NoError(t, err)
	require.Equal(t, abytes, bbytes)
}

func TestStochasticTaintPropagation(t *testing.T) {
	root := mainRecipe("z",
		assign(call("Normal", num(0), num(1)), "x"),
		assign(call("Add", ident("x"), num(10)), "y"),
		assign(call("Multiply", ident("y"), num(2)), "z"),
		assign(call("Add", num(10), num(2)), "w"),
	)
	prog, err := Compile(root, nil)
	require.NoError(t, err)
	require.Len(t, prog.Instructions, 4)

	// Randomness flows from the draw through every dependent binding.
	require.True(t, prog.Instructions[0].Stochastic)
	require.True(t, prog.Instructions[1].Stochastic)
	require.True(t, prog.Instructions[2].Stochastic)

	// A computation on pure constants stays deterministic.
	require.False(t, prog.Instructions[3].Stochastic)
}

func TestStochasticTaintThroughNestedCalls(t *testing.T) {
	root := mainRecipe("result",
		assign(call("Add",
			call("Multiply", call("Normal", num(0), num(1)), num(2)),
			num(3)), "result"),
	)
	prog, err := Compile(root, nil)
	require.NoError(t, err)

	// The draw sits three levels deep in argument position; taint still
	// reaches every instruction computed from it.
	require.Len(t, prog.Instructions, 3)
	require.Equal(t, op.Normal_S_SS, prog.Instructions[0].Op)
	for i, ins := range prog.Instructions {
		require.True(t, ins.Stochastic, "instruction %d", i)
	}
}

func TestUserFunctionInlining(t *testing.T) {
	root := mainRecipe("result",
		assign(call("Double", num(21)), "result"),
	)
	root.Funcs = []recipe.FuncDef{{
		Name:    "Double",
		Params:  []recipe.Param{{Name: "x", Class: types.Scalar}},
		Returns: []types.Class{types.Scalar},
		Return:  []recipe.Expr{call("Add", ident("x"), ident("x"))},
	}}

	prog, err := Compile(root, nil)
	require.NoError(t, err)

	// The body expands in place: the Add writes an intermediate register,
	// then a move lands it in the target. No call frames exist.
	require.Len(t, prog.Instructions, 2)
	require.Equal(t, op.Add_S_SS, prog.Instructions[0].Op)
	require.Equal(t, []types.Operand{
		types.NewConst(types.Scalar, 0),
		types.NewConst(types.Scalar, 0),
	}, prog.Instructions[0].Src)
	require.Equal(t, op.Move_S_S, prog.Instructions[1].Op)
	require.Equal(t, uint32(2), prog.RegisterCounts[types.Scalar])
	require.Equal(t, types.NewRegister(types.Scalar, 1), prog.Output)
}

func TestParameterReassignmentDoesNotClobberArgument(t *testing.T) {
	root := mainRecipe("c",
		assign(num(5), "a"),
		assign(call("Inc", ident("a")), "b"),
		assign(call("Add", ident("a"), num(0)), "c"),
	)
	root.Funcs = []recipe.FuncDef{{
		Name:    "Inc",
		Params:  []recipe.Param{{Name: "x", Class: types.Scalar}},
		Returns: []types.Class{types.Scalar},
		Body: []recipe.Step{
			assign(call("Add", ident("x"), num(1)), "x"),
		},
		Return: []recipe.Expr{ident("x")},
	}}

	prog, err := Compile(root, nil)
	require.NoError(t, err)
	require.Len(t, prog.Instructions, 4)

	// Assigning to the parameter inside the body lands in a fresh register;
	// the caller's a is only ever read after its initial definition.
	aReg := types.NewRegister(types.Scalar, 0)
	require.Equal(t, []types.Operand{aReg}, prog.Instructions[0].Dst)
	for i, ins := range prog.Instructions[1:] {
		require.NotContains(t, ins.Dst, aReg, "instruction %d", i+1)
	}

	// The read of a after the call sees the original register, not the
	// incremented copy.
	require.Equal(t, op.Add_S_SS, prog.Instructions[3].Op)
	require.Equal(t, aReg, prog.Instructions[3].Src[0])
	require.Equal(t, uint32(4), prog.RegisterCounts[types.Scalar])
}

func TestUserFunctionMultiReturn(t *testing.T) {
	root := mainRecipe("result",
		assign(call("Vector", num(1), num(2), num(3)), "data"),
		assign(call("Bounds", ident("data")), "lo", "hi"),
		assign(call("Subtract", ident("hi"), ident("lo")), "result"),
	)
	root.Funcs = []recipe.FuncDef{{
		Name:    "Bounds",
		Params:  []recipe.Param{{Name: "v", Class: types.Vector}},
		Returns: []types.Class{types.Scalar, types.Scalar},
		Return: []recipe.Expr{
			call("Min", ident("v")),
			call("Max", ident("v")),
		},
	}}

	prog, err := Compile(root, nil)
	require.NoError(t, err)
	// Vector, Min, Max, two moves into the targets, Subtract.
	require.Len(t, prog.Instructions, 6)
	require.Equal(t, uint32(5), prog.RegisterCounts[types.Scalar])
	require.Equal(t, types.NewRegister(types.Scalar, 4), prog.Output)
	require.NoError(t, prog.Validate())
}

func TestRecursiveFunction(t *testing.T) {
	root := mainRecipe("result",
		assign(call("Loop", num(1)), "result"),
	)
	root.Funcs = []recipe.FuncDef{{
		Name:    "Loop",
		Params:  []recipe.Param{{Name: "x", Class: types.Scalar}},
		Returns: []types.Class{types.Scalar},
		Return:  []recipe.Expr{call("Loop", ident("x"))},
	}}
	ce := compileErr(t, root, nil)
	require.Equal(t, ferrors.E2014, ce.Code)
}

func TestMutuallyRecursiveFunctions(t *testing.T) {
	root := mainRecipe("result",
		assign(call("Ping", num(1)), "result"),
	)
	root.Funcs = []recipe.FuncDef{
		{
			Name:    "Ping",
			Params:  []recipe.Param{{Name: "x", Class: types.Scalar}},
			Returns: []types.Class{types.Scalar},
			Return:  []recipe.Expr{call("Pong", ident("x"))},
		},
		{
			Name:    "Pong",
			Params:  []recipe.Param{{Name: "x", Class: types.Scalar}},
			Returns: []types.Class{types.Scalar},
			Return:  []recipe.Expr{call("Ping", ident("x"))},
		},
	}
	ce := compileErr(t, root, nil)
	require.Equal(t, ferrors.E2014, ce.Code)
}

func TestReturnTypeMismatch(t *testing.T) {
	root := mainRecipe("result",
		assign(call("Bad", num(1)), "result"),
	)
	root.Funcs = []recipe.FuncDef{{
		Name:    "Bad",
		Params:  []recipe.Param{{Name: "x", Class: types.Scalar}},
		Returns: []types.Class{types.Vector},
		Return:  []recipe.Expr{call("Add", ident("x"), num(1))},
	}}
	ce := compileErr(t, root, nil)
	require.Equal(t, ferrors.E2003, ce.Code)
	require.Contains(t, ce.Message, "Bad")
}

func TestArgumentTypeMismatch(t *testing.T) {
	root := mainRecipe("result",
		assign(call("Sum", num(5)), "result"),
	)
	ce := compileErr(t, root, nil)
	require.Equal(t, ferrors.E2003, ce.Code)
	require.Contains(t, ce.Message, "argument 1")
}

func TestArityMismatch(t *testing.T) {
	root := mainRecipe("result",
		assign(call("SirModel", num(1), num(2), num(3)), "a", "b", "c"),
	)
	ce := compileErr(t, root, nil)
	require.Equal(t, ferrors.E2002, ce.Code)
}

func TestUnknownFunctionSuggestion(t *testing.T) {
	root := mainRecipe("result",
		assign(call("Normel", num(0), num(1)), "result"),
	)
	ce := compileErr(t, root, nil)
	require.Equal(t, ferrors.E2001, ce.Code)
	require.Contains(t, ce.FriendlyErrorMessage(), "Normal")
}

func TestUndeclaredVariable(t *testing.T) {
	root := mainRecipe("result",
		assign(num(0.05), "rate"),
		assign(call("Add", ident("ratee"), num(1)), "result"),
	)
	ce := compileErr(t, root, nil)
	require.Equal(t, ferrors.E2004, ce.Code)
	require.NotEmpty(t, ce.Suggestions)
	require.Equal(t, "rate", ce.Suggestions[0].Value)
}

func TestUseBeforeDefinition(t *testing.T) {
	root := mainRecipe("result",
		&recipe.Let{Names: []string{"x"}, Class: types.Scalar},
		assign(call("Add", ident("x"), num(1)), "result"),
	)
	ce := compileErr(t, root, nil)
	require.Equal(t, ferrors.E2005, ce.Code)
}

func TestDuplicateDeclaration(t *testing.T) {
	root := mainRecipe("result",
		&recipe.Let{Names: []string{"x"}, Class: types.Scalar, Value: num(1)},
		&recipe.Let{Names: []string{"x"}, Class: types.Scalar, Value: num(2)},
	)
	ce := compileErr(t, root, nil)
	require.Equal(t, ferrors.E2006, ce.Code)
}

func TestRebindKeepsRegisterRejectsClassChange(t *testing.T) {
	good := mainRecipe("x",
		assign(num(1), "x"),
		assign(num(2), "x"),
	)
	prog, err := Compile(good, nil)
	require.NoError(t, err)
	// Both assignments write the same register.
	require.Equal(t, uint32(1), prog.RegisterCounts[types.Scalar])
	require.Equal(t, prog.Instructions[0].Dst, prog.Instructions[1].Dst)

	bad := mainRecipe("x",
		assign(num(1), "x"),
		assign(call("Vector", num(1), num(2)), "x"),
	)
	ce := compileErr(t, bad, nil)
	require.Equal(t, ferrors.E2003, ce.Code)
}

func TestAssignmentCountMismatch(t *testing.T) {
	root := mainRecipe("a",
		assign(call("Normal", num(0), num(1)), "a", "b"),
	)
	ce := compileErr(t, root, nil)
	require.Equal(t, ferrors.E2002, ce.Code)
}

func TestMultiDestCallInsideExpression(t *testing.T) {
	root := mainRecipe("result",
		assign(call("Mean", call("SirModel",
			num(1000), num(1), num(0), num(0.3), num(0.1), num(100), num(1))),
			"result"),
	)
	ce := compileErr(t, root, nil)
	require.Equal(t, ferrors.E2002, ce.Code)
	require.Contains(t, ce.Message, "SirModel")
}

func TestMissingDirectives(t *testing.T) {
	noIter := &recipe.Root{
		Path: "model.ftm",
		Directives: []recipe.Directive{
			{Key: recipe.DirectiveOutput, Value: &recipe.StringLit{Value: "x"}},
		},
		Steps: []recipe.Step{assign(num(1), "x")},
	}
	ce := compileErr(t, noIter, nil)
	require.Equal(t, ferrors.E2010, ce.Code)
	require.Contains(t, ce.Message, "iterations")

	noOutput := &recipe.Root{
		Path: "model.ftm",
		Directives: []recipe.Directive{
			{Key: recipe.DirectiveIterations, Value: &recipe.ScalarLit{Value: 100}},
		},
		Steps: []recipe.Step{assign(num(1), "x")},
	}
	ce = compileErr(t, noOutput, nil)
	require.Equal(t, ferrors.E2010, ce.Code)
	require.Contains(t, ce.Message, "output")
}

func TestInvalidDirectiveValues(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value recipe.Expr
	}{
		{"iterations zero", recipe.DirectiveIterations, num(0)},
		{"iterations negative", recipe.DirectiveIterations, num(-5)},
		{"iterations fractional", recipe.DirectiveIterations, num(2.5)},
		{"iterations string", recipe.DirectiveIterations, str("many")},
		{"output number", recipe.DirectiveOutput, num(1)},
		{"output empty", recipe.DirectiveOutput, str("")},
		{"module number", recipe.DirectiveModule, num(1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			root := &recipe.Root{
				Path:       "model.ftm",
				Directives: []recipe.Directive{{Key: tc.key, Value: tc.value}},
			}
			ce := compileErr(t, root, nil)
			require.Equal(t, ferrors.E2011, ce.Code)
		})
	}
}

func TestUnknownDirective(t *testing.T) {
	root := &recipe.Root{
		Path: "model.ftm",
		Directives: []recipe.Directive{
			{Key: "iteraton", Value: &recipe.ScalarLit{Value: 100}},
		},
	}
	ce := compileErr(t, root, nil)
	require.Equal(t, ferrors.E2008, ce.Code)
	require.Contains(t, ce.FriendlyErrorMessage(), "iterations")
}

func TestOutputValidation(t *testing.T) {
	t.Run("never declared", func(t *testing.T) {
		root := mainRecipe("missing", assign(num(1), "x"))
		ce := compileErr(t, root, nil)
		require.Equal(t, ferrors.E2012, ce.Code)
	})
	t.Run("declared but never defined", func(t *testing.T) {
		root := mainRecipe("x",
			&recipe.Let{Names: []string{"x"}, Class: types.Scalar},
			assign(num(1), "y"),
		)
		ce := compileErr(t, root, nil)
		require.Equal(t, ferrors.E2012, ce.Code)
	})
	t.Run("boolean output", func(t *testing.T) {
		root := mainRecipe("flag",
			assign(call("Less", num(1), num(2)), "flag"),
		)
		ce := compileErr(t, root, nil)
		require.Equal(t, ferrors.E2012, ce.Code)
	})
}

func TestImportFunctions(t *testing.T) {
	lib := &recipe.Root{
		Path: "lib.ftm",
		Funcs: []recipe.FuncDef{{
			Name:    "Triple",
			Params:  []recipe.Param{{Name: "x", Class: types.Scalar}},
			Returns: []types.Class{types.Scalar},
			Return:  []recipe.Expr{call("Multiply", ident("x"), num(3))},
		}},
	}
	root := mainRecipe("result",
		assign(call("Triple", num(14)), "result"),
	)
	root.Imports = []recipe.Import{{Path: "lib.ftm"}}

	prog, err := Compile(root, &Config{Loader: mapLoader(map[string]*recipe.Root{"lib.ftm": lib})})
	require.NoError(t, err)
	require.Len(t, prog.Instructions, 2)
	require.Equal(t, op.Multiply_S_SS, prog.Instructions[0].Op)
}

func TestModuleStepsSplice(t *testing.T) {
	module := &recipe.Root{
		Path: "market.ftm",
		Directives: []recipe.Directive{
			{Key: recipe.DirectiveModule, Value: &recipe.BoolLit{Value: true}},
		},
		Steps: []recipe.Step{assign(call("Add", num(40), num(2)), "base")},
	}
	root := mainRecipe("result",
		assign(call("Multiply", ident("base"), num(2)), "result"),
	)
	root.Imports = []recipe.Import{{Path: "market.ftm"}}

	prog, err := Compile(root, &Config{Loader: mapLoader(map[string]*recipe.Root{"market.ftm": module})})
	require.NoError(t, err)
	// The module's step runs before the importer's.
	require.Len(t, prog.Instructions, 2)
	require.Equal(t, op.Add_S_SS, prog.Instructions[0].Op)
	require.Equal(t, op.Multiply_S_SS, prog.Instructions[1].Op)
}

func TestNonModuleStepsDoNotSplice(t *testing.T) {
	lib := &recipe.Root{
		Path:  "lib.ftm",
		Steps: []recipe.Step{assign(num(1), "hidden")},
	}
	root := mainRecipe("result",
		assign(call("Add", ident("hidden"), num(1)), "result"),
	)
	root.Imports = []recipe.Import{{Path: "lib.ftm"}}

	ce := compileErr(t, root, &Config{Loader: mapLoader(map[string]*recipe.Root{"lib.ftm": lib})})
	require.Equal(t, ferrors.E2004, ce.Code)
}

func TestDiamondImportMergesOnce(t *testing.T) {
	common := &recipe.Root{
		Path: "common.ftm",
		Directives: []recipe.Directive{
			{Key: recipe.DirectiveModule, Value: &recipe.BoolLit{Value: true}},
		},
		Steps: []recipe.Step{assign(call("Add", num(40), num(2)), "base")},
	}
	left := &recipe.Root{Path: "left.ftm", Imports: []recipe.Import{{Path: "common.ftm"}}}
	right := &recipe.Root{Path: "right.ftm", Imports: []recipe.Import{{Path: "common.ftm"}}}

	root := mainRecipe("result",
		assign(call("Multiply", ident("base"), num(2)), "result"),
	)
	root.Imports = []recipe.Import{{Path: "left.ftm"}, {Path: "right.ftm"}}

	prog, err := Compile(root, &Config{Loader: mapLoader(map[string]*recipe.Root{
		"common.ftm": common,
		"left.ftm":   left,
		"right.ftm":  right,
	})})
	require.NoError(t, err)
	// common.ftm merges once despite being reachable on two paths.
	require.Len(t, prog.Instructions, 2)
}

func TestCircularImport(t *testing.T) {
	a := &recipe.Root{Path: "a.ftm", Imports: []recipe.Import{{Path: "b.ftm"}}}
	b := &recipe.Root{Path: "b.ftm", Imports: []recipe.Import{{Path: "a.ftm"}}}
	root := mainRecipe("x", assign(num(1), "x"))
	root.Imports = []recipe.Import{{Path: "a.ftm"}}

	ce := compileErr(t, root, &Config{Loader: mapLoader(map[string]*recipe.Root{
		"a.ftm": a,
		"b.ftm": b,
	})})
	require.Equal(t, ferrors.E2007, ce.Code)
	require.Contains(t, ce.Message, "a.ftm")
	require.Contains(t, ce.Message, "b.ftm")
}

func TestImportFailed(t *testing.T) {
	root := mainRecipe("x", assign(num(1), "x"))
	root.Imports = []recipe.Import{{Path: "nope.ftm"}}

	ce := compileErr(t, root, &Config{Loader: mapLoader(nil)})
	require.Equal(t, ferrors.E2013, ce.Code)

	// With no loader at all, any import fails.
	ce = compileErr(t, root, nil)
	require.Equal(t, ferrors.E2013, ce.Code)
}

func TestCrossModuleDuplicateFunction(t *testing.T) {
	def := recipe.FuncDef{
		Name:    "Rate",
		Params:  []recipe.Param{{Name: "x", Class: types.Scalar}},
		Returns: []types.Class{types.Scalar},
		Return:  []recipe.Expr{call("Multiply", ident("x"), num(0.05))},
	}
	a := &recipe.Root{Path: "a.ftm", Funcs: []recipe.FuncDef{def}}
	b := &recipe.Root{Path: "b.ftm", Funcs: []recipe.FuncDef{def}}

	root := mainRecipe("x", assign(num(1), "x"))
	root.Imports = []recipe.Import{{Path: "a.ftm"}, {Path: "b.ftm"}}

	ce := compileErr(t, root, &Config{Loader: mapLoader(map[string]*recipe.Root{
		"a.ftm": a,
		"b.ftm": b,
	})})
	require.Equal(t, ferrors.E2006, ce.Code)
	require.Contains(t, ce.Message, "a.ftm")
}

func TestFileLoader(t *testing.T) {
	dir := t.TempDir()
	mainDoc := `{
		"path": "main.ftm",
		"imports": [{"path": "lib.ftm"}],
		"directives": [
			{"key": "iterations", "value": {"type": "scalar", "value": 5000}},
			{"key": "output", "value": {"type": "string", "value": "result"}}
		],
		"steps": [
			{"kind": "assign", "targets": ["result"],
			 "value": {"type": "call", "func": "Triple",
			           "args": [{"type": "scalar", "value": 14}]}}
		]
	}`
	libDoc := `{
		"path": "lib.ftm",
		"functions": [{
			"name": "Triple",
			"params": [{"name": "x", "class": "scalar"}],
			"returns": ["scalar"],
			"return": [{"type": "call", "func": "Multiply",
			            "args": [{"type": "ident", "name": "x"},
			                     {"type": "scalar", "value": 3}]}]
		}]
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.ftm"), []byte(mainDoc), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lib.ftm"), []byte(libDoc), 0o644))

	loader := FileLoader{Dir: dir}
	root, err := loader.Load("main.ftm")
	require.NoError(t, err)

	prog, err := Compile(root, &Config{Filename: "main.ftm", Loader: loader})
	require.NoError(t, err)
	require.Equal(t, uint64(5000), prog.Iterations)
	require.Equal(t, []float64{14, 3}, prog.ScalarPool)
}

func TestCompilerReuse(t *testing.T) {
	c, err := New(nil)
	require.NoError(t, err)

	first := mainRecipe("x", assign(call("Normal", num(0), num(1)), "x"))
	second := mainRecipe("y", assign(num(7), "y"))

	p1, err := c.Compile(first)
	require.NoError(t, err)
	p2, err := c.Compile(second)
	require.NoError(t, err)

	// State from the first compilation does not leak into the second.
	require.NotEqual(t, p1.ID, p2.ID)
	require.Len(t, p2.Instructions, 1)
	require.Equal(t, []float64{7}, p2.ScalarPool)
	require.Equal(t, uint32(1), p2.RegisterCounts[types.Scalar])
}

func TestUserFunctionsDoNotLeakAcrossCompilations(t *testing.T) {
	c, err := New(nil)
	require.NoError(t, err)

	withDef := mainRecipe("result", assign(call("Double", num(21)), "result"))
	withDef.Funcs = []recipe.FuncDef{{
		Name:    "Double",
		Params:  []recipe.Param{{Name: "x", Class: types.Scalar}},
		Returns: []types.Class{types.Scalar},
		Return:  []recipe.Expr{call("Add", ident("x"), ident("x"))},
	}}
	_, err = c.Compile(withDef)
	require.NoError(t, err)

	withoutDef := mainRecipe("result", assign(call("Double", num(21)), "result"))
	ce := compileErr(t, withoutDef, nil)
	require.Equal(t, ferrors.E2001, ce.Code)

	// The shared catalog clone means a second compiler run on the same
	// instance starts clean too.
	_, err = c.Compile(withoutDef)
	require.Error(t, err)
}
