package registry

import (
	"github.com/fathom-lang/fathom/op"
	"github.com/fathom-lang/fathom/types"
)

// builtinSignatures returns the static builtin catalog. The table is the
// compiler half of a versioned contract with the runtime: names and patterns
// here must resolve to the same opcode IDs the runtime embeds.
func builtinSignatures() []Signature {
	S := types.Scalar
	V := types.Vector
	B := types.Boolean
	STR := types.String
	cc := func(classes ...types.Class) []types.Class { return classes }

	return []Signature{
		// Arithmetic. The frontend lowers infix operators to these names.
		{Name: "Add", Params: cc(S, S), Dests: cc(S), Opcode: op.Add_S_SS},
		{Name: "Add", Params: cc(V, V), Dests: cc(V), Opcode: op.Add_V_VV},
		{Name: "Add", Params: cc(V, S), Dests: cc(V), Opcode: op.Add_V_VS},
		{Name: "Add", Params: cc(S, V), Dests: cc(V), Opcode: op.Add_V_SV},
		{Name: "Subtract", Params: cc(S, S), Dests: cc(S), Opcode: op.Subtract_S_SS},
		{Name: "Subtract", Params: cc(V, V), Dests: cc(V), Opcode: op.Subtract_V_VV},
		{Name: "Subtract", Params: cc(V, S), Dests: cc(V), Opcode: op.Subtract_V_VS},
		{Name: "Subtract", Params: cc(S, V), Dests: cc(V), Opcode: op.Subtract_V_SV},
		{Name: "Multiply", Params: cc(S, S), Dests: cc(S), Opcode: op.Multiply_S_SS},
		{Name: "Multiply", Params: cc(V, V), Dests: cc(V), Opcode: op.Multiply_V_VV},
		{Name: "Multiply", Params: cc(V, S), Dests: cc(V), Opcode: op.Multiply_V_VS},
		{Name: "Multiply", Params: cc(S, V), Dests: cc(V), Opcode: op.Multiply_V_SV},
		{Name: "Divide", Params: cc(S, S), Dests: cc(S), Opcode: op.Divide_S_SS},
		{Name: "Divide", Params: cc(V, V), Dests: cc(V), Opcode: op.Divide_V_VV},
		{Name: "Divide", Params: cc(V, S), Dests: cc(V), Opcode: op.Divide_V_VS},
		{Name: "Divide", Params: cc(S, V), Dests: cc(V), Opcode: op.Divide_V_SV},
		{Name: "Power", Params: cc(S, S), Dests: cc(S), Opcode: op.Power_S_SS},
		{Name: "Power", Params: cc(V, S), Dests: cc(V), Opcode: op.Power_V_VS},
		{Name: "Modulo", Params: cc(S, S), Dests: cc(S), Opcode: op.Modulo_S_SS},
		{Name: "Negate", Params: cc(S), Dests: cc(S), Opcode: op.Negate_S_S},
		{Name: "Negate", Params: cc(V), Dests: cc(V), Opcode: op.Negate_V_V},

		// Comparison and logic
		{Name: "Equal", Params: cc(S, S), Dests: cc(B), Opcode: op.Equal_B_SS},
		{Name: "Equal", Params: cc(STR, STR), Dests: cc(B), Opcode: op.Equal_B_STRSTR},
		{Name: "Equal", Params: cc(B, B), Dests: cc(B), Opcode: op.Equal_B_BB},
		{Name: "NotEqual", Params: cc(S, S), Dests: cc(B), Opcode: op.NotEqual_B_SS},
		{Name: "Less", Params: cc(S, S), Dests: cc(B), Opcode: op.Less_B_SS},
		{Name: "LessEq", Params: cc(S, S), Dests: cc(B), Opcode: op.LessEq_B_SS},
		{Name: "Greater", Params: cc(S, S), Dests: cc(B), Opcode: op.Greater_B_SS},
		{Name: "GreaterEq", Params: cc(S, S), Dests: cc(B), Opcode: op.GreaterEq_B_SS},
		{Name: "And", Params: cc(B, B), Dests: cc(B), Opcode: op.And_B_BB},
		{Name: "Or", Params: cc(B, B), Dests: cc(B), Opcode: op.Or_B_BB},
		{Name: "Not", Params: cc(B), Dests: cc(B), Opcode: op.Not_B_B},
		{Name: "If", Params: cc(B, S, S), Dests: cc(S), Opcode: op.If_S_BSS},
		{Name: "If", Params: cc(B, V, V), Dests: cc(V), Opcode: op.If_V_BVV},

		// Vector construction and reductions
		{Name: "Vector", Params: cc(S), Variadic: true, Dests: cc(V), Opcode: op.VectorOf_V_S},
		{Name: "Linspace", Params: cc(S, S, S), Dests: cc(V), Opcode: op.Linspace_V_SSS},
		{Name: "Repeat", Params: cc(S, S), Dests: cc(V), Opcode: op.Repeat_V_SS},
		{Name: "Sum", Params: cc(V), Dests: cc(S), Opcode: op.Sum_S_V},
		{Name: "Mean", Params: cc(V), Dests: cc(S), Opcode: op.Mean_S_V},
		{Name: "Min", Params: cc(V), Dests: cc(S), Opcode: op.Min_S_V},
		{Name: "Max", Params: cc(V), Dests: cc(S), Opcode: op.Max_S_V},
		{Name: "Min", Params: cc(S, S), Variadic: true, Dests: cc(S), Opcode: op.Min_S_SS},
		{Name: "Max", Params: cc(S, S), Variadic: true, Dests: cc(S), Opcode: op.Max_S_SS},
		{Name: "StdDev", Params: cc(V), Dests: cc(S), Opcode: op.StdDev_S_V},
		{Name: "Variance", Params: cc(V), Dests: cc(S), Opcode: op.Variance_S_V},
		{Name: "Median", Params: cc(V), Dests: cc(S), Opcode: op.Median_S_V},
		{Name: "Percentile", Params: cc(V, S), Dests: cc(S), Opcode: op.Percentile_S_VS},
		{Name: "Len", Params: cc(V), Dests: cc(S), Opcode: op.Len_S_V},
		{Name: "First", Params: cc(V), Dests: cc(S), Opcode: op.First_S_V},
		{Name: "Last", Params: cc(V), Dests: cc(S), Opcode: op.Last_S_V},
		{Name: "ElementAt", Params: cc(V, S), Dests: cc(S), Opcode: op.ElementAt_S_VS},
		{Name: "CumSum", Params: cc(V), Dests: cc(V), Opcode: op.CumSum_V_V},
		{Name: "Diff", Params: cc(V), Dests: cc(V), Opcode: op.Diff_V_V},
		{Name: "Sort", Params: cc(V), Dests: cc(V), Opcode: op.Sort_V_V},
		{Name: "Reverse", Params: cc(V), Dests: cc(V), Opcode: op.Reverse_V_V},

		// Distributions
		{Name: "Normal", Params: cc(S, S), Dests: cc(S), Opcode: op.Normal_S_SS},
		{Name: "Uniform", Params: cc(S, S), Dests: cc(S), Opcode: op.Uniform_S_SS},
		{Name: "Lognormal", Params: cc(S, S), Dests: cc(S), Opcode: op.Lognormal_S_SS},
		{Name: "Triangular", Params: cc(S, S, S), Dests: cc(S), Opcode: op.Triangular_S_SSS},
		{Name: "Beta", Params: cc(S, S), Dests: cc(S), Opcode: op.Beta_S_SS},
		{Name: "Gamma", Params: cc(S, S), Dests: cc(S), Opcode: op.Gamma_S_SS},
		{Name: "Exponential", Params: cc(S), Dests: cc(S), Opcode: op.Exponential_S_S},
		{Name: "Poisson", Params: cc(S), Dests: cc(S), Opcode: op.Poisson_S_S},
		{Name: "Bernoulli", Params: cc(S), Dests: cc(B), Opcode: op.Bernoulli_B_S},
		{Name: "Discrete", Params: cc(V, V), Dests: cc(S), Opcode: op.Discrete_S_VV},
		{Name: "Sample", Params: cc(V), Dests: cc(S), Opcode: op.Sample_S_V},

		// Stochastic processes
		{Name: "GbmPath", Params: cc(S, S, S, S, S), Dests: cc(V), Opcode: op.GbmPath_V_SSSSS},
		{Name: "RandomWalk", Params: cc(S, S, S), Dests: cc(V), Opcode: op.RandomWalk_V_SSS},

		// Financial
		{Name: "BlackScholes", Params: cc(S, S, S, S, S, STR), Dests: cc(S), Opcode: op.BlackScholes_S_SSSSSSTR},
		{Name: "Npv", Params: cc(S, V), Dests: cc(S), Opcode: op.Npv_S_SV},
		{Name: "Irr", Params: cc(V), Dests: cc(S), Opcode: op.Irr_S_V},
		{Name: "Pmt", Params: cc(S, S, S), Dests: cc(S), Opcode: op.Pmt_S_SSS},
		{Name: "Fv", Params: cc(S, S, S), Dests: cc(S), Opcode: op.Fv_S_SSS},
		{Name: "Pv", Params: cc(S, S, S), Dests: cc(S), Opcode: op.Pv_S_SSS},
		{Name: "VaR", Params: cc(V, S), Dests: cc(S), Opcode: op.VaR_S_VS},
		{Name: "Drawdown", Params: cc(V), Dests: cc(S), Opcode: op.Drawdown_S_V},
		{Name: "Payoff", Params: cc(S, S, STR), Dests: cc(S), Opcode: op.Payoff_S_SSSTR},

		// Epidemiological models. SirModel yields the S, I and R series in
		// that canonical state order; SeirModel yields S, E, I, R.
		{Name: "SirModel", Params: cc(S, S, S, S, S, S, S), Dests: cc(V, V, V), Opcode: op.SirModel_VVV_SSSSSSS},
		{Name: "SeirModel", Params: cc(S, S, S, S, S, S, S, S), Dests: cc(V, V, V, V), Opcode: op.SeirModel_VVVV_SSSSSSSS},

		// Strings
		{Name: "Concat", Params: cc(STR, STR), Dests: cc(STR), Opcode: op.Concat_STR_STRSTR},
		{Name: "ToString", Params: cc(S), Dests: cc(STR), Opcode: op.ToString_STR_S},
	}
}
