// Package op defines the opcodes shared by the Fathom compiler and the Monte
// Carlo execution engine. Each opcode identifies one concrete operation
// together with its destination and source type pattern, encoded in the
// canonical name as Name_DESTS_SOURCES using the class letters S (scalar),
// V (vector), B (boolean) and STR (string). Opcode IDs are stable across
// compiler versions for a given runtime version.
package op

// Code is an integer opcode that identifies an operation to execute.
type Code uint16

const (
	Invalid Code = 0

	// Moves (register/constant copy into a register)
	Move_S_S     Code = 1
	Move_V_V     Code = 2
	Move_B_B     Code = 3
	Move_STR_STR Code = 4

	// Arithmetic
	Add_S_SS      Code = 10
	Add_V_VV      Code = 11
	Add_V_VS      Code = 12
	Add_V_SV      Code = 13
	Subtract_S_SS Code = 14
	Subtract_V_VV Code = 15
	Subtract_V_VS Code = 16
	Subtract_V_SV Code = 17
	Multiply_S_SS Code = 18
	Multiply_V_VV Code = 19
	Multiply_V_VS Code = 20
	Multiply_V_SV Code = 21
	Divide_S_SS   Code = 22
	Divide_V_VV   Code = 23
	Divide_V_VS   Code = 24
	Divide_V_SV   Code = 25
	Power_S_SS    Code = 26
	Power_V_VS    Code = 27
	Modulo_S_SS   Code = 28
	Negate_S_S    Code = 29
	Negate_V_V    Code = 30

	// Comparison and logic
	Equal_B_SS     Code = 40
	NotEqual_B_SS  Code = 41
	Less_B_SS      Code = 42
	LessEq_B_SS    Code = 43
	Greater_B_SS   Code = 44
	GreaterEq_B_SS Code = 45
	Equal_B_STRSTR Code = 46
	Equal_B_BB     Code = 47
	And_B_BB       Code = 48
	Or_B_BB        Code = 49
	Not_B_B        Code = 50
	If_S_BSS       Code = 51
	If_V_BVV       Code = 52

	// Vector construction and reductions
	VectorOf_V_S    Code = 70 // variadic scalar tail
	Linspace_V_SSS  Code = 71
	Repeat_V_SS     Code = 72
	Sum_S_V         Code = 73
	Mean_S_V        Code = 74
	Min_S_V         Code = 75
	Max_S_V         Code = 76
	Min_S_SS        Code = 77 // variadic scalar tail
	Max_S_SS        Code = 78 // variadic scalar tail
	StdDev_S_V      Code = 79
	Variance_S_V    Code = 80
	Median_S_V      Code = 81
	Percentile_S_VS Code = 82
	Len_S_V         Code = 83
	First_S_V       Code = 84
	Last_S_V        Code = 85
	ElementAt_S_VS  Code = 86
	CumSum_V_V      Code = 87
	Diff_V_V        Code = 88
	Sort_V_V        Code = 89
	Reverse_V_V     Code = 90

	// Distributions (consume a trial's random draws)
	Normal_S_SS      Code = 100
	Uniform_S_SS     Code = 101
	Lognormal_S_SS   Code = 102
	Triangular_S_SSS Code = 103
	Beta_S_SS        Code = 104
	Gamma_S_SS       Code = 105
	Exponential_S_S  Code = 106
	Poisson_S_S      Code = 107
	Bernoulli_B_S    Code = 108
	Discrete_S_VV    Code = 109
	Sample_S_V       Code = 110

	// Stochastic processes
	GbmPath_V_SSSSS  Code = 130
	RandomWalk_V_SSS Code = 131

	// Financial
	BlackScholes_S_SSSSSSTR Code = 140
	Npv_S_SV                Code = 141
	Irr_S_V                 Code = 142
	Pmt_S_SSS               Code = 143
	Fv_S_SSS                Code = 144
	Pv_S_SSS                Code = 145
	VaR_S_VS                Code = 146
	Drawdown_S_V            Code = 147
	Payoff_S_SSSTR          Code = 148

	// Epidemiological models
	SirModel_VVV_SSSSSSS    Code = 170
	SeirModel_VVVV_SSSSSSSS Code = 171

	// Strings
	Concat_STR_STRSTR Code = 180
	ToString_STR_S    Code = 181
)

// Info describes an opcode: its canonical name and the shape of its operand
// lists. Variadic opcodes accept one or more trailing sources beyond the
// fixed ones; their canonical names carry a "+" suffix. Stochastic marks
// opcodes that implicitly consume a trial's random draws, independent of
// argument content.
type Info struct {
	Code        Code
	Name        string
	SourceCount int
	DestCount   int
	Variadic    bool
	Stochastic  bool
}

var infos = make(map[Code]Info)

func init() {
	type opInfo struct {
		op         Code
		name       string
		src, dst   int
		variadic   bool
		stochastic bool
	}
	ops := []opInfo{
		{op: Move_S_S, name: "Move_S_S", src: 1, dst: 1},
		{op: Move_V_V, name: "Move_V_V", src: 1, dst: 1},
		{op: Move_B_B, name: "Move_B_B", src: 1, dst: 1},
		{op: Move_STR_STR, name: "Move_STR_STR", src: 1, dst: 1},

		{op: Add_S_SS, name: "Add_S_SS", src: 2, dst: 1},
		{op: Add_V_VV, name: "Add_V_VV", src: 2, dst: 1},
		{op: Add_V_VS, name: "Add_V_VS", src: 2, dst: 1},
		{op: Add_V_SV, name: "Add_V_SV", src: 2, dst: 1},
		{op: Subtract_S_SS, name: "Subtract_S_SS", src: 2, dst: 1},
		{op: Subtract_V_VV, name: "Subtract_V_VV", src: 2, dst: 1},
		{op: Subtract_V_VS, name: "Subtract_V_VS", src: 2, dst: 1},
		{op: Subtract_V_SV, name: "Subtract_V_SV", src: 2, dst: 1},
		{op: Multiply_S_SS, name: "Multiply_S_SS", src: 2, dst: 1},
		{op: Multiply_V_VV, name: "Multiply_V_VV", src: 2, dst: 1},
		{op: Multiply_V_VS, name: "Multiply_V_VS", src: 2, dst: 1},
		{op: Multiply_V_SV, name: "Multiply_V_SV", src: 2, dst: 1},
		{op: Divide_S_SS, name: "Divide_S_SS", src: 2, dst: 1},
		{op: Divide_V_VV, name: "Divide_V_VV", src: 2, dst: 1},
		{op: Divide_V_VS, name: "Divide_V_VS", src: 2, dst: 1},
		{op: Divide_V_SV, name: "Divide_V_SV", src: 2, dst: 1},
		{op: Power_S_SS, name: "Power_S_SS", src: 2, dst: 1},
		{op: Power_V_VS, name: "Power_V_VS", src: 2, dst: 1},
		{op: Modulo_S_SS, name: "Modulo_S_SS", src: 2, dst: 1},
		{op: Negate_S_S, name: "Negate_S_S", src: 1, dst: 1},
		{op: Negate_V_V, name: "Negate_V_V", src: 1, dst: 1},

		{op: Equal_B_SS, name: "Equal_B_SS", src: 2, dst: 1},
		{op: NotEqual_B_SS, name: "NotEqual_B_SS", src: 2, dst: 1},
		{op: Less_B_SS, name: "Less_B_SS", src: 2, dst: 1},
		{op: LessEq_B_SS, name: "LessEq_B_SS", src: 2, dst: 1},
		{op: Greater_B_SS, name: "Greater_B_SS", src: 2, dst: 1},
		{op: GreaterEq_B_SS, name: "GreaterEq_B_SS", src: 2, dst: 1},
		{op: Equal_B_STRSTR, name: "Equal_B_STRSTR", src: 2, dst: 1},
		{op: Equal_B_BB, name: "Equal_B_BB", src: 2, dst: 1},
		{op: And_B_BB, name: "And_B_BB", src: 2, dst: 1},
		{op: Or_B_BB, name: "Or_B_BB", src: 2, dst: 1},
		{op: Not_B_B, name: "Not_B_B", src: 1, dst: 1},
		{op: If_S_BSS, name: "If_S_BSS", src: 3, dst: 1},
		{op: If_V_BVV, name: "If_V_BVV", src: 3, dst: 1},

		{op: VectorOf_V_S, name: "Vector_V_S+", src: 1, dst: 1, variadic: true},
		{op: Linspace_V_SSS, name: "Linspace_V_SSS", src: 3, dst: 1},
		{op: Repeat_V_SS, name: "Repeat_V_SS", src: 2, dst: 1},
		{op: Sum_S_V, name: "Sum_S_V", src: 1, dst: 1},
		{op: Mean_S_V, name: "Mean_S_V", src: 1, dst: 1},
		{op: Min_S_V, name: "Min_S_V", src: 1, dst: 1},
		{op: Max_S_V, name: "Max_S_V", src: 1, dst: 1},
		{op: Min_S_SS, name: "Min_S_SS+", src: 2, dst: 1, variadic: true},
		{op: Max_S_SS, name: "Max_S_SS+", src: 2, dst: 1, variadic: true},
		{op: StdDev_S_V, name: "StdDev_S_V", src: 1, dst: 1},
		{op: Variance_S_V, name: "Variance_S_V", src: 1, dst: 1},
		{op: Median_S_V, name: "Median_S_V", src: 1, dst: 1},
		{op: Percentile_S_VS, name: "Percentile_S_VS", src: 2, dst: 1},
		{op: Len_S_V, name: "Len_S_V", src: 1, dst: 1},
		{op: First_S_V, name: "First_S_V", src: 1, dst: 1},
		{op: Last_S_V, name: "Last_S_V", src: 1, dst: 1},
		{op: ElementAt_S_VS, name: "ElementAt_S_VS", src: 2, dst: 1},
		{op: CumSum_V_V, name: "CumSum_V_V", src: 1, dst: 1},
		{op: Diff_V_V, name: "Diff_V_V", src: 1, dst: 1},
		{op: Sort_V_V, name: "Sort_V_V", src: 1, dst: 1},
		{op: Reverse_V_V, name: "Reverse_V_V", src: 1, dst: 1},

		{op: Normal_S_SS, name: "Normal_S_SS", src: 2, dst: 1, stochastic: true},
		{op: Uniform_S_SS, name: "Uniform_S_SS", src: 2, dst: 1, stochastic: true},
		{op: Lognormal_S_SS, name: "Lognormal_S_SS", src: 2, dst: 1, stochastic: true},
		{op: Triangular_S_SSS, name: "Triangular_S_SSS", src: 3, dst: 1, stochastic: true},
		{op: Beta_S_SS, name: "Beta_S_SS", src: 2, dst: 1, stochastic: true},
		{op: Gamma_S_SS, name: "Gamma_S_SS", src: 2, dst: 1, stochastic: true},
		{op: Exponential_S_S, name: "Exponential_S_S", src: 1, dst: 1, stochastic: true},
		{op: Poisson_S_S, name: "Poisson_S_S", src: 1, dst: 1, stochastic: true},
		{op: Bernoulli_B_S, name: "Bernoulli_B_S", src: 1, dst: 1, stochastic: true},
		{op: Discrete_S_VV, name: "Discrete_S_VV", src: 2, dst: 1, stochastic: true},
		{op: Sample_S_V, name: "Sample_S_V", src: 1, dst: 1, stochastic: true},

		{op: GbmPath_V_SSSSS, name: "GbmPath_V_SSSSS", src: 5, dst: 1, stochastic: true},
		{op: RandomWalk_V_SSS, name: "RandomWalk_V_SSS", src: 3, dst: 1, stochastic: true},

		{op: BlackScholes_S_SSSSSSTR, name: "BlackScholes_S_SSSSSSTR", src: 6, dst: 1},
		{op: Npv_S_SV, name: "Npv_S_SV", src: 2, dst: 1},
		{op: Irr_S_V, name: "Irr_S_V", src: 1, dst: 1},
		{op: Pmt_S_SSS, name: "Pmt_S_SSS", src: 3, dst: 1},
		{op: Fv_S_SSS, name: "Fv_S_SSS", src: 3, dst: 1},
		{op: Pv_S_SSS, name: "Pv_S_SSS", src: 3, dst: 1},
		{op: VaR_S_VS, name: "VaR_S_VS", src: 2, dst: 1},
		{op: Drawdown_S_V, name: "Drawdown_S_V", src: 1, dst: 1},
		{op: Payoff_S_SSSTR, name: "Payoff_S_SSSTR", src: 3, dst: 1},

		{op: SirModel_VVV_SSSSSSS, name: "SirModel_VVV_SSSSSSS", src: 7, dst: 3},
		{op: SeirModel_VVVV_SSSSSSSS, name: "SeirModel_VVVV_SSSSSSSS", src: 8, dst: 4},

		{op: Concat_STR_STRSTR, name: "Concat_STR_STRSTR", src: 2, dst: 1},
		{op: ToString_STR_S, name: "ToString_STR_S", src: 1, dst: 1},
	}
	for _, o := range ops {
		infos[o.op] = Info{
			Code:        o.op,
			Name:        o.name,
			SourceCount: o.src,
			DestCount:   o.dst,
			Variadic:    o.variadic,
			Stochastic:  o.stochastic,
		}
	}
}

// GetInfo returns information about the given opcode. The zero Info is
// returned for unknown codes.
func GetInfo(code Code) Info {
	return infos[code]
}

// Name returns the canonical name of the opcode, or "INVALID" if unknown.
func Name(code Code) string {
	info, ok := infos[code]
	if !ok {
		return "INVALID"
	}
	return info.Name
}
