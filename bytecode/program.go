// Package bytecode defines the compiled program the Monte Carlo runtime
// consumes: a header (iteration count, output operand, per-class register
// counts), four constant pools in class order, and a linear instruction
// stream in source-step order. The serialized form is a bit-exact contract
// with the runtime.
package bytecode

import (
	"fmt"
	"strings"

	"github.com/fathom-lang/fathom/op"
	"github.com/fathom-lang/fathom/types"
)

// Instruction is one packed operation: an opcode, its source operands in
// argument order, and its destination operands in the signature's declared
// output order. Stochastic is an in-memory annotation for tooling and tests;
// it is not part of the wire format.
type Instruction struct {
	Op         op.Code
	Src        []types.Operand
	Dst        []types.Operand
	Stochastic bool
}

// String renders the instruction in disassembly notation, e.g.
// "SirModel_VVV_SSSSSSS $s0, $s1, $s2, $s3, $s4, $s5, $s1 -> v0, v1, v2".
func (ins Instruction) String() string {
	var b strings.Builder
	b.WriteString(op.Name(ins.Op))
	for i, src := range ins.Src {
		if i == 0 {
			b.WriteString(" ")
		} else {
			b.WriteString(", ")
		}
		b.WriteString(src.String())
	}
	b.WriteString(" -> ")
	for i, dst := range ins.Dst {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(dst.String())
	}
	return b.String()
}

// Program is one compiled simulation. Instruction order is definitionally
// the execution order of a trial; the compiler performs no reordering.
type Program struct {
	// ID identifies the compilation that produced the program. Metadata
	// only; not serialized.
	ID string

	Iterations     uint64
	Output         types.Operand
	RegisterCounts [types.NumClasses]uint32

	// Constant pools, one per class in canonical class order, each in
	// first-appearance intern order.
	ScalarPool []float64
	VectorPool [][]float64
	BoolPool   []bool
	StringPool []string

	Instructions []Instruction
}

// Validate checks internal consistency: every operand index must fall within
// its pool or register file, and every opcode must be known. The compiler
// emits only valid programs; Unmarshal revalidates since the runtime trusts
// the bytecode unconditionally.
func (p *Program) Validate() error {
	if p.Iterations == 0 {
		return fmt.Errorf("program has zero iterations")
	}
	if err := p.validateOperand(p.Output); err != nil {
		return fmt.Errorf("output operand: %w", err)
	}
	if p.Output.Kind != types.Register {
		return fmt.Errorf("output operand must reference a register")
	}
	for i, ins := range p.Instructions {
		info := op.GetInfo(ins.Op)
		if info.Code == op.Invalid {
			return fmt.Errorf("instruction %d: unknown opcode %d", i, ins.Op)
		}
		for _, o := range ins.Src {
			if err := p.validateOperand(o); err != nil {
				return fmt.Errorf("instruction %d (%s): source %w", i, info.Name, err)
			}
		}
		for _, o := range ins.Dst {
			if err := p.validateOperand(o); err != nil {
				return fmt.Errorf("instruction %d (%s): destination %w", i, info.Name, err)
			}
			if o.Kind != types.Register {
				return fmt.Errorf("instruction %d (%s): destination %s is not a register", i, info.Name, o)
			}
		}
	}
	return nil
}

func (p *Program) validateOperand(o types.Operand) error {
	if !o.Class.Valid() {
		return fmt.Errorf("operand %s has invalid class", o)
	}
	var limit uint32
	if o.Kind == types.Register {
		limit = p.RegisterCounts[o.Class]
	} else {
		limit = uint32(p.poolSize(o.Class))
	}
	if o.Index >= limit {
		return fmt.Errorf("operand %s out of range (limit %d)", o, limit)
	}
	return nil
}

func (p *Program) poolSize(class types.Class) int {
	switch class {
	case types.Scalar:
		return len(p.ScalarPool)
	case types.Vector:
		return len(p.VectorPool)
	case types.Boolean:
		return len(p.BoolPool)
	case types.String:
		return len(p.StringPool)
	}
	return 0
}
