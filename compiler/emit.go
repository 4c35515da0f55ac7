package compiler

import (
	"github.com/fathom-lang/fathom/bytecode"
	"github.com/fathom-lang/fathom/errors"
	"github.com/fathom-lang/fathom/types"
)

// emit assembles the final program. Register and pool indices grow without
// bound during analysis; the packed operand encoding is the narrow point,
// so every operand is capacity-checked here before the program is built.
func (c *Compiler) emit() (*bytecode.Program, error) {
	check := func(o types.Operand, loc errors.SourceLocation) error {
		if _, err := o.Pack(); err != nil {
			return errors.NewCapacityExceeded(err, loc)
		}
		return nil
	}
	for i, ins := range c.instructions {
		for _, o := range ins.Src {
			if err := check(o, c.locs[i]); err != nil {
				return nil, err
			}
		}
		for _, o := range ins.Dst {
			if err := check(o, c.locs[i]); err != nil {
				return nil, err
			}
		}
	}
	if err := check(c.output, c.outputLoc); err != nil {
		return nil, err
	}

	return &bytecode.Program{
		ID:             c.id,
		Iterations:     c.iterations,
		Output:         c.output,
		RegisterCounts: c.regs.Counts(),
		ScalarPool:     c.pools.Scalars(),
		VectorPool:     c.pools.Vectors(),
		BoolPool:       c.pools.Bools(),
		StringPool:     c.pools.Strings(),
		Instructions:   c.instructions,
	}, nil
}
