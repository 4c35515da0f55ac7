package compiler

import (
	"encoding/binary"
	"math"

	"github.com/fathom-lang/fathom/types"
)

// ConstantPools deduplicates literal values per class into ordered pools.
// Interning follows first-appearance order during the single left-to-right
// pass over execution steps, which makes pool layout an observable,
// deterministic contract: compiling the same script twice yields identical
// pools. Equality is exact; scalars compare by float bit pattern, so 1.0
// and 1.0000000001 occupy distinct slots.
type ConstantPools struct {
	scalars     []float64
	scalarIndex map[uint64]uint32

	vectors     [][]float64
	vectorIndex map[string]uint32

	bools     []bool
	boolIndex map[bool]uint32

	strings     []string
	stringIndex map[string]uint32
}

// NewConstantPools creates empty pools.
func NewConstantPools() *ConstantPools {
	return &ConstantPools{
		scalarIndex: make(map[uint64]uint32),
		vectorIndex: make(map[string]uint32),
		boolIndex:   make(map[bool]uint32),
		stringIndex: make(map[string]uint32),
	}
}

// InternScalar returns the pool operand for a scalar literal.
func (p *ConstantPools) InternScalar(v float64) types.Operand {
	key := math.Float64bits(v)
	index, ok := p.scalarIndex[key]
	if !ok {
		index = uint32(len(p.scalars))
		p.scalars = append(p.scalars, v)
		p.scalarIndex[key] = index
	}
	return types.NewConst(types.Scalar, index)
}

// InternVector returns the pool operand for a vector literal. Vectors
// compare element-wise by bit pattern.
func (p *ConstantPools) InternVector(values []float64) types.Operand {
	key := vectorKey(values)
	index, ok := p.vectorIndex[key]
	if !ok {
		index = uint32(len(p.vectors))
		vec := make([]float64, len(values))
		copy(vec, values)
		p.vectors = append(p.vectors, vec)
		p.vectorIndex[key] = index
	}
	return types.NewConst(types.Vector, index)
}

// InternBool returns the pool operand for a boolean literal.
func (p *ConstantPools) InternBool(v bool) types.Operand {
	index, ok := p.boolIndex[v]
	if !ok {
		index = uint32(len(p.bools))
		p.bools = append(p.bools, v)
		p.boolIndex[v] = index
	}
	return types.NewConst(types.Boolean, index)
}

// InternString returns the pool operand for a string literal. Strings are
// interned as opaque byte sequences.
func (p *ConstantPools) InternString(v string) types.Operand {
	index, ok := p.stringIndex[v]
	if !ok {
		index = uint32(len(p.strings))
		p.strings = append(p.strings, v)
		p.stringIndex[v] = index
	}
	return types.NewConst(types.String, index)
}

// Scalars returns the scalar pool in intern order.
func (p *ConstantPools) Scalars() []float64 { return p.scalars }

// Vectors returns the vector pool in intern order.
func (p *ConstantPools) Vectors() [][]float64 { return p.vectors }

// Bools returns the boolean pool in intern order.
func (p *ConstantPools) Bools() []bool { return p.bools }

// Strings returns the string pool in intern order.
func (p *ConstantPools) Strings() []string { return p.strings }

func vectorKey(values []float64) string {
	buf := make([]byte, 8*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return string(buf)
}
