package types

import "fmt"

// Packed is the fixed-width wire encoding of an operand: an 8-bit tag in the
// high bits enumerating the class/kind combination, and a 24-bit index in the
// low bits. The bit split is a wire-compatibility contract with the runtime;
// changing it is a breaking change.
type Packed uint32

const (
	// IndexBits is the width reserved for the operand index.
	IndexBits = 24

	// MaxIndex is the largest pool or register index the encoding can carry.
	MaxIndex = 1<<IndexBits - 1

	indexMask = MaxIndex
	numTags   = NumClasses * 2
)

// Operand is a tagged reference to either a constant-pool slot or a register
// slot of one value class. It is the primary in-memory representation;
// packing happens only at the serialization boundary.
type Operand struct {
	Class Class
	Kind  Kind
	Index uint32
}

// NewConst returns a constant-pool operand.
func NewConst(class Class, index uint32) Operand {
	return Operand{Class: class, Kind: Constant, Index: index}
}

// NewRegister returns a register operand.
func NewRegister(class Class, index uint32) Operand {
	return Operand{Class: class, Kind: Register, Index: index}
}

// IsRegister reports whether the operand references a register slot.
func (o Operand) IsRegister() bool {
	return o.Kind == Register
}

// String renders the operand in disassembly notation: registers as "s3",
// "v0", "b1", "str2" and constants with a "$" prefix, e.g. "$s3".
func (o Operand) String() string {
	prefix := ""
	if o.Kind == Constant {
		prefix = "$"
	}
	letter := "?"
	switch o.Class {
	case Scalar:
		letter = "s"
	case Vector:
		letter = "v"
	case Boolean:
		letter = "b"
	case String:
		letter = "str"
	}
	return fmt.Sprintf("%s%s%d", prefix, letter, o.Index)
}

func (o Operand) tag() uint32 {
	return uint32(o.Class)<<1 | uint32(o.Kind)
}

// Pack converts the operand to its wire encoding. Indices that do not fit
// the reserved low-bit width fail with a CapacityError; this is a hard
// compile-time error, never a silent wraparound.
func (o Operand) Pack() (Packed, error) {
	if !o.Class.Valid() || o.Kind > Register {
		return 0, &InvalidOperandError{Operand: o}
	}
	if o.Index > MaxIndex {
		return 0, &CapacityError{Operand: o}
	}
	return Packed(o.tag()<<IndexBits | o.Index), nil
}

// Unpack decodes a wire operand. Tags outside the eight defined class/kind
// combinations fail with an InvalidOperandError.
func Unpack(p Packed) (Operand, error) {
	tag := uint32(p) >> IndexBits
	if tag >= numTags {
		return Operand{}, &InvalidOperandError{Tag: uint8(tag)}
	}
	return Operand{
		Class: Class(tag >> 1),
		Kind:  Kind(tag & 1),
		Index: uint32(p) & indexMask,
	}, nil
}

// CapacityError indicates an operand index exceeded the width reserved for
// it in the packed encoding.
type CapacityError struct {
	Operand Operand
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("operand index %d exceeds encoding capacity %d (%s %s)",
		e.Operand.Index, uint32(MaxIndex), e.Operand.Class, e.Operand.Kind)
}

// InvalidOperandError indicates an operand with an undefined class/kind
// combination, or a wire value carrying an undefined tag.
type InvalidOperandError struct {
	Operand Operand
	Tag     uint8
}

func (e *InvalidOperandError) Error() string {
	if e.Operand == (Operand{}) {
		return fmt.Sprintf("invalid operand tag %d", e.Tag)
	}
	return fmt.Sprintf("invalid operand class/kind (class=%d kind=%d)",
		uint8(e.Operand.Class), uint8(e.Operand.Kind))
}
