// Package types defines the value classes and the tagged operand model shared
// by the Fathom compiler and the Monte Carlo runtime. Every register, constant,
// and instruction operand carries exactly one value class; classes never mix
// implicitly.
package types

import "fmt"

// Class identifies one of the four value classes a Fathom value can have.
type Class uint8

const (
	Scalar Class = iota
	Vector
	Boolean
	String
)

// NumClasses is the number of value classes. Constant pools and register
// files are partitioned by class, so several structures are arrays of this
// length indexed by Class.
const NumClasses = 4

// Classes lists all value classes in canonical (wire) order.
var Classes = [NumClasses]Class{Scalar, Vector, Boolean, String}

// String returns the lowercase name of the class, as used in error messages.
func (c Class) String() string {
	switch c {
	case Scalar:
		return "scalar"
	case Vector:
		return "vector"
	case Boolean:
		return "boolean"
	case String:
		return "string"
	default:
		return fmt.Sprintf("class(%d)", uint8(c))
	}
}

// Letter returns the abbreviation used in canonical opcode names:
// S, V, B and STR.
func (c Class) Letter() string {
	switch c {
	case Scalar:
		return "S"
	case Vector:
		return "V"
	case Boolean:
		return "B"
	case String:
		return "STR"
	default:
		return "?"
	}
}

// Valid reports whether c is one of the four defined classes.
func (c Class) Valid() bool {
	return c < NumClasses
}

// ParseClass converts a class name from the frontend AST ("scalar", "vector",
// "boolean", "string") into a Class.
func ParseClass(name string) (Class, error) {
	switch name {
	case "scalar":
		return Scalar, nil
	case "vector":
		return Vector, nil
	case "boolean":
		return Boolean, nil
	case "string":
		return String, nil
	default:
		return 0, fmt.Errorf("unknown value class %q", name)
	}
}

// Kind distinguishes constant-pool references from register references.
type Kind uint8

const (
	Constant Kind = iota
	Register
)

// String returns "const" or "register".
func (k Kind) String() string {
	switch k {
	case Constant:
		return "const"
	case Register:
		return "register"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}
