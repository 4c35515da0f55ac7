package compiler

import (
	"github.com/fathom-lang/fathom/types"
)

// BindingState tracks whether a declared name has a value yet. Declaring
// without defining is legal; reading a Declared-but-not-Defined variable is
// a compile error.
type BindingState uint8

const (
	Declared BindingState = iota
	Defined
)

// Binding associates a name with an operand. Script variables always bind to
// registers; parameters of inlined functions may bind directly to whatever
// operand the caller supplied, including constants. Borrowed marks such a
// parameter binding: its operand belongs to the caller, so assigning to the
// parameter must allocate a fresh register rather than write through.
type Binding struct {
	Name       string
	Class      types.Class
	Operand    types.Operand
	State      BindingState
	Stochastic bool
	Borrowed   bool
}

// RegisterAllocator assigns per-class register indices to named variables
// and intermediate results. Indices are dense, zero-based, handed out in
// first-use order, and never reclaimed within one compilation: rebinding a
// declared name reuses its register, everything else gets a fresh slot.
// One allocator instance serves exactly one compilation unit.
type RegisterAllocator struct {
	counts   [types.NumClasses]uint32
	bindings map[string]*Binding
	order    []string
}

// NewRegisterAllocator creates an empty allocator.
func NewRegisterAllocator() *RegisterAllocator {
	return &RegisterAllocator{bindings: make(map[string]*Binding)}
}

// Allocate hands out the next unused register index for the class. Used for
// intermediate results that never get a name.
func (a *RegisterAllocator) Allocate(class types.Class) types.Operand {
	index := a.counts[class]
	a.counts[class]++
	return types.NewRegister(class, index)
}

// Declare reserves a register for a named variable in the Declared state.
// If the name is already bound, the existing binding is returned with
// created=false and no new register is allocated.
func (a *RegisterAllocator) Declare(name string, class types.Class) (b *Binding, created bool) {
	if existing, ok := a.bindings[name]; ok {
		return existing, false
	}
	b = &Binding{
		Name:    name,
		Class:   class,
		Operand: a.Allocate(class),
		State:   Declared,
	}
	a.bindings[name] = b
	a.order = append(a.order, name)
	return b, true
}

// Lookup resolves a previously declared variable.
func (a *RegisterAllocator) Lookup(name string) (*Binding, bool) {
	b, ok := a.bindings[name]
	return b, ok
}

// Names returns all bound names in declaration order, for suggestion hints.
func (a *RegisterAllocator) Names() []string {
	names := make([]string, len(a.order))
	copy(names, a.order)
	return names
}

// Counts returns the per-class register counts. The final counts become part
// of the emitted program header so the runtime can pre-allocate its register
// files before execution.
func (a *RegisterAllocator) Counts() [types.NumClasses]uint32 {
	return a.counts
}
