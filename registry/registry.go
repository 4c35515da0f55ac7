// Package registry implements the function signature catalog: every builtin
// and user-defined callable, keyed by name and indexed by accepted
// argument-type patterns, resolving to one opcode and a destination type
// pattern. The registry is immutable after catalog construction aside from
// synthetic entries added for in-file function definitions, and lookups are
// read-only, so a constructed registry may be shared across compilations.
package registry

import (
	"fmt"
	"sort"

	"github.com/hashicorp/go-multierror"

	"github.com/fathom-lang/fathom/errors"
	"github.com/fathom-lang/fathom/op"
	"github.com/fathom-lang/fathom/recipe"
	"github.com/fathom-lang/fathom/types"
)

// Signature is one callable entry. A variadic signature's last parameter
// class matches one or more trailing arguments of that class.
type Signature struct {
	Name       string
	Params     []types.Class
	Variadic   bool
	Dests      []types.Class
	Opcode     op.Code
	Stochastic bool

	// Def is set for synthetic entries backing user-defined functions,
	// which have no opcode of their own: calls to them are inlined.
	Def *recipe.FuncDef
}

// Matches reports whether the argument classes satisfy this signature's
// parameter pattern by exact positional match.
func (s *Signature) Matches(args []types.Class) bool {
	if s.Variadic {
		if len(args) < len(s.Params) {
			return false
		}
		fixed := len(s.Params) - 1
		for i := 0; i < fixed; i++ {
			if args[i] != s.Params[i] {
				return false
			}
		}
		tail := s.Params[len(s.Params)-1]
		for i := fixed; i < len(args); i++ {
			if args[i] != tail {
				return false
			}
		}
		return true
	}
	if len(args) != len(s.Params) {
		return false
	}
	for i, p := range s.Params {
		if args[i] != p {
			return false
		}
	}
	return true
}

// String renders the signature pattern for messages, e.g.
// "Normal(scalar, scalar) -> scalar".
func (s *Signature) String() string {
	params := ""
	for i, p := range s.Params {
		if i > 0 {
			params += ", "
		}
		params += p.String()
	}
	if s.Variadic {
		params += "..."
	}
	dests := ""
	for i, d := range s.Dests {
		if i > 0 {
			dests += ", "
		}
		dests += d.String()
	}
	return fmt.Sprintf("%s(%s) -> %s", s.Name, params, dests)
}

// Resolution is the outcome of a successful lookup.
type Resolution struct {
	Opcode     op.Code
	Dests      []types.Class
	Stochastic bool
	Def        *recipe.FuncDef
}

// Registry is the lookup structure over all signatures.
type Registry struct {
	entries map[string][]*Signature
}

// New builds a registry holding the full builtin catalog. Catalog problems
// (duplicate or overlapping patterns) are authoring errors; all of them are
// collected and returned together.
func New() (*Registry, error) {
	r := &Registry{entries: make(map[string][]*Signature)}
	var errs *multierror.Error
	for _, sig := range builtinSignatures() {
		sig := sig
		if info := op.GetInfo(sig.Opcode); info.Code == op.Invalid {
			errs = multierror.Append(errs, fmt.Errorf("builtin %s references unknown opcode %d", sig.String(), sig.Opcode))
			continue
		}
		sig.Stochastic = op.GetInfo(sig.Opcode).Stochastic
		if err := r.add(&sig); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return r, nil
}

// add inserts a signature after checking it cannot tie with an existing
// entry of the same name. Two non-variadic patterns tie only when identical;
// two variadic patterns with the same tail class always share some argument
// list. A variadic/non-variadic pair may overlap: resolution prefers the
// exact (non-variadic) match, so that pair is legal.
func (r *Registry) add(sig *Signature) error {
	for _, existing := range r.entries[sig.Name] {
		if ambiguousPair(existing, sig) {
			return fmt.Errorf("signature %s is ambiguous with %s", sig.String(), existing.String())
		}
	}
	r.entries[sig.Name] = append(r.entries[sig.Name], sig)
	return nil
}

func ambiguousPair(a, b *Signature) bool {
	if !a.Variadic && !b.Variadic {
		if len(a.Params) != len(b.Params) {
			return false
		}
		for i := range a.Params {
			if a.Params[i] != b.Params[i] {
				return false
			}
		}
		return true
	}
	if a.Variadic && b.Variadic {
		// Same tail class means the longer pattern's minimal argument list
		// is matched by both whenever the prefixes agree.
		long, short := a, b
		if len(short.Params) > len(long.Params) {
			long, short = short, long
		}
		if long.Params[len(long.Params)-1] != short.Params[len(short.Params)-1] {
			return false
		}
		probe := make([]types.Class, len(long.Params))
		copy(probe, long.Params)
		return short.Matches(probe)
	}
	return false
}

// Clone returns a registry with the same entries that shares no mutable
// state with the receiver. A catalog registry may be shared read-only across
// compilations; each compilation registers its in-file definitions on its
// own clone.
func (r *Registry) Clone() *Registry {
	entries := make(map[string][]*Signature, len(r.entries))
	for name, sigs := range r.entries {
		entries[name] = append([]*Signature(nil), sigs...)
	}
	return &Registry{entries: entries}
}

// RegisterFuncDef adds a synthetic entry for an in-file function definition.
// The stochastic flag is computed by the analyzer from the definition body.
// Collisions with an existing identical pattern are duplicate definitions;
// overlapping variadic patterns are ambiguous overloads.
func (r *Registry) RegisterFuncDef(def *recipe.FuncDef, stochastic bool) error {
	params := make([]types.Class, len(def.Params))
	for i, p := range def.Params {
		params[i] = p.Class
	}
	sig := &Signature{
		Name:       def.Name,
		Params:     params,
		Dests:      def.Returns,
		Opcode:     op.Invalid,
		Stochastic: stochastic,
		Def:        def,
	}
	for _, existing := range r.entries[sig.Name] {
		if !ambiguousPair(existing, sig) {
			continue
		}
		if existing.Variadic || sig.Variadic {
			return errors.NewAmbiguousOverload(sig.Name, params, errors.SourceLocation{})
		}
		return errors.NewDuplicateDefinition(sig.Name, originOf(existing), errors.SourceLocation{})
	}
	r.entries[sig.Name] = append(r.entries[sig.Name], sig)
	return nil
}

func originOf(sig *Signature) string {
	if sig.Def == nil {
		return "the builtin catalog"
	}
	return ""
}

// Resolve looks up the unique signature of name matching the argument
// classes. When an exact (non-variadic) pattern and a variadic pattern both
// match, the exact one wins; any other tie is an ambiguous overload.
func (r *Registry) Resolve(name string, args []types.Class) (Resolution, error) {
	candidates, ok := r.entries[name]
	if !ok {
		return Resolution{}, errors.NewUnknownFunctionSignature(name, args, r.Names(), errors.SourceLocation{})
	}
	var matches []*Signature
	for _, sig := range candidates {
		if sig.Matches(args) {
			matches = append(matches, sig)
		}
	}
	switch len(matches) {
	case 0:
		return Resolution{}, r.noMatchError(name, candidates, args)
	case 1:
		return resolution(matches[0]), nil
	}
	var exact []*Signature
	for _, sig := range matches {
		if !sig.Variadic {
			exact = append(exact, sig)
		}
	}
	if len(exact) == 1 {
		return resolution(exact[0]), nil
	}
	return Resolution{}, errors.NewAmbiguousOverload(name, args, errors.SourceLocation{})
}

func resolution(sig *Signature) Resolution {
	return Resolution{
		Opcode:     sig.Opcode,
		Dests:      sig.Dests,
		Stochastic: sig.Stochastic,
		Def:        sig.Def,
	}
}

// noMatchError picks the most precise failure for a known name that matched
// no pattern. With a unique candidate of the right arity, the first argument
// position whose class differs is a type mismatch; a unique expected arity
// that differs from the call's is an arity mismatch. Everything else is an
// unknown signature.
func (r *Registry) noMatchError(name string, candidates []*Signature, args []types.Class) error {
	var arityMatches []*Signature
	arities := map[int]bool{}
	for _, sig := range candidates {
		if sig.Variadic {
			if len(args) >= len(sig.Params) {
				arityMatches = append(arityMatches, sig)
			}
		} else {
			arities[len(sig.Params)] = true
			if len(args) == len(sig.Params) {
				arityMatches = append(arityMatches, sig)
			}
		}
	}
	if len(arityMatches) == 1 {
		sig := arityMatches[0]
		for i, arg := range args {
			expected := sig.paramAt(i)
			if arg != expected {
				return errors.NewTypeMismatch(expected, arg, i+1, name, errors.SourceLocation{})
			}
		}
	}
	if len(arityMatches) == 0 && len(arities) == 1 {
		for want := range arities {
			return errors.NewArityMismatch(name, want, len(args), errors.SourceLocation{})
		}
	}
	return errors.NewUnknownFunctionSignature(name, args, r.Names(), errors.SourceLocation{})
}

func (s *Signature) paramAt(i int) types.Class {
	if i < len(s.Params) {
		return s.Params[i]
	}
	// Variadic tail
	return s.Params[len(s.Params)-1]
}

// Names returns all registered function names, sorted. Used for
// "did you mean" hints.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Signatures returns the entries registered under a name, in insertion
// order. The slice must not be modified.
func (r *Registry) Signatures(name string) []*Signature {
	return r.entries[name]
}
