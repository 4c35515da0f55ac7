// Package errors defines the compile-time error types reported to script
// authors, each carrying an error code, a source location and enough context
// to fix the script. Compilation is fail-fast: the first error aborts the
// whole pipeline and no bytecode is ever written on a failure path.
package errors

import (
	"fmt"
	"strings"

	"github.com/fathom-lang/fathom/types"
)

// SourceLocation is a position in a script file.
type SourceLocation struct {
	Filename string
	Line     int    // 1-based
	Column   int    // 1-based
	Source   string // the line of source code, when available
}

// IsZero reports whether the location has not been set.
func (s SourceLocation) IsZero() bool {
	return s.Filename == "" && s.Line == 0 && s.Column == 0
}

// String returns "file:line:column" or "line:column".
func (s SourceLocation) String() string {
	if s.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", s.Filename, s.Line, s.Column)
	}
	return fmt.Sprintf("%d:%d", s.Line, s.Column)
}

// CompileError is a compilation error with rich context.
type CompileError struct {
	Code        ErrorCode
	Message     string
	Location    SourceLocation
	Suggestions []Suggestion
	Note        string
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	var b strings.Builder
	b.WriteString("compile error: ")
	b.WriteString(e.Message)
	if !e.Location.IsZero() {
		b.WriteString("\n\nlocation: ")
		b.WriteString(e.Location.String())
	}
	return b.String()
}

// FriendlyErrorMessage returns a human-friendly rendering with source
// context, suitable for terminal output.
func (e *CompileError) FriendlyErrorMessage() string {
	return NewFormatter(false).Format(e)
}

func classNames(classes []types.Class) string {
	parts := make([]string, len(classes))
	for i, c := range classes {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}

// NewUnknownFunctionSignature reports a call for which no registered
// signature matches the name and argument classes. Candidate names feed the
// "did you mean" hint.
func NewUnknownFunctionSignature(name string, args []types.Class, candidates []string, loc SourceLocation) *CompileError {
	return &CompileError{
		Code:        E2001,
		Message:     fmt.Sprintf("no signature of %q accepts (%s)", name, classNames(args)),
		Location:    loc,
		Suggestions: SuggestSimilar(name, candidates),
	}
}

// NewArityMismatch reports a call with the wrong number of arguments.
func NewArityMismatch(name string, want, got int, loc SourceLocation) *CompileError {
	return &CompileError{
		Code:     E2002,
		Message:  fmt.Sprintf("%q expects %d argument(s), got %d", name, want, got),
		Location: loc,
	}
}

// NewTypeMismatch reports an argument whose class does not satisfy the
// resolved signature. Argument positions are 1-based in messages.
func NewTypeMismatch(expected, got types.Class, argPos int, name string, loc SourceLocation) *CompileError {
	return &CompileError{
		Code:     E2003,
		Message:  fmt.Sprintf("argument %d of %q must be %s, got %s", argPos, name, expected, got),
		Location: loc,
	}
}

// NewAssignmentCount reports a multi-target assignment whose call produces a
// different number of values than there are targets.
func NewAssignmentCount(name string, produces, targets int, loc SourceLocation) *CompileError {
	return &CompileError{
		Code:     E2002,
		Message:  fmt.Sprintf("%q produces %d value(s), but the assignment has %d target(s)", name, produces, targets),
		Location: loc,
	}
}

// NewExpressionCount reports a multi-destination call nested inside an
// expression, where only a single value can flow.
func NewExpressionCount(name string, produces int, loc SourceLocation) *CompileError {
	return &CompileError{
		Code:     E2002,
		Message:  fmt.Sprintf("%q produces %d values and cannot be used inside an expression", name, produces),
		Location: loc,
	}
}

// NewAssignmentTypeMismatch reports a value assigned to a variable of a
// different class. Classes never mix implicitly.
func NewAssignmentTypeMismatch(name string, expected, got types.Class, loc SourceLocation) *CompileError {
	return &CompileError{
		Code:     E2003,
		Message:  fmt.Sprintf("cannot assign %s value to %s variable %q", got, expected, name),
		Location: loc,
	}
}

// NewReturnTypeMismatch reports a function body whose return expression
// class differs from the declared return class at that position.
func NewReturnTypeMismatch(fn string, pos int, expected, got types.Class, loc SourceLocation) *CompileError {
	return &CompileError{
		Code:     E2003,
		Message:  fmt.Sprintf("return value %d of %q must be %s, got %s", pos, fn, expected, got),
		Location: loc,
	}
}

// NewRecursiveCall reports a function whose body calls itself, directly or
// through other functions. Calls are inlined, so recursion cannot compile.
func NewRecursiveCall(name string, loc SourceLocation) *CompileError {
	return &CompileError{
		Code:     E2014,
		Message:  fmt.Sprintf("function %q calls itself; recursive functions cannot be compiled", name),
		Location: loc,
	}
}

// NewUndeclaredVariable reports a reference to a name with no declaration.
func NewUndeclaredVariable(name string, candidates []string, loc SourceLocation) *CompileError {
	return &CompileError{
		Code:        E2004,
		Message:     fmt.Sprintf("undeclared variable %q", name),
		Location:    loc,
		Suggestions: SuggestSimilar(name, candidates),
	}
}

// NewUseBeforeDefinition reports a variable that was declared but read
// before any value was assigned to it.
func NewUseBeforeDefinition(name string, loc SourceLocation) *CompileError {
	return &CompileError{
		Code:     E2005,
		Message:  fmt.Sprintf("variable %q is declared but has no value yet", name),
		Location: loc,
	}
}

// NewDuplicateDefinition reports a name collision, typically across merged
// modules.
func NewDuplicateDefinition(name, origin string, loc SourceLocation) *CompileError {
	msg := fmt.Sprintf("%q is defined more than once", name)
	if origin != "" {
		msg = fmt.Sprintf("%q is defined more than once (previous definition in %s)", name, origin)
	}
	return &CompileError{Code: E2006, Message: msg, Location: loc}
}

// NewCircularImport reports an import cycle. The chain lists the modules on
// the visitation stack, ending with the one that closed the cycle.
func NewCircularImport(chain []string, loc SourceLocation) *CompileError {
	return &CompileError{
		Code:     E2007,
		Message:  fmt.Sprintf("circular import: %s", strings.Join(chain, " -> ")),
		Location: loc,
	}
}

// NewUnknownDirective reports an unrecognized directive key.
func NewUnknownDirective(key string, known []string, loc SourceLocation) *CompileError {
	return &CompileError{
		Code:        E2008,
		Message:     fmt.Sprintf("unknown directive %q", key),
		Location:    loc,
		Suggestions: SuggestSimilar(key, known),
	}
}

// NewAmbiguousOverload reports overlapping signatures for one name. This is
// an authoring/configuration error, never a runtime tie-break.
func NewAmbiguousOverload(name string, args []types.Class, loc SourceLocation) *CompileError {
	return &CompileError{
		Code:     E2009,
		Message:  fmt.Sprintf("call to %q with (%s) matches more than one signature", name, classNames(args)),
		Location: loc,
	}
}

// NewMissingDirective reports a required directive that is absent.
func NewMissingDirective(key string) *CompileError {
	return &CompileError{
		Code:    E2010,
		Message: fmt.Sprintf("required directive %q is missing", key),
	}
}

// NewInvalidDirectiveValue reports a directive whose literal has the wrong
// type or an out-of-range value.
func NewInvalidDirectiveValue(key, reason string, loc SourceLocation) *CompileError {
	return &CompileError{
		Code:     E2011,
		Message:  fmt.Sprintf("invalid value for directive %q: %s", key, reason),
		Location: loc,
	}
}

// NewUndefinedOutput reports an output directive that names a variable with
// no value, or of a class that cannot be a simulation output.
func NewUndefinedOutput(name, reason string, loc SourceLocation) *CompileError {
	return &CompileError{
		Code:     E2012,
		Message:  fmt.Sprintf("output variable %q: %s", name, reason),
		Location: loc,
	}
}

// NewImportFailed wraps a loader failure for the given import path.
func NewImportFailed(path string, cause error, loc SourceLocation) *CompileError {
	return &CompileError{
		Code:     E2013,
		Message:  fmt.Sprintf("cannot import %q: %v", path, cause),
		Location: loc,
	}
}

// NewCapacityExceeded wraps a packed-operand capacity failure.
func NewCapacityExceeded(cause error, loc SourceLocation) *CompileError {
	return &CompileError{
		Code:     E4001,
		Message:  cause.Error(),
		Location: loc,
	}
}
