package errors

// ErrorCode is a unique identifier for an error kind. Codes are organized by
// category:
//   - E1xxx: parse errors (owned by the frontend grammar engine)
//   - E2xxx: semantic analysis errors
//   - E4xxx: encoding/capacity errors
type ErrorCode string

const (
	// Parse errors (E1xxx). The parser is an external collaborator; its
	// errors are surfaced to the user before a recipe ever reaches this
	// backend. E1001 exists so tooling can classify them uniformly.
	E1001 ErrorCode = "E1001" // Syntax error

	// Semantic errors (E2xxx)
	E2001 ErrorCode = "E2001" // Unknown function signature
	E2002 ErrorCode = "E2002" // Arity mismatch
	E2003 ErrorCode = "E2003" // Type mismatch
	E2004 ErrorCode = "E2004" // Undeclared variable
	E2005 ErrorCode = "E2005" // Use before definition
	E2006 ErrorCode = "E2006" // Duplicate definition
	E2007 ErrorCode = "E2007" // Circular import
	E2008 ErrorCode = "E2008" // Unknown directive
	E2009 ErrorCode = "E2009" // Ambiguous overload
	E2010 ErrorCode = "E2010" // Missing directive
	E2011 ErrorCode = "E2011" // Invalid directive value
	E2012 ErrorCode = "E2012" // Output variable not defined
	E2013 ErrorCode = "E2013" // Import failed
	E2014 ErrorCode = "E2014" // Recursive function call

	// Encoding errors (E4xxx)
	E4001 ErrorCode = "E4001" // Operand index exceeds encoding capacity
	E4002 ErrorCode = "E4002" // Invalid operand encoding
)

var codeDescriptions = map[ErrorCode]string{
	E1001: "syntax error",
	E2001: "unknown function signature",
	E2002: "arity mismatch",
	E2003: "type mismatch",
	E2004: "undeclared variable",
	E2005: "use before definition",
	E2006: "duplicate definition",
	E2007: "circular import",
	E2008: "unknown directive",
	E2009: "ambiguous overload",
	E2010: "missing directive",
	E2011: "invalid directive value",
	E2012: "output variable not defined",
	E2013: "import failed",
	E2014: "recursive function call",
	E4001: "operand index exceeds encoding capacity",
	E4002: "invalid operand encoding",
}

// Description returns the short description for an error code.
func (c ErrorCode) Description() string {
	if desc, ok := codeDescriptions[c]; ok {
		return desc
	}
	return "unknown error"
}

// String returns the error code as a string.
func (c ErrorCode) String() string {
	return string(c)
}
