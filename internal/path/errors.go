package path

import "fmt"

// SyntaxError reports a malformed path expression. It is returned from
// compilation and never from evaluation.
type SyntaxError struct {
	Expr   string
	Offset int
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid path expression %q at offset %d: %s", e.Expr, e.Offset, e.Reason)
}

// EvaluationError reports that a required path matched nothing in a given
// node. Bulk traversal treats absence as "no contribution"; only callers
// that require a value (ResolveOne) see this error.
type EvaluationError struct {
	Expr string
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("path %q matched no value", e.Expr)
}

// ConversionError reports a matched value that cannot be coerced for an
// arithmetic postprocessing step.
type ConversionError struct {
	Expr  string
	Value any
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("path %q: cannot apply arithmetic to %T value %v", e.Expr, e.Value, e.Value)
}
