package numexpr

import "fmt"

// SyntaxError reports expression text that does not match the grammar.
// Pos is the byte offset of the offending character or token.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %s", e.Pos, e.Msg)
}

// UnknownInputError reports a caller-supplied input-order name that does not
// appear in the expression.
type UnknownInputError struct {
	Name string
}

func (e *UnknownInputError) Error() string {
	return fmt.Sprintf("input name %q not found in expression", e.Name)
}

// UnusedInputError reports a variable used by the expression that the
// caller-supplied input order omits.
type UnusedInputError struct {
	Name string
}

func (e *UnusedInputError) Error() string {
	return fmt.Sprintf("input name %q not specified in order", e.Name)
}

// UnboundVariableError reports an input name with no entry in the bindings
// passed to Evaluate.
type UnboundVariableError struct {
	Name string
}

func (e *UnboundVariableError) Error() string {
	return fmt.Sprintf("variable %q is not bound", e.Name)
}

// InternalError reports a register-allocation or emission invariant
// violation. It indicates a compiler defect, never bad user input.
type InternalError struct {
	Msg string
}

func (e *InternalError) Error() string {
	return "internal compiler error: " + e.Msg
}

func internalf(format string, args ...any) error {
	return &InternalError{Msg: fmt.Sprintf(format, args...)}
}

func quoteByte(b byte) string {
	return fmt.Sprintf("%q", rune(b))
}
