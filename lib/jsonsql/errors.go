package jsonsql

import (
	"errors"
	"fmt"
)

// ErrorKind classifies transpile failures. Every error the transpiler
// returns carries exactly one kind; there is no fallback conversion path.
type ErrorKind string

const (
	ErrUnsupportedOperator  ErrorKind = "unsupported_operator"
	ErrUnsupportedFunction  ErrorKind = "unsupported_function"
	ErrUnsupportedConstruct ErrorKind = "unsupported_construct"
	ErrAmbiguousColumn      ErrorKind = "ambiguous_column"
	ErrInvalidArgument      ErrorKind = "invalid_argument"
	ErrExpressionTooDeep    ErrorKind = "expression_too_deep"
)

// TranspileError is the terminal error type of the transpiler. Statement and
// Clause are attached as the error propagates up through the builders and
// the facade.
type TranspileError struct {
	Kind      ErrorKind
	Statement StatementType
	Clause    string
	Message   string
	Err       error
}

func (e *TranspileError) Error() string {
	msg := e.Message
	if e.Clause != "" {
		msg = e.Clause + ": " + msg
	}
	if e.Statement != "" {
		msg = string(e.Statement) + ": " + msg
	}
	return "transpile: " + msg
}

func (e *TranspileError) Unwrap() error {
	return e.Err
}

func errOperator(op string) *TranspileError {
	return &TranspileError{
		Kind:    ErrUnsupportedOperator,
		Message: fmt.Sprintf("unsupported operator %q", op),
	}
}

func errFunction(name string) *TranspileError {
	return &TranspileError{
		Kind:    ErrUnsupportedFunction,
		Message: fmt.Sprintf("unsupported function %q", name),
	}
}

func errConstruct(format string, args ...any) *TranspileError {
	return &TranspileError{
		Kind:    ErrUnsupportedConstruct,
		Message: fmt.Sprintf(format, args...),
	}
}

func errAmbiguous(format string, args ...any) *TranspileError {
	return &TranspileError{
		Kind:    ErrAmbiguousColumn,
		Message: fmt.Sprintf(format, args...),
	}
}

func errArgument(fn, reason string) *TranspileError {
	return &TranspileError{
		Kind:    ErrInvalidArgument,
		Message: fmt.Sprintf("%s: %s", fn, reason),
	}
}

func errTooDeep() *TranspileError {
	return &TranspileError{
		Kind:    ErrExpressionTooDeep,
		Message: fmt.Sprintf("expression nesting exceeds %d levels", maxExprDepth),
	}
}

// inClause tags err with the SQL clause being converted, keeping the first
// clause recorded when errors bubble through nested conversions.
func inClause(clause string, err error) error {
	var te *TranspileError
	if errors.As(err, &te) && te.Clause == "" {
		te.Clause = clause
	}
	return err
}
