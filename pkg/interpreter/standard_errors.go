package interpreter

import (
	"errors"
	"fmt"

	"tinylang/interpreter-go/pkg/ast"
)

// ErrorKind classifies runtime failures.
type ErrorKind string

const (
	UndefinedName         ErrorKind = "UndefinedName"
	ArgumentCountMismatch ErrorKind = "ArgumentCountMismatch"
	DivisionByZero        ErrorKind = "DivisionByZero"
	IndexOutOfBounds      ErrorKind = "IndexOutOfBounds"
	TypeMismatch          ErrorKind = "TypeMismatch"
	UnsupportedConstruct  ErrorKind = "UnsupportedConstruct"
	InputFailure          ErrorKind = "InputFailure"
	CallDepthExceeded     ErrorKind = "CallDepthExceeded"
)

// RuntimeError is the single error type raised during evaluation. Pos is the
// innermost node that failed; CallStack lists the call sites that were
// unwound, innermost first.
type RuntimeError struct {
	Kind      ErrorKind
	Message   string
	Pos       ast.Span
	CallStack []ast.Span
}

func (e *RuntimeError) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is matches the per-kind sentinels, so errors.Is(err, ErrDivisionByZero)
// holds for any division failure.
func (e *RuntimeError) Is(target error) bool {
	t, ok := target.(*RuntimeError)
	if !ok {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

var (
	ErrUndefinedName         = &RuntimeError{Kind: UndefinedName}
	ErrArgumentCountMismatch = &RuntimeError{Kind: ArgumentCountMismatch}
	ErrDivisionByZero        = &RuntimeError{Kind: DivisionByZero}
	ErrIndexOutOfBounds      = &RuntimeError{Kind: IndexOutOfBounds}
	ErrTypeMismatch          = &RuntimeError{Kind: TypeMismatch}
	ErrUnsupportedConstruct  = &RuntimeError{Kind: UnsupportedConstruct}
	ErrInputFailure          = &RuntimeError{Kind: InputFailure}
	ErrCallDepthExceeded     = &RuntimeError{Kind: CallDepthExceeded}
)

func newRuntimeError(kind ErrorKind, format string, args ...any) *RuntimeError {
	return &RuntimeError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func newDivisionByZeroError() error {
	return newRuntimeError(DivisionByZero, "division by zero")
}

func newIndexError(name string, index int64, length int) error {
	return newRuntimeError(IndexOutOfBounds, "index %d out of bounds for %s of length %d", index, name, length)
}

// located attaches node's position to a runtime error that has none yet.
func located(err error, node ast.Node) error {
	if node == nil {
		return err
	}
	var rtErr *RuntimeError
	if errors.As(err, &rtErr) && rtErr.Pos.IsZero() {
		rtErr.Pos = node.Span()
	}
	return err
}

// withCallSite records that err unwound through the call at site.
func withCallSite(err error, site ast.Node) error {
	if site == nil {
		return err
	}
	var rtErr *RuntimeError
	if errors.As(err, &rtErr) {
		span := site.Span()
		if rtErr.Pos.IsZero() {
			rtErr.Pos = span
			return err
		}
		rtErr.CallStack = append(rtErr.CallStack, span)
	}
	return err
}
