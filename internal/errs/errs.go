// Package errs defines the error taxonomy shared by every core component.
//
// A Lua operation never returns a bare error: it returns an *Error so the
// executor (out of scope for this core) can distinguish an arithmetic type
// error from a coroutine-state violation without parsing message text.
package errs

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

// Kind classifies why an operation failed, independent of message text.
type Kind int

const (
	TypeMismatch Kind = iota
	Arity
	DivisionByZero
	ShiftOutOfRange
	IntegerOverflow
	TableKey
	ConstAssignment
	ClosedVariableAccess
	CoroutineState
	PatternInvalid
	UserError
)

func (k Kind) String() string {
	switch k {
	case TypeMismatch:
		return "TypeMismatch"
	case Arity:
		return "Arity"
	case DivisionByZero:
		return "DivisionByZero"
	case ShiftOutOfRange:
		return "ShiftOutOfRange"
	case IntegerOverflow:
		return "IntegerOverflow"
	case TableKey:
		return "TableKey"
	case ConstAssignment:
		return "ConstAssignment"
	case ClosedVariableAccess:
		return "ClosedVariableAccess"
	case CoroutineState:
		return "CoroutineState"
	case PatternInvalid:
		return "PatternInvalid"
	case UserError:
		return "UserError"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is the single error type raised by every operation in this core.
//
// Raised carries the arbitrary value passed to a user error() call (§7:
// UserError "value raised by user error() call (may be any Value)"). It is
// typed as `any` here rather than value.Value to avoid the errs package
// importing value — value.Value already satisfies `any`.
type Error struct {
	Kind    Kind
	Message string
	Level   int
	Raised  any
	cause   error
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the pkg/errors-captured stack to callers using errors.As
// or printing with "%+v".
func (e *Error) Unwrap() error {
	return e.cause
}

// New builds an Error of the given kind, capturing a Go-level stack trace
// via pkg/errors for host-side debugging. Level defaults to 1 (the
// immediate caller), matching the "how many frames up" convention of
// spec §6.
func New(kind Kind, format string, args ...any) *Error {
	msg := fmt.Sprintf(format, args...)
	return &Error{
		Kind:    kind,
		Message: msg,
		Level:   1,
		cause:   errors.WithStack(errors.New(msg)),
	}
}

// WithLevel returns a copy of e with Level set, for re-raising at a
// different reported frame (executor-driven; the core only ever sets the
// default of 1).
func (e *Error) WithLevel(level int) *Error {
	cp := *e
	cp.Level = level
	return &cp
}

// Raise builds a UserError carrying an arbitrary raised value, per the
// error() contract in spec §6/§7.
func Raise(v any) *Error {
	msg := fmt.Sprintf("%v", v)
	return &Error{
		Kind:    UserError,
		Message: msg,
		Level:   1,
		Raised:  v,
		cause:   errors.WithStack(errors.New(msg)),
	}
}

// TypeError formats the canonical "attempt to X on a <type> value" message
// used throughout §4.3/§4.4.
func TypeError(action, typeName string) *Error {
	return New(TypeMismatch, "attempt to %s a %s value", action, typeName)
}

// LargeCount renders a diagnostic-friendly count, used by table.Describe
// (e.g. "table: 1,048,576 entries (border 0)").
func LargeCount(n int) string {
	return humanize.Comma(int64(n))
}
