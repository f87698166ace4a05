package types

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an [Error].
type ErrorKind uint8

const (
	// KindParse marks malformed syntax: unexpected tokens, premature EOF,
	// bad escapes. Parse errors are never recovered.
	KindParse ErrorKind = iota + 1
	// KindEvaluation marks runtime type, arity and domain violations.
	KindEvaluation
)

// String returns the name of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindParse:
		return "ParseError"
	case KindEvaluation:
		return "EvaluationError"
	default:
		return "Error"
	}
}

// Sentinels usable with errors.Is to test the kind of an [*Error].
var (
	ErrParse      = errors.New("parse error")
	ErrEvaluation = errors.New("evaluation error")
)

// Error is the structured error returned by the parser and the evaluator.
type Error struct {
	Kind     ErrorKind
	Message  string
	Position int // byte offset, -1 when unknown
	Token    string
	Err      error
}

// NewError creates a new error of the given kind.
func NewError(kind ErrorKind, message string, position int) *Error {
	return &Error{
		Kind:     kind,
		Message:  message,
		Position: position,
	}
}

// ParseErrorf returns a parse error with a formatted message.
func ParseErrorf(format string, args ...any) *Error {
	return NewError(KindParse, fmt.Sprintf(format, args...), -1)
}

// EvalErrorf returns an evaluation error with a formatted message.
func EvalErrorf(format string, args ...any) *Error {
	return NewError(KindEvaluation, fmt.Sprintf(format, args...), -1)
}

// UnexpectedEOF is the parse error raised when tokens run out mid-construct.
func UnexpectedEOF() *Error {
	return ParseErrorf("unexpected EOF")
}

// UnexpectedToken is the parse error raised for a token that does not fit
// the grammar at its position.
func UnexpectedToken(term string, pos int) *Error {
	e := ParseErrorf("unexpected '%s' at pos %d", term, pos)
	e.Position = pos
	e.Token = term
	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel of e's kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrParse:
		return e.Kind == KindParse
	case ErrEvaluation:
		return e.Kind == KindEvaluation
	}
	return false
}

// WithToken adds token information to the error.
func (e *Error) WithToken(token string) *Error {
	e.Token = token
	return e
}

// WithCause wraps another error.
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}

// IsParseError reports whether err is (or wraps) a parse error.
func IsParseError(err error) bool {
	return errors.Is(err, ErrParse)
}

// IsEvaluationError reports whether err is (or wraps) an evaluation error.
func IsEvaluationError(err error) bool {
	return errors.Is(err, ErrEvaluation)
}
