package prserr

import "fmt"

// Error is a structured error carrying a stable Code plus a
// human-readable message and an optional wrapped cause. Higher
// components add context by wrapping with fmt.Errorf("...: %w", err)
// without erasing the Code, so callers can still branch on it with
// errors.Is.
type Error struct {
	Code    Code
	Message string
	Hint    string
	Cause   error
}

// New creates a structured error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a structured error with a formatted message.
func Newf(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithCause attaches an underlying cause and returns the error for
// chaining.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithHint attaches a remediation hint (e.g. "retry with --force") and
// returns the error for chaining.
func (e *Error) WithHint(hint string) *Error {
	e.Hint = hint
	return e
}

// Error implements the error interface, rendering as the single line
// "message: cause" (or just the message when there is no cause); Print
// renders the multi-line "error: ..." / "caused by: ..." form.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Cause.Error())
	}
	return e.Message
}

// Unwrap returns the underlying cause for errors.Is/errors.As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error by Code, so code-based matching works
// through errors.Is even across added context.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// ExitCode returns the numeric process exit status for this error.
func (e *Error) ExitCode() ExitCode {
	return e.Code.GetExitCode()
}
