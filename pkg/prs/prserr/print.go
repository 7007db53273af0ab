package prserr

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Print writes err to w in the CLI's diagnostic convention: a
// single-line "error: <message>" followed by one "caused by: <cause>"
// line per wrapped layer, and a trailing hint line when the error (or
// any wrapped *Error) carries one. It returns the process exit code to
// use.
func Print(w io.Writer, err error) ExitCode {
	if err == nil {
		return ExitSuccess
	}

	var structured *Error
	if errors.As(err, &structured) {
		fmt.Fprintf(w, "error: %s\n", structured.Message)
		cause := structured.Cause
		for cause != nil {
			fmt.Fprintf(w, "caused by: %s\n", cause.Error())
			cause = errors.Unwrap(cause)
		}
		if structured.Hint != "" {
			fmt.Fprintf(w, "hint: %s\n", structured.Hint)
		}
		return structured.ExitCode()
	}

	fmt.Fprintf(w, "error: %s\n", err.Error())
	return ExitGeneralError
}

// Exit prints err to stderr and terminates the process with the
// matching exit code.
func Exit(err error) {
	code := Print(os.Stderr, err)
	os.Exit(code.Int())
}
