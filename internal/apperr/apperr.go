package apperr

import (
	"errors"
	"fmt"
)

// Code is a process exit code. The values are part of the contract with the
// provisioning scripts that wrap this tool, so they must stay stable.
type Code int

const (
	NoError Code = iota
	MissingPrerequisite
	ArgumentError
	ConfigError
	RuntimeError
)

// Error attaches an exit code to an error chain.
type Error struct {
	Code Code
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap tags err with an exit code. Returns nil when err is nil.
func Wrap(code Code, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Err: err}
}

// Errorf formats a tagged error. The %w verb works as in fmt.Errorf.
func Errorf(code Code, format string, args ...any) error {
	return &Error{Code: code, Err: fmt.Errorf(format, args...)}
}

// ExitCode resolves the process exit code for err. Errors without a tag
// count as runtime errors, nil means success.
func ExitCode(err error) int {
	if err == nil {
		return int(NoError)
	}

	var e *Error
	if errors.As(err, &e) {
		return int(e.Code)
	}

	return int(RuntimeError)
}
