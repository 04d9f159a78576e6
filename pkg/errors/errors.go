// Package errors provides structured error types for chextra.
//
// Error codes let the CLI and library callers react to a failure without
// parsing messages:
//
//   - INVALID_*: malformed input (package names, markers, config)
//   - PACKAGE_NOT_FOUND: the distribution is not in the inspected environment
//   - UNRESOLVABLE_EXTRA: a requested extra is not declared by the distribution
//   - MISSING_DEPENDENCIES: eager check found uninstalled dependencies
//
// # Usage
//
//	err := errors.New(errors.ErrCodePackageNotFound, "no distribution named %s", name)
//	if errors.Is(err, errors.ErrCodePackageNotFound) {
//	    // Handle lookup failure
//	}
//
//	var missing *errors.MissingDependenciesError
//	if errors.As(err, &missing) {
//	    fmt.Println(missing.Missing)
//	}
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidPackage Code = "INVALID_PACKAGE"
	ErrCodeInvalidMarker  Code = "INVALID_MARKER"
	ErrCodeInvalidConfig  Code = "INVALID_CONFIG"

	// Lookup errors
	ErrCodePackageNotFound     Code = "PACKAGE_NOT_FOUND"
	ErrCodeUnresolvableExtra   Code = "UNRESOLVABLE_EXTRA"
	ErrCodeMissingDependencies Code = "MISSING_DEPENDENCIES"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// ErrorCode returns the error's code.
func (e *Error) ErrorCode() Code { return e.Code }

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err carries the given error code.
// Both *Error and the typed errors of this package are recognized.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// As is a re-export of the standard library's errors.As so callers do not
// need to import both packages.
func As(err error, target any) bool {
	return errors.As(err, target)
}

type coded interface {
	error
	ErrorCode() Code
}

// GetCode extracts the error code from an error, if available.
// The outermost coded error in the chain wins. Returns empty string if no
// error in the chain carries a code.
func GetCode(err error) Code {
	var c coded
	if errors.As(err, &c) {
		return c.ErrorCode()
	}
	return ""
}

// UserMessage returns the error for display, without code prefixes.
// Causes of an *Error are appended the same way.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return e.Message + ": " + UserMessage(e.Cause)
		}
		return e.Message
	}
	var c coded
	if errors.As(err, &c) {
		return strings.TrimPrefix(c.Error(), string(c.ErrorCode())+": ")
	}
	return err.Error()
}

// UnresolvableExtraError is returned when a requested extra is not declared
// by the inspected distribution.
type UnresolvableExtraError struct {
	Package string
	Extra   string
	Valid   []string // declared extras, excluding the empty one
}

// Error implements the error interface.
func (e *UnresolvableExtraError) Error() string {
	return fmt.Sprintf("%s: extra %q couldn't be resolved for %s, declared extras: [%s]",
		ErrCodeUnresolvableExtra, e.Extra, e.Package, strings.Join(e.Valid, ", "))
}

// ErrorCode returns [ErrCodeUnresolvableExtra].
func (e *UnresolvableExtraError) ErrorCode() Code { return ErrCodeUnresolvableExtra }

// MissingDependenciesError is returned by eager checks when at least one
// requested extra has uninstalled dependencies.
type MissingDependenciesError struct {
	Package string
	Missing []string
}

// Error implements the error interface.
func (e *MissingDependenciesError) Error() string {
	return fmt.Sprintf("%s: could not import uninstalled distributions: [%s]",
		ErrCodeMissingDependencies, strings.Join(e.Missing, ", "))
}

// ErrorCode returns [ErrCodeMissingDependencies].
func (e *MissingDependenciesError) ErrorCode() Code { return ErrCodeMissingDependencies }
