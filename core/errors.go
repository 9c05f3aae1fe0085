package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// UnavailableError marks a transient store or collaborator failure.
// Callers may retry the operation.
type UnavailableError struct {
	Err error
}

func NewUnavailableError(err error, msg string) error {
	return &UnavailableError{errors.Wrap(err, msg)}
}

func (err UnavailableError) Error() string { return err.Err.Error() }

func IsUnavailable(err error) bool {
	_, ok := errors.Cause(err).(*UnavailableError)
	return ok
}

// FatalError marks an internal invariant violation that needs manual
// reconciliation. It is always logged with its full context.
type FatalError struct {
	Err     error
	Context map[string]interface{}
}

func NewFatalError(err error, ctx map[string]interface{}) error {
	return &FatalError{Err: err, Context: ctx}
}

func (err FatalError) Error() string { return err.Err.Error() }

func IsFatal(err error) bool {
	_, ok := errors.Cause(err).(*FatalError)
	return ok
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
