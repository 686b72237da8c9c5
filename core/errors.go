package core

import (
	"strconv"

	"github.com/pkg/errors"
)

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
		if len(err.Fields) > 0 {
			return err.Fields[0].Field + ": " + err.Fields[0].Error
		}
		return ""
	}
	return err.Err.Error()
}

// UpstreamError reports a non-success answer from one of the backends the console proxies to.
type UpstreamError struct {
	Service    string
	StatusCode int
	Body       string
}

func (err UpstreamError) Error() string {
	return err.Service + ": unexpected status " + strconv.Itoa(err.StatusCode)
}

// InvalidUpstreamError reports a backend answer the console could not make sense of.
type InvalidUpstreamError struct {
	Service string
	Err     error
}

func (err InvalidUpstreamError) Error() string {
	return err.Service + ": " + err.Err.Error()
}

func (err InvalidUpstreamError) Unwrap() error {
	return err.Err
}

func IsUpstreamNotFound(err error) bool {
	uerr, ok := errors.Cause(err).(*UpstreamError)
	return ok && uerr.StatusCode == 404
}

