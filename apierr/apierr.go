package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindValidation   Kind = "validation"
	KindBusinessRule Kind = "business_rule"
	KindForbidden    Kind = "forbidden"
	KindUnauthorized Kind = "unauthorized"
)

// Error is a rule violation with the HTTP status it maps to. Field is set for
// validation errors only.
type Error struct {
	Status int
	Kind   Kind
	Field  string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Kind != "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("api error (%d)", e.Status)
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, kind Kind, msg string) *Error {
	return &Error{Status: status, Kind: kind, Err: errors.New(msg)}
}

func NotFound(msg string) *Error {
	return New(http.StatusNotFound, KindNotFound, msg)
}

func Validation(field, msg string) *Error {
	e := New(http.StatusBadRequest, KindValidation, msg)
	e.Field = field
	return e
}

func BusinessRule(msg string) *Error {
	return New(http.StatusBadRequest, KindBusinessRule, msg)
}

func Forbidden(msg string) *Error {
	return New(http.StatusForbidden, KindForbidden, msg)
}

func Unauthorized(msg string) *Error {
	return New(http.StatusUnauthorized, KindUnauthorized, msg)
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Is reports whether err carries an *Error of the given kind.
func Is(err error, kind Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == kind
}
