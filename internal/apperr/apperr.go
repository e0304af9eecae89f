// Package apperr carries the error taxonomy shared by services and handlers.
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindUnavailable
)

var kindInfo = map[Kind]struct {
	status int
	code   string
}{
	KindInternal:     {http.StatusInternalServerError, "internal"},
	KindValidation:   {http.StatusBadRequest, "validation"},
	KindUnauthorized: {http.StatusUnauthorized, "unauthorized"},
	KindForbidden:    {http.StatusForbidden, "forbidden"},
	KindNotFound:     {http.StatusNotFound, "not_found"},
	KindConflict:     {http.StatusConflict, "conflict"},
	KindUnavailable:  {http.StatusServiceUnavailable, "unavailable"},
}

// Status is the HTTP status for k.
func (k Kind) Status() int { return kindInfo[k].status }

// Code is the stable machine-readable name for k.
func (k Kind) Code() string { return kindInfo[k].code }

// Error is a classified failure. Message is safe to show to API clients;
// Err holds the cause and is only logged.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		if e.Message == "" {
			return e.Err.Error()
		}
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(k Kind, msg string) error { return &Error{Kind: k, Message: msg} }

func Validation(msg string) error   { return newErr(KindValidation, msg) }
func Unauthorized(msg string) error { return newErr(KindUnauthorized, msg) }
func Forbidden(msg string) error    { return newErr(KindForbidden, msg) }
func NotFound(msg string) error     { return newErr(KindNotFound, msg) }
func Conflict(msg string) error     { return newErr(KindConflict, msg) }

// Unavailable wraps a dependency failure that should surface as 503.
func Unavailable(msg string, err error) error {
	return &Error{Kind: KindUnavailable, Message: msg, Err: err}
}

// Internal wraps an unexpected failure. The public message is fixed.
func Internal(err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	return &Error{Kind: KindInternal, Message: "internal server error", Err: err}
}

// KindOf classifies err; unclassified errors are internal.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// Public returns the client-facing message for err.
func Public(err error) string {
	var ae *Error
	if errors.As(err, &ae) && ae.Kind != KindInternal && ae.Message != "" {
		return ae.Message
	}
	return "internal server error"
}
