// Package errors provides the typed errors returned by repositories, adapters and handlers.
// Scorers never return errors; everything here belongs to the I/O boundary.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ValidationError indicates invalid input provided by a caller.
// Fields carries per-field messages when the failure came from form validation.
type ValidationError struct {
	Op     string
	Msg    string
	Err    error
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("validation: %s: %s: %v", e.Op, e.Msg, e.Err)
	}
	return fmt.Sprintf("validation: %s: %s", e.Op, e.Msg)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func NewValidation(op, msg string, err error) error {
	return &ValidationError{Op: op, Msg: msg, Err: err}
}

// NewFieldValidation wraps a field -> message map from the form validators.
func NewFieldValidation(op string, fields map[string]string) error {
	return &ValidationError{Op: op, Msg: "invalid fields", Fields: fields}
}

// NotFoundError is returned when a record does not exist.
type NotFoundError struct {
	Op     string
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("not found: %s: %s %s", e.Op, e.Entity, e.ID)
}

func NewNotFound(op, entity, id string) error {
	return &NotFoundError{Op: op, Entity: entity, ID: id}
}

// DBError represents database access/operation failures.
type DBError struct {
	Op  string
	Msg string
	Err error
}

func (e *DBError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("db: %s: %s: %v", e.Op, e.Msg, e.Err)
	}
	return fmt.Sprintf("db: %s: %s", e.Op, e.Msg)
}

func (e *DBError) Unwrap() error { return e.Err }

func NewDB(op, msg string, err error) error { return &DBError{Op: op, Msg: msg, Err: err} }

// ExternalAPIError represents failures in external services (geocoding, LLM, cache).
type ExternalAPIError struct {
	Op     string
	Msg    string
	Err    error
	System string // e.g. "google" / "openai" / "redis"
}

func (e *ExternalAPIError) Error() string {
	if e == nil {
		return "<nil>"
	}
	sys := e.System
	if sys == "" {
		sys = "external"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", sys, e.Op, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", sys, e.Op, e.Msg)
}

func (e *ExternalAPIError) Unwrap() error { return e.Err }

func NewExternal(op, system, msg string, err error) error {
	return &ExternalAPIError{Op: op, System: system, Msg: msg, Err: err}
}

// BizError is for business rule failures that aren't programmer bugs,
// e.g. confirming a match below the threshold.
type BizError struct {
	Op  string
	Msg string
	Err error
}

func (e *BizError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("biz: %s: %s: %v", e.Op, e.Msg, e.Err)
	}
	return fmt.Sprintf("biz: %s: %s", e.Op, e.Msg)
}

func (e *BizError) Unwrap() error { return e.Err }

func NewBiz(op, msg string, err error) error { return &BizError{Op: op, Msg: msg, Err: err} }

// Kind sentinels for Is.
var (
	ErrValidation = &ValidationError{}
	ErrNotFound   = &NotFoundError{}
	ErrDB         = &DBError{}
	ErrExternal   = &ExternalAPIError{}
	ErrBiz        = &BizError{}
)

// Is reports whether err has the kind of target, using errors.As on the target's type.
func Is(err, target error) bool {
	if err == nil || target == nil {
		return errors.Is(err, target)
	}
	switch target.(type) {
	case *ValidationError:
		var v *ValidationError
		return errors.As(err, &v)
	case *NotFoundError:
		var n *NotFoundError
		return errors.As(err, &n)
	case *DBError:
		var d *DBError
		return errors.As(err, &d)
	case *ExternalAPIError:
		var ex *ExternalAPIError
		return errors.As(err, &ex)
	case *BizError:
		var b *BizError
		return errors.As(err, &b)
	default:
		return errors.Is(err, target)
	}
}

// FieldErrors returns the per-field messages of a ValidationError, if any.
func FieldErrors(err error) map[string]string {
	var v *ValidationError
	if errors.As(err, &v) {
		return v.Fields
	}
	return nil
}

// StatusCode maps an error kind to the HTTP status the API responds with.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case Is(err, ErrValidation):
		return http.StatusBadRequest
	case Is(err, ErrNotFound):
		return http.StatusNotFound
	case Is(err, ErrBiz):
		return http.StatusUnprocessableEntity
	case Is(err, ErrExternal):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
