package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// tokens
	ErrInvalidSigningMethod = fmt.Errorf("invalid token signing method")
	ErrInvalidToken         = fmt.Errorf("invalid token")
	ErrTokenExpired         = fmt.Errorf("token expired")
	ErrTokenNotYetValid     = fmt.Errorf("token is not valid yet")

	// auth
	ErrEmptyAuthHeader   = fmt.Errorf("authorization header is missing")
	ErrInvalidAuthHeader = fmt.Errorf("malformed authorization header")
	ErrUnauthorized      = fmt.Errorf("unauthorized")

	// context
	ErrUserIDNotFoundInContext = fmt.Errorf("user id not found in request context")

	// common
	ErrNotFound   = fmt.Errorf("record not found")
	ErrBadRequest = fmt.Errorf("bad request")
	ErrConflict   = fmt.Errorf("conflict")
)

// NotFoundError names the aggregate that could not be loaded. It matches ErrNotFound.
type NotFoundError struct {
	Entity string
	ID     interface{}
}

func NewNotFoundError(entity string, id interface{}) error {
	return &NotFoundError{Entity: entity, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %v not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ValidationError carries field -> messages for the client.
type ValidationError struct {
	Errors map[string][]string
}

func NewValidationError(field string, messages ...string) *ValidationError {
	return &ValidationError{Errors: map[string][]string{field: messages}}
}

func (e *ValidationError) Add(field, message string) {
	if e.Errors == nil {
		e.Errors = make(map[string][]string)
	}
	e.Errors[field] = append(e.Errors[field], message)
}

func (e *ValidationError) HasErrors() bool { return len(e.Errors) > 0 }

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Errors))
	for f := range e.Errors {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, strings.Join(e.Errors[f], "; ")))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// InvalidOperationError is a business rule violation that depends on the state of another
// aggregate. It is reported to clients as a conflict.
type InvalidOperationError struct {
	Reason string
}

func NewInvalidOperationError(format string, args ...interface{}) error {
	return &InvalidOperationError{Reason: fmt.Sprintf(format, args...)}
}

func (e *InvalidOperationError) Error() string { return e.Reason }

// NewConflictError wraps ErrConflict with a reason.
func NewConflictError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// HttpError is what controllers hand to utils.ErrorResponse.
type HttpError struct {
	Code    int
	Message string
	Err     error
	Context map[string]interface{}
	Details interface{}
}

func NewHttpError(code int, message string, err error, context map[string]interface{}) *HttpError {
	return &HttpError{Code: code, Message: message, Err: err, Context: context}
}

func (e *HttpError) WithDetails(details interface{}) *HttpError {
	e.Details = details
	return e
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HttpError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }
