package models

import (
	"errors"
	"fmt"
	"sort"
)

// ErrorKind classifies a failure so the rendering layer can choose a response.
type ErrorKind string

const (
	KindValidation         ErrorKind = "validation"
	KindConflict           ErrorKind = "conflict"
	KindNotFound           ErrorKind = "not_found"
	KindUnauthorized       ErrorKind = "unauthorized"
	KindInvalidToken       ErrorKind = "invalid_token"
	KindInvalidCredentials ErrorKind = "invalid_credentials"
	KindForbidden          ErrorKind = "forbidden"
	KindInternal           ErrorKind = "internal"
)

// AppError is the typed failure returned by repositories and services.
type AppError struct {
	Kind    ErrorKind
	Message string
	Fields  map[string]string // Field-level messages, set for validation and conflict failures
	Err     error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Messages flattens the error into human-readable lines, field messages first in field order.
func (e *AppError) Messages() []string {
	if len(e.Fields) == 0 {
		return []string{e.Message}
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+" "+e.Fields[k])
	}
	return out
}

// NewValidationError builds a validation failure from field-level messages.
func NewValidationError(fields map[string]string) *AppError {
	return &AppError{Kind: KindValidation, Message: "validation failed", Fields: fields}
}

// NewFieldError builds a validation failure for a single field.
func NewFieldError(field, message string) *AppError {
	return NewValidationError(map[string]string{field: message})
}

// NewConflictError reports a uniqueness violation on field.
func NewConflictError(field string) *AppError {
	return &AppError{
		Kind:    KindConflict,
		Message: field + " has already been taken",
		Fields:  map[string]string{field: "has already been taken"},
	}
}

// NewNotFoundError reports that the named entity does not exist.
func NewNotFoundError(entity string) *AppError {
	return &AppError{Kind: KindNotFound, Message: entity + " not found"}
}

// NewUnauthorizedError reports that no identity could be established.
func NewUnauthorizedError(message string) *AppError {
	return &AppError{Kind: KindUnauthorized, Message: message}
}

// NewInvalidTokenError wraps a token verification failure.
func NewInvalidTokenError(err error) *AppError {
	return &AppError{Kind: KindInvalidToken, Message: "invalid token", Err: err}
}

// ErrInvalidCredentials is returned by login for unknown emails and wrong passwords alike.
var ErrInvalidCredentials = &AppError{
	Kind:    KindInvalidCredentials,
	Message: "email or password is invalid",
}

// NewForbiddenError reports an ownership violation.
func NewForbiddenError(message string) *AppError {
	return &AppError{Kind: KindForbidden, Message: message}
}

// NewInternalError wraps an unexpected failure.
func NewInternalError(message string, err error) *AppError {
	return &AppError{Kind: KindInternal, Message: message, Err: err}
}

// KindOf returns the kind of err, or KindInternal if err carries none.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
