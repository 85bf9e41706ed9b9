// Package apperrors defines the typed failures returned by the relationship
// and exchange services.
package apperrors

import (
	"errors"
	"net/http"
)

// Kind is a machine-readable failure category.
type Kind string

const (
	// KindNotFound means a referenced entity does not exist.
	KindNotFound Kind = "NOT_FOUND"
	// KindForbidden means the caller has no rights over the target entity.
	KindForbidden Kind = "FORBIDDEN"
	// KindInvalidOperation means a state or business-rule precondition failed.
	KindInvalidOperation Kind = "INVALID_OPERATION"
	// KindConflict means a uniqueness or exclusivity invariant would break.
	KindConflict Kind = "CONFLICT"
	// KindUnprocessable means the request is valid but cannot be satisfied
	// given the current economic state.
	KindUnprocessable Kind = "UNPROCESSABLE_ENTITY"
)

// HTTPStatus maps a kind onto the status code the API layer responds with.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindInvalidOperation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindUnprocessable:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Error is a typed domain failure. Fields is keyed by the offending field or
// entity name and is only populated for Conflict and UnprocessableEntity.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string {
	return e.Message
}

// Is lets errors.Is match on kind alone, e.g. errors.Is(err, &Error{Kind: KindNotFound}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// NotFound reports a missing entity, e.g. NotFound("User").
func NotFound(entity string) *Error {
	return &Error{Kind: KindNotFound, Message: entity + " not found"}
}

// Forbidden reports that the caller may not act on the entity.
func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// InvalidOperation reports a violated precondition.
func InvalidOperation(message string) *Error {
	return &Error{Kind: KindInvalidOperation, Message: message}
}

// Conflict reports an exclusivity violation on field.
func Conflict(field, message string) *Error {
	return &Error{Kind: KindConflict, Message: message, Fields: map[string]string{field: message}}
}

// Unprocessable reports an economically unsatisfiable request on field,
// e.g. Unprocessable("Balance", "insufficient balance").
func Unprocessable(field, message string) *Error {
	return &Error{Kind: KindUnprocessable, Message: message, Fields: map[string]string{field: message}}
}

// KindOf returns the kind carried by err, or "" when err is not a domain error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// As unwraps err into a domain error.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
