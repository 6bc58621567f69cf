// Package apperrors defines the error categories shared by the services.
//
// Domain errors wrap one of the category sentinels so callers can match either
// the precise error or its category:
//
//	var ErrTodoNotFound = fmt.Errorf("todo %w", apperrors.ErrNotFound)
//
//	errors.Is(err, todos.ErrTodoNotFound) // precise
//	errors.Is(err, apperrors.ErrNotFound) // category
package apperrors

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
	ErrValidation         = errors.New("validation failed")
	ErrUnauthenticated    = errors.New("authentication required")
)

// Kind identifies the category of an error for the transport layer.
type Kind string

const (
	KindNotFound           Kind = "NOT_FOUND"
	KindConflict           Kind = "CONFLICT"
	KindInvalidCredentials Kind = "INVALID_CREDENTIALS"
	KindForbidden          Kind = "FORBIDDEN"
	KindValidation         Kind = "VALIDATION_FAILED"
	KindUnauthenticated    Kind = "UNAUTHENTICATED"
	KindInternal           Kind = "INTERNAL"
)

var kinds = []struct {
	sentinel error
	kind     Kind
}{
	{ErrNotFound, KindNotFound},
	{ErrConflict, KindConflict},
	{ErrInvalidCredentials, KindInvalidCredentials},
	{ErrForbidden, KindForbidden},
	{ErrValidation, KindValidation},
	{ErrUnauthenticated, KindUnauthenticated},
}

// KindOf returns the category of err, or KindInternal for anything uncategorized.
func KindOf(err error) Kind {
	for _, k := range kinds {
		if errors.Is(err, k.sentinel) {
			return k.kind
		}
	}
	return KindInternal
}

// HTTPStatus returns the response status used for errors of this kind.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindInvalidCredentials, KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
