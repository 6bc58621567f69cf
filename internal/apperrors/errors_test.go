package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	errTodoMissing := fmt.Errorf("todo %w", ErrNotFound)

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"not found", errTodoMissing, KindNotFound},
		{"wrapped twice", fmt.Errorf("update todo 3: %w", errTodoMissing), KindNotFound},
		{"conflict", fmt.Errorf("user %w", ErrConflict), KindConflict},
		{"invalid credentials", ErrInvalidCredentials, KindInvalidCredentials},
		{"forbidden", fmt.Errorf("todo access %w", ErrForbidden), KindForbidden},
		{"validation", ErrValidation, KindValidation},
		{"unauthenticated", ErrUnauthenticated, KindUnauthenticated},
		{"plain error", errors.New("disk on fire"), KindInternal},
		{"nil", nil, KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestNotFoundAndForbiddenStayDistinct(t *testing.T) {
	forbidden := fmt.Errorf("todo access %w", ErrForbidden)

	assert.False(t, errors.Is(forbidden, ErrNotFound))
	assert.NotEqual(t, KindOf(forbidden), KindNotFound)
}

func TestKind_HTTPStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindNotFound, http.StatusNotFound},
		{KindConflict, http.StatusConflict},
		{KindInvalidCredentials, http.StatusUnauthorized},
		{KindUnauthenticated, http.StatusUnauthorized},
		{KindForbidden, http.StatusForbidden},
		{KindValidation, http.StatusBadRequest},
		{KindInternal, http.StatusInternalServerError},
		{Kind("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.HTTPStatus())
		})
	}
}

func TestResponse(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		want       ErrorResponse
	}{
		{
			name:       "categorized error keeps its message",
			err:        fmt.Errorf("todo %w", ErrNotFound),
			wantStatus: http.StatusNotFound,
			want:       ErrorResponse{Error: "todo not found", Code: "NOT_FOUND"},
		},
		{
			name:       "internal error is hidden",
			err:        errors.New("database is locked"),
			wantStatus: http.StatusInternalServerError,
			want:       ErrorResponse{Error: "internal server error", Code: "INTERNAL"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := Response(tt.err)

			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.want, body)
		})
	}
}
