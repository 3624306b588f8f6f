package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToHTTPStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", NewNotFound("user", "7"), http.StatusNotFound},
		{"invalid input", NewInvalidInput("bad id", nil), http.StatusBadRequest},
		{"validation", NewValidation("email", nil), http.StatusUnprocessableEntity},
		{"conflict", NewConflict("user", "7"), http.StatusInternalServerError},
		{"rate limited", NewRateLimited("slow down"), http.StatusTooManyRequests},
		{"wrapped not found", fmt.Errorf("get user: %w", NewNotFound("user", "1")), http.StatusNotFound},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ToHTTPStatus(tc.err))
		})
	}
}

func TestConflictMessageNamesConcurrentModification(t *testing.T) {
	err := NewConflict("user", "3")

	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, "Delete failed: user was modified by another request", err.ToJSON()["message"])
}

func TestToJSONHidesInternalDetails(t *testing.T) {
	internal := NewInternal("failed to query user", errors.New("connection reset"))
	notFound := NewNotFound("user", "9")

	assert.NotContains(t, internal.ToJSON(), "details")
	assert.Equal(t, "user with id: 9 not found", notFound.ToJSON()["details"])
}

func TestCauseIsKept(t *testing.T) {
	cause := errors.New("pool closed")
	err := NewInternal("acquire", cause)

	assert.Same(t, cause, err.Cause())
	assert.Contains(t, err.Error(), "pool closed")
}
