package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid argument", ErrInvalidArgument, http.StatusBadRequest},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", ErrForbidden, http.StatusForbidden},
		{"not found", ErrNotFound, http.StatusNotFound},
		{"conflict", ErrConflict, http.StatusConflict},
		{"unavailable", ErrUnavailable, http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Status(tc.err))
		})
	}
}

func TestStatusWrapped(t *testing.T) {
	err := fmt.Errorf("checklist 42: %w", ErrNotFound)
	assert.Equal(t, http.StatusNotFound, Status(err))
	assert.True(t, errors.Is(err, ErrNotFound))

	err = fmt.Errorf("step index 9 out of range: %w", ErrInvalidArgument)
	assert.Equal(t, http.StatusBadRequest, Status(err))
}

func TestMessage(t *testing.T) {
	err := fmt.Errorf("template abc: %w", ErrNotFound)
	assert.Equal(t, "template abc: not found", Message(err))

	assert.Equal(t, "internal server error", Message(errors.New("dial tcp: refused")))
	assert.Equal(t, "internal server error", Message(fmt.Errorf("mongo down: %w", ErrUnavailable)))
}
