package services

import (
	"context"
	"strings"
	"testing"

	"github.com/primerapp/primer/pkg/apperrors"
	"github.com/stretchr/testify/assert"
)

// Validation happens before any repository access, so these run against a
// service with no backing store.

func TestRegisterUserValidation(t *testing.T) {
	svc := NewUserService(nil)

	tests := []struct {
		name     string
		email    string
		password string
		nickname string
	}{
		{"empty email", "", "secret123", "Dana"},
		{"malformed email", "not-an-email", "secret123", "Dana"},
		{"short password", "dana@example.com", "12345", "Dana"},
		{"empty nickname", "dana@example.com", "secret123", ""},
		{"blank nickname", "dana@example.com", "secret123", "   "},
		{"nickname too long", "dana@example.com", "secret123", strings.Repeat("x", 51)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RegisterUser(context.Background(), tt.email, tt.password, tt.nickname)
			assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
		})
	}
}

func TestUpdateProfileWhitelist(t *testing.T) {
	svc := NewUserService(nil)
	userID := "64b0c1f2a3d4e5f60718293a"

	t.Run("non-profile fields are dropped", func(t *testing.T) {
		// With role and email filtered out nothing remains to update.
		_, err := svc.UpdateProfile(context.Background(), userID, map[string]interface{}{
			"role":            "admin",
			"email":           "new@example.com",
			"hashed_password": "sneaky",
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
	})

	t.Run("empty patch", func(t *testing.T) {
		_, err := svc.UpdateProfile(context.Background(), userID, map[string]interface{}{})
		assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
	})

	t.Run("blank nickname", func(t *testing.T) {
		_, err := svc.UpdateProfile(context.Background(), userID, map[string]interface{}{"nickname": "  "})
		assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
	})

	t.Run("nickname too long", func(t *testing.T) {
		_, err := svc.UpdateProfile(context.Background(), userID, map[string]interface{}{"nickname": strings.Repeat("x", 51)})
		assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
	})

	t.Run("malformed user id", func(t *testing.T) {
		_, err := svc.UpdateProfile(context.Background(), "nope", map[string]interface{}{"nickname": "Dana"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
	})
}
