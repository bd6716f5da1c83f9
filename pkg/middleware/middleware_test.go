package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwtutil "github.com/primerapp/primer/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func authedRequest(t *testing.T, role string) *http.Request {
	t.Helper()
	token, err := jwtutil.GenerateToken("507f1f77bcf86cd799439011", "user@example.com", role, testSecret, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/checklists", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestAuthMiddleware(t *testing.T) {
	var got *jwtutil.Claims
	handler := AuthMiddleware(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetUserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("valid token", func(t *testing.T) {
		got = nil
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, authedRequest(t, "user"))

		assert.Equal(t, http.StatusOK, rr.Code)
		require.NotNil(t, got)
		assert.Equal(t, "507f1f77bcf86cd799439011", got.UserID)
		assert.Equal(t, "user", got.Role)
	})

	t.Run("missing header", func(t *testing.T) {
		got = nil
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/checklists", nil))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Nil(t, got)
	})

	t.Run("not a bearer token", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/checklists", nil)
		req.Header.Set("Authorization", "Basic abc123")
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/checklists", nil)
		req.Header.Set("Authorization", "Bearer nonsense")
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := jwtutil.GenerateToken("507f1f77bcf86cd799439011", "user@example.com", "user", testSecret, -time.Minute)
		require.NoError(t, err)

		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/checklists", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestGetUserFromContextEmpty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Nil(t, GetUserFromContext(req.Context()))
}

func TestRequireRole(t *testing.T) {
	handler := AuthMiddleware(testSecret)(RequireRole("admin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	t.Run("admin allowed", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, authedRequest(t, "admin"))
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("user rejected", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, authedRequest(t, "user"))
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}

func TestLoggingMiddlewareSetsRequestID(t *testing.T) {
	handler := LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}
