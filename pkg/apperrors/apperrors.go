// Package apperrors defines the error kinds the service layer reports and
// their HTTP mapping. Services wrap these sentinels with %w so handlers can
// translate any error into a status code with errors.Is.
package apperrors

import (
	"errors"
	"net/http"
)

var (
	// ErrNotFound means the requested resource does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden means the caller is authenticated but not allowed to
	// touch the resource.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidArgument means the request was well-formed JSON but
	// semantically invalid (bad ID, out-of-range index, failed validation).
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrConflict means the write collided with another one and can be
	// retried by the client.
	ErrConflict = errors.New("conflict")
	// ErrUnavailable means the storage layer is unreachable or failing.
	ErrUnavailable = errors.New("storage unavailable")
	// ErrUnauthorized means the request carries no valid identity.
	ErrUnauthorized = errors.New("unauthorized")
)

// Status maps an error to its HTTP status code. Unrecognized errors map to
// 500 so an unclassified failure is never mistaken for a client error.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Message returns a client-safe message for err. Client errors keep their
// wrapped detail; server-side failures are reduced to a generic message.
func Message(err error) string {
	if Status(err) >= http.StatusInternalServerError {
		return "internal server error"
	}
	return err.Error()
}
