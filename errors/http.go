package errors

import (
	"errors"
	"net/http"
)

// MapToHTTPStatus translates a domain error into the status code the HTTP
// layer should answer with. Unknown errors are treated as internal failures.
func MapToHTTPStatus(err error) int {
	var unknown *UnknownMembersError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrCapacityExceeded):
		return http.StatusNotAcceptable
	case errors.Is(err, ErrDuplicateUser), errors.Is(err, ErrDuplicateChat):
		return http.StatusNotAcceptable
	case errors.As(err, &unknown):
		return http.StatusNotAcceptable
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrChatNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
