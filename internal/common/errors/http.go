// internal/common/errors/http.go
package errors

import "net/http"

// HTTPStatus maps an error to the response status of the HTTP functions.
// Errors without a StandardError in their chain are internal errors.
func HTTPStatus(err error) int {
	stdErr, ok := As(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch stdErr.Code {
	case ErrCodeValidationFailed, ErrCodeUnknownAction:
		return http.StatusBadRequest
	case ErrCodeAuthentication:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeStartupNotFound, ErrCodeValidationRunNotFound:
		return http.StatusNotFound
	case ErrCodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
