package errors

import (
	stdErrors "errors"
	"net/http"
)

// MapToHTTPStatus translates domain errors to the status code surfaced to API clients.
// Unknown errors are server errors: the caller must assume nothing was committed.
func MapToHTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case stdErrors.Is(err, ErrInvalidToken), stdErrors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case stdErrors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case stdErrors.Is(err, ErrAccountNotFound),
		stdErrors.Is(err, ErrTransactionNotFound),
		stdErrors.Is(err, ErrUserNotFound),
		stdErrors.Is(err, ErrReviewNotFound):
		return http.StatusNotFound
	case stdErrors.Is(err, ErrAccountAlreadyExists),
		stdErrors.Is(err, ErrUserAlreadyExists),
		stdErrors.Is(err, ErrInsufficientFunds),
		stdErrors.Is(err, ErrInvalidAmount),
		stdErrors.Is(err, ErrInvalidTransactionType),
		stdErrors.Is(err, ErrInvalidCurrency),
		stdErrors.Is(err, ErrInvalidPassword),
		stdErrors.Is(err, ErrInactiveUser),
		stdErrors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
