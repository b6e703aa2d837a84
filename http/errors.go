package http

import (
	"errors"
	"lessons/booking"
	"net/http"

	"github.com/labstack/echo/v4"
)

// httpError maps booking failures to the message and status shown to clients.
// Unexpected errors are hidden behind a generic message and kept as Internal.
func httpError(err error) *echo.HTTPError {
	var (
		validationErr    booking.ValidationError
		notConfiguredErr booking.NotConfiguredError
	)

	switch {
	case errors.As(err, &validationErr):
		return &echo.HTTPError{Code: http.StatusBadRequest, Message: validationErr.Message, Internal: err}
	case errors.Is(err, booking.ErrLessonTypeNotFound):
		return &echo.HTTPError{Code: http.StatusBadRequest, Message: "Lesson type not found", Internal: err}
	case errors.Is(err, booking.ErrCapacityExceeded):
		return &echo.HTTPError{Code: http.StatusConflict, Message: "Slot is full or insufficient capacity", Internal: err}
	case errors.Is(err, booking.ErrNotPayable):
		return &echo.HTTPError{Code: http.StatusBadRequest, Message: "Booking not found or not payable", Internal: err}
	case errors.Is(err, booking.ErrInvalidCard):
		return &echo.HTTPError{Code: http.StatusBadRequest, Message: "Invalid card number", Internal: err}
	case errors.Is(err, booking.ErrUnauthorized):
		return &echo.HTTPError{Code: http.StatusBadRequest, Message: "Invalid webhook signature", Internal: err}
	case errors.As(err, &notConfiguredErr):
		return &echo.HTTPError{Code: http.StatusServiceUnavailable, Message: capitalize(notConfiguredErr.Error()), Internal: err}
	default:
		return &echo.HTTPError{Code: http.StatusInternalServerError, Message: http.StatusText(http.StatusInternalServerError), Internal: err}
	}
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
