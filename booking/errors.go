package booking

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation error")
	ErrLessonTypeNotFound = errors.New("lesson type not found")
	ErrCapacityExceeded   = errors.New("slot is full or insufficient capacity")
	ErrBookingNotFound    = errors.New("booking not found")
	ErrNotPayable         = errors.New("booking not found or not payable")
	ErrInvalidCard        = errors.New("invalid card number")
	ErrUnauthorized       = errors.New("invalid webhook signature")
	ErrNotConfigured      = errors.New("not configured")
)

type ValidationError struct {
	Message string
	Err     error
}

func (e ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Err)
	}
	return e.Message
}

func (e ValidationError) Unwrap() error {
	return e.Err
}

func (e ValidationError) Is(target error) bool {
	return target == ErrValidation
}

type CapacityError struct {
	Remaining int
	Requested int
}

func (e CapacityError) Error() string {
	return fmt.Sprintf("not enough seats: seats remaining %d, seats requested %d", e.Remaining, e.Requested)
}

func (e CapacityError) Is(target error) bool {
	return target == ErrCapacityExceeded
}

type NotPayableError struct {
	BookingID string
	Reason    string
}

func (e NotPayableError) Error() string {
	return fmt.Sprintf("booking %s is not payable: %s", e.BookingID, e.Reason)
}

func (e NotPayableError) Is(target error) bool {
	return target == ErrNotPayable
}

// NotConfiguredError names the collaborator that is missing so callers can tell
// the user what to set up.
type NotConfiguredError struct {
	Collaborator string
}

func (e NotConfiguredError) Error() string {
	return e.Collaborator + " not configured"
}

func (e NotConfiguredError) Is(target error) bool {
	return target == ErrNotConfigured
}
