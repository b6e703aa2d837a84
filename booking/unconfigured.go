package booking

import (
	"context"
	"lessons/entity"
	"time"
)

// UnconfiguredStore answers every call with a NotConfiguredError. It is used
// when no database connection string is set.
type UnconfiguredStore struct{}

var errNoDatabase = NotConfiguredError{Collaborator: "database"}

func (UnconfiguredStore) Seed(context.Context, []entity.LessonType, []entity.TimeSlot) error {
	return errNoDatabase
}

func (UnconfiguredStore) ListLessonTypes(context.Context) ([]entity.LessonType, error) {
	return nil, errNoDatabase
}

func (UnconfiguredStore) LessonTypeByName(context.Context, string) (entity.LessonType, error) {
	return entity.LessonType{}, errNoDatabase
}

func (UnconfiguredStore) ListTimeSlots(context.Context, int64, time.Time, time.Time) ([]entity.TimeSlot, error) {
	return nil, errNoDatabase
}

func (UnconfiguredStore) FindOrCreateTimeSlot(context.Context, entity.TimeSlot) (entity.TimeSlot, error) {
	return entity.TimeSlot{}, errNoDatabase
}

func (UnconfiguredStore) AddBooking(context.Context, entity.Booking) (entity.Booking, error) {
	return entity.Booking{}, errNoDatabase
}

func (UnconfiguredStore) GetBooking(context.Context, string) (entity.Booking, error) {
	return entity.Booking{}, errNoDatabase
}

func (UnconfiguredStore) SetExternalSession(context.Context, string, string) error {
	return errNoDatabase
}

func (UnconfiguredStore) MarkPaid(context.Context, PaidTransition) (entity.PaidBooking, error) {
	return entity.PaidBooking{}, errNoDatabase
}

func (UnconfiguredStore) MarkCanceled(context.Context, string, string) (bool, error) {
	return false, errNoDatabase
}

func (UnconfiguredStore) ListRecentBookings(context.Context, int) ([]entity.BookingSummary, error) {
	return nil, errNoDatabase
}
