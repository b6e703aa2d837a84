package booking

import (
	"context"
	"lessons/entity"
	"time"
)

// Store is the relational state the booking lifecycle runs against. Every
// method is a single unit of work; nothing spans calls.
type Store interface {
	Seed(ctx context.Context, lessonTypes []entity.LessonType, slots []entity.TimeSlot) error

	ListLessonTypes(ctx context.Context) ([]entity.LessonType, error)
	// LessonTypeByName returns ErrLessonTypeNotFound unless an active lesson
	// type has exactly this name.
	LessonTypeByName(ctx context.Context, name string) (entity.LessonType, error)
	ListTimeSlots(ctx context.Context, lessonTypeID int64, from, to time.Time) ([]entity.TimeSlot, error)
	// FindOrCreateTimeSlot returns the slot for (slot.LessonTypeID, slot.Start),
	// inserting slot as given when there is none yet.
	FindOrCreateTimeSlot(ctx context.Context, slot entity.TimeSlot) (entity.TimeSlot, error)

	// AddBooking stores a pending booking with its items and fills in the
	// generated item ids.
	AddBooking(ctx context.Context, booking entity.Booking) (entity.Booking, error)
	GetBooking(ctx context.Context, bookingID string) (entity.Booking, error)
	SetExternalSession(ctx context.Context, bookingID, sessionID string) error
	MarkPaid(ctx context.Context, t PaidTransition) (entity.PaidBooking, error)
	// MarkCanceled reports whether the booking moved from pending to canceled.
	MarkCanceled(ctx context.Context, bookingID, reason string) (bool, error)
	ListRecentBookings(ctx context.Context, limit int) ([]entity.BookingSummary, error)
}

// PaidTransition describes a move to paid. Implementations must, as one unit:
// check the current status against PayableStatuses, store Payment when set,
// set status paid and ExternalPaymentID when set, add every item's students to
// its slot's booked count and publish a BookingPaid event.
type PaidTransition struct {
	BookingID         string
	Provider          string
	RecipientName     string
	ExternalPaymentID *string
	Payment           *entity.Payment
	PayableStatuses   []entity.BookingStatus
}

func (t PaidTransition) Payable(status entity.BookingStatus) bool {
	for _, s := range t.PayableStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// RecipientOr returns the recipient name, falling back to the customer name.
func (t PaidTransition) RecipientOr(customerName string) string {
	if t.RecipientName != "" {
		return t.RecipientName
	}
	return customerName
}
