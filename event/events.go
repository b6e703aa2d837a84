package event

import (
	"lessons/entity"
	"time"

	"github.com/ThreeDotsLabs/watermill"
)

type header struct {
	ID             string    `json:"id"`
	PublishedAt    time.Time `json:"published_at"`
	IdempotencyKey string    `json:"idempotency_key"`
}

func newHeader(idempotencyKey string) header {
	return header{
		ID:             watermill.NewUUID(),
		PublishedAt:    time.Now().UTC(),
		IdempotencyKey: idempotencyKey,
	}
}

type BookingCreated struct {
	Header        header       `json:"header"`
	BookingID     string       `json:"booking_id"`
	TimeSlotID    int64        `json:"time_slot_id"`
	Students      int          `json:"students"`
	CustomerEmail string       `json:"customer_email"`
	Total         entity.Money `json:"total"`
}

func NewBookingCreated(idempotencyKey string, booking entity.Booking) BookingCreated {
	e := BookingCreated{
		Header:        newHeader(idempotencyKey),
		BookingID:     booking.ID,
		CustomerEmail: booking.CustomerEmail,
		Total:         booking.Total(),
	}
	if len(booking.Items) > 0 {
		e.TimeSlotID = booking.Items[0].TimeSlotID
		e.Students = booking.Items[0].Students
	}
	return e
}

type PaidItem struct {
	TimeSlotID int64     `json:"time_slot_id"`
	Students   int       `json:"students"`
	Start      time.Time `json:"start"`
	LessonName string    `json:"lesson_name"`
}

type BookingPaid struct {
	Header            header       `json:"header"`
	BookingID         string       `json:"booking_id"`
	Provider          string       `json:"provider"`
	ExternalPaymentID string       `json:"external_payment_id,omitempty"`
	CustomerEmail     string       `json:"customer_email"`
	RecipientName     string       `json:"recipient_name"`
	Total             entity.Money `json:"total"`
	Items             []PaidItem   `json:"items"`
}

// NewBookingPaid addresses the confirmation to recipientName, which is the
// cardholder on the simulated path and the customer on the hosted one.
func NewBookingPaid(idempotencyKey, provider, recipientName string, paid entity.PaidBooking) BookingPaid {
	e := BookingPaid{
		Header:        newHeader(idempotencyKey),
		BookingID:     paid.Booking.ID,
		Provider:      provider,
		CustomerEmail: paid.Booking.CustomerEmail,
		RecipientName: recipientName,
		Total:         paid.Booking.Total(),
	}
	if paid.Booking.ExternalPaymentID != nil {
		e.ExternalPaymentID = *paid.Booking.ExternalPaymentID
	}
	for _, item := range paid.Items {
		e.Items = append(e.Items, PaidItem{
			TimeSlotID: item.Slot.ID,
			Students:   item.Item.Students,
			Start:      item.Slot.Start,
			LessonName: item.LessonName,
		})
	}
	return e
}

type BookingCanceled struct {
	Header        header `json:"header"`
	BookingID     string `json:"booking_id"`
	CustomerEmail string `json:"customer_email"`
	Reason        string `json:"reason"`
}

func NewBookingCanceled(idempotencyKey, reason string, booking entity.Booking) BookingCanceled {
	return BookingCanceled{
		Header:        newHeader(idempotencyKey),
		BookingID:     booking.ID,
		CustomerEmail: booking.CustomerEmail,
		Reason:        reason,
	}
}
