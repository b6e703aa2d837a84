package message

import (
	"context"
	"lessons/entity"
	"lessons/event"
	"lessons/metrics"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
)

const confirmationDateLayout = "Jan 2, 2006 3:04 PM"

type ConfirmationSender interface {
	SendBookingConfirmation(ctx context.Context, confirmation entity.Confirmation) error
}

type Handler struct {
	sender   ConfirmationSender
	location *time.Location
}

func NewHandler(sender ConfirmationSender, location *time.Location) Handler {
	if sender == nil {
		panic("missing confirmation sender")
	}
	if location == nil {
		location = time.UTC
	}

	return Handler{
		sender:   sender,
		location: location,
	}
}

// NewConfirmation renders a paid booking the way it appears in the
// confirmation email. The first item determines the lesson and date.
func NewConfirmation(e event.BookingPaid, location *time.Location) entity.Confirmation {
	c := entity.Confirmation{
		To:        e.CustomerEmail,
		Name:      e.RecipientName,
		BookingID: e.BookingID,
		Total:     e.Total.Display(),
	}
	if len(e.Items) > 0 {
		c.LessonName = e.Items[0].LessonName
		c.DateTime = e.Items[0].Start.In(location).Format(confirmationDateLayout)
	}
	return c
}

// SendBookingConfirmation never fails the message: a notification that cannot
// be delivered is logged and dropped, and the booking stays paid.
func (h Handler) SendBookingConfirmation(ctx context.Context, e *event.BookingPaid) error {
	logger := log.FromContext(ctx).WithField("booking_id", e.BookingID)

	if e.CustomerEmail == "" {
		logger.Warn("Paid booking without customer email, skipping confirmation")
		return nil
	}

	err := h.sender.SendBookingConfirmation(ctx, NewConfirmation(*e, h.location))
	if err != nil {
		metrics.NotificationFailed()
		logger.WithError(err).Error("Failed to send booking confirmation")
		return nil
	}

	metrics.NotificationSent()
	logger.Info("Booking confirmation sent")

	return nil
}

func (h Handler) LogBookingCanceled(ctx context.Context, e *event.BookingCanceled) error {
	log.FromContext(ctx).
		WithField("booking_id", e.BookingID).
		WithField("reason", e.Reason).
		Info("Booking canceled")

	return nil
}
