package clients

import (
	"context"
	"fmt"
	"lessons/entity"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/resend/resend-go/v2"
)

type EmailClient struct {
	client *resend.Client
	from   string
}

func NewEmailClient(apiKey, from string) *EmailClient {
	return &EmailClient{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

func ConfirmationSubject(bookingID string) string {
	return fmt.Sprintf("Your booking %s is confirmed", bookingID)
}

func ConfirmationText(c entity.Confirmation) string {
	return fmt.Sprintf(
		"Hi %s,\n\nYour %s on %s is confirmed. Total: %s.\n\nSee you on the mountain!",
		c.Name, c.LessonName, c.DateTime, c.Total,
	)
}

func (c *EmailClient) SendBookingConfirmation(ctx context.Context, confirmation entity.Confirmation) error {
	sent, err := c.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    c.from,
		To:      []string{confirmation.To},
		Subject: ConfirmationSubject(confirmation.BookingID),
		Text:    ConfirmationText(confirmation),
	})
	if err != nil {
		return fmt.Errorf("sending confirmation email: %w", err)
	}

	log.FromContext(ctx).WithField("email_id", sent.Id).Debug("Confirmation email accepted")

	return nil
}

// LogSender stands in for the email provider when no API key is set. It only
// records that a confirmation would have been sent.
type LogSender struct{}

func (LogSender) SendBookingConfirmation(ctx context.Context, confirmation entity.Confirmation) error {
	log.FromContext(ctx).
		WithField("booking_id", confirmation.BookingID).
		WithField("subject", ConfirmationSubject(confirmation.BookingID)).
		Info("Email sender not configured, skipping confirmation")

	return nil
}
