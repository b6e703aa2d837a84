package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"lessons/entity"
	"lessons/metrics"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

// MetadataBookingID is the checkout metadata key carrying the booking id.
const MetadataBookingID = "bookingId"

type CheckoutCreator interface {
	CreateCheckoutSession(ctx context.Context, req entity.CheckoutRequest) (entity.CheckoutSession, error)
}

type WebhookOutcome string

const (
	OutcomePaid     WebhookOutcome = "paid"
	OutcomeCanceled WebhookOutcome = "canceled"
	OutcomeIgnored  WebhookOutcome = "ignored"
)

type WebhookResult struct {
	EventType string
	BookingID string
	Outcome   WebhookOutcome
}

// Hosted delegates payment to an external checkout page. Confirmation arrives
// asynchronously through HandleWebhook.
type Hosted struct {
	store         Store
	checkout      CheckoutCreator
	baseURL       string
	webhookSecret string
}

// NewHosted builds the hosted adapter. A nil checkout disables intent creation
// and an empty webhookSecret disables callbacks; both report NotConfiguredError.
func NewHosted(store Store, checkout CheckoutCreator, baseURL, webhookSecret string) *Hosted {
	return &Hosted{
		store:         store,
		checkout:      checkout,
		baseURL:       baseURL,
		webhookSecret: webhookSecret,
	}
}

func (h *Hosted) Provider() string {
	return ProviderStripe
}

func (h *Hosted) Available() error {
	if h.checkout == nil {
		return NotConfiguredError{Collaborator: "stripe"}
	}
	return nil
}

func (h *Hosted) CreateIntent(ctx context.Context, booking entity.Booking, lessonType entity.LessonType) (Intent, error) {
	if err := h.Available(); err != nil {
		return Intent{}, err
	}

	students := 0
	for _, item := range booking.Items {
		students += item.Students
	}
	plural := ""
	if students > 1 {
		plural = "s"
	}

	session, err := h.checkout.CreateCheckoutSession(ctx, entity.CheckoutRequest{
		BookingID:       booking.ID,
		CustomerEmail:   booking.CustomerEmail,
		Currency:        booking.Currency,
		UnitAmountCents: booking.TotalCents,
		ProductName:     fmt.Sprintf("%s (%d student%s)", lessonType.Name, students, plural),
		Description:     fmt.Sprintf("%d min", lessonType.DurationMin),
		SuccessURL:      fmt.Sprintf("%s/booking?success=1&booking=%s", h.baseURL, booking.ID),
		CancelURL:       fmt.Sprintf("%s/booking?canceled=1&booking=%s", h.baseURL, booking.ID),
	})
	if err != nil {
		return Intent{}, fmt.Errorf("creating checkout session: %w", err)
	}

	if err := h.store.SetExternalSession(ctx, booking.ID, session.ID); err != nil {
		return Intent{}, fmt.Errorf("storing checkout session id: %w", err)
	}

	return Intent{
		Provider:    ProviderStripe,
		BookingID:   booking.ID,
		RedirectURL: session.URL,
	}, nil
}

// HandleWebhook verifies and applies a provider callback. Unknown event types
// and events without a booking id are accepted and leave state unchanged.
//
// A completion delivered twice for the same booking adds its seats twice.
func (h *Hosted) HandleWebhook(ctx context.Context, payload []byte, signature string) (WebhookResult, error) {
	if h.webhookSecret == "" {
		return WebhookResult{}, NotConfiguredError{Collaborator: "stripe webhook"}
	}
	if signature == "" {
		return WebhookResult{}, fmt.Errorf("%w: missing signature", ErrUnauthorized)
	}

	ev, err := webhook.ConstructEventWithOptions(payload, signature, h.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return WebhookResult{}, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	result := WebhookResult{
		EventType: string(ev.Type),
		Outcome:   OutcomeIgnored,
	}
	if ev.Data == nil {
		return result, nil
	}

	logger := log.FromContext(ctx).WithField("event_type", ev.Type).WithField("event_id", ev.ID)

	switch ev.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(ev.Data.Raw, &session); err != nil {
			return result, fmt.Errorf("decoding checkout session: %w", err)
		}

		result.BookingID = session.Metadata[MetadataBookingID]
		if result.BookingID == "" {
			logger.Info("Checkout session without booking id, ignoring")
			return result, nil
		}

		var paymentID *string
		if session.PaymentIntent != nil && session.PaymentIntent.ID != "" {
			paymentID = &session.PaymentIntent.ID
		}

		_, err := h.store.MarkPaid(ctx, PaidTransition{
			BookingID:         result.BookingID,
			Provider:          ProviderStripe,
			ExternalPaymentID: paymentID,
			PayableStatuses:   []entity.BookingStatus{entity.StatusPending, entity.StatusPaid},
		})
		if errors.Is(err, ErrBookingNotFound) || errors.Is(err, ErrNotPayable) {
			logger.WithError(err).WithField("booking_id", result.BookingID).Warn("Completed checkout for unpayable booking, ignoring")
			return result, nil
		}
		if err != nil {
			return result, fmt.Errorf("marking booking %s paid: %w", result.BookingID, err)
		}

		metrics.PaymentConfirmed(ProviderStripe)
		logger.WithField("booking_id", result.BookingID).Info("Checkout completed, booking paid")

		result.Outcome = OutcomePaid
		return result, nil

	case stripe.EventTypeCheckoutSessionExpired, stripe.EventTypePaymentIntentPaymentFailed:
		var object struct {
			Metadata map[string]string `json:"metadata"`
		}
		if err := json.Unmarshal(ev.Data.Raw, &object); err != nil {
			return result, fmt.Errorf("decoding %s object: %w", ev.Type, err)
		}

		result.BookingID = object.Metadata[MetadataBookingID]
		if result.BookingID == "" {
			return result, nil
		}

		changed, err := h.store.MarkCanceled(ctx, result.BookingID, string(ev.Type))
		if errors.Is(err, ErrBookingNotFound) {
			logger.WithField("booking_id", result.BookingID).Warn("Unknown booking in payment event, ignoring")
			return result, nil
		}
		if err != nil {
			return result, fmt.Errorf("canceling booking %s: %w", result.BookingID, err)
		}

		if changed {
			result.Outcome = OutcomeCanceled
		}
		return result, nil

	default:
		return result, nil
	}
}
