package http

import (
	"fmt"
	"io"
	"lessons/booking"
	"lessons/metrics"
	"net/http"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/labstack/echo/v4"
)

const (
	headerKeyStripeSignature = "Stripe-Signature"

	maxWebhookBodyBytes = 1 << 20
)

func (h handler) ConfirmFakePayment(c echo.Context) error {
	if h.cards == nil {
		return &echo.HTTPError{
			Code:    http.StatusNotFound,
			Message: "Simulated payments are disabled",
		}
	}

	var request booking.CardPayment
	if err := c.Bind(&request); err != nil {
		return &echo.HTTPError{
			Code:     http.StatusBadRequest,
			Message:  "Invalid card data",
			Internal: fmt.Errorf("failed to bind request: %w", err),
		}
	}

	if err := h.cards.Confirm(c.Request().Context(), request); err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

// StripeWebhook needs the unparsed body, the signature covers its exact bytes.
func (h handler) StripeWebhook(c echo.Context) error {
	ctx := c.Request().Context()

	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBodyBytes))
	if err != nil {
		return &echo.HTTPError{
			Code:     http.StatusBadRequest,
			Message:  "Failed to read request body",
			Internal: err,
		}
	}

	result, err := h.webhooks.HandleWebhook(ctx, payload, c.Request().Header.Get(headerKeyStripeSignature))
	if err != nil {
		eventType := result.EventType
		if eventType == "" {
			eventType = "unknown"
		}
		metrics.WebhookEvent(eventType, "rejected")
		return httpError(err)
	}

	metrics.WebhookEvent(result.EventType, string(result.Outcome))
	log.FromContext(ctx).
		WithField("event_type", result.EventType).
		WithField("booking_id", result.BookingID).
		WithField("outcome", result.Outcome).
		Info("Stripe webhook handled")

	return c.JSON(http.StatusOK, map[string]bool{"received": true})
}
