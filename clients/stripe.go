package clients

import (
	"context"
	"fmt"
	"lessons/booking"
	"lessons/entity"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

type CheckoutClient struct {
	api *client.API
}

func NewCheckoutClient(secretKey string) *CheckoutClient {
	api := &client.API{}
	api.Init(secretKey, nil)

	return &CheckoutClient{
		api: api,
	}
}

// CreateCheckoutSession opens a one-item hosted checkout. The booking id is
// attached to both the session and its payment intent so every callback can
// be traced back to the booking.
func (c *CheckoutClient) CreateCheckoutSession(ctx context.Context, req entity.CheckoutRequest) (entity.CheckoutSession, error) {
	metadata := map[string]string{
		booking.MetadataBookingID: req.BookingID,
	}

	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		CustomerEmail: stripe.String(req.CustomerEmail),
		SuccessURL:    stripe.String(req.SuccessURL),
		CancelURL:     stripe.String(req.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(strings.ToLower(req.Currency)),
					UnitAmount: stripe.Int64(req.UnitAmountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(req.ProductName),
						Description: stripe.String(req.Description),
					},
				},
			},
		},
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: metadata,
		},
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	session, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return entity.CheckoutSession{}, fmt.Errorf("creating stripe checkout session: %w", err)
	}

	return entity.CheckoutSession{
		ID:  session.ID,
		URL: session.URL,
	}, nil
}
