package tests_test

import (
	"bytes"
	"context"
	"encoding/json"
	"lessons/booking"
	"lessons/config"
	"lessons/entity"
	"lessons/service"
	"net/http"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/lithammer/shortuuid/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76/webhook"
)

const (
	serverURL     = "http://localhost:8080"
	webhookSecret = "whsec_component_test"
)

func startService(t *testing.T, sender *MockConfirmationSender) {
	t.Helper()

	svc, err := service.New(service.Deps{
		Config: config.App{
			HTTPAddr:            ":8080",
			StoreBackend:        "memory",
			BaseURL:             serverURL,
			PaymentsProvider:    booking.ProviderFake,
			Currency:            "usd",
			SeedCatalog:         true,
			StripeWebhookSecret: webhookSecret,
		},
		Logger: watermill.NewStdLogger(false, false),
		Sender: sender,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		assert.NoError(t, svc.Run(ctx))
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	waitForHttpServer(t)
}

func waitForHttpServer(t *testing.T) {
	t.Helper()

	require.EventuallyWithT(
		t,
		func(t *assert.CollectT) {
			resp, err := http.Get(serverURL + "/health")
			if !assert.NoError(t, err) {
				return
			}
			defer resp.Body.Close()

			if assert.Less(t, resp.StatusCode, 300, "API not ready, http status: %d", resp.StatusCode) {
				return
			}
		},
		time.Second*10,
		time.Millisecond*50,
	)
}

type BookingRequest struct {
	Type     string `json:"type"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Students int    `json:"students"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

type BookingResponse struct {
	Provider  string `json:"provider"`
	BookingID string `json:"booking_id"`
	URL       string `json:"url"`
}

type CardRequest struct {
	BookingID string `json:"booking_id"`
	Number    string `json:"number"`
	ExpMonth  int    `json:"exp_month"`
	ExpYear   int    `json:"exp_year"`
	CVC       string `json:"cvc"`
	Name      string `json:"name"`
}

type AdminBooking struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Lesson string `json:"lesson"`
	Total  string `json:"total"`
}

func post(t *testing.T, path string, body any, headers map[string]string) *http.Response {
	t.Helper()

	var payload []byte
	if raw, ok := body.([]byte); ok {
		payload = raw
	} else {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}

	httpReq, err := http.NewRequest(http.MethodPost, serverURL+path, bytes.NewBuffer(payload))
	require.NoError(t, err)

	httpReq.Header.Set("Correlation-ID", shortuuid.New())
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(httpReq)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	return resp
}

func createBooking(t *testing.T, req BookingRequest) BookingResponse {
	t.Helper()

	resp := post(t, "/api/bookings", req, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var booking BookingResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&booking))

	return booking
}

func payWithCard(t *testing.T, bookingID string) {
	t.Helper()

	resp := post(t, "/api/payments/fake", CardRequest{
		BookingID: bookingID,
		Number:    "4242 4242 4242 4242",
		ExpMonth:  12,
		ExpYear:   time.Now().Year() + 1,
		CVC:       "123",
		Name:      "Grace Hopper",
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func sendWebhook(t *testing.T, eventType, bookingID string) {
	t.Helper()

	payload, err := json.Marshal(map[string]any{
		"id":          "evt_" + shortuuid.New(),
		"object":      "event",
		"type":        eventType,
		"api_version": "2020-08-27",
		"data": map[string]any{
			"object": map[string]any{
				"id":       "cs_test_" + bookingID,
				"object":   "checkout.session",
				"metadata": map[string]string{booking.MetadataBookingID: bookingID},
			},
		},
	})
	require.NoError(t, err)

	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload: payload,
		Secret:  webhookSecret,
	})

	resp := post(t, "/api/stripe/webhook", signed.Payload, map[string]string{
		"Stripe-Signature": signed.Header,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func adminBookings(t *testing.T) map[string]AdminBooking {
	t.Helper()

	resp, err := http.Get(serverURL + "/api/admin/bookings")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rows []AdminBooking
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rows))

	byID := make(map[string]AdminBooking, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}
	return byID
}

func waitForConfirmation(t *testing.T, sender *MockConfirmationSender, bookingID string) entity.Confirmation {
	t.Helper()

	var confirmation entity.Confirmation
	require.EventuallyWithT(
		t,
		func(collectT *assert.CollectT) {
			sent := sender.Sent()
			t.Log("confirmations sent", len(sent))

			found := false
			for _, c := range sent {
				if c.BookingID == bookingID {
					confirmation = c
					found = true
				}
			}
			assert.True(collectT, found, "no confirmation for booking %s", bookingID)
		},
		10*time.Second,
		100*time.Millisecond,
	)

	return confirmation
}
