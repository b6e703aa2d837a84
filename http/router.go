package http

import (
	"context"
	"lessons/booking"
	"lessons/entity"
	"net/http"
	"time"

	commonHTTP "github.com/ThreeDotsLabs/go-event-driven/common/http"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var ErrServerClosed = http.ErrServerClosed

type BookingService interface {
	CreateBooking(ctx context.Context, req booking.Request) (booking.Intent, error)
	ListLessonTypes(ctx context.Context) ([]entity.LessonType, error)
	ListTimeSlots(ctx context.Context, lessonTypeName, date string) ([]entity.TimeSlot, error)
	RecentBookings(ctx context.Context) ([]entity.BookingSummary, error)
}

type CardConfirmer interface {
	Confirm(ctx context.Context, card booking.CardPayment) error
}

type WebhookHandler interface {
	HandleWebhook(ctx context.Context, payload []byte, signature string) (booking.WebhookResult, error)
}

type RouterDeps struct {
	Bookings BookingService
	// Cards is nil unless simulated payments are enabled.
	Cards    CardConfirmer
	Webhooks WebhookHandler
	Location *time.Location
	Currency string
}

func NewRouter(deps RouterDeps) *echo.Echo {
	server := commonHTTP.NewEcho()

	server.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	server.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	location := deps.Location
	if location == nil {
		location = time.UTC
	}

	handler := handler{
		bookings: deps.Bookings,
		cards:    deps.Cards,
		webhooks: deps.Webhooks,
		location: location,
		currency: deps.Currency,
	}

	api := server.Group("/api")
	api.GET("/lessons", handler.ListLessonTypes)
	api.GET("/lessons/:name/slots", handler.ListTimeSlots)
	api.POST("/bookings", handler.CreateBooking)
	api.POST("/payments/fake", handler.ConfirmFakePayment)
	api.POST("/stripe/webhook", handler.StripeWebhook)
	api.GET("/admin/bookings", handler.ListRecentBookings)

	return server
}
