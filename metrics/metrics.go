package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	bookingsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lessons_bookings_created_total",
			Help: "Pending bookings created per lesson type",
		},
		[]string{"lesson"},
	)

	bookingRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lessons_booking_rejections_total",
			Help: "Booking requests rejected before a booking was stored",
		},
		[]string{"reason"},
	)

	paymentsConfirmed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lessons_payments_confirmed_total",
			Help: "Bookings moved to paid per payment provider",
		},
		[]string{"provider"},
	)

	webhookEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lessons_webhook_events_total",
			Help: "Payment provider callbacks by event type and outcome",
		},
		[]string{"type", "outcome"},
	)

	notifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lessons_notifications_total",
			Help: "Confirmation notifications attempted",
		},
		[]string{"outcome"},
	)
)

func BookingCreated(lesson string) {
	bookingsCreated.WithLabelValues(lesson).Inc()
}

func BookingRejected(reason string) {
	bookingRejections.WithLabelValues(reason).Inc()
}

func PaymentConfirmed(provider string) {
	paymentsConfirmed.WithLabelValues(provider).Inc()
}

func WebhookEvent(eventType, outcome string) {
	webhookEvents.WithLabelValues(eventType, outcome).Inc()
}

func NotificationSent() {
	notifications.WithLabelValues("sent").Inc()
}

func NotificationFailed() {
	notifications.WithLabelValues("failed").Inc()
}
