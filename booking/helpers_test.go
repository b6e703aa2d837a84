package booking_test

import (
	"context"
	"lessons/booking"
	"lessons/entity"
	"lessons/memory"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var lessonDay = time.Date(2030, time.January, 15, 0, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	lock   sync.Mutex
	events []any
}

func (p *recordingPublisher) Publish(_ context.Context, event any) error {
	p.lock.Lock()
	defer p.lock.Unlock()

	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Events() []any {
	p.lock.Lock()
	defer p.lock.Unlock()

	return append([]any(nil), p.events...)
}

type mockCheckout struct {
	lock     sync.Mutex
	requests []entity.CheckoutRequest
	err      error
}

func (m *mockCheckout) CreateCheckoutSession(_ context.Context, req entity.CheckoutRequest) (entity.CheckoutSession, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.err != nil {
		return entity.CheckoutSession{}, m.err
	}
	m.requests = append(m.requests, req)

	return entity.CheckoutSession{
		ID:  "cs_test_" + req.BookingID,
		URL: "https://checkout.stripe.test/pay/" + req.BookingID,
	}, nil
}

func newSeededStore(t *testing.T, publisher memory.Publisher) *memory.Store {
	t.Helper()

	store := memory.NewStore(publisher)
	lessonTypes, _ := booking.DefaultCatalog(lessonDay, time.UTC)
	require.NoError(t, store.Seed(context.Background(), lessonTypes, nil))

	return store
}

func groupRequest(students int) booking.Request {
	return booking.Request{
		LessonType: "Group Lesson",
		Date:       "2030-01-15",
		Time:       "13:00",
		Students:   students,
		Level:      "beginner",
		Name:       "Ada Lovelace",
		Email:      "ada@example.com",
	}
}

func groupSlotStart() time.Time {
	return lessonDay.Add(13 * time.Hour)
}

// createPending books a group lesson through the simulated adapter and
// returns the pending booking.
func createPending(t *testing.T, store *memory.Store, students int) entity.Booking {
	t.Helper()
	ctx := context.Background()

	svc := booking.NewService(store, booking.NewSimulated(store), "usd", time.UTC)
	intent, err := svc.CreateBooking(ctx, groupRequest(students))
	require.NoError(t, err)

	b, err := store.GetBooking(ctx, intent.BookingID)
	require.NoError(t, err)
	require.Equal(t, entity.StatusPending, b.Status)

	return b
}
