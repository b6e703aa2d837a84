package booking_test

import (
	"context"
	"errors"
	"lessons/booking"
	"lessons/entity"
	"lessons/memory"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_CreateBooking(t *testing.T) {
	ctx := context.Background()
	store := newSeededStore(t, nil)
	svc := booking.NewService(store, booking.NewSimulated(store), "usd", time.UTC)

	intent, err := svc.CreateBooking(ctx, groupRequest(3))
	require.NoError(t, err)
	assert.Equal(t, booking.ProviderFake, intent.Provider)
	assert.NotEmpty(t, intent.BookingID)
	assert.Empty(t, intent.RedirectURL)

	b, err := store.GetBooking(ctx, intent.BookingID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPending, b.Status)
	assert.Equal(t, int64(24000), b.TotalCents)
	assert.Equal(t, "usd", b.Currency)
	assert.Equal(t, "Ada Lovelace", b.CustomerName)
	assert.Nil(t, b.CustomerPhone)
	require.Len(t, b.Items, 1)
	assert.Equal(t, 3, b.Items[0].Students)
	require.NotNil(t, b.Items[0].Level)
	assert.Equal(t, "beginner", *b.Items[0].Level)

	slot, ok := store.TimeSlot(b.Items[0].TimeSlotID)
	require.True(t, ok)
	assert.True(t, slot.Start.Equal(groupSlotStart()))
	assert.True(t, slot.End.Equal(groupSlotStart().Add(120*time.Minute)))
	assert.Equal(t, 6, slot.Capacity)
	assert.Equal(t, 0, slot.BookedCount, "pending bookings hold no seats")
}

func TestService_CreateBooking_reuses_slot(t *testing.T) {
	ctx := context.Background()
	store := newSeededStore(t, nil)
	svc := booking.NewService(store, booking.NewSimulated(store), "usd", time.UTC)

	first, err := svc.CreateBooking(ctx, groupRequest(1))
	require.NoError(t, err)
	second, err := svc.CreateBooking(ctx, groupRequest(2))
	require.NoError(t, err)

	b1, err := store.GetBooking(ctx, first.BookingID)
	require.NoError(t, err)
	b2, err := store.GetBooking(ctx, second.BookingID)
	require.NoError(t, err)

	assert.Equal(t, b1.Items[0].TimeSlotID, b2.Items[0].TimeSlotID)
}

func TestService_CreateBooking_slot_capacity_from_lesson_type(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(nil)
	require.NoError(t, store.Seed(ctx, []entity.LessonType{
		{ID: 7, Name: "Taster", DurationMin: 60, BasePriceCents: 5000, Active: true},
	}, nil))
	svc := booking.NewService(store, booking.NewSimulated(store), "usd", time.UTC)

	req := groupRequest(2)
	req.LessonType = "Taster"
	intent, err := svc.CreateBooking(ctx, req)
	require.NoError(t, err)

	b, err := store.GetBooking(ctx, intent.BookingID)
	require.NoError(t, err)
	slot, ok := store.TimeSlot(b.Items[0].TimeSlotID)
	require.True(t, ok)
	assert.Equal(t, entity.DefaultSlotCapacity, slot.Capacity)

	req.Students = 3
	_, err = svc.CreateBooking(ctx, req)
	assert.ErrorIs(t, err, booking.ErrCapacityExceeded)
}

func TestService_CreateBooking_capacity(t *testing.T) {
	ctx := context.Background()
	store := newSeededStore(t, nil)
	store.AddTimeSlot(entity.TimeSlot{
		LessonTypeID: booking.GroupLessonID,
		Start:        groupSlotStart(),
		End:          groupSlotStart().Add(2 * time.Hour),
		Capacity:     6,
		BookedCount:  5,
	})
	svc := booking.NewService(store, booking.NewSimulated(store), "usd", time.UTC)

	_, err := svc.CreateBooking(ctx, groupRequest(2))
	require.ErrorIs(t, err, booking.ErrCapacityExceeded)

	var capacityErr booking.CapacityError
	require.True(t, errors.As(err, &capacityErr))
	assert.Equal(t, 1, capacityErr.Remaining)
	assert.Equal(t, 2, capacityErr.Requested)

	recent, err := store.ListRecentBookings(ctx, booking.RecentBookingsLimit)
	require.NoError(t, err)
	assert.Empty(t, recent)

	_, err = svc.CreateBooking(ctx, groupRequest(1))
	require.NoError(t, err)
}

func TestService_CreateBooking_pending_bookings_do_not_hold_seats(t *testing.T) {
	ctx := context.Background()
	store := newSeededStore(t, nil)
	svc := booking.NewService(store, booking.NewSimulated(store), "usd", time.UTC)

	for i := 0; i < 3; i++ {
		_, err := svc.CreateBooking(ctx, groupRequest(6))
		require.NoError(t, err)
	}
}

func TestService_CreateBooking_rejections(t *testing.T) {
	testCases := []struct {
		name    string
		modify  func(r *booking.Request)
		wantErr error
	}{
		{
			name:    "unknown lesson type",
			modify:  func(r *booking.Request) { r.LessonType = "Night Lesson" },
			wantErr: booking.ErrLessonTypeNotFound,
		},
		{
			name:    "too many students",
			modify:  func(r *booking.Request) { r.Students = 7 },
			wantErr: booking.ErrValidation,
		},
		{
			name:    "no students",
			modify:  func(r *booking.Request) { r.Students = 0 },
			wantErr: booking.ErrValidation,
		},
		{
			name:    "invalid email",
			modify:  func(r *booking.Request) { r.Email = "not-an-email" },
			wantErr: booking.ErrValidation,
		},
		{
			name:    "missing name",
			modify:  func(r *booking.Request) { r.Name = "" },
			wantErr: booking.ErrValidation,
		},
		{
			name:    "malformed date",
			modify:  func(r *booking.Request) { r.Date = "15/01/2030" },
			wantErr: booking.ErrValidation,
		},
		{
			name:    "malformed time",
			modify:  func(r *booking.Request) { r.Time = "1pm" },
			wantErr: booking.ErrValidation,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			store := newSeededStore(t, nil)
			svc := booking.NewService(store, booking.NewSimulated(store), "usd", time.UTC)

			req := groupRequest(2)
			tc.modify(&req)

			_, err := svc.CreateBooking(ctx, req)
			assert.ErrorIs(t, err, tc.wantErr)

			recent, err := store.ListRecentBookings(ctx, booking.RecentBookingsLimit)
			require.NoError(t, err)
			assert.Empty(t, recent)
		})
	}
}

func TestService_CreateBooking_hosted(t *testing.T) {
	ctx := context.Background()
	store := newSeededStore(t, nil)
	checkout := &mockCheckout{}
	hosted := booking.NewHosted(store, checkout, "https://lessons.test", "whsec_test")
	svc := booking.NewService(store, hosted, "usd", time.UTC)

	intent, err := svc.CreateBooking(ctx, groupRequest(3))
	require.NoError(t, err)
	assert.Equal(t, booking.ProviderStripe, intent.Provider)
	assert.Equal(t, "https://checkout.stripe.test/pay/"+intent.BookingID, intent.RedirectURL)

	require.Len(t, checkout.requests, 1)
	req := checkout.requests[0]
	assert.Equal(t, intent.BookingID, req.BookingID)
	assert.Equal(t, "ada@example.com", req.CustomerEmail)
	assert.Equal(t, "usd", req.Currency)
	assert.Equal(t, int64(24000), req.UnitAmountCents)
	assert.Equal(t, "Group Lesson (3 students)", req.ProductName)
	assert.Equal(t, "120 min", req.Description)
	assert.Equal(t, "https://lessons.test/booking?success=1&booking="+intent.BookingID, req.SuccessURL)
	assert.Equal(t, "https://lessons.test/booking?canceled=1&booking="+intent.BookingID, req.CancelURL)

	b, err := store.GetBooking(ctx, intent.BookingID)
	require.NoError(t, err)
	require.NotNil(t, b.ExternalSessionID)
	assert.Equal(t, "cs_test_"+intent.BookingID, *b.ExternalSessionID)
	assert.Equal(t, entity.StatusPending, b.Status)
}

func TestService_CreateBooking_hosted_single_student(t *testing.T) {
	store := newSeededStore(t, nil)
	checkout := &mockCheckout{}
	svc := booking.NewService(store, booking.NewHosted(store, checkout, "https://lessons.test", ""), "usd", time.UTC)

	_, err := svc.CreateBooking(context.Background(), groupRequest(1))
	require.NoError(t, err)

	require.Len(t, checkout.requests, 1)
	assert.Equal(t, "Group Lesson (1 student)", checkout.requests[0].ProductName)
}

func TestService_CreateBooking_hosted_not_configured(t *testing.T) {
	ctx := context.Background()
	store := newSeededStore(t, nil)
	svc := booking.NewService(store, booking.NewHosted(store, nil, "https://lessons.test", ""), "usd", time.UTC)

	_, err := svc.CreateBooking(ctx, groupRequest(1))
	require.ErrorIs(t, err, booking.ErrNotConfigured)
	assert.EqualError(t, err, "stripe not configured")

	recent, err := store.ListRecentBookings(ctx, booking.RecentBookingsLimit)
	require.NoError(t, err)
	assert.Empty(t, recent, "no orphan pending booking")
}

func TestService_CreateBooking_database_not_configured(t *testing.T) {
	store := booking.UnconfiguredStore{}
	svc := booking.NewService(store, booking.NewSimulated(store), "usd", time.UTC)

	_, err := svc.CreateBooking(context.Background(), groupRequest(1))
	assert.ErrorIs(t, err, booking.ErrNotConfigured)
	assert.ErrorContains(t, err, "database not configured")
}

func TestService_SeedCatalog(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(nil)
	svc := booking.NewService(store, booking.NewSimulated(store), "usd", time.UTC)

	require.NoError(t, svc.SeedCatalog(ctx))
	require.NoError(t, svc.SeedCatalog(ctx))

	lessonTypes, err := svc.ListLessonTypes(ctx)
	require.NoError(t, err)
	require.Len(t, lessonTypes, 2)
	assert.Equal(t, "Private Lesson", lessonTypes[0].Name)
	assert.Equal(t, int64(12000), lessonTypes[0].BasePriceCents)
	assert.Equal(t, 2, lessonTypes[0].SlotCapacity())
	assert.Equal(t, "Group Lesson", lessonTypes[1].Name)
	assert.Equal(t, int64(8000), lessonTypes[1].BasePriceCents)
	assert.Equal(t, 6, lessonTypes[1].SlotCapacity())
}

func TestService_ListTimeSlots(t *testing.T) {
	ctx := context.Background()
	store := newSeededStore(t, nil)
	svc := booking.NewService(store, booking.NewSimulated(store), "usd", time.UTC)

	_, err := svc.CreateBooking(ctx, groupRequest(2))
	require.NoError(t, err)

	slots, err := svc.ListTimeSlots(ctx, "Group Lesson", "2030-01-15")
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.True(t, slots[0].Start.Equal(groupSlotStart()))
	assert.Equal(t, 6, slots[0].Remaining())

	slots, err = svc.ListTimeSlots(ctx, "Group Lesson", "2030-01-16")
	require.NoError(t, err)
	assert.Empty(t, slots)

	_, err = svc.ListTimeSlots(ctx, "Group Lesson", "tomorrow")
	assert.ErrorIs(t, err, booking.ErrValidation)

	_, err = svc.ListTimeSlots(ctx, "Night Lesson", "2030-01-15")
	assert.ErrorIs(t, err, booking.ErrLessonTypeNotFound)
}

func TestCheckCapacity(t *testing.T) {
	slot := entity.TimeSlot{Capacity: 6, BookedCount: 5}

	assert.NoError(t, booking.CheckCapacity(slot, 1))
	assert.ErrorIs(t, booking.CheckCapacity(slot, 2), booking.ErrCapacityExceeded)
}

func TestTotalCents(t *testing.T) {
	lt := entity.LessonType{BasePriceCents: 8000}

	assert.Equal(t, int64(24000), booking.TotalCents(lt, 3))
}
