// Package memory keeps the booking ledger and catalog in process memory. It
// follows the same contract as the postgres store and publishes the same
// events, straight to the event bus instead of through the outbox.
package memory

import (
	"context"
	"fmt"
	"lessons/booking"
	"lessons/entity"
	"lessons/event"
	"sort"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/google/uuid"
)

type Publisher interface {
	Publish(ctx context.Context, event any) error
}

type Store struct {
	lock *sync.RWMutex

	publisher Publisher

	lessonTypes   map[int64]entity.LessonType
	slots         map[int64]entity.TimeSlot
	bookings      map[string]entity.Booking
	payments      []entity.Payment
	nextSlotID    int64
	nextItemID    int64
	nextPaymentID int64
}

// NewStore returns an empty store. publisher may be nil, in which case no
// events are published.
func NewStore(publisher Publisher) *Store {
	return &Store{
		lock:        &sync.RWMutex{},
		publisher:   publisher,
		lessonTypes: make(map[int64]entity.LessonType),
		slots:       make(map[int64]entity.TimeSlot),
		bookings:    make(map[string]entity.Booking),
	}
}

// publish runs after the state change is applied. A failed publish is logged
// and the change stays in place, so callers still see the new state.
func (s *Store) publish(ctx context.Context, e any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		log.FromContext(ctx).WithError(err).WithField("event", fmt.Sprintf("%T", e)).Error("Failed to publish event")
	}
}

func sameStart(a, b time.Time) bool {
	return a.Equal(b)
}

func (s *Store) Seed(_ context.Context, lessonTypes []entity.LessonType, slots []entity.TimeSlot) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	for _, lt := range lessonTypes {
		if _, ok := s.lessonTypes[lt.ID]; !ok {
			s.lessonTypes[lt.ID] = lt
		}
	}
	for _, slot := range slots {
		s.findOrCreateSlot(slot)
	}

	return nil
}

func (s *Store) ListLessonTypes(_ context.Context) ([]entity.LessonType, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	lessonTypes := make([]entity.LessonType, 0, len(s.lessonTypes))
	for _, lt := range s.lessonTypes {
		if lt.Active {
			lessonTypes = append(lessonTypes, lt)
		}
	}
	sort.Slice(lessonTypes, func(i, j int) bool { return lessonTypes[i].ID < lessonTypes[j].ID })

	return lessonTypes, nil
}

func (s *Store) LessonTypeByName(_ context.Context, name string) (entity.LessonType, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	for _, lt := range s.lessonTypes {
		if lt.Active && lt.Name == name {
			return lt, nil
		}
	}

	return entity.LessonType{}, booking.ErrLessonTypeNotFound
}

func (s *Store) ListTimeSlots(_ context.Context, lessonTypeID int64, from, to time.Time) ([]entity.TimeSlot, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	var slots []entity.TimeSlot
	for _, slot := range s.slots {
		if slot.LessonTypeID != lessonTypeID {
			continue
		}
		if slot.Start.Before(from) || !slot.Start.Before(to) {
			continue
		}
		slots = append(slots, slot)
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].Start.Before(slots[j].Start) })

	return slots, nil
}

func (s *Store) FindOrCreateTimeSlot(_ context.Context, slot entity.TimeSlot) (entity.TimeSlot, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.lessonTypes[slot.LessonTypeID]; !ok {
		return entity.TimeSlot{}, fmt.Errorf("lesson type %d does not exist", slot.LessonTypeID)
	}

	return s.findOrCreateSlot(slot), nil
}

func (s *Store) findOrCreateSlot(slot entity.TimeSlot) entity.TimeSlot {
	for _, existing := range s.slots {
		if existing.LessonTypeID == slot.LessonTypeID && sameStart(existing.Start, slot.Start) {
			return existing
		}
	}

	s.nextSlotID++
	slot.ID = s.nextSlotID
	slot.BookedCount = 0
	s.slots[slot.ID] = slot

	return slot
}

// AddTimeSlot stores a slot as given, booked count included.
func (s *Store) AddTimeSlot(slot entity.TimeSlot) entity.TimeSlot {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.nextSlotID++
	slot.ID = s.nextSlotID
	s.slots[slot.ID] = slot

	return slot
}

func (s *Store) TimeSlot(id int64) (entity.TimeSlot, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	slot, ok := s.slots[id]
	return slot, ok
}

func (s *Store) Payments() []entity.Payment {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return append([]entity.Payment(nil), s.payments...)
}

func (s *Store) AddBooking(ctx context.Context, b entity.Booking) (entity.Booking, error) {
	s.lock.Lock()

	if _, ok := s.bookings[b.ID]; ok {
		s.lock.Unlock()
		return entity.Booking{}, fmt.Errorf("booking %s already exists", b.ID)
	}

	items := make([]entity.BookingItem, len(b.Items))
	for i, item := range b.Items {
		if _, ok := s.slots[item.TimeSlotID]; !ok {
			s.lock.Unlock()
			return entity.Booking{}, fmt.Errorf("time slot %d does not exist", item.TimeSlotID)
		}
		s.nextItemID++
		item.ID = s.nextItemID
		item.BookingID = b.ID
		items[i] = item
	}
	b.Items = items
	s.bookings[b.ID] = b

	s.lock.Unlock()

	s.publish(ctx, eventBookingCreated(b))

	return b, nil
}

func (s *Store) GetBooking(_ context.Context, bookingID string) (entity.Booking, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	b, ok := s.bookings[bookingID]
	if !ok {
		return entity.Booking{}, booking.ErrBookingNotFound
	}

	return b, nil
}

func (s *Store) SetExternalSession(_ context.Context, bookingID, sessionID string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	b, ok := s.bookings[bookingID]
	if !ok {
		return booking.ErrBookingNotFound
	}
	b.ExternalSessionID = &sessionID
	s.bookings[bookingID] = b

	return nil
}

func (s *Store) MarkPaid(ctx context.Context, t booking.PaidTransition) (entity.PaidBooking, error) {
	s.lock.Lock()

	b, ok := s.bookings[t.BookingID]
	if !ok {
		s.lock.Unlock()
		return entity.PaidBooking{}, booking.ErrBookingNotFound
	}
	if !t.Payable(b.Status) {
		s.lock.Unlock()
		return entity.PaidBooking{}, booking.NotPayableError{BookingID: b.ID, Reason: "status " + string(b.Status)}
	}

	if t.Payment != nil {
		s.nextPaymentID++
		p := *t.Payment
		p.ID = s.nextPaymentID
		p.BookingID = b.ID
		s.payments = append(s.payments, p)
	}

	b.Status = entity.StatusPaid
	if t.ExternalPaymentID != nil {
		b.ExternalPaymentID = t.ExternalPaymentID
	}
	s.bookings[b.ID] = b

	paid := entity.PaidBooking{Booking: b}
	for _, item := range b.Items {
		slot := s.slots[item.TimeSlotID]
		slot.BookedCount += item.Students
		s.slots[slot.ID] = slot

		paid.Items = append(paid.Items, entity.BookedItem{
			Item:       item,
			Slot:       slot,
			LessonName: s.lessonTypes[slot.LessonTypeID].Name,
		})
	}

	s.lock.Unlock()

	s.publish(ctx, eventBookingPaid(t, paid))

	return paid, nil
}

func (s *Store) MarkCanceled(ctx context.Context, bookingID, reason string) (bool, error) {
	s.lock.Lock()

	b, ok := s.bookings[bookingID]
	if !ok {
		s.lock.Unlock()
		return false, booking.ErrBookingNotFound
	}
	if b.Status.Terminal() {
		s.lock.Unlock()
		return false, nil
	}

	b.Status = entity.StatusCanceled
	s.bookings[bookingID] = b

	s.lock.Unlock()

	s.publish(ctx, eventBookingCanceled(reason, b))

	return true, nil
}

func (s *Store) ListRecentBookings(_ context.Context, limit int) ([]entity.BookingSummary, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	summaries := make([]entity.BookingSummary, 0, len(s.bookings))
	for _, b := range s.bookings {
		summary := entity.BookingSummary{
			BookingID:     b.ID,
			CustomerName:  b.CustomerName,
			CustomerEmail: b.CustomerEmail,
			Status:        b.Status,
			TotalCents:    b.TotalCents,
			Currency:      b.Currency,
			CreatedAt:     b.CreatedAt,
		}
		if len(b.Items) > 0 {
			slot := s.slots[b.Items[0].TimeSlotID]
			name := s.lessonTypes[slot.LessonTypeID].Name
			start := slot.Start
			summary.LessonName = &name
			summary.SlotStart = &start
		}
		summaries = append(summaries, summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	if len(summaries) > limit {
		summaries = summaries[:limit]
	}

	return summaries, nil
}

func eventBookingCreated(b entity.Booking) event.BookingCreated {
	return event.NewBookingCreated(uuid.NewString(), b)
}

func eventBookingPaid(t booking.PaidTransition, paid entity.PaidBooking) event.BookingPaid {
	return event.NewBookingPaid(uuid.NewString(), t.Provider, t.RecipientOr(paid.Booking.CustomerName), paid)
}

func eventBookingCanceled(reason string, b entity.Booking) event.BookingCanceled {
	return event.NewBookingCanceled(uuid.NewString(), reason, b)
}
