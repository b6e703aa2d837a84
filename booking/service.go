package booking

import (
	"context"
	"errors"
	"fmt"
	"lessons/entity"
	"lessons/metrics"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/google/uuid"
)

const (
	ProviderStripe = "stripe"
	ProviderFake   = "fake"

	RecentBookingsLimit = 20

	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

type Request struct {
	LessonType string `json:"type" validate:"required"`
	Date       string `json:"date" validate:"required,datetime=2006-01-02"`
	Time       string `json:"time" validate:"required,datetime=15:04"`
	Students   int    `json:"students" validate:"min=1,max=6"`
	Level      string `json:"level"`
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone"`
	Notes      string `json:"notes"`
}

// Intent is the next step handed back to the client after a booking is created:
// either a booking id to confirm locally or a hosted checkout URL.
type Intent struct {
	Provider    string `json:"provider"`
	BookingID   string `json:"booking_id"`
	RedirectURL string `json:"url,omitempty"`
}

type PaymentAdapter interface {
	Provider() string
	// Available fails with a NotConfiguredError when the adapter cannot take
	// payments. It is checked before any booking is stored.
	Available() error
	CreateIntent(ctx context.Context, booking entity.Booking, lessonType entity.LessonType) (Intent, error)
}

type Service struct {
	store    Store
	adapter  PaymentAdapter
	currency string
	loc      *time.Location
	now      func() time.Time
}

func NewService(store Store, adapter PaymentAdapter, currency string, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		store:    store,
		adapter:  adapter,
		currency: currency,
		loc:      loc,
		now:      time.Now,
	}
}

func (s *Service) Provider() string {
	return s.adapter.Provider()
}

func (s *Service) SeedCatalog(ctx context.Context) error {
	lessonTypes, slots := DefaultCatalog(s.now(), s.loc)
	if err := s.store.Seed(ctx, lessonTypes, slots); err != nil {
		return fmt.Errorf("seeding catalog: %w", err)
	}
	return nil
}

// CheckCapacity fails with a CapacityError when slot cannot seat students.
func CheckCapacity(slot entity.TimeSlot, students int) error {
	remaining := slot.Remaining()
	if remaining < students {
		return CapacityError{Remaining: remaining, Requested: students}
	}
	return nil
}

func TotalCents(lessonType entity.LessonType, students int) int64 {
	return lessonType.BasePriceCents * int64(students)
}

// CreateBooking stores a pending booking for one slot and returns the payment
// next step. Capacity is checked against the slot's current booked count only;
// pending bookings hold no seats, so concurrent requests can overbook.
func (s *Service) CreateBooking(ctx context.Context, req Request) (Intent, error) {
	if err := validateStruct(req, "Invalid booking request"); err != nil {
		metrics.BookingRejected("validation")
		return Intent{}, err
	}

	if err := s.adapter.Available(); err != nil {
		return Intent{}, err
	}

	lessonType, err := s.store.LessonTypeByName(ctx, req.LessonType)
	if errors.Is(err, ErrLessonTypeNotFound) {
		metrics.BookingRejected("lesson_type")
	}
	if err != nil {
		return Intent{}, fmt.Errorf("finding lesson type %q: %w", req.LessonType, err)
	}

	start, err := time.ParseInLocation(dateLayout+" "+timeLayout, req.Date+" "+req.Time, s.loc)
	if err != nil {
		metrics.BookingRejected("validation")
		return Intent{}, ValidationError{Message: "Invalid date or time", Err: err}
	}

	slot, err := s.store.FindOrCreateTimeSlot(ctx, entity.TimeSlot{
		LessonTypeID: lessonType.ID,
		Start:        start,
		End:          start.Add(lessonType.Duration()),
		Capacity:     lessonType.SlotCapacity(),
	})
	if err != nil {
		return Intent{}, fmt.Errorf("finding time slot: %w", err)
	}

	if err := CheckCapacity(slot, req.Students); err != nil {
		metrics.BookingRejected("capacity")
		return Intent{}, err
	}

	booking := entity.Booking{
		ID:            uuid.NewString(),
		CustomerName:  req.Name,
		CustomerEmail: req.Email,
		CustomerPhone: optional(req.Phone),
		Notes:         optional(req.Notes),
		TotalCents:    TotalCents(lessonType, req.Students),
		Currency:      s.currency,
		Status:        entity.StatusPending,
		CreatedAt:     s.now().UTC(),
		Items: []entity.BookingItem{
			{
				TimeSlotID: slot.ID,
				Students:   req.Students,
				Level:      optional(req.Level),
			},
		},
	}

	booking, err = s.store.AddBooking(ctx, booking)
	if err != nil {
		return Intent{}, fmt.Errorf("adding booking: %w", err)
	}
	metrics.BookingCreated(lessonType.Name)

	log.FromContext(ctx).
		WithField("booking_id", booking.ID).
		WithField("time_slot_id", slot.ID).
		Info("Pending booking created")

	intent, err := s.adapter.CreateIntent(ctx, booking, lessonType)
	if err != nil {
		return Intent{}, fmt.Errorf("creating %s payment intent: %w", s.adapter.Provider(), err)
	}

	return intent, nil
}

func (s *Service) ListLessonTypes(ctx context.Context) ([]entity.LessonType, error) {
	return s.store.ListLessonTypes(ctx)
}

// ListTimeSlots returns the known slots of a lesson type on the given date.
func (s *Service) ListTimeSlots(ctx context.Context, lessonTypeName, date string) ([]entity.TimeSlot, error) {
	day, err := time.ParseInLocation(dateLayout, date, s.loc)
	if err != nil {
		return nil, ValidationError{Message: "Invalid date", Err: err}
	}

	lessonType, err := s.store.LessonTypeByName(ctx, lessonTypeName)
	if err != nil {
		return nil, fmt.Errorf("finding lesson type %q: %w", lessonTypeName, err)
	}

	return s.store.ListTimeSlots(ctx, lessonType.ID, day, day.AddDate(0, 0, 1))
}

func (s *Service) RecentBookings(ctx context.Context) ([]entity.BookingSummary, error) {
	return s.store.ListRecentBookings(ctx, RecentBookingsLimit)
}

func notPayable(bookingID string, err error) error {
	if errors.Is(err, ErrBookingNotFound) {
		return NotPayableError{BookingID: bookingID, Reason: "not found"}
	}
	return err
}
