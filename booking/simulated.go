package booking

import (
	"context"
	"fmt"
	"lessons/entity"
	"lessons/metrics"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
)

const maxExpiryYear = 2100

type CardPayment struct {
	BookingID string `json:"booking_id" validate:"required"`
	Number    string `json:"number" validate:"min=12,max=19"`
	ExpMonth  int    `json:"exp_month" validate:"min=1,max=12"`
	ExpYear   int    `json:"exp_year" validate:"max=2100"`
	CVC       string `json:"cvc" validate:"min=3,max=4"`
	Name      string `json:"name" validate:"required"`
}

// Simulated stands in for a payment provider. Any Luhn-valid card number is
// accepted; no authorization takes place.
type Simulated struct {
	store Store
	now   func() time.Time
}

func NewSimulated(store Store) *Simulated {
	return &Simulated{
		store: store,
		now:   time.Now,
	}
}

func (s *Simulated) Provider() string {
	return ProviderFake
}

func (s *Simulated) Available() error {
	return nil
}

func (s *Simulated) CreateIntent(_ context.Context, booking entity.Booking, _ entity.LessonType) (Intent, error) {
	return Intent{
		Provider:  ProviderFake,
		BookingID: booking.ID,
	}, nil
}

// Confirm pays a pending booking with a simulated card. Only the brand, last
// four digits and expiry are kept.
func (s *Simulated) Confirm(ctx context.Context, card CardPayment) error {
	if err := validateStruct(card, "Invalid card data"); err != nil {
		return err
	}
	if card.ExpYear < s.now().Year() || card.ExpYear > maxExpiryYear {
		return ValidationError{Message: "Invalid card data", Err: fmt.Errorf("expiry year %d out of range", card.ExpYear)}
	}

	booking, err := s.store.GetBooking(ctx, card.BookingID)
	if err != nil {
		return fmt.Errorf("getting booking: %w", notPayable(card.BookingID, err))
	}
	if booking.Status.Terminal() {
		return NotPayableError{BookingID: booking.ID, Reason: "status " + string(booking.Status)}
	}

	digits := NormalizeCardNumber(card.Number)
	if !LuhnValid(digits) {
		return ErrInvalidCard
	}

	payment := &entity.Payment{
		BookingID: booking.ID,
		Provider:  ProviderFake,
		CardBrand: CardBrand(digits),
		CardLast4: LastFour(digits),
		ExpMonth:  card.ExpMonth,
		ExpYear:   card.ExpYear,
	}

	_, err = s.store.MarkPaid(ctx, PaidTransition{
		BookingID:       booking.ID,
		Provider:        ProviderFake,
		RecipientName:   card.Name,
		Payment:         payment,
		PayableStatuses: []entity.BookingStatus{entity.StatusPending},
	})
	if err != nil {
		return fmt.Errorf("marking booking paid: %w", notPayable(booking.ID, err))
	}

	metrics.PaymentConfirmed(ProviderFake)

	log.FromContext(ctx).
		WithField("booking_id", booking.ID).
		WithField("card_brand", payment.CardBrand).
		Info("Simulated payment accepted")

	return nil
}
