package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	StatusPending  BookingStatus = "pending"
	StatusPaid     BookingStatus = "paid"
	StatusCanceled BookingStatus = "canceled"
)

func (s BookingStatus) Terminal() bool {
	return s == StatusPaid || s == StatusCanceled
}

const DefaultSlotCapacity = 2

type LessonType struct {
	ID             int64  `db:"lesson_type_id" json:"-"`
	Name           string `db:"name" json:"name"`
	Description    string `db:"description" json:"description"`
	DurationMin    int    `db:"duration_min" json:"duration_min"`
	BasePriceCents int64  `db:"base_price_cents" json:"base_price_cents"`
	GroupMax       *int   `db:"group_max" json:"group_max,omitempty"`
	Active         bool   `db:"active" json:"-"`
}

// SlotCapacity is the number of seats a freshly provisioned slot gets.
func (l LessonType) SlotCapacity() int {
	if l.GroupMax == nil {
		return DefaultSlotCapacity
	}
	return *l.GroupMax
}

func (l LessonType) Duration() time.Duration {
	return time.Duration(l.DurationMin) * time.Minute
}

type TimeSlot struct {
	ID           int64     `db:"time_slot_id" json:"-"`
	LessonTypeID int64     `db:"lesson_type_id" json:"-"`
	Start        time.Time `db:"start_time" json:"start"`
	End          time.Time `db:"end_time" json:"end"`
	Capacity     int       `db:"capacity" json:"capacity"`
	BookedCount  int       `db:"booked_count" json:"booked_count"`
}

func (s TimeSlot) Remaining() int {
	return s.Capacity - s.BookedCount
}

type Booking struct {
	ID                string        `db:"booking_id"`
	CustomerName      string        `db:"customer_name"`
	CustomerEmail     string        `db:"customer_email"`
	CustomerPhone     *string       `db:"customer_phone"`
	Notes             *string       `db:"notes"`
	TotalCents        int64         `db:"total_cents"`
	Currency          string        `db:"currency"`
	Status            BookingStatus `db:"status"`
	ExternalSessionID *string       `db:"external_session_id"`
	ExternalPaymentID *string       `db:"external_payment_id"`
	CreatedAt         time.Time     `db:"created_at"`

	Items []BookingItem `db:"-"`
}

func (b Booking) Total() Money {
	return NewMoney(b.TotalCents, b.Currency)
}

type BookingItem struct {
	ID         int64   `db:"booking_item_id"`
	BookingID  string  `db:"booking_id"`
	TimeSlotID int64   `db:"time_slot_id"`
	Students   int     `db:"students"`
	Level      *string `db:"level"`
}

// Payment holds only derived card metadata, never the number or security code.
type Payment struct {
	ID        int64  `db:"payment_id"`
	BookingID string `db:"booking_id"`
	Provider  string `db:"provider"`
	CardBrand string `db:"card_brand"`
	CardLast4 string `db:"card_last4"`
	ExpMonth  int    `db:"exp_month"`
	ExpYear   int    `db:"exp_year"`
}

// PaidBooking is a booking after a paid transition, joined with the slot and
// lesson of every item so confirmations can be rendered without another lookup.
type PaidBooking struct {
	Booking Booking
	Items   []BookedItem
}

type BookedItem struct {
	Item       BookingItem
	Slot       TimeSlot
	LessonName string
}

// BookingSummary is one row of the admin listing.
type BookingSummary struct {
	BookingID     string        `db:"booking_id"`
	CustomerName  string        `db:"customer_name"`
	CustomerEmail string        `db:"customer_email"`
	Status        BookingStatus `db:"status"`
	TotalCents    int64         `db:"total_cents"`
	Currency      string        `db:"currency"`
	CreatedAt     time.Time     `db:"created_at"`
	LessonName    *string       `db:"lesson_name"`
	SlotStart     *time.Time    `db:"slot_start"`
}

type Money struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

func NewMoney(cents int64, currency string) Money {
	return Money{
		Amount:   decimal.New(cents, -2).StringFixed(2),
		Currency: strings.ToUpper(currency),
	}
}

// Display renders the amount the way customers see it, e.g. "$240.00".
func (m Money) Display() string {
	switch m.Currency {
	case "USD", "":
		return "$" + m.Amount
	case "EUR":
		return "€" + m.Amount
	case "GBP":
		return "£" + m.Amount
	default:
		return m.Amount + " " + m.Currency
	}
}

type CheckoutRequest struct {
	BookingID       string
	CustomerEmail   string
	Currency        string
	UnitAmountCents int64
	ProductName     string
	Description     string
	SuccessURL      string
	CancelURL       string
}

type CheckoutSession struct {
	ID  string
	URL string
}

// Confirmation is the payload handed to the notification sink.
type Confirmation struct {
	To         string
	Name       string
	BookingID  string
	DateTime   string
	LessonName string
	Total      string
}
