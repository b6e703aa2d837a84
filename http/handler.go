package http

import (
	"fmt"
	"lessons/booking"
	"lessons/entity"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const displayDateLayout = "Jan 2, 2006 3:04 PM"

type handler struct {
	bookings BookingService
	cards    CardConfirmer
	webhooks WebhookHandler
	location *time.Location
	currency string
}

type lessonTypeResponse struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	DurationMin int          `json:"duration_min"`
	Price       entity.Money `json:"price"`
	GroupMax    *int         `json:"group_max,omitempty"`
}

type timeSlotResponse struct {
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Capacity    int       `json:"capacity"`
	BookedCount int       `json:"booked_count"`
	Remaining   int       `json:"remaining"`
}

type bookingSummaryResponse struct {
	ID            string               `json:"id"`
	CustomerName  string               `json:"customer_name"`
	CustomerEmail string               `json:"customer_email"`
	Status        entity.BookingStatus `json:"status"`
	Lesson        string               `json:"lesson"`
	Date          string               `json:"date"`
	Total         string               `json:"total"`
	CreatedAt     time.Time            `json:"created_at"`
}

func (h handler) ListLessonTypes(c echo.Context) error {
	lessonTypes, err := h.bookings.ListLessonTypes(c.Request().Context())
	if err != nil {
		return httpError(fmt.Errorf("listing lesson types: %w", err))
	}

	response := make([]lessonTypeResponse, 0, len(lessonTypes))
	for _, lt := range lessonTypes {
		response = append(response, lessonTypeResponse{
			Name:        lt.Name,
			Description: lt.Description,
			DurationMin: lt.DurationMin,
			Price:       entity.NewMoney(lt.BasePriceCents, h.currency),
			GroupMax:    lt.GroupMax,
		})
	}

	return c.JSON(http.StatusOK, response)
}

func (h handler) ListTimeSlots(c echo.Context) error {
	slots, err := h.bookings.ListTimeSlots(c.Request().Context(), c.Param("name"), c.QueryParam("date"))
	if err != nil {
		return httpError(fmt.Errorf("listing time slots: %w", err))
	}

	response := make([]timeSlotResponse, 0, len(slots))
	for _, slot := range slots {
		response = append(response, timeSlotResponse{
			Start:       slot.Start.In(h.location),
			End:         slot.End.In(h.location),
			Capacity:    slot.Capacity,
			BookedCount: slot.BookedCount,
			Remaining:   slot.Remaining(),
		})
	}

	return c.JSON(http.StatusOK, response)
}

func (h handler) CreateBooking(c echo.Context) error {
	var request booking.Request
	if err := c.Bind(&request); err != nil {
		return &echo.HTTPError{
			Code:     http.StatusBadRequest,
			Message:  "Invalid booking request",
			Internal: fmt.Errorf("failed to bind request: %w", err),
		}
	}

	intent, err := h.bookings.CreateBooking(c.Request().Context(), request)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, intent)
}

func (h handler) ListRecentBookings(c echo.Context) error {
	summaries, err := h.bookings.RecentBookings(c.Request().Context())
	if err != nil {
		return httpError(fmt.Errorf("listing recent bookings: %w", err))
	}

	response := make([]bookingSummaryResponse, 0, len(summaries))
	for _, s := range summaries {
		row := bookingSummaryResponse{
			ID:            s.BookingID,
			CustomerName:  s.CustomerName,
			CustomerEmail: s.CustomerEmail,
			Status:        s.Status,
			Lesson:        "-",
			Date:          "-",
			Total:         entity.NewMoney(s.TotalCents, s.Currency).Display(),
			CreatedAt:     s.CreatedAt,
		}
		if s.LessonName != nil {
			row.Lesson = *s.LessonName
		}
		if s.SlotStart != nil {
			row.Date = s.SlotStart.In(h.location).Format(displayDateLayout)
		}
		response = append(response, row)
	}

	return c.JSON(http.StatusOK, response)
}
