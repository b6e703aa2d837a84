package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"lessons/booking"
	"lessons/entity"
	"lessons/event"
	"lessons/message"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func CreateBookingsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS bookings (
		booking_id UUID PRIMARY KEY,
		customer_name VARCHAR(255) NOT NULL,
		customer_email VARCHAR(255) NOT NULL,
		customer_phone VARCHAR(64),
		notes TEXT,
		total_cents BIGINT NOT NULL,
		currency VARCHAR(3) NOT NULL,
		status VARCHAR(16) NOT NULL,
		external_session_id VARCHAR(255),
		external_payment_id VARCHAR(255),
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
	);`)
	return err
}

func CreateBookingItemsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS booking_items (
		booking_item_id BIGSERIAL PRIMARY KEY,
		booking_id UUID NOT NULL REFERENCES bookings (booking_id),
		time_slot_id BIGINT NOT NULL REFERENCES time_slots (time_slot_id),
		students INTEGER NOT NULL CHECK (students BETWEEN 1 AND 6),
		level VARCHAR(64)
	);`)
	return err
}

func CreatePaymentsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS payments (
		payment_id BIGSERIAL PRIMARY KEY,
		booking_id UUID NOT NULL REFERENCES bookings (booking_id),
		provider VARCHAR(32) NOT NULL,
		card_brand VARCHAR(32) NOT NULL,
		card_last4 CHAR(4) NOT NULL,
		exp_month INTEGER NOT NULL,
		exp_year INTEGER NOT NULL
	);`)
	return err
}

const bookingColumns = `booking_id, customer_name, customer_email, customer_phone, notes,
	total_cents, currency, status, external_session_id, external_payment_id, created_at`

type BookingRepo struct {
	db     *sqlx.DB
	logger watermill.LoggerAdapter
}

func NewBookingRepo(db *sqlx.DB, logger watermill.LoggerAdapter) BookingRepo {
	return BookingRepo{
		db:     db,
		logger: logger,
	}
}

// inTx runs fn in a transaction and commits unless fn fails.
func (r BookingRepo) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		return errors.Join(err, tx.Rollback())
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (r BookingRepo) publishInTx(ctx context.Context, tx *sqlx.Tx, e any) error {
	if err := message.PublishInTx(ctx, e, tx.Tx, r.logger); err != nil {
		return fmt.Errorf("publishing event in transaction: %w", err)
	}
	return nil
}

func (r BookingRepo) AddBooking(ctx context.Context, b entity.Booking) (entity.Booking, error) {
	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO bookings
			(`+bookingColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);`,
			b.ID, b.CustomerName, b.CustomerEmail, b.CustomerPhone, b.Notes,
			b.TotalCents, b.Currency, b.Status, b.ExternalSessionID, b.ExternalPaymentID, b.CreatedAt)
		if err != nil {
			return fmt.Errorf("inserting booking: %w", err)
		}

		for i := range b.Items {
			item := &b.Items[i]
			item.BookingID = b.ID

			row := tx.QueryRowContext(ctx, `INSERT INTO booking_items
				(booking_id, time_slot_id, students, level)
				VALUES ($1, $2, $3, $4)
				RETURNING booking_item_id;`,
				item.BookingID, item.TimeSlotID, item.Students, item.Level)
			if err := row.Scan(&item.ID); err != nil {
				return fmt.Errorf("inserting booking item: %w", err)
			}
		}

		return r.publishInTx(ctx, tx, event.NewBookingCreated(uuid.NewString(), b))
	})
	if err != nil {
		return entity.Booking{}, err
	}

	return b, nil
}

func (r BookingRepo) GetBooking(ctx context.Context, bookingID string) (entity.Booking, error) {
	if _, err := uuid.Parse(bookingID); err != nil {
		return entity.Booking{}, booking.ErrBookingNotFound
	}

	var b entity.Booking
	err := r.db.GetContext(ctx, &b, `SELECT `+bookingColumns+` FROM bookings WHERE booking_id = $1`, bookingID)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Booking{}, booking.ErrBookingNotFound
	}
	if err != nil {
		return entity.Booking{}, fmt.Errorf("querying booking: %w", err)
	}

	err = r.db.SelectContext(ctx, &b.Items, `SELECT booking_item_id, booking_id, time_slot_id, students, level
		FROM booking_items WHERE booking_id = $1 ORDER BY booking_item_id`, bookingID)
	if err != nil {
		return entity.Booking{}, fmt.Errorf("querying booking items: %w", err)
	}

	return b, nil
}

func (r BookingRepo) SetExternalSession(ctx context.Context, bookingID, sessionID string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE bookings SET external_session_id = $2 WHERE booking_id = $1`, bookingID, sessionID)
	if err != nil {
		return fmt.Errorf("executing update query: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if n != 1 {
		return booking.ErrBookingNotFound
	}

	return nil
}

type bookedItemRow struct {
	entity.BookingItem
	LessonTypeID int64     `db:"lesson_type_id"`
	Start        time.Time `db:"start_time"`
	End          time.Time `db:"end_time"`
	Capacity     int       `db:"capacity"`
	BookedCount  int       `db:"booked_count"`
	LessonName   string    `db:"lesson_name"`
}

func (row bookedItemRow) bookedItem() entity.BookedItem {
	return entity.BookedItem{
		Item: row.BookingItem,
		Slot: entity.TimeSlot{
			ID:           row.TimeSlotID,
			LessonTypeID: row.LessonTypeID,
			Start:        row.Start,
			End:          row.End,
			Capacity:     row.Capacity,
			BookedCount:  row.BookedCount,
		},
		LessonName: row.LessonName,
	}
}

// lockBooking selects the booking row for update. Callers hold the lock until
// their transaction ends.
func lockBooking(ctx context.Context, tx *sqlx.Tx, bookingID string) (entity.Booking, error) {
	if _, err := uuid.Parse(bookingID); err != nil {
		return entity.Booking{}, booking.ErrBookingNotFound
	}

	var b entity.Booking
	err := tx.GetContext(ctx, &b, `SELECT `+bookingColumns+` FROM bookings WHERE booking_id = $1 FOR UPDATE`, bookingID)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Booking{}, booking.ErrBookingNotFound
	}
	if err != nil {
		return entity.Booking{}, fmt.Errorf("querying booking: %w", err)
	}

	return b, nil
}

// MarkPaid adds seats without re-checking capacity; the check happened when
// the booking was created.
func (r BookingRepo) MarkPaid(ctx context.Context, t booking.PaidTransition) (entity.PaidBooking, error) {
	var paid entity.PaidBooking

	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		b, err := lockBooking(ctx, tx, t.BookingID)
		if err != nil {
			return err
		}
		if !t.Payable(b.Status) {
			return booking.NotPayableError{BookingID: b.ID, Reason: "status " + string(b.Status)}
		}

		if t.Payment != nil {
			_, err := tx.ExecContext(ctx, `INSERT INTO payments
				(booking_id, provider, card_brand, card_last4, exp_month, exp_year)
				VALUES ($1, $2, $3, $4, $5, $6);`,
				b.ID, t.Payment.Provider, t.Payment.CardBrand, t.Payment.CardLast4, t.Payment.ExpMonth, t.Payment.ExpYear)
			if err != nil {
				return fmt.Errorf("inserting payment: %w", err)
			}
		}

		_, err = tx.ExecContext(ctx, `UPDATE bookings
			SET status = $2, external_payment_id = COALESCE($3, external_payment_id)
			WHERE booking_id = $1`, b.ID, entity.StatusPaid, t.ExternalPaymentID)
		if err != nil {
			return fmt.Errorf("updating booking status: %w", err)
		}
		b.Status = entity.StatusPaid
		if t.ExternalPaymentID != nil {
			b.ExternalPaymentID = t.ExternalPaymentID
		}

		_, err = tx.ExecContext(ctx, `UPDATE time_slots ts
			SET booked_count = ts.booked_count + items.students
			FROM (
				SELECT time_slot_id, SUM(students) AS students
				FROM booking_items WHERE booking_id = $1
				GROUP BY time_slot_id
			) items
			WHERE items.time_slot_id = ts.time_slot_id`, b.ID)
		if err != nil {
			return fmt.Errorf("incrementing booked count: %w", err)
		}

		var rows []bookedItemRow
		err = tx.SelectContext(ctx, &rows, `SELECT bi.booking_item_id, bi.booking_id, bi.time_slot_id, bi.students, bi.level,
				ts.lesson_type_id, ts.start_time, ts.end_time, ts.capacity, ts.booked_count,
				lt.name AS lesson_name
			FROM booking_items bi
			JOIN time_slots ts ON ts.time_slot_id = bi.time_slot_id
			JOIN lesson_types lt ON lt.lesson_type_id = ts.lesson_type_id
			WHERE bi.booking_id = $1
			ORDER BY bi.booking_item_id`, b.ID)
		if err != nil {
			return fmt.Errorf("querying booked items: %w", err)
		}

		paid = entity.PaidBooking{Booking: b}
		for _, row := range rows {
			paid.Booking.Items = append(paid.Booking.Items, row.BookingItem)
			paid.Items = append(paid.Items, row.bookedItem())
		}

		e := event.NewBookingPaid(uuid.NewString(), t.Provider, t.RecipientOr(b.CustomerName), paid)
		return r.publishInTx(ctx, tx, e)
	})
	if err != nil {
		return entity.PaidBooking{}, err
	}

	return paid, nil
}

func (r BookingRepo) MarkCanceled(ctx context.Context, bookingID, reason string) (bool, error) {
	var changed bool

	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		b, err := lockBooking(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if b.Status.Terminal() {
			return nil
		}

		_, err = tx.ExecContext(ctx, `UPDATE bookings SET status = $2 WHERE booking_id = $1`, b.ID, entity.StatusCanceled)
		if err != nil {
			return fmt.Errorf("updating booking status: %w", err)
		}
		b.Status = entity.StatusCanceled
		changed = true

		return r.publishInTx(ctx, tx, event.NewBookingCanceled(uuid.NewString(), reason, b))
	})
	if err != nil {
		return false, err
	}

	return changed, nil
}

func (r BookingRepo) ListRecentBookings(ctx context.Context, limit int) ([]entity.BookingSummary, error) {
	var summaries []entity.BookingSummary
	err := r.db.SelectContext(ctx, &summaries, `SELECT b.booking_id, b.customer_name, b.customer_email, b.status,
			b.total_cents, b.currency, b.created_at, first_item.lesson_name, first_item.slot_start
		FROM bookings b
		LEFT JOIN LATERAL (
			SELECT lt.name AS lesson_name, ts.start_time AS slot_start
			FROM booking_items bi
			JOIN time_slots ts ON ts.time_slot_id = bi.time_slot_id
			JOIN lesson_types lt ON lt.lesson_type_id = ts.lesson_type_id
			WHERE bi.booking_id = b.booking_id
			ORDER BY bi.booking_item_id
			LIMIT 1
		) first_item ON TRUE
		ORDER BY b.created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent bookings: %w", err)
	}
	return summaries, nil
}
