package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func InitialiseDB(ctx context.Context, db *sqlx.DB) error {
	if err := CreateLessonTypesTable(ctx, db); err != nil {
		return fmt.Errorf("creating lesson types table: %w", err)
	}

	if err := CreateTimeSlotsTable(ctx, db); err != nil {
		return fmt.Errorf("creating time slots table: %w", err)
	}

	if err := CreateBookingsTable(ctx, db); err != nil {
		return fmt.Errorf("creating bookings table: %w", err)
	}

	if err := CreateBookingItemsTable(ctx, db); err != nil {
		return fmt.Errorf("creating booking items table: %w", err)
	}

	if err := CreatePaymentsTable(ctx, db); err != nil {
		return fmt.Errorf("creating payments table: %w", err)
	}

	return nil
}
