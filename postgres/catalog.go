package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"lessons/booking"
	"lessons/entity"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func CreateLessonTypesTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS lesson_types (
		lesson_type_id BIGINT PRIMARY KEY,
		name VARCHAR(255) NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		duration_min INTEGER NOT NULL,
		base_price_cents BIGINT NOT NULL,
		group_max INTEGER,
		active BOOLEAN NOT NULL DEFAULT TRUE
	);`)
	return err
}

func CreateTimeSlotsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS time_slots (
		time_slot_id BIGSERIAL PRIMARY KEY,
		lesson_type_id BIGINT NOT NULL REFERENCES lesson_types (lesson_type_id),
		start_time TIMESTAMP WITH TIME ZONE NOT NULL,
		end_time TIMESTAMP WITH TIME ZONE NOT NULL,
		capacity INTEGER NOT NULL,
		booked_count INTEGER NOT NULL DEFAULT 0 CHECK (booked_count >= 0),
		UNIQUE (lesson_type_id, start_time)
	);`)
	return err
}

const lessonTypeColumns = `lesson_type_id, name, description, duration_min, base_price_cents, group_max, active`

const timeSlotColumns = `time_slot_id, lesson_type_id, start_time, end_time, capacity, booked_count`

type CatalogRepo struct {
	db *sqlx.DB
}

func NewCatalogRepo(db *sqlx.DB) CatalogRepo {
	return CatalogRepo{
		db: db,
	}
}

// Seed inserts lesson types by id and slots by (lesson type, start), leaving
// existing rows untouched.
func (r CatalogRepo) Seed(ctx context.Context, lessonTypes []entity.LessonType, slots []entity.TimeSlot) error {
	for _, lt := range lessonTypes {
		_, err := r.db.NamedExecContext(ctx, `INSERT INTO lesson_types
			(`+lessonTypeColumns+`)
			VALUES (:lesson_type_id, :name, :description, :duration_min, :base_price_cents, :group_max, :active)
			ON CONFLICT DO NOTHING;`, lt)
		if err != nil {
			return fmt.Errorf("inserting lesson type %q: %w", lt.Name, err)
		}
	}

	for _, slot := range slots {
		if err := r.insertTimeSlot(ctx, slot); err != nil {
			return err
		}
	}

	return nil
}

func (r CatalogRepo) insertTimeSlot(ctx context.Context, slot entity.TimeSlot) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO time_slots
		(lesson_type_id, start_time, end_time, capacity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (lesson_type_id, start_time) DO NOTHING;`,
		slot.LessonTypeID, slot.Start, slot.End, slot.Capacity)
	if err != nil {
		return fmt.Errorf("inserting time slot: %w", err)
	}
	return nil
}

func (r CatalogRepo) ListLessonTypes(ctx context.Context) ([]entity.LessonType, error) {
	var lessonTypes []entity.LessonType
	err := r.db.SelectContext(ctx, &lessonTypes, `SELECT `+lessonTypeColumns+`
		FROM lesson_types WHERE active ORDER BY lesson_type_id`)
	if err != nil {
		return nil, fmt.Errorf("querying lesson types: %w", err)
	}
	return lessonTypes, nil
}

func (r CatalogRepo) LessonTypeByName(ctx context.Context, name string) (entity.LessonType, error) {
	var lt entity.LessonType
	err := r.db.GetContext(ctx, &lt, `SELECT `+lessonTypeColumns+`
		FROM lesson_types WHERE name = $1 AND active`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.LessonType{}, booking.ErrLessonTypeNotFound
	}
	if err != nil {
		return entity.LessonType{}, fmt.Errorf("querying lesson type: %w", err)
	}
	return lt, nil
}

func (r CatalogRepo) ListTimeSlots(ctx context.Context, lessonTypeID int64, from, to time.Time) ([]entity.TimeSlot, error) {
	var slots []entity.TimeSlot
	err := r.db.SelectContext(ctx, &slots, `SELECT `+timeSlotColumns+`
		FROM time_slots
		WHERE lesson_type_id = $1 AND start_time >= $2 AND start_time < $3
		ORDER BY start_time`, lessonTypeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("querying time slots: %w", err)
	}
	return slots, nil
}

func (r CatalogRepo) FindOrCreateTimeSlot(ctx context.Context, slot entity.TimeSlot) (entity.TimeSlot, error) {
	if err := r.insertTimeSlot(ctx, slot); err != nil {
		return entity.TimeSlot{}, err
	}

	var found entity.TimeSlot
	err := r.db.GetContext(ctx, &found, `SELECT `+timeSlotColumns+`
		FROM time_slots WHERE lesson_type_id = $1 AND start_time = $2`, slot.LessonTypeID, slot.Start)
	if err != nil {
		return entity.TimeSlot{}, fmt.Errorf("querying time slot: %w", err)
	}
	return found, nil
}
