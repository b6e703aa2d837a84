package booking

import (
	"lessons/entity"
	"time"
)

const (
	PrivateLessonID = 1
	GroupLessonID   = 2
)

// DefaultCatalog is the demo catalog: two lesson types and one slot for each of
// them tomorrow, at 09:00 and 13:00 in loc.
func DefaultCatalog(now time.Time, loc *time.Location) ([]entity.LessonType, []entity.TimeSlot) {
	privateMax, groupMax := 2, 6

	private := entity.LessonType{
		ID:             PrivateLessonID,
		Name:           "Private Lesson",
		Description:    "One-on-one coaching tailored to your goals.",
		DurationMin:    120,
		BasePriceCents: 12000,
		GroupMax:       &privateMax,
		Active:         true,
	}
	group := entity.LessonType{
		ID:             GroupLessonID,
		Name:           "Group Lesson",
		Description:    "Learn together in small groups.",
		DurationMin:    120,
		BasePriceCents: 8000,
		GroupMax:       &groupMax,
		Active:         true,
	}

	local := now.In(loc)
	tomorrow := time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, loc)

	slot := func(lt entity.LessonType, hour int) entity.TimeSlot {
		start := tomorrow.Add(time.Duration(hour) * time.Hour)
		return entity.TimeSlot{
			LessonTypeID: lt.ID,
			Start:        start,
			End:          start.Add(lt.Duration()),
			Capacity:     lt.SlotCapacity(),
		}
	}

	return []entity.LessonType{private, group},
		[]entity.TimeSlot{slot(private, 9), slot(group, 13)}
}
