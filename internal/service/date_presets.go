package service

import (
	"time"

	"github.com/noah-isme/consultation-api/internal/models"
	appErrors "github.com/noah-isme/consultation-api/pkg/errors"
)

// Named date windows accepted by list and stats queries.
const (
	PresetToday       = "today"
	PresetWeek        = "week"
	PresetThisWeek    = "thisWeek"
	PresetThisMonth   = "thisMonth"
	PresetLastMonth   = "lastMonth"
	PresetLast3Months = "last3Months"
	PresetAll         = "all"
)

// ResolveDatePreset converts a preset into an inclusive range relative to today's calendar day.
// PresetAll yields nil.
func ResolveDatePreset(preset string, today time.Time) (*models.DateRange, error) {
	day := civilDay(today)
	y, m, _ := day.Date()
	monthStart := func(offset int) time.Time { return time.Date(y, m+time.Month(offset), 1, 0, 0, 0, 0, time.UTC) }
	span := func(start, end time.Time) *models.DateRange {
		return &models.DateRange{Start: start.Format(models.DateLayout), End: end.Format(models.DateLayout)}
	}

	switch preset {
	case PresetToday:
		return span(day, day), nil
	case PresetWeek:
		return span(day.AddDate(0, 0, -7), day), nil
	case PresetThisWeek:
		offset := (int(day.Weekday()) + 6) % 7
		monday := day.AddDate(0, 0, -offset)
		return span(monday, monday.AddDate(0, 0, 6)), nil
	case PresetThisMonth:
		return span(monthStart(0), monthStart(1).AddDate(0, 0, -1)), nil
	case PresetLastMonth:
		return span(monthStart(-1), monthStart(0).AddDate(0, 0, -1)), nil
	case PresetLast3Months:
		return span(monthStart(-2), monthStart(1).AddDate(0, 0, -1)), nil
	case PresetAll:
		return nil, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown date preset "+preset)
	}
}
