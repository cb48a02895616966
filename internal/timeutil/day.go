// Package timeutil holds the calendar-day arithmetic shared by the store,
// the statistics engine and the presentation layers.
package timeutil

import (
	"fmt"
	"time"
)

// DateLayout is the date-only format used for flags, query params and
// daily-count keys.
const DateLayout = "2006-01-02"

// StartOfDay returns midnight (00:00:00) of the given day in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// NextDay returns midnight of the day after t. Ranges that must include a
// whole day use it as an exclusive upper bound.
func NextDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1)
}

// StartOfWeek returns Monday 00:00:00 of the week containing t.
func StartOfWeek(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 { // Sunday
		weekday = 7
	}
	return StartOfDay(t).AddDate(0, 0, -(weekday - 1))
}

// StartOfMonth returns the first day of t's month at 00:00:00.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// DayKey formats t as a date-only key.
func DayKey(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD string as midnight in loc.
func ParseDate(input string, loc *time.Location) (time.Time, error) {
	if input == "" {
		return time.Time{}, fmt.Errorf("date cannot be empty (use format YYYY-MM-DD, e.g., 2024-01-15)")
	}
	t, err := time.ParseInLocation(DateLayout, input, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format '%s' (use YYYY-MM-DD, e.g., 2024-01-15)", input)
	}
	return t, nil
}

// ParseDateRange parses optional from/to date strings. Empty strings leave
// the corresponding bound zero. It rejects a from date after the to date.
func ParseDateRange(fromStr, toStr string, loc *time.Location) (start, end time.Time, err error) {
	if fromStr != "" {
		start, err = ParseDate(fromStr, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start date: %w", err)
		}
	}
	if toStr != "" {
		end, err = ParseDate(toStr, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end date: %w", err)
		}
	}
	if !start.IsZero() && !end.IsZero() && start.After(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("start date (%s) is after end date (%s)",
			start.Format(DateLayout), end.Format(DateLayout))
	}
	return start, end, nil
}

// Period names a predefined reporting window.
type Period string

const (
	PeriodAll   Period = "all"
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// PeriodStart returns the inclusive start day of p relative to now. The
// zero time means "no lower bound". Every period is open-ended at now.
func PeriodStart(p Period, now time.Time) (time.Time, error) {
	switch p {
	case PeriodAll, "":
		return time.Time{}, nil
	case PeriodToday:
		return StartOfDay(now), nil
	case PeriodWeek:
		return StartOfWeek(now), nil
	case PeriodMonth:
		return StartOfMonth(now), nil
	default:
		return time.Time{}, fmt.Errorf("unknown period %q (use today, week, month or all)", p)
	}
}
