// Package recurrence expands weekly class schedules into concrete calendar
// dates. All stepping arithmetic happens on date-only values pinned to UTC so
// local-midnight rounding can never shift an occurrence across a day
// boundary; converting results into a display zone is a separate, optional
// presentation step.
package recurrence

import (
	"errors"
	"time"
)

// ErrInvalidRange indicates the start date is not strictly before the end date.
var ErrInvalidRange = errors.New("recurrence: start date must be before end date")

// WeeklyDates returns every date on which a weekly session occurs, in order.
//
// The cursor advances day by day from start until its weekday matches weekday
// (the start date itself qualifies), then strides by exactly seven days until
// it passes end. When end is nil, December 31 of start's year is used. The
// result is finite, ordered, and free of duplicates by construction.
func WeeklyDates(start time.Time, weekday time.Weekday, end *time.Time) ([]time.Time, error) {
	startDate := DateOnly(start)

	var endDate time.Time
	if end != nil {
		endDate = DateOnly(*end)
	} else {
		endDate = time.Date(startDate.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)
	}

	if !startDate.Before(endDate) {
		return nil, ErrInvalidRange
	}

	cursor := startDate
	for cursor.Weekday() != weekday {
		cursor = cursor.AddDate(0, 0, 1)
		if cursor.After(endDate) {
			return nil, nil
		}
	}

	var dates []time.Time
	for !cursor.After(endDate) {
		dates = append(dates, cursor)
		cursor = cursor.AddDate(0, 0, 7)
	}

	return dates, nil
}

// DateOnly strips the time-of-day and zone from t, keeping its civil date in UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DisplayIn converts generated dates into a presentation zone. It exists for
// rendering only and must never feed back into stepping arithmetic.
func DisplayIn(dates []time.Time, loc *time.Location) []time.Time {
	if loc == nil {
		loc = time.UTC
	}
	out := make([]time.Time, len(dates))
	for i, d := range dates {
		out[i] = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
	}
	return out
}
