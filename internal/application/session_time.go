package application

import (
	"fmt"
	"time"

	"github.com/example/studio-scheduler/internal/persistence"
	"github.com/example/studio-scheduler/internal/scheduler"
	"github.com/example/studio-scheduler/internal/tzone"
)

const (
	civilDateLayout = "2006-01-02"
	timeOfDayLayout = "15:04"
)

// SessionStartInstant combines a session's civil date, start time-of-day, and
// timezone label into an absolute instant using zone-aware arithmetic. When
// the label is not a recognized zone in either form, the literal local
// date-time is kept by pinning it to UTC.
func SessionStartInstant(session persistence.Session) (time.Time, error) {
	date, err := time.Parse(civilDateLayout, session.Date)
	if err != nil {
		return time.Time{}, fmt.Errorf("session %s: parse date %q: %w", session.ID, session.Date, err)
	}
	tod, err := time.Parse(timeOfDayLayout, session.StartTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("session %s: parse start time %q: %w", session.ID, session.StartTime, err)
	}

	loc, ok := tzone.Resolve(session.Timezone)
	if !ok {
		loc = time.UTC
	}

	return time.Date(date.Year(), date.Month(), date.Day(), tod.Hour(), tod.Minute(), 0, 0, loc), nil
}

// sessionInterval converts a session's schedule into an absolute interval for
// overlap checks.
func sessionInterval(session persistence.Session) (scheduler.Interval, error) {
	start, err := SessionStartInstant(session)
	if err != nil {
		return scheduler.Interval{}, err
	}
	return scheduler.Interval{
		SessionID: session.ID,
		Start:     start,
		End:       start.Add(sessionDuration(session)),
	}, nil
}

// sessionDuration derives the meeting length from the session's time window.
// Unparseable or inverted windows fall back to one hour.
func sessionDuration(session persistence.Session) time.Duration {
	start, err1 := time.Parse(timeOfDayLayout, session.StartTime)
	end, err2 := time.Parse(timeOfDayLayout, session.EndTime)
	if err1 != nil || err2 != nil || !end.After(start) {
		return time.Hour
	}
	return end.Sub(start)
}
