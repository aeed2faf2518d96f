package application

import (
	"time"

	"github.com/example/studio-scheduler/internal/persistence"
	"github.com/example/studio-scheduler/internal/scheduler"
)

// Recipient is a person a notification is addressed to.
type Recipient struct {
	ID          string
	Email       string
	DisplayName string
	// Timezone is the stored preference: an IANA zone name or a legacy
	// fixed-offset label. Empty when the person never set one.
	Timezone string
}

// SessionRecipients gathers everyone attached to a session. Instructor may be
// the zero value when no identity source could resolve one.
type SessionRecipients struct {
	Instructor Recipient
	Attendees  []Recipient
}

// RateQuery selects the rate applicable to a session assignment.
type RateQuery struct {
	ScheduleType persistence.ScheduleType
	Category     persistence.Category
	ClassTypeID  *string
	PackageID    *string
	// AsOf is the civil date the rate must be effective on. Zero means today.
	AsOf time.Time
}

// MaterializeWeeklyParams describes a recurring weekly schedule to expand
// into concrete session rows.
type MaterializeWeeklyParams struct {
	StartDate    time.Time
	Weekday      time.Weekday
	EndDate      *time.Time
	StartTime    string // HH:MM
	EndTime      string // HH:MM
	Timezone     string
	ClassTypeID  string
	InstructorID string
	ScheduleType persistence.ScheduleType
	Category     persistence.Category
	PackageID    *string
}

// MaterializeWeeklyResult reports what materialization produced.
type MaterializeWeeklyResult struct {
	SessionIDs []string
	Dates      []time.Time
	// Rate is the resolved rate stored on each created session; nil when no
	// applicable rate was found.
	Rate *persistence.Rate
	// Conflicts lists occurrences that overlap the instructor's existing
	// sessions. Conflicting occurrences are still created; the warnings let
	// callers surface the double-booking.
	Conflicts []scheduler.Conflict
}

// NotificationOutcome records one message's fate for reporting.
type NotificationOutcome struct {
	Recipient string
	Outcome   string // sent, simulated, failed
	Detail    string
}

// NotificationReport summarizes a session's notification batch.
type NotificationReport struct {
	SessionID string
	Outcomes  []NotificationOutcome
}

// Sent counts real deliveries. Simulated sends are tracked separately and
// never counted here.
func (r NotificationReport) Sent() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Outcome == "sent" {
			n++
		}
	}
	return n
}
