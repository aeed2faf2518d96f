package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/studio-scheduler/internal/persistence"
)

var (
	sessionCounter  uint64
	rateCounter     uint64
	identityCounter uint64
	bookingCounter  uint64
)

var referenceTime = time.Date(2026, time.September, 1, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// SessionFixture builds a deterministic session row. Overrides run in order.
func SessionFixture(opts ...func(*persistence.Session)) persistence.Session {
	idx := atomic.AddUint64(&sessionCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	session := persistence.Session{
		ID:           fmt.Sprintf("session-%03d", idx),
		Date:         "2026-09-07",
		StartTime:    "10:00",
		EndTime:      "11:00",
		Timezone:     "Asia/Tokyo",
		ClassTypeID:  "class-type-001",
		InstructorID: "identity-001",
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&session)
	}
	return session
}

// RateFixture builds a deterministic active rate effective over September 2026.
func RateFixture(opts ...func(*persistence.Rate)) persistence.Rate {
	idx := atomic.AddUint64(&rateCounter, 1)
	until := "2026-12-31"
	rate := persistence.Rate{
		ID:             fmt.Sprintf("rate-%03d", idx),
		ScheduleType:   persistence.ScheduleTypeWeekly,
		Category:       persistence.CategoryIndividual,
		Amount:         75,
		EffectiveFrom:  "2026-09-01",
		EffectiveUntil: &until,
		Active:         true,
		CreatedAt:      referenceTime.Add(time.Duration(idx) * time.Minute),
	}
	for _, opt := range opts {
		opt(&rate)
	}
	return rate
}

// IdentityFixture builds a deterministic identity with a unique email.
func IdentityFixture(opts ...func(*persistence.Identity)) persistence.Identity {
	idx := atomic.AddUint64(&identityCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	identity := persistence.Identity{
		ID:          fmt.Sprintf("identity-%03d", idx),
		Email:       fmt.Sprintf("identity-%03d@example.com", idx),
		DisplayName: fmt.Sprintf("Identity %03d", idx),
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	for _, opt := range opts {
		opt(&identity)
	}
	return identity
}

// BookingFixture builds a deterministic booking linking an attendee to a session.
func BookingFixture(sessionID, attendeeID string, opts ...func(*persistence.Booking)) persistence.Booking {
	idx := atomic.AddUint64(&bookingCounter, 1)
	booking := persistence.Booking{
		ID:         fmt.Sprintf("booking-%03d", idx),
		SessionID:  sessionID,
		AttendeeID: attendeeID,
		CreatedAt:  referenceTime.Add(time.Duration(idx) * time.Minute),
	}
	for _, opt := range opts {
		opt(&booking)
	}
	return booking
}
