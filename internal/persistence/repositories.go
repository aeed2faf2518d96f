package persistence

import (
	"context"
	"time"
)

// SessionFilter narrows session queries.
type SessionFilter struct {
	DateFrom      string // inclusive civil date, YYYY-MM-DD
	DateUntil     string // inclusive civil date, YYYY-MM-DD
	InstructorID  string
	Unprovisioned bool // only sessions whose meeting fields are still empty
}

// SessionRepository stores class sessions and their meeting resources.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) error
	GetSession(ctx context.Context, id string) (Session, error)
	ListSessions(ctx context.Context, filter SessionFilter) ([]Session, error)
	// SetMeetingResource writes provider metadata onto a session. It returns
	// ErrAlreadyProvisioned when the meeting fields are already populated.
	SetMeetingResource(ctx context.Context, sessionID string, resource MeetingResource) error
	// ClearMeetingResource resets the meeting fields. Administrative use only.
	ClearMeetingResource(ctx context.Context, sessionID string) error
}

// RateFilter selects candidate rates for resolution. AsOf is an inclusive
// civil date compared against the effective window.
type RateFilter struct {
	ScheduleType ScheduleType
	Category     Category
	AsOf         string
}

// RateRepository stores priced offerings.
type RateRepository interface {
	CreateRate(ctx context.Context, rate Rate) error
	// ListActiveRates returns active rates matching the filter whose effective
	// window contains the as-of date, newest created first.
	ListActiveRates(ctx context.Context, filter RateFilter) ([]Rate, error)
}

// ClassTypeRepository stores the class catalog.
type ClassTypeRepository interface {
	CreateClassType(ctx context.Context, classType ClassType) error
	GetClassType(ctx context.Context, id string) (ClassType, error)
}

// IdentityRepository stores people and the secondary instructor profiles.
type IdentityRepository interface {
	CreateIdentity(ctx context.Context, identity Identity) error
	GetIdentity(ctx context.Context, id string) (Identity, error)
	GetIdentityByEmail(ctx context.Context, email string) (Identity, error)
	CreateInstructorProfile(ctx context.Context, profile InstructorProfile) error
	// GetInstructorProfile looks up the secondary instructor record by the
	// identity id it mirrors.
	GetInstructorProfile(ctx context.Context, identityID string) (InstructorProfile, error)
}

// BookingRepository stores attendee bookings.
type BookingRepository interface {
	CreateBooking(ctx context.Context, booking Booking) error
	ListBookingsForSession(ctx context.Context, sessionID string) ([]Booking, error)
}

// ProviderTokenRepository stores the single cached meeting-provider credential.
type ProviderTokenRepository interface {
	// GetProviderToken returns the cached token row or ErrNotFound.
	GetProviderToken(ctx context.Context) (ProviderToken, error)
	// UpsertProviderToken replaces the cached token row. Concurrent refreshes
	// may race; last writer wins and every stored token is valid.
	UpsertProviderToken(ctx context.Context, token ProviderToken) error
}

// Clock abstracts the time source used when repositories stamp rows.
type Clock func() time.Time
