package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/example/studio-scheduler/internal/persistence"
)

// RecipientService assembles the people attached to a session: the instructor
// through the fallback lookup chain, and every booked attendee with a usable
// email address.
type RecipientService struct {
	sessions   persistence.SessionRepository
	bookings   persistence.BookingRepository
	identities persistence.IdentityRepository
	instructor *InstructorResolver
	logger     *slog.Logger
}

// NewRecipientService wires dependencies for recipient resolution.
func NewRecipientService(
	sessions persistence.SessionRepository,
	bookings persistence.BookingRepository,
	identities persistence.IdentityRepository,
	instructor *InstructorResolver,
	logger *slog.Logger,
) *RecipientService {
	return &RecipientService{
		sessions:   sessions,
		bookings:   bookings,
		identities: identities,
		instructor: instructor,
		logger:     defaultLogger(logger),
	}
}

// ForSession resolves everyone a session's notifications should reach. A
// missing instructor does not fail the call; the zero-valued Instructor field
// signals the gap so notification can alert stakeholders instead. Attendees
// whose identity row is missing or has no email are skipped with a warning.
func (s *RecipientService) ForSession(ctx context.Context, sessionID string) (persistence.Session, SessionRecipients, error) {
	logger := serviceLogger(ctx, s.logger, "recipients", "for_session", "session_id", sessionID)

	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.Session{}, SessionRecipients{}, ErrNotFound
		}
		return persistence.Session{}, SessionRecipients{}, err
	}

	var recipients SessionRecipients

	instructor, err := s.instructor.Resolve(ctx, session.InstructorID)
	switch {
	case err == nil:
		recipients.Instructor = instructor
	case errors.Is(err, ErrNotFound):
		logger.WarnContext(ctx, "session has no resolvable instructor", "instructor_id", session.InstructorID)
	default:
		return persistence.Session{}, SessionRecipients{}, err
	}

	bookings, err := s.bookings.ListBookingsForSession(ctx, sessionID)
	if err != nil {
		return persistence.Session{}, SessionRecipients{}, err
	}

	for _, booking := range bookings {
		identity, err := s.identities.GetIdentity(ctx, booking.AttendeeID)
		if err != nil {
			if errors.Is(err, persistence.ErrNotFound) {
				logger.WarnContext(ctx, "booking references unknown attendee", "attendee_id", booking.AttendeeID)
				continue
			}
			return persistence.Session{}, SessionRecipients{}, err
		}
		if identity.Email == "" {
			logger.WarnContext(ctx, "attendee has no email address, skipping", "attendee_id", identity.ID)
			continue
		}
		recipients.Attendees = append(recipients.Attendees, recipientFromIdentity(identity))
	}

	return session, recipients, nil
}
