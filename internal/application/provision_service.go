package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/studio-scheduler/internal/meeting"
	"github.com/example/studio-scheduler/internal/metrics"
	"github.com/example/studio-scheduler/internal/persistence"
)

// MeetingCreator schedules a meeting with the external provider.
type MeetingCreator interface {
	CreateMeeting(ctx context.Context, input meeting.CreateMeetingInput) (meeting.Meeting, error)
}

// ProvisionService creates the provider meeting for a session and records the
// issued resource. Provisioning is write-once: a session that already owns a
// meeting is never provisioned again.
type ProvisionService struct {
	sessions   persistence.SessionRepository
	classTypes persistence.ClassTypeRepository
	meetings   MeetingCreator
	now        func() time.Time
	logger     *slog.Logger
}

// NewProvisionService wires dependencies for meeting provisioning.
func NewProvisionService(
	sessions persistence.SessionRepository,
	classTypes persistence.ClassTypeRepository,
	meetings MeetingCreator,
	now func() time.Time,
	logger *slog.Logger,
) *ProvisionService {
	if now == nil {
		now = time.Now
	}
	return &ProvisionService{
		sessions:   sessions,
		classTypes: classTypes,
		meetings:   meetings,
		now:        now,
		logger:     defaultLogger(logger),
	}
}

// Provision schedules a meeting for the session and writes the resource onto
// it. It returns ErrAlreadyProvisioned when the session already owns one,
// whether detected up front or by the guarded write; the updated session is
// returned on success.
func (s *ProvisionService) Provision(ctx context.Context, sessionID string) (persistence.Session, error) {
	logger := serviceLogger(ctx, s.logger, "provisioning", "provision", "session_id", sessionID)

	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.Session{}, ErrNotFound
		}
		return persistence.Session{}, err
	}
	if session.Provisioned() {
		logger.InfoContext(ctx, "session already provisioned", "meeting_id", *session.MeetingID)
		return session, ErrAlreadyProvisioned
	}

	start, err := SessionStartInstant(session)
	if err != nil {
		return persistence.Session{}, err
	}

	created, err := s.meetings.CreateMeeting(ctx, meeting.CreateMeetingInput{
		Topic:           s.meetingTopic(ctx, session),
		StartTime:       start,
		DurationMinutes: int(sessionDuration(session).Minutes()),
		Timezone:        session.Timezone,
	})
	if err != nil {
		metrics.ProvisionFailures.Inc()
		logger.ErrorContext(ctx, "provider meeting creation failed", "error", err, "error_kind", ErrorKind(err))
		return persistence.Session{}, fmt.Errorf("create meeting for session %s: %w", sessionID, err)
	}

	resource := persistence.MeetingResource{
		MeetingID:  created.ID,
		JoinURL:    created.JoinURL,
		HostURL:    created.HostURL,
		AccessCode: created.AccessCode,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.sessions.SetMeetingResource(ctx, sessionID, resource); err != nil {
		if errors.Is(err, persistence.ErrAlreadyProvisioned) {
			// A concurrent provision already won the write. The meeting
			// created here is now orphaned at the provider.
			logger.WarnContext(ctx, "lost provisioning race, meeting orphaned at provider",
				"meeting_id", created.ID)
			return persistence.Session{}, ErrAlreadyProvisioned
		}
		// The provider holds a meeting the database does not know about.
		// This needs manual reconciliation, so log it loudly with both ids.
		metrics.ProvisionFailures.Inc()
		logger.ErrorContext(ctx, "meeting created but persistence failed, reconciliation required",
			"meeting_id", created.ID, "join_url", created.JoinURL, "error", err)
		return persistence.Session{}, fmt.Errorf("record meeting %s on session %s: %w", created.ID, sessionID, err)
	}

	metrics.SessionsProvisioned.Inc()
	logger.InfoContext(ctx, "session provisioned", "meeting_id", created.ID)

	updated, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return persistence.Session{}, err
	}
	return updated, nil
}

// meetingTopic builds the provider-facing title. Catalog lookups are best
// effort; the session id is always enough to identify the meeting.
func (s *ProvisionService) meetingTopic(ctx context.Context, session persistence.Session) string {
	if s.classTypes != nil {
		if ct, err := s.classTypes.GetClassType(ctx, session.ClassTypeID); err == nil && ct.Label != "" {
			return fmt.Sprintf("%s %s %s", ct.Label, session.Date, session.StartTime)
		}
	}
	return fmt.Sprintf("Class session %s %s", session.Date, session.StartTime)
}
