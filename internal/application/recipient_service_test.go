package application

import (
	"context"
	"errors"
	"testing"

	"github.com/example/studio-scheduler/internal/persistence"
)

type sessionRepoStub struct {
	sessions map[string]persistence.Session
	listed   []persistence.Session
	listErr  error
	setErr   error
	setCalls []persistence.MeetingResource
}

func (s *sessionRepoStub) CreateSession(ctx context.Context, session persistence.Session) error {
	if s.sessions == nil {
		s.sessions = make(map[string]persistence.Session)
	}
	s.sessions[session.ID] = session
	return nil
}

func (s *sessionRepoStub) GetSession(ctx context.Context, id string) (persistence.Session, error) {
	session, ok := s.sessions[id]
	if !ok {
		return persistence.Session{}, persistence.ErrNotFound
	}
	return session, nil
}

func (s *sessionRepoStub) ListSessions(ctx context.Context, filter persistence.SessionFilter) ([]persistence.Session, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.listed, nil
}

func (s *sessionRepoStub) SetMeetingResource(ctx context.Context, sessionID string, resource persistence.MeetingResource) error {
	if s.setErr != nil {
		return s.setErr
	}
	session, ok := s.sessions[sessionID]
	if !ok {
		return persistence.ErrNotFound
	}
	if session.Provisioned() {
		return persistence.ErrAlreadyProvisioned
	}
	session.MeetingID = &resource.MeetingID
	session.MeetingJoinURL = &resource.JoinURL
	session.MeetingHostURL = &resource.HostURL
	session.MeetingAccessCode = &resource.AccessCode
	s.sessions[sessionID] = session
	s.setCalls = append(s.setCalls, resource)
	return nil
}

func (s *sessionRepoStub) ClearMeetingResource(ctx context.Context, sessionID string) error {
	session, ok := s.sessions[sessionID]
	if !ok {
		return persistence.ErrNotFound
	}
	session.MeetingID = nil
	session.MeetingJoinURL = nil
	session.MeetingHostURL = nil
	session.MeetingAccessCode = nil
	s.sessions[sessionID] = session
	return nil
}

type bookingRepoStub struct {
	bookings []persistence.Booking
	err      error
}

func (s *bookingRepoStub) CreateBooking(ctx context.Context, booking persistence.Booking) error {
	s.bookings = append(s.bookings, booking)
	return nil
}

func (s *bookingRepoStub) ListBookingsForSession(ctx context.Context, sessionID string) ([]persistence.Booking, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []persistence.Booking
	for _, b := range s.bookings {
		if b.SessionID == sessionID {
			out = append(out, b)
		}
	}
	return out, nil
}

type identityRepoStub struct {
	identities map[string]persistence.Identity
	profiles   map[string]persistence.InstructorProfile
}

func (s *identityRepoStub) CreateIdentity(ctx context.Context, identity persistence.Identity) error {
	if s.identities == nil {
		s.identities = make(map[string]persistence.Identity)
	}
	s.identities[identity.ID] = identity
	return nil
}

func (s *identityRepoStub) GetIdentity(ctx context.Context, id string) (persistence.Identity, error) {
	identity, ok := s.identities[id]
	if !ok {
		return persistence.Identity{}, persistence.ErrNotFound
	}
	return identity, nil
}

func (s *identityRepoStub) GetIdentityByEmail(ctx context.Context, email string) (persistence.Identity, error) {
	for _, identity := range s.identities {
		if identity.Email == email {
			return identity, nil
		}
	}
	return persistence.Identity{}, persistence.ErrNotFound
}

func (s *identityRepoStub) CreateInstructorProfile(ctx context.Context, profile persistence.InstructorProfile) error {
	if s.profiles == nil {
		s.profiles = make(map[string]persistence.InstructorProfile)
	}
	s.profiles[profile.IdentityID] = profile
	return nil
}

func (s *identityRepoStub) GetInstructorProfile(ctx context.Context, identityID string) (persistence.InstructorProfile, error) {
	profile, ok := s.profiles[identityID]
	if !ok {
		return persistence.InstructorProfile{}, persistence.ErrNotFound
	}
	return profile, nil
}

func newRecipientFixture() (*sessionRepoStub, *bookingRepoStub, *identityRepoStub, *RecipientService) {
	tz := "Asia/Tokyo"
	sessions := &sessionRepoStub{sessions: map[string]persistence.Session{
		"sess-1": {
			ID: "sess-1", Date: "2026-09-07", StartTime: "10:00", EndTime: "11:00",
			Timezone: "Asia/Tokyo", ClassTypeID: "ct-1", InstructorID: "inst-1",
		},
	}}
	bookings := &bookingRepoStub{bookings: []persistence.Booking{
		{ID: "bk-1", SessionID: "sess-1", AttendeeID: "att-1"},
		{ID: "bk-2", SessionID: "sess-1", AttendeeID: "att-2"},
	}}
	identities := &identityRepoStub{
		identities: map[string]persistence.Identity{
			"inst-1": {ID: "inst-1", Email: "sensei@example.com", DisplayName: "Sensei", Timezone: &tz},
			"att-1":  {ID: "att-1", Email: "learner@example.com", DisplayName: "Learner"},
			"att-2":  {ID: "att-2", DisplayName: "No Mail"},
		},
	}
	service := NewRecipientService(sessions, bookings, identities,
		NewInstructorResolver(identities, discardLogger()), discardLogger())
	return sessions, bookings, identities, service
}

func TestRecipientServiceForSession(t *testing.T) {
	_, _, _, service := newRecipientFixture()

	session, recipients, err := service.ForSession(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("ForSession failed: %v", err)
	}
	if session.ID != "sess-1" {
		t.Errorf("expected session sess-1, got %s", session.ID)
	}
	if recipients.Instructor.Email != "sensei@example.com" {
		t.Errorf("expected instructor email, got %q", recipients.Instructor.Email)
	}
	if recipients.Instructor.Timezone != "Asia/Tokyo" {
		t.Errorf("expected instructor timezone preserved, got %q", recipients.Instructor.Timezone)
	}
	if len(recipients.Attendees) != 1 {
		t.Fatalf("expected 1 attendee (email-less one skipped), got %d", len(recipients.Attendees))
	}
	if recipients.Attendees[0].Email != "learner@example.com" {
		t.Errorf("unexpected attendee %q", recipients.Attendees[0].Email)
	}
}

func TestRecipientServiceInstructorFallsBackToProfile(t *testing.T) {
	_, _, identities, service := newRecipientFixture()
	delete(identities.identities, "inst-1")
	identities.profiles = map[string]persistence.InstructorProfile{
		"inst-1": {ID: "prof-1", IdentityID: "inst-1", Email: "fallback@example.com", DisplayName: "Fallback Sensei"},
	}

	_, recipients, err := service.ForSession(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("ForSession failed: %v", err)
	}
	if recipients.Instructor.Email != "fallback@example.com" {
		t.Errorf("expected profile fallback email, got %q", recipients.Instructor.Email)
	}
}

func TestRecipientServiceMissingInstructorIsNotFatal(t *testing.T) {
	_, _, identities, service := newRecipientFixture()
	delete(identities.identities, "inst-1")

	_, recipients, err := service.ForSession(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("expected success with instructor gap, got %v", err)
	}
	if recipients.Instructor.Email != "" {
		t.Errorf("expected zero-valued instructor, got %+v", recipients.Instructor)
	}
	if len(recipients.Attendees) != 1 {
		t.Errorf("attendee resolution should survive the gap, got %d attendees", len(recipients.Attendees))
	}
}

func TestRecipientServiceUnknownSession(t *testing.T) {
	_, _, _, service := newRecipientFixture()

	_, _, err := service.ForSession(context.Background(), "sess-missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRecipientServiceSkipsUnknownAttendee(t *testing.T) {
	_, bookings, _, service := newRecipientFixture()
	bookings.bookings = append(bookings.bookings, persistence.Booking{
		ID: "bk-3", SessionID: "sess-1", AttendeeID: "att-ghost",
	})

	_, recipients, err := service.ForSession(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("ForSession failed: %v", err)
	}
	if len(recipients.Attendees) != 1 {
		t.Errorf("ghost booking should be skipped, got %d attendees", len(recipients.Attendees))
	}
}
