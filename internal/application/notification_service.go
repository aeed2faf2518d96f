package application

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"sync"
	"time"

	retry "github.com/avast/retry-go"

	"github.com/example/studio-scheduler/internal/mail"
	"github.com/example/studio-scheduler/internal/metrics"
	"github.com/example/studio-scheduler/internal/persistence"
	"github.com/example/studio-scheduler/internal/tzone"
)

const (
	sendAttempts      = 2
	minRetryDelay     = 500 * time.Millisecond
	defaultRetryDelay = time.Second
)

// NotificationConfig carries the delivery identity and the operators alerted
// when a session has no resolvable instructor.
type NotificationConfig struct {
	From         string
	Stakeholders []string
}

// NotificationService delivers session notifications: one join message per
// attendee with the instructor CC'd and stakeholders BCC'd, a lone host
// message to the instructor when the session has no attendees, and a gap
// alert to stakeholders when the instructor could not be resolved. Sends run
// concurrently but every physical delivery passes the shared throttle first.
type NotificationService struct {
	recipients *RecipientService
	sender     mail.Sender
	throttle   *mail.Throttle
	cfg        NotificationConfig
	logger     *slog.Logger
}

// NewNotificationService wires dependencies for notification dispatch.
func NewNotificationService(
	recipients *RecipientService,
	sender mail.Sender,
	throttle *mail.Throttle,
	cfg NotificationConfig,
	logger *slog.Logger,
) *NotificationService {
	return &NotificationService{
		recipients: recipients,
		sender:     sender,
		throttle:   throttle,
		cfg:        cfg,
		logger:     defaultLogger(logger),
	}
}

// NotifySession resolves the session's recipients and dispatches one message
// per person. Each recipient is isolated: one failed delivery never blocks
// the others, and the report records every individual outcome.
func (s *NotificationService) NotifySession(ctx context.Context, sessionID string) (NotificationReport, error) {
	logger := serviceLogger(ctx, s.logger, "notifications", "notify_session", "session_id", sessionID)

	session, recipients, err := s.recipients.ForSession(ctx, sessionID)
	if err != nil {
		return NotificationReport{}, err
	}

	messages := s.buildMessages(session, recipients)
	if len(messages) == 0 {
		logger.WarnContext(ctx, "session has no one to notify")
		return NotificationReport{SessionID: sessionID}, nil
	}

	report := NotificationReport{
		SessionID: sessionID,
		Outcomes:  make([]NotificationOutcome, len(messages)),
	}

	var wg sync.WaitGroup
	for i, msg := range messages {
		wg.Add(1)
		go func(i int, msg mail.Message) {
			defer wg.Done()
			report.Outcomes[i] = s.deliver(ctx, logger, msg)
		}(i, msg)
	}
	wg.Wait()

	logger.InfoContext(ctx, "notification batch finished",
		"recipients", len(messages), "sent", report.Sent())
	return report, nil
}

// deliver pushes one message through the throttle and the sender, retrying
// once on rate limiting. Outcomes are recorded, never propagated: failures
// stay scoped to their recipient.
func (s *NotificationService) deliver(ctx context.Context, logger *slog.Logger, msg mail.Message) NotificationOutcome {
	outcome := NotificationOutcome{Recipient: msg.To[0]}

	var result mail.Result
	err := retry.Do(
		func() error {
			if err := s.throttle.Wait(ctx); err != nil {
				return retry.Unrecoverable(err)
			}
			start := time.Now()
			var sendErr error
			result, sendErr = s.sender.Send(ctx, msg)
			metrics.SendDuration.Observe(time.Since(start).Seconds())
			return sendErr
		},
		retry.Attempts(sendAttempts),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var sendErr *mail.SendError
			return errors.As(err, &sendErr) && sendErr.RateLimited
		}),
		retry.DelayType(func(n uint, err error, _ *retry.Config) time.Duration {
			var sendErr *mail.SendError
			if errors.As(err, &sendErr) && sendErr.RetryAfter > 0 {
				if sendErr.RetryAfter < minRetryDelay {
					return minRetryDelay
				}
				return sendErr.RetryAfter
			}
			return defaultRetryDelay * time.Duration(n+1)
		}),
	)
	if err != nil {
		outcome.Outcome = string(mail.OutcomeFailed)
		outcome.Detail = err.Error()
		metrics.NotificationsSent.WithLabelValues(outcome.Outcome).Inc()
		logger.ErrorContext(ctx, "notification delivery failed",
			"recipient", outcome.Recipient, "error", err, "error_kind", ErrorKind(err))
		return outcome
	}

	outcome.Outcome = string(result.Outcome)
	outcome.Detail = result.Detail
	metrics.NotificationsSent.WithLabelValues(outcome.Outcome).Inc()
	return outcome
}

// buildMessages renders the outbound batch with times localized to each
// recipient's stored preference, falling back to the session's zone.
// Attendees each get their own message carrying the instructor in CC and
// stakeholders in BCC. The instructor only gets a direct host message when
// no attendee is booked.
func (s *NotificationService) buildMessages(session persistence.Session, recipients SessionRecipients) []mail.Message {
	var messages []mail.Message

	switch {
	case len(recipients.Attendees) > 0:
		for _, attendee := range recipients.Attendees {
			messages = append(messages, s.attendeeMessage(session, attendee, recipients.Instructor))
		}
		if recipients.Instructor.Email == "" && len(s.cfg.Stakeholders) > 0 {
			messages = append(messages, s.gapAlert(session))
		}
	case recipients.Instructor.Email != "":
		messages = append(messages, s.instructorMessage(session, recipients.Instructor))
	case len(s.cfg.Stakeholders) > 0:
		messages = append(messages, s.gapAlert(session))
	}
	return messages
}

func (s *NotificationService) instructorMessage(session persistence.Session, instructor Recipient) mail.Message {
	when := localizedStart(session, instructor.Timezone)
	subject := fmt.Sprintf("You are hosting a class on %s", when)

	text := fmt.Sprintf("Hello %s,\n\nYour class starts at %s.\n", displayName(instructor), when)
	text += sessionDetails(session, instructor)
	if session.MeetingHostURL != nil {
		text += fmt.Sprintf("Start the meeting as host: %s\n", *session.MeetingHostURL)
	}
	if session.MeetingAccessCode != nil {
		text += fmt.Sprintf("Access code: %s\n", *session.MeetingAccessCode)
	}

	return mail.Message{
		From:    s.cfg.From,
		To:      []string{instructor.Email},
		Subject: subject,
		Text:    text,
		HTML:    textToHTML(text),
	}
}

func (s *NotificationService) attendeeMessage(session persistence.Session, attendee, instructor Recipient) mail.Message {
	when := localizedStart(session, attendee.Timezone)
	subject := fmt.Sprintf("Class reminder: %s", when)

	text := fmt.Sprintf("Hello %s,\n\nYour class starts at %s.\n", displayName(attendee), when)
	text += sessionDetails(session, instructor)
	if session.MeetingJoinURL != nil {
		text += fmt.Sprintf("Join the meeting: %s\n", *session.MeetingJoinURL)
	}
	if session.MeetingAccessCode != nil {
		text += fmt.Sprintf("Access code: %s\n", *session.MeetingAccessCode)
	}

	var cc []string
	if instructor.Email != "" {
		cc = []string{instructor.Email}
	}
	return mail.Message{
		From:    s.cfg.From,
		To:      []string{attendee.Email},
		CC:      cc,
		BCC:     s.cfg.Stakeholders,
		Subject: subject,
		Text:    text,
		HTML:    textToHTML(text),
	}
}

// sessionDetails renders the body lines shared by every variant: the booking
// identifier, who teaches it, and the meeting resource on record.
func sessionDetails(session persistence.Session, instructor Recipient) string {
	text := fmt.Sprintf("\nSession: %s\nInstructor: %s\n", session.ID, instructorLabel(session, instructor))
	if session.MeetingID != nil {
		text += fmt.Sprintf("Meeting id: %s\n", *session.MeetingID)
	}
	return text
}

// instructorLabel falls back to the stored instructor id when no identity
// resolved for the session.
func instructorLabel(session persistence.Session, instructor Recipient) string {
	switch {
	case instructor.DisplayName != "":
		return instructor.DisplayName
	case instructor.Email != "":
		return instructor.Email
	default:
		return session.InstructorID
	}
}

// gapAlert tells the operators a session is about to run with no reachable
// instructor so they can intervene before start time.
func (s *NotificationService) gapAlert(session persistence.Session) mail.Message {
	when := localizedStart(session, "")
	text := fmt.Sprintf(
		"Session %s starting at %s has no resolvable instructor.\nInstructor id on record: %s\n",
		session.ID, when, session.InstructorID)

	return mail.Message{
		From:    s.cfg.From,
		To:      s.cfg.Stakeholders,
		Subject: fmt.Sprintf("ACTION REQUIRED: session %s has no instructor", session.ID),
		Text:    text,
		HTML:    textToHTML(text),
	}
}

// localizedStart renders the session start in the recipient's preferred zone,
// falling back to the session's own zone when the preference is missing or
// unrecognized.
func localizedStart(session persistence.Session, preferred string) string {
	start, err := SessionStartInstant(session)
	if err != nil {
		return fmt.Sprintf("%s %s (%s)", session.Date, session.StartTime, session.Timezone)
	}

	if preferred != "" {
		if loc, ok := tzone.Resolve(preferred); ok {
			return start.In(loc).Format("Mon, 2 Jan 2006 15:04 MST")
		}
	}
	return start.Format("Mon, 2 Jan 2006 15:04 MST")
}

func displayName(r Recipient) string {
	if r.DisplayName != "" {
		return r.DisplayName
	}
	return r.Email
}

func textToHTML(text string) string {
	return "<html><body><pre>" + html.EscapeString(text) + "</pre></body></html>"
}
