package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/example/studio-scheduler/internal/application"
	"github.com/example/studio-scheduler/internal/persistence"
)

type provisionService interface {
	Provision(ctx context.Context, sessionID string) (persistence.Session, error)
}

type notificationService interface {
	NotifySession(ctx context.Context, sessionID string) (application.NotificationReport, error)
}

// SessionHandler serves per-session operations.
type SessionHandler struct {
	provisioner provisionService
	notifier    notificationService
	responder   responder
	logger      *slog.Logger
}

func NewSessionHandler(provisioner provisionService, notifier notificationService, logger *slog.Logger) *SessionHandler {
	base := defaultLogger(logger)
	return &SessionHandler{
		provisioner: provisioner,
		notifier:    notifier,
		responder:   newResponder(base),
		logger:      base,
	}
}

func (h *SessionHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "SessionHandler", operation, attrs...)
}

func (h *SessionHandler) Provision(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.provisioner == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	sessionID := strings.TrimSpace(mux.Vars(r)["id"])
	if sessionID == "" {
		h.log(r.Context(), "Provision", "error_kind", "bad_request").ErrorContext(r.Context(), "missing session id")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidSessionID)
		return
	}

	logger := h.log(r.Context(), "Provision", "session_id", sessionID)

	session, err := h.provisioner.Provision(r.Context(), sessionID)
	if err != nil {
		logger.ErrorContext(r.Context(), "session provisioning failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("meeting_id", deref(session.MeetingID)).InfoContext(r.Context(), "session provisioned")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, sessionResponse{Session: toSessionDTO(session)})
}

func (h *SessionHandler) Notify(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.notifier == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	sessionID := strings.TrimSpace(mux.Vars(r)["id"])
	if sessionID == "" {
		h.log(r.Context(), "Notify", "error_kind", "bad_request").ErrorContext(r.Context(), "missing session id")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidSessionID)
		return
	}

	logger := h.log(r.Context(), "Notify", "session_id", sessionID)

	report, err := h.notifier.NotifySession(r.Context(), sessionID)
	if err != nil {
		logger.ErrorContext(r.Context(), "session notification failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("sent", report.Sent()).InfoContext(r.Context(), "session notifications dispatched")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toNotificationReportDTO(report))
}

type sessionDTO struct {
	ID                string   `json:"id"`
	Date              string   `json:"date"`
	StartTime         string   `json:"start_time"`
	EndTime           string   `json:"end_time"`
	Timezone          string   `json:"timezone"`
	ClassTypeID       string   `json:"class_type_id"`
	InstructorID      string   `json:"instructor_id"`
	RateID            *string  `json:"rate_id,omitempty"`
	RateAmount        *float64 `json:"rate_amount,omitempty"`
	MeetingID         *string  `json:"meeting_id,omitempty"`
	MeetingJoinURL    *string  `json:"meeting_join_url,omitempty"`
	MeetingAccessCode *string  `json:"meeting_access_code,omitempty"`
	MeetingCreatedAt  *string  `json:"meeting_created_at,omitempty"`
}

type sessionResponse struct {
	Session sessionDTO `json:"session"`
}

func toSessionDTO(session persistence.Session) sessionDTO {
	dto := sessionDTO{
		ID:                session.ID,
		Date:              session.Date,
		StartTime:         session.StartTime,
		EndTime:           session.EndTime,
		Timezone:          session.Timezone,
		ClassTypeID:       session.ClassTypeID,
		InstructorID:      session.InstructorID,
		RateID:            session.RateID,
		RateAmount:        session.RateAmount,
		MeetingID:         session.MeetingID,
		MeetingJoinURL:    session.MeetingJoinURL,
		MeetingAccessCode: session.MeetingAccessCode,
	}
	if session.MeetingCreatedAt != nil {
		created := session.MeetingCreatedAt.Format(time.RFC3339)
		dto.MeetingCreatedAt = &created
	}
	return dto
}

type notificationOutcomeDTO struct {
	Recipient string `json:"recipient"`
	Outcome   string `json:"outcome"`
	Detail    string `json:"detail,omitempty"`
}

type notificationReportDTO struct {
	SessionID string                   `json:"session_id"`
	Sent      int                      `json:"sent"`
	Outcomes  []notificationOutcomeDTO `json:"outcomes"`
}

func toNotificationReportDTO(report application.NotificationReport) notificationReportDTO {
	dto := notificationReportDTO{
		SessionID: report.SessionID,
		Sent:      report.Sent(),
		Outcomes:  make([]notificationOutcomeDTO, 0, len(report.Outcomes)),
	}
	for _, o := range report.Outcomes {
		dto.Outcomes = append(dto.Outcomes, notificationOutcomeDTO{
			Recipient: o.Recipient,
			Outcome:   o.Outcome,
			Detail:    o.Detail,
		})
	}
	return dto
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
