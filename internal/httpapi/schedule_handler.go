package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/studio-scheduler/internal/application"
	"github.com/example/studio-scheduler/internal/persistence"
)

type scheduleService interface {
	MaterializeWeekly(ctx context.Context, params application.MaterializeWeeklyParams) (application.MaterializeWeeklyResult, error)
}

// ScheduleHandler serves schedule materialization.
type ScheduleHandler struct {
	schedules scheduleService
	responder responder
	logger    *slog.Logger
}

func NewScheduleHandler(schedules scheduleService, logger *slog.Logger) *ScheduleHandler {
	base := defaultLogger(logger)
	return &ScheduleHandler{schedules: schedules, responder: newResponder(base), logger: base}
}

func (h *ScheduleHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ScheduleHandler", operation, attrs...)
}

func (h *ScheduleHandler) MaterializeWeekly(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.schedules == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req weeklyScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "MaterializeWeekly", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode schedule request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	params, err := req.toParams()
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger := h.log(r.Context(), "MaterializeWeekly", "class_type_id", params.ClassTypeID)

	result, err := h.schedules.MaterializeWeekly(r.Context(), params)
	if err != nil {
		logger.ErrorContext(r.Context(), "schedule materialization failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("sessions", len(result.SessionIDs)).InfoContext(r.Context(), "weekly schedule materialized")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toWeeklyScheduleDTO(result))
}

type weeklyScheduleRequest struct {
	StartDate    string  `json:"start_date"`
	Weekday      string  `json:"weekday"`
	EndDate      *string `json:"end_date,omitempty"`
	StartTime    string  `json:"start_time"`
	EndTime      string  `json:"end_time"`
	Timezone     string  `json:"timezone"`
	ClassTypeID  string  `json:"class_type_id"`
	InstructorID string  `json:"instructor_id"`
	ScheduleType string  `json:"schedule_type"`
	Category     string  `json:"category"`
	PackageID    *string `json:"package_id,omitempty"`
}

func (r weeklyScheduleRequest) toParams() (application.MaterializeWeeklyParams, error) {
	vErr := &application.ValidationError{FieldErrors: map[string]string{}}

	start, err := time.Parse("2006-01-02", r.StartDate)
	if err != nil {
		vErr.FieldErrors["start_date"] = "start date must be YYYY-MM-DD"
	}

	weekday, ok := parseWeekday(r.Weekday)
	if !ok {
		vErr.FieldErrors["weekday"] = "unrecognized weekday name"
	}

	var end *time.Time
	if r.EndDate != nil {
		parsed, err := time.Parse("2006-01-02", *r.EndDate)
		if err != nil {
			vErr.FieldErrors["end_date"] = "end date must be YYYY-MM-DD"
		} else {
			end = &parsed
		}
	}

	if len(vErr.FieldErrors) > 0 {
		return application.MaterializeWeeklyParams{}, vErr
	}

	return application.MaterializeWeeklyParams{
		StartDate:    start,
		Weekday:      weekday,
		EndDate:      end,
		StartTime:    r.StartTime,
		EndTime:      r.EndTime,
		Timezone:     r.Timezone,
		ClassTypeID:  r.ClassTypeID,
		InstructorID: r.InstructorID,
		ScheduleType: persistence.ScheduleType(r.ScheduleType),
		Category:     persistence.Category(r.Category),
		PackageID:    r.PackageID,
	}, nil
}

func parseWeekday(name string) (time.Weekday, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sunday":
		return time.Sunday, true
	case "monday":
		return time.Monday, true
	case "tuesday":
		return time.Tuesday, true
	case "wednesday":
		return time.Wednesday, true
	case "thursday":
		return time.Thursday, true
	case "friday":
		return time.Friday, true
	case "saturday":
		return time.Saturday, true
	}
	return time.Sunday, false
}

type weeklyScheduleDTO struct {
	SessionIDs []string      `json:"session_ids"`
	Dates      []string      `json:"dates"`
	RateID     *string       `json:"rate_id,omitempty"`
	RateAmount *float64      `json:"rate_amount,omitempty"`
	Conflicts  []conflictDTO `json:"conflicts,omitempty"`
}

type conflictDTO struct {
	PlannedStart  string `json:"planned_start"`
	WithSessionID string `json:"with_session_id"`
}

func toWeeklyScheduleDTO(result application.MaterializeWeeklyResult) weeklyScheduleDTO {
	dto := weeklyScheduleDTO{SessionIDs: result.SessionIDs}
	for _, date := range result.Dates {
		dto.Dates = append(dto.Dates, date.Format("2006-01-02"))
	}
	if result.Rate != nil {
		id := result.Rate.ID
		amount := result.Rate.Amount
		dto.RateID = &id
		dto.RateAmount = &amount
	}
	for _, c := range result.Conflicts {
		dto.Conflicts = append(dto.Conflicts, conflictDTO{
			PlannedStart:  c.PlannedStart.Format(time.RFC3339),
			WithSessionID: c.WithSessionID,
		})
	}
	return dto
}
