package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/studio-scheduler/internal/persistence"
	"github.com/example/studio-scheduler/internal/recurrence"
	"github.com/example/studio-scheduler/internal/scheduler"
	"github.com/example/studio-scheduler/internal/tzone"
)

// ScheduleService expands recurring weekly schedules into concrete session
// rows, resolving the applicable rate once per schedule.
type ScheduleService struct {
	sessions persistence.SessionRepository
	rates    *RateService
	newID    func() string
	now      func() time.Time
	logger   *slog.Logger
}

// NewScheduleService wires dependencies for schedule materialization.
func NewScheduleService(
	sessions persistence.SessionRepository,
	rates *RateService,
	newID func() string,
	now func() time.Time,
	logger *slog.Logger,
) *ScheduleService {
	if now == nil {
		now = time.Now
	}
	return &ScheduleService{
		sessions: sessions,
		rates:    rates,
		newID:    newID,
		now:      now,
		logger:   defaultLogger(logger),
	}
}

// MaterializeWeekly generates one session row per occurrence of the weekly
// pattern. The rate is resolved once, as of the first occurrence, and stamped
// onto every created session; sessions are still created when no rate applies.
func (s *ScheduleService) MaterializeWeekly(ctx context.Context, params MaterializeWeeklyParams) (MaterializeWeeklyResult, error) {
	if err := validateMaterializeParams(params); err != nil {
		return MaterializeWeeklyResult{}, err
	}

	logger := serviceLogger(ctx, s.logger, "schedules", "materialize_weekly",
		"class_type_id", params.ClassTypeID, "weekday", params.Weekday.String())

	dates, err := recurrence.WeeklyDates(params.StartDate, params.Weekday, params.EndDate)
	if err != nil {
		return MaterializeWeeklyResult{}, err
	}
	if len(dates) == 0 {
		logger.InfoContext(ctx, "weekly pattern yields no occurrences")
		return MaterializeWeeklyResult{}, nil
	}

	var rate *persistence.Rate
	if s.rates != nil {
		rate, err = s.rates.Resolve(ctx, RateQuery{
			ScheduleType: params.ScheduleType,
			Category:     params.Category,
			ClassTypeID:  &params.ClassTypeID,
			PackageID:    params.PackageID,
			AsOf:         dates[0],
		})
		if err != nil {
			return MaterializeWeeklyResult{}, err
		}
		if rate == nil {
			logger.InfoContext(ctx, "no applicable rate, sessions created unpriced")
		}
	}

	result := MaterializeWeeklyResult{Dates: dates, Rate: rate}
	now := s.now().UTC()
	planned := make([]persistence.Session, 0, len(dates))
	for _, date := range dates {
		session := persistence.Session{
			ID:           s.newID(),
			Date:         date.Format(civilDateLayout),
			StartTime:    params.StartTime,
			EndTime:      params.EndTime,
			Timezone:     params.Timezone,
			ClassTypeID:  params.ClassTypeID,
			InstructorID: params.InstructorID,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if rate != nil {
			session.RateID = &rate.ID
			amount := rate.Amount
			session.RateAmount = &amount
		}
		planned = append(planned, session)
	}

	conflicts, err := s.instructorConflicts(ctx, params, planned)
	if err != nil {
		return MaterializeWeeklyResult{}, err
	}
	result.Conflicts = conflicts
	if len(conflicts) > 0 {
		logger.WarnContext(ctx, "weekly pattern double-books the instructor", "conflicts", len(conflicts))
	}

	for _, session := range planned {
		if err := s.sessions.CreateSession(ctx, session); err != nil {
			return MaterializeWeeklyResult{}, fmt.Errorf("create session for %s: %w", session.Date, err)
		}
		result.SessionIDs = append(result.SessionIDs, session.ID)
	}

	logger.InfoContext(ctx, "weekly schedule materialized", "sessions", len(result.SessionIDs))
	return result, nil
}

// instructorConflicts checks the planned occurrences against the instructor's
// existing sessions in the same date range. Sessions with unreadable
// schedules are skipped rather than failing the whole expansion.
func (s *ScheduleService) instructorConflicts(ctx context.Context, params MaterializeWeeklyParams, planned []persistence.Session) ([]scheduler.Conflict, error) {
	if len(planned) == 0 {
		return nil, nil
	}

	existing, err := s.sessions.ListSessions(ctx, persistence.SessionFilter{
		DateFrom:     planned[0].Date,
		DateUntil:    planned[len(planned)-1].Date,
		InstructorID: params.InstructorID,
	})
	if err != nil {
		return nil, fmt.Errorf("list instructor sessions: %w", err)
	}

	existingIntervals := make([]scheduler.Interval, 0, len(existing))
	for _, session := range existing {
		interval, err := sessionInterval(session)
		if err != nil {
			continue
		}
		existingIntervals = append(existingIntervals, interval)
	}
	plannedIntervals := make([]scheduler.Interval, 0, len(planned))
	for _, session := range planned {
		interval, err := sessionInterval(session)
		if err != nil {
			continue
		}
		plannedIntervals = append(plannedIntervals, interval)
	}

	return scheduler.DetectConflicts(existingIntervals, plannedIntervals), nil
}

func validateMaterializeParams(params MaterializeWeeklyParams) error {
	vErr := &ValidationError{}
	if params.StartDate.IsZero() {
		vErr.add("start_date", "start date is required")
	}
	if params.ClassTypeID == "" {
		vErr.add("class_type_id", "class type is required")
	}
	if params.InstructorID == "" {
		vErr.add("instructor_id", "instructor is required")
	}
	if params.ScheduleType == "" {
		vErr.add("schedule_type", "schedule type is required")
	}
	if params.Category == "" {
		vErr.add("category", "category is required")
	}
	if _, err := time.Parse(timeOfDayLayout, params.StartTime); err != nil {
		vErr.add("start_time", "start time must be HH:MM")
	}
	if _, err := time.Parse(timeOfDayLayout, params.EndTime); err != nil {
		vErr.add("end_time", "end time must be HH:MM")
	}
	if params.Timezone != "" {
		if _, ok := tzone.Resolve(params.Timezone); !ok {
			vErr.add("timezone", "unrecognized timezone label")
		}
	}
	if vErr.HasErrors() {
		return vErr
	}
	return nil
}
