package application

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/example/studio-scheduler/internal/persistence"
)

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func weeklyParams() MaterializeWeeklyParams {
	return MaterializeWeeklyParams{
		StartDate:    time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), // Tuesday
		Weekday:      time.Tuesday,
		EndDate:      timePtr(time.Date(2026, 9, 22, 0, 0, 0, 0, time.UTC)),
		StartTime:    "10:00",
		EndTime:      "11:00",
		Timezone:     "Asia/Tokyo",
		ClassTypeID:  "ct-1",
		InstructorID: "inst-1",
		ScheduleType: persistence.ScheduleTypeWeekly,
		Category:     persistence.CategoryIndividual,
	}
}

func timePtr(t time.Time) *time.Time { return &t }

func TestScheduleServiceMaterializeWeekly(t *testing.T) {
	sessions := &sessionRepoStub{sessions: map[string]persistence.Session{}}
	rateRepo := &rateRepoStub{rates: []persistence.Rate{
		{ID: "rate-1", ClassTypeID: strPtr("ct-1"), Amount: 80, CreatedAt: time.Now()},
	}}
	now := func() time.Time { return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC) }
	service := NewScheduleService(sessions, NewRateService(rateRepo, now, nil),
		sequentialIDs("sess"), now, discardLogger())

	result, err := service.MaterializeWeekly(context.Background(), weeklyParams())
	if err != nil {
		t.Fatalf("MaterializeWeekly failed: %v", err)
	}
	if len(result.SessionIDs) != 4 {
		t.Fatalf("expected 4 Tuesdays in range, got %d", len(result.SessionIDs))
	}
	if result.Rate == nil || result.Rate.ID != "rate-1" {
		t.Fatalf("expected rate-1 resolved, got %+v", result.Rate)
	}
	if rateRepo.lastFilter.AsOf != "2026-09-01" {
		t.Errorf("rate should be resolved as of first occurrence, got %s", rateRepo.lastFilter.AsOf)
	}

	first := sessions.sessions["sess-1"]
	if first.Date != "2026-09-01" {
		t.Errorf("expected first session on 2026-09-01, got %s", first.Date)
	}
	if first.RateID == nil || *first.RateID != "rate-1" {
		t.Errorf("expected rate stamped onto session, got %v", first.RateID)
	}
	if first.RateAmount == nil || *first.RateAmount != 80 {
		t.Errorf("expected rate amount 80, got %v", first.RateAmount)
	}
	last := sessions.sessions["sess-4"]
	if last.Date != "2026-09-22" {
		t.Errorf("expected last session on 2026-09-22, got %s", last.Date)
	}
}

func TestScheduleServiceMaterializeWeeklyUnpriced(t *testing.T) {
	sessions := &sessionRepoStub{sessions: map[string]persistence.Session{}}
	now := func() time.Time { return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC) }
	service := NewScheduleService(sessions, NewRateService(&rateRepoStub{}, now, nil),
		sequentialIDs("sess"), now, discardLogger())

	result, err := service.MaterializeWeekly(context.Background(), weeklyParams())
	if err != nil {
		t.Fatalf("MaterializeWeekly failed: %v", err)
	}
	if result.Rate != nil {
		t.Fatalf("expected no rate, got %+v", result.Rate)
	}
	if len(result.SessionIDs) != 4 {
		t.Fatalf("sessions must be created even without a rate, got %d", len(result.SessionIDs))
	}
	if sessions.sessions["sess-1"].RateID != nil {
		t.Error("unpriced session should have nil rate id")
	}
}

func TestScheduleServiceMaterializeWeeklyReportsConflicts(t *testing.T) {
	existing := persistence.Session{
		ID: "sess-busy", Date: "2026-09-08", StartTime: "10:30", EndTime: "11:30",
		Timezone: "Asia/Tokyo", ClassTypeID: "ct-2", InstructorID: "inst-1",
	}
	sessions := &sessionRepoStub{
		sessions: map[string]persistence.Session{existing.ID: existing},
		listed:   []persistence.Session{existing},
	}
	now := func() time.Time { return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC) }
	service := NewScheduleService(sessions, NewRateService(&rateRepoStub{}, now, nil),
		sequentialIDs("sess"), now, discardLogger())

	result, err := service.MaterializeWeekly(context.Background(), weeklyParams())
	if err != nil {
		t.Fatalf("MaterializeWeekly failed: %v", err)
	}
	if len(result.Conflicts) != 1 {
		t.Fatalf("expected 1 conflict with the existing 10:30 session, got %d", len(result.Conflicts))
	}
	if result.Conflicts[0].WithSessionID != "sess-busy" {
		t.Errorf("expected conflict with sess-busy, got %s", result.Conflicts[0].WithSessionID)
	}
	// Conflicts warn, they do not block creation.
	if len(result.SessionIDs) != 4 {
		t.Errorf("conflicting occurrences must still be created, got %d sessions", len(result.SessionIDs))
	}
}

func TestScheduleServiceMaterializeWeeklyValidation(t *testing.T) {
	service := NewScheduleService(&sessionRepoStub{}, nil, sequentialIDs("sess"), nil, discardLogger())

	params := weeklyParams()
	params.ClassTypeID = ""
	params.StartTime = "25:99"
	params.Timezone = "Not/AZone"

	_, err := service.MaterializeWeekly(context.Background(), params)
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	for _, field := range []string{"class_type_id", "start_time", "timezone"} {
		if _, ok := vErr.FieldErrors[field]; !ok {
			t.Errorf("expected field error for %s", field)
		}
	}
}

func TestScheduleServiceMaterializeWeeklyEmptyRange(t *testing.T) {
	sessions := &sessionRepoStub{sessions: map[string]persistence.Session{}}
	now := func() time.Time { return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC) }
	service := NewScheduleService(sessions, NewRateService(&rateRepoStub{}, now, nil),
		sequentialIDs("sess"), now, discardLogger())

	params := weeklyParams()
	// No Friday between Tue 2026-09-01 and Thu 2026-09-03.
	params.Weekday = time.Friday
	params.EndDate = timePtr(time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC))

	result, err := service.MaterializeWeekly(context.Background(), params)
	if err != nil {
		t.Fatalf("MaterializeWeekly failed: %v", err)
	}
	if len(result.SessionIDs) != 0 {
		t.Fatalf("expected no sessions, got %d", len(result.SessionIDs))
	}
	if len(sessions.sessions) != 0 {
		t.Error("no rows should have been written")
	}
}
