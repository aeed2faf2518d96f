package scheduler

import (
	"testing"
	"time"
)

func interval(id string, startHour, endHour int) Interval {
	day := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	return Interval{
		SessionID: id,
		Start:     day.Add(time.Duration(startHour) * time.Hour),
		End:       day.Add(time.Duration(endHour) * time.Hour),
	}
}

func TestDetectConflicts(t *testing.T) {
	tests := []struct {
		name     string
		existing []Interval
		planned  []Interval
		want     int
	}{
		{
			name:     "no overlap",
			existing: []Interval{interval("a", 9, 10)},
			planned:  []Interval{interval("", 10, 11)},
			want:     0,
		},
		{
			name:     "touching endpoints do not conflict",
			existing: []Interval{interval("a", 9, 10), interval("b", 11, 12)},
			planned:  []Interval{interval("", 10, 11)},
			want:     0,
		},
		{
			name:     "partial overlap",
			existing: []Interval{interval("a", 9, 11)},
			planned:  []Interval{interval("", 10, 12)},
			want:     1,
		},
		{
			name:     "containment",
			existing: []Interval{interval("a", 9, 13)},
			planned:  []Interval{interval("", 10, 11)},
			want:     1,
		},
		{
			name:     "multiple planned against one existing",
			existing: []Interval{interval("a", 9, 17)},
			planned:  []Interval{interval("", 10, 11), interval("", 12, 13)},
			want:     2,
		},
		{
			name:     "same session id ignored",
			existing: []Interval{interval("a", 9, 11)},
			planned:  []Interval{interval("a", 9, 11)},
			want:     0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := DetectConflicts(tc.existing, tc.planned)
			if len(got) != tc.want {
				t.Fatalf("expected %d conflicts, got %d: %+v", tc.want, len(got), got)
			}
		})
	}
}

func TestDetectConflictsNamesTheExistingSession(t *testing.T) {
	existing := []Interval{interval("sess-busy", 9, 11)}
	planned := []Interval{interval("", 10, 12)}

	conflicts := DetectConflicts(existing, planned)
	if len(conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(conflicts))
	}
	if conflicts[0].WithSessionID != "sess-busy" {
		t.Errorf("expected conflict with sess-busy, got %s", conflicts[0].WithSessionID)
	}
	if !conflicts[0].PlannedStart.Equal(planned[0].Start) {
		t.Errorf("expected planned start preserved, got %v", conflicts[0].PlannedStart)
	}
}
