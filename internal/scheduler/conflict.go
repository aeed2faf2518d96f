// Package scheduler holds pure scheduling arithmetic shared by the
// application services.
package scheduler

import "time"

// Interval is a committed block of an instructor's time.
type Interval struct {
	SessionID string
	Start     time.Time
	End       time.Time
}

// Conflict details an overlap between a planned interval and an existing one.
type Conflict struct {
	PlannedStart  time.Time
	WithSessionID string
}

// DetectConflicts reports which planned intervals overlap existing ones.
// Intervals are half-open: touching endpoints do not conflict. Results keep
// the planned order so callers can surface them next to the created rows.
func DetectConflicts(existing, planned []Interval) []Conflict {
	var conflicts []Conflict
	for _, p := range planned {
		for _, e := range existing {
			if p.SessionID != "" && p.SessionID == e.SessionID {
				continue
			}
			if overlaps(p, e) {
				conflicts = append(conflicts, Conflict{
					PlannedStart:  p.Start,
					WithSessionID: e.SessionID,
				})
			}
		}
	}
	return conflicts
}

func overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}
