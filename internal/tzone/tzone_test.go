package tzone

import (
	"testing"
	"time"
)

func TestResolve_IANANames(t *testing.T) {
	loc, ok := Resolve("Asia/Kolkata")
	if !ok {
		t.Fatal("expected Asia/Kolkata to resolve")
	}

	ref := time.Date(2026, time.March, 10, 9, 0, 0, 0, loc)
	_, offset := ref.Zone()
	if offset != 5*3600+1800 {
		t.Errorf("expected +05:30 offset, got %d seconds", offset)
	}
}

func TestResolve_LegacyOffsets(t *testing.T) {
	cases := []struct {
		label   string
		minutes int
	}{
		{"UTC+05:30", 330},
		{"GMT-7", -420},
		{"+09:00", 540},
		{"UTC-03:30", -210},
		{"utc+2", 120},
	}

	for _, tc := range cases {
		t.Run(tc.label, func(t *testing.T) {
			minutes, ok := ParseFixedOffset(tc.label)
			if !ok {
				t.Fatalf("expected %q to parse", tc.label)
			}
			if minutes != tc.minutes {
				t.Errorf("expected %d minutes, got %d", tc.minutes, minutes)
			}

			loc, ok := Resolve(tc.label)
			if !ok {
				t.Fatalf("expected %q to resolve", tc.label)
			}
			_, offset := time.Date(2026, time.January, 1, 0, 0, 0, 0, loc).Zone()
			if offset != tc.minutes*60 {
				t.Errorf("expected %d seconds, got %d", tc.minutes*60, offset)
			}
		})
	}
}

func TestResolve_Unrecognized(t *testing.T) {
	for _, label := range []string{"", "Mars/Olympus", "UTC+", "GMT+25", "+5:99", "noon"} {
		if _, ok := Resolve(label); ok {
			t.Errorf("expected %q to be rejected", label)
		}
	}
}
