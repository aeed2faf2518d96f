package testfixtures

import (
	"testing"
	"time"
)

func TestClockZeroStartUsesReferenceTime(t *testing.T) {
	clock := NewClock(time.Time{})
	if !clock.Now().Equal(ReferenceTime()) {
		t.Fatalf("expected ReferenceTime, got %v", clock.Now())
	}
}

func TestClockNowFuncTracksAdvances(t *testing.T) {
	start := time.Date(2026, time.September, 7, 19, 0, 0, 0, time.UTC)
	clock := NewClock(start)
	now := clock.NowFunc()

	if got := now(); !got.Equal(start) {
		t.Fatalf("expected %v, got %v", start, got)
	}

	moved := clock.Advance(12 * time.Hour)
	if !moved.Equal(start.Add(12 * time.Hour)) {
		t.Fatalf("advance returned %v", moved)
	}
	if got := now(); !got.Equal(moved) {
		t.Fatalf("injected func must see the advance, got %v", got)
	}

	pinned := start.AddDate(0, 0, 1)
	clock.Set(pinned)
	if got := now(); !got.Equal(pinned) {
		t.Fatalf("expected %v after Set, got %v", pinned, got)
	}
}

func TestClockNilDegradesToRealTime(t *testing.T) {
	var clock *Clock
	now := clock.NowFunc()
	if got := now(); time.Since(got) > time.Minute {
		t.Fatalf("nil clock should track real time, got %v", got)
	}
}
