package mail

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"
)

func TestThrottle_AdmitsUpToLimitImmediately(t *testing.T) {
	throttle := NewThrottle(2, time.Second, nil)
	ctx := context.Background()

	start := time.Now()
	if err := throttle.Wait(ctx); err != nil {
		t.Fatalf("first Wait: %v", err)
	}
	if err := throttle.Wait(ctx); err != nil {
		t.Fatalf("second Wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("first two admissions should be immediate, took %s", elapsed)
	}
}

func TestThrottle_RollingWindowCap(t *testing.T) {
	const (
		limit   = 2
		window  = 200 * time.Millisecond
		callers = 10
	)
	throttle := NewThrottle(limit, window, nil)

	var (
		mu         sync.Mutex
		admissions []time.Time
		wg         sync.WaitGroup
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := throttle.Wait(context.Background()); err != nil {
				t.Errorf("Wait: %v", err)
				return
			}
			mu.Lock()
			admissions = append(admissions, time.Now())
			mu.Unlock()
		}()
	}
	wg.Wait()

	sort.Slice(admissions, func(i, j int) bool { return admissions[i].Before(admissions[j]) })
	if len(admissions) != callers {
		t.Fatalf("expected %d admissions, got %d", callers, len(admissions))
	}

	// No window-sized span may contain more than limit admissions: the k-th
	// and (k+limit)-th admissions must be at least a window apart. A small
	// epsilon absorbs timestamping jitter around the timer fire.
	const epsilon = 15 * time.Millisecond
	for i := 0; i+limit < len(admissions); i++ {
		gap := admissions[i+limit].Sub(admissions[i])
		if gap < window-epsilon {
			t.Errorf("admissions %d and %d only %s apart (window %s)", i, i+limit, gap, window)
		}
	}
}

func TestThrottle_WaitHonorsContextCancellation(t *testing.T) {
	throttle := NewThrottle(1, time.Minute, nil)
	if err := throttle.Wait(context.Background()); err != nil {
		t.Fatalf("priming Wait: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := throttle.Wait(ctx); err != context.DeadlineExceeded {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}
}
