package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/studio-scheduler/internal/persistence"
	"github.com/example/studio-scheduler/internal/persistence/sqlite"
)

// SQLiteHarness provides repository access backed by a temporary SQLite
// database for integration-style persistence tests.
type SQLiteHarness struct {
	Sessions   persistence.SessionRepository
	Rates      persistence.RateRepository
	ClassTypes persistence.ClassTypeRepository
	Identities persistence.IdentityRepository
	Bookings   persistence.BookingRepository
	Tokens     persistence.ProviderTokenRepository

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a SQLiteHarness over a temporary file that is
// migrated automatically. The optional clock stamps repository writes; nil
// uses the wall clock. Cleanup is registered with the provided testing.TB.
func NewSQLiteHarness(tb testing.TB, clock *Clock) *SQLiteHarness {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "scheduler.db")
	pool, err := sqlite.Open(path)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}
	if err := pool.Migrate(context.Background()); err != nil {
		_ = pool.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	now := clock.NowFunc()
	harness := &SQLiteHarness{
		Sessions:   sqlite.NewSessionRepository(pool, now),
		Rates:      sqlite.NewRateRepository(pool, now),
		ClassTypes: sqlite.NewCatalogRepository(pool, now),
		Identities: sqlite.NewIdentityRepository(pool, now),
		Bookings:   sqlite.NewBookingRepository(pool, now),
		Tokens:     sqlite.NewTokenRepository(pool, now),
		cleanup: func() {
			_ = pool.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}
