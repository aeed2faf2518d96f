package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/studio-scheduler/internal/persistence"
)

// RateRepository implements persistence.RateRepository using SQLite.
type RateRepository struct {
	pool *ConnectionPool
	now  func() time.Time
}

// NewRateRepository creates a SQLite rate repository.
func NewRateRepository(pool *ConnectionPool, now func() time.Time) *RateRepository {
	if now == nil {
		now = time.Now
	}
	return &RateRepository{pool: pool, now: now}
}

// CreateRate inserts a new rate row.
func (r *RateRepository) CreateRate(ctx context.Context, rate persistence.Rate) error {
	if rate.ID == "" {
		return fmt.Errorf("sqlite: rate id is required")
	}
	if rate.CreatedAt.IsZero() {
		rate.CreatedAt = r.now().UTC()
	}

	active := 0
	if rate.Active {
		active = 1
	}

	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO rates (id, schedule_type, category, class_type_id, package_id,
			amount, secondary_amount, effective_from, effective_until, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rate.ID,
		string(rate.ScheduleType),
		string(rate.Category),
		nullString(rate.ClassTypeID),
		nullString(rate.PackageID),
		rate.Amount,
		nullFloat(rate.SecondaryAmount),
		rate.EffectiveFrom,
		nullString(rate.EffectiveUntil),
		active,
		rate.CreatedAt.Format(time.RFC3339Nano),
	)
	return mapError(err)
}

// ListActiveRates returns active rates whose effective window contains the
// as-of date, newest created first. Civil dates sort lexicographically in the
// YYYY-MM-DD encoding, so window comparison happens in SQL.
func (r *RateRepository) ListActiveRates(ctx context.Context, filter persistence.RateFilter) ([]persistence.Rate, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT id, schedule_type, category, class_type_id, package_id,
			amount, secondary_amount, effective_from, effective_until, active, created_at
		FROM rates
		WHERE schedule_type = ? AND category = ? AND active = 1
			AND effective_from <= ?
			AND (effective_until IS NULL OR effective_until >= ?)
		ORDER BY created_at DESC, id DESC`,
		string(filter.ScheduleType),
		string(filter.Category),
		filter.AsOf,
		filter.AsOf,
	)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var rates []persistence.Rate
	for rows.Next() {
		var (
			rate            persistence.Rate
			scheduleType    string
			category        string
			classTypeID     sql.NullString
			packageID       sql.NullString
			secondaryAmount sql.NullFloat64
			effectiveUntil  sql.NullString
			active          int
			createdAt       string
		)
		if err := rows.Scan(
			&rate.ID,
			&scheduleType,
			&category,
			&classTypeID,
			&packageID,
			&rate.Amount,
			&secondaryAmount,
			&rate.EffectiveFrom,
			&effectiveUntil,
			&active,
			&createdAt,
		); err != nil {
			return nil, mapError(err)
		}

		rate.ScheduleType = persistence.ScheduleType(scheduleType)
		rate.Category = persistence.Category(category)
		rate.ClassTypeID = stringPtr(classTypeID)
		rate.PackageID = stringPtr(packageID)
		rate.SecondaryAmount = floatPtr(secondaryAmount)
		rate.EffectiveUntil = stringPtr(effectiveUntil)
		rate.Active = active != 0
		if rate.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("sqlite: parse rate created_at: %w", err)
		}

		rates = append(rates, rate)
	}
	return rates, mapError(rows.Err())
}
