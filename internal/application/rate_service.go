package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/example/studio-scheduler/internal/persistence"
)

// RateService resolves the most specific applicable price for a session
// assignment. "No applicable rate" is a valid outcome, not an error.
type RateService struct {
	rates  persistence.RateRepository
	now    func() time.Time
	logger *slog.Logger
}

// NewRateService wires dependencies for rate resolution.
func NewRateService(rates persistence.RateRepository, now func() time.Time, logger *slog.Logger) *RateService {
	if now == nil {
		now = time.Now
	}
	return &RateService{rates: rates, now: now, logger: defaultLogger(logger)}
}

// Resolve returns the single best-matching active rate, or nil when none
// applies. Candidates must match schedule type and category, be active, and
// have an effective window containing the as-of date. Specificity order:
// class-type match (no package), then package match (no class type), then
// fully generic. Within a tier the most recently created rate wins; that
// tie-break keeps resolution deterministic when administrative data contains
// overlapping generic rates.
func (s *RateService) Resolve(ctx context.Context, query RateQuery) (*persistence.Rate, error) {
	vErr := &ValidationError{}
	if query.ScheduleType == "" {
		vErr.add("schedule_type", "schedule type is required")
	}
	if query.Category == "" {
		vErr.add("category", "category is required")
	}
	if vErr.HasErrors() {
		return nil, vErr
	}

	asOf := query.AsOf
	if asOf.IsZero() {
		asOf = s.now()
	}

	logger := serviceLogger(ctx, s.logger, "rates", "resolve",
		"schedule_type", string(query.ScheduleType), "category", string(query.Category))

	candidates, err := s.rates.ListActiveRates(ctx, persistence.RateFilter{
		ScheduleType: query.ScheduleType,
		Category:     query.Category,
		AsOf:         asOf.Format(civilDateLayout),
	})
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		logger.DebugContext(ctx, "no active rates for selector")
		return nil, nil
	}

	tiers := []func(persistence.Rate) bool{
		func(r persistence.Rate) bool {
			return query.ClassTypeID != nil && r.ClassTypeID != nil &&
				*r.ClassTypeID == *query.ClassTypeID && r.PackageID == nil
		},
		func(r persistence.Rate) bool {
			return query.PackageID != nil && r.PackageID != nil &&
				*r.PackageID == *query.PackageID && r.ClassTypeID == nil
		},
		func(r persistence.Rate) bool {
			return r.ClassTypeID == nil && r.PackageID == nil
		},
	}

	for _, matches := range tiers {
		if rate := newestMatch(candidates, matches); rate != nil {
			logger.DebugContext(ctx, "rate resolved", "rate_id", rate.ID, "amount", rate.Amount)
			return rate, nil
		}
	}

	logger.DebugContext(ctx, "no rate matched any tier")
	return nil, nil
}

// newestMatch picks the most recently created candidate satisfying matches.
// The repository already orders newest first, but the tie-break is enforced
// here too so resolution does not depend on storage ordering.
func newestMatch(candidates []persistence.Rate, matches func(persistence.Rate) bool) *persistence.Rate {
	var best *persistence.Rate
	for i := range candidates {
		if !matches(candidates[i]) {
			continue
		}
		if best == nil || candidates[i].CreatedAt.After(best.CreatedAt) {
			best = &candidates[i]
		}
	}
	if best == nil {
		return nil
	}
	rate := *best
	return &rate
}
