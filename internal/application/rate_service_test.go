package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/studio-scheduler/internal/persistence"
)

type rateRepoStub struct {
	rates      []persistence.Rate
	lastFilter persistence.RateFilter
	err        error
}

func (s *rateRepoStub) CreateRate(ctx context.Context, rate persistence.Rate) error {
	s.rates = append(s.rates, rate)
	return nil
}

func (s *rateRepoStub) ListActiveRates(ctx context.Context, filter persistence.RateFilter) ([]persistence.Rate, error) {
	s.lastFilter = filter
	if s.err != nil {
		return nil, s.err
	}
	return s.rates, nil
}

func strPtr(v string) *string { return &v }

func TestRateServiceResolveValidation(t *testing.T) {
	service := NewRateService(&rateRepoStub{}, nil, nil)

	_, err := service.Resolve(context.Background(), RateQuery{})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	for _, field := range []string{"schedule_type", "category"} {
		if _, ok := vErr.FieldErrors[field]; !ok {
			t.Errorf("expected field error for %s", field)
		}
	}
}

func TestRateServiceResolvePriority(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	classRate := persistence.Rate{ID: "rate-class", ClassTypeID: strPtr("ct-1"), Amount: 90, CreatedAt: base}
	packageRate := persistence.Rate{ID: "rate-package", PackageID: strPtr("pkg-1"), Amount: 70, CreatedAt: base.Add(time.Minute)}
	genericOld := persistence.Rate{ID: "rate-generic-old", Amount: 50, CreatedAt: base.Add(-time.Hour)}
	genericNew := persistence.Rate{ID: "rate-generic-new", Amount: 55, CreatedAt: base.Add(2 * time.Minute)}

	tests := []struct {
		name       string
		candidates []persistence.Rate
		query      RateQuery
		wantID     string
		wantNil    bool
	}{
		{
			name:       "class type beats package and generic",
			candidates: []persistence.Rate{genericNew, packageRate, classRate},
			query:      RateQuery{ClassTypeID: strPtr("ct-1"), PackageID: strPtr("pkg-1")},
			wantID:     "rate-class",
		},
		{
			name:       "package beats generic when class type misses",
			candidates: []persistence.Rate{genericNew, packageRate, classRate},
			query:      RateQuery{ClassTypeID: strPtr("ct-other"), PackageID: strPtr("pkg-1")},
			wantID:     "rate-package",
		},
		{
			name:       "generic fallback picks newest",
			candidates: []persistence.Rate{genericOld, genericNew},
			query:      RateQuery{},
			wantID:     "rate-generic-new",
		},
		{
			name:       "scoped rates never match an unscoped query",
			candidates: []persistence.Rate{classRate, packageRate},
			query:      RateQuery{},
			wantNil:    true,
		},
		{
			name:       "no candidates",
			candidates: nil,
			query:      RateQuery{ClassTypeID: strPtr("ct-1")},
			wantNil:    true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			query := tc.query
			query.ScheduleType = persistence.ScheduleTypeWeekly
			query.Category = persistence.CategoryIndividual
			service := NewRateService(&rateRepoStub{rates: tc.candidates}, nil, nil)

			rate, err := service.Resolve(context.Background(), query)
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}
			if tc.wantNil {
				if rate != nil {
					t.Fatalf("expected no rate, got %s", rate.ID)
				}
				return
			}
			if rate == nil {
				t.Fatal("expected a rate, got nil")
			}
			if rate.ID != tc.wantID {
				t.Errorf("expected rate %s, got %s", tc.wantID, rate.ID)
			}
		})
	}
}

func TestRateServiceResolveAsOfDefaultsToToday(t *testing.T) {
	repo := &rateRepoStub{}
	now := func() time.Time { return time.Date(2026, 7, 14, 9, 30, 0, 0, time.UTC) }
	service := NewRateService(repo, now, nil)

	_, err := service.Resolve(context.Background(), RateQuery{
		ScheduleType: persistence.ScheduleTypeWeekly,
		Category:     persistence.CategoryCorporate,
	})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if repo.lastFilter.AsOf != "2026-07-14" {
		t.Errorf("expected as-of 2026-07-14, got %s", repo.lastFilter.AsOf)
	}
}

func TestRateServiceResolveRepositoryError(t *testing.T) {
	repoErr := errors.New("storage offline")
	service := NewRateService(&rateRepoStub{err: repoErr}, nil, nil)

	_, err := service.Resolve(context.Background(), RateQuery{
		ScheduleType: persistence.ScheduleTypeWeekly,
		Category:     persistence.CategoryIndividual,
	})
	if !errors.Is(err, repoErr) {
		t.Fatalf("expected repository error, got %v", err)
	}
}
