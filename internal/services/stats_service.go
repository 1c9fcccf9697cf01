package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"paymonth/internal/cache"
	"paymonth/internal/calendar"
	"paymonth/internal/core"
)

type SummaryStore interface {
	SumPeriod(ctx context.Context, userID string, start, end time.Time) (core.PeriodSummary, error)
}

// StatsService computes period summaries, caching them per user and range
// until the user's transactions change.
type StatsService struct {
	store   SummaryStore
	periods *PeriodService
	cache   cache.Cache[core.PeriodSummary]
}

// NewStatsService wires the service; a nil cache disables caching.
func NewStatsService(store SummaryStore, periods *PeriodService, c cache.Cache[core.PeriodSummary]) *StatsService {
	return &StatsService{store: store, periods: periods, cache: c}
}

func summaryKey(userID string, start, end time.Time) string {
	return userID + "|" + calendar.FormatISO(start) + "|" + calendar.FormatISO(end)
}

func (s *StatsService) Summary(ctx context.Context, userID string, start, end time.Time) (core.PeriodSummary, error) {
	if start.After(end) {
		return core.PeriodSummary{}, core.ValidationErrors{"startDate": "startDate must not be after endDate"}
	}

	key := summaryKey(userID, start, end)
	if s.cache != nil {
		if sum, ok := s.cache.Get(key); ok {
			return sum, nil
		}
	}

	sum, err := s.store.SumPeriod(ctx, userID, start, end)
	if err != nil {
		return core.PeriodSummary{}, fmt.Errorf("sum period: %w", err)
	}

	if s.cache != nil {
		s.cache.Set(key, sum)
	}
	return sum, nil
}

// Compare summarizes the pay period containing anchor and the one before it.
func (s *StatsService) Compare(ctx context.Context, userID string, anchor time.Time) (core.PeriodComparison, error) {
	calc, salaryDay, err := s.periods.Calculator(ctx, userID)
	if err != nil {
		return core.PeriodComparison{}, err
	}
	current, err := calc.Get(anchor, salaryDay)
	if err != nil {
		return core.PeriodComparison{}, err
	}
	previous, err := calc.Previous(current, salaryDay)
	if err != nil {
		return core.PeriodComparison{}, err
	}

	var cur, prev core.PeriodSummary
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cur, err = s.Summary(gctx, userID, current.Start, current.End)
		return err
	})
	g.Go(func() error {
		var err error
		prev, err = s.Summary(gctx, userID, previous.Start, previous.End)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.PeriodComparison{}, err
	}

	return core.Compare(cur, prev), nil
}

// Invalidate drops every cached summary of userID.
func (s *StatsService) Invalidate(userID string) {
	if s.cache != nil {
		s.cache.DeletePrefix(userID + "|")
	}
}
