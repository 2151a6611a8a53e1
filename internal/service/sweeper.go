package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"communitybridge/common/logger"
	"communitybridge/internal/model"
	"communitybridge/internal/store"
)

const (
	sweepInterval = 30 * time.Minute
	staleAge      = 7 * 24 * time.Hour
)

// Sweeper closes out aging reports: anything created over a week ago that
// is not already solved is marked solved.
type Sweeper struct {
	reports store.IssueReportStore
}

func NewSweeper(reports store.IssueReportStore) *Sweeper {
	return &Sweeper{reports: reports}
}

// Run sweeps immediately and then on every tick until ctx is done.
func (s *Sweeper) Run(ctx context.Context) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "bridge.service.sweeper"})

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "sweeper started", "interval", sweepInterval, "stale_age", staleAge)

	for {
		if err := s.SweepOnce(ctx); err != nil {
			slog.ErrorContext(ctx, "sweep cycle failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// SweepOnce resolves every stale unresolved report. Individual update
// failures are logged and skipped; the next cycle retries them since they
// still match the stale query.
func (s *Sweeper) SweepOnce(ctx context.Context) error {
	before := time.Now().UTC().Add(-staleAge)

	stale, err := s.reports.ListStale(ctx, before)
	if err != nil {
		return fmt.Errorf("listing stale reports: %w", err)
	}
	if len(stale) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "resolving stale reports", "count", len(stale))

	for _, report := range stale {
		if err := s.reports.UpdateStatus(ctx, report.PageID, model.StatusSolved); err != nil {
			slog.ErrorContext(ctx, "resolving stale report failed",
				"record_id", report.ID, "error", err)
		}
	}
	return nil
}
