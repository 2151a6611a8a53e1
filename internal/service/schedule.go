package service

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"communitybridge/common/logger"
)

// Scheduler fires each report kind at its wall-clock time: night at 04:00
// and day at 17:00 daily (local time), weekly on Monday 17:00, monthly on
// the 1st at 17:00.
type Scheduler struct {
	reporter *Reporter
	now      func() time.Time
}

func NewScheduler(reporter *Reporter) *Scheduler {
	return &Scheduler{reporter: reporter, now: time.Now}
}

// Run sends an immediate night and day snapshot, then fires every kind on
// its schedule until ctx is done. Delivery failures are logged; the loop
// always refires at the next scheduled time.
func (s *Scheduler) Run(ctx context.Context) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "bridge.service.reports"})

	for _, kind := range []ReportKind{ReportNight, ReportDay} {
		if err := s.reporter.Send(ctx, kind); err != nil {
			slog.ErrorContext(ctx, "startup report failed", "kind", kind, "error", err)
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, kind := range []ReportKind{ReportNight, ReportDay, ReportWeekly, ReportMonthly} {
		g.Go(func() error { return s.loop(ctx, kind) })
	}
	return g.Wait()
}

func (s *Scheduler) loop(ctx context.Context, kind ReportKind) error {
	for {
		next := nextFireTime(kind, s.now())
		slog.InfoContext(ctx, "report scheduled", "kind", kind, "at", next)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Until(next)):
		}

		if err := s.reporter.Send(ctx, kind); err != nil {
			slog.ErrorContext(ctx, "sending report failed", "kind", kind, "error", err)
		}
	}
}

// Fire times, local wall clock.
const (
	nightFireHour = 4
	dayFireHour   = 17
)

// nextFireTime returns the next moment the given kind should fire, strictly
// after now.
func nextFireTime(kind ReportKind, now time.Time) time.Time {
	switch kind {
	case ReportNight:
		return nextDaily(now, nightFireHour)
	case ReportDay:
		return nextDaily(now, dayFireHour)
	case ReportWeekly:
		return nextWeekly(now, dayFireHour)
	case ReportMonthly:
		return nextMonthly(now, dayFireHour)
	default:
		return nextDaily(now, dayFireHour)
	}
}

func nextDaily(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func nextWeekly(now time.Time, hour int) time.Time {
	// Monday is day zero of the reporting week.
	daysAhead := (int(time.Monday) - int(now.Weekday()) + 7) % 7
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location()).
		AddDate(0, 0, daysAhead)
	if !next.After(now) {
		next = next.AddDate(0, 0, 7)
	}
	return next
}

func nextMonthly(now time.Time, hour int) time.Time {
	return time.Date(now.Year(), now.Month(), 1, hour, 0, 0, 0, now.Location()).
		AddDate(0, 1, 0)
}
