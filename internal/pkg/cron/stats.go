package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dairy-admin/dairy-hr-backend/internal/domain/performance"
)

// StatsJobs keeps the month-to-date statistics cache warm.
type StatsJobs struct {
	stats  performance.PerformanceService
	cached bool
	now    func() time.Time
}

// NewStatsJobs builds the warm job; cached reports whether stats are backed by a cache.
func NewStatsJobs(stats performance.PerformanceService, cached bool) *StatsJobs {
	return &StatsJobs{stats: stats, cached: cached, now: time.Now}
}

// RegisterJobs adds the warm job when stats are cached.
func (j *StatsJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	if !j.cached {
		slog.Info("Cron: stats cache disabled, warm job not registered")
		return
	}
	scheduler.AddJob(Job{
		Name:     "warm_performance_stats",
		Interval: interval,
		Timeout:  2 * time.Minute,
		Fn:       j.WarmCurrentMonth,
	})
}

// WarmCurrentMonth computes this month's statistics so the first request hits the cache.
func (j *StatsJobs) WarmCurrentMonth(ctx context.Context) error {
	now := j.now()
	resp, err := j.stats.EmployeeStats(ctx, now.Year(), int(now.Month()))
	if err != nil {
		return fmt.Errorf("failed to warm stats for %04d-%02d: %w", now.Year(), int(now.Month()), err)
	}

	slog.Info("Cron: warmed performance stats",
		"year", resp.Year,
		"month", resp.Month,
		"employees", len(resp.Employees),
		"unmatched_records", resp.UnmatchedRecords,
	)
	return nil
}
