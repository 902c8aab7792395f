package performance

import "context"

// PerformanceService defines the interface for attendance statistics
type PerformanceService interface {
	// EmployeeStats returns month-to-date snapshots for every active employee
	EmployeeStats(ctx context.Context, year, month int) (StatsResponse, error)

	// WorkingDays counts working days of the month through throughDay; nil means month to date
	WorkingDays(ctx context.Context, year, month int, throughDay *int) (WorkingDaysResponse, error)

	Invalidator
}

// Invalidator drops cached statistics after roster or attendance changes.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}
