package payroll

import (
	"context"
	"time"
)

// PayrollRepository defines data access methods for payroll periods and records.
type PayrollRepository interface {
	// Periods
	CreatePeriod(ctx context.Context, period PayrollPeriod) (PayrollPeriod, error)
	GetPeriod(ctx context.Context, id string) (PayrollPeriod, error)
	ListPeriods(ctx context.Context, filter PeriodFilter) ([]PayrollPeriod, int64, error)
	HasOverlap(ctx context.Context, start, end time.Time) (bool, error)

	// ReplaceRecords swaps every record of the period for records and marks it
	// calculated in one transaction. Approved periods fail with ErrPeriodLocked.
	ReplaceRecords(ctx context.Context, periodID string, records []PayrollRecord, calculatedAt time.Time) error

	// Approve moves a calculated period to approved. A draft period fails with
	// ErrPeriodNotCalculated, an approved one with ErrPeriodLocked.
	Approve(ctx context.Context, periodID string, approvedBy *string, approvedAt time.Time) error

	// DeletePeriod removes the period and its records unless it is approved.
	DeletePeriod(ctx context.Context, periodID string) error

	// Records
	ListRecords(ctx context.Context, periodID string) ([]PayrollRecord, error)
}
