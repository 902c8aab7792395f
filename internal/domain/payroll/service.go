package payroll

import (
	"context"
	"io"
)

type PayrollService interface {
	CreatePeriod(ctx context.Context, req CreatePeriodRequest) (PeriodResponse, error)
	GetPeriod(ctx context.Context, id string) (PeriodResponse, error)
	ListPeriods(ctx context.Context, filter PeriodFilter) (ListPeriodResponse, error)
	DeletePeriod(ctx context.Context, id string) error

	// Calculate recomputes every active employee's record for the period.
	Calculate(ctx context.Context, periodID string) (CalculateResponse, error)
	Approve(ctx context.Context, periodID string, approvedBy *string) (PeriodResponse, error)

	ListRecords(ctx context.Context, periodID string) ([]RecordResponse, error)
	Summary(ctx context.Context, periodID string) (SummaryResponse, error)
	ExportRecords(ctx context.Context, periodID string, w io.Writer) error
}
