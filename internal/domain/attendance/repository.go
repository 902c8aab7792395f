package attendance

import (
	"context"
	"time"
)

// Reader is the read side used by aggregation and payroll.
type Reader interface {
	// ListByDateRange returns every record with from <= date <= to.
	ListByDateRange(ctx context.Context, from, to time.Time) ([]Attendance, error)
}

type AttendanceRepository interface {
	Reader
	List(ctx context.Context, filter AttendanceFilter) ([]Attendance, int64, error)
	Create(ctx context.Context, a Attendance) (Attendance, error)
	// Upsert inserts or replaces the row keyed by (employee_id, date).
	Upsert(ctx context.Context, a Attendance) (Attendance, error)
}
