package attendance

import (
	"context"
	"io"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	ListAttendance(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)
	CreateAttendance(ctx context.Context, req CreateAttendanceRequest) (AttendanceResponse, error)

	// ImportRows upserts each row by (employee_id, date); bad rows are reported, not fatal.
	ImportRows(ctx context.Context, rows []CreateAttendanceRequest, source Source) (ImportResult, error)

	// ImportWorkbook parses an xlsx workbook and imports its rows.
	ImportWorkbook(ctx context.Context, r io.Reader) (ImportResult, error)
}
