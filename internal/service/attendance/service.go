package attendance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/dairy-admin/dairy-hr-backend/internal/domain/attendance"
	"github.com/dairy-admin/dairy-hr-backend/internal/domain/performance"
	"github.com/dairy-admin/dairy-hr-backend/internal/pkg/spreadsheet"
	"github.com/dairy-admin/dairy-hr-backend/internal/pkg/validator"
	"github.com/google/uuid"
)

type AttendanceServiceImpl struct {
	attendanceRepo attendance.AttendanceRepository
	stats          performance.Invalidator
}

func NewAttendanceService(attendanceRepo attendance.AttendanceRepository, stats performance.Invalidator) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		attendanceRepo: attendanceRepo,
		stats:          stats,
	}
}

// ListAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListAttendance(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	records, total, err := a.attendanceRepo.List(ctx, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendance: %w", err)
	}

	responses := make([]attendance.AttendanceResponse, 0, len(records))
	for _, rec := range records {
		responses = append(responses, attendance.ToResponse(rec))
	}

	return attendance.ListAttendanceResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Records:    responses,
	}, nil
}

// CreateAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CreateAttendance(ctx context.Context, req attendance.CreateAttendanceRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	created, err := a.attendanceRepo.Create(ctx, req.ToEntity(attendance.SourceManual))
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceExists) {
			return attendance.AttendanceResponse{}, err
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	a.invalidateStats(ctx)
	return attendance.ToResponse(created), nil
}

// ImportRows implements attendance.AttendanceService. Row numbers in the result are 1-based.
func (a *AttendanceServiceImpl) ImportRows(ctx context.Context, rows []attendance.CreateAttendanceRequest, source attendance.Source) (attendance.ImportResult, error) {
	numbered := make([]spreadsheet.Row, 0, len(rows))
	for i, row := range rows {
		numbered = append(numbered, spreadsheet.Row{Line: i + 1, Request: row})
	}
	return a.importRows(ctx, numbered, source)
}

// ImportWorkbook implements attendance.AttendanceService. Row numbers in the result are sheet lines.
func (a *AttendanceServiceImpl) ImportWorkbook(ctx context.Context, r io.Reader) (attendance.ImportResult, error) {
	rows, err := spreadsheet.ReadAttendance(r)
	if err != nil {
		return attendance.ImportResult{}, err
	}
	return a.importRows(ctx, rows, attendance.SourceExcelImport)
}

func (a *AttendanceServiceImpl) importRows(ctx context.Context, rows []spreadsheet.Row, source attendance.Source) (attendance.ImportResult, error) {
	if len(rows) == 0 {
		return attendance.ImportResult{}, attendance.ErrEmptyImport
	}

	result := attendance.ImportResult{
		BatchID: uuid.NewString(),
		Total:   len(rows),
	}

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			if result.Imported > 0 {
				a.invalidateStats(context.WithoutCancel(ctx))
			}
			return result, err
		}

		req := row.Request
		if err := req.Validate(); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, attendance.RowError{Row: row.Line, Message: rowMessage(err)})
			continue
		}

		if _, err := a.attendanceRepo.Upsert(ctx, req.ToEntity(source)); err != nil {
			slog.Error("Failed to upsert attendance row", "batch_id", result.BatchID, "row", row.Line, "error", err)
			result.Failed++
			result.Errors = append(result.Errors, attendance.RowError{Row: row.Line, Message: "failed to save row"})
			continue
		}
		result.Imported++
	}

	slog.Info("Imported attendance",
		"batch_id", result.BatchID,
		"source", source,
		"total", result.Total,
		"imported", result.Imported,
		"failed", result.Failed,
	)

	if result.Imported > 0 {
		a.invalidateStats(ctx)
	}
	return result, nil
}

func rowMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return verrs.Error()
	}
	return err.Error()
}

func (a *AttendanceServiceImpl) invalidateStats(ctx context.Context) {
	if a.stats == nil {
		return
	}
	if err := a.stats.Invalidate(ctx); err != nil {
		slog.Warn("Failed to invalidate performance stats", "error", err)
	}
}
