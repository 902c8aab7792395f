package payroll

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dairy-admin/dairy-hr-backend/internal/domain/attendance"
	"github.com/dairy-admin/dairy-hr-backend/internal/domain/employee"
	"github.com/dairy-admin/dairy-hr-backend/internal/domain/leave"
	"github.com/dairy-admin/dairy-hr-backend/internal/domain/payroll"
	"github.com/dairy-admin/dairy-hr-backend/internal/pkg/spreadsheet"
	"github.com/dairy-admin/dairy-hr-backend/internal/pkg/validator"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

type PayrollServiceImpl struct {
	payrollRepo payroll.PayrollRepository
	employees   employee.Reader
	attendance  attendance.Reader
	leaves      leave.Reader
	engine      *Engine

	// calculations coalesces concurrent Calculate calls per period.
	calculations     singleflight.Group
	calculateTimeout time.Duration
	now              func() time.Time
}

const defaultCalculateTimeout = 2 * time.Minute

func NewPayrollService(
	payrollRepo payroll.PayrollRepository,
	employees employee.Reader,
	attendanceReader attendance.Reader,
	leaves leave.Reader,
	engine *Engine,
) payroll.PayrollService {
	return &PayrollServiceImpl{
		payrollRepo: payrollRepo,
		employees:   employees,
		attendance:  attendanceReader,
		leaves:      leaves,
		engine:      engine,

		calculateTimeout: defaultCalculateTimeout,
		now:              time.Now,
	}
}

// CanonicalPeriod is the 16th of year/month through the 15th of the following month.
func CanonicalPeriod(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 16, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, month+1, 15, 0, 0, 0, 0, time.UTC)
	return start, end
}

// ========== PERIODS ==========

func (s *PayrollServiceImpl) CreatePeriod(ctx context.Context, req payroll.CreatePeriodRequest) (payroll.PeriodResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PeriodResponse{}, err
	}

	var start, end time.Time
	if req.Year != nil && req.Month != nil {
		start, end = CanonicalPeriod(*req.Year, time.Month(*req.Month))
	} else if req.StartDate != nil && req.EndDate != nil {
		start, _ = validator.IsValidDate(*req.StartDate)
		end, _ = validator.IsValidDate(*req.EndDate)
	}
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return payroll.PeriodResponse{}, fmt.Errorf("%w: end_date must not be before start_date", payroll.ErrInvalidDateRange)
	}

	overlap, err := s.payrollRepo.HasOverlap(ctx, start, end)
	if err != nil {
		return payroll.PeriodResponse{}, fmt.Errorf("failed to check period overlap: %w", err)
	}
	if overlap {
		return payroll.PeriodResponse{}, payroll.ErrPeriodOverlaps
	}

	name := req.Name
	if name == "" {
		name = fmt.Sprintf("%s to %s", start.Format(validator.DateLayout), end.Format(validator.DateLayout))
	}

	created, err := s.payrollRepo.CreatePeriod(ctx, payroll.PayrollPeriod{
		Name:      name,
		StartDate: start,
		EndDate:   end,
		TotalDays: leave.InclusiveDays(start, end),
		Status:    payroll.PeriodStatusDraft,
	})
	if err != nil {
		return payroll.PeriodResponse{}, fmt.Errorf("failed to create payroll period: %w", err)
	}

	slog.Info("Created payroll period", "period_id", created.ID, "start_date", start.Format(validator.DateLayout), "end_date", end.Format(validator.DateLayout))
	return payroll.ToPeriodResponse(created), nil
}

func (s *PayrollServiceImpl) GetPeriod(ctx context.Context, id string) (payroll.PeriodResponse, error) {
	period, err := s.payrollRepo.GetPeriod(ctx, id)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}
	return payroll.ToPeriodResponse(period), nil
}

func (s *PayrollServiceImpl) ListPeriods(ctx context.Context, filter payroll.PeriodFilter) (payroll.ListPeriodResponse, error) {
	if err := filter.Validate(); err != nil {
		return payroll.ListPeriodResponse{}, err
	}

	periods, total, err := s.payrollRepo.ListPeriods(ctx, filter)
	if err != nil {
		return payroll.ListPeriodResponse{}, fmt.Errorf("failed to list payroll periods: %w", err)
	}

	resp := payroll.ListPeriodResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int((total + int64(filter.Limit) - 1) / int64(filter.Limit)),
		Periods:    make([]payroll.PeriodResponse, 0, len(periods)),
	}
	for _, p := range periods {
		resp.Periods = append(resp.Periods, payroll.ToPeriodResponse(p))
	}
	return resp, nil
}

func (s *PayrollServiceImpl) DeletePeriod(ctx context.Context, id string) error {
	period, err := s.payrollRepo.GetPeriod(ctx, id)
	if err != nil {
		return err
	}
	if period.IsLocked() {
		return payroll.ErrPeriodLocked
	}
	if err := s.payrollRepo.DeletePeriod(ctx, id); err != nil {
		return err
	}
	slog.Info("Deleted payroll period", "period_id", id)
	return nil
}

// ========== TRANSITIONS ==========

// Calculate runs at most once at a time per period; concurrent callers share the result.
// The shared run ignores caller cancellation and is bounded by calculateTimeout.
func (s *PayrollServiceImpl) Calculate(ctx context.Context, periodID string) (payroll.CalculateResponse, error) {
	ch := s.calculations.DoChan(periodID, func() (interface{}, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.calculateTimeout)
		defer cancel()
		return s.calculate(runCtx, periodID)
	})

	select {
	case <-ctx.Done():
		return payroll.CalculateResponse{}, ctx.Err()
	case res := <-ch:
		if res.Shared {
			slog.Debug("Payroll calculation coalesced", "period_id", periodID)
		}
		if res.Err != nil {
			return payroll.CalculateResponse{}, res.Err
		}
		return res.Val.(payroll.CalculateResponse), nil
	}
}

func (s *PayrollServiceImpl) calculate(ctx context.Context, periodID string) (payroll.CalculateResponse, error) {
	period, err := s.payrollRepo.GetPeriod(ctx, periodID)
	if err != nil {
		return payroll.CalculateResponse{}, err
	}
	if period.IsLocked() {
		return payroll.CalculateResponse{}, payroll.ErrPeriodLocked
	}

	var (
		employees []employee.Employee
		records   []attendance.Attendance
		leaves    []leave.LeaveRequest
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := s.employees.ListActive(gCtx)
		if err != nil {
			return fmt.Errorf("failed to list employees: %w", err)
		}
		employees = list
		return nil
	})
	g.Go(func() error {
		list, err := s.attendance.ListByDateRange(gCtx, period.StartDate, period.EndDate)
		if err != nil {
			return fmt.Errorf("failed to list attendance: %w", err)
		}
		records = list
		return nil
	})
	g.Go(func() error {
		list, err := s.leaves.ListApproved(gCtx, period.StartDate, period.EndDate)
		if err != nil {
			return fmt.Errorf("failed to list approved leave: %w", err)
		}
		leaves = list
		return nil
	})
	if err := g.Wait(); err != nil {
		return payroll.CalculateResponse{}, err
	}

	result, err := s.engine.Calculate(Input{
		Period:     period,
		Employees:  employees,
		Attendance: records,
		Leaves:     leaves,
	})
	if err != nil {
		return payroll.CalculateResponse{}, err
	}

	now := s.now().UTC()
	if err := s.payrollRepo.ReplaceRecords(ctx, periodID, result.Records, now); err != nil {
		return payroll.CalculateResponse{}, err
	}
	period.Status = payroll.PeriodStatusCalculated
	period.CalculatedAt = &now

	resp := payroll.CalculateResponse{
		Period:  payroll.ToPeriodResponse(period),
		Records: make([]payroll.RecordResponse, 0, len(result.Records)),
	}
	for _, rec := range result.Records {
		resp.Records = append(resp.Records, payroll.ToRecordResponse(rec))
	}
	for _, w := range result.Warnings {
		slog.Warn("Ambiguous attendance match in payroll",
			"period_id", periodID, "record_key", w.RecordKey, "date", w.Date, "candidates", w.Candidates)
		resp.Warnings = append(resp.Warnings, payroll.Warning{
			Date:       w.Date,
			RecordKey:  w.RecordKey,
			Rule:       w.Rule,
			Candidates: w.Candidates,
			Message:    w.Message(),
		})
	}

	slog.Info("Calculated payroll period",
		"period_id", periodID,
		"records", len(result.Records),
		"unmatched_attendance", result.Unmatched,
		"warnings", len(result.Warnings),
	)
	return resp, nil
}

func (s *PayrollServiceImpl) Approve(ctx context.Context, periodID string, approvedBy *string) (payroll.PeriodResponse, error) {
	period, err := s.payrollRepo.GetPeriod(ctx, periodID)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}
	switch period.Status {
	case payroll.PeriodStatusApproved:
		return payroll.PeriodResponse{}, payroll.ErrPeriodLocked
	case payroll.PeriodStatusDraft:
		return payroll.PeriodResponse{}, payroll.ErrPeriodNotCalculated
	}

	now := s.now().UTC()
	if err := s.payrollRepo.Approve(ctx, periodID, approvedBy, now); err != nil {
		return payroll.PeriodResponse{}, err
	}
	period.Status = payroll.PeriodStatusApproved
	period.ApprovedAt = &now
	period.ApprovedBy = approvedBy

	slog.Info("Approved payroll period", "period_id", periodID)
	return payroll.ToPeriodResponse(period), nil
}

// ========== RECORDS ==========

func (s *PayrollServiceImpl) periodRecords(ctx context.Context, periodID string) (payroll.PayrollPeriod, []payroll.PayrollRecord, error) {
	period, err := s.payrollRepo.GetPeriod(ctx, periodID)
	if err != nil {
		return payroll.PayrollPeriod{}, nil, err
	}
	records, err := s.payrollRepo.ListRecords(ctx, periodID)
	if err != nil {
		return payroll.PayrollPeriod{}, nil, fmt.Errorf("failed to list payroll records: %w", err)
	}
	return period, records, nil
}

func (s *PayrollServiceImpl) ListRecords(ctx context.Context, periodID string) ([]payroll.RecordResponse, error) {
	_, records, err := s.periodRecords(ctx, periodID)
	if err != nil {
		return nil, err
	}
	resp := make([]payroll.RecordResponse, 0, len(records))
	for _, rec := range records {
		resp = append(resp, payroll.ToRecordResponse(rec))
	}
	return resp, nil
}

func (s *PayrollServiceImpl) Summary(ctx context.Context, periodID string) (payroll.SummaryResponse, error) {
	period, records, err := s.periodRecords(ctx, periodID)
	if err != nil {
		return payroll.SummaryResponse{}, err
	}

	sum := Summarize(periodID, records)
	return payroll.SummaryResponse{
		PeriodID:         sum.PeriodID,
		Status:           string(period.Status),
		EmployeeCount:    sum.EmployeeCount,
		TotalBasicSalary: sum.TotalBasicSalary,
		TotalDeductions:  sum.TotalDeductions,
		TotalNetSalary:   sum.TotalNetSalary,
		TotalAbsentDays:  sum.TotalAbsentDays,
		TotalPayDays:     sum.TotalPayDays,
	}, nil
}

// Summarize totals a period's records.
func Summarize(periodID string, records []payroll.PayrollRecord) payroll.Summary {
	sum := payroll.Summary{
		PeriodID:         periodID,
		EmployeeCount:    len(records),
		TotalBasicSalary: decimal.Zero,
		TotalDeductions:  decimal.Zero,
		TotalNetSalary:   decimal.Zero,
	}
	for _, rec := range records {
		sum.TotalBasicSalary = sum.TotalBasicSalary.Add(rec.BasicSalary)
		sum.TotalDeductions = sum.TotalDeductions.Add(rec.Deductions)
		sum.TotalNetSalary = sum.TotalNetSalary.Add(rec.NetSalary)
		sum.TotalAbsentDays += rec.AbsentDays
		sum.TotalPayDays += rec.TotalPayDays
	}
	return sum
}

func (s *PayrollServiceImpl) ExportRecords(ctx context.Context, periodID string, w io.Writer) error {
	period, records, err := s.periodRecords(ctx, periodID)
	if err != nil {
		return err
	}
	if period.Status == payroll.PeriodStatusDraft {
		return payroll.ErrPeriodNotCalculated
	}
	if err := spreadsheet.WritePayroll(w, period, records); err != nil {
		return fmt.Errorf("failed to write payroll workbook: %w", err)
	}
	return nil
}
