package performance

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/dairy-admin/dairy-hr-backend/internal/domain/attendance"
	"github.com/dairy-admin/dairy-hr-backend/internal/domain/employee"
	"github.com/dairy-admin/dairy-hr-backend/internal/domain/performance"
	"github.com/dairy-admin/dairy-hr-backend/internal/pkg/cache"
	"github.com/dairy-admin/dairy-hr-backend/internal/pkg/identity"
	"github.com/dairy-admin/dairy-hr-backend/internal/pkg/workdays"
	"golang.org/x/sync/errgroup"
)

const unassignedDepartment = "Unassigned"

type PerformanceServiceImpl struct {
	employees           employee.Reader
	attendance          attendance.Reader
	resolver            *identity.Resolver
	policy              workdays.Policy
	cache               *cache.Cache
	defaultLeaveBalance int
	now                 func() time.Time
}

// NewPerformanceService wires the statistics service. cache may be nil.
func NewPerformanceService(
	employees employee.Reader,
	attendanceReader attendance.Reader,
	resolver *identity.Resolver,
	policy workdays.Policy,
	statsCache *cache.Cache,
	defaultLeaveBalance int,
) performance.PerformanceService {
	return &PerformanceServiceImpl{
		employees:           employees,
		attendance:          attendanceReader,
		resolver:            resolver,
		policy:              policy,
		cache:               statsCache,
		defaultLeaveBalance: defaultLeaveBalance,
		now:                 time.Now,
	}
}

func validMonth(year, month int) error {
	if year < 1 || month < 1 || month > 12 {
		return fmt.Errorf("%w: year %d month %d", workdays.ErrInvalidDateRange, year, month)
	}
	return nil
}

// EmployeeStats returns month-to-date snapshots, served from cache when possible.
func (s *PerformanceServiceImpl) EmployeeStats(ctx context.Context, year, month int) (performance.StatsResponse, error) {
	if err := validMonth(year, month); err != nil {
		return performance.StatsResponse{}, err
	}

	throughDay := workdays.ThroughDay(year, time.Month(month), s.now())
	key, err := s.cache.BuildKey(ctx, "employee-stats", strconv.Itoa(year), strconv.Itoa(month), strconv.Itoa(throughDay))
	if err != nil {
		slog.Warn("Stats cache unavailable", "error", err)
		return s.computeStats(ctx, year, month, throughDay)
	}

	var (
		resp      performance.StatsResponse
		loaded    *performance.StatsResponse
		loaderErr error
	)
	err = s.cache.FetchJSON(ctx, key, &resp, func(ctx context.Context) (interface{}, error) {
		out, err := s.computeStats(ctx, year, month, throughDay)
		if err != nil {
			loaderErr = err
			return nil, err
		}
		loaded = &out
		return out, nil
	})
	if err != nil {
		if loaderErr != nil {
			return performance.StatsResponse{}, loaderErr
		}
		slog.Warn("Stats cache unavailable", "error", err)
		// computed but not stored
		if loaded != nil {
			return *loaded, nil
		}
		return s.computeStats(ctx, year, month, throughDay)
	}
	return resp, nil
}

func (s *PerformanceServiceImpl) computeStats(ctx context.Context, year, month, throughDay int) (performance.StatsResponse, error) {
	workingDays, err := s.policy.CountWorkingDays(year, time.Month(month), throughDay)
	if err != nil {
		return performance.StatsResponse{}, err
	}

	var (
		employees []employee.Employee
		records   []attendance.Attendance
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

	if throughDay > 0 {
		from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(year, time.Month(month), throughDay, 0, 0, 0, 0, time.UTC)
		g.Go(func() error {
			list, err := s.attendance.ListByDateRange(gCtx, from, to)
			if err != nil {
				return fmt.Errorf("failed to list attendance: %w", err)
			}
			records = list
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return performance.StatsResponse{}, err
	}

	var active []employee.Employee
	for _, emp := range employees {
		if emp.IsActive() {
			active = append(active, emp)
		}
	}

	grouping := s.resolver.Group(records, active)

	resp := performance.StatsResponse{
		Year:             year,
		Month:            month,
		ThroughDay:       throughDay,
		WorkingDays:      workingDays,
		Employees:        make([]performance.EmployeeStats, 0, len(active)),
		UnmatchedRecords: len(grouping.Unmatched),
		GeneratedAt:      s.now().UTC(),
	}

	for _, emp := range active {
		balance := emp.LeaveBalanceOr(s.defaultLeaveBalance)
		resp.Employees = append(resp.Employees, performance.EmployeeStats{
			EmployeeID:   emp.ID,
			EmployeeName: emp.DisplayName(),
			EmployeeCode: emp.EmployeeCode,
			Department:   emp.Department,
			Position:     emp.Position,
			Snapshot:     Aggregate(grouping.ByEmployee[emp.ID], workingDays, &balance),
		})
	}
	resp.Departments = rollUp(resp.Employees)

	for _, w := range grouping.Warnings {
		slog.Warn("Ambiguous attendance match",
			"record_key", w.RecordKey,
			"date", w.Date,
			"rule", w.Rule,
			"chosen", w.Chosen,
			"candidates", w.Candidates,
		)
		resp.Warnings = append(resp.Warnings, performance.Warning{
			Date:       w.Date,
			RecordKey:  w.RecordKey,
			Rule:       w.Rule,
			Candidates: w.Candidates,
			Message:    w.Message(),
		})
	}

	return resp, nil
}

func rollUp(stats []performance.EmployeeStats) []performance.DepartmentStats {
	type acc struct {
		performance.DepartmentStats
		rateSum int
	}
	byDept := make(map[string]*acc)
	for _, st := range stats {
		name := st.Department
		if name == "" {
			name = unassignedDepartment
		}
		a, ok := byDept[name]
		if !ok {
			a = &acc{DepartmentStats: performance.DepartmentStats{Department: name}}
			byDept[name] = a
		}
		a.Employees++
		a.PresentDays += st.PresentDays
		a.AbsentDays += st.AbsentDays
		a.rateSum += st.PerformanceRate
	}

	out := make([]performance.DepartmentStats, 0, len(byDept))
	for _, a := range byDept {
		a.AveragePerformance = int(math.Round(float64(a.rateSum) / float64(a.Employees)))
		out = append(out, a.DepartmentStats)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Department < out[j].Department })
	return out
}

func (s *PerformanceServiceImpl) WorkingDays(ctx context.Context, year, month int, throughDay *int) (performance.WorkingDaysResponse, error) {
	if err := validMonth(year, month); err != nil {
		return performance.WorkingDaysResponse{}, err
	}

	day := workdays.ThroughDay(year, time.Month(month), s.now())
	if throughDay != nil {
		day = *throughDay
	}

	count, err := s.policy.CountWorkingDays(year, time.Month(month), day)
	if err != nil {
		return performance.WorkingDaysResponse{}, err
	}

	return performance.WorkingDaysResponse{
		Year:        year,
		Month:       month,
		ThroughDay:  day,
		WorkingDays: count,
		Weekend:     s.policy.String(),
	}, nil
}

func (s *PerformanceServiceImpl) Invalidate(ctx context.Context) error {
	if err := s.cache.Bump(ctx); err != nil {
		return fmt.Errorf("failed to invalidate stats cache: %w", err)
	}
	return nil
}
