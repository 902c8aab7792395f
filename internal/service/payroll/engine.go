package payroll

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dairy-admin/dairy-hr-backend/internal/domain/attendance"
	"github.com/dairy-admin/dairy-hr-backend/internal/domain/employee"
	"github.com/dairy-admin/dairy-hr-backend/internal/domain/leave"
	"github.com/dairy-admin/dairy-hr-backend/internal/domain/payroll"
	"github.com/dairy-admin/dairy-hr-backend/internal/pkg/identity"
	"github.com/dairy-admin/dairy-hr-backend/internal/pkg/workdays"
	"github.com/shopspring/decimal"
)

// DefaultCurrencyScale is three decimal places, the Omani rial's baisa.
const DefaultCurrencyScale = 3

// Engine turns a period's attendance and leave into payroll records.
// It does no I/O; the caller fetches inputs and persists the result.
type Engine struct {
	resolver *identity.Resolver
	scale    int32
}

func NewEngine(resolver *identity.Resolver, scale int32) *Engine {
	if resolver == nil {
		resolver = identity.NewResolver()
	}
	return &Engine{resolver: resolver, scale: scale}
}

type Input struct {
	Period     payroll.PayrollPeriod
	Employees  []employee.Employee
	Attendance []attendance.Attendance
	Leaves     []leave.LeaveRequest
}

type Result struct {
	Records   []payroll.PayrollRecord
	Warnings  []identity.Warning
	Unmatched int
}

// dayTally is the per-day partition of one employee's period.
type dayTally struct {
	present   int
	absent    int
	annual    int
	sick      int
	emergency int
	unpaid    int
}

func (t dayTally) payDays() int {
	return t.present + t.annual + t.sick + t.emergency
}

// Calculate produces one record per active employee, in input order.
// Rows that cannot be placed (no date, outside the period, bad leave range or type) are skipped.
func (e *Engine) Calculate(in Input) (Result, error) {
	start, end := workdays.Date(in.Period.StartDate), workdays.Date(in.Period.EndDate)
	if in.Period.StartDate.IsZero() || in.Period.EndDate.IsZero() || end.Before(start) {
		return Result{}, fmt.Errorf("%w: period %s", payroll.ErrInvalidDateRange, in.Period.ID)
	}
	totalDays := leave.InclusiveDays(start, end)

	var active []employee.Employee
	for _, emp := range in.Employees {
		if emp.IsActive() {
			active = append(active, emp)
		}
	}

	inRange := make([]attendance.Attendance, 0, len(in.Attendance))
	for _, rec := range in.Attendance {
		if rec.Date.IsZero() {
			continue
		}
		d := workdays.Date(rec.Date)
		if d.Before(start) || d.After(end) {
			continue
		}
		inRange = append(inRange, rec)
	}
	grouping := e.resolver.Group(inRange, active)

	leaves := e.groupLeaves(in.Leaves, active)

	result := Result{
		Records:   make([]payroll.PayrollRecord, 0, len(active)),
		Warnings:  grouping.Warnings,
		Unmatched: len(grouping.Unmatched),
	}

	for _, emp := range active {
		present := make(map[time.Time]bool)
		for _, rec := range grouping.ByEmployee[emp.ID] {
			if rec.IsPresent() {
				present[workdays.Date(rec.Date)] = true
			}
		}

		tally := partition(start, end, present, leaves[emp.ID])
		result.Records = append(result.Records, e.record(in.Period.ID, emp, tally, totalDays))
	}

	return result, nil
}

// groupLeaves keeps approved, well-formed requests and assigns each to an employee.
func (e *Engine) groupLeaves(requests []leave.LeaveRequest, employees []employee.Employee) map[string][]leave.LeaveRequest {
	out := make(map[string][]leave.LeaveRequest)
	for _, req := range requests {
		if !req.IsApproved() {
			continue
		}
		if !req.Valid() {
			slog.Warn("Skipping leave request with invalid range", "leave_id", req.ID, "employee_id", req.EmployeeID)
			continue
		}
		if _, ok := leave.ParseType(req.LeaveType); !ok {
			slog.Warn("Skipping leave request with unknown type", "leave_id", req.ID, "leave_type", req.LeaveType)
			continue
		}
		res, ok := e.resolver.Resolve(attendance.Attendance{
			EmployeeID:   req.EmployeeID,
			EmployeeName: req.EmployeeName,
		}, employees)
		if !ok {
			continue
		}
		out[res.Employee.ID] = append(out[res.Employee.ID], req)
	}
	return out
}

// partition walks every calendar day: attendance first, then approved leave, otherwise absent.
// Weekend days get no special treatment; without attendance or leave they are absent.
func partition(start, end time.Time, present map[time.Time]bool, leaves []leave.LeaveRequest) dayTally {
	var t dayTally
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if present[d] {
			t.present++
			continue
		}
		kind, onLeave := leaveOn(d, leaves)
		if !onLeave {
			t.absent++
			continue
		}
		switch kind {
		case leave.TypeAnnual:
			t.annual++
		case leave.TypeSick:
			t.sick++
		case leave.TypeEmergency:
			t.emergency++
		case leave.TypeUnpaid:
			t.unpaid++
		}
	}
	return t
}

func leaveOn(day time.Time, leaves []leave.LeaveRequest) (leave.Type, bool) {
	for _, l := range leaves {
		if l.Covers(day) {
			kind, _ := leave.ParseType(l.LeaveType)
			return kind, true
		}
	}
	return "", false
}

func (e *Engine) record(periodID string, emp employee.Employee, t dayTally, totalDays int) payroll.PayrollRecord {
	salary := emp.Salary
	deductions := Deduction(salary, t.absent, totalDays, e.scale)

	return payroll.PayrollRecord{
		PeriodID:       periodID,
		EmployeeID:     emp.ID,
		EmployeeName:   emp.DisplayName(),
		EmployeeCode:   emp.EmployeeCode,
		Department:     emp.Department,
		WorkingDays:    t.present,
		AbsentDays:     t.absent,
		AnnualLeave:    t.annual,
		SickLeave:      t.sick,
		EmergencyLeave: t.emergency,
		UnpaidLeave:    t.unpaid,
		TotalPayDays:   t.payDays(),
		BasicSalary:    salary,
		Deductions:     deductions,
		NetSalary:      salary.Sub(deductions),
	}
}

// Deduction is salary / totalDays * absentDays rounded to scale places.
func Deduction(salary decimal.Decimal, absentDays, totalDays int, scale int32) decimal.Decimal {
	if totalDays <= 0 || absentDays <= 0 {
		return decimal.Zero
	}
	return salary.
		Mul(decimal.NewFromInt(int64(absentDays))).
		Div(decimal.NewFromInt(int64(totalDays))).
		Round(scale)
}
