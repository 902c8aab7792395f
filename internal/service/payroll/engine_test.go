package payroll

import (
	"testing"
	"time"

	"github.com/dairy-admin/dairy-hr-backend/internal/domain/attendance"
	"github.com/dairy-admin/dairy-hr-backend/internal/domain/employee"
	"github.com/dairy-admin/dairy-hr-backend/internal/domain/leave"
	"github.com/dairy-admin/dairy-hr-backend/internal/domain/payroll"
	"github.com/dairy-admin/dairy-hr-backend/internal/pkg/identity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func strPtr(s string) *string { return &s }

// aprilPeriod is 30 calendar days.
func aprilPeriod() payroll.PayrollPeriod {
	return payroll.PayrollPeriod{
		ID:        "period-apr",
		StartDate: date(2024, time.April, 1),
		EndDate:   date(2024, time.April, 30),
		Status:    payroll.PeriodStatusDraft,
	}
}

// presentExcept checks the employee in on every day of April except the listed ones.
func presentExcept(employeeID string, skip ...int) []attendance.Attendance {
	skipped := map[int]bool{}
	for _, d := range skip {
		skipped[d] = true
	}
	var out []attendance.Attendance
	for d := 1; d <= 30; d++ {
		if skipped[d] {
			continue
		}
		out = append(out, attendance.Attendance{
			EmployeeID: employeeID,
			Date:       date(2024, time.April, d),
			CheckIn:    strPtr("07:30"),
		})
	}
	return out
}

func newEngine() *Engine {
	return NewEngine(identity.NewResolver(), DefaultCurrencyScale)
}

func TestCalculate_DeductsAbsentDays(t *testing.T) {
	emp := employee.Employee{ID: "emp-1", FullName: "Salim Al Hinai", Salary: decimal.NewFromInt(900)}

	res, err := newEngine().Calculate(Input{
		Period:     aprilPeriod(),
		Employees:  []employee.Employee{emp},
		Attendance: presentExcept("emp-1", 10, 11),
	})
	require.NoError(t, err)
	require.Len(t, res.Records, 1)

	rec := res.Records[0]
	assert.Equal(t, "period-apr", rec.PeriodID)
	assert.Equal(t, 28, rec.WorkingDays)
	assert.Equal(t, 2, rec.AbsentDays)
	assert.Equal(t, 28, rec.TotalPayDays)
	assert.True(t, decimal.NewFromInt(900).Equal(rec.BasicSalary))
	assert.True(t, decimal.NewFromInt(60).Equal(rec.Deductions), "deductions = %s", rec.Deductions)
	assert.True(t, decimal.NewFromInt(840).Equal(rec.NetSalary), "net = %s", rec.NetSalary)
}

func TestCalculate_PresenceSignals(t *testing.T) {
	emp := employee.Employee{ID: "emp-1", Salary: decimal.NewFromInt(300)}
	period := payroll.PayrollPeriod{ID: "p", StartDate: date(2024, time.May, 1), EndDate: date(2024, time.May, 3)}
	present := attendance.StatusPresent
	absent := attendance.StatusAbsent

	res, err := newEngine().Calculate(Input{
		Period:    period,
		Employees: []employee.Employee{emp},
		Attendance: []attendance.Attendance{
			// null status with a check-in is present
			{EmployeeID: "emp-1", Date: date(2024, time.May, 1), CheckIn: strPtr("08:00")},
			// null status and no check-in is absent
			{EmployeeID: "emp-1", Date: date(2024, time.May, 2)},
			{EmployeeID: "emp-1", Date: date(2024, time.May, 3), Status: &absent},
			// duplicate row for a present day does not double count
			{EmployeeID: "emp-1", Date: date(2024, time.May, 1), Status: &present},
		},
	})
	require.NoError(t, err)

	rec := res.Records[0]
	assert.Equal(t, 1, rec.WorkingDays)
	assert.Equal(t, 2, rec.AbsentDays)
	assert.True(t, decimal.NewFromInt(200).Equal(rec.Deductions))
}

func TestCalculate_LeaveCategories(t *testing.T) {
	emp := employee.Employee{ID: "emp-1", Salary: decimal.NewFromInt(900)}
	leaves := []leave.LeaveRequest{
		{ID: "l1", EmployeeID: "emp-1", LeaveType: "annual", StartDate: date(2024, time.April, 1), EndDate: date(2024, time.April, 3), Status: leave.StatusApproved},
		{ID: "l2", EmployeeID: "emp-1", LeaveType: "Sick", StartDate: date(2024, time.April, 4), EndDate: date(2024, time.April, 4), Status: leave.StatusApproved},
		{ID: "l3", EmployeeID: "emp-1", LeaveType: "emergency", StartDate: date(2024, time.April, 5), EndDate: date(2024, time.April, 5), Status: leave.StatusApproved},
		{ID: "l4", EmployeeID: "emp-1", LeaveType: "unpaid", StartDate: date(2024, time.April, 6), EndDate: date(2024, time.April, 7), Status: leave.StatusApproved},
		// pending requests never count
		{ID: "l5", EmployeeID: "emp-1", LeaveType: "annual", StartDate: date(2024, time.April, 8), EndDate: date(2024, time.April, 8), Status: leave.StatusPending},
		// malformed requests are skipped
		{ID: "l6", EmployeeID: "emp-1", LeaveType: "annual", StartDate: date(2024, time.April, 9), EndDate: date(2024, time.April, 8), Status: leave.StatusApproved},
		{ID: "l7", EmployeeID: "emp-1", LeaveType: "hajj", StartDate: date(2024, time.April, 9), EndDate: date(2024, time.April, 9), Status: leave.StatusApproved},
	}
	// Attendance wins over leave on day 2.
	att := presentExcept("emp-1", 1, 3, 4, 5, 6, 7, 8, 9)

	res, err := newEngine().Calculate(Input{
		Period:     aprilPeriod(),
		Employees:  []employee.Employee{emp},
		Attendance: att,
		Leaves:     leaves,
	})
	require.NoError(t, err)

	rec := res.Records[0]
	assert.Equal(t, 22, rec.WorkingDays)
	assert.Equal(t, 2, rec.AnnualLeave)
	assert.Equal(t, 1, rec.SickLeave)
	assert.Equal(t, 1, rec.EmergencyLeave)
	assert.Equal(t, 2, rec.UnpaidLeave)
	assert.Equal(t, 2, rec.AbsentDays)
	assert.Equal(t, 26, rec.TotalPayDays)
	assert.True(t, decimal.NewFromInt(60).Equal(rec.Deductions))
}

func TestCalculate_UnattendedWeekendsCountAsAbsent(t *testing.T) {
	emp := employee.Employee{ID: "emp-1", Salary: decimal.NewFromInt(900)}

	// Checked in Sunday through Thursday only; April 2024 has 4 Fridays and 4 Saturdays.
	var att []attendance.Attendance
	for d := 1; d <= 30; d++ {
		day := date(2024, time.April, d)
		if wd := day.Weekday(); wd == time.Friday || wd == time.Saturday {
			continue
		}
		att = append(att, attendance.Attendance{EmployeeID: "emp-1", Date: day, CheckIn: strPtr("07:30")})
	}

	res, err := newEngine().Calculate(Input{
		Period:     aprilPeriod(),
		Employees:  []employee.Employee{emp},
		Attendance: att,
	})
	require.NoError(t, err)

	rec := res.Records[0]
	assert.Equal(t, 22, rec.WorkingDays)
	assert.Equal(t, 8, rec.AbsentDays)
	assert.Equal(t, 22, rec.TotalPayDays)
	assert.True(t, decimal.NewFromInt(240).Equal(rec.Deductions), "deductions = %s", rec.Deductions)
	assert.True(t, decimal.NewFromInt(660).Equal(rec.NetSalary), "net = %s", rec.NetSalary)
}

func TestCalculate_ZeroEmployees(t *testing.T) {
	res, err := newEngine().Calculate(Input{Period: aprilPeriod()})
	require.NoError(t, err)
	assert.NotNil(t, res.Records)
	assert.Empty(t, res.Records)
}

func TestCalculate_InvalidPeriod(t *testing.T) {
	period := aprilPeriod()
	period.EndDate = date(2024, time.March, 31)

	_, err := newEngine().Calculate(Input{Period: period})
	assert.ErrorIs(t, err, payroll.ErrInvalidDateRange)
}

func TestCalculate_SkipsInactiveAndMalformedRows(t *testing.T) {
	employees := []employee.Employee{
		{ID: "emp-1", Salary: decimal.NewFromInt(900)},
		{ID: "emp-2", Salary: decimal.NewFromInt(500), Status: employee.StatusInactive},
	}
	att := append(presentExcept("emp-1"),
		attendance.Attendance{EmployeeID: "emp-1"},                                   // no date
		attendance.Attendance{EmployeeID: "emp-1", Date: date(2024, time.May, 1)},    // outside period
		attendance.Attendance{EmployeeID: "ghost", Date: date(2024, time.April, 2)}, // unmatched
	)

	res, err := newEngine().Calculate(Input{Period: aprilPeriod(), Employees: employees, Attendance: att})
	require.NoError(t, err)

	require.Len(t, res.Records, 1)
	assert.Equal(t, 30, res.Records[0].WorkingDays)
	assert.Equal(t, 0, res.Records[0].AbsentDays)
	assert.True(t, res.Records[0].Deductions.IsZero())
	assert.Equal(t, 1, res.Unmatched)
}

func TestCalculate_Idempotent(t *testing.T) {
	in := Input{
		Period: aprilPeriod(),
		Employees: []employee.Employee{
			{ID: "emp-1", EmployeeCode: "D-1", Salary: decimal.RequireFromString("845.250")},
			{ID: "emp-2", FingerprintID: "17", Salary: decimal.NewFromInt(610)},
		},
		Attendance: append(presentExcept("D-1", 3, 4, 5), presentExcept("17", 30)...),
		Leaves: []leave.LeaveRequest{
			{EmployeeID: "emp-1", LeaveType: "sick", StartDate: date(2024, time.April, 3), EndDate: date(2024, time.April, 3), Status: leave.StatusApproved},
		},
	}
	e := newEngine()

	first, err := e.Calculate(in)
	require.NoError(t, err)
	second, err := e.Calculate(in)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "56.35", first.Records[0].Deductions.String())
}

func TestCalculate_AmbiguousNamesWarn(t *testing.T) {
	employees := []employee.Employee{
		{ID: "emp-1", FullName: "Khalid Al Harthy", Salary: decimal.NewFromInt(900)},
		{ID: "emp-2", FullName: "Khalid Al Harthy", Salary: decimal.NewFromInt(900)},
	}
	att := []attendance.Attendance{
		{EmployeeName: "Khalid Al Harthy", Date: date(2024, time.April, 1), CheckIn: strPtr("08:00")},
	}

	res, err := newEngine().Calculate(Input{Period: aprilPeriod(), Employees: employees, Attendance: att})
	require.NoError(t, err)

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "emp-1", res.Warnings[0].Chosen)
	assert.Equal(t, 1, res.Records[0].WorkingDays)
	assert.Equal(t, 0, res.Records[1].WorkingDays)
}

func TestDeduction(t *testing.T) {
	tests := []struct {
		salary string
		absent int
		total  int
		scale  int32
		want   string
	}{
		{"900", 2, 30, 3, "60"},
		{"1000", 1, 31, 3, "32.258"},
		{"1000", 1, 31, 2, "32.26"},
		{"500", 0, 30, 3, "0"},
		{"500", 3, 0, 3, "0"},
	}
	for _, tt := range tests {
		got := Deduction(decimal.RequireFromString(tt.salary), tt.absent, tt.total, tt.scale)
		assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "%s*%d/%d = %s", tt.salary, tt.absent, tt.total, got)
	}
}
