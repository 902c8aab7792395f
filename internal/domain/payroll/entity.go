package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// PeriodStatus enum
type PeriodStatus string

const (
	PeriodStatusDraft      PeriodStatus = "draft"
	PeriodStatusCalculated PeriodStatus = "calculated"
	PeriodStatusApproved   PeriodStatus = "approved"
)

// PayrollPeriod - a pay window, canonically the 16th of one month to the 15th of the next
type PayrollPeriod struct {
	ID           string
	Name         string
	StartDate    time.Time
	EndDate      time.Time
	TotalDays    int
	Status       PeriodStatus
	CalculatedAt *time.Time
	ApprovedAt   *time.Time
	ApprovedBy   *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsLocked reports whether the period accepts no further mutation.
func (p PayrollPeriod) IsLocked() bool {
	return p.Status == PeriodStatusApproved
}

// PayrollRecord - computed result for one employee in one period
type PayrollRecord struct {
	ID             string
	PeriodID       string
	EmployeeID     string
	WorkingDays    int
	AbsentDays     int
	AnnualLeave    int
	SickLeave      int
	EmergencyLeave int
	UnpaidLeave    int
	TotalPayDays   int
	BasicSalary    decimal.Decimal
	Deductions     decimal.Decimal
	NetSalary      decimal.Decimal
	CreatedAt      time.Time

	// Joined fields
	EmployeeName string
	EmployeeCode string
	Department   string
}

// Summary - totals over a period's records
type Summary struct {
	PeriodID         string
	EmployeeCount    int
	TotalBasicSalary decimal.Decimal
	TotalDeductions  decimal.Decimal
	TotalNetSalary   decimal.Decimal
	TotalAbsentDays  int
	TotalPayDays     int
}
