package payroll

import (
	"time"

	"github.com/dairy-admin/dairy-hr-backend/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== PERIOD DTOs ==========

// CreatePeriodRequest takes either an explicit range or a year/month pair,
// in which case the canonical 16th to 15th window is used.
type CreatePeriodRequest struct {
	Name      string  `json:"name,omitempty"`
	StartDate *string `json:"start_date,omitempty"`
	EndDate   *string `json:"end_date,omitempty"`
	Year      *int    `json:"year,omitempty"`
	Month     *int    `json:"month,omitempty"`
}

func (r *CreatePeriodRequest) Validate() error {
	var errs validator.ValidationErrors

	explicit := r.StartDate != nil || r.EndDate != nil
	canonical := r.Year != nil || r.Month != nil

	switch {
	case explicit && canonical:
		errs = append(errs, validator.ValidationError{Field: "start_date", Message: "use either start_date/end_date or year/month"})
	case explicit:
		if r.StartDate == nil {
			errs = append(errs, validator.ValidationError{Field: "start_date", Message: "start_date is required"})
		} else if _, ok := validator.IsValidDate(*r.StartDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "start_date", Message: "start_date must be in YYYY-MM-DD format"})
		}
		if r.EndDate == nil {
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date is required"})
		} else if _, ok := validator.IsValidDate(*r.EndDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date must be in YYYY-MM-DD format"})
		}
	case canonical:
		if r.Year == nil || *r.Year < 2000 || *r.Year > 2100 {
			errs = append(errs, validator.ValidationError{Field: "year", Message: "year must be between 2000 and 2100"})
		}
		if r.Month == nil || *r.Month < 1 || *r.Month > 12 {
			errs = append(errs, validator.ValidationError{Field: "month", Message: "month must be between 1 and 12"})
		}
	default:
		errs = append(errs, validator.ValidationError{Field: "start_date", Message: "start_date/end_date or year/month is required"})
	}

	if len(r.Name) > 100 {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "name must not exceed 100 characters"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PeriodFilter struct {
	Status *string
	Page   int
	Limit  int
}

func (f *PeriodFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Status != nil && !validator.IsInSlice(*f.Status, []string{
		string(PeriodStatusDraft), string(PeriodStatusCalculated), string(PeriodStatusApproved),
	}) {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "status must be one of: draft, calculated, approved"})
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (f PeriodFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

type PeriodResponse struct {
	ID           string     `json:"id"`
	Name         string     `json:"name,omitempty"`
	StartDate    string     `json:"start_date"`
	EndDate      string     `json:"end_date"`
	TotalDays    int        `json:"total_days"`
	Status       string     `json:"status"`
	CalculatedAt *time.Time `json:"calculated_at,omitempty"`
	ApprovedAt   *time.Time `json:"approved_at,omitempty"`
	ApprovedBy   *string    `json:"approved_by,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func ToPeriodResponse(p PayrollPeriod) PeriodResponse {
	return PeriodResponse{
		ID:           p.ID,
		Name:         p.Name,
		StartDate:    p.StartDate.Format(validator.DateLayout),
		EndDate:      p.EndDate.Format(validator.DateLayout),
		TotalDays:    p.TotalDays,
		Status:       string(p.Status),
		CalculatedAt: p.CalculatedAt,
		ApprovedAt:   p.ApprovedAt,
		ApprovedBy:   p.ApprovedBy,
		CreatedAt:    p.CreatedAt,
	}
}

type ListPeriodResponse struct {
	TotalCount int64            `json:"total_count"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
	Periods    []PeriodResponse `json:"periods"`
}

// ========== RECORD DTOs ==========

type RecordResponse struct {
	EmployeeID     string          `json:"employee_id"`
	EmployeeName   string          `json:"employee_name"`
	EmployeeCode   string          `json:"employee_code,omitempty"`
	Department     string          `json:"department,omitempty"`
	WorkingDays    int             `json:"working_days"`
	AbsentDays     int             `json:"absent_days"`
	AnnualLeave    int             `json:"annual_leave"`
	SickLeave      int             `json:"sick_leave"`
	EmergencyLeave int             `json:"emergency_leave"`
	UnpaidLeave    int             `json:"unpaid_leave"`
	TotalPayDays   int             `json:"total_pay_days"`
	BasicSalary    decimal.Decimal `json:"basic_salary"`
	Deductions     decimal.Decimal `json:"deductions"`
	NetSalary      decimal.Decimal `json:"net_salary"`
}

func ToRecordResponse(r PayrollRecord) RecordResponse {
	return RecordResponse{
		EmployeeID:     r.EmployeeID,
		EmployeeName:   r.EmployeeName,
		EmployeeCode:   r.EmployeeCode,
		Department:     r.Department,
		WorkingDays:    r.WorkingDays,
		AbsentDays:     r.AbsentDays,
		AnnualLeave:    r.AnnualLeave,
		SickLeave:      r.SickLeave,
		EmergencyLeave: r.EmergencyLeave,
		UnpaidLeave:    r.UnpaidLeave,
		TotalPayDays:   r.TotalPayDays,
		BasicSalary:    r.BasicSalary,
		Deductions:     r.Deductions,
		NetSalary:      r.NetSalary,
	}
}

// Warning is a data quality note raised while matching attendance to employees.
type Warning struct {
	Date       string   `json:"date,omitempty"`
	RecordKey  string   `json:"record_key"`
	Rule       string   `json:"rule"`
	Candidates []string `json:"candidates"`
	Message    string   `json:"message"`
}

type CalculateResponse struct {
	Period   PeriodResponse   `json:"period"`
	Records  []RecordResponse `json:"records"`
	Warnings []Warning        `json:"warnings,omitempty"`
}

type SummaryResponse struct {
	PeriodID         string          `json:"period_id"`
	Status           string          `json:"status"`
	EmployeeCount    int             `json:"employee_count"`
	TotalBasicSalary decimal.Decimal `json:"total_basic_salary"`
	TotalDeductions  decimal.Decimal `json:"total_deductions"`
	TotalNetSalary   decimal.Decimal `json:"total_net_salary"`
	TotalAbsentDays  int             `json:"total_absent_days"`
	TotalPayDays     int             `json:"total_pay_days"`
}
