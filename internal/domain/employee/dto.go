package employee

import (
	"time"

	"github.com/dairy-admin/dairy-hr-backend/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CreateEmployeeRequest struct {
	EmployeeCode  string          `json:"employee_code" validate:"required,max=50"`
	FingerprintID string          `json:"fingerprint_id,omitempty" validate:"max=50"`
	FullName      string          `json:"full_name" validate:"required,max=255"`
	Name          string          `json:"name,omitempty" validate:"max=100"`
	Username      string          `json:"username,omitempty" validate:"max=100"`
	Department    string          `json:"department,omitempty" validate:"max=100"`
	Position      string          `json:"position,omitempty" validate:"max=100"`
	Salary        decimal.Decimal `json:"salary"`
	HireDate      *string         `json:"hire_date,omitempty" validate:"omitempty,isodate"`
	LeaveBalance  *int            `json:"leave_balance,omitempty" validate:"omitempty,gte=0"`
}

func (r *CreateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if err := validator.Struct(r); err != nil {
		tagErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		errs = append(errs, tagErrs...)
	}

	if r.Salary.IsNegative() {
		errs = append(errs, validator.ValidationError{
			Field:   "salary",
			Message: "salary must not be negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UpdateEmployeeRequest applies only the fields that are set.
type UpdateEmployeeRequest struct {
	ID            string           `json:"-"`
	FingerprintID *string          `json:"fingerprint_id,omitempty"`
	FullName      *string          `json:"full_name,omitempty"`
	Name          *string          `json:"name,omitempty"`
	Username      *string          `json:"username,omitempty"`
	Department    *string          `json:"department,omitempty"`
	Position      *string          `json:"position,omitempty"`
	Salary        *decimal.Decimal `json:"salary,omitempty"`
	HireDate      *string          `json:"hire_date,omitempty"`
	LeaveBalance  *int             `json:"leave_balance,omitempty"`
	Status        *string          `json:"status,omitempty"`
}

func (r *UpdateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}
	if r.FullName != nil && validator.IsEmpty(*r.FullName) {
		errs = append(errs, validator.ValidationError{
			Field:   "full_name",
			Message: "full_name must not be empty",
		})
	}
	if r.Salary != nil && r.Salary.IsNegative() {
		errs = append(errs, validator.ValidationError{
			Field:   "salary",
			Message: "salary must not be negative",
		})
	}
	if r.HireDate != nil {
		if _, ok := validator.IsValidDate(*r.HireDate); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "hire_date",
				Message: "hire_date must be in YYYY-MM-DD format",
			})
		}
	}
	if r.LeaveBalance != nil && *r.LeaveBalance < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "leave_balance",
			Message: "leave_balance must not be negative",
		})
	}
	if r.Status != nil && !validator.IsInSlice(*r.Status, []string{string(StatusActive), string(StatusInactive)}) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: active, inactive",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type EmployeeFilter struct {
	Search     *string
	Department *string
	Status     *string
	Page       int
	Limit      int
}

func (f *EmployeeFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 200 {
		f.Limit = 50
	}
}

func (f EmployeeFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

type EmployeeResponse struct {
	ID            string          `json:"id"`
	EmployeeCode  string          `json:"employee_code"`
	FingerprintID string          `json:"fingerprint_id,omitempty"`
	FullName      string          `json:"full_name"`
	Name          string          `json:"name,omitempty"`
	Username      string          `json:"username,omitempty"`
	Department    string          `json:"department,omitempty"`
	Position      string          `json:"position,omitempty"`
	Salary        decimal.Decimal `json:"salary"`
	HireDate      *string         `json:"hire_date,omitempty"`
	LeaveBalance  int             `json:"leave_balance"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func ToResponse(e Employee) EmployeeResponse {
	resp := EmployeeResponse{
		ID:            e.ID,
		EmployeeCode:  e.EmployeeCode,
		FingerprintID: e.FingerprintID,
		FullName:      e.FullName,
		Name:          e.Name,
		Username:      e.Username,
		Department:    e.Department,
		Position:      e.Position,
		Salary:        e.Salary,
		LeaveBalance:  e.LeaveBalanceOr(DefaultLeaveBalance),
		Status:        string(e.Status),
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
	if resp.Status == "" {
		resp.Status = string(StatusActive)
	}
	if e.HireDate != nil {
		d := e.HireDate.Format(validator.DateLayout)
		resp.HireDate = &d
	}
	return resp
}

type ListEmployeeResponse struct {
	TotalCount int64              `json:"total_count"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
	Showing    string             `json:"showing"`
	Employees  []EmployeeResponse `json:"employees"`
}
