package attendance

import (
	"strings"
	"time"

	"github.com/dairy-admin/dairy-hr-backend/internal/pkg/validator"
)

var validStatuses = []string{
	string(StatusPresent),
	string(StatusAbsent),
	string(StatusLate),
	string(StatusLeave),
}

// CreateAttendanceRequest is one attendance row, either posted directly or read from an import.
type CreateAttendanceRequest struct {
	EmployeeID   string  `json:"employee_id" validate:"required,max=100"`
	EmployeeName string  `json:"employee_name,omitempty" validate:"max=255"`
	Date         string  `json:"date" validate:"required,isodate"`
	CheckIn      *string `json:"check_in,omitempty" validate:"omitempty,clock"`
	CheckOut     *string `json:"check_out,omitempty" validate:"omitempty,clock"`
	Status       *string `json:"status,omitempty"`
}

func (r *CreateAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if err := validator.Struct(r); err != nil {
		tagErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		errs = append(errs, tagErrs...)
	}

	if r.Status != nil && *r.Status != "" && !validator.IsInSlice(strings.ToLower(*r.Status), validStatuses) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: " + strings.Join(validStatuses, ", "),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ToEntity converts a validated request. Blank clock values and statuses become nil.
func (r CreateAttendanceRequest) ToEntity(source Source) Attendance {
	date, _ := validator.IsValidDate(r.Date)
	a := Attendance{
		EmployeeID:   strings.TrimSpace(r.EmployeeID),
		EmployeeName: strings.TrimSpace(r.EmployeeName),
		Date:         date,
		CheckIn:      blankToNil(r.CheckIn),
		CheckOut:     blankToNil(r.CheckOut),
		Source:       source,
	}
	if s := blankToNil(r.Status); s != nil {
		status := Status(strings.ToLower(*s))
		a.Status = &status
	}
	return a
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

type AttendanceFilter struct {
	EmployeeID *string
	DateFrom   *string
	DateTo     *string
	Status     *string
	Page       int
	Limit      int
}

func (f *AttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	var from, to time.Time
	if f.DateFrom != nil {
		d, ok := validator.IsValidDate(*f.DateFrom)
		if !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "date_from",
				Message: "date_from must be in YYYY-MM-DD format",
			})
		}
		from = d
	}
	if f.DateTo != nil {
		d, ok := validator.IsValidDate(*f.DateTo)
		if !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "date_to",
				Message: "date_to must be in YYYY-MM-DD format",
			})
		}
		to = d
	}
	if len(errs) == 0 && f.DateFrom != nil && f.DateTo != nil && to.Before(from) {
		errs = append(errs, validator.ValidationError{
			Field:   "date_to",
			Message: "date_to must not be before date_from",
		})
	}

	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 500 {
		f.Limit = 100
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (f AttendanceFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

type AttendanceResponse struct {
	ID           string    `json:"id"`
	EmployeeID   string    `json:"employee_id"`
	EmployeeName string    `json:"employee_name,omitempty"`
	Date         string    `json:"date"`
	CheckIn      *string   `json:"check_in"`
	CheckOut     *string   `json:"check_out"`
	Status       *string   `json:"status"`
	Source       string    `json:"source"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func ToResponse(a Attendance) AttendanceResponse {
	resp := AttendanceResponse{
		ID:           a.ID,
		EmployeeID:   a.EmployeeID,
		EmployeeName: a.EmployeeName,
		Date:         a.Date.Format(validator.DateLayout),
		CheckIn:      a.CheckIn,
		CheckOut:     a.CheckOut,
		Source:       string(a.Source),
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
	if a.Status != nil {
		s := string(*a.Status)
		resp.Status = &s
	}
	return resp
}

type ListAttendanceResponse struct {
	TotalCount int64                `json:"total_count"`
	Page       int                  `json:"page"`
	Limit      int                  `json:"limit"`
	TotalPages int                  `json:"total_pages"`
	Records    []AttendanceResponse `json:"records"`
}

type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

type ImportResult struct {
	BatchID  string     `json:"batch_id"`
	Total    int        `json:"total"`
	Imported int        `json:"imported"`
	Failed   int        `json:"failed"`
	Errors   []RowError `json:"errors,omitempty"`
}
