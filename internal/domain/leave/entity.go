package leave

import (
	"strings"
	"time"
)

type Type string

const (
	TypeAnnual    Type = "annual"
	TypeSick      Type = "sick"
	TypeEmergency Type = "emergency"
	TypeUnpaid    Type = "unpaid"
)

// ParseType normalizes a stored leave type. ok is false for unknown types.
func ParseType(s string) (Type, bool) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case TypeAnnual, TypeSick, TypeEmergency, TypeUnpaid:
		return t, true
	}
	return "", false
}

// Paid reports whether days of this type count as pay days.
func (t Type) Paid() bool {
	return t != TypeUnpaid
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

type LeaveRequest struct {
	ID              string
	EmployeeID      string
	EmployeeName    string
	LeaveType       string
	StartDate       time.Time
	EndDate         time.Time
	DaysCount       int
	Reason          *string
	Status          Status
	ApprovedBy      *string
	ApprovedAt      *time.Time
	RejectionReason *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Valid reports a well-formed range.
func (r LeaveRequest) Valid() bool {
	return !r.StartDate.IsZero() && !r.EndDate.Before(r.StartDate)
}

// Covers reports whether day falls inside [StartDate, EndDate], comparing calendar dates.
func (r LeaveRequest) Covers(day time.Time) bool {
	d := dateOf(day)
	return !d.Before(dateOf(r.StartDate)) && !d.After(dateOf(r.EndDate))
}

func (r LeaveRequest) IsApproved() bool {
	return r.Status == StatusApproved
}

// InclusiveDays counts calendar days between start and end, both included.
func InclusiveDays(start, end time.Time) int {
	return int(dateOf(end).Sub(dateOf(start)).Hours()/24) + 1
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
