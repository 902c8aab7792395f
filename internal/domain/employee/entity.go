package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultLeaveBalance is used when an employee record carries no balance.
const DefaultLeaveBalance = 30

type Employee struct {
	ID            string
	EmployeeCode  string
	FingerprintID string
	FullName      string
	Name          string
	Username      string
	Department    string
	Position      string
	Salary        decimal.Decimal
	HireDate      *time.Time
	LeaveBalance  *int
	Status        Status
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// IsActive treats an empty status as active; imported rows often omit it.
func (e Employee) IsActive() bool {
	return e.Status == "" || e.Status == StatusActive
}

// DisplayName prefers the full name and falls back to the short name.
func (e Employee) DisplayName() string {
	if e.FullName != "" {
		return e.FullName
	}
	return e.Name
}

// LeaveBalanceOr returns the stored balance or fallback when unset.
func (e Employee) LeaveBalanceOr(fallback int) int {
	if e.LeaveBalance == nil {
		return fallback
	}
	return *e.LeaveBalance
}
