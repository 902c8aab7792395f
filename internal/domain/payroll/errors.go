package payroll

import (
	"errors"

	"github.com/dairy-admin/dairy-hr-backend/internal/pkg/workdays"
)

var (
	ErrInvalidDateRange = workdays.ErrInvalidDateRange
	ErrPeriodNotFound   = errors.New("payroll period not found")
	ErrPeriodLocked     = errors.New("payroll period is approved and locked")
	ErrPeriodOverlaps   = errors.New("payroll period overlaps an existing period")

	// ErrPeriodNotCalculated is returned when approving a draft period.
	// errors.Is also matches it against ErrPeriodLocked.
	ErrPeriodNotCalculated error = notCalculatedError{}
)

type notCalculatedError struct{}

func (notCalculatedError) Error() string { return "payroll period has not been calculated" }

func (notCalculatedError) Is(target error) bool { return target == ErrPeriodLocked }
