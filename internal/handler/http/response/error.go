package response

import (
	"errors"
	"net/http"

	"github.com/dairy-admin/dairy-hr-backend/internal/domain/attendance"
	"github.com/dairy-admin/dairy-hr-backend/internal/domain/employee"
	"github.com/dairy-admin/dairy-hr-backend/internal/domain/leave"
	"github.com/dairy-admin/dairy-hr-backend/internal/domain/payroll"
	"github.com/dairy-admin/dairy-hr-backend/internal/pkg/validator"
	"github.com/dairy-admin/dairy-hr-backend/internal/pkg/workdays"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	case errors.Is(err, workdays.ErrInvalidDateRange):
		BadRequest(w, err.Error(), nil)

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrEmployeeCodeExists):
		Conflict(w, "Employee code already exists")
	case errors.Is(err, employee.ErrFingerprintIDExists):
		Conflict(w, "Fingerprint ID already assigned to another employee")
	case errors.Is(err, employee.ErrUsernameExists):
		Conflict(w, "Username already taken")

	// Attendance domain errors
	case errors.Is(err, attendance.ErrAttendanceExists):
		Conflict(w, "Attendance already recorded for this employee and date")
	case errors.Is(err, attendance.ErrEmptyImport):
		BadRequest(w, "Import contains no rows", nil)
	case errors.Is(err, attendance.ErrInvalidWorkbook):
		BadRequest(w, err.Error(), nil)

	// Leave domain errors
	case errors.Is(err, leave.ErrLeaveRequestNotFound):
		NotFound(w, "Leave request not found")
	case errors.Is(err, leave.ErrInsufficientBalance):
		BadRequest(w, "Insufficient leave balance", nil)
	case errors.Is(err, leave.ErrLeaveRequestAlreadyProcessed):
		Conflict(w, "Leave request already processed")

	// Payroll domain errors; NotCalculated also matches Locked so it goes first
	case errors.Is(err, payroll.ErrPeriodNotFound):
		NotFound(w, "Payroll period not found")
	case errors.Is(err, payroll.ErrPeriodNotCalculated):
		Conflict(w, "Payroll period has not been calculated")
	case errors.Is(err, payroll.ErrPeriodLocked):
		Conflict(w, "Payroll period is approved and locked")
	case errors.Is(err, payroll.ErrPeriodOverlaps):
		Conflict(w, "Payroll period overlaps an existing period")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
