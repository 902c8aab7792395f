package performance

import (
	"math"

	"github.com/dairy-admin/dairy-hr-backend/internal/domain/attendance"
	"github.com/dairy-admin/dairy-hr-backend/internal/domain/employee"
	"github.com/dairy-admin/dairy-hr-backend/internal/domain/performance"
)

// Aggregate folds one employee's matched records into a snapshot.
// A nil leaveBalance falls back to employee.DefaultLeaveBalance.
func Aggregate(records []attendance.Attendance, workingDays int, leaveBalance *int) performance.Snapshot {
	snap := performance.Snapshot{
		LeaveBalance:     employee.DefaultLeaveBalance,
		TotalWorkingDays: workingDays,
	}
	if leaveBalance != nil {
		snap.LeaveBalance = *leaveBalance
	}

	for _, rec := range records {
		if rec.IsPresent() {
			snap.PresentDays++
		}
		if rec.IsAbsent() {
			snap.AbsentDays++
		}
	}

	snap.PerformanceRate = Rate(snap.PresentDays, workingDays)
	return snap
}

// Rate is present/workingDays as a whole percentage, capped at 100.
// No elapsed working days scores 100.
func Rate(present, workingDays int) int {
	if workingDays <= 0 {
		return 100
	}
	rate := int(math.Round(float64(present) / float64(workingDays) * 100))
	if rate > 100 {
		return 100
	}
	return rate
}
