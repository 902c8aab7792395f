package attendance

import (
	"strings"
	"time"
)

type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLate    Status = "late"
	StatusLeave   Status = "leave"
)

type Source string

const (
	SourceManual       Source = "manual"
	SourceFingerprint  Source = "fingerprint"
	SourceZKTecoImport Source = "zkteco_import"
	SourceExcelImport  Source = "excel_import"
)

// Attendance is one employee day as recorded by HR or imported from a terminal.
// EmployeeID may hold the employee uuid, code, fingerprint id or username
// depending on where the row came from.
type Attendance struct {
	ID           string
	EmployeeID   string
	EmployeeName string
	Date         time.Time
	CheckIn      *string
	CheckOut     *string
	Status       *Status
	Source       Source
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (a Attendance) hasCheckIn() bool {
	return a.CheckIn != nil && strings.TrimSpace(*a.CheckIn) != ""
}

// IsPresent reports an explicit present status or any recorded check-in.
func (a Attendance) IsPresent() bool {
	if a.Status != nil && *a.Status == StatusPresent {
		return true
	}
	return a.hasCheckIn()
}

// IsAbsent reports an explicit absent status, or a row with neither check-in nor status.
func (a Attendance) IsAbsent() bool {
	if a.Status != nil && *a.Status == StatusAbsent {
		return true
	}
	return !a.hasCheckIn() && a.Status == nil
}
