package performance

import "time"

// Snapshot is one employee's attendance picture for a reporting window.
type Snapshot struct {
	PresentDays      int `json:"present_days"`
	AbsentDays       int `json:"absent_days"`
	LeaveBalance     int `json:"leave_balance"`
	PerformanceRate  int `json:"performance_rate"`
	TotalWorkingDays int `json:"total_working_days"`
}

type EmployeeStats struct {
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	EmployeeCode string `json:"employee_code,omitempty"`
	Department   string `json:"department,omitempty"`
	Position     string `json:"position,omitempty"`
	Snapshot
}

type DepartmentStats struct {
	Department         string `json:"department"`
	Employees          int    `json:"employees"`
	PresentDays        int    `json:"present_days"`
	AbsentDays         int    `json:"absent_days"`
	AveragePerformance int    `json:"average_performance"`
}

type Warning struct {
	Date       string   `json:"date,omitempty"`
	RecordKey  string   `json:"record_key"`
	Rule       string   `json:"rule"`
	Candidates []string `json:"candidates"`
	Message    string   `json:"message"`
}

type StatsResponse struct {
	Year             int               `json:"year"`
	Month            int               `json:"month"`
	ThroughDay       int               `json:"through_day"`
	WorkingDays      int               `json:"working_days"`
	Employees        []EmployeeStats   `json:"employees"`
	Departments      []DepartmentStats `json:"departments"`
	UnmatchedRecords int               `json:"unmatched_records"`
	Warnings         []Warning         `json:"warnings,omitempty"`
	GeneratedAt      time.Time         `json:"generated_at"`
}

type WorkingDaysResponse struct {
	Year        int    `json:"year"`
	Month       int    `json:"month"`
	ThroughDay  int    `json:"through_day"`
	WorkingDays int    `json:"working_days"`
	Weekend     string `json:"weekend"`
}
