package backendapi

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/dairy-admin/dairy-hr-backend/internal/domain/attendance"
	"github.com/dairy-admin/dairy-hr-backend/internal/domain/employee"
	"github.com/dairy-admin/dairy-hr-backend/internal/domain/leave"
	"github.com/shopspring/decimal"
)

// flexString accepts a JSON string, number or null. The legacy backend
// is inconsistent about numeric ids and salaries.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		// booleans and objects are treated as missing
		*f = ""
		return nil
	}
	*f = flexString(n.String())
	return nil
}

func (f flexString) String() string { return string(f) }

func (f flexString) ptr() *string {
	if f == "" {
		return nil
	}
	s := string(f)
	return &s
}

// decodeList accepts a bare array or an envelope with a data array.
func decodeList[T any](body []byte) ([]T, error) {
	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '[' {
		var items []T
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, err
		}
		return items, nil
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, err
	}
	if len(envelope.Data) == 0 || bytes.Equal(envelope.Data, []byte("null")) {
		return []T{}, nil
	}
	return decodeList[T](envelope.Data)
}

// decodeOne accepts a bare object or an envelope with a data object.
func decodeOne[T any](body []byte) (T, error) {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	var out T
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Data) > 0 && envelope.Data[0] == '{' {
		err := json.Unmarshal(envelope.Data, &out)
		return out, err
	}
	err := json.Unmarshal(body, &out)
	return out, err
}

// parseDate reads YYYY-MM-DD, tolerating a trailing time component. Unparseable dates are zero.
func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if len(s) > 10 {
		s = s[:10]
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}
	}
	return d
}

// Every field is a flexString so one odd value never fails the whole list.
type remoteEmployee struct {
	ID            flexString `json:"id"`
	EmployeeCode  flexString `json:"employee_code"`
	FingerprintID flexString `json:"fingerprint_id"`
	FullName      flexString `json:"full_name"`
	Name          flexString `json:"name"`
	Username      flexString `json:"username"`
	Department    flexString `json:"department"`
	Position      flexString `json:"position"`
	Salary        flexString `json:"salary"`
	HireDate      flexString `json:"hire_date"`
	LeaveBalance  flexString `json:"leave_balance"`
	Status        flexString `json:"status"`
}

func (r remoteEmployee) toEntity() employee.Employee {
	salary, err := decimal.NewFromString(r.Salary.String())
	if err != nil {
		salary = decimal.Zero
	}
	e := employee.Employee{
		ID:            r.ID.String(),
		EmployeeCode:  r.EmployeeCode.String(),
		FingerprintID: r.FingerprintID.String(),
		FullName:      r.FullName.String(),
		Name:          r.Name.String(),
		Username:      r.Username.String(),
		Department:    r.Department.String(),
		Position:      r.Position.String(),
		Salary:        salary,
		Status:        employee.Status(strings.ToLower(r.Status.String())),
	}
	if d := parseDate(r.HireDate.String()); !d.IsZero() {
		e.HireDate = &d
	}
	if n, err := strconv.Atoi(r.LeaveBalance.String()); err == nil {
		e.LeaveBalance = &n
	}
	return e
}

type remoteAttendance struct {
	ID           flexString `json:"id"`
	EmployeeID   flexString `json:"employee_id"`
	EmployeeName flexString `json:"employee_name"`
	Date         flexString `json:"date"`
	CheckIn      flexString `json:"check_in"`
	CheckOut     flexString `json:"check_out"`
	Status       flexString `json:"status"`
	Source       flexString `json:"source"`
}

func (r remoteAttendance) toEntity() attendance.Attendance {
	a := attendance.Attendance{
		ID:           r.ID.String(),
		EmployeeID:   r.EmployeeID.String(),
		EmployeeName: r.EmployeeName.String(),
		Date:         parseDate(r.Date.String()),
		CheckIn:      r.CheckIn.ptr(),
		CheckOut:     r.CheckOut.ptr(),
		Source:       attendance.Source(r.Source.String()),
	}
	if r.Status != "" {
		status := attendance.Status(strings.ToLower(r.Status.String()))
		a.Status = &status
	}
	return a
}

type remoteLeave struct {
	ID           flexString `json:"id"`
	EmployeeID   flexString `json:"employee_id"`
	EmployeeName flexString `json:"employee_name"`
	LeaveType    flexString `json:"leave_type"`
	StartDate    flexString `json:"start_date"`
	EndDate      flexString `json:"end_date"`
	Reason       flexString `json:"reason"`
	Status       flexString `json:"status"`
}

func (r remoteLeave) toEntity() leave.LeaveRequest {
	l := leave.LeaveRequest{
		ID:           r.ID.String(),
		EmployeeID:   r.EmployeeID.String(),
		EmployeeName: r.EmployeeName.String(),
		LeaveType:    r.LeaveType.String(),
		StartDate:    parseDate(r.StartDate.String()),
		EndDate:      parseDate(r.EndDate.String()),
		Reason:       r.Reason.ptr(),
		Status:       leave.Status(strings.ToLower(r.Status.String())),
	}
	if l.Valid() {
		l.DaysCount = leave.InclusiveDays(l.StartDate, l.EndDate)
	}
	return l
}
