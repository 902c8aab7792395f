package spreadsheet

import (
	"bytes"
	"testing"
	"time"

	"github.com/dairy-admin/dairy-hr-backend/internal/domain/attendance"
	"github.com/dairy-admin/dairy-hr-backend/internal/domain/payroll"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	buf := new(bytes.Buffer)
	require.NoError(t, f.Write(buf))
	return buf
}

func TestReadAttendance(t *testing.T) {
	buf := workbook(t, [][]interface{}{
		{"Employee ID", "Employee Name", "Date", "Check In", "Check Out", "Status"},
		{"D-01", "Salim", "2024-01-16", "07:45", "15:00", "Present"},
		{"44", "", "16/01/2024", "8:05", "", ""},
		{},
		{"D-02", "Aisha", time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC), "", "", "absent"},
		{"D-03", "", "yesterday", "", "", ""},
	})

	rows, err := ReadAttendance(buf)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	first := rows[0].Request
	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, "D-01", first.EmployeeID)
	assert.Equal(t, "Salim", first.EmployeeName)
	assert.Equal(t, "2024-01-16", first.Date)
	require.NotNil(t, first.CheckIn)
	assert.Equal(t, "07:45", *first.CheckIn)
	require.NotNil(t, first.CheckOut)
	assert.Equal(t, "15:00", *first.CheckOut)
	require.NotNil(t, first.Status)
	assert.Equal(t, "present", *first.Status)

	second := rows[1].Request
	assert.Equal(t, "2024-01-16", second.Date)
	assert.Equal(t, "08:05", *second.CheckIn)
	assert.Nil(t, second.CheckOut)
	assert.Nil(t, second.Status)

	third := rows[2]
	assert.Greater(t, third.Line, rows[1].Line)
	assert.Equal(t, "2024-01-17", third.Request.Date)
	assert.Nil(t, third.Request.CheckIn)

	bad := rows[3].Request
	assert.Equal(t, "yesterday", bad.Date)
	assert.Error(t, bad.Validate())
}

func TestReadAttendance_ArabicHeaders(t *testing.T) {
	buf := workbook(t, [][]interface{}{
		{"الاسم", "التاريخ", "وقت الحضور", "الحالة"},
		{"سالم الهنائي", "2024-02-01", "07:30", ""},
	})

	rows, err := ReadAttendance(buf)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	req := rows[0].Request
	assert.Equal(t, "سالم الهنائي", req.EmployeeName)
	assert.Equal(t, "سالم الهنائي", req.EmployeeID)
	assert.Equal(t, "2024-02-01", req.Date)
	assert.Equal(t, "07:30", *req.CheckIn)
}

func TestReadAttendance_InvalidWorkbook(t *testing.T) {
	_, err := ReadAttendance(bytes.NewBufferString("not a workbook"))
	assert.ErrorIs(t, err, attendance.ErrInvalidWorkbook)

	noDate := workbook(t, [][]interface{}{{"Employee ID", "Check In"}, {"D-01", "08:00"}})
	_, err = ReadAttendance(noDate)
	assert.ErrorIs(t, err, attendance.ErrInvalidWorkbook)

	headerOnly := workbook(t, [][]interface{}{{"Employee ID", "Date"}})
	_, err = ReadAttendance(headerOnly)
	assert.ErrorIs(t, err, attendance.ErrEmptyImport)
}

func TestNormalizeClock(t *testing.T) {
	tests := map[string]string{
		"":         "",
		"7:05":     "07:05",
		"07:05:59": "07:05",
		"0.5":      "12:00",
		"0.3125":   "07:30",
		"45306.75": "18:00",
		"2:15 pm":  "14:15",
		"junk":     "junk",
	}
	for in, want := range tests {
		assert.Equal(t, want, normalizeClock(in), in)
	}
}

func TestWritePayroll(t *testing.T) {
	period := payroll.PayrollPeriod{
		ID:        "p-1",
		StartDate: time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC),
		Status:    payroll.PeriodStatusCalculated,
	}
	records := []payroll.PayrollRecord{
		{
			EmployeeID: "emp-1", EmployeeName: "Salim", WorkingDays: 28, AbsentDays: 2, TotalPayDays: 28,
			BasicSalary: decimal.NewFromInt(900), Deductions: decimal.NewFromInt(60), NetSalary: decimal.NewFromInt(840),
		},
		{
			EmployeeID: "emp-2", EmployeeName: "Aisha", WorkingDays: 30, TotalPayDays: 30,
			BasicSalary: decimal.RequireFromString("750.500"), Deductions: decimal.Zero, NetSalary: decimal.RequireFromString("750.500"),
		},
	}

	buf := new(bytes.Buffer)
	require.NoError(t, WritePayroll(buf, period, records))

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	title, _ := f.GetCellValue(payrollSheet, "A1")
	assert.Equal(t, "Payroll 2024-01-16 to 2024-02-14 (calculated)", title)

	header, _ := f.GetCellValue(payrollSheet, "N2")
	assert.Equal(t, "Net Salary", header)

	name, _ := f.GetCellValue(payrollSheet, "C3")
	assert.Equal(t, "Salim", name)
	deduction, _ := f.GetCellValue(payrollSheet, "M3")
	assert.Equal(t, "60", deduction)

	total, _ := f.GetCellValue(payrollSheet, "A5")
	assert.Equal(t, "Total", total)
	net, _ := f.GetCellValue(payrollSheet, "N5")
	assert.Equal(t, "1590.5", net)
	absent, _ := f.GetCellValue(payrollSheet, "F5")
	assert.Equal(t, "2", absent)
}
