package spreadsheet

import (
	"fmt"
	"io"

	"github.com/dairy-admin/dairy-hr-backend/internal/domain/payroll"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const payrollSheet = "Payroll"

var payrollHeaders = []interface{}{
	"Employee ID", "Employee Code", "Employee Name", "Department",
	"Working Days", "Absent Days", "Annual Leave", "Sick Leave", "Emergency Leave", "Unpaid Leave",
	"Total Pay Days", "Basic Salary", "Deductions", "Net Salary",
}

// WritePayroll renders a period's records as an xlsx workbook: a title row,
// a header row, one row per record and a totals row.
func WritePayroll(w io.Writer, period payroll.PayrollPeriod, records []payroll.PayrollRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", payrollSheet); err != nil {
		return err
	}

	title := fmt.Sprintf("Payroll %s to %s (%s)",
		period.StartDate.Format("2006-01-02"), period.EndDate.Format("2006-01-02"), period.Status)
	if err := f.SetCellValue(payrollSheet, "A1", title); err != nil {
		return err
	}
	if err := f.SetSheetRow(payrollSheet, "A2", &payrollHeaders); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(payrollSheet, "A1", "N2", bold); err != nil {
		return err
	}

	var basic, deductions, net decimal.Decimal
	var payDays, absent int
	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+3)
		if err != nil {
			return err
		}
		row := []interface{}{
			rec.EmployeeID, rec.EmployeeCode, rec.EmployeeName, rec.Department,
			rec.WorkingDays, rec.AbsentDays, rec.AnnualLeave, rec.SickLeave, rec.EmergencyLeave, rec.UnpaidLeave,
			rec.TotalPayDays,
			rec.BasicSalary.InexactFloat64(), rec.Deductions.InexactFloat64(), rec.NetSalary.InexactFloat64(),
		}
		if err := f.SetSheetRow(payrollSheet, cell, &row); err != nil {
			return err
		}
		basic = basic.Add(rec.BasicSalary)
		deductions = deductions.Add(rec.Deductions)
		net = net.Add(rec.NetSalary)
		payDays += rec.TotalPayDays
		absent += rec.AbsentDays
	}

	totalRow := len(records) + 3
	totalsCell, err := excelize.CoordinatesToCellName(1, totalRow)
	if err != nil {
		return err
	}
	totals := []interface{}{
		"Total", "", "", "",
		"", absent, "", "", "", "",
		payDays,
		basic.InexactFloat64(), deductions.InexactFloat64(), net.InexactFloat64(),
	}
	if err := f.SetSheetRow(payrollSheet, totalsCell, &totals); err != nil {
		return err
	}
	lastCell, _ := excelize.CoordinatesToCellName(len(payrollHeaders), totalRow)
	if err := f.SetCellStyle(payrollSheet, totalsCell, lastCell, bold); err != nil {
		return err
	}

	if err := f.SetColWidth(payrollSheet, "A", "D", 22); err != nil {
		return err
	}
	if err := f.SetColWidth(payrollSheet, "E", "N", 14); err != nil {
		return err
	}

	return f.Write(w)
}
