// Package spreadsheet reads attendance workbooks and writes payroll workbooks.
package spreadsheet

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dairy-admin/dairy-hr-backend/internal/domain/attendance"
	"github.com/xuri/excelize/v2"
)

const (
	colEmployeeID   = "employee_id"
	colEmployeeName = "employee_name"
	colDate         = "date"
	colCheckIn      = "check_in"
	colCheckOut     = "check_out"
	colStatus       = "status"
)

// headerAliases maps normalized header text, English or Arabic, to a column.
var headerAliases = map[string]string{
	"employee_id":     colEmployeeID,
	"employee id":     colEmployeeID,
	"employee code":   colEmployeeID,
	"emp id":          colEmployeeID,
	"id":              colEmployeeID,
	"code":            colEmployeeID,
	"fingerprint id":  colEmployeeID,
	"رقم الموظف":      colEmployeeID,
	"الرقم الوظيفي":   colEmployeeID,
	"employee_name":   colEmployeeName,
	"employee name":   colEmployeeName,
	"name":            colEmployeeName,
	"اسم الموظف":      colEmployeeName,
	"الاسم":           colEmployeeName,
	"date":            colDate,
	"التاريخ":         colDate,
	"check_in":        colCheckIn,
	"check in":        colCheckIn,
	"time in":         colCheckIn,
	"in":              colCheckIn,
	"وقت الحضور":      colCheckIn,
	"الحضور":          colCheckIn,
	"check_out":       colCheckOut,
	"check out":       colCheckOut,
	"time out":        colCheckOut,
	"out":             colCheckOut,
	"وقت الانصراف":    colCheckOut,
	"الانصراف":        colCheckOut,
	"status":          colStatus,
	"الحالة":          colStatus,
}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
}

// Row is one data row of the workbook with its 1-based sheet line.
type Row struct {
	Line    int
	Request attendance.CreateAttendanceRequest
}

// ReadAttendance parses the first sheet of an xlsx workbook. The first row is
// the header; it must name a date column and an employee id or name column.
// Cells that cannot be normalized are passed through so row validation reports them.
func ReadAttendance(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", attendance.ErrInvalidWorkbook, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: no sheets", attendance.ErrInvalidWorkbook)
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", attendance.ErrInvalidWorkbook, err)
	}
	if len(rows) == 0 {
		return nil, attendance.ErrEmptyImport
	}

	cols := mapHeader(rows[0])
	if _, ok := cols[colDate]; !ok {
		return nil, fmt.Errorf("%w: missing date column", attendance.ErrInvalidWorkbook)
	}
	_, hasID := cols[colEmployeeID]
	_, hasName := cols[colEmployeeName]
	if !hasID && !hasName {
		return nil, fmt.Errorf("%w: missing employee id or name column", attendance.ErrInvalidWorkbook)
	}

	var out []Row
	for i, raw := range rows[1:] {
		if blank(raw) {
			continue
		}
		cell := func(col string) string {
			idx, ok := cols[col]
			if !ok || idx >= len(raw) {
				return ""
			}
			return strings.TrimSpace(raw[idx])
		}

		req := attendance.CreateAttendanceRequest{
			EmployeeID:   cell(colEmployeeID),
			EmployeeName: cell(colEmployeeName),
			Date:         normalizeDate(cell(colDate)),
			CheckIn:      optional(normalizeClock(cell(colCheckIn))),
			CheckOut:     optional(normalizeClock(cell(colCheckOut))),
			Status:       optional(strings.ToLower(cell(colStatus))),
		}
		// Name-only sheets key the row by name so it still reaches the resolver.
		if req.EmployeeID == "" {
			req.EmployeeID = req.EmployeeName
		}
		out = append(out, Row{Line: i + 2, Request: req})
	}

	if len(out) == 0 {
		return nil, attendance.ErrEmptyImport
	}
	return out, nil
}

func mapHeader(header []string) map[string]int {
	cols := make(map[string]int)
	for i, h := range header {
		key := strings.ToLower(strings.Join(strings.Fields(h), " "))
		col, ok := headerAliases[key]
		if !ok {
			continue
		}
		if _, dup := cols[col]; !dup {
			cols[col] = i
		}
	}
	return cols
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// normalizeDate accepts Excel serial numbers and the common text layouts.
func normalizeDate(s string) string {
	if s == "" {
		return ""
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err == nil {
			return t.Format("2006-01-02")
		}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return s
}

// normalizeClock turns Excel day fractions and H:MM[:SS] text into HH:MM.
func normalizeClock(s string) string {
	if s == "" {
		return ""
	}
	if frac, err := strconv.ParseFloat(s, 64); err == nil {
		frac -= math.Floor(frac)
		minutes := int(math.Round(frac * 24 * 60))
		if minutes >= 24*60 {
			minutes = 0
		}
		return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
	}
	for _, layout := range []string{"15:04", "15:04:05", "3:04 PM", "3:04PM"} {
		if t, err := time.Parse(layout, strings.ToUpper(s)); err == nil {
			return t.Format("15:04")
		}
	}
	return s
}
