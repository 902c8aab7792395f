package attendance

import "errors"

var (
	ErrAttendanceExists = errors.New("attendance already recorded for this employee and date")
	ErrEmptyImport      = errors.New("import contains no rows")
	ErrInvalidWorkbook  = errors.New("invalid attendance workbook")
)
