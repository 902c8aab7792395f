package attendance

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dairy-admin/dairy-hr-backend/internal/domain/attendance"
	"github.com/dairy-admin/dairy-hr-backend/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type memAttendance struct {
	rows        map[string]attendance.Attendance
	failFor     string
	afterUpsert func()
}

func newMemAttendance() *memAttendance {
	return &memAttendance{rows: map[string]attendance.Attendance{}}
}

func key(a attendance.Attendance) string {
	return a.EmployeeID + "|" + a.Date.Format(validator.DateLayout)
}

func (m *memAttendance) ListByDateRange(ctx context.Context, from, to time.Time) ([]attendance.Attendance, error) {
	var out []attendance.Attendance
	for _, a := range m.rows {
		if !a.Date.Before(from) && !a.Date.After(to) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memAttendance) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	var out []attendance.Attendance
	for _, a := range m.rows {
		if filter.EmployeeID == nil || a.EmployeeID == *filter.EmployeeID {
			out = append(out, a)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memAttendance) Create(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	a.ID = key(a)
	m.rows[key(a)] = a
	return a, nil
}

func (m *memAttendance) Upsert(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	if a.EmployeeID == m.failFor {
		return attendance.Attendance{}, errors.New("connection reset")
	}
	if m.afterUpsert != nil {
		defer m.afterUpsert()
	}
	return m.Create(ctx, a)
}

type countingInvalidator struct {
	calls   int
	ctxErrs []error
}

func (c *countingInvalidator) Invalidate(ctx context.Context) error {
	c.calls++
	c.ctxErrs = append(c.ctxErrs, ctx.Err())
	return nil
}

func TestCreateAttendance(t *testing.T) {
	repo := newMemAttendance()
	stats := &countingInvalidator{}
	svc := NewAttendanceService(repo, stats)
	ctx := context.Background()
	in := "07:30"
	status := "Present"

	resp, err := svc.CreateAttendance(ctx, attendance.CreateAttendanceRequest{
		EmployeeID: "D-01",
		Date:       "2024-01-16",
		CheckIn:    &in,
		Status:     &status,
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-16", resp.Date)
	assert.Equal(t, "manual", resp.Source)
	require.NotNil(t, resp.Status)
	assert.Equal(t, "present", *resp.Status)
	assert.Equal(t, 1, stats.calls)

	bad := "25:00"
	_, err = svc.CreateAttendance(ctx, attendance.CreateAttendanceRequest{EmployeeID: "D-01", Date: "16/01/2024", CheckIn: &bad})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "date")
	assert.Contains(t, verrs.ToMap(), "check_in")
	assert.Equal(t, 1, stats.calls)
}

func TestImportRows(t *testing.T) {
	repo := newMemAttendance()
	repo.failFor = "D-09"
	stats := &countingInvalidator{}
	svc := NewAttendanceService(repo, stats)
	ctx := context.Background()
	in := "07:30"
	late := "LATE"

	result, err := svc.ImportRows(ctx, []attendance.CreateAttendanceRequest{
		{EmployeeID: "D-01", Date: "2024-01-16", CheckIn: &in},
		{EmployeeID: "D-01", Date: "2024-01-16", Status: &late},
		{EmployeeID: "", Date: "2024-01-16"},
		{EmployeeID: "D-09", Date: "2024-01-16"},
	}, attendance.SourceZKTecoImport)
	require.NoError(t, err)

	assert.NotEmpty(t, result.BatchID)
	assert.Equal(t, 4, result.Total)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 2, result.Failed)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, 3, result.Errors[0].Row)
	assert.Contains(t, result.Errors[0].Message, "employee_id")
	assert.Equal(t, 4, result.Errors[1].Row)
	assert.Equal(t, 1, stats.calls)

	// second row replaced the first for the same employee day
	require.Len(t, repo.rows, 1)
	stored := repo.rows["D-01|2024-01-16"]
	assert.Equal(t, attendance.SourceZKTecoImport, stored.Source)
	require.NotNil(t, stored.Status)
	assert.Equal(t, attendance.StatusLate, *stored.Status)

	_, err = svc.ImportRows(ctx, nil, attendance.SourceManual)
	assert.ErrorIs(t, err, attendance.ErrEmptyImport)
}

func TestImportRows_CancelledAfterPartialImport(t *testing.T) {
	repo := newMemAttendance()
	stats := &countingInvalidator{}
	svc := NewAttendanceService(repo, stats)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	repo.afterUpsert = cancel

	result, err := svc.ImportRows(ctx, []attendance.CreateAttendanceRequest{
		{EmployeeID: "D-01", Date: "2024-01-16"},
		{EmployeeID: "D-02", Date: "2024-01-16"},
		{EmployeeID: "D-03", Date: "2024-01-16"},
	}, attendance.SourceZKTecoImport)
	assert.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, 1, result.Imported)
	assert.Len(t, repo.rows, 1)
	// stats are invalidated on a live context even though the import was cancelled
	assert.Equal(t, 1, stats.calls)
	assert.Equal(t, []error{nil}, stats.ctxErrs)
}

func TestImportWorkbook(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"Employee ID", "Date", "Check In"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"D-01", "2024-01-16", "07:30"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{"D-02", "not a date", ""}))
	buf := new(bytes.Buffer)
	require.NoError(t, f.Write(buf))

	repo := newMemAttendance()
	svc := NewAttendanceService(repo, nil)

	result, err := svc.ImportWorkbook(context.Background(), buf)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, result.Imported)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 3, result.Errors[0].Row)
	assert.Equal(t, attendance.SourceExcelImport, repo.rows["D-01|2024-01-16"].Source)

	_, err = svc.ImportWorkbook(context.Background(), bytes.NewBufferString("plain text"))
	assert.ErrorIs(t, err, attendance.ErrInvalidWorkbook)
}

func TestListAttendance(t *testing.T) {
	repo := newMemAttendance()
	svc := NewAttendanceService(repo, nil)
	ctx := context.Background()

	_, err := svc.CreateAttendance(ctx, attendance.CreateAttendanceRequest{EmployeeID: "D-01", Date: "2024-01-16"})
	require.NoError(t, err)

	resp, err := svc.ListAttendance(ctx, attendance.AttendanceFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.TotalCount)
	assert.Equal(t, 100, resp.Limit)
	assert.Equal(t, 1, resp.TotalPages)

	from, to := "2024-02-01", "2024-01-01"
	_, err = svc.ListAttendance(ctx, attendance.AttendanceFilter{DateFrom: &from, DateTo: &to})
	assert.Error(t, err)
}
