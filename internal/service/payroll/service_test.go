package payroll

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/dairy-admin/dairy-hr-backend/internal/domain/attendance"
	"github.com/dairy-admin/dairy-hr-backend/internal/domain/employee"
	"github.com/dairy-admin/dairy-hr-backend/internal/domain/leave"
	"github.com/dairy-admin/dairy-hr-backend/internal/domain/payroll"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// memRepo mirrors the locking rules of the postgres repository.
type memRepo struct {
	mu      sync.Mutex
	periods map[string]payroll.PayrollPeriod
	records map[string][]payroll.PayrollRecord
}

func newMemRepo() *memRepo {
	return &memRepo{
		periods: map[string]payroll.PayrollPeriod{},
		records: map[string][]payroll.PayrollRecord{},
	}
}

func (m *memRepo) CreatePeriod(ctx context.Context, p payroll.PayrollPeriod) (payroll.PayrollPeriod, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now()
	m.periods[p.ID] = p
	return p, nil
}

func (m *memRepo) GetPeriod(ctx context.Context, id string) (payroll.PayrollPeriod, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.periods[id]
	if !ok {
		return payroll.PayrollPeriod{}, payroll.ErrPeriodNotFound
	}
	return p, nil
}

func (m *memRepo) ListPeriods(ctx context.Context, filter payroll.PeriodFilter) ([]payroll.PayrollPeriod, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []payroll.PayrollPeriod
	for _, p := range m.periods {
		if filter.Status == nil || string(p.Status) == *filter.Status {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	return out, int64(len(out)), nil
}

func (m *memRepo) HasOverlap(ctx context.Context, start, end time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.periods {
		if !start.After(p.EndDate) && !end.Before(p.StartDate) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memRepo) ReplaceRecords(ctx context.Context, periodID string, records []payroll.PayrollRecord, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.periods[periodID]
	if !ok {
		return payroll.ErrPeriodNotFound
	}
	if p.IsLocked() {
		return payroll.ErrPeriodLocked
	}
	m.records[periodID] = append([]payroll.PayrollRecord(nil), records...)
	p.Status = payroll.PeriodStatusCalculated
	p.CalculatedAt = &at
	m.periods[periodID] = p
	return nil
}

func (m *memRepo) Approve(ctx context.Context, periodID string, by *string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.periods[periodID]
	if !ok {
		return payroll.ErrPeriodNotFound
	}
	switch p.Status {
	case payroll.PeriodStatusApproved:
		return payroll.ErrPeriodLocked
	case payroll.PeriodStatusDraft:
		return payroll.ErrPeriodNotCalculated
	}
	p.Status = payroll.PeriodStatusApproved
	p.ApprovedAt = &at
	p.ApprovedBy = by
	m.periods[periodID] = p
	return nil
}

func (m *memRepo) DeletePeriod(ctx context.Context, periodID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.periods[periodID]
	if !ok {
		return payroll.ErrPeriodNotFound
	}
	if p.IsLocked() {
		return payroll.ErrPeriodLocked
	}
	delete(m.periods, periodID)
	delete(m.records, periodID)
	return nil
}

func (m *memRepo) ListRecords(ctx context.Context, periodID string) ([]payroll.PayrollRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records[periodID], nil
}

type stubEmployees struct {
	mu      sync.Mutex
	list    []employee.Employee
	calls   int
	entered chan struct{}
	release chan struct{}
}

func (s *stubEmployees) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (s *stubEmployees) ListActive(ctx context.Context) ([]employee.Employee, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.entered != nil {
		s.entered <- struct{}{}
		select {
		case <-s.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.list, nil
}

type stubAttendance struct{ records []attendance.Attendance }

func (s stubAttendance) ListByDateRange(ctx context.Context, from, to time.Time) ([]attendance.Attendance, error) {
	return s.records, nil
}

type stubLeaves struct {
	requests []leave.LeaveRequest
	err      error
}

func (s stubLeaves) ListApproved(ctx context.Context, from, to time.Time) ([]leave.LeaveRequest, error) {
	return s.requests, s.err
}

type fixture struct {
	svc  *PayrollServiceImpl
	repo *memRepo
	emps *stubEmployees
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	repo := newMemRepo()
	emps := &stubEmployees{list: []employee.Employee{
		{ID: "emp-1", FullName: "Salim Al Hinai", Salary: decimal.NewFromInt(900)},
	}}
	svc := NewPayrollService(repo, emps, stubAttendance{records: presentExcept("emp-1", 10, 11)}, stubLeaves{}, newEngine()).(*PayrollServiceImpl)
	svc.now = func() time.Time { return time.Date(2024, time.May, 2, 9, 0, 0, 0, time.UTC) }
	return fixture{svc: svc, repo: repo, emps: emps}
}

func (f fixture) aprilPeriodID(t *testing.T) string {
	t.Helper()
	start, end := "2024-04-01", "2024-04-30"
	resp, err := f.svc.CreatePeriod(context.Background(), payroll.CreatePeriodRequest{StartDate: &start, EndDate: &end})
	require.NoError(t, err)
	return resp.ID
}

func TestCanonicalPeriod(t *testing.T) {
	start, end := CanonicalPeriod(2024, time.December)
	assert.Equal(t, date(2024, time.December, 16), start)
	assert.Equal(t, date(2025, time.January, 15), end)
}

func TestCreatePeriod(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	year, month := 2024, 1

	resp, err := f.svc.CreatePeriod(ctx, payroll.CreatePeriodRequest{Year: &year, Month: &month})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-16", resp.StartDate)
	assert.Equal(t, "2024-02-15", resp.EndDate)
	assert.Equal(t, 31, resp.TotalDays)
	assert.Equal(t, "draft", resp.Status)

	start, end := "2024-02-01", "2024-02-20"
	_, err = f.svc.CreatePeriod(ctx, payroll.CreatePeriodRequest{StartDate: &start, EndDate: &end})
	assert.ErrorIs(t, err, payroll.ErrPeriodOverlaps)

	start, end = "2024-06-10", "2024-06-01"
	_, err = f.svc.CreatePeriod(ctx, payroll.CreatePeriodRequest{StartDate: &start, EndDate: &end})
	assert.ErrorIs(t, err, payroll.ErrInvalidDateRange)

	_, err = f.svc.CreatePeriod(ctx, payroll.CreatePeriodRequest{})
	assert.Error(t, err)
}

func TestCalculate_ReplacesRecords(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.aprilPeriodID(t)

	first, err := f.svc.Calculate(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "calculated", first.Period.Status)
	require.Len(t, first.Records, 1)
	assert.Equal(t, "840", first.Records[0].NetSalary.String())

	stored, err := f.repo.ListRecords(ctx, id)
	require.NoError(t, err)

	second, err := f.svc.Calculate(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, first.Records, second.Records)

	again, err := f.repo.ListRecords(ctx, id)
	require.NoError(t, err)
	assert.Len(t, again, 1)
	assert.Equal(t, stored, again)
}

func TestStateMachine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.aprilPeriodID(t)
	approver := "user-hr"

	_, err := f.svc.Approve(ctx, id, &approver)
	assert.ErrorIs(t, err, payroll.ErrPeriodNotCalculated)
	assert.ErrorIs(t, err, payroll.ErrPeriodLocked)

	_, err = f.svc.Calculate(ctx, id)
	require.NoError(t, err)

	approved, err := f.svc.Approve(ctx, id, &approver)
	require.NoError(t, err)
	assert.Equal(t, "approved", approved.Status)
	assert.Equal(t, &approver, approved.ApprovedBy)

	_, err = f.svc.Approve(ctx, id, &approver)
	assert.ErrorIs(t, err, payroll.ErrPeriodLocked)
	assert.NotErrorIs(t, err, payroll.ErrPeriodNotCalculated)

	_, err = f.svc.Calculate(ctx, id)
	assert.ErrorIs(t, err, payroll.ErrPeriodLocked)

	err = f.svc.DeletePeriod(ctx, id)
	assert.ErrorIs(t, err, payroll.ErrPeriodLocked)

	records, err := f.svc.ListRecords(ctx, id)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestDeletePeriod(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.aprilPeriodID(t)

	_, err := f.svc.Calculate(ctx, id)
	require.NoError(t, err)
	require.NoError(t, f.svc.DeletePeriod(ctx, id))

	_, err = f.svc.GetPeriod(ctx, id)
	assert.ErrorIs(t, err, payroll.ErrPeriodNotFound)
	assert.ErrorIs(t, f.svc.DeletePeriod(ctx, id), payroll.ErrPeriodNotFound)
}

func TestCalculate_FetchErrorLeavesPeriodUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.aprilPeriodID(t)
	f.svc.leaves = stubLeaves{err: errors.New("timeout")}

	_, err := f.svc.Calculate(ctx, id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list approved leave")

	p, err := f.svc.GetPeriod(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "draft", p.Status)
}

func TestCalculate_CoalescesConcurrentCalls(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.aprilPeriodID(t)
	f.emps.entered = make(chan struct{}, 1)
	f.emps.release = make(chan struct{})

	var wg sync.WaitGroup
	results := make([]payroll.CalculateResponse, 2)
	errs := make([]error, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], errs[0] = f.svc.Calculate(ctx, id)
	}()
	<-f.emps.entered

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[1], errs[1] = f.svc.Calculate(ctx, id)
	}()
	time.Sleep(50 * time.Millisecond)
	close(f.emps.release)
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, 1, f.emps.calls)
	assert.Equal(t, results[0], results[1])
}

func TestCalculate_CancelledCallerDoesNotFailOthers(t *testing.T) {
	f := newFixture(t)
	id := f.aprilPeriodID(t)
	f.emps.entered = make(chan struct{}, 1)
	f.emps.release = make(chan struct{})

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	defer cancelFirst()

	firstErr := make(chan error, 1)
	go func() {
		_, err := f.svc.Calculate(firstCtx, id)
		firstErr <- err
	}()
	<-f.emps.entered

	type outcome struct {
		resp payroll.CalculateResponse
		err  error
	}
	second := make(chan outcome, 1)
	go func() {
		resp, err := f.svc.Calculate(context.Background(), id)
		second <- outcome{resp, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancelFirst()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(f.emps.release)
	got := <-second
	require.NoError(t, got.err)
	assert.Equal(t, "calculated", got.resp.Period.Status)
	assert.Len(t, got.resp.Records, 1)
	assert.Equal(t, 1, f.emps.calls)

	p, err := f.svc.GetPeriod(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "calculated", p.Status)
}

func TestCalculate_BoundedByTimeout(t *testing.T) {
	f := newFixture(t)
	id := f.aprilPeriodID(t)
	f.svc.calculateTimeout = 20 * time.Millisecond
	f.emps.entered = make(chan struct{}, 1)
	f.emps.release = make(chan struct{})
	defer close(f.emps.release)

	_, err := f.svc.Calculate(context.Background(), id)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	p, err := f.svc.GetPeriod(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "draft", p.Status)
}

func TestSummaryAndExport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.aprilPeriodID(t)

	err := f.svc.ExportRecords(ctx, id, new(bytes.Buffer))
	assert.ErrorIs(t, err, payroll.ErrPeriodNotCalculated)

	_, err = f.svc.Calculate(ctx, id)
	require.NoError(t, err)

	sum, err := f.svc.Summary(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.EmployeeCount)
	assert.Equal(t, "calculated", sum.Status)
	assert.True(t, decimal.NewFromInt(60).Equal(sum.TotalDeductions))
	assert.True(t, decimal.NewFromInt(840).Equal(sum.TotalNetSalary))
	assert.Equal(t, 2, sum.TotalAbsentDays)

	buf := new(bytes.Buffer)
	require.NoError(t, f.svc.ExportRecords(ctx, id, buf))

	wb, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer wb.Close()
	name, _ := wb.GetCellValue("Payroll", "C3")
	assert.Equal(t, "Salim Al Hinai", name)
}

func TestListPeriods(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.aprilPeriodID(t)
	year, month := 2024, 5
	_, err := f.svc.CreatePeriod(ctx, payroll.CreatePeriodRequest{Year: &year, Month: &month})
	require.NoError(t, err)

	resp, err := f.svc.ListPeriods(ctx, payroll.PeriodFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.TotalCount)
	assert.Equal(t, 1, resp.TotalPages)
	assert.Equal(t, "2024-05-16", resp.Periods[0].StartDate)

	bad := "paid"
	_, err = f.svc.ListPeriods(ctx, payroll.PeriodFilter{Status: &bad})
	assert.Error(t, err)
}
