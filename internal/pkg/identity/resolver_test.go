package identity

import (
	"fmt"
	"testing"
	"time"

	"github.com/dairy-admin/dairy-hr-backend/internal/domain/attendance"
	"github.com/dairy-admin/dairy-hr-backend/internal/domain/employee"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// employeeFor builds an employee where rule i matches the record "X"/"N" only when bit i of mask is set.
func employeeFor(mask int) employee.Employee {
	pick := func(bit int, hit, miss string) string {
		if mask&(1<<bit) != 0 {
			return hit
		}
		return miss
	}
	return employee.Employee{
		ID:            pick(0, "X", "id-other"),
		EmployeeCode:  pick(1, "X", "code-other"),
		FingerprintID: pick(2, "X", "fp-other"),
		FullName:      pick(3, "N", "full-other"),
		Name:          pick(4, "N", "name-other"),
		Username:      pick(5, "X", "user-other"),
	}
}

func TestMatches_TruthTable(t *testing.T) {
	r := NewResolver()
	rec := attendance.Attendance{EmployeeID: "X", EmployeeName: "N"}
	names := []string{"id", "employee_code", "fingerprint_id", "full_name", "name", "username"}

	for mask := 0; mask < 1<<6; mask++ {
		t.Run(fmt.Sprintf("mask_%06b", mask), func(t *testing.T) {
			emp := employeeFor(mask)
			assert.Equal(t, mask != 0, r.Matches(rec, emp))

			rule, ok := r.MatchRule(rec, emp)
			if mask == 0 {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			// The reported rule is the lowest set bit.
			for i := range names {
				if mask&(1<<i) != 0 {
					assert.Equal(t, names[i], rule)
					break
				}
			}
		})
	}
}

func TestMatches_EmptyValuesNeverMatch(t *testing.T) {
	r := NewResolver()

	tests := []struct {
		name string
		rec  attendance.Attendance
		emp  employee.Employee
	}{
		{
			name: "empty names",
			rec:  attendance.Attendance{EmployeeID: "E-9"},
			emp:  employee.Employee{ID: "emp-1"},
		},
		{
			name: "empty username and empty record id",
			rec:  attendance.Attendance{EmployeeName: "Salim"},
			emp:  employee.Employee{ID: "emp-1", FullName: "Said"},
		},
		{
			name: "whitespace only",
			rec:  attendance.Attendance{EmployeeID: "  ", EmployeeName: " "},
			emp:  employee.Employee{ID: "emp-1", Username: " ", FullName: " "},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, r.Matches(tt.rec, tt.emp))
		})
	}
}

func TestResolve_FirstMatchWinsAndReportsAmbiguity(t *testing.T) {
	r := NewResolver()
	employees := []employee.Employee{
		{ID: "emp-1", FullName: "Khalid Al Harthy", EmployeeCode: "D-001"},
		{ID: "emp-2", FullName: "Khalid Al Harthy", EmployeeCode: "D-002"},
		{ID: "emp-3", FullName: "Maryam Al Said", FingerprintID: "77"},
	}

	res, ok := r.Resolve(attendance.Attendance{EmployeeName: "Khalid Al Harthy"}, employees)
	require.True(t, ok)
	assert.Equal(t, "emp-1", res.Employee.ID)
	assert.Equal(t, "full_name", res.Rule)
	assert.True(t, res.Ambiguous())
	assert.Equal(t, []string{"emp-1", "emp-2"}, res.Candidates)

	res, ok = r.Resolve(attendance.Attendance{EmployeeID: "77"}, employees)
	require.True(t, ok)
	assert.Equal(t, "emp-3", res.Employee.ID)
	assert.Equal(t, "fingerprint_id", res.Rule)
	assert.False(t, res.Ambiguous())

	_, ok = r.Resolve(attendance.Attendance{EmployeeID: "nobody"}, employees)
	assert.False(t, ok)
}

func TestGroup(t *testing.T) {
	r := NewResolver()
	employees := []employee.Employee{
		{ID: "emp-1", FullName: "Khalid Al Harthy", EmployeeCode: "D-001"},
		{ID: "emp-2", FullName: "Khalid Al Harthy", EmployeeCode: "D-002", Username: "k.harthy2"},
		{ID: "emp-3", FullName: "Maryam Al Said", FingerprintID: "77"},
	}
	day := time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)
	records := []attendance.Attendance{
		{EmployeeID: "D-002", Date: day},
		{EmployeeID: "77", Date: day},
		{EmployeeName: "Khalid Al Harthy", Date: day},
		{EmployeeID: "k.harthy2", Date: day.AddDate(0, 0, 1)},
		{EmployeeID: "ghost", Date: day},
	}

	g := r.Group(records, employees)

	assert.Len(t, g.ByEmployee["emp-1"], 1)
	assert.Len(t, g.ByEmployee["emp-2"], 2)
	assert.Len(t, g.ByEmployee["emp-3"], 1)
	require.Len(t, g.Unmatched, 1)
	assert.Equal(t, "ghost", g.Unmatched[0].EmployeeID)

	require.Len(t, g.Warnings, 1)
	w := g.Warnings[0]
	assert.Equal(t, "Khalid Al Harthy", w.RecordKey)
	assert.Equal(t, "2024-03-03", w.Date)
	assert.Equal(t, "full_name", w.Rule)
	assert.Equal(t, "emp-1", w.Chosen)
	assert.Equal(t, []string{"emp-1", "emp-2"}, w.Candidates)
	assert.Contains(t, w.Message(), "matched 2 employees")
}

func TestGroup_AgreesWithResolve(t *testing.T) {
	r := NewResolver()
	employees := []employee.Employee{
		{ID: "a", Username: "X"},
		{ID: "X"},
		{ID: "c", Name: "N"},
	}
	rec := attendance.Attendance{EmployeeID: "X", EmployeeName: "N"}

	res, ok := r.Resolve(rec, employees)
	require.True(t, ok)

	g := r.Group([]attendance.Attendance{rec}, employees)
	assert.Len(t, g.ByEmployee[res.Employee.ID], 1)
	require.Len(t, g.Warnings, 1)
	assert.Equal(t, res.Candidates, g.Warnings[0].Candidates)
	assert.Equal(t, res.Rule, g.Warnings[0].Rule)
}

func TestWith_AppendsRule(t *testing.T) {
	badge := Rule{
		Name:     "badge",
		Record:   func(a attendance.Attendance) string { return a.EmployeeID },
		Employee: func(e employee.Employee) string { return "B-" + e.ID },
	}
	r := NewResolver().With(badge)
	rec := attendance.Attendance{EmployeeID: "B-emp-1"}

	rule, ok := r.MatchRule(rec, employee.Employee{ID: "emp-1"})
	require.True(t, ok)
	assert.Equal(t, "badge", rule)
	assert.False(t, NewResolver().Matches(rec, employee.Employee{ID: "emp-1"}))
}
