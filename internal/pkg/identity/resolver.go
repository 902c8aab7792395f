// Package identity ties attendance rows to employees.
//
// Rows come from manual entry, biometric terminals and spreadsheet imports,
// each keyed differently, so a Resolver tries an ordered list of rules and
// accepts the first employee any rule matches.
package identity

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dairy-admin/dairy-hr-backend/internal/domain/attendance"
	"github.com/dairy-admin/dairy-hr-backend/internal/domain/employee"
)

// Rule compares one value extracted from an attendance row with one employee key.
// Empty values on either side never match.
type Rule struct {
	Name     string
	Record   func(attendance.Attendance) string
	Employee func(employee.Employee) string
}

func (r Rule) match(rec attendance.Attendance, emp employee.Employee) bool {
	got := normalize(r.Record(rec))
	if got == "" {
		return false
	}
	return got == normalize(r.Employee(emp))
}

func normalize(s string) string {
	return strings.TrimSpace(s)
}

func recordEmployeeID(a attendance.Attendance) string   { return a.EmployeeID }
func recordEmployeeName(a attendance.Attendance) string { return a.EmployeeName }

// DefaultRules returns the built-in chain: id, employee code, fingerprint id,
// full name, short name, username.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "id", Record: recordEmployeeID, Employee: func(e employee.Employee) string { return e.ID }},
		{Name: "employee_code", Record: recordEmployeeID, Employee: func(e employee.Employee) string { return e.EmployeeCode }},
		{Name: "fingerprint_id", Record: recordEmployeeID, Employee: func(e employee.Employee) string { return e.FingerprintID }},
		{Name: "full_name", Record: recordEmployeeName, Employee: func(e employee.Employee) string { return e.FullName }},
		{Name: "name", Record: recordEmployeeName, Employee: func(e employee.Employee) string { return e.Name }},
		{Name: "username", Record: recordEmployeeID, Employee: func(e employee.Employee) string { return e.Username }},
	}
}

type Resolver struct {
	rules []Rule
}

// NewResolver builds a resolver over rules, or DefaultRules when none are given.
func NewResolver(rules ...Rule) *Resolver {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Resolver{rules: rules}
}

// With returns a resolver with extra rules appended after the existing ones.
func (r *Resolver) With(rules ...Rule) *Resolver {
	all := make([]Rule, 0, len(r.rules)+len(rules))
	all = append(all, r.rules...)
	all = append(all, rules...)
	return &Resolver{rules: all}
}

// MatchRule returns the name of the first rule tying rec to emp.
func (r *Resolver) MatchRule(rec attendance.Attendance, emp employee.Employee) (string, bool) {
	for _, rule := range r.rules {
		if rule.match(rec, emp) {
			return rule.Name, true
		}
	}
	return "", false
}

func (r *Resolver) Matches(rec attendance.Attendance, emp employee.Employee) bool {
	_, ok := r.MatchRule(rec, emp)
	return ok
}

// Resolution is the outcome of resolving one attendance row.
type Resolution struct {
	Employee employee.Employee
	Rule     string
	// Candidates lists every matching employee ID, Employee's first, when more than one matched.
	Candidates []string
}

func (r Resolution) Ambiguous() bool {
	return len(r.Candidates) > 1
}

// Resolve picks the first employee in list order that rec matches.
// ok is false when nothing matches.
func (r *Resolver) Resolve(rec attendance.Attendance, employees []employee.Employee) (Resolution, bool) {
	var res Resolution
	found := false
	for _, emp := range employees {
		rule, ok := r.MatchRule(rec, emp)
		if !ok {
			continue
		}
		if !found {
			res.Employee = emp
			res.Rule = rule
			found = true
		}
		res.Candidates = append(res.Candidates, emp.ID)
	}
	if len(res.Candidates) < 2 {
		res.Candidates = nil
	}
	return res, found
}

// Warning flags an attendance row that matched more than one employee.
type Warning struct {
	RecordKey  string
	Date       string
	Rule       string
	Chosen     string
	Candidates []string
}

func (w Warning) Message() string {
	return fmt.Sprintf("attendance row %q matched %d employees (%s); assigned to %s",
		w.RecordKey, len(w.Candidates), strings.Join(w.Candidates, ", "), w.Chosen)
}

// Grouping is attendance partitioned by employee ID.
type Grouping struct {
	ByEmployee map[string][]attendance.Attendance
	Unmatched  []attendance.Attendance
	Warnings   []Warning
}

// Group assigns every row to at most one employee using first-match-wins in
// employee order. Rows matching several employees are reported in Warnings.
func (r *Resolver) Group(records []attendance.Attendance, employees []employee.Employee) Grouping {
	g := Grouping{ByEmployee: make(map[string][]attendance.Attendance, len(employees))}
	idx := r.index(employees)

	for _, rec := range records {
		matched := r.lookup(idx, rec)
		if len(matched) == 0 {
			g.Unmatched = append(g.Unmatched, rec)
			continue
		}

		chosen := employees[matched[0]]
		g.ByEmployee[chosen.ID] = append(g.ByEmployee[chosen.ID], rec)

		if len(matched) > 1 {
			rule, _ := r.MatchRule(rec, chosen)
			w := Warning{
				RecordKey: recordKey(rec),
				Rule:      rule,
				Chosen:    chosen.ID,
			}
			if !rec.Date.IsZero() {
				w.Date = rec.Date.Format("2006-01-02")
			}
			for _, i := range matched {
				w.Candidates = append(w.Candidates, employees[i].ID)
			}
			g.Warnings = append(g.Warnings, w)
		}
	}
	return g
}

// index maps each rule's employee key to the positions of employees carrying it.
func (r *Resolver) index(employees []employee.Employee) []map[string][]int {
	idx := make([]map[string][]int, len(r.rules))
	for ri, rule := range r.rules {
		m := make(map[string][]int)
		for ei, emp := range employees {
			key := normalize(rule.Employee(emp))
			if key == "" {
				continue
			}
			m[key] = append(m[key], ei)
		}
		idx[ri] = m
	}
	return idx
}

// lookup returns the sorted, de-duplicated employee positions rec matches.
func (r *Resolver) lookup(idx []map[string][]int, rec attendance.Attendance) []int {
	seen := make(map[int]bool)
	var out []int
	for ri, rule := range r.rules {
		key := normalize(rule.Record(rec))
		if key == "" {
			continue
		}
		for _, ei := range idx[ri][key] {
			if !seen[ei] {
				seen[ei] = true
				out = append(out, ei)
			}
		}
	}
	sort.Ints(out)
	return out
}

func recordKey(rec attendance.Attendance) string {
	if rec.EmployeeID != "" {
		return rec.EmployeeID
	}
	return rec.EmployeeName
}
