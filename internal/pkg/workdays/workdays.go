// Package workdays counts business days under a configurable weekend.
package workdays

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidDateRange = errors.New("invalid date range")

// Policy is the set of weekdays treated as weekend.
type Policy struct {
	weekend map[time.Weekday]bool
}

// DefaultPolicy is the Omani Friday/Saturday weekend.
var DefaultPolicy = NewPolicy(time.Friday, time.Saturday)

func NewPolicy(days ...time.Weekday) Policy {
	p := Policy{weekend: make(map[time.Weekday]bool, len(days))}
	for _, d := range days {
		p.weekend[d] = true
	}
	return p
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"sun":       time.Sunday,
	"monday":    time.Monday,
	"mon":       time.Monday,
	"tuesday":   time.Tuesday,
	"tue":       time.Tuesday,
	"wednesday": time.Wednesday,
	"wed":       time.Wednesday,
	"thursday":  time.Thursday,
	"thu":       time.Thursday,
	"friday":    time.Friday,
	"fri":       time.Friday,
	"saturday":  time.Saturday,
	"sat":       time.Saturday,
}

// ParsePolicy reads a comma separated list of weekday names such as "friday,saturday".
// An empty string yields a policy with no weekend days.
func ParsePolicy(s string) (Policy, error) {
	var days []time.Weekday
	for _, part := range strings.Split(s, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		d, ok := weekdayNames[name]
		if !ok {
			return Policy{}, fmt.Errorf("unknown weekday %q", part)
		}
		days = append(days, d)
	}
	return NewPolicy(days...), nil
}

func (p Policy) IsWeekend(d time.Weekday) bool {
	return p.weekend[d]
}

func (p Policy) IsWorkingDay(t time.Time) bool {
	return !p.weekend[t.Weekday()]
}

func (p Policy) String() string {
	var names []string
	for d := time.Sunday; d <= time.Saturday; d++ {
		if p.weekend[d] {
			names = append(names, strings.ToLower(d.String()))
		}
	}
	return strings.Join(names, ",")
}

// DaysInMonth returns the number of calendar days in the month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Date truncates t to midnight UTC of its calendar date.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CountWorkingDays counts days 1..throughDay of the month that are not weekend days.
func (p Policy) CountWorkingDays(year int, month time.Month, throughDay int) (int, error) {
	if year < 1 || month < time.January || month > time.December {
		return 0, fmt.Errorf("%w: year %d month %d", ErrInvalidDateRange, year, month)
	}
	if throughDay < 0 || throughDay > DaysInMonth(year, month) {
		return 0, fmt.Errorf("%w: day %d outside %d-%02d", ErrInvalidDateRange, throughDay, year, month)
	}

	count := 0
	for day := 1; day <= throughDay; day++ {
		if p.IsWorkingDay(time.Date(year, month, day, 0, 0, 0, 0, time.UTC)) {
			count++
		}
	}
	return count, nil
}

// CountBetween counts working days in the inclusive range [start, end].
func (p Policy) CountBetween(start, end time.Time) (int, error) {
	start, end = Date(start), Date(end)
	if end.Before(start) {
		return 0, fmt.Errorf("%w: %s is before %s", ErrInvalidDateRange,
			end.Format("2006-01-02"), start.Format("2006-01-02"))
	}

	count := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if p.IsWorkingDay(d) {
			count++
		}
	}
	return count, nil
}

// ThroughDay is the last day of year/month that has elapsed as of now:
// the full month for past months, today for the current month and 0 for future months.
func ThroughDay(year int, month time.Month, now time.Time) int {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	today := Date(now)
	switch {
	case today.Before(first):
		return 0
	case today.Year() == year && today.Month() == month:
		return today.Day()
	default:
		return DaysInMonth(year, month)
	}
}

// MonthToDate counts working days from the 1st of year/month up to min(today, end of month).
func (p Policy) MonthToDate(year int, month time.Month, now time.Time) (int, error) {
	return p.CountWorkingDays(year, month, ThroughDay(year, month, now))
}

func CountWorkingDays(year int, month time.Month, throughDay int) (int, error) {
	return DefaultPolicy.CountWorkingDays(year, month, throughDay)
}

func CountBetween(start, end time.Time) (int, error) {
	return DefaultPolicy.CountBetween(start, end)
}
