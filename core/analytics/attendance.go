package analytics

import (
	"time"

	"github.com/trezcool/classtrack/core"
	"github.com/trezcool/classtrack/core/attendance"
	"github.com/trezcool/classtrack/core/student"
)

// DaysPerWeek is the width of the weekly grid.
const DaysPerWeek = 7

// MaxTrendDays bounds the attendance trend window.
const MaxTrendDays = 366

// AttendanceRate is round(100 * present / total) over the student's whole history.
// A student without records has a rate of 0 (not "no data").
func AttendanceRate(studentID int, records []attendance.Record) int {
	var present, total int
	for _, r := range records {
		if r.StudentID != studentID {
			continue
		}
		total++
		if r.IsPresent() {
			present++
		}
	}
	return rate(present, total)
}

// OverallAttendanceRate is the present rate over every record, 0 when there are none.
func OverallAttendanceRate(records []attendance.Record) int {
	var present int
	for _, r := range records {
		if r.IsPresent() {
			present++
		}
	}
	return rate(present, len(records))
}

// StatusOn returns the status of the student's first record on `day` (time of day ignored).
// Without a record the student counts as absent.
func StatusOn(studentID int, day time.Time, records []attendance.Record) string {
	for _, r := range records {
		if r.StudentID == studentID && core.SameDay(r.Date.Time, day) {
			return r.Status
		}
	}
	return attendance.StatusAbsent
}

// WeekOf returns the Monday..Sunday days of the week containing `anchor`.
func WeekOf(anchor time.Time) []core.Date {
	day := core.DateOf(anchor)
	offset := (int(day.Weekday()) + 6) % 7 // days since Monday
	monday := day.AddDays(-offset)

	days := make([]core.Date, DaysPerWeek)
	for i := range days {
		days[i] = monday.AddDays(i)
	}
	return days
}

type (
	WeeklyRow struct {
		Student  student.Student `json:"student"`
		Statuses []string        `json:"statuses"` // one per day, Monday first
		Rate     int             `json:"rate"`     // lifetime, not week-scoped
	}

	WeeklyGrid struct {
		Days []core.Date `json:"days"`
		Rows []WeeklyRow `json:"rows"`
	}
)

// BuildWeeklyGrid assembles the students × 7 days status grid of the week containing `anchor`,
// with each student's lifetime attendance rate.
func BuildWeeklyGrid(anchor time.Time, students []student.Student, records []attendance.Record) WeeklyGrid {
	days := WeekOf(anchor)

	// (student, day) -> first status
	type key struct {
		studentID int
		day       core.Date
	}
	byKey := make(map[key]string, len(records))
	counts := make(map[int][2]int, len(students)) // studentID -> {present, total}
	for _, r := range records {
		k := key{r.StudentID, core.DateOf(r.Date.Time)}
		if _, dup := byKey[k]; !dup {
			byKey[k] = r.Status
		}
		c := counts[r.StudentID]
		c[1]++
		if r.IsPresent() {
			c[0]++
		}
		counts[r.StudentID] = c
	}

	grid := WeeklyGrid{Days: days, Rows: make([]WeeklyRow, 0, len(students))}
	for _, s := range students {
		row := WeeklyRow{Student: s, Statuses: make([]string, DaysPerWeek)}
		for i, d := range days {
			status, ok := byKey[key{s.ID, d}]
			if !ok {
				status = attendance.StatusAbsent
			}
			row.Statuses[i] = status
		}
		c := counts[s.ID]
		row.Rate = rate(c[0], c[1])
		grid.Rows = append(grid.Rows, row)
	}
	return grid
}

func errTrendTooLong(max, days int) error {
	return core.NewArgumentError("days", "window size must be at most %d (got %d)", max, days)
}

// CheckTrendWindow rejects windows longer than `max` days (itself capped at MaxTrendDays).
func CheckTrendWindow(days, max int) error {
	if max <= 0 || max > MaxTrendDays {
		max = MaxTrendDays
	}
	if days > max {
		return errTrendTooLong(max, days)
	}
	return nil
}

// DayRate is the class present rate of a single day.
type DayRate struct {
	Date core.Date `json:"date"`
	Rate int       `json:"rate"`
}

// AttendanceTrend returns the per-day class rate of the `days` consecutive days ending on `today`,
// oldest first. Days without records have a rate of 0. The window must be within 1..MaxTrendDays.
func AttendanceTrend(today time.Time, days int, records []attendance.Record) ([]DayRate, error) {
	if days <= 0 {
		return nil, core.NewArgumentError("days", "window size must be positive (got %d)", days)
	}
	if days > MaxTrendDays {
		return nil, errTrendTooLong(MaxTrendDays, days)
	}

	end := core.DateOf(today)
	start := end.AddDays(-(days - 1))

	counts := make(map[core.Date][2]int, days) // day -> {present, total}
	for _, r := range records {
		d := core.DateOf(r.Date.Time)
		if d.Before(start.Time) || d.After(end.Time) {
			continue
		}
		c := counts[d]
		c[1]++
		if r.IsPresent() {
			c[0]++
		}
		counts[d] = c
	}

	trend := make([]DayRate, 0, days)
	for i := 0; i < days; i++ {
		d := start.AddDays(i)
		c := counts[d]
		trend = append(trend, DayRate{Date: d, Rate: rate(c[0], c[1])})
	}
	return trend, nil
}
