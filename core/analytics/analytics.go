// Package analytics turns raw grade and attendance records into the dashboard metrics:
// weighted averages, letter buckets, attendance rates, weekly grids, distributions,
// trends, grade-level rollups and rankings.
//
// Every function is pure: inputs are read-only snapshots, outputs are freshly allocated.
// Records referencing unknown students or assignments are skipped.
package analytics

import (
	"math"
	"strconv"
	"strings"

	"github.com/trezcool/classtrack/core"
	"github.com/trezcool/classtrack/core/assignment"
	"github.com/trezcool/classtrack/core/attendance"
	"github.com/trezcool/classtrack/core/grade"
	"github.com/trezcool/classtrack/core/student"
)

// DefaultTopPerformers is the ranking size used when none is requested.
const DefaultTopPerformers = 5

// Snapshot is a consistent read of the four collections.
type Snapshot struct {
	Students    []student.Student
	Assignments []assignment.Assignment
	Grades      []grade.Grade
	Attendance  []attendance.Record
}

// round rounds half-up to the nearest integer (2.5 -> 3, -2.5 -> -2).
func round(x float64) int {
	return int(math.Floor(x + 0.5))
}

func rate(present, total int) int {
	if total == 0 {
		return 0
	}
	return round(100 * float64(present) / float64(total))
}

func indexAssignments(assignments []assignment.Assignment) map[int]assignment.Assignment {
	idx := make(map[int]assignment.Assignment, len(assignments))
	for _, a := range assignments {
		if _, dup := idx[a.ID]; !dup {
			idx[a.ID] = a
		}
	}
	return idx
}

// recordPercent resolves g's assignment and normalizes its score.
// ok is false for ungraded records, unknown assignments and non-positive points.
func recordPercent(g grade.Grade, assignments map[int]assignment.Assignment) (pct float64, a assignment.Assignment, ok bool) {
	if g.Score == nil {
		return 0, a, false
	}
	a, found := assignments[g.AssignmentID]
	if !found {
		return 0, a, false
	}
	pct, ok = a.Percent(*g.Score)
	return pct, a, ok
}

// ParseID parses a record id supplied by a caller.
func ParseID(name, s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || id <= 0 {
		return 0, core.NewArgumentError(name, "%q is not a valid id", s)
	}
	return id, nil
}

// ParseDay parses a calendar day supplied by a caller; an empty string yields `fallback`.
func ParseDay(s string, fallback core.Date) (core.Date, error) {
	if strings.TrimSpace(s) == "" {
		return fallback, nil
	}
	return core.ParseDate(s)
}

// ParseCount parses an integer parameter of at most `max`; an empty string yields `fallback`.
// Zero and negative values are returned as is: their meaning is up to the caller.
func ParseCount(name, s string, fallback, max int) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, core.NewArgumentError(name, "%q is not a number", s)
	}
	if n > max {
		return 0, core.NewArgumentError(name, "must be at most %d (got %d)", max, n)
	}
	return n, nil
}
