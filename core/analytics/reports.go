package analytics

import (
	"sort"

	"github.com/trezcool/classtrack/core"
	"github.com/trezcool/classtrack/core/assignment"
	"github.com/trezcool/classtrack/core/attendance"
	"github.com/trezcool/classtrack/core/grade"
	"github.com/trezcool/classtrack/core/student"
)

// LevelRollup aggregates a grade level.
type LevelRollup struct {
	GradeLevel     string `json:"gradeLevel"`
	Students       int    `json:"students"`
	AverageGrade   int    `json:"averageGrade"`   // mean of the level's per-record percentages
	AttendanceRate int    `json:"attendanceRate"` // over the level's combined records
}

// GradeLevelRollups computes, for each label in order, the flattened mean percentage of the level's
// gradable records and the present rate of the level's attendance records. Empty levels yield 0.
func GradeLevelRollups(
	levels []string,
	students []student.Student,
	grades []grade.Grade,
	assignments []assignment.Assignment,
	records []attendance.Record,
) []LevelRollup {
	idx := indexAssignments(assignments)
	levelOf := make(map[int]string, len(students))
	sizes := make(map[string]int, len(levels))
	for _, s := range students {
		if _, dup := levelOf[s.ID]; dup {
			continue
		}
		levelOf[s.ID] = s.GradeLevel
		sizes[s.GradeLevel]++
	}

	type acc struct {
		pctSum           float64
		graded           int
		present, records int
	}
	accs := make(map[string]*acc, len(levels))
	for _, l := range levels {
		accs[l] = &acc{}
	}

	for _, g := range grades {
		level, ok := levelOf[g.StudentID]
		if !ok {
			continue
		}
		a, ok := accs[level]
		if !ok {
			continue
		}
		if pct, _, ok := recordPercent(g, idx); ok {
			a.pctSum += pct
			a.graded++
		}
	}
	for _, r := range records {
		level, ok := levelOf[r.StudentID]
		if !ok {
			continue
		}
		a, ok := accs[level]
		if !ok {
			continue
		}
		a.records++
		if r.IsPresent() {
			a.present++
		}
	}

	rollups := make([]LevelRollup, 0, len(levels))
	for _, l := range levels {
		a := accs[l]
		ru := LevelRollup{
			GradeLevel:     l,
			Students:       sizes[l],
			AttendanceRate: rate(a.present, a.records),
		}
		if a.graded > 0 {
			ru.AverageGrade = round(a.pctSum / float64(a.graded))
		}
		rollups = append(rollups, ru)
	}
	return rollups
}

// Performer is a ranked student.
type Performer struct {
	Student student.Student `json:"student"`
	Average int             `json:"average"`
	Letter  Letter          `json:"letter"`
}

// TopPerformers ranks students by weighted average, best first, and keeps the first n
// (DefaultTopPerformers when n is 0). Students with no data or a 0 average are left out.
// Ties keep the students' collection order.
func TopPerformers(students []student.Student, grades []grade.Grade, assignments []assignment.Assignment, n int) ([]Performer, error) {
	if n < 0 {
		return nil, core.NewArgumentError("limit", "must not be negative (got %d)", n)
	}
	if n == 0 {
		n = DefaultTopPerformers
	}

	idx := indexAssignments(assignments)
	ranked := make([]Performer, 0, len(students))
	for _, s := range students {
		avg, ok := weightedAverage(s.ID, grades, idx)
		if !ok || avg == 0 {
			continue
		}
		ranked = append(ranked, Performer{Student: s, Average: avg, Letter: LetterFor(float64(avg))})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Average > ranked[j].Average })

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked, nil
}

// Stats are the dashboard headline numbers.
type Stats struct {
	TotalStudents    int `json:"totalStudents"`
	ActiveStudents   int `json:"activeStudents"`
	ClassAverage     int `json:"classAverage"`
	AttendanceRate   int `json:"attendanceRate"`
	TotalAssignments int `json:"totalAssignments"`
}

func ClassStats(snap Snapshot) Stats {
	stats := Stats{
		TotalStudents:    len(snap.Students),
		ClassAverage:     ClassAverage(snap.Grades, snap.Assignments),
		AttendanceRate:   OverallAttendanceRate(snap.Attendance),
		TotalAssignments: len(snap.Assignments),
	}
	for _, s := range snap.Students {
		if s.IsActive() {
			stats.ActiveStudents++
		}
	}
	return stats
}

// StudentSummary is a student's report card.
type StudentSummary struct {
	Student        student.Student `json:"student"`
	Average        *int            `json:"average"` // nil: no data
	Letter         Letter          `json:"letter"`
	AttendanceRate int             `json:"attendanceRate"`
	GradedCount    int             `json:"gradedCount"`
	RecordCount    int             `json:"recordCount"`
}

func SummarizeStudent(s student.Student, snap Snapshot) StudentSummary {
	idx := indexAssignments(snap.Assignments)
	sum := StudentSummary{
		Student:        s,
		Letter:         Ungraded,
		AttendanceRate: AttendanceRate(s.ID, snap.Attendance),
	}
	if avg, ok := weightedAverage(s.ID, snap.Grades, idx); ok {
		sum.Average = &avg
		sum.Letter = LetterFor(float64(avg))
	}
	for _, g := range snap.Grades {
		if g.StudentID != s.ID {
			continue
		}
		if _, _, ok := recordPercent(g, idx); ok {
			sum.GradedCount++
		}
	}
	for _, r := range snap.Attendance {
		if r.StudentID == s.ID {
			sum.RecordCount++
		}
	}
	return sum
}
