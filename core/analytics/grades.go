package analytics

import (
	"github.com/trezcool/classtrack/core/assignment"
	"github.com/trezcool/classtrack/core/grade"
	"github.com/trezcool/classtrack/core/student"
)

// Letter is a grade bucket.
type Letter string

const (
	LetterA  Letter = "A"
	LetterB  Letter = "B"
	LetterC  Letter = "C"
	LetterD  Letter = "D"
	LetterF  Letter = "F"
	Ungraded Letter = "ungraded"
)

// Letters lists the graded buckets, best first.
var Letters = []Letter{LetterA, LetterB, LetterC, LetterD, LetterF}

// LetterFor buckets a percentage. Lower bounds are inclusive: 90 is an A, 89.99 a B.
func LetterFor(pct float64) Letter {
	switch {
	case pct >= 90:
		return LetterA
	case pct >= 80:
		return LetterB
	case pct >= 70:
		return LetterC
	case pct >= 60:
		return LetterD
	default:
		return LetterF
	}
}

// LetterOf buckets a raw score against the assignment's points. A nil score is Ungraded,
// so are non-positive points.
func LetterOf(score *float64, points float64) Letter {
	if score == nil || points <= 0 {
		return Ungraded
	}
	return LetterFor(*score / points * 100)
}

// LetterOfAverage buckets the result of WeightedAverage.
func LetterOfAverage(avg int, ok bool) Letter {
	if !ok {
		return Ungraded
	}
	return LetterFor(float64(avg))
}

// WeightedAverage computes round(100 * Σ(score/points*weight) / Σweight) over the student's
// graded records. ok is false ("no data") when the accumulated weight is zero.
// Scores are not clamped.
func WeightedAverage(studentID int, grades []grade.Grade, assignments []assignment.Assignment) (avg int, ok bool) {
	return weightedAverage(studentID, grades, indexAssignments(assignments))
}

func weightedAverage(studentID int, grades []grade.Grade, assignments map[int]assignment.Assignment) (int, bool) {
	var weighted, weights float64
	for _, g := range grades {
		if g.StudentID != studentID {
			continue
		}
		_, a, ok := recordPercent(g, assignments)
		if !ok {
			continue
		}
		weighted += *g.Score / a.Points * a.Weight
		weights += a.Weight
	}
	if weights == 0 {
		return 0, false
	}
	return round(100 * weighted / weights), true
}

// BucketCount is the number of graded records falling in a letter bucket.
type BucketCount struct {
	Letter Letter `json:"letter"`
	Count  int    `json:"count"`
}

// Distribution buckets every gradable record by its own percentage, in A..F order.
// The counts add up to the number of gradable records.
func Distribution(grades []grade.Grade, assignments []assignment.Assignment) []BucketCount {
	idx := indexAssignments(assignments)
	counts := make(map[Letter]int, len(Letters))
	for _, g := range grades {
		pct, _, ok := recordPercent(g, idx)
		if !ok {
			continue
		}
		counts[LetterFor(pct)]++
	}

	dist := make([]BucketCount, 0, len(Letters))
	for _, l := range Letters {
		dist = append(dist, BucketCount{Letter: l, Count: counts[l]})
	}
	return dist
}

// meanPercent is the flattened mean of the per-record percentages of the selected records.
func meanPercent(grades []grade.Grade, assignments map[int]assignment.Assignment, include func(grade.Grade) bool) int {
	var sum float64
	var n int
	for _, g := range grades {
		if include != nil && !include(g) {
			continue
		}
		pct, _, ok := recordPercent(g, assignments)
		if !ok {
			continue
		}
		sum += pct
		n++
	}
	if n == 0 {
		return 0
	}
	return round(sum / float64(n))
}

// ClassAverage is the mean percentage of all gradable records, 0 when there are none.
func ClassAverage(grades []grade.Grade, assignments []assignment.Assignment) int {
	return meanPercent(grades, indexAssignments(assignments), nil)
}

type (
	GradeCell struct {
		AssignmentID int      `json:"assignmentId"`
		GradeID      int      `json:"gradeId,omitempty"`
		Score        *float64 `json:"score"`
		Letter       Letter   `json:"letter"`
	}

	GradeBookRow struct {
		Student student.Student `json:"student"`
		Cells   []GradeCell     `json:"cells"`
		Average *int            `json:"average"` // nil: no data
		Letter  Letter          `json:"letter"`
	}

	GradeBook struct {
		Assignments []assignment.Assignment `json:"assignments"`
		Rows        []GradeBookRow          `json:"rows"`
	}
)

// BuildGradeBook lays out a students × assignments score grid with each student's weighted average.
// When a pair has several grades the first one wins.
func BuildGradeBook(students []student.Student, assignments []assignment.Assignment, grades []grade.Grade) GradeBook {
	idx := indexAssignments(assignments)

	type pair struct{ studentID, assignmentID int }
	byPair := make(map[pair]grade.Grade, len(grades))
	for _, g := range grades {
		k := pair{g.StudentID, g.AssignmentID}
		if _, dup := byPair[k]; !dup {
			byPair[k] = g
		}
	}

	book := GradeBook{
		Assignments: append([]assignment.Assignment{}, assignments...),
		Rows:        make([]GradeBookRow, 0, len(students)),
	}
	for _, s := range students {
		row := GradeBookRow{Student: s, Cells: make([]GradeCell, 0, len(assignments))}
		for _, a := range assignments {
			cell := GradeCell{AssignmentID: a.ID, Letter: Ungraded}
			if g, ok := byPair[pair{s.ID, a.ID}]; ok {
				cell.GradeID = g.ID
				if g.Score != nil {
					score := *g.Score
					cell.Score = &score
				}
				cell.Letter = LetterOf(cell.Score, a.Points)
			}
			row.Cells = append(row.Cells, cell)
		}
		if avg, ok := weightedAverage(s.ID, grades, idx); ok {
			row.Average = &avg
			row.Letter = LetterFor(float64(avg))
		} else {
			row.Letter = Ungraded
		}
		book.Rows = append(book.Rows, row)
	}
	return book
}
