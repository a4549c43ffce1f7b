package main

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/classtrack/core"
	"github.com/trezcool/classtrack/core/assignment"
	"github.com/trezcool/classtrack/core/attendance"
	"github.com/trezcool/classtrack/core/grade"
	"github.com/trezcool/classtrack/core/student"
)

const seedSchoolDays = 10

var errSeeded = errors.New("students already exist; seed only loads into an empty class")

var demoRoster = []struct {
	first, last, level, status string
}{
	{"Ada", "Lovelace", "11th Grade", student.StatusActive},
	{"Alan", "Turing", "12th Grade", student.StatusActive},
	{"Grace", "Hopper", "10th Grade", student.StatusActive},
	{"Edsger", "Dijkstra", "9th Grade", student.StatusActive},
	{"Barbara", "Liskov", "11th Grade", student.StatusActive},
	{"Donald", "Knuth", "10th Grade", student.StatusActive},
	{"Margaret", "Hamilton", "12th Grade", student.StatusGraduated},
	{"Ken", "Thompson", "9th Grade", student.StatusInactive},
}

var demoAssignments = []struct {
	title, category string
	points, weight  float64
	dueIn           int // days before the seed day
}{
	{"Essay: The Analytical Engine", "Writing", 50, 1, 9},
	{"Quiz 1", "Quiz", 20, 0.5, 7},
	{"Lab Report", "Lab", 40, 1, 4},
	{"Midterm", "Exam", 100, 2, 1},
}

// demoStatus spreads absences and late arrivals deterministically over the roster.
func demoStatus(studentIdx, dayIdx int) string {
	switch n := studentIdx*3 + dayIdx*5; {
	case n%13 == 0:
		return attendance.StatusAbsent
	case n%17 == 0:
		return attendance.StatusLate
	case n%29 == 0:
		return attendance.StatusExcused
	}
	return attendance.StatusPresent
}

// schoolDays returns the last n weekdays ending on `day`, oldest first.
func schoolDays(day core.Date, n int) []core.Date {
	days := make([]core.Date, 0, n)
	for d := day; len(days) < n; d = d.AddDays(-1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		days = append([]core.Date{d}, days...)
	}
	return days
}

// seed loads a demo class: the roster, a few assignments with their grades, and two weeks of attendance ending on `day`.
func (cli *commandLine) seed(ctx context.Context, day core.Date) error {
	existing, err := cli.repos.Students.QueryStudents(ctx, nil, nil)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if len(existing) > 0 {
		return errSeeded
	}

	students := make([]student.Student, 0, len(demoRoster))
	for _, r := range demoRoster {
		s, err := cli.repos.Students.CreateStudent(ctx, student.Student{
			FirstName:    r.first,
			LastName:     r.last,
			Email:        core.CleanString(fmt.Sprintf("%s.%s@school.test", r.first, r.last), true /* lower */),
			GradeLevel:   r.level,
			DateEnrolled: day.AddDays(-120),
			Status:       r.status,
			ParentName:   "Parent of " + r.first,
			ParentEmail:  core.CleanString(fmt.Sprintf("parent.%s@home.test", r.last), true /* lower */),
		})
		if err != nil {
			return errors.Wrap(err, "creating student")
		}
		students = append(students, s)
	}

	var grades int
	for ai, da := range demoAssignments {
		a, err := cli.repos.Assignments.CreateAssignment(ctx, assignment.Assignment{
			Title:    da.title,
			Category: da.category,
			Points:   da.points,
			Weight:   da.weight,
			DueDate:  day.AddDays(-da.dueIn),
		})
		if err != nil {
			return errors.Wrap(err, "creating assignment")
		}

		for si, s := range students {
			if !s.IsActive() {
				continue
			}
			g := grade.Grade{
				StudentID:     s.ID,
				AssignmentID:  a.ID,
				SubmittedDate: a.DueDate.Time.Add(-time.Duration(si+1) * time.Hour),
			}
			// the latest assignment is still being graded for some students
			if !(ai == len(demoAssignments)-1 && si%2 == 1) {
				pct := 0.55 + float64((si*7+ai*11)%45)/100
				score := float64(int(pct*a.Points*2+0.5)) / 2 // half points
				g.Score = &score
			}
			if _, err = cli.repos.Grades.CreateGrade(ctx, g); err != nil {
				return errors.Wrap(err, "creating grade")
			}
			grades++
		}
	}

	var records int
	for di, d := range schoolDays(day, seedSchoolDays) {
		for si, s := range students {
			if !s.IsActive() {
				continue
			}
			r := attendance.Record{StudentID: s.ID, Date: d, Status: demoStatus(si, di)}
			if _, err = cli.repos.Attendance.CreateRecord(ctx, r); err != nil {
				return errors.Wrap(err, "creating attendance record")
			}
			records++
		}
	}

	fmt.Fprintf(cli.out, "seeded %d students, %d assignments, %d grades, %d attendance records\n",
		len(students), len(demoAssignments), grades, records)
	return nil
}
