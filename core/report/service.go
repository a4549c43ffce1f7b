// Package report loads record snapshots and builds the dashboard view-models with the analytics engine.
package report

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/trezcool/classtrack/core"
	"github.com/trezcool/classtrack/core/analytics"
	"github.com/trezcool/classtrack/core/assignment"
	"github.com/trezcool/classtrack/core/attendance"
	"github.com/trezcool/classtrack/core/grade"
	"github.com/trezcool/classtrack/core/student"
)

// byID reads grades and attendance in insertion order.
var byID = []core.DBOrdering{{Field: "id", Ascending: true}}

type (
	Dashboard struct {
		Date          core.Date               `json:"date"`
		Stats         analytics.Stats         `json:"stats"`
		Distribution  []analytics.BucketCount `json:"distribution"`
		Trend         []analytics.DayRate     `json:"trend"`
		TopPerformers []analytics.Performer   `json:"topPerformers"`
	}

	Service struct {
		students    student.Repository
		assignments assignment.Repository
		grades      grade.Repository
		attendance  attendance.Repository

		gradeLevels   []string
		topPerformers int
		trendDays     int
		maxTrendDays  int
	}
)

func NewService(
	conf *core.Config,
	students student.Repository,
	assignments assignment.Repository,
	grades grade.Repository,
	records attendance.Repository,
) *Service {
	svc := &Service{
		students:      students,
		assignments:   assignments,
		grades:        grades,
		attendance:    records,
		gradeLevels:   conf.Report.GradeLevels,
		topPerformers: conf.Report.TopPerformers,
		trendDays:     conf.Report.TrendDays,
		maxTrendDays:  conf.Report.MaxTrendDays,
	}
	if len(svc.gradeLevels) == 0 {
		svc.gradeLevels = core.GradeLevels
	}
	if svc.topPerformers <= 0 {
		svc.topPerformers = analytics.DefaultTopPerformers
	}
	if svc.trendDays <= 0 {
		svc.trendDays = 7
	}
	if svc.maxTrendDays <= 0 || svc.maxTrendDays > analytics.MaxTrendDays {
		svc.maxTrendDays = analytics.MaxTrendDays
	}
	return svc
}

// Snapshot fetches the four collections concurrently; the first failure cancels the other fetches.
func (svc *Service) Snapshot(ctx context.Context) (analytics.Snapshot, error) {
	var snap analytics.Snapshot
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		snap.Students, err = svc.students.QueryStudents(ctx, nil, student.DefaultOrdering)
		return errors.Wrap(err, "loading students")
	})
	g.Go(func() (err error) {
		snap.Assignments, err = svc.assignments.QueryAssignments(ctx, nil, assignment.DefaultOrdering)
		return errors.Wrap(err, "loading assignments")
	})
	g.Go(func() (err error) {
		snap.Grades, err = svc.grades.QueryGrades(ctx, nil, byID)
		return errors.Wrap(err, "loading grades")
	})
	g.Go(func() (err error) {
		snap.Attendance, err = svc.attendance.QueryRecords(ctx, nil, byID)
		return errors.Wrap(err, "loading attendance")
	})

	if err := g.Wait(); err != nil {
		return analytics.Snapshot{}, err
	}
	return snap, nil
}

// Dashboard builds the headline numbers, the letter distribution, the attendance trend of the `days`
// days ending on `today` (the configured window when days is 0) and the top performers.
func (svc *Service) Dashboard(ctx context.Context, today time.Time, days int) (Dashboard, error) {
	if days == 0 {
		days = svc.trendDays
	}
	if err := analytics.CheckTrendWindow(days, svc.maxTrendDays); err != nil {
		return Dashboard{}, err
	}
	snap, err := svc.Snapshot(ctx)
	if err != nil {
		return Dashboard{}, err
	}

	trend, err := analytics.AttendanceTrend(today, days, snap.Attendance)
	if err != nil {
		return Dashboard{}, err
	}
	top, err := analytics.TopPerformers(snap.Students, snap.Grades, snap.Assignments, svc.topPerformers)
	if err != nil {
		return Dashboard{}, err
	}
	return Dashboard{
		Date:          core.DateOf(today),
		Stats:         analytics.ClassStats(snap),
		Distribution:  analytics.Distribution(snap.Grades, snap.Assignments),
		Trend:         trend,
		TopPerformers: top,
	}, nil
}

func (svc *Service) Distribution(ctx context.Context) ([]analytics.BucketCount, error) {
	snap, err := svc.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.Distribution(snap.Grades, snap.Assignments), nil
}

func (svc *Service) AttendanceTrend(ctx context.Context, today time.Time, days int) ([]analytics.DayRate, error) {
	if days == 0 {
		days = svc.trendDays
	}
	if days < 0 {
		return analytics.AttendanceTrend(today, days, nil)
	}
	if err := analytics.CheckTrendWindow(days, svc.maxTrendDays); err != nil {
		return nil, err
	}
	records, err := svc.attendance.QueryRecords(ctx, nil, byID)
	if err != nil {
		return nil, errors.Wrap(err, "loading attendance")
	}
	return analytics.AttendanceTrend(today, days, records)
}

func (svc *Service) GradeLevels(ctx context.Context) ([]analytics.LevelRollup, error) {
	snap, err := svc.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.GradeLevelRollups(svc.gradeLevels, snap.Students, snap.Grades, snap.Assignments, snap.Attendance), nil
}

// TopPerformers ranks every student; n is 0 for the configured size.
func (svc *Service) TopPerformers(ctx context.Context, n int) ([]analytics.Performer, error) {
	if n == 0 {
		n = svc.topPerformers
	}
	if n < 0 {
		return analytics.TopPerformers(nil, nil, nil, n)
	}
	snap, err := svc.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.TopPerformers(snap.Students, snap.Grades, snap.Assignments, n)
}

// WeeklyAttendance lays out the week containing `anchor` for the active students.
func (svc *Service) WeeklyAttendance(ctx context.Context, anchor time.Time) (analytics.WeeklyGrid, error) {
	snap, err := svc.Snapshot(ctx)
	if err != nil {
		return analytics.WeeklyGrid{}, err
	}
	return analytics.BuildWeeklyGrid(anchor, activeOnly(snap.Students), snap.Attendance), nil
}

// GradeBook lays out the active students against every assignment.
func (svc *Service) GradeBook(ctx context.Context) (analytics.GradeBook, error) {
	snap, err := svc.Snapshot(ctx)
	if err != nil {
		return analytics.GradeBook{}, err
	}
	return analytics.BuildGradeBook(activeOnly(snap.Students), snap.Assignments, snap.Grades), nil
}

// StudentSummary loads only what one student's report card needs.
func (svc *Service) StudentSummary(ctx context.Context, id int) (analytics.StudentSummary, error) {
	s, err := svc.students.GetStudent(ctx, id)
	if err != nil {
		return analytics.StudentSummary{}, err
	}

	var snap analytics.Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		snap.Assignments, err = svc.assignments.QueryAssignments(gctx, nil, assignment.DefaultOrdering)
		return errors.Wrap(err, "loading assignments")
	})
	g.Go(func() (err error) {
		snap.Grades, err = svc.grades.QueryGrades(gctx, &grade.QueryFilter{StudentID: id}, byID)
		return errors.Wrap(err, "loading grades")
	})
	g.Go(func() (err error) {
		snap.Attendance, err = svc.attendance.QueryRecords(gctx, &attendance.QueryFilter{StudentID: id}, byID)
		return errors.Wrap(err, "loading attendance")
	})
	if err = g.Wait(); err != nil {
		return analytics.StudentSummary{}, err
	}
	return analytics.SummarizeStudent(s, snap), nil
}

func activeOnly(students []student.Student) []student.Student {
	active := make([]student.Student, 0, len(students))
	for _, s := range students {
		if s.IsActive() {
			active = append(active, s)
		}
	}
	return active
}
