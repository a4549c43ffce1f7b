package dummydb

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/classtrack/core"
	"github.com/trezcool/classtrack/core/assignment"
	"github.com/trezcool/classtrack/core/attendance"
	"github.com/trezcool/classtrack/core/communication"
	"github.com/trezcool/classtrack/core/grade"
	"github.com/trezcool/classtrack/core/student"
)

func score(v float64) *float64 { return &v }

func seed(t *testing.T, db *DB) (students []student.Student, assignments []assignment.Assignment) {
	t.Helper()
	ctx := context.Background()
	studentRepo := NewStudentRepository(db)
	assignmentRepo := NewAssignmentRepository(db)

	for _, s := range []student.Student{
		{FirstName: "Ada", LastName: "Lovelace", Email: "ada@school.test", GradeLevel: "11th Grade", Status: student.StatusActive},
		{FirstName: "Alan", LastName: "Turing", Email: "alan@school.test", GradeLevel: "9th Grade", Status: student.StatusInactive},
		{FirstName: "Grace", LastName: "Hopper", Email: "grace@school.test", GradeLevel: "10th Grade", Status: student.StatusActive},
	} {
		s, err := studentRepo.CreateStudent(ctx, s)
		require.NoError(t, err)
		students = append(students, s)
	}
	for _, a := range []assignment.Assignment{
		{Title: "Essay", Category: "Homework", Points: 50, Weight: 1, DueDate: core.NewDate(2024, 3, 4)},
		{Title: "Midterm", Category: "Exam", Points: 100, Weight: 2, DueDate: core.NewDate(2024, 3, 1)},
	} {
		a, err := assignmentRepo.CreateAssignment(ctx, a)
		require.NoError(t, err)
		assignments = append(assignments, a)
	}
	return students, assignments
}

func TestStudentRepository(t *testing.T) {
	ctx := context.Background()
	db := Open()
	repo := NewStudentRepository(db)
	students, _ := seed(t, db)

	assert.Equal(t, []int{1, 2, 3}, []int{students[0].ID, students[1].ID, students[2].ID})

	tests := []struct {
		name     string
		filter   *student.QueryFilter
		ordering []core.DBOrdering
		wantIDs  []int
	}{
		{name: "default id order", wantIDs: []int{1, 2, 3}},
		{name: "by last name", ordering: student.DefaultOrdering, wantIDs: []int{3, 1, 2}},
		{name: "by grade level desc", ordering: []core.DBOrdering{{Field: "gradeLevel"}}, wantIDs: []int{1, 3, 2}},
		{name: "unknown field ignored", ordering: []core.DBOrdering{{Field: "shoeSize"}}, wantIDs: []int{1, 2, 3}},
		{name: "search name", filter: &student.QueryFilter{Search: "tur"}, wantIDs: []int{2}},
		{name: "search grade level", filter: &student.QueryFilter{Search: "10th"}, wantIDs: []int{3}},
		{name: "status", filter: &student.QueryFilter{Status: "active"}, wantIDs: []int{1, 3}},
		{name: "no match", filter: &student.QueryFilter{Search: "nobody"}, wantIDs: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.QueryStudents(ctx, tt.filter, tt.ordering)
			require.NoError(t, err)
			var ids []int
			for _, s := range got {
				ids = append(ids, s.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}

	t.Run("returns copies", func(t *testing.T) {
		s, err := repo.GetStudent(ctx, 1)
		require.NoError(t, err)
		s.FirstName = "Changed"
		s, err = repo.GetStudent(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "Ada", s.FirstName)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := repo.GetStudent(ctx, 42)
		assert.Equal(t, student.ErrNotFound, err)
		_, err = repo.UpdateStudent(ctx, student.Student{ID: 42})
		assert.Equal(t, student.ErrNotFound, err)
	})
}

func TestDeleteStudentsCascades(t *testing.T) {
	ctx := context.Background()
	db := Open()
	students, assignments := seed(t, db)
	grades := NewGradeRepository(db)
	records := NewAttendanceRepository(db)
	comms := NewCommunicationRepository(db)

	for _, s := range students {
		_, err := grades.CreateGrade(ctx, grade.Grade{StudentID: s.ID, AssignmentID: assignments[0].ID, Score: score(40)})
		require.NoError(t, err)
		_, err = records.CreateRecord(ctx, attendance.Record{StudentID: s.ID, Date: core.NewDate(2024, 3, 4), Status: attendance.StatusPresent})
		require.NoError(t, err)
		_, err = comms.CreateCommunication(ctx, communication.Communication{StudentID: s.ID, Type: communication.TypePhone, Subject: "Hello"})
		require.NoError(t, err)
	}

	deleted, err := NewStudentRepository(db).DeleteStudentsByID(ctx, students[0].ID, students[1].ID, 99)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	gs, _ := grades.QueryGrades(ctx, nil, nil)
	rs, _ := records.QueryRecords(ctx, nil, nil)
	cs, _ := comms.QueryCommunications(ctx, nil, nil)
	for _, n := range []int{len(gs), len(rs), len(cs)} {
		assert.Equal(t, 1, n)
	}
	assert.Equal(t, students[2].ID, gs[0].StudentID)
}

func TestDeleteAssignmentsCascades(t *testing.T) {
	ctx := context.Background()
	db := Open()
	students, assignments := seed(t, db)
	grades := NewGradeRepository(db)

	for _, a := range assignments {
		_, err := grades.CreateGrade(ctx, grade.Grade{StudentID: students[0].ID, AssignmentID: a.ID})
		require.NoError(t, err)
	}

	deleted, err := NewAssignmentRepository(db).DeleteAssignmentsByID(ctx, assignments[1].ID)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	gs, _ := grades.QueryGrades(ctx, nil, nil)
	require.Len(t, gs, 1)
	assert.Equal(t, assignments[0].ID, gs[0].AssignmentID)
}

func TestAssignmentRepository_Query(t *testing.T) {
	ctx := context.Background()
	db := Open()
	_, _ = seed(t, db)
	repo := NewAssignmentRepository(db)

	got, err := repo.QueryAssignments(ctx, nil, assignment.DefaultOrdering)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Midterm", got[0].Title)

	got, err = repo.QueryAssignments(ctx, &assignment.QueryFilter{Category: "homework"}, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Essay", got[0].Title)

	got, err = repo.QueryAssignments(ctx, &assignment.QueryFilter{Search: "TERM"}, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Midterm", got[0].Title)
}

func TestGradeRepository_ScoreIsCopied(t *testing.T) {
	ctx := context.Background()
	db := Open()
	repo := NewGradeRepository(db)

	g, err := repo.CreateGrade(ctx, grade.Grade{StudentID: 1, AssignmentID: 1, Score: score(45)})
	require.NoError(t, err)
	*g.Score = 0

	got, err := repo.GetGrade(ctx, g.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Score)
	assert.Equal(t, 45.0, *got.Score)

	graded := false
	ungraded, err := repo.QueryGrades(ctx, &grade.QueryFilter{Graded: &graded}, nil)
	require.NoError(t, err)
	assert.Empty(t, ungraded)
}

func TestAttendanceRepository_Query(t *testing.T) {
	ctx := context.Background()
	db := Open()
	repo := NewAttendanceRepository(db)

	for i, status := range []string{attendance.StatusPresent, attendance.StatusAbsent, attendance.StatusLate} {
		_, err := repo.CreateRecord(ctx, attendance.Record{StudentID: 1, Date: core.NewDate(2024, 3, 4+i), Status: status})
		require.NoError(t, err)
	}

	got, err := repo.QueryRecords(ctx, &attendance.QueryFilter{From: core.NewDate(2024, 3, 5)}, attendance.DefaultOrdering)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, attendance.StatusLate, got[0].Status)

	got, err = repo.QueryRecords(ctx, &attendance.QueryFilter{Date: core.NewDate(2024, 3, 4)}, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, attendance.StatusPresent, got[0].Status)

	db.Reset()
	got, err = repo.QueryRecords(ctx, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUpserts_ConcurrentCallersShareOneRow(t *testing.T) {
	ctx := context.Background()
	db := Open()
	students, assignments := seed(t, db)
	grades := NewGradeRepository(db)
	records := NewAttendanceRepository(db)
	day := core.NewDate(2024, 3, 4)

	const callers = 20
	var wg sync.WaitGroup
	var created int32
	for i := 0; i < callers; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_, c, err := grades.UpsertGrade(ctx, grade.Grade{StudentID: students[0].ID, AssignmentID: assignments[0].ID, Score: score(float64(i))})
			assert.NoError(t, err)
			if c {
				atomic.AddInt32(&created, 1)
			}
		}(i)
		go func() {
			defer wg.Done()
			_, _, err := records.UpsertRecord(ctx, attendance.Record{StudentID: students[0].ID, Date: day, Status: attendance.StatusPresent})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), created)
	gotGrades, err := grades.QueryGrades(ctx, &grade.QueryFilter{StudentID: students[0].ID}, nil)
	require.NoError(t, err)
	assert.Len(t, gotGrades, 1)
	gotRecords, err := records.QueryRecords(ctx, &attendance.QueryFilter{StudentID: students[0].ID}, nil)
	require.NoError(t, err)
	assert.Len(t, gotRecords, 1)

	t.Run("update keeps the id", func(t *testing.T) {
		r, c, err := records.UpsertRecord(ctx, attendance.Record{StudentID: students[0].ID, Date: day, Status: attendance.StatusLate, Notes: "bus"})
		require.NoError(t, err)
		assert.False(t, c)
		assert.Equal(t, gotRecords[0].ID, r.ID)
		assert.Equal(t, attendance.StatusLate, r.Status)

		g, c, err := grades.UpsertGrade(ctx, grade.Grade{StudentID: students[0].ID, AssignmentID: assignments[0].ID})
		require.NoError(t, err)
		assert.False(t, c)
		assert.Equal(t, gotGrades[0].ID, g.ID)
		assert.Nil(t, g.Score)
	})

	t.Run("another pair is created", func(t *testing.T) {
		_, c, err := records.UpsertRecord(ctx, attendance.Record{StudentID: students[0].ID, Date: day.AddDays(1), Status: attendance.StatusAbsent})
		require.NoError(t, err)
		assert.True(t, c)
	})
}
