package testutil

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/trezcool/classtrack/core"
	"github.com/trezcool/classtrack/core/assignment"
	"github.com/trezcool/classtrack/core/attendance"
	"github.com/trezcool/classtrack/core/communication"
	"github.com/trezcool/classtrack/core/grade"
	"github.com/trezcool/classtrack/core/student"
	"github.com/trezcool/classtrack/storage/database/dummy"
)

// Repos bundles in-memory repositories sharing one DB.
type Repos struct {
	DB             *dummydb.DB
	Students       student.Repository
	Assignments    assignment.Repository
	Grades         grade.Repository
	Attendance     attendance.Repository
	Communications communication.Repository
}

func NewRepos() Repos {
	db := dummydb.Open()
	return Repos{
		DB:             db,
		Students:       dummydb.NewStudentRepository(db),
		Assignments:    dummydb.NewAssignmentRepository(db),
		Grades:         dummydb.NewGradeRepository(db),
		Attendance:     dummydb.NewAttendanceRepository(db),
		Communications: dummydb.NewCommunicationRepository(db),
	}
}

func Score(v float64) *float64 { return &v }

func CreateStudent(t *testing.T, repo student.Repository, first, last, gradeLevel, status string, parentEmail ...string) student.Student {
	s := student.Student{
		FirstName:    first,
		LastName:     last,
		Email:        strings.ToLower(fmt.Sprintf("%s.%s@school.test", first, last)),
		GradeLevel:   gradeLevel,
		DateEnrolled: core.NewDate(2023, time.September, 4),
		Status:       status,
	}
	if len(parentEmail) > 0 {
		s.ParentName = "Parent of " + first
		s.ParentEmail = parentEmail[0]
	}
	s, err := repo.CreateStudent(context.Background(), s)
	if err != nil {
		t.Fatalf("createStudent() failed: %v", err)
	}
	return s
}

func CreateAssignment(t *testing.T, repo assignment.Repository, title string, points, weight float64, due core.Date) assignment.Assignment {
	a, err := repo.CreateAssignment(context.Background(), assignment.Assignment{
		Title:    title,
		Category: "Homework",
		Points:   points,
		Weight:   weight,
		DueDate:  due,
	})
	if err != nil {
		t.Fatalf("createAssignment() failed: %v", err)
	}
	return a
}

// CreateGrade stores a grade; a nil score is an ungraded submission.
func CreateGrade(t *testing.T, repo grade.Repository, studentID, assignmentID int, score *float64) grade.Grade {
	g, err := repo.CreateGrade(context.Background(), grade.Grade{
		StudentID:     studentID,
		AssignmentID:  assignmentID,
		Score:         score,
		SubmittedDate: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("createGrade() failed: %v", err)
	}
	return g
}

func MarkAttendance(t *testing.T, repo attendance.Repository, studentID int, day core.Date, status string) attendance.Record {
	r, err := repo.CreateRecord(context.Background(), attendance.Record{StudentID: studentID, Date: day, Status: status})
	if err != nil {
		t.Fatalf("markAttendance() failed: %v", err)
	}
	return r
}

func CreateCommunication(t *testing.T, repo communication.Repository, studentID int, typ, subject string) communication.Communication {
	c, err := repo.CreateCommunication(context.Background(), communication.Communication{
		StudentID: studentID,
		Type:      typ,
		Subject:   subject,
		Date:      time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("createCommunication() failed: %v", err)
	}
	return c
}

// Logger is a core.Logger writing to the test log.
type Logger struct {
	T testing.TB
}

var _ core.Logger = (*Logger)(nil)

func (l Logger) log(level, msg string, args []interface{}) {
	if l.T == nil {
		return
	}
	l.T.Helper()
	l.T.Logf("%s: %s %v", level, msg, args)
}

func (l Logger) Debug(msg string, args ...interface{}) { l.log("DEBUG", msg, args) }
func (l Logger) Info(msg string, args ...interface{})  { l.log("INFO", msg, args) }
func (l Logger) Warn(msg string, args ...interface{})  { l.log("WARN", msg, args) }
func (l Logger) Error(msg string, args ...interface{}) { l.log("ERROR", msg, args) }
func (l Logger) Fatal(msg string, args ...interface{}) {
	if l.T != nil {
		l.T.Fatalf("FATAL: %s %v", msg, args)
	}
}
