package grade

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/classtrack/core"
	"github.com/trezcool/classtrack/core/assignment"
	"github.com/trezcool/classtrack/core/student"
)

var ErrNotFound = core.NewNotFoundError("grade")

// DefaultOrdering lists the latest submissions first.
var DefaultOrdering = []core.DBOrdering{{Field: "submittedDate", Ascending: false}, {Field: "id", Ascending: false}}

var nowFunc = time.Now // mockable

type (
	Repository interface {
		CreateGrade(ctx context.Context, g Grade) (Grade, error)
		QueryGrades(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Grade, error)
		GetGrade(ctx context.Context, id int) (Grade, error)
		UpdateGrade(ctx context.Context, g Grade) (Grade, error)
		// UpsertGrade atomically creates the grade of g's (student, assignment) pair or overwrites
		// the score, comments and submitted date of the existing one. created reports which happened.
		UpsertGrade(ctx context.Context, g Grade) (stored Grade, created bool, err error)
		DeleteGradesByID(ctx context.Context, ids ...int) (int, error)
	}

	Service struct {
		repo        Repository
		students    student.Repository
		assignments assignment.Repository
	}
)

func NewService(repo Repository, students student.Repository, assignments assignment.Repository) *Service {
	return &Service{repo: repo, students: students, assignments: assignments}
}

// checkReferences reports unknown student/assignment ids as field errors.
func (svc *Service) checkReferences(ctx context.Context, studentID, assignmentID int) error {
	var flds []core.FieldError
	if _, err := svc.students.GetStudent(ctx, studentID); err != nil {
		if !core.IsNotFound(err) {
			return errors.Wrap(err, "getting student")
		}
		flds = append(flds, core.FieldError{Field: "studentId", Error: student.ErrNotFound.Error()})
	}
	if _, err := svc.assignments.GetAssignment(ctx, assignmentID); err != nil {
		if !core.IsNotFound(err) {
			return errors.Wrap(err, "getting assignment")
		}
		flds = append(flds, core.FieldError{Field: "assignmentId", Error: assignment.ErrNotFound.Error()})
	}
	if len(flds) > 0 {
		return core.NewValidationError(nil, flds...)
	}
	return nil
}

// Record creates the grade of the (student, assignment) pair or replaces the existing one.
// created is false when an existing grade was updated.
func (svc *Service) Record(ctx context.Context, ng NewGrade) (g Grade, created bool, err error) {
	if err = svc.checkReferences(ctx, ng.StudentID, ng.AssignmentID); err != nil {
		return Grade{}, false, err
	}

	g, created, err = svc.repo.UpsertGrade(ctx, Grade{
		StudentID:     ng.StudentID,
		AssignmentID:  ng.AssignmentID,
		Score:         ng.Score,
		Comments:      ng.Comments,
		SubmittedDate: nowFunc().UTC(),
	})
	if err != nil {
		return Grade{}, false, errors.Wrap(err, "recording grade")
	}
	return g, created, nil
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Grade, error) {
	if len(ordering) == 0 {
		ordering = DefaultOrdering
	}
	return svc.repo.QueryGrades(ctx, filter, ordering)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Grade, error) {
	return svc.repo.GetGrade(ctx, id)
}

func (svc *Service) Update(ctx context.Context, orig Grade, ug UpdateGrade) (Grade, error) {
	orig.Score = ug.Score
	orig.Comments = ug.Comments
	orig.SubmittedDate = nowFunc().UTC()
	return svc.repo.UpdateGrade(ctx, orig)
}

func (svc *Service) Delete(ctx context.Context, ids ...int) (int, error) {
	return svc.repo.DeleteGradesByID(ctx, ids...)
}
