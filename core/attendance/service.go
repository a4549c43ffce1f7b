package attendance

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/classtrack/core"
	"github.com/trezcool/classtrack/core/student"
)

var ErrNotFound = core.NewNotFoundError("attendance record")

// DefaultOrdering lists the latest days first.
var DefaultOrdering = []core.DBOrdering{{Field: "date", Ascending: false}, {Field: "id", Ascending: true}}

type (
	Repository interface {
		CreateRecord(ctx context.Context, r Record) (Record, error)
		QueryRecords(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Record, error)
		GetRecord(ctx context.Context, id int) (Record, error)
		UpdateRecord(ctx context.Context, r Record) (Record, error)
		// UpsertRecord atomically creates the record of r's (student, day) pair or overwrites
		// the status and notes of the existing one. created reports which happened.
		UpsertRecord(ctx context.Context, r Record) (stored Record, created bool, err error)
		DeleteRecordsByID(ctx context.Context, ids ...int) (int, error)
	}

	Service struct {
		repo     Repository
		students student.Repository
	}
)

func NewService(repo Repository, students student.Repository) *Service {
	return &Service{repo: repo, students: students}
}

// Mark creates the record of the (student, day) pair or replaces the status of the existing one.
// created is false when an existing record was updated.
func (svc *Service) Mark(ctx context.Context, nr NewRecord) (r Record, created bool, err error) {
	if _, err = svc.students.GetStudent(ctx, nr.StudentID); err != nil {
		if core.IsNotFound(err) {
			return Record{}, false, core.NewValidationError(nil, core.FieldError{Field: "studentId", Error: student.ErrNotFound.Error()})
		}
		return Record{}, false, errors.Wrap(err, "getting student")
	}

	r, created, err = svc.repo.UpsertRecord(ctx, Record{
		StudentID: nr.StudentID,
		Date:      nr.Date,
		Status:    nr.Status,
		Notes:     nr.Notes,
	})
	if err != nil {
		return Record{}, false, errors.Wrap(err, "marking attendance")
	}
	return r, created, nil
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Record, error) {
	if len(ordering) == 0 {
		ordering = DefaultOrdering
	}
	return svc.repo.QueryRecords(ctx, filter, ordering)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Record, error) {
	return svc.repo.GetRecord(ctx, id)
}

func (svc *Service) Update(ctx context.Context, orig Record, ur UpdateRecord) (Record, error) {
	if ur.Status != "" {
		orig.Status = ur.Status
	}
	if ur.Notes != nil {
		orig.Notes = *ur.Notes
	}
	return svc.repo.UpdateRecord(ctx, orig)
}

func (svc *Service) Delete(ctx context.Context, ids ...int) (int, error) {
	return svc.repo.DeleteRecordsByID(ctx, ids...)
}
