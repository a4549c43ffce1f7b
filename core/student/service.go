package student

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/classtrack/core"
)

var ErrNotFound = core.NewNotFoundError("student")

// DefaultOrdering sorts students by last name.
var DefaultOrdering = []core.DBOrdering{{Field: "lastName", Ascending: true}, {Field: "firstName", Ascending: true}}

type (
	Repository interface {
		CreateStudent(ctx context.Context, s Student) (Student, error)
		// QueryStudents applies AND operation on available QueryFilter fields, see QueryFilter.Match.
		QueryStudents(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Student, error)
		GetStudent(ctx context.Context, id int) (Student, error)
		UpdateStudent(ctx context.Context, s Student) (Student, error)
		DeleteStudentsByID(ctx context.Context, ids ...int) (int, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	s := Student{
		FirstName:    ns.FirstName,
		LastName:     ns.LastName,
		Email:        ns.Email,
		Phone:        ns.Phone,
		GradeLevel:   ns.GradeLevel,
		DateEnrolled: ns.DateEnrolled,
		Status:       ns.Status,
		ParentName:   ns.ParentName,
		ParentEmail:  ns.ParentEmail,
		ParentPhone:  ns.ParentPhone,
	}
	return svc.repo.CreateStudent(ctx, s)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Student, error) {
	if len(ordering) == 0 {
		ordering = DefaultOrdering
	}
	return svc.repo.QueryStudents(ctx, filter, ordering)
}

// QueryActive returns the Active students (the roster shown on the grade book and attendance pages).
func (svc *Service) QueryActive(ctx context.Context) ([]Student, error) {
	return svc.Query(ctx, &QueryFilter{Status: StatusActive}, nil)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Student, error) {
	return svc.repo.GetStudent(ctx, id)
}

func (svc *Service) Update(ctx context.Context, orig Student, us UpdateStudent) (Student, error) {
	return svc.repo.UpdateStudent(ctx, us.apply(orig))
}

func (svc *Service) Delete(ctx context.Context, ids ...int) (int, error) {
	return svc.repo.DeleteStudentsByID(ctx, ids...)
}

func (svc *Service) GetParent(ctx context.Context, id int) (Parent, error) {
	s, err := svc.repo.GetStudent(ctx, id)
	if err != nil {
		return Parent{}, err
	}
	return s.Parent(), nil
}

func (svc *Service) UpdateParent(ctx context.Context, id int, up UpdateParent) (Parent, error) {
	s, err := svc.repo.GetStudent(ctx, id)
	if err != nil {
		return Parent{}, err
	}
	s.ParentName = up.ParentName
	s.ParentEmail = up.ParentEmail
	s.ParentPhone = up.ParentPhone
	if s, err = svc.repo.UpdateStudent(ctx, s); err != nil {
		return Parent{}, errors.Wrap(err, "updating parent contact")
	}
	return s.Parent(), nil
}
