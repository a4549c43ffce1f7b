package assignment

import (
	"context"

	"github.com/trezcool/classtrack/core"
)

var ErrNotFound = core.NewNotFoundError("assignment")

// DefaultOrdering sorts assignments by due date.
var DefaultOrdering = []core.DBOrdering{{Field: "dueDate", Ascending: true}, {Field: "id", Ascending: true}}

type (
	Repository interface {
		CreateAssignment(ctx context.Context, a Assignment) (Assignment, error)
		// QueryAssignments: Search does a case-insensitive match on the title, Category an exact one.
		QueryAssignments(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Assignment, error)
		GetAssignment(ctx context.Context, id int) (Assignment, error)
		UpdateAssignment(ctx context.Context, a Assignment) (Assignment, error)
		DeleteAssignmentsByID(ctx context.Context, ids ...int) (int, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, na NewAssignment) (Assignment, error) {
	return svc.repo.CreateAssignment(ctx, Assignment{
		Title:    na.Title,
		Category: na.Category,
		Points:   na.Points,
		Weight:   *na.Weight,
		DueDate:  na.DueDate,
	})
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Assignment, error) {
	if len(ordering) == 0 {
		ordering = DefaultOrdering
	}
	return svc.repo.QueryAssignments(ctx, filter, ordering)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Assignment, error) {
	return svc.repo.GetAssignment(ctx, id)
}

func (svc *Service) Update(ctx context.Context, orig Assignment, ua UpdateAssignment) (Assignment, error) {
	return svc.repo.UpdateAssignment(ctx, ua.apply(orig))
}

func (svc *Service) Delete(ctx context.Context, ids ...int) (int, error) {
	return svc.repo.DeleteAssignmentsByID(ctx, ids...)
}
