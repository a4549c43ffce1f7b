package communication

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/classtrack/core"
	"github.com/trezcool/classtrack/core/student"
)

var ErrNotFound = core.NewNotFoundError("communication")

// DefaultOrdering lists the latest entries first.
var DefaultOrdering = []core.DBOrdering{{Field: "date", Ascending: false}, {Field: "id", Ascending: false}}

var nowFunc = time.Now // mockable

type (
	Repository interface {
		CreateCommunication(ctx context.Context, c Communication) (Communication, error)
		QueryCommunications(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Communication, error)
		GetCommunication(ctx context.Context, id int) (Communication, error)
		UpdateCommunication(ctx context.Context, c Communication) (Communication, error)
		DeleteCommunicationsByID(ctx context.Context, ids ...int) (int, error)
	}

	Service struct {
		repo     Repository
		students student.Repository
		mailSvc  core.EmailService
	}

	// messageData feeds the parent_message email template.
	messageData struct {
		ParentName  string
		StudentName string
		Notes       string
	}
)

func NewService(repo Repository, students student.Repository, mailSvc core.EmailService) *Service {
	return &Service{repo: repo, students: students, mailSvc: mailSvc}
}

// Create logs a communication with the parent of a student.
// Email entries are also sent to the parent when they have an email address.
func (svc *Service) Create(ctx context.Context, studentID int, nc NewCommunication) (Communication, error) {
	stud, err := svc.students.GetStudent(ctx, studentID)
	if err != nil {
		return Communication{}, err
	}

	date := nc.Date.UTC()
	if nc.Date.IsZero() {
		date = nowFunc().UTC()
	}
	c, err := svc.repo.CreateCommunication(ctx, Communication{
		StudentID: stud.ID,
		Type:      nc.Type,
		Subject:   nc.Subject,
		Notes:     nc.Notes,
		Date:      date,
	})
	if err != nil {
		return Communication{}, errors.Wrap(err, "creating communication")
	}

	if c.Type == TypeEmail && stud.Parent().HasEmail() {
		svc.mailSvc.SendMessages(&core.EmailMessage{
			To:           []mail.Address{{Name: stud.ParentName, Address: stud.ParentEmail}},
			Subject:      c.Subject,
			TemplateName: "parent_message",
			TemplateData: messageData{
				ParentName:  stud.ParentName,
				StudentName: stud.FullName(),
				Notes:       c.Notes,
			},
		})
	}
	return c, nil
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Communication, error) {
	if len(ordering) == 0 {
		ordering = DefaultOrdering
	}
	return svc.repo.QueryCommunications(ctx, filter, ordering)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Communication, error) {
	return svc.repo.GetCommunication(ctx, id)
}

func (svc *Service) Update(ctx context.Context, orig Communication, uc UpdateCommunication) (Communication, error) {
	if uc.Type != "" {
		orig.Type = uc.Type
	}
	if uc.Subject != "" {
		orig.Subject = uc.Subject
	}
	if uc.Notes != nil {
		orig.Notes = *uc.Notes
	}
	return svc.repo.UpdateCommunication(ctx, orig)
}

func (svc *Service) Delete(ctx context.Context, ids ...int) (int, error) {
	return svc.repo.DeleteCommunicationsByID(ctx, ids...)
}
