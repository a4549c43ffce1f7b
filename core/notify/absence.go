// Package notify emails parents about their children's absences.
package notify

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	"github.com/trezcool/classtrack/core"
	"github.com/trezcool/classtrack/core/analytics"
	"github.com/trezcool/classtrack/core/attendance"
	"github.com/trezcool/classtrack/core/communication"
	"github.com/trezcool/classtrack/core/student"
)

const digestTimeout = time.Minute

var nowFunc = time.Now // mockable

type (
	AbsenceNotifier struct {
		students   student.Repository
		attendance attendance.Repository
		comms      communication.Repository
		mailSvc    core.EmailService
		logger     core.Logger
	}

	// digestData feeds the absence_digest email template.
	digestData struct {
		ParentName     string
		StudentName    string
		Date           string
		AttendanceRate int
	}
)

func NewAbsenceNotifier(
	students student.Repository,
	records attendance.Repository,
	comms communication.Repository,
	mailSvc core.EmailService,
	logger core.Logger,
) *AbsenceNotifier {
	return &AbsenceNotifier{
		students:   students,
		attendance: records,
		comms:      comms,
		mailSvc:    mailSvc,
		logger:     logger,
	}
}

func subjectFor(day core.Date) string {
	return "Absence on " + day.String()
}

// Notify emails the parent of every student marked absent on `day` and logs each email in the
// student's contact log. Students without a parent email, or already notified for that day, are skipped.
// A student that fails is logged and skipped so the others are still notified; the returned error then
// reports the first failure. It returns the number of emails sent.
func (n *AbsenceNotifier) Notify(ctx context.Context, day core.Date) (int, error) {
	absences, err := n.attendance.QueryRecords(
		ctx,
		&attendance.QueryFilter{Date: day, Status: attendance.StatusAbsent},
		[]core.DBOrdering{{Field: "id", Ascending: true}},
	)
	if err != nil {
		return 0, errors.Wrap(err, "loading absences")
	}

	subject := subjectFor(day)
	seen := make(map[int]bool, len(absences))
	var sent, failed int
	var firstErr error
	for _, r := range absences {
		if seen[r.StudentID] {
			continue
		}
		seen[r.StudentID] = true

		ok, err := n.notifyStudent(ctx, r.StudentID, day, subject)
		if err != nil {
			n.logger.Error(fmt.Sprintf("absence notice for student %d on %s: %v", r.StudentID, day, err), err)
			failed++
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if ok {
			sent++
		}
	}

	if firstErr != nil {
		return sent, errors.Wrapf(firstErr, "%d absence notice(s) failed", failed)
	}
	return sent, nil
}

// notifyStudent logs the notice in the student's contact log then sends it.
// ok is false when there is nothing to send.
func (n *AbsenceNotifier) notifyStudent(ctx context.Context, studentID int, day core.Date, subject string) (ok bool, err error) {
	msg, rate, err := n.prepare(ctx, studentID, day, subject)
	if err != nil || msg == nil {
		return false, err
	}

	_, err = n.comms.CreateCommunication(ctx, communication.Communication{
		StudentID: studentID,
		Type:      communication.TypeEmail,
		Subject:   subject,
		Notes:     fmt.Sprintf("Automatic absence notice (attendance rate %d%%)", rate),
		Date:      nowFunc().UTC(),
	})
	if err != nil {
		return false, errors.Wrap(err, "logging absence notice")
	}
	n.mailSvc.SendMessages(msg)
	return true, nil
}

// prepare builds the student's digest without side effects; msg is nil when there is nothing to send.
func (n *AbsenceNotifier) prepare(ctx context.Context, studentID int, day core.Date, subject string) (msg *core.EmailMessage, rate int, err error) {
	s, err := n.students.GetStudent(ctx, studentID)
	if err != nil {
		if core.IsNotFound(err) {
			return nil, 0, nil
		}
		return nil, 0, errors.Wrapf(err, "loading student %d", studentID)
	}
	if !s.Parent().HasEmail() {
		return nil, 0, nil
	}

	logged, err := n.comms.QueryCommunications(ctx, &communication.QueryFilter{StudentID: s.ID, Type: communication.TypeEmail}, nil)
	if err != nil {
		return nil, 0, errors.Wrap(err, "loading contact log")
	}
	for _, c := range logged {
		if c.Subject == subject {
			return nil, 0, nil
		}
	}

	history, err := n.attendance.QueryRecords(ctx, &attendance.QueryFilter{StudentID: s.ID}, nil)
	if err != nil {
		return nil, 0, errors.Wrap(err, "loading attendance history")
	}
	rate = analytics.AttendanceRate(s.ID, history)

	return &core.EmailMessage{
		To:           []mail.Address{{Name: s.ParentName, Address: s.ParentEmail}},
		Subject:      subject,
		TemplateName: "absence_digest",
		TemplateData: digestData{
			ParentName:     s.ParentName,
			StudentName:    s.FullName(),
			Date:           day.String(),
			AttendanceRate: rate,
		},
	}, rate, nil
}

// Schedule runs Notify for the current day on the cron `spec` until the returned cron is stopped.
// Overlapping runs are skipped.
func (n *AbsenceNotifier) Schedule(spec string) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), digestTimeout)
		defer cancel()

		day := core.DateOf(nowFunc())
		sent, err := n.Notify(ctx, day)
		if err != nil {
			n.logger.Error(fmt.Sprintf("absence digest for %s: %d email(s) sent, %v", day, sent, err), err)
			return
		}
		n.logger.Info(fmt.Sprintf("absence digest for %s: %d email(s) sent", day, sent))
	})
	if err != nil {
		return nil, errors.Wrapf(err, "scheduling absence digest (%q)", spec)
	}
	c.Start()
	return c, nil
}
