package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/classtrack/core/attendance"
	"github.com/trezcool/classtrack/core/communication"
	"github.com/trezcool/classtrack/core/grade"
	"github.com/trezcool/classtrack/core/report"
	"github.com/trezcool/classtrack/core/student"
)

type studentApi struct {
	svc       *student.Service
	reportSvc *report.Service
	gradeSvc  *grade.Service
	attSvc    *attendance.Service
	commSvc   *communication.Service
	validate  *validator.Validate
}

func registerStudentAPI(
	g *echo.Group,
	svc *student.Service,
	reportSvc *report.Service,
	gradeSvc *grade.Service,
	attSvc *attendance.Service,
	commSvc *communication.Service,
	validate *validator.Validate,
) {
	api := studentApi{
		svc:       svc,
		reportSvc: reportSvc,
		gradeSvc:  gradeSvc,
		attSvc:    attSvc,
		commSvc:   commSvc,
		validate:  validate,
	}

	sg := g.Group("/students")
	sg.POST("", api.create)
	sg.GET("", api.query)
	sg.DELETE("", api.destroyMultiple)

	// detail endpoints
	dg := sg.Group("/:id", objectMiddleware(func(ctx echo.Context, id int) (interface{}, error) {
		return svc.GetByID(ctx.Request().Context(), id)
	}))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.GET("/parent", api.retrieveParent)
	dg.PUT("/parent", api.updateParent)
	dg.GET("/summary", api.summary)
	dg.GET("/grades", api.queryGrades)
	dg.GET("/attendance", api.queryAttendance)
	dg.GET("/communications", api.queryCommunications)
	dg.POST("/communications", api.createCommunication)
}

func ctxStudent(ctx echo.Context) (student.Student, error) {
	s, ok := ctx.Get(objectKey).(student.Student)
	if !ok {
		return student.Student{}, errors.Wrap(errObjectNotInCtx, "retrieving student from context")
	}
	return s, nil
}

// Handlers

func (api *studentApi) create(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	s, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *studentApi) query(ctx echo.Context) error {
	filter := new(student.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []student.Student{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	students, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []student.Student{}
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	s, err := ctxStudent(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *studentApi) update(ctx echo.Context) error {
	s, err := ctxStudent(ctx)
	if err != nil {
		return err
	}

	var data student.UpdateStudent
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	if err = data.Validate(s, api.validate); err != nil {
		return err
	}

	if s, err = api.svc.Update(ctx.Request().Context(), s, data); err != nil {
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *studentApi) destroy(ctx echo.Context) error {
	s, err := ctxStudent(ctx)
	if err != nil {
		return err
	}
	if _, err = api.svc.Delete(ctx.Request().Context(), s.ID); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studentApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if len(query.IDs) == 0 {
		return ctx.NoContent(http.StatusNoContent)
	}
	if _, err := api.svc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting students")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studentApi) retrieveParent(ctx echo.Context) error {
	s, err := ctxStudent(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, s.Parent())
}

func (api *studentApi) updateParent(ctx echo.Context) error {
	s, err := ctxStudent(ctx)
	if err != nil {
		return err
	}

	var data student.UpdateParent
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateParent")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	parent, err := api.svc.UpdateParent(ctx.Request().Context(), s.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating parent")
	}
	return ctx.JSON(http.StatusOK, parent)
}

func (api *studentApi) summary(ctx echo.Context) error {
	s, err := ctxStudent(ctx)
	if err != nil {
		return err
	}
	sum, err := api.reportSvc.StudentSummary(ctx.Request().Context(), s.ID)
	if err != nil {
		return errors.Wrap(err, "summarizing student")
	}
	return ctx.JSON(http.StatusOK, sum)
}

func (api *studentApi) queryGrades(ctx echo.Context) error {
	s, err := ctxStudent(ctx)
	if err != nil {
		return err
	}
	grades, err := api.gradeSvc.Query(ctx.Request().Context(), &grade.QueryFilter{StudentID: s.ID}, nil)
	if err != nil {
		return errors.Wrap(err, "querying student grades")
	}
	if grades == nil {
		grades = []grade.Grade{}
	}
	return ctx.JSON(http.StatusOK, grades)
}

func (api *studentApi) queryAttendance(ctx echo.Context) error {
	s, err := ctxStudent(ctx)
	if err != nil {
		return err
	}
	records, err := api.attSvc.Query(ctx.Request().Context(), &attendance.QueryFilter{StudentID: s.ID}, nil)
	if err != nil {
		return errors.Wrap(err, "querying student attendance")
	}
	if records == nil {
		records = []attendance.Record{}
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *studentApi) queryCommunications(ctx echo.Context) error {
	s, err := ctxStudent(ctx)
	if err != nil {
		return err
	}
	comms, err := api.commSvc.Query(ctx.Request().Context(), &communication.QueryFilter{StudentID: s.ID}, nil)
	if err != nil {
		return errors.Wrap(err, "querying student communications")
	}
	if comms == nil {
		comms = []communication.Communication{}
	}
	return ctx.JSON(http.StatusOK, comms)
}

func (api *studentApi) createCommunication(ctx echo.Context) error {
	s, err := ctxStudent(ctx)
	if err != nil {
		return err
	}

	var data communication.NewCommunication
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCommunication")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	c, err := api.commSvc.Create(ctx.Request().Context(), s.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating communication")
	}
	return ctx.JSON(http.StatusCreated, c)
}
