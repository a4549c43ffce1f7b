package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/classtrack/core/grade"
)

type gradeApi struct {
	svc      *grade.Service
	validate *validator.Validate
}

func registerGradeAPI(g *echo.Group, svc *grade.Service, validate *validator.Validate) {
	api := gradeApi{svc: svc, validate: validate}

	gg := g.Group("/grades")
	gg.POST("", api.record)
	gg.GET("", api.query)

	dg := gg.Group("/:id", objectMiddleware(func(ctx echo.Context, id int) (interface{}, error) {
		return svc.GetByID(ctx.Request().Context(), id)
	}))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
}

func ctxGrade(ctx echo.Context) (grade.Grade, error) {
	g, ok := ctx.Get(objectKey).(grade.Grade)
	if !ok {
		return grade.Grade{}, errors.Wrap(errObjectNotInCtx, "retrieving grade from context")
	}
	return g, nil
}

// record creates the grade of a (student, assignment) pair, or replaces the existing one (200).
func (api *gradeApi) record(ctx echo.Context) error {
	var data grade.NewGrade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGrade")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	g, created, err := api.svc.Record(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "recording grade")
	}
	if created {
		return ctx.JSON(http.StatusCreated, g)
	}
	return ctx.JSON(http.StatusOK, g)
}

func (api *gradeApi) query(ctx echo.Context) error {
	var (
		filter grade.QueryFilter
		err    error
	)
	if filter.StudentID, err = queryInt(ctx, "student_id"); err != nil {
		return err
	}
	if filter.AssignmentID, err = queryInt(ctx, "assignment_id"); err != nil {
		return err
	}
	if filter.Graded, err = queryBool(ctx, "graded"); err != nil {
		return err
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	grades, err := api.svc.Query(ctx.Request().Context(), &filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying grades")
	}
	if grades == nil {
		grades = []grade.Grade{}
	}
	return ctx.JSON(http.StatusOK, grades)
}

func (api *gradeApi) retrieve(ctx echo.Context) error {
	g, err := ctxGrade(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, g)
}

func (api *gradeApi) update(ctx echo.Context) error {
	g, err := ctxGrade(ctx)
	if err != nil {
		return err
	}

	var data grade.UpdateGrade
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateGrade")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	if g, err = api.svc.Update(ctx.Request().Context(), g, data); err != nil {
		return errors.Wrap(err, "updating grade")
	}
	return ctx.JSON(http.StatusOK, g)
}

func (api *gradeApi) destroy(ctx echo.Context) error {
	g, err := ctxGrade(ctx)
	if err != nil {
		return err
	}
	if _, err = api.svc.Delete(ctx.Request().Context(), g.ID); err != nil {
		return errors.Wrap(err, "deleting grade")
	}
	return ctx.NoContent(http.StatusNoContent)
}
