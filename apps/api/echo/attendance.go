package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/classtrack/core/attendance"
)

type attendanceApi struct {
	svc      *attendance.Service
	validate *validator.Validate
}

func registerAttendanceAPI(g *echo.Group, svc *attendance.Service, validate *validator.Validate) {
	api := attendanceApi{svc: svc, validate: validate}

	ag := g.Group("/attendance")
	ag.POST("", api.mark)
	ag.GET("", api.query)

	dg := ag.Group("/:id", objectMiddleware(func(ctx echo.Context, id int) (interface{}, error) {
		return svc.GetByID(ctx.Request().Context(), id)
	}))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
}

func ctxRecord(ctx echo.Context) (attendance.Record, error) {
	r, ok := ctx.Get(objectKey).(attendance.Record)
	if !ok {
		return attendance.Record{}, errors.Wrap(errObjectNotInCtx, "retrieving attendance record from context")
	}
	return r, nil
}

// mark records a student's status for a day, replacing the day's existing record (200).
func (api *attendanceApi) mark(ctx echo.Context) error {
	var data attendance.NewRecord
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRecord")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	r, created, err := api.svc.Mark(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "marking attendance")
	}
	if created {
		return ctx.JSON(http.StatusCreated, r)
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *attendanceApi) query(ctx echo.Context) error {
	var (
		filter attendance.QueryFilter
		err    error
	)
	if filter.StudentID, err = queryInt(ctx, "student_id"); err != nil {
		return err
	}
	if filter.Date, err = queryDay(ctx, "date"); err != nil {
		return err
	}
	if filter.From, err = queryDay(ctx, "from"); err != nil {
		return err
	}
	if filter.To, err = queryDay(ctx, "to"); err != nil {
		return err
	}
	filter.Status = ctx.QueryParam("status")
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	records, err := api.svc.Query(ctx.Request().Context(), &filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying attendance")
	}
	if records == nil {
		records = []attendance.Record{}
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *attendanceApi) retrieve(ctx echo.Context) error {
	r, err := ctxRecord(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *attendanceApi) update(ctx echo.Context) error {
	r, err := ctxRecord(ctx)
	if err != nil {
		return err
	}

	var data attendance.UpdateRecord
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateRecord")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	if r, err = api.svc.Update(ctx.Request().Context(), r, data); err != nil {
		return errors.Wrap(err, "updating attendance record")
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *attendanceApi) destroy(ctx echo.Context) error {
	r, err := ctxRecord(ctx)
	if err != nil {
		return err
	}
	if _, err = api.svc.Delete(ctx.Request().Context(), r.ID); err != nil {
		return errors.Wrap(err, "deleting attendance record")
	}
	return ctx.NoContent(http.StatusNoContent)
}
