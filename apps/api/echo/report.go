package echoapi

import (
	"math"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/classtrack/core"
	"github.com/trezcool/classtrack/core/analytics"
	"github.com/trezcool/classtrack/core/report"
)

type reportApi struct {
	svc *report.Service
}

func registerReportAPI(g *echo.Group, svc *report.Service) {
	api := reportApi{svc: svc}

	rg := g.Group("/reports")
	rg.GET("/dashboard", api.dashboard)
	rg.GET("/distribution", api.distribution)
	rg.GET("/attendance/trend", api.attendanceTrend)
	rg.GET("/attendance/week", api.attendanceWeek)
	rg.GET("/grade-levels", api.gradeLevels)
	rg.GET("/top-performers", api.topPerformers)
	rg.GET("/gradebook", api.gradeBook)
}

// todayAndDays binds `?today=YYYY-MM-DD&days=N` (today and the configured window by default).
func todayAndDays(ctx echo.Context) (core.Date, int, error) {
	today, err := analytics.ParseDay(ctx.QueryParam("today"), core.Today())
	if err != nil {
		return core.Date{}, 0, core.NewArgumentError("today", "%q is not a date (YYYY-MM-DD)", ctx.QueryParam("today"))
	}
	days, err := analytics.ParseCount("days", ctx.QueryParam("days"), 0, analytics.MaxTrendDays)
	if err != nil {
		return core.Date{}, 0, err
	}
	return today, days, nil
}

func (api *reportApi) dashboard(ctx echo.Context) error {
	today, days, err := todayAndDays(ctx)
	if err != nil {
		return err
	}
	dash, err := api.svc.Dashboard(ctx.Request().Context(), today.Time, days)
	if err != nil {
		return errors.Wrap(err, "building dashboard")
	}
	return ctx.JSON(http.StatusOK, dash)
}

func (api *reportApi) distribution(ctx echo.Context) error {
	dist, err := api.svc.Distribution(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "building distribution")
	}
	return ctx.JSON(http.StatusOK, dist)
}

func (api *reportApi) attendanceTrend(ctx echo.Context) error {
	today, days, err := todayAndDays(ctx)
	if err != nil {
		return err
	}
	trend, err := api.svc.AttendanceTrend(ctx.Request().Context(), today.Time, days)
	if err != nil {
		return errors.Wrap(err, "building attendance trend")
	}
	return ctx.JSON(http.StatusOK, trend)
}

func (api *reportApi) attendanceWeek(ctx echo.Context) error {
	anchor, err := analytics.ParseDay(ctx.QueryParam("date"), core.Today())
	if err != nil {
		return core.NewArgumentError("date", "%q is not a date (YYYY-MM-DD)", ctx.QueryParam("date"))
	}
	grid, err := api.svc.WeeklyAttendance(ctx.Request().Context(), anchor.Time)
	if err != nil {
		return errors.Wrap(err, "building weekly attendance")
	}
	return ctx.JSON(http.StatusOK, grid)
}

func (api *reportApi) gradeLevels(ctx echo.Context) error {
	rollups, err := api.svc.GradeLevels(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "building grade-level rollups")
	}
	return ctx.JSON(http.StatusOK, rollups)
}

func (api *reportApi) topPerformers(ctx echo.Context) error {
	limit, err := analytics.ParseCount("limit", ctx.QueryParam("limit"), 0, math.MaxInt32)
	if err != nil {
		return err
	}
	top, err := api.svc.TopPerformers(ctx.Request().Context(), limit)
	if err != nil {
		return errors.Wrap(err, "ranking students")
	}
	return ctx.JSON(http.StatusOK, top)
}

func (api *reportApi) gradeBook(ctx echo.Context) error {
	book, err := api.svc.GradeBook(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "building grade book")
	}
	return ctx.JSON(http.StatusOK, book)
}
