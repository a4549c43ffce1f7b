package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/classtrack/core/communication"
)

type communicationApi struct {
	svc      *communication.Service
	validate *validator.Validate
}

// registerCommunicationAPI serves the detail endpoints; entries are listed and created under their student.
func registerCommunicationAPI(g *echo.Group, svc *communication.Service, validate *validator.Validate) {
	api := communicationApi{svc: svc, validate: validate}

	dg := g.Group("/communications/:id", objectMiddleware(func(ctx echo.Context, id int) (interface{}, error) {
		return svc.GetByID(ctx.Request().Context(), id)
	}))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
}

func ctxCommunication(ctx echo.Context) (communication.Communication, error) {
	c, ok := ctx.Get(objectKey).(communication.Communication)
	if !ok {
		return communication.Communication{}, errors.Wrap(errObjectNotInCtx, "retrieving communication from context")
	}
	return c, nil
}

func (api *communicationApi) retrieve(ctx echo.Context) error {
	c, err := ctxCommunication(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *communicationApi) update(ctx echo.Context) error {
	c, err := ctxCommunication(ctx)
	if err != nil {
		return err
	}

	var data communication.UpdateCommunication
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCommunication")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	if c, err = api.svc.Update(ctx.Request().Context(), c, data); err != nil {
		return errors.Wrap(err, "updating communication")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *communicationApi) destroy(ctx echo.Context) error {
	c, err := ctxCommunication(ctx)
	if err != nil {
		return err
	}
	if _, err = api.svc.Delete(ctx.Request().Context(), c.ID); err != nil {
		return errors.Wrap(err, "deleting communication")
	}
	return ctx.NoContent(http.StatusNoContent)
}
