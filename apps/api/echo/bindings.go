package echoapi

import (
	"math"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/classtrack/core"
	"github.com/trezcool/classtrack/core/analytics"
)

const (
	orderingParam = "ordering"
	objectKey     = "object"
)

// Ordering binds `?ordering=lastName,-dateEnrolled` (a leading "-" sorts descending).
type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}

	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field == "" {
			continue
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

type DestroyMultipleRequest struct {
	IDs []int `query:"id"`
}

func pathID(ctx echo.Context) (int, error) {
	return analytics.ParseID("id", ctx.Param("id"))
}

// queryInt parses an optional integer query param (0 when absent). Ids are 32-bit serials.
func queryInt(ctx echo.Context, name string) (int, error) {
	return analytics.ParseCount(name, ctx.QueryParam(name), 0, math.MaxInt32)
}

// queryBool parses an optional boolean query param (nil when absent).
func queryBool(ctx echo.Context, name string) (*bool, error) {
	val := strings.TrimSpace(ctx.QueryParam(name))
	if val == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return nil, core.NewArgumentError(name, "%q is not a boolean", val)
	}
	return &b, nil
}

func queryDay(ctx echo.Context, name string) (core.Date, error) {
	d, err := analytics.ParseDay(ctx.QueryParam(name), core.Date{})
	if err != nil {
		return core.Date{}, core.NewArgumentError(name, "%q is not a date (YYYY-MM-DD)", ctx.QueryParam(name))
	}
	return d, nil
}

// objectMiddleware loads the record addressed by the `:id` path param into the context.
func objectMiddleware(get func(ctx echo.Context, id int) (interface{}, error)) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			id, err := pathID(ctx)
			if err != nil {
				return err
			}
			obj, err := get(ctx, id)
			if err != nil {
				return err
			}
			ctx.Set(objectKey, obj)
			return next(ctx)
		}
	}
}
