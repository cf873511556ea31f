// Package request holds helpers shared by the echo handlers for binding,
// validation and query parsing.
package request

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"TaskFlow/internal/apperr"
	"TaskFlow/internal/store"
)

// Bind decodes the request body into dst and runs the registered validator.
func Bind(c echo.Context, dst interface{}) error {
	if err := c.Bind(dst); err != nil {
		return apperr.BadRequest("Invalid request")
	}
	return c.Validate(dst)
}

// PathID parses the :id path parameter.
func PathID(c echo.Context) (primitive.ObjectID, error) {
	return ParamID(c, "id")
}

func ParamID(c echo.Context, name string) (primitive.ObjectID, error) {
	id, err := store.ParseID(c.Param(name))
	if err != nil {
		return id, apperr.BadRequest("Invalid %s", name)
	}
	return id, nil
}

// QueryID parses an optional ObjectID query parameter.
func QueryID(c echo.Context, name string) (primitive.ObjectID, error) {
	id, err := store.ParseOptionalID(c.QueryParam(name))
	if err != nil {
		return id, apperr.BadRequest("Invalid %s", name)
	}
	return id, nil
}

// QueryBool returns nil when the parameter is absent.
func QueryBool(c echo.Context, name string) (*bool, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperr.BadRequest("Invalid %s", name)
	}
	return &v, nil
}

// QueryTime parses an optional RFC3339 timestamp or YYYY-MM-DD date.
func QueryTime(c echo.Context, name string) (time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Time{}, apperr.BadRequest("Invalid %s", name)
}

func QueryInt(c echo.Context, name string, def int) int {
	v, err := strconv.Atoi(c.QueryParam(name))
	if err != nil {
		return def
	}
	return v
}

// ListOptions reads page, limit and sort from the query string. sort must
// name created_at, updated_at or one of sortable.
func ListOptions(c echo.Context, sortable ...string) (store.ListOptions, error) {
	lo := store.ListOptions{
		Page:  QueryInt(c, "page", 1),
		Limit: QueryInt(c, "limit", store.DefaultLimit),
		Sort:  c.QueryParam("sort"),
	}
	if lo.Sort == "" {
		return lo, nil
	}
	field := store.SortField(lo.Sort)
	for _, allowed := range [][]string{store.DefaultSortFields, sortable} {
		for _, f := range allowed {
			if f == field {
				return lo, nil
			}
		}
	}
	return lo, apperr.BadRequest("Invalid sort field %q", field)
}
