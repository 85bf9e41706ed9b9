package handlers

import (
	"net/http"
	"strconv"

	"github.com/anonto42/gamehub/backend/internal/apperrors"
	"github.com/anonto42/gamehub/backend/internal/middleware"
	"github.com/anonto42/gamehub/backend/internal/query"
	"github.com/anonto42/gamehub/backend/internal/validators"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// getUserIDFromContext returns the authenticated caller, or 0.
func getUserIDFromContext(c echo.Context) uint {
	id, _ := c.Get(middleware.UserIDKey).(uint)
	return id
}

func parseIDParam(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+name)
	}
	return uint(id), nil
}

// queryParams reads ?page=&size=&sort=&order=&q=. limit is accepted as an
// alias of size.
func queryParams(c echo.Context) query.Params {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	if size == 0 {
		size, _ = strconv.Atoi(c.QueryParam("limit"))
	}
	return query.Params{
		Page:   page,
		Size:   size,
		Sort:   c.QueryParam("sort"),
		Order:  c.QueryParam("order"),
		Search: c.QueryParam("q"),
	}.Normalize()
}

// bindAndValidate binds the body into req and runs the echo validator. The
// returned error is an *echo.HTTPError ready to be returned by the handler.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, echo.Map{
			"success": false,
			"error": echo.Map{
				"code":    "VALIDATION_FAILED",
				"message": "Request validation failed",
				"fields":  validators.FieldErrors(err),
			},
		})
	}
	return nil
}

func respondOK(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, echo.Map{"success": true, "data": data})
}

func respondPage[T any](c echo.Context, page query.Page[T]) error {
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    page.Items,
		"meta":    page.Meta,
	})
}

// respondError maps domain errors onto their HTTP status. Anything else is
// logged and reported as a 500 without leaking details.
func respondError(c echo.Context, err error) error {
	if appErr, ok := apperrors.As(err); ok {
		body := echo.Map{
			"code":    appErr.Kind,
			"message": appErr.Message,
		}
		if len(appErr.Fields) > 0 {
			body["fields"] = appErr.Fields
		}
		return c.JSON(appErr.Kind.HTTPStatus(), echo.Map{"success": false, "error": body})
	}

	logrus.WithFields(logrus.Fields{
		"method": c.Request().Method,
		"route":  c.Path(),
	}).WithError(err).Error("request failed")
	return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
}
