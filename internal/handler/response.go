package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"moodtracker/internal/auth"
	"moodtracker/internal/errors"
	"moodtracker/internal/model"
	"moodtracker/internal/policy"
)

// fail converts err into an echo.HTTPError carrying an ErrorResponse body.
// Unexpected errors are logged here and surface only as a generic message.
func fail(c echo.Context, log logrus.FieldLogger, err error) error {
	httpErr := errors.MapErrorToHTTP(err)
	if httpErr.StatusCode >= 500 {
		log.WithError(err).WithFields(logrus.Fields{
			"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
			"method":     c.Request().Method,
			"path":       c.Path(),
		}).Error("request failed")
	}
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse()).SetInternal(err)
}

// requireRole returns the caller's identity if its role is one of roles.
func requireRole(c echo.Context, roles ...model.Role) (auth.Identity, error) {
	id, ok := auth.IdentityFrom(c)
	if !ok {
		return auth.Identity{}, errors.ErrUnauthenticated
	}
	if err := policy.RequireRole(id.Role, roles...); err != nil {
		return auth.Identity{}, err
	}
	return id, nil
}
