package router

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	echoSwagger "github.com/swaggo/echo-swagger"

	"moodtracker/internal/auth"
	"moodtracker/internal/errors"
	"moodtracker/internal/handler"
)

// Handlers groups the HTTP handlers mounted by Register.
type Handlers struct {
	Health *handler.HealthHandler
	Auth   *handler.AuthHandler
	Mood   *handler.MoodHandler
	Doctor *handler.DoctorHandler
}

// Register wires routes and middleware.
func Register(e *echo.Echo, h Handlers, authMW *auth.Middleware, log logrus.FieldLogger) {
	e.HTTPErrorHandler = ErrorHandler(log)
	e.Validator = NewValidator()

	e.Use(middleware.RequestID())
	e.Use(requestLogger(log))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.GET("/health", h.Health.Health)
	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/refresh", h.Auth.Refresh)
	api.GET("/moods/config", h.Mood.Config)

	// Secured routes (require JWT authentication). Attached per route so unknown
	// paths under /api still reach the 404 handler.
	secured := authMW.Authenticate()

	api.POST("/auth/logout", h.Auth.Logout, secured...)
	api.GET("/auth/profile", h.Auth.Profile, secured...)

	// Patient routes
	api.GET("/moods", h.Mood.List, secured...)
	api.GET("/moods/today", h.Mood.Today, secured...)
	api.POST("/moods", h.Mood.Create, secured...)
	api.PUT("/moods", h.Mood.Update, secured...)
	api.DELETE("/moods", h.Mood.Delete, secured...)

	// Doctor routes
	doctor := api.Group("/doctor")
	doctor.GET("/patients", h.Doctor.Patients, secured...)
	doctor.POST("/patients/:patientId/assign", h.Doctor.Assign, secured...)
	doctor.DELETE("/patients/:patientId/assign", h.Doctor.Unassign, secured...)
	doctor.GET("/patients/:patientId/moods", h.Doctor.Moods, secured...)
}

func requestLogger(log logrus.FieldLogger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := log.WithFields(logrus.Fields{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"request_id": v.RequestID,
			})
			switch {
			case v.Status >= http.StatusInternalServerError:
				entry.Error("request")
			case v.Status >= http.StatusBadRequest:
				entry.Warn("request")
			default:
				entry.Info("request")
			}
			return nil
		},
	})
}

// ErrorHandler renders every error, including framework ones, as an ErrorResponse.
func ErrorHandler(log logrus.FieldLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := toResponse(err)
		if status >= http.StatusInternalServerError {
			log.WithError(err).WithField("path", c.Path()).Error("unhandled error")
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			log.WithError(err).Warn("write error response")
		}
	}
}

func toResponse(err error) (int, errors.ErrorResponse) {
	var he *echo.HTTPError
	if stderrors.As(err, &he) {
		if resp, ok := he.Message.(errors.ErrorResponse); ok {
			return he.Code, resp
		}
		switch he.Code {
		case http.StatusNotFound:
			return he.Code, errors.NewHTTPError(he.Code, "Route not found", "ROUTE_NOT_FOUND").ToErrorResponse()
		case http.StatusMethodNotAllowed:
			return he.Code, errors.NewHTTPError(he.Code, "Method not allowed", "METHOD_NOT_ALLOWED").ToErrorResponse()
		case http.StatusUnauthorized:
			return he.Code, errors.NewHTTPError(he.Code, "Invalid token", "UNAUTHENTICATED").ToErrorResponse()
		case http.StatusInternalServerError:
			return he.Code, errors.NewHTTPError(he.Code, "Server error", "INTERNAL_ERROR").ToErrorResponse()
		default:
			return he.Code, errors.NewHTTPError(he.Code, fmt.Sprint(he.Message), "HTTP_ERROR").ToErrorResponse()
		}
	}

	mapped := errors.MapErrorToHTTP(err)
	return mapped.StatusCode, mapped.ToErrorResponse()
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator builds the request validator.
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
