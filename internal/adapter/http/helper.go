package http

import (
	"errors"
	"net/http"
	"time"

	"flendly-backend/internal/adapter/middleware"
	"flendly-backend/internal/domain/loan"
	"flendly-backend/internal/domain/user"
	"flendly-backend/pkg/id"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// ---- helpers ----

// idParam reads a path id. Ids that id.NewID32 could not have produced
// report notFound without touching the store.
func idParam(c echo.Context, name string, notFound error) (string, error) {
	v := c.Param(name)
	if !id.IsID32(v) {
		return "", notFound
	}
	return v, nil
}

// bindAndValidate answers 400 itself and reports false when the body is unusable.
func bindAndValidate(c echo.Context, dst any) (bool, error) {
	if err := c.Bind(dst); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(dst); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	return true, nil
}

func callerOf(c echo.Context) (user.Caller, error) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		return user.Caller{}, c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "access token required"})
	}
	return caller, nil
}

// writeError maps domain errors onto status codes; anything unknown is a 500.
func writeError(c echo.Context, log logrus.FieldLogger, err error) error {
	switch {
	case errors.Is(err, loan.ErrValidation), errors.Is(err, user.ErrValidation):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, loan.ErrNotFound), errors.Is(err, user.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, loan.ErrForbidden), errors.Is(err, user.ErrForbidden):
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: err.Error()})
	case errors.Is(err, user.ErrEmailTaken):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, user.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: err.Error()})
	}
	log.WithError(err).WithFields(logrus.Fields{
		"method": c.Request().Method,
		"path":   c.Path(),
	}).Error("request failed")
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// parseAsOf accepts RFC3339 or a plain date (midnight UTC); empty means now.
func parseAsOf(raw string, now time.Time) (time.Time, error) {
	if raw == "" {
		return now, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Parse(time.DateOnly, raw)
}
