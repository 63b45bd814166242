package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cinebook/internal/repository"
)

// statusFor maps an error kind onto an HTTP status code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, repository.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, repository.ErrInvalidInstrument), errors.Is(err, repository.ErrOtpMismatch):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrExpired):
		return http.StatusGone
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeError renders err as {"error": code, "message": text, "field": f}.
// Unclassified errors are logged and reported as internal_error without
// leaking their text.
func writeError(c echo.Context, log logrus.FieldLogger, err error) error {
	status := statusFor(err)
	if e, ok := repository.AsError(err); ok {
		body := echo.Map{"error": e.Code, "message": e.Message}
		if e.Field != "" {
			body["field"] = e.Field
		}
		return c.JSON(status, body)
	}
	if log != nil {
		log.WithError(err).WithField("path", c.Path()).Error("request failed")
	}
	return c.JSON(status, echo.Map{"error": "internal_error", "message": "internal error"})
}

// badRequest is the common 400 for malformed bodies and missing fields.
func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "bad_request", "message": msg})
}
