package controller

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/averyk/lifeledger/internal/api/response"
	"github.com/averyk/lifeledger/internal/service"
)

// fail maps the service error taxonomy onto HTTP statuses. Unknown errors
// stay opaque to the client.
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		response.Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrConflict), errors.Is(err, service.ErrAlreadyRefunded):
		response.Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrInvalidRange):
		response.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrForbidden):
		response.Error(c, http.StatusForbidden, err.Error())
	default:
		slog.Error("request failed", "path", c.FullPath(), "error", err)
		response.Error(c, http.StatusInternalServerError, "internal error")
	}
}

// parseDate accepts a date-only or RFC3339 value; empty input yields the
// zero time.
func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}
