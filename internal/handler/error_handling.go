package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/kore-signet/blaseball-highlights-server/internal/models"
)

// handleServiceError maps domain errors onto the wire contract:
// 404 unknown story, 401 bad identity on edit, 403 bad identity on
// creation, 500 for everything else.
func (h *HighlightHandler) handleServiceError(c echo.Context, log *zap.Logger, err error) error {
	switch {
	case errors.Is(err, models.ErrStoryNotFound):
		requestFailuresTotal.WithLabelValues("not_found").Inc()
		return respondError(c, http.StatusNotFound, "story id not found")
	case errors.Is(err, models.ErrUnauthorized):
		requestFailuresTotal.WithLabelValues("unauthorized").Inc()
		return respondError(c, http.StatusUnauthorized, "invalid user token/id")
	case errors.Is(err, models.ErrInvalidIdentity):
		requestFailuresTotal.WithLabelValues("forbidden").Inc()
		return respondError(c, http.StatusForbidden, "invalid user token/id")
	default:
		log.Error("Unhandled service error", zap.Error(err))
		requestFailuresTotal.WithLabelValues("internal").Inc()
		return respondError(c, http.StatusInternalServerError, "internal server error")
	}
}

func respondError(c echo.Context, status int, reason string) error {
	return c.JSON(status, ErrorResponse{Status: status, Reason: reason})
}
