package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agridane/erp_backend/internal/apperrors"
)

// respondServiceError maps the service sentinel errors onto HTTP status
// codes. Anything unmapped is an internal error and keeps its detail out of
// the response body.
func respondServiceError(c *gin.Context, logger *slog.Logger, err error, logMsg string) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn(logMsg, slog.String("error", err.Error()))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrForbidden):
		logger.Warn(logMsg, slog.String("error", err.Error()))
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn(logMsg, slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, apperrors.ErrConflict), errors.Is(err, apperrors.ErrDuplicate):
		logger.Warn(logMsg, slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrGone):
		logger.Warn(logMsg, slog.String("error", err.Error()))
		c.JSON(http.StatusGone, gin.H{"error": "The report file is no longer available"})
	case errors.Is(err, apperrors.ErrUnsupportedMedia):
		logger.Warn(logMsg, slog.String("error", err.Error()))
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": err.Error()})
	default:
		logger.Error(logMsg, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
