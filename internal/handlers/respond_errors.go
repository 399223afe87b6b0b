package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smallbooks/smallbooks_backend/internal/apperrors"
	"github.com/smallbooks/smallbooks_backend/internal/middleware"
)

// respondError maps service errors onto HTTP status codes. Recoverable error kinds keep
// their message; unexpected errors are logged and masked.
func respondError(c *gin.Context, err error) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	switch {
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrDuplicate), errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, apperrors.ErrPendingNotPostable):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrPersistenceUnavailable):
		logger.Error("persistence unavailable", slog.String("error", err.Error()))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "datastore temporarily unavailable, retry shortly"})
	default:
		logger.Error("unhandled service error", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// bindError responds 400 for a request that failed binding or query validation.
func bindError(c *gin.Context, err error) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	logger.Warn("request binding failed", slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format: " + err.Error()})
}

// requireUserID pulls the authenticated user id or responds 401.
func requireUserID(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	}
	return userID, ok
}
