package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"playlog/internal/microservices/http-api/service"
	"playlog/internal/shared"
	"playlog/internal/validation"
)

const internalErrorMessage = "something went wrong, please try again"

// respondError maps a service error onto its status code. Unknown errors are
// logged and hidden behind a generic message.
func respondError(c *gin.Context, err error) {
	var status int
	switch {
	case errors.Is(err, service.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrExpiredToken):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrReviewNotFound),
		errors.Is(err, service.ErrCurrentlyPlayingNotFound),
		errors.Is(err, service.ErrGameNotFound),
		errors.Is(err, service.ErrUserNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrEmailInUse):
		status = http.StatusConflict
	case errors.Is(err, service.ErrUploadNotConfigured):
		status = http.StatusServiceUnavailable
	default:
		slog.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": internalErrorMessage})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// respondBindError answers a body or query that failed to bind.
func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": validation.Message(err)})
}

// currentUserID returns the id set by the auth middleware, answering 401 when absent.
func currentUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(shared.ContextUserID)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return "", false
	}
	return userID, true
}
