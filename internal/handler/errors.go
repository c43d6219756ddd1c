package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/algotrack/backend/internal/domain"
	"github.com/algotrack/backend/internal/middleware"
)

// respondError maps a service error to its HTTP status and JSON body.
// Unexpected errors are logged and reported without detail.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var limitErr *domain.LimitError
	switch {
	case errors.As(err, &limitErr):
		c.JSON(http.StatusForbidden, gin.H{
			"error":   err.Error(),
			"current": limitErr.Current,
			"limit":   limitErr.Limit,
		})
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrUnsupportedPlatform):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrUsernameNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrNotLinked),
		errors.Is(err, domain.ErrCourseNotFound),
		errors.Is(err, domain.ErrQuestionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrAlreadyLinked):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNoPlatformData):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrSyncFailed):
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		middleware.Logger(c, logger).Error("Request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": domain.ErrInternalServer.Error()})
	}
}
