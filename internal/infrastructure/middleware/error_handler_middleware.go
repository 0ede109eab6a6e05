package middleware

import (
	"errors"
	"net/http"

	"sourcehub/internal/core/domain"
	apperrors "sourcehub/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorHandlerMiddleware maps application errors to HTTP responses. The
// loginRoute is attached to permission-denied responses so clients know
// where to re-authenticate.
func ErrorHandlerMiddleware(logger *zap.SugaredLogger, loginRoute string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		// Permission denied means the session is no longer usable; answer
		// with a redirect rather than a generic failure.
		if errors.Is(err, domain.ErrPermissionDenied) {
			logger.Warnw("permission denied, redirecting to login",
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
			)
			appErr := apperrors.NewPermissionDeniedError(loginRoute)
			c.JSON(appErr.HTTPStatus, gin.H{
				"error":       string(appErr.Code),
				"message":     appErr.Message,
				"redirect_to": appErr.Context["redirect_to"],
			})
			return
		}

		switch {
		case errors.Is(err, domain.ErrSourceNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error":   string(apperrors.ErrCodeNotFound),
				"message": "source not found",
			})
			return
		case errors.Is(err, domain.ErrDuplicateSource):
			c.JSON(http.StatusConflict, gin.H{
				"error":   string(apperrors.ErrCodeConflict),
				"message": "source already registered",
			})
			return
		}

		// Try to extract AppError
		appErr := apperrors.GetAppError(err)
		if appErr != nil {
			logger.Errorw("application error",
				"code", appErr.Code,
				"message", appErr.Message,
				"status", appErr.HTTPStatus,
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
				"context", appErr.Context,
			)

			c.JSON(appErr.HTTPStatus, gin.H{
				"error":   string(appErr.Code),
				"message": appErr.Message,
				"details": appErr.Context,
			})
			return
		}

		// Handle non-AppError errors
		logger.Errorw("unhandled error",
			"error", err.Error(),
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
		)

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   string(apperrors.ErrCodeInternal),
			"message": "Internal server error",
		})
	}
}

// RecoveryMiddleware recovers from panics and returns proper error responses
func RecoveryMiddleware(logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Errorw("panic recovered",
					"error", err,
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
				)

				c.JSON(http.StatusInternalServerError, gin.H{
					"error":   string(apperrors.ErrCodeInternal),
					"message": "Internal server error",
				})
				c.Abort()
			}
		}()

		c.Next()
	}
}
