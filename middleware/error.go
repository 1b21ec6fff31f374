package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"

	"research-tracker-api/config"
	"research-tracker-api/services"
	"research-tracker-api/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ErrorHandler renders errors attached with c.Error and recovers panics.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				config.Log.Error().
					Str("panic", fmt.Sprintf("%v", r)).
					Str("stack", string(debug.Stack())).
					Str("request_id", c.GetString("requestID")).
					Msg("panic recovered")

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error":   "Internal server error",
				})
			}
		}()

		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		code, msg := StatusFor(err)
		if code >= http.StatusInternalServerError {
			config.Log.Error().Err(err).
				Str("request_id", c.GetString("requestID")).
				Str("path", c.Request.URL.Path).
				Msg("unhandled request error")
		}
		c.JSON(code, gin.H{"success": false, "error": msg})
	}
}

// StatusFor maps an error to its HTTP status and client-facing message.
func StatusFor(err error) (int, string) {
	var appErr *utils.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr.Code, appErr.Message
	case errors.Is(err, services.ErrInvalidInput):
		return http.StatusBadRequest, strings.TrimPrefix(err.Error(), services.ErrInvalidInput.Error()+": ")
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrProjectNotFound),
		errors.Is(err, services.ErrPaperNotFound),
		errors.Is(err, services.ErrPromotionRunNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, utils.ErrNotFound.Message
	case errors.Is(err, services.ErrPromotionAlreadyRunning),
		errors.Is(err, services.ErrPromotionConflict):
		return http.StatusConflict, err.Error()
	default:
		return http.StatusInternalServerError, utils.ErrInternalServer.Message
	}
}
