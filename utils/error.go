package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse defines the structure of error responses
type ErrorResponse struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Code    string `json:"code,omitempty"`
	Field   string `json:"field,omitempty"`
}

// ErrorHandler is a middleware to catch panics and return structured errors
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				GetLogger().Error("Unhandled panic",
					zap.Any("error", err),
					zap.String("path", c.FullPath()),
				)

				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Message: "Internal Server Error",
					Details: "An unexpected error occurred. Please try again later.",
				})
			}
		}()
		c.Next()
	}
}

// JSONError sends a standardized JSON error response
func JSONError(c *gin.Context, status int, message string, details string) {
	JSONErrorWithCode(c, status, ErrorResponse{Message: message, Details: details})
}

// JSONErrorWithCode sends resp and logs server errors at error level.
func JSONErrorWithCode(c *gin.Context, status int, resp ErrorResponse) {
	fields := []zap.Field{
		zap.String("details", resp.Details),
		zap.String("code", resp.Code),
		zap.Int("status", status),
	}
	if status >= http.StatusInternalServerError {
		GetLogger().Error(resp.Message, fields...)
	} else {
		GetLogger().Warn(resp.Message, fields...)
	}
	c.AbortWithStatusJSON(status, resp)
}
