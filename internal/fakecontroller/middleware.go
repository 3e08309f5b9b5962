package fakecontroller

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"kvctl.io/kvctl/internal/logging"
)

// requestLogger logs every request with the caller's X-Request-ID, or a fresh
// one when the header is missing.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header("X-Request-ID", requestID)

		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String(logging.FieldRequestID, requestID),
			zap.String(logging.FieldMethod, c.Request.Method),
			zap.String(logging.FieldPath, c.Request.URL.Path),
			zap.Int(logging.FieldStatusCode, c.Writer.Status()),
			zap.Int64(logging.FieldDuration, time.Since(start).Milliseconds()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String(logging.FieldError, c.Errors.String()))
		}

		if c.Writer.Status() >= 400 {
			logger.Warn("request completed with client error", fields...)
			return
		}
		logger.Debug("request completed", fields...)
	}
}
