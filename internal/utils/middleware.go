package utils

import (
	"time"

	"github.com/gin-gonic/gin"
)

type contextKey string

// LoggerContextKey is where ContextLogger stores the request-scoped
// logger.
const LoggerContextKey contextKey = "logger"

// ContextLogger attaches a request-scoped logger (carrying request_id)
// to the request context.
func ContextLogger(logger Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestLogger := logger
		if requestID := c.GetString("request_id"); requestID != "" {
			requestLogger = logger.With("request_id", requestID)
		}
		c.Set(string(LoggerContextKey), requestLogger)
		c.Next()
	}
}

// FromContext returns the request-scoped logger, or the fallback when
// none was attached.
func FromContext(c *gin.Context, fallback Logger) Logger {
	if value, ok := c.Get(string(LoggerContextKey)); ok {
		if logger, ok := value.(Logger); ok {
			return logger
		}
	}
	return fallback
}

// LoggerMiddleware logs one line per request with latency and status.
func LoggerMiddleware(logger Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		requestLogger := FromContext(c, logger)
		args := []any{
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		switch {
		case c.Writer.Status() >= 500:
			requestLogger.Error("Request failed", args...)
		case c.Writer.Status() >= 400:
			requestLogger.Warn("Request rejected", args...)
		default:
			requestLogger.Info("Request handled", args...)
		}
	}
}
