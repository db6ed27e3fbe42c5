package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/fraud-registry/pkg/logger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RequestLogger writes one line per request. The query string is never logged
// since it may carry a token. Probe and scrape routes log at debug level.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.String("path", c.Request.URL.Path),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		}
		if email := GetUserEmail(c); email != "" {
			fields = append(fields, zap.String("user", email))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		logger.WithContext(c.Request.Context()).Check(requestLevel(c.Request.URL.Path, status), "Request completed").Write(fields...)
	}
}

func requestLevel(path string, status int) zapcore.Level {
	switch {
	case status >= 500:
		return zapcore.ErrorLevel
	case status >= 400:
		return zapcore.WarnLevel
	case path == "/metrics" || path == "/healthz" || strings.HasPrefix(path, "/health/"):
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}
