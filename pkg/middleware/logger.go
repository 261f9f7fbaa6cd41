package middleware

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const LoggerKey = "logger"

// InjectLogger stores a request scoped logger in the echo context.
func InjectLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			reqLogger := logger.With(
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
			)
			if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
				reqLogger = reqLogger.With(zap.String("request_id", id))
			}
			c.Set(LoggerKey, reqLogger)
			return next(c)
		}
	}
}

// LoggerFrom returns the request logger, or fallback when none was injected.
func LoggerFrom(c echo.Context, fallback *zap.Logger) *zap.Logger {
	if l, ok := c.Get(LoggerKey).(*zap.Logger); ok {
		return l
	}
	return fallback
}
