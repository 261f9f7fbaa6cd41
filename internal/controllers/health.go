package controllers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"equipment-system/pkg/utils"
)

// Pinger is satisfied by *pgxpool.Pool and by a small adapter over the redis client.
type Pinger interface {
	Ping(ctx context.Context) error
}

const healthTimeoutSeconds = 2

type HealthController struct {
	checks map[string]Pinger
	logger *zap.Logger
}

func NewHealthController(checks map[string]Pinger, logger *zap.Logger) *HealthController {
	return &HealthController{checks: checks, logger: logger}
}

func (c *HealthController) Health(ctx echo.Context) error {
	reqCtx, cancel := utils.ContextWithTimeout(ctx, healthTimeoutSeconds)
	defer cancel()

	status := make(map[string]string, len(c.checks))
	healthy := true
	for name, check := range c.checks {
		if err := check.Ping(reqCtx); err != nil {
			c.logger.Warn("Проверка зависимости не пройдена", zap.String("dependency", name), zap.Error(err))
			status[name] = "down"
			healthy = false
			continue
		}
		status[name] = "up"
	}

	if !healthy {
		return ctx.JSON(http.StatusServiceUnavailable, &utils.HTTPResponse{Status: false, Body: status, Message: "Service degraded"})
	}
	return utils.SuccessResponse(ctx, status, "OK", http.StatusOK)
}
