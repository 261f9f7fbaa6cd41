package controllers

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"equipment-system/pkg/service"
	"equipment-system/pkg/utils"
	appwebsocket "equipment-system/pkg/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// AlertsController serves the live alert feed. Browsers cannot set headers on a
// websocket handshake, so the bearer token comes in ?token=.
type AlertsController struct {
	hub        *appwebsocket.Hub
	jwtService service.JWTService
	logger     *zap.Logger
}

func NewAlertsController(hub *appwebsocket.Hub, jwtService service.JWTService, logger *zap.Logger) *AlertsController {
	return &AlertsController{hub: hub, jwtService: jwtService, logger: logger}
}

func (c *AlertsController) Subscribe(ctx echo.Context) error {
	userID := utils.SystemActor
	if c.jwtService != nil {
		claims, err := c.jwtService.ValidateToken(ctx.QueryParam("token"))
		if err != nil {
			return utils.ErrorResponse(ctx, err, c.logger)
		}
		userID = claims.UserID
	}

	conn, err := upgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		c.logger.Warn("alert feed upgrade failed", zap.Error(err))
		return nil
	}

	client := appwebsocket.NewClient(c.hub, conn, userID)
	c.hub.Register(client)
	go client.WritePump()
	go client.ReadPump()
	return nil
}
