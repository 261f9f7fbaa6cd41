package routes

import (
	"github.com/labstack/echo/v4"

	"equipment-system/internal/controllers"
)

func runLiquidationRouter(secureGroup *echo.Group, ctrl *controllers.LiquidationController) {
	liquidations := secureGroup.Group("/liquidations")
	liquidations.GET("", ctrl.GetLiquidationRequests)
	liquidations.POST("", ctrl.CreateLiquidation)
	liquidations.GET("/pending", ctrl.GetPending)
	liquidations.GET("/:id", ctrl.FindLiquidation)
	liquidations.PUT("/:id", ctrl.UpdateLiquidation)
	liquidations.POST("/:id/approve", ctrl.ApproveLiquidation)
	liquidations.POST("/:id/reject", ctrl.RejectLiquidation)
	liquidations.GET("/:id/history", ctrl.History)
}
