package routes

import (
	"github.com/labstack/echo/v4"

	"equipment-system/internal/controllers"
)

func runWarehouseRouter(secureGroup *echo.Group, ctrl *controllers.WarehouseController) {
	items := secureGroup.Group("/warehouse/items")
	items.GET("", ctrl.GetWarehouseItems)
	items.POST("", ctrl.CreateWarehouseItem)
	items.GET("/low-stock", ctrl.GetLowStockItems)
	items.GET("/:id", ctrl.GetWarehouseItem)
	items.PUT("/:id", ctrl.UpdateWarehouseItem)
	items.DELETE("/:id", ctrl.DeleteWarehouseItem)

	transactions := secureGroup.Group("/warehouse/transactions")
	transactions.GET("", ctrl.GetWarehouseTransactions)
	transactions.POST("", ctrl.CreateWarehouseTransaction)
	transactions.GET("/export", ctrl.ExportLedger)
}
