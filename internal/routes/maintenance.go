package routes

import (
	"github.com/labstack/echo/v4"

	"equipment-system/internal/controllers"
)

func runMaintenanceRouter(secureGroup *echo.Group, ctrl *controllers.MaintenanceController) {
	maintenances := secureGroup.Group("/maintenances")
	maintenances.GET("", ctrl.GetMaintenanceRequests)
	maintenances.POST("", ctrl.CreateMaintenance)
	maintenances.GET("/pending", ctrl.GetPending)
	maintenances.GET("/technician/:technicianId", ctrl.GetByTechnician)
	maintenances.GET("/:id", ctrl.FindMaintenance)
	maintenances.PUT("/:id", ctrl.UpdateMaintenance)
	maintenances.POST("/:id/assign", ctrl.AssignTechnician)
	maintenances.POST("/:id/start", ctrl.StartMaintenance)
	maintenances.POST("/:id/complete", ctrl.CompleteMaintenance)
	maintenances.POST("/:id/cancel", ctrl.CancelMaintenance)
	maintenances.GET("/:id/history", ctrl.History)
}
