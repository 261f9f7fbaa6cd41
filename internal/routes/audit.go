package routes

import (
	"github.com/labstack/echo/v4"

	"equipment-system/internal/controllers"
)

func runAuditRouter(secureGroup *echo.Group, ctrl *controllers.AuditController) {
	audits := secureGroup.Group("/audits")
	audits.GET("", ctrl.GetAuditRecords)
	audits.POST("", ctrl.CreateAuditRecord)
	audits.POST("/batch", ctrl.BatchCreateAuditRecords)
	audits.GET("/sync", ctrl.GetForSync)
	audits.GET("/equipment/:equipmentId", ctrl.GetByEquipment)
	audits.GET("/:id", ctrl.FindAuditRecord)
	audits.PUT("/:id", ctrl.UpdateAuditRecord)
}
