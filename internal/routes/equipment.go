package routes

import (
	"github.com/labstack/echo/v4"

	"equipment-system/internal/controllers"
)

func runEquipmentRouter(secureGroup *echo.Group, ctrl *controllers.EquipmentController) {
	equipments := secureGroup.Group("/equipments")
	equipments.GET("", ctrl.GetEquipments)
	equipments.POST("", ctrl.CreateEquipment)
	equipments.GET("/export", ctrl.ExportRegister)
	equipments.POST("/import", ctrl.ImportRegister)
	equipments.GET("/:id", ctrl.FindEquipment)
	equipments.PUT("/:id", ctrl.UpdateEquipment)
	equipments.DELETE("/:id", ctrl.DeleteEquipment)
	equipments.GET("/:id/history", ctrl.History)
}
