package routes

import (
	"github.com/labstack/echo/v4"

	"equipment-system/internal/controllers"
)

func runAssignmentRouter(secureGroup *echo.Group, ctrl *controllers.AssignmentController) {
	assignments := secureGroup.Group("/assignments")
	assignments.GET("", ctrl.GetAssignments)
	assignments.POST("", ctrl.CreateAssignment)
	assignments.GET("/user/:userId", ctrl.GetByUser)
	assignments.GET("/:id", ctrl.FindAssignment)
	assignments.PUT("/:id", ctrl.UpdateAssignment)
	assignments.DELETE("/:id", ctrl.DeleteAssignment)
	assignments.POST("/:id/return", ctrl.ReturnAssignment)
	assignments.POST("/:id/lost", ctrl.MarkLost)
	assignments.GET("/:id/history", ctrl.History)
}
