package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"equipment-system/internal/dto"
	"equipment-system/internal/services"
	"equipment-system/pkg/api"
	"equipment-system/pkg/middleware"
	"equipment-system/pkg/utils"
)

type MaintenanceController struct {
	maintenanceService services.MaintenanceServiceInterface
	logger             *zap.Logger
}

func NewMaintenanceController(service services.MaintenanceServiceInterface, logger *zap.Logger) *MaintenanceController {
	return &MaintenanceController{maintenanceService: service, logger: logger}
}

func (c *MaintenanceController) GetMaintenanceRequests(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())
	list, total, err := c.maintenanceService.GetMaintenanceRequests(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, middleware.LoggerFrom(ctx, c.logger))
	}
	return api.SuccessList(ctx, "Maintenance requests fetched", list, total, filter.Page, pageLimit(filter.WithPagination, filter.Limit))
}

func (c *MaintenanceController) GetPending(ctx echo.Context) error {
	list, err := c.maintenanceService.GetPending(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, middleware.LoggerFrom(ctx, c.logger))
	}
	return api.SuccessList(ctx, "Pending maintenance requests fetched", list, uint64(len(list)), 1, 0)
}

func (c *MaintenanceController) GetByTechnician(ctx echo.Context) error {
	list, err := c.maintenanceService.GetByTechnician(ctx.Request().Context(), ctx.Param("technicianId"))
	if err != nil {
		return utils.ErrorResponse(ctx, err, middleware.LoggerFrom(ctx, c.logger))
	}
	return api.SuccessList(ctx, "Maintenance requests fetched", list, uint64(len(list)), 1, 0)
}

func (c *MaintenanceController) FindMaintenance(ctx echo.Context) error {
	logger := middleware.LoggerFrom(ctx, c.logger)
	id, err := utils.ParseUUIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}

	res, err := c.maintenanceService.FindMaintenance(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}
	return utils.SuccessResponse(ctx, res, "Maintenance request found", http.StatusOK)
}

func (c *MaintenanceController) CreateMaintenance(ctx echo.Context) error {
	logger := middleware.LoggerFrom(ctx, c.logger)
	var payload dto.CreateMaintenanceDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, badRequest(err), logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}

	res, err := c.maintenanceService.CreateMaintenance(ctx.Request().Context(), payload)
	if err != nil {
		logger.Warn("Ошибка при создании заявки на ремонт", zap.Stringer("equipment_id", payload.EquipmentID), zap.Error(err))
		return utils.ErrorResponse(ctx, err, logger)
	}
	return utils.SuccessResponse(ctx, res, "Maintenance request created", http.StatusCreated)
}

func (c *MaintenanceController) AssignTechnician(ctx echo.Context) error {
	logger := middleware.LoggerFrom(ctx, c.logger)
	id, err := utils.ParseUUIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}

	var payload dto.AssignTechnicianDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, badRequest(err), logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}

	res, err := c.maintenanceService.AssignTechnician(ctx.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}
	return utils.SuccessResponse(ctx, res, "Technician assigned", http.StatusOK)
}

func (c *MaintenanceController) StartMaintenance(ctx echo.Context) error {
	logger := middleware.LoggerFrom(ctx, c.logger)
	id, err := utils.ParseUUIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}

	var payload dto.StartMaintenanceDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, badRequest(err), logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}

	res, err := c.maintenanceService.StartMaintenance(ctx.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}
	return utils.SuccessResponse(ctx, res, "Maintenance started", http.StatusOK)
}

func (c *MaintenanceController) CompleteMaintenance(ctx echo.Context) error {
	logger := middleware.LoggerFrom(ctx, c.logger)
	id, err := utils.ParseUUIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}

	var payload dto.CompleteMaintenanceDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, badRequest(err), logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}

	res, err := c.maintenanceService.CompleteMaintenance(ctx.Request().Context(), id, payload, utils.IdempotencyKey(ctx))
	if err != nil {
		logger.Warn("Ошибка при завершении ремонта", zap.Stringer("id", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err, logger)
	}
	return utils.SuccessResponse(ctx, res, "Maintenance completed", http.StatusOK)
}

func (c *MaintenanceController) CancelMaintenance(ctx echo.Context) error {
	logger := middleware.LoggerFrom(ctx, c.logger)
	id, err := utils.ParseUUIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}

	var payload dto.CancelMaintenanceDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, badRequest(err), logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}

	res, err := c.maintenanceService.CancelMaintenance(ctx.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}
	return utils.SuccessResponse(ctx, res, "Maintenance cancelled", http.StatusOK)
}

func (c *MaintenanceController) UpdateMaintenance(ctx echo.Context) error {
	logger := middleware.LoggerFrom(ctx, c.logger)
	id, err := utils.ParseUUIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}

	var payload dto.UpdateMaintenanceDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, badRequest(err), logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}

	res, err := c.maintenanceService.UpdateMaintenance(ctx.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}
	return utils.SuccessResponse(ctx, res, "Maintenance request updated", http.StatusOK)
}

func (c *MaintenanceController) History(ctx echo.Context) error {
	logger := middleware.LoggerFrom(ctx, c.logger)
	id, err := utils.ParseUUIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}

	events, err := c.maintenanceService.History(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}
	return api.SuccessList(ctx, "Maintenance history fetched", events, uint64(len(events)), 1, 0)
}
