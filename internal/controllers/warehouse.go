package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"equipment-system/internal/dto"
	"equipment-system/internal/services"
	"equipment-system/pkg/api"
	"equipment-system/pkg/clock"
	"equipment-system/pkg/middleware"
	"equipment-system/pkg/utils"
)

type WarehouseController struct {
	warehouseService services.WarehouseServiceInterface
	clock            clock.Clock
	logger           *zap.Logger
}

func NewWarehouseController(service services.WarehouseServiceInterface, clk clock.Clock, logger *zap.Logger) *WarehouseController {
	return &WarehouseController{warehouseService: service, clock: clk, logger: logger}
}

func (c *WarehouseController) GetWarehouseItems(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())
	list, total, err := c.warehouseService.GetWarehouseItems(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, middleware.LoggerFrom(ctx, c.logger))
	}
	return api.SuccessList(ctx, "Warehouse items fetched", list, total, filter.Page, pageLimit(filter.WithPagination, filter.Limit))
}

func (c *WarehouseController) GetWarehouseItem(ctx echo.Context) error {
	logger := middleware.LoggerFrom(ctx, c.logger)
	id, err := utils.ParseUUIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}

	res, err := c.warehouseService.GetWarehouseItem(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}
	return utils.SuccessResponse(ctx, res, "Warehouse item found", http.StatusOK)
}

func (c *WarehouseController) GetLowStockItems(ctx echo.Context) error {
	list, err := c.warehouseService.GetLowStockItems(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, middleware.LoggerFrom(ctx, c.logger))
	}
	return api.SuccessList(ctx, "Low stock items fetched", list, uint64(len(list)), 1, 0)
}

func (c *WarehouseController) CreateWarehouseItem(ctx echo.Context) error {
	logger := middleware.LoggerFrom(ctx, c.logger)
	var payload dto.CreateWarehouseItemDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, badRequest(err), logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}

	res, err := c.warehouseService.CreateWarehouseItem(ctx.Request().Context(), payload)
	if err != nil {
		logger.Warn("Ошибка при создании складской позиции", zap.String("equipment_type", payload.EquipmentType), zap.Error(err))
		return utils.ErrorResponse(ctx, err, logger)
	}
	return utils.SuccessResponse(ctx, res, "Warehouse item created", http.StatusCreated)
}

func (c *WarehouseController) UpdateWarehouseItem(ctx echo.Context) error {
	logger := middleware.LoggerFrom(ctx, c.logger)
	id, err := utils.ParseUUIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}

	var payload dto.UpdateWarehouseItemDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, badRequest(err), logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}

	res, err := c.warehouseService.UpdateWarehouseItem(ctx.Request().Context(), id, payload)
	if err != nil {
		logger.Warn("Ошибка при обновлении складской позиции", zap.Stringer("id", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err, logger)
	}
	return utils.SuccessResponse(ctx, res, "Warehouse item updated", http.StatusOK)
}

func (c *WarehouseController) DeleteWarehouseItem(ctx echo.Context) error {
	logger := middleware.LoggerFrom(ctx, c.logger)
	id, err := utils.ParseUUIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}
	expectedVersion, err := expectedVersionParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}
	if err := c.warehouseService.DeleteWarehouseItem(ctx.Request().Context(), id, expectedVersion); err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}
	return utils.SuccessResponse(ctx, struct{}{}, "Warehouse item deleted", http.StatusOK)
}

func (c *WarehouseController) CreateWarehouseTransaction(ctx echo.Context) error {
	logger := middleware.LoggerFrom(ctx, c.logger)
	var payload dto.CreateWarehouseTransactionDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, badRequest(err), logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}

	res, err := c.warehouseService.CreateWarehouseTransaction(ctx.Request().Context(), payload)
	if err != nil {
		logger.Warn("Ошибка складской операции",
			zap.Stringer("item_id", payload.WarehouseItemID),
			zap.Int("type", int(payload.Type)),
			zap.Int("quantity", payload.Quantity),
			zap.Error(err),
		)
		return utils.ErrorResponse(ctx, err, logger)
	}
	return utils.SuccessResponse(ctx, res, "Stock change booked", http.StatusCreated)
}

func (c *WarehouseController) GetWarehouseTransactions(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())
	list, total, err := c.warehouseService.GetWarehouseTransactions(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, middleware.LoggerFrom(ctx, c.logger))
	}
	return api.SuccessList(ctx, "Warehouse transactions fetched", list, total, filter.Page, pageLimit(filter.WithPagination, filter.Limit))
}

func (c *WarehouseController) ExportLedger(ctx echo.Context) error {
	logger := middleware.LoggerFrom(ctx, c.logger)
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())
	content, err := c.warehouseService.ExportLedger(ctx.Request().Context(), filter)
	if err != nil {
		logger.Error("Ошибка выгрузки журнала склада", zap.Error(err))
		return utils.ErrorResponse(ctx, err, logger)
	}
	return respondWithXLSX(ctx, "warehouse_ledger", content, c.clock.Now())
}
