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

type LiquidationController struct {
	liquidationService services.LiquidationServiceInterface
	logger             *zap.Logger
}

func NewLiquidationController(service services.LiquidationServiceInterface, logger *zap.Logger) *LiquidationController {
	return &LiquidationController{liquidationService: service, logger: logger}
}

func (c *LiquidationController) GetLiquidationRequests(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())
	list, total, err := c.liquidationService.GetLiquidationRequests(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, middleware.LoggerFrom(ctx, c.logger))
	}
	return api.SuccessList(ctx, "Liquidation requests fetched", list, total, filter.Page, pageLimit(filter.WithPagination, filter.Limit))
}

func (c *LiquidationController) GetPending(ctx echo.Context) error {
	list, err := c.liquidationService.GetPending(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, middleware.LoggerFrom(ctx, c.logger))
	}
	return api.SuccessList(ctx, "Pending liquidation requests fetched", list, uint64(len(list)), 1, 0)
}

func (c *LiquidationController) FindLiquidation(ctx echo.Context) error {
	logger := middleware.LoggerFrom(ctx, c.logger)
	id, err := utils.ParseUUIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}

	res, err := c.liquidationService.FindLiquidation(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}
	return utils.SuccessResponse(ctx, res, "Liquidation request found", http.StatusOK)
}

func (c *LiquidationController) CreateLiquidation(ctx echo.Context) error {
	logger := middleware.LoggerFrom(ctx, c.logger)
	var payload dto.CreateLiquidationDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, badRequest(err), logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}

	res, err := c.liquidationService.CreateLiquidation(ctx.Request().Context(), payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}
	return utils.SuccessResponse(ctx, res, "Liquidation request created", http.StatusCreated)
}

func (c *LiquidationController) ApproveLiquidation(ctx echo.Context) error {
	logger := middleware.LoggerFrom(ctx, c.logger)
	id, err := utils.ParseUUIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}

	var payload dto.ApproveLiquidationDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, badRequest(err), logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}

	res, err := c.liquidationService.ApproveLiquidation(ctx.Request().Context(), id, payload, utils.IdempotencyKey(ctx))
	if err != nil {
		logger.Warn("Ошибка при утверждении списания", zap.Stringer("id", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err, logger)
	}
	return utils.SuccessResponse(ctx, res, "Liquidation approved", http.StatusOK)
}

func (c *LiquidationController) RejectLiquidation(ctx echo.Context) error {
	logger := middleware.LoggerFrom(ctx, c.logger)
	id, err := utils.ParseUUIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}

	var payload dto.RejectLiquidationDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, badRequest(err), logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}

	res, err := c.liquidationService.RejectLiquidation(ctx.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}
	return utils.SuccessResponse(ctx, res, "Liquidation rejected", http.StatusOK)
}

func (c *LiquidationController) UpdateLiquidation(ctx echo.Context) error {
	logger := middleware.LoggerFrom(ctx, c.logger)
	id, err := utils.ParseUUIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}

	var payload dto.UpdateLiquidationDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, badRequest(err), logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}

	res, err := c.liquidationService.UpdateLiquidation(ctx.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}
	return utils.SuccessResponse(ctx, res, "Liquidation request updated", http.StatusOK)
}

func (c *LiquidationController) History(ctx echo.Context) error {
	logger := middleware.LoggerFrom(ctx, c.logger)
	id, err := utils.ParseUUIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}

	events, err := c.liquidationService.History(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}
	return api.SuccessList(ctx, "Liquidation history fetched", events, uint64(len(events)), 1, 0)
}
