package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"equipment-system/internal/dto"
	"equipment-system/internal/services"
	"equipment-system/pkg/api"
	"equipment-system/pkg/clock"
	apperrors "equipment-system/pkg/errors"
	"equipment-system/pkg/middleware"
	"equipment-system/pkg/utils"
)

type EquipmentController struct {
	equipmentService services.EquipmentServiceInterface
	clock            clock.Clock
	logger           *zap.Logger
}

func NewEquipmentController(service services.EquipmentServiceInterface, clk clock.Clock, logger *zap.Logger) *EquipmentController {
	return &EquipmentController{equipmentService: service, clock: clk, logger: logger}
}

// equipmentQuery reads page, limit, search, filter[type] and filter[status].
func equipmentQuery(ctx echo.Context) dto.EquipmentListQuery {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())
	query := dto.EquipmentListQuery{
		Page:     filter.Page,
		PageSize: filter.Limit,
		Type:     filter.Value("type"),
		Keyword:  filter.Search,
	}
	if !filter.WithPagination {
		query.PageSize = 0
	}
	if status, err := strconv.Atoi(filter.Value("status")); err == nil {
		query.Status = status
	}
	return query
}

func (c *EquipmentController) GetEquipments(ctx echo.Context) error {
	query := equipmentQuery(ctx)
	list, total, err := c.equipmentService.GetEquipments(ctx.Request().Context(), query)
	if err != nil {
		return utils.ErrorResponse(ctx, err, middleware.LoggerFrom(ctx, c.logger))
	}
	return api.SuccessList(ctx, "Equipment list fetched", list, total, query.Page, query.PageSize)
}

func (c *EquipmentController) FindEquipment(ctx echo.Context) error {
	logger := middleware.LoggerFrom(ctx, c.logger)
	id, err := utils.ParseUUIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}

	res, err := c.equipmentService.FindEquipment(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}
	return utils.SuccessResponse(ctx, res, "Equipment found", http.StatusOK)
}

func (c *EquipmentController) CreateEquipment(ctx echo.Context) error {
	logger := middleware.LoggerFrom(ctx, c.logger)
	var payload dto.CreateEquipmentDTO
	if err := ctx.Bind(&payload); err != nil {
		logger.Warn("CreateEquipment: неверный запрос", zap.Error(err))
		return utils.ErrorResponse(ctx, badRequest(err), logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}

	res, err := c.equipmentService.CreateEquipment(ctx.Request().Context(), payload)
	if err != nil {
		logger.Warn("Ошибка при создании оборудования", zap.String("code", payload.Code), zap.Error(err))
		return utils.ErrorResponse(ctx, err, logger)
	}
	return utils.SuccessResponse(ctx, res, "Equipment created", http.StatusCreated)
}

func (c *EquipmentController) UpdateEquipment(ctx echo.Context) error {
	logger := middleware.LoggerFrom(ctx, c.logger)
	id, err := utils.ParseUUIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}

	var payload dto.UpdateEquipmentDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, badRequest(err), logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}

	res, err := c.equipmentService.UpdateEquipment(ctx.Request().Context(), id, payload)
	if err != nil {
		logger.Warn("Ошибка при обновлении оборудования", zap.Stringer("id", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err, logger)
	}
	return utils.SuccessResponse(ctx, res, "Equipment updated", http.StatusOK)
}

func (c *EquipmentController) DeleteEquipment(ctx echo.Context) error {
	logger := middleware.LoggerFrom(ctx, c.logger)
	id, err := utils.ParseUUIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}
	expectedVersion, err := expectedVersionParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}
	if err := c.equipmentService.DeleteEquipment(ctx.Request().Context(), id, expectedVersion); err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}
	return utils.SuccessResponse(ctx, struct{}{}, "Equipment deleted", http.StatusOK)
}

func (c *EquipmentController) History(ctx echo.Context) error {
	logger := middleware.LoggerFrom(ctx, c.logger)
	id, err := utils.ParseUUIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}

	events, err := c.equipmentService.History(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}
	return api.SuccessList(ctx, "Equipment history fetched", events, uint64(len(events)), 1, 0)
}

func (c *EquipmentController) ExportRegister(ctx echo.Context) error {
	logger := middleware.LoggerFrom(ctx, c.logger)
	content, err := c.equipmentService.ExportRegister(ctx.Request().Context(), equipmentQuery(ctx))
	if err != nil {
		logger.Error("Ошибка выгрузки реестра", zap.Error(err))
		return utils.ErrorResponse(ctx, err, logger)
	}
	return respondWithXLSX(ctx, "equipment_register", content, c.clock.Now())
}

func (c *EquipmentController) ImportRegister(ctx echo.Context) error {
	logger := middleware.LoggerFrom(ctx, c.logger)
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "File is required", err, nil), logger)
	}
	src, err := fileHeader.Open()
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusInternalServerError, "Cannot read uploaded file", err, nil), logger)
	}
	defer src.Close()

	res, err := c.equipmentService.ImportRegister(ctx.Request().Context(), src)
	if err != nil {
		logger.Error("Ошибка импорта реестра", zap.Error(err), zap.String("file", fileHeader.Filename))
		return utils.ErrorResponse(ctx, err, logger)
	}
	return utils.SuccessResponse(ctx, res, "Equipment register imported", http.StatusOK)
}
