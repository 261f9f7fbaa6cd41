package controllers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"equipment-system/internal/dto"
	"equipment-system/internal/services"
	"equipment-system/pkg/api"
	apperrors "equipment-system/pkg/errors"
	"equipment-system/pkg/middleware"
	"equipment-system/pkg/utils"
)

type AuditController struct {
	auditService services.AuditServiceInterface
	logger       *zap.Logger
}

func NewAuditController(service services.AuditServiceInterface, logger *zap.Logger) *AuditController {
	return &AuditController{auditService: service, logger: logger}
}

func (c *AuditController) GetAuditRecords(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())
	list, total, err := c.auditService.GetAuditRecords(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, middleware.LoggerFrom(ctx, c.logger))
	}
	return api.SuccessList(ctx, "Audit records fetched", list, total, filter.Page, pageLimit(filter.WithPagination, filter.Limit))
}

func (c *AuditController) GetByEquipment(ctx echo.Context) error {
	logger := middleware.LoggerFrom(ctx, c.logger)
	equipmentID, err := utils.ParseUUIDParam(ctx, "equipmentId")
	if err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}

	list, err := c.auditService.GetByEquipment(ctx.Request().Context(), equipmentID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}
	return api.SuccessList(ctx, "Audit records fetched", list, uint64(len(list)), 1, 0)
}

// GetForSync expects ?since= as RFC3339.
func (c *AuditController) GetForSync(ctx echo.Context) error {
	logger := middleware.LoggerFrom(ctx, c.logger)
	raw := ctx.QueryParam("since")
	since, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Invalid since", err, map[string]interface{}{"since": raw}),
			logger,
		)
	}

	list, err := c.auditService.GetForSync(ctx.Request().Context(), since)
	if err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}
	return api.SuccessList(ctx, "Audit records fetched", list, uint64(len(list)), 1, 0)
}

func (c *AuditController) FindAuditRecord(ctx echo.Context) error {
	logger := middleware.LoggerFrom(ctx, c.logger)
	id, err := utils.ParseUUIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}

	res, err := c.auditService.FindAuditRecord(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}
	return utils.SuccessResponse(ctx, res, "Audit record found", http.StatusOK)
}

func (c *AuditController) CreateAuditRecord(ctx echo.Context) error {
	logger := middleware.LoggerFrom(ctx, c.logger)
	var payload dto.CreateAuditRecordDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, badRequest(err), logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}

	res, err := c.auditService.CreateAuditRecord(ctx.Request().Context(), payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}
	return utils.SuccessResponse(ctx, res, "Audit record created", http.StatusCreated)
}

func (c *AuditController) BatchCreateAuditRecords(ctx echo.Context) error {
	logger := middleware.LoggerFrom(ctx, c.logger)
	var payload dto.BatchCreateAuditRecordsDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, badRequest(err), logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}

	res, err := c.auditService.BatchCreateAuditRecords(ctx.Request().Context(), payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}
	if res.FailureCount > 0 {
		logger.Info("audit batch partially failed",
			zap.Int("success", res.SuccessCount),
			zap.Int("failure", res.FailureCount),
		)
	}
	return utils.SuccessResponse(ctx, res, "Audit batch processed", http.StatusOK)
}

func (c *AuditController) UpdateAuditRecord(ctx echo.Context) error {
	logger := middleware.LoggerFrom(ctx, c.logger)
	id, err := utils.ParseUUIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}

	var payload dto.UpdateAuditRecordDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, badRequest(err), logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}

	res, err := c.auditService.UpdateAuditRecord(ctx.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}
	return utils.SuccessResponse(ctx, res, "Audit record updated", http.StatusOK)
}
