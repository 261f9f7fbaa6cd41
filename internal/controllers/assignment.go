package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"equipment-system/internal/dto"
	"equipment-system/internal/services"
	"equipment-system/pkg/api"
	"equipment-system/pkg/middleware"
	"equipment-system/pkg/utils"
)

type AssignmentController struct {
	assignmentService services.AssignmentServiceInterface
	logger            *zap.Logger
}

func NewAssignmentController(service services.AssignmentServiceInterface, logger *zap.Logger) *AssignmentController {
	return &AssignmentController{assignmentService: service, logger: logger}
}

func (c *AssignmentController) GetAssignments(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())
	list, total, err := c.assignmentService.GetAssignments(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, middleware.LoggerFrom(ctx, c.logger))
	}
	return api.SuccessList(ctx, "Assignments fetched", list, total, filter.Page, pageLimit(filter.WithPagination, filter.Limit))
}

func (c *AssignmentController) GetByUser(ctx echo.Context) error {
	activeOnly, _ := strconv.ParseBool(ctx.QueryParam("activeOnly"))
	list, err := c.assignmentService.GetByUser(ctx.Request().Context(), ctx.Param("userId"), activeOnly)
	if err != nil {
		return utils.ErrorResponse(ctx, err, middleware.LoggerFrom(ctx, c.logger))
	}
	return api.SuccessList(ctx, "Assignments fetched", list, uint64(len(list)), 1, 0)
}

func (c *AssignmentController) FindAssignment(ctx echo.Context) error {
	logger := middleware.LoggerFrom(ctx, c.logger)
	id, err := utils.ParseUUIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}

	res, err := c.assignmentService.FindAssignment(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}
	return utils.SuccessResponse(ctx, res, "Assignment found", http.StatusOK)
}

func (c *AssignmentController) CreateAssignment(ctx echo.Context) error {
	logger := middleware.LoggerFrom(ctx, c.logger)
	var payload dto.CreateAssignmentDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, badRequest(err), logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}

	res, err := c.assignmentService.CreateAssignment(ctx.Request().Context(), payload, utils.IdempotencyKey(ctx))
	if err != nil {
		logger.Warn("Ошибка при выдаче оборудования", zap.Stringer("equipment_id", payload.EquipmentID), zap.Error(err))
		return utils.ErrorResponse(ctx, err, logger)
	}
	return utils.SuccessResponse(ctx, res, "Equipment assigned", http.StatusCreated)
}

func (c *AssignmentController) ReturnAssignment(ctx echo.Context) error {
	logger := middleware.LoggerFrom(ctx, c.logger)
	id, err := utils.ParseUUIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}

	var payload dto.ReturnAssignmentDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, badRequest(err), logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}

	res, err := c.assignmentService.ReturnAssignment(ctx.Request().Context(), id, payload, utils.IdempotencyKey(ctx))
	if err != nil {
		logger.Warn("Ошибка при возврате оборудования", zap.Stringer("id", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err, logger)
	}
	return utils.SuccessResponse(ctx, res, "Equipment returned", http.StatusOK)
}

func (c *AssignmentController) MarkLost(ctx echo.Context) error {
	logger := middleware.LoggerFrom(ctx, c.logger)
	id, err := utils.ParseUUIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}

	var payload dto.MarkAssignmentLostDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, badRequest(err), logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}

	res, err := c.assignmentService.MarkLost(ctx.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}
	return utils.SuccessResponse(ctx, res, "Assignment marked as lost", http.StatusOK)
}

func (c *AssignmentController) UpdateAssignment(ctx echo.Context) error {
	logger := middleware.LoggerFrom(ctx, c.logger)
	id, err := utils.ParseUUIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}

	var payload dto.UpdateAssignmentDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, badRequest(err), logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}

	res, err := c.assignmentService.UpdateAssignment(ctx.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}
	return utils.SuccessResponse(ctx, res, "Assignment updated", http.StatusOK)
}

func (c *AssignmentController) DeleteAssignment(ctx echo.Context) error {
	logger := middleware.LoggerFrom(ctx, c.logger)
	id, err := utils.ParseUUIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}
	expectedVersion, err := expectedVersionParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}
	if err := c.assignmentService.DeleteAssignment(ctx.Request().Context(), id, expectedVersion); err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}
	return utils.SuccessResponse(ctx, struct{}{}, "Assignment deleted", http.StatusOK)
}

func (c *AssignmentController) History(ctx echo.Context) error {
	logger := middleware.LoggerFrom(ctx, c.logger)
	id, err := utils.ParseUUIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}

	events, err := c.assignmentService.History(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, logger)
	}
	return api.SuccessList(ctx, "Assignment history fetched", events, uint64(len(events)), 1, 0)
}
