package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"equipment-system/internal/dto"
	"equipment-system/internal/entities"
	"equipment-system/internal/repositories"
	apperrors "equipment-system/pkg/errors"
	"equipment-system/pkg/types"
	"equipment-system/pkg/utils"
)

type LiquidationServiceInterface interface {
	CreateLiquidation(ctx context.Context, payload dto.CreateLiquidationDTO) (*entities.LiquidationRequest, error)
	ApproveLiquidation(ctx context.Context, id uuid.UUID, payload dto.ApproveLiquidationDTO, idempotencyKey string) (*entities.LiquidationRequest, error)
	RejectLiquidation(ctx context.Context, id uuid.UUID, payload dto.RejectLiquidationDTO) (*entities.LiquidationRequest, error)
	UpdateLiquidation(ctx context.Context, id uuid.UUID, payload dto.UpdateLiquidationDTO) (*entities.LiquidationRequest, error)
	FindLiquidation(ctx context.Context, id uuid.UUID) (*entities.LiquidationRequest, error)
	GetLiquidationRequests(ctx context.Context, filter types.Filter) ([]entities.LiquidationRequest, uint64, error)
	GetPending(ctx context.Context) ([]entities.LiquidationRequest, error)
	History(ctx context.Context, id uuid.UUID) ([]entities.HistoryEvent, error)
}

type LiquidationService struct {
	*BaseService
	liquidationRepository repositories.LiquidationRepositoryInterface
	equipmentRepository   repositories.EquipmentRepositoryInterface
	assignmentRepository  repositories.AssignmentRepositoryInterface
	maintenanceRepository repositories.MaintenanceRepositoryInterface
	ledger                *StockLedger
	txManager             repositories.TxManagerInterface
}

func NewLiquidationService(
	base *BaseService,
	liquidationRepository repositories.LiquidationRepositoryInterface,
	equipmentRepository repositories.EquipmentRepositoryInterface,
	assignmentRepository repositories.AssignmentRepositoryInterface,
	maintenanceRepository repositories.MaintenanceRepositoryInterface,
	ledger *StockLedger,
	txManager repositories.TxManagerInterface,
) LiquidationServiceInterface {
	return &LiquidationService{
		BaseService:           base,
		liquidationRepository: liquidationRepository,
		equipmentRepository:   equipmentRepository,
		assignmentRepository:  assignmentRepository,
		maintenanceRepository: maintenanceRepository,
		ledger:                ledger,
		txManager:             txManager,
	}
}

func decided(request *entities.LiquidationRequest) error {
	switch request.Status {
	case entities.LiquidationStatusApproved:
		return apperrors.NewInvalidOperationError("Liquidation request is already approved")
	case entities.LiquidationStatusRejected:
		return apperrors.NewInvalidOperationError("Liquidation request has been rejected")
	}
	return nil
}

func (s *LiquidationService) CreateLiquidation(ctx context.Context, payload dto.CreateLiquidationDTO) (*entities.LiquidationRequest, error) {
	actor := utils.Actor(ctx)
	var request *entities.LiquidationRequest

	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		equipment, err := s.equipmentRepository.FindByIDForUpdate(ctx, tx, payload.EquipmentID)
		if err != nil {
			return err
		}
		now := s.now()
		request = &entities.LiquidationRequest{
			BaseEntity:       types.BaseEntity{ID: uuid.New(), CreatedAt: now},
			Versioned:        types.Versioned{Version: 1},
			EquipmentID:      equipment.ID,
			LiquidationValue: payload.LiquidationValue,
			Status:           entities.LiquidationStatusPending,
			RequestDate:      now,
			Note:             utils.NonEmptyPtr(strings.TrimSpace(payload.Note.String)),
		}
		if err := s.liquidationRepository.Create(ctx, tx, request); err != nil {
			return err
		}
		return s.appendHistory(ctx, tx, s.historyEvent(entities.AggregateLiquidation, request.ID, entities.HistoryCreated, actor,
			fmt.Sprintf("Liquidation of %s (%s) requested", equipment.Name, equipment.Code)))
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("liquidation requested", zap.String("id", request.ID.String()), zap.String("equipment_id", request.EquipmentID.String()))
	return request, nil
}

// ApproveLiquidation retires the equipment. It is refused while the equipment is still
// assigned or under maintenance.
func (s *LiquidationService) ApproveLiquidation(ctx context.Context, id uuid.UUID, payload dto.ApproveLiquidationDTO, idempotencyKey string) (*entities.LiquidationRequest, error) {
	return idempotent(ctx, s.BaseService, "liquidation.approve", id, idempotencyKey, payload, func() (*entities.LiquidationRequest, error) {
		approver := utils.Actor(ctx, payload.ApprovedBy)
		var request *entities.LiquidationRequest
		var stocked *entities.WarehouseItem
		var o outcome

		err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
			var err error
			request, err = s.liquidationRepository.FindByIDForUpdate(ctx, tx, id)
			if err != nil {
				return err
			}
			if err := checkVersion("LiquidationRequest", id, request.Version, payload.ExpectedVersion.Ptr()); err != nil {
				return err
			}
			if err := decided(request); err != nil {
				return err
			}

			equipment, err := s.equipmentRepository.FindByIDForUpdate(ctx, tx, request.EquipmentID)
			if err != nil {
				return err
			}
			assigned, err := s.assignmentRepository.HasActiveForEquipment(ctx, tx, equipment.ID)
			if err != nil {
				return err
			}
			if assigned {
				return apperrors.NewInvalidOperationError("Cannot liquidate equipment that is currently assigned")
			}
			inMaintenance, err := s.maintenanceRepository.HasOpenForEquipment(ctx, tx, equipment.ID)
			if err != nil {
				return err
			}
			if inMaintenance {
				return apperrors.NewInvalidOperationError("Cannot liquidate equipment that is in maintenance")
			}

			now := s.now()
			request.Status = entities.LiquidationStatusApproved
			request.DecidedBy = &approver
			request.DecisionDate = &now
			request.LiquidationValue = payload.LiquidationValue
			request.UpdatedAt = &now
			if err := s.liquidationRepository.Update(ctx, tx, request); err != nil {
				return err
			}
			o.record(s.historyEvent(entities.AggregateLiquidation, id, entities.HistoryApproved, approver,
				strings.TrimSpace(payload.ApprovalNotes.String)))

			if err := s.moveEquipment(ctx, tx, s.equipmentRepository, &o, equipment, entities.EquipmentStatusLiquidated, "liquidation approved", approver); err != nil {
				return err
			}
			stocked, err = s.ledger.exportUnit(ctx, tx, equipment.Type,
				fmt.Sprintf("Exported for liquidation approval - Equipment: %s (Code: %s)", equipment.Name, equipment.Code), approver)
			if err != nil {
				return err
			}
			return s.flushHistory(ctx, tx, &o)
		})
		if err != nil {
			return nil, err
		}

		o.raise(lowStockEvents(stocked)...)
		s.settle(ctx, &o)
		s.logger.Info("liquidation approved",
			zap.String("id", id.String()),
			zap.String("approved_by", approver),
			zap.Float64("value", request.LiquidationValue),
		)
		return request, nil
	})
}

func (s *LiquidationService) RejectLiquidation(ctx context.Context, id uuid.UUID, payload dto.RejectLiquidationDTO) (*entities.LiquidationRequest, error) {
	rejecter := utils.Actor(ctx, payload.RejectedBy)
	var request *entities.LiquidationRequest

	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		request, err = s.liquidationRepository.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := checkVersion("LiquidationRequest", id, request.Version, payload.ExpectedVersion.Ptr()); err != nil {
			return err
		}
		if err := decided(request); err != nil {
			return err
		}
		now := s.now()
		request.Status = entities.LiquidationStatusRejected
		request.DecidedBy = &rejecter
		request.DecisionDate = &now
		request.UpdatedAt = &now
		if err := s.liquidationRepository.Update(ctx, tx, request); err != nil {
			return err
		}
		return s.appendHistory(ctx, tx, s.historyEvent(entities.AggregateLiquidation, id, entities.HistoryRejected, rejecter,
			strings.TrimSpace(payload.RejectionReason)))
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("liquidation rejected", zap.String("id", id.String()), zap.String("rejected_by", rejecter))
	return request, nil
}

func (s *LiquidationService) UpdateLiquidation(ctx context.Context, id uuid.UUID, payload dto.UpdateLiquidationDTO) (*entities.LiquidationRequest, error) {
	actor := utils.Actor(ctx)
	var request *entities.LiquidationRequest

	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		request, err = s.liquidationRepository.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := checkVersion("LiquidationRequest", id, request.Version, payload.ExpectedVersion.Ptr()); err != nil {
			return err
		}
		if request.Status != entities.LiquidationStatusPending {
			return apperrors.NewInvalidOperationError("Cannot update liquidation request that has been approved or rejected")
		}
		if payload.LiquidationValue.Valid {
			request.LiquidationValue = payload.LiquidationValue.Float64
		}
		if payload.Note.Valid {
			request.Note = utils.NonEmptyPtr(strings.TrimSpace(payload.Note.String))
		}
		now := s.now()
		request.UpdatedAt = &now
		if err := s.liquidationRepository.Update(ctx, tx, request); err != nil {
			return err
		}
		return s.appendHistory(ctx, tx, s.historyEvent(entities.AggregateLiquidation, id, entities.HistoryUpdated, actor, ""))
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

func (s *LiquidationService) FindLiquidation(ctx context.Context, id uuid.UUID) (*entities.LiquidationRequest, error) {
	return s.liquidationRepository.FindByID(ctx, id)
}

func (s *LiquidationService) GetLiquidationRequests(ctx context.Context, filter types.Filter) ([]entities.LiquidationRequest, uint64, error) {
	return s.liquidationRepository.GetLiquidationRequests(ctx, filter)
}

func (s *LiquidationService) GetPending(ctx context.Context) ([]entities.LiquidationRequest, error) {
	return s.liquidationRepository.GetPending(ctx)
}

func (s *LiquidationService) History(ctx context.Context, id uuid.UUID) ([]entities.HistoryEvent, error) {
	if _, err := s.liquidationRepository.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.GetHistory(ctx, entities.AggregateLiquidation, id)
}
