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

type MaintenanceServiceInterface interface {
	CreateMaintenance(ctx context.Context, payload dto.CreateMaintenanceDTO) (*entities.MaintenanceRequest, error)
	AssignTechnician(ctx context.Context, id uuid.UUID, payload dto.AssignTechnicianDTO) (*entities.MaintenanceRequest, error)
	StartMaintenance(ctx context.Context, id uuid.UUID, payload dto.StartMaintenanceDTO) (*entities.MaintenanceRequest, error)
	CompleteMaintenance(ctx context.Context, id uuid.UUID, payload dto.CompleteMaintenanceDTO, idempotencyKey string) (*entities.MaintenanceRequest, error)
	CancelMaintenance(ctx context.Context, id uuid.UUID, payload dto.CancelMaintenanceDTO) (*entities.MaintenanceRequest, error)
	UpdateMaintenance(ctx context.Context, id uuid.UUID, payload dto.UpdateMaintenanceDTO) (*entities.MaintenanceRequest, error)
	FindMaintenance(ctx context.Context, id uuid.UUID) (*entities.MaintenanceRequest, error)
	GetMaintenanceRequests(ctx context.Context, filter types.Filter) ([]entities.MaintenanceRequest, uint64, error)
	GetPending(ctx context.Context) ([]entities.MaintenanceRequest, error)
	GetByTechnician(ctx context.Context, technicianID string) ([]entities.MaintenanceRequest, error)
	History(ctx context.Context, id uuid.UUID) ([]entities.HistoryEvent, error)
}

type MaintenanceService struct {
	*BaseService
	maintenanceRepository repositories.MaintenanceRepositoryInterface
	equipmentRepository   repositories.EquipmentRepositoryInterface
	txManager             repositories.TxManagerInterface
}

func NewMaintenanceService(
	base *BaseService,
	maintenanceRepository repositories.MaintenanceRepositoryInterface,
	equipmentRepository repositories.EquipmentRepositoryInterface,
	txManager repositories.TxManagerInterface,
) MaintenanceServiceInterface {
	return &MaintenanceService{
		BaseService:           base,
		maintenanceRepository: maintenanceRepository,
		equipmentRepository:   equipmentRepository,
		txManager:             txManager,
	}
}

// mutate loads the request under lock, lets step change it and persists the result together
// with whatever step recorded.
func (s *MaintenanceService) mutate(
	ctx context.Context,
	id uuid.UUID,
	step func(tx pgx.Tx, request *entities.MaintenanceRequest, o *outcome) error,
) (*entities.MaintenanceRequest, error) {
	var request *entities.MaintenanceRequest
	var o outcome

	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		request, err = s.maintenanceRepository.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := step(tx, request, &o); err != nil {
			return err
		}
		now := s.now()
		request.UpdatedAt = &now
		if err := s.maintenanceRepository.Update(ctx, tx, request); err != nil {
			return err
		}
		return s.flushHistory(ctx, tx, &o)
	})
	if err != nil {
		return nil, err
	}
	s.settle(ctx, &o)
	return request, nil
}

func technicianMismatch(request *entities.MaintenanceRequest, technicianID, action string) error {
	if utils.SafeDeref(request.TechnicianID) != strings.TrimSpace(technicianID) {
		return apperrors.NewValidationError("TechnicianID",
			fmt.Sprintf("Only the assigned technician (%s) can %s this maintenance", utils.SafeDeref(request.TechnicianID), action))
	}
	return nil
}

func (s *MaintenanceService) CreateMaintenance(ctx context.Context, payload dto.CreateMaintenanceDTO) (*entities.MaintenanceRequest, error) {
	actor := utils.Actor(ctx, payload.RequesterID)
	var request *entities.MaintenanceRequest
	var o outcome

	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		equipment, err := s.equipmentRepository.FindByIDForUpdate(ctx, tx, payload.EquipmentID)
		if err != nil {
			return err
		}

		now := s.now()
		request = &entities.MaintenanceRequest{
			BaseEntity:  types.BaseEntity{ID: uuid.New(), CreatedAt: now},
			Versioned:   types.Versioned{Version: 1},
			EquipmentID: equipment.ID,
			RequesterID: strings.TrimSpace(payload.RequesterID),
			Description: strings.TrimSpace(payload.Description),
			RequestDate: now,
			Status:      entities.MaintenanceStatusPending,
			Notes:       utils.NonEmptyPtr(strings.TrimSpace(payload.Notes.String)),
		}
		if err := s.maintenanceRepository.Create(ctx, tx, request); err != nil {
			return err
		}
		o.record(s.historyEvent(entities.AggregateMaintenance, request.ID, entities.HistoryCreated, actor, request.Description))
		if err := s.moveEquipment(ctx, tx, s.equipmentRepository, &o, equipment, entities.EquipmentStatusRepairing, "maintenance requested", actor); err != nil {
			return err
		}
		return s.flushHistory(ctx, tx, &o)
	})
	if err != nil {
		return nil, err
	}

	s.settle(ctx, &o)
	s.logger.Info("maintenance requested", zap.String("id", request.ID.String()), zap.String("equipment_id", request.EquipmentID.String()))
	return request, nil
}

// AssignTechnician may be repeated while the request is pending; the last assignment wins.
func (s *MaintenanceService) AssignTechnician(ctx context.Context, id uuid.UUID, payload dto.AssignTechnicianDTO) (*entities.MaintenanceRequest, error) {
	actor := utils.Actor(ctx)
	return s.mutate(ctx, id, func(tx pgx.Tx, request *entities.MaintenanceRequest, o *outcome) error {
		if err := checkVersion("MaintenanceRequest", id, request.Version, payload.ExpectedVersion.Ptr()); err != nil {
			return err
		}
		if request.Status != entities.MaintenanceStatusPending {
			return apperrors.NewValidationError("Status",
				fmt.Sprintf("Can only assign technician to pending maintenance requests. Current status: %s", request.Status))
		}
		technician := strings.TrimSpace(payload.TechnicianID)
		request.TechnicianID = &technician

		text := fmt.Sprintf("Technician %s assigned", technician)
		if notes := strings.TrimSpace(payload.AssignmentNotes.String); notes != "" {
			text += ": " + notes
		}
		o.record(s.historyEvent(entities.AggregateMaintenance, id, entities.HistoryTechnicianAssigned, actor, text))
		return nil
	})
}

func (s *MaintenanceService) StartMaintenance(ctx context.Context, id uuid.UUID, payload dto.StartMaintenanceDTO) (*entities.MaintenanceRequest, error) {
	actor := utils.Actor(ctx, payload.TechnicianID)
	return s.mutate(ctx, id, func(tx pgx.Tx, request *entities.MaintenanceRequest, o *outcome) error {
		if err := checkVersion("MaintenanceRequest", id, request.Version, payload.ExpectedVersion.Ptr()); err != nil {
			return err
		}
		if request.Status != entities.MaintenanceStatusPending {
			return apperrors.NewValidationError("Status",
				fmt.Sprintf("Can only start pending maintenance requests. Current status: %s", request.Status))
		}
		if !request.HasTechnician() {
			return apperrors.NewValidationError("TechnicianID", "Maintenance request must have an assigned technician before starting")
		}
		if err := technicianMismatch(request, payload.TechnicianID, "start"); err != nil {
			return err
		}

		equipment, err := s.equipmentRepository.FindByIDForUpdate(ctx, tx, request.EquipmentID)
		if err != nil {
			return err
		}
		now := s.now()
		request.Status = entities.MaintenanceStatusInProgress
		request.StartDate = &now
		o.record(s.historyEvent(entities.AggregateMaintenance, id, entities.HistoryStarted, actor, strings.TrimSpace(payload.StartNotes.String)))
		return s.moveEquipment(ctx, tx, s.equipmentRepository, o, equipment, entities.EquipmentStatusRepairing, "maintenance started", actor)
	})
}

func (s *MaintenanceService) CompleteMaintenance(ctx context.Context, id uuid.UUID, payload dto.CompleteMaintenanceDTO, idempotencyKey string) (*entities.MaintenanceRequest, error) {
	if payload.Cost <= 0 {
		return nil, apperrors.NewValidationError("Cost", "Cost must be greater than 0")
	}
	actor := utils.Actor(ctx, payload.TechnicianID)

	return idempotent(ctx, s.BaseService, "maintenance.complete", id, idempotencyKey, payload, func() (*entities.MaintenanceRequest, error) {
		request, err := s.mutate(ctx, id, func(tx pgx.Tx, request *entities.MaintenanceRequest, o *outcome) error {
			if err := checkVersion("MaintenanceRequest", id, request.Version, payload.ExpectedVersion.Ptr()); err != nil {
				return err
			}
			if request.Status != entities.MaintenanceStatusInProgress {
				return apperrors.NewValidationError("Status",
					fmt.Sprintf("Can only complete in-progress maintenance requests. Current status: %s", request.Status))
			}
			if err := technicianMismatch(request, payload.TechnicianID, "complete"); err != nil {
				return err
			}

			equipment, err := s.equipmentRepository.FindByIDForUpdate(ctx, tx, request.EquipmentID)
			if err != nil {
				return err
			}
			now := s.now()
			cost := payload.Cost
			request.Status = entities.MaintenanceStatusCompleted
			request.EndDate = &now
			request.Cost = &cost

			text := fmt.Sprintf("Cost: %.2f", cost)
			if notes := strings.TrimSpace(payload.CompletionNotes.String); notes != "" {
				text += ". " + notes
			}
			o.record(s.historyEvent(entities.AggregateMaintenance, id, entities.HistoryCompleted, actor, text))

			next := entities.EquipmentStatusNew
			if payload.StillNeedsMaintenance {
				next = entities.EquipmentStatusRepairing
			}
			return s.moveEquipment(ctx, tx, s.equipmentRepository, o, equipment, next, "maintenance completed", actor)
		})
		if err != nil {
			return nil, err
		}
		s.logger.Info("maintenance completed", zap.String("id", id.String()), zap.Float64("cost", payload.Cost))
		return request, nil
	})
}

func (s *MaintenanceService) CancelMaintenance(ctx context.Context, id uuid.UUID, payload dto.CancelMaintenanceDTO) (*entities.MaintenanceRequest, error) {
	actor := utils.Actor(ctx, payload.CancelledBy.String)
	return s.mutate(ctx, id, func(tx pgx.Tx, request *entities.MaintenanceRequest, o *outcome) error {
		if err := checkVersion("MaintenanceRequest", id, request.Version, payload.ExpectedVersion.Ptr()); err != nil {
			return err
		}
		switch request.Status {
		case entities.MaintenanceStatusCompleted:
			return apperrors.NewValidationError("Status", "Cannot cancel completed maintenance requests")
		case entities.MaintenanceStatusCancelled:
			return apperrors.NewValidationError("Status", "Maintenance request is already cancelled")
		}

		equipment, err := s.equipmentRepository.FindByIDForUpdate(ctx, tx, request.EquipmentID)
		if err != nil {
			return err
		}
		request.Status = entities.MaintenanceStatusCancelled
		o.record(s.historyEvent(entities.AggregateMaintenance, id, entities.HistoryCancelled, actor, strings.TrimSpace(payload.CancellationReason)))
		if equipment.Status != entities.EquipmentStatusRepairing {
			return nil
		}
		return s.moveEquipment(ctx, tx, s.equipmentRepository, o, equipment, entities.EquipmentStatusNew, "maintenance cancelled", actor)
	})
}

func (s *MaintenanceService) UpdateMaintenance(ctx context.Context, id uuid.UUID, payload dto.UpdateMaintenanceDTO) (*entities.MaintenanceRequest, error) {
	actor := utils.Actor(ctx)
	return s.mutate(ctx, id, func(tx pgx.Tx, request *entities.MaintenanceRequest, o *outcome) error {
		if err := checkVersion("MaintenanceRequest", id, request.Version, payload.ExpectedVersion.Ptr()); err != nil {
			return err
		}
		if request.Status == entities.MaintenanceStatusCompleted || request.Status == entities.MaintenanceStatusCancelled {
			return apperrors.NewValidationError("Status", fmt.Sprintf("Cannot update %s maintenance requests", strings.ToLower(request.Status.String())))
		}
		if description := strings.TrimSpace(payload.Description.String); description != "" {
			request.Description = description
		}
		if payload.Notes.Valid {
			request.Notes = utils.NonEmptyPtr(strings.TrimSpace(payload.Notes.String))
		}
		o.record(s.historyEvent(entities.AggregateMaintenance, id, entities.HistoryUpdated, actor, ""))
		return nil
	})
}

func (s *MaintenanceService) FindMaintenance(ctx context.Context, id uuid.UUID) (*entities.MaintenanceRequest, error) {
	return s.maintenanceRepository.FindByID(ctx, id)
}

func (s *MaintenanceService) GetMaintenanceRequests(ctx context.Context, filter types.Filter) ([]entities.MaintenanceRequest, uint64, error) {
	return s.maintenanceRepository.GetMaintenanceRequests(ctx, filter)
}

func (s *MaintenanceService) GetPending(ctx context.Context) ([]entities.MaintenanceRequest, error) {
	return s.maintenanceRepository.GetPending(ctx)
}

func (s *MaintenanceService) GetByTechnician(ctx context.Context, technicianID string) ([]entities.MaintenanceRequest, error) {
	return s.maintenanceRepository.GetByTechnician(ctx, technicianID)
}

func (s *MaintenanceService) History(ctx context.Context, id uuid.UUID) ([]entities.HistoryEvent, error) {
	if _, err := s.maintenanceRepository.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.GetHistory(ctx, entities.AggregateMaintenance, id)
}
