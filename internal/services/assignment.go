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

type AssignmentServiceInterface interface {
	CreateAssignment(ctx context.Context, payload dto.CreateAssignmentDTO, idempotencyKey string) (*entities.Assignment, error)
	ReturnAssignment(ctx context.Context, id uuid.UUID, payload dto.ReturnAssignmentDTO, idempotencyKey string) (*entities.Assignment, error)
	UpdateAssignment(ctx context.Context, id uuid.UUID, payload dto.UpdateAssignmentDTO) (*entities.Assignment, error)
	DeleteAssignment(ctx context.Context, id uuid.UUID, expectedVersion *int) error
	MarkLost(ctx context.Context, id uuid.UUID, payload dto.MarkAssignmentLostDTO) (*entities.Assignment, error)
	FindAssignment(ctx context.Context, id uuid.UUID) (*entities.Assignment, error)
	GetAssignments(ctx context.Context, filter types.Filter) ([]entities.Assignment, uint64, error)
	GetByUser(ctx context.Context, userID string, activeOnly bool) ([]entities.Assignment, error)
	History(ctx context.Context, id uuid.UUID) ([]entities.HistoryEvent, error)
}

type AssignmentService struct {
	*BaseService
	assignmentRepository repositories.AssignmentRepositoryInterface
	equipmentRepository  repositories.EquipmentRepositoryInterface
	ledger               *StockLedger
	txManager            repositories.TxManagerInterface
}

func NewAssignmentService(
	base *BaseService,
	assignmentRepository repositories.AssignmentRepositoryInterface,
	equipmentRepository repositories.EquipmentRepositoryInterface,
	ledger *StockLedger,
	txManager repositories.TxManagerInterface,
) AssignmentServiceInterface {
	return &AssignmentService{
		BaseService:          base,
		assignmentRepository: assignmentRepository,
		equipmentRepository:  equipmentRepository,
		ledger:               ledger,
		txManager:            txManager,
	}
}

// assignee enforces that equipment goes either to a user or to a department.
func assignee(userID, department string) (*string, *string, error) {
	userID, department = strings.TrimSpace(userID), strings.TrimSpace(department)
	switch {
	case userID == "" && department == "":
		return nil, nil, apperrors.NewValidationError("Assignee", "Either a user or a department must be specified")
	case userID != "" && department != "":
		return nil, nil, apperrors.NewValidationError("Assignee", "Equipment can be assigned to a user or to a department, not both")
	}
	return utils.NonEmptyPtr(userID), utils.NonEmptyPtr(department), nil
}

func (s *AssignmentService) CreateAssignment(ctx context.Context, payload dto.CreateAssignmentDTO, idempotencyKey string) (*entities.Assignment, error) {
	userID, department, err := assignee(payload.AssignedToUserID.String, payload.AssignedToDepartment.String)
	if err != nil {
		return nil, err
	}

	return idempotent(ctx, s.BaseService, "assignment.create", payload.EquipmentID, idempotencyKey, payload, func() (*entities.Assignment, error) {
		actor := utils.Actor(ctx, payload.AssignedBy.String)
		var assignment *entities.Assignment
		var o outcome
		var stocked *entities.WarehouseItem

		err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
			equipment, err := s.equipmentRepository.FindByIDForUpdate(ctx, tx, payload.EquipmentID)
			if err != nil {
				return err
			}
			if err := checkVersion("Equipment", equipment.ID, equipment.Version, payload.ExpectedVersion.Ptr()); err != nil {
				return err
			}

			now := s.now()
			assignedDate := now
			if payload.AssignedDate.Valid {
				assignedDate = payload.AssignedDate.Time.UTC()
			}
			assignment = &entities.Assignment{
				BaseEntity:           types.BaseEntity{ID: uuid.New(), CreatedAt: now},
				Versioned:            types.Versioned{Version: 1},
				EquipmentID:          equipment.ID,
				AssignedToUserID:     userID,
				AssignedToDepartment: department,
				AssignedDate:         assignedDate,
				Status:               entities.AssignmentStatusAssigned,
				Notes:                utils.NonEmptyPtr(strings.TrimSpace(payload.Notes.String)),
				AssignedBy:           utils.NonEmptyPtr(actor),
			}

			stocked, err = s.ledger.exportUnit(ctx, tx, equipment.Type,
				fmt.Sprintf("Auto-export for assignment to %s", assignment.Assignee()), actor)
			if err != nil {
				return err
			}
			if err := s.moveEquipment(ctx, tx, s.equipmentRepository, &o, equipment, entities.EquipmentStatusInUse, "assigned", actor); err != nil {
				return err
			}
			if err := s.assignmentRepository.Create(ctx, tx, assignment); err != nil {
				return err
			}
			o.record(s.historyEvent(entities.AggregateAssignment, assignment.ID, entities.HistoryCreated, actor,
				fmt.Sprintf("Assigned to %s", assignment.Assignee())))
			return s.flushHistory(ctx, tx, &o)
		})
		if err != nil {
			return nil, err
		}

		o.raise(lowStockEvents(stocked)...)
		s.settle(ctx, &o)
		s.logger.Info("equipment assigned",
			zap.String("assignment_id", assignment.ID.String()),
			zap.String("equipment_id", assignment.EquipmentID.String()),
			zap.String("assignee", assignment.Assignee()),
			zap.Bool("stock_exported", stocked != nil),
		)
		return assignment, nil
	})
}

func (s *AssignmentService) ReturnAssignment(ctx context.Context, id uuid.UUID, payload dto.ReturnAssignmentDTO, idempotencyKey string) (*entities.Assignment, error) {
	return idempotent(ctx, s.BaseService, "assignment.return", id, idempotencyKey, payload, func() (*entities.Assignment, error) {
		actor := utils.Actor(ctx, payload.ReturnedBy.String)
		var assignment *entities.Assignment
		var o outcome

		err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
			var err error
			assignment, err = s.assignmentRepository.FindByIDForUpdate(ctx, tx, id)
			if err != nil {
				return err
			}
			if err := checkVersion("Assignment", id, assignment.Version, payload.ExpectedVersion.Ptr()); err != nil {
				return err
			}
			switch assignment.Status {
			case entities.AssignmentStatusReturned:
				return apperrors.NewValidationError("Status", "Assignment has already been returned")
			case entities.AssignmentStatusLost:
				return apperrors.NewValidationError("Status", "Cannot return a lost assignment")
			}

			equipment, err := s.equipmentRepository.FindByIDForUpdate(ctx, tx, assignment.EquipmentID)
			if err != nil {
				return err
			}

			now := s.now()
			assignment.Status = entities.AssignmentStatusReturned
			assignment.ReturnDate = &now
			assignment.UpdatedAt = &now
			if err := s.assignmentRepository.Update(ctx, tx, assignment); err != nil {
				return err
			}
			o.record(s.historyEvent(entities.AggregateAssignment, id, entities.HistoryReturned, actor, strings.TrimSpace(payload.ReturnNotes.String)))

			next := entities.EquipmentStatusNew
			if payload.NeedsMaintenance {
				next = entities.EquipmentStatusRepairing
			}
			if err := s.moveEquipment(ctx, tx, s.equipmentRepository, &o, equipment, next, "returned", actor); err != nil {
				return err
			}

			restocked, err := s.ledger.importUnit(ctx, tx, equipment.Type,
				fmt.Sprintf("Return from assignment %s (%s)", id, assignment.Assignee()),
				fmt.Sprintf("Return from assignment %s - Auto-created warehouse item", id),
				actor,
			)
			if err != nil {
				return err
			}
			o.raise(lowStockEvents(restocked)...)
			return s.flushHistory(ctx, tx, &o)
		})
		if err != nil {
			return nil, err
		}

		s.settle(ctx, &o)
		s.logger.Info("equipment returned",
			zap.String("assignment_id", id.String()),
			zap.Bool("needs_maintenance", payload.NeedsMaintenance),
		)
		return assignment, nil
	})
}

func (s *AssignmentService) UpdateAssignment(ctx context.Context, id uuid.UUID, payload dto.UpdateAssignmentDTO) (*entities.Assignment, error) {
	actor := utils.Actor(ctx)
	var assignment *entities.Assignment

	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		assignment, err = s.assignmentRepository.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := checkVersion("Assignment", id, assignment.Version, payload.ExpectedVersion.Ptr()); err != nil {
			return err
		}
		if assignment.Status != entities.AssignmentStatusAssigned {
			return apperrors.NewValidationError("Status", "Can only update assignments with 'Assigned' status")
		}

		if payload.AssignedDate.Valid {
			assignment.AssignedDate = payload.AssignedDate.Time.UTC()
		}
		if notes := strings.TrimSpace(payload.Notes.String); notes != "" {
			assignment.Notes = &notes
		}
		userID := strings.TrimSpace(payload.AssignedToUserID.String)
		department := strings.TrimSpace(payload.AssignedToDepartment.String)
		if userID != "" || department != "" {
			u, d, err := assignee(userID, department)
			if err != nil {
				return err
			}
			assignment.AssignedToUserID, assignment.AssignedToDepartment = u, d
		}

		now := s.now()
		assignment.UpdatedAt = &now
		if err := s.assignmentRepository.Update(ctx, tx, assignment); err != nil {
			return err
		}
		return s.appendHistory(ctx, tx, s.historyEvent(entities.AggregateAssignment, id, entities.HistoryUpdated, actor, ""))
	})
	if err != nil {
		return nil, err
	}
	return assignment, nil
}

func (s *AssignmentService) DeleteAssignment(ctx context.Context, id uuid.UUID, expectedVersion *int) error {
	actor := utils.Actor(ctx)
	return s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		assignment, err := s.assignmentRepository.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := checkVersion("Assignment", id, assignment.Version, expectedVersion); err != nil {
			return err
		}
		if assignment.Status == entities.AssignmentStatusAssigned {
			return apperrors.NewValidationError("Status", "Cannot delete active assignments. Please return the assignment first.")
		}
		now := s.now()
		assignment.IsDeleted = true
		assignment.UpdatedAt = &now
		if err := s.assignmentRepository.Update(ctx, tx, assignment); err != nil {
			return err
		}
		return s.appendHistory(ctx, tx, s.historyEvent(entities.AggregateAssignment, id, entities.HistoryDeleted, actor, ""))
	})
}

// MarkLost closes an active assignment whose equipment is gone. Nothing comes back to stock.
func (s *AssignmentService) MarkLost(ctx context.Context, id uuid.UUID, payload dto.MarkAssignmentLostDTO) (*entities.Assignment, error) {
	actor := utils.Actor(ctx, payload.ReportedBy.String)
	var assignment *entities.Assignment
	var o outcome

	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		assignment, err = s.assignmentRepository.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := checkVersion("Assignment", id, assignment.Version, payload.ExpectedVersion.Ptr()); err != nil {
			return err
		}
		if assignment.Status != entities.AssignmentStatusAssigned {
			return apperrors.NewValidationError("Status", fmt.Sprintf("Only assigned equipment can be reported lost. Current status: %s", assignment.Status))
		}
		equipment, err := s.equipmentRepository.FindByIDForUpdate(ctx, tx, assignment.EquipmentID)
		if err != nil {
			return err
		}

		now := s.now()
		assignment.Status = entities.AssignmentStatusLost
		assignment.UpdatedAt = &now
		if err := s.assignmentRepository.Update(ctx, tx, assignment); err != nil {
			return err
		}
		o.record(s.historyEvent(entities.AggregateAssignment, id, entities.HistoryMarkedLost, actor, strings.TrimSpace(payload.Notes.String)))
		if err := s.moveEquipment(ctx, tx, s.equipmentRepository, &o, equipment, entities.EquipmentStatusLost, "reported lost", actor); err != nil {
			return err
		}
		return s.flushHistory(ctx, tx, &o)
	})
	if err != nil {
		return nil, err
	}

	s.settle(ctx, &o)
	s.logger.Warn("equipment reported lost", zap.String("assignment_id", id.String()), zap.String("actor", actor))
	return assignment, nil
}

func (s *AssignmentService) FindAssignment(ctx context.Context, id uuid.UUID) (*entities.Assignment, error) {
	return s.assignmentRepository.FindByID(ctx, id)
}

func (s *AssignmentService) GetAssignments(ctx context.Context, filter types.Filter) ([]entities.Assignment, uint64, error) {
	return s.assignmentRepository.GetAssignments(ctx, filter)
}

func (s *AssignmentService) GetByUser(ctx context.Context, userID string, activeOnly bool) ([]entities.Assignment, error) {
	return s.assignmentRepository.GetByUser(ctx, userID, activeOnly)
}

func (s *AssignmentService) History(ctx context.Context, id uuid.UUID) ([]entities.HistoryEvent, error) {
	if _, err := s.assignmentRepository.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.GetHistory(ctx, entities.AggregateAssignment, id)
}
