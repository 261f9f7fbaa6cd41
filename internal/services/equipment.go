package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"equipment-system/internal/dto"
	"equipment-system/internal/entities"
	"equipment-system/internal/events"
	"equipment-system/internal/repositories"
	apperrors "equipment-system/pkg/errors"
	"equipment-system/pkg/qrcode"
	"equipment-system/pkg/types"
	"equipment-system/pkg/utils"
)

type EquipmentServiceInterface interface {
	CreateEquipment(ctx context.Context, payload dto.CreateEquipmentDTO) (*entities.Equipment, error)
	UpdateEquipment(ctx context.Context, id uuid.UUID, payload dto.UpdateEquipmentDTO) (*entities.Equipment, error)
	DeleteEquipment(ctx context.Context, id uuid.UUID, expectedVersion *int) error
	FindEquipment(ctx context.Context, id uuid.UUID) (*entities.Equipment, error)
	GetEquipments(ctx context.Context, query dto.EquipmentListQuery) ([]entities.Equipment, uint64, error)
	ExportRegister(ctx context.Context, query dto.EquipmentListQuery) ([]byte, error)
	ImportRegister(ctx context.Context, r io.Reader) (*dto.ImportRegisterResultDTO, error)
	History(ctx context.Context, id uuid.UUID) ([]entities.HistoryEvent, error)
}

type EquipmentService struct {
	*BaseService
	equipmentRepository repositories.EquipmentRepositoryInterface
	txManager           repositories.TxManagerInterface
	qr                  qrcode.Generator
	listTTL             time.Duration
}

func NewEquipmentService(
	base *BaseService,
	equipmentRepository repositories.EquipmentRepositoryInterface,
	txManager repositories.TxManagerInterface,
	qr qrcode.Generator,
	listTTL time.Duration,
) EquipmentServiceInterface {
	return &EquipmentService{
		BaseService:         base,
		equipmentRepository: equipmentRepository,
		txManager:           txManager,
		qr:                  qr,
		listTTL:             listTTL,
	}
}

type cachedEquipmentPage struct {
	List  []entities.Equipment `json:"list"`
	Total uint64               `json:"total"`
}

func equipmentListCacheKey(q dto.EquipmentListQuery) string {
	return fmt.Sprintf("%s%d_%d_%s_%d_%s", equipmentListCachePrefix, q.Page, q.PageSize, q.Type, q.Status, strings.TrimSpace(q.Keyword))
}

func (s *EquipmentService) CreateEquipment(ctx context.Context, payload dto.CreateEquipmentDTO) (*entities.Equipment, error) {
	code := strings.TrimSpace(payload.Code)
	exists, err := s.equipmentRepository.ExistsByCode(ctx, code, nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.NewValidationError("Code", fmt.Sprintf("Equipment with code %s already exists", code))
	}

	qr, err := s.qr.Generate(code)
	if err != nil {
		return nil, fmt.Errorf("generate qr code for %s: %w", code, err)
	}

	now := s.now()
	equipment := &entities.Equipment{
		BaseEntity:      types.BaseEntity{ID: uuid.New(), CreatedAt: now},
		Versioned:       types.Versioned{Version: 1},
		Code:            code,
		Name:            strings.TrimSpace(payload.Name),
		Type:            strings.TrimSpace(payload.Type),
		Description:     payload.Description.Ptr(),
		Specification:   payload.Specification.Ptr(),
		PurchaseDate:    payload.PurchaseDate.Ptr(),
		Supplier:        payload.Supplier.Ptr(),
		Price:           payload.Price,
		WarrantyEndDate: payload.WarrantyEndDate.Ptr(),
		Status:          entities.EquipmentStatusNew,
		ImageURL:        payload.ImageURL.Ptr(),
		QRCodeBase64:    qr,
	}

	actor := utils.Actor(ctx)
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.equipmentRepository.Create(ctx, tx, equipment); err != nil {
			return err
		}
		return s.appendHistory(ctx, tx, s.historyEvent(entities.AggregateEquipment, equipment.ID, entities.HistoryCreated, actor, equipment.Name))
	})
	if err != nil {
		return nil, err
	}

	s.invalidateEquipmentList(ctx)
	s.logger.Info("equipment created", zap.String("id", equipment.ID.String()), zap.String("code", equipment.Code))
	return equipment, nil
}

// UpdateEquipment applies the supplied fields only. The code is immutable: the QR code encodes it.
func (s *EquipmentService) UpdateEquipment(ctx context.Context, id uuid.UUID, payload dto.UpdateEquipmentDTO) (*entities.Equipment, error) {
	var equipment *entities.Equipment
	var statusEvent *events.EquipmentStatusChangedEvent
	actor := utils.Actor(ctx)

	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		equipment, err = s.equipmentRepository.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := checkVersion("Equipment", id, equipment.Version, payload.ExpectedVersion.Ptr()); err != nil {
			return err
		}

		if payload.Name.Valid && strings.TrimSpace(payload.Name.String) != "" {
			equipment.Name = strings.TrimSpace(payload.Name.String)
		}
		if payload.Type.Valid && strings.TrimSpace(payload.Type.String) != "" {
			equipment.Type = strings.TrimSpace(payload.Type.String)
		}
		if payload.Description.Valid {
			equipment.Description = utils.NonEmptyPtr(payload.Description.String)
		}
		if payload.Specification.Valid {
			equipment.Specification = utils.NonEmptyPtr(payload.Specification.String)
		}
		if payload.PurchaseDate.Valid {
			equipment.PurchaseDate = payload.PurchaseDate.Ptr()
		}
		if payload.Supplier.Valid {
			equipment.Supplier = utils.NonEmptyPtr(payload.Supplier.String)
		}
		if payload.Price.Valid {
			equipment.Price = payload.Price.Float64
		}
		if payload.WarrantyEndDate.Valid {
			equipment.WarrantyEndDate = payload.WarrantyEndDate.Ptr()
		}
		if payload.ImageURL.Valid {
			equipment.ImageURL = utils.NonEmptyPtr(payload.ImageURL.String)
		}

		history := []entities.HistoryEvent{s.historyEvent(entities.AggregateEquipment, id, entities.HistoryUpdated, actor, "")}
		if payload.Status.Valid {
			next := entities.EquipmentStatus(payload.Status.Int)
			if !next.IsValid() {
				return apperrors.NewValidationError("Status", "Invalid equipment status")
			}
			if next != equipment.Status {
				statusEvent = &events.EquipmentStatusChangedEvent{
					EquipmentID: id, Code: equipment.Code, From: equipment.Status, To: next, Cause: "manual update", Actor: actor,
				}
				history = append(history, s.historyEvent(entities.AggregateEquipment, id, entities.HistoryStatusChanged, actor,
					fmt.Sprintf("%s -> %s", equipment.Status, next)))
				equipment.Status = next
			}
		}

		now := s.now()
		equipment.UpdatedAt = &now
		if err := s.equipmentRepository.Update(ctx, tx, equipment); err != nil {
			return err
		}
		return s.appendHistory(ctx, tx, history...)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateEquipmentList(ctx)
	if statusEvent != nil {
		s.publish(ctx, *statusEvent)
	}
	return equipment, nil
}

func (s *EquipmentService) DeleteEquipment(ctx context.Context, id uuid.UUID, expectedVersion *int) error {
	actor := utils.Actor(ctx)
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		equipment, err := s.equipmentRepository.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := checkVersion("Equipment", id, equipment.Version, expectedVersion); err != nil {
			return err
		}
		now := s.now()
		equipment.IsDeleted = true
		equipment.UpdatedAt = &now
		if err := s.equipmentRepository.Update(ctx, tx, equipment); err != nil {
			return err
		}
		return s.appendHistory(ctx, tx, s.historyEvent(entities.AggregateEquipment, id, entities.HistoryDeleted, actor, ""))
	})
	if err != nil {
		return err
	}
	s.invalidateEquipmentList(ctx)
	return nil
}

func (s *EquipmentService) FindEquipment(ctx context.Context, id uuid.UUID) (*entities.Equipment, error) {
	return s.equipmentRepository.FindByID(ctx, id)
}

func (s *EquipmentService) GetEquipments(ctx context.Context, query dto.EquipmentListQuery) ([]entities.Equipment, uint64, error) {
	key := equipmentListCacheKey(query)
	var page cachedEquipmentPage
	if s.CacheGet(ctx, key, &page) {
		return page.List, page.Total, nil
	}

	list, total, err := s.equipmentRepository.GetEquipments(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	s.CacheSet(ctx, key, cachedEquipmentPage{List: list, Total: total}, s.listTTL)
	return list, total, nil
}

func (s *EquipmentService) ExportRegister(ctx context.Context, query dto.EquipmentListQuery) ([]byte, error) {
	query.Page, query.PageSize = 1, 0
	list, _, err := s.equipmentRepository.GetEquipments(ctx, query)
	if err != nil {
		return nil, err
	}
	return buildEquipmentWorkbook(list)
}

func (s *EquipmentService) History(ctx context.Context, id uuid.UUID) ([]entities.HistoryEvent, error) {
	if _, err := s.equipmentRepository.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.GetHistory(ctx, entities.AggregateEquipment, id)
}
