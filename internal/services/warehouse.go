package services

import (
	"context"
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

const (
	initialStockReason = "Initial stock"
	manualUpdateReason = "Manual stock correction"
)

type WarehouseServiceInterface interface {
	CreateWarehouseItem(ctx context.Context, payload dto.CreateWarehouseItemDTO) (*entities.WarehouseItem, error)
	UpdateWarehouseItem(ctx context.Context, id uuid.UUID, payload dto.UpdateWarehouseItemDTO) (*entities.WarehouseItem, error)
	DeleteWarehouseItem(ctx context.Context, id uuid.UUID, expectedVersion *int) error
	GetWarehouseItem(ctx context.Context, id uuid.UUID) (*entities.WarehouseItem, error)
	GetWarehouseItems(ctx context.Context, filter types.Filter) ([]entities.WarehouseItem, uint64, error)
	GetLowStockItems(ctx context.Context) ([]entities.WarehouseItem, error)
	CreateWarehouseTransaction(ctx context.Context, payload dto.CreateWarehouseTransactionDTO) (*dto.StockChangeResultDTO, error)
	GetWarehouseTransactions(ctx context.Context, filter types.Filter) ([]entities.LedgerEntry, uint64, error)
	ExportLedger(ctx context.Context, filter types.Filter) ([]byte, error)
}

type WarehouseService struct {
	*BaseService
	itemRepo        repositories.WarehouseItemRepositoryInterface
	transactionRepo repositories.WarehouseTransactionRepositoryInterface
	ledger          *StockLedger
	txManager       repositories.TxManagerInterface
}

func NewWarehouseService(
	base *BaseService,
	itemRepo repositories.WarehouseItemRepositoryInterface,
	transactionRepo repositories.WarehouseTransactionRepositoryInterface,
	ledger *StockLedger,
	txManager repositories.TxManagerInterface,
) WarehouseServiceInterface {
	return &WarehouseService{
		BaseService:     base,
		itemRepo:        itemRepo,
		transactionRepo: transactionRepo,
		ledger:          ledger,
		txManager:       txManager,
	}
}

func (s *WarehouseService) CreateWarehouseItem(ctx context.Context, payload dto.CreateWarehouseItemDTO) (*entities.WarehouseItem, error) {
	equipmentType := strings.TrimSpace(payload.EquipmentType)
	var created *entities.WarehouseItem

	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		exists, err := s.itemRepo.ExistsByType(ctx, tx, equipmentType, nil)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.NewValidationError("EquipmentType", "Equipment type already exists in warehouse")
		}
		created, err = s.ledger.create(ctx, tx, equipmentType, payload.Quantity, payload.MinThreshold,
			payload.Notes.Ptr(), initialStockReason, utils.Actor(ctx))
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("warehouse item created", zap.String("id", created.ID.String()), zap.String("equipment_type", created.EquipmentType))
	return created, nil
}

// UpdateWarehouseItem edits the descriptive fields. A new quantity is booked as an
// adjustment so the ledger keeps explaining the stock level.
func (s *WarehouseService) UpdateWarehouseItem(ctx context.Context, id uuid.UUID, payload dto.UpdateWarehouseItemDTO) (*entities.WarehouseItem, error) {
	var item *entities.WarehouseItem

	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		item, err = s.itemRepo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := checkVersion("WarehouseItem", id, item.Version, payload.ExpectedVersion.Ptr()); err != nil {
			return err
		}

		if payload.EquipmentType.Valid {
			equipmentType := strings.TrimSpace(payload.EquipmentType.String)
			if equipmentType != item.EquipmentType {
				exists, err := s.itemRepo.ExistsByType(ctx, tx, equipmentType, &id)
				if err != nil {
					return err
				}
				if exists {
					return apperrors.NewValidationError("EquipmentType", "Equipment type already exists in warehouse")
				}
				item.EquipmentType = equipmentType
			}
		}
		if payload.MinThreshold.Valid {
			item.MinThreshold = payload.MinThreshold.Int
		}
		if payload.Notes.Valid {
			item.Notes = utils.NonEmptyPtr(payload.Notes.String)
		}

		now := s.now()
		item.UpdatedAt = &now
		if err := s.itemRepo.Update(ctx, tx, item); err != nil {
			return err
		}

		if payload.Quantity.Valid && payload.Quantity.Int != item.Quantity {
			_, err := s.ledger.apply(ctx, tx, item, entities.WarehouseTransactionAdjustment, payload.Quantity.Int, manualUpdateReason, utils.Actor(ctx))
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, lowStockEvents(item)...)
	return item, nil
}

func (s *WarehouseService) DeleteWarehouseItem(ctx context.Context, id uuid.UUID, expectedVersion *int) error {
	return s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		item, err := s.itemRepo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := checkVersion("WarehouseItem", id, item.Version, expectedVersion); err != nil {
			return err
		}
		now := s.now()
		item.IsDeleted = true
		item.UpdatedAt = &now
		return s.itemRepo.Update(ctx, tx, item)
	})
}

func (s *WarehouseService) GetWarehouseItem(ctx context.Context, id uuid.UUID) (*entities.WarehouseItem, error) {
	return s.itemRepo.FindByID(ctx, id)
}

func (s *WarehouseService) GetWarehouseItems(ctx context.Context, filter types.Filter) ([]entities.WarehouseItem, uint64, error) {
	return s.itemRepo.GetWarehouseItems(ctx, filter)
}

func (s *WarehouseService) GetLowStockItems(ctx context.Context) ([]entities.WarehouseItem, error) {
	return s.itemRepo.GetLowStockItems(ctx)
}

func (s *WarehouseService) CreateWarehouseTransaction(ctx context.Context, payload dto.CreateWarehouseTransactionDTO) (*dto.StockChangeResultDTO, error) {
	if payload.Quantity <= 0 {
		return nil, apperrors.NewValidationError("Quantity", "Quantity must be greater than 0")
	}
	performedBy := strings.TrimSpace(payload.PerformedBy)
	if performedBy == "" {
		return nil, apperrors.NewValidationError("PerformedBy", "PerformedBy is required")
	}

	var result dto.StockChangeResultDTO
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		item, err := s.itemRepo.FindByIDForUpdate(ctx, tx, payload.WarehouseItemID)
		if err != nil {
			return err
		}
		transaction, err := s.ledger.apply(ctx, tx, item, payload.Type, payload.Quantity, payload.Reason.String, performedBy)
		if err != nil {
			return err
		}
		result = dto.StockChangeResultDTO{TransactionID: transaction.ID, Item: *item, Transaction: *transaction}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("stock changed",
		zap.String("equipment_type", result.Item.EquipmentType),
		zap.Stringer("type", result.Transaction.Type),
		zap.Int("quantity", result.Transaction.Quantity),
		zap.Int("balance", result.Item.Quantity),
	)
	s.publish(ctx, lowStockEvents(&result.Item)...)
	return &result, nil
}

func (s *WarehouseService) GetWarehouseTransactions(ctx context.Context, filter types.Filter) ([]entities.LedgerEntry, uint64, error) {
	return s.transactionRepo.GetTransactions(ctx, filter)
}

func (s *WarehouseService) ExportLedger(ctx context.Context, filter types.Filter) ([]byte, error) {
	entries, err := s.transactionRepo.GetLedgerForExport(ctx, filter)
	if err != nil {
		return nil, err
	}
	return buildLedgerWorkbook(entries)
}
