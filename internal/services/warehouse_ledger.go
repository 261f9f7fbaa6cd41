package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"equipment-system/internal/entities"
	"equipment-system/internal/events"
	"equipment-system/internal/repositories"
	"equipment-system/pkg/clock"
	"equipment-system/pkg/config"
	apperrors "equipment-system/pkg/errors"
	"equipment-system/pkg/eventbus"
	"equipment-system/pkg/types"
	"equipment-system/pkg/utils"
)

const autoCreatedItemNote = "Auto-created from equipment return"

// ApplyStockChange computes the effect of one ledger entry on item without touching storage.
// For Import and Export quantity is the amount moved; for Adjustment it is the new total
// and the returned transaction records the signed delta. The version is left alone: it
// moves when the item is persisted.
func ApplyStockChange(
	item entities.WarehouseItem,
	txType entities.WarehouseTransactionType,
	quantity int,
	reason *string,
	performedBy string,
	now time.Time,
) (entities.WarehouseItem, entities.WarehouseTransaction, error) {
	moved := quantity

	switch txType {
	case entities.WarehouseTransactionImport:
		if quantity <= 0 {
			return item, entities.WarehouseTransaction{}, apperrors.NewValidationError("Quantity", "Quantity must be greater than 0")
		}
		item.Quantity += quantity
	case entities.WarehouseTransactionExport:
		if quantity <= 0 {
			return item, entities.WarehouseTransaction{}, apperrors.NewValidationError("Quantity", "Quantity must be greater than 0")
		}
		if item.Quantity < quantity {
			return item, entities.WarehouseTransaction{}, apperrors.NewValidationError("Quantity",
				fmt.Sprintf("Insufficient quantity in warehouse. Available: %d, Requested: %d", item.Quantity, quantity))
		}
		item.Quantity -= quantity
	case entities.WarehouseTransactionAdjustment:
		if quantity < 0 {
			return item, entities.WarehouseTransaction{}, apperrors.NewValidationError("Quantity", "Quantity must be greater than or equal to 0")
		}
		moved = quantity - item.Quantity
		item.Quantity = quantity
	default:
		return item, entities.WarehouseTransaction{}, apperrors.NewValidationError("Type", "Invalid transaction type")
	}

	item.UpdatedAt = &now
	transaction := entities.WarehouseTransaction{
		ID:              uuid.New(),
		WarehouseItemID: item.ID,
		Type:            txType,
		Quantity:        moved,
		Reason:          reason,
		PerformedBy:     performedBy,
		TransactionDate: now,
		CreatedAt:       now,
	}
	return item, transaction, nil
}

// StockLedger persists stock changes. Every method must run inside the caller's transaction.
type StockLedger struct {
	items        repositories.WarehouseItemRepositoryInterface
	transactions repositories.WarehouseTransactionRepositoryInterface
	cfg          config.WarehouseConfig
	clock        clock.Clock
	logger       *zap.Logger
}

func NewStockLedger(
	items repositories.WarehouseItemRepositoryInterface,
	transactions repositories.WarehouseTransactionRepositoryInterface,
	cfg config.WarehouseConfig,
	clk clock.Clock,
	logger *zap.Logger,
) *StockLedger {
	return &StockLedger{items: items, transactions: transactions, cfg: cfg, clock: clk, logger: logger}
}

// apply books one change against an item the caller has locked and updates it in place.
func (l *StockLedger) apply(
	ctx context.Context,
	tx pgx.Tx,
	item *entities.WarehouseItem,
	txType entities.WarehouseTransactionType,
	quantity int,
	reason string,
	performedBy string,
) (*entities.WarehouseTransaction, error) {
	updated, transaction, err := ApplyStockChange(*item, txType, quantity, utils.NonEmptyPtr(reason), performedBy, l.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := l.items.Update(ctx, tx, &updated); err != nil {
		return nil, err
	}
	if err := l.transactions.Create(ctx, tx, &transaction); err != nil {
		return nil, err
	}
	*item = updated
	return &transaction, nil
}

// lockByType returns nil when the type has no stock row.
func (l *StockLedger) lockByType(ctx context.Context, tx pgx.Tx, equipmentType string) (*entities.WarehouseItem, error) {
	item, err := l.items.FindByTypeForUpdate(ctx, tx, equipmentType)
	if apperrors.IsNotFound(err) {
		return nil, nil
	}
	return item, err
}

// exportUnit списывает одну единицу equipmentType, если она есть на складе.
// Возвращает обновлённую позицию или nil, если ничего не списано.
func (l *StockLedger) exportUnit(ctx context.Context, tx pgx.Tx, equipmentType, reason, performedBy string) (*entities.WarehouseItem, error) {
	item, err := l.lockByType(ctx, tx, equipmentType)
	if err != nil {
		return nil, err
	}
	if item == nil || item.Quantity < 1 {
		l.logger.Warn("Нет остатка для списания со склада",
			zap.String("equipment_type", equipmentType),
			zap.Bool("item_exists", item != nil),
		)
		return nil, nil
	}
	if _, err := l.apply(ctx, tx, item, entities.WarehouseTransactionExport, 1, reason, performedBy); err != nil {
		return nil, err
	}
	return item, nil
}

// importUnit puts one unit of equipmentType back into stock. A missing stock row is
// created when auto-create is enabled and skipped otherwise.
func (l *StockLedger) importUnit(ctx context.Context, tx pgx.Tx, equipmentType, reason, autoCreateReason, performedBy string) (*entities.WarehouseItem, error) {
	item, err := l.lockByType(ctx, tx, equipmentType)
	if err != nil {
		return nil, err
	}
	if item != nil {
		if _, err := l.apply(ctx, tx, item, entities.WarehouseTransactionImport, 1, reason, performedBy); err != nil {
			return nil, err
		}
		return item, nil
	}

	if !l.cfg.AutoCreateOnImport {
		l.logger.Warn("Нет складской позиции для возвращённого оборудования, приход пропущен", zap.String("equipment_type", equipmentType))
		return nil, nil
	}

	created, err := l.create(ctx, tx, equipmentType, 1, l.cfg.DefaultMinThreshold, utils.NonEmptyPtr(autoCreatedItemNote), autoCreateReason, performedBy)
	if err != nil {
		return nil, err
	}
	l.logger.Info("Складская позиция создана автоматически при приходе", zap.String("equipment_type", equipmentType))
	return created, nil
}

// create inserts a stock row. An opening quantity is booked as an import so the ledger
// always explains the current quantity.
func (l *StockLedger) create(
	ctx context.Context,
	tx pgx.Tx,
	equipmentType string,
	quantity, minThreshold int,
	notes *string,
	reason, performedBy string,
) (*entities.WarehouseItem, error) {
	now := l.clock.Now()
	item := entities.WarehouseItem{
		BaseEntity:    types.BaseEntity{ID: uuid.New(), CreatedAt: now},
		Versioned:     types.Versioned{Version: 1},
		EquipmentType: equipmentType,
		MinThreshold:  minThreshold,
		Notes:         notes,
	}
	if quantity == 0 {
		if err := l.items.Create(ctx, tx, &item); err != nil {
			return nil, err
		}
		return &item, nil
	}

	stocked, transaction, err := ApplyStockChange(item, entities.WarehouseTransactionImport, quantity, utils.NonEmptyPtr(reason), performedBy, now)
	if err != nil {
		return nil, err
	}
	stocked.UpdatedAt = nil
	if err := l.items.Create(ctx, tx, &stocked); err != nil {
		return nil, err
	}
	if err := l.transactions.Create(ctx, tx, &transaction); err != nil {
		return nil, err
	}
	return &stocked, nil
}

// lowStockEvents reports the committed items that ended at or below their threshold.
func lowStockEvents(items ...*entities.WarehouseItem) []eventbus.Event {
	var out []eventbus.Event
	for _, item := range items {
		if item != nil && item.IsLowStock() {
			out = append(out, events.StockLowEvent{Item: *item})
		}
	}
	return out
}
