package repositories

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"equipment-system/internal/entities"
	db "equipment-system/internal/infrastructure/bd"
	"equipment-system/pkg/clock"
	"equipment-system/pkg/types"
)

const warehouseTransactionTable = "warehouse_transactions"

var warehouseTransactionColumns = []string{
	"id", "warehouse_item_id", "type", "quantity", "reason", "performed_by", "transaction_date", "created_at",
}

var (
	transactionFilters    = map[string]string{"warehouse_item_id": "t.warehouse_item_id"}
	transactionIntFilters = map[string]string{"type": "t.type"}
)

// WarehouseTransactionRepositoryInterface is append-only: ledger rows are never updated.
type WarehouseTransactionRepositoryInterface interface {
	Create(ctx context.Context, tx pgx.Tx, transaction *entities.WarehouseTransaction) error
	GetTransactions(ctx context.Context, filter types.Filter) ([]entities.LedgerEntry, uint64, error)
	GetLedgerForExport(ctx context.Context, filter types.Filter) ([]entities.LedgerEntry, error)
}

type WarehouseTransactionRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewWarehouseTransactionRepository(storage *pgxpool.Pool, logger *zap.Logger) WarehouseTransactionRepositoryInterface {
	return &WarehouseTransactionRepository{storage: storage, logger: logger}
}

func (r *WarehouseTransactionRepository) Create(ctx context.Context, tx pgx.Tx, t *entities.WarehouseTransaction) error {
	query, args, err := psql.Insert(warehouseTransactionTable).
		Columns(warehouseTransactionColumns...).
		Values(t.ID, t.WarehouseItemID, t.Type, t.Quantity, t.Reason, t.PerformedBy, clock.UTC(t.TransactionDate), clock.UTC(t.CreatedAt)).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := pick(r.storage, tx).Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert warehouse transaction: %w", err)
	}
	return nil
}

func (r *WarehouseTransactionRepository) ledgerBase(filter types.Filter) sq.SelectBuilder {
	base := psql.Select().
		From(warehouseTransactionTable + " t").
		Join(warehouseItemTable + " i ON i.id = t.warehouse_item_id")
	base = db.ApplyFilters(base, filter, transactionFilters)
	return db.ApplyIntFilters(base, filter, transactionIntFilters)
}

func ledgerColumns() []string {
	cols := make([]string, 0, len(warehouseTransactionColumns)+1)
	for _, c := range warehouseTransactionColumns {
		cols = append(cols, "t."+c)
	}
	return append(cols, "i.equipment_type")
}

// GetTransactions returns ledger rows newest first.
func (r *WarehouseTransactionRepository) GetTransactions(ctx context.Context, filter types.Filter) ([]entities.LedgerEntry, uint64, error) {
	base := r.ledgerBase(filter)
	total, err := countQuery(ctx, r.storage, base)
	if err != nil || total == 0 {
		return []entities.LedgerEntry{}, total, err
	}
	builder := db.ApplyListParams(base.Columns(ledgerColumns()...), filter, nil, "t.transaction_date DESC", "t.created_at DESC")
	list, err := r.query(ctx, builder)
	return list, total, err
}

func (r *WarehouseTransactionRepository) GetLedgerForExport(ctx context.Context, filter types.Filter) ([]entities.LedgerEntry, error) {
	return r.query(ctx, r.ledgerBase(filter).Columns(ledgerColumns()...).OrderBy("t.transaction_date ASC", "t.created_at ASC"))
}

func (r *WarehouseTransactionRepository) query(ctx context.Context, builder sq.SelectBuilder) ([]entities.LedgerEntry, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]entities.LedgerEntry, 0)
	for rows.Next() {
		var e entities.LedgerEntry
		if err := rows.Scan(
			&e.ID, &e.WarehouseItemID, &e.Type, &e.Quantity, &e.Reason, &e.PerformedBy,
			&e.TransactionDate, &e.CreatedAt, &e.EquipmentType,
		); err != nil {
			return nil, fmt.Errorf("scan warehouse transaction: %w", err)
		}
		e.TransactionDate = clock.UTC(e.TransactionDate)
		e.CreatedAt = clock.UTC(e.CreatedAt)
		list = append(list, e)
	}
	return list, rows.Err()
}
