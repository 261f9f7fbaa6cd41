package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"equipment-system/internal/entities"
	db "equipment-system/internal/infrastructure/bd"
	"equipment-system/pkg/clock"
	apperrors "equipment-system/pkg/errors"
	"equipment-system/pkg/types"
)

const warehouseItemTable = "warehouse_items"

var warehouseItemColumns = []string{
	"id", "equipment_type", "quantity", "min_threshold", "notes", "version", "is_deleted", "created_at", "updated_at",
}

type WarehouseItemRepositoryInterface interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entities.WarehouseItem, error)
	FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*entities.WarehouseItem, error)
	FindByTypeForUpdate(ctx context.Context, tx pgx.Tx, equipmentType string) (*entities.WarehouseItem, error)
	ExistsByType(ctx context.Context, tx pgx.Tx, equipmentType string, excludeID *uuid.UUID) (bool, error)
	GetWarehouseItems(ctx context.Context, filter types.Filter) ([]entities.WarehouseItem, uint64, error)
	GetLowStockItems(ctx context.Context) ([]entities.WarehouseItem, error)
	Create(ctx context.Context, tx pgx.Tx, item *entities.WarehouseItem) error
	Update(ctx context.Context, tx pgx.Tx, item *entities.WarehouseItem) error
}

type WarehouseItemRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewWarehouseItemRepository(storage *pgxpool.Pool, logger *zap.Logger) WarehouseItemRepositoryInterface {
	return &WarehouseItemRepository{storage: storage, logger: logger}
}

func scanWarehouseItem(row pgx.Row) (*entities.WarehouseItem, error) {
	var w entities.WarehouseItem
	err := row.Scan(&w.ID, &w.EquipmentType, &w.Quantity, &w.MinThreshold, &w.Notes, &w.Version, &w.IsDeleted, &w.CreatedAt, &w.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan warehouse item: %w", err)
	}
	w.CreatedAt = clock.UTC(w.CreatedAt)
	w.UpdatedAt = clock.UTCPtr(w.UpdatedAt)
	return &w, nil
}

func (r *WarehouseItemRepository) selectActive() sq.SelectBuilder {
	return psql.Select(warehouseItemColumns...).From(warehouseItemTable).Where(sq.Eq{"is_deleted": false})
}

func (r *WarehouseItemRepository) findOne(ctx context.Context, q querier, builder sq.SelectBuilder, id interface{}) (*entities.WarehouseItem, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	item, err := scanWarehouseItem(q.QueryRow(ctx, query, args...))
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.NewNotFoundError("WarehouseItem", id)
	}
	return item, err
}

func (r *WarehouseItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.WarehouseItem, error) {
	return r.findOne(ctx, r.storage, r.selectActive().Where(sq.Eq{"id": id}), id)
}

func (r *WarehouseItemRepository) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*entities.WarehouseItem, error) {
	return r.findOne(ctx, pick(r.storage, tx), r.selectActive().Where(sq.Eq{"id": id}).Suffix("FOR UPDATE"), id)
}

func (r *WarehouseItemRepository) FindByTypeForUpdate(ctx context.Context, tx pgx.Tx, equipmentType string) (*entities.WarehouseItem, error) {
	builder := r.selectActive().Where(sq.Eq{"equipment_type": equipmentType}).Suffix("FOR UPDATE")
	return r.findOne(ctx, pick(r.storage, tx), builder, equipmentType)
}

func (r *WarehouseItemRepository) ExistsByType(ctx context.Context, tx pgx.Tx, equipmentType string, excludeID *uuid.UUID) (bool, error) {
	builder := psql.Select("1").From(warehouseItemTable).Where(sq.Eq{"equipment_type": equipmentType, "is_deleted": false})
	if excludeID != nil {
		builder = builder.Where(sq.NotEq{"id": *excludeID})
	}
	query, args, err := builder.Prefix("SELECT EXISTS (").Suffix(")").ToSql()
	if err != nil {
		return false, err
	}
	var exists bool
	if err := pick(r.storage, tx).QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// GetWarehouseItems supports search (type contains, case-insensitive) and filter[low_stock]=true.
func (r *WarehouseItemRepository) GetWarehouseItems(ctx context.Context, filter types.Filter) ([]entities.WarehouseItem, uint64, error) {
	base := psql.Select().From(warehouseItemTable).Where(sq.Eq{"is_deleted": false})
	if s := strings.TrimSpace(filter.Search); s != "" {
		base = base.Where(sq.ILike{"equipment_type": "%" + s + "%"})
	}
	if strings.EqualFold(filter.Value("low_stock"), "true") {
		base = base.Where("quantity <= min_threshold")
	}

	total, err := countQuery(ctx, r.storage, base)
	if err != nil || total == 0 {
		return []entities.WarehouseItem{}, total, err
	}

	builder := db.ApplyListParams(base.Columns(warehouseItemColumns...), filter, map[string]string{
		"equipment_type": "equipment_type",
		"quantity":       "quantity",
		"created_at":     "created_at",
	}, "equipment_type ASC")
	list, err := r.query(ctx, builder)
	return list, total, err
}

func (r *WarehouseItemRepository) GetLowStockItems(ctx context.Context) ([]entities.WarehouseItem, error) {
	return r.query(ctx, r.selectActive().Where("quantity <= min_threshold").OrderBy("quantity ASC", "equipment_type ASC"))
}

func (r *WarehouseItemRepository) query(ctx context.Context, builder sq.SelectBuilder) ([]entities.WarehouseItem, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]entities.WarehouseItem, 0)
	for rows.Next() {
		item, err := scanWarehouseItem(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *item)
	}
	return list, rows.Err()
}

func (r *WarehouseItemRepository) Create(ctx context.Context, tx pgx.Tx, w *entities.WarehouseItem) error {
	query, args, err := psql.Insert(warehouseItemTable).
		Columns(warehouseItemColumns...).
		Values(w.ID, w.EquipmentType, w.Quantity, w.MinThreshold, w.Notes, w.Version, w.IsDeleted, clock.UTC(w.CreatedAt), clock.UTCPtr(w.UpdatedAt)).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := pick(r.storage, tx).Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert warehouse item: %w", err)
	}
	return nil
}

func (r *WarehouseItemRepository) Update(ctx context.Context, tx pgx.Tx, w *entities.WarehouseItem) error {
	builder := psql.Update(warehouseItemTable).
		Set("equipment_type", w.EquipmentType).
		Set("quantity", w.Quantity).
		Set("min_threshold", w.MinThreshold).
		Set("notes", w.Notes).
		Set("is_deleted", w.IsDeleted).
		Set("updated_at", clock.UTCPtr(w.UpdatedAt))
	if err := execVersioned(ctx, pick(r.storage, tx), builder, "WarehouseItem", w.ID, w.Version); err != nil {
		return err
	}
	w.Version++
	return nil
}
