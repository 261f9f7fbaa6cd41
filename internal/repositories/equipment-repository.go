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

	"equipment-system/internal/dto"
	"equipment-system/internal/entities"
	"equipment-system/pkg/clock"
	apperrors "equipment-system/pkg/errors"
)

const equipmentTable = "equipments"

var equipmentColumns = []string{
	"id", "code", "name", "type", "description", "specification", "purchase_date", "supplier",
	"price", "warranty_end_date", "status", "image_url", "qr_code_base64", "version",
	"is_deleted", "created_at", "updated_at",
}

type EquipmentRepositoryInterface interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Equipment, error)
	FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*entities.Equipment, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*entities.Equipment, error)
	ExistsByCode(ctx context.Context, code string, excludeID *uuid.UUID) (bool, error)
	GetEquipments(ctx context.Context, query dto.EquipmentListQuery) ([]entities.Equipment, uint64, error)
	Create(ctx context.Context, tx pgx.Tx, equipment *entities.Equipment) error
	Update(ctx context.Context, tx pgx.Tx, equipment *entities.Equipment) error
}

type EquipmentRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewEquipmentRepository(storage *pgxpool.Pool, logger *zap.Logger) EquipmentRepositoryInterface {
	return &EquipmentRepository{storage: storage, logger: logger}
}

func scanEquipment(row pgx.Row) (*entities.Equipment, error) {
	var e entities.Equipment
	var qr *string
	err := row.Scan(
		&e.ID, &e.Code, &e.Name, &e.Type, &e.Description, &e.Specification, &e.PurchaseDate, &e.Supplier,
		&e.Price, &e.WarrantyEndDate, &e.Status, &e.ImageURL, &qr, &e.Version,
		&e.IsDeleted, &e.CreatedAt, &e.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan equipment: %w", err)
	}
	if qr != nil {
		e.QRCodeBase64 = *qr
	}
	e.CreatedAt = clock.UTC(e.CreatedAt)
	e.UpdatedAt = clock.UTCPtr(e.UpdatedAt)
	e.PurchaseDate = clock.UTCPtr(e.PurchaseDate)
	e.WarrantyEndDate = clock.UTCPtr(e.WarrantyEndDate)
	return &e, nil
}

func (r *EquipmentRepository) selectActive() sq.SelectBuilder {
	return psql.Select(equipmentColumns...).From(equipmentTable).Where(sq.Eq{"is_deleted": false})
}

func (r *EquipmentRepository) findOne(ctx context.Context, q querier, builder sq.SelectBuilder, id uuid.UUID) (*entities.Equipment, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	e, err := scanEquipment(q.QueryRow(ctx, query, args...))
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.NewNotFoundError("Equipment", id)
	}
	return e, err
}

func (r *EquipmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Equipment, error) {
	return r.findOne(ctx, r.storage, r.selectActive().Where(sq.Eq{"id": id}), id)
}

func (r *EquipmentRepository) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*entities.Equipment, error) {
	return r.findOne(ctx, pick(r.storage, tx), r.selectActive().Where(sq.Eq{"id": id}).Suffix("FOR UPDATE"), id)
}

func (r *EquipmentRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*entities.Equipment, error) {
	result := make(map[uuid.UUID]*entities.Equipment, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	query, args, err := r.selectActive().Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		e, err := scanEquipment(rows)
		if err != nil {
			return nil, err
		}
		result[e.ID] = e
	}
	return result, rows.Err()
}

func (r *EquipmentRepository) ExistsByCode(ctx context.Context, code string, excludeID *uuid.UUID) (bool, error) {
	builder := psql.Select("1").From(equipmentTable).Where(sq.Eq{"code": code, "is_deleted": false})
	if excludeID != nil {
		builder = builder.Where(sq.NotEq{"id": *excludeID})
	}
	query, args, err := builder.Prefix("SELECT EXISTS (").Suffix(")").ToSql()
	if err != nil {
		return false, err
	}
	var exists bool
	if err := r.storage.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *EquipmentRepository) GetEquipments(ctx context.Context, q dto.EquipmentListQuery) ([]entities.Equipment, uint64, error) {
	base := psql.Select().From(equipmentTable).Where(sq.Eq{"is_deleted": false})
	if q.Type != "" {
		base = base.Where(sq.Eq{"type": q.Type})
	}
	if q.Status > 0 {
		base = base.Where(sq.Eq{"status": q.Status})
	}
	if kw := strings.TrimSpace(q.Keyword); kw != "" {
		pattern := "%" + kw + "%"
		base = base.Where(sq.Or{sq.ILike{"code": pattern}, sq.ILike{"name": pattern}})
	}

	total, err := countQuery(ctx, r.storage, base)
	if err != nil || total == 0 {
		return []entities.Equipment{}, total, err
	}

	builder := base.Columns(equipmentColumns...).OrderBy("created_at DESC")
	if q.PageSize > 0 {
		builder = builder.Limit(uint64(q.PageSize)).Offset(uint64((q.Page - 1) * q.PageSize))
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	list := make([]entities.Equipment, 0)
	for rows.Next() {
		e, err := scanEquipment(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, *e)
	}
	return list, total, rows.Err()
}

func (r *EquipmentRepository) Create(ctx context.Context, tx pgx.Tx, e *entities.Equipment) error {
	query, args, err := psql.Insert(equipmentTable).
		Columns(equipmentColumns...).
		Values(
			e.ID, e.Code, e.Name, e.Type, e.Description, e.Specification, clock.UTCPtr(e.PurchaseDate), e.Supplier,
			e.Price, clock.UTCPtr(e.WarrantyEndDate), e.Status, e.ImageURL, e.QRCodeBase64, e.Version,
			e.IsDeleted, clock.UTC(e.CreatedAt), clock.UTCPtr(e.UpdatedAt),
		).ToSql()
	if err != nil {
		return err
	}
	if _, err := pick(r.storage, tx).Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert equipment: %w", err)
	}
	return nil
}

// Update writes every mutable column and bumps the version on success.
func (r *EquipmentRepository) Update(ctx context.Context, tx pgx.Tx, e *entities.Equipment) error {
	builder := psql.Update(equipmentTable).
		Set("name", e.Name).
		Set("type", e.Type).
		Set("description", e.Description).
		Set("specification", e.Specification).
		Set("purchase_date", clock.UTCPtr(e.PurchaseDate)).
		Set("supplier", e.Supplier).
		Set("price", e.Price).
		Set("warranty_end_date", clock.UTCPtr(e.WarrantyEndDate)).
		Set("status", e.Status).
		Set("image_url", e.ImageURL).
		Set("qr_code_base64", e.QRCodeBase64).
		Set("is_deleted", e.IsDeleted).
		Set("updated_at", clock.UTCPtr(e.UpdatedAt))
	if err := execVersioned(ctx, pick(r.storage, tx), builder, "Equipment", e.ID, e.Version); err != nil {
		return err
	}
	e.Version++
	return nil
}
