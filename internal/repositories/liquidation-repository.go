package repositories

import (
	"context"
	"errors"
	"fmt"

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

const liquidationTable = "liquidation_requests"

var liquidationColumns = []string{
	"id", "equipment_id", "liquidation_value", "status", "decided_by", "request_date", "decision_date",
	"note", "version", "is_deleted", "created_at", "updated_at",
}

var (
	liquidationFilters    = map[string]string{"equipment_id": "equipment_id"}
	liquidationIntFilters = map[string]string{"status": "status"}
	liquidationSort       = map[string]string{"request_date": "request_date", "decision_date": "decision_date", "liquidation_value": "liquidation_value"}
)

type LiquidationRepositoryInterface interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entities.LiquidationRequest, error)
	FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*entities.LiquidationRequest, error)
	GetLiquidationRequests(ctx context.Context, filter types.Filter) ([]entities.LiquidationRequest, uint64, error)
	GetPending(ctx context.Context) ([]entities.LiquidationRequest, error)
	Create(ctx context.Context, tx pgx.Tx, request *entities.LiquidationRequest) error
	Update(ctx context.Context, tx pgx.Tx, request *entities.LiquidationRequest) error
}

type LiquidationRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewLiquidationRepository(storage *pgxpool.Pool, logger *zap.Logger) LiquidationRepositoryInterface {
	return &LiquidationRepository{storage: storage, logger: logger}
}

func scanLiquidation(row pgx.Row) (*entities.LiquidationRequest, error) {
	var l entities.LiquidationRequest
	err := row.Scan(
		&l.ID, &l.EquipmentID, &l.LiquidationValue, &l.Status, &l.DecidedBy, &l.RequestDate, &l.DecisionDate,
		&l.Note, &l.Version, &l.IsDeleted, &l.CreatedAt, &l.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan liquidation request: %w", err)
	}
	l.RequestDate = clock.UTC(l.RequestDate)
	l.DecisionDate = clock.UTCPtr(l.DecisionDate)
	l.CreatedAt = clock.UTC(l.CreatedAt)
	l.UpdatedAt = clock.UTCPtr(l.UpdatedAt)
	return &l, nil
}

func (r *LiquidationRepository) selectActive() sq.SelectBuilder {
	return psql.Select(liquidationColumns...).From(liquidationTable).Where(sq.Eq{"is_deleted": false})
}

func (r *LiquidationRepository) findOne(ctx context.Context, q querier, builder sq.SelectBuilder, id uuid.UUID) (*entities.LiquidationRequest, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	l, err := scanLiquidation(q.QueryRow(ctx, query, args...))
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.NewNotFoundError("LiquidationRequest", id)
	}
	return l, err
}

func (r *LiquidationRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.LiquidationRequest, error) {
	return r.findOne(ctx, r.storage, r.selectActive().Where(sq.Eq{"id": id}), id)
}

func (r *LiquidationRepository) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*entities.LiquidationRequest, error) {
	return r.findOne(ctx, pick(r.storage, tx), r.selectActive().Where(sq.Eq{"id": id}).Suffix("FOR UPDATE"), id)
}

func (r *LiquidationRepository) GetLiquidationRequests(ctx context.Context, filter types.Filter) ([]entities.LiquidationRequest, uint64, error) {
	base := psql.Select().From(liquidationTable).Where(sq.Eq{"is_deleted": false})
	base = db.ApplyFilters(base, filter, liquidationFilters)
	base = db.ApplyIntFilters(base, filter, liquidationIntFilters)

	total, err := countQuery(ctx, r.storage, base)
	if err != nil || total == 0 {
		return []entities.LiquidationRequest{}, total, err
	}
	builder := db.ApplyListParams(base.Columns(liquidationColumns...), filter, liquidationSort, "request_date DESC")
	list, err := r.query(ctx, builder)
	return list, total, err
}

func (r *LiquidationRepository) GetPending(ctx context.Context) ([]entities.LiquidationRequest, error) {
	return r.query(ctx, r.selectActive().Where(sq.Eq{"status": entities.LiquidationStatusPending}).OrderBy("request_date ASC"))
}

func (r *LiquidationRepository) query(ctx context.Context, builder sq.SelectBuilder) ([]entities.LiquidationRequest, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]entities.LiquidationRequest, 0)
	for rows.Next() {
		l, err := scanLiquidation(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *l)
	}
	return list, rows.Err()
}

func (r *LiquidationRepository) Create(ctx context.Context, tx pgx.Tx, l *entities.LiquidationRequest) error {
	query, args, err := psql.Insert(liquidationTable).
		Columns(liquidationColumns...).
		Values(
			l.ID, l.EquipmentID, l.LiquidationValue, l.Status, l.DecidedBy, clock.UTC(l.RequestDate), clock.UTCPtr(l.DecisionDate),
			l.Note, l.Version, l.IsDeleted, clock.UTC(l.CreatedAt), clock.UTCPtr(l.UpdatedAt),
		).ToSql()
	if err != nil {
		return err
	}
	if _, err := pick(r.storage, tx).Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert liquidation request: %w", err)
	}
	return nil
}

func (r *LiquidationRepository) Update(ctx context.Context, tx pgx.Tx, l *entities.LiquidationRequest) error {
	builder := psql.Update(liquidationTable).
		Set("liquidation_value", l.LiquidationValue).
		Set("status", l.Status).
		Set("decided_by", l.DecidedBy).
		Set("decision_date", clock.UTCPtr(l.DecisionDate)).
		Set("note", l.Note).
		Set("is_deleted", l.IsDeleted).
		Set("updated_at", clock.UTCPtr(l.UpdatedAt))
	if err := execVersioned(ctx, pick(r.storage, tx), builder, "LiquidationRequest", l.ID, l.Version); err != nil {
		return err
	}
	l.Version++
	return nil
}
