package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

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

const auditTable = "audit_records"

var auditColumns = []string{
	"id", "equipment_id", "check_date", "checked_by_user_id", "result", "note", "location",
	"last_sync_date", "is_deleted", "created_at", "updated_at",
}

var (
	auditFilters    = map[string]string{"equipment_id": "equipment_id", "checked_by_user_id": "checked_by_user_id"}
	auditIntFilters = map[string]string{"result": "result"}
	auditSort       = map[string]string{"check_date": "check_date", "last_sync_date": "last_sync_date"}
)

type AuditRepositoryInterface interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entities.AuditRecord, error)
	GetAuditRecords(ctx context.Context, filter types.Filter) ([]entities.AuditRecord, uint64, error)
	GetByEquipment(ctx context.Context, equipmentID uuid.UUID) ([]entities.AuditRecord, error)
	GetForSync(ctx context.Context, since time.Time) ([]entities.AuditRecord, error)
	Create(ctx context.Context, tx pgx.Tx, record *entities.AuditRecord) error
	CreateBatch(ctx context.Context, tx pgx.Tx, records []entities.AuditRecord) error
	Update(ctx context.Context, tx pgx.Tx, record *entities.AuditRecord) error
}

type AuditRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewAuditRepository(storage *pgxpool.Pool, logger *zap.Logger) AuditRepositoryInterface {
	return &AuditRepository{storage: storage, logger: logger}
}

func scanAudit(row pgx.Row) (*entities.AuditRecord, error) {
	var a entities.AuditRecord
	err := row.Scan(
		&a.ID, &a.EquipmentID, &a.CheckDate, &a.CheckedByUserID, &a.Result, &a.Note, &a.Location,
		&a.LastSyncDate, &a.IsDeleted, &a.CreatedAt, &a.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan audit record: %w", err)
	}
	a.CheckDate = clock.UTC(a.CheckDate)
	a.LastSyncDate = clock.UTC(a.LastSyncDate)
	a.CreatedAt = clock.UTC(a.CreatedAt)
	a.UpdatedAt = clock.UTCPtr(a.UpdatedAt)
	return &a, nil
}

func (r *AuditRepository) selectActive() sq.SelectBuilder {
	return psql.Select(auditColumns...).From(auditTable).Where(sq.Eq{"is_deleted": false})
}

func (r *AuditRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.AuditRecord, error) {
	query, args, err := r.selectActive().Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	a, err := scanAudit(r.storage.QueryRow(ctx, query, args...))
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.NewNotFoundError("AuditRecord", id)
	}
	return a, err
}

// GetAuditRecords also understands filter[from_date] and filter[to_date] on check_date.
func (r *AuditRepository) GetAuditRecords(ctx context.Context, filter types.Filter) ([]entities.AuditRecord, uint64, error) {
	base := psql.Select().From(auditTable).Where(sq.Eq{"is_deleted": false})
	base = db.ApplyFilters(base, filter, auditFilters)
	base = db.ApplyIntFilters(base, filter, auditIntFilters)
	if from, err := clock.Parse(filter.Value("from_date")); err == nil {
		base = base.Where(sq.GtOrEq{"check_date": from})
	}
	if to, err := clock.Parse(filter.Value("to_date")); err == nil {
		base = base.Where(sq.LtOrEq{"check_date": to})
	}

	total, err := countQuery(ctx, r.storage, base)
	if err != nil || total == 0 {
		return []entities.AuditRecord{}, total, err
	}
	builder := db.ApplyListParams(base.Columns(auditColumns...), filter, auditSort, "check_date DESC")
	list, err := r.query(ctx, builder)
	return list, total, err
}

func (r *AuditRepository) GetByEquipment(ctx context.Context, equipmentID uuid.UUID) ([]entities.AuditRecord, error) {
	return r.query(ctx, r.selectActive().Where(sq.Eq{"equipment_id": equipmentID}).OrderBy("check_date DESC"))
}

// GetForSync returns records touched strictly after since, newest check first.
func (r *AuditRepository) GetForSync(ctx context.Context, since time.Time) ([]entities.AuditRecord, error) {
	return r.query(ctx, r.selectActive().Where(sq.Gt{"last_sync_date": clock.UTC(since)}).OrderBy("check_date DESC"))
}

func (r *AuditRepository) query(ctx context.Context, builder sq.SelectBuilder) ([]entities.AuditRecord, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]entities.AuditRecord, 0)
	for rows.Next() {
		a, err := scanAudit(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *a)
	}
	return list, rows.Err()
}

func auditValues(a *entities.AuditRecord) []interface{} {
	return []interface{}{
		a.ID, a.EquipmentID, clock.UTC(a.CheckDate), a.CheckedByUserID, a.Result, a.Note, a.Location,
		clock.UTC(a.LastSyncDate), a.IsDeleted, clock.UTC(a.CreatedAt), clock.UTCPtr(a.UpdatedAt),
	}
}

func (r *AuditRepository) Create(ctx context.Context, tx pgx.Tx, a *entities.AuditRecord) error {
	return r.CreateBatch(ctx, tx, []entities.AuditRecord{*a})
}

// CreateBatch inserts all records with a single multi-row INSERT.
func (r *AuditRepository) CreateBatch(ctx context.Context, tx pgx.Tx, records []entities.AuditRecord) error {
	if len(records) == 0 {
		return nil
	}
	builder := psql.Insert(auditTable).Columns(auditColumns...)
	for i := range records {
		builder = builder.Values(auditValues(&records[i])...)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return err
	}
	if _, err := pick(r.storage, tx).Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert audit records: %w", err)
	}
	return nil
}

func (r *AuditRepository) Update(ctx context.Context, tx pgx.Tx, a *entities.AuditRecord) error {
	query, args, err := psql.Update(auditTable).
		Set("result", a.Result).
		Set("note", a.Note).
		Set("location", a.Location).
		Set("last_sync_date", clock.UTC(a.LastSyncDate)).
		Set("updated_at", clock.UTCPtr(a.UpdatedAt)).
		Where(sq.Eq{"id": a.ID, "is_deleted": false}).
		ToSql()
	if err != nil {
		return err
	}
	tag, err := pick(r.storage, tx).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update audit record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("AuditRecord", a.ID)
	}
	return nil
}
