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

const assignmentTable = "assignments"

var assignmentColumns = []string{
	"id", "equipment_id", "assigned_to_user_id", "assigned_to_department", "assigned_date", "return_date",
	"status", "notes", "assigned_by", "version", "is_deleted", "created_at", "updated_at",
}

var (
	assignmentFilters    = map[string]string{"equipment_id": "equipment_id", "user_id": "assigned_to_user_id", "department": "assigned_to_department"}
	assignmentIntFilters = map[string]string{"status": "status"}
	assignmentSort       = map[string]string{"assigned_date": "assigned_date", "return_date": "return_date", "created_at": "created_at"}
)

type AssignmentRepositoryInterface interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Assignment, error)
	FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*entities.Assignment, error)
	HasActiveForEquipment(ctx context.Context, tx pgx.Tx, equipmentID uuid.UUID) (bool, error)
	GetAssignments(ctx context.Context, filter types.Filter) ([]entities.Assignment, uint64, error)
	GetByUser(ctx context.Context, userID string, activeOnly bool) ([]entities.Assignment, error)
	Create(ctx context.Context, tx pgx.Tx, assignment *entities.Assignment) error
	Update(ctx context.Context, tx pgx.Tx, assignment *entities.Assignment) error
}

type AssignmentRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewAssignmentRepository(storage *pgxpool.Pool, logger *zap.Logger) AssignmentRepositoryInterface {
	return &AssignmentRepository{storage: storage, logger: logger}
}

func scanAssignment(row pgx.Row) (*entities.Assignment, error) {
	var a entities.Assignment
	err := row.Scan(
		&a.ID, &a.EquipmentID, &a.AssignedToUserID, &a.AssignedToDepartment, &a.AssignedDate, &a.ReturnDate,
		&a.Status, &a.Notes, &a.AssignedBy, &a.Version, &a.IsDeleted, &a.CreatedAt, &a.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan assignment: %w", err)
	}
	a.AssignedDate = clock.UTC(a.AssignedDate)
	a.ReturnDate = clock.UTCPtr(a.ReturnDate)
	a.CreatedAt = clock.UTC(a.CreatedAt)
	a.UpdatedAt = clock.UTCPtr(a.UpdatedAt)
	return &a, nil
}

func (r *AssignmentRepository) selectActive() sq.SelectBuilder {
	return psql.Select(assignmentColumns...).From(assignmentTable).Where(sq.Eq{"is_deleted": false})
}

func (r *AssignmentRepository) findOne(ctx context.Context, q querier, builder sq.SelectBuilder, id uuid.UUID) (*entities.Assignment, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	a, err := scanAssignment(q.QueryRow(ctx, query, args...))
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.NewNotFoundError("Assignment", id)
	}
	return a, err
}

func (r *AssignmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Assignment, error) {
	return r.findOne(ctx, r.storage, r.selectActive().Where(sq.Eq{"id": id}), id)
}

func (r *AssignmentRepository) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*entities.Assignment, error) {
	return r.findOne(ctx, pick(r.storage, tx), r.selectActive().Where(sq.Eq{"id": id}).Suffix("FOR UPDATE"), id)
}

func (r *AssignmentRepository) HasActiveForEquipment(ctx context.Context, tx pgx.Tx, equipmentID uuid.UUID) (bool, error) {
	query, args, err := psql.Select("1").From(assignmentTable).
		Where(sq.Eq{"equipment_id": equipmentID, "status": entities.AssignmentStatusAssigned, "is_deleted": false}).
		Prefix("SELECT EXISTS (").Suffix(")").
		ToSql()
	if err != nil {
		return false, err
	}
	var exists bool
	if err := pick(r.storage, tx).QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *AssignmentRepository) GetAssignments(ctx context.Context, filter types.Filter) ([]entities.Assignment, uint64, error) {
	base := psql.Select().From(assignmentTable).Where(sq.Eq{"is_deleted": false})
	base = db.ApplyFilters(base, filter, assignmentFilters)
	base = db.ApplyIntFilters(base, filter, assignmentIntFilters)

	total, err := countQuery(ctx, r.storage, base)
	if err != nil || total == 0 {
		return []entities.Assignment{}, total, err
	}
	builder := db.ApplyListParams(base.Columns(assignmentColumns...), filter, assignmentSort, "assigned_date DESC")
	list, err := r.query(ctx, builder)
	return list, total, err
}

func (r *AssignmentRepository) GetByUser(ctx context.Context, userID string, activeOnly bool) ([]entities.Assignment, error) {
	builder := r.selectActive().Where(sq.Eq{"assigned_to_user_id": userID})
	if activeOnly {
		builder = builder.Where(sq.Eq{"status": entities.AssignmentStatusAssigned})
	}
	return r.query(ctx, builder.OrderBy("assigned_date DESC"))
}

func (r *AssignmentRepository) query(ctx context.Context, builder sq.SelectBuilder) ([]entities.Assignment, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]entities.Assignment, 0)
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *a)
	}
	return list, rows.Err()
}

func (r *AssignmentRepository) Create(ctx context.Context, tx pgx.Tx, a *entities.Assignment) error {
	query, args, err := psql.Insert(assignmentTable).
		Columns(assignmentColumns...).
		Values(
			a.ID, a.EquipmentID, a.AssignedToUserID, a.AssignedToDepartment, clock.UTC(a.AssignedDate), clock.UTCPtr(a.ReturnDate),
			a.Status, a.Notes, a.AssignedBy, a.Version, a.IsDeleted, clock.UTC(a.CreatedAt), clock.UTCPtr(a.UpdatedAt),
		).ToSql()
	if err != nil {
		return err
	}
	if _, err := pick(r.storage, tx).Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert assignment: %w", err)
	}
	return nil
}

func (r *AssignmentRepository) Update(ctx context.Context, tx pgx.Tx, a *entities.Assignment) error {
	builder := psql.Update(assignmentTable).
		Set("assigned_to_user_id", a.AssignedToUserID).
		Set("assigned_to_department", a.AssignedToDepartment).
		Set("assigned_date", clock.UTC(a.AssignedDate)).
		Set("return_date", clock.UTCPtr(a.ReturnDate)).
		Set("status", a.Status).
		Set("notes", a.Notes).
		Set("is_deleted", a.IsDeleted).
		Set("updated_at", clock.UTCPtr(a.UpdatedAt))
	if err := execVersioned(ctx, pick(r.storage, tx), builder, "Assignment", a.ID, a.Version); err != nil {
		return err
	}
	a.Version++
	return nil
}
