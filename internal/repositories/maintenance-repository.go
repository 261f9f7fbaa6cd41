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

const maintenanceTable = "maintenance_requests"

var maintenanceColumns = []string{
	"id", "equipment_id", "requester_id", "technician_id", "description", "cost", "request_date",
	"start_date", "end_date", "status", "notes", "version", "is_deleted", "created_at", "updated_at",
}

var (
	maintenanceFilters    = map[string]string{"equipment_id": "equipment_id", "technician_id": "technician_id", "requester_id": "requester_id"}
	maintenanceIntFilters = map[string]string{"status": "status"}
	maintenanceSort       = map[string]string{"request_date": "request_date", "start_date": "start_date", "end_date": "end_date"}
)

type MaintenanceRepositoryInterface interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entities.MaintenanceRequest, error)
	FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*entities.MaintenanceRequest, error)
	HasOpenForEquipment(ctx context.Context, tx pgx.Tx, equipmentID uuid.UUID) (bool, error)
	GetMaintenanceRequests(ctx context.Context, filter types.Filter) ([]entities.MaintenanceRequest, uint64, error)
	GetPending(ctx context.Context) ([]entities.MaintenanceRequest, error)
	GetByTechnician(ctx context.Context, technicianID string) ([]entities.MaintenanceRequest, error)
	Create(ctx context.Context, tx pgx.Tx, request *entities.MaintenanceRequest) error
	Update(ctx context.Context, tx pgx.Tx, request *entities.MaintenanceRequest) error
}

type MaintenanceRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewMaintenanceRepository(storage *pgxpool.Pool, logger *zap.Logger) MaintenanceRepositoryInterface {
	return &MaintenanceRepository{storage: storage, logger: logger}
}

func scanMaintenance(row pgx.Row) (*entities.MaintenanceRequest, error) {
	var m entities.MaintenanceRequest
	err := row.Scan(
		&m.ID, &m.EquipmentID, &m.RequesterID, &m.TechnicianID, &m.Description, &m.Cost, &m.RequestDate,
		&m.StartDate, &m.EndDate, &m.Status, &m.Notes, &m.Version, &m.IsDeleted, &m.CreatedAt, &m.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan maintenance request: %w", err)
	}
	m.RequestDate = clock.UTC(m.RequestDate)
	m.StartDate = clock.UTCPtr(m.StartDate)
	m.EndDate = clock.UTCPtr(m.EndDate)
	m.CreatedAt = clock.UTC(m.CreatedAt)
	m.UpdatedAt = clock.UTCPtr(m.UpdatedAt)
	return &m, nil
}

func (r *MaintenanceRepository) selectActive() sq.SelectBuilder {
	return psql.Select(maintenanceColumns...).From(maintenanceTable).Where(sq.Eq{"is_deleted": false})
}

func (r *MaintenanceRepository) findOne(ctx context.Context, q querier, builder sq.SelectBuilder, id uuid.UUID) (*entities.MaintenanceRequest, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	m, err := scanMaintenance(q.QueryRow(ctx, query, args...))
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.NewNotFoundError("MaintenanceRequest", id)
	}
	return m, err
}

func (r *MaintenanceRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.MaintenanceRequest, error) {
	return r.findOne(ctx, r.storage, r.selectActive().Where(sq.Eq{"id": id}), id)
}

func (r *MaintenanceRepository) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*entities.MaintenanceRequest, error) {
	return r.findOne(ctx, pick(r.storage, tx), r.selectActive().Where(sq.Eq{"id": id}).Suffix("FOR UPDATE"), id)
}

func (r *MaintenanceRepository) HasOpenForEquipment(ctx context.Context, tx pgx.Tx, equipmentID uuid.UUID) (bool, error) {
	query, args, err := psql.Select("1").From(maintenanceTable).
		Where(sq.Eq{
			"equipment_id": equipmentID,
			"status":       []entities.MaintenanceStatus{entities.MaintenanceStatusPending, entities.MaintenanceStatusInProgress},
			"is_deleted":   false,
		}).
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

func (r *MaintenanceRepository) GetMaintenanceRequests(ctx context.Context, filter types.Filter) ([]entities.MaintenanceRequest, uint64, error) {
	base := psql.Select().From(maintenanceTable).Where(sq.Eq{"is_deleted": false})
	base = db.ApplyFilters(base, filter, maintenanceFilters)
	base = db.ApplyIntFilters(base, filter, maintenanceIntFilters)

	total, err := countQuery(ctx, r.storage, base)
	if err != nil || total == 0 {
		return []entities.MaintenanceRequest{}, total, err
	}
	builder := db.ApplyListParams(base.Columns(maintenanceColumns...), filter, maintenanceSort, "request_date DESC")
	list, err := r.query(ctx, builder)
	return list, total, err
}

// GetPending lists the queue oldest first.
func (r *MaintenanceRepository) GetPending(ctx context.Context) ([]entities.MaintenanceRequest, error) {
	return r.query(ctx, r.selectActive().Where(sq.Eq{"status": entities.MaintenanceStatusPending}).OrderBy("request_date ASC"))
}

func (r *MaintenanceRepository) GetByTechnician(ctx context.Context, technicianID string) ([]entities.MaintenanceRequest, error) {
	return r.query(ctx, r.selectActive().Where(sq.Eq{"technician_id": technicianID}).OrderBy("request_date DESC"))
}

func (r *MaintenanceRepository) query(ctx context.Context, builder sq.SelectBuilder) ([]entities.MaintenanceRequest, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]entities.MaintenanceRequest, 0)
	for rows.Next() {
		m, err := scanMaintenance(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *m)
	}
	return list, rows.Err()
}

func (r *MaintenanceRepository) Create(ctx context.Context, tx pgx.Tx, m *entities.MaintenanceRequest) error {
	query, args, err := psql.Insert(maintenanceTable).
		Columns(maintenanceColumns...).
		Values(
			m.ID, m.EquipmentID, m.RequesterID, m.TechnicianID, m.Description, m.Cost, clock.UTC(m.RequestDate),
			clock.UTCPtr(m.StartDate), clock.UTCPtr(m.EndDate), m.Status, m.Notes, m.Version, m.IsDeleted,
			clock.UTC(m.CreatedAt), clock.UTCPtr(m.UpdatedAt),
		).ToSql()
	if err != nil {
		return err
	}
	if _, err := pick(r.storage, tx).Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert maintenance request: %w", err)
	}
	return nil
}

func (r *MaintenanceRepository) Update(ctx context.Context, tx pgx.Tx, m *entities.MaintenanceRequest) error {
	builder := psql.Update(maintenanceTable).
		Set("technician_id", m.TechnicianID).
		Set("description", m.Description).
		Set("cost", m.Cost).
		Set("start_date", clock.UTCPtr(m.StartDate)).
		Set("end_date", clock.UTCPtr(m.EndDate)).
		Set("status", m.Status).
		Set("notes", m.Notes).
		Set("is_deleted", m.IsDeleted).
		Set("updated_at", clock.UTCPtr(m.UpdatedAt))
	if err := execVersioned(ctx, pick(r.storage, tx), builder, "MaintenanceRequest", m.ID, m.Version); err != nil {
		return err
	}
	m.Version++
	return nil
}
