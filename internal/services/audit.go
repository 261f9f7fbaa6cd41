package services

import (
	"context"
	"fmt"
	"strings"
	"time"

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

type AuditServiceInterface interface {
	CreateAuditRecord(ctx context.Context, payload dto.CreateAuditRecordDTO) (*entities.AuditRecord, error)
	BatchCreateAuditRecords(ctx context.Context, payload dto.BatchCreateAuditRecordsDTO) (*dto.BatchCreateAuditResultDTO, error)
	UpdateAuditRecord(ctx context.Context, id uuid.UUID, payload dto.UpdateAuditRecordDTO) (*entities.AuditRecord, error)
	FindAuditRecord(ctx context.Context, id uuid.UUID) (*entities.AuditRecord, error)
	GetAuditRecords(ctx context.Context, filter types.Filter) ([]entities.AuditRecord, uint64, error)
	GetByEquipment(ctx context.Context, equipmentID uuid.UUID) ([]entities.AuditRecord, error)
	GetForSync(ctx context.Context, since time.Time) ([]entities.AuditRecord, error)
}

type AuditService struct {
	*BaseService
	auditRepository     repositories.AuditRepositoryInterface
	equipmentRepository repositories.EquipmentRepositoryInterface
	txManager           repositories.TxManagerInterface
}

func NewAuditService(
	base *BaseService,
	auditRepository repositories.AuditRepositoryInterface,
	equipmentRepository repositories.EquipmentRepositoryInterface,
	txManager repositories.TxManagerInterface,
) AuditServiceInterface {
	return &AuditService{
		BaseService:         base,
		auditRepository:     auditRepository,
		equipmentRepository: equipmentRepository,
		txManager:           txManager,
	}
}

func (s *AuditService) newRecord(payload dto.CreateAuditRecordDTO, now time.Time) entities.AuditRecord {
	checkDate := now
	if payload.CheckDate.Valid {
		checkDate = payload.CheckDate.Time.UTC()
	}
	return entities.AuditRecord{
		BaseEntity:      types.BaseEntity{ID: uuid.New(), CreatedAt: now},
		EquipmentID:     payload.EquipmentID,
		CheckDate:       checkDate,
		CheckedByUserID: strings.TrimSpace(payload.CheckedByUserID),
		Result:          payload.Result,
		Note:            utils.NonEmptyPtr(strings.TrimSpace(payload.Note.String)),
		Location:        utils.NonEmptyPtr(strings.TrimSpace(payload.Location.String)),
		LastSyncDate:    now,
	}
}

func (s *AuditService) CreateAuditRecord(ctx context.Context, payload dto.CreateAuditRecordDTO) (*entities.AuditRecord, error) {
	if !payload.Result.IsValid() {
		return nil, apperrors.NewValidationError("Result", "Invalid audit result")
	}
	if _, err := s.equipmentRepository.FindByID(ctx, payload.EquipmentID); err != nil {
		return nil, err
	}

	record := s.newRecord(payload, s.now())
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		return s.auditRepository.Create(ctx, tx, &record)
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// BatchCreateAuditRecords stores every record whose equipment exists. Failed records are
// reported per index and never abort the batch.
func (s *AuditService) BatchCreateAuditRecords(ctx context.Context, payload dto.BatchCreateAuditRecordsDTO) (*dto.BatchCreateAuditResultDTO, error) {
	if len(payload.Records) > dto.MaxAuditBatchSize {
		return nil, apperrors.NewValidationError("Records", fmt.Sprintf("Batch can contain at most %d records", dto.MaxAuditBatchSize))
	}

	ids := make([]uuid.UUID, 0, len(payload.Records))
	seen := make(map[uuid.UUID]struct{}, len(payload.Records))
	for _, r := range payload.Records {
		if _, ok := seen[r.EquipmentID]; !ok {
			seen[r.EquipmentID] = struct{}{}
			ids = append(ids, r.EquipmentID)
		}
	}
	known, err := s.equipmentRepository.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := &dto.BatchCreateAuditResultDTO{
		TotalRecords: len(payload.Records),
		CreatedIDs:   []uuid.UUID{},
		Errors:       []dto.BatchAuditErrorDTO{},
	}
	now := s.now()
	records := make([]entities.AuditRecord, 0, len(payload.Records))
	for i, r := range payload.Records {
		if _, ok := known[r.EquipmentID]; !ok {
			result.Errors = append(result.Errors, dto.BatchAuditErrorDTO{
				Index: i, EquipmentID: r.EquipmentID, Message: fmt.Sprintf("Equipment with ID %s not found", r.EquipmentID),
			})
			continue
		}
		if !r.Result.IsValid() {
			result.Errors = append(result.Errors, dto.BatchAuditErrorDTO{
				Index: i, EquipmentID: r.EquipmentID, Message: "Invalid audit result",
			})
			continue
		}
		records = append(records, s.newRecord(r, now))
	}

	if len(records) > 0 {
		err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
			return s.auditRepository.CreateBatch(ctx, tx, records)
		})
		if err != nil {
			return nil, err
		}
		for _, r := range records {
			result.CreatedIDs = append(result.CreatedIDs, r.ID)
		}
	}
	result.SuccessCount = len(records)
	result.FailureCount = len(result.Errors)

	s.logger.Info("audit batch processed",
		zap.Int("total", result.TotalRecords),
		zap.Int("success", result.SuccessCount),
		zap.Int("failed", result.FailureCount),
	)
	return result, nil
}

func (s *AuditService) UpdateAuditRecord(ctx context.Context, id uuid.UUID, payload dto.UpdateAuditRecordDTO) (*entities.AuditRecord, error) {
	record, err := s.auditRepository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if payload.Result.Valid {
		result := entities.AuditResult(payload.Result.Int)
		if !result.IsValid() {
			return nil, apperrors.NewValidationError("Result", "Invalid audit result")
		}
		record.Result = result
	}
	if payload.Note.Valid {
		record.Note = utils.NonEmptyPtr(strings.TrimSpace(payload.Note.String))
	}
	if payload.Location.Valid {
		record.Location = utils.NonEmptyPtr(strings.TrimSpace(payload.Location.String))
	}
	now := s.now()
	record.LastSyncDate = now
	record.UpdatedAt = &now

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		return s.auditRepository.Update(ctx, tx, record)
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (s *AuditService) FindAuditRecord(ctx context.Context, id uuid.UUID) (*entities.AuditRecord, error) {
	return s.auditRepository.FindByID(ctx, id)
}

func (s *AuditService) GetAuditRecords(ctx context.Context, filter types.Filter) ([]entities.AuditRecord, uint64, error) {
	return s.auditRepository.GetAuditRecords(ctx, filter)
}

func (s *AuditService) GetByEquipment(ctx context.Context, equipmentID uuid.UUID) ([]entities.AuditRecord, error) {
	return s.auditRepository.GetByEquipment(ctx, equipmentID)
}

// GetForSync returns what changed after since, for mobile clients catching up.
func (s *AuditService) GetForSync(ctx context.Context, since time.Time) ([]entities.AuditRecord, error) {
	return s.auditRepository.GetForSync(ctx, since.UTC())
}
