package dto

import (
	"github.com/aarondl/null/v8"
	"github.com/google/uuid"

	"equipment-system/internal/entities"
)

const MaxAuditBatchSize = 1000

type CreateAuditRecordDTO struct {
	EquipmentID     uuid.UUID            `json:"equipment_id" validate:"required"`
	CheckDate       null.Time            `json:"check_date" validate:"omitempty,notfuture"`
	CheckedByUserID string               `json:"checked_by_user_id" validate:"required,max=100"`
	Result          entities.AuditResult `json:"result" validate:"required,min=1,max=3"`
	Note            null.String          `json:"note" validate:"omitempty,max=1000"`
	Location        null.String          `json:"location" validate:"omitempty,max=200"`
}

type BatchCreateAuditRecordsDTO struct {
	Records []CreateAuditRecordDTO `json:"records" validate:"required,min=1,max=1000,dive"`
}

type UpdateAuditRecordDTO struct {
	Result   null.Int    `json:"result" validate:"omitempty,min=1,max=3"`
	Note     null.String `json:"note" validate:"omitempty,max=1000"`
	Location null.String `json:"location" validate:"omitempty,max=200"`
}

type BatchAuditErrorDTO struct {
	Index       int       `json:"index"`
	EquipmentID uuid.UUID `json:"equipment_id"`
	Message     string    `json:"message"`
}

type BatchCreateAuditResultDTO struct {
	TotalRecords int                  `json:"total_records"`
	SuccessCount int                  `json:"success_count"`
	FailureCount int                  `json:"failure_count"`
	CreatedIDs   []uuid.UUID          `json:"created_ids"`
	Errors       []BatchAuditErrorDTO `json:"errors"`
}
