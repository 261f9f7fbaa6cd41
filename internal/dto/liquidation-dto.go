package dto

import (
	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
)

type CreateLiquidationDTO struct {
	EquipmentID      uuid.UUID   `json:"equipment_id" validate:"required"`
	LiquidationValue float64     `json:"liquidation_value" validate:"gte=0"`
	Note             null.String `json:"note" validate:"omitempty,max=1000"`
}

type ApproveLiquidationDTO struct {
	ApprovedBy       string      `json:"approved_by" validate:"required,max=200"`
	LiquidationValue float64     `json:"liquidation_value" validate:"gte=0"`
	ApprovalNotes    null.String `json:"approval_notes" validate:"omitempty,max=1000"`
	ExpectedVersion  null.Int    `json:"expected_version"`
}

type RejectLiquidationDTO struct {
	RejectedBy      string   `json:"rejected_by" validate:"required,max=200"`
	RejectionReason string   `json:"rejection_reason" validate:"required,max=1000"`
	ExpectedVersion null.Int `json:"expected_version"`
}

type UpdateLiquidationDTO struct {
	LiquidationValue null.Float64 `json:"liquidation_value" validate:"omitempty,gte=0"`
	Note             null.String  `json:"note" validate:"omitempty,max=1000"`
	ExpectedVersion  null.Int     `json:"expected_version"`
}
