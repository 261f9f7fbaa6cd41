package entities

import (
	"time"

	"github.com/google/uuid"

	"equipment-system/pkg/types"
)

type LiquidationStatus int

const (
	LiquidationStatusPending LiquidationStatus = iota + 1
	LiquidationStatusApproved
	LiquidationStatusRejected
)

func (s LiquidationStatus) String() string {
	switch s {
	case LiquidationStatusPending:
		return "Pending"
	case LiquidationStatusApproved:
		return "Approved"
	case LiquidationStatusRejected:
		return "Rejected"
	}
	return "Unknown"
}

func (s LiquidationStatus) IsValid() bool {
	return s >= LiquidationStatusPending && s <= LiquidationStatusRejected
}

type LiquidationRequest struct {
	types.BaseEntity
	types.SoftDelete
	types.Versioned

	EquipmentID      uuid.UUID         `json:"equipment_id"`
	LiquidationValue float64           `json:"liquidation_value"`
	Status           LiquidationStatus `json:"status"`
	DecidedBy        *string           `json:"decided_by,omitempty"`
	RequestDate      time.Time         `json:"request_date"`
	DecisionDate     *time.Time        `json:"decision_date,omitempty"`
	Note             *string           `json:"note,omitempty"`
}
