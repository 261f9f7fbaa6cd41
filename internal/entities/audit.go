package entities

import (
	"time"

	"github.com/google/uuid"

	"equipment-system/pkg/types"
)

type AuditResult int

const (
	AuditResultMatch AuditResult = iota + 1
	AuditResultNotMatch
	AuditResultMissing
)

func (r AuditResult) String() string {
	switch r {
	case AuditResultMatch:
		return "Match"
	case AuditResultNotMatch:
		return "NotMatch"
	case AuditResultMissing:
		return "Missing"
	}
	return "Unknown"
}

func (r AuditResult) IsValid() bool {
	return r >= AuditResultMatch && r <= AuditResultMissing
}

type AuditRecord struct {
	types.BaseEntity
	types.SoftDelete

	EquipmentID     uuid.UUID   `json:"equipment_id"`
	CheckDate       time.Time   `json:"check_date"`
	CheckedByUserID string      `json:"checked_by_user_id"`
	Result          AuditResult `json:"result"`
	Note            *string     `json:"note,omitempty"`
	Location        *string     `json:"location,omitempty"`
	LastSyncDate    time.Time   `json:"last_sync_date"`
}
