package entities

import (
	"time"

	"github.com/google/uuid"

	"equipment-system/pkg/types"
)

type MaintenanceStatus int

const (
	MaintenanceStatusPending MaintenanceStatus = iota + 1
	MaintenanceStatusInProgress
	MaintenanceStatusCompleted
	MaintenanceStatusCancelled
)

func (s MaintenanceStatus) String() string {
	switch s {
	case MaintenanceStatusPending:
		return "Pending"
	case MaintenanceStatusInProgress:
		return "InProgress"
	case MaintenanceStatusCompleted:
		return "Completed"
	case MaintenanceStatusCancelled:
		return "Cancelled"
	}
	return "Unknown"
}

func (s MaintenanceStatus) IsValid() bool {
	return s >= MaintenanceStatusPending && s <= MaintenanceStatusCancelled
}

// IsOpen reports whether the request still holds the equipment.
func (s MaintenanceStatus) IsOpen() bool {
	return s == MaintenanceStatusPending || s == MaintenanceStatusInProgress
}

type MaintenanceRequest struct {
	types.BaseEntity
	types.SoftDelete
	types.Versioned

	EquipmentID  uuid.UUID         `json:"equipment_id"`
	RequesterID  string            `json:"requester_id"`
	TechnicianID *string           `json:"technician_id,omitempty"`
	Description  string            `json:"description"`
	Cost         *float64          `json:"cost,omitempty"`
	RequestDate  time.Time         `json:"request_date"`
	StartDate    *time.Time        `json:"start_date,omitempty"`
	EndDate      *time.Time        `json:"end_date,omitempty"`
	Status       MaintenanceStatus `json:"status"`
	Notes        *string           `json:"notes,omitempty"`
}

func (m *MaintenanceRequest) HasTechnician() bool {
	return m.TechnicianID != nil && *m.TechnicianID != ""
}
