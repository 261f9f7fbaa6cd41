package dto

import (
	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
)

type CreateMaintenanceDTO struct {
	EquipmentID uuid.UUID   `json:"equipment_id" validate:"required"`
	RequesterID string      `json:"requester_id" validate:"required,max=100"`
	Description string      `json:"description" validate:"required,max=2000"`
	Notes       null.String `json:"notes" validate:"omitempty,max=2000"`
}

type AssignTechnicianDTO struct {
	TechnicianID    string      `json:"technician_id" validate:"required,max=100"`
	AssignmentNotes null.String `json:"assignment_notes" validate:"omitempty,max=1000"`
	ExpectedVersion null.Int    `json:"expected_version"`
}

type StartMaintenanceDTO struct {
	TechnicianID    string      `json:"technician_id" validate:"required,max=100"`
	StartNotes      null.String `json:"start_notes" validate:"omitempty,max=1000"`
	ExpectedVersion null.Int    `json:"expected_version"`
}

type CompleteMaintenanceDTO struct {
	TechnicianID          string      `json:"technician_id" validate:"required,max=100"`
	Cost                  float64     `json:"cost"`
	CompletionNotes       null.String `json:"completion_notes" validate:"omitempty,max=1000"`
	StillNeedsMaintenance bool        `json:"still_needs_maintenance"`
	ExpectedVersion       null.Int    `json:"expected_version"`
}

type CancelMaintenanceDTO struct {
	CancellationReason string      `json:"cancellation_reason" validate:"required,max=500"`
	CancelledBy        null.String `json:"cancelled_by" validate:"omitempty,max=200"`
	ExpectedVersion    null.Int    `json:"expected_version"`
}

type UpdateMaintenanceDTO struct {
	Description     null.String `json:"description" validate:"omitempty,max=2000"`
	Notes           null.String `json:"notes" validate:"omitempty,max=2000"`
	ExpectedVersion null.Int    `json:"expected_version"`
}
