package dto

import (
	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
)

type CreateAssignmentDTO struct {
	EquipmentID          uuid.UUID   `json:"equipment_id" validate:"required"`
	AssignedToUserID     null.String `json:"assigned_to_user_id" validate:"omitempty,max=100"`
	AssignedToDepartment null.String `json:"assigned_to_department" validate:"omitempty,max=200"`
	AssignedDate         null.Time   `json:"assigned_date"`
	Notes                null.String `json:"notes" validate:"omitempty,max=1000"`
	AssignedBy           null.String `json:"assigned_by" validate:"omitempty,max=200"`
	ExpectedVersion      null.Int    `json:"expected_version"`
}

type ReturnAssignmentDTO struct {
	ReturnNotes      null.String `json:"return_notes" validate:"omitempty,max=1000"`
	NeedsMaintenance bool        `json:"needs_maintenance"`
	ReturnedBy       null.String `json:"returned_by" validate:"omitempty,max=200"`
	ExpectedVersion  null.Int    `json:"expected_version"`
}

type UpdateAssignmentDTO struct {
	AssignedDate         null.Time   `json:"assigned_date"`
	Notes                null.String `json:"notes" validate:"omitempty,max=1000"`
	AssignedToUserID     null.String `json:"assigned_to_user_id" validate:"omitempty,max=100"`
	AssignedToDepartment null.String `json:"assigned_to_department" validate:"omitempty,max=200"`
	ExpectedVersion      null.Int    `json:"expected_version"`
}

type MarkAssignmentLostDTO struct {
	Notes           null.String `json:"notes" validate:"omitempty,max=1000"`
	ReportedBy      null.String `json:"reported_by" validate:"omitempty,max=200"`
	ExpectedVersion null.Int    `json:"expected_version"`
}
