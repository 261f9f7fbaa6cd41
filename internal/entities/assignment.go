package entities

import (
	"time"

	"github.com/google/uuid"

	"equipment-system/pkg/types"
)

type AssignmentStatus int

const (
	AssignmentStatusAssigned AssignmentStatus = iota + 1
	AssignmentStatusReturned
	AssignmentStatusLost
)

func (s AssignmentStatus) String() string {
	switch s {
	case AssignmentStatusAssigned:
		return "Assigned"
	case AssignmentStatusReturned:
		return "Returned"
	case AssignmentStatusLost:
		return "Lost"
	}
	return "Unknown"
}

func (s AssignmentStatus) IsValid() bool {
	return s >= AssignmentStatusAssigned && s <= AssignmentStatusLost
}

type Assignment struct {
	types.BaseEntity
	types.SoftDelete
	types.Versioned

	EquipmentID          uuid.UUID        `json:"equipment_id"`
	AssignedToUserID     *string          `json:"assigned_to_user_id,omitempty"`
	AssignedToDepartment *string          `json:"assigned_to_department,omitempty"`
	AssignedDate         time.Time        `json:"assigned_date"`
	ReturnDate           *time.Time       `json:"return_date,omitempty"`
	Status               AssignmentStatus `json:"status"`
	Notes                *string          `json:"notes,omitempty"`
	AssignedBy           *string          `json:"assigned_by,omitempty"`
}

// Assignee is the user id, or the department when the equipment went to a team.
func (a *Assignment) Assignee() string {
	if a.AssignedToUserID != nil && *a.AssignedToUserID != "" {
		return *a.AssignedToUserID
	}
	if a.AssignedToDepartment != nil {
		return *a.AssignedToDepartment
	}
	return ""
}
