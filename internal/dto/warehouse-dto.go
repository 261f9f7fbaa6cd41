package dto

import (
	"github.com/aarondl/null/v8"
	"github.com/google/uuid"

	"equipment-system/internal/entities"
)

type CreateWarehouseItemDTO struct {
	EquipmentType string      `json:"equipment_type" validate:"required,max=200"`
	Quantity      int         `json:"quantity" validate:"gte=0"`
	MinThreshold  int         `json:"min_threshold" validate:"gte=0"`
	Notes         null.String `json:"notes" validate:"omitempty,max=500"`
}

// UpdateWarehouseItemDTO: a new quantity is booked as an adjustment, never written directly.
type UpdateWarehouseItemDTO struct {
	EquipmentType   null.String `json:"equipment_type" validate:"omitempty,max=200"`
	Quantity        null.Int    `json:"quantity" validate:"omitempty,gte=0"`
	MinThreshold    null.Int    `json:"min_threshold" validate:"omitempty,gte=0"`
	Notes           null.String `json:"notes" validate:"omitempty,max=500"`
	ExpectedVersion null.Int    `json:"expected_version"`
}

type CreateWarehouseTransactionDTO struct {
	WarehouseItemID uuid.UUID                         `json:"warehouse_item_id" validate:"required"`
	Type            entities.WarehouseTransactionType `json:"type" validate:"required,min=1,max=3"`
	Quantity        int                               `json:"quantity" validate:"gt=0"`
	Reason          null.String                       `json:"reason" validate:"omitempty,max=500"`
	PerformedBy     string                            `json:"performed_by" validate:"required,max=200"`
}

type StockChangeResultDTO struct {
	TransactionID uuid.UUID                     `json:"transaction_id"`
	Item          entities.WarehouseItem        `json:"item"`
	Transaction   entities.WarehouseTransaction `json:"transaction"`
}
