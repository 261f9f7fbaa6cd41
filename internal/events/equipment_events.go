package events

import (
	"github.com/google/uuid"

	"equipment-system/internal/entities"
)

const (
	EquipmentStatusChangedName = "equipment.status.changed"
	StockLowName               = "warehouse.stock.low"
)

// EquipmentStatusChangedEvent is raised after the transaction that changed the status commits.
type EquipmentStatusChangedEvent struct {
	EquipmentID uuid.UUID
	Code        string
	From        entities.EquipmentStatus
	To          entities.EquipmentStatus
	Cause       string
	Actor       string
}

func (e EquipmentStatusChangedEvent) Name() string { return EquipmentStatusChangedName }

// StockLowEvent is raised when a committed stock change leaves quantity at or below the threshold.
type StockLowEvent struct {
	Item entities.WarehouseItem
}

func (e StockLowEvent) Name() string { return StockLowName }
