package entities

import (
	"time"

	"github.com/google/uuid"

	"equipment-system/pkg/types"
)

type WarehouseTransactionType int

const (
	WarehouseTransactionImport WarehouseTransactionType = iota + 1
	WarehouseTransactionExport
	WarehouseTransactionAdjustment
)

func (t WarehouseTransactionType) String() string {
	switch t {
	case WarehouseTransactionImport:
		return "Import"
	case WarehouseTransactionExport:
		return "Export"
	case WarehouseTransactionAdjustment:
		return "Adjustment"
	}
	return "Unknown"
}

func (t WarehouseTransactionType) IsValid() bool {
	return t >= WarehouseTransactionImport && t <= WarehouseTransactionAdjustment
}

type WarehouseItem struct {
	types.BaseEntity
	types.SoftDelete
	types.Versioned

	EquipmentType string  `json:"equipment_type"`
	Quantity      int     `json:"quantity"`
	MinThreshold  int     `json:"min_threshold"`
	Notes         *string `json:"notes,omitempty"`
}

func (w *WarehouseItem) IsLowStock() bool {
	return w.Quantity <= w.MinThreshold
}

// WarehouseTransaction is one ledger row. For adjustments Quantity is the signed delta.
type WarehouseTransaction struct {
	ID              uuid.UUID                `json:"id"`
	WarehouseItemID uuid.UUID                `json:"warehouse_item_id"`
	Type            WarehouseTransactionType `json:"type"`
	Quantity        int                      `json:"quantity"`
	Reason          *string                  `json:"reason,omitempty"`
	PerformedBy     string                   `json:"performed_by"`
	TransactionDate time.Time                `json:"transaction_date"`
	CreatedAt       time.Time                `json:"created_at"`
}

// LedgerEntry is a transaction joined with the stock row it moved.
type LedgerEntry struct {
	WarehouseTransaction
	EquipmentType string `json:"equipment_type"`
}
