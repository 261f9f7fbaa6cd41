package entities

import (
	"time"

	"equipment-system/pkg/types"
)

type EquipmentStatus int

const (
	EquipmentStatusNew EquipmentStatus = iota + 1
	EquipmentStatusInUse
	EquipmentStatusBroken
	EquipmentStatusRepairing
	EquipmentStatusLost
	EquipmentStatusLiquidated
)

var equipmentStatusNames = map[EquipmentStatus]string{
	EquipmentStatusNew:        "New",
	EquipmentStatusInUse:      "InUse",
	EquipmentStatusBroken:     "Broken",
	EquipmentStatusRepairing:  "Repairing",
	EquipmentStatusLost:       "Lost",
	EquipmentStatusLiquidated: "Liquidated",
}

func (s EquipmentStatus) String() string {
	if name, ok := equipmentStatusNames[s]; ok {
		return name
	}
	return "Unknown"
}

func (s EquipmentStatus) IsValid() bool {
	_, ok := equipmentStatusNames[s]
	return ok
}

type Equipment struct {
	types.BaseEntity
	types.SoftDelete
	types.Versioned

	Code            string          `json:"code"`
	Name            string          `json:"name"`
	Type            string          `json:"type"`
	Description     *string         `json:"description,omitempty"`
	Specification   *string         `json:"specification,omitempty"`
	PurchaseDate    *time.Time      `json:"purchase_date,omitempty"`
	Supplier        *string         `json:"supplier,omitempty"`
	Price           float64         `json:"price"`
	WarrantyEndDate *time.Time      `json:"warranty_end_date,omitempty"`
	Status          EquipmentStatus `json:"status"`
	ImageURL        *string         `json:"image_url,omitempty"`
	QRCodeBase64    string          `json:"qr_code_base64,omitempty"`
}
