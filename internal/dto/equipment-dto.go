package dto

import (
	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
)

type CreateEquipmentDTO struct {
	Code            string      `json:"code" validate:"required,max=50"`
	Name            string      `json:"name" validate:"required,max=200"`
	Type            string      `json:"type" validate:"required,max=100"`
	Description     null.String `json:"description" validate:"omitempty,max=2000"`
	Specification   null.String `json:"specification" validate:"omitempty,max=4000"`
	PurchaseDate    null.Time   `json:"purchase_date" validate:"omitempty,notfuture"`
	Supplier        null.String `json:"supplier" validate:"omitempty,max=200"`
	Price           float64     `json:"price" validate:"gte=0"`
	WarrantyEndDate null.Time   `json:"warranty_end_date"`
	ImageURL        null.String `json:"image_url" validate:"omitempty,max=500"`
}

// UpdateEquipmentDTO applies only the fields that are present.
type UpdateEquipmentDTO struct {
	Name            null.String  `json:"name" validate:"omitempty,max=200"`
	Type            null.String  `json:"type" validate:"omitempty,max=100"`
	Description     null.String  `json:"description" validate:"omitempty,max=2000"`
	Specification   null.String  `json:"specification" validate:"omitempty,max=4000"`
	PurchaseDate    null.Time    `json:"purchase_date" validate:"omitempty,notfuture"`
	Supplier        null.String  `json:"supplier" validate:"omitempty,max=200"`
	Price           null.Float64 `json:"price" validate:"omitempty,gte=0"`
	WarrantyEndDate null.Time    `json:"warranty_end_date"`
	Status          null.Int     `json:"status" validate:"omitempty,min=1,max=6"`
	ImageURL        null.String  `json:"image_url" validate:"omitempty,max=500"`
	ExpectedVersion null.Int     `json:"expected_version"`
}

// EquipmentListQuery mirrors the cache key of the list endpoint.
type EquipmentListQuery struct {
	Page     int
	PageSize int
	Type     string
	Status   int
	Keyword  string
}

type ImportRowErrorDTO struct {
	Row     int    `json:"row"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ImportRegisterResultDTO struct {
	TotalRows    int                 `json:"total_rows"`
	CreatedCount int                 `json:"created_count"`
	FailureCount int                 `json:"failure_count"`
	CreatedIDs   []uuid.UUID         `json:"created_ids"`
	Errors       []ImportRowErrorDTO `json:"errors"`
}
