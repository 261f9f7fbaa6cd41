package seeders

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"equipment-system/internal/dto"
	"equipment-system/internal/entities"
	"equipment-system/internal/services"
	apperrors "equipment-system/pkg/errors"
)

type recordingWarehouse struct {
	services.WarehouseServiceInterface
	existing map[string]bool
	created  []string
}

func (r *recordingWarehouse) CreateWarehouseItem(ctx context.Context, payload dto.CreateWarehouseItemDTO) (*entities.WarehouseItem, error) {
	if r.existing[payload.EquipmentType] {
		return nil, apperrors.NewValidationError("EquipmentType", "Equipment type already exists in warehouse")
	}
	r.created = append(r.created, payload.EquipmentType)
	return &entities.WarehouseItem{EquipmentType: payload.EquipmentType}, nil
}

type failingEquipment struct {
	services.EquipmentServiceInterface
}

func (failingEquipment) CreateEquipment(ctx context.Context, payload dto.CreateEquipmentDTO) (*entities.Equipment, error) {
	return nil, errors.New("connection reset")
}

func TestSeedWarehouseSkipsExistingTypes(t *testing.T) {
	warehouse := &recordingWarehouse{existing: map[string]bool{"Laptop": true}}
	seeder := New(warehouse, nil, zap.NewNop())

	require.NoError(t, seeder.SeedWarehouse(context.Background()))
	assert.Len(t, warehouse.created, len(warehouseItemsData)-1)
	assert.NotContains(t, warehouse.created, "Laptop")
}

func TestSeedEquipmentStopsOnFailure(t *testing.T) {
	seeder := New(nil, failingEquipment{}, zap.NewNop())
	assert.EqualError(t, seeder.SeedEquipment(context.Background()), "connection reset")
}
