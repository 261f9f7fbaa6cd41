package seeders

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"equipment-system/internal/services"
	apperrors "equipment-system/pkg/errors"
)

// Seeder goes through the services so that seeded stock has an opening ledger entry
// and every piece of equipment gets its QR code and history.
type Seeder struct {
	warehouse services.WarehouseServiceInterface
	equipment services.EquipmentServiceInterface
	logger    *zap.Logger
}

func New(warehouse services.WarehouseServiceInterface, equipment services.EquipmentServiceInterface, logger *zap.Logger) *Seeder {
	return &Seeder{warehouse: warehouse, equipment: equipment, logger: logger}
}

// SeedWarehouse skips equipment types that already have a stock row.
func (s *Seeder) SeedWarehouse(ctx context.Context) error {
	created := 0
	for _, item := range warehouseItemsData {
		_, err := s.warehouse.CreateWarehouseItem(ctx, item)
		if isDuplicate(err) {
			s.logger.Debug("warehouse item exists, skipped", zap.String("equipment_type", item.EquipmentType))
			continue
		}
		if err != nil {
			return err
		}
		created++
	}
	s.logger.Info("Склад заполнен", zap.Int("created", created), zap.Int("total", len(warehouseItemsData)))
	return nil
}

// SeedEquipment skips codes that are already registered.
func (s *Seeder) SeedEquipment(ctx context.Context) error {
	created := 0
	for _, equipment := range equipmentsData {
		_, err := s.equipment.CreateEquipment(ctx, equipment)
		if isDuplicate(err) {
			s.logger.Debug("equipment exists, skipped", zap.String("code", equipment.Code))
			continue
		}
		if err != nil {
			return err
		}
		created++
	}
	s.logger.Info("Оборудование добавлено", zap.Int("created", created), zap.Int("total", len(equipmentsData)))
	return nil
}

func isDuplicate(err error) bool {
	var vErr *apperrors.ValidationError
	return errors.As(err, &vErr)
}
