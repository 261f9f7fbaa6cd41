package listeners

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"equipment-system/internal/events"
	"equipment-system/pkg/eventbus"
)

// AlertListener turns domain events into structured log lines for the operators.
type AlertListener struct {
	logger *zap.Logger
}

func NewAlertListener(logger *zap.Logger) *AlertListener {
	return &AlertListener{logger: logger}
}

func (l *AlertListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(events.StockLowName, l.onStockLow)
	bus.Subscribe(events.EquipmentStatusChangedName, l.onStatusChanged)
}

func (l *AlertListener) onStockLow(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.StockLowEvent)
	if !ok {
		return fmt.Errorf("unexpected event %T", event)
	}
	l.logger.Warn("warehouse stock is low",
		zap.String("equipment_type", e.Item.EquipmentType),
		zap.Int("quantity", e.Item.Quantity),
		zap.Int("min_threshold", e.Item.MinThreshold),
	)
	return nil
}

func (l *AlertListener) onStatusChanged(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.EquipmentStatusChangedEvent)
	if !ok {
		return fmt.Errorf("unexpected event %T", event)
	}
	l.logger.Info("equipment status changed",
		zap.String("equipment_id", e.EquipmentID.String()),
		zap.String("code", e.Code),
		zap.Stringer("from", e.From),
		zap.Stringer("to", e.To),
		zap.String("cause", e.Cause),
		zap.String("actor", e.Actor),
	)
	return nil
}
