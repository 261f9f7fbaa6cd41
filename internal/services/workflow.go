package services

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"equipment-system/internal/entities"
	"equipment-system/internal/events"
	"equipment-system/internal/repositories"
	"equipment-system/pkg/eventbus"
)

// outcome collects what one workflow step produced inside its transaction. History is
// written before commit, events are published after it.
type outcome struct {
	history       []entities.HistoryEvent
	events        []eventbus.Event
	statusChanged bool
}

func (o *outcome) record(events ...entities.HistoryEvent) {
	o.history = append(o.history, events...)
}

func (o *outcome) raise(events ...eventbus.Event) {
	o.events = append(o.events, events...)
}

// moveEquipment sets the equipment status and persists it when it actually changed.
func (s *BaseService) moveEquipment(
	ctx context.Context,
	tx pgx.Tx,
	repo repositories.EquipmentRepositoryInterface,
	o *outcome,
	equipment *entities.Equipment,
	next entities.EquipmentStatus,
	cause, actor string,
) error {
	if equipment.Status == next {
		return nil
	}
	prev := equipment.Status
	now := s.now()
	equipment.Status = next
	equipment.UpdatedAt = &now
	if err := repo.Update(ctx, tx, equipment); err != nil {
		return err
	}

	o.statusChanged = true
	o.record(s.historyEvent(entities.AggregateEquipment, equipment.ID, entities.HistoryStatusChanged, actor,
		fmt.Sprintf("%s -> %s (%s)", prev, next, cause)))
	o.raise(events.EquipmentStatusChangedEvent{
		EquipmentID: equipment.ID,
		Code:        equipment.Code,
		From:        prev,
		To:          next,
		Cause:       cause,
		Actor:       actor,
	})
	return nil
}

func (s *BaseService) flushHistory(ctx context.Context, tx pgx.Tx, o *outcome) error {
	if len(o.history) == 0 {
		return nil
	}
	return s.appendHistory(ctx, tx, o.history...)
}

// settle runs after commit.
func (s *BaseService) settle(ctx context.Context, o *outcome) {
	if o.statusChanged {
		s.invalidateEquipmentList(ctx)
	}
	s.publish(ctx, o.events...)
}
