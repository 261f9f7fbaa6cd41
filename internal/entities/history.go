package entities

import (
	"time"

	"github.com/google/uuid"
)

type AggregateType string

const (
	AggregateEquipment   AggregateType = "equipment"
	AggregateAssignment  AggregateType = "assignment"
	AggregateMaintenance AggregateType = "maintenance"
	AggregateLiquidation AggregateType = "liquidation"
)

type HistoryKind string

const (
	HistoryCreated            HistoryKind = "created"
	HistoryUpdated            HistoryKind = "updated"
	HistoryDeleted            HistoryKind = "deleted"
	HistoryStatusChanged      HistoryKind = "status_changed"
	HistoryReturned           HistoryKind = "returned"
	HistoryMarkedLost         HistoryKind = "marked_lost"
	HistoryTechnicianAssigned HistoryKind = "technician_assigned"
	HistoryStarted            HistoryKind = "started"
	HistoryCompleted          HistoryKind = "completed"
	HistoryCancelled          HistoryKind = "cancelled"
	HistoryApproved           HistoryKind = "approved"
	HistoryRejected           HistoryKind = "rejected"
)

// HistoryEvent is an append-only record of something that happened to an aggregate.
type HistoryEvent struct {
	ID            uuid.UUID     `json:"id"`
	AggregateType AggregateType `json:"aggregate_type"`
	AggregateID   uuid.UUID     `json:"aggregate_id"`
	Kind          HistoryKind   `json:"kind"`
	Actor         string        `json:"actor"`
	Text          string        `json:"text,omitempty"`
	OccurredAt    time.Time     `json:"occurred_at"`
}
