package services

import (
	"context"
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equipment-system/internal/dto"
	"equipment-system/internal/entities"
	apperrors "equipment-system/pkg/errors"
)

func (h *harness) openMaintenance(t *testing.T, equipment entities.Equipment) *entities.MaintenanceRequest {
	t.Helper()
	request, err := h.maintenance.CreateMaintenance(context.Background(), dto.CreateMaintenanceDTO{
		EquipmentID: equipment.ID,
		RequesterID: "req-1",
		Description: "Screen flickers",
	})
	require.NoError(t, err)
	return request
}

func requireStatusError(t *testing.T, err error, field, message string) {
	t.Helper()
	var vErr *apperrors.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, []string{message}, vErr.Errors[field])
}

func TestMaintenanceHappyPath(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	laptop := h.seedEquipment("LT-100", "Laptop", entities.EquipmentStatusBroken)

	request := h.openMaintenance(t, laptop)
	assert.Equal(t, entities.MaintenanceStatusPending, request.Status)
	assert.Equal(t, testNow, request.RequestDate)
	assert.Equal(t, entities.EquipmentStatusRepairing, h.db.equipment[laptop.ID].Status)

	_, err := h.maintenance.AssignTechnician(ctx, request.ID, dto.AssignTechnicianDTO{TechnicianID: "tech-1"})
	require.NoError(t, err)

	h.clock.Advance(time.Hour)
	started, err := h.maintenance.StartMaintenance(ctx, request.ID, dto.StartMaintenanceDTO{TechnicianID: "tech-1"})
	require.NoError(t, err)
	assert.Equal(t, entities.MaintenanceStatusInProgress, started.Status)
	assert.Equal(t, testNow.Add(time.Hour), *started.StartDate)

	h.clock.Advance(time.Hour)
	completed, err := h.maintenance.CompleteMaintenance(ctx, request.ID, dto.CompleteMaintenanceDTO{
		TechnicianID: "tech-1",
		Cost:         120.5,
	}, "")
	require.NoError(t, err)
	assert.Equal(t, entities.MaintenanceStatusCompleted, completed.Status)
	assert.Equal(t, 120.5, *completed.Cost)
	assert.Equal(t, testNow.Add(2*time.Hour), *completed.EndDate)
	assert.Equal(t, entities.EquipmentStatusNew, h.db.equipment[laptop.ID].Status)

	history, err := h.maintenance.History(ctx, request.ID)
	require.NoError(t, err)
	kinds := make([]entities.HistoryKind, 0, len(history))
	for _, e := range history {
		kinds = append(kinds, e.Kind)
	}
	assert.Equal(t, []entities.HistoryKind{
		entities.HistoryCreated, entities.HistoryTechnicianAssigned, entities.HistoryStarted, entities.HistoryCompleted,
	}, kinds)
}

func TestStartWithoutTechnician(t *testing.T) {
	h := newHarness(t)
	request := h.openMaintenance(t, h.seedEquipment("LT-101", "Laptop", entities.EquipmentStatusNew))

	_, err := h.maintenance.StartMaintenance(context.Background(), request.ID, dto.StartMaintenanceDTO{TechnicianID: "tech-1"})
	requireStatusError(t, err, "TechnicianID", "Maintenance request must have an assigned technician before starting")
	assert.Equal(t, entities.MaintenanceStatusPending, h.db.maintenance[request.ID].Status)
}

func TestStartByOtherTechnician(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	request := h.openMaintenance(t, h.seedEquipment("LT-102", "Laptop", entities.EquipmentStatusNew))
	_, err := h.maintenance.AssignTechnician(ctx, request.ID, dto.AssignTechnicianDTO{TechnicianID: "tech-1"})
	require.NoError(t, err)

	_, err = h.maintenance.StartMaintenance(ctx, request.ID, dto.StartMaintenanceDTO{TechnicianID: "tech-2"})
	requireStatusError(t, err, "TechnicianID", "Only the assigned technician (tech-1) can start this maintenance")
}

func TestAssignTechnicianTwiceLastWins(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	request := h.openMaintenance(t, h.seedEquipment("LT-103", "Laptop", entities.EquipmentStatusNew))

	_, err := h.maintenance.AssignTechnician(ctx, request.ID, dto.AssignTechnicianDTO{TechnicianID: "tech-1"})
	require.NoError(t, err)
	second, err := h.maintenance.AssignTechnician(ctx, request.ID, dto.AssignTechnicianDTO{
		TechnicianID:    "tech-2",
		AssignmentNotes: null.StringFrom("tech-1 is on leave"),
	})
	require.NoError(t, err)
	assert.Equal(t, "tech-2", *second.TechnicianID)
	assert.Equal(t, 3, second.Version)

	byTech, err := h.maintenance.GetByTechnician(ctx, "tech-2")
	require.NoError(t, err)
	assert.Len(t, byTech, 1)
}

func TestAssignTechnicianOnlyWhilePending(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	request := h.openMaintenance(t, h.seedEquipment("LT-104", "Laptop", entities.EquipmentStatusNew))
	_, err := h.maintenance.CancelMaintenance(ctx, request.ID, dto.CancelMaintenanceDTO{CancellationReason: "duplicate"})
	require.NoError(t, err)

	_, err = h.maintenance.AssignTechnician(ctx, request.ID, dto.AssignTechnicianDTO{TechnicianID: "tech-1"})
	requireStatusError(t, err, "Status", "Can only assign technician to pending maintenance requests. Current status: Cancelled")
}

func TestCompleteRequiresPositiveCost(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	request := h.openMaintenance(t, h.seedEquipment("LT-105", "Laptop", entities.EquipmentStatusNew))
	_, err := h.maintenance.AssignTechnician(ctx, request.ID, dto.AssignTechnicianDTO{TechnicianID: "tech-1"})
	require.NoError(t, err)
	_, err = h.maintenance.StartMaintenance(ctx, request.ID, dto.StartMaintenanceDTO{TechnicianID: "tech-1"})
	require.NoError(t, err)

	for _, cost := range []float64{0, -10} {
		_, err = h.maintenance.CompleteMaintenance(ctx, request.ID, dto.CompleteMaintenanceDTO{TechnicianID: "tech-1", Cost: cost}, "")
		requireStatusError(t, err, "Cost", "Cost must be greater than 0")
	}
	assert.Equal(t, entities.MaintenanceStatusInProgress, h.db.maintenance[request.ID].Status)
}

func TestCompleteStillNeedsMaintenanceAndReplay(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	laptop := h.seedEquipment("LT-106", "Laptop", entities.EquipmentStatusNew)
	request := h.openMaintenance(t, laptop)
	_, err := h.maintenance.AssignTechnician(ctx, request.ID, dto.AssignTechnicianDTO{TechnicianID: "tech-1"})
	require.NoError(t, err)
	_, err = h.maintenance.StartMaintenance(ctx, request.ID, dto.StartMaintenanceDTO{TechnicianID: "tech-1"})
	require.NoError(t, err)

	payload := dto.CompleteMaintenanceDTO{TechnicianID: "tech-1", Cost: 40, StillNeedsMaintenance: true}
	first, err := h.maintenance.CompleteMaintenance(ctx, request.ID, payload, "complete-1")
	require.NoError(t, err)
	second, err := h.maintenance.CompleteMaintenance(ctx, request.ID, payload, "complete-1")
	require.NoError(t, err)

	assert.Equal(t, first.Version, second.Version)
	assert.Equal(t, entities.EquipmentStatusRepairing, h.db.equipment[laptop.ID].Status)

	_, err = h.maintenance.CompleteMaintenance(ctx, request.ID, payload, "complete-2")
	requireStatusError(t, err, "Status", "Can only complete in-progress maintenance requests. Current status: Completed")
}

func TestCancelMaintenance(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	laptop := h.seedEquipment("LT-107", "Laptop", entities.EquipmentStatusNew)
	request := h.openMaintenance(t, laptop)

	cancelled, err := h.maintenance.CancelMaintenance(ctx, request.ID, dto.CancelMaintenanceDTO{CancellationReason: "works again"})
	require.NoError(t, err)
	assert.Equal(t, entities.MaintenanceStatusCancelled, cancelled.Status)
	assert.Equal(t, entities.EquipmentStatusNew, h.db.equipment[laptop.ID].Status)

	_, err = h.maintenance.CancelMaintenance(ctx, request.ID, dto.CancelMaintenanceDTO{CancellationReason: "again"})
	requireStatusError(t, err, "Status", "Maintenance request is already cancelled")

	_, err = h.maintenance.UpdateMaintenance(ctx, request.ID, dto.UpdateMaintenanceDTO{Description: null.StringFrom("x")})
	requireStatusError(t, err, "Status", "Cannot update cancelled maintenance requests")
}

func TestCancelAfterComplete(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	request := h.openMaintenance(t, h.seedEquipment("LT-108", "Laptop", entities.EquipmentStatusNew))
	_, err := h.maintenance.AssignTechnician(ctx, request.ID, dto.AssignTechnicianDTO{TechnicianID: "tech-1"})
	require.NoError(t, err)
	_, err = h.maintenance.StartMaintenance(ctx, request.ID, dto.StartMaintenanceDTO{TechnicianID: "tech-1"})
	require.NoError(t, err)
	_, err = h.maintenance.CompleteMaintenance(ctx, request.ID, dto.CompleteMaintenanceDTO{TechnicianID: "tech-1", Cost: 10}, "")
	require.NoError(t, err)

	_, err = h.maintenance.CancelMaintenance(ctx, request.ID, dto.CancelMaintenanceDTO{CancellationReason: "too late"})
	requireStatusError(t, err, "Status", "Cannot cancel completed maintenance requests")
	assert.Equal(t, entities.MaintenanceStatusCompleted, h.db.maintenance[request.ID].Status)
}

func TestUpdateMaintenance(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	request := h.openMaintenance(t, h.seedEquipment("LT-109", "Laptop", entities.EquipmentStatusNew))

	updated, err := h.maintenance.UpdateMaintenance(ctx, request.ID, dto.UpdateMaintenanceDTO{
		Description: null.StringFrom("Screen flickers and fan noise"),
		Notes:       null.StringFrom("urgent"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Screen flickers and fan noise", updated.Description)
	assert.Equal(t, "urgent", *updated.Notes)

	_, err = h.maintenance.UpdateMaintenance(ctx, request.ID, dto.UpdateMaintenanceDTO{ExpectedVersion: null.IntFrom(1)})
	assert.True(t, apperrors.IsConflict(err))
}

func TestMaintenanceUnknownRequest(t *testing.T) {
	h := newHarness(t)
	_, err := h.maintenance.StartMaintenance(context.Background(), uuid.New(), dto.StartMaintenanceDTO{TechnicianID: "tech-1"})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestGetPendingOldestFirst(t *testing.T) {
	h := newHarness(t)
	older := h.openMaintenance(t, h.seedEquipment("LT-110", "Laptop", entities.EquipmentStatusNew))
	h.clock.Advance(time.Minute)
	newer := h.openMaintenance(t, h.seedEquipment("LT-111", "Laptop", entities.EquipmentStatusNew))

	pending, err := h.maintenance.GetPending(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, older.ID, pending[0].ID)
	assert.Equal(t, newer.ID, pending[1].ID)
}
