package services

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"equipment-system/internal/dto"
	"equipment-system/internal/entities"
	"equipment-system/internal/events"
	apperrors "equipment-system/pkg/errors"
	"equipment-system/pkg/eventbus"
)

func TestCreateEquipment(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	equipment, err := h.equipment.CreateEquipment(ctx, dto.CreateEquipmentDTO{
		Code:  "EQ-1",
		Name:  "ThinkPad T14",
		Type:  "Laptop",
		Price: 1200,
	})
	require.NoError(t, err)
	assert.Equal(t, entities.EquipmentStatusNew, equipment.Status)
	assert.Equal(t, "qr:EQ-1", equipment.QRCodeBase64)
	assert.Equal(t, 1, equipment.Version)
	assert.Equal(t, testNow, equipment.CreatedAt)

	_, err = h.equipment.CreateEquipment(ctx, dto.CreateEquipmentDTO{Code: "EQ-1", Name: "Other", Type: "Laptop"})
	var vErr *apperrors.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Errors, "Code")
}

func TestEquipmentListIsCachedUntilWrite(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.seedEquipment("EQ-2", "Laptop", entities.EquipmentStatusNew)
	query := dto.EquipmentListQuery{Page: 1, PageSize: 10}

	list, total, err := h.equipment.GetEquipments(ctx, query)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, uint64(1), total)
	_, ok := h.cache.entries["equipments_1_10__0_"]
	assert.True(t, ok)

	_, _, err = h.equipment.GetEquipments(ctx, query)
	require.NoError(t, err)
	assert.Equal(t, 1, h.equipRepo.listCalls)

	_, err = h.equipment.CreateEquipment(ctx, dto.CreateEquipmentDTO{Code: "EQ-3", Name: "Dell", Type: "Laptop"})
	require.NoError(t, err)
	assert.Empty(t, h.cache.entries)

	list, total, err = h.equipment.GetEquipments(ctx, query)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, uint64(2), total)
	assert.Equal(t, 2, h.equipRepo.listCalls)
}

func TestWorkflowStatusChangeInvalidatesListCache(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	laptop := h.seedEquipment("EQ-4", "Laptop", entities.EquipmentStatusNew)
	_, _, err := h.equipment.GetEquipments(ctx, dto.EquipmentListQuery{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.NotEmpty(t, h.cache.entries)

	_, err = h.assignments.CreateAssignment(ctx, dto.CreateAssignmentDTO{
		EquipmentID:      laptop.ID,
		AssignedToUserID: null.StringFrom("alice"),
	}, "")
	require.NoError(t, err)
	assert.Empty(t, h.cache.entries)
}

func TestUpdateEquipmentPatchAndStatusEvent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	laptop := h.seedEquipment("EQ-5", "Laptop", entities.EquipmentStatusNew)

	var mu sync.Mutex
	var received []events.EquipmentStatusChangedEvent
	h.bus.Subscribe(events.EquipmentStatusChangedName, func(ctx context.Context, e eventbus.Event) error {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, e.(events.EquipmentStatusChangedEvent))
		return nil
	})

	updated, err := h.equipment.UpdateEquipment(ctx, laptop.ID, dto.UpdateEquipmentDTO{
		Name:            null.StringFrom("  "),
		Supplier:        null.StringFrom("ACME"),
		Status:          null.IntFrom(int(entities.EquipmentStatusBroken)),
		ExpectedVersion: null.IntFrom(1),
	})
	require.NoError(t, err)
	assert.Equal(t, "Device EQ-5", updated.Name, "blank name is ignored")
	assert.Equal(t, "ACME", *updated.Supplier)
	assert.Equal(t, entities.EquipmentStatusBroken, updated.Status)
	assert.Equal(t, 2, updated.Version)

	h.bus.Wait()
	mu.Lock()
	require.Len(t, received, 1)
	assert.Equal(t, entities.EquipmentStatusNew, received[0].From)
	assert.Equal(t, entities.EquipmentStatusBroken, received[0].To)
	mu.Unlock()

	_, err = h.equipment.UpdateEquipment(ctx, laptop.ID, dto.UpdateEquipmentDTO{ExpectedVersion: null.IntFrom(1)})
	assert.True(t, apperrors.IsConflict(err))

	history, err := h.equipment.History(ctx, laptop.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, entities.HistoryUpdated, history[0].Kind)
	assert.Equal(t, entities.HistoryStatusChanged, history[1].Kind)
}

func TestDeleteEquipment(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	laptop := h.seedEquipment("EQ-6", "Laptop", entities.EquipmentStatusNew)

	require.NoError(t, h.equipment.DeleteEquipment(ctx, laptop.ID, nil))

	_, err := h.equipment.FindEquipment(ctx, laptop.ID)
	assert.True(t, apperrors.IsNotFound(err))
	err = h.equipment.DeleteEquipment(ctx, laptop.ID, nil)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestExportRegister(t *testing.T) {
	h := newHarness(t)
	h.seedEquipment("EQ-7", "Laptop", entities.EquipmentStatusNew)
	h.seedEquipment("EQ-8", "Monitor", entities.EquipmentStatusInUse)

	raw, err := h.equipment.ExportRegister(context.Background(), dto.EquipmentListQuery{Type: "Monitor"})
	require.NoError(t, err)

	book, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer book.Close()
	rows, err := book.GetRows("Equipment register")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "EQ-8", rows[1][1])
	assert.Equal(t, "InUse", rows[1][4])
}
