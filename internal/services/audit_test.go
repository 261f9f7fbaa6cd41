package services

import (
	"context"
	"fmt"
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

func TestCreateAuditRecord(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	laptop := h.seedEquipment("AU-1", "Laptop", entities.EquipmentStatusInUse)

	record, err := h.audits.CreateAuditRecord(ctx, dto.CreateAuditRecordDTO{
		EquipmentID:     laptop.ID,
		CheckedByUserID: "auditor",
		Result:          entities.AuditResultMatch,
		Location:        null.StringFrom("Room 101"),
	})
	require.NoError(t, err)
	assert.Equal(t, testNow, record.CheckDate)
	assert.Equal(t, testNow, record.LastSyncDate)
	assert.Equal(t, "Room 101", *record.Location)

	_, err = h.audits.CreateAuditRecord(ctx, dto.CreateAuditRecordDTO{
		EquipmentID:     uuid.New(),
		CheckedByUserID: "auditor",
		Result:          entities.AuditResultMatch,
	})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestBatchCreateAuditRecordsIsolatesFailures(t *testing.T) {
	h := newHarness(t)
	laptop := h.seedEquipment("AU-2", "Laptop", entities.EquipmentStatusInUse)
	missing := uuid.New()

	result, err := h.audits.BatchCreateAuditRecords(context.Background(), dto.BatchCreateAuditRecordsDTO{
		Records: []dto.CreateAuditRecordDTO{
			{EquipmentID: laptop.ID, CheckedByUserID: "auditor", Result: entities.AuditResultMatch},
			{EquipmentID: missing, CheckedByUserID: "auditor", Result: entities.AuditResultMissing},
			{EquipmentID: laptop.ID, CheckedByUserID: "auditor", Result: entities.AuditResultNotMatch},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, result.TotalRecords)
	assert.Equal(t, 2, result.SuccessCount)
	assert.Equal(t, 1, result.FailureCount)
	assert.Len(t, result.CreatedIDs, 2)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 1, result.Errors[0].Index)
	assert.Equal(t, fmt.Sprintf("Equipment with ID %s not found", missing), result.Errors[0].Message)
	assert.Len(t, h.db.audits, 2)
}

func TestBatchCreateAuditRecordsAllFailed(t *testing.T) {
	h := newHarness(t)

	result, err := h.audits.BatchCreateAuditRecords(context.Background(), dto.BatchCreateAuditRecordsDTO{
		Records: []dto.CreateAuditRecordDTO{{EquipmentID: uuid.New(), CheckedByUserID: "auditor", Result: entities.AuditResultMatch}},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.SuccessCount)
	assert.Empty(t, result.CreatedIDs)
	assert.Equal(t, 0, h.tx.commits)
}

func TestBatchCreateAuditRecordsTooLarge(t *testing.T) {
	h := newHarness(t)
	records := make([]dto.CreateAuditRecordDTO, dto.MaxAuditBatchSize+1)

	_, err := h.audits.BatchCreateAuditRecords(context.Background(), dto.BatchCreateAuditRecordsDTO{Records: records})
	var vErr *apperrors.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Errors, "Records")
}

func TestUpdateAuditRecordAndSync(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	laptop := h.seedEquipment("AU-3", "Laptop", entities.EquipmentStatusInUse)

	record, err := h.audits.CreateAuditRecord(ctx, dto.CreateAuditRecordDTO{
		EquipmentID:     laptop.ID,
		CheckedByUserID: "auditor",
		Result:          entities.AuditResultMatch,
	})
	require.NoError(t, err)

	since := h.clock.Now()
	synced, err := h.audits.GetForSync(ctx, since)
	require.NoError(t, err)
	assert.Empty(t, synced)

	h.clock.Advance(time.Hour)
	updated, err := h.audits.UpdateAuditRecord(ctx, record.ID, dto.UpdateAuditRecordDTO{
		Result: null.IntFrom(int(entities.AuditResultNotMatch)),
		Note:   null.StringFrom("serial differs"),
	})
	require.NoError(t, err)
	assert.Equal(t, entities.AuditResultNotMatch, updated.Result)
	assert.Equal(t, testNow.Add(time.Hour), updated.LastSyncDate)

	synced, err = h.audits.GetForSync(ctx, since)
	require.NoError(t, err)
	require.Len(t, synced, 1)
	assert.Equal(t, record.ID, synced[0].ID)

	_, err = h.audits.UpdateAuditRecord(ctx, record.ID, dto.UpdateAuditRecordDTO{Result: null.IntFrom(9)})
	var vErr *apperrors.ValidationError
	require.ErrorAs(t, err, &vErr)
}
