package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"equipment-system/internal/dto"
	"equipment-system/internal/entities"
	"equipment-system/internal/repositories"
	"equipment-system/pkg/clock"
	"equipment-system/pkg/config"
	apperrors "equipment-system/pkg/errors"
	"equipment-system/pkg/eventbus"
	"equipment-system/pkg/types"
)

// memDB is the in-memory state behind every fake repository. Rows are stored by value so
// a rolled back transaction can restore a snapshot.
type memDB struct {
	equipment    map[uuid.UUID]entities.Equipment
	items        map[uuid.UUID]entities.WarehouseItem
	transactions []entities.WarehouseTransaction
	assignments  map[uuid.UUID]entities.Assignment
	maintenance  map[uuid.UUID]entities.MaintenanceRequest
	liquidations map[uuid.UUID]entities.LiquidationRequest
	audits       map[uuid.UUID]entities.AuditRecord
	history      []entities.HistoryEvent
}

func newMemDB() *memDB {
	return &memDB{
		equipment:    map[uuid.UUID]entities.Equipment{},
		items:        map[uuid.UUID]entities.WarehouseItem{},
		assignments:  map[uuid.UUID]entities.Assignment{},
		maintenance:  map[uuid.UUID]entities.MaintenanceRequest{},
		liquidations: map[uuid.UUID]entities.LiquidationRequest{},
		audits:       map[uuid.UUID]entities.AuditRecord{},
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (db *memDB) snapshot() memDB {
	return memDB{
		equipment:    cloneMap(db.equipment),
		items:        cloneMap(db.items),
		transactions: append([]entities.WarehouseTransaction(nil), db.transactions...),
		assignments:  cloneMap(db.assignments),
		maintenance:  cloneMap(db.maintenance),
		liquidations: cloneMap(db.liquidations),
		audits:       cloneMap(db.audits),
		history:      append([]entities.HistoryEvent(nil), db.history...),
	}
}

type fakeTxManager struct {
	db      *memDB
	commits int
}

func (m *fakeTxManager) RunInTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	snap := m.db.snapshot()
	if err := fn(nil); err != nil {
		*m.db = snap
		return err
	}
	m.commits++
	return nil
}

func versioned(stored, written int, entity string, id uuid.UUID) error {
	if stored != written {
		return apperrors.NewConflictError("%s %s was modified concurrently", entity, id)
	}
	return nil
}

type fakeEquipmentRepo struct {
	db        *memDB
	listCalls int
}

func (r *fakeEquipmentRepo) FindByID(ctx context.Context, id uuid.UUID) (*entities.Equipment, error) {
	e, ok := r.db.equipment[id]
	if !ok || e.IsDeleted {
		return nil, apperrors.NewNotFoundError("Equipment", id)
	}
	return &e, nil
}

func (r *fakeEquipmentRepo) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*entities.Equipment, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeEquipmentRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*entities.Equipment, error) {
	out := map[uuid.UUID]*entities.Equipment{}
	for _, id := range ids {
		if e, err := r.FindByID(ctx, id); err == nil {
			out[id] = e
		}
	}
	return out, nil
}

func (r *fakeEquipmentRepo) ExistsByCode(ctx context.Context, code string, excludeID *uuid.UUID) (bool, error) {
	for id, e := range r.db.equipment {
		if e.Code == code && !e.IsDeleted && (excludeID == nil || *excludeID != id) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeEquipmentRepo) GetEquipments(ctx context.Context, q dto.EquipmentListQuery) ([]entities.Equipment, uint64, error) {
	r.listCalls++
	list := []entities.Equipment{}
	for _, e := range r.db.equipment {
		if e.IsDeleted || (q.Type != "" && e.Type != q.Type) || (q.Status > 0 && int(e.Status) != q.Status) {
			continue
		}
		if q.Keyword != "" && !strings.Contains(strings.ToLower(e.Code+e.Name), strings.ToLower(q.Keyword)) {
			continue
		}
		list = append(list, e)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	total := uint64(len(list))
	if q.PageSize > 0 {
		start := (q.Page - 1) * q.PageSize
		if start > len(list) {
			start = len(list)
		}
		end := start + q.PageSize
		if end > len(list) {
			end = len(list)
		}
		list = list[start:end]
	}
	return list, total, nil
}

func (r *fakeEquipmentRepo) Create(ctx context.Context, tx pgx.Tx, e *entities.Equipment) error {
	r.db.equipment[e.ID] = *e
	return nil
}

func (r *fakeEquipmentRepo) Update(ctx context.Context, tx pgx.Tx, e *entities.Equipment) error {
	stored, ok := r.db.equipment[e.ID]
	if !ok || stored.IsDeleted {
		return apperrors.NewConflictError("Equipment %s is gone", e.ID)
	}
	if err := versioned(stored.Version, e.Version, "Equipment", e.ID); err != nil {
		return err
	}
	e.Version++
	r.db.equipment[e.ID] = *e
	return nil
}

type fakeItemRepo struct{ db *memDB }

func (r *fakeItemRepo) FindByID(ctx context.Context, id uuid.UUID) (*entities.WarehouseItem, error) {
	item, ok := r.db.items[id]
	if !ok || item.IsDeleted {
		return nil, apperrors.NewNotFoundError("WarehouseItem", id)
	}
	return &item, nil
}

func (r *fakeItemRepo) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*entities.WarehouseItem, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeItemRepo) FindByTypeForUpdate(ctx context.Context, tx pgx.Tx, equipmentType string) (*entities.WarehouseItem, error) {
	for _, item := range r.db.items {
		if item.EquipmentType == equipmentType && !item.IsDeleted {
			found := item
			return &found, nil
		}
	}
	return nil, apperrors.NewNotFoundError("WarehouseItem", equipmentType)
}

func (r *fakeItemRepo) ExistsByType(ctx context.Context, tx pgx.Tx, equipmentType string, excludeID *uuid.UUID) (bool, error) {
	for id, item := range r.db.items {
		if item.EquipmentType == equipmentType && !item.IsDeleted && (excludeID == nil || *excludeID != id) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeItemRepo) GetWarehouseItems(ctx context.Context, filter types.Filter) ([]entities.WarehouseItem, uint64, error) {
	list := []entities.WarehouseItem{}
	for _, item := range r.db.items {
		if !item.IsDeleted {
			list = append(list, item)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].EquipmentType < list[j].EquipmentType })
	return list, uint64(len(list)), nil
}

func (r *fakeItemRepo) GetLowStockItems(ctx context.Context) ([]entities.WarehouseItem, error) {
	list := []entities.WarehouseItem{}
	for _, item := range r.db.items {
		if !item.IsDeleted && item.IsLowStock() {
			list = append(list, item)
		}
	}
	return list, nil
}

func (r *fakeItemRepo) Create(ctx context.Context, tx pgx.Tx, item *entities.WarehouseItem) error {
	r.db.items[item.ID] = *item
	return nil
}

func (r *fakeItemRepo) Update(ctx context.Context, tx pgx.Tx, item *entities.WarehouseItem) error {
	stored, ok := r.db.items[item.ID]
	if !ok || stored.IsDeleted {
		return apperrors.NewConflictError("WarehouseItem %s is gone", item.ID)
	}
	if err := versioned(stored.Version, item.Version, "WarehouseItem", item.ID); err != nil {
		return err
	}
	item.Version++
	r.db.items[item.ID] = *item
	return nil
}

type fakeTransactionRepo struct{ db *memDB }

func (r *fakeTransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *entities.WarehouseTransaction) error {
	r.db.transactions = append(r.db.transactions, *t)
	return nil
}

func (r *fakeTransactionRepo) ledger(filter types.Filter) []entities.LedgerEntry {
	out := []entities.LedgerEntry{}
	itemID := filter.Value("warehouse_item_id")
	for _, t := range r.db.transactions {
		if itemID != "" && t.WarehouseItemID.String() != itemID {
			continue
		}
		out = append(out, entities.LedgerEntry{WarehouseTransaction: t, EquipmentType: r.db.items[t.WarehouseItemID].EquipmentType})
	}
	return out
}

func (r *fakeTransactionRepo) GetTransactions(ctx context.Context, filter types.Filter) ([]entities.LedgerEntry, uint64, error) {
	out := r.ledger(filter)
	return out, uint64(len(out)), nil
}

func (r *fakeTransactionRepo) GetLedgerForExport(ctx context.Context, filter types.Filter) ([]entities.LedgerEntry, error) {
	return r.ledger(filter), nil
}

type fakeAssignmentRepo struct{ db *memDB }

func (r *fakeAssignmentRepo) FindByID(ctx context.Context, id uuid.UUID) (*entities.Assignment, error) {
	a, ok := r.db.assignments[id]
	if !ok || a.IsDeleted {
		return nil, apperrors.NewNotFoundError("Assignment", id)
	}
	return &a, nil
}

func (r *fakeAssignmentRepo) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*entities.Assignment, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeAssignmentRepo) HasActiveForEquipment(ctx context.Context, tx pgx.Tx, equipmentID uuid.UUID) (bool, error) {
	for _, a := range r.db.assignments {
		if a.EquipmentID == equipmentID && !a.IsDeleted && a.Status == entities.AssignmentStatusAssigned {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeAssignmentRepo) GetAssignments(ctx context.Context, filter types.Filter) ([]entities.Assignment, uint64, error) {
	list := []entities.Assignment{}
	for _, a := range r.db.assignments {
		if !a.IsDeleted {
			list = append(list, a)
		}
	}
	return list, uint64(len(list)), nil
}

func (r *fakeAssignmentRepo) GetByUser(ctx context.Context, userID string, activeOnly bool) ([]entities.Assignment, error) {
	list := []entities.Assignment{}
	for _, a := range r.db.assignments {
		if a.IsDeleted || a.AssignedToUserID == nil || *a.AssignedToUserID != userID {
			continue
		}
		if activeOnly && a.Status != entities.AssignmentStatusAssigned {
			continue
		}
		list = append(list, a)
	}
	return list, nil
}

func (r *fakeAssignmentRepo) Create(ctx context.Context, tx pgx.Tx, a *entities.Assignment) error {
	r.db.assignments[a.ID] = *a
	return nil
}

func (r *fakeAssignmentRepo) Update(ctx context.Context, tx pgx.Tx, a *entities.Assignment) error {
	stored, ok := r.db.assignments[a.ID]
	if !ok || stored.IsDeleted {
		return apperrors.NewConflictError("Assignment %s is gone", a.ID)
	}
	if err := versioned(stored.Version, a.Version, "Assignment", a.ID); err != nil {
		return err
	}
	a.Version++
	r.db.assignments[a.ID] = *a
	return nil
}

type fakeMaintenanceRepo struct{ db *memDB }

func (r *fakeMaintenanceRepo) FindByID(ctx context.Context, id uuid.UUID) (*entities.MaintenanceRequest, error) {
	m, ok := r.db.maintenance[id]
	if !ok || m.IsDeleted {
		return nil, apperrors.NewNotFoundError("MaintenanceRequest", id)
	}
	return &m, nil
}

func (r *fakeMaintenanceRepo) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*entities.MaintenanceRequest, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeMaintenanceRepo) HasOpenForEquipment(ctx context.Context, tx pgx.Tx, equipmentID uuid.UUID) (bool, error) {
	for _, m := range r.db.maintenance {
		if m.EquipmentID == equipmentID && !m.IsDeleted && m.Status.IsOpen() {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeMaintenanceRepo) GetMaintenanceRequests(ctx context.Context, filter types.Filter) ([]entities.MaintenanceRequest, uint64, error) {
	list := []entities.MaintenanceRequest{}
	for _, m := range r.db.maintenance {
		if !m.IsDeleted {
			list = append(list, m)
		}
	}
	return list, uint64(len(list)), nil
}

func (r *fakeMaintenanceRepo) GetPending(ctx context.Context) ([]entities.MaintenanceRequest, error) {
	list := []entities.MaintenanceRequest{}
	for _, m := range r.db.maintenance {
		if !m.IsDeleted && m.Status == entities.MaintenanceStatusPending {
			list = append(list, m)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].RequestDate.Before(list[j].RequestDate) })
	return list, nil
}

func (r *fakeMaintenanceRepo) GetByTechnician(ctx context.Context, technicianID string) ([]entities.MaintenanceRequest, error) {
	list := []entities.MaintenanceRequest{}
	for _, m := range r.db.maintenance {
		if !m.IsDeleted && m.TechnicianID != nil && *m.TechnicianID == technicianID {
			list = append(list, m)
		}
	}
	return list, nil
}

func (r *fakeMaintenanceRepo) Create(ctx context.Context, tx pgx.Tx, m *entities.MaintenanceRequest) error {
	r.db.maintenance[m.ID] = *m
	return nil
}

func (r *fakeMaintenanceRepo) Update(ctx context.Context, tx pgx.Tx, m *entities.MaintenanceRequest) error {
	stored, ok := r.db.maintenance[m.ID]
	if !ok || stored.IsDeleted {
		return apperrors.NewConflictError("MaintenanceRequest %s is gone", m.ID)
	}
	if err := versioned(stored.Version, m.Version, "MaintenanceRequest", m.ID); err != nil {
		return err
	}
	m.Version++
	r.db.maintenance[m.ID] = *m
	return nil
}

type fakeLiquidationRepo struct{ db *memDB }

func (r *fakeLiquidationRepo) FindByID(ctx context.Context, id uuid.UUID) (*entities.LiquidationRequest, error) {
	l, ok := r.db.liquidations[id]
	if !ok || l.IsDeleted {
		return nil, apperrors.NewNotFoundError("LiquidationRequest", id)
	}
	return &l, nil
}

func (r *fakeLiquidationRepo) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*entities.LiquidationRequest, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeLiquidationRepo) GetLiquidationRequests(ctx context.Context, filter types.Filter) ([]entities.LiquidationRequest, uint64, error) {
	list := []entities.LiquidationRequest{}
	for _, l := range r.db.liquidations {
		if !l.IsDeleted {
			list = append(list, l)
		}
	}
	return list, uint64(len(list)), nil
}

func (r *fakeLiquidationRepo) GetPending(ctx context.Context) ([]entities.LiquidationRequest, error) {
	list := []entities.LiquidationRequest{}
	for _, l := range r.db.liquidations {
		if !l.IsDeleted && l.Status == entities.LiquidationStatusPending {
			list = append(list, l)
		}
	}
	return list, nil
}

func (r *fakeLiquidationRepo) Create(ctx context.Context, tx pgx.Tx, l *entities.LiquidationRequest) error {
	r.db.liquidations[l.ID] = *l
	return nil
}

func (r *fakeLiquidationRepo) Update(ctx context.Context, tx pgx.Tx, l *entities.LiquidationRequest) error {
	stored, ok := r.db.liquidations[l.ID]
	if !ok || stored.IsDeleted {
		return apperrors.NewConflictError("LiquidationRequest %s is gone", l.ID)
	}
	if err := versioned(stored.Version, l.Version, "LiquidationRequest", l.ID); err != nil {
		return err
	}
	l.Version++
	r.db.liquidations[l.ID] = *l
	return nil
}

type fakeAuditRepo struct{ db *memDB }

func (r *fakeAuditRepo) FindByID(ctx context.Context, id uuid.UUID) (*entities.AuditRecord, error) {
	a, ok := r.db.audits[id]
	if !ok || a.IsDeleted {
		return nil, apperrors.NewNotFoundError("AuditRecord", id)
	}
	return &a, nil
}

func (r *fakeAuditRepo) GetAuditRecords(ctx context.Context, filter types.Filter) ([]entities.AuditRecord, uint64, error) {
	list := []entities.AuditRecord{}
	for _, a := range r.db.audits {
		list = append(list, a)
	}
	return list, uint64(len(list)), nil
}

func (r *fakeAuditRepo) GetByEquipment(ctx context.Context, equipmentID uuid.UUID) ([]entities.AuditRecord, error) {
	list := []entities.AuditRecord{}
	for _, a := range r.db.audits {
		if a.EquipmentID == equipmentID {
			list = append(list, a)
		}
	}
	return list, nil
}

func (r *fakeAuditRepo) GetForSync(ctx context.Context, since time.Time) ([]entities.AuditRecord, error) {
	list := []entities.AuditRecord{}
	for _, a := range r.db.audits {
		if a.LastSyncDate.After(since) {
			list = append(list, a)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CheckDate.After(list[j].CheckDate) })
	return list, nil
}

func (r *fakeAuditRepo) Create(ctx context.Context, tx pgx.Tx, a *entities.AuditRecord) error {
	return r.CreateBatch(ctx, tx, []entities.AuditRecord{*a})
}

func (r *fakeAuditRepo) CreateBatch(ctx context.Context, tx pgx.Tx, records []entities.AuditRecord) error {
	for _, a := range records {
		r.db.audits[a.ID] = a
	}
	return nil
}

func (r *fakeAuditRepo) Update(ctx context.Context, tx pgx.Tx, a *entities.AuditRecord) error {
	if _, ok := r.db.audits[a.ID]; !ok {
		return apperrors.NewNotFoundError("AuditRecord", a.ID)
	}
	r.db.audits[a.ID] = *a
	return nil
}

type fakeHistoryRepo struct{ db *memDB }

func (r *fakeHistoryRepo) Append(ctx context.Context, tx pgx.Tx, events ...entities.HistoryEvent) error {
	r.db.history = append(r.db.history, events...)
	return nil
}

func (r *fakeHistoryRepo) GetByAggregate(ctx context.Context, aggregateType entities.AggregateType, id uuid.UUID) ([]entities.HistoryEvent, error) {
	out := []entities.HistoryEvent{}
	for _, e := range r.db.history {
		if e.AggregateType == aggregateType && e.AggregateID == id {
			out = append(out, e)
		}
	}
	return out, nil
}

type memCache struct {
	mu      sync.Mutex
	entries map[string]string
}

func newMemCache() *memCache { return &memCache{entries: map[string]string{}} }

func (c *memCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		c.entries[key] = string(v)
	case string:
		c.entries[key] = v
	}
	return nil
}

func (c *memCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	if !ok {
		return "", apperrors.ErrNotFound
	}
	return v, nil
}

func (c *memCache) Del(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
	}
	return nil
}

func (c *memCache) RemoveByPrefix(ctx context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
	return nil
}

type memIdempotency struct {
	mu          sync.Mutex
	entries     map[string]string
	completeErr error
	completeCtx context.Context
}

func newMemIdempotency() *memIdempotency { return &memIdempotency{entries: map[string]string{}} }

func (m *memIdempotency) Reserve(ctx context.Context, key string) (repositories.IdempotencyState, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[key]
	switch {
	case !ok:
		m.entries[key] = "pending"
		return repositories.IdempotencyReserved, "", nil
	case v == "pending":
		return repositories.IdempotencyInFlight, "", nil
	}
	return repositories.IdempotencyCompleted, v, nil
}

func (m *memIdempotency) Complete(ctx context.Context, key, result string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completeCtx = ctx
	if m.completeErr != nil {
		return m.completeErr
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.entries[key] = result
	return nil
}

func (m *memIdempotency) Lookup(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[key]
	return v, ok, nil
}

func (m *memIdempotency) Release(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

var testNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

// harness wires every service over one memDB.
type harness struct {
	db          *memDB
	clock       *clock.Fixed
	tx          *fakeTxManager
	cache       *memCache
	idem        *memIdempotency
	equipRepo   *fakeEquipmentRepo
	itemRepo    *fakeItemRepo
	bus         *eventbus.Bus
	equipment   EquipmentServiceInterface
	warehouse   WarehouseServiceInterface
	assignments AssignmentServiceInterface
	maintenance MaintenanceServiceInterface
	liquidation LiquidationServiceInterface
	audits      AuditServiceInterface
}

type fixedQR struct{}

func (fixedQR) Generate(data string) (string, error) { return "qr:" + data, nil }

func newHarness(t *testing.T, opts ...func(*config.WarehouseConfig)) *harness {
	t.Helper()
	cfg := config.WarehouseConfig{AutoCreateOnImport: true, DefaultMinThreshold: 5}
	for _, opt := range opts {
		opt(&cfg)
	}

	db := newMemDB()
	h := &harness{
		db:        db,
		clock:     clock.NewFixed(testNow),
		tx:        &fakeTxManager{db: db},
		cache:     newMemCache(),
		idem:      newMemIdempotency(),
		equipRepo: &fakeEquipmentRepo{db: db},
		itemRepo:  &fakeItemRepo{db: db},
	}
	logger := zap.NewNop()
	h.bus = eventbus.New(logger)

	base := NewBaseService(h.cache, h.idem, &fakeHistoryRepo{db: db}, h.bus, h.clock, logger)
	transactions := &fakeTransactionRepo{db: db}
	assignmentRepo := &fakeAssignmentRepo{db: db}
	maintenanceRepo := &fakeMaintenanceRepo{db: db}
	ledger := NewStockLedger(h.itemRepo, transactions, cfg, h.clock, logger)

	h.equipment = NewEquipmentService(base, h.equipRepo, h.tx, fixedQR{}, 30*time.Minute)
	h.warehouse = NewWarehouseService(base, h.itemRepo, transactions, ledger, h.tx)
	h.assignments = NewAssignmentService(base, assignmentRepo, h.equipRepo, ledger, h.tx)
	h.maintenance = NewMaintenanceService(base, maintenanceRepo, h.equipRepo, h.tx)
	h.liquidation = NewLiquidationService(base, &fakeLiquidationRepo{db: db}, h.equipRepo, assignmentRepo, maintenanceRepo, ledger, h.tx)
	h.audits = NewAuditService(base, &fakeAuditRepo{db: db}, h.equipRepo, h.tx)
	return h
}

func (h *harness) seedEquipment(code, equipmentType string, status entities.EquipmentStatus) entities.Equipment {
	e := entities.Equipment{
		BaseEntity: types.BaseEntity{ID: uuid.New(), CreatedAt: testNow},
		Versioned:  types.Versioned{Version: 1},
		Code:       code,
		Name:       "Device " + code,
		Type:       equipmentType,
		Status:     status,
	}
	h.db.equipment[e.ID] = e
	return e
}

func (h *harness) seedItem(equipmentType string, quantity, threshold int) entities.WarehouseItem {
	item := entities.WarehouseItem{
		BaseEntity:    types.BaseEntity{ID: uuid.New(), CreatedAt: testNow},
		Versioned:     types.Versioned{Version: 1},
		EquipmentType: equipmentType,
		Quantity:      quantity,
		MinThreshold:  threshold,
	}
	h.db.items[item.ID] = item
	return item
}

func (h *harness) itemByType(equipmentType string) (entities.WarehouseItem, bool) {
	for _, item := range h.db.items {
		if item.EquipmentType == equipmentType && !item.IsDeleted {
			return item, true
		}
	}
	return entities.WarehouseItem{}, false
}
