package routes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"equipment-system/internal/controllers"
	"equipment-system/internal/dto"
	"equipment-system/internal/entities"
	"equipment-system/internal/services"
	"equipment-system/pkg/clock"
	apperrors "equipment-system/pkg/errors"
	"equipment-system/pkg/middleware"
	"equipment-system/pkg/service"
	"equipment-system/pkg/types"
	"equipment-system/pkg/utils"
	"equipment-system/pkg/validation"
	appwebsocket "equipment-system/pkg/websocket"
)

var routerNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

// Embedded interfaces stay nil: a route that reaches an unstubbed method panics the test.
type stubEquipmentService struct {
	services.EquipmentServiceInterface
	findErr        error
	deletedVersion *int
}

func (s *stubEquipmentService) DeleteEquipment(ctx context.Context, id uuid.UUID, expectedVersion *int) error {
	s.deletedVersion = expectedVersion
	return nil
}

func (s *stubEquipmentService) FindEquipment(ctx context.Context, id uuid.UUID) (*entities.Equipment, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return &entities.Equipment{BaseEntity: types.BaseEntity{ID: id}, Code: "EQ-1", Status: entities.EquipmentStatusNew}, nil
}

type stubWarehouseService struct {
	services.WarehouseServiceInterface
	txErr    error
	received *dto.CreateWarehouseTransactionDTO
}

func (s *stubWarehouseService) CreateWarehouseTransaction(ctx context.Context, payload dto.CreateWarehouseTransactionDTO) (*dto.StockChangeResultDTO, error) {
	s.received = &payload
	if s.txErr != nil {
		return nil, s.txErr
	}
	return &dto.StockChangeResultDTO{TransactionID: uuid.New()}, nil
}

func (s *stubWarehouseService) GetLowStockItems(ctx context.Context) ([]entities.WarehouseItem, error) {
	return []entities.WarehouseItem{{BaseEntity: types.BaseEntity{ID: uuid.New()}, EquipmentType: "Laptop", Quantity: 2, MinThreshold: 5}}, nil
}

func (s *stubWarehouseService) ExportLedger(ctx context.Context, filter types.Filter) ([]byte, error) {
	return []byte("xlsx"), nil
}

type stubAssignmentService struct {
	services.AssignmentServiceInterface
	idempotencyKey string
}

func (s *stubAssignmentService) CreateAssignment(ctx context.Context, payload dto.CreateAssignmentDTO, idempotencyKey string) (*entities.Assignment, error) {
	s.idempotencyKey = idempotencyKey
	return &entities.Assignment{BaseEntity: types.BaseEntity{ID: uuid.New()}, EquipmentID: payload.EquipmentID, Status: entities.AssignmentStatusAssigned}, nil
}

type stubLiquidationService struct {
	services.LiquidationServiceInterface
}

func (s *stubLiquidationService) ApproveLiquidation(ctx context.Context, id uuid.UUID, payload dto.ApproveLiquidationDTO, idempotencyKey string) (*entities.LiquidationRequest, error) {
	return nil, apperrors.NewInvalidOperationError("Cannot liquidate equipment that is currently assigned")
}

type stubAuditService struct {
	services.AuditServiceInterface
}

type RouterTestSuite struct {
	suite.Suite
	Echo        *echo.Echo
	JWT         service.JWTService
	equipment   *stubEquipmentService
	warehouse   *stubWarehouseService
	assignments *stubAssignmentService
	healthErr   error
}

func (s *RouterTestSuite) SetupTest() {
	clk := clock.NewFixed(routerNow)
	logger := zap.NewNop()

	e := echo.New()
	e.Validator = validation.New(clk)

	s.JWT = service.NewJWTService("test-secret", time.Hour, clk.Now)
	s.equipment = &stubEquipmentService{}
	s.warehouse = &stubWarehouseService{}
	s.assignments = &stubAssignmentService{}
	s.healthErr = nil

	ctrls := Controllers{
		Health: controllers.NewHealthController(map[string]controllers.Pinger{
			"postgres": pingerFunc(func(context.Context) error { return s.healthErr }),
		}, logger),
		Alerts:      controllers.NewAlertsController(appwebsocket.NewHub(clk.Now, logger), s.JWT, logger),
		Equipment:   controllers.NewEquipmentController(s.equipment, clk, logger),
		Warehouse:   controllers.NewWarehouseController(s.warehouse, clk, logger),
		Assignment:  controllers.NewAssignmentController(s.assignments, logger),
		Maintenance: controllers.NewMaintenanceController(nil, logger),
		Liquidation: controllers.NewLiquidationController(&stubLiquidationService{}, logger),
		Audit:       controllers.NewAuditController(&stubAuditService{}, logger),
	}
	Mount(e, ctrls, logger, middleware.NewAuthMiddleware(s.JWT, logger).Auth)
	s.Echo = e
}

func (s *RouterTestSuite) do(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	token, err := s.JWT.GenerateAccessToken("alice")
	s.Require().NoError(err)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

func (s *RouterTestSuite) decode(rec *httptest.ResponseRecorder) utils.HTTPResponse {
	var resp utils.HTTPResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func (s *RouterTestSuite) TestHealthIsPublic() {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	s.Equal(http.StatusOK, rec.Code)

	s.healthErr = errors.New("connection refused")
	rec = httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	s.Equal(http.StatusServiceUnavailable, rec.Code)
}

func (s *RouterTestSuite) TestAPIRequiresBearerToken() {
	req := httptest.NewRequest(http.MethodGet, "/api/warehouse/items/low-stock", nil)
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *RouterTestSuite) TestAlertFeedRejectsMissingToken() {
	req := httptest.NewRequest(http.MethodGet, "/api/ws/alerts", nil)
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *RouterTestSuite) TestLowStockList() {
	rec := s.do(http.MethodGet, "/api/warehouse/items/low-stock", "", nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	var resp struct {
		Status bool `json:"status"`
		Body   struct {
			List []entities.WarehouseItem `json:"list"`
		} `json:"body"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.True(resp.Status)
	s.Len(resp.Body.List, 1)
}

func (s *RouterTestSuite) TestWarehouseTransactionValidation() {
	rec := s.do(http.MethodPost, "/api/warehouse/transactions", `{"type":2,"quantity":0}`, nil)
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Nil(s.warehouse.received)
}

func (s *RouterTestSuite) TestInsufficientStockIsBadRequest() {
	s.warehouse.txErr = apperrors.NewValidationError("Quantity", "Insufficient stock. Available: 1, Requested: 3")
	body := `{"warehouse_item_id":"` + uuid.NewString() + `","type":2,"quantity":3,"performed_by":"clerk"}`

	rec := s.do(http.MethodPost, "/api/warehouse/transactions", body, nil)
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Require().NotNil(s.warehouse.received)
	s.Equal(3, s.warehouse.received.Quantity)
	s.False(s.decode(rec).Status)
}

func (s *RouterTestSuite) TestIdempotencyKeyReachesService() {
	body := `{"equipment_id":"` + uuid.NewString() + `","assigned_to_user_id":"bob"}`
	rec := s.do(http.MethodPost, "/api/assignments", body, map[string]string{utils.IdempotencyHeader: " assign-1 "})
	s.Equal(http.StatusCreated, rec.Code)
	s.Equal("assign-1", s.assignments.idempotencyKey)
}

func (s *RouterTestSuite) TestInvalidOperationIsConflict() {
	rec := s.do(http.MethodPost, "/api/liquidations/"+uuid.NewString()+"/approve", `{"approved_by":"cfo"}`, nil)
	s.Equal(http.StatusConflict, rec.Code)
	s.Equal("Cannot liquidate equipment that is currently assigned", s.decode(rec).Message)
}

func (s *RouterTestSuite) TestEquipmentNotFoundAndBadID() {
	s.equipment.findErr = apperrors.NewNotFoundError("Equipment", "x")
	rec := s.do(http.MethodGet, "/api/equipments/"+uuid.NewString(), "", nil)
	s.Equal(http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodGet, "/api/equipments/not-a-uuid", "", nil)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *RouterTestSuite) TestLedgerExportIsWorkbook() {
	rec := s.do(http.MethodGet, "/api/warehouse/transactions/export", "", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get(echo.HeaderContentType))
	s.Equal("attachment; filename=warehouse_ledger_2025-03-14.xlsx", rec.Header().Get("Content-Disposition"))
	s.Equal("xlsx", rec.Body.String())
}

func (s *RouterTestSuite) TestAuditSyncRejectsBadSince() {
	rec := s.do(http.MethodGet, "/api/audits/sync?since=yesterday", "", nil)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *RouterTestSuite) TestDeleteEquipmentExpectedVersion() {
	rec := s.do(http.MethodDelete, "/api/equipments/"+uuid.NewString()+"?expected_version=v2", "", nil)
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodDelete, "/api/equipments/"+uuid.NewString()+"?expected_version=3", "", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Require().NotNil(s.equipment.deletedVersion)
	s.Equal(3, *s.equipment.deletedVersion)
}

func (s *RouterTestSuite) TestAuditRejectsFutureCheckDate() {
	body := `{"equipment_id":"` + uuid.NewString() + `","checked_by_user_id":"aud-1","result":1,"check_date":"2025-03-15T09:30:00Z"}`
	rec := s.do(http.MethodPost, "/api/audits", body, nil)
	s.Equal(http.StatusBadRequest, rec.Code)

	batch := `{"records":[` + body + `]}`
	rec = s.do(http.MethodPost, "/api/audits/batch", batch, nil)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}
