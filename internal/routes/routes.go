package routes

import (
	"context"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"equipment-system/internal/controllers"
	"equipment-system/internal/repositories"
	"equipment-system/internal/services"
	"equipment-system/pkg/clock"
	"equipment-system/pkg/config"
	"equipment-system/pkg/eventbus"
	"equipment-system/pkg/middleware"
	"equipment-system/pkg/qrcode"
	"equipment-system/pkg/service"
	appwebsocket "equipment-system/pkg/websocket"
)

type Loggers struct {
	Main      *zap.Logger
	Auth      *zap.Logger
	Warehouse *zap.Logger
	Workflow  *zap.Logger
}

// Controllers is everything the router mounts. Tests build it from service fakes.
type Controllers struct {
	Health      *controllers.HealthController
	Alerts      *controllers.AlertsController
	Equipment   *controllers.EquipmentController
	Warehouse   *controllers.WarehouseController
	Assignment  *controllers.AssignmentController
	Maintenance *controllers.MaintenanceController
	Liquidation *controllers.LiquidationController
	Audit       *controllers.AuditController
}

type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func InitRouter(
	e *echo.Echo,
	dbConn *pgxpool.Pool,
	redisClient *redis.Client,
	jwtSvc service.JWTService,
	bus *eventbus.Bus,
	hub *appwebsocket.Hub,
	clk clock.Clock,
	loggers *Loggers,
	cfg *config.Config,
) {
	loggers.Main.Info("InitRouter: building routes")

	txManager := repositories.NewTxManager(dbConn)

	// --- 1. repositories ---
	cacheRepo := repositories.NewRedisCacheRepository(redisClient)
	idempotencyRepo := repositories.NewIdempotencyRepository(redisClient, cfg.Idempotency.TTL)
	historyRepo := repositories.NewHistoryRepository(dbConn, loggers.Workflow)
	equipmentRepo := repositories.NewEquipmentRepository(dbConn, loggers.Main)
	itemRepo := repositories.NewWarehouseItemRepository(dbConn, loggers.Warehouse)
	transactionRepo := repositories.NewWarehouseTransactionRepository(dbConn, loggers.Warehouse)
	assignmentRepo := repositories.NewAssignmentRepository(dbConn, loggers.Workflow)
	maintenanceRepo := repositories.NewMaintenanceRepository(dbConn, loggers.Workflow)
	liquidationRepo := repositories.NewLiquidationRepository(dbConn, loggers.Workflow)
	auditRepo := repositories.NewAuditRepository(dbConn, loggers.Main)

	// --- 2. services ---
	base := services.NewBaseService(cacheRepo, idempotencyRepo, historyRepo, bus, clk, loggers.Workflow)
	ledger := services.NewStockLedger(itemRepo, transactionRepo, cfg.Warehouse, clk, loggers.Warehouse)

	equipmentService := services.NewEquipmentService(base, equipmentRepo, txManager, qrcode.NewGenerator(), cfg.Cache.EquipmentListTTL)
	warehouseService := services.NewWarehouseService(base, itemRepo, transactionRepo, ledger, txManager)
	assignmentService := services.NewAssignmentService(base, assignmentRepo, equipmentRepo, ledger, txManager)
	maintenanceService := services.NewMaintenanceService(base, maintenanceRepo, equipmentRepo, txManager)
	liquidationService := services.NewLiquidationService(base, liquidationRepo, equipmentRepo, assignmentRepo, maintenanceRepo, ledger, txManager)
	auditService := services.NewAuditService(base, auditRepo, equipmentRepo, txManager)

	// --- 3. controllers ---
	var feedAuth service.JWTService
	if cfg.JWT.Enabled {
		feedAuth = jwtSvc
	}
	ctrls := Controllers{
		Alerts: controllers.NewAlertsController(hub, feedAuth, loggers.Main),
		Health: controllers.NewHealthController(map[string]controllers.Pinger{
			"postgres": dbConn,
			"redis":    redisPinger{client: redisClient},
		}, loggers.Main),
		Equipment:   controllers.NewEquipmentController(equipmentService, clk, loggers.Main),
		Warehouse:   controllers.NewWarehouseController(warehouseService, clk, loggers.Warehouse),
		Assignment:  controllers.NewAssignmentController(assignmentService, loggers.Workflow),
		Maintenance: controllers.NewMaintenanceController(maintenanceService, loggers.Workflow),
		Liquidation: controllers.NewLiquidationController(liquidationService, loggers.Workflow),
		Audit:       controllers.NewAuditController(auditService, loggers.Main),
	}

	var guards []echo.MiddlewareFunc
	if cfg.JWT.Enabled {
		guards = append(guards, middleware.NewAuthMiddleware(jwtSvc, loggers.Auth).Auth)
	} else {
		loggers.Auth.Warn("JWT authentication is disabled, every request acts as System")
	}

	Mount(e, ctrls, loggers.Main, guards...)
	loggers.Main.Info("InitRouter: routes ready")
}

// Mount registers /health, the alert feed and the guarded /api groups.
func Mount(e *echo.Echo, ctrls Controllers, logger *zap.Logger, guards ...echo.MiddlewareFunc) {
	e.GET("/health", ctrls.Health.Health)

	api := e.Group("/api", middleware.InjectLogger(logger))
	api.GET("/ws/alerts", ctrls.Alerts.Subscribe)
	secureGroup := api.Group("", guards...)

	runEquipmentRouter(secureGroup, ctrls.Equipment)
	runWarehouseRouter(secureGroup, ctrls.Warehouse)
	runAssignmentRouter(secureGroup, ctrls.Assignment)
	runMaintenanceRouter(secureGroup, ctrls.Maintenance)
	runLiquidationRouter(secureGroup, ctrls.Liquidation)
	runAuditRouter(secureGroup, ctrls.Audit)
}
