package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"equipment-system/internal/listeners"
	"equipment-system/internal/routes"
	"equipment-system/migrations"
	"equipment-system/pkg/clock"
	"equipment-system/pkg/config"
	"equipment-system/pkg/database/postgresql"
	apperrors "equipment-system/pkg/errors"
	"equipment-system/pkg/eventbus"
	applogger "equipment-system/pkg/logger"
	"equipment-system/pkg/service"
	"equipment-system/pkg/utils"
	"equipment-system/pkg/validation"
	appwebsocket "equipment-system/pkg/websocket"
)

func main() {
	cfg := config.New()
	logger := applogger.NewLogger(cfg.Log.Level, cfg.Log.File)
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clk := clock.New()
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.RequestID())
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		DisableStackAll: true,
		StackSize:       1 << 10,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("Перехвачена паника",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err),
				zap.String("stack", string(stack)),
			)
			if !c.Response().Committed {
				httpErr := apperrors.NewHttpError(http.StatusInternalServerError, "Internal server error", err, nil)
				_ = utils.ErrorResponse(c, httpErr, logger)
			}
			return err
		},
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, utils.IdempotencyHeader},
		AllowCredentials: true,
		ExposeHeaders:    []string{"Content-Disposition"},
	}))
	e.Validator = validation.New(clk)

	dbConn, err := postgresql.ConnectDB(ctx, cfg.Postgres.DSN, logger)
	if err != nil {
		logger.Fatal("Не удалось подключиться к PostgreSQL", zap.Error(err))
	}
	defer dbConn.Close()

	if cfg.Postgres.RunMigrations {
		if err := migrations.Up(ctx, dbConn); err != nil {
			logger.Fatal("Ошибка применения миграций", zap.Error(err))
		}
		logger.Info("Миграции применены")
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		logger.Fatal("Не удалось подключиться к Redis", zap.Error(err), zap.String("address", cfg.Redis.Address))
	}

	jwtSvc := service.NewJWTService(cfg.JWT.SecretKey, cfg.JWT.AccessTokenTTL, clk.Now)

	// Слушатели событий: алерты в лог и лента для вебсокета
	bus := eventbus.New(logger.Named("events"))
	hub := appwebsocket.NewHub(clk.Now, logger.Named("feed"))
	listeners.NewAlertListener(logger.Named("alerts")).Register(bus)
	listeners.NewFeedListener(hub).Register(bus)

	routes.InitRouter(e, dbConn, redisClient, jwtSvc, bus, hub, clk, &routes.Loggers{
		Main:      logger,
		Auth:      logger.Named("auth"),
		Warehouse: logger.Named("warehouse"),
		Workflow:  logger.Named("workflow"),
	}, cfg)

	go func() {
		logger.Info("Сервер запущен", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Ошибка сервера", zap.Error(err))
		}
	}()

	<-ctx.Done()
	// Даём активным запросам завершиться, затем дожидаемся слушателей шины
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ошибка при корректной остановке сервера", zap.Error(err))
	}
	bus.Wait()
	logger.Info("Сервер остановлен")
}
