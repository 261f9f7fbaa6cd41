package main

import (
	"context"
	"flag"

	"go.uber.org/zap"

	"equipment-system/internal/repositories"
	"equipment-system/internal/services"
	"equipment-system/migrations"
	"equipment-system/pkg/clock"
	"equipment-system/pkg/config"
	"equipment-system/pkg/database/postgresql"
	applogger "equipment-system/pkg/logger"
	"equipment-system/pkg/qrcode"
	"equipment-system/pkg/utils"
	"equipment-system/seeders"
)

func main() {
	runWarehouse := flag.Bool("warehouse", false, "seed warehouse stock")
	runEquipment := flag.Bool("equipment", false, "seed sample equipment")
	runAll := flag.Bool("all", false, "run every seeder")
	flag.Parse()

	cfg := config.New()
	logger := applogger.NewLogger(cfg.Log.Level, "")
	defer logger.Sync() //nolint:errcheck

	if !*runWarehouse && !*runEquipment && !*runAll {
		logger.Warn("Не выбран ни один сидер")
		flag.PrintDefaults()
		return
	}

	ctx := utils.WithUserID(context.Background(), "seeder")
	dbPool, err := postgresql.ConnectDB(ctx, cfg.Postgres.DSN, logger)
	if err != nil {
		logger.Fatal("Не удалось подключиться к PostgreSQL", zap.Error(err))
	}
	defer dbPool.Close()

	if err := migrations.Up(ctx, dbPool); err != nil {
		logger.Fatal("Ошибка применения миграций", zap.Error(err))
	}

	clk := clock.New()
	txManager := repositories.NewTxManager(dbPool)
	itemRepo := repositories.NewWarehouseItemRepository(dbPool, logger)
	transactionRepo := repositories.NewWarehouseTransactionRepository(dbPool, logger)
	base := services.NewBaseService(nil, nil, repositories.NewHistoryRepository(dbPool, logger), nil, clk, logger)
	ledger := services.NewStockLedger(itemRepo, transactionRepo, cfg.Warehouse, clk, logger)

	seeder := seeders.New(
		services.NewWarehouseService(base, itemRepo, transactionRepo, ledger, txManager),
		services.NewEquipmentService(base, repositories.NewEquipmentRepository(dbPool, logger), txManager, qrcode.NewGenerator(), cfg.Cache.EquipmentListTTL),
		logger,
	)

	if *runAll || *runWarehouse {
		if err := seeder.SeedWarehouse(ctx); err != nil {
			logger.Fatal("Ошибка заполнения склада", zap.Error(err))
		}
	}
	if *runAll || *runEquipment {
		if err := seeder.SeedEquipment(ctx); err != nil {
			logger.Fatal("Ошибка заполнения оборудования", zap.Error(err))
		}
	}
	logger.Info("Заполнение базы завершено")
}
