package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/config"
	"storefront/internal/domain/pricing"
	"storefront/internal/handler"
	"storefront/internal/infra/db"
	"storefront/internal/infra/messaging"
	infraRepo "storefront/internal/infra/repository"
	"storefront/internal/server"
	"storefront/internal/telemetry"
	"storefront/internal/usecase"
	"storefront/internal/validator"

	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel"
	"gorm.io/gorm"
)

func main() {
	// .envは任意（本番は環境変数のみ）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := telemetry.InitLogger(os.Stdout, cfg.IsDev())
	slog.SetDefault(logger)

	// deferはrunの中で必ず走る
	if err := run(cfg, logger); err != nil {
		logger.Error("api exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("init tracer provider: %w", err)
	}
	defer func() { _ = shutdownTracer(context.Background()) }()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider(cfg.ServiceName)
	if err != nil {
		return fmt.Errorf("init meter provider: %w", err)
	}
	defer func() { _ = shutdownMeter(context.Background()) }()

	storeMetrics, err := telemetry.NewStoreMetrics(otel.Meter(cfg.ServiceName))
	if err != nil {
		return fmt.Errorf("create metrics: %w", err)
	}

	//DB接続
	gormDB, err := db.Connect(ctx, cfg.DSN())
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() { _ = db.Close(gormDB) }()

	if cfg.IsDev() {
		if err := db.AutoMigrate(gormDB); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	rtRepo := infraRepo.NewRefreshTokenRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	addressRepo := infraRepo.NewAddressGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)

	//Kafkaは設定がある時だけ
	orderDeps := usecase.OrderDeps{Metrics: storeMetrics, Logger: logger}
	if len(cfg.KafkaBrokers) > 0 {
		events := messaging.NewOrderEventPublisher(cfg.KafkaBrokers)
		defer func() { _ = events.Close() }()
		orderDeps.Publisher = events
	}

	calc := pricing.NewCalculator(cfg.TaxRate, cfg.ShippingPrice)

	//Usecase生成
	authUC := usecase.NewAuthUsecase(cfg.JWTSecret, userRepo, rtRepo, auditRepo, validator.NewAuthValidator(userRepo), logger)
	profileUC := usecase.NewProfileUsecase(userRepo, logger)
	catalogUC := usecase.NewCatalogUsecase(productRepo)
	cartUC := usecase.NewCartUsecase(txm, productRepo, storeMetrics)
	orderUC := usecase.NewOrderUsecase(txm, orderRepo, calc, orderDeps)
	addressUC := usecase.NewAddressUsecase(addressRepo)
	adminOrderUC := usecase.NewAdminOrderUsecase(txm)

	//Handler生成
	e := server.New(server.Options{
		ServiceName: cfg.ServiceName,
		JWTSecret:   cfg.JWTSecret,
		Users:       userRepo,
		Logger:      logger,
		Metrics:     metricsHandler,
		Ping:        pinger(gormDB),
	}, server.Handlers{
		Auth:       handler.NewAuthHandler(authUC, cfg.CookieSecure),
		Profile:    handler.NewProfileHandler(profileUC),
		Catalog:    handler.NewCatalogHandler(catalogUC, profileUC),
		Cart:       handler.NewCartHandler(cartUC),
		Order:      handler.NewOrderHandler(orderUC),
		Address:    handler.NewAddressHandler(addressUC),
		AdminOrder: handler.NewAdminOrderHandler(adminOrderUC),
	})

	return server.Start(ctx, e, ":"+cfg.Port, logger)
}

func pinger(gdb *gorm.DB) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := gdb.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}
