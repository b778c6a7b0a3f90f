package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pocket-ledger/internal/api"
	"pocket-ledger/internal/api/handlers"
	"pocket-ledger/internal/repository"
	"pocket-ledger/internal/service"
	"pocket-ledger/pkg/auth"
	"pocket-ledger/pkg/config"
	"pocket-ledger/pkg/logger"
	"pocket-ledger/pkg/middleware"
	"pocket-ledger/pkg/postgres"
	"pocket-ledger/pkg/redisclient"

	"go.uber.org/zap"
)

// @title Pocket Ledger API
// @version 1.0
// @description Personal finance ledger with receipt scanning, bill splitting, budgets and recurring transactions.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT access token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting Pocket Ledger service", zap.String("env", cfg.Env))

	// Initialize database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db, appLogger); err != nil {
		appLogger.Fatal("Failed to apply database schema", zap.Error(err))
	}

	// Redis is optional; without it every scan runs OCR
	redisClient, err := redisclient.NewClient(ctx, &cfg.Redis, appLogger)
	if err != nil {
		appLogger.Warn("Redis unavailable, scan cache disabled", zap.Error(err))
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db, appLogger)
	txRepo := repository.NewTransactionRepository(db, appLogger)
	ledgerRepo := repository.NewLedgerRepository(db, appLogger)
	ruleRepo := repository.NewRecurringRepository(db, appLogger)
	budgetRepo := repository.NewBudgetRepository(db, appLogger)
	catalogRepo := repository.NewCatalogRepository(db, appLogger)
	scanRepo := repository.NewReceiptScanRepository(db, appLogger)
	goalRepo := repository.NewSavingsGoalRepository(db, appLogger)
	debtRepo := repository.NewDebtRepository(db, appLogger)
	scanCache := repository.NewScanCache(redisClient, cfg.Redis.ScanTTL, appLogger)

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Expiration, cfg.JWT.RefreshExp)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtManager, appLogger)
	ledgerService := service.NewLedgerService(ledgerRepo, txRepo, appLogger)
	recurringService := service.NewRecurringService(ruleRepo, ledgerRepo, logger.Named("recurring"))
	budgetService := service.NewBudgetService(budgetRepo, appLogger)
	catalogService := service.NewCatalogService(catalogRepo, appLogger)
	savingsService := service.NewSavingsService(goalRepo, appLogger)
	debtService := service.NewDebtService(debtRepo, ledgerRepo, appLogger)
	ocrService := service.NewOCRService(&cfg.OCR, appLogger)

	categorySuggester, err := service.NewCategorySuggester(ctx, &cfg.GigaChat, logger.Named("suggester"))
	if err != nil {
		appLogger.Fatal("Failed to initialize category suggester", zap.Error(err))
	}
	defer categorySuggester.Close()

	var suggester service.Suggester
	if categorySuggester.Enabled() {
		suggester = categorySuggester
	}
	scanService := service.NewScanService(
		scanRepo, scanCache, ocrService, catalogRepo, suggester, ledgerRepo,
		cfg.OCR.UploadDir, cfg.OCR.MaxUploadSize, logger.Named("scan"),
	)

	// Catch up recurring rules that fell due while the service was down
	if cfg.Recurring.RunOnStartup {
		runCtx, cancel := context.WithTimeout(ctx, time.Minute)
		res, err := recurringService.RunAll(runCtx)
		cancel()
		if err != nil {
			appLogger.Error("Recurring catch-up failed", zap.Error(err))
		}
		if res != nil {
			appLogger.Info("Recurring catch-up finished",
				zap.Int("generated", res.Generated),
				zap.Int("deactivated", res.Deactivated),
			)
		}
	}

	// Initialize handlers
	h := api.Handlers{
		Auth:        handlers.NewAuthHandler(authService, appLogger),
		Transaction: handlers.NewTransactionHandler(ledgerService, appLogger),
		Recurring:   handlers.NewRecurringHandler(recurringService, appLogger),
		Budget:      handlers.NewBudgetHandler(budgetService, appLogger),
		Catalog:     handlers.NewCatalogHandler(catalogService, appLogger),
		Receipt:     handlers.NewReceiptHandler(scanService, cfg.OCR.MaxUploadSize, appLogger),
		Savings:     handlers.NewSavingsHandler(savingsService, appLogger),
		Debt:        handlers.NewDebtHandler(debtService, appLogger),
	}

	// Setup router
	app := api.SetupRouter(h, api.RouterConfig{
		BodyLimit:    cfg.Server.BodyLimit,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		ScanLimiter:  middleware.NewRateLimiter(cfg.RateLimit.ScansPerMinute, cfg.RateLimit.ScanBurst),
	}, jwtManager, appLogger)

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
