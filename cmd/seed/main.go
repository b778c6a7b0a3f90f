package main

import (
	"context"
	"flag"
	"log"
	"strings"

	"pocket-ledger/internal/repository"
	"pocket-ledger/internal/service"
	"pocket-ledger/pkg/config"
	"pocket-ledger/pkg/logger"
	"pocket-ledger/pkg/postgres"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// seed applies the schema and restores the default categories and payment
// methods of one user, or of every user when no flag is given. Rows that
// already exist are kept.
func main() {
	email := flag.String("email", "", "seed the user with this email")
	userID := flag.String("user-id", "", "seed the user with this id")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	// Connect to database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db, appLogger); err != nil {
		logger.Fatal("Failed to apply database schema", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(db, appLogger)
	catalogService := service.NewCatalogService(repository.NewCatalogRepository(db, appLogger), appLogger)

	var targets []uuid.UUID
	switch {
	case *userID != "":
		id, err := uuid.Parse(*userID)
		if err != nil {
			logger.Fatal("Invalid user id", zap.String("user_id", *userID), zap.Error(err))
		}
		if _, err := userRepo.GetByID(ctx, id); err != nil {
			logger.Fatal("User not found", zap.String("user_id", *userID), zap.Error(err))
		}
		targets = append(targets, id)
	case *email != "":
		user, err := userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(*email)))
		if err != nil {
			logger.Fatal("User not found", zap.String("email", *email), zap.Error(err))
		}
		targets = append(targets, user.ID)
	default:
		ids, err := userRepo.ListIDs(ctx)
		if err != nil {
			logger.Fatal("Failed to list users", zap.Error(err))
		}
		targets = ids
	}

	logger.Info("Starting catalog seeding...", zap.Int("users", len(targets)))

	for _, id := range targets {
		if err := catalogService.SeedDefaults(ctx, id); err != nil {
			logger.Error("Failed to seed catalog", zap.String("user_id", id.String()), zap.Error(err))
			continue
		}
		logger.Info("Seeded default catalog", zap.String("user_id", id.String()))
	}

	logger.Info("Catalog seeding completed successfully!")
}
