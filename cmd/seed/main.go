// Command seed installs the default roles, modules, resources, permissions and grants.
// It is safe to run repeatedly.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"accessapi/internal/config"
	"accessapi/internal/database"
	"accessapi/internal/logging"
	"accessapi/internal/repository"
	"accessapi/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)

	if err := run(logging.IntoContext(context.Background(), logger), cfg.DatabaseURL); err != nil {
		logger.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, databaseURL string) error {
	db, err := database.NewConnection(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	rbac := service.NewRBACService(
		repository.NewRBACRepository(db),
		repository.NewAuditRepository(db),
		repository.NewTransactionManager(db),
	)

	res, err := rbac.Seed(ctx)
	if err != nil {
		return err
	}
	if res.Total() == 0 {
		logging.FromContext(ctx).Info("rbac catalogue already up to date")
	}
	return nil
}
