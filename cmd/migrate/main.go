// Command migrate applies schema migrations and exits. Deployments run it
// before rolling the server; the server also migrates at startup for
// development convenience.
package main

import (
	"context"
	"fmt"
	"os"

	"treasurehunt/internal/platform/config"
	"treasurehunt/internal/platform/database"
	"treasurehunt/internal/platform/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Environment)

	db, err := database.Open(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(db, cfg.MigrationsDir); err != nil {
		return err
	}
	log.Info("migrations applied", "dir", cfg.MigrationsDir)
	return nil
}
