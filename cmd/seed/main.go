package main

import (
	"context"
	"time"

	"github.com/mun-hub/munhub/internal/config"
	"github.com/mun-hub/munhub/internal/fixtures"
	"github.com/mun-hub/munhub/internal/logging"
	"github.com/mun-hub/munhub/internal/storage"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	setupConfig()
	logging.Init()

	cfg := config.New()

	db, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store := storage.New(db)
	if err := store.Migrate(ctx); err != nil {
		logrus.Fatalf("Failed to migrate database: %v", err)
	}

	if err := fixtures.Seed(ctx, db); err != nil {
		logrus.Fatalf("Failed to seed fixtures: %v", err)
	}

	logrus.Info("fixtures seeded")
}

func setupConfig() {
	config.SetupCommon()
}
