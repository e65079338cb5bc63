package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"achievement-engine/catalog"
	"achievement-engine/config"
	"achievement-engine/utils"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupLogger(level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

func openDB(cfg config.Config) (*gorm.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	if cfg.DBMaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	}
	return db, nil
}

// loadCatalog picks the catalog source: the R2 object when a bucket is
// configured, then CATALOG_FILE, then the builtin catalog.
func loadCatalog(ctx context.Context, cfg config.Config) (*catalog.Catalog, string, error) {
	switch {
	case cfg.CatalogS3Bucket != "":
		client, err := utils.NewR2Client(ctx, cfg.R2AccountID, cfg.R2AccessKeyID, cfg.R2AccessKeySecret)
		if err != nil {
			return nil, "", err
		}
		source := fmt.Sprintf("s3://%s/%s", cfg.CatalogS3Bucket, cfg.CatalogS3Key)
		c, err := catalog.LoadObject(ctx, client, cfg.CatalogS3Bucket, cfg.CatalogS3Key)
		return c, source, err
	case cfg.CatalogFile != "":
		c, err := catalog.LoadFile(cfg.CatalogFile)
		return c, cfg.CatalogFile, err
	default:
		return catalog.Default(), "builtin", nil
	}
}
