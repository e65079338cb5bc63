// Package config reads service settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	DatabaseURL    string
	DBMaxOpenConns int
	GatewayToken   string
	JWTSecret      string
	AllowedOrigins string
	NATSURL        string

	CatalogFile     string
	CatalogS3Bucket string
	CatalogS3Key    string

	R2AccountID       string
	R2AccessKeyID     string
	R2AccessKeySecret string

	ProfileSyncURL      string
	ServiceToken        string
	ProfileSyncInterval time.Duration

	SweepInterval time.Duration
	SweepLookback time.Duration

	LogLevel slog.Level
}

// Load reads .env (if present) and then the environment. Variables already
// set in the environment win over .env.
func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("[CONFIG] could not read .env", "error", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() Config {
	return Config{
		Port:           getEnv("PORT", "8080"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 10),
		GatewayToken:   getEnv("GATEWAY_TOKEN", os.Getenv("GAME_SERVICE_TOKEN")),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),
		NATSURL:        os.Getenv("NATS_URL"),

		CatalogFile:     os.Getenv("CATALOG_FILE"),
		CatalogS3Bucket: os.Getenv("CATALOG_S3_BUCKET"),
		CatalogS3Key:    getEnv("CATALOG_S3_KEY", "achievements/catalog.yaml"),

		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2AccessKeySecret: os.Getenv("R2_ACCESS_KEY_SECRET"),

		ProfileSyncURL:      os.Getenv("PROFILE_SYNC_URL"),
		ServiceToken:        os.Getenv("SERVICE_TOKEN"),
		ProfileSyncInterval: getEnvDuration("PROFILE_SYNC_INTERVAL", 5*time.Minute),

		SweepInterval: getEnvDuration("SWEEP_INTERVAL", 15*time.Minute),
		SweepLookback: getEnvDuration("SWEEP_LOOKBACK", 24*time.Hour),

		LogLevel: getEnvLevel("LOG_LEVEL", slog.LevelInfo),
	}
}

// Validate checks what `serve` cannot run without.
func (c Config) Validate() error {
	var problems []string
	if c.DatabaseURL == "" {
		problems = append(problems, "DATABASE_URL is not set")
	}
	if c.GatewayToken == "" {
		problems = append(problems, "GATEWAY_TOKEN is not set, service cannot authenticate the gateway")
	}
	if c.JWTSecret == "" {
		problems = append(problems, "JWT_SECRET is not set, notification stream cannot authenticate")
	}
	if c.ProfileSyncURL != "" && c.ServiceToken == "" {
		problems = append(problems, "SERVICE_TOKEN is required when PROFILE_SYNC_URL is set")
	}
	if c.CatalogS3Bucket != "" && !c.HasR2() {
		problems = append(problems, "R2_ACCOUNT_ID, R2_ACCESS_KEY_ID and R2_ACCESS_KEY_SECRET are required when CATALOG_S3_BUCKET is set")
	}
	if c.SweepInterval < 0 {
		problems = append(problems, "SWEEP_INTERVAL must not be negative")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// HasR2 reports whether object storage credentials are complete.
func (c Config) HasR2() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2AccessKeySecret != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		slog.Warn("[CONFIG] invalid duration, using default", "key", key, "value", v, "default", fallback)
	}
	return fallback
}

func getEnvLevel(key string, fallback slog.Level) slog.Level {
	if v := os.Getenv(key); v != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(v)); err == nil {
			return level
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
