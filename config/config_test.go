package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"PORT", "DATABASE_URL", "DB_MAX_OPEN_CONNS", "GATEWAY_TOKEN", "GAME_SERVICE_TOKEN", "JWT_SECRET",
		"ALLOWED_ORIGINS", "NATS_URL", "CATALOG_FILE", "CATALOG_S3_BUCKET", "CATALOG_S3_KEY",
		"R2_ACCOUNT_ID", "R2_ACCESS_KEY_ID", "R2_ACCESS_KEY_SECRET", "PROFILE_SYNC_URL",
		"SERVICE_TOKEN", "PROFILE_SYNC_INTERVAL", "SWEEP_INTERVAL", "SWEEP_LOOKBACK", "LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)
	cfg := FromEnv()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 10, cfg.DBMaxOpenConns)
	assert.Equal(t, "achievements/catalog.yaml", cfg.CatalogS3Key)
	assert.Equal(t, 15*time.Minute, cfg.SweepInterval)
	assert.Equal(t, 24*time.Hour, cfg.SweepLookback)
	assert.Equal(t, 5*time.Minute, cfg.ProfileSyncInterval)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.False(t, cfg.HasR2())
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("DB_MAX_OPEN_CONNS", "25")
	t.Setenv("SWEEP_INTERVAL", "90s")
	t.Setenv("SWEEP_LOOKBACK", "not-a-duration")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("GAME_SERVICE_TOKEN", "legacy-token")

	cfg := FromEnv()
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 25, cfg.DBMaxOpenConns)
	assert.Equal(t, 90*time.Second, cfg.SweepInterval)
	assert.Equal(t, 24*time.Hour, cfg.SweepLookback, "invalid durations fall back")
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "legacy-token", cfg.GatewayToken, "old token variable still honoured")

	t.Setenv("GATEWAY_TOKEN", "new-token")
	assert.Equal(t, "new-token", FromEnv().GatewayToken)
}

func TestValidate(t *testing.T) {
	valid := Config{DatabaseURL: "postgres://localhost/achievements", GatewayToken: "gw", JWTSecret: "s"}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing database", func(c *Config) { c.DatabaseURL = "" }},
		{"missing gateway token", func(c *Config) { c.GatewayToken = "" }},
		{"missing jwt secret", func(c *Config) { c.JWTSecret = "" }},
		{"sync without service token", func(c *Config) { c.ProfileSyncURL = "http://profiles" }},
		{"bucket without credentials", func(c *Config) { c.CatalogS3Bucket = "catalogs" }},
		{"negative sweep", func(c *Config) { c.SweepInterval = -time.Second }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
