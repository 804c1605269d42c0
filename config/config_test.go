package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("API_KEY", "secret")
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("PORT", "")
	t.Setenv("FRONTEND_URL", "")
	t.Setenv("RATE_LIMIT_WINDOW", "")
	t.Setenv("RATE_LIMIT_MAX", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Server.Port)
	assert.True(t, cfg.Server.IsDevelopment())
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, 100, cfg.RateLimit.Max)
	assert.Equal(t, int64(10240), cfg.Server.BodyLimit)
}

func TestLoad_RequiresAPIKey(t *testing.T) {
	t.Setenv("API_KEY", "")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("DISABLE_API_KEY", "true")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_DevelopmentBypass(t *testing.T) {
	t.Setenv("API_KEY", "")
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("DISABLE_API_KEY", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.API.DisableKeyAuth)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("API_KEY", "secret")
	t.Setenv("RATE_LIMIT_WINDOW", "quinze minutes")
	t.Setenv("DB_POOL_MAX", "beaucoup")
	t.Setenv("FRONTEND_URL", " https://a.fr , ,https://b.fr")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, 5, cfg.Database.MaxOpenConns)
	assert.Equal(t, []string{"https://a.fr", "https://b.fr"}, cfg.CORS.AllowedOrigins)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	mysqlCfg := DatabaseConfig{
		Driver: "mysql", Host: "db", Port: "3306",
		User: "app", Password: "p@ss", DBName: "artisans",
	}
	dsn := mysqlCfg.DSN()
	assert.True(t, strings.HasPrefix(dsn, "app:p@ss@tcp(db:3306)/artisans?"))
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "charset=utf8mb4")

	pgCfg := DatabaseConfig{
		Driver: "postgres", Host: "db", Port: "5432",
		User: "app", Password: "secret", DBName: "artisans", SSLMode: "disable",
	}
	assert.Equal(t, "host=db port=5432 user=app password=secret dbname=artisans sslmode=disable", pgCfg.DSN())
}

func TestStorageConfig_S3Enabled(t *testing.T) {
	assert.False(t, StorageConfig{}.S3Enabled())
	assert.True(t, StorageConfig{S3Bucket: "images"}.S3Enabled())
}
