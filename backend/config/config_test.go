package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 72*time.Hour, cfg.JWTExpiration)
	assert.Equal(t, 10, cfg.PlatformFeePercent)
	assert.Equal(t, "host=localhost port=5432 user=postgres password=postgres dbname=learnity sslmode=disable", cfg.DSN())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("JWT_EXPIRATION_HOURS", "2")
	t.Setenv("VIDEO_BASE_URL", "https://video.example.com/")
	t.Setenv("PLATFORM_FEE_PERCENT", "15")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 2*time.Hour, cfg.JWTExpiration)
	assert.Equal(t, "https://video.example.com", cfg.VideoBaseURL)
	assert.Equal(t, 15, cfg.PlatformFeePercent)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")
	_, err := LoadConfig()
	assert.Error(t, err)

	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("PLATFORM_FEE_PERCENT", "120")
	_, err = LoadConfig()
	assert.Error(t, err)
}
