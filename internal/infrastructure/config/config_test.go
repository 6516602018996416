package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("ENV_TYPE", "LOCAL")
	t.Setenv("LOCAL_DB_HOST", "127.0.0.1")
	t.Setenv("LOCAL_DB_USER", "rw")
	t.Setenv("LOCAL_DB_NAME", "rwportal")
	t.Setenv("JWT_SECRET_KEY", "secret")
}

func TestLoadConfig(t *testing.T) {
	t.Run("ok with defaults", func(t *testing.T) {
		setRequired(t)

		cfg, err := LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, "LOCAL", cfg.EnvType)
		assert.Equal(t, "127.0.0.1", cfg.DBHost)
		assert.Equal(t, "auto", cfg.DBMigrationMode)
		assert.Equal(t, "umum", cfg.DuesDefaultZone)
		assert.Equal(t, 20, cfg.DuesSkippedPreview)
		assert.False(t, cfg.RedisEnabled)
		assert.Contains(t, cfg.GetDSN(), "rw:@tcp(127.0.0.1:3306)/rwportal")
	})

	t.Run("missing required variables fail loudly", func(t *testing.T) {
		t.Setenv("ENV_TYPE", "SERVER")
		t.Setenv("SERVER_DB_HOST", "")
		t.Setenv("DB_HOST", "")

		_, err := LoadConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SERVER_DB_HOST")
	})

	t.Run("unknown env type", func(t *testing.T) {
		setRequired(t)
		t.Setenv("ENV_TYPE", "STAGING")

		_, err := LoadConfig()
		assert.Error(t, err)
	})

	t.Run("zone aliases", func(t *testing.T) {
		setRequired(t)
		t.Setenv("DUES_ZONE_ALIASES", "Blok A=Timur, blok-b = Barat")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"Blok A": "Timur", "blok-b": "Barat"}, cfg.DuesZoneAliases)
	})

	t.Run("bad alias entry", func(t *testing.T) {
		setRequired(t)
		t.Setenv("DUES_ZONE_ALIASES", "Blok A")

		_, err := LoadConfig()
		assert.Error(t, err)
	})

	t.Run("sqlite needs no connection settings", func(t *testing.T) {
		t.Setenv("ENV_TYPE", "LOCAL")
		t.Setenv("LOCAL_DB_HOST", "")
		t.Setenv("DB_HOST", "")
		t.Setenv("LOCAL_DB_DRIVER", "sqlite")
		t.Setenv("LOCAL_DB_PATH", "/tmp/rw.db")
		t.Setenv("JWT_SECRET_KEY", "secret")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, "sqlite", cfg.DBDriver)
		assert.Equal(t, "/tmp/rw.db", cfg.DBPath)
	})

	t.Run("invalid migration mode", func(t *testing.T) {
		setRequired(t)
		t.Setenv("LOCAL_DB_MIGRATION_MODE", "truncate")

		_, err := LoadConfig()
		assert.Error(t, err)
	})
}
