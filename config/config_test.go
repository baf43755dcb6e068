package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "home.json", cfg.DataFile)
	assert.Equal(t, "snapshots.json", cfg.SnapshotFile)
	assert.Equal(t, 30, cfg.SnapshotMaxPerKey)
	assert.Equal(t, 30, cfg.RecycleRetentionDays)
	assert.Equal(t, 8, cfg.LoginMaxAttempts)
	assert.Equal(t, 10*time.Minute, cfg.LoginWindow)
	assert.Equal(t, 168*time.Hour, cfg.TokenExpiration)
}

func TestLoad_ClampsKnobs(t *testing.T) {
	t.Setenv("SNAPSHOT_MAX_PER_KEY", "1000")
	t.Setenv("RECYCLE_RETENTION_DAYS", "0")

	cfg := Load()
	assert.Equal(t, 200, cfg.SnapshotMaxPerKey)
	assert.Equal(t, 1, cfg.RecycleRetentionDays)
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("SNAPSHOT_MAX_PER_KEY", "lots")
	t.Setenv("TOKEN_EXPIRATION", "not-a-duration")

	cfg := Load()
	assert.Equal(t, 30, cfg.SnapshotMaxPerKey)
	assert.Equal(t, 168*time.Hour, cfg.TokenExpiration)
}
