package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 3, cfg.Cache.RetryCap)
	assert.Equal(t, 200*time.Millisecond, cfg.Cache.RetryBase)
	assert.Equal(t, 30*time.Second, cfg.Cache.NegativeTTL)
	assert.Zero(t, cfg.Cache.TTL)
	assert.Equal(t, 10, cfg.History.RecentsCapacity)
	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.NotEmpty(t, cfg.Logging.File)
	assert.False(t, cfg.Drive.Offline)
}

func TestIsConfigured(t *testing.T) {
	cfg := DefaultConfig()
	assert.False(t, cfg.IsConfigured())

	cfg.Drive.Token = "ya29.token"
	assert.True(t, cfg.IsConfigured())

	cfg.Drive.Token = ""
	cfg.Drive.Offline = true
	assert.True(t, cfg.IsConfigured())
}
