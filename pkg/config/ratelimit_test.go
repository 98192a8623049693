package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRateLimitConfigFromEnv_Defaults(t *testing.T) {
	cfg := NewRateLimitConfigFromEnv()

	assert.True(t, cfg.PerIPEnabled)
	assert.Equal(t, 60, cfg.PerIPCapacity)
	assert.True(t, cfg.PerCustomerEnabled)
	assert.Equal(t, 120, cfg.PerCustomerCapacity)
	assert.True(t, cfg.SaveEnabled)
	assert.Equal(t, 10, cfg.SaveCapacity)
	assert.Equal(t, 5, cfg.SendCapacity)
	assert.Equal(t, 5, cfg.ConfirmCapacity)
}

func TestNewRateLimitConfigFromEnv_Overrides(t *testing.T) {
	t.Setenv("RATELIMIT_PER_IP_CAPACITY", "7")
	t.Setenv("RATELIMIT_PER_IP_REFILL_RATE", "0.5")
	t.Setenv("RATELIMIT_SAVE_ENABLED", "false")
	t.Setenv("RATELIMIT_SEND_CAPACITY", "not-a-number")

	cfg := NewRateLimitConfigFromEnv()

	assert.Equal(t, 7, cfg.PerIPCapacity)
	assert.Equal(t, 0.5, cfg.PerIPRefillRate)
	assert.False(t, cfg.SaveEnabled)

	// Unparseable values fall back to the default
	assert.Equal(t, 5, cfg.SendCapacity)
}
