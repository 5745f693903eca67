package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hotpotspot/franchise-ledger/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("LEDGER_MAIN_OWNER_WALLET", "0x1111111111111111111111111111111111111111")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 4, cfg.Difficulty)
	assert.Equal(t, uint64(1000), cfg.MinStake)
	assert.Equal(t, uint64(500), cfg.BlockReward)
	assert.Equal(t, 24*time.Hour, cfg.SweepInterval)
	assert.False(t, cfg.Debug)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LEDGER_MAIN_OWNER_WALLET", "0x1111111111111111111111111111111111111111")
	t.Setenv("LEDGER_CHARITY_WALLET", "0x2222222222222222222222222222222222222222")
	t.Setenv("LEDGER_PORT", "9090")
	t.Setenv("LEDGER_DEBUG", "true")
	t.Setenv("LEDGER_DIFFICULTY", "2")
	t.Setenv("LEDGER_POSTGRES_DSN", "postgres://test")
	t.Setenv("LEDGER_SWEEP_INTERVAL", "1h")
	t.Setenv("LEDGER_API_KEYS", "key-one, key-two,")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 2, cfg.Difficulty)
	assert.Equal(t, "postgres://test", cfg.PostgresDSN)
	assert.Equal(t, time.Hour, cfg.SweepInterval)
	assert.Equal(t, "0x2222222222222222222222222222222222222222", cfg.CharityWallet)
	assert.Equal(t, []string{"key-one", "key-two"}, cfg.APIKeys)
}

func TestLoadValidation(t *testing.T) {
	t.Run("missing owner wallet", func(t *testing.T) {
		t.Setenv("LEDGER_MAIN_OWNER_WALLET", "")
		_, err := config.Load("")
		assert.ErrorContains(t, err, "LEDGER_MAIN_OWNER_WALLET")
	})

	t.Run("difficulty out of range", func(t *testing.T) {
		t.Setenv("LEDGER_MAIN_OWNER_WALLET", "0x1111111111111111111111111111111111111111")
		t.Setenv("LEDGER_DIFFICULTY", "12")
		_, err := config.Load("")
		assert.ErrorContains(t, err, "difficulty")
	})
}
