package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5000", cfg.API.Backend.Url)
	assert.Equal(t, 10*time.Second, cfg.Jobs.PollInterval)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.Telegram.Enabled())
	assert.Equal(t, 10*time.Second, cfg.Telegram.UpdTimeout)
	assert.Empty(t, cfg.Metrics.Addr)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("BACKEND_URL", "http://risk.internal:8080")
	t.Setenv("POLL_INTERVAL", "3s")
	t.Setenv("TELEGRAM_TOKEN", "token")
	t.Setenv("TELEGRAM_ALERT_CHAT_ID", "42")
	t.Setenv("METRICS_ADDR", ":9102")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://risk.internal:8080", cfg.API.Backend.Url)
	assert.Equal(t, 3*time.Second, cfg.Jobs.PollInterval)
	assert.True(t, cfg.Telegram.Enabled())
	assert.True(t, cfg.Telegram.AlertsEnabled())
	assert.Equal(t, int64(42), cfg.Telegram.AlertChatID)
	assert.Equal(t, ":9102", cfg.Metrics.Addr)
}

func TestLoad_BadDuration(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "often")

	_, err := Load()
	assert.Error(t, err)
}

func TestTelegram_AlertsNeedChat(t *testing.T) {
	tg := Telegram{Token: "token"}

	assert.True(t, tg.Enabled())
	assert.False(t, tg.AlertsEnabled())
}
