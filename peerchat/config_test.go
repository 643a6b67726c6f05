package peerchat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("PEERCHAT_BASE_URL", "https://api.example.com/chat")
	t.Setenv("PEERCHAT_USER_ID", "u-42")
	t.Setenv("PEERCHAT_POLL_INTERVAL", "5s")

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/chat", cfg.BaseURL)
	assert.Equal(t, "u-42", cfg.UserID)
	assert.Equal(t, 5*time.Second, cfg.PollInterval)

	// Unset variables fall back to defaults.
	assert.Equal(t, 10*time.Second, cfg.PresenceInterval)
	assert.Equal(t, 3*time.Second, cfg.TypingWindow)
}

func TestConfigFromEnvRejectsBadDuration(t *testing.T) {
	t.Setenv("PEERCHAT_POLL_INTERVAL", "not-a-duration")

	_, err := ConfigFromEnv()
	assert.Equal(t, ErrorInvalidConfig, CodeOf(err))
}

func TestConfigWithDefaults(t *testing.T) {
	cfg := Config{BaseURL: "http://x"}.withDefaults()
	def := DefaultConfig()
	assert.Equal(t, def.PollInterval, cfg.PollInterval)
	assert.Equal(t, def.PresenceInterval, cfg.PresenceInterval)
	assert.Equal(t, def.TypingWindow, cfg.TypingWindow)
	assert.Equal(t, def.RequestTimeout, cfg.RequestTimeout)

	// Explicit values are kept.
	cfg = Config{PollInterval: time.Second}.withDefaults()
	assert.Equal(t, time.Second, cfg.PollInterval)
}
