package peerchat

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config controls how the engine talks to the backend.
type Config struct {
	// BaseURL is the base URL of the chat API, e.g. "https://api.example.com/chat".
	BaseURL string `env:"PEERCHAT_BASE_URL"`

	// UserID identifies the user to the join endpoint. The server issues an
	// anonymous per-session identity in return; UserID itself is never shown
	// to other room members.
	UserID string `env:"PEERCHAT_USER_ID"`

	// PollInterval is the message poll cadence.
	PollInterval time.Duration `env:"PEERCHAT_POLL_INTERVAL" envDefault:"3s"`

	// PresenceInterval is the presence heartbeat cadence.
	PresenceInterval time.Duration `env:"PEERCHAT_PRESENCE_INTERVAL" envDefault:"10s"`

	// TypingWindow is how long after the last keystroke the typing indicator
	// stays on.
	TypingWindow time.Duration `env:"PEERCHAT_TYPING_WINDOW" envDefault:"3s"`

	// RequestTimeout bounds every individual HTTP request.
	RequestTimeout time.Duration `env:"PEERCHAT_REQUEST_TIMEOUT" envDefault:"30s"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		PollInterval:     3 * time.Second,
		PresenceInterval: 10 * time.Second,
		TypingWindow:     3 * time.Second,
		RequestTimeout:   30 * time.Second,
	}
}

// ConfigFromEnv builds a Config from PEERCHAT_* environment variables,
// falling back to the same defaults as DefaultConfig.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, WrapError(ErrorInvalidConfig, "parse environment", err)
	}
	return cfg, nil
}

// withDefaults fills zero-valued intervals so a partially filled Config
// behaves like DefaultConfig.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.PollInterval <= 0 {
		c.PollInterval = def.PollInterval
	}
	if c.PresenceInterval <= 0 {
		c.PresenceInterval = def.PresenceInterval
	}
	if c.TypingWindow <= 0 {
		c.TypingWindow = def.TypingWindow
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = def.RequestTimeout
	}
	return c
}
