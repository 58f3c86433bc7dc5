package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the process configuration, loaded from the environment
type Config struct {
	// StorageType selects the storage backend ("memory" or "redis")
	StorageType string `env:"STORAGE_TYPE" envDefault:"memory"`
	// RedisURL is required when StorageType is "redis"
	RedisURL string `env:"REDIS_URL"`

	// HTTPPort is where the health/leaderboard API listens
	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`

	// ProviderBaseURL is the speedrun record API root
	ProviderBaseURL string `env:"SPEEDRUN_API_URL" envDefault:"https://www.speedrun.com/api"`

	// TriviaPath points at the trivia question bank
	TriviaPath string `env:"TRIVIA_QUESTIONS" envDefault:"data/trivia_questions.json"`
	// SuggestChannelID receives accepted trivia suggestions
	SuggestChannelID string `env:"SUGGEST_CHANNEL_ID"`

	// GuessTimeout bounds challenge rounds
	GuessTimeout time.Duration `env:"GUESS_TIMEOUT" envDefault:"30s"`
	// SuggestTimeout bounds each suggestion prompt
	SuggestTimeout time.Duration `env:"SUGGEST_TIMEOUT" envDefault:"5m"`

	// RoleButtons defines the role panel as "Label=roleID" pairs
	RoleButtons []string `env:"ROLE_BUTTONS" envSeparator:","`
}

// Load reads configuration from the environment
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// RoleButton is one parsed ROLE_BUTTONS entry
type RoleButton struct {
	Label  string
	RoleID string
}

// ParseRoleButtons splits the configured "Label=roleID" pairs
func (c *Config) ParseRoleButtons() ([]RoleButton, error) {
	buttons := make([]RoleButton, 0, len(c.RoleButtons))
	for _, raw := range c.RoleButtons {
		label, roleID, ok := strings.Cut(raw, "=")
		label, roleID = strings.TrimSpace(label), strings.TrimSpace(roleID)
		if !ok || label == "" || roleID == "" {
			return nil, fmt.Errorf("invalid role button %q, want Label=roleID", raw)
		}
		buttons = append(buttons, RoleButton{Label: label, RoleID: roleID})
	}
	return buttons, nil
}
