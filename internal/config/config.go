// Package config loads server configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every deployment-tunable knob, including the policy
// constants (idle timeout, log caps, event cap) that are tuned per
// deployment rather than hard-coded.
type Config struct {
	Port   int    `env:"DREAMLOOM_PORT" envDefault:"8080"`
	DBPath string `env:"DREAMLOOM_DB_PATH" envDefault:"data/dreamloom.db"`

	// Collaborator settings. An empty API key disables the generative
	// stages; every pipeline stage then runs on its built-in defaults.
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
	Model           string `env:"DREAMLOOM_MODEL"`

	// How long a player may stay idle before presence pruning evicts them.
	SessionTimeout time.Duration `env:"DREAMLOOM_SESSION_TIMEOUT" envDefault:"10m"`

	// Bounded log caps.
	HistoryCap int `env:"DREAMLOOM_HISTORY_CAP" envDefault:"50"`
	ChatCap    int `env:"DREAMLOOM_CHAT_CAP" envDefault:"200"`
	StoryCap   int `env:"DREAMLOOM_STORY_CAP" envDefault:"100"`

	// Upper bound on world events recorded per turn.
	MaxEventsPerTurn int `env:"DREAMLOOM_MAX_EVENTS" envDefault:"3"`

	// Extra allowed CORS origins for the HTTP surface.
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:","`
}

// Load parses the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
