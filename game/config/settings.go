package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Storage backends for sessions
const (
	StorageFile   = "file"
	StorageSQLite = "sqlite"
	StorageMemory = "memory"
)

// Settings holds process settings read from the environment. Command line
// flags default to these values.
type Settings struct {
	Host       string        `env:"PATHBOARD_HOST"        envDefault:"localhost"`
	Port       int           `env:"PATHBOARD_PORT"        envDefault:"8080"`
	ConfigDir  string        `env:"PATHBOARD_CONFIG_DIR"  envDefault:"configs"`
	DataDir    string        `env:"PATHBOARD_DATA_DIR"    envDefault:"sessions"`
	Storage    string        `env:"PATHBOARD_STORAGE"     envDefault:"file"`
	SessionTTL time.Duration `env:"PATHBOARD_SESSION_TTL" envDefault:"24h"`
	Debug      bool          `env:"PATHBOARD_DEBUG"`

	NgrokEnabled   bool   `env:"NGROK_ENABLED"`
	NgrokAuthToken string `env:"NGROK_AUTHTOKEN"`
	NgrokDomain    string `env:"NGROK_DOMAIN"`
}

// LoadSettings parses Settings from the environment
func LoadSettings() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("parse env: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks values env parsing cannot
func (s Settings) Validate() error {
	switch s.Storage {
	case StorageFile, StorageSQLite, StorageMemory:
	default:
		return fmt.Errorf("%w: storage must be %s, %s or %s, got %q", ErrInvalidConfig, StorageFile, StorageSQLite, StorageMemory, s.Storage)
	}
	if s.Port < 0 || s.Port > 65535 {
		return fmt.Errorf("%w: port out of range: %d", ErrInvalidConfig, s.Port)
	}
	if s.SessionTTL <= 0 {
		return fmt.Errorf("%w: session ttl must be positive, got %s", ErrInvalidConfig, s.SessionTTL)
	}
	return nil
}
