package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/wricardo/mcp-training/pathboard/game/engine"
	"github.com/wricardo/mcp-training/pathboard/game/service"
)

// ErrInvalidSessionData is returned when a stored session cannot be restored
var ErrInvalidSessionData = errors.New("invalid session data")

// SessionPersistence defines the interface for persisting sessions and the
// last-used task configuration
type SessionPersistence interface {
	// Save persists a session's state together with its configuration
	Save(session *service.Session) error

	// Load retrieves a session from storage by ID
	Load(id string) (*service.Session, error)

	// Delete removes a session from storage
	Delete(id string) error

	// ListAll returns all persisted session IDs
	ListAll() ([]string, error)

	// Exists checks if a session exists in storage
	Exists(id string) bool

	// SaveLastConfig records the configuration of the most recently started game
	SaveLastConfig(config *engine.GameConfig) error

	// LoadLastConfig returns the recorded configuration, or nil when there is none
	LoadLastConfig() (*engine.GameConfig, error)
}

// PersistedSessionData represents the stored form of a session
type PersistedSessionData struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameConfig     *engine.GameConfig `json:"game_config"`
	GameState      *engine.GameState  `json:"game_state"`
}

// snapshot converts a live session into its stored form
func snapshot(session *service.Session) (*PersistedSessionData, error) {
	if session == nil {
		return nil, fmt.Errorf("session cannot be nil")
	}
	if session.Config == nil || session.Engine == nil {
		return nil, fmt.Errorf("session %s has no game", session.ID)
	}

	return &PersistedSessionData{
		ID:             session.ID,
		ConfigName:     session.Config.Name,
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		GameConfig:     session.Config,
		GameState:      session.Engine.GetState(),
	}, nil
}

// restore rebuilds a session from its stored form. The random source of a
// seeded game is not stored, so restored games continue on the production source.
func restore(data *PersistedSessionData) (*service.Session, error) {
	if data.GameConfig == nil {
		return nil, fmt.Errorf("%w: session %s has no configuration", ErrInvalidSessionData, data.ID)
	}

	gameEngine, err := engine.NewEngine(data.GameConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create game engine: %w", err)
	}

	if data.GameState != nil {
		if err := gameEngine.SetState(data.GameState); err != nil {
			return nil, fmt.Errorf("failed to set game state: %w", err)
		}
	}

	return &service.Session{
		ID:             data.ID,
		Engine:         gameEngine,
		Config:         data.GameConfig,
		CreatedAt:      data.CreatedAt,
		LastAccessedAt: data.LastAccessedAt,
	}, nil
}
