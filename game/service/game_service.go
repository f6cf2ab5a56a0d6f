package service

import (
	"context"
	"time"

	"github.com/wricardo/mcp-training/pathboard/game/engine"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, opts SessionOptions) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	StartGame(ctx context.Context, sessionID string, tasks []engine.TaskDefinition) (*engine.GameState, error)
	RollDice(ctx context.Context, sessionID string) (*RollResult, error)
	Move(ctx context.Context, sessionID string, steps int) (*MoveResult, error)
	TakeTurn(ctx context.Context, sessionID string) (*TurnResult, error)
	CompleteTask(ctx context.Context, sessionID string) (*CompleteResult, error)
	Reset(ctx context.Context, sessionID string) (*engine.GameState, error)
	Restart(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)
	GetLayout(ctx context.Context, sessionID string) (*LayoutInfo, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error
	GetLastConfig(ctx context.Context) (*engine.GameConfig, error)
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.GameConfig, opts ...engine.Option) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error

	SaveLastConfig(config *engine.GameConfig) error
	LoadLastConfig() (*engine.GameConfig, error)
}

// ConfigManager handles task preset loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
	SaveConfig(name string, config *engine.GameConfig) error
}

// Session represents an active game session
type Session struct {
	ID             string
	Engine         *engine.GameEngine
	Config         *engine.GameConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
