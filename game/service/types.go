package service

import (
	"time"

	"github.com/wricardo/mcp-training/pathboard/game/engine"
)

// Event types reported with game operations
const (
	EventRoll          = "roll"
	EventBonusRoll     = "bonus_roll"
	EventMove          = "move"
	EventBounce        = "bounce"
	EventTaskAssigned  = "task_assigned"
	EventTaskCompleted = "task_completed"
	EventVictory       = "victory"
	EventReset         = "reset"
	EventStart         = "start"
)

// SessionOptions controls how a new session's game is set up
type SessionOptions struct {
	// ConfigID names a preset; empty uses the default preset.
	ConfigID string `json:"config_id,omitempty"`
	// Tasks replaces the preset's task list when non-empty.
	Tasks []engine.TaskDefinition `json:"tasks,omitempty"`
	// Seed makes the game reproducible when non-nil.
	Seed *int64 `json:"seed,omitempty"`
}

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	Status         engine.Status      `json:"status"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// RollResult contains the result of a dice roll
type RollResult struct {
	Value     int               `json:"value"`
	BonusRoll bool              `json:"bonus_roll"`
	GameState *engine.GameState `json:"game_state"`
	Message   string            `json:"message"`
	Events    []GameEvent       `json:"events,omitempty"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	Outcome   engine.MoveOutcome `json:"outcome"`
	Status    engine.Status      `json:"status"`
	GameState *engine.GameState  `json:"game_state"`
	Message   string             `json:"message"`
	Events    []GameEvent        `json:"events,omitempty"`
}

// TurnResult contains a roll and the move it produced
type TurnResult struct {
	Roll      int                `json:"roll"`
	BonusRoll bool               `json:"bonus_roll"`
	Outcome   engine.MoveOutcome `json:"outcome"`
	Status    engine.Status      `json:"status"`
	GameState *engine.GameState  `json:"game_state"`
	Message   string             `json:"message"`
	Events    []GameEvent        `json:"events,omitempty"`
}

// CompleteResult contains the result of reporting a task as done.
// Success is false when there was no unresolved task to complete.
type CompleteResult struct {
	Success   bool              `json:"success"`
	TaskName  string            `json:"task_name,omitempty"`
	Count     int               `json:"count,omitempty"`
	Totals    map[string]int    `json:"totals"`
	GameState *engine.GameState `json:"game_state"`
	Message   string            `json:"message"`
	Events    []GameEvent       `json:"events,omitempty"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Position  int       `json:"position"`
}

// HistoryOptions configures turn history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated turn history
type HistoryResponse struct {
	Turns       []engine.TurnRecord `json:"turns"`
	TotalTurns  int                 `json:"total_turns"`
	Page        int                 `json:"page"`
	PageSize    int                 `json:"page_size"`
	TotalPages  int                 `json:"total_pages"`
	HasNext     bool                `json:"has_next"`
	HasPrevious bool                `json:"has_previous"`
}

// LayoutInfo describes the board a session is played on
type LayoutInfo struct {
	Rows        int            `json:"rows"`
	Cols        int            `json:"cols"`
	CellSize    int            `json:"cell_size"`
	Spacing     int            `json:"spacing"`
	PathLength  int            `json:"path_length"`
	Coordinates []engine.Point `json:"coordinates"`
	Connections [][2]int       `json:"connections"`
}

// ConfigInfo provides information about a task preset
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use for session creation
	Name        string `json:"name"`      // Display name
	Description string `json:"description"`
	Rows        int    `json:"rows"`
	Cols        int    `json:"cols"`
	PathLength  int    `json:"path_length"`
	TaskCount   int    `json:"task_count"`
}
