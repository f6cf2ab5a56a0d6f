package engine

import "errors"

const (
	// Track constants
	MinPathLength = 2
	DiceSides     = 6

	// Validation constants
	MinGridSize  = 1
	MaxGridSize  = 50
	MaxTaskCount = 10000
)

var (
	// ErrInvalidConfiguration is returned for empty or malformed task definitions
	// and for tracks shorter than MinPathLength.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrIllegalState is returned when an operation is attempted while the game
	// is not in a state that permits it.
	ErrIllegalState = errors.New("illegal state")
)

// Status is the externally visible phase of a game
type Status string

const (
	StatusIdle        Status = "idle"
	StatusInProgress  Status = "in_progress"
	StatusTaskPending Status = "task_pending"
	StatusWon         Status = "won"
)

// TaskDefinition describes one task type and the range its quantity is drawn from
type TaskDefinition struct {
	Name     string `json:"name"`
	MinCount int    `json:"min_count"`
	MaxCount int    `json:"max_count"`
}

// Cell is a single position on the track
type Cell struct {
	TaskName  string `json:"task_name"`
	Count     int    `json:"count"`
	Completed bool   `json:"completed"`
}

// IsBoundary reports whether the cell carries no task (start or terminal marker)
func (c Cell) IsBoundary() bool {
	return c.TaskName == ""
}

// GameConfig is a named task configuration together with the board it is played on
type GameConfig struct {
	Name           string           `json:"name"`
	Description    string           `json:"description"`
	Rows           int              `json:"rows"`
	Cols           int              `json:"cols"`
	BonusRollOnSix bool             `json:"bonus_roll_on_six"`
	Tasks          []TaskDefinition `json:"tasks"`
}

// GameState represents the complete game state
type GameState struct {
	GameID           string         `json:"game_id,omitempty"`
	ConfigName       string         `json:"config_name,omitempty"`
	Position         int            `json:"position"`
	TotalRolls       int            `json:"total_rolls"`
	TasksCompleted   int            `json:"tasks_completed"`
	Cells            []Cell         `json:"cells"`
	IsOver           bool           `json:"is_over"`
	CanRoll          bool           `json:"can_roll"`
	CompletionTotals map[string]int `json:"completion_totals"`

	// PendingRoll holds the value returned by the last RollDice that has not
	// yet been consumed by Move. Zero means no roll is pending.
	PendingRoll      int  `json:"pending_roll,omitempty"`
	ConsecutiveSixes int  `json:"consecutive_sixes,omitempty"`
	BonusRoll        bool `json:"bonus_roll,omitempty"`

	History []TurnRecord `json:"history"`
}

// TurnRecord is a single resolved move in the game history
type TurnRecord struct {
	TurnNumber    int   `json:"turn_number"`
	Roll          int   `json:"roll"`
	FromPosition  int   `json:"from_position"`
	ToPosition    int   `json:"to_position"`
	BackwardSteps int   `json:"backward_steps,omitempty"`
	BonusRoll     bool  `json:"bonus_roll,omitempty"`
	Finished      bool  `json:"finished,omitempty"`
	Timestamp     int64 `json:"timestamp"`
}

// RollResult is the outcome of a single die roll
type RollResult struct {
	Value     int  `json:"value"`
	BonusRoll bool `json:"bonus_roll"`
}

// MoveOutcome describes where a move ended and how it got there
type MoveOutcome struct {
	From          int  `json:"from"`
	To            int  `json:"to"`
	Steps         int  `json:"steps"`
	BackwardSteps int  `json:"backward_steps"`
	Bounced       bool `json:"bounced"`
	Finished      bool `json:"finished"`
	Cell          Cell `json:"cell"`
}

// NewIdleState returns the state of an engine with no active game
func NewIdleState() *GameState {
	return &GameState{
		Position:         0,
		TotalRolls:       0,
		TasksCompleted:   0,
		Cells:            []Cell{},
		IsOver:           false,
		CanRoll:          true,
		CompletionTotals: make(map[string]int),
		History:          []TurnRecord{},
	}
}

// Status derives the phase of the game from the state fields
func (s *GameState) Status() Status {
	switch {
	case len(s.Cells) == 0:
		return StatusIdle
	case s.IsOver:
		return StatusWon
	case !s.CanRoll:
		return StatusTaskPending
	default:
		return StatusInProgress
	}
}
