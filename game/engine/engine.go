package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Lifecycle
	Initialize(tasks []TaskDefinition) error
	Restart() error
	Reset() *GameState

	// Turn operations
	RollDice() (RollResult, error)
	Move(steps int) (MoveOutcome, error)
	TakeTurn() (RollResult, MoveOutcome, error)
	CompleteTask() bool

	// Game state
	GetState() *GameState
	SetState(state *GameState) error
	Status() Status
	IsGameOver() bool
	CanRoll() bool
	GetPosition() int
	CurrentCell() (Cell, bool)
	CompletionRate() float64
	TaskStats() map[string]int

	// Configuration
	GetConfig() *GameConfig
	GetLayout() Layout
	Tasks() []TaskDefinition
}

// GameEngine implements the Engine interface. It owns one game; callers
// serialize access to it.
type GameEngine struct {
	state  *GameState
	config *GameConfig
	layout Layout
	tasks  []TaskDefinition
	rng    Random
	dice   *Dice

	bonusRollOnSix bool
}

// Option configures a GameEngine
type Option func(*GameEngine)

// WithRandom sets the random source shared by allocation and dice
func WithRandom(rng Random) Option {
	return func(e *GameEngine) {
		if rng != nil {
			e.rng = rng
		}
	}
}

// WithSeed makes the engine reproducible using the seeded LCG
func WithSeed(seed int64) Option {
	return WithRandom(NewLCG(seed))
}

// WithLayout overrides the board
func WithLayout(layout Layout) Option {
	return func(e *GameEngine) {
		e.layout = layout
	}
}

// WithBonusRollOnSix enables the bonus roll rule for sixes
func WithBonusRollOnSix(enabled bool) Option {
	return func(e *GameEngine) {
		e.bonusRollOnSix = enabled
	}
}

// New creates an idle engine on the default board
func New(opts ...Option) *GameEngine {
	e := &GameEngine{
		state:  NewIdleState(),
		layout: DefaultLayout(),
		rng:    NewRandom(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.dice = NewDice(e.rng, e.bonusRollOnSix)
	return e
}

// NewEngine creates an engine for config and starts a game with its tasks
func NewEngine(config *GameConfig, opts ...Option) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	cfg := *config
	cfg.Tasks = CloneTasks(config.Tasks)

	base := []Option{
		WithLayout(NewLayout(cfg.Rows, cfg.Cols)),
		WithBonusRollOnSix(cfg.BonusRollOnSix),
		func(e *GameEngine) { e.config = &cfg },
	}
	e := New(append(base, opts...)...)

	if err := e.Initialize(cfg.Tasks); err != nil {
		return nil, err
	}
	return e, nil
}

// Initialize discards any current game and starts a new one with tasks.
// On error the current state is left untouched.
func (e *GameEngine) Initialize(tasks []TaskDefinition) error {
	pathLength := e.layout.CellCount()

	allocator, err := NewAllocator(tasks, pathLength, e.rng)
	if err != nil {
		return err
	}
	cells := allocator.Allocate()

	state := NewIdleState()
	state.GameID = uuid.NewString()
	state.Cells = cells
	if e.config != nil {
		state.ConfigName = e.config.Name
	}

	e.tasks = CloneTasks(tasks)
	e.state = state
	e.dice.Reset()

	return nil
}

// Restart starts a new game with the task list of the previous one
func (e *GameEngine) Restart() error {
	tasks := e.tasks
	if len(tasks) == 0 && e.config != nil {
		tasks = e.config.Tasks
	}
	return e.Initialize(tasks)
}

// Reset returns the engine to the idle state
func (e *GameEngine) Reset() *GameState {
	e.state = NewIdleState()
	e.dice.Reset()
	return e.state
}

// RollDice rolls the die for the next move. It does not move the player.
func (e *GameEngine) RollDice() (RollResult, error) {
	if err := e.requireActive(); err != nil {
		return RollResult{}, err
	}
	if !e.state.CanRoll {
		return RollResult{}, fmt.Errorf("%w: complete the task at position %d before rolling", ErrIllegalState, e.state.Position)
	}
	if e.state.PendingRoll != 0 {
		return RollResult{}, fmt.Errorf("%w: roll of %d has not been moved yet", ErrIllegalState, e.state.PendingRoll)
	}

	roll := e.dice.Roll()

	e.state.TotalRolls++
	e.state.PendingRoll = roll.Value
	e.state.ConsecutiveSixes = e.dice.ConsecutiveSixes()
	e.state.BonusRoll = roll.BonusRoll

	return roll, nil
}

// Move advances the player by steps, consuming the pending roll. A move past
// the terminal cell reflects the excess back from it, never below the start.
func (e *GameEngine) Move(steps int) (MoveOutcome, error) {
	if err := e.requireActive(); err != nil {
		return MoveOutcome{}, err
	}
	if e.state.PendingRoll == 0 {
		return MoveOutcome{}, fmt.Errorf("%w: roll the dice before moving", ErrIllegalState)
	}
	if steps < 1 {
		return MoveOutcome{}, fmt.Errorf("%w: steps must be positive, got %d", ErrIllegalState, steps)
	}

	cells := e.state.Cells
	terminal := len(cells) - 1
	from := e.state.Position

	backward := BackwardSteps(from, steps, len(cells))

	var to int
	if backward > 0 {
		to = terminal - backward
		if to < 0 {
			to = 0
		}
	} else {
		to = from + steps
		if to > terminal {
			to = terminal
		}
	}

	e.state.Position = to
	bonus := e.state.BonusRoll
	e.state.PendingRoll = 0
	e.state.BonusRoll = false

	switch {
	case to == terminal:
		e.state.IsOver = true
	case to > 0:
		cells[to].Completed = false
		e.state.CanRoll = false
	}

	e.addTurnToHistory(steps, from, to, backward, bonus)

	return MoveOutcome{
		From:          from,
		To:            to,
		Steps:         steps,
		BackwardSteps: backward,
		Bounced:       backward > 0,
		Finished:      e.state.IsOver,
		Cell:          cells[to],
	}, nil
}

// TakeTurn rolls the dice and moves by the rolled value
func (e *GameEngine) TakeTurn() (RollResult, MoveOutcome, error) {
	roll, err := e.RollDice()
	if err != nil {
		return RollResult{}, MoveOutcome{}, err
	}
	outcome, err := e.Move(roll.Value)
	if err != nil {
		return roll, MoveOutcome{}, err
	}
	return roll, outcome, nil
}

// CompleteTask resolves the task the player is standing on. It reports false
// and changes nothing when the player is on the start or terminal cell. Each
// call on a task cell adds the cell's count again.
func (e *GameEngine) CompleteTask() bool {
	cells := e.state.Cells
	pos := e.state.Position

	if pos <= 0 || pos >= len(cells)-1 {
		return false
	}

	cell := &cells[pos]

	e.state.CompletionTotals[cell.TaskName] += cell.Count
	e.state.TasksCompleted++
	cell.Completed = true
	e.state.CanRoll = true

	return true
}

// GetState returns the current game state
func (e *GameEngine) GetState() *GameState {
	return e.state
}

// SetState replaces the game state, used when restoring a saved game
func (e *GameEngine) SetState(state *GameState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	if len(state.Cells) > 0 {
		if len(state.Cells) != e.layout.CellCount() {
			return fmt.Errorf("%w: state has %d cells, board has %d", ErrInvalidConfiguration, len(state.Cells), e.layout.CellCount())
		}
		if state.Position < 0 || state.Position >= len(state.Cells) {
			return fmt.Errorf("%w: position %d outside track of %d cells", ErrInvalidConfiguration, state.Position, len(state.Cells))
		}
	}
	if state.CompletionTotals == nil {
		state.CompletionTotals = make(map[string]int)
	}
	if state.History == nil {
		state.History = []TurnRecord{}
	}
	if state.Cells == nil {
		state.Cells = []Cell{}
	}

	e.state = state
	e.dice.SetConsecutiveSixes(state.ConsecutiveSixes)
	if len(e.tasks) == 0 && e.config != nil {
		e.tasks = CloneTasks(e.config.Tasks)
	}
	return nil
}

// Status derives the state machine phase from the game state
func (e *GameEngine) Status() Status {
	return e.state.Status()
}

// IsGameOver returns whether the terminal cell has been reached
func (e *GameEngine) IsGameOver() bool {
	return e.state.IsOver
}

// CanRoll returns whether a roll would currently be accepted
func (e *GameEngine) CanRoll() bool {
	return e.Status() == StatusInProgress && e.state.PendingRoll == 0
}

// GetPosition returns the player's track index
func (e *GameEngine) GetPosition() int {
	return e.state.Position
}

// CurrentCell returns the cell under the player, false when idle
func (e *GameEngine) CurrentCell() (Cell, bool) {
	if len(e.state.Cells) == 0 {
		return Cell{}, false
	}
	return e.state.Cells[e.state.Position], true
}

// CompletionRate returns completed tasks as a percentage of track length
func (e *GameEngine) CompletionRate() float64 {
	if len(e.state.Cells) == 0 {
		return 0
	}
	return float64(e.state.TasksCompleted) / float64(len(e.state.Cells)) * 100
}

// TaskStats returns the cumulative quantity completed per task
func (e *GameEngine) TaskStats() map[string]int {
	return e.state.CompletionTotals
}

// GetConfig returns the configuration the engine was created with, if any
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// GetLayout returns the board
func (e *GameEngine) GetLayout() Layout {
	return e.layout
}

// Tasks returns the task list of the current game
func (e *GameEngine) Tasks() []TaskDefinition {
	return e.tasks
}

func (e *GameEngine) requireActive() error {
	if len(e.state.Cells) == 0 {
		return fmt.Errorf("%w: no game in progress", ErrIllegalState)
	}
	if e.state.IsOver {
		return fmt.Errorf("%w: game is over", ErrIllegalState)
	}
	return nil
}

// addTurnToHistory appends a resolved move to the game's history
func (e *GameEngine) addTurnToHistory(roll, from, to, backward int, bonus bool) {
	e.state.History = append(e.state.History, TurnRecord{
		TurnNumber:    len(e.state.History) + 1,
		Roll:          roll,
		FromPosition:  from,
		ToPosition:    to,
		BackwardSteps: backward,
		BonusRoll:     bonus,
		Finished:      e.state.IsOver,
		Timestamp:     time.Now().Unix(),
	})
}
