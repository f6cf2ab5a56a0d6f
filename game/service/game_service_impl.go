package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/pathboard/game/engine"
)

var (
	// ErrConfigNotFound is returned when a requested preset does not exist
	ErrConfigNotFound = errors.New("configuration not found")

	// ErrSessionNotFound is returned for unknown session IDs
	ErrSessionNotFound = errors.New("session not found")
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// getConfigID returns the config_id for a given preset display name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

// CreateSession creates a new game session and starts its first game
func (s *gameServiceImpl) CreateSession(ctx context.Context, opts SessionOptions) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var base *engine.GameConfig
	if opts.ConfigID != "" {
		cfg, err := s.configs.LoadConfig(opts.ConfigID)
		if err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, c := range availableConfigs {
						configIDs = append(configIDs, c.ConfigID)
					}
					return nil, fmt.Errorf("%w: '%s'. Available configs: %v", ErrConfigNotFound, opts.ConfigID, configIDs)
				}
				return nil, fmt.Errorf("%w: '%s'. Use /api/configs to list available configurations", ErrConfigNotFound, opts.ConfigID)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", opts.ConfigID, err)
		}
		base = cfg
	} else {
		base = s.configs.GetDefault()
	}

	// Work on a copy so cached presets are never edited through a session
	config := *base
	config.Tasks = engine.CloneTasks(base.Tasks)
	if len(opts.Tasks) > 0 {
		config.Tasks = engine.CloneTasks(opts.Tasks)
	}

	var engineOpts []engine.Option
	if opts.Seed != nil {
		engineOpts = append(engineOpts, engine.WithSeed(*opts.Seed))
	}

	session, err := s.sessions.Create("", &config, engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.rememberConfig(&config)

	configID := opts.ConfigID
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}

	return &SessionInfo{
		ID:             session.ID,
		ConfigName:     configID,
		Status:         session.Engine.Status(),
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		GameState:      session.Engine.GetState(),
		GameConfig:     session.Config,
	}, nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	return s.sessionInfo(session), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))

	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}

	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// StartGame starts a new game in an existing session. A non-empty task list
// replaces the session's tasks and becomes the last-used configuration.
func (s *gameServiceImpl) StartGame(ctx context.Context, sessionID string, tasks []engine.TaskDefinition) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}

	if len(tasks) == 0 {
		tasks = sess.Config.Tasks
	}
	if err := sess.Engine.Initialize(tasks); err != nil {
		return nil, err
	}
	sess.Config.Tasks = engine.CloneTasks(tasks)

	s.rememberConfig(sess.Config)
	s.persist(sessionID, "start")

	return sess.Engine.GetState(), nil
}

// RollDice rolls the die for the session's next move
func (s *gameServiceImpl) RollDice(ctx context.Context, sessionID string) (*RollResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}

	roll, err := sess.Engine.RollDice()
	if err != nil {
		return nil, err
	}

	state := sess.Engine.GetState()
	events := rollEvents(roll, state.Position)
	s.persist(sessionID, "roll")

	return &RollResult{
		Value:     roll.Value,
		BonusRoll: roll.BonusRoll,
		GameState: state,
		Message:   events[0].Message,
		Events:    events,
	}, nil
}

// Move moves the player by steps. Steps below 1 move by the pending roll.
func (s *gameServiceImpl) Move(ctx context.Context, sessionID string, steps int) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}

	if steps < 1 {
		steps = sess.Engine.GetState().PendingRoll
	}

	outcome, err := sess.Engine.Move(steps)
	if err != nil {
		return nil, err
	}

	events := moveEvents(outcome)
	s.persist(sessionID, "move")

	return &MoveResult{
		Outcome:   outcome,
		Status:    sess.Engine.Status(),
		GameState: sess.Engine.GetState(),
		Message:   events[len(events)-1].Message,
		Events:    events,
	}, nil
}

// TakeTurn rolls and moves by the rolled value
func (s *gameServiceImpl) TakeTurn(ctx context.Context, sessionID string) (*TurnResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}

	roll, outcome, err := sess.Engine.TakeTurn()
	if err != nil {
		return nil, err
	}

	events := append(rollEvents(roll, outcome.From), moveEvents(outcome)...)
	s.persist(sessionID, "turn")

	return &TurnResult{
		Roll:      roll.Value,
		BonusRoll: roll.BonusRoll,
		Outcome:   outcome,
		Status:    sess.Engine.Status(),
		GameState: sess.Engine.GetState(),
		Message:   events[len(events)-1].Message,
		Events:    events,
	}, nil
}

// CompleteTask reports the task under the player as done
func (s *gameServiceImpl) CompleteTask(ctx context.Context, sessionID string) (*CompleteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}

	cell, _ := sess.Engine.CurrentCell()
	state := sess.Engine.GetState()

	result := &CompleteResult{
		Totals:    sess.Engine.TaskStats(),
		GameState: state,
	}

	if !sess.Engine.CompleteTask() {
		result.Message = "No task to complete at this position"
		return result, nil
	}

	result.Success = true
	result.TaskName = cell.TaskName
	result.Count = cell.Count
	result.Message = fmt.Sprintf("Completed %d %s (total %d)", cell.Count, cell.TaskName, state.CompletionTotals[cell.TaskName])
	result.Events = []GameEvent{{
		Type:      EventTaskCompleted,
		Message:   result.Message,
		Timestamp: time.Now(),
		Position:  state.Position,
	}}

	s.persist(sessionID, "task completion")

	return result, nil
}

// Reset returns the session's game to the idle state
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}

	state := sess.Engine.Reset()
	s.persist(sessionID, "reset")

	return state, nil
}

// Restart starts a new game with the session's current tasks
func (s *gameServiceImpl) Restart(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}

	if err := sess.Engine.Restart(); err != nil {
		return nil, err
	}
	s.persist(sessionID, "restart")

	return sess.Engine.GetState(), nil
}

// GetGameState returns the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}

	return sess.Engine.GetState(), nil
}

// GetHistory returns paginated turn history
func (s *gameServiceImpl) GetHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}

	history := sess.Engine.GetState().History
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	turns := []engine.TurnRecord{}
	if start < total {
		if opts.Order == "desc" {
			for i := total - 1 - start; i >= total-end; i-- {
				turns = append(turns, history[i])
			}
		} else {
			turns = append(turns, history[start:end]...)
		}
	}

	return &HistoryResponse{
		Turns:       turns,
		TotalTurns:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// GetLayout returns the board geometry of a session
func (s *gameServiceImpl) GetLayout(ctx context.Context, sessionID string) (*LayoutInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}

	layout := sess.Engine.GetLayout()
	return &LayoutInfo{
		Rows:        layout.Rows,
		Cols:        layout.Cols,
		CellSize:    layout.CellSize,
		Spacing:     layout.Spacing,
		PathLength:  layout.CellCount(),
		Coordinates: layout.Coordinates(),
		Connections: layout.Connections(),
	}, nil
}

// ListConfigs returns available presets
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific preset
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a preset
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}

// GetLastConfig returns the configuration of the most recently started game,
// falling back to the default preset when none has been stored
func (s *gameServiceImpl) GetLastConfig(ctx context.Context) (*engine.GameConfig, error) {
	cfg, err := s.sessions.LoadLastConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load last config: %w", err)
	}
	if cfg == nil {
		return s.configs.GetDefault(), nil
	}
	return cfg, nil
}

// touch resolves a session and refreshes its access time
func (s *gameServiceImpl) touch(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

// persist saves a session after a mutation. Failures are logged only.
func (s *gameServiceImpl) persist(sessionID, action string) {
	if err := s.sessions.Save(sessionID); err != nil {
		log.Printf("Warning: Failed to persist session %s after %s: %v", sessionID, action, err)
	}
}

func (s *gameServiceImpl) rememberConfig(config *engine.GameConfig) {
	if err := s.sessions.SaveLastConfig(config); err != nil {
		log.Printf("Warning: Failed to save last config: %v", err)
	}
}

func (s *gameServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     s.getConfigID(sess.Config.Name),
		Status:         sess.Engine.Status(),
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.GetState(),
		GameConfig:     sess.Config,
	}
}

func rollEvents(roll engine.RollResult, position int) []GameEvent {
	now := time.Now()
	events := []GameEvent{{
		Type:      EventRoll,
		Message:   fmt.Sprintf("Rolled a %d", roll.Value),
		Timestamp: now,
		Position:  position,
	}}
	if roll.BonusRoll {
		events = append(events, GameEvent{
			Type:      EventBonusRoll,
			Message:   "Six! Bonus roll earned",
			Timestamp: now,
			Position:  position,
		})
	}
	return events
}

func moveEvents(outcome engine.MoveOutcome) []GameEvent {
	now := time.Now()
	var events []GameEvent

	if outcome.Bounced {
		events = append(events, GameEvent{
			Type:      EventBounce,
			Message:   fmt.Sprintf("Overshot the finish, bounced back %d", outcome.BackwardSteps),
			Timestamp: now,
			Position:  outcome.To,
		})
	}

	events = append(events, GameEvent{
		Type:      EventMove,
		Message:   fmt.Sprintf("Moved from %d to %d", outcome.From, outcome.To),
		Timestamp: now,
		Position:  outcome.To,
	})

	switch {
	case outcome.Finished:
		events = append(events, GameEvent{
			Type:      EventVictory,
			Message:   "Reached the finish!",
			Timestamp: now,
			Position:  outcome.To,
		})
	case !outcome.Cell.IsBoundary():
		events = append(events, GameEvent{
			Type:      EventTaskAssigned,
			Message:   fmt.Sprintf("Do %d %s", outcome.Cell.Count, outcome.Cell.TaskName),
			Timestamp: now,
			Position:  outcome.To,
		})
	}

	return events
}
