package service_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/wricardo/mcp-training/pathboard/game/engine"
	"github.com/wricardo/mcp-training/pathboard/game/service"
)

// MockSessionManager implements service.SessionManager for testing
type MockSessionManager struct {
	sessions   map[string]*service.Session
	lastConfig *engine.GameConfig
	saves      int
}

func NewMockSessionManager() *MockSessionManager {
	return &MockSessionManager{
		sessions: make(map[string]*service.Session),
	}
}

func (m *MockSessionManager) Create(id string, config *engine.GameConfig, opts ...engine.Option) (*service.Session, error) {
	// Generate ID if empty (mimics real session manager behavior)
	if id == "" {
		id = fmt.Sprintf("test_%d", len(m.sessions)+1)
	}

	if _, exists := m.sessions[id]; exists {
		return nil, errors.New("session already exists")
	}

	eng, err := engine.NewEngine(config, opts...)
	if err != nil {
		return nil, err
	}

	session := &service.Session{
		ID:             id,
		Engine:         eng,
		Config:         config,
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	}

	m.sessions[id] = session
	return session, nil
}

func (m *MockSessionManager) Get(id string) (*service.Session, error) {
	session, exists := m.sessions[id]
	if !exists {
		return nil, service.ErrSessionNotFound
	}
	return session, nil
}

func (m *MockSessionManager) List() []*service.Session {
	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

func (m *MockSessionManager) Delete(id string) error {
	if _, exists := m.sessions[id]; !exists {
		return service.ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *MockSessionManager) UpdateLastAccessed(id string) error {
	if session, exists := m.sessions[id]; exists {
		session.LastAccessedAt = time.Now()
		return nil
	}
	return service.ErrSessionNotFound
}

func (m *MockSessionManager) Save(id string) error {
	if _, exists := m.sessions[id]; !exists {
		return service.ErrSessionNotFound
	}
	m.saves++
	return nil
}

func (m *MockSessionManager) SaveLastConfig(config *engine.GameConfig) error {
	cfg := *config
	cfg.Tasks = engine.CloneTasks(config.Tasks)
	m.lastConfig = &cfg
	return nil
}

func (m *MockSessionManager) LoadLastConfig() (*engine.GameConfig, error) {
	return m.lastConfig, nil
}

// MockConfigManager implements service.ConfigManager for testing
type MockConfigManager struct {
	configs map[string]*engine.GameConfig
}

func NewMockConfigManager() *MockConfigManager {
	defaultConfig := &engine.GameConfig{
		Name:        "test",
		Description: "Test configuration",
		Rows:        1,
		Cols:        50,
		Tasks: []engine.TaskDefinition{
			{Name: "Squats", MinCount: 5, MaxCount: 10},
			{Name: "Push-ups", MinCount: 3, MaxCount: 6},
		},
	}

	short := &engine.GameConfig{
		Name:        "short",
		Description: "Short track",
		Rows:        1,
		Cols:        4,
		Tasks: []engine.TaskDefinition{
			{Name: "Plank", MinCount: 1, MaxCount: 1},
		},
	}

	return &MockConfigManager{
		configs: map[string]*engine.GameConfig{
			"test":  defaultConfig,
			"short": short,
		},
	}
}

func (m *MockConfigManager) LoadConfig(name string) (*engine.GameConfig, error) {
	config, exists := m.configs[name]
	if !exists {
		return nil, service.ErrConfigNotFound
	}
	return config, nil
}

func (m *MockConfigManager) ListConfigs() ([]*service.ConfigInfo, error) {
	result := make([]*service.ConfigInfo, 0, len(m.configs))
	for name, config := range m.configs {
		result = append(result, &service.ConfigInfo{
			Filename:    name + ".json",
			ConfigID:    name,
			Name:        config.Name,
			Description: config.Description,
			Rows:        config.Rows,
			Cols:        config.Cols,
			PathLength:  engine.CellCount(config.Rows, config.Cols),
			TaskCount:   len(config.Tasks),
		})
	}
	return result, nil
}

func (m *MockConfigManager) GetDefault() *engine.GameConfig {
	return m.configs["test"]
}

func (m *MockConfigManager) SaveConfig(name string, config *engine.GameConfig) error {
	if err := engine.ValidateGameConfig(config); err != nil {
		return err
	}
	m.configs[name] = config
	return nil
}

func newTestService(t *testing.T) (service.GameService, *MockSessionManager, *MockConfigManager) {
	t.Helper()
	sessions := NewMockSessionManager()
	configs := NewMockConfigManager()
	return service.NewGameService(sessions, configs), sessions, configs
}

func createSession(t *testing.T, svc service.GameService, opts service.SessionOptions) *service.SessionInfo {
	t.Helper()
	info, err := svc.CreateSession(context.Background(), opts)
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	return info
}

// playTurns takes n turns, completing every task landed on
func playTurns(t *testing.T, svc service.GameService, id string, n int) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < n; i++ {
		turn, err := svc.TakeTurn(ctx, id)
		if err != nil {
			t.Fatalf("TakeTurn() turn %d error = %v", i+1, err)
		}
		if turn.Status == engine.StatusTaskPending {
			if _, err := svc.CompleteTask(ctx, id); err != nil {
				t.Fatalf("CompleteTask() error = %v", err)
			}
		}
	}
}

func TestGameService_CreateSession(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	tests := []struct {
		name       string
		configID   string
		wantConfig string
		wantErr    bool
	}{
		{
			name:       "create with default config",
			configID:   "",
			wantConfig: "test",
		},
		{
			name:       "create with named config",
			configID:   "short",
			wantConfig: "short",
		},
		{
			name:     "create with non-existent config",
			configID: "missing",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := svc.CreateSession(ctx, service.SessionOptions{ConfigID: tt.configID})
			if (err != nil) != tt.wantErr {
				t.Fatalf("CreateSession() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, service.ErrConfigNotFound) {
					t.Errorf("expected ErrConfigNotFound, got %v", err)
				}
				if !strings.Contains(err.Error(), "Available configs") {
					t.Errorf("expected available configs in error, got %v", err)
				}
				return
			}

			if info.ID == "" {
				t.Error("CreateSession() returned empty session ID")
			}
			if info.ConfigName != tt.wantConfig {
				t.Errorf("ConfigName = %q, want %q", info.ConfigName, tt.wantConfig)
			}
			if info.Status != engine.StatusInProgress {
				t.Errorf("Status = %q, want %q", info.Status, engine.StatusInProgress)
			}
			cells := info.GameState.Cells
			if len(cells) != engine.CellCount(info.GameConfig.Rows, info.GameConfig.Cols) {
				t.Errorf("got %d cells for a %dx%d board", len(cells), info.GameConfig.Rows, info.GameConfig.Cols)
			}
		})
	}
}

func TestGameService_CreateSessionWithTasks(t *testing.T) {
	svc, _, configs := newTestService(t)

	tasks := []engine.TaskDefinition{{Name: "Lunges", MinCount: 2, MaxCount: 2}}
	info := createSession(t, svc, service.SessionOptions{Tasks: tasks})

	cells := info.GameState.Cells
	for i := 1; i < len(cells)-1; i++ {
		if cells[i].TaskName != "Lunges" || cells[i].Count != 2 {
			t.Fatalf("cell %d = %+v, want 2 Lunges", i, cells[i])
		}
	}

	if len(configs.GetDefault().Tasks) != 2 {
		t.Error("overriding tasks must not modify the preset")
	}
}

func TestGameService_CreateSessionSeeded(t *testing.T) {
	svc, _, _ := newTestService(t)

	seed := int64(42)
	a := createSession(t, svc, service.SessionOptions{Seed: &seed})
	b := createSession(t, svc, service.SessionOptions{Seed: &seed})

	for i := range a.GameState.Cells {
		if a.GameState.Cells[i] != b.GameState.Cells[i] {
			t.Fatalf("cell %d differs between seeded sessions: %+v vs %+v", i, a.GameState.Cells[i], b.GameState.Cells[i])
		}
	}

	ctx := context.Background()
	rollA, _ := svc.RollDice(ctx, a.ID)
	rollB, _ := svc.RollDice(ctx, b.ID)
	if rollA.Value != rollB.Value {
		t.Errorf("seeded rolls differ: %d vs %d", rollA.Value, rollB.Value)
	}
}

func TestGameService_RollAndMove(t *testing.T) {
	ctx := context.Background()
	svc, sessions, _ := newTestService(t)
	info := createSession(t, svc, service.SessionOptions{})

	roll, err := svc.RollDice(ctx, info.ID)
	if err != nil {
		t.Fatalf("RollDice() error = %v", err)
	}
	if roll.Value < 1 || roll.Value > 6 {
		t.Fatalf("roll %d out of range", roll.Value)
	}
	if roll.GameState.PendingRoll != roll.Value {
		t.Errorf("PendingRoll = %d, want %d", roll.GameState.PendingRoll, roll.Value)
	}
	if len(roll.Events) == 0 || roll.Events[0].Type != service.EventRoll {
		t.Errorf("expected a roll event, got %+v", roll.Events)
	}

	if _, err := svc.RollDice(ctx, info.ID); !errors.Is(err, engine.ErrIllegalState) {
		t.Errorf("second roll error = %v, want ErrIllegalState", err)
	}

	move, err := svc.Move(ctx, info.ID, 0)
	if err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if move.Outcome.To != roll.Value {
		t.Errorf("moved to %d, want %d", move.Outcome.To, roll.Value)
	}
	if move.Status != engine.StatusTaskPending {
		t.Errorf("Status = %q, want %q", move.Status, engine.StatusTaskPending)
	}

	last := move.Events[len(move.Events)-1]
	if last.Type != service.EventTaskAssigned {
		t.Errorf("last event = %q, want %q", last.Type, service.EventTaskAssigned)
	}

	if _, err := svc.RollDice(ctx, info.ID); !errors.Is(err, engine.ErrIllegalState) {
		t.Errorf("roll with pending task error = %v, want ErrIllegalState", err)
	}

	if sessions.saves < 2 {
		t.Errorf("expected session to be saved after each mutation, got %d saves", sessions.saves)
	}
}

func TestGameService_MoveWithoutRoll(t *testing.T) {
	svc, _, _ := newTestService(t)
	info := createSession(t, svc, service.SessionOptions{})

	if _, err := svc.Move(context.Background(), info.ID, 3); !errors.Is(err, engine.ErrIllegalState) {
		t.Errorf("Move() error = %v, want ErrIllegalState", err)
	}
}

func TestGameService_CompleteTask(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	info := createSession(t, svc, service.SessionOptions{})

	t.Run("nothing to complete on start", func(t *testing.T) {
		result, err := svc.CompleteTask(ctx, info.ID)
		if err != nil {
			t.Fatalf("CompleteTask() error = %v", err)
		}
		if result.Success {
			t.Error("expected no completion on the start cell")
		}
	})

	turn, err := svc.TakeTurn(ctx, info.ID)
	if err != nil {
		t.Fatalf("TakeTurn() error = %v", err)
	}
	cell := turn.Outcome.Cell

	t.Run("complete landed task", func(t *testing.T) {
		result, err := svc.CompleteTask(ctx, info.ID)
		if err != nil {
			t.Fatalf("CompleteTask() error = %v", err)
		}
		if !result.Success {
			t.Fatalf("expected completion, got %q", result.Message)
		}
		if result.TaskName != cell.TaskName || result.Count != cell.Count {
			t.Errorf("completed %d %s, want %d %s", result.Count, result.TaskName, cell.Count, cell.TaskName)
		}
		if result.Totals[cell.TaskName] != cell.Count {
			t.Errorf("total = %d, want %d", result.Totals[cell.TaskName], cell.Count)
		}
		if result.GameState.TasksCompleted != 1 {
			t.Errorf("TasksCompleted = %d, want 1", result.GameState.TasksCompleted)
		}
	})

	t.Run("second completion adds the count again", func(t *testing.T) {
		result, err := svc.CompleteTask(ctx, info.ID)
		if err != nil {
			t.Fatalf("CompleteTask() error = %v", err)
		}
		if !result.Success {
			t.Fatal("expected a task cell to accept another completion")
		}
		if result.Totals[cell.TaskName] != 2*cell.Count {
			t.Errorf("total = %d, want %d", result.Totals[cell.TaskName], 2*cell.Count)
		}
		if result.GameState.TasksCompleted != 2 {
			t.Errorf("TasksCompleted = %d, want 2", result.GameState.TasksCompleted)
		}
	})
}

func TestGameService_PlayToFinish(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	info := createSession(t, svc, service.SessionOptions{ConfigID: "short"})

	won := false
	for i := 0; i < 200 && !won; i++ {
		turn, err := svc.TakeTurn(ctx, info.ID)
		if err != nil {
			t.Fatalf("TakeTurn() error = %v", err)
		}
		switch turn.Status {
		case engine.StatusWon:
			won = true
			if turn.Events[len(turn.Events)-1].Type != service.EventVictory {
				t.Errorf("expected a victory event, got %+v", turn.Events)
			}
		case engine.StatusTaskPending:
			if _, err := svc.CompleteTask(ctx, info.ID); err != nil {
				t.Fatalf("CompleteTask() error = %v", err)
			}
		}
	}

	if !won {
		t.Fatal("game did not finish")
	}

	if _, err := svc.RollDice(ctx, info.ID); !errors.Is(err, engine.ErrIllegalState) {
		t.Errorf("roll after win error = %v, want ErrIllegalState", err)
	}
}

func TestGameService_GetHistory(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	info := createSession(t, svc, service.SessionOptions{})

	// Five turns move at most 30 cells on a 50 cell track
	playTurns(t, svc, info.ID, 5)

	tests := []struct {
		name      string
		opts      service.HistoryOptions
		wantTurns []int
		wantPages int
		wantNext  bool
	}{
		{
			name:      "defaults newest first",
			opts:      service.HistoryOptions{},
			wantTurns: []int{5, 4, 3, 2, 1},
			wantPages: 1,
		},
		{
			name:      "first page desc",
			opts:      service.HistoryOptions{Page: 1, Limit: 2},
			wantTurns: []int{5, 4},
			wantPages: 3,
			wantNext:  true,
		},
		{
			name:      "last page desc",
			opts:      service.HistoryOptions{Page: 3, Limit: 2},
			wantTurns: []int{1},
			wantPages: 3,
		},
		{
			name:      "first page asc",
			opts:      service.HistoryOptions{Page: 1, Limit: 2, Order: "asc"},
			wantTurns: []int{1, 2},
			wantPages: 3,
			wantNext:  true,
		},
		{
			name:      "past the end",
			opts:      service.HistoryOptions{Page: 9, Limit: 2},
			wantTurns: []int{},
			wantPages: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			history, err := svc.GetHistory(ctx, info.ID, tt.opts)
			if err != nil {
				t.Fatalf("GetHistory() error = %v", err)
			}
			if history.TotalTurns != 5 {
				t.Errorf("TotalTurns = %d, want 5", history.TotalTurns)
			}
			if history.TotalPages != tt.wantPages {
				t.Errorf("TotalPages = %d, want %d", history.TotalPages, tt.wantPages)
			}
			if history.HasNext != tt.wantNext {
				t.Errorf("HasNext = %v, want %v", history.HasNext, tt.wantNext)
			}
			if len(history.Turns) != len(tt.wantTurns) {
				t.Fatalf("got %d turns, want %d", len(history.Turns), len(tt.wantTurns))
			}
			for i, want := range tt.wantTurns {
				if history.Turns[i].TurnNumber != want {
					t.Errorf("turn %d = %d, want %d", i, history.Turns[i].TurnNumber, want)
				}
			}
		})
	}
}

func TestGameService_ResetAndRestart(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	info := createSession(t, svc, service.SessionOptions{})
	playTurns(t, svc, info.ID, 2)

	state, err := svc.Reset(ctx, info.ID)
	if err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if len(state.Cells) != 0 || state.Position != 0 {
		t.Errorf("expected idle state, got position %d with %d cells", state.Position, len(state.Cells))
	}
	if _, err := svc.RollDice(ctx, info.ID); !errors.Is(err, engine.ErrIllegalState) {
		t.Errorf("roll while idle error = %v, want ErrIllegalState", err)
	}

	state, err = svc.Restart(ctx, info.ID)
	if err != nil {
		t.Fatalf("Restart() error = %v", err)
	}
	if len(state.Cells) != 50 || state.TotalRolls != 0 {
		t.Errorf("expected a fresh 50 cell game, got %d cells and %d rolls", len(state.Cells), state.TotalRolls)
	}
}

func TestGameService_StartGame(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	info := createSession(t, svc, service.SessionOptions{})

	tasks := []engine.TaskDefinition{{Name: "Burpees", MinCount: 4, MaxCount: 4}}
	state, err := svc.StartGame(ctx, info.ID, tasks)
	if err != nil {
		t.Fatalf("StartGame() error = %v", err)
	}
	if state.Cells[1].TaskName != "Burpees" {
		t.Errorf("cell 1 = %+v, want Burpees", state.Cells[1])
	}

	last, err := svc.GetLastConfig(ctx)
	if err != nil {
		t.Fatalf("GetLastConfig() error = %v", err)
	}
	if len(last.Tasks) != 1 || last.Tasks[0].Name != "Burpees" {
		t.Errorf("last config tasks = %+v, want Burpees only", last.Tasks)
	}

	if _, err := svc.StartGame(ctx, info.ID, []engine.TaskDefinition{{Name: ""}}); !errors.Is(err, engine.ErrInvalidConfiguration) {
		t.Errorf("StartGame() with bad tasks error = %v, want ErrInvalidConfiguration", err)
	}

	current, _ := svc.GetGameState(ctx, info.ID)
	if current.Cells[1].TaskName != "Burpees" {
		t.Error("a rejected start must keep the current game")
	}
}

func TestGameService_GetLastConfig(t *testing.T) {
	ctx := context.Background()
	svc, _, configs := newTestService(t)

	cfg, err := svc.GetLastConfig(ctx)
	if err != nil {
		t.Fatalf("GetLastConfig() error = %v", err)
	}
	if cfg != configs.GetDefault() {
		t.Error("expected the default preset before any game")
	}

	createSession(t, svc, service.SessionOptions{ConfigID: "short"})

	cfg, err = svc.GetLastConfig(ctx)
	if err != nil {
		t.Fatalf("GetLastConfig() error = %v", err)
	}
	if cfg.Name != "short" {
		t.Errorf("last config = %q, want short", cfg.Name)
	}
}

func TestGameService_GetLayout(t *testing.T) {
	svc, _, _ := newTestService(t)
	info := createSession(t, svc, service.SessionOptions{ConfigID: "short"})

	layout, err := svc.GetLayout(context.Background(), info.ID)
	if err != nil {
		t.Fatalf("GetLayout() error = %v", err)
	}
	if layout.Rows != 1 || layout.Cols != 4 || layout.PathLength != 4 {
		t.Errorf("unexpected layout %+v", layout)
	}
	if len(layout.Coordinates) != 4 || len(layout.Connections) != 3 {
		t.Errorf("got %d coordinates and %d connections", len(layout.Coordinates), len(layout.Connections))
	}
}

func TestGameService_SessionLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	first := createSession(t, svc, service.SessionOptions{})
	createSession(t, svc, service.SessionOptions{ConfigID: "short"})

	sessions, err := svc.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions() error = %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("ListSessions() returned %d sessions, want 2", len(sessions))
	}

	got, err := svc.GetSession(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if got.ID != first.ID {
		t.Errorf("GetSession() ID = %q, want %q", got.ID, first.ID)
	}

	if err := svc.DeleteSession(ctx, first.ID); err != nil {
		t.Fatalf("DeleteSession() error = %v", err)
	}
	if _, err := svc.GetSession(ctx, first.ID); err == nil {
		t.Error("expected error for deleted session")
	}
	if _, err := svc.RollDice(ctx, first.ID); err == nil {
		t.Error("expected error rolling in deleted session")
	}
}

func TestGameService_Configs(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	configs, err := svc.ListConfigs(ctx)
	if err != nil {
		t.Fatalf("ListConfigs() error = %v", err)
	}
	if len(configs) != 2 {
		t.Errorf("ListConfigs() returned %d configs, want 2", len(configs))
	}

	custom := &engine.GameConfig{
		Name: "custom",
		Rows: 2,
		Cols: 3,
		Tasks: []engine.TaskDefinition{
			{Name: "Jumping jacks", MinCount: 10, MaxCount: 20},
		},
	}
	if err := svc.SaveConfig(ctx, "custom", custom); err != nil {
		t.Fatalf("SaveConfig() error = %v", err)
	}

	loaded, err := svc.LoadConfig(ctx, "custom")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if loaded.Name != "custom" {
		t.Errorf("loaded %q, want custom", loaded.Name)
	}

	info := createSession(t, svc, service.SessionOptions{ConfigID: "custom"})
	if len(info.GameState.Cells) != 6 {
		t.Errorf("got %d cells, want 6", len(info.GameState.Cells))
	}
}
