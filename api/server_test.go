package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"github.com/wricardo/mcp-training/pathboard/game/config"
	"github.com/wricardo/mcp-training/pathboard/game/engine"
	"github.com/wricardo/mcp-training/pathboard/game/service"
	"github.com/wricardo/mcp-training/pathboard/transport/websocket"
)

// MockGameService implements service.GameService for testing
type MockGameService struct {
	// Session Management
	CreateSessionFunc func(ctx context.Context, opts service.SessionOptions) (*service.SessionInfo, error)
	GetSessionFunc    func(ctx context.Context, sessionID string) (*service.SessionInfo, error)
	ListSessionsFunc  func(ctx context.Context) ([]*service.SessionInfo, error)
	DeleteSessionFunc func(ctx context.Context, sessionID string) error

	// Game Operations
	StartGameFunc    func(ctx context.Context, sessionID string, tasks []engine.TaskDefinition) (*engine.GameState, error)
	RollDiceFunc     func(ctx context.Context, sessionID string) (*service.RollResult, error)
	MoveFunc         func(ctx context.Context, sessionID string, steps int) (*service.MoveResult, error)
	TakeTurnFunc     func(ctx context.Context, sessionID string) (*service.TurnResult, error)
	CompleteTaskFunc func(ctx context.Context, sessionID string) (*service.CompleteResult, error)
	ResetFunc        func(ctx context.Context, sessionID string) (*engine.GameState, error)
	RestartFunc      func(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Game State
	GetGameStateFunc func(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetHistoryFunc   func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error)
	GetLayoutFunc    func(ctx context.Context, sessionID string) (*service.LayoutInfo, error)

	// Configuration
	ListConfigsFunc   func(ctx context.Context) ([]*service.ConfigInfo, error)
	LoadConfigFunc    func(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfigFunc    func(ctx context.Context, configName string, config *engine.GameConfig) error
	GetLastConfigFunc func(ctx context.Context) (*engine.GameConfig, error)
}

// Session Management
func (m *MockGameService) CreateSession(ctx context.Context, opts service.SessionOptions) (*service.SessionInfo, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, opts)
	}
	return &service.SessionInfo{
		ID:         "test-session",
		ConfigName: opts.ConfigID,
		CreatedAt:  time.Now(),
		GameState:  activeState(),
	}, nil
}

func (m *MockGameService) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	return &service.SessionInfo{
		ID:         sessionID,
		ConfigName: "test-config",
		CreatedAt:  time.Now(),
	}, nil
}

func (m *MockGameService) ListSessions(ctx context.Context) ([]*service.SessionInfo, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return []*service.SessionInfo{}, nil
}

func (m *MockGameService) DeleteSession(ctx context.Context, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, sessionID)
	}
	return nil
}

// Game Operations
func (m *MockGameService) StartGame(ctx context.Context, sessionID string, tasks []engine.TaskDefinition) (*engine.GameState, error) {
	if m.StartGameFunc != nil {
		return m.StartGameFunc(ctx, sessionID, tasks)
	}
	return activeState(), nil
}

func (m *MockGameService) RollDice(ctx context.Context, sessionID string) (*service.RollResult, error) {
	if m.RollDiceFunc != nil {
		return m.RollDiceFunc(ctx, sessionID)
	}
	return &service.RollResult{Value: 3, GameState: activeState()}, nil
}

func (m *MockGameService) Move(ctx context.Context, sessionID string, steps int) (*service.MoveResult, error) {
	if m.MoveFunc != nil {
		return m.MoveFunc(ctx, sessionID, steps)
	}
	return &service.MoveResult{GameState: activeState()}, nil
}

func (m *MockGameService) TakeTurn(ctx context.Context, sessionID string) (*service.TurnResult, error) {
	if m.TakeTurnFunc != nil {
		return m.TakeTurnFunc(ctx, sessionID)
	}
	return &service.TurnResult{GameState: activeState()}, nil
}

func (m *MockGameService) CompleteTask(ctx context.Context, sessionID string) (*service.CompleteResult, error) {
	if m.CompleteTaskFunc != nil {
		return m.CompleteTaskFunc(ctx, sessionID)
	}
	return &service.CompleteResult{GameState: activeState()}, nil
}

func (m *MockGameService) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	if m.ResetFunc != nil {
		return m.ResetFunc(ctx, sessionID)
	}
	return engine.NewIdleState(), nil
}

func (m *MockGameService) Restart(ctx context.Context, sessionID string) (*engine.GameState, error) {
	if m.RestartFunc != nil {
		return m.RestartFunc(ctx, sessionID)
	}
	return activeState(), nil
}

// Game State
func (m *MockGameService) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	if m.GetGameStateFunc != nil {
		return m.GetGameStateFunc(ctx, sessionID)
	}
	return activeState(), nil
}

func (m *MockGameService) GetHistory(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
	if m.GetHistoryFunc != nil {
		return m.GetHistoryFunc(ctx, sessionID, opts)
	}
	return &service.HistoryResponse{
		Turns:      []engine.TurnRecord{},
		Page:       opts.Page,
		PageSize:   opts.Limit,
		TotalPages: 1,
	}, nil
}

func (m *MockGameService) GetLayout(ctx context.Context, sessionID string) (*service.LayoutInfo, error) {
	if m.GetLayoutFunc != nil {
		return m.GetLayoutFunc(ctx, sessionID)
	}
	layout := engine.DefaultLayout()
	return &service.LayoutInfo{Rows: layout.Rows, Cols: layout.Cols, PathLength: layout.CellCount()}, nil
}

// Configuration
func (m *MockGameService) ListConfigs(ctx context.Context) ([]*service.ConfigInfo, error) {
	if m.ListConfigsFunc != nil {
		return m.ListConfigsFunc(ctx)
	}
	return []*service.ConfigInfo{}, nil
}

func (m *MockGameService) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	if m.LoadConfigFunc != nil {
		return m.LoadConfigFunc(ctx, configName)
	}
	cfg := engine.DefaultGameConfig()
	cfg.Name = configName
	return cfg, nil
}

func (m *MockGameService) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	if m.SaveConfigFunc != nil {
		return m.SaveConfigFunc(ctx, configName, config)
	}
	return nil
}

func (m *MockGameService) GetLastConfig(ctx context.Context) (*engine.GameConfig, error) {
	if m.GetLastConfigFunc != nil {
		return m.GetLastConfigFunc(ctx)
	}
	return engine.DefaultGameConfig(), nil
}

// Test helpers
func activeState() *engine.GameState {
	state := engine.NewIdleState()
	state.Cells = make([]engine.Cell, 10)
	return state
}

func setupTestServer(t *testing.T, mockService *MockGameService) *Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := websocket.NewHub()
	go hub.Run(ctx)
	return NewServer(mockService, hub)
}

func makeRequest(method, path string, body interface{}) *http.Request {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
}

func serve(t *testing.T, m *MockGameService, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	server := setupTestServer(t, m)
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

// Session Management Tests

func TestCreateSession(t *testing.T) {
	seed := int64(7)

	tests := []struct {
		name           string
		requestBody    interface{}
		setupMock      func(*testing.T, *MockGameService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:        "Create session with default config",
			requestBody: nil,
			setupMock: func(t *testing.T, m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, opts service.SessionOptions) (*service.SessionInfo, error) {
					if opts.ConfigID != "" || opts.Seed != nil || len(opts.Tasks) != 0 {
						t.Errorf("Expected empty options, got %+v", opts)
					}
					return &service.SessionInfo{ID: "sess-123", ConfigName: "classic", GameState: activeState()}, nil
				}
			},
			expectedStatus: http.StatusCreated,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				if resp.ID != "sess-123" {
					t.Errorf("Expected session ID sess-123, got %s", resp.ID)
				}
			},
		},
		{
			name: "Create session with config, tasks and seed",
			requestBody: map[string]interface{}{
				"config_id": "quick",
				"seed":      seed,
				"tasks":     []engine.TaskDefinition{{Name: "Squats", MinCount: 1, MaxCount: 2}},
			},
			setupMock: func(t *testing.T, m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, opts service.SessionOptions) (*service.SessionInfo, error) {
					if opts.ConfigID != "quick" {
						t.Errorf("Expected config_id 'quick', got %s", opts.ConfigID)
					}
					if opts.Seed == nil || *opts.Seed != seed {
						t.Errorf("Expected seed %d, got %v", seed, opts.Seed)
					}
					if len(opts.Tasks) != 1 || opts.Tasks[0].Name != "Squats" {
						t.Errorf("Unexpected tasks %+v", opts.Tasks)
					}
					return &service.SessionInfo{ID: "sess-456", ConfigName: opts.ConfigID, GameState: activeState()}, nil
				}
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:        "Deprecated config_name is accepted",
			requestBody: map[string]string{"config_name": "easy"},
			setupMock: func(t *testing.T, m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, opts service.SessionOptions) (*service.SessionInfo, error) {
					if opts.ConfigID != "easy" {
						t.Errorf("Expected config 'easy', got %s", opts.ConfigID)
					}
					return &service.SessionInfo{ID: "sess-789", ConfigName: opts.ConfigID, GameState: activeState()}, nil
				}
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:        "Unknown config",
			requestBody: map[string]string{"config_id": "nope"},
			setupMock: func(t *testing.T, m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, opts service.SessionOptions) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("%w: 'nope'", service.ErrConfigNotFound)
				}
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:        "Invalid tasks",
			requestBody: map[string]interface{}{"tasks": []engine.TaskDefinition{{Name: ""}}},
			setupMock: func(t *testing.T, m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, opts service.SessionOptions) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("failed to create session: %w", engine.ErrInvalidConfiguration)
				}
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "Handle service error",
			requestBody: nil,
			setupMock: func(t *testing.T, m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, opts service.SessionOptions) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("service error")
				}
			},
			expectedStatus: http.StatusInternalServerError,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]string
				parseResponse(t, w, &resp)
				if resp["error"] != "service error" {
					t.Errorf("Expected error message 'service error', got %s", resp["error"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(t, mockService)
			}

			w := serve(t, mockService, makeRequest("POST", "/api/sessions", tt.requestBody))

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestCreateSession_MalformedBody(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/sessions", bytes.NewBufferString("{"))
	w := serve(t, &MockGameService{}, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestListSessions(t *testing.T) {
	now := time.Now()
	mock := &MockGameService{
		ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
			return []*service.SessionInfo{
				{ID: "old", CreatedAt: now.Add(-2 * time.Hour), LastAccessedAt: now.Add(-time.Minute)},
				{ID: "new", CreatedAt: now.Add(-time.Hour), LastAccessedAt: now.Add(-time.Hour)},
				{ID: "mid", CreatedAt: now.Add(-90 * time.Minute), LastAccessedAt: now},
			}, nil
		},
	}

	tests := []struct {
		name      string
		query     string
		wantOrder []string
		wantTotal int
	}{
		{"default sorts by access desc", "", []string{"mid", "old", "new"}, 3},
		{"created asc", "?sort=created&order=asc", []string{"old", "mid", "new"}, 3},
		{"limit", "?sort=created&limit=1", []string{"new"}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(t, mock, makeRequest("GET", "/api/sessions"+tt.query, nil))
			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}

			var resp struct {
				Count    int                    `json:"count"`
				Total    int                    `json:"total"`
				Sessions []*service.SessionInfo `json:"sessions"`
			}
			parseResponse(t, w, &resp)

			if resp.Total != tt.wantTotal || resp.Count != len(tt.wantOrder) {
				t.Errorf("count=%d total=%d, want %d and %d", resp.Count, resp.Total, len(tt.wantOrder), tt.wantTotal)
			}
			for i, id := range tt.wantOrder {
				if resp.Sessions[i].ID != id {
					t.Errorf("session %d = %s, want %s", i, resp.Sessions[i].ID, id)
				}
			}
		})
	}
}

func TestGetAndDeleteSession(t *testing.T) {
	mock := &MockGameService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			if sessionID != "ab12" {
				return nil, fmt.Errorf("session %s: %w", sessionID, service.ErrSessionNotFound)
			}
			return &service.SessionInfo{ID: sessionID}, nil
		},
		DeleteSessionFunc: func(ctx context.Context, sessionID string) error {
			if sessionID != "ab12" {
				return service.ErrSessionNotFound
			}
			return nil
		},
	}

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{"GET", "/api/sessions/ab12", http.StatusOK},
		{"GET", "/api/sessions/zz99", http.StatusNotFound},
		{"DELETE", "/api/sessions/ab12", http.StatusOK},
		{"DELETE", "/api/sessions/zz99", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := serve(t, mock, makeRequest(tt.method, tt.path, nil))
			if w.Code != tt.want {
				t.Errorf("Expected status %d, got %d", tt.want, w.Code)
			}
		})
	}
}

func TestGetSession_ReportsWatchers(t *testing.T) {
	mock := &MockGameService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			return &service.SessionInfo{ID: sessionID}, nil
		},
	}
	server := httptest.NewServer(setupTestServer(t, mock))
	defer server.Close()

	watchers := func() int {
		resp, err := http.Get(server.URL + "/api/sessions/ab12")
		if err != nil {
			t.Fatalf("GET session: %v", err)
		}
		defer resp.Body.Close()
		var body struct {
			ID       string `json:"id"`
			Watchers int    `json:"watchers"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.ID != "ab12" {
			t.Errorf("Expected id ab12, got %q", body.ID)
		}
		return body.Watchers
	}

	if got := watchers(); got != 0 {
		t.Errorf("Expected 0 watchers, got %d", got)
	}

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?session=ab12"
	conn, _, err := gorillaws.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(time.Second)
	for watchers() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("Expected 1 watcher after connecting")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// Game Operation Tests

func TestGameOperations(t *testing.T) {
	illegal := fmt.Errorf("%w: roll the dice before moving", engine.ErrIllegalState)
	missing := fmt.Errorf("session x: %w", service.ErrSessionNotFound)

	tests := []struct {
		name           string
		method         string
		path           string
		body           interface{}
		setupMock      func(*testing.T, *MockGameService)
		expectedStatus int
	}{
		{
			name:           "roll",
			method:         "POST",
			path:           "/api/sessions/s1/roll",
			expectedStatus: http.StatusOK,
		},
		{
			name:   "roll while task pending",
			method: "POST",
			path:   "/api/sessions/s1/roll",
			setupMock: func(t *testing.T, m *MockGameService) {
				m.RollDiceFunc = func(ctx context.Context, sessionID string) (*service.RollResult, error) {
					return nil, fmt.Errorf("%w: complete the task first", engine.ErrIllegalState)
				}
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:   "move with explicit steps",
			method: "POST",
			path:   "/api/sessions/s1/move",
			body:   map[string]int{"steps": 4},
			setupMock: func(t *testing.T, m *MockGameService) {
				m.MoveFunc = func(ctx context.Context, sessionID string, steps int) (*service.MoveResult, error) {
					if steps != 4 {
						t.Errorf("Expected 4 steps, got %d", steps)
					}
					return &service.MoveResult{GameState: activeState()}, nil
				}
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "move without body uses pending roll",
			method: "POST",
			path:   "/api/sessions/s1/move",
			setupMock: func(t *testing.T, m *MockGameService) {
				m.MoveFunc = func(ctx context.Context, sessionID string, steps int) (*service.MoveResult, error) {
					if steps != 0 {
						t.Errorf("Expected 0 steps, got %d", steps)
					}
					return &service.MoveResult{GameState: activeState()}, nil
				}
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "move without roll",
			method: "POST",
			path:   "/api/sessions/s1/move",
			setupMock: func(t *testing.T, m *MockGameService) {
				m.MoveFunc = func(ctx context.Context, sessionID string, steps int) (*service.MoveResult, error) {
					return nil, illegal
				}
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "turn",
			method:         "POST",
			path:           "/api/sessions/s1/turn",
			expectedStatus: http.StatusOK,
		},
		{
			name:   "turn on unknown session",
			method: "POST",
			path:   "/api/sessions/x/turn",
			setupMock: func(t *testing.T, m *MockGameService) {
				m.TakeTurnFunc = func(ctx context.Context, sessionID string) (*service.TurnResult, error) {
					return nil, missing
				}
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "complete",
			method:         "POST",
			path:           "/api/sessions/s1/complete",
			expectedStatus: http.StatusOK,
		},
		{
			name:   "start with tasks",
			method: "POST",
			path:   "/api/sessions/s1/start",
			body:   map[string]interface{}{"tasks": []engine.TaskDefinition{{Name: "Plank", MinCount: 1, MaxCount: 1}}},
			setupMock: func(t *testing.T, m *MockGameService) {
				m.StartGameFunc = func(ctx context.Context, sessionID string, tasks []engine.TaskDefinition) (*engine.GameState, error) {
					if len(tasks) != 1 || tasks[0].Name != "Plank" {
						t.Errorf("Unexpected tasks %+v", tasks)
					}
					return activeState(), nil
				}
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "start with invalid tasks",
			method: "POST",
			path:   "/api/sessions/s1/start",
			body:   map[string]interface{}{"tasks": []engine.TaskDefinition{{Name: "Bad", MinCount: 5, MaxCount: 1}}},
			setupMock: func(t *testing.T, m *MockGameService) {
				m.StartGameFunc = func(ctx context.Context, sessionID string, tasks []engine.TaskDefinition) (*engine.GameState, error) {
					return nil, fmt.Errorf("%w: max below min", engine.ErrInvalidConfiguration)
				}
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "reset",
			method:         "POST",
			path:           "/api/sessions/s1/reset",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "restart",
			method:         "POST",
			path:           "/api/sessions/s1/restart",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "wrong method",
			method:         "GET",
			path:           "/api/sessions/s1/roll",
			expectedStatus: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(t, mockService)
			}

			w := serve(t, mockService, makeRequest(tt.method, tt.path, tt.body))

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestRollResponse(t *testing.T) {
	mock := &MockGameService{
		RollDiceFunc: func(ctx context.Context, sessionID string) (*service.RollResult, error) {
			state := activeState()
			state.PendingRoll = 6
			return &service.RollResult{
				Value:     6,
				GameState: state,
				Events:    []service.GameEvent{{Type: service.EventRoll, Message: "Rolled a 6"}},
			}, nil
		},
	}

	w := serve(t, mock, makeRequest("POST", "/api/sessions/s1/roll", nil))

	var resp service.RollResult
	parseResponse(t, w, &resp)
	if resp.Value != 6 || resp.GameState.PendingRoll != 6 {
		t.Errorf("Unexpected roll response %+v", resp)
	}
	if len(resp.Events) != 1 || resp.Events[0].Type != service.EventRoll {
		t.Errorf("Unexpected events %+v", resp.Events)
	}
}

func TestGetHistory(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantPage  int
		wantLimit int
		wantOrder string
	}{
		{"defaults", "", 1, 20, "desc"},
		{"explicit", "?page=3&limit=5&order=asc", 3, 5, "asc"},
		{"invalid values fall back", "?page=-1&limit=abc&order=sideways", 1, 20, "desc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got service.HistoryOptions
			mock := &MockGameService{
				GetHistoryFunc: func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
					got = opts
					return &service.HistoryResponse{Turns: []engine.TurnRecord{}}, nil
				},
			}

			w := serve(t, mock, makeRequest("GET", "/api/sessions/s1/history"+tt.query, nil))
			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}
			if got.Page != tt.wantPage || got.Limit != tt.wantLimit || got.Order != tt.wantOrder {
				t.Errorf("got options %+v", got)
			}
		})
	}
}

func TestGetStateAndLayout(t *testing.T) {
	mock := &MockGameService{}

	w := serve(t, mock, makeRequest("GET", "/api/sessions/s1/state", nil))
	if w.Code != http.StatusOK {
		t.Errorf("state: expected 200, got %d", w.Code)
	}

	w = serve(t, mock, makeRequest("GET", "/api/sessions/s1/layout", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("layout: expected 200, got %d", w.Code)
	}
	var layout service.LayoutInfo
	parseResponse(t, w, &layout)
	if layout.PathLength != 60 {
		t.Errorf("Expected path length 60, got %d", layout.PathLength)
	}
}

// Configuration Tests

func TestConfigs(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		mock := &MockGameService{
			ListConfigsFunc: func(ctx context.Context) ([]*service.ConfigInfo, error) {
				return []*service.ConfigInfo{{ConfigID: "classic", Name: "Classic", PathLength: 60, TaskCount: 6}}, nil
			},
		}
		w := serve(t, mock, makeRequest("GET", "/api/configs", nil))

		var configs []service.ConfigInfo
		parseResponse(t, w, &configs)
		if len(configs) != 1 || configs[0].ConfigID != "classic" {
			t.Errorf("Unexpected configs %+v", configs)
		}
	})

	t.Run("get strips extension", func(t *testing.T) {
		mock := &MockGameService{
			LoadConfigFunc: func(ctx context.Context, configName string) (*engine.GameConfig, error) {
				if configName != "quick" {
					t.Errorf("Expected 'quick', got %s", configName)
				}
				return engine.DefaultGameConfig(), nil
			},
		}
		w := serve(t, mock, makeRequest("GET", "/api/configs/quick.json", nil))
		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", w.Code)
		}
	})

	t.Run("get missing", func(t *testing.T) {
		mock := &MockGameService{
			LoadConfigFunc: func(ctx context.Context, configName string) (*engine.GameConfig, error) {
				return nil, config.ErrConfigNotFound
			},
		}
		w := serve(t, mock, makeRequest("GET", "/api/configs/missing", nil))
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", w.Code)
		}
	})

	t.Run("create derives id from name", func(t *testing.T) {
		var savedID string
		mock := &MockGameService{
			SaveConfigFunc: func(ctx context.Context, configName string, cfg *engine.GameConfig) error {
				savedID = configName
				if cfg.Rows != 2 || len(cfg.Tasks) != 1 {
					t.Errorf("Unexpected config %+v", cfg)
				}
				return nil
			},
		}
		body := map[string]interface{}{
			"name":  "Morning Routine",
			"rows":  2,
			"cols":  5,
			"tasks": []engine.TaskDefinition{{Name: "Stretch", MinCount: 1, MaxCount: 3}},
		}
		w := serve(t, mock, makeRequest("POST", "/api/configs", body))
		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}
		if savedID != "morning_routine" {
			t.Errorf("Expected id morning_routine, got %q", savedID)
		}
	})

	t.Run("create invalid", func(t *testing.T) {
		mock := &MockGameService{
			SaveConfigFunc: func(ctx context.Context, configName string, cfg *engine.GameConfig) error {
				return fmt.Errorf("%w: %w", config.ErrInvalidConfig, engine.ErrInvalidConfiguration)
			},
		}
		w := serve(t, mock, makeRequest("POST", "/api/configs", map[string]string{"name": "x"}))
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})

	t.Run("create without name", func(t *testing.T) {
		w := serve(t, &MockGameService{}, makeRequest("POST", "/api/configs", map[string]int{"rows": 2}))
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})

	t.Run("last config", func(t *testing.T) {
		w := serve(t, &MockGameService{}, makeRequest("GET", "/api/last-config", nil))
		var cfg engine.GameConfig
		parseResponse(t, w, &cfg)
		if cfg.Name != "default" {
			t.Errorf("Expected default config, got %q", cfg.Name)
		}
	})
}

func TestUnifiedSessions(t *testing.T) {
	mock := &MockGameService{
		ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
			return []*service.SessionInfo{
				{ID: "a", ConfigName: "classic", GameState: activeState()},
				{ID: "b", ConfigName: "quick", GameState: activeState()},
				{ID: "c", ConfigName: "classic", GameState: activeState()},
			}, nil
		},
	}

	w := serve(t, mock, makeRequest("GET", "/api/sessions/unified?configName=classic", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var resp struct {
		ConfigName string                   `json:"config_name"`
		Count      int                      `json:"count"`
		Sessions   []map[string]interface{} `json:"sessions"`
	}
	parseResponse(t, w, &resp)

	if resp.ConfigName != "classic" || resp.Count != 2 {
		t.Errorf("Unexpected response %+v", resp)
	}
	if resp.Sessions[0]["path_length"] != float64(10) {
		t.Errorf("Expected path_length 10, got %v", resp.Sessions[0]["path_length"])
	}

	w = serve(t, mock, makeRequest("GET", "/api/sessions/unified?sessionIds=s1,,s2", nil))
	parseResponse(t, w, &resp)
	if resp.Count != 2 {
		t.Errorf("Expected 2 sessions by id, got %d", resp.Count)
	}
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{service.ErrSessionNotFound, http.StatusNotFound},
		{fmt.Errorf("wrapped: %w", service.ErrConfigNotFound), http.StatusNotFound},
		{engine.ErrIllegalState, http.StatusConflict},
		{engine.ErrInvalidConfiguration, http.StatusBadRequest},
		{config.ErrInvalidConfig, http.StatusBadRequest},
		{fmt.Errorf("disk full"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := statusForError(tt.err); got != tt.want {
			t.Errorf("statusForError(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestHealth(t *testing.T) {
	w := serve(t, &MockGameService{}, makeRequest("GET", "/api/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}
}

func TestWebSocket(t *testing.T) {
	tests := []struct {
		name           string
		queryParams    string
		setupMock      func(*MockGameService)
		expectedStatus int
	}{
		{
			name:           "Missing session parameter",
			queryParams:    "",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "Invalid session",
			queryParams: "?session=invalid",
			setupMock: func(m *MockGameService) {
				m.GetSessionFunc = func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
					return nil, service.ErrSessionNotFound
				}
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(t, mockService)
			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/ws"+tt.queryParams, nil)

			server.handleWebSocket(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}
