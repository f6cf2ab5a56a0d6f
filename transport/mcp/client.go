package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/mcp-training/pathboard/game/engine"
	"github.com/wricardo/mcp-training/pathboard/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Path Board Game",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Path Board Game - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Walk a serpentine track from the start cell to the finish cell. Every cell in
between holds a task with a quantity, such as "12 Squats". Landing on a task
cell means doing the task and reporting it before rolling again. The finish
must be reached by exact count; any excess bounces back from it.

AVAILABLE TOOLS:
- create_session: Start a new game (optional preset, tasks, seed)
- roll_dice / move: Roll, then move by the roll
- take_turn: Roll and move in one call
- complete_task: Report the task you are standing on as done
- game_state: Board, position and totals
- describe_cell: Task on a given track cell
- start_game / restart_game / reset_game: Game lifecycle
- turn_history: Past turns
- list_sessions, get_session, list_configs, get_config, last_config
- game_instructions: Full rules

NOTE: The 'intent' parameter on take_turn and complete_task serves as rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

func sessionOnlySchema() mcp.ToolInputSchema {
	return mcp.ToolInputSchema{
		Type: "object",
		Properties: map[string]interface{}{
			"session_id": map[string]interface{}{
				"type":        "string",
				"description": "Session ID",
			},
		},
		Required: []string{"session_id"},
	}
}

var taskListSchema = map[string]interface{}{
	"type": "array",
	"items": map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"name":      map[string]interface{}{"type": "string"},
			"min_count": map[string]interface{}{"type": "integer", "minimum": 0},
			"max_count": map[string]interface{}{"type": "integer", "minimum": 0},
		},
		"required": []string{"name", "min_count", "max_count"},
	},
	"description": "Task definitions; each cell gets one task with a quantity drawn from [min_count, max_count]",
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session and start its first game",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Preset to use (see list_configs). Defaults to the default preset",
				},
				"tasks": taskListSchema,
				"seed": map[string]interface{}{
					"type":        "integer",
					"description": "Seed for a reproducible board and dice",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: sessionOnlySchema(),
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current game state",
		InputSchema: sessionOnlySchema(),
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "roll_dice",
		Description: "Roll the die. Follow with move to advance by the rolled value",
		InputSchema: sessionOnlySchema(),
	}, c.handleRollDice)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Move forward by the pending roll, or by an explicit number of steps",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"steps": map[string]interface{}{
					"type":        "integer",
					"minimum":     1,
					"description": "Steps to move (optional, defaults to the pending roll)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "take_turn",
		Description: "Roll the die and move by the result",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of where you hope to land (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleTakeTurn)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "complete_task",
		Description: "Report the task on the current cell as done. Required before the next roll",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief note on how the task went",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleCompleteTask)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "start_game",
		Description: "Start a new game in the session, optionally with a new task list",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"tasks": taskListSchema,
			},
			Required: []string{"session_id"},
		},
	}, c.handleStartGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "restart_game",
		Description: "Start a new game with the same tasks",
		InputSchema: sessionOnlySchema(),
	}, c.handleRestart)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Clear the board and return to the idle state",
		InputSchema: sessionOnlySchema(),
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "turn_history",
		Description: "Get turn history for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
				"order": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "Oldest or newest first",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleTurnHistory)

	// Configuration
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available task presets",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_config",
		Description: "Show the tasks and board of a preset",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Preset ID",
				},
			},
			Required: []string{"config_id"},
		},
	}, c.handleGetConfig)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "last_config",
		Description: "Show the configuration of the most recently started game",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleLastConfig)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Describe a track cell: its task, quantity, completion and where it sits on the board",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"index": map[string]interface{}{
					"type":        "integer",
					"description": "Track index of the cell (0 is the start)",
				},
			},
			Required: []string{"session_id", "index"},
		},
	}, c.handleDescribeCell)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	endpoint := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, endpoint, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

func sessionPath(args map[string]interface{}, suffix string) string {
	sessionID, _ := args["session_id"].(string)
	return fmt.Sprintf("/api/sessions/%s%s", url.PathEscape(sessionID), suffix)
}

// parseTasks converts a JSON tool argument into task definitions
func parseTasks(raw interface{}) ([]engine.TaskDefinition, error) {
	if raw == nil {
		return nil, nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var tasks []engine.TaskDefinition
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("tasks must be a list of {name, min_count, max_count}: %w", err)
	}
	return tasks, nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	body := map[string]interface{}{}
	if configID, _ := args["config_id"].(string); configID != "" {
		body["config_id"] = configID
	}
	tasks, err := parseTasks(args["tasks"])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(tasks) > 0 {
		body["tasks"] = tasks
	}
	if seed, ok := args["seed"].(float64); ok {
		body["seed"] = int64(seed)
	}

	var session service.SessionInfo
	if err := c.apiCall("POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n\n%s",
		session.ID, session.ConfigName, formatGameState(session.GameState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall("GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		position := 0
		if s.GameState != nil {
			position = s.GameState.Position
		}
		result += fmt.Sprintf("- %s (Config: %s, Status: %s, Position: %d, Created: %s)\n",
			s.ID, s.ConfigName, s.Status, position, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var session service.SessionInfo
	if err := c.apiCall("GET", sessionPath(arguments(request), ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var state engine.GameState
	if err := c.apiCall("GET", sessionPath(arguments(request), "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleRollDice(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var result service.RollResult
	if err := c.apiCall("POST", sessionPath(arguments(request), "/roll"), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text := fmt.Sprintf("🎲 Rolled a %d", result.Value)
	if result.BonusRoll {
		text += " (bonus roll earned)"
	}
	text += "\nCall move to advance."
	return mcp.NewToolResultText(text), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	body := map[string]interface{}{}
	if steps, ok := args["steps"].(float64); ok {
		body["steps"] = int(steps)
	}

	var result service.MoveResult
	if err := c.apiCall("POST", sessionPath(args, "/move"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleTakeTurn(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	var result service.TurnResult
	if err := c.apiCall("POST", sessionPath(args, "/turn"), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text := fmt.Sprintf("🎲 Rolled a %d\n", result.Roll) + formatMoveResult(&service.MoveResult{
		Outcome:   result.Outcome,
		Status:    result.Status,
		GameState: result.GameState,
		Message:   result.Message,
		Events:    result.Events,
	})
	return mcp.NewToolResultText(text), nil
}

func (c *Client) handleCompleteTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var result service.CompleteResult
	if err := c.apiCall("POST", sessionPath(arguments(request), "/complete"), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if !result.Success {
		return mcp.NewToolResultText("✗ " + result.Message), nil
	}

	text := fmt.Sprintf("✓ %s\n\nTotals:\n%s", result.Message, formatTotals(result.Totals))
	return mcp.NewToolResultText(text), nil
}

func (c *Client) handleStartGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	tasks, err := parseTasks(args["tasks"])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}
	if err := c.apiCall("POST", sessionPath(args, "/start"), map[string]interface{}{"tasks": tasks}, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))), nil
}

func (c *Client) handleRestart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.lifecycle(request, "/restart")
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.lifecycle(request, "/reset")
}

func (c *Client) lifecycle(request mcp.CallToolRequest, suffix string) (*mcp.CallToolResult, error) {
	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}

	if err := c.apiCall("POST", sessionPath(arguments(request), suffix), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleTurnHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	params := url.Values{}
	if page, ok := args["page"].(float64); ok {
		params.Set("page", fmt.Sprintf("%d", int(page)))
	}
	if limit, ok := args["limit"].(float64); ok {
		params.Set("limit", fmt.Sprintf("%d", int(limit)))
	}
	if order, ok := args["order"].(string); ok && order != "" {
		params.Set("order", order)
	}

	path := sessionPath(args, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall("GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall("GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := "Available Configurations:\n\n"
	for _, cfg := range configs {
		result += fmt.Sprintf("• %s (config_id: %s)\n  %s\n  Board: %dx%d, Track: %d cells, Tasks: %d\n\n",
			cfg.Name, cfg.ConfigID, cfg.Description, cfg.Rows, cfg.Cols, cfg.PathLength, cfg.TaskCount)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetConfig(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	configID, _ := arguments(request)["config_id"].(string)

	var cfg engine.GameConfig
	if err := c.apiCall("GET", "/api/configs/"+url.PathEscape(configID), nil, &cfg); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatConfig(&cfg)), nil
}

func (c *Client) handleLastConfig(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var cfg engine.GameConfig
	if err := c.apiCall("GET", "/api/last-config", nil, &cfg); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatConfig(&cfg)), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `🎲 Path Board Game - Complete Instructions

GAME OBJECTIVE:
Move from the start cell (index 0) to the finish cell (the last index) of a
serpentine track, completing the task on every cell you land on.

THE BOARD:
• The track snakes across a rows x cols grid: even rows run left to right,
  odd rows right to left. Track length is rows x cols.
• The start and finish cells carry no task.
• Every other cell holds one task and a quantity, e.g. "15 Squats".

TURN SEQUENCE:
1. roll_dice (or take_turn to roll and move at once)
2. move by the rolled value
3. If you land on a task cell, do the task and call complete_task
4. Only then can you roll again

MOVEMENT RULES:
• You must land on the finish by exact count.
• A roll that passes the finish bounces back by the excess.
  Example: 2 cells from the finish, rolling a 5 moves you 2 forward and 3 back.
• A bounce never goes below the start cell.
• Landing on a task cell again makes its task due again.

VICTORY CONDITIONS:
Reaching the finish cell ends the game. Totals per task show how much work
was done along the way.

STRATEGY NOTES:
• Use describe_cell or game_state to preview the cells within six steps.
• Near the finish, smaller rolls are better; check how far away you are.
• A seed on create_session gives a reproducible board and dice, handy for
  comparing runs.

Good luck on the track!`

	return mcp.NewToolResultText(instructions), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	indexRaw, ok := args["index"].(float64)
	if !ok {
		return mcp.NewToolResultError("index must be an integer"), nil
	}
	index := int(indexRaw)

	var state engine.GameState
	if err := c.apiCall("GET", sessionPath(args, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var layout service.LayoutInfo
	if err := c.apiCall("GET", sessionPath(args, "/layout"), nil, &layout); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(describeCell(&state, &layout, index)), nil
}

// Formatting helpers

func describeCell(state *engine.GameState, layout *service.LayoutInfo, index int) string {
	if len(state.Cells) == 0 {
		return "No game in progress. Call start_game first."
	}
	if index < 0 || index >= len(state.Cells) {
		return fmt.Sprintf("Index %d is off the track (valid: 0-%d)", index, len(state.Cells)-1)
	}

	l := engine.Layout{Rows: layout.Rows, Cols: layout.Cols}
	row, col := l.GridPosition(index)

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Cell %d (row %d, col %d)\n", index, row, col))
	b.WriteString(cellLabel(state.Cells, index) + "\n")

	distance := index - state.Position
	switch {
	case distance == 0:
		b.WriteString("You are here.\n")
	case distance > 0 && distance <= engine.DiceSides:
		b.WriteString(fmt.Sprintf("Reachable with a roll of %d.\n", distance))
	case distance > 0:
		b.WriteString(fmt.Sprintf("%d steps ahead.\n", distance))
	default:
		b.WriteString(fmt.Sprintf("%d steps behind.\n", -distance))
	}
	return b.String()
}

func cellLabel(cells []engine.Cell, index int) string {
	switch {
	case index == 0:
		return "START"
	case index == len(cells)-1:
		return "FINISH"
	}
	cell := cells[index]
	mark := ""
	if cell.Completed {
		mark = " ✓"
	}
	return fmt.Sprintf("%d %s%s", cell.Count, cell.TaskName, mark)
}

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nStatus: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigName, session.Status,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	status := state.Status()
	if status == engine.StatusIdle {
		return "Status: idle (no game in progress)"
	}

	var result strings.Builder
	last := len(state.Cells) - 1

	result.WriteString(fmt.Sprintf("Position: %d/%d | Rolls: %d | Tasks completed: %d | Status: %s\n",
		state.Position, last, state.TotalRolls, state.TasksCompleted, status))

	if state.PendingRoll > 0 {
		result.WriteString(fmt.Sprintf("Pending roll: %d (call move)\n", state.PendingRoll))
	}

	switch status {
	case engine.StatusTaskPending:
		cell := state.Cells[state.Position]
		result.WriteString(fmt.Sprintf("Task due: %d %s (call complete_task)\n", cell.Count, cell.TaskName))
	case engine.StatusWon:
		result.WriteString("\n🎉 VICTORY!\n")
	}

	if status != engine.StatusWon {
		result.WriteString(fmt.Sprintf("Distance to finish: %d\n", last-state.Position))
		result.WriteString("\nAhead:\n")
		for i := state.Position + 1; i <= last && i <= state.Position+engine.DiceSides; i++ {
			result.WriteString(fmt.Sprintf("  +%d → %d: %s\n", i-state.Position, i, cellLabel(state.Cells, i)))
		}
	}

	if len(state.CompletionTotals) > 0 {
		result.WriteString("\nTotals:\n")
		result.WriteString(formatTotals(state.CompletionTotals))
	}

	return result.String()
}

func formatMoveResult(result *service.MoveResult) string {
	var b strings.Builder

	o := result.Outcome
	if o.Bounced {
		b.WriteString(fmt.Sprintf("↩ Moved %d → %d (bounced back %d)\n", o.From, o.To, o.BackwardSteps))
	} else {
		b.WriteString(fmt.Sprintf("→ Moved %d → %d\n", o.From, o.To))
	}

	if result.Message != "" {
		b.WriteString(result.Message + "\n")
	}
	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))

	return b.String()
}

func formatTotals(totals map[string]int) string {
	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		b.WriteString(fmt.Sprintf("  %s: %d\n", name, totals[name]))
	}
	return b.String()
}

func formatConfig(cfg *engine.GameConfig) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s\n", cfg.Name))
	if cfg.Description != "" {
		b.WriteString(cfg.Description + "\n")
	}
	b.WriteString(fmt.Sprintf("Board: %dx%d (%d cells)\n\nTasks:\n",
		cfg.Rows, cfg.Cols, engine.CellCount(cfg.Rows, cfg.Cols)))
	for _, task := range cfg.Tasks {
		b.WriteString(fmt.Sprintf("  %s: %d-%d\n", task.Name, task.MinCount, task.MaxCount))
	}
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	result := fmt.Sprintf("Turn History (Page %d/%d), total turns: %d\n\n",
		history.Page, history.TotalPages, history.TotalTurns)

	for _, turn := range history.Turns {
		line := fmt.Sprintf("%d. rolled %d: %d → %d", turn.TurnNumber, turn.Roll, turn.FromPosition, turn.ToPosition)
		if turn.BackwardSteps > 0 {
			line += fmt.Sprintf(" (bounced %d)", turn.BackwardSteps)
		}
		if turn.Finished {
			line += " 🏁"
		}
		result += line + "\n"
	}

	return result
}
