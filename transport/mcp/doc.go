// Package mcp exposes the path board game to AI agents over the Model
// Context Protocol.
//
// The Client is an MCP server whose tools call the game's REST API, so an
// agent plays exactly the same sessions a browser or the terminal client sees.
//
// MCP Tools:
//
// Sessions and configurations:
//   - create_session: Start a session from a preset, optional tasks and seed
//   - list_sessions, get_session: Inspect active sessions
//   - list_configs, get_config, last_config: Browse task presets
//
// Playing:
//   - game_state: Position, status, the cells within reach and totals
//   - roll_dice, move: Roll, then consume the roll
//   - take_turn: Roll and move in one call
//   - complete_task: Resolve the task on the current cell
//   - describe_cell: Task and grid position of any track index
//   - turn_history: Paginated list of resolved moves
//   - start_game, restart_game, reset_game: Game lifecycle
//   - game_instructions: Rules of the game
//
// Every game tool takes a required session_id.
//
// Transport Modes:
//
// The same server is served over stdio for local MCP clients and through
// the /mcp HTTP endpoint of the game server:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
