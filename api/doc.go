// Package api provides the HTTP REST API for the path board game.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create a session and start its first game
//   - GET /api/sessions - List sessions (sort=created|accessed, order, limit)
//   - GET /api/sessions/unified - Progress overview (sessionIds or configName)
//   - GET /api/sessions/{id} - Get a session
//   - DELETE /api/sessions/{id} - Delete a session
//
// Game Operations:
//   - POST /api/sessions/{id}/start - Start a new game, optionally with new tasks
//   - POST /api/sessions/{id}/roll - Roll the die
//   - POST /api/sessions/{id}/move - Move by {"steps": n}, or by the pending roll
//   - POST /api/sessions/{id}/turn - Roll and move in one request
//   - POST /api/sessions/{id}/complete - Report the current task as done
//   - POST /api/sessions/{id}/reset - Return to the idle state
//   - POST /api/sessions/{id}/restart - New game with the same tasks
//
// Game State:
//   - GET /api/sessions/{id}/state - Current game state
//   - GET /api/sessions/{id}/history - Turn history (page, limit, order)
//   - GET /api/sessions/{id}/layout - Board geometry
//
// Configuration:
//   - GET /api/configs - List task presets
//   - POST /api/configs - Save a task preset
//   - GET /api/configs/{name} - Get a task preset
//   - GET /api/last-config - Configuration of the most recent game
//
// Creating a session accepts:
//
//	{
//	  "config_id": "classic",
//	  "tasks": [{"name": "Squats", "min_count": 5, "max_count": 15}],
//	  "seed": 42
//	}
//
// All fields are optional. Tasks replace the preset's list, and a seed makes
// the board and the dice reproducible.
//
// Error Handling:
//
// Errors are returned as {"error": "message"}. Unknown sessions and presets
// map to 404, invalid task lists or boards to 400, and operations the game
// does not allow in its current phase, such as rolling while a task is
// pending, to 409.
//
// Every state change is broadcast to WebSocket viewers attached at
// /ws?session={id}.
package api
