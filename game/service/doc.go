// Package service provides the business logic layer for the path board game.
//
// The service package implements:
//   - Multi-session game management
//   - Task preset selection and the last-used configuration
//   - Roll, move and task completion with event reporting
//   - Paginated turn history
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, persistence and the
// last-used configuration. ConfigManager loads and saves task presets.
//
// Architecture:
//
// The service layer sits between the transports (HTTP, WebSocket, MCP and the
// terminal client) and the game engine. Each session owns its own engine.
// Operations are serialized by a service-wide lock, so an engine is never
// touched by two requests at once.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	info, err := gameService.CreateSession(ctx, service.SessionOptions{ConfigID: "classic"})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	roll, _ := gameService.RollDice(ctx, info.ID)
//	move, _ := gameService.Move(ctx, info.ID, roll.Value)
//	if move.Status == engine.StatusTaskPending {
//		gameService.CompleteTask(ctx, info.ID)
//	}
//
// Persistence failures after a mutation are logged and never fail the request.
package service
