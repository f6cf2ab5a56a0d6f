// Package websocket pushes game updates to browsers and other live viewers.
//
// A central Hub tracks the clients attached to each session. Every client has
// a read pump, which only keeps the connection alive, and a write pump, which
// drains the client's send buffer and sends pings.
//
// Clients attach with /ws?session=<id>. After every state-changing request the
// API broadcasts a state_update message carrying the full game state and its
// phase, followed by a game_events message with the events the request
// produced. Clients that cannot keep up are disconnected.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//
//	hub.BroadcastStatus(sessionID, state, engine.StatusInProgress)
//	hub.BroadcastEvent(sessionID, websocket.EventGameEvents, events)
package websocket
