// Package session provides session management and storage for path board games.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Save and restore of game state with its task configuration
//   - The last-used task configuration
//   - Session cleanup and expiration
//
// Core Types:
//
// Manager is the main session manager that handles all session operations.
// SessionPersistence is the storage gateway; FilePersistence keeps one JSON
// file per session and SQLitePersistence keeps rows in a SQLite database
// whose schema is applied from embedded migrations.
//
// Session Identifiers:
//
// Sessions use 4-character hex IDs for easy reference. Lookups are
// case-insensitive.
//
// Persistence:
//
// Storage failures are logged and never change in-memory game state. A game
// restored from storage continues on the production random source, even if
// it was started from a seed.
//
// Usage:
//
//	store, err := session.NewSQLitePersistence("data/pathboard.db")
//	if err != nil {
//		log.Fatal(err)
//	}
//	manager := session.NewManagerWithPersistence(store)
//
//	// Create a new session with a started game
//	sess, err := manager.Create("", config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Retrieve existing session
//	sess, err = manager.Get(sessionID)
//
// Cleanup:
//
// Sessions can be explicitly deleted or may expire based on inactivity.
// CleanupExpiredSessions drops idle sessions from memory and
// SyncWithPersistence drops sessions whose stored copy was removed.
package session
