package session

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/wricardo/mcp-training/pathboard/game/engine"
	"github.com/wricardo/mcp-training/pathboard/game/service"
	"github.com/wricardo/mcp-training/pathboard/game/session/migrations"

	_ "modernc.org/sqlite"
)

// SQLitePersistence implements SessionPersistence on a SQLite database
type SQLitePersistence struct {
	db *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// NewSQLitePersistence opens the database at path and applies embedded migrations
func NewSQLitePersistence(path string) (*SQLitePersistence, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	p, err := newSQLitePersistence(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return p, nil
}

// newSQLitePersistence wraps an open handle, used directly by tests with :memory:
func newSQLitePersistence(db *sql.DB) (*SQLitePersistence, error) {
	if err := applyMigrations(db, migrations.FS); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &SQLitePersistence{db: db}, nil
}

// Close closes the SQLite handle
func (p *SQLitePersistence) Close() error {
	if p == nil || p.db == nil {
		return nil
	}
	return p.db.Close()
}

// Save upserts a session row
func (p *SQLitePersistence) Save(session *service.Session) error {
	data, err := snapshot(session)
	if err != nil {
		return err
	}

	configJSON, err := json.Marshal(data.GameConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal game config: %w", err)
	}
	stateJSON, err := json.Marshal(data.GameState)
	if err != nil {
		return fmt.Errorf("failed to marshal game state: %w", err)
	}

	_, err = p.db.Exec(
		`INSERT INTO sessions (
		   id,
		   config_name,
		   game_config,
		   game_state,
		   created_at,
		   last_accessed_at
		 ) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   config_name = excluded.config_name,
		   game_config = excluded.game_config,
		   game_state = excluded.game_state,
		   last_accessed_at = excluded.last_accessed_at`,
		strings.ToLower(data.ID),
		data.ConfigName,
		string(configJSON),
		string(stateJSON),
		toMillis(data.CreatedAt),
		toMillis(data.LastAccessedAt),
	)
	if err != nil {
		return fmt.Errorf("save session %s: %w", data.ID, err)
	}
	return nil
}

// Load reads a session row and rebuilds its engine
func (p *SQLitePersistence) Load(id string) (*service.Session, error) {
	var (
		data                  PersistedSessionData
		configJSON, stateJSON string
		createdAt, accessedAt int64
	)

	err := p.db.QueryRow(
		`SELECT id, config_name, game_config, game_state, created_at, last_accessed_at
		 FROM sessions WHERE id = ?`,
		strings.ToLower(id),
	).Scan(&data.ID, &data.ConfigName, &configJSON, &stateJSON, &createdAt, &accessedAt)
	if err == sql.ErrNoRows {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}

	if err := json.Unmarshal([]byte(configJSON), &data.GameConfig); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSessionData, err)
	}
	if err := json.Unmarshal([]byte(stateJSON), &data.GameState); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSessionData, err)
	}
	data.CreatedAt = fromMillis(createdAt)
	data.LastAccessedAt = fromMillis(accessedAt)

	return restore(&data)
}

// Delete removes a session row
func (p *SQLitePersistence) Delete(id string) error {
	res, err := p.db.Exec(`DELETE FROM sessions WHERE id = ?`, strings.ToLower(id))
	if err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// ListAll returns all stored session IDs
func (p *SQLitePersistence) ListAll() ([]string, error) {
	rows, err := p.db.Query(`SELECT id FROM sessions ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return ids, nil
}

// Exists checks if a session row exists
func (p *SQLitePersistence) Exists(id string) bool {
	var found int
	err := p.db.QueryRow(`SELECT 1 FROM sessions WHERE id = ?`, strings.ToLower(id)).Scan(&found)
	return err == nil
}

// SaveLastConfig stores the last-used configuration in its single slot
func (p *SQLitePersistence) SaveLastConfig(config *engine.GameConfig) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}

	data, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal last config: %w", err)
	}

	_, err = p.db.Exec(
		`INSERT INTO last_config (slot, game_config, updated_at) VALUES (1, ?, ?)
		 ON CONFLICT(slot) DO UPDATE SET
		   game_config = excluded.game_config,
		   updated_at = excluded.updated_at`,
		string(data),
		toMillis(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("save last config: %w", err)
	}
	return nil
}

// LoadLastConfig returns the stored configuration, nil when none was saved
func (p *SQLitePersistence) LoadLastConfig() (*engine.GameConfig, error) {
	var data string
	err := p.db.QueryRow(`SELECT game_config FROM last_config WHERE slot = 1`).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load last config: %w", err)
	}

	var config engine.GameConfig
	if err := json.Unmarshal([]byte(data), &config); err != nil {
		return nil, fmt.Errorf("failed to parse last config: %w", err)
	}
	return &config, nil
}
