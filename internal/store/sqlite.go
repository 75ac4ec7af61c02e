package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/dreamloom/internal/world"
)

// SQLite stores each world as a JSON document in a single table.
type SQLite struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*SQLite, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLite{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.conn.Close()
}

func (s *SQLite) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS worlds (
		id TEXT PRIMARY KEY,
		data TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// Load fetches a world snapshot by id. Unknown ids return ok=false. Loaded
// snapshots are normalized so older documents pick up newly added fields.
func (s *SQLite) Load(id string) (*world.World, bool, error) {
	var data string
	err := s.conn.Get(&data, "SELECT data FROM worlds WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load world %s: %w", id, err)
	}

	var w world.World
	if err := json.Unmarshal([]byte(data), &w); err != nil {
		return nil, false, fmt.Errorf("decode world %s: %w", id, err)
	}
	w.ID = id
	world.Normalize(&w)
	return &w, true, nil
}

// Save writes a world snapshot, replacing any previous document.
func (s *SQLite) Save(w *world.World) error {
	data, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("encode world %s: %w", w.ID, err)
	}
	_, err = s.conn.Exec(
		`INSERT INTO worlds (id, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		w.ID, string(data), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save world %s: %w", w.ID, err)
	}
	return nil
}

// List returns all stored world ids in sorted order.
func (s *SQLite) List() ([]string, error) {
	var ids []string
	if err := s.conn.Select(&ids, "SELECT id FROM worlds ORDER BY id"); err != nil {
		return nil, fmt.Errorf("list worlds: %w", err)
	}
	return ids, nil
}
