package session

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// schemaSQL keeps at most one saved session. Safe to apply repeatedly.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS session (
	id       INTEGER PRIMARY KEY CHECK (id = 1),
	token    TEXT    NOT NULL,
	user_id  INTEGER NOT NULL,
	saved_at TEXT    NOT NULL
);`

// Store persists the session between CLI invocations in a single-row
// SQLite file.
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if needed) the session database at path and
// applies the schema.
func OpenStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close shuts the database down.
func (st *Store) Close() error { return st.db.Close() }

// Load returns the saved session; ok is false when none was saved.
func (st *Store) Load(ctx context.Context) (token string, userID int, ok bool, err error) {
	row := st.db.QueryRowContext(ctx, `SELECT token, user_id FROM session WHERE id = 1`)
	if err := row.Scan(&token, &userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", 0, false, nil
		}
		return "", 0, false, err
	}
	return token, userID, true, nil
}

// Save replaces the saved session.
func (st *Store) Save(ctx context.Context, token string, userID int) error {
	_, err := st.db.ExecContext(ctx, `
		INSERT INTO session (id, token, user_id, saved_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			token = excluded.token,
			user_id = excluded.user_id,
			saved_at = excluded.saved_at
	`, token, userID, time.Now().UTC().Format(time.RFC3339))
	return err
}

// Clear removes the saved session.
func (st *Store) Clear(ctx context.Context) error {
	_, err := st.db.ExecContext(ctx, `DELETE FROM session WHERE id = 1`)
	return err
}
