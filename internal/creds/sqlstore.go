package creds

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS snapshots (
	key     TEXT PRIMARY KEY,
	payload TEXT NOT NULL
);`

// SQLiteStore keeps snapshots in a local SQLite database. Useful when the
// service already carries a database file and a cookie directory would be
// one more thing to mount.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (or creates) the snapshot database at path.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlstore: init schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) Put(ctx context.Context, key, payload string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO snapshots (key, payload) VALUES (?, ?)`, key, payload)
	if err != nil {
		return fmt.Errorf("sqlstore: put %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM snapshots`)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("sqlstore: scan key: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlstore: iterate keys: %w", err)
	}
	return keys, nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (string, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM snapshots WHERE key = ?`, key).Scan(&payload)
	if err != nil {
		return "", fmt.Errorf("sqlstore: get %s: %w", key, err)
	}
	return payload, nil
}
