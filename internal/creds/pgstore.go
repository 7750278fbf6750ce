package creds

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const pgSchema = `
CREATE TABLE IF NOT EXISTS credential_snapshots (
	key     TEXT PRIMARY KEY,
	payload TEXT NOT NULL
)`

// PGStore keeps snapshots in Postgres, for deployments where several
// replicas share one database. Cross-process locking is deliberately not
// attempted: concurrent replicas may each renew, which is redundant but
// safe (the newest key wins on the next read).
type PGStore struct {
	pool *pgxpool.Pool
}

// ConnectPGStore creates a pgx pool and ensures the snapshot table exists.
func ConnectPGStore(ctx context.Context, databaseURL string) (*PGStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("pgstore: create pool: %w", err)
	}
	if _, err := pool.Exec(ctx, pgSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pgstore: init schema: %w", err)
	}
	return &PGStore{pool: pool}, nil
}

// Close releases the connection pool.
func (s *PGStore) Close() { s.pool.Close() }

func (s *PGStore) Put(ctx context.Context, key, payload string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO credential_snapshots (key, payload) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET payload = EXCLUDED.payload`, key, payload)
	if err != nil {
		return fmt.Errorf("pgstore: put %s: %w", key, err)
	}
	return nil
}

func (s *PGStore) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT key FROM credential_snapshots`)
	if err != nil {
		return nil, fmt.Errorf("pgstore: list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("pgstore: scan key: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgstore: iterate keys: %w", err)
	}
	return keys, nil
}

func (s *PGStore) Get(ctx context.Context, key string) (string, error) {
	var payload string
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM credential_snapshots WHERE key = $1`, key).Scan(&payload)
	if err != nil {
		return "", fmt.Errorf("pgstore: get %s: %w", key, err)
	}
	return payload, nil
}
