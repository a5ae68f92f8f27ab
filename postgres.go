package main

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps the state document as a single JSONB row, for
// deployments where a shared database replaces the local state file. The
// schema comes from db/migrations via runMigrations.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// newPostgresStore connects a pgx pool to the given database.
func newPostgresStore(ctx context.Context, connStr string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresStore{pool: pool}, nil
}

// Load reads the state document row.
func (s *PostgresStore) Load() ([]byte, error) {
	var data []byte
	err := s.pool.QueryRow(context.Background(),
		"SELECT document FROM app_state WHERE id = 1",
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Save upserts the state document row. Last write wins.
func (s *PostgresStore) Save(data []byte) error {
	_, err := s.pool.Exec(context.Background(), `
		INSERT INTO app_state (id, document, updated_at)
		VALUES (1, $1, NOW())
		ON CONFLICT (id) DO UPDATE SET document = $1, updated_at = NOW()
	`, data)
	return err
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
