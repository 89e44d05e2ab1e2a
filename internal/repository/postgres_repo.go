package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/roksva123/go-matrix-tasks/internal/store"
)

// PostgresRepo is a store.Backend keeping every key as one row of kv_state.
// Several deployments can share a database through distinct namespaces.
type PostgresRepo struct {
	DB        *sql.DB
	Namespace string
}

func NewPostgresRepo(ctx context.Context, dsn, namespace string) (*PostgresRepo, error) {
	if dsn == "" {
		return nil, errors.New("database url is empty")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresRepo{DB: db, Namespace: namespace}, nil
}

func (r *PostgresRepo) RunMigrations(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS kv_state (
            namespace TEXT NOT NULL,
            key TEXT NOT NULL,
            value BYTEA NOT NULL,
            updated_at TIMESTAMP WITH TIME ZONE DEFAULT now(),
            PRIMARY KEY (namespace, key)
        );`,
	}
	for _, q := range queries {
		if _, err := r.DB.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

func (r *PostgresRepo) Get(ctx context.Context, key string) ([]byte, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT value FROM kv_state WHERE namespace = $1 AND key = $2`, r.Namespace, key)
	var value []byte
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return value, nil
}

func (r *PostgresRepo) Set(ctx context.Context, key string, value []byte) error {
	_, err := r.DB.ExecContext(ctx, `
        INSERT INTO kv_state (namespace, key, value, updated_at)
        VALUES ($1, $2, $3, now())
        ON CONFLICT (namespace, key) DO UPDATE SET
            value = EXCLUDED.value,
            updated_at = now()
    `, r.Namespace, key, value)
	return err
}

func (r *PostgresRepo) Delete(ctx context.Context, key string) error {
	_, err := r.DB.ExecContext(ctx,
		`DELETE FROM kv_state WHERE namespace = $1 AND key = $2`, r.Namespace, key)
	return err
}

// Purge removes several keys in one statement and reports how many existed.
func (r *PostgresRepo) Purge(ctx context.Context, keys []string) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		`DELETE FROM kv_state WHERE namespace = $1 AND key = ANY($2)`, r.Namespace, pq.Array(keys))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *PostgresRepo) Close() error {
	return r.DB.Close()
}
