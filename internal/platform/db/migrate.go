package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS auth_events (
		id BIGSERIAL PRIMARY KEY,
		kind TEXT NOT NULL,
		user_id BIGINT,
		email TEXT,
		token_fingerprint TEXT,
		remote_addr TEXT NOT NULL DEFAULT '',
		meta JSONB,
		occurred_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS auth_events_occurred_at_idx ON auth_events (occurred_at DESC)`,
	`CREATE TABLE IF NOT EXISTS idempotency_keys (
		key TEXT NOT NULL,
		scope TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (scope, key)
	)`,
	`CREATE INDEX IF NOT EXISTS idempotency_keys_created_at_idx ON idempotency_keys (created_at)`,
}

// Migrate creates the tables owned by this service. It is safe to run on
// every start.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	return pgx.BeginTxFunc(ctx, pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		for i, stmt := range schema {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("platform/db: migrate step %d: %w", i+1, err)
			}
		}
		return nil
	})
}
