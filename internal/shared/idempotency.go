package shared

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const uniqueViolation = "23505"

// IdempotencyStore claims request keys so a form is processed at most once.
type IdempotencyStore interface {
	// Claim returns ErrIdempotencyConflict when key was already claimed in scope.
	Claim(ctx context.Context, key, scope string) error
	// Release forgets a claim, used to roll back a failed submission.
	Release(ctx context.Context, key, scope string) error
}

func validateClaim(key, scope string) error {
	if key == "" {
		return errors.New("idempotency key required")
	}
	if scope == "" {
		return errors.New("idempotency scope required")
	}
	return nil
}

// PGIdempotencyStore persists processed keys in idempotency_keys.
type PGIdempotencyStore struct {
	db Execer
}

// NewPGIdempotencyStore constructs the store.
func NewPGIdempotencyStore(pool *pgxpool.Pool) *PGIdempotencyStore {
	return &PGIdempotencyStore{db: pool}
}

// Claim inserts the key, mapping unique violations to ErrIdempotencyConflict.
func (s *PGIdempotencyStore) Claim(ctx context.Context, key, scope string) error {
	if err := validateClaim(key, scope); err != nil {
		return err
	}
	_, err := s.db.Exec(ctx, `INSERT INTO idempotency_keys (key, scope, created_at) VALUES ($1, $2, $3)`, key, scope, time.Now().UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrIdempotencyConflict
		}
		return err
	}
	return nil
}

// Release removes a key.
func (s *PGIdempotencyStore) Release(ctx context.Context, key, scope string) error {
	if err := validateClaim(key, scope); err != nil {
		return err
	}
	_, err := s.db.Exec(ctx, `DELETE FROM idempotency_keys WHERE key = $1 AND scope = $2`, key, scope)
	return err
}

// Cleanup removes entries older than retention.
func (s *PGIdempotencyStore) Cleanup(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	tag, err := s.db.Exec(ctx, `DELETE FROM idempotency_keys WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// RedisIdempotencyStore keeps claims as expiring Redis keys. It serves
// deployments without Postgres.
type RedisIdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisIdempotencyStore constructs the store; claims expire after ttl.
func NewRedisIdempotencyStore(client *redis.Client, ttl time.Duration) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{client: client, ttl: ttl}
}

// Claim sets the key only when absent.
func (s *RedisIdempotencyStore) Claim(ctx context.Context, key, scope string) error {
	if err := validateClaim(key, scope); err != nil {
		return err
	}
	ok, err := s.client.SetNX(ctx, s.redisKey(key, scope), time.Now().UTC().Format(time.RFC3339), s.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrIdempotencyConflict
	}
	return nil
}

// Release removes a key.
func (s *RedisIdempotencyStore) Release(ctx context.Context, key, scope string) error {
	if err := validateClaim(key, scope); err != nil {
		return err
	}
	return s.client.Del(ctx, s.redisKey(key, scope)).Err()
}

func (s *RedisIdempotencyStore) redisKey(key, scope string) string {
	return "sakura:idempotency:" + scope + ":" + key
}
