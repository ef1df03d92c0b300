package shared

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Execer is the slice of pgxpool.Pool the stores in this package need.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// AuthEvent represents a record stored in auth_events.
type AuthEvent struct {
	Kind        string
	UserID      int64
	Email       string
	Fingerprint string
	RemoteAddr  string
	Meta        map[string]any
	At          time.Time
}

// AuditLogger writes records into auth_events. A logger without a database
// accepts and drops every record.
type AuditLogger struct {
	db Execer
}

// NewAuditLogger returns a new AuditLogger; pool may be nil.
func NewAuditLogger(pool *pgxpool.Pool) *AuditLogger {
	if pool == nil {
		return &AuditLogger{}
	}
	return &AuditLogger{db: pool}
}

// Enabled reports whether records reach a database.
func (l *AuditLogger) Enabled() bool {
	return l != nil && l.db != nil
}

// Record persists the event.
func (l *AuditLogger) Record(ctx context.Context, ev AuthEvent) error {
	if !l.Enabled() {
		return nil
	}
	if ev.Kind == "" {
		return errors.New("auth event requires kind")
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	metaJSON, err := json.Marshal(ev.Meta)
	if err != nil {
		return err
	}
	_, err = l.db.Exec(ctx,
		`INSERT INTO auth_events (kind, user_id, email, token_fingerprint, remote_addr, meta, occurred_at) VALUES ($1, NULLIF($2, 0), NULLIF($3, ''), NULLIF($4, ''), $5, $6, $7)`,
		ev.Kind, ev.UserID, ev.Email, ev.Fingerprint, ev.RemoteAddr, metaJSON, ev.At)
	return err
}
