package shared

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// AuditSchema creates the audit table when missing.
const AuditSchema = `CREATE TABLE IF NOT EXISTS cadastro_audit_log (
	id BIGSERIAL PRIMARY KEY,
	operator TEXT NOT NULL DEFAULT '',
	action TEXT NOT NULL,
	entity TEXT NOT NULL,
	entity_id TEXT NOT NULL DEFAULT '',
	meta JSONB,
	occurred_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// Audit actions.
const (
	AuditCreate = "create"
	AuditUpdate = "update"
	AuditDelete = "delete"
)

// AuditEntry is one line of the audit trail.
type AuditEntry struct {
	Operator string
	Action   string
	Entity   string
	EntityID string
	Meta     map[string]any
	At       time.Time
}

// Execer is satisfied by *pgxpool.Pool and pgx.Tx.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// AuditLogger appends entries to cadastro_audit_log. A nil database turns it
// into a no-op so the console runs without Postgres.
type AuditLogger struct {
	db     Execer
	logger *slog.Logger
}

// NewAuditLogger returns an AuditLogger.
func NewAuditLogger(db Execer, logger *slog.Logger) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{db: db, logger: logger}
}

// Enabled reports whether entries are persisted.
func (l *AuditLogger) Enabled() bool {
	return l != nil && l.db != nil
}

// Record persists the entry.
func (l *AuditLogger) Record(ctx context.Context, entry AuditEntry) error {
	if !l.Enabled() {
		return nil
	}
	if entry.Action == "" || entry.Entity == "" {
		return errors.New("audit entry requires action and entity")
	}
	if entry.At.IsZero() {
		entry.At = time.Now()
	}
	meta, err := json.Marshal(entry.Meta)
	if err != nil {
		return err
	}
	_, err = l.db.Exec(ctx,
		`INSERT INTO cadastro_audit_log (operator, action, entity, entity_id, meta, occurred_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.Operator, entry.Action, entry.Entity, entry.EntityID, meta, entry.At)
	if err != nil {
		l.logger.Warn("audit write failed", slog.String("entity", entry.Entity), slog.Any("error", err))
	}
	return err
}
