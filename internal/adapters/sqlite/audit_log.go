package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/example/agentbond/internal/ports/secondary"
)

// AuditLog implements secondary.AuditLog with an append-only SQLite table.
// The AUTOINCREMENT seq gives external observers a strict ordering without
// polling internal state.
type AuditLog struct {
	db *sql.DB
}

// NewAuditLog creates a new SQLite audit log.
func NewAuditLog(db *sql.DB) *AuditLog {
	return &AuditLog{db: db}
}

// Append writes one immutable event. The event ID is assigned here when the
// caller leaves it empty.
func (l *AuditLog) Append(ctx context.Context, event *secondary.AuditEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	_, err := l.db.ExecContext(ctx,
		`INSERT INTO audit_log (id, kind, agent_id, claim_id, request_id, actor, recipient, amount, detail) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID,
		event.Kind,
		nullable(event.AgentID),
		nullable(event.ClaimID),
		nullable(event.RequestID),
		nullable(event.Actor),
		nullable(event.Recipient),
		event.Amount,
		nullable(event.Detail),
	)
	if err != nil {
		return fmt.Errorf("failed to append audit event: %w", err)
	}

	return nil
}

// List returns the most recent events, newest first. limit <= 0 returns all.
func (l *AuditLog) List(ctx context.Context, limit int) ([]*secondary.AuditEvent, error) {
	query := `SELECT seq, id, kind, agent_id, claim_id, request_id, actor, recipient, amount, detail, created_at FROM audit_log ORDER BY seq DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit events: %w", err)
	}
	defer rows.Close()

	var events []*secondary.AuditEvent
	for rows.Next() {
		var (
			agentID   sql.NullString
			claimID   sql.NullString
			requestID sql.NullString
			actor     sql.NullString
			recipient sql.NullString
			detail    sql.NullString
			createdAt time.Time
		)

		event := &secondary.AuditEvent{}
		err := rows.Scan(&event.Seq, &event.ID, &event.Kind, &agentID, &claimID, &requestID, &actor, &recipient, &event.Amount, &detail, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		event.AgentID = agentID.String
		event.ClaimID = claimID.String
		event.RequestID = requestID.String
		event.Actor = actor.String
		event.Recipient = recipient.String
		event.Detail = detail.String
		event.CreatedAt = createdAt.Format(time.RFC3339)

		events = append(events, event)
	}

	return events, nil
}

func nullable(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// Ensure AuditLog implements the interface
var _ secondary.AuditLog = (*AuditLog)(nil)
