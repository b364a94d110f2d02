package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/agentbond/internal/errs"
	"github.com/example/agentbond/internal/ports/secondary"
)

// ClaimRepository implements secondary.ClaimRepository with SQLite.
type ClaimRepository struct {
	db *sql.DB
}

// NewClaimRepository creates a new SQLite claim repository.
func NewClaimRepository(db *sql.DB) *ClaimRepository {
	return &ClaimRepository{db: db}
}

// Create persists a new claim.
func (r *ClaimRepository) Create(ctx context.Context, claim *secondary.ClaimRecord) error {
	var evidenceHash sql.NullString
	if claim.EvidenceHash != "" {
		evidenceHash = sql.NullString{String: claim.EvidenceHash, Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO claims (id, run_id, claimant, agent_id, reason_code, evidence_hash, status, amount) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		claim.ID,
		claim.RunID,
		claim.Claimant,
		claim.AgentID,
		claim.ReasonCode,
		evidenceHash,
		claim.Status,
		claim.Amount,
	)
	if err != nil {
		return fmt.Errorf("failed to create claim: %w", err)
	}

	return nil
}

// GetByID retrieves a claim by its ID.
func (r *ClaimRepository) GetByID(ctx context.Context, id string) (*secondary.ClaimRecord, error) {
	record, err := r.scanOne(r.db.QueryRowContext(ctx,
		`SELECT id, run_id, claimant, agent_id, reason_code, evidence_hash, status, amount, created_at, resolved_at FROM claims WHERE id = ?`,
		id,
	))
	if err == sql.ErrNoRows {
		return nil, errs.E(errs.KindNotFound, "getClaim", id, "claim not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get claim: %w", err)
	}

	return record, nil
}

// ExistsByRunID reports whether a claim already exists for the run.
func (r *ClaimRepository) ExistsByRunID(ctx context.Context, runID string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM claims WHERE run_id = ?", runID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check run claim: %w", err)
	}
	return count > 0, nil
}

// List retrieves claims matching the given filters, oldest first.
func (r *ClaimRepository) List(ctx context.Context, filters secondary.ClaimFilters) ([]*secondary.ClaimRecord, error) {
	query := `SELECT id, run_id, claimant, agent_id, reason_code, evidence_hash, status, amount, created_at, resolved_at FROM claims WHERE 1=1`
	args := []any{}

	if filters.AgentID != "" {
		query += " AND agent_id = ?"
		args = append(args, filters.AgentID)
	}

	if filters.Status != "" {
		query += " AND status = ?"
		args = append(args, filters.Status)
	}

	query += " ORDER BY created_at ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list claims: %w", err)
	}
	defer rows.Close()

	var claims []*secondary.ClaimRecord
	for rows.Next() {
		record, err := r.scanOne(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan claim: %w", err)
		}
		claims = append(claims, record)
	}

	return claims, nil
}

// UpdateStatus sets the claim status. When resolved is true the resolved_at
// timestamp is set; when false it is cleared (settlement rollback).
func (r *ClaimRepository) UpdateStatus(ctx context.Context, id, status string, resolved bool) error {
	var query string
	if resolved {
		query = "UPDATE claims SET status = ?, resolved_at = CURRENT_TIMESTAMP WHERE id = ?"
	} else {
		query = "UPDATE claims SET status = ?, resolved_at = NULL WHERE id = ?"
	}

	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update claim status: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return errs.E(errs.KindNotFound, "updateClaim", id, "claim not found")
	}

	return nil
}

// GetNextID returns the next available claim ID.
func (r *ClaimRepository) GetNextID(ctx context.Context) (string, error) {
	var maxID int
	prefixLen := len("CLAIM-") + 1
	err := r.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COALESCE(MAX(CAST(SUBSTR(id, %d) AS INTEGER)), 0) FROM claims", prefixLen),
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to get next claim ID: %w", err)
	}

	return fmt.Sprintf("CLAIM-%03d", maxID+1), nil
}

// GetCounter returns the agent's daily submission counter, zero-valued if
// the agent has never submitted.
func (r *ClaimRepository) GetCounter(ctx context.Context, agentID string) (*secondary.CounterRecord, error) {
	record := &secondary.CounterRecord{AgentID: agentID}
	err := r.db.QueryRowContext(ctx,
		"SELECT day, count FROM claim_counters WHERE agent_id = ?",
		agentID,
	).Scan(&record.Day, &record.Count)

	if err == sql.ErrNoRows {
		return record, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get claim counter: %w", err)
	}

	return record, nil
}

// PutCounter writes the agent's daily submission counter.
func (r *ClaimRepository) PutCounter(ctx context.Context, counter *secondary.CounterRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO claim_counters (agent_id, day, count) VALUES (?, ?, ?)
		 ON CONFLICT(agent_id) DO UPDATE SET day = excluded.day, count = excluded.count`,
		counter.AgentID, counter.Day, counter.Count,
	)
	if err != nil {
		return fmt.Errorf("failed to put claim counter: %w", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *ClaimRepository) scanOne(row rowScanner) (*secondary.ClaimRecord, error) {
	var (
		evidenceHash sql.NullString
		createdAt    time.Time
		resolvedAt   sql.NullTime
	)

	record := &secondary.ClaimRecord{}
	err := row.Scan(&record.ID, &record.RunID, &record.Claimant, &record.AgentID, &record.ReasonCode, &evidenceHash, &record.Status, &record.Amount, &createdAt, &resolvedAt)
	if err != nil {
		return nil, err
	}
	record.EvidenceHash = evidenceHash.String
	record.CreatedAt = createdAt.Format(time.RFC3339)
	if resolvedAt.Valid {
		record.ResolvedAt = resolvedAt.Time.Format(time.RFC3339)
	}

	return record, nil
}

// Ensure ClaimRepository implements the interface
var _ secondary.ClaimRepository = (*ClaimRepository)(nil)
