// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/agentbond/internal/errs"
	"github.com/example/agentbond/internal/ports/secondary"
)

// AgentRepository implements secondary.AgentRepository with SQLite.
type AgentRepository struct {
	db *sql.DB
}

// NewAgentRepository creates a new SQLite agent repository.
func NewAgentRepository(db *sql.DB) *AgentRepository {
	return &AgentRepository{db: db}
}

// Create persists a new agent record.
func (r *AgentRepository) Create(ctx context.Context, agent *secondary.AgentRecord) error {
	var metadataURI sql.NullString
	if agent.MetadataURI != "" {
		metadataURI = sql.NullString{String: agent.MetadataURI, Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO agents (id, operator, metadata_uri, status, trust_score, total_runs, violations) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		agent.ID,
		agent.Operator,
		metadataURI,
		agent.Status,
		agent.TrustScore,
		agent.TotalRuns,
		agent.Violations,
	)
	if err != nil {
		return fmt.Errorf("failed to create agent: %w", err)
	}

	return nil
}

// GetByID retrieves an agent by its ID.
func (r *AgentRepository) GetByID(ctx context.Context, id string) (*secondary.AgentRecord, error) {
	var (
		metadataURI sql.NullString
		createdAt   time.Time
	)

	record := &secondary.AgentRecord{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, operator, metadata_uri, status, trust_score, total_runs, violations, created_at FROM agents WHERE id = ?`,
		id,
	).Scan(&record.ID, &record.Operator, &metadataURI, &record.Status, &record.TrustScore, &record.TotalRuns, &record.Violations, &createdAt)

	if err == sql.ErrNoRows {
		return nil, errs.E(errs.KindNotFound, "getAgent", id, "agent not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get agent: %w", err)
	}
	record.MetadataURI = metadataURI.String
	record.CreatedAt = createdAt.Format(time.RFC3339)

	return record, nil
}

// List retrieves all agents ordered by creation time.
func (r *AgentRepository) List(ctx context.Context) ([]*secondary.AgentRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, operator, metadata_uri, status, trust_score, total_runs, violations, created_at FROM agents ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}
	defer rows.Close()

	var agents []*secondary.AgentRecord
	for rows.Next() {
		var (
			metadataURI sql.NullString
			createdAt   time.Time
		)

		record := &secondary.AgentRecord{}
		err := rows.Scan(&record.ID, &record.Operator, &metadataURI, &record.Status, &record.TrustScore, &record.TotalRuns, &record.Violations, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan agent: %w", err)
		}
		record.MetadataURI = metadataURI.String
		record.CreatedAt = createdAt.Format(time.RFC3339)

		agents = append(agents, record)
	}

	return agents, nil
}

// UpdateStatus updates the status of an agent.
func (r *AgentRepository) UpdateStatus(ctx context.Context, id, status string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE agents SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		status, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update agent status: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return errs.E(errs.KindNotFound, "setStatus", id, "agent not found")
	}

	return nil
}

// UpdateScore records reputation figures for an agent.
func (r *AgentRepository) UpdateScore(ctx context.Context, id string, trustScore, totalRuns, violations int64) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE agents SET trust_score = ?, total_runs = ?, violations = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		trustScore, totalRuns, violations, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update agent score: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return errs.E(errs.KindNotFound, "updateScore", id, "agent not found")
	}

	return nil
}

// GetNextID returns the next available agent ID.
func (r *AgentRepository) GetNextID(ctx context.Context) (string, error) {
	var maxID int
	prefixLen := len("AGENT-") + 1
	err := r.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COALESCE(MAX(CAST(SUBSTR(id, %d) AS INTEGER)), 0) FROM agents", prefixLen),
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to get next agent ID: %w", err)
	}

	return fmt.Sprintf("AGENT-%03d", maxID+1), nil
}

// Ensure AgentRepository implements the interface
var _ secondary.AgentRepository = (*AgentRepository)(nil)
