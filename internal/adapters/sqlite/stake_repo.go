package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/agentbond/internal/ports/secondary"
)

// StakeRepository implements secondary.StakeRepository with SQLite.
type StakeRepository struct {
	db *sql.DB
}

// NewStakeRepository creates a new SQLite stake repository.
func NewStakeRepository(db *sql.DB) *StakeRepository {
	return &StakeRepository{db: db}
}

// Get returns the agent's collateral position. Agents that have never staked
// get a zero-valued record; positions are created lazily on first stake.
func (r *StakeRepository) Get(ctx context.Context, agentID string) (*secondary.StakeRecord, error) {
	record := &secondary.StakeRecord{AgentID: agentID}
	err := r.db.QueryRowContext(ctx,
		"SELECT staked, reserved FROM stakes WHERE agent_id = ?",
		agentID,
	).Scan(&record.Staked, &record.Reserved)

	if err == sql.ErrNoRows {
		return record, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stake: %w", err)
	}

	return record, nil
}

// Upsert writes the agent's collateral position.
func (r *StakeRepository) Upsert(ctx context.Context, stake *secondary.StakeRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO stakes (agent_id, staked, reserved) VALUES (?, ?, ?)
		 ON CONFLICT(agent_id) DO UPDATE SET staked = excluded.staked, reserved = excluded.reserved, updated_at = CURRENT_TIMESTAMP`,
		stake.AgentID, stake.Staked, stake.Reserved,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert stake: %w", err)
	}

	return nil
}

// Ensure StakeRepository implements the interface
var _ secondary.StakeRepository = (*StakeRepository)(nil)
