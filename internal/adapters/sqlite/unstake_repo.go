package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/agentbond/internal/errs"
	"github.com/example/agentbond/internal/ports/secondary"
)

// UnstakeRepository implements secondary.UnstakeRepository with SQLite.
type UnstakeRepository struct {
	db *sql.DB
}

// NewUnstakeRepository creates a new SQLite unstake repository.
func NewUnstakeRepository(db *sql.DB) *UnstakeRepository {
	return &UnstakeRepository{db: db}
}

// Create persists a new withdrawal request.
func (r *UnstakeRepository) Create(ctx context.Context, req *secondary.UnstakeRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO unstake_requests (id, agent_id, requester, amount, unlock_at, executed) VALUES (?, ?, ?, ?, ?, 0)`,
		req.ID,
		req.AgentID,
		req.Requester,
		req.Amount,
		req.UnlockAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create unstake request: %w", err)
	}

	return nil
}

// GetByID retrieves a withdrawal request by its ID.
func (r *UnstakeRepository) GetByID(ctx context.Context, id string) (*secondary.UnstakeRecord, error) {
	var (
		executed  int
		createdAt time.Time
	)

	record := &secondary.UnstakeRecord{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, agent_id, requester, amount, unlock_at, executed, created_at FROM unstake_requests WHERE id = ?`,
		id,
	).Scan(&record.ID, &record.AgentID, &record.Requester, &record.Amount, &record.UnlockAt, &executed, &createdAt)

	if err == sql.ErrNoRows {
		return nil, errs.E(errs.KindNotFound, "getUnstakeRequest", id, "unstake request not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get unstake request: %w", err)
	}
	record.Executed = executed != 0
	record.CreatedAt = createdAt.Format(time.RFC3339)

	return record, nil
}

// List retrieves withdrawal requests for an agent, oldest first.
func (r *UnstakeRepository) List(ctx context.Context, agentID string) ([]*secondary.UnstakeRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, agent_id, requester, amount, unlock_at, executed, created_at FROM unstake_requests WHERE agent_id = ? ORDER BY created_at ASC`,
		agentID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list unstake requests: %w", err)
	}
	defer rows.Close()

	var requests []*secondary.UnstakeRecord
	for rows.Next() {
		var (
			executed  int
			createdAt time.Time
		)

		record := &secondary.UnstakeRecord{}
		err := rows.Scan(&record.ID, &record.AgentID, &record.Requester, &record.Amount, &record.UnlockAt, &executed, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan unstake request: %w", err)
		}
		record.Executed = executed != 0
		record.CreatedAt = createdAt.Format(time.RFC3339)

		requests = append(requests, record)
	}

	return requests, nil
}

// MarkExecuted flips the executed flag. The flag flips exactly once; a
// request already executed is reported as a state error.
func (r *UnstakeRepository) MarkExecuted(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE unstake_requests SET executed = 1 WHERE id = ? AND executed = 0",
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark unstake request executed: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return errs.E(errs.KindState, "finalizeUnstake", id, "unstake request missing or already executed")
	}

	return nil
}

// GetNextID returns the next available request ID. IDs are monotonically
// increasing; requests are never deleted.
func (r *UnstakeRepository) GetNextID(ctx context.Context) (string, error) {
	var maxID int
	prefixLen := len("REQ-") + 1
	err := r.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COALESCE(MAX(CAST(SUBSTR(id, %d) AS INTEGER)), 0) FROM unstake_requests", prefixLen),
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to get next request ID: %w", err)
	}

	return fmt.Sprintf("REQ-%03d", maxID+1), nil
}

// Ensure UnstakeRepository implements the interface
var _ secondary.UnstakeRepository = (*UnstakeRepository)(nil)
