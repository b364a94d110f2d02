// Package primary defines the driving ports: the service interfaces the CLI
// and other entry points program against, plus their boundary structs.
package primary

import "context"

// LedgerService defines the primary port for collateral operations.
// The caller identity is read from the context (ctxutil.WithActor).
type LedgerService interface {
	// Stake adds amount to the agent's collateral. Operator only.
	Stake(ctx context.Context, agentID string, amount int64) error

	// RequestUnstake removes amount from the active pool immediately and
	// opens a cooldown-gated withdrawal request. Operator only.
	// Returns the request ID.
	RequestUnstake(ctx context.Context, agentID string, amount int64) (string, error)

	// FinalizeUnstake executes a matured withdrawal request. Requester only.
	FinalizeUnstake(ctx context.Context, requestID string) error

	// GetCollateralHealth reports the agent's position.
	GetCollateralHealth(ctx context.Context, agentID string) (*CollateralHealth, error)

	// ListUnstakeRequests lists withdrawal requests for an agent.
	ListUnstakeRequests(ctx context.Context, agentID string) ([]*UnstakeRequest, error)
}

// CollateralHealth is the read-only view of an agent's position.
type CollateralHealth struct {
	AgentID  string
	Staked   int64
	Reserved int64
	Free     int64
	RatioBps int64
}

// UnstakeRequest is a withdrawal request at the port boundary.
type UnstakeRequest struct {
	ID        string
	AgentID   string
	Requester string
	Amount    int64
	UnlockAt  string
	Executed  bool
	CreatedAt string
}
