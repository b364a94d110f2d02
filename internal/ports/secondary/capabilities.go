package secondary

import "context"

// IdentityAuthority is the capability boundary the ledger uses to verify
// operator identity and trigger auto-pause. The ledger never owns agent
// records; the authority is injected.
type IdentityAuthority interface {
	// ResolveOperator returns the operator address registered for the agent.
	ResolveOperator(ctx context.Context, agentID string) (string, error)

	// Status returns the agent's current status.
	Status(ctx context.Context, agentID string) (string, error)

	// Pause pauses the agent. Called by the ledger's auto-pause trigger when
	// a slash empties the stake.
	Pause(ctx context.Context, agentID string) error

	// Reactivate sets the agent back to active. Called when a settlement
	// rollback rewinds an auto-pause.
	Reactivate(ctx context.Context, agentID string) error
}

// CollateralOps is the privileged collateral capability handed solely to the
// claim coordinator by wiring. These operations are not public, and they
// assume the caller already holds the ledger serializer.
type CollateralOps interface {
	// Funds returns the agent's current position for settlement snapshots.
	Funds(ctx context.Context, agentID string) (staked, reserved int64, err error)

	// Reserve earmarks amount of the agent's free collateral.
	Reserve(ctx context.Context, agentID string, amount int64) error

	// Release frees amount of the agent's reservation, clamped to zero.
	Release(ctx context.Context, agentID string, amount int64) error

	// Slash removes amount from the agent's stake and matching reservation.
	// autoPaused reports whether the slash emptied the stake and paused the
	// agent.
	Slash(ctx context.Context, agentID string, amount int64, claimID string) (autoPaused bool, err error)

	// Payout transfers amount from the shared pool to recipient.
	Payout(ctx context.Context, recipient string, amount int64, claimID string) error

	// Restore rewinds the agent's position to a snapshot taken before a
	// failed settlement, reactivating the agent when the slash had
	// auto-paused it.
	Restore(ctx context.Context, agentID string, staked, reserved int64, reactivate bool) error
}
