package primary

import "context"

// ClaimService defines the primary port for claim lifecycle operations.
type ClaimService interface {
	// SubmitClaim files a claim against an agent run. Any caller may submit;
	// the caller becomes the claimant.
	SubmitClaim(ctx context.Context, req SubmitClaimRequest) (*Claim, error)

	// Verify records the resolver's decision on a submitted claim. Resolver only.
	Verify(ctx context.Context, claimID string, approved bool) error

	// Settle slashes the operator's collateral and pays the claimant for an
	// approved claim. Resolver only.
	Settle(ctx context.Context, claimID string) error

	// GetClaim retrieves a claim by ID.
	GetClaim(ctx context.Context, claimID string) (*Claim, error)

	// ListClaims lists claims with optional filters.
	ListClaims(ctx context.Context, filters ClaimFilters) ([]*Claim, error)
}

// SubmitClaimRequest carries the inputs of a claim submission. The amount is
// fixed by the pool; callers do not choose it.
type SubmitClaimRequest struct {
	RunID        string
	AgentID      string
	ReasonCode   string
	EvidenceHash string
}

// Claim represents a claim at the port boundary.
type Claim struct {
	ID           string
	RunID        string
	Claimant     string
	AgentID      string
	ReasonCode   string
	EvidenceHash string
	Status       string
	Amount       int64
	CreatedAt    string
	ResolvedAt   string // empty until terminal
}

// ClaimFilters contains filter options for listing claims.
type ClaimFilters struct {
	AgentID string
	Status  string
}
