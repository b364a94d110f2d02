package primary

import "context"

// IdentityService defines the primary port for agent identity operations.
type IdentityService interface {
	// RegisterAgent registers a new agent owned by the caller.
	RegisterAgent(ctx context.Context, metadataURI string) (*Agent, error)

	// GetAgent retrieves an agent by ID.
	GetAgent(ctx context.Context, agentID string) (*Agent, error)

	// ListAgents lists all registered agents.
	ListAgents(ctx context.Context) ([]*Agent, error)

	// SetStatus changes the agent's status. Operator or resolver only.
	SetStatus(ctx context.Context, agentID, status string) error

	// UpdateScore records the agent's reputation figures. Resolver only.
	UpdateScore(ctx context.Context, agentID string, trustScore, totalRuns, violations int64) error
}

// Agent represents an agent identity at the port boundary.
type Agent struct {
	ID          string
	Operator    string
	MetadataURI string
	Status      string
	TrustScore  int64
	TotalRuns   int64
	Violations  int64
	CreatedAt   string
}

// Agent status constants
const (
	AgentStatusActive  = "active"
	AgentStatusPaused  = "paused"
	AgentStatusRetired = "retired"
)
