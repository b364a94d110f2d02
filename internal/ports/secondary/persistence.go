// Package secondary defines the driven ports: repositories, gateways, and
// capabilities the application services depend on.
package secondary

import (
	"context"
	"time"
)

// AgentRecord is the persistence representation of a registered agent.
type AgentRecord struct {
	ID          string
	Operator    string
	MetadataURI string
	Status      string // 'active', 'paused', 'retired'
	TrustScore  int64
	TotalRuns   int64
	Violations  int64
	CreatedAt   string
}

// AgentRepository persists agent identity records.
type AgentRepository interface {
	Create(ctx context.Context, agent *AgentRecord) error
	GetByID(ctx context.Context, id string) (*AgentRecord, error)
	List(ctx context.Context) ([]*AgentRecord, error)
	UpdateStatus(ctx context.Context, id, status string) error
	UpdateScore(ctx context.Context, id string, trustScore, totalRuns, violations int64) error
	GetNextID(ctx context.Context) (string, error)
}

// StakeRecord is an agent's collateral position. One per agent, created
// lazily on first stake, never deleted.
type StakeRecord struct {
	AgentID  string
	Staked   int64
	Reserved int64
}

// StakeRepository persists per-agent collateral positions.
type StakeRepository interface {
	// Get returns the agent's position, or a zero-valued record if the agent
	// has never staked.
	Get(ctx context.Context, agentID string) (*StakeRecord, error)
	Upsert(ctx context.Context, stake *StakeRecord) error
}

// UnstakeRecord is a time-locked withdrawal request. Immutable once
// executed; never deleted (audit record).
type UnstakeRecord struct {
	ID        string
	AgentID   string
	Requester string
	Amount    int64
	UnlockAt  time.Time
	Executed  bool
	CreatedAt string
}

// UnstakeRepository persists withdrawal requests.
type UnstakeRepository interface {
	Create(ctx context.Context, req *UnstakeRecord) error
	GetByID(ctx context.Context, id string) (*UnstakeRecord, error)
	List(ctx context.Context, agentID string) ([]*UnstakeRecord, error)
	MarkExecuted(ctx context.Context, id string) error
	GetNextID(ctx context.Context) (string, error)
}

// ClaimRecord is the persistence representation of a claim.
type ClaimRecord struct {
	ID           string
	RunID        string
	Claimant     string
	AgentID      string
	ReasonCode   string
	EvidenceHash string
	Status       string // 'submitted', 'approved', 'rejected', 'paid'
	Amount       int64
	CreatedAt    string
	ResolvedAt   string // empty until terminal
}

// ClaimFilters contains filter options for listing claims.
type ClaimFilters struct {
	AgentID string
	Status  string
}

// CounterRecord is an agent's daily submission counter.
type CounterRecord struct {
	AgentID string
	Day     string
	Count   int
}

// ClaimRepository persists claims and the per-agent daily counters.
type ClaimRepository interface {
	Create(ctx context.Context, claim *ClaimRecord) error
	GetByID(ctx context.Context, id string) (*ClaimRecord, error)
	ExistsByRunID(ctx context.Context, runID string) (bool, error)
	List(ctx context.Context, filters ClaimFilters) ([]*ClaimRecord, error)
	// UpdateStatus sets the claim status. When resolved is true the
	// resolved_at timestamp is set; when false it is cleared.
	UpdateStatus(ctx context.Context, id, status string, resolved bool) error
	GetNextID(ctx context.Context) (string, error)

	GetCounter(ctx context.Context, agentID string) (*CounterRecord, error)
	PutCounter(ctx context.Context, counter *CounterRecord) error
}

// PoolAccount is the shared pool account holding all staked collateral.
// Payouts and finalized withdrawals draw from this single balance, which is
// shared across agents.
const PoolAccount = "POOL"

// FundGateway moves real funds in and out of the shared pool. The pool's
// balance is shared across agents: a transfer can fail on pool liquidity
// even when the paying agent's stake was sufficient on paper.
type FundGateway interface {
	Deposit(ctx context.Context, account string, amount int64) error
	Transfer(ctx context.Context, from, to string, amount int64) error
	Balance(ctx context.Context, account string) (int64, error)
}

// AuditEvent is one immutable entry in the ordered audit history.
type AuditEvent struct {
	Seq       int64 // assigned by the log, strictly increasing
	ID        string
	Kind      string
	AgentID   string
	ClaimID   string
	RequestID string
	Actor     string
	Recipient string
	Amount    int64
	Detail    string
	CreatedAt string
}

// Audit event kinds.
const (
	EventStaked           = "Staked"
	EventUnstakeRequested = "UnstakeRequested"
	EventUnstakeFinalized = "UnstakeFinalized"
	EventSlashExecuted    = "SlashExecuted"
	EventPayoutSent       = "PayoutSent"
	EventClaimSubmitted   = "ClaimSubmitted"
	EventClaimResolved    = "ClaimResolved"
	EventClaimPaid        = "ClaimPaid"
	EventAgentRegistered  = "AgentRegistered"
	EventStatusChanged    = "StatusChanged"
	EventScoreUpdated     = "ScoreUpdated"
)

// AuditLog appends to and reads the immutable ordered audit history.
type AuditLog interface {
	Append(ctx context.Context, event *AuditEvent) error
	List(ctx context.Context, limit int) ([]*AuditEvent, error)
}
