package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/example/agentbond/internal/errs"
	"github.com/example/agentbond/internal/ports/secondary"
)

// Ensure the mocks implement their interfaces
var _ secondary.AgentRepository = (*mockAgentRepository)(nil)
var _ secondary.StakeRepository = (*mockStakeRepository)(nil)
var _ secondary.UnstakeRepository = (*mockUnstakeRepository)(nil)
var _ secondary.ClaimRepository = (*mockClaimRepository)(nil)
var _ secondary.FundGateway = (*mockTreasury)(nil)
var _ secondary.AuditLog = (*mockAuditLog)(nil)

// mockAgentRepository implements secondary.AgentRepository for testing.
type mockAgentRepository struct {
	agents map[string]*secondary.AgentRecord
	nextID int
}

func newMockAgentRepository() *mockAgentRepository {
	return &mockAgentRepository{
		agents: make(map[string]*secondary.AgentRecord),
		nextID: 1,
	}
}

func (m *mockAgentRepository) Create(ctx context.Context, agent *secondary.AgentRecord) error {
	m.agents[agent.ID] = agent
	return nil
}

func (m *mockAgentRepository) GetByID(ctx context.Context, id string) (*secondary.AgentRecord, error) {
	if a, ok := m.agents[id]; ok {
		return a, nil
	}
	return nil, errs.E(errs.KindNotFound, "getAgent", id, "agent not found")
}

func (m *mockAgentRepository) List(ctx context.Context) ([]*secondary.AgentRecord, error) {
	var result []*secondary.AgentRecord
	for _, a := range m.agents {
		result = append(result, a)
	}
	return result, nil
}

func (m *mockAgentRepository) UpdateStatus(ctx context.Context, id, status string) error {
	if a, ok := m.agents[id]; ok {
		a.Status = status
		return nil
	}
	return errs.E(errs.KindNotFound, "setStatus", id, "agent not found")
}

func (m *mockAgentRepository) UpdateScore(ctx context.Context, id string, trustScore, totalRuns, violations int64) error {
	if a, ok := m.agents[id]; ok {
		a.TrustScore = trustScore
		a.TotalRuns = totalRuns
		a.Violations = violations
		return nil
	}
	return errs.E(errs.KindNotFound, "updateScore", id, "agent not found")
}

func (m *mockAgentRepository) GetNextID(ctx context.Context) (string, error) {
	id := m.nextID
	m.nextID++
	return fmt.Sprintf("AGENT-%03d", id), nil
}

// mockStakeRepository implements secondary.StakeRepository for testing.
// upsertErr forces write failures.
type mockStakeRepository struct {
	stakes map[string]*secondary.StakeRecord

	upsertErr error
}

func newMockStakeRepository() *mockStakeRepository {
	return &mockStakeRepository{stakes: make(map[string]*secondary.StakeRecord)}
}

func (m *mockStakeRepository) Get(ctx context.Context, agentID string) (*secondary.StakeRecord, error) {
	if s, ok := m.stakes[agentID]; ok {
		copied := *s
		return &copied, nil
	}
	return &secondary.StakeRecord{AgentID: agentID}, nil
}

func (m *mockStakeRepository) Upsert(ctx context.Context, stake *secondary.StakeRecord) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	copied := *stake
	m.stakes[stake.AgentID] = &copied
	return nil
}

// mockUnstakeRepository implements secondary.UnstakeRepository for testing.
type mockUnstakeRepository struct {
	requests map[string]*secondary.UnstakeRecord
	order    []string
	nextID   int
}

func newMockUnstakeRepository() *mockUnstakeRepository {
	return &mockUnstakeRepository{
		requests: make(map[string]*secondary.UnstakeRecord),
		nextID:   1,
	}
}

func (m *mockUnstakeRepository) Create(ctx context.Context, req *secondary.UnstakeRecord) error {
	m.requests[req.ID] = req
	m.order = append(m.order, req.ID)
	return nil
}

func (m *mockUnstakeRepository) GetByID(ctx context.Context, id string) (*secondary.UnstakeRecord, error) {
	if r, ok := m.requests[id]; ok {
		copied := *r
		return &copied, nil
	}
	return nil, errs.E(errs.KindNotFound, "getUnstakeRequest", id, "unstake request not found")
}

func (m *mockUnstakeRepository) List(ctx context.Context, agentID string) ([]*secondary.UnstakeRecord, error) {
	var result []*secondary.UnstakeRecord
	for _, id := range m.order {
		if m.requests[id].AgentID == agentID {
			result = append(result, m.requests[id])
		}
	}
	return result, nil
}

func (m *mockUnstakeRepository) MarkExecuted(ctx context.Context, id string) error {
	r, ok := m.requests[id]
	if !ok || r.Executed {
		return errs.E(errs.KindState, "finalizeUnstake", id, "unstake request missing or already executed")
	}
	r.Executed = true
	return nil
}

func (m *mockUnstakeRepository) GetNextID(ctx context.Context) (string, error) {
	id := m.nextID
	m.nextID++
	return fmt.Sprintf("REQ-%03d", id), nil
}

// mockClaimRepository implements secondary.ClaimRepository for testing.
type mockClaimRepository struct {
	claims   map[string]*secondary.ClaimRecord
	order    []string
	counters map[string]*secondary.CounterRecord
	nextID   int

	createErr     error
	putCounterErr error
}

func newMockClaimRepository() *mockClaimRepository {
	return &mockClaimRepository{
		claims:   make(map[string]*secondary.ClaimRecord),
		counters: make(map[string]*secondary.CounterRecord),
		nextID:   1,
	}
}

func (m *mockClaimRepository) Create(ctx context.Context, claim *secondary.ClaimRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.claims[claim.ID] = claim
	m.order = append(m.order, claim.ID)
	return nil
}

func (m *mockClaimRepository) GetByID(ctx context.Context, id string) (*secondary.ClaimRecord, error) {
	if c, ok := m.claims[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, errs.E(errs.KindNotFound, "getClaim", id, "claim not found")
}

func (m *mockClaimRepository) ExistsByRunID(ctx context.Context, runID string) (bool, error) {
	for _, c := range m.claims {
		if c.RunID == runID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockClaimRepository) List(ctx context.Context, filters secondary.ClaimFilters) ([]*secondary.ClaimRecord, error) {
	var result []*secondary.ClaimRecord
	for _, id := range m.order {
		c := m.claims[id]
		if filters.AgentID != "" && c.AgentID != filters.AgentID {
			continue
		}
		if filters.Status != "" && c.Status != filters.Status {
			continue
		}
		result = append(result, c)
	}
	return result, nil
}

func (m *mockClaimRepository) UpdateStatus(ctx context.Context, id, status string, resolved bool) error {
	c, ok := m.claims[id]
	if !ok {
		return errs.E(errs.KindNotFound, "updateClaim", id, "claim not found")
	}
	c.Status = status
	if resolved {
		c.ResolvedAt = time.Now().UTC().Format(time.RFC3339)
	} else {
		c.ResolvedAt = ""
	}
	return nil
}

func (m *mockClaimRepository) GetNextID(ctx context.Context) (string, error) {
	id := m.nextID
	m.nextID++
	return fmt.Sprintf("CLAIM-%03d", id), nil
}

func (m *mockClaimRepository) GetCounter(ctx context.Context, agentID string) (*secondary.CounterRecord, error) {
	if c, ok := m.counters[agentID]; ok {
		copied := *c
		return &copied, nil
	}
	return &secondary.CounterRecord{AgentID: agentID}, nil
}

func (m *mockClaimRepository) PutCounter(ctx context.Context, counter *secondary.CounterRecord) error {
	if m.putCounterErr != nil {
		return m.putCounterErr
	}
	copied := *counter
	m.counters[counter.AgentID] = &copied
	return nil
}

// mockTreasury implements secondary.FundGateway for testing. Transfers check
// the source balance like the real treasury; transferErr forces a failure.
type mockTreasury struct {
	balances map[string]int64

	depositErr  error
	transferErr error
}

func newMockTreasury() *mockTreasury {
	return &mockTreasury{balances: make(map[string]int64)}
}

func (m *mockTreasury) Deposit(ctx context.Context, account string, amount int64) error {
	if m.depositErr != nil {
		return m.depositErr
	}
	m.balances[account] += amount
	return nil
}

func (m *mockTreasury) Transfer(ctx context.Context, from, to string, amount int64) error {
	if m.transferErr != nil {
		return m.transferErr
	}
	if m.balances[from] < amount {
		return errs.E(errs.KindTransfer, "transfer", from, "account balance %d cannot cover transfer %d", m.balances[from], amount)
	}
	m.balances[from] -= amount
	m.balances[to] += amount
	return nil
}

func (m *mockTreasury) Balance(ctx context.Context, account string) (int64, error) {
	return m.balances[account], nil
}

// mockAuditLog implements secondary.AuditLog for testing.
type mockAuditLog struct {
	events []*secondary.AuditEvent
}

func newMockAuditLog() *mockAuditLog {
	return &mockAuditLog{}
}

func (m *mockAuditLog) Append(ctx context.Context, event *secondary.AuditEvent) error {
	event.Seq = int64(len(m.events) + 1)
	m.events = append(m.events, event)
	return nil
}

func (m *mockAuditLog) List(ctx context.Context, limit int) ([]*secondary.AuditEvent, error) {
	var result []*secondary.AuditEvent
	for i := len(m.events) - 1; i >= 0; i-- {
		if limit > 0 && len(result) == limit {
			break
		}
		result = append(result, m.events[i])
	}
	return result, nil
}

func (m *mockAuditLog) kinds() []string {
	var kinds []string
	for _, e := range m.events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

// testResolver is the resolver address used across app tests.
const testResolver = "0xresolver"

// fixture assembles the full service stack on mocks with a controllable clock.
type fixture struct {
	identity *IdentityServiceImpl
	ledger   *LedgerServiceImpl
	claims   *ClaimServiceImpl

	agentRepo   *mockAgentRepository
	stakeRepo   *mockStakeRepository
	unstakeRepo *mockUnstakeRepository
	claimRepo   *mockClaimRepository
	treasury    *mockTreasury
	audit       *mockAuditLog

	mu    *sync.Mutex
	clock time.Time
}

func newFixture() *fixture {
	f := &fixture{
		agentRepo:   newMockAgentRepository(),
		stakeRepo:   newMockStakeRepository(),
		unstakeRepo: newMockUnstakeRepository(),
		claimRepo:   newMockClaimRepository(),
		treasury:    newMockTreasury(),
		audit:       newMockAuditLog(),
		clock:       time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	f.mu = &sync.Mutex{}
	f.identity = NewIdentityService(f.agentRepo, f.audit, testResolver, f.mu)
	f.ledger = NewLedgerService(f.stakeRepo, f.unstakeRepo, f.identity, f.treasury, f.audit, f.mu)
	f.claims = NewClaimService(f.claimRepo, f.identity, f.ledger, f.audit, testResolver, f.mu)

	now := func() time.Time { return f.clock }
	f.ledger.SetClock(now)
	f.claims.SetClock(now)

	return f
}

func (f *fixture) advance(d time.Duration) {
	f.clock = f.clock.Add(d)
}

// registerAgent seeds an active agent owned by operator and returns its ID.
func (f *fixture) registerAgent(operator string) string {
	id, _ := f.agentRepo.GetNextID(context.Background())
	f.agentRepo.agents[id] = &secondary.AgentRecord{
		ID:       id,
		Operator: operator,
		Status:   "active",
	}
	return id
}

// stake seeds a funded position and the matching pool balance.
func (f *fixture) stake(agentID string, staked, reserved int64) {
	f.stakeRepo.stakes[agentID] = &secondary.StakeRecord{
		AgentID:  agentID,
		Staked:   staked,
		Reserved: reserved,
	}
	f.treasury.balances[secondary.PoolAccount] += staked
}
