package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/example/agentbond/internal/core/collateral"
	"github.com/example/agentbond/internal/ctxutil"
	"github.com/example/agentbond/internal/errs"
	"github.com/example/agentbond/internal/ports/primary"
	"github.com/example/agentbond/internal/ports/secondary"
)

// LedgerServiceImpl implements the LedgerService interface and the
// CollateralOps capability. The capability methods assume the caller already
// holds the serializer; they are handed out only to the claim coordinator by
// wiring and never reachable from a public entry point.
type LedgerServiceImpl struct {
	stakeRepo   secondary.StakeRepository
	unstakeRepo secondary.UnstakeRepository
	identity    secondary.IdentityAuthority
	treasury    secondary.FundGateway
	audit       secondary.AuditLog

	mu           *sync.Mutex
	transferring bool
	now          func() time.Time
}

// NewLedgerService creates a new LedgerService with injected dependencies.
// mu is the shared serializer for all ledger and claim state changes.
func NewLedgerService(
	stakeRepo secondary.StakeRepository,
	unstakeRepo secondary.UnstakeRepository,
	identity secondary.IdentityAuthority,
	treasury secondary.FundGateway,
	audit secondary.AuditLog,
	mu *sync.Mutex,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		stakeRepo:   stakeRepo,
		unstakeRepo: unstakeRepo,
		identity:    identity,
		treasury:    treasury,
		audit:       audit,
		mu:          mu,
		now:         time.Now,
	}
}

// SetClock overrides the time source. Test hook.
func (s *LedgerServiceImpl) SetClock(now func() time.Time) {
	s.now = now
}

// Stake adds amount to the agent's collateral and deposits the funds into
// the shared pool. Operator only.
func (s *LedgerServiceImpl) Stake(ctx context.Context, agentID string, amount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if amount <= 0 {
		return errs.E(errs.KindInvalidAmount, "stake", agentID, "stake amount must be positive")
	}

	actor := ctxutil.ActorFromContext(ctx)
	operator, err := s.identity.ResolveOperator(ctx, agentID)
	if err != nil {
		return err
	}
	if actor != operator {
		return errs.E(errs.KindAuthorization, "stake", agentID, "caller %s is not the agent operator", actor)
	}

	funds, err := s.funds(ctx, agentID)
	if err != nil {
		return err
	}

	updated := collateral.ApplyStake(funds, amount)
	if err := s.putFunds(ctx, agentID, updated); err != nil {
		return err
	}

	// Compensate the ledger entry if the pool deposit fails: the position
	// must never show collateral the pool does not hold.
	if err := s.treasury.Deposit(ctx, secondary.PoolAccount, amount); err != nil {
		if revertErr := s.putFunds(ctx, agentID, funds); revertErr != nil {
			slog.Error("stake rollback failed after pool deposit failure", "agent_id", agentID, "amount", amount, "error", revertErr)
			return errs.E(errs.KindTransfer, "stake", agentID, "pool deposit failed and ledger rollback failed: %v (rollback: %v)", err, revertErr)
		}
		slog.Warn("pool deposit failed, stake rolled back", "agent_id", agentID, "amount", amount, "error", err)
		return errs.E(errs.KindTransfer, "stake", agentID, "pool deposit failed: %v", err)
	}

	s.appendAudit(ctx, &secondary.AuditEvent{
		Kind:    secondary.EventStaked,
		AgentID: agentID,
		Actor:   actor,
		Amount:  amount,
	})

	return nil
}

// RequestUnstake removes amount from the active pool immediately and opens a
// cooldown-gated withdrawal request. Operator only.
func (s *LedgerServiceImpl) RequestUnstake(ctx context.Context, agentID string, amount int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if amount <= 0 {
		return "", errs.E(errs.KindInvalidAmount, "requestUnstake", agentID, "unstake amount must be positive")
	}

	actor := ctxutil.ActorFromContext(ctx)
	operator, err := s.identity.ResolveOperator(ctx, agentID)
	if err != nil {
		return "", err
	}
	if actor != operator {
		return "", errs.E(errs.KindAuthorization, "requestUnstake", agentID, "caller %s is not the agent operator", actor)
	}

	funds, err := s.funds(ctx, agentID)
	if err != nil {
		return "", err
	}

	if guard := collateral.CanWithdraw(funds, amount); !guard.Allowed {
		return "", errs.E(errs.KindInsufficientFunds, "requestUnstake", agentID, "%s", guard.Reason)
	}

	// The amount leaves the active pool now; only the time lock stands
	// between it and the requester.
	if err := s.putFunds(ctx, agentID, collateral.ApplyWithdraw(funds, amount)); err != nil {
		return "", err
	}

	requestID, err := s.unstakeRepo.GetNextID(ctx)
	if err != nil {
		return "", err
	}

	record := &secondary.UnstakeRecord{
		ID:        requestID,
		AgentID:   agentID,
		Requester: actor,
		Amount:    amount,
		UnlockAt:  s.now().Add(collateral.UnstakeCooldown),
	}
	if err := s.unstakeRepo.Create(ctx, record); err != nil {
		return "", err
	}

	s.appendAudit(ctx, &secondary.AuditEvent{
		Kind:      secondary.EventUnstakeRequested,
		AgentID:   agentID,
		RequestID: requestID,
		Actor:     actor,
		Amount:    amount,
	})

	return requestID, nil
}

// FinalizeUnstake executes a matured withdrawal request, paying the
// requester from the pool. Requester only.
//
// The executed flag is committed before the pool transfer. If the transfer
// then fails, the request stays executed and the funds stay in the pool;
// recovering a stuck request is an operational task, not a retry.
func (s *LedgerServiceImpl) FinalizeUnstake(ctx context.Context, requestID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.unstakeRepo.GetByID(ctx, requestID)
	if err != nil {
		return err
	}

	actor := ctxutil.ActorFromContext(ctx)
	if actor != record.Requester {
		return errs.E(errs.KindAuthorization, "finalizeUnstake", requestID, "caller %s is not the requester", actor)
	}

	if record.Executed {
		return errs.E(errs.KindState, "finalizeUnstake", requestID, "unstake request already executed")
	}

	if now := s.now(); now.Before(record.UnlockAt) {
		return errs.E(errs.KindState, "finalizeUnstake", requestID, "cooldown active until %s", record.UnlockAt.UTC().Format(time.RFC3339))
	}

	if err := s.unstakeRepo.MarkExecuted(ctx, requestID); err != nil {
		return err
	}

	if err := s.transfer(ctx, "finalizeUnstake", requestID, record.Requester, record.Amount); err != nil {
		slog.Warn("unstake payout failed after request was marked executed", "request_id", requestID, "requester", record.Requester, "amount", record.Amount, "error", err)
		return err
	}

	s.appendAudit(ctx, &secondary.AuditEvent{
		Kind:      secondary.EventUnstakeFinalized,
		AgentID:   record.AgentID,
		RequestID: requestID,
		Actor:     actor,
		Recipient: record.Requester,
		Amount:    record.Amount,
	})

	return nil
}

// GetCollateralHealth reports the agent's position.
func (s *LedgerServiceImpl) GetCollateralHealth(ctx context.Context, agentID string) (*primary.CollateralHealth, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.identity.Status(ctx, agentID); err != nil {
		return nil, err
	}

	funds, err := s.funds(ctx, agentID)
	if err != nil {
		return nil, err
	}

	return &primary.CollateralHealth{
		AgentID:  agentID,
		Staked:   funds.Staked,
		Reserved: funds.Reserved,
		Free:     funds.Free(),
		RatioBps: funds.RatioBps(),
	}, nil
}

// ListUnstakeRequests lists withdrawal requests for an agent.
func (s *LedgerServiceImpl) ListUnstakeRequests(ctx context.Context, agentID string) ([]*primary.UnstakeRequest, error) {
	records, err := s.unstakeRepo.List(ctx, agentID)
	if err != nil {
		return nil, err
	}

	requests := make([]*primary.UnstakeRequest, len(records))
	for i, r := range records {
		requests[i] = &primary.UnstakeRequest{
			ID:        r.ID,
			AgentID:   r.AgentID,
			Requester: r.Requester,
			Amount:    r.Amount,
			UnlockAt:  r.UnlockAt.UTC().Format(time.RFC3339),
			Executed:  r.Executed,
			CreatedAt: r.CreatedAt,
		}
	}
	return requests, nil
}

// CollateralOps capability. Callers hold the serializer.

// Funds returns the agent's current position for settlement snapshots.
func (s *LedgerServiceImpl) Funds(ctx context.Context, agentID string) (staked, reserved int64, err error) {
	funds, err := s.funds(ctx, agentID)
	if err != nil {
		return 0, 0, err
	}
	return funds.Staked, funds.Reserved, nil
}

// Reserve earmarks amount of the agent's free collateral.
func (s *LedgerServiceImpl) Reserve(ctx context.Context, agentID string, amount int64) error {
	funds, err := s.funds(ctx, agentID)
	if err != nil {
		return err
	}

	if guard := collateral.CanReserve(funds, amount); !guard.Allowed {
		return errs.E(errs.KindInsufficientFunds, "reserve", agentID, "%s", guard.Reason)
	}

	return s.putFunds(ctx, agentID, collateral.ApplyReserve(funds, amount))
}

// Release frees amount of the agent's reservation, clamped to zero.
func (s *LedgerServiceImpl) Release(ctx context.Context, agentID string, amount int64) error {
	funds, err := s.funds(ctx, agentID)
	if err != nil {
		return err
	}
	return s.putFunds(ctx, agentID, collateral.ApplyRelease(funds, amount))
}

// Slash removes amount from the agent's stake and matching reservation.
// A slash that empties the stake pauses the agent. The caller appends the
// audit record once the enclosing settlement is known to stick; a slash that
// gets rolled back must leave no trace in the history.
func (s *LedgerServiceImpl) Slash(ctx context.Context, agentID string, amount int64, claimID string) (autoPaused bool, err error) {
	funds, err := s.funds(ctx, agentID)
	if err != nil {
		return false, err
	}

	if guard := collateral.CanSlash(funds, amount); !guard.Allowed {
		return false, errs.E(errs.KindInsufficientFunds, "slash", agentID, "%s", guard.Reason)
	}

	updated := collateral.ApplySlash(funds, amount)
	if err := s.putFunds(ctx, agentID, updated); err != nil {
		return false, err
	}

	if updated.Staked == 0 {
		if err := s.identity.Pause(ctx, agentID); err != nil {
			return false, err
		}
		autoPaused = true
	}

	return autoPaused, nil
}

// Payout transfers amount from the shared pool to recipient. Audited by the
// caller, like Slash.
func (s *LedgerServiceImpl) Payout(ctx context.Context, recipient string, amount int64, claimID string) error {
	return s.transfer(ctx, "payout", claimID, recipient, amount)
}

// Restore rewinds the agent's position to a pre-settlement snapshot,
// reactivating the agent when the slash had auto-paused it.
func (s *LedgerServiceImpl) Restore(ctx context.Context, agentID string, staked, reserved int64, reactivate bool) error {
	if err := s.putFunds(ctx, agentID, collateral.Funds{Staked: staked, Reserved: reserved}); err != nil {
		return err
	}
	if reactivate {
		return s.identity.Reactivate(ctx, agentID)
	}
	return nil
}

// Helper methods

func (s *LedgerServiceImpl) funds(ctx context.Context, agentID string) (collateral.Funds, error) {
	record, err := s.stakeRepo.Get(ctx, agentID)
	if err != nil {
		return collateral.Funds{}, err
	}
	return collateral.Funds{Staked: record.Staked, Reserved: record.Reserved}, nil
}

func (s *LedgerServiceImpl) putFunds(ctx context.Context, agentID string, f collateral.Funds) error {
	return s.stakeRepo.Upsert(ctx, &secondary.StakeRecord{
		AgentID:  agentID,
		Staked:   f.Staked,
		Reserved: f.Reserved,
	})
}

// transfer moves pool funds out with the re-entrancy latch held. A transfer
// started while another is in flight is refused outright.
func (s *LedgerServiceImpl) transfer(ctx context.Context, op, entityID, to string, amount int64) error {
	if s.transferring {
		return errs.E(errs.KindState, op, entityID, "fund transfer already in progress")
	}
	s.transferring = true
	defer func() { s.transferring = false }()

	return s.treasury.Transfer(ctx, secondary.PoolAccount, to, amount)
}

func (s *LedgerServiceImpl) appendAudit(ctx context.Context, event *secondary.AuditEvent) {
	_ = s.audit.Append(ctx, event)
}

// Ensure LedgerServiceImpl implements both ports
var _ primary.LedgerService = (*LedgerServiceImpl)(nil)
var _ secondary.CollateralOps = (*LedgerServiceImpl)(nil)
