package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	claimcore "github.com/example/agentbond/internal/core/claim"
	"github.com/example/agentbond/internal/core/collateral"
	"github.com/example/agentbond/internal/ctxutil"
	"github.com/example/agentbond/internal/errs"
	"github.com/example/agentbond/internal/ports/primary"
	"github.com/example/agentbond/internal/ports/secondary"
)

// ClaimServiceImpl implements the ClaimService interface. It is the only
// holder of the CollateralOps capability: reservations, slashes, and payouts
// happen exclusively through claim lifecycle transitions.
type ClaimServiceImpl struct {
	claimRepo secondary.ClaimRepository
	identity  secondary.IdentityAuthority
	ops       secondary.CollateralOps
	audit     secondary.AuditLog
	resolver  string

	mu  *sync.Mutex
	now func() time.Time
}

// NewClaimService creates a new ClaimService with injected dependencies.
// mu is the same serializer the ledger service locks.
func NewClaimService(
	claimRepo secondary.ClaimRepository,
	identity secondary.IdentityAuthority,
	ops secondary.CollateralOps,
	audit secondary.AuditLog,
	resolver string,
	mu *sync.Mutex,
) *ClaimServiceImpl {
	return &ClaimServiceImpl{
		claimRepo: claimRepo,
		identity:  identity,
		ops:       ops,
		audit:     audit,
		resolver:  resolver,
		mu:        mu,
		now:       time.Now,
	}
}

// SetClock overrides the time source. Test hook.
func (s *ClaimServiceImpl) SetClock(now func() time.Time) {
	s.now = now
}

// SubmitClaim files a claim against an agent run. The caller becomes the
// claimant; the claim amount is fixed by the pool. Accepting the claim
// reserves the amount against the agent's collateral immediately.
func (s *ClaimServiceImpl) SubmitClaim(ctx context.Context, req primary.SubmitClaimRequest) (*primary.Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	claimant := ctxutil.ActorFromContext(ctx)
	if claimant == "" {
		return nil, errs.E(errs.KindAuthorization, "submitClaim", req.RunID, "caller address not set")
	}

	if _, err := s.identity.Status(ctx, req.AgentID); err != nil {
		return nil, err
	}

	exists, err := s.claimRepo.ExistsByRunID(ctx, req.RunID)
	if err != nil {
		return nil, err
	}

	counter, err := s.claimRepo.GetCounter(ctx, req.AgentID)
	if err != nil {
		return nil, err
	}

	today := s.now().UTC().Format(claimcore.DayFormat)
	guard := claimcore.CanSubmit(claimcore.SubmitContext{
		RunID:             req.RunID,
		AgentID:           req.AgentID,
		RunAlreadyClaimed: exists,
		CounterDay:        counter.Day,
		CounterCount:      counter.Count,
		Today:             today,
	})
	if !guard.Allowed {
		if exists {
			return nil, errs.E(errs.KindDuplicate, "submitClaim", req.RunID, "%s", guard.Reason)
		}
		return nil, errs.E(errs.KindRateLimit, "submitClaim", req.AgentID, "%s", guard.Reason)
	}

	amount := collateral.DefaultClaimAmount
	if err := s.ops.Reserve(ctx, req.AgentID, amount); err != nil {
		return nil, err
	}

	claimID, err := s.claimRepo.GetNextID(ctx)
	if err != nil {
		s.compensateReserve(ctx, req.AgentID, amount)
		return nil, err
	}

	// The counter write precedes the claim insert so a failure at any point
	// leaves either both or neither: a refused submission never holds a
	// reservation, a dangling claim row, or a consumed daily slot.
	if err := s.claimRepo.PutCounter(ctx, &secondary.CounterRecord{
		AgentID: req.AgentID,
		Day:     today,
		Count:   claimcore.EffectiveCount(counter.Day, counter.Count, today) + 1,
	}); err != nil {
		s.compensateReserve(ctx, req.AgentID, amount)
		return nil, err
	}

	record := &secondary.ClaimRecord{
		ID:           claimID,
		RunID:        req.RunID,
		Claimant:     claimant,
		AgentID:      req.AgentID,
		ReasonCode:   req.ReasonCode,
		EvidenceHash: req.EvidenceHash,
		Status:       string(claimcore.InitialStatus()),
		Amount:       amount,
	}
	if err := s.claimRepo.Create(ctx, record); err != nil {
		s.compensateReserve(ctx, req.AgentID, amount)
		s.rewindCounter(ctx, req.AgentID, counter)
		return nil, err
	}

	s.appendAudit(ctx, &secondary.AuditEvent{
		Kind:    secondary.EventClaimSubmitted,
		AgentID: req.AgentID,
		ClaimID: claimID,
		Actor:   claimant,
		Amount:  amount,
		Detail:  req.RunID,
	})

	return s.getClaim(ctx, claimID)
}

// Verify records the resolver's decision on a submitted claim. Rejection is
// terminal and frees the reservation; approval holds it for settlement.
func (s *ClaimServiceImpl) Verify(ctx context.Context, claimID string, approved bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	actor := ctxutil.ActorFromContext(ctx)
	if !isResolver(actor, s.resolver) {
		return errs.E(errs.KindAuthorization, "verifyClaim", claimID, "caller %s is not the resolver", actor)
	}

	record, err := s.claimRepo.GetByID(ctx, claimID)
	if err != nil {
		return err
	}

	if guard := claimcore.CanVerify(claimcore.Status(record.Status)); !guard.Allowed {
		return errs.E(errs.KindState, "verifyClaim", claimID, "%s", guard.Reason)
	}

	result := claimcore.ApplyVerify(approved, s.now())
	if err := s.claimRepo.UpdateStatus(ctx, claimID, string(result.NewStatus), result.ResolvedAt != nil); err != nil {
		return err
	}

	if result.ReleaseReservation {
		// A terminal claim must not keep its reservation; if the release
		// fails, the claim stays submitted so the rejection can be retried.
		if err := s.ops.Release(ctx, record.AgentID, record.Amount); err != nil {
			if rewindErr := s.claimRepo.UpdateStatus(ctx, claimID, record.Status, false); rewindErr != nil {
				slog.Error("failed to rewind claim status after release failure", "claim_id", claimID, "error", rewindErr)
			}
			return err
		}
	}

	detail := "rejected"
	if approved {
		detail = "approved"
	}
	s.appendAudit(ctx, &secondary.AuditEvent{
		Kind:    secondary.EventClaimResolved,
		AgentID: record.AgentID,
		ClaimID: claimID,
		Actor:   actor,
		Detail:  detail,
	})

	return nil
}

// Settle slashes the agent's collateral and pays the claimant for an
// approved claim. Resolver only.
//
// The claim is marked paid before any funds move; if the slash or the pool
// payout then fails, the status flip and the position change are both
// rewound from the snapshot taken at entry. Audit events for the slash and
// the payout are appended only once the payout lands, so a rolled-back
// settlement leaves no fund movements in the history.
func (s *ClaimServiceImpl) Settle(ctx context.Context, claimID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	actor := ctxutil.ActorFromContext(ctx)
	if !isResolver(actor, s.resolver) {
		return errs.E(errs.KindAuthorization, "settleClaim", claimID, "caller %s is not the resolver", actor)
	}

	record, err := s.claimRepo.GetByID(ctx, claimID)
	if err != nil {
		return err
	}

	if guard := claimcore.CanSettle(claimcore.Status(record.Status)); !guard.Allowed {
		return errs.E(errs.KindState, "settleClaim", claimID, "%s", guard.Reason)
	}

	staked, reserved, err := s.ops.Funds(ctx, record.AgentID)
	if err != nil {
		return err
	}

	result := claimcore.ApplySettle(s.now())
	if err := s.claimRepo.UpdateStatus(ctx, claimID, string(result.NewStatus), true); err != nil {
		return err
	}

	autoPaused, err := s.ops.Slash(ctx, record.AgentID, record.Amount, claimID)
	if err != nil {
		s.rollbackSettle(ctx, claimID, record.AgentID, staked, reserved, false)
		return err
	}

	if err := s.ops.Payout(ctx, record.Claimant, record.Amount, claimID); err != nil {
		s.rollbackSettle(ctx, claimID, record.AgentID, staked, reserved, autoPaused)
		return err
	}

	slashed := &secondary.AuditEvent{
		Kind:    secondary.EventSlashExecuted,
		AgentID: record.AgentID,
		ClaimID: claimID,
		Actor:   actor,
		Amount:  record.Amount,
	}
	if autoPaused {
		slashed.Detail = "auto-paused"
	}
	s.appendAudit(ctx, slashed)
	s.appendAudit(ctx, &secondary.AuditEvent{
		Kind:      secondary.EventPayoutSent,
		ClaimID:   claimID,
		Recipient: record.Claimant,
		Amount:    record.Amount,
	})
	s.appendAudit(ctx, &secondary.AuditEvent{
		Kind:      secondary.EventClaimPaid,
		AgentID:   record.AgentID,
		ClaimID:   claimID,
		Actor:     actor,
		Recipient: record.Claimant,
		Amount:    record.Amount,
	})

	return nil
}

// GetClaim retrieves a claim by ID.
func (s *ClaimServiceImpl) GetClaim(ctx context.Context, claimID string) (*primary.Claim, error) {
	return s.getClaim(ctx, claimID)
}

// ListClaims lists claims with optional filters.
func (s *ClaimServiceImpl) ListClaims(ctx context.Context, filters primary.ClaimFilters) ([]*primary.Claim, error) {
	records, err := s.claimRepo.List(ctx, secondary.ClaimFilters{
		AgentID: filters.AgentID,
		Status:  filters.Status,
	})
	if err != nil {
		return nil, err
	}

	claims := make([]*primary.Claim, len(records))
	for i, r := range records {
		claims[i] = s.recordToClaim(r)
	}
	return claims, nil
}

// Helper methods

func (s *ClaimServiceImpl) getClaim(ctx context.Context, claimID string) (*primary.Claim, error) {
	record, err := s.claimRepo.GetByID(ctx, claimID)
	if err != nil {
		return nil, err
	}
	return s.recordToClaim(record), nil
}

func (s *ClaimServiceImpl) recordToClaim(r *secondary.ClaimRecord) *primary.Claim {
	return &primary.Claim{
		ID:           r.ID,
		RunID:        r.RunID,
		Claimant:     r.Claimant,
		AgentID:      r.AgentID,
		ReasonCode:   r.ReasonCode,
		EvidenceHash: r.EvidenceHash,
		Status:       r.Status,
		Amount:       r.Amount,
		CreatedAt:    r.CreatedAt,
		ResolvedAt:   r.ResolvedAt,
	}
}

func (s *ClaimServiceImpl) compensateReserve(ctx context.Context, agentID string, amount int64) {
	if err := s.ops.Release(ctx, agentID, amount); err != nil {
		slog.Error("failed to release reservation after aborted claim submit", "agent_id", agentID, "amount", amount, "error", err)
	}
}

// rewindCounter restores the daily submission counter read at the start of
// an aborted submission.
func (s *ClaimServiceImpl) rewindCounter(ctx context.Context, agentID string, prev *secondary.CounterRecord) {
	if err := s.claimRepo.PutCounter(ctx, &secondary.CounterRecord{
		AgentID: agentID,
		Day:     prev.Day,
		Count:   prev.Count,
	}); err != nil {
		slog.Error("failed to rewind submission counter after aborted claim submit", "agent_id", agentID, "error", err)
	}
}

// rollbackSettle rewinds a half-done settlement: the claim returns to
// approved with its resolution timestamp cleared, and the agent's position
// returns to the snapshot.
func (s *ClaimServiceImpl) rollbackSettle(ctx context.Context, claimID, agentID string, staked, reserved int64, reactivate bool) {
	slog.Warn("settlement rolled back", "claim_id", claimID, "agent_id", agentID)
	if err := s.claimRepo.UpdateStatus(ctx, claimID, string(claimcore.StatusApproved), false); err != nil {
		slog.Error("failed to rewind claim status during settlement rollback", "claim_id", claimID, "error", err)
	}
	if err := s.ops.Restore(ctx, agentID, staked, reserved, reactivate); err != nil {
		slog.Error("failed to restore agent position during settlement rollback", "agent_id", agentID, "error", err)
	}
}

func (s *ClaimServiceImpl) appendAudit(ctx context.Context, event *secondary.AuditEvent) {
	_ = s.audit.Append(ctx, event)
}

// Ensure ClaimServiceImpl implements the interface
var _ primary.ClaimService = (*ClaimServiceImpl)(nil)
