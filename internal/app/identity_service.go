// Package app contains application services implementing the primary ports.
// Services coordinate the pure core, the repositories, and the fund gateway;
// all cross-service state changes run under one shared serializer.
package app

import (
	"context"
	"sync"

	"github.com/example/agentbond/internal/ctxutil"
	"github.com/example/agentbond/internal/errs"
	"github.com/example/agentbond/internal/ports/primary"
	"github.com/example/agentbond/internal/ports/secondary"
)

// IdentityServiceImpl implements the IdentityService interface. It is also
// the IdentityAuthority capability the ledger and claim services are wired
// against: the authority methods skip locking because their callers already
// hold the serializer.
type IdentityServiceImpl struct {
	agentRepo secondary.AgentRepository
	audit     secondary.AuditLog
	resolver  string
	mu        *sync.Mutex
}

// NewIdentityService creates a new IdentityService with injected dependencies.
// The resolver address gates status and score updates; mu is the shared
// serializer.
func NewIdentityService(agentRepo secondary.AgentRepository, audit secondary.AuditLog, resolver string, mu *sync.Mutex) *IdentityServiceImpl {
	return &IdentityServiceImpl{
		agentRepo: agentRepo,
		audit:     audit,
		resolver:  resolver,
		mu:        mu,
	}
}

// RegisterAgent registers a new agent owned by the caller.
func (s *IdentityServiceImpl) RegisterAgent(ctx context.Context, metadataURI string) (*primary.Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	operator := ctxutil.ActorFromContext(ctx)
	if operator == "" {
		return nil, errs.E(errs.KindAuthorization, "registerAgent", "", "caller address not set")
	}

	id, err := s.agentRepo.GetNextID(ctx)
	if err != nil {
		return nil, err
	}

	record := &secondary.AgentRecord{
		ID:          id,
		Operator:    operator,
		MetadataURI: metadataURI,
		Status:      primary.AgentStatusActive,
	}
	if err := s.agentRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	s.appendAudit(ctx, &secondary.AuditEvent{
		Kind:    secondary.EventAgentRegistered,
		AgentID: id,
		Actor:   operator,
	})

	return s.getAgent(ctx, id)
}

// GetAgent retrieves an agent by ID.
func (s *IdentityServiceImpl) GetAgent(ctx context.Context, agentID string) (*primary.Agent, error) {
	return s.getAgent(ctx, agentID)
}

// ListAgents lists all registered agents.
func (s *IdentityServiceImpl) ListAgents(ctx context.Context) ([]*primary.Agent, error) {
	records, err := s.agentRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	agents := make([]*primary.Agent, len(records))
	for i, r := range records {
		agents[i] = s.recordToAgent(r)
	}
	return agents, nil
}

// SetStatus changes the agent's status. Only the agent's operator or the
// resolver may change it.
func (s *IdentityServiceImpl) SetStatus(ctx context.Context, agentID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if status != primary.AgentStatusActive && status != primary.AgentStatusPaused && status != primary.AgentStatusRetired {
		return errs.E(errs.KindState, "setStatus", agentID, "invalid status %q", status)
	}

	record, err := s.agentRepo.GetByID(ctx, agentID)
	if err != nil {
		return err
	}

	actor := ctxutil.ActorFromContext(ctx)
	if actor != record.Operator && !isResolver(actor, s.resolver) {
		return errs.E(errs.KindAuthorization, "setStatus", agentID, "caller %s is neither the operator nor the resolver", actor)
	}

	if err := s.agentRepo.UpdateStatus(ctx, agentID, status); err != nil {
		return err
	}

	s.appendAudit(ctx, &secondary.AuditEvent{
		Kind:    secondary.EventStatusChanged,
		AgentID: agentID,
		Actor:   actor,
		Detail:  status,
	})

	return nil
}

// UpdateScore records the agent's reputation figures. Resolver only.
func (s *IdentityServiceImpl) UpdateScore(ctx context.Context, agentID string, trustScore, totalRuns, violations int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	actor := ctxutil.ActorFromContext(ctx)
	if !isResolver(actor, s.resolver) {
		return errs.E(errs.KindAuthorization, "updateScore", agentID, "caller %s is not the resolver", actor)
	}

	if err := s.agentRepo.UpdateScore(ctx, agentID, trustScore, totalRuns, violations); err != nil {
		return err
	}

	s.appendAudit(ctx, &secondary.AuditEvent{
		Kind:    secondary.EventScoreUpdated,
		AgentID: agentID,
		Actor:   actor,
	})

	return nil
}

// IdentityAuthority capability. Callers hold the serializer.

// ResolveOperator returns the operator address registered for the agent.
func (s *IdentityServiceImpl) ResolveOperator(ctx context.Context, agentID string) (string, error) {
	record, err := s.agentRepo.GetByID(ctx, agentID)
	if err != nil {
		return "", err
	}
	return record.Operator, nil
}

// Status returns the agent's current status.
func (s *IdentityServiceImpl) Status(ctx context.Context, agentID string) (string, error) {
	record, err := s.agentRepo.GetByID(ctx, agentID)
	if err != nil {
		return "", err
	}
	return record.Status, nil
}

// Pause pauses the agent (auto-pause trigger).
func (s *IdentityServiceImpl) Pause(ctx context.Context, agentID string) error {
	return s.agentRepo.UpdateStatus(ctx, agentID, primary.AgentStatusPaused)
}

// Reactivate sets the agent back to active (settlement rollback).
func (s *IdentityServiceImpl) Reactivate(ctx context.Context, agentID string) error {
	return s.agentRepo.UpdateStatus(ctx, agentID, primary.AgentStatusActive)
}

// Helper methods

// isResolver reports whether actor holds the resolver role. An unset actor
// or an unconfigured resolver address matches nobody: until init records a
// resolver, the gate stays closed.
func isResolver(actor, resolver string) bool {
	return actor != "" && actor == resolver
}

func (s *IdentityServiceImpl) getAgent(ctx context.Context, agentID string) (*primary.Agent, error) {
	record, err := s.agentRepo.GetByID(ctx, agentID)
	if err != nil {
		return nil, err
	}
	return s.recordToAgent(record), nil
}

func (s *IdentityServiceImpl) recordToAgent(r *secondary.AgentRecord) *primary.Agent {
	return &primary.Agent{
		ID:          r.ID,
		Operator:    r.Operator,
		MetadataURI: r.MetadataURI,
		Status:      r.Status,
		TrustScore:  r.TrustScore,
		TotalRuns:   r.TotalRuns,
		Violations:  r.Violations,
		CreatedAt:   r.CreatedAt,
	}
}

// The audit log is append-only history, not a transactional participant; a
// failed append never fails the operation that produced it.
func (s *IdentityServiceImpl) appendAudit(ctx context.Context, event *secondary.AuditEvent) {
	_ = s.audit.Append(ctx, event)
}

// Ensure IdentityServiceImpl implements both ports
var _ primary.IdentityService = (*IdentityServiceImpl)(nil)
var _ secondary.IdentityAuthority = (*IdentityServiceImpl)(nil)
