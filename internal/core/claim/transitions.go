// Package claim contains the pure business logic for claim lifecycle operations.
// This is part of the Functional Core - no I/O, only pure functions.
package claim

import "time"

// Status represents the possible states of a claim.
type Status string

const (
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusPaid      Status = "paid"
)

// IsTerminal reports whether a claim in this status accepts no further transitions.
func (s Status) IsTerminal() bool {
	return s == StatusRejected || s == StatusPaid
}

// InitialStatus returns the status of a freshly submitted claim.
func InitialStatus() Status {
	return StatusSubmitted
}

// VerifyResult captures the outcome of a verification decision.
// ReleaseReservation is set when the reservation must be freed (rejection).
type VerifyResult struct {
	NewStatus          Status
	ResolvedAt         *time.Time
	ReleaseReservation bool
}

// ApplyVerify applies the resolver's decision to a submitted claim.
// Approval holds the reservation; rejection is terminal and frees it.
// The caller should pass the current time to enable testing.
func ApplyVerify(approved bool, now time.Time) VerifyResult {
	if approved {
		return VerifyResult{NewStatus: StatusApproved}
	}
	return VerifyResult{
		NewStatus:          StatusRejected,
		ResolvedAt:         &now,
		ReleaseReservation: true,
	}
}

// SettleResult captures the status change of a settlement.
type SettleResult struct {
	NewStatus  Status
	ResolvedAt *time.Time
}

// ApplySettle marks an approved claim paid. The fund movement itself
// happens in the ledger; this only captures the durable status flip.
func ApplySettle(now time.Time) SettleResult {
	return SettleResult{
		NewStatus:  StatusPaid,
		ResolvedAt: &now,
	}
}
