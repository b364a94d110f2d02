// Package errs defines the typed failure taxonomy shared by the ledger and
// claim services. Callers receive the specific kind plus the triggering
// identifier so off-chain tooling can render a precise failure reason.
package errs

import (
	"errors"
	"fmt"
)

// Kind categorizes a failure for callers and tests.
type Kind string

const (
	// KindAuthorization indicates the caller lacks the required role or identity.
	KindAuthorization Kind = "AUTHORIZATION"

	// KindState indicates the operation is invalid for the current claim or request status.
	KindState Kind = "STATE"

	// KindInsufficientFunds indicates a stake or free-collateral shortfall.
	KindInsufficientFunds Kind = "INSUFFICIENT_FUNDS"

	// KindDuplicate indicates a claim already exists for the run.
	KindDuplicate Kind = "DUPLICATE"

	// KindRateLimit indicates the daily submission cap was reached.
	KindRateLimit Kind = "RATE_LIMIT"

	// KindInvalidAmount indicates a zero or negative amount.
	KindInvalidAmount Kind = "INVALID_AMOUNT"

	// KindTransfer indicates an external fund movement failed.
	KindTransfer Kind = "TRANSFER"

	// KindNotFound indicates a referenced agent, claim, or request does not exist.
	KindNotFound Kind = "NOT_FOUND"
)

// Error is a typed failure carrying the operation and triggering entity ID.
type Error struct {
	Kind     Kind
	Op       string // operation that failed, e.g. "submitClaim"
	EntityID string // agentId / claimId / requestId, when known
	Msg      string
}

func (e *Error) Error() string {
	if e.EntityID != "" {
		return fmt.Sprintf("%s %s: %s [%s]", e.Op, e.EntityID, e.Msg, e.Kind)
	}
	return fmt.Sprintf("%s: %s [%s]", e.Op, e.Msg, e.Kind)
}

// E constructs a typed error.
func E(kind Kind, op, entityID, format string, args ...any) *Error {
	return &Error{
		Kind:     kind,
		Op:       op,
		EntityID: entityID,
		Msg:      fmt.Sprintf(format, args...),
	}
}

// IsKind reports whether err (or anything it wraps) is a typed error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// KindOf returns the kind of err, or empty string if err carries no kind.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
