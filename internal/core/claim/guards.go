package claim

import "fmt"

// MaxClaimsPerDay is the fixed cap on accepted submissions per agent per
// calendar day.
const MaxClaimsPerDay = 10

// DayFormat is the calendar-day key used by the daily submission counter.
const DayFormat = "2006-01-02"

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// SubmitContext provides context for claim submission guards.
// Populated by the caller with pre-fetched state.
type SubmitContext struct {
	RunID             string
	AgentID           string
	RunAlreadyClaimed bool
	CounterDay        string // stored day of the agent's daily counter
	CounterCount      int    // stored count of the agent's daily counter
	Today             string // current day in DayFormat
}

// CanSubmit evaluates whether a claim submission is accepted.
// Rules:
// - At most one claim may ever exist per run.
// - The per-agent daily counter (reset when the stored day is not today)
//   must stay within MaxClaimsPerDay after this submission.
func CanSubmit(ctx SubmitContext) GuardResult {
	if ctx.RunAlreadyClaimed {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("claim already exists for run %s", ctx.RunID),
		}
	}

	if EffectiveCount(ctx.CounterDay, ctx.CounterCount, ctx.Today)+1 > MaxClaimsPerDay {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("agent %s reached the daily claim cap of %d", ctx.AgentID, MaxClaimsPerDay),
		}
	}

	return GuardResult{Allowed: true}
}

// EffectiveCount returns the counter value that applies today: the stored
// count when the stored day is today, zero otherwise.
func EffectiveCount(storedDay string, storedCount int, today string) int {
	if storedDay != today {
		return 0
	}
	return storedCount
}

// CanVerify evaluates whether a claim can be verified.
// Rule: only submitted claims can be verified.
func CanVerify(current Status) GuardResult {
	if current != StatusSubmitted {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("can only verify submitted claims (current status: %s)", current),
		}
	}
	return GuardResult{Allowed: true}
}

// CanSettle evaluates whether a claim can be settled.
// Rule: only approved claims can be settled.
func CanSettle(current Status) GuardResult {
	if current != StatusApproved {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("can only settle approved claims (current status: %s)", current),
		}
	}
	return GuardResult{Allowed: true}
}
