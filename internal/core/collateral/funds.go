// Package collateral contains the pure fund accounting rules for the warranty pool.
// This is part of the Functional Core - no I/O, only pure functions.
package collateral

import (
	"fmt"
	"math"
	"time"
)

// Unit is the number of smallest fund units per credit. All amounts in the
// ledger are int64 counts of the smallest unit.
const Unit int64 = 1_000_000

// DefaultClaimAmount is the fixed amount reserved and paid per claim (0.01 credit).
const DefaultClaimAmount = Unit / 100

// UnstakeCooldown is the mandatory delay between requesting and finalizing a withdrawal.
const UnstakeCooldown = 7 * 24 * time.Hour

// MinCollateralRatioBps is the declared minimum collateralization floor
// (150%). It is configuration only: no guard currently checks it.
const MinCollateralRatioBps int64 = 15000

// MaxRatioBps is the ratio reported when an agent has no reserved collateral.
const MaxRatioBps int64 = math.MaxInt64

// Funds is an agent's collateral position. Invariant: 0 <= Reserved <= Staked.
type Funds struct {
	Staked   int64
	Reserved int64
}

// Free returns the withdrawable/reservable portion of the stake.
func (f Funds) Free() int64 {
	return f.Staked - f.Reserved
}

// RatioBps reports staked*10000/reserved, or MaxRatioBps when nothing is
// reserved. The formula is the pool's historical reporting convention;
// keep it as-is.
func (f Funds) RatioBps() int64 {
	if f.Reserved <= 0 {
		return MaxRatioBps
	}
	return f.Staked * 10000 / f.Reserved
}

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

// CanWithdraw evaluates whether amount can leave the active pool.
// Rule: amount must not exceed free collateral (staked - reserved).
func CanWithdraw(f Funds, amount int64) GuardResult {
	if amount > f.Free() {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("amount %d exceeds free collateral %d", amount, f.Free()),
		}
	}
	return GuardResult{Allowed: true}
}

// CanReserve evaluates whether amount can be reserved against open claims.
// Rule: free collateral must cover the reservation.
func CanReserve(f Funds, amount int64) GuardResult {
	if f.Free() < amount {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("free collateral %d cannot cover reservation %d", f.Free(), amount),
		}
	}
	return GuardResult{Allowed: true}
}

// CanSlash evaluates whether amount can be slashed from the stake.
// Rule: the full staked balance must cover the slash.
func CanSlash(f Funds, amount int64) GuardResult {
	if f.Staked < amount {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("staked %d cannot cover slash %d", f.Staked, amount),
		}
	}
	return GuardResult{Allowed: true}
}

// ApplyStake adds amount to the staked balance.
func ApplyStake(f Funds, amount int64) Funds {
	f.Staked += amount
	return f
}

// ApplyWithdraw removes amount from the active pool immediately.
// The caller must have evaluated CanWithdraw first.
func ApplyWithdraw(f Funds, amount int64) Funds {
	f.Staked -= amount
	return f
}

// ApplyReserve earmarks amount against open claims.
// The caller must have evaluated CanReserve first.
func ApplyReserve(f Funds, amount int64) Funds {
	f.Reserved += amount
	return f
}

// ApplyRelease frees a reservation, clamped to zero. Release never drives
// Reserved negative even when called with a stale or over-large amount.
func ApplyRelease(f Funds, amount int64) Funds {
	if amount >= f.Reserved {
		f.Reserved = 0
	} else {
		f.Reserved -= amount
	}
	return f
}

// ApplySlash removes amount from the stake and releases the matching
// reservation with the same clamped-to-zero rule as ApplyRelease.
// The caller must have evaluated CanSlash first.
func ApplySlash(f Funds, amount int64) Funds {
	f.Staked -= amount
	return ApplyRelease(f, amount)
}
