package collateral

import "testing"

func TestFree(t *testing.T) {
	f := Funds{Staked: Unit, Reserved: DefaultClaimAmount}
	if got := f.Free(); got != Unit-DefaultClaimAmount {
		t.Errorf("Free() = %d, want %d", got, Unit-DefaultClaimAmount)
	}
}

func TestRatioBps(t *testing.T) {
	tests := []struct {
		name string
		f    Funds
		want int64
	}{
		{
			name: "no reservation reports max",
			f:    Funds{Staked: Unit, Reserved: 0},
			want: MaxRatioBps,
		},
		{
			name: "fully reserved reports 10000",
			f:    Funds{Staked: Unit, Reserved: Unit},
			want: 10000,
		},
		{
			name: "one percent reserved reports 1000000",
			f:    Funds{Staked: Unit, Reserved: DefaultClaimAmount},
			want: 1000000,
		},
		{
			name: "truncates toward zero",
			f:    Funds{Staked: 3, Reserved: 2},
			want: 15000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.f.RatioBps(); got != tt.want {
				t.Errorf("RatioBps() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCanWithdraw(t *testing.T) {
	tests := []struct {
		name        string
		f           Funds
		amount      int64
		wantAllowed bool
	}{
		{
			name:        "within free collateral",
			f:           Funds{Staked: Unit, Reserved: 0},
			amount:      Unit / 2,
			wantAllowed: true,
		},
		{
			name:        "exactly free collateral",
			f:           Funds{Staked: Unit, Reserved: DefaultClaimAmount},
			amount:      Unit - DefaultClaimAmount,
			wantAllowed: true,
		},
		{
			name:        "exceeds free collateral",
			f:           Funds{Staked: Unit, Reserved: DefaultClaimAmount},
			amount:      Unit,
			wantAllowed: false,
		},
		{
			name:        "nothing staked",
			f:           Funds{},
			amount:      1,
			wantAllowed: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CanWithdraw(tt.f, tt.amount)
			if result.Allowed != tt.wantAllowed {
				t.Errorf("Allowed = %v, want %v (reason: %s)", result.Allowed, tt.wantAllowed, result.Reason)
			}
		})
	}
}

func TestCanReserve(t *testing.T) {
	f := Funds{Staked: Unit, Reserved: Unit - DefaultClaimAmount}

	if result := CanReserve(f, DefaultClaimAmount); !result.Allowed {
		t.Errorf("reserving exactly free collateral should be allowed: %s", result.Reason)
	}
	if result := CanReserve(f, DefaultClaimAmount+1); result.Allowed {
		t.Error("reserving beyond free collateral should not be allowed")
	}
}

func TestCanSlash(t *testing.T) {
	f := Funds{Staked: DefaultClaimAmount, Reserved: DefaultClaimAmount}

	if result := CanSlash(f, DefaultClaimAmount); !result.Allowed {
		t.Errorf("slashing entire stake should be allowed: %s", result.Reason)
	}
	if result := CanSlash(f, DefaultClaimAmount+1); result.Allowed {
		t.Error("slashing beyond stake should not be allowed")
	}
}

func TestApplyRelease(t *testing.T) {
	tests := []struct {
		name         string
		f            Funds
		amount       int64
		wantReserved int64
	}{
		{
			name:         "exact release",
			f:            Funds{Staked: Unit, Reserved: DefaultClaimAmount},
			amount:       DefaultClaimAmount,
			wantReserved: 0,
		},
		{
			name:         "partial release",
			f:            Funds{Staked: Unit, Reserved: 2 * DefaultClaimAmount},
			amount:       DefaultClaimAmount,
			wantReserved: DefaultClaimAmount,
		},
		{
			name:         "over-large release clamps to zero",
			f:            Funds{Staked: Unit, Reserved: DefaultClaimAmount},
			amount:       Unit,
			wantReserved: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyRelease(tt.f, tt.amount)
			if got.Reserved != tt.wantReserved {
				t.Errorf("Reserved = %d, want %d", got.Reserved, tt.wantReserved)
			}
			if got.Staked != tt.f.Staked {
				t.Errorf("Staked changed: %d, want %d", got.Staked, tt.f.Staked)
			}
		})
	}
}

func TestApplySlash(t *testing.T) {
	f := Funds{Staked: Unit, Reserved: DefaultClaimAmount}
	got := ApplySlash(f, DefaultClaimAmount)

	if got.Staked != Unit-DefaultClaimAmount {
		t.Errorf("Staked = %d, want %d", got.Staked, Unit-DefaultClaimAmount)
	}
	if got.Reserved != 0 {
		t.Errorf("Reserved = %d, want 0", got.Reserved)
	}

	// Slash larger than the reservation clamps reserved to zero.
	f = Funds{Staked: Unit, Reserved: DefaultClaimAmount}
	got = ApplySlash(f, Unit/2)
	if got.Reserved != 0 {
		t.Errorf("Reserved = %d, want 0", got.Reserved)
	}
	if got.Staked != Unit/2 {
		t.Errorf("Staked = %d, want %d", got.Staked, Unit/2)
	}
}

func TestInvariantHoldsThroughSequence(t *testing.T) {
	// stake -> reserve -> slash -> release must keep 0 <= Reserved <= Staked.
	f := Funds{}
	f = ApplyStake(f, Unit)
	f = ApplyReserve(f, DefaultClaimAmount)
	f = ApplySlash(f, DefaultClaimAmount)
	f = ApplyRelease(f, DefaultClaimAmount)

	if f.Reserved < 0 || f.Reserved > f.Staked {
		t.Errorf("invariant violated: staked=%d reserved=%d", f.Staked, f.Reserved)
	}
}
