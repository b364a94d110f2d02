package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/example/agentbond/internal/core/collateral"
)

// parseAmount converts a decimal credit string ("1.5", "0.01") into fund
// units. Up to six fractional digits are accepted.
func parseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "-") {
		return 0, fmt.Errorf("invalid amount %q", s)
	}

	whole := s
	frac := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > 6 {
		return 0, fmt.Errorf("amount %q has more than 6 decimal places", s)
	}
	frac += strings.Repeat("0", 6-len(frac))

	wholeUnits, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	fracUnits, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}

	return wholeUnits*collateral.Unit + fracUnits, nil
}

// formatAmount renders fund units as decimal credits with trailing zeros
// trimmed.
func formatAmount(units int64) string {
	sign := ""
	if units < 0 {
		sign = "-"
		units = -units
	}

	whole := units / collateral.Unit
	frac := units % collateral.Unit
	if frac == 0 {
		return fmt.Sprintf("%s%d", sign, whole)
	}

	fracStr := strings.TrimRight(fmt.Sprintf("%06d", frac), "0")
	return fmt.Sprintf("%s%d.%s", sign, whole, fracStr)
}
