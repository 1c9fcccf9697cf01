// Package core provides money parsing and handling utilities.
//
// Amounts are carried as shopspring decimals so that KRW values and
// two-digit USD values sum without float drift.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a user supplied decimal string to a positive amount.
//
// Both dot (12.34) and comma (12,34) decimal separators are accepted when the
// string carries a single separator followed by at most two digits. Anything
// else with commas is treated as thousands grouping.
//
// Examples:
//
//	ParseAmount("12.34")   -> 12.34, nil
//	ParseAmount("12,34")   -> 12.34, nil
//	ParseAmount("9,000")   -> 9000, nil
//	ParseAmount("1,234.5") -> 1234.5, nil
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		return decimal.Zero, ErrInvalidAmount
	}

	if i := strings.LastIndex(s, ","); i >= 0 && !strings.Contains(s, ".") && strings.Count(s, ",") == 1 && len(s)-i-1 <= 2 {
		s = s[:i] + "." + s[i+1:]
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if err := ValidateAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// Sum adds amounts, returning zero for an empty slice.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
