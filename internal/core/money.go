// Package core holds the budgeting domain model, its error taxonomy and the
// pure functions (validation, change diffs) that operate on it.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount        = &Error{KindValidation, "amount must be a positive number"}
	ErrInvalidMonthlyBudget = &Error{KindValidation, "monthly budget must be a non-negative number"}
)

// ParseAmount parses a decimal string. Both dot (12.34) and comma (12,34)
// decimal separators are accepted.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,5")  -> 12.5, nil
//	ParseAmount("0")     -> error
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if err := ValidateAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// ValidateAmount requires a strictly positive amount. The transaction type
// carries the direction of money flow, never the sign.
func ValidateAmount(d decimal.Decimal) error {
	if !d.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

// ValidateMonthlyBudget allows an absent or non-negative category budget.
func ValidateMonthlyBudget(d *decimal.Decimal) error {
	if d != nil && d.IsNegative() {
		return ErrInvalidMonthlyBudget
	}
	return nil
}
