package core

import (
	"fmt"
	"strings"
)

// DiffBudget describes every user-visible field that differs between before
// and after, in a stable order.
func DiffBudget(before, after Budget) []string {
	var changes []string
	if before.Name != after.Name {
		changes = append(changes, fmt.Sprintf("name: %s -> %s", before.Name, after.Name))
	}
	if before.Currency != after.Currency {
		changes = append(changes, fmt.Sprintf("currency: %s -> %s", before.Currency, after.Currency))
	}
	return changes
}

// DiffTransaction compares the audited fields of a transaction. Amounts are
// compared numerically and dates at day granularity.
func DiffTransaction(before, after Transaction) []string {
	var changes []string
	if !before.Amount.Equal(after.Amount) {
		changes = append(changes, fmt.Sprintf("amount: %s -> %s", before.Amount, after.Amount))
	}
	if before.Description != after.Description {
		changes = append(changes, fmt.Sprintf("description: %s -> %s", before.Description, after.Description))
	}
	if !before.Date.SameDay(after.Date) {
		changes = append(changes, fmt.Sprintf("date: %s -> %s", before.Date, after.Date))
	}
	return changes
}

// JoinChanges renders a change list as history details.
func JoinChanges(changes []string) string {
	return strings.Join(changes, ", ")
}
