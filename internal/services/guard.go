package services

import (
	"context"
	"fmt"

	"budgetplanner/internal/core"
)

// MembershipLookup is satisfied by *storage.Queries and *storage.Tx, so the
// guard runs the same way on the pool and inside a transaction.
type MembershipLookup interface {
	FindMembership(ctx context.Context, userID, budgetID int64) (*core.Membership, error)
}

// RequireMember returns userID's membership in budgetID or ErrNotAMember.
// A budget that does not exist has no members, so callers learn nothing
// about its existence from the result.
func RequireMember(ctx context.Context, lookup MembershipLookup, userID, budgetID int64) (core.Membership, error) {
	m, err := lookup.FindMembership(ctx, userID, budgetID)
	if err != nil {
		return core.Membership{}, fmt.Errorf("check membership: %w", err)
	}
	if m == nil {
		return core.Membership{}, core.ErrNotAMember
	}
	return *m, nil
}

// RequireOwner is RequireMember restricted to the owner role.
func RequireOwner(ctx context.Context, lookup MembershipLookup, userID, budgetID int64) (core.Membership, error) {
	m, err := RequireMember(ctx, lookup, userID, budgetID)
	if err != nil {
		return core.Membership{}, err
	}
	if !m.Role.IsOwner() {
		return core.Membership{}, core.ErrNotOwner
	}
	return m, nil
}
