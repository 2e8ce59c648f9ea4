package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"budgetplanner/internal/core"
)

// AddMembership links a user to a budget. A second link for the same pair
// fails with ErrAlreadyMember; it never overwrites the existing role.
func (q *Queries) AddMembership(ctx context.Context, userID, budgetID int64, role core.Role) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO user_budgets (user_id, budget_id, role) VALUES (?, ?, ?)`,
		userID, budgetID, string(role),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return core.ErrAlreadyMember
		}
		return fmt.Errorf("insert membership: %w", err)
	}
	return nil
}

// FindMembership returns the membership of userID in budgetID, or nil when
// there is none.
func (q *Queries) FindMembership(ctx context.Context, userID, budgetID int64) (*core.Membership, error) {
	var (
		m      core.Membership
		role   string
		joined timestamp
	)
	err := q.db.QueryRowContext(ctx,
		`SELECT user_id, budget_id, role, joined_at
		 FROM user_budgets WHERE user_id = ? AND budget_id = ?`,
		userID, budgetID,
	).Scan(&m.UserID, &m.BudgetID, &role, &joined)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find membership: %w", err)
	}
	m.Role = core.Role(role)
	m.JoinedAt = joined.Time
	return &m, nil
}

// IsMemberByEmail reports whether the account registered with email belongs
// to budgetID. Unknown emails are not members.
func (q *Queries) IsMemberByEmail(ctx context.Context, email string, budgetID int64) (bool, error) {
	var exists int
	err := q.db.QueryRowContext(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM user_budgets ub
			JOIN users u ON u.id = ub.user_id
			WHERE u.email = ? AND ub.budget_id = ?
		 )`,
		core.NormalizeEmail(email), budgetID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check membership by email: %w", err)
	}
	return exists == 1, nil
}

func (q *Queries) ListMembers(ctx context.Context, budgetID int64) ([]core.Member, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT u.id, u.name, u.email, u.avatar_url, ub.role
		 FROM user_budgets ub
		 JOIN users u ON u.id = ub.user_id
		 WHERE ub.budget_id = ?
		 ORDER BY ub.id`,
		budgetID,
	)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	members := []core.Member{}
	for rows.Next() {
		var (
			m      core.Member
			avatar sql.NullString
			role   string
		)
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &avatar, &role); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		m.AvatarURL = nullableString(avatar)
		m.Role = core.Role(role)
		members = append(members, m)
	}
	return members, rows.Err()
}
