package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"budgetplanner/internal/core"
)

func scanBudget(row rowScanner) (core.Budget, error) {
	var (
		b       core.Budget
		created timestamp
	)
	if err := row.Scan(&b.ID, &b.Name, &b.Currency, &created); err != nil {
		return core.Budget{}, err
	}
	b.CreatedAt = created.Time
	return b, nil
}

func (q *Queries) CreateBudget(ctx context.Context, name, currency string) (core.Budget, error) {
	row := q.db.QueryRowContext(ctx,
		`INSERT INTO budgets (name, currency) VALUES (?, ?)
		 RETURNING id, name, currency, created_at`,
		name, currency,
	)
	b, err := scanBudget(row)
	if err != nil {
		return core.Budget{}, fmt.Errorf("insert budget: %w", err)
	}
	return b, nil
}

func (q *Queries) GetBudget(ctx context.Context, id int64) (core.Budget, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT id, name, currency, created_at FROM budgets WHERE id = ?`, id)
	b, err := scanBudget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, core.ErrBudgetNotFound
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget: %w", err)
	}
	return b, nil
}

// ListBudgetsForUser returns every budget userID is a member of.
func (q *Queries) ListBudgetsForUser(ctx context.Context, userID int64) ([]core.Budget, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT b.id, b.name, b.currency, b.created_at
		 FROM budgets b
		 JOIN user_budgets ub ON ub.budget_id = b.id
		 WHERE ub.user_id = ?
		 ORDER BY b.id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	budgets := []core.Budget{}
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

func (q *Queries) UpdateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	row := q.db.QueryRowContext(ctx,
		`UPDATE budgets SET name = ?, currency = ? WHERE id = ?
		 RETURNING id, name, currency, created_at`,
		b.Name, b.Currency, b.ID,
	)
	updated, err := scanBudget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, core.ErrBudgetNotFound
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("update budget: %w", err)
	}
	return updated, nil
}

// DeleteBudget removes the budget row. Categories, transactions, memberships,
// invitations and history go with it through ON DELETE CASCADE.
func (q *Queries) DeleteBudget(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return expectAffected(res, core.ErrBudgetNotFound)
}
