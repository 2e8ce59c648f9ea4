package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"budgetplanner/internal/core"
)

func scanCategory(row rowScanner) (core.Category, error) {
	var (
		c       core.Category
		monthly sql.NullString
	)
	if err := row.Scan(&c.ID, &c.BudgetID, &c.Name, &monthly); err != nil {
		return core.Category{}, err
	}
	if monthly.Valid {
		d, err := parseDecimalColumn(monthly.String)
		if err != nil {
			return core.Category{}, err
		}
		c.MonthlyBudget = &d
	}
	return c, nil
}

func categoryError(err error, op string) error {
	if isUniqueViolation(err) {
		return core.ErrDuplicateCategory
	}
	if isForeignKeyViolation(err) {
		return core.ErrBudgetNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (q *Queries) CreateCategory(ctx context.Context, budgetID int64, name string, monthly *decimal.Decimal) (core.Category, error) {
	row := q.db.QueryRowContext(ctx,
		`INSERT INTO categories (budget_id, name, monthly_budget) VALUES (?, ?, ?)
		 RETURNING id, budget_id, name, monthly_budget`,
		budgetID, name, decimalArg(monthly),
	)
	c, err := scanCategory(row)
	if err != nil {
		return core.Category{}, categoryError(err, "insert category")
	}
	return c, nil
}

func (q *Queries) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT id, budget_id, name, monthly_budget FROM categories WHERE id = ?`, id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, core.ErrCategoryNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (q *Queries) ListCategories(ctx context.Context, budgetID int64) ([]core.Category, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, budget_id, name, monthly_budget FROM categories
		 WHERE budget_id = ? ORDER BY name`,
		budgetID,
	)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []core.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (q *Queries) UpdateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	row := q.db.QueryRowContext(ctx,
		`UPDATE categories SET name = ?, monthly_budget = ? WHERE id = ?
		 RETURNING id, budget_id, name, monthly_budget`,
		c.Name, decimalArg(c.MonthlyBudget), c.ID,
	)
	updated, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, core.ErrCategoryNotFound
	}
	if err != nil {
		return core.Category{}, categoryError(err, "update category")
	}
	return updated, nil
}
