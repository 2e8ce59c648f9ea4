package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"budgetplanner/internal/core"
)

const transactionColumns = `t.id, t.budget_id, t.user_id, t.category_id, t.amount, t.type,
	t.description, t.transaction_date, t.created_at, u.name`

const transactionFrom = `FROM transactions t JOIN users u ON u.id = t.user_id`

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t        core.Transaction
		category sql.NullInt64
		amount   string
		kind     string
		date     string
		created  timestamp
	)
	if err := row.Scan(&t.ID, &t.BudgetID, &t.UserID, &category, &amount, &kind,
		&t.Description, &date, &created, &t.UserName); err != nil {
		return core.Transaction{}, err
	}
	var err error
	if t.Amount, err = parseDecimalColumn(amount); err != nil {
		return core.Transaction{}, err
	}
	if t.Date, err = parseDateColumn(date); err != nil {
		return core.Transaction{}, err
	}
	t.CategoryID = nullableInt64(category)
	t.Type = core.TransactionType(kind)
	t.CreatedAt = created.Time
	return t, nil
}

func transactionError(err error, op string) error {
	if isCheckViolation(err) && violates(err, "type") {
		return core.ErrInvalidTransactionType
	}
	if isForeignKeyViolation(err) {
		return core.ErrCategoryMismatch
	}
	return fmt.Errorf("%s: %w", op, err)
}

// CreateTransaction inserts t as is. The type column carries a CHECK
// constraint, so an unknown type fails here and no row is written.
func (q *Queries) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	var id int64
	err := q.db.QueryRowContext(ctx,
		`INSERT INTO transactions
		   (budget_id, user_id, category_id, amount, type, description, transaction_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 RETURNING id`,
		t.BudgetID, t.UserID, t.CategoryID, t.Amount.String(), string(t.Type),
		t.Description, t.Date.String(),
	).Scan(&id)
	if err != nil {
		return core.Transaction{}, transactionError(err, "insert transaction")
	}
	return q.GetTransaction(ctx, id)
}

func (q *Queries) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+transactionColumns+` `+transactionFrom+` WHERE t.id = ?`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrTransactionNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

// UpdateTransaction rewrites the mutable fields of t. Budget and author never
// change.
func (q *Queries) UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	res, err := q.db.ExecContext(ctx,
		`UPDATE transactions
		 SET category_id = ?, amount = ?, type = ?, description = ?, transaction_date = ?
		 WHERE id = ?`,
		t.CategoryID, t.Amount.String(), string(t.Type), t.Description, t.Date.String(), t.ID,
	)
	if err != nil {
		return core.Transaction{}, transactionError(err, "update transaction")
	}
	if err := expectAffected(res, core.ErrTransactionNotFound); err != nil {
		return core.Transaction{}, err
	}
	return q.GetTransaction(ctx, t.ID)
}

// ListTransactions returns the budget's transactions, most recent day first.
func (q *Queries) ListTransactions(ctx context.Context, budgetID int64) ([]core.Transaction, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` `+transactionFrom+`
		 WHERE t.budget_id = ?
		 ORDER BY t.transaction_date DESC, t.id DESC`,
		budgetID,
	)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	transactions := []core.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}
