package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"budgetplanner/internal/core"
	"budgetplanner/internal/storage"
)

// TransactionInput carries the client-supplied fields of a transaction. On
// update a nil amount or description, an empty type and a zero date keep
// the stored value; CategoryID is always replaced.
type TransactionInput struct {
	CategoryID  *int64
	Amount      *decimal.Decimal
	Type        core.TransactionType
	Description *string
	Date        core.Date
}

type TransactionService struct {
	storage *storage.SQLiteRepository
}

func NewTransactionService(storage *storage.SQLiteRepository) *TransactionService {
	return &TransactionService{storage: storage}
}

// CreateTransaction records a transaction attributed to the actor. The type
// is checked by the store; an unknown type leaves no row behind.
func (s *TransactionService) CreateTransaction(ctx context.Context, actor core.Identity, budgetID int64, in TransactionInput) (core.Transaction, error) {
	if in.Amount == nil {
		return core.Transaction{}, core.Invalid("amount is required")
	}
	if err := core.ValidateAmount(*in.Amount); err != nil {
		return core.Transaction{}, err
	}

	t := core.Transaction{
		BudgetID:   budgetID,
		UserID:     actor.UserID,
		CategoryID: in.CategoryID,
		Amount:     *in.Amount,
		Type:       core.TransactionType(strings.ToLower(strings.TrimSpace(string(in.Type)))),
		Date:       in.Date,
	}
	if in.Description != nil {
		t.Description = strings.TrimSpace(*in.Description)
	}
	if t.Date.IsZero() {
		t.Date = core.Today()
	}

	var created core.Transaction
	err := s.storage.InTx(ctx, func(tx *storage.Tx) error {
		if _, err := RequireMember(ctx, tx, actor.UserID, budgetID); err != nil {
			return err
		}
		if err := requireCategoryIn(ctx, tx, t.CategoryID, budgetID); err != nil {
			return err
		}
		var err error
		created, err = tx.CreateTransaction(ctx, t)
		return err
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	return created, nil
}

// UpdateTransaction applies in to an existing transaction. The audited
// fields (amount, description, date) are diffed against the stored row and
// a history entry is written in the same transaction only when one of them
// changed.
func (s *TransactionService) UpdateTransaction(ctx context.Context, actor core.Identity, id int64, in TransactionInput) (core.Transaction, error) {
	if in.Amount != nil {
		if err := core.ValidateAmount(*in.Amount); err != nil {
			return core.Transaction{}, err
		}
	}

	var updated core.Transaction
	err := s.storage.InTx(ctx, func(tx *storage.Tx) error {
		before, err := tx.GetTransaction(ctx, id)
		if err != nil {
			return err
		}
		if _, err := RequireMember(ctx, tx, actor.UserID, before.BudgetID); err != nil {
			return err
		}

		after := before
		after.CategoryID = in.CategoryID
		if in.Amount != nil {
			after.Amount = *in.Amount
		}
		if in.Type != "" {
			after.Type = core.TransactionType(strings.ToLower(strings.TrimSpace(string(in.Type))))
		}
		if in.Description != nil {
			after.Description = strings.TrimSpace(*in.Description)
		}
		if !in.Date.IsZero() {
			after.Date = in.Date
		}
		if err := requireCategoryIn(ctx, tx, after.CategoryID, before.BudgetID); err != nil {
			return err
		}

		if updated, err = tx.UpdateTransaction(ctx, after); err != nil {
			return err
		}
		return recordChanges(ctx, tx, actor, before.BudgetID, core.EntityTransaction, id,
			core.DiffTransaction(before, after))
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	return updated, nil
}

// ListTransactions returns the budget's transactions, newest day first and
// by descending id within a day.
func (s *TransactionService) ListTransactions(ctx context.Context, actor core.Identity, budgetID int64) ([]core.Transaction, error) {
	q := s.storage.Queries()
	if _, err := RequireMember(ctx, q, actor.UserID, budgetID); err != nil {
		return nil, err
	}
	return q.ListTransactions(ctx, budgetID)
}

// requireCategoryIn rejects a category that is unknown or belongs to another
// budget. A nil category is always accepted.
func requireCategoryIn(ctx context.Context, tx *storage.Tx, categoryID *int64, budgetID int64) error {
	if categoryID == nil {
		return nil
	}
	c, err := tx.GetCategory(ctx, *categoryID)
	if errors.Is(err, core.ErrCategoryNotFound) {
		return core.ErrCategoryMismatch
	}
	if err != nil {
		return err
	}
	if c.BudgetID != budgetID {
		return core.ErrCategoryMismatch
	}
	return nil
}
