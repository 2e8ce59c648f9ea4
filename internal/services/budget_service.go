package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"budgetplanner/internal/core"
	"budgetplanner/internal/storage"
)

// BudgetService owns the budget lifecycle: creation with its owner, reads,
// audited updates and owner-only deletion.
type BudgetService struct {
	storage *storage.SQLiteRepository
}

func NewBudgetService(storage *storage.SQLiteRepository) *BudgetService {
	return &BudgetService{storage: storage}
}

// CreateBudget inserts the budget and the actor's owner membership in one
// transaction; neither row exists without the other.
func (s *BudgetService) CreateBudget(ctx context.Context, actor core.Identity, name, currency string) (core.Budget, error) {
	b := core.Budget{Name: strings.TrimSpace(name), Currency: core.NormalizeCurrency(currency)}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}

	var created core.Budget
	err := s.storage.InTx(ctx, func(tx *storage.Tx) error {
		var err error
		created, err = tx.CreateBudget(ctx, b.Name, b.Currency)
		if err != nil {
			return err
		}
		return tx.AddMembership(ctx, actor.UserID, created.ID, core.RoleOwner)
	})
	if err != nil {
		return core.Budget{}, fmt.Errorf("create budget: %w", err)
	}

	slog.InfoContext(ctx, "Budget created", "budget_id", created.ID, "user_id", actor.UserID)
	return created, nil
}

func (s *BudgetService) ListBudgets(ctx context.Context, actor core.Identity) ([]core.Budget, error) {
	return s.storage.Queries().ListBudgetsForUser(ctx, actor.UserID)
}

// GetBudget checks membership before looking the budget up, so a stranger
// gets ErrNotAMember whether or not the budget exists.
func (s *BudgetService) GetBudget(ctx context.Context, actor core.Identity, id int64) (core.Budget, error) {
	q := s.storage.Queries()
	if _, err := RequireMember(ctx, q, actor.UserID, id); err != nil {
		return core.Budget{}, err
	}
	return q.GetBudget(ctx, id)
}

// UpdateBudget renames the budget and optionally changes its currency. An
// empty currency keeps the current one. A history entry listing the changed
// fields is written in the same transaction when anything changed.
func (s *BudgetService) UpdateBudget(ctx context.Context, actor core.Identity, id int64, name, currency string) (core.Budget, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.Budget{}, core.ErrEmptyName
	}

	var updated core.Budget
	err := s.storage.InTx(ctx, func(tx *storage.Tx) error {
		if _, err := RequireMember(ctx, tx, actor.UserID, id); err != nil {
			return err
		}
		before, err := tx.GetBudget(ctx, id)
		if err != nil {
			return err
		}

		after := before
		after.Name = name
		if strings.TrimSpace(currency) != "" {
			after.Currency = core.NormalizeCurrency(currency)
		}

		changes := core.DiffBudget(before, after)
		if len(changes) == 0 {
			updated = before
			return nil
		}
		if updated, err = tx.UpdateBudget(ctx, after); err != nil {
			return err
		}
		return recordChanges(ctx, tx, actor, id, core.EntityBudget, id, changes)
	})
	if err != nil {
		return core.Budget{}, fmt.Errorf("update budget: %w", err)
	}
	return updated, nil
}

// DeleteBudget removes a budget and everything hanging off it. Only the
// owner may do this.
func (s *BudgetService) DeleteBudget(ctx context.Context, actor core.Identity, id int64) error {
	err := s.storage.InTx(ctx, func(tx *storage.Tx) error {
		if _, err := RequireOwner(ctx, tx, actor.UserID, id); err != nil {
			return err
		}
		return tx.DeleteBudget(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}

	slog.InfoContext(ctx, "Budget deleted", "budget_id", id, "user_id", actor.UserID)
	return nil
}

func (s *BudgetService) ListMembers(ctx context.Context, actor core.Identity, id int64) ([]core.Member, error) {
	q := s.storage.Queries()
	if _, err := RequireMember(ctx, q, actor.UserID, id); err != nil {
		return nil, err
	}
	return q.ListMembers(ctx, id)
}
