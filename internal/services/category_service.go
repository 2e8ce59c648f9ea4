package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"budgetplanner/internal/core"
	"budgetplanner/internal/storage"
)

type CategoryService struct {
	storage *storage.SQLiteRepository
}

func NewCategoryService(storage *storage.SQLiteRepository) *CategoryService {
	return &CategoryService{storage: storage}
}

func (s *CategoryService) CreateCategory(ctx context.Context, actor core.Identity, budgetID int64, name string, monthly *decimal.Decimal) (core.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.Category{}, core.ErrEmptyName
	}
	if err := core.ValidateMonthlyBudget(monthly); err != nil {
		return core.Category{}, err
	}

	var created core.Category
	err := s.storage.InTx(ctx, func(tx *storage.Tx) error {
		if _, err := RequireMember(ctx, tx, actor.UserID, budgetID); err != nil {
			return err
		}
		var err error
		created, err = tx.CreateCategory(ctx, budgetID, name, monthly)
		return err
	})
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	return created, nil
}

func (s *CategoryService) ListCategories(ctx context.Context, actor core.Identity, budgetID int64) ([]core.Category, error) {
	q := s.storage.Queries()
	if _, err := RequireMember(ctx, q, actor.UserID, budgetID); err != nil {
		return nil, err
	}
	return q.ListCategories(ctx, budgetID)
}

// UpdateCategory renames a category and replaces its monthly budget; a nil
// monthly budget clears it.
func (s *CategoryService) UpdateCategory(ctx context.Context, actor core.Identity, id int64, name string, monthly *decimal.Decimal) (core.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.Category{}, core.ErrEmptyName
	}
	if err := core.ValidateMonthlyBudget(monthly); err != nil {
		return core.Category{}, err
	}

	var updated core.Category
	err := s.storage.InTx(ctx, func(tx *storage.Tx) error {
		c, err := tx.GetCategory(ctx, id)
		if err != nil {
			return err
		}
		if _, err := RequireMember(ctx, tx, actor.UserID, c.BudgetID); err != nil {
			return err
		}
		c.Name = name
		c.MonthlyBudget = monthly
		updated, err = tx.UpdateCategory(ctx, c)
		return err
	})
	if err != nil {
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}
	return updated, nil
}
