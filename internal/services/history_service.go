package services

import (
	"context"

	"budgetplanner/internal/core"
	"budgetplanner/internal/storage"
)

type HistoryService struct {
	storage *storage.SQLiteRepository
}

func NewHistoryService(storage *storage.SQLiteRepository) *HistoryService {
	return &HistoryService{storage: storage}
}

// ListHistory returns the latest audit entries of a budget, newest first.
func (s *HistoryService) ListHistory(ctx context.Context, actor core.Identity, budgetID int64) ([]core.HistoryEntry, error) {
	q := s.storage.Queries()
	if _, err := RequireMember(ctx, q, actor.UserID, budgetID); err != nil {
		return nil, err
	}
	return q.ListHistory(ctx, budgetID)
}
