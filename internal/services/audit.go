package services

import (
	"context"

	"budgetplanner/internal/core"
	"budgetplanner/internal/storage"
)

const detailsMemberJoined = "new member joined"

// recordChanges appends one UPDATE entry describing changes, or nothing when
// the list is empty.
func recordChanges(ctx context.Context, tx *storage.Tx, actor core.Identity, budgetID int64,
	entity core.EntityType, entityID int64, changes []string) error {
	if len(changes) == 0 {
		return nil
	}
	return tx.AppendHistory(ctx, core.HistoryEntry{
		BudgetID:   budgetID,
		UserID:     actor.UserID,
		EntityType: entity,
		EntityID:   entityID,
		Action:     core.ActionUpdate,
		Details:    core.JoinChanges(changes),
	})
}
