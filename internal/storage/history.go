package storage

import (
	"context"
	"fmt"

	"budgetplanner/internal/core"
)

// HistoryLimit caps how many audit rows a history read returns.
const HistoryLimit = 50

// AppendHistory records one audit entry. It is defined on Tx only: an entry
// is always written by the transaction of the change it documents and
// disappears with it on rollback.
func (tx *Tx) AppendHistory(ctx context.Context, e core.HistoryEntry) error {
	_, err := tx.db.ExecContext(ctx,
		`INSERT INTO history (budget_id, user_id, entity_type, entity_id, action, details)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.BudgetID, e.UserID, string(e.EntityType), e.EntityID, string(e.Action), e.Details,
	)
	if err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	return nil
}

// ListHistory returns the newest HistoryLimit entries of a budget.
func (q *Queries) ListHistory(ctx context.Context, budgetID int64) ([]core.HistoryEntry, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT h.id, h.budget_id, h.user_id, h.entity_type, h.entity_id, h.action,
		        h.details, h.created_at, u.name
		 FROM history h
		 JOIN users u ON u.id = h.user_id
		 WHERE h.budget_id = ?
		 ORDER BY h.created_at DESC, h.id DESC
		 LIMIT ?`,
		budgetID, HistoryLimit,
	)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	entries := []core.HistoryEntry{}
	for rows.Next() {
		var (
			e          core.HistoryEntry
			entityType string
			action     string
			created    timestamp
		)
		if err := rows.Scan(&e.ID, &e.BudgetID, &e.UserID, &entityType, &e.EntityID,
			&action, &e.Details, &created, &e.UserName); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		e.EntityType = core.EntityType(entityType)
		e.Action = core.Action(action)
		e.CreatedAt = created.Time
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
