package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"budgetplanner/internal/core"
)

const invitationColumns = `i.id, i.budget_id, i.sender_id, i.recipient_email, i.token, i.status,
	i.created_at, i.responded_at, b.name, u.name`

const invitationFrom = `FROM invitations i
	JOIN budgets b ON b.id = i.budget_id
	JOIN users u ON u.id = i.sender_id`

type CreateInvitationParams struct {
	BudgetID       int64
	SenderID       int64
	RecipientEmail string
	Token          string
}

func scanInvitation(row rowScanner) (core.Invitation, error) {
	var (
		inv       core.Invitation
		status    string
		created   timestamp
		responded timestamp
	)
	if err := row.Scan(&inv.ID, &inv.BudgetID, &inv.SenderID, &inv.RecipientEmail, &inv.Token,
		&status, &created, &responded, &inv.BudgetName, &inv.SenderName); err != nil {
		return core.Invitation{}, err
	}
	inv.Status = core.InvitationStatus(status)
	inv.CreatedAt = created.Time
	inv.RespondedAt = responded.Ptr()
	return inv, nil
}

// CreateInvitation stores a pending invitation. A second pending invitation
// for the same budget and recipient is rejected by the partial unique index.
func (q *Queries) CreateInvitation(ctx context.Context, p CreateInvitationParams) (core.Invitation, error) {
	var id int64
	err := q.db.QueryRowContext(ctx,
		`INSERT INTO invitations (budget_id, sender_id, recipient_email, token)
		 VALUES (?, ?, ?, ?)
		 RETURNING id`,
		p.BudgetID, p.SenderID, core.NormalizeEmail(p.RecipientEmail), p.Token,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) && violates(err, "invitations.recipient_email") {
			return core.Invitation{}, core.ErrDuplicateInvitation
		}
		return core.Invitation{}, fmt.Errorf("insert invitation: %w", err)
	}
	return q.GetInvitation(ctx, id)
}

func (q *Queries) GetInvitation(ctx context.Context, id int64) (core.Invitation, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+invitationColumns+` `+invitationFrom+` WHERE i.id = ?`, id)
	inv, err := scanInvitation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Invitation{}, core.ErrInvitationNotFound
	}
	if err != nil {
		return core.Invitation{}, fmt.Errorf("get invitation: %w", err)
	}
	return inv, nil
}

// ListPendingInvitations returns the pending invitations addressed to email,
// newest first, with budget and sender names attached.
func (q *Queries) ListPendingInvitations(ctx context.Context, email string) ([]core.Invitation, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+invitationColumns+` `+invitationFrom+`
		 WHERE i.recipient_email = ? AND i.status = 'pending'
		 ORDER BY i.created_at DESC, i.id DESC`,
		core.NormalizeEmail(email),
	)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	defer rows.Close()

	invitations := []core.Invitation{}
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invitation: %w", err)
		}
		invitations = append(invitations, inv)
	}
	return invitations, rows.Err()
}

// RespondToInvitation moves a pending invitation to status. The update is
// conditional on the row still being pending, so of two racing responses only
// the first one changes anything; the loser gets ErrInvitationNotPending.
func (q *Queries) RespondToInvitation(ctx context.Context, id int64, status core.InvitationStatus) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE invitations
		 SET status = ?, responded_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = 'pending'`,
		string(status), id,
	)
	if err != nil {
		if isCheckViolation(err) {
			return core.ErrInvalidStatus
		}
		return fmt.Errorf("respond to invitation: %w", err)
	}
	return expectAffected(res, core.ErrInvitationNotPending)
}
