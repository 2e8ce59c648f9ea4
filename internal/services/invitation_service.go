package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"budgetplanner/internal/core"
	"budgetplanner/internal/storage"
)

// InvitationService drives the pending -> accepted | rejected workflow.
type InvitationService struct {
	storage  *storage.SQLiteRepository
	notifier Notifier
	links    Links
}

func NewInvitationService(storage *storage.SQLiteRepository, notifier Notifier, links Links) *InvitationService {
	return &InvitationService{storage: storage, notifier: notifier, links: links}
}

// Invite creates a pending invitation for email and notifies the recipient.
// The recipient does not need an account yet. The notification is part of
// the transaction: if it cannot be handed off no invitation is stored.
func (s *InvitationService) Invite(ctx context.Context, actor core.Identity, budgetID int64, email string) (core.Invitation, error) {
	email = core.NormalizeEmail(email)
	if email == "" {
		return core.Invitation{}, core.ErrEmptyEmail
	}

	var inv core.Invitation
	err := s.storage.InTx(ctx, func(tx *storage.Tx) error {
		if _, err := RequireOwner(ctx, tx, actor.UserID, budgetID); err != nil {
			return err
		}
		budget, err := tx.GetBudget(ctx, budgetID)
		if err != nil {
			return err
		}

		member, err := tx.IsMemberByEmail(ctx, email, budgetID)
		if err != nil {
			return err
		}
		if member {
			return core.ErrAlreadyMember
		}

		token, err := newToken()
		if err != nil {
			return err
		}
		inv, err = tx.CreateInvitation(ctx, storage.CreateInvitationParams{
			BudgetID:       budgetID,
			SenderID:       actor.UserID,
			RecipientEmail: email,
			Token:          token,
		})
		if err != nil {
			return err
		}

		return s.notifier.Notify(ctx, core.Notification{
			Kind:       core.NotifyInvitation,
			To:         email,
			BudgetName: budget.Name,
			SenderName: actor.Name,
			Link:       s.links.Invitation(token),
		})
	})
	if err != nil {
		return core.Invitation{}, fmt.Errorf("invite to budget: %w", err)
	}

	slog.InfoContext(ctx, "Invitation sent", "budget_id", budgetID, "invitation_id", inv.ID)
	return inv, nil
}

// ListPending returns the pending invitations addressed to the actor.
func (s *InvitationService) ListPending(ctx context.Context, actor core.Identity) ([]core.Invitation, error) {
	return s.storage.Queries().ListPendingInvitations(ctx, actor.Email)
}

// Respond settles a pending invitation addressed to the actor. Accepting
// adds the actor as a member and records it in the budget history. The
// status change, the membership and the history entry commit together or
// not at all; on any failure the invitation stays pending.
func (s *InvitationService) Respond(ctx context.Context, actor core.Identity, invitationID int64, status core.InvitationStatus) (core.Invitation, error) {
	status = core.InvitationStatus(strings.ToLower(strings.TrimSpace(string(status))))
	if !status.Valid() {
		return core.Invitation{}, core.ErrInvalidStatus
	}

	var inv core.Invitation
	err := s.storage.InTx(ctx, func(tx *storage.Tx) error {
		var err error
		inv, err = tx.GetInvitation(ctx, invitationID)
		if err != nil {
			return err
		}
		if inv.RecipientEmail != core.NormalizeEmail(actor.Email) {
			return core.ErrRecipientMismatch
		}
		if inv.Status.Terminal() {
			return core.ErrInvitationNotPending
		}

		if err := tx.RespondToInvitation(ctx, inv.ID, status); err != nil {
			return err
		}

		if status == core.InvitationAccepted {
			if err := tx.AddMembership(ctx, actor.UserID, inv.BudgetID, core.RoleMember); err != nil {
				return err
			}
			if err := tx.AppendHistory(ctx, core.HistoryEntry{
				BudgetID:   inv.BudgetID,
				UserID:     actor.UserID,
				EntityType: core.EntityBudget,
				EntityID:   inv.BudgetID,
				Action:     core.ActionUpdate,
				Details:    detailsMemberJoined,
			}); err != nil {
				return err
			}
		}

		inv, err = tx.GetInvitation(ctx, inv.ID)
		return err
	})
	if err != nil {
		return core.Invitation{}, fmt.Errorf("respond to invitation: %w", err)
	}

	slog.InfoContext(ctx, "Invitation answered",
		"invitation_id", inv.ID, "budget_id", inv.BudgetID, "status", inv.Status)
	return inv, nil
}
