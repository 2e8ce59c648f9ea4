package http

import (
	"fmt"
	"net/http"
	"strings"

	"budgetplanner/internal/core"
	"budgetplanner/internal/log"
)

type inviteRequest struct {
	Email string `json:"email"`
}

type respondRequest struct {
	Status string `json:"status"`
}

type invitationResponse struct {
	Message    string          `json:"message"`
	Invitation core.Invitation `json:"invitation"`
}

func (s *Server) handleInvite(w http.ResponseWriter, r *http.Request, actor core.Identity) {
	budgetID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req inviteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	inv, err := s.svc.Invitations.Invite(r.Context(), actor, budgetID, req.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.events.LogMutation(r.Context(), log.ComponentInvitation, log.OpInvite, actor.UserID, budgetID, "INVITATION", inv.ID)

	_ = NewJSONResponse().Body(invitationResponse{
		Message:    fmt.Sprintf("invitation sent to %s", inv.RecipientEmail),
		Invitation: inv,
	}).Write(w)
}

func (s *Server) handleListInvitations(w http.ResponseWriter, r *http.Request, actor core.Identity) {
	invitations, err := s.svc.Invitations.ListPending(r.Context(), actor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	_ = NewJSONResponse().Body(listOf(invitations)).Write(w)
}

func (s *Server) handleRespondInvitation(w http.ResponseWriter, r *http.Request, actor core.Identity) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req respondRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	inv, err := s.svc.Invitations.Respond(r.Context(), actor, id, core.InvitationStatus(strings.TrimSpace(req.Status)))
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.events.LogMutation(r.Context(), log.ComponentInvitation, log.OpRespond, actor.UserID, inv.BudgetID, "INVITATION", inv.ID)

	_ = NewJSONResponse().Body(invitationResponse{
		Message:    fmt.Sprintf("invitation %s", inv.Status),
		Invitation: inv,
	}).Write(w)
}
