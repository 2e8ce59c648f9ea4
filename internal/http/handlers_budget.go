package http

import (
	"net/http"
	"strconv"

	"budgetplanner/internal/core"
	"budgetplanner/internal/log"
)

type budgetRequest struct {
	Name     string `json:"name"`
	Currency string `json:"currency"`
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request, actor core.Identity) {
	var req budgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	budget, err := s.svc.Budgets.CreateBudget(r.Context(), actor, req.Name, req.Currency)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.events.LogMutation(r.Context(), log.ComponentBudget, log.OpCreate, actor.UserID, budget.ID, string(core.EntityBudget), budget.ID)

	_ = NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/budgets/"+strconv.FormatInt(budget.ID, 10)).
		Body(budget).
		Write(w)
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request, actor core.Identity) {
	budgets, err := s.svc.Budgets.ListBudgets(r.Context(), actor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	_ = NewJSONResponse().Body(listOf(budgets)).Write(w)
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request, actor core.Identity) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	budget, err := s.svc.Budgets.GetBudget(r.Context(), actor, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	_ = NewJSONResponse().Body(budget).Write(w)
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request, actor core.Identity) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req budgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	budget, err := s.svc.Budgets.UpdateBudget(r.Context(), actor, id, req.Name, req.Currency)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.events.LogMutation(r.Context(), log.ComponentBudget, log.OpUpdate, actor.UserID, id, string(core.EntityBudget), id)

	_ = NewJSONResponse().Body(budget).Write(w)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request, actor core.Identity) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.svc.Budgets.DeleteBudget(r.Context(), actor, id); err != nil {
		writeError(w, r, err)
		return
	}
	s.events.LogMutation(r.Context(), log.ComponentBudget, log.OpDelete, actor.UserID, id, string(core.EntityBudget), id)

	_ = NewJSONResponse().Message("budget deleted").Write(w)
}

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request, actor core.Identity) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	members, err := s.svc.Budgets.ListMembers(r.Context(), actor, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	_ = NewJSONResponse().Body(listOf(members)).Write(w)
}

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request, actor core.Identity) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	entries, err := s.svc.History.ListHistory(r.Context(), actor, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	_ = NewJSONResponse().Body(listOf(entries)).Write(w)
}
