package http

import (
	"net/http"
	"strings"

	"budgetplanner/internal/core"
	"budgetplanner/internal/log"
	"budgetplanner/internal/services"
)

type categoryRequest struct {
	Name          string      `json:"name"`
	MonthlyBudget flexDecimal `json:"monthly_budget"`
}

type transactionRequest struct {
	CategoryID  *int64      `json:"category_id"`
	Amount      flexDecimal `json:"amount"`
	Type        string      `json:"type"`
	Description *string     `json:"description"`
	Date        string      `json:"transaction_date"`
}

func (req transactionRequest) input() (services.TransactionInput, error) {
	date, err := parseOptionalDate("transaction_date", req.Date)
	if err != nil {
		return services.TransactionInput{}, err
	}
	return services.TransactionInput{
		CategoryID:  req.CategoryID,
		Amount:      req.Amount.Ptr(),
		Type:        core.TransactionType(strings.TrimSpace(req.Type)),
		Description: req.Description,
		Date:        date,
	}, nil
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request, actor core.Identity) {
	budgetID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	category, err := s.svc.Categories.CreateCategory(r.Context(), actor, budgetID, req.Name, req.MonthlyBudget.Ptr())
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.events.LogMutation(r.Context(), log.ComponentBudget, log.OpCreate, actor.UserID, budgetID, "CATEGORY", category.ID)

	_ = NewJSONResponse().Status(http.StatusCreated).Body(category).Write(w)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request, actor core.Identity) {
	budgetID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	categories, err := s.svc.Categories.ListCategories(r.Context(), actor, budgetID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	_ = NewJSONResponse().Body(listOf(categories)).Write(w)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request, actor core.Identity) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	category, err := s.svc.Categories.UpdateCategory(r.Context(), actor, id, req.Name, req.MonthlyBudget.Ptr())
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.events.LogMutation(r.Context(), log.ComponentBudget, log.OpUpdate, actor.UserID, category.BudgetID, "CATEGORY", id)

	_ = NewJSONResponse().Body(category).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request, actor core.Identity) {
	budgetID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := req.input()
	if err != nil {
		writeError(w, r, err)
		return
	}

	tx, err := s.svc.Transactions.CreateTransaction(r.Context(), actor, budgetID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.events.LogMutation(r.Context(), log.ComponentTransaction, log.OpCreate, actor.UserID, budgetID, string(core.EntityTransaction), tx.ID)

	_ = NewJSONResponse().Status(http.StatusCreated).Body(tx).Write(w)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request, actor core.Identity) {
	budgetID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	txs, err := s.svc.Transactions.ListTransactions(r.Context(), actor, budgetID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	_ = NewJSONResponse().Body(listOf(txs)).Write(w)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request, actor core.Identity) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := req.input()
	if err != nil {
		writeError(w, r, err)
		return
	}

	tx, err := s.svc.Transactions.UpdateTransaction(r.Context(), actor, id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.events.LogMutation(r.Context(), log.ComponentTransaction, log.OpUpdate, actor.UserID, tx.BudgetID, string(core.EntityTransaction), id)

	_ = NewJSONResponse().Body(tx).Write(w)
}
