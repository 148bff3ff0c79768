package service

import (
	"encoding/json"
	"math"
	"net/http"

	"github.com/google/uuid"

	"github.com/ohmnow/finsight/backend/internal/auth"
	"github.com/ohmnow/finsight/backend/internal/model"
)

// handleCreateTransaction stores a new transaction for the caller.
func (s *InsightsService) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.RequireAuth(r.Context())
	if err != nil {
		s.writeErr(w, err)
		return
	}

	var txn model.Transaction
	if err := json.NewDecoder(r.Body).Decode(&txn); err != nil {
		s.writeErr(w, badRequest("invalid transaction body: %v", err))
		return
	}
	if math.IsNaN(txn.Amount) || math.IsInf(txn.Amount, 0) {
		s.writeErr(w, badRequest("amount must be a finite number"))
		return
	}
	if txn.Date.IsZero() {
		s.writeErr(w, badRequest("date is required"))
		return
	}

	txn.UserID = claims.UID
	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}

	if err := s.store.CreateTransaction(r.Context(), &txn); err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, txn)
}

func (s *InsightsService) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.RequireAuth(r.Context())
	if err != nil {
		s.writeErr(w, err)
		return
	}

	startDate, endDate, err := parseDateRange(r)
	if err != nil {
		s.writeErr(w, err)
		return
	}

	txns, nextToken, err := s.store.ListTransactions(r.Context(), claims.UID, startDate, endDate, listPageSize, r.URL.Query().Get("pageToken"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"transactions":  txns,
		"nextPageToken": nextToken,
	})
}

func (s *InsightsService) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.RequireAuth(r.Context())
	if err != nil {
		s.writeErr(w, err)
		return
	}

	txn, err := s.store.GetTransaction(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	if txn.UserID != claims.UID {
		s.writeJSON(w, http.StatusForbidden, map[string]string{"error": "cannot access another user's transaction"})
		return
	}
	s.writeJSON(w, http.StatusOK, txn)
}

func (s *InsightsService) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.RequireAuth(r.Context())
	if err != nil {
		s.writeErr(w, err)
		return
	}

	txn, err := s.store.GetTransaction(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	if txn.UserID != claims.UID {
		s.writeJSON(w, http.StatusForbidden, map[string]string{"error": "cannot delete another user's transaction"})
		return
	}

	if err := s.store.DeleteTransaction(r.Context(), txn.ID); err != nil {
		s.writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Budget handlers

func (s *InsightsService) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.RequireAuth(r.Context())
	if err != nil {
		s.writeErr(w, err)
		return
	}

	var budget model.Budget
	if err := json.NewDecoder(r.Body).Decode(&budget); err != nil {
		s.writeErr(w, badRequest("invalid budget body: %v", err))
		return
	}
	if budget.Category == "" {
		s.writeErr(w, badRequest("category is required"))
		return
	}

	budget.UserID = claims.UID
	if budget.ID == "" {
		budget.ID = uuid.New().String()
	}

	if err := s.store.CreateBudget(r.Context(), &budget); err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, budget)
}

func (s *InsightsService) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.RequireAuth(r.Context())
	if err != nil {
		s.writeErr(w, err)
		return
	}

	budgets, nextToken, err := s.store.ListBudgets(r.Context(), claims.UID, listPageSize, r.URL.Query().Get("pageToken"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"budgets":       budgets,
		"nextPageToken": nextToken,
	})
}

func (s *InsightsService) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.RequireAuth(r.Context())
	if err != nil {
		s.writeErr(w, err)
		return
	}

	budget, err := s.store.GetBudget(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	if budget.UserID != claims.UID {
		s.writeJSON(w, http.StatusForbidden, map[string]string{"error": "cannot delete another user's budget"})
		return
	}

	if err := s.store.DeleteBudget(r.Context(), budget.ID); err != nil {
		s.writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
