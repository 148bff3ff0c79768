// Package service exposes the insights engine and the transaction store over
// a thin JSON HTTP surface. The engine stays a pure library; this package is
// the orchestration glue that pages data out of the store, invokes an
// analysis and renders the result.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ohmnow/finsight/backend/internal/auth"
	"github.com/ohmnow/finsight/backend/internal/insights"
	"github.com/ohmnow/finsight/backend/internal/model"
	"github.com/ohmnow/finsight/backend/internal/store"
)

// listPageSize is the page size used when draining the store.
const listPageSize = 500

// InsightsService serves the five analyses plus transaction and budget CRUD.
type InsightsService struct {
	store  store.Store
	logger *slog.Logger

	// now is injectable so the holiday-savings heuristic is testable.
	now func() time.Time
}

// NewInsightsService creates the service around a store.
func NewInsightsService(st store.Store, logger *slog.Logger) *InsightsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &InsightsService{
		store:  st,
		logger: logger,
		now:    time.Now,
	}
}

// Register attaches all routes to the mux.
func (s *InsightsService) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/insights/recurring", s.handleRecurring)
	mux.HandleFunc("GET /v1/insights/anomalies", s.handleAnomalies)
	mux.HandleFunc("GET /v1/insights/savings", s.handleSavings)
	mux.HandleFunc("GET /v1/insights/merchants", s.handleMerchantClusters)
	mux.HandleFunc("GET /v1/insights/seasonal", s.handleSeasonal)

	mux.HandleFunc("POST /v1/transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /v1/transactions", s.handleListTransactions)
	mux.HandleFunc("GET /v1/transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("DELETE /v1/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("POST /v1/budgets", s.handleCreateBudget)
	mux.HandleFunc("GET /v1/budgets", s.handleListBudgets)
	mux.HandleFunc("DELETE /v1/budgets/{id}", s.handleDeleteBudget)
}

// fetchAllTransactions drains every transaction page for the user inside the
// optional date window.
func (s *InsightsService) fetchAllTransactions(ctx context.Context, userID string, startDate, endDate *time.Time) ([]model.Transaction, error) {
	var all []model.Transaction
	pageToken := ""
	for {
		txns, nextToken, err := s.store.ListTransactions(ctx, userID, startDate, endDate, listPageSize, pageToken)
		if err != nil {
			return nil, fmt.Errorf("list transactions: %w", err)
		}
		all = append(all, txns...)
		if nextToken == "" {
			return all, nil
		}
		pageToken = nextToken
	}
}

// fetchAllBudgets drains every budget page for the user.
func (s *InsightsService) fetchAllBudgets(ctx context.Context, userID string) ([]model.Budget, error) {
	var all []model.Budget
	pageToken := ""
	for {
		budgets, nextToken, err := s.store.ListBudgets(ctx, userID, listPageSize, pageToken)
		if err != nil {
			return nil, fmt.Errorf("list budgets: %w", err)
		}
		all = append(all, budgets...)
		if nextToken == "" {
			return all, nil
		}
		pageToken = nextToken
	}
}

// insightInput resolves the caller's identity and window and loads the
// transaction snapshot the analyses run over.
func (s *InsightsService) insightInput(r *http.Request) (*auth.UserClaims, []model.Transaction, error) {
	claims, err := auth.RequireAuth(r.Context())
	if err != nil {
		return nil, nil, err
	}

	startDate, endDate, err := parseDateRange(r)
	if err != nil {
		return nil, nil, err
	}

	txns, err := s.fetchAllTransactions(r.Context(), claims.UID, startDate, endDate)
	if err != nil {
		return nil, nil, err
	}
	return claims, txns, nil
}

func (s *InsightsService) handleRecurring(w http.ResponseWriter, r *http.Request) {
	_, txns, err := s.insightInput(r)
	if err != nil {
		s.writeErr(w, err)
		return
	}

	patterns := insights.DetectRecurringTransactions(txns)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"patterns": patterns,
		"count":    len(patterns),
	})
}

func (s *InsightsService) handleAnomalies(w http.ResponseWriter, r *http.Request) {
	_, txns, err := s.insightInput(r)
	if err != nil {
		s.writeErr(w, err)
		return
	}

	anomalies := insights.DetectAnomalies(txns)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"anomalies": anomalies,
		"count":     len(anomalies),
	})
}

func (s *InsightsService) handleSavings(w http.ResponseWriter, r *http.Request) {
	claims, txns, err := s.insightInput(r)
	if err != nil {
		s.writeErr(w, err)
		return
	}

	budgets, err := s.fetchAllBudgets(r.Context(), claims.UID)
	if err != nil {
		s.writeErr(w, err)
		return
	}

	opportunities := insights.FindSavingsOpportunities(txns, budgets, s.now())
	s.writeJSON(w, http.StatusOK, map[string]any{
		"opportunities": opportunities,
		"count":         len(opportunities),
	})
}

func (s *InsightsService) handleMerchantClusters(w http.ResponseWriter, r *http.Request) {
	_, txns, err := s.insightInput(r)
	if err != nil {
		s.writeErr(w, err)
		return
	}

	clusters := insights.AnalyzeMerchantClusters(txns)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"clusters": clusters,
		"count":    len(clusters),
	})
}

func (s *InsightsService) handleSeasonal(w http.ResponseWriter, r *http.Request) {
	_, txns, err := s.insightInput(r)
	if err != nil {
		s.writeErr(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"profiles": insights.DetectSeasonalPatterns(txns),
		"insights": insights.SeasonalInsights(txns),
	})
}
