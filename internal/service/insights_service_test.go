package service

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ohmnow/finsight/backend/internal/auth"
	"github.com/ohmnow/finsight/backend/internal/model"
	"github.com/ohmnow/finsight/backend/internal/store"
)

type testEnv struct {
	svc   *InsightsService
	mux   *http.ServeMux
	store *store.MemoryStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	st := store.NewMemoryStore()
	svc := NewInsightsService(st, nil)
	mux := http.NewServeMux()
	svc.Register(mux)
	return &testEnv{svc: svc, mux: mux, store: st}
}

// do issues a request as the given user and returns the recorded response.
func (e *testEnv) do(method, target, userID string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if userID != "" {
		req = req.WithContext(auth.WithUserClaims(req.Context(), &auth.UserClaims{UID: userID}))
	}
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) seedTransaction(t *testing.T, userID, description, category string, amount float64, date time.Time) {
	t.Helper()
	err := e.store.CreateTransaction(context.Background(), &model.Transaction{
		UserID:      userID,
		Date:        date,
		Amount:      amount,
		Description: description,
		Category:    category,
	})
	require.NoError(t, err)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestCreateAndGetTransaction(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/v1/transactions", "user-1", map[string]any{
		"date":        "2025-06-01T00:00:00Z",
		"amount":      -42.5,
		"description": "Corner Cafe",
		"category":    "Food",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created model.Transaction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "user-1", created.UserID)

	rec = env.do(http.MethodGet, "/v1/transactions/"+created.ID, "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got model.Transaction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, created, got)
}

func TestCreateTransactionValidation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/v1/transactions", "user-1", map[string]any{
		"amount":      -42.5,
		"description": "Corner Cafe",
		"category":    "Food",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "missing date is rejected")
}

func TestCreateTransactionIgnoresSpoofedUser(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/v1/transactions", "user-1", map[string]any{
		"userId":      "user-2",
		"date":        "2025-06-01T00:00:00Z",
		"amount":      -10,
		"description": "Corner Cafe",
		"category":    "Food",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created model.Transaction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "user-1", created.UserID, "the authenticated identity wins")
}

func TestGetTransactionCrossUserForbidden(t *testing.T) {
	env := newTestEnv(t)
	txn := &model.Transaction{UserID: "user-1", Date: time.Now(), Amount: -10, Description: "Corner Cafe", Category: "Food"}
	require.NoError(t, env.store.CreateTransaction(context.Background(), txn))

	rec := env.do(http.MethodGet, "/v1/transactions/"+txn.ID, "user-2", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(http.MethodDelete, "/v1/transactions/"+txn.ID, "user-2", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDeleteTransaction(t *testing.T) {
	env := newTestEnv(t)
	txn := &model.Transaction{UserID: "user-1", Date: time.Now(), Amount: -10, Description: "Corner Cafe", Category: "Food"}
	require.NoError(t, env.store.CreateTransaction(context.Background(), txn))

	rec := env.do(http.MethodDelete, "/v1/transactions/"+txn.ID, "user-1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(http.MethodGet, "/v1/transactions/"+txn.ID, "user-1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	env := newTestEnv(t)

	paths := []string{
		"/v1/insights/recurring",
		"/v1/insights/anomalies",
		"/v1/insights/savings",
		"/v1/insights/merchants",
		"/v1/insights/seasonal",
		"/v1/transactions",
		"/v1/budgets",
	}
	for _, path := range paths {
		rec := env.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestRecurringInsightsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	for month := 8; month <= 10; month++ {
		env.seedTransaction(t, "user-1", "NETFLIX", "Entertainment", -15.99,
			time.Date(2025, time.Month(month), 1, 0, 0, 0, 0, time.UTC))
	}
	// Another user's identical history must not leak into the result.
	for month := 8; month <= 10; month++ {
		env.seedTransaction(t, "user-2", "NETFLIX", "Entertainment", -15.99,
			time.Date(2025, time.Month(month), 1, 0, 0, 0, 0, time.UTC))
	}

	rec := env.do(http.MethodGet, "/v1/insights/recurring", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.EqualValues(t, 1, body["count"])
	patterns, ok := body["patterns"].([]any)
	require.True(t, ok)
	require.Len(t, patterns, 1)
	pattern := patterns[0].(map[string]any)
	assert.Equal(t, "Netflix", pattern["merchant"])
	assert.Equal(t, "monthly", pattern["frequency"])
}

func TestAnomaliesEndpoint(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 10; i++ {
		env.seedTransaction(t, "user-1", "Corner Cafe", "Food", -40,
			time.Date(2025, 6, 1+i, 0, 0, 0, 0, time.UTC))
	}
	env.seedTransaction(t, "user-1", "Gourmet Bistro", "Food", -200,
		time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC))

	rec := env.do(http.MethodGet, "/v1/insights/anomalies", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.EqualValues(t, 1, body["count"])
}

func TestAnomaliesEndpointDateWindow(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 10; i++ {
		env.seedTransaction(t, "user-1", "Corner Cafe", "Food", -40,
			time.Date(2025, 6, 1+i, 0, 0, 0, 0, time.UTC))
	}
	env.seedTransaction(t, "user-1", "Gourmet Bistro", "Food", -200,
		time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC))

	// A window that excludes the outlier yields no anomalies.
	rec := env.do(http.MethodGet, "/v1/insights/anomalies?start=2025-06-01&end=2025-06-30", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, decodeBody(t, rec)["count"])

	rec = env.do(http.MethodGet, "/v1/insights/anomalies?start=not-a-date", "user-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSavingsEndpointUsesBudgetsAndClock(t *testing.T) {
	env := newTestEnv(t)
	env.svc.now = func() time.Time {
		return time.Date(2025, time.December, 10, 0, 0, 0, 0, time.UTC)
	}

	env.seedTransaction(t, "user-1", "Toy Emporium", "Shopping", -400,
		time.Date(2025, 12, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, env.store.CreateBudget(context.Background(), &model.Budget{
		UserID: "user-1", Category: "Shopping", Amount: 100,
	}))

	rec := env.do(http.MethodGet, "/v1/insights/savings", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	opportunities, ok := body["opportunities"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, opportunities)

	var recommendations []string
	for _, raw := range opportunities {
		opp := raw.(map[string]any)
		recommendations = append(recommendations, opp["recommendation"].(string))
	}
	assert.Condition(t, func() bool {
		for _, r := range recommendations {
			if r == "Spending exceeded your Shopping budget by $300.00. Review recent purchases to get back on track." {
				return true
			}
		}
		return false
	}, "expected a budget-overrun opportunity, got %v", recommendations)

	var holiday bool
	for _, r := range recommendations {
		if strings.HasPrefix(r, "Holiday-season") {
			holiday = true
		}
	}
	assert.True(t, holiday, "the injected December clock enables the holiday heuristic")
}

func TestMerchantClustersEndpoint(t *testing.T) {
	env := newTestEnv(t)
	descriptions := []string{"WHOLE FOODS MARKET #412", "WHOLE FOODS MARKET #412", "WHOLE FOODS MKT"}
	for i, desc := range descriptions {
		env.seedTransaction(t, "user-1", desc, "Food", -60,
			time.Date(2025, 6, 1+i, 0, 0, 0, 0, time.UTC))
	}

	rec := env.do(http.MethodGet, "/v1/insights/merchants", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.EqualValues(t, 1, body["count"])
	clusters, ok := body["clusters"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, clusters, "Whole Foods Market")
}

func TestSeasonalEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.seedTransaction(t, "user-1", "Island Airways", "Travel", -900,
		time.Date(2025, 12, 20, 0, 0, 0, 0, time.UTC))
	env.seedTransaction(t, "user-1", "City Metro", "Travel", -60,
		time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC))

	rec := env.do(http.MethodGet, "/v1/insights/seasonal", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	profiles, ok := body["profiles"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, profiles, "Travel")

	insightList, ok := body["insights"].([]any)
	require.True(t, ok)
	require.Len(t, insightList, 1)
	insight := insightList[0].(map[string]any)
	assert.Equal(t, "December", insight["peakMonth"])
}

func TestBudgetLifecycle(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/v1/budgets", "user-1", map[string]any{
		"category": "Food",
		"amount":   400,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created model.Budget
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "user-1", created.UserID)

	rec = env.do(http.MethodGet, "/v1/budgets", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	budgets, ok := body["budgets"].([]any)
	require.True(t, ok)
	assert.Len(t, budgets, 1)

	rec = env.do(http.MethodDelete, "/v1/budgets/"+created.ID, "user-1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(http.MethodGet, "/v1/budgets", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody(t, rec)
	budgets, ok = body["budgets"].([]any)
	require.True(t, ok)
	assert.Empty(t, budgets)
}

func TestBudgetCreateValidation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/v1/budgets", "user-1", map[string]any{"amount": 100})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "missing category is rejected")
}

func TestListTransactionsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 3; i++ {
		env.seedTransaction(t, "user-1", "Corner Cafe", "Food", -10,
			time.Date(2025, 6, 1+i, 0, 0, 0, 0, time.UTC))
	}
	env.seedTransaction(t, "user-2", "Corner Cafe", "Food", -10,
		time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))

	rec := env.do(http.MethodGet, "/v1/transactions", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	txns, ok := body["transactions"].([]any)
	require.True(t, ok)
	assert.Len(t, txns, 3)
}
