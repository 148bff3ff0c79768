package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ohmnow/finsight/backend/internal/model"
)

// MemoryStore implements Store with in-memory maps. It is used for local
// development and tests.
type MemoryStore struct {
	mu sync.RWMutex

	transactions map[string]*model.Transaction
	budgets      map[string]*model.Budget
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		transactions: make(map[string]*model.Transaction),
		budgets:      make(map[string]*model.Budget),
	}
}

// paginateIDs applies cursor-based pagination to a slice of IDs.
// Returns the paginated IDs and the next page token (empty if no more pages).
func paginateIDs(ids []string, pageSize int32, pageToken string) ([]string, string) {
	if pageSize <= 0 {
		pageSize = 100
	}

	sort.Strings(ids)

	startIdx := 0
	if pageToken != "" {
		cursorID, err := DecodePageToken(pageToken)
		if err == nil {
			startIdx = len(ids)
			for i, id := range ids {
				if id > cursorID {
					startIdx = i
					break
				}
			}
		}
	}
	ids = ids[startIdx:]

	var nextToken string
	if int32(len(ids)) > pageSize {
		nextToken = EncodePageToken(ids[pageSize-1])
		ids = ids[:pageSize]
	}
	return ids, nextToken
}

// Transaction operations

func (m *MemoryStore) CreateTransaction(ctx context.Context, txn *model.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}
	stored := *txn
	m.transactions[txn.ID] = &stored
	return nil
}

func (m *MemoryStore) GetTransaction(ctx context.Context, txnID string) (*model.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	txn, ok := m.transactions[txnID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *txn
	return &copied, nil
}

func (m *MemoryStore) DeleteTransaction(ctx context.Context, txnID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.transactions[txnID]; !ok {
		return ErrNotFound
	}
	delete(m.transactions, txnID)
	return nil
}

func (m *MemoryStore) ListTransactions(ctx context.Context, userID string, startDate, endDate *time.Time, pageSize int32, pageToken string) ([]model.Transaction, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var ids []string
	for id, txn := range m.transactions {
		if userID != "" && txn.UserID != userID {
			continue
		}
		if startDate != nil && txn.Date.Before(*startDate) {
			continue
		}
		if endDate != nil && txn.Date.After(*endDate) {
			continue
		}
		ids = append(ids, id)
	}

	ids, nextToken := paginateIDs(ids, pageSize, pageToken)

	txns := make([]model.Transaction, 0, len(ids))
	for _, id := range ids {
		txns = append(txns, *m.transactions[id])
	}
	return txns, nextToken, nil
}

// Budget operations

func (m *MemoryStore) CreateBudget(ctx context.Context, budget *model.Budget) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if budget.ID == "" {
		budget.ID = uuid.New().String()
	}
	stored := *budget
	m.budgets[budget.ID] = &stored
	return nil
}

func (m *MemoryStore) GetBudget(ctx context.Context, budgetID string) (*model.Budget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	budget, ok := m.budgets[budgetID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *budget
	return &copied, nil
}

func (m *MemoryStore) DeleteBudget(ctx context.Context, budgetID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.budgets[budgetID]; !ok {
		return ErrNotFound
	}
	delete(m.budgets, budgetID)
	return nil
}

func (m *MemoryStore) ListBudgets(ctx context.Context, userID string, pageSize int32, pageToken string) ([]model.Budget, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var ids []string
	for id, budget := range m.budgets {
		if userID != "" && budget.UserID != userID {
			continue
		}
		ids = append(ids, id)
	}

	ids, nextToken := paginateIDs(ids, pageSize, pageToken)

	budgets := make([]model.Budget, 0, len(ids))
	for _, id := range ids {
		budgets = append(budgets, *m.budgets[id])
	}
	return budgets, nextToken, nil
}
