package store

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ohmnow/finsight/backend/internal/model"
)

const (
	transactionsCollection = "transactions"
	budgetsCollection      = "budgets"
)

// FirestoreStore implements the Store interface using Firestore.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates a new Firestore-backed store.
func NewFirestoreStore(client *firestore.Client) Store {
	return &FirestoreStore{client: client}
}

// applyDateAwarePagination handles pagination for queries with date range
// filters. Firestore requires OrderBy on inequality fields first, so we use
// OrderBy("Date") + OrderBy(__name__) and a composite StartAfter cursor.
func (s *FirestoreStore) applyDateAwarePagination(ctx context.Context, query firestore.Query, collection string, pageSize int32, pageToken string) (firestore.Query, error) {
	query = query.OrderBy("Date", firestore.Asc).OrderBy(firestore.DocumentID, firestore.Asc)

	if pageToken != "" {
		docID, err := DecodePageToken(pageToken)
		if err != nil {
			return query, fmt.Errorf("invalid page token: %w", err)
		}
		cursorDoc, err := s.client.Collection(collection).Doc(docID).Get(ctx)
		if err != nil {
			return query, fmt.Errorf("failed to fetch cursor document: %w", err)
		}
		dateVal := cursorDoc.Data()["Date"]
		query = query.StartAfter(dateVal, docID)
	}

	if pageSize <= 0 {
		pageSize = 100
	}
	query = query.Limit(int(pageSize) + 1)
	return query, nil
}

// applyCursorPagination adds OrderBy + StartAfter + Limit to a query.
// It fetches pageSize+1 docs so the caller can detect whether a next page
// exists.
func (s *FirestoreStore) applyCursorPagination(query firestore.Query, pageSize int32, pageToken string) (firestore.Query, error) {
	query = query.OrderBy(firestore.DocumentID, firestore.Asc)

	if pageToken != "" {
		docID, err := DecodePageToken(pageToken)
		if err != nil {
			return query, fmt.Errorf("invalid page token: %w", err)
		}
		query = query.StartAfter(docID)
	}

	if pageSize <= 0 {
		pageSize = 100
	}
	query = query.Limit(int(pageSize) + 1)
	return query, nil
}

// Transaction operations

func (s *FirestoreStore) CreateTransaction(ctx context.Context, txn *model.Transaction) error {
	_, err := s.client.Collection(transactionsCollection).Doc(txn.ID).Set(ctx, txn)
	return err
}

func (s *FirestoreStore) GetTransaction(ctx context.Context, txnID string) (*model.Transaction, error) {
	doc, err := s.client.Collection(transactionsCollection).Doc(txnID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	var txn model.Transaction
	if err := doc.DataTo(&txn); err != nil {
		return nil, fmt.Errorf("failed to parse transaction: %w", err)
	}
	return &txn, nil
}

func (s *FirestoreStore) DeleteTransaction(ctx context.Context, txnID string) error {
	_, err := s.client.Collection(transactionsCollection).Doc(txnID).Delete(ctx)
	return err
}

func (s *FirestoreStore) ListTransactions(ctx context.Context, userID string, startDate, endDate *time.Time, pageSize int32, pageToken string) ([]model.Transaction, string, error) {
	query := s.client.Collection(transactionsCollection).Query

	// NOTE: Field names must match the firestore struct tags on the model.
	if userID != "" {
		query = query.Where("UserId", "==", userID)
	}
	hasDateFilter := startDate != nil || endDate != nil
	if startDate != nil {
		query = query.Where("Date", ">=", *startDate)
	}
	if endDate != nil {
		query = query.Where("Date", "<=", *endDate)
	}

	var err error
	if hasDateFilter {
		query, err = s.applyDateAwarePagination(ctx, query, transactionsCollection, pageSize, pageToken)
	} else {
		query, err = s.applyCursorPagination(query, pageSize, pageToken)
	}
	if err != nil {
		return nil, "", err
	}

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, "", fmt.Errorf("failed to list transactions: %w", err)
	}

	if pageSize <= 0 {
		pageSize = 100
	}

	var nextPageToken string
	if len(docs) > int(pageSize) {
		docs = docs[:pageSize]
		nextPageToken = EncodePageToken(docs[pageSize-1].Ref.ID)
	}

	txns := make([]model.Transaction, 0, len(docs))
	for _, doc := range docs {
		var txn model.Transaction
		if err := doc.DataTo(&txn); err != nil {
			return nil, "", fmt.Errorf("failed to parse transaction: %w", err)
		}
		txns = append(txns, txn)
	}
	return txns, nextPageToken, nil
}

// Budget operations

func (s *FirestoreStore) CreateBudget(ctx context.Context, budget *model.Budget) error {
	_, err := s.client.Collection(budgetsCollection).Doc(budget.ID).Set(ctx, budget)
	return err
}

func (s *FirestoreStore) GetBudget(ctx context.Context, budgetID string) (*model.Budget, error) {
	doc, err := s.client.Collection(budgetsCollection).Doc(budgetID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get budget: %w", err)
	}
	var budget model.Budget
	if err := doc.DataTo(&budget); err != nil {
		return nil, fmt.Errorf("failed to parse budget: %w", err)
	}
	return &budget, nil
}

func (s *FirestoreStore) DeleteBudget(ctx context.Context, budgetID string) error {
	_, err := s.client.Collection(budgetsCollection).Doc(budgetID).Delete(ctx)
	return err
}

func (s *FirestoreStore) ListBudgets(ctx context.Context, userID string, pageSize int32, pageToken string) ([]model.Budget, string, error) {
	query := s.client.Collection(budgetsCollection).Query
	if userID != "" {
		query = query.Where("UserId", "==", userID)
	}

	query, err := s.applyCursorPagination(query, pageSize, pageToken)
	if err != nil {
		return nil, "", err
	}

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, "", fmt.Errorf("failed to list budgets: %w", err)
	}

	if pageSize <= 0 {
		pageSize = 100
	}

	var nextPageToken string
	if len(docs) > int(pageSize) {
		docs = docs[:pageSize]
		nextPageToken = EncodePageToken(docs[pageSize-1].Ref.ID)
	}

	budgets := make([]model.Budget, 0, len(docs))
	for _, doc := range docs {
		var budget model.Budget
		if err := doc.DataTo(&budget); err != nil {
			return nil, "", fmt.Errorf("failed to parse budget: %w", err)
		}
		budgets = append(budgets, budget)
	}
	return budgets, nextPageToken, nil
}
