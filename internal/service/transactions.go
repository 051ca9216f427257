package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"money-manager-backend/internal/models"
)

type TransactionsService struct {
	transactions map[string]map[string]models.Transaction // userID -> transactionID -> transaction
	mux          sync.RWMutex
}

func NewTransactionsService(initialData map[string]map[string]models.Transaction) *TransactionsService {
	ts := &TransactionsService{}

	if initialData != nil {
		ts.transactions = initialData
	} else {
		ts.transactions = make(map[string]map[string]models.Transaction)
	}

	return ts
}

// FindTransactions возвращает транзакции пользователя, подходящие под фильтр.
// Порядок детерминированный: новые сначала, при равных датах - по id.
func (ts *TransactionsService) FindTransactions(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, error) {
	userID := models.ClaimsFromContext(ctx).ID

	if filter.Status != "" {
		if err := models.ValidateTransactionStatus(filter.Status); err != nil {
			return nil, err
		}
	}

	ts.mux.RLock()
	defer ts.mux.RUnlock()

	userTransactions, exists := ts.transactions[userID]
	if !exists {
		return []models.Transaction{}, nil
	}

	filtered := make([]models.Transaction, 0, len(userTransactions))

	for _, transaction := range userTransactions {
		if filter.Wallet != "" && transaction.Wallet != filter.Wallet {
			continue
		}

		if filter.Category != "" && transaction.Category != filter.Category {
			continue
		}

		if filter.Status != "" && transaction.Status != filter.Status {
			continue
		}

		if !filter.CreatedAt.IsZero() && !transaction.CreatedAt.Equal(filter.CreatedAt.Time) {
			continue
		}

		filtered = append(filtered, transaction)
	}

	sort.Slice(filtered, func(i, j int) bool {
		if !filtered[i].CreatedAt.Equal(filtered[j].CreatedAt.Time) {
			return filtered[i].CreatedAt.After(filtered[j].CreatedAt.Time)
		}

		return filtered[i].ID < filtered[j].ID
	})

	return filtered, nil
}

func (ts *TransactionsService) GetTransaction(ctx context.Context, id string) (models.Transaction, error) {
	userID := models.ClaimsFromContext(ctx).ID

	ts.mux.RLock()
	defer ts.mux.RUnlock()

	transaction, exists := ts.transactions[userID][id]
	if !exists {
		return models.Transaction{}, fmt.Errorf("%w: no transaction information", models.ErrNotFound)
	}

	return transaction, nil
}

func (ts *TransactionsService) CreateTransaction(ctx context.Context, req models.CreateTransactionRequest) (*models.Transaction, error) {
	userID := models.ClaimsFromContext(ctx).ID

	transaction, err := ts.buildTransaction(req)
	if err != nil {
		return nil, err
	}

	transaction.ID = uuid.New().String()

	ts.mux.Lock()
	defer ts.mux.Unlock()

	if ts.transactions[userID] == nil {
		ts.transactions[userID] = make(map[string]models.Transaction)
	}

	ts.transactions[userID][transaction.ID] = transaction

	return &transaction, nil
}

func (ts *TransactionsService) UpdateTransaction(ctx context.Context, id string, req models.CreateTransactionRequest) (*models.Transaction, error) {
	userID := models.ClaimsFromContext(ctx).ID

	transaction, err := ts.buildTransaction(req)
	if err != nil {
		return nil, err
	}

	ts.mux.Lock()
	defer ts.mux.Unlock()

	if _, exists := ts.transactions[userID][id]; !exists {
		return nil, fmt.Errorf("%w: no transaction information", models.ErrNotFound)
	}

	transaction.ID = id
	ts.transactions[userID][id] = transaction

	return &transaction, nil
}

func (ts *TransactionsService) DeleteTransaction(ctx context.Context, id string) error {
	userID := models.ClaimsFromContext(ctx).ID

	ts.mux.Lock()
	defer ts.mux.Unlock()

	userTransactions, exists := ts.transactions[userID]
	if !exists {
		return fmt.Errorf("%w: no transaction information", models.ErrNotFound)
	}

	if _, exists := userTransactions[id]; !exists {
		return fmt.Errorf("%w: no transaction information", models.ErrNotFound)
	}

	delete(userTransactions, id)

	return nil
}

// DeleteByWallet удаляет все транзакции кошелька. Явный шаг каскадного
// удаления: кошелёк и его транзакции убираются одной согласованной операцией.
func (ts *TransactionsService) DeleteByWallet(ctx context.Context, walletID string) error {
	userID := models.ClaimsFromContext(ctx).ID

	ts.mux.Lock()
	defer ts.mux.Unlock()

	for id, transaction := range ts.transactions[userID] {
		if transaction.Wallet == walletID {
			delete(ts.transactions[userID], id)
		}
	}

	return nil
}

// DeleteByCategory удаляет все транзакции категории, см. DeleteByWallet.
func (ts *TransactionsService) DeleteByCategory(ctx context.Context, categoryID string) error {
	userID := models.ClaimsFromContext(ctx).ID

	ts.mux.Lock()
	defer ts.mux.Unlock()

	for id, transaction := range ts.transactions[userID] {
		if transaction.Category == categoryID {
			delete(ts.transactions[userID], id)
		}
	}

	return nil
}

func (ts *TransactionsService) buildTransaction(req models.CreateTransactionRequest) (models.Transaction, error) {
	if err := models.ValidateAmount(req.Amount); err != nil {
		return models.Transaction{}, err
	}

	if err := models.ValidateTransactionStatus(req.Status); err != nil {
		return models.Transaction{}, err
	}

	if req.Wallet == "" {
		return models.Transaction{}, fmt.Errorf("%w: wallet belongs to transaction is required", models.ErrBadRequest)
	}

	if req.Category == "" {
		return models.Transaction{}, fmt.Errorf("%w: category must be specified", models.ErrBadRequest)
	}

	// Дата транзакции хранится с точностью до дня; по умолчанию - сегодня
	createdAt := models.NewDate(time.Now())

	if req.CreatedAt != "" {
		parsed, err := models.ParseDate(req.CreatedAt)
		if err != nil {
			return models.Transaction{}, fmt.Errorf("%w: invalid date format: %w", models.ErrBadRequest, err)
		}

		createdAt = parsed
	}

	return models.Transaction{
		Wallet:    req.Wallet,
		Category:  req.Category,
		Amount:    req.Amount,
		Status:    req.Status,
		CreatedAt: createdAt,
	}, nil
}

// GetBackupData возвращает данные для бэкапа
func (ts *TransactionsService) GetBackupData() interface{} {
	ts.mux.RLock()
	defer ts.mux.RUnlock()

	backupData := make(map[string]map[string]models.Transaction, len(ts.transactions))
	for userID, transactions := range ts.transactions {
		userBackup := make(map[string]models.Transaction, len(transactions))
		for transactionID, transaction := range transactions {
			userBackup[transactionID] = transaction
		}
		backupData[userID] = userBackup
	}

	return backupData
}

// GetBackupFileName возвращает имя файла для бэкапа
func (ts *TransactionsService) GetBackupFileName() string {
	return "transactions"
}
