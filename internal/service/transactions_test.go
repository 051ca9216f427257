package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"money-manager-backend/internal/models"
)

func TestCreateTransaction(t *testing.T) {
	service := NewTransactionsService(nil)
	ctx := testContext(testUserID)

	created, err := service.CreateTransaction(ctx, models.CreateTransactionRequest{
		Wallet:    "wallet-1",
		Category:  "category-1",
		Amount:    99.5,
		Status:    models.StatusExpense,
		CreatedAt: "2021-06-30",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "wallet-1", created.Wallet)
	assert.InDelta(t, 99.5, created.Amount, 1e-9)
	assert.Equal(t, "2021-06-30", created.CreatedAt.Format(models.DateLayout))

	stored, err := service.GetTransaction(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, *created, stored)
}

func TestCreateTransactionDefaultsDateToToday(t *testing.T) {
	service := NewTransactionsService(nil)

	created, err := service.CreateTransaction(testContext(testUserID), models.CreateTransactionRequest{
		Wallet:   "wallet-1",
		Category: "category-1",
		Amount:   10,
		Status:   models.StatusIncome,
	})
	require.NoError(t, err)

	now := time.Now()
	assert.Equal(t, now.Format(models.DateLayout), created.CreatedAt.Format(models.DateLayout))
}

func TestCreateTransactionValidation(t *testing.T) {
	service := NewTransactionsService(nil)
	ctx := testContext(testUserID)

	testCases := []struct {
		name string
		req  models.CreateTransactionRequest
	}{
		{
			name: "negative amount",
			req:  models.CreateTransactionRequest{Wallet: "w", Category: "c", Amount: -1, Status: models.StatusIncome},
		},
		{
			name: "unknown status",
			req:  models.CreateTransactionRequest{Wallet: "w", Category: "c", Amount: 1, Status: "transfer"},
		},
		{
			name: "missing wallet",
			req:  models.CreateTransactionRequest{Category: "c", Amount: 1, Status: models.StatusIncome},
		},
		{
			name: "missing category",
			req:  models.CreateTransactionRequest{Wallet: "w", Amount: 1, Status: models.StatusIncome},
		},
		{
			name: "garbage date",
			req:  models.CreateTransactionRequest{Wallet: "w", Category: "c", Amount: 1, Status: models.StatusIncome, CreatedAt: "31.01.2021"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.CreateTransaction(ctx, tc.req)
			assert.ErrorIs(t, err, models.ErrBadRequest)
		})
	}
}

func TestFindTransactionsFilters(t *testing.T) {
	service := NewTransactionsService(map[string]map[string]models.Transaction{
		testUserID: {
			"tx-1": walletTx(t, "wallet-1", "category-1", models.StatusIncome, 100, "2021-01-10"),
			"tx-2": walletTx(t, "wallet-1", "category-2", models.StatusExpense, 40, "2021-01-15"),
			"tx-3": walletTx(t, "wallet-2", "category-2", models.StatusExpense, 5, "2021-01-15"),
		},
	})
	ctx := testContext(testUserID)

	all, err := service.FindTransactions(ctx, models.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	// Новые сначала
	assert.Equal(t, "2021-01-15", all[0].CreatedAt.Format(models.DateLayout))

	byWallet, err := service.FindTransactions(ctx, models.TransactionFilter{Wallet: "wallet-2"})
	require.NoError(t, err)
	require.Len(t, byWallet, 1)
	assert.InDelta(t, 5, byWallet[0].Amount, 1e-9)

	byStatus, err := service.FindTransactions(ctx, models.TransactionFilter{Status: models.StatusExpense})
	require.NoError(t, err)
	assert.Len(t, byStatus, 2)

	byDate, err := service.FindTransactions(ctx, models.TransactionFilter{CreatedAt: mustDate(t, "2021-01-10")})
	require.NoError(t, err)
	require.Len(t, byDate, 1)
	assert.Equal(t, models.StatusIncome, byDate[0].Status)

	_, err = service.FindTransactions(ctx, models.TransactionFilter{Status: "transfer"})
	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestFindTransactionsIsolatesUsers(t *testing.T) {
	service := NewTransactionsService(map[string]map[string]models.Transaction{
		testUserID: {
			"tx-1": walletTx(t, "wallet-1", "category-1", models.StatusIncome, 100, "2021-01-10"),
		},
	})

	transactions, err := service.FindTransactions(testContext("another-user"), models.TransactionFilter{})
	require.NoError(t, err)
	assert.Empty(t, transactions)
}

func TestUpdateTransaction(t *testing.T) {
	service := NewTransactionsService(map[string]map[string]models.Transaction{
		testUserID: {
			"tx-1": walletTx(t, "wallet-1", "category-1", models.StatusIncome, 100, "2021-01-10"),
		},
	})
	ctx := testContext(testUserID)

	updated, err := service.UpdateTransaction(ctx, "tx-1", models.CreateTransactionRequest{
		Wallet:    "wallet-1",
		Category:  "category-1",
		Amount:    150,
		Status:    models.StatusIncome,
		CreatedAt: "2021-01-11",
	})
	require.NoError(t, err)
	assert.Equal(t, "tx-1", updated.ID)
	assert.InDelta(t, 150, updated.Amount, 1e-9)

	_, err = service.UpdateTransaction(ctx, "missing", models.CreateTransactionRequest{
		Wallet:   "wallet-1",
		Category: "category-1",
		Amount:   1,
		Status:   models.StatusIncome,
	})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDeleteTransaction(t *testing.T) {
	service := NewTransactionsService(map[string]map[string]models.Transaction{
		testUserID: {
			"tx-1": walletTx(t, "wallet-1", "category-1", models.StatusIncome, 100, "2021-01-10"),
		},
	})
	ctx := testContext(testUserID)

	require.NoError(t, service.DeleteTransaction(ctx, "tx-1"))

	_, err := service.GetTransaction(ctx, "tx-1")
	assert.ErrorIs(t, err, models.ErrNotFound)

	assert.ErrorIs(t, service.DeleteTransaction(ctx, "tx-1"), models.ErrNotFound)
}

func TestDeleteByWalletAndCategory(t *testing.T) {
	service := NewTransactionsService(map[string]map[string]models.Transaction{
		testUserID: {
			"tx-1": walletTx(t, "wallet-1", "category-1", models.StatusIncome, 100, "2021-01-10"),
			"tx-2": walletTx(t, "wallet-1", "category-2", models.StatusExpense, 40, "2021-01-15"),
			"tx-3": walletTx(t, "wallet-2", "category-2", models.StatusExpense, 5, "2021-01-15"),
		},
	})
	ctx := testContext(testUserID)

	require.NoError(t, service.DeleteByWallet(ctx, "wallet-1"))

	remaining, err := service.FindTransactions(ctx, models.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "wallet-2", remaining[0].Wallet)

	require.NoError(t, service.DeleteByCategory(ctx, "category-2"))

	remaining, err = service.FindTransactions(ctx, models.TransactionFilter{})
	require.NoError(t, err)
	assert.Empty(t, remaining)
}
