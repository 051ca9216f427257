package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"money-manager-backend/internal/models"
)

func newCategoriesFixture(initial map[string]models.Category) (*CategoriesService, *TransactionsService) {
	transactions := NewTransactionsService(nil)

	var data map[string]map[string]models.Category
	if initial != nil {
		data = map[string]map[string]models.Category{testUserID: initial}
	}

	return NewCategoriesService(data, transactions), transactions
}

func TestCreateCategory(t *testing.T) {
	service, _ := newCategoriesFixture(nil)
	ctx := testContext(testUserID)

	created, err := service.CreateCategory(ctx, models.Category{
		Name:      "Food",
		Type:      models.StatusExpense,
		Icon:      "fork",
		IconColor: "#f00",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	stored, err := service.GetCategory(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, *created, stored)
}

func TestCreateCategoryValidation(t *testing.T) {
	service, _ := newCategoriesFixture(nil)
	ctx := testContext(testUserID)

	testCases := []struct {
		name     string
		category models.Category
	}{
		{name: "empty name", category: models.Category{Type: models.StatusExpense, Icon: "x", IconColor: "#000"}},
		{name: "unknown type", category: models.Category{Name: "Food", Type: "other", Icon: "x", IconColor: "#000"}},
		{name: "missing icon", category: models.Category{Name: "Food", Type: models.StatusExpense, IconColor: "#000"}},
		{name: "missing icon color", category: models.Category{Name: "Food", Type: models.StatusExpense, Icon: "x"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.CreateCategory(ctx, tc.category)
			assert.ErrorIs(t, err, models.ErrBadRequest)
		})
	}
}

func TestCreateCategoryRejectsDuplicateName(t *testing.T) {
	service, _ := newCategoriesFixture(nil)
	ctx := testContext(testUserID)

	category := models.Category{Name: "Food", Type: models.StatusExpense, Icon: "fork", IconColor: "#f00"}

	_, err := service.CreateCategory(ctx, category)
	require.NoError(t, err)

	_, err = service.CreateCategory(ctx, category)
	assert.ErrorIs(t, err, models.ErrBadRequest)

	// Одно имя в разных типах допустимо
	category.Type = models.StatusIncome
	_, err = service.CreateCategory(ctx, category)
	assert.NoError(t, err)
}

func TestGetCategoriesTypeFilter(t *testing.T) {
	service, _ := newCategoriesFixture(map[string]models.Category{
		"category-1": {ID: "category-1", Name: "Salary", Type: models.StatusIncome, Icon: "coin", IconColor: "#0f0"},
		"category-2": {ID: "category-2", Name: "Food", Type: models.StatusExpense, Icon: "fork", IconColor: "#f00"},
		"category-3": {ID: "category-3", Name: "Transport", Type: models.StatusExpense, Icon: "bus", IconColor: "#00f"},
	})
	ctx := testContext(testUserID)

	all, err := service.GetCategories(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	allExplicit, err := service.GetCategories(ctx, CategoryTypeAll)
	require.NoError(t, err)
	assert.Equal(t, all, allExplicit)

	expenses, err := service.GetCategories(ctx, models.StatusExpense)
	require.NoError(t, err)
	require.Len(t, expenses, 2)
	// Сортировка по типу и имени
	assert.Equal(t, "Food", expenses[0].Name)
	assert.Equal(t, "Transport", expenses[1].Name)

	_, err = service.GetCategories(ctx, "other")
	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestUpdateCategory(t *testing.T) {
	service, _ := newCategoriesFixture(map[string]models.Category{
		"category-1": {ID: "category-1", Name: "Food", Type: models.StatusExpense, Icon: "fork", IconColor: "#f00"},
	})
	ctx := testContext(testUserID)

	updated, err := service.UpdateCategory(ctx, "category-1", models.Category{
		Name:      "Groceries",
		Type:      models.StatusExpense,
		Icon:      "cart",
		IconColor: "#0ff",
	})
	require.NoError(t, err)
	assert.Equal(t, "category-1", updated.ID)
	assert.Equal(t, "Groceries", updated.Name)

	_, err = service.UpdateCategory(ctx, "missing", models.Category{
		Name: "X", Type: models.StatusExpense, Icon: "x", IconColor: "#000",
	})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDeleteCategoryCascadesToTransactions(t *testing.T) {
	service, transactions := newCategoriesFixture(map[string]models.Category{
		"category-1": {ID: "category-1", Name: "Food", Type: models.StatusExpense, Icon: "fork", IconColor: "#f00"},
	})
	ctx := testContext(testUserID)

	_, err := transactions.CreateTransaction(ctx, models.CreateTransactionRequest{
		Wallet:   "wallet-1",
		Category: "category-1",
		Amount:   10,
		Status:   models.StatusExpense,
	})
	require.NoError(t, err)

	require.NoError(t, service.DeleteCategory(ctx, "category-1"))

	_, err = service.GetCategory(ctx, "category-1")
	assert.ErrorIs(t, err, models.ErrNotFound)

	remaining, err := transactions.FindTransactions(ctx, models.TransactionFilter{})
	require.NoError(t, err)
	assert.Empty(t, remaining)
}
