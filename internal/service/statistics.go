package service

import (
	"context"
	"fmt"
	"time"

	"money-manager-backend/internal/models"
)

type TransactionsProvider interface {
	FindTransactions(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, error)
}

type WalletsProvider interface {
	GetWallet(ctx context.Context, id string) (models.Wallet, error)
	ListWallets(ctx context.Context) ([]models.Wallet, error)
}

type CategoriesProvider interface {
	GetCategory(ctx context.Context, id string) (models.Category, error)
}

// StatisticsService сводит историю транзакций пользователя в агрегаты для
// графиков. Сервис не хранит состояния: каждый вызов заново получает данные
// у коллабораторов и сворачивает их редьюсерами из aggregate.go.
type StatisticsService struct {
	transactionsService TransactionsProvider
	walletsService      WalletsProvider
	categoriesService   CategoriesProvider
}

func NewStatisticsService(
	transactionsService TransactionsProvider,
	walletsService WalletsProvider,
	categoriesService CategoriesProvider,
) *StatisticsService {
	return &StatisticsService{
		transactionsService: transactionsService,
		walletsService:      walletsService,
		categoriesService:   categoriesService,
	}
}

// GetWalletStats считает сводку по одному кошельку: суммы, доли, разницу и
// остаток remain = balance + difference.
func (ss *StatisticsService) GetWalletStats(ctx context.Context, walletID string) (*models.WalletStats, error) {
	wallet, err := ss.walletsService.GetWallet(ctx, walletID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	transactions, err := ss.transactionsService.FindTransactions(ctx, models.TransactionFilter{Wallet: walletID})
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}

	if len(transactions) == 0 {
		return nil, fmt.Errorf("%w: no statistics for current wallet", models.ErrNotFound)
	}

	incomes, expenses := partitionByStatus(transactions)

	income := sumAmounts(incomes)
	expense := sumAmounts(expenses)
	rates := calculateRates(income, expense)

	return &models.WalletStats{
		ID:          wallet.ID,
		Name:        wallet.Name,
		Icon:        wallet.Icon,
		IconColor:   wallet.IconColor,
		Income:      income,
		Expense:     expense,
		IncomeRate:  models.Rate(rates.incomeRate),
		ExpenseRate: models.Rate(rates.expenseRate),
		Difference:  rates.difference,
		Balance:     wallet.Balance,
		Remain:      wallet.Balance + rates.difference,
	}, nil
}

// GetWallets возвращает кошельки пользователя с балансом, восстановленным
// свёрткой всей истории транзакций поверх базового баланса.
func (ss *StatisticsService) GetWallets(ctx context.Context) ([]models.Wallet, error) {
	wallets, err := ss.walletsService.ListWallets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallets: %w", err)
	}

	if len(wallets) == 0 {
		return nil, fmt.Errorf("%w: no wallets information", models.ErrNotFound)
	}

	reconstructed := make([]models.Wallet, 0, len(wallets))

	for _, wallet := range wallets {
		wallet, err := ss.ReconstructWalletBalance(ctx, wallet)
		if err != nil {
			return nil, err
		}

		reconstructed = append(reconstructed, wallet)
	}

	return reconstructed, nil
}

// ReconstructWalletBalance возвращает кошелёк с текущим балансом. Пустая
// история оставляет базовый баланс без изменений.
func (ss *StatisticsService) ReconstructWalletBalance(ctx context.Context, wallet models.Wallet) (models.Wallet, error) {
	transactions, err := ss.transactionsService.FindTransactions(ctx, models.TransactionFilter{Wallet: wallet.ID})
	if err != nil {
		return models.Wallet{}, fmt.Errorf("failed to get wallet transactions: %w", err)
	}

	wallet.Balance = reconstructBalance(wallet.Balance, transactions)

	return wallet, nil
}

// GetMonthlyStats считает сводку доходов и расходов за календарный месяц.
func (ss *StatisticsService) GetMonthlyStats(ctx context.Context, year int, month time.Month) (*models.MonthlyStats, error) {
	transactions, err := ss.transactionsService.FindTransactions(ctx, models.TransactionFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}

	periodTransactions := filterByPeriod(transactions, year, month)
	if len(periodTransactions) == 0 {
		return nil, fmt.Errorf("%w: no monthly statistics", models.ErrNotFound)
	}

	incomes, expenses := partitionByStatus(periodTransactions)

	income := sumAmounts(incomes)
	expense := sumAmounts(expenses)
	rates := calculateRates(income, expense)

	return &models.MonthlyStats{
		Income:      income,
		Expense:     expense,
		IncomeRate:  models.Rate(rates.incomeRate),
		ExpenseRate: models.Rate(rates.expenseRate),
		Difference:  rates.difference,
	}, nil
}

// GetAnnualStats строит плотный ряд из 12 помесячных записей за год.
func (ss *StatisticsService) GetAnnualStats(ctx context.Context, year int) ([]models.AnnualStat, error) {
	transactions, err := ss.transactionsService.FindTransactions(ctx, models.TransactionFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}

	yearTransactions := filterByPeriod(transactions, year, 0)
	if len(yearTransactions) == 0 {
		return nil, fmt.Errorf("%w: no statistics for requested year", models.ErrNotFound)
	}

	byMonth := make(map[time.Month]monthTotals)

	for _, transaction := range yearTransactions {
		totals := byMonth[transaction.CreatedAt.Month()]

		if transaction.Status == models.StatusIncome {
			totals.income += transaction.Amount
		} else {
			totals.expense += transaction.Amount
		}

		byMonth[transaction.CreatedAt.Month()] = totals
	}

	return buildAnnualSeries(byMonth), nil
}

// GetCategoryStats группирует транзакции выбранного типа за месяц по
// категориям: полный список statsList и свёрнутый вид top-3 + "Others".
func (ss *StatisticsService) GetCategoryStats(ctx context.Context, year int, month time.Month, categoryType string) (*models.CategoryStatsResponse, error) {
	if err := models.ValidateCategoryType(categoryType); err != nil {
		return nil, err
	}

	transactions, err := ss.transactionsService.FindTransactions(ctx, models.TransactionFilter{Status: categoryType})
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}

	periodTransactions := filterByPeriod(transactions, year, month)
	if len(periodTransactions) == 0 {
		return nil, fmt.Errorf("%w: no %s statistics", models.ErrNotFound, categoryType)
	}

	amountByCategory := make(map[string]float64)
	for _, transaction := range periodTransactions {
		amountByCategory[transaction.Category] += transaction.Amount
	}

	var total float64
	for _, amount := range amountByCategory {
		total += amount
	}

	statsList := make([]models.CategoryStat, 0, len(amountByCategory))

	for categoryID, amount := range amountByCategory {
		category, err := ss.categoriesService.GetCategory(ctx, categoryID)
		if err != nil {
			return nil, fmt.Errorf("failed to get category %s: %w", categoryID, err)
		}

		statsList = append(statsList, models.CategoryStat{
			ID:        category.ID,
			Name:      category.Name,
			Icon:      category.Icon,
			IconColor: category.IconColor,
			Amount:    amount,
			Percent:   models.Rate(round2(amount / total * 100)),
			Total:     total,
		})
	}

	sortCategoryStats(statsList)

	return &models.CategoryStatsResponse{
		StatsList: statsList,
		Stats: models.CategoryStatsSummary{
			Total:         total,
			CategoryStats: rankCategories(statsList, total),
		},
	}, nil
}

// GetCategory возвращает категорию вместе с суммой всех её транзакций.
func (ss *StatisticsService) GetCategory(ctx context.Context, id string) (*models.CategoryWithAmount, error) {
	category, err := ss.categoriesService.GetCategory(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	transactions, err := ss.transactionsService.FindTransactions(ctx, models.TransactionFilter{Category: id})
	if err != nil {
		return nil, fmt.Errorf("failed to get category transactions: %w", err)
	}

	return &models.CategoryWithAmount{
		Category: category,
		Amount:   sumAmounts(transactions),
	}, nil
}
