package service

import (
	"math"
	"sort"
	"time"

	"money-manager-backend/internal/models"
)

// Чистые редьюсеры движка статистики: каждый запрос заново сворачивает
// выборку транзакций, никакого состояния между вызовами нет.

// maxVisibleCategories сколько категорий показывается отдельно, остальные
// сворачиваются в "Others".
const maxVisibleCategories = 3

var monthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// reconstructBalance сворачивает транзакции кошелька поверх базового баланса:
// доход прибавляется, расход вычитается.
func reconstructBalance(base float64, transactions []models.Transaction) float64 {
	balance := base

	for _, transaction := range transactions {
		if transaction.Status == models.StatusIncome {
			balance += transaction.Amount
		} else {
			balance -= transaction.Amount
		}
	}

	return balance
}

// filterByPeriod отбирает транзакции по календарным компонентам даты:
// год обязателен, month == 0 означает весь год. Транзакция последнего дня
// месяца принадлежит этому месяцу.
func filterByPeriod(transactions []models.Transaction, year int, month time.Month) []models.Transaction {
	filtered := make([]models.Transaction, 0, len(transactions))

	for _, transaction := range transactions {
		if transaction.CreatedAt.Year() != year {
			continue
		}

		if month != 0 && transaction.CreatedAt.Month() != month {
			continue
		}

		filtered = append(filtered, transaction)
	}

	return filtered
}

// partitionByStatus делит выборку на доходы и расходы. Других статусов нет,
// поэтому объединение частей равно исходному множеству.
func partitionByStatus(transactions []models.Transaction) (incomes, expenses []models.Transaction) {
	for _, transaction := range transactions {
		if transaction.Status == models.StatusIncome {
			incomes = append(incomes, transaction)
		} else {
			expenses = append(expenses, transaction)
		}
	}

	return incomes, expenses
}

func sumAmounts(transactions []models.Transaction) float64 {
	var total float64

	for _, transaction := range transactions {
		total += transaction.Amount
	}

	return total
}

type rateSummary struct {
	total       float64
	difference  float64
	incomeRate  float64
	expenseRate float64
}

// calculateRates выводит доли и разницу из двух сумм. При нулевом обороте
// деление даёт NaN, который намеренно не подменяется нулём и доходит до
// сериализации (models.Rate превращает его в null).
func calculateRates(income, expense float64) rateSummary {
	total := income + expense

	return rateSummary{
		total:       total,
		difference:  income - expense,
		incomeRate:  round2(income / total * 100),
		expenseRate: round2(expense / total * 100),
	}
}

// round2 округляет до двух знаков, половина - от нуля. NaN проходит насквозь.
func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

// rankCategories сворачивает хвост отсортированного списка категорий в одну
// синтетическую запись "Others": сверху остаются maxVisibleCategories
// категорий, сумма "Others" - точный остаток, процент пересчитывается от
// этой суммы. Цвет берётся у первой свёрнутой категории.
func rankCategories(stats []models.CategoryStat, total float64) []models.CategoryStat {
	if len(stats) <= maxVisibleCategories {
		return stats
	}

	ranked := make([]models.CategoryStat, maxVisibleCategories, maxVisibleCategories+1)
	copy(ranked, stats[:maxVisibleCategories])

	var othersAmount float64
	for _, stat := range stats[maxVisibleCategories:] {
		othersAmount += stat.Amount
	}

	others := models.CategoryStat{
		Name:      "Others",
		IconColor: stats[maxVisibleCategories].IconColor,
		Amount:    othersAmount,
		Percent:   models.Rate(round2(othersAmount / total * 100)),
		Total:     total,
	}

	return append(ranked, others)
}

// sortCategoryStats задаёт стабильный порядок, чтобы ответ не менялся от
// запуска к запуску: по убыванию суммы, при равенстве - по имени.
func sortCategoryStats(stats []models.CategoryStat) {
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Amount != stats[j].Amount {
			return stats[i].Amount > stats[j].Amount
		}

		return stats[i].Name < stats[j].Name
	})
}

type monthTotals struct {
	income  float64
	expense float64
}

// buildAnnualSeries разворачивает разреженные помесячные суммы в плотный ряд
// из 12 записей в календарном порядке, месяцы без активности заполняются
// нулями.
func buildAnnualSeries(byMonth map[time.Month]monthTotals) []models.AnnualStat {
	series := make([]models.AnnualStat, 0, len(monthNames))

	for month := time.January; month <= time.December; month++ {
		totals := byMonth[month]

		series = append(series, models.AnnualStat{
			Month:     int(month),
			MonthName: monthNames[month-1],
			Income:    totals.income,
			Expense:   totals.expense,
		})
	}

	return series
}
