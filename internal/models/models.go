package models

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
)

// Статусы транзакций и типы категорий используют одно множество значений.
const (
	StatusIncome  = "income"
	StatusExpense = "expense"
)

// Auth models
type AuthTokenClaims struct {
	*jwt.RegisteredClaims
	Name    string `json:"name"`
	IsAdmin bool   `json:"isAdmin"`
}

type ContextClaimsKey struct{}

func ClaimsFromContext(ctx context.Context) *AuthTokenClaims {
	claims, _ := ctx.Value(ContextClaimsKey{}).(*AuthTokenClaims)
	return claims
}

// Transaction models
type Transaction struct {
	ID        string  `json:"id"`
	Wallet    string  `json:"wallet"`
	Category  string  `json:"category"`
	Amount    float64 `json:"amount"`
	Status    string  `json:"status"`
	CreatedAt Date    `json:"createdAt"`
}

type CreateTransactionRequest struct {
	Wallet    string  `json:"wallet"`
	Category  string  `json:"category"`
	Amount    float64 `json:"amount"`
	Status    string  `json:"status"`
	CreatedAt string  `json:"createdAt,omitempty"`
}

// TransactionFilter фильтр для выборки транзакций пользователя.
// Нулевые поля не участвуют в фильтрации.
type TransactionFilter struct {
	Wallet    string
	Category  string
	Status    string
	CreatedAt Date
}

// Wallet models
type Wallet struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Icon      string  `json:"icon"`
	IconColor string  `json:"iconColor"`
	Balance   float64 `json:"balance"`
}

// Category models
type Category struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Icon      string `json:"icon"`
	IconColor string `json:"iconColor"`
}

// CategoryWithAmount категория вместе с суммой её транзакций.
type CategoryWithAmount struct {
	Category
	Amount float64 `json:"amount"`
}

// Statistics models
type WalletStats struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Icon        string  `json:"icon"`
	IconColor   string  `json:"iconColor"`
	Income      float64 `json:"income"`
	Expense     float64 `json:"expense"`
	IncomeRate  Rate    `json:"incomeRate"`
	ExpenseRate Rate    `json:"expenseRate"`
	Difference  float64 `json:"difference"`
	Balance     float64 `json:"balance"`
	Remain      float64 `json:"remain"`
}

type MonthlyStats struct {
	Income      float64 `json:"income"`
	Expense     float64 `json:"expense"`
	IncomeRate  Rate    `json:"incomeRate"`
	ExpenseRate Rate    `json:"expenseRate"`
	Difference  float64 `json:"difference"`
}

type CategoryStat struct {
	ID        string  `json:"id,omitempty"`
	Name      string  `json:"name"`
	Icon      string  `json:"icon,omitempty"`
	IconColor string  `json:"iconColor"`
	Amount    float64 `json:"amount"`
	Percent   Rate    `json:"percent"`
	Total     float64 `json:"total"`
}

type CategoryStatsSummary struct {
	Total         float64        `json:"total"`
	CategoryStats []CategoryStat `json:"categoryStats"`
}

type CategoryStatsResponse struct {
	StatsList []CategoryStat       `json:"statsList"`
	Stats     CategoryStatsSummary `json:"stats"`
}

type AnnualStat struct {
	Month     int     `json:"month"`
	MonthName string  `json:"monthName"`
	Income    float64 `json:"income"`
	Expense   float64 `json:"expense"`
}

// FinancialData структура для хранения и загрузки данных пользователей
type FinancialData struct {
	Wallets      map[string]map[string]Wallet      `json:"wallets"`      // userID -> walletID -> wallet
	Categories   map[string]map[string]Category    `json:"categories"`   // userID -> categoryID -> category
	Transactions map[string]map[string]Transaction `json:"transactions"` // userID -> transactionID -> transaction
}

// GetDefaultFinancialData возвращает структуру с пустыми данными
func GetDefaultFinancialData() FinancialData {
	return FinancialData{
		Wallets:      make(map[string]map[string]Wallet),
		Categories:   make(map[string]map[string]Category),
		Transactions: make(map[string]map[string]Transaction),
	}
}
