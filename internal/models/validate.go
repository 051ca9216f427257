package models

import "fmt"

// Проверки enum-значений выполняются на границе движка статистики и при
// создании записей, а не как побочный эффект слоя хранения.

func ValidateTransactionStatus(status string) error {
	if status != StatusIncome && status != StatusExpense {
		return fmt.Errorf("%w: transaction status must be either income or expense, got %q", ErrBadRequest, status)
	}

	return nil
}

func ValidateCategoryType(categoryType string) error {
	if categoryType != StatusIncome && categoryType != StatusExpense {
		return fmt.Errorf("%w: category type must be either income or expense, got %q", ErrBadRequest, categoryType)
	}

	return nil
}

func ValidateAmount(amount float64) error {
	if amount < 0 {
		return fmt.Errorf("%w: amount must be non-negative, got %v", ErrBadRequest, amount)
	}

	return nil
}
