package storage

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Veraticus/spice-insights/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrEmptySlice         = errors.New("slice cannot be empty")
	ErrInvalidDateRange   = errors.New("start date must be before end date")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidCorrection  = errors.New("invalid correction")
	ErrInvalidBudget      = errors.New("invalid budget")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateTransactions validates a slice of transactions.
func validateTransactions(transactions []model.Transaction) error {
	if transactions == nil {
		return fmt.Errorf("%w: transactions", ErrNilParameter)
	}
	if len(transactions) == 0 {
		return fmt.Errorf("%w: transactions", ErrEmptySlice)
	}

	for i := range transactions {
		if err := validateTransaction(&transactions[i]); err != nil {
			return fmt.Errorf("transaction at index %d: %w", i, err)
		}
	}
	return nil
}

// validateTransaction validates a single transaction. Undated transactions
// are stored; the analyzers skip them.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if txn.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidTransaction)
	}
	if txn.MerchantIdentifier() == "" {
		return fmt.Errorf("%w: missing merchant name and description", ErrInvalidTransaction)
	}
	if math.IsNaN(txn.Amount) || math.IsInf(txn.Amount, 0) {
		return fmt.Errorf("%w: amount is not a finite number", ErrInvalidTransaction)
	}
	return nil
}

// validateCorrection validates a feedback correction.
func validateCorrection(correction *model.Correction) error {
	if correction == nil {
		return fmt.Errorf("%w: correction", ErrNilParameter)
	}
	if strings.TrimSpace(correction.MerchantKey) == "" {
		return fmt.Errorf("%w: missing merchant key", ErrInvalidCorrection)
	}
	if strings.TrimSpace(correction.Category) == "" {
		return fmt.Errorf("%w: missing category", ErrInvalidCorrection)
	}
	return nil
}

// validateBudget validates a budget category.
func validateBudget(budget *model.BudgetCategory) error {
	if strings.TrimSpace(budget.CategoryName) == "" {
		return fmt.Errorf("%w: missing category name", ErrInvalidBudget)
	}
	if budget.MonthlyLimit < 0 || math.IsNaN(budget.MonthlyLimit) || math.IsInf(budget.MonthlyLimit, 0) {
		return fmt.Errorf("%w: monthly limit must be a non-negative number", ErrInvalidBudget)
	}
	return nil
}
