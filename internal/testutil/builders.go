package testutil

import (
	"fmt"
	"time"

	"github.com/Veraticus/spice-insights/internal/model"
)

// Date returns midnight UTC on the given day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// TransactionBuilder builds transaction fixtures with unique IDs.
type TransactionBuilder struct {
	account string
	txns    []model.Transaction
}

// NewTransactionBuilder creates a builder for account "acc-test".
func NewTransactionBuilder() *TransactionBuilder {
	return &TransactionBuilder{account: "acc-test"}
}

// WithAccount sets the account ID for transactions added afterwards.
func (b *TransactionBuilder) WithAccount(accountID string) *TransactionBuilder {
	b.account = accountID
	return b
}

// Add appends one transaction. Negative amounts are expenses.
func (b *TransactionBuilder) Add(merchantName string, amount float64, date time.Time) *TransactionBuilder {
	b.txns = append(b.txns, model.Transaction{
		ID:           fmt.Sprintf("txn-%03d", len(b.txns)+1),
		Date:         date,
		AccountID:    b.account,
		MerchantName: merchantName,
		Description:  merchantName,
		Amount:       amount,
	})
	return b
}

// Monthly appends count charges one calendar month apart.
func (b *TransactionBuilder) Monthly(merchantName string, amount float64, start time.Time, count int) *TransactionBuilder {
	for i := 0; i < count; i++ {
		b.Add(merchantName, amount, start.AddDate(0, i, 0))
	}
	return b
}

// Weekly appends count charges seven days apart.
func (b *TransactionBuilder) Weekly(merchantName string, amount float64, start time.Time, count int) *TransactionBuilder {
	for i := 0; i < count; i++ {
		b.Add(merchantName, amount, start.AddDate(0, 0, 7*i))
	}
	return b
}

// Build returns a copy of the accumulated transactions.
func (b *TransactionBuilder) Build() []model.Transaction {
	return append([]model.Transaction(nil), b.txns...)
}

// BudgetBuilder builds budget category fixtures.
type BudgetBuilder struct {
	budgets []model.BudgetCategory
}

// NewBudgetBuilder creates an empty budget builder.
func NewBudgetBuilder() *BudgetBuilder {
	return &BudgetBuilder{}
}

// WithBudget adds a category with the default 75/90/100 thresholds.
func (b *BudgetBuilder) WithBudget(name string, monthlyLimit float64) *BudgetBuilder {
	return b.WithThresholds(name, monthlyLimit, 75, 90, 100)
}

// WithThresholds adds a category with custom thresholds.
func (b *BudgetBuilder) WithThresholds(name string, monthlyLimit float64, thresholds ...float64) *BudgetBuilder {
	b.budgets = append(b.budgets, model.BudgetCategory{
		CategoryName:    name,
		MonthlyLimit:    monthlyLimit,
		AlertThresholds: thresholds,
		RemainingBudget: monthlyLimit,
		State:           model.BudgetCreated,
	})
	return b
}

// Build returns the accumulated budget categories.
func (b *BudgetBuilder) Build() []model.BudgetCategory {
	return append([]model.BudgetCategory(nil), b.budgets...)
}
