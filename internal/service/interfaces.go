// Package service defines the contracts between the engine, its optional
// collaborators, and the host application's persistence and feeds.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/spice-insights/internal/model"
)

// Classification is a fallback classifier's best guess for one transaction.
type Classification struct {
	Category   string
	Confidence float64
}

// Classifier is the optional fallback stage of the categorizer. It may be a
// rule engine, a small model or an LLM call.
type Classifier interface {
	Classify(ctx context.Context, description, merchant string, amount float64) (Classification, error)
}

// ClassifierFunc adapts a function to the Classifier interface.
type ClassifierFunc func(ctx context.Context, description, merchant string, amount float64) (Classification, error)

// Classify implements Classifier.
func (f ClassifierFunc) Classify(ctx context.Context, description, merchant string, amount float64) (Classification, error) {
	return f(ctx, description, merchant, amount)
}

// UsageReport is an external signal of how much a subscribed service is used.
type UsageReport struct {
	LastActivity time.Time
	Score        float64
}

// UsageSignal reports service usage for unused-subscription detection.
type UsageSignal interface {
	UsageScore(ctx context.Context, userID, serviceName string) (UsageReport, error)
}

// UsageSignalFunc adapts a function to the UsageSignal interface.
type UsageSignalFunc func(ctx context.Context, userID, serviceName string) (UsageReport, error)

// UsageScore implements UsageSignal.
func (f UsageSignalFunc) UsageScore(ctx context.Context, userID, serviceName string) (UsageReport, error) {
	return f(ctx, userID, serviceName)
}

// TransactionFilter defines filtering options for transaction queries.
type TransactionFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
	Offset    int
}

// Storage is the host application's persistence layer. The engine never
// calls it; the CLI loads inputs from it and saves outputs to it.
type Storage interface {
	// Transaction operations
	SaveTransactions(ctx context.Context, transactions []model.Transaction) (int, error)
	GetTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
	GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error)

	// Categorization results
	SaveCategorizations(ctx context.Context, categorized []model.CategorizedTransaction) error
	GetCategorizedTransactions(ctx context.Context, filter TransactionFilter) ([]model.CategorizedTransaction, error)

	// Feedback corrections
	GetCorrection(ctx context.Context, merchantKey string) (*model.Correction, error)
	SaveCorrection(ctx context.Context, correction *model.Correction) error
	GetAllCorrections(ctx context.Context) ([]model.Correction, error)
	DeleteCorrection(ctx context.Context, merchantKey string) error

	// Budgets
	SaveBudget(ctx context.Context, budget model.BudgetCategory) error
	GetBudgets(ctx context.Context) ([]model.BudgetCategory, error)
	DeleteBudget(ctx context.Context, categoryName string) error

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// TransactionFetcher pulls already-authorized transaction feeds.
type TransactionFetcher interface {
	GetTransactions(ctx context.Context, startDate, endDate time.Time) ([]model.Transaction, error)
	GetAccounts(ctx context.Context) ([]string, error)
}

// RetryOptions configures retry behavior for feed and collaborator calls.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
