// Package testutil provides test fixtures for the spice-insights packages:
// an in-memory database, fluent transaction and budget builders, and fakes
// for the engine's collaborators.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/spice-insights/internal/model"
	"github.com/Veraticus/spice-insights/internal/storage"
)

// TestDB wraps a migrated in-memory database.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
}

// SetupTestDB creates a new in-memory test database. It automatically
// handles migrations and cleanup.
//
// Example:
//
//	db := testutil.SetupTestDB(t)
//	db.SeedTransactions(testutil.NewTransactionBuilder().
//		Monthly("Netflix", -15.99, start, 3).
//		Build())
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{Storage: store, t: t}
}

// SeedTransactions stores transactions or fails the test.
func (db *TestDB) SeedTransactions(txns []model.Transaction) {
	db.t.Helper()
	if _, err := db.Storage.SaveTransactions(context.Background(), txns); err != nil {
		db.t.Fatalf("failed to seed transactions: %v", err)
	}
}

// SeedCorrections stores merchant to category corrections or fails the test.
func (db *TestDB) SeedCorrections(feedback model.FeedbackHistory) {
	db.t.Helper()
	for merchantName, category := range feedback {
		c := &model.Correction{MerchantKey: merchantName, Category: category, Source: model.SourceUser}
		if err := db.Storage.SaveCorrection(context.Background(), c); err != nil {
			db.t.Fatalf("failed to seed correction %q: %v", merchantName, err)
		}
	}
}

// SeedBudgets stores budget categories or fails the test.
func (db *TestDB) SeedBudgets(budgets []model.BudgetCategory) {
	db.t.Helper()
	for _, b := range budgets {
		if err := db.Storage.SaveBudget(context.Background(), b); err != nil {
			db.t.Fatalf("failed to seed budget %q: %v", b.CategoryName, err)
		}
	}
}
