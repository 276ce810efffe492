package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-insights/internal/common"
	"github.com/Veraticus/spice-insights/internal/model"
	"github.com/Veraticus/spice-insights/internal/service"
)

func createTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func day(d int) time.Time {
	return time.Date(2024, time.March, d, 0, 0, 0, 0, time.UTC)
}

func testTransactions() []model.Transaction {
	return []model.Transaction{
		{ID: "t1", Date: day(1), AccountID: "acc", MerchantName: "Netflix", Amount: -15.99},
		{ID: "t2", Date: day(5), AccountID: "acc", MerchantName: "Whole Foods #123", Amount: -84.12},
		{ID: "t3", Date: day(10), AccountID: "acc", Description: "PAYROLL ACME", Amount: 2500},
	}
}

func TestMigrate(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)

	// Running again is a no-op.
	require.NoError(t, store.Migrate(ctx))
}

func TestNewSQLiteStorage_CreatesDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "spice.db")

	store, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	require.NoError(t, store.Migrate(context.Background()))

	_, err = NewSQLiteStorage("  ")
	require.ErrorIs(t, err, ErrEmptyString)
}

func TestSaveTransactions_Deduplicates(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	inserted, err := store.SaveTransactions(ctx, testTransactions())
	require.NoError(t, err)
	assert.Equal(t, 3, inserted)

	// Same content under a new ID is still a duplicate by hash.
	again := testTransactions()
	again[0].ID = "t1-replayed"
	inserted, err = store.SaveTransactions(ctx, again)
	require.NoError(t, err)
	assert.Equal(t, 0, inserted)

	count, err := store.GetTransactionCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestSaveTransactions_Validation(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	_, err := store.SaveTransactions(ctx, nil)
	require.ErrorIs(t, err, ErrNilParameter)

	_, err = store.SaveTransactions(ctx, []model.Transaction{})
	require.ErrorIs(t, err, ErrEmptySlice)

	_, err = store.SaveTransactions(ctx, []model.Transaction{{ID: "x", Amount: -1}})
	require.ErrorIs(t, err, ErrInvalidTransaction)

	_, err = store.SaveTransactions(ctx, []model.Transaction{{MerchantName: "Shop", Amount: -1}})
	require.ErrorIs(t, err, ErrInvalidTransaction)
}

func TestGetTransactions(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	undated := model.Transaction{ID: "t0", AccountID: "acc", MerchantName: "Mystery", Amount: -3}
	_, err := store.SaveTransactions(ctx, append(testTransactions(), undated))
	require.NoError(t, err)

	all, err := store.GetTransactions(ctx, service.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)

	byID := make(map[string]model.Transaction)
	for _, txn := range all {
		byID[txn.ID] = txn
	}
	assert.False(t, byID["t0"].HasDate())
	assert.Equal(t, "PAYROLL ACME", byID["t3"].Description)
	assert.True(t, byID["t2"].Date.Equal(day(5)))

	start, end := day(2), day(31)
	ranged, err := store.GetTransactions(ctx, service.TransactionFilter{StartDate: &start, EndDate: &end})
	require.NoError(t, err)
	require.Len(t, ranged, 2)
	assert.Equal(t, "t2", ranged[0].ID)
	assert.Equal(t, "t3", ranged[1].ID)

	limited, err := store.GetTransactions(ctx, service.TransactionFilter{StartDate: &start, Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "t3", limited[0].ID)

	_, err = store.GetTransactions(ctx, service.TransactionFilter{StartDate: &end, EndDate: &start})
	require.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestGetTransactionByID(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	_, err := store.SaveTransactions(ctx, testTransactions())
	require.NoError(t, err)

	txn, err := store.GetTransactionByID(ctx, "t2")
	require.NoError(t, err)
	assert.Equal(t, "Whole Foods #123", txn.MerchantName)
	assert.InDelta(t, -84.12, txn.Amount, 1e-9)

	_, err = store.GetTransactionByID(ctx, "missing")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestCategorizations(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	txns := testTransactions()
	_, err := store.SaveTransactions(ctx, txns[:2])
	require.NoError(t, err)

	uncategorized, err := store.GetUncategorizedTransactions(ctx)
	require.NoError(t, err)
	assert.Len(t, uncategorized, 2)

	categorized := []model.CategorizedTransaction{
		{Transaction: txns[0], Category: "Subscriptions", Subcategory: "Streaming", MerchantKey: "NETFLIX", Method: model.MethodRuleBased, Confidence: 0.9},
		{Transaction: txns[2], Category: "Income", MerchantKey: "PAYROLL ACME", Method: model.MethodUserLearned, Confidence: 0.95},
	}
	require.NoError(t, store.SaveCategorizations(ctx, categorized))

	// Re-saving overwrites rather than duplicating.
	categorized[0].Category = "Entertainment"
	require.NoError(t, store.SaveCategorizations(ctx, categorized[:1]))

	got, err := store.GetCategorizedTransactions(ctx, service.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "t1", got[0].ID)
	assert.Equal(t, "Entertainment", got[0].Category)
	assert.Equal(t, "Streaming", got[0].Subcategory)
	assert.Equal(t, model.MethodRuleBased, got[0].Method)
	assert.Equal(t, "t3", got[1].ID)
	assert.InDelta(t, 2500, got[1].Amount, 1e-9)

	uncategorized, err = store.GetUncategorizedTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, uncategorized, 1)
	assert.Equal(t, "t2", uncategorized[0].ID)
}

func TestCorrections(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SaveCorrection(ctx, &model.Correction{MerchantKey: "Starbucks #4411", Category: "Coffee & Dining"}))

	got, err := store.GetCorrection(ctx, "STARBUCKS")
	require.NoError(t, err)
	assert.Equal(t, "STARBUCKS", got.MerchantKey)
	assert.Equal(t, "Coffee & Dining", got.Category)
	assert.Equal(t, model.SourceUser, got.Source)
	assert.Equal(t, 0, got.UseCount)

	// Updating bumps the use count and refreshes the cache.
	require.NoError(t, store.SaveCorrection(ctx, &model.Correction{MerchantKey: "starbucks", Category: "Food & Dining"}))
	got, err = store.GetCorrection(ctx, "starbucks")
	require.NoError(t, err)
	assert.Equal(t, "Food & Dining", got.Category)
	assert.Equal(t, 1, got.UseCount)

	require.NoError(t, store.SaveCorrection(ctx, &model.Correction{MerchantKey: "Uber", Category: "Transportation", Source: model.SourceImported}))

	all, err := store.GetAllCorrections(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, model.FeedbackHistory{"STARBUCKS": "Food & Dining", "UBER": "Transportation"}, model.FeedbackFromCorrections(all))

	require.NoError(t, store.DeleteCorrection(ctx, "uber"))
	_, err = store.GetCorrection(ctx, "uber")
	require.ErrorIs(t, err, common.ErrNotFound)
	require.ErrorIs(t, store.DeleteCorrection(ctx, "uber"), common.ErrNotFound)

	require.ErrorIs(t, store.SaveCorrection(ctx, &model.Correction{MerchantKey: "x"}), ErrInvalidCorrection)
	require.ErrorIs(t, store.SaveCorrection(ctx, nil), ErrNilParameter)
}

func TestBudgets(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SaveBudget(ctx, model.BudgetCategory{
		CategoryName:    "Shopping",
		MonthlyLimit:    300,
		AlertThresholds: []float64{75, 90, 100},
	}))
	require.NoError(t, store.SaveBudget(ctx, model.BudgetCategory{
		CategoryName:    "Food & Dining",
		MonthlyLimit:    600,
		AlertThresholds: []float64{80},
		CurrentSpent:    500,
		PercentageUsed:  83.33,
		RemainingBudget: 100,
		State:           model.BudgetWarning,
	}))

	// Names match case-insensitively on update.
	require.NoError(t, store.SaveBudget(ctx, model.BudgetCategory{
		CategoryName:    "shopping",
		MonthlyLimit:    350,
		AlertThresholds: []float64{90},
	}))

	budgets, err := store.GetBudgets(ctx)
	require.NoError(t, err)
	require.Len(t, budgets, 2)

	assert.Equal(t, "Food & Dining", budgets[0].CategoryName)
	assert.Equal(t, model.BudgetWarning, budgets[0].State)
	assert.Equal(t, []float64{80}, budgets[0].AlertThresholds)
	assert.InDelta(t, 500, budgets[0].CurrentSpent, 1e-9)

	assert.InDelta(t, 350, budgets[1].MonthlyLimit, 1e-9)
	assert.Equal(t, model.BudgetCreated, budgets[1].State)

	require.NoError(t, store.DeleteBudget(ctx, "SHOPPING"))
	require.ErrorIs(t, store.DeleteBudget(ctx, "Shopping"), common.ErrNotFound)

	require.ErrorIs(t, store.SaveBudget(ctx, model.BudgetCategory{CategoryName: "Bad", MonthlyLimit: -1}), ErrInvalidBudget)
}
