package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-insights/internal/common"
	"github.com/Veraticus/spice-insights/internal/model"
	"github.com/Veraticus/spice-insights/internal/testutil"
)

func categorized(merchantName string, amount float64, date time.Time, category string) model.CategorizedTransaction {
	return model.CategorizedTransaction{
		Transaction: model.Transaction{MerchantName: merchantName, Amount: amount, Date: date},
		Category:    category,
	}
}

func TestExpandFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.qfx", "a.qfx", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600))
	}

	files, err := expandFiles([]string{
		filepath.Join(dir, "*.qfx"),
		filepath.Join(dir, "a.qfx"),
		filepath.Join(dir, "missing.ofx"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.qfx"), filepath.Join(dir, "b.qfx")}, files)

	_, err = expandFiles([]string{"[invalid"})
	assert.Error(t, err)
}

func TestMonthsSpanned(t *testing.T) {
	tests := []struct {
		name string
		txns []model.CategorizedTransaction
		want int
	}{
		{"empty", nil, 1},
		{"undated only", []model.CategorizedTransaction{categorized("A", -1, time.Time{}, "X")}, 1},
		{"single month", []model.CategorizedTransaction{
			categorized("A", -1, testutil.Date(2024, time.March, 1), "X"),
			categorized("B", -1, testutil.Date(2024, time.March, 31), "X"),
		}, 1},
		{"across year end", []model.CategorizedTransaction{
			categorized("A", -1, testutil.Date(2024, time.February, 3), "X"),
			categorized("B", -1, testutil.Date(2023, time.November, 20), "X"),
		}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, monthsSpanned(tt.txns))
		})
	}
}

func TestLatestMonthAndMonthExpenses(t *testing.T) {
	now := testutil.Date(2025, time.June, 15)
	assert.Equal(t, testutil.Date(2025, time.June, 1), latestMonth(nil, now))

	txns := []model.CategorizedTransaction{
		categorized("Netflix", -15.99, testutil.Date(2024, time.March, 5), "Subscriptions"),
		categorized("Payroll", 2500, testutil.Date(2024, time.March, 1), "Income"),
		categorized("Netflix", -15.99, testutil.Date(2024, time.February, 5), "Subscriptions"),
		categorized("Cash", -20, time.Time{}, "Shopping"),
	}
	month := latestMonth(txns, now)
	assert.Equal(t, testutil.Date(2024, time.March, 1), month)

	kept := monthExpenses(txns, month)
	require.Len(t, kept, 1)
	assert.Equal(t, testutil.Date(2024, time.March, 5), kept[0].Date)

	assert.NotNil(t, monthExpenses(nil, month))
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "No budget is set for \"Travel\"",
		errorMessage(common.NewUserError("No budget is set for \"Travel\"", common.ErrNotFound)))
	assert.Equal(t, "boom", errorMessage(errors.New("boom")))
}
