package pattern

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-insights/internal/model"
)

func day(month time.Month, d int) time.Time {
	return time.Date(2024, month, d, 12, 0, 0, 0, time.UTC)
}

func categorized(id, merchantName, category string, amount float64, date time.Time) model.CategorizedTransaction {
	return model.CategorizedTransaction{
		Transaction: model.Transaction{
			ID:           id,
			MerchantName: merchantName,
			Amount:       amount,
			Date:         date,
		},
		Category:   category,
		Method:     model.MethodRuleBased,
		Confidence: 0.9,
	}
}

func TestAnalyze_MonthlyRent(t *testing.T) {
	history := []model.CategorizedTransaction{
		categorized("r1", "RENT PAYMENT - MAIN ST APARTMENTS", model.CategoryHousing, -1200, day(time.January, 5)),
		categorized("r2", "RENT PAYMENT - MAIN ST APARTMENTS", model.CategoryHousing, -1200, day(time.February, 4)),
		categorized("r3", "RENT PAYMENT - MAIN ST APARTMENTS", model.CategoryHousing, -1200, day(time.March, 5)),
	}

	result := NewAnalyzer(nil).Analyze(Request{UserID: "u1", History: history})

	require.Len(t, result.RecurringExpenses, 1)
	rent := result.RecurringExpenses[0]
	assert.Equal(t, "RENT PAYMENT MAIN ST", rent.MerchantPattern)
	assert.Equal(t, model.FrequencyMonthly, rent.Frequency)
	assert.InDelta(t, 1200.00, rent.AverageAmount, 1e-9)
	assert.Equal(t, 3, rent.TransactionCount)
	assert.GreaterOrEqual(t, rent.ConfidenceScore, 0.9)
	assert.Equal(t, model.CategoryHousing, rent.Category)

	assert.Empty(t, result.SeasonalTrends)
	assert.Empty(t, result.Anomalies)
}

func TestAnalyze_RecurringNeedsStableAmounts(t *testing.T) {
	history := []model.CategorizedTransaction{
		categorized("a", "Corner Store", "Shopping", -10, day(time.March, 1)),
		categorized("b", "Corner Store", "Shopping", -30, day(time.March, 8)),
		categorized("c", "Gym", "Health & Fitness", -40, day(time.February, 1)),
		categorized("d", "Gym", "Health & Fitness", -42, day(time.March, 1)),
	}

	result := NewAnalyzer(nil).Analyze(Request{History: history})

	require.Len(t, result.RecurringExpenses, 1)
	assert.Equal(t, "GYM", result.RecurringExpenses[0].MerchantPattern)
	assert.Equal(t, model.FrequencyMonthly, result.RecurringExpenses[0].Frequency, "two charges default to monthly")
	assert.InDelta(t, 0.6, result.RecurringExpenses[0].ConfidenceScore, 1e-9)
}

func TestAnalyze_AmountSpike(t *testing.T) {
	var history []model.CategorizedTransaction
	for i := 1; i <= 10; i++ {
		history = append(history, categorized("t", "Target", model.CategoryShopping, -80, day(time.March, i)))
	}
	history = append(history, categorized("big", "Best Buy", model.CategoryShopping, -450, day(time.March, 11)))

	result := NewAnalyzer(nil).Analyze(Request{History: history, AsOf: day(time.March, 31)})

	require.Len(t, result.Anomalies, 1)
	anomaly := result.Anomalies[0]
	assert.Equal(t, "big", anomaly.TransactionID)
	assert.Equal(t, model.AnomalyAmountSpike, anomaly.AnomalyType)
	assert.Contains(t, []model.Severity{model.SeverityHigh, model.SeverityMedium}, anomaly.Severity)
	assert.Equal(t, model.SeverityHigh, anomaly.Severity)
	assert.LessOrEqual(t, anomaly.ConfidenceScore, 0.9)
	assert.Greater(t, anomaly.StdDeviations, 3.0)

	assert.True(t, result.Transactions[10].IsAnomaly)
	assert.False(t, result.Transactions[0].IsAnomaly)
	assert.False(t, history[10].IsAnomaly, "input history is not modified")
}

func TestAnalyze_AmountDip(t *testing.T) {
	var history []model.CategorizedTransaction
	for i := 1; i <= 10; i++ {
		history = append(history, categorized("g", "Safeway", model.CategoryFoodDining, -100, day(time.March, i)))
	}
	history = append(history, categorized("small", "Safeway", model.CategoryFoodDining, -2, day(time.March, 12)))

	result := NewAnalyzer(nil).Analyze(Request{History: history})

	require.Len(t, result.Anomalies, 1)
	assert.Equal(t, model.AnomalyAmountDip, result.Anomalies[0].AnomalyType)
}

func TestAnalyze_AnomalyNeedsThreeSamples(t *testing.T) {
	history := []model.CategorizedTransaction{
		categorized("a", "Airline", "Travel", -50, day(time.March, 1)),
		categorized("b", "Airline", "Travel", -900, day(time.March, 2)),
	}

	result := NewAnalyzer(nil).Analyze(Request{History: history})
	assert.Empty(t, result.Anomalies)
}

func TestAnalyze_SeasonalSpike(t *testing.T) {
	history := []model.CategorizedTransaction{
		categorized("g1", "Card Shop", "Gifts", -50, day(time.January, 15)),
		categorized("g2", "Flower Mart", "Gifts", -50, day(time.February, 15)),
		categorized("g3", "Jewelry Store", "Gifts", -400, day(time.March, 15)),
	}

	result := NewAnalyzer(nil).Analyze(Request{History: history, AsOf: day(time.March, 31)})

	require.Len(t, result.SeasonalTrends, 1)
	trend := result.SeasonalTrends[0]
	assert.Equal(t, "Gifts", trend.Category)
	assert.Equal(t, model.TrendSpike, trend.TrendType)
	assert.Equal(t, "2024-03", trend.PeakMonth)
	assert.InDelta(t, 400.0, trend.PeakAmount, 1e-9)
	assert.InDelta(t, 166.67, trend.AverageMonthly, 1e-9)
}

func TestAnalyze_Behavior(t *testing.T) {
	history := []model.CategorizedTransaction{
		categorized("sat", "Bar", "Entertainment", -60, day(time.March, 2)),
		categorized("sun", "Brunch Place", "Food & Dining", -40, day(time.March, 3)),
		categorized("mon", "Hardware", "Shopping", -100, day(time.March, 4)),
		categorized("pay", "Payroll", "Income", 500, day(time.March, 4)),
	}

	result := NewAnalyzer(nil).Analyze(Request{History: history})
	behavior := result.Behavior

	assert.Equal(t, "Monday", behavior.TopWeekday)
	assert.InDelta(t, 100.0, behavior.TopWeekdayAmount, 1e-9)
	assert.InDelta(t, 0.5, behavior.WeekendRatio, 1e-9)
	assert.InDelta(t, 200.0, behavior.TotalSpend, 1e-9)
	assert.InDelta(t, 66.67, behavior.AverageAmount, 1e-9)
	assert.Equal(t, 3, behavior.TransactionCount)
	assert.Equal(t, map[string]float64{"Saturday": 60, "Sunday": 40, "Monday": 100}, behavior.SpendByWeekday)

	assert.Equal(t, WeekendTrigger, result.Transactions[0].SpendingTrigger)
	assert.Equal(t, WeekendTrigger, result.Transactions[1].SpendingTrigger)
	assert.Empty(t, result.Transactions[2].SpendingTrigger)
}

func TestAnalyze_IncomeAndRefundsAreNotSpending(t *testing.T) {
	history := []model.CategorizedTransaction{
		categorized("p1", "ACME PAYROLL", "Income", 2500, day(time.January, 31)),
		categorized("p2", "ACME PAYROLL", "Income", 2500, day(time.February, 29)),
		categorized("p3", "ACME PAYROLL", "Income", 2500, day(time.March, 29)),
		categorized("s1", "Book Nook", model.CategoryShopping, -20, day(time.January, 10)),
		categorized("s2", "Toy Barn", model.CategoryShopping, -21, day(time.February, 10)),
		categorized("s3", "Gift Hut", model.CategoryShopping, -22, day(time.February, 12)),
		categorized("s4", "Card Corner", model.CategoryShopping, -19, day(time.March, 10)),
		categorized("s5", "Pen Place", model.CategoryShopping, -20, day(time.March, 12)),
		categorized("refund", "Toy Barn", model.CategoryShopping, 400, day(time.March, 15)),
	}

	result := NewAnalyzer(nil).Analyze(Request{History: history, AsOf: day(time.March, 31)})

	assert.Empty(t, result.RecurringExpenses)
	assert.Empty(t, result.SeasonalTrends)
	assert.Empty(t, result.Anomalies)
	require.Len(t, result.Transactions, 9)
	assert.False(t, result.Transactions[8].IsAnomaly)
	assert.Equal(t, 5, result.Behavior.TransactionCount)
}

func TestAnalyze_UndatedAndOutOfWindow(t *testing.T) {
	history := []model.CategorizedTransaction{
		categorized("old", "Netflix", model.CategorySubscriptions, -15.99, day(time.January, 1).AddDate(-1, 0, 0)),
		categorized("n1", "Netflix", model.CategorySubscriptions, -15.99, day(time.February, 10)),
		categorized("n2", "Netflix", model.CategorySubscriptions, -15.99, day(time.March, 10)),
		categorized("nodate", "Netflix", model.CategorySubscriptions, -15.99, time.Time{}),
	}

	result := NewAnalyzer(nil).Analyze(Request{History: history, WindowDays: 60})

	require.Len(t, result.Transactions, 4)
	assert.Equal(t, 1, result.SkippedUndated)
	assert.Equal(t, day(time.March, 10), result.WindowEnd)

	require.Len(t, result.RecurringExpenses, 1)
	assert.Equal(t, 2, result.RecurringExpenses[0].TransactionCount)
	assert.Equal(t, 2, result.Behavior.TransactionCount)

	undated := result.Transactions[3]
	assert.False(t, undated.IsAnomaly)
	assert.Empty(t, undated.SpendingTrigger)
}

func TestAnalyze_EmptyHistory(t *testing.T) {
	result := NewAnalyzer(nil).Analyze(Request{})
	assert.Empty(t, result.Transactions)
	assert.Empty(t, result.RecurringExpenses)
	assert.Empty(t, result.Anomalies)
	assert.Zero(t, result.Behavior.TransactionCount)
}
