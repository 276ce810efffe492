package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-insights/internal/budget"
	"github.com/Veraticus/spice-insights/internal/classification"
	"github.com/Veraticus/spice-insights/internal/model"
	"github.com/Veraticus/spice-insights/internal/optimize"
	"github.com/Veraticus/spice-insights/internal/pattern"
	"github.com/Veraticus/spice-insights/internal/subscription"
)

func TestRenderCategorization(t *testing.T) {
	var buf bytes.Buffer
	err := RenderCategorization(&buf, &classification.Result{
		Transactions: []model.CategorizedTransaction{{
			Transaction: model.Transaction{Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), MerchantName: "Netflix", Amount: -15.99},
			Category:    "Subscriptions",
			Subcategory: "Streaming",
			Method:      model.MethodRuleBased,
			Confidence:  0.9,
		}},
		Summary: classification.Summary{RuleBased: 1},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Netflix")
	assert.Contains(t, out, "-$15.99")
	assert.Contains(t, out, "Subscriptions / Streaming")
	assert.Contains(t, out, "rule_based")
	assert.Contains(t, out, "1 transactions: 0 learned, 1 rules")
}

func TestRenderCategorization_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderCategorization(&buf, &classification.Result{}))
	assert.Contains(t, buf.String(), "No transactions to categorize")
}

func TestRenderAnalysis(t *testing.T) {
	var buf bytes.Buffer
	err := RenderAnalysis(&buf, &pattern.Result{
		WindowStart: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		WindowEnd:   time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		RecurringExpenses: []model.RecurringExpense{{
			MerchantPattern: "NETFLIX", Category: "Subscriptions", Frequency: model.FrequencyMonthly,
			AverageAmount: 15.99, TransactionCount: 3, ConfidenceScore: 0.9,
		}},
		Anomalies: []model.Anomaly{{
			Date: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), MerchantName: "Best Buy", Category: "Shopping",
			Amount: 900, ExpectedAmount: 120, StdDeviations: 3.4, Severity: model.SeverityHigh,
		}},
		Behavior: model.BehaviorInsights{
			SpendByWeekday:   map[string]float64{"Saturday": 120, "Monday": 30},
			TopWeekday:       "Saturday",
			TopWeekdayAmount: 120,
			WeekendRatio:     0.8,
			TransactionCount: 4,
		},
		SkippedUndated: 2,
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "2024-01-01 to 2024-03-31")
	assert.Contains(t, out, "2 undated transactions skipped")
	assert.Contains(t, out, "NETFLIX")
	assert.Contains(t, out, "Best Buy")
	assert.Contains(t, out, "weekend share 80.0%")
	assert.NotContains(t, out, "Seasonal spikes")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("Monday")), bytes.Index(buf.Bytes(), []byte("Saturday ")))
}

func TestRenderSubscriptions(t *testing.T) {
	var buf bytes.Buffer
	err := RenderSubscriptions(&buf, &subscription.Result{
		Subscriptions: []model.Subscription{{
			MerchantName: "Spotify", ServiceType: "Music", Frequency: model.FrequencyMonthly,
			MonthlyCost: 10.99, TransactionCount: 3, LastChargeDate: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		}},
		Opportunities: []model.OptimizationOpportunity{{
			Description: "Cancel one of your Music services", PotentialMonthlySavings: 9.99,
			PersonalityFit: 0.5, ImplementationDifficulty: model.DifficultyEasy, ConfidenceScore: 0.85,
		}},
		TotalMonthly: 20.98,
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Spotify")
	assert.Contains(t, out, "Total monthly: $20.98")
	assert.Contains(t, out, "Cancel one of your Music services")
}

func TestRenderRecommendations(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderRecommendations(&buf, &optimize.Result{}))
	assert.Contains(t, buf.String(), "No savings opportunities found")

	buf.Reset()
	require.NoError(t, RenderRecommendations(&buf, &optimize.Result{
		Opportunities: []model.OptimizationOpportunity{{
			Description: "Cook at home twice a week", PotentialMonthlySavings: 54,
			PersonalityFit: 0.9, ImplementationDifficulty: model.DifficultyEasy, ConfidenceScore: 0.8,
		}},
		TotalPotentialSavings: 54,
	}))
	assert.Contains(t, buf.String(), "Cook at home twice a week")
	assert.Contains(t, buf.String(), "Potential monthly savings: $54.00")
}

func TestRenderBudget(t *testing.T) {
	var buf bytes.Buffer
	err := RenderBudget(&buf, &budget.AlertResult{
		Categories: []model.BudgetCategory{{
			CategoryName: "Shopping", MonthlyLimit: 300, CurrentSpent: 330,
			PercentageUsed: 110, State: model.BudgetExceeded,
		}},
		Alerts: []model.BudgetAlert{{
			CategoryName: "Shopping", Severity: model.SeverityHigh,
			PersonalityAwareMessage: "Shopping is over budget",
		}},
		Variance: &budget.VarianceReport{
			OverBudget:  []budget.CategoryVariance{{CategoryName: "Shopping", PercentageUsed: 110, Variance: 30}},
			Suggestions: []budget.Reallocation{{FromCategory: "Travel", ToCategory: "Shopping", Amount: 30}},
		},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "exceeded")
	assert.Contains(t, out, "Shopping is over budget")
	assert.Contains(t, out, "Shopping is over by $30.00 (110.0%)")
	assert.Contains(t, out, "Move $30.00 from Travel to Shopping")
}

func TestRenderBudget_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderBudget(&buf, &budget.AlertResult{}))
	assert.Contains(t, buf.String(), "No budgets set")
}

func TestRenderCorrections(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderCorrections(&buf, []model.Correction{{
		MerchantKey: "STARBUCKS",
		Category:    "Food & Dining",
		Source:      model.SourceUser,
		UseCount:    2,
		LastUpdated: time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC),
	}}))
	out := buf.String()
	assert.Contains(t, out, "STARBUCKS")
	assert.Contains(t, out, "Food & Dining")
	assert.Contains(t, out, "2024-05-02")

	buf.Reset()
	require.NoError(t, RenderCorrections(&buf, nil))
	assert.Contains(t, buf.String(), "No corrections recorded yet")
}
