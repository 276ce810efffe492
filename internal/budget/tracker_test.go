package budget

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-insights/internal/common"
	"github.com/Veraticus/spice-insights/internal/model"
)

func spend(category string, amount float64) model.CategorizedTransaction {
	return model.CategorizedTransaction{
		Transaction: model.Transaction{Amount: amount, MerchantName: "m"},
		Category:    category,
	}
}

func mustCreate(t *testing.T, specs ...CategorySpec) []model.BudgetCategory {
	t.Helper()
	categories, err := NewTracker(nil).Create(specs)
	require.NoError(t, err)
	return categories
}

func TestCreate(t *testing.T) {
	categories := mustCreate(t,
		CategorySpec{Name: "Food Delivery", MonthlyLimit: 400},
		CategorySpec{Name: " Travel ", MonthlyLimit: 250, AlertThresholds: []float64{100, 50}},
	)

	require.Len(t, categories, 2)
	first := categories[0]
	assert.Equal(t, "Food Delivery", first.CategoryName)
	assert.Equal(t, model.BudgetCreated, first.State)
	assert.Equal(t, []float64{75, 90, 100}, first.AlertThresholds)
	assert.Zero(t, first.CurrentSpent)
	assert.Zero(t, first.PercentageUsed)
	assert.InDelta(t, 400.0, first.RemainingBudget, 1e-9)

	assert.Equal(t, "Travel", categories[1].CategoryName)
	assert.Equal(t, []float64{50, 100}, categories[1].AlertThresholds)
}

func TestCreate_Validation(t *testing.T) {
	_, err := NewTracker(nil).Create([]CategorySpec{
		{Name: "Food", MonthlyLimit: 100},
		{Name: "", MonthlyLimit: 100},
		{Name: "food", MonthlyLimit: 100},
		{Name: "Travel", MonthlyLimit: -5},
		{Name: "Gym", MonthlyLimit: 50, AlertThresholds: []float64{0}},
	})
	require.ErrorIs(t, err, common.ErrValidation)

	var verr *common.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []int{1, 2, 3, 4}, verr.Indices())
}

func TestUpdateSpending(t *testing.T) {
	categories := mustCreate(t,
		CategorySpec{Name: "Food Delivery", MonthlyLimit: 400},
		CategorySpec{Name: "Shopping", MonthlyLimit: 100},
		CategorySpec{Name: "Travel", MonthlyLimit: 0},
	)

	NewTracker(nil).UpdateSpending(categories, []model.CategorizedTransaction{
		spend("Food Delivery", -200),
		spend("food delivery", -120.50),
		spend("Shopping", -150),
		spend("Travel", -80),
		spend("Housing", -1200),
	})

	food := categories[0]
	assert.InDelta(t, 320.50, food.CurrentSpent, 1e-9)
	assert.InDelta(t, 80.125, food.PercentageUsed, 1e-9)
	assert.InDelta(t, 79.50, food.RemainingBudget, 1e-9)
	assert.Equal(t, model.BudgetWarning, food.State)

	shopping := categories[1]
	assert.InDelta(t, 150.0, shopping.PercentageUsed, 1e-9)
	assert.Zero(t, shopping.RemainingBudget, "remaining never goes negative")
	assert.Equal(t, model.BudgetExceeded, shopping.State)

	travel := categories[2]
	assert.InDelta(t, 80.0, travel.CurrentSpent, 1e-9)
	assert.Zero(t, travel.PercentageUsed, "zero limit means zero percentage")
	assert.Equal(t, model.BudgetTracking, travel.State)
}

func TestGenerateAlerts_HighestThresholdOnly(t *testing.T) {
	tests := []struct {
		name      string
		spent     float64
		alertType string
		severity  model.Severity
		state     model.BudgetState
	}{
		{"below first threshold", 100, "", "", model.BudgetTracking},
		{"warning", 320.50, "warning_75", model.SeverityLow, model.BudgetWarning},
		{"alert", 380, "alert_90", model.SeverityMedium, model.BudgetAlerting},
		{"exactly at limit", 400, "exceeded_100", model.SeverityHigh, model.BudgetExceeded},
		{"over limit", 612, "exceeded_100", model.SeverityHigh, model.BudgetExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			categories := mustCreate(t, CategorySpec{Name: "Food Delivery", MonthlyLimit: 400})

			result, err := NewTracker(nil).GenerateAlerts(AlertRequest{
				Categories:   categories,
				Transactions: []model.CategorizedTransaction{spend("Food Delivery", -tt.spent)},
			})
			require.NoError(t, err)
			assert.Equal(t, tt.state, categories[0].State)

			if tt.alertType == "" {
				assert.Empty(t, result.Alerts)
				return
			}
			require.Len(t, result.Alerts, 1)
			alert := result.Alerts[0]
			assert.Equal(t, tt.alertType, alert.AlertType)
			assert.Equal(t, tt.severity, alert.Severity)
			assert.Equal(t, "Food Delivery", alert.CategoryName)
			assert.NotEmpty(t, alert.Message)
			assert.Equal(t, alert.Message, alert.PersonalityAwareMessage, "no profile means neutral phrasing")
			assert.GreaterOrEqual(t, categories[0].RemainingBudget, 0.0)
		})
	}
}

func TestGenerateAlerts_NilTransactionsKeepsSnapshot(t *testing.T) {
	categories := mustCreate(t, CategorySpec{Name: "Dining", MonthlyLimit: 200})
	categories[0].CurrentSpent = 185

	result, err := NewTracker(nil).GenerateAlerts(AlertRequest{Categories: categories})
	require.NoError(t, err)

	assert.InDelta(t, 185.0, categories[0].CurrentSpent, 1e-9)
	assert.InDelta(t, 92.5, categories[0].PercentageUsed, 1e-9)
	require.Len(t, result.Alerts, 1)
	assert.Equal(t, "alert_90", result.Alerts[0].AlertType)

	// An empty, non-nil slice resets spending.
	result, err = NewTracker(nil).GenerateAlerts(AlertRequest{
		Categories:   categories,
		Transactions: []model.CategorizedTransaction{},
	})
	require.NoError(t, err)
	assert.Zero(t, categories[0].CurrentSpent)
	assert.Empty(t, result.Alerts)
}

func TestGenerateAlerts_ThresholdOverride(t *testing.T) {
	categories := mustCreate(t, CategorySpec{Name: "Gym", MonthlyLimit: 100})

	result, err := NewTracker(nil).GenerateAlerts(AlertRequest{
		Categories:   categories,
		Transactions: []model.CategorizedTransaction{spend("Gym", -60)},
		Thresholds:   []float64{50},
	})
	require.NoError(t, err)
	require.Len(t, result.Alerts, 1)
	assert.Equal(t, "warning_50", result.Alerts[0].AlertType)
	assert.InDelta(t, 50.0, result.Alerts[0].Threshold, 1e-9)

	_, err = NewTracker(nil).GenerateAlerts(AlertRequest{Categories: categories, Thresholds: []float64{-1}})
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestGenerateAlerts_PersonalityMessages(t *testing.T) {
	messages := make(map[string]bool)
	for _, p := range model.PersonalityTypes() {
		categories := mustCreate(t, CategorySpec{Name: "Shopping", MonthlyLimit: 100})
		result, err := NewTracker(nil).GenerateAlerts(AlertRequest{
			Categories:   categories,
			Transactions: []model.CategorizedTransaction{spend("Shopping", -80)},
			Profile:      &model.PersonalityProfile{Primary: p},
		})
		require.NoError(t, err)
		require.Len(t, result.Alerts, 1)

		alert := result.Alerts[0]
		assert.NotEqual(t, alert.Message, alert.PersonalityAwareMessage)
		assert.Contains(t, alert.PersonalityAwareMessage, "Shopping")
		assert.NotContains(t, alert.PersonalityAwareMessage, "%!")
		messages[alert.PersonalityAwareMessage] = true
	}
	assert.Len(t, messages, len(model.PersonalityTypes()))

	_, err := NewTracker(nil).GenerateAlerts(AlertRequest{Profile: &model.PersonalityProfile{Primary: "unknown"}})
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestAlertType(t *testing.T) {
	assert.Equal(t, "warning_75", AlertType(75))
	assert.Equal(t, "warning_87.5", AlertType(87.5))
	assert.Equal(t, "alert_90", AlertType(90))
	assert.Equal(t, "exceeded_100", AlertType(100))
	assert.Equal(t, "exceeded_120", AlertType(120))
}
