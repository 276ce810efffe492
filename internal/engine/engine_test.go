package engine

import (
	"context"
	"encoding/json"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-insights/internal/budget"
	"github.com/Veraticus/spice-insights/internal/classification"
	"github.com/Veraticus/spice-insights/internal/common"
	"github.com/Veraticus/spice-insights/internal/model"
	"github.com/Veraticus/spice-insights/internal/service"
)

func newTestEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	e, err := New(cfg, nil)
	require.NoError(t, err)
	return e
}

func on(month time.Month, day int) time.Time {
	return time.Date(2024, month, day, 9, 0, 0, 0, time.UTC)
}

func TestCategorize_Envelope(t *testing.T) {
	e := newTestEngine(t, Config{})

	resp := e.Categorize(context.Background(), CategorizeInput{
		UserID: "user-1",
		Transactions: []model.Transaction{
			{ID: "1", MerchantName: "Starbucks #4521", Amount: -5.75, Date: on(time.March, 1)},
			{ID: "2", MerchantName: "Netflix.com", Amount: -15.49, Date: on(time.March, 2)},
		},
		FeedbackHistory: model.FeedbackHistory{"STARBUCKS": "Coffee & Dining"},
	})

	require.True(t, resp.OK())
	assert.Nil(t, resp.Error)
	_, err := uuid.Parse(resp.RequestID)
	require.NoError(t, err)

	require.NotNil(t, resp.Data)
	assert.Equal(t, classification.Summary{UserLearned: 1, RuleBased: 1}, resp.Data.Summary)
	assert.Equal(t, "Coffee & Dining", resp.Data.Transactions[0].Category)
}

func TestCategorize_FallbackDefaultsOn(t *testing.T) {
	var calls atomic.Int32
	classifier := service.ClassifierFunc(func(context.Context, string, string, float64) (service.Classification, error) {
		calls.Add(1)
		return service.Classification{Category: "Pets", Confidence: 0.7}, nil
	})
	e := newTestEngine(t, Config{Classifier: classifier})
	input := CategorizeInput{
		UserID:       "user-1",
		Transactions: []model.Transaction{{ID: "1", MerchantName: "Happy Paws", Amount: -40}},
	}

	resp := e.Categorize(context.Background(), input)
	require.True(t, resp.OK())
	assert.Equal(t, model.MethodFallbackClassified, resp.Data.Transactions[0].Method)
	assert.Equal(t, int32(1), calls.Load())

	disabled := false
	input.AllowFallbackClassifier = &disabled
	resp = e.Categorize(context.Background(), input)
	require.True(t, resp.OK())
	assert.Equal(t, model.MethodUnclassified, resp.Data.Transactions[0].Method)
	assert.Equal(t, int32(1), calls.Load())
}

func TestCategorize_ValidationEnvelope(t *testing.T) {
	e := newTestEngine(t, Config{})

	resp := e.Categorize(context.Background(), CategorizeInput{
		UserID: "user-1",
		Transactions: []model.Transaction{
			{ID: "ok", MerchantName: "Lyft", Amount: -12},
			{ID: "bad"},
		},
	})

	assert.False(t, resp.OK())
	assert.Equal(t, StatusError, resp.Status)
	assert.Nil(t, resp.Data)
	require.NotNil(t, resp.Error)
	assert.Equal(t, KindValidation, resp.Error.Kind)
	require.Len(t, resp.Error.Issues, 1)
	assert.Equal(t, 1, resp.Error.Issues[0].Index)
	assert.ErrorIs(t, resp.Err(), common.ErrValidation)
}

func TestEntryPoints_RequireUserID(t *testing.T) {
	e := newTestEngine(t, Config{})
	ctx := context.Background()

	kinds := []ErrorKind{
		e.Categorize(ctx, CategorizeInput{}).Error.Kind,
		e.Analyze(ctx, AnalyzeInput{}).Error.Kind,
		e.DetectSubscriptions(ctx, SubscriptionInput{}).Error.Kind,
		e.Recommend(ctx, RecommendInput{}).Error.Kind,
		e.Budget(ctx, BudgetInput{Operation: BudgetCreate}).Error.Kind,
	}
	for _, kind := range kinds {
		assert.Equal(t, KindValidation, kind)
	}
}

func TestCanceledContext(t *testing.T) {
	e := newTestEngine(t, Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp := e.Analyze(ctx, AnalyzeInput{UserID: "user-1"})
	require.NotNil(t, resp.Error)
	assert.Equal(t, KindCanceled, resp.Error.Kind)
	assert.ErrorIs(t, resp.Err(), context.Canceled)
}

func TestAnalyze(t *testing.T) {
	e := newTestEngine(t, Config{})
	var history []model.CategorizedTransaction
	for _, d := range []time.Time{on(time.January, 5), on(time.February, 4), on(time.March, 5)} {
		history = append(history, model.CategorizedTransaction{
			Transaction: model.Transaction{MerchantName: "RENT PAYMENT - MAIN ST APARTMENTS", Amount: -1200, Date: d},
			Category:    model.CategoryHousing,
		})
	}

	resp := e.Analyze(context.Background(), AnalyzeInput{UserID: "user-1", History: history})
	require.True(t, resp.OK())
	require.Len(t, resp.Data.RecurringExpenses, 1)
	assert.Equal(t, model.FrequencyMonthly, resp.Data.RecurringExpenses[0].Frequency)

	resp = e.Analyze(context.Background(), AnalyzeInput{UserID: "user-1", WindowDays: -1})
	assert.Equal(t, KindValidation, resp.Error.Kind)
}

func TestDetectSubscriptions(t *testing.T) {
	usage := service.UsageSignalFunc(func(context.Context, string, string) (service.UsageReport, error) {
		return service.UsageReport{Score: 0.05}, nil
	})
	e := newTestEngine(t, Config{UsageSignal: usage})

	var txns []model.Transaction
	for m := time.January; m <= time.March; m++ {
		txns = append(txns,
			model.Transaction{MerchantName: "Spotify", Amount: -9.99, Date: on(m, 10)},
			model.Transaction{MerchantName: "Apple Music", Amount: -9.99, Date: on(m, 12)},
		)
	}

	resp := e.DetectSubscriptions(context.Background(), SubscriptionInput{UserID: "user-1", Transactions: txns})
	require.True(t, resp.OK())
	assert.Len(t, resp.Data.Subscriptions, 2)
	require.Len(t, resp.Data.Opportunities, 1)
	assert.Equal(t, model.OpportunityDuplicateServices, resp.Data.Opportunities[0].OpportunityType)

	resp = e.DetectSubscriptions(context.Background(), SubscriptionInput{UserID: "user-1", Transactions: txns, IncludeUsageCheck: true})
	require.True(t, resp.OK())
	assert.Len(t, resp.Data.Opportunities, 3)
}

func TestRecommend(t *testing.T) {
	e := newTestEngine(t, Config{})

	resp := e.Recommend(context.Background(), RecommendInput{
		UserID:         "user-1",
		CategoryTotals: map[string]float64{"Food Delivery": 180},
		Profile:        model.PersonalityProfile{Primary: model.PersonalityConvenience},
	})
	require.True(t, resp.OK())
	require.Len(t, resp.Data.Opportunities, 1)
	assert.InDelta(t, 54.0, resp.Data.Opportunities[0].PotentialMonthlySavings, 1e-9)

	resp = e.Recommend(context.Background(), RecommendInput{
		UserID:  "user-1",
		Profile: model.PersonalityProfile{Primary: "thrill-seeker"},
	})
	require.NotNil(t, resp.Error)
	assert.Equal(t, KindValidation, resp.Error.Kind)
}

func TestBudgetLifecycle(t *testing.T) {
	e := newTestEngine(t, Config{})
	ctx := context.Background()

	created := e.Budget(ctx, BudgetInput{
		UserID:    "user-1",
		Operation: BudgetCreate,
		Specs:     []budget.CategorySpec{{Name: "Food Delivery", MonthlyLimit: 400}},
	})
	require.True(t, created.OK())
	categories := created.Data.Categories

	txns := []model.CategorizedTransaction{
		{Transaction: model.Transaction{Amount: -320.50}, Category: "Food Delivery"},
	}

	updated := e.Budget(ctx, BudgetInput{UserID: "user-1", Operation: BudgetUpdate, Categories: categories, Transactions: txns})
	require.True(t, updated.OK())
	assert.InDelta(t, 320.50, categories[0].CurrentSpent, 1e-9, "updated in place")

	alerts := e.Budget(ctx, BudgetInput{UserID: "user-1", Operation: BudgetAlerts, Categories: categories, Transactions: txns})
	require.True(t, alerts.OK())
	require.Len(t, alerts.Data.Alerts, 1)
	assert.Equal(t, "warning_75", alerts.Data.Alerts[0].AlertType)

	unknown := e.Budget(ctx, BudgetInput{UserID: "user-1", Operation: "archive"})
	require.NotNil(t, unknown.Error)
	assert.Equal(t, KindValidation, unknown.Error.Kind)
}

func issueIndices(t *testing.T, info *ErrorInfo) []int {
	t.Helper()
	require.NotNil(t, info)
	assert.Equal(t, KindValidation, info.Kind)
	indices := make([]int, 0, len(info.Issues))
	for _, issue := range info.Issues {
		indices = append(indices, issue.Index)
	}
	return indices
}

func TestAnalyze_RejectsNonFiniteAmounts(t *testing.T) {
	e := newTestEngine(t, Config{})
	history := []model.CategorizedTransaction{
		{Transaction: model.Transaction{MerchantName: "Safeway", Amount: -10, Date: on(time.March, 1)}, Category: "Groceries"},
		{Transaction: model.Transaction{MerchantName: "Safeway", Amount: -12, Date: on(time.March, 8)}, Category: "Groceries"},
		{Transaction: model.Transaction{MerchantName: "Safeway", Amount: math.NaN(), Date: on(time.March, 15)}, Category: "Groceries"},
		{Transaction: model.Transaction{MerchantName: "Safeway", Amount: math.Inf(-1), Date: on(time.March, 22)}, Category: "Groceries"},
	}

	resp := e.Analyze(context.Background(), AnalyzeInput{UserID: "user-1", History: history})

	assert.Equal(t, StatusError, resp.Status)
	assert.Nil(t, resp.Data)
	assert.Equal(t, []int{2, 3}, issueIndices(t, resp.Error))
	assert.ErrorIs(t, resp.Err(), common.ErrValidation)
}

func TestDetectSubscriptions_RejectsInvalidTransactions(t *testing.T) {
	e := newTestEngine(t, Config{})
	txns := []model.Transaction{
		{MerchantName: "Netflix", Amount: -15.99, Date: on(time.January, 5)},
		{MerchantName: "Netflix", Amount: math.Inf(1), Date: on(time.February, 5)},
		{Amount: -4, Date: on(time.February, 6)},
	}

	resp := e.DetectSubscriptions(context.Background(), SubscriptionInput{UserID: "user-1", Transactions: txns})

	assert.Nil(t, resp.Data)
	assert.Equal(t, []int{1, 2}, issueIndices(t, resp.Error))
}

func TestBudget_RejectsNonFiniteInput(t *testing.T) {
	e := newTestEngine(t, Config{})
	ctx := context.Background()
	categories := []model.BudgetCategory{
		{CategoryName: "Food Delivery", MonthlyLimit: 400, AlertThresholds: []float64{75, 90, 100}},
	}
	txns := []model.CategorizedTransaction{
		{Transaction: model.Transaction{Amount: -20}, Category: "Food Delivery"},
		{Transaction: model.Transaction{Amount: math.Inf(-1)}, Category: "Food Delivery"},
	}

	for _, op := range []BudgetOperation{BudgetUpdate, BudgetAlerts} {
		resp := e.Budget(ctx, BudgetInput{UserID: "user-1", Operation: op, Categories: categories, Transactions: txns})
		assert.Nil(t, resp.Data, op)
		assert.Equal(t, []int{1}, issueIndices(t, resp.Error), op)
	}
	assert.Zero(t, categories[0].CurrentSpent, "rejected input leaves categories untouched")

	bad := []model.BudgetCategory{{CategoryName: "Travel", MonthlyLimit: math.NaN()}}
	resp := e.Budget(ctx, BudgetInput{UserID: "user-1", Operation: BudgetUpdate, Categories: bad})
	require.NotNil(t, resp.Error)
	require.Len(t, resp.Error.Issues, 1)
	assert.Equal(t, "budget_category.monthly_limit", resp.Error.Issues[0].Field)
}

func TestPipeline(t *testing.T) {
	e := newTestEngine(t, Config{})
	ctx := context.Background()

	var raw []model.Transaction
	for m := time.January; m <= time.March; m++ {
		raw = append(raw,
			model.Transaction{MerchantName: "DoorDash*Sushi Place", Amount: -45, Date: on(m, 3)},
			model.Transaction{MerchantName: "Uber Eats", Amount: -38, Date: on(m, 17)},
			model.Transaction{MerchantName: "Netflix", Amount: -15.49, Date: on(m, 5)},
		)
	}

	categorized := e.Categorize(ctx, CategorizeInput{UserID: "u", Transactions: raw})
	require.True(t, categorized.OK())

	totals := classification.CategoryTotals(categorized.Data.Transactions, 3)
	assert.InDelta(t, 83.0, totals[model.CategoryFoodDelivery], 1e-9)

	recommended := e.Recommend(ctx, RecommendInput{
		UserID:         "u",
		CategoryTotals: totals,
		Profile:        model.PersonalityProfile{Primary: model.PersonalityPlanner},
	})
	require.True(t, recommended.OK())
	require.Len(t, recommended.Data.Opportunities, 1)
	assert.Equal(t, model.OpportunityReduceDelivery, recommended.Data.Opportunities[0].OpportunityType)
	assert.InDelta(t, 24.90, recommended.Data.Opportunities[0].PotentialMonthlySavings, 1e-9)
}

func TestResponseJSON(t *testing.T) {
	e := newTestEngine(t, Config{})
	resp := e.Recommend(context.Background(), RecommendInput{UserID: "u", Profile: model.PersonalityProfile{Primary: "nope"}})

	encoded, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, "error", decoded["status"])
	assert.NotEmpty(t, decoded["request_id"])
	assert.NotContains(t, decoded, "data")
	assert.Equal(t, "validation", decoded["error"].(map[string]any)["kind"])
}
