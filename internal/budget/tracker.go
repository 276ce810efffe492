// Package budget tracks monthly category limits against current spending and
// raises threshold alerts. Budget state is recomputed from scratch on every
// evaluation.
package budget

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-insights/internal/common"
	"github.com/Veraticus/spice-insights/internal/model"
)

// DefaultThresholds are the alert percentages used when none are configured.
var DefaultThresholds = []float64{75, 90, 100}

// Percentages at which alert severity escalates.
const (
	alertLevel    = 90.0
	exceededLevel = 100.0
)

// CategorySpec describes a budget to create.
type CategorySpec struct {
	Name            string    `json:"category_name"`
	AlertThresholds []float64 `json:"alert_thresholds,omitempty"`
	MonthlyLimit    float64   `json:"monthly_limit"`
}

// AlertRequest is one alert evaluation. A nil Transactions slice evaluates
// the categories as supplied; a non-nil slice, even an empty one, recomputes
// spending first. Thresholds, when set, override every category's own.
type AlertRequest struct {
	Profile         *model.PersonalityProfile
	UserID          string
	Categories      []model.BudgetCategory
	Transactions    []model.CategorizedTransaction
	Thresholds      []float64
	IncludeVariance bool
}

// AlertResult holds the evaluated categories and any alerts.
type AlertResult struct {
	Variance   *VarianceReport        `json:"variance_analysis,omitempty"`
	Categories []model.BudgetCategory `json:"budget_categories"`
	Alerts     []model.BudgetAlert    `json:"alerts"`
}

// Tracker is stateless; categories are owned by the caller.
type Tracker struct {
	logger *slog.Logger
}

// NewTracker creates a Tracker.
func NewTracker(logger *slog.Logger) *Tracker {
	return &Tracker{logger: common.LoggerOrDefault(logger)}
}

// Create initializes budget categories with no spending.
func (t *Tracker) Create(specs []CategorySpec) ([]model.BudgetCategory, error) {
	verr := &common.ValidationError{}
	seen := make(map[string]bool, len(specs))
	for i, spec := range specs {
		name := strings.TrimSpace(spec.Name)
		switch {
		case name == "":
			verr.Add(i, "category_name", "category name is required")
		case seen[strings.ToLower(name)]:
			verr.Add(i, "category_name", fmt.Sprintf("duplicate category %q", name))
		}
		seen[strings.ToLower(name)] = true

		if math.IsNaN(spec.MonthlyLimit) || math.IsInf(spec.MonthlyLimit, 0) || spec.MonthlyLimit < 0 {
			verr.Add(i, "monthly_limit", "monthly limit must be a finite, non-negative number")
		}
		if msg := checkThresholds(spec.AlertThresholds); msg != "" {
			verr.Add(i, "alert_thresholds", msg)
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	categories := make([]model.BudgetCategory, len(specs))
	for i, spec := range specs {
		thresholds := spec.AlertThresholds
		if len(thresholds) == 0 {
			thresholds = DefaultThresholds
		}
		limit := common.RoundMoney(spec.MonthlyLimit)
		categories[i] = model.BudgetCategory{
			CategoryName:    strings.TrimSpace(spec.Name),
			State:           model.BudgetCreated,
			AlertThresholds: sortedThresholds(thresholds),
			MonthlyLimit:    limit,
			RemainingBudget: limit,
		}
	}

	t.logger.Debug("Created budget categories", "count", len(categories))
	return categories, nil
}

// UpdateSpending recomputes spent, percentage, remaining and state for each
// category in place. Amounts are summed as absolute values by case-insensitive
// category name.
func (t *Tracker) UpdateSpending(categories []model.BudgetCategory, transactions []model.CategorizedTransaction) {
	spent := common.NewMoneyAccumulator()
	for _, txn := range transactions {
		spent.Add(normalizeName(txn.Category), txn.AbsAmount())
	}

	for i := range categories {
		c := &categories[i]
		c.CurrentSpent = spent.Total(normalizeName(c.CategoryName))
		recompute(c, c.AlertThresholds)
	}
}

// GenerateAlerts evaluates every category and emits at most one alert each,
// for the highest threshold crossed.
func (t *Tracker) GenerateAlerts(req AlertRequest) (*AlertResult, error) {
	if msg := checkThresholds(req.Thresholds); msg != "" {
		verr := &common.ValidationError{}
		verr.Add(-1, "thresholds", msg)
		return nil, verr
	}
	if req.Profile != nil {
		if _, ok := personalityPhrases[req.Profile.Primary]; !ok {
			verr := &common.ValidationError{}
			verr.Add(-1, "personality_profile.primary", fmt.Sprintf("unknown personality type %q", req.Profile.Primary))
			return nil, verr
		}
	}

	if req.Transactions != nil {
		t.UpdateSpending(req.Categories, req.Transactions)
	}

	var override []float64
	if len(req.Thresholds) > 0 {
		override = sortedThresholds(req.Thresholds)
	}

	result := &AlertResult{
		Categories: req.Categories,
		Alerts:     []model.BudgetAlert{},
	}
	for i := range req.Categories {
		c := &req.Categories[i]
		thresholds := c.AlertThresholds
		if override != nil {
			thresholds = override
		}
		recompute(c, thresholds)

		crossed, ok := highestCrossed(c.PercentageUsed, thresholds)
		if !ok {
			continue
		}
		result.Alerts = append(result.Alerts, buildAlert(*c, crossed, req.Profile))
	}

	if req.IncludeVariance {
		result.Variance = AnalyzeVariance(req.Categories)
	}

	t.logger.Info("Evaluated budgets",
		"user_id", req.UserID,
		"categories", len(req.Categories),
		"alerts", len(result.Alerts))

	return result, nil
}

// recompute derives percentage, remaining and state from spent and limit.
func recompute(c *model.BudgetCategory, thresholds []float64) {
	if len(thresholds) == 0 {
		thresholds = DefaultThresholds
	}

	c.PercentageUsed = common.Percentage(c.CurrentSpent, c.MonthlyLimit)
	remaining := decimal.NewFromFloat(c.MonthlyLimit).Sub(decimal.NewFromFloat(c.CurrentSpent))
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	c.RemainingBudget = remaining.Round(2).InexactFloat64()

	c.State = model.BudgetTracking
	if crossed, ok := highestCrossed(c.PercentageUsed, thresholds); ok {
		c.State = stateFor(crossed)
	}
}

func highestCrossed(percentage float64, thresholds []float64) (float64, bool) {
	for i := len(thresholds) - 1; i >= 0; i-- {
		if percentage >= thresholds[i] {
			return thresholds[i], true
		}
	}
	return 0, false
}

func stateFor(threshold float64) model.BudgetState {
	switch {
	case threshold >= exceededLevel:
		return model.BudgetExceeded
	case threshold >= alertLevel:
		return model.BudgetAlerting
	default:
		return model.BudgetWarning
	}
}

func checkThresholds(thresholds []float64) string {
	for _, th := range thresholds {
		if math.IsNaN(th) || math.IsInf(th, 0) || th <= 0 {
			return "thresholds must be positive percentages"
		}
	}
	return ""
}

func sortedThresholds(thresholds []float64) []float64 {
	out := make([]float64, len(thresholds))
	copy(out, thresholds)
	sort.Float64s(out)
	return out
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
