package budget

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-insights/internal/common"
	"github.com/Veraticus/spice-insights/internal/model"
)

// Variance bands, as percentage used.
const (
	overBudgetPercent  = 100.0
	underBudgetPercent = 50.0
	// Share of an under-used category's remaining budget offered for reallocation.
	reallocatableShare = 0.5
)

// CategoryVariance is one category outside the normal band.
type CategoryVariance struct {
	CategoryName   string  `json:"category_name"`
	PercentageUsed float64 `json:"percentage_used"`
	// Spent minus limit; negative for under-used categories.
	Variance float64 `json:"variance"`
}

// Reallocation moves part of one category's limit to another.
type Reallocation struct {
	FromCategory string  `json:"from_category"`
	ToCategory   string  `json:"to_category"`
	Amount       float64 `json:"amount"`
}

// VarianceReport compares over-spent and under-used categories.
type VarianceReport struct {
	OverBudget       []CategoryVariance `json:"over_budget"`
	UnderBudget      []CategoryVariance `json:"under_budget"`
	Suggestions      []Reallocation     `json:"reallocation_suggestions"`
	UncoveredOverage float64            `json:"uncovered_overage"`
}

// AnalyzeVariance lists categories above 100% and below 50% of their limit
// and greedily covers each overage, largest first, from the under-used
// categories with the most room.
func AnalyzeVariance(categories []model.BudgetCategory) *VarianceReport {
	report := &VarianceReport{
		OverBudget:  []CategoryVariance{},
		UnderBudget: []CategoryVariance{},
		Suggestions: []Reallocation{},
	}

	type donor struct {
		name      string
		available decimal.Decimal
	}
	var donors []*donor

	for _, c := range categories {
		if c.MonthlyLimit <= 0 {
			continue
		}
		v := CategoryVariance{
			CategoryName:   c.CategoryName,
			PercentageUsed: c.PercentageUsed,
			Variance:       common.SumMoney(c.CurrentSpent, -c.MonthlyLimit),
		}
		switch {
		case c.PercentageUsed > overBudgetPercent:
			report.OverBudget = append(report.OverBudget, v)
		case c.PercentageUsed < underBudgetPercent:
			report.UnderBudget = append(report.UnderBudget, v)
			available := decimal.NewFromFloat(c.RemainingBudget).Mul(decimal.NewFromFloat(reallocatableShare)).Round(2)
			if available.IsPositive() {
				donors = append(donors, &donor{name: c.CategoryName, available: available})
			}
		}
	}

	sort.SliceStable(report.OverBudget, func(i, j int) bool {
		return report.OverBudget[i].Variance > report.OverBudget[j].Variance
	})
	sort.SliceStable(donors, func(i, j int) bool {
		return donors[i].available.GreaterThan(donors[j].available)
	})

	uncovered := decimal.Zero
	for _, over := range report.OverBudget {
		need := decimal.NewFromFloat(over.Variance)
		for _, d := range donors {
			if !need.IsPositive() {
				break
			}
			if !d.available.IsPositive() {
				continue
			}
			amount := decimal.Min(need, d.available)
			d.available = d.available.Sub(amount)
			need = need.Sub(amount)
			report.Suggestions = append(report.Suggestions, Reallocation{
				FromCategory: d.name,
				ToCategory:   over.CategoryName,
				Amount:       amount.Round(2).InexactFloat64(),
			})
		}
		if need.IsPositive() {
			uncovered = uncovered.Add(need)
		}
	}
	report.UncoveredOverage = uncovered.Round(2).InexactFloat64()

	return report
}
