package engine

import (
	"math"

	"github.com/Veraticus/spice-insights/internal/common"
	"github.com/Veraticus/spice-insights/internal/model"
)

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func checkAmounts(verr *common.ValidationError, history []model.CategorizedTransaction) {
	for i, ct := range history {
		if !finite(ct.Amount) {
			verr.Add(i, "amount", "amount must be a finite number")
		}
	}
}

// validateHistory rejects categorized records whose amounts cannot be summed.
func validateHistory(history []model.CategorizedTransaction) error {
	verr := &common.ValidationError{}
	checkAmounts(verr, history)
	return verr.OrNil()
}

// validateBudgetInput checks the categories and transactions of an update or
// alerts call. Category issues are reported under budget_category fields.
func validateBudgetInput(categories []model.BudgetCategory, transactions []model.CategorizedTransaction) error {
	verr := &common.ValidationError{}
	for i, c := range categories {
		if !finite(c.MonthlyLimit) || c.MonthlyLimit < 0 {
			verr.Add(i, "budget_category.monthly_limit", "monthly limit must be a non-negative finite number")
		}
		if !finite(c.CurrentSpent) {
			verr.Add(i, "budget_category.current_spent", "current spent must be a finite number")
		}
	}
	checkAmounts(verr, transactions)
	return verr.OrNil()
}
