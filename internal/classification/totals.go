package classification

import (
	"github.com/Veraticus/spice-insights/internal/common"
	"github.com/Veraticus/spice-insights/internal/model"
)

// CategoryTotals averages categorized expenses into monthly totals per
// category. Income is ignored; months below 1 are treated as 1.
func CategoryTotals(categorized []model.CategorizedTransaction, months int) map[string]float64 {
	if months < 1 {
		months = 1
	}

	acc := common.NewMoneyAccumulator()
	for _, ct := range categorized {
		if !ct.IsExpense() || ct.Category == "" {
			continue
		}
		acc.Add(ct.Category, ct.AbsAmount())
	}

	totals := make(map[string]float64, len(acc.Keys()))
	for _, category := range acc.Keys() {
		totals[category] = common.RoundMoney(acc.Total(category) / float64(months))
	}
	return totals
}
