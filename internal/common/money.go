package common

import "github.com/shopspring/decimal"

// RoundMoney rounds an amount to whole cents using banker-safe decimal math.
func RoundMoney(amount float64) float64 {
	return decimal.NewFromFloat(amount).Round(2).InexactFloat64()
}

// SumMoney adds amounts without accumulating binary floating point drift.
func SumMoney(amounts ...float64) float64 {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(decimal.NewFromFloat(a))
	}
	return total.Round(2).InexactFloat64()
}

// MoneyAccumulator sums amounts keyed by a label.
type MoneyAccumulator struct {
	totals map[string]decimal.Decimal
	order  []string
}

// NewMoneyAccumulator creates an empty accumulator.
func NewMoneyAccumulator() *MoneyAccumulator {
	return &MoneyAccumulator{totals: make(map[string]decimal.Decimal)}
}

// Add adds amount to the running total for key.
func (a *MoneyAccumulator) Add(key string, amount float64) {
	current, ok := a.totals[key]
	if !ok {
		a.order = append(a.order, key)
	}
	a.totals[key] = current.Add(decimal.NewFromFloat(amount))
}

// Total returns the rounded total for key.
func (a *MoneyAccumulator) Total(key string) float64 {
	return a.totals[key].Round(2).InexactFloat64()
}

// Keys returns keys in first-seen order.
func (a *MoneyAccumulator) Keys() []string {
	return a.order
}

// Percentage returns part/whole*100 with negative parts floored at zero, or 0
// when whole is not positive.
func Percentage(part, whole float64) float64 {
	if whole <= 0 {
		return 0
	}
	if part < 0 {
		part = 0
	}
	return part / whole * 100
}
