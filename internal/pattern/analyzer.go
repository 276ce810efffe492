// Package pattern detects recurring expenses, seasonal spikes, amount
// anomalies and weekday habits in a categorized transaction history.
package pattern

import (
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/Veraticus/spice-insights/internal/common"
	"github.com/Veraticus/spice-insights/internal/merchant"
	"github.com/Veraticus/spice-insights/internal/model"
	"github.com/Veraticus/spice-insights/internal/stats"
)

// DefaultWindowDays is the analysis window when none is requested.
const DefaultWindowDays = 90

// Detection thresholds.
const (
	recurringTolerance   = 0.4
	recurringConfidence  = 0.9
	seasonalSpikeFactor  = 1.5
	anomalyMinSamples    = 3
	anomalyDeviations    = 2.0
	highSeverityDeviates = 3.0
	anomalyConfidenceCap = 0.9
	anomalyConfidenceDiv = 4.0
)

// WeekendTrigger marks transactions made on Saturday or Sunday.
const WeekendTrigger = "weekend"

// Request is one analysis call.
type Request struct {
	AsOf       time.Time
	UserID     string
	History    []model.CategorizedTransaction
	WindowDays int
}

// Result holds every insight plus annotated copies of the history.
type Result struct {
	Behavior          model.BehaviorInsights         `json:"behavioral_insights"`
	Transactions      []model.CategorizedTransaction `json:"transactions"`
	RecurringExpenses []model.RecurringExpense       `json:"recurring_expenses"`
	SeasonalTrends    []model.SeasonalTrend          `json:"seasonal_trends"`
	Anomalies         []model.Anomaly                `json:"anomalies"`
	WindowStart       time.Time                      `json:"window_start"`
	WindowEnd         time.Time                      `json:"window_end"`
	SkippedUndated    int                            `json:"skipped_undated"`
}

// Analyzer is stateless; one instance may serve concurrent calls.
type Analyzer struct {
	logger *slog.Logger
}

// NewAnalyzer creates an Analyzer.
func NewAnalyzer(logger *slog.Logger) *Analyzer {
	return &Analyzer{logger: common.LoggerOrDefault(logger)}
}

// Analyze runs every detector over the window ending at req.AsOf, or at the
// latest dated transaction when AsOf is zero. The input slice is not modified.
func (a *Analyzer) Analyze(req Request) *Result {
	windowDays := req.WindowDays
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}

	result := &Result{
		Transactions:      make([]model.CategorizedTransaction, len(req.History)),
		RecurringExpenses: []model.RecurringExpense{},
		SeasonalTrends:    []model.SeasonalTrend{},
		Anomalies:         []model.Anomaly{},
	}
	copy(result.Transactions, req.History)

	end := req.AsOf
	if end.IsZero() {
		end = latestDate(req.History)
	}
	start := end.AddDate(0, 0, -windowDays)
	result.WindowStart, result.WindowEnd = start, end

	// Indices into result.Transactions that take part in the statistics.
	// Income and refunds never count as spending.
	var window []int
	for i, ct := range result.Transactions {
		if !ct.HasDate() {
			result.SkippedUndated++
			continue
		}
		if ct.Date.Before(start) || ct.Date.After(end) || !ct.IsExpense() {
			continue
		}
		if ct.MerchantKey == "" {
			result.Transactions[i].MerchantKey = merchant.KeyFor(ct.Transaction)
		}
		window = append(window, i)
	}

	txns := result.Transactions
	result.RecurringExpenses = detectRecurring(txns, window)
	result.SeasonalTrends = detectSeasonal(txns, window)
	result.Anomalies = detectAnomalies(txns, window)
	result.Behavior = analyzeBehavior(txns, window)

	a.logger.Info("Analyzed spending patterns",
		"user_id", req.UserID,
		"count", len(req.History),
		"in_window", len(window),
		"skipped_undated", result.SkippedUndated,
		"recurring", len(result.RecurringExpenses),
		"seasonal", len(result.SeasonalTrends),
		"anomalies", len(result.Anomalies))

	return result
}

func latestDate(history []model.CategorizedTransaction) time.Time {
	var latest time.Time
	for _, ct := range history {
		if ct.HasDate() && ct.Date.After(latest) {
			latest = ct.Date
		}
	}
	return latest
}

func detectRecurring(txns []model.CategorizedTransaction, window []int) []model.RecurringExpense {
	groups := make(map[string][]int)
	var keys []string
	for _, i := range window {
		key := txns[i].MerchantKey
		if !merchant.IsGroupable(key) {
			continue
		}
		if _, ok := groups[key]; !ok {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], i)
	}
	sort.Strings(keys)

	recurring := []model.RecurringExpense{}
	for _, key := range keys {
		members := groups[key]
		if len(members) < 2 {
			continue
		}

		amounts := make([]float64, len(members))
		dates := make([]time.Time, len(members))
		categories := make([]string, len(members))
		for j, i := range members {
			amounts[j] = txns[i].AbsAmount()
			dates[j] = txns[i].Date
			categories[j] = txns[i].Category
		}

		if !stats.WithinSpread(amounts, recurringTolerance) {
			continue
		}

		recurring = append(recurring, model.RecurringExpense{
			MerchantPattern:  key,
			Frequency:        stats.InferFrequency(dates),
			Category:         stats.MostFrequent(categories),
			AverageAmount:    common.RoundMoney(stats.Mean(amounts)),
			TransactionCount: len(members),
			ConfidenceScore:  math.Min(recurringConfidence, float64(len(members)*3)/10),
		})
	}
	return recurring
}

func detectSeasonal(txns []model.CategorizedTransaction, window []int) []model.SeasonalTrend {
	byCategory := make(map[string]*common.MoneyAccumulator)
	var categories []string

	for _, i := range window {
		ct := txns[i]
		if ct.Category == "" {
			continue
		}
		months, ok := byCategory[ct.Category]
		if !ok {
			months = common.NewMoneyAccumulator()
			byCategory[ct.Category] = months
			categories = append(categories, ct.Category)
		}
		months.Add(ct.Date.Format("2006-01"), ct.AbsAmount())
	}
	sort.Strings(categories)

	trends := []model.SeasonalTrend{}
	for _, category := range categories {
		months := byCategory[category]
		if len(months.Keys()) < 2 {
			continue
		}

		var peakMonth string
		var peak float64
		monthly := make([]float64, 0, len(months.Keys()))
		for _, month := range months.Keys() {
			total := months.Total(month)
			monthly = append(monthly, total)
			if total > peak || (total == peak && month < peakMonth) {
				peakMonth, peak = month, total
			}
		}

		average := stats.Mean(monthly)
		if peak > seasonalSpikeFactor*average {
			trends = append(trends, model.SeasonalTrend{
				Category:       category,
				TrendType:      model.TrendSpike,
				PeakMonth:      peakMonth,
				PeakAmount:     peak,
				AverageMonthly: common.RoundMoney(average),
			})
		}
	}
	return trends
}

// detectAnomalies flags outliers per category and marks the annotated copies.
func detectAnomalies(txns []model.CategorizedTransaction, window []int) []model.Anomaly {
	byCategory := make(map[string][]int)
	for _, i := range window {
		byCategory[txns[i].Category] = append(byCategory[txns[i].Category], i)
	}

	anomalies := []model.Anomaly{}
	flagged := make(map[int]model.Anomaly)
	for category, members := range byCategory {
		if len(members) < anomalyMinSamples {
			continue
		}

		amounts := make([]float64, len(members))
		for j, i := range members {
			amounts[j] = txns[i].AbsAmount()
		}
		mean := stats.Mean(amounts)
		stdDev := stats.StdDev(amounts)
		if stdDev == 0 {
			continue
		}

		for j, i := range members {
			deviation := amounts[j] - mean
			z := math.Abs(deviation) / stdDev
			if z <= anomalyDeviations {
				continue
			}

			anomalyType := model.AnomalyAmountSpike
			if deviation < 0 {
				anomalyType = model.AnomalyAmountDip
			}
			severity := model.SeverityMedium
			if z > highSeverityDeviates {
				severity = model.SeverityHigh
			}

			flagged[i] = model.Anomaly{
				Date:            txns[i].Date,
				TransactionID:   txns[i].ID,
				MerchantName:    txns[i].MerchantIdentifier(),
				Category:        category,
				AnomalyType:     anomalyType,
				Severity:        severity,
				Amount:          txns[i].Amount,
				ExpectedAmount:  common.RoundMoney(mean),
				StdDeviations:   math.Round(z*100) / 100,
				ConfidenceScore: math.Round(math.Min(anomalyConfidenceCap, z/anomalyConfidenceDiv)*100) / 100,
			}
		}
	}

	// Report in history order.
	for _, i := range window {
		if anomaly, ok := flagged[i]; ok {
			txns[i].IsAnomaly = true
			anomalies = append(anomalies, anomaly)
		}
	}
	return anomalies
}

func analyzeBehavior(txns []model.CategorizedTransaction, window []int) model.BehaviorInsights {
	byDay := common.NewMoneyAccumulator()
	var weekendSpend, totalSpend float64
	var count int

	for _, i := range window {
		ct := txns[i]
		weekday := ct.Date.Weekday()
		if weekday == time.Saturday || weekday == time.Sunday {
			txns[i].SpendingTrigger = WeekendTrigger
		}

		amount := ct.AbsAmount()
		byDay.Add(weekday.String(), amount)
		totalSpend += amount
		count++
		if weekday == time.Saturday || weekday == time.Sunday {
			weekendSpend += amount
		}
	}

	insights := model.BehaviorInsights{
		SpendByWeekday:   make(map[string]float64, len(byDay.Keys())),
		TotalSpend:       common.RoundMoney(totalSpend),
		TransactionCount: count,
	}
	if count == 0 {
		return insights
	}

	for day := time.Sunday; day <= time.Saturday; day++ {
		name := day.String()
		total := byDay.Total(name)
		if total == 0 {
			continue
		}
		insights.SpendByWeekday[name] = total
		if total > insights.TopWeekdayAmount {
			insights.TopWeekday, insights.TopWeekdayAmount = name, total
		}
	}
	insights.WeekendRatio = math.Round(weekendSpend/totalSpend*1000) / 1000
	insights.AverageAmount = common.RoundMoney(totalSpend / float64(count))
	return insights
}
