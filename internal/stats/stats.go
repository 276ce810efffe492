// Package stats holds the small numeric helpers shared by the analyzers.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/Veraticus/spice-insights/internal/model"
)

// Frequency interval ceilings, in days.
const (
	WeeklyMaxDays  = 7.0
	MonthlyMaxDays = 35.0
)

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev returns the population standard deviation.
func StdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := Mean(values)
	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(values)))
}

// MinMax returns the smallest and largest value.
func MinMax(values []float64) (minVal, maxVal float64) {
	if len(values) == 0 {
		return 0, 0
	}
	minVal, maxVal = values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	return minVal, maxVal
}

// WithinSpread reports whether (max-min) < tolerance*max. Tolerance is a
// fraction, 0.4 for recurring expenses and 0.05 for subscriptions.
func WithinSpread(values []float64, tolerance float64) bool {
	if len(values) == 0 {
		return false
	}
	minVal, maxVal := MinMax(values)
	if maxVal <= 0 {
		return false
	}
	return maxVal-minVal < tolerance*maxVal
}

// MeanIntervalDays returns the mean number of days between consecutive dates.
// Dates are sorted first; fewer than two dates yields 0.
func MeanIntervalDays(dates []time.Time) float64 {
	if len(dates) < 2 {
		return 0
	}
	sorted := make([]time.Time, len(dates))
	copy(sorted, dates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	var total float64
	for i := 1; i < len(sorted); i++ {
		total += sorted[i].Sub(sorted[i-1]).Hours() / 24
	}
	return total / float64(len(sorted)-1)
}

// InferFrequency classifies a charge cadence. Two charges are assumed to be
// monthly; three or more use the mean interval.
func InferFrequency(dates []time.Time) model.Frequency {
	if len(dates) < 3 {
		return model.FrequencyMonthly
	}
	switch interval := MeanIntervalDays(dates); {
	case interval <= WeeklyMaxDays:
		return model.FrequencyWeekly
	case interval <= MonthlyMaxDays:
		return model.FrequencyMonthly
	default:
		return model.FrequencyOccasional
	}
}

// MonthlyEquivalent converts an average charge to a monthly cost.
func MonthlyEquivalent(average float64, freq model.Frequency) float64 {
	switch freq {
	case model.FrequencyWeekly:
		return average * 52 / 12
	case model.FrequencyOccasional:
		return average / 3
	default:
		return average
	}
}

// MostFrequent returns the most common non-empty label. Ties go to the label
// that reached the winning count first.
func MostFrequent(labels []string) string {
	counts := make(map[string]int, len(labels))
	best, bestCount := "", 0
	for _, l := range labels {
		if l == "" {
			continue
		}
		counts[l]++
		if counts[l] > bestCount {
			best, bestCount = l, counts[l]
		}
	}
	return best
}
