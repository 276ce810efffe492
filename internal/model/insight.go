package model

import "time"

// Frequency describes how often a recurring charge occurs.
type Frequency string

// Frequency constants.
const (
	FrequencyWeekly     Frequency = "weekly"
	FrequencyMonthly    Frequency = "monthly"
	FrequencyOccasional Frequency = "occasional"
)

// RecurringExpense is a merchant group with stable amounts and an inferable cadence.
type RecurringExpense struct {
	MerchantPattern  string    `json:"merchant_pattern"`
	Frequency        Frequency `json:"frequency"`
	Category         string    `json:"category"`
	AverageAmount    float64   `json:"average_amount"`
	TransactionCount int       `json:"transaction_count"`
	ConfidenceScore  float64   `json:"confidence_score"`
}

// TrendType classifies a seasonal trend.
type TrendType string

// TrendSpike marks a month whose category total far exceeds the category average.
const TrendSpike TrendType = "spike"

// SeasonalTrend reports a category's peak month.
type SeasonalTrend struct {
	Category       string    `json:"category"`
	TrendType      TrendType `json:"trend_type"`
	PeakMonth      string    `json:"peak_month"`
	PeakAmount     float64   `json:"peak_amount"`
	AverageMonthly float64   `json:"average_monthly"`
}

// AnomalyType classifies an amount outlier.
type AnomalyType string

// Anomaly type constants.
const (
	AnomalyAmountSpike AnomalyType = "amount_spike"
	AnomalyAmountDip   AnomalyType = "amount_dip"
)

// Severity grades anomalies and alerts.
type Severity string

// Severity constants.
const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Anomaly is a transaction whose amount is an outlier within its category.
type Anomaly struct {
	Date            time.Time   `json:"date"`
	TransactionID   string      `json:"transaction_id"`
	MerchantName    string      `json:"merchant_name"`
	Category        string      `json:"category"`
	AnomalyType     AnomalyType `json:"anomaly_type"`
	Severity        Severity    `json:"severity"`
	Amount          float64     `json:"amount"`
	ExpectedAmount  float64     `json:"expected_amount"`
	StdDeviations   float64     `json:"std_deviations"`
	ConfidenceScore float64     `json:"confidence_score"`
}

// BehaviorInsights summarizes when money is spent.
type BehaviorInsights struct {
	SpendByWeekday   map[string]float64 `json:"spend_by_weekday"`
	TopWeekday       string             `json:"top_weekday"`
	TopWeekdayAmount float64            `json:"top_weekday_amount"`
	WeekendRatio     float64            `json:"weekend_ratio"`
	TotalSpend       float64            `json:"total_spend"`
	AverageAmount    float64            `json:"average_amount"`
	TransactionCount int                `json:"transaction_count"`
}
