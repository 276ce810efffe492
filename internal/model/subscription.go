package model

import "time"

// ServiceTypeOther is the fallback subscription service type.
const ServiceTypeOther = "Other"

// Subscription is a near-fixed-price recurring charge.
type Subscription struct {
	FirstChargeDate  time.Time `json:"first_charge_date"`
	LastChargeDate   time.Time `json:"last_charge_date"`
	MerchantName     string    `json:"merchant_name"`
	MerchantKey      string    `json:"merchant_key"`
	ServiceType      string    `json:"service_type"`
	Frequency        Frequency `json:"frequency"`
	AverageAmount    float64   `json:"average_amount"`
	MonthlyCost      float64   `json:"monthly_cost"`
	TransactionCount int       `json:"transaction_count"`
}

// Difficulty describes how hard an optimization is to act on.
type Difficulty string

// Difficulty constants.
const (
	DifficultyEasy    Difficulty = "easy"
	DifficultyMedium  Difficulty = "medium"
	DifficultyComplex Difficulty = "complex"
)

// Opportunity type constants.
const (
	OpportunityDuplicateServices = "duplicate_services"
	OpportunityUnusedService     = "unused_service"
	OpportunityReduceDelivery    = "reduce_food_delivery"
	OpportunitySubscriptions     = "optimize_subscriptions"
	OpportunityReduceShopping    = "reduce_shopping"
)

// OptimizationOpportunity is a concrete, scored savings suggestion.
type OptimizationOpportunity struct {
	OpportunityType          string     `json:"opportunity_type"`
	Description              string     `json:"description"`
	Category                 string     `json:"category,omitempty"`
	ImplementationDifficulty Difficulty `json:"implementation_difficulty"`
	PotentialMonthlySavings  float64    `json:"potential_monthly_savings"`
	ConfidenceScore          float64    `json:"confidence_score"`
	PersonalityFit           float64    `json:"personality_fit"`
}
