package model

// BudgetState classifies the current spending snapshot of a budget category.
type BudgetState string

// Budget state constants, in advancing order within a period.
const (
	BudgetCreated  BudgetState = "created"
	BudgetTracking BudgetState = "tracking"
	BudgetWarning  BudgetState = "warning"
	BudgetAlerting BudgetState = "alert"
	BudgetExceeded BudgetState = "exceeded"
)

// BudgetCategory is a per-category monthly limit and its current usage.
// It is owned by the caller and updated in place on every evaluation.
type BudgetCategory struct {
	CategoryName    string      `json:"category_name"`
	State           BudgetState `json:"state"`
	AlertThresholds []float64   `json:"alert_thresholds"`
	MonthlyLimit    float64     `json:"monthly_limit"`
	CurrentSpent    float64     `json:"current_spent"`
	PercentageUsed  float64     `json:"percentage_used"`
	RemainingBudget float64     `json:"remaining_budget"`
}

// BudgetAlert is a threshold crossing for one category.
type BudgetAlert struct {
	CategoryName            string   `json:"category_name"`
	AlertType               string   `json:"alert_type"`
	Severity                Severity `json:"severity"`
	Message                 string   `json:"message"`
	PersonalityAwareMessage string   `json:"personality_aware_message"`
	Threshold               float64  `json:"threshold"`
	PercentageUsed          float64  `json:"percentage_used"`
}
