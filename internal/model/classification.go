package model

// CategorizationMethod records which stage of the categorizer resolved a transaction.
type CategorizationMethod string

// Categorization method constants.
const (
	MethodUserLearned        CategorizationMethod = "user_learned"
	MethodRuleBased          CategorizationMethod = "rule_based"
	MethodFallbackClassified CategorizationMethod = "fallback_classified"
	MethodUnclassified       CategorizationMethod = "unclassified"
)

// Methods lists every categorization method in chain order.
func Methods() []CategorizationMethod {
	return []CategorizationMethod{
		MethodUserLearned,
		MethodRuleBased,
		MethodFallbackClassified,
		MethodUnclassified,
	}
}

// CategorizedTransaction is a transaction after categorization. Later stages
// work on copies; the embedded Transaction is never modified.
type CategorizedTransaction struct {
	Category        string               `json:"category"`
	Subcategory     string               `json:"subcategory,omitempty"`
	MerchantKey     string               `json:"merchant_key"`
	Method          CategorizationMethod `json:"categorization_method"`
	SpendingTrigger string               `json:"spending_trigger,omitempty"`
	Transaction
	Confidence float64 `json:"confidence_score"`
	IsAnomaly  bool    `json:"is_anomaly"`
}
