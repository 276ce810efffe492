package model

import "time"

// CorrectionSource indicates how a feedback correction was created.
type CorrectionSource string

const (
	// SourceUser indicates the user explicitly recategorized a merchant.
	SourceUser CorrectionSource = "USER"
	// SourceImported indicates the correction came from an external history import.
	SourceImported CorrectionSource = "IMPORTED"
)

// Correction is a user-confirmed category for a merchant key.
type Correction struct {
	LastUpdated time.Time
	MerchantKey string
	Category    string
	Source      CorrectionSource
	UseCount    int
}

// FeedbackHistory maps a merchant (any spelling) to its corrected category.
type FeedbackHistory map[string]string

// FeedbackFromCorrections builds a feedback history from stored corrections.
func FeedbackFromCorrections(corrections []Correction) FeedbackHistory {
	history := make(FeedbackHistory, len(corrections))
	for _, c := range corrections {
		history[c.MerchantKey] = c.Category
	}
	return history
}
