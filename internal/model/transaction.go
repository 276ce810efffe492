// Package model defines the core domain records shared by every stage of the
// transaction intelligence engine.
package model

import (
	"crypto/sha256"
	"fmt"
	"math"
	"strings"
	"time"
)

// Transaction is a single bank transaction as delivered by the aggregator feed.
// Amounts are signed: negative values are expenses, positive values are credits.
// A zero Date means the source date could not be parsed.
type Transaction struct {
	Date         time.Time `json:"date"`
	ID           string    `json:"id"`
	AccountID    string    `json:"account_id"`
	MerchantName string    `json:"merchant_name"`
	Description  string    `json:"description"`
	Amount       float64   `json:"amount"`
	Pending      bool      `json:"pending"`
}

// Hash creates a stable key for duplicate detection.
func (t Transaction) Hash() string {
	data := fmt.Sprintf("%s:%.2f:%s:%s",
		t.Date.Format("2006-01-02"),
		t.Amount,
		t.MerchantName,
		t.AccountID)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// IsExpense reports whether the transaction moves money out of the account.
func (t Transaction) IsExpense() bool {
	return t.Amount < 0
}

// AbsAmount returns the unsigned magnitude of the transaction.
func (t Transaction) AbsAmount() float64 {
	return math.Abs(t.Amount)
}

// HasDate reports whether the transaction carries a usable date.
func (t Transaction) HasDate() bool {
	return !t.Date.IsZero()
}

// MerchantIdentifier returns the best available payee text.
// Blank strings count as missing.
func (t Transaction) MerchantIdentifier() string {
	if name := strings.TrimSpace(t.MerchantName); name != "" {
		return name
	}
	return strings.TrimSpace(t.Description)
}
