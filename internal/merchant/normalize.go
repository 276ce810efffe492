// Package merchant turns free-text transaction descriptions into stable
// merchant keys used to group transactions from the same payee.
package merchant

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/Veraticus/spice-insights/internal/model"
)

// MaxKeyLength is the maximum number of characters in a merchant key.
const MaxKeyLength = 20

const maxPasses = 8

var (
	// #4521, *1234, REF 998877, ID:42, NO. 17
	referencePattern = regexp.MustCompile(`(?:[#*]|\bREF\b[:.]?|\bID\b[:.]?|\bNO\b\.?)\s*\d+`)
	// 12/01, 12/01/24, 2024-03-15
	datePattern   = regexp.MustCompile(`\b\d{1,4}[/-]\d{1,2}(?:[/-]\d{2,4})?\b`)
	numberPattern = regexp.MustCompile(`\b\d{3,}\b`)
)

// noiseTokens are payment-rail words that carry no merchant identity.
var noiseTokens = map[string]bool{
	"POS":       true,
	"DEBIT":     true,
	"PURCHASE":  true,
	"CHECKCARD": true,
	"ACH":       true,
	"SQ":        true,
	"TST":       true,
	"VISA":      true,
	"PAYPAL":    true,
	"RECURRING": true,
	"AUTOPAY":   true,
}

// legalSuffixes are stripped from the end of a key, repeatedly.
var legalSuffixes = map[string]bool{
	"INC":          true,
	"INCORPORATED": true,
	"LLC":          true,
	"CO":           true,
	"COMPANY":      true,
	"CORP":         true,
	"CORPORATION":  true,
	"LTD":          true,
	"LIMITED":      true,
}

// Normalize derives an uppercase merchant key of at most MaxKeyLength
// characters. Normalizing an existing key returns it unchanged. An empty
// result means the input cannot be grouped.
func Normalize(raw string) string {
	key := clean(raw)
	// Truncation can expose a new trailing suffix, so run to a fixed point.
	// Every pass is length non-increasing; the bound only guards against bugs.
	for i := 0; i < maxPasses; i++ {
		next := clean(key)
		if next == key {
			break
		}
		key = next
	}
	return key
}

// KeyFor returns the merchant key of a transaction, preferring the merchant
// name and falling back to the description.
func KeyFor(txn model.Transaction) string {
	if key := Normalize(txn.MerchantName); key != "" {
		return key
	}
	return Normalize(txn.Description)
}

// IsGroupable reports whether a key can be used for grouping.
func IsGroupable(key string) bool {
	return key != ""
}

func clean(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}

	s = referencePattern.ReplaceAllString(s, " ")
	s = datePattern.ReplaceAllString(s, " ")
	s = numberPattern.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, "'", "")
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '&' {
			return r
		}
		return ' '
	}, s)

	tokens := strings.Fields(s)
	kept := tokens[:0]
	for _, tok := range tokens {
		if noiseTokens[tok] {
			continue
		}
		kept = append(kept, tok)
	}

	for len(kept) > 1 && legalSuffixes[kept[len(kept)-1]] {
		kept = kept[:len(kept)-1]
	}

	return truncate(strings.Join(kept, " "), MaxKeyLength)
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return strings.TrimSpace(string(runes[:limit]))
}
