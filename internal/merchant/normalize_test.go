package merchant

import (
	"testing"
	"unicode/utf8"

	"github.com/Veraticus/spice-insights/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "store number", input: "Starbucks #4521", want: "STARBUCKS"},
		{name: "plain merchant", input: "STARBUCKS", want: "STARBUCKS"},
		{name: "legal suffix", input: "Acme Widgets, Inc.", want: "ACME WIDGETS"},
		{name: "stacked suffixes", input: "Blue Bottle Coffee Co LLC", want: "BLUE BOTTLE COFFEE"},
		{name: "truncated to twenty", input: "RENT PAYMENT - MAIN ST APARTMENTS", want: "RENT PAYMENT MAIN ST"},
		{name: "payment rail noise", input: "POS DEBIT PURCHASE WHOLE FOODS 10234", want: "WHOLE FOODS"},
		{name: "square prefix", input: "SQ *BLUE BOTTLE", want: "BLUE BOTTLE"},
		{name: "date tokens", input: "NETFLIX.COM 03/15", want: "NETFLIX COM"},
		{name: "reference marker", input: "AMAZON MKTP REF:998877", want: "AMAZON MKTP"},
		{name: "apostrophe", input: "McDonald's", want: "MCDONALDS"},
		{name: "ampersand kept", input: "Bed Bath & Beyond", want: "BED BATH & BEYOND"},
		{name: "lone suffix kept", input: "Co", want: "CO"},
		{name: "empty", input: "", want: ""},
		{name: "only noise", input: "POS DEBIT #1234", want: ""},
		{name: "whitespace", input: "   ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"Starbucks #4521",
		"RENT PAYMENT - MAIN ST APARTMENTS",
		"ABCDEFGHIJKLMNOPQ COMPANY",
		"ABCDEFGHIJKLMNOP INCORPORATED",
		"ID - 12 ACME",
		"Uber   *Trip  HELP.UBER.COM",
		"SPOTIFY USA 877-778-1161",
		"24-7 Fitness",
		"Café Olé S.A.",
		"",
	}

	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
		assert.LessOrEqual(t, utf8.RuneCountInString(once), MaxKeyLength, "input %q", in)
	}
}

func TestNormalize_SuffixExposedByTruncation(t *testing.T) {
	// "ABCDEFGHIJKLMNOPQ COMPANY" truncates to "ABCDEFGHIJKLMNOPQ CO"
	// which must then lose its new trailing suffix.
	assert.Equal(t, "ABCDEFGHIJKLMNOPQ", Normalize("ABCDEFGHIJKLMNOPQ COMPANY"))
}

func TestKeyFor(t *testing.T) {
	tests := []struct {
		name string
		want string
		txn  model.Transaction
	}{
		{
			name: "merchant name preferred",
			txn:  model.Transaction{MerchantName: "Spotify", Description: "SPOTIFY P0A1B2C3 STOCKHOLM"},
			want: "SPOTIFY",
		},
		{
			name: "description fallback",
			txn:  model.Transaction{Description: "Trader Joe's #552"},
			want: "TRADER JOES",
		},
		{
			name: "noise-only merchant falls back",
			txn:  model.Transaction{MerchantName: "POS DEBIT", Description: "Chipotle 1234"},
			want: "CHIPOTLE",
		},
		{
			name: "ungroupable",
			txn:  model.Transaction{},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := KeyFor(tt.txn)
			assert.Equal(t, tt.want, key)
			assert.Equal(t, tt.want != "", IsGroupable(key))
		})
	}
}
