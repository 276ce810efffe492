package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/Veraticus/spice-insights/internal/model"
	"github.com/Veraticus/spice-insights/internal/service"
)

// FakeFetcher is a service.TransactionFetcher returning canned data and
// recording its calls.
type FakeFetcher struct {
	Err          error
	Transactions []model.Transaction
	Accounts     []string
	Calls        []FetchCall
	mu           sync.Mutex
}

// FetchCall records the range of one GetTransactions call.
type FetchCall struct {
	StartDate time.Time
	EndDate   time.Time
}

var _ service.TransactionFetcher = (*FakeFetcher)(nil)

// GetTransactions implements service.TransactionFetcher.
func (f *FakeFetcher) GetTransactions(_ context.Context, startDate, endDate time.Time) ([]model.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Calls = append(f.Calls, FetchCall{StartDate: startDate, EndDate: endDate})
	if f.Err != nil {
		return nil, f.Err
	}
	return append([]model.Transaction(nil), f.Transactions...), nil
}

// GetAccounts implements service.TransactionFetcher.
func (f *FakeFetcher) GetAccounts(_ context.Context) ([]string, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Accounts, nil
}

// StaticClassifier answers every fallback lookup from a merchant map.
// Unknown merchants get an empty category.
func StaticClassifier(answers map[string]service.Classification) service.Classifier {
	return service.ClassifierFunc(func(_ context.Context, _, merchantName string, _ float64) (service.Classification, error) {
		return answers[merchantName], nil
	})
}
