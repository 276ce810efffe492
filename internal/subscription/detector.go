// Package subscription finds fixed-price recurring charges and the savings
// hidden in duplicate or unused services.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/spice-insights/internal/common"
	"github.com/Veraticus/spice-insights/internal/merchant"
	"github.com/Veraticus/spice-insights/internal/model"
	"github.com/Veraticus/spice-insights/internal/service"
	"github.com/Veraticus/spice-insights/internal/stats"
)

// Defaults for detection and usage checks.
const (
	DefaultWindowMonths   = 3
	DefaultUsageTimeout   = 3 * time.Second
	DefaultMaxConcurrency = 4
)

const (
	amountTolerance      = 0.05
	unusedScoreThreshold = 0.2
	duplicateConfidence  = 0.85
	unusedConfidence     = 0.75
	neutralFit           = 0.5
)

// Config tunes a Detector.
type Config struct {
	ServiceTypes   []ServiceTypeRule
	UsageTimeout   time.Duration
	MaxConcurrency int
}

// Request is one detection call.
type Request struct {
	AsOf              time.Time
	UserID            string
	Transactions      []model.Transaction
	WindowMonths      int
	IncludeUsageCheck bool
}

// UsageStatus records the outcome of one usage signal lookup.
type UsageStatus struct {
	LastActivity time.Time `json:"last_activity,omitempty"`
	MerchantKey  string    `json:"merchant_key"`
	Error        string    `json:"error,omitempty"`
	Score        float64   `json:"score"`
	Known        bool      `json:"known"`
}

// Result lists detected subscriptions and the opportunities they expose.
type Result struct {
	Subscriptions []model.Subscription            `json:"subscriptions"`
	Opportunities []model.OptimizationOpportunity `json:"optimization_opportunities"`
	Usage         []UsageStatus                   `json:"usage,omitempty"`
	TotalMonthly  float64                         `json:"total_monthly_cost"`
}

// Detector is stateless apart from its optional usage signal.
type Detector struct {
	usage   service.UsageSignal
	types   *serviceTypeMatcher
	logger  *slog.Logger
	timeout time.Duration
	limit   int
}

// NewDetector creates a Detector with the default service types. usage may be nil.
func NewDetector(usage service.UsageSignal, logger *slog.Logger) (*Detector, error) {
	return NewDetectorWithConfig(usage, logger, Config{})
}

// NewDetectorWithConfig creates a Detector with explicit settings.
func NewDetectorWithConfig(usage service.UsageSignal, logger *slog.Logger, cfg Config) (*Detector, error) {
	rules := cfg.ServiceTypes
	if rules == nil {
		rules = DefaultServiceTypes()
	}
	types, err := newServiceTypeMatcher(rules)
	if err != nil {
		return nil, err
	}

	timeout := cfg.UsageTimeout
	if timeout <= 0 {
		timeout = DefaultUsageTimeout
	}
	limit := cfg.MaxConcurrency
	if limit <= 0 {
		limit = DefaultMaxConcurrency
	}

	return &Detector{
		usage:   usage,
		types:   types,
		logger:  common.LoggerOrDefault(logger),
		timeout: timeout,
		limit:   limit,
	}, nil
}

// Detect finds subscriptions among dated expenses inside the window ending at
// req.AsOf, or at the latest charge when AsOf is zero. Usage signal failures
// are recorded per subscription and never abort detection.
func (d *Detector) Detect(ctx context.Context, req Request) *Result {
	months := req.WindowMonths
	if months <= 0 {
		months = DefaultWindowMonths
	}

	charges := datedExpenses(req.Transactions)
	end := req.AsOf
	if end.IsZero() {
		for _, txn := range charges {
			if txn.Date.After(end) {
				end = txn.Date
			}
		}
	}
	start := end.AddDate(0, -months, 0)

	groups := make(map[string][]model.Transaction)
	var keys []string
	for _, txn := range charges {
		if txn.Date.Before(start) || txn.Date.After(end) {
			continue
		}
		key := merchant.KeyFor(txn)
		if !merchant.IsGroupable(key) {
			continue
		}
		if _, ok := groups[key]; !ok {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], txn)
	}
	sort.Strings(keys)

	result := &Result{
		Subscriptions: []model.Subscription{},
		Opportunities: []model.OptimizationOpportunity{},
	}
	var monthly []float64
	for _, key := range keys {
		sub, ok := d.buildSubscription(key, groups[key])
		if !ok {
			continue
		}
		result.Subscriptions = append(result.Subscriptions, sub)
		monthly = append(monthly, sub.MonthlyCost)
	}
	result.TotalMonthly = common.SumMoney(monthly...)

	result.Opportunities = append(result.Opportunities, duplicateOpportunities(result.Subscriptions)...)

	if req.IncludeUsageCheck && d.usage != nil && len(result.Subscriptions) > 0 {
		result.Usage = d.checkUsage(ctx, req.UserID, result.Subscriptions)
		result.Opportunities = append(result.Opportunities, unusedOpportunities(result.Subscriptions, result.Usage)...)
	}

	d.logger.Info("Detected subscriptions",
		"user_id", req.UserID,
		"count", len(result.Subscriptions),
		"opportunities", len(result.Opportunities),
		"monthly_total", result.TotalMonthly)

	return result
}

func datedExpenses(transactions []model.Transaction) []model.Transaction {
	charges := make([]model.Transaction, 0, len(transactions))
	for _, txn := range transactions {
		if txn.HasDate() && txn.IsExpense() {
			charges = append(charges, txn)
		}
	}
	return charges
}

func (d *Detector) buildSubscription(key string, charges []model.Transaction) (model.Subscription, bool) {
	if len(charges) < 2 {
		return model.Subscription{}, false
	}

	sort.SliceStable(charges, func(i, j int) bool { return charges[i].Date.Before(charges[j].Date) })

	amounts := make([]float64, len(charges))
	dates := make([]time.Time, len(charges))
	for i, txn := range charges {
		amounts[i] = txn.AbsAmount()
		dates[i] = txn.Date
	}
	if !stats.WithinSpread(amounts, amountTolerance) {
		return model.Subscription{}, false
	}

	latest := charges[len(charges)-1]
	frequency := stats.InferFrequency(dates)
	average := stats.Mean(amounts)

	return model.Subscription{
		FirstChargeDate:  charges[0].Date,
		LastChargeDate:   latest.Date,
		MerchantName:     latest.MerchantIdentifier(),
		MerchantKey:      key,
		ServiceType:      d.types.classify(key, latest.MerchantName, latest.Description),
		Frequency:        frequency,
		AverageAmount:    common.RoundMoney(average),
		MonthlyCost:      common.RoundMoney(stats.MonthlyEquivalent(average, frequency)),
		TransactionCount: len(charges),
	}, true
}

// duplicateOpportunities keeps the most expensive provider per service type
// and offers the rest as savings. Other is never treated as a duplicate.
func duplicateOpportunities(subs []model.Subscription) []model.OptimizationOpportunity {
	byType := make(map[string][]model.Subscription)
	var types []string
	for _, sub := range subs {
		if sub.ServiceType == model.ServiceTypeOther {
			continue
		}
		if _, ok := byType[sub.ServiceType]; !ok {
			types = append(types, sub.ServiceType)
		}
		byType[sub.ServiceType] = append(byType[sub.ServiceType], sub)
	}
	sort.Strings(types)

	var opportunities []model.OptimizationOpportunity
	for _, serviceType := range types {
		providers := byType[serviceType]
		if len(providers) < 2 {
			continue
		}

		sort.SliceStable(providers, func(i, j int) bool {
			if providers[i].MonthlyCost != providers[j].MonthlyCost {
				return providers[i].MonthlyCost > providers[j].MonthlyCost
			}
			return providers[i].MerchantKey < providers[j].MerchantKey
		})

		keep := providers[0]
		var cheaper []float64
		names := make([]string, 0, len(providers)-1)
		for _, p := range providers[1:] {
			cheaper = append(cheaper, p.MonthlyCost)
			names = append(names, p.MerchantName)
		}
		savings := common.SumMoney(cheaper...)

		opportunities = append(opportunities, model.OptimizationOpportunity{
			OpportunityType: model.OpportunityDuplicateServices,
			Description: fmt.Sprintf("You pay for %d %s services. Keeping only %s and cancelling %s saves $%.2f/month.",
				len(providers), strings.ToLower(serviceType), keep.MerchantName, strings.Join(names, ", "), savings),
			Category:                 serviceType,
			ImplementationDifficulty: model.DifficultyEasy,
			PotentialMonthlySavings:  savings,
			ConfidenceScore:          duplicateConfidence,
			PersonalityFit:           neutralFit,
		})
	}
	return opportunities
}

func (d *Detector) checkUsage(ctx context.Context, userID string, subs []model.Subscription) []UsageStatus {
	statuses := make([]UsageStatus, len(subs))

	var g errgroup.Group
	g.SetLimit(d.limit)
	for i, sub := range subs {
		statuses[i].MerchantKey = sub.MerchantKey
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				statuses[i].Error = err.Error()
				return nil
			}

			callCtx, cancel := context.WithTimeout(ctx, d.timeout)
			defer cancel()

			report, err := d.usage.UsageScore(callCtx, userID, sub.MerchantName)
			if err != nil {
				if errors.Is(err, context.DeadlineExceeded) {
					err = fmt.Errorf("%w: timed out after %s", common.ErrCollaboratorUnavailable, d.timeout)
				} else {
					err = fmt.Errorf("%w: %w", common.ErrCollaboratorUnavailable, err)
				}
				statuses[i].Error = err.Error()
				d.logger.Warn("Usage signal failed, usage unknown",
					"merchant", sub.MerchantKey,
					"error", err)
				return nil
			}

			statuses[i].Known = true
			statuses[i].Score = report.Score
			statuses[i].LastActivity = report.LastActivity
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // workers never return errors

	return statuses
}

func unusedOpportunities(subs []model.Subscription, usage []UsageStatus) []model.OptimizationOpportunity {
	var opportunities []model.OptimizationOpportunity
	for i, status := range usage {
		if !status.Known || status.Score > unusedScoreThreshold {
			continue
		}
		sub := subs[i]
		opportunities = append(opportunities, model.OptimizationOpportunity{
			OpportunityType: model.OpportunityUnusedService,
			Description: fmt.Sprintf("%s looks unused (usage score %.2f). Cancelling it saves $%.2f/month.",
				sub.MerchantName, status.Score, sub.MonthlyCost),
			Category:                 sub.ServiceType,
			ImplementationDifficulty: model.DifficultyEasy,
			PotentialMonthlySavings:  sub.MonthlyCost,
			ConfidenceScore:          unusedConfidence,
			PersonalityFit:           neutralFit,
		})
	}
	return opportunities
}
