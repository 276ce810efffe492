// Package engine is the single entry point to transaction intelligence:
// categorization, pattern analysis, subscription detection, optimization and
// budget tracking. Every call returns a Response envelope and never retries.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/spice-insights/internal/budget"
	"github.com/Veraticus/spice-insights/internal/classification"
	"github.com/Veraticus/spice-insights/internal/common"
	"github.com/Veraticus/spice-insights/internal/model"
	"github.com/Veraticus/spice-insights/internal/optimize"
	"github.com/Veraticus/spice-insights/internal/pattern"
	"github.com/Veraticus/spice-insights/internal/service"
	"github.com/Veraticus/spice-insights/internal/subscription"
)

// Config wires optional collaborators and limits.
type Config struct {
	Classifier        service.Classifier
	UsageSignal       service.UsageSignal
	Rules             []classification.Rule
	ServiceTypes      []subscription.ServiceTypeRule
	ClassifierTimeout time.Duration
	UsageTimeout      time.Duration
	MaxConcurrency    int
}

// Engine composes the stateless components. It is safe for concurrent use.
type Engine struct {
	categorizer *classification.Categorizer
	analyzer    *pattern.Analyzer
	detector    *subscription.Detector
	recommender *optimize.Recommender
	tracker     *budget.Tracker
	logger      *slog.Logger
}

// New builds an Engine.
func New(cfg Config, logger *slog.Logger) (*Engine, error) {
	logger = common.LoggerOrDefault(logger)

	categorizer, err := classification.NewWithConfig(cfg.Classifier, logger, classification.Config{
		Rules:           cfg.Rules,
		FallbackTimeout: cfg.ClassifierTimeout,
		MaxConcurrency:  cfg.MaxConcurrency,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create categorizer: %w", err)
	}

	detector, err := subscription.NewDetectorWithConfig(cfg.UsageSignal, logger, subscription.Config{
		ServiceTypes:   cfg.ServiceTypes,
		UsageTimeout:   cfg.UsageTimeout,
		MaxConcurrency: cfg.MaxConcurrency,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create subscription detector: %w", err)
	}

	return &Engine{
		categorizer: categorizer,
		analyzer:    pattern.NewAnalyzer(logger),
		detector:    detector,
		recommender: optimize.NewRecommender(logger),
		tracker:     budget.NewTracker(logger),
		logger:      logger,
	}, nil
}

// CategorizeInput is the input to Categorize. A nil AllowFallbackClassifier
// means true.
type CategorizeInput struct {
	FeedbackHistory         model.FeedbackHistory `json:"feedback_history,omitempty"`
	AllowFallbackClassifier *bool                 `json:"allow_fallback_classifier,omitempty"`
	UserID                  string                `json:"user_id"`
	Transactions            []model.Transaction   `json:"transactions"`
}

// Categorize assigns a category, method and confidence to every transaction.
func (e *Engine) Categorize(ctx context.Context, in CategorizeInput) Response[*classification.Result] {
	requestID := newRequestID()
	if err := e.precheck(ctx, in.UserID); err != nil {
		return fail[*classification.Result](e.logger, requestID, "categorize", err)
	}

	allow := in.AllowFallbackClassifier == nil || *in.AllowFallbackClassifier
	result, err := e.categorizer.Categorize(ctx, classification.Request{
		UserID:        in.UserID,
		Transactions:  in.Transactions,
		Feedback:      in.FeedbackHistory,
		AllowFallback: allow,
	})
	if err != nil {
		return fail[*classification.Result](e.logger, requestID, "categorize", err)
	}
	return success(requestID, result)
}

// AnalyzeInput is the input to Analyze.
type AnalyzeInput struct {
	AsOf       time.Time                      `json:"as_of,omitempty"`
	UserID     string                         `json:"user_id"`
	History    []model.CategorizedTransaction `json:"history"`
	WindowDays int                            `json:"window_days,omitempty"`
}

// Analyze detects recurring expenses, seasonal spikes, anomalies and weekday habits.
func (e *Engine) Analyze(ctx context.Context, in AnalyzeInput) Response[*pattern.Result] {
	requestID := newRequestID()
	if err := e.precheck(ctx, in.UserID); err != nil {
		return fail[*pattern.Result](e.logger, requestID, "analyze", err)
	}
	if in.WindowDays < 0 {
		verr := &common.ValidationError{}
		verr.Add(-1, "window_days", "window must not be negative")
		return fail[*pattern.Result](e.logger, requestID, "analyze", verr)
	}
	if err := validateHistory(in.History); err != nil {
		return fail[*pattern.Result](e.logger, requestID, "analyze", err)
	}

	return success(requestID, e.analyzer.Analyze(pattern.Request{
		AsOf:       in.AsOf,
		UserID:     in.UserID,
		History:    in.History,
		WindowDays: in.WindowDays,
	}))
}

// SubscriptionInput is the input to DetectSubscriptions.
type SubscriptionInput struct {
	AsOf              time.Time           `json:"as_of,omitempty"`
	UserID            string              `json:"user_id"`
	Transactions      []model.Transaction `json:"transactions"`
	WindowMonths      int                 `json:"window_months,omitempty"`
	IncludeUsageCheck bool                `json:"include_usage_check"`
}

// DetectSubscriptions finds subscriptions and duplicate or unused services.
func (e *Engine) DetectSubscriptions(ctx context.Context, in SubscriptionInput) Response[*subscription.Result] {
	requestID := newRequestID()
	if err := e.precheck(ctx, in.UserID); err != nil {
		return fail[*subscription.Result](e.logger, requestID, "detect_subscriptions", err)
	}
	if in.WindowMonths < 0 {
		verr := &common.ValidationError{}
		verr.Add(-1, "window_months", "window must not be negative")
		return fail[*subscription.Result](e.logger, requestID, "detect_subscriptions", verr)
	}
	if err := classification.Validate(in.Transactions); err != nil {
		return fail[*subscription.Result](e.logger, requestID, "detect_subscriptions", err)
	}

	return success(requestID, e.detector.Detect(ctx, subscription.Request{
		AsOf:              in.AsOf,
		UserID:            in.UserID,
		Transactions:      in.Transactions,
		WindowMonths:      in.WindowMonths,
		IncludeUsageCheck: in.IncludeUsageCheck,
	}))
}

// RecommendInput is the input to Recommend.
type RecommendInput struct {
	CategoryTotals map[string]float64              `json:"category_totals"`
	Profile        model.PersonalityProfile        `json:"personality_profile"`
	UserID         string                          `json:"user_id"`
	Additional     []model.OptimizationOpportunity `json:"additional_opportunities,omitempty"`
}

// Recommend ranks personality-tailored savings opportunities.
func (e *Engine) Recommend(ctx context.Context, in RecommendInput) Response[*optimize.Result] {
	requestID := newRequestID()
	if err := e.precheck(ctx, in.UserID); err != nil {
		return fail[*optimize.Result](e.logger, requestID, "recommend", err)
	}

	result, err := e.recommender.Recommend(optimize.Request{
		CategoryTotals: in.CategoryTotals,
		Profile:        in.Profile,
		UserID:         in.UserID,
		Additional:     in.Additional,
	})
	if err != nil {
		return fail[*optimize.Result](e.logger, requestID, "recommend", err)
	}
	return success(requestID, result)
}

// BudgetOperation selects what Budget does.
type BudgetOperation string

// Budget operations.
const (
	BudgetCreate BudgetOperation = "create"
	BudgetUpdate BudgetOperation = "update"
	BudgetAlerts BudgetOperation = "alerts"
)

// BudgetInput is the input to Budget. Specs are used by create; Categories by
// update and alerts.
type BudgetInput struct {
	Profile         *model.PersonalityProfile      `json:"personality_profile,omitempty"`
	Operation       BudgetOperation                `json:"operation"`
	UserID          string                         `json:"user_id"`
	Specs           []budget.CategorySpec          `json:"categories_to_create,omitempty"`
	Categories      []model.BudgetCategory         `json:"budget_categories,omitempty"`
	Transactions    []model.CategorizedTransaction `json:"transactions,omitempty"`
	Thresholds      []float64                      `json:"thresholds,omitempty"`
	IncludeVariance bool                           `json:"include_variance"`
}

// Budget creates categories, updates spending or generates alerts. Categories
// passed to update and alerts are modified in place and returned.
func (e *Engine) Budget(ctx context.Context, in BudgetInput) Response[*budget.AlertResult] {
	requestID := newRequestID()
	if err := e.precheck(ctx, in.UserID); err != nil {
		return fail[*budget.AlertResult](e.logger, requestID, "budget", err)
	}

	if in.Operation == BudgetUpdate || in.Operation == BudgetAlerts {
		if err := validateBudgetInput(in.Categories, in.Transactions); err != nil {
			return fail[*budget.AlertResult](e.logger, requestID, "budget", err)
		}
	}

	switch in.Operation {
	case BudgetCreate:
		categories, err := e.tracker.Create(in.Specs)
		if err != nil {
			return fail[*budget.AlertResult](e.logger, requestID, "budget", err)
		}
		return success(requestID, &budget.AlertResult{Categories: categories, Alerts: []model.BudgetAlert{}})

	case BudgetUpdate:
		e.tracker.UpdateSpending(in.Categories, in.Transactions)
		return success(requestID, &budget.AlertResult{Categories: in.Categories, Alerts: []model.BudgetAlert{}})

	case BudgetAlerts:
		result, err := e.tracker.GenerateAlerts(budget.AlertRequest{
			Profile:         in.Profile,
			UserID:          in.UserID,
			Categories:      in.Categories,
			Transactions:    in.Transactions,
			Thresholds:      in.Thresholds,
			IncludeVariance: in.IncludeVariance,
		})
		if err != nil {
			return fail[*budget.AlertResult](e.logger, requestID, "budget", err)
		}
		return success(requestID, result)
	}

	verr := &common.ValidationError{}
	verr.Add(-1, "operation", fmt.Sprintf("unknown budget operation %q", in.Operation))
	return fail[*budget.AlertResult](e.logger, requestID, "budget", verr)
}

func (e *Engine) precheck(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(userID) == "" {
		verr := &common.ValidationError{}
		verr.Add(-1, "user_id", "user id is required")
		return verr
	}
	return nil
}

func fail[T any](logger *slog.Logger, requestID, operation string, err error) Response[T] {
	logger.Warn("Engine call failed",
		"request_id", requestID,
		"operation", operation,
		"error", err)
	return failure[T](requestID, err)
}
