package classification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/spice-insights/internal/common"
	"github.com/Veraticus/spice-insights/internal/merchant"
	"github.com/Veraticus/spice-insights/internal/model"
	"github.com/Veraticus/spice-insights/internal/service"
)

// Confidence assigned by each stage of the chain.
const (
	UserLearnedConfidence = 0.95
	RuleConfidence        = 0.9
	MaxFallbackConfidence = 0.8
)

// Defaults for fallback classifier calls.
const (
	DefaultFallbackTimeout = 5 * time.Second
	DefaultMaxConcurrency  = 4
)

// Config tunes a Categorizer.
type Config struct {
	Rules           []Rule
	FallbackTimeout time.Duration
	MaxConcurrency  int
}

// Request is one categorization batch.
type Request struct {
	Feedback      model.FeedbackHistory
	UserID        string
	Transactions  []model.Transaction
	AllowFallback bool
}

// Summary counts how many transactions each method resolved.
type Summary struct {
	UserLearned        int `json:"user_learned"`
	RuleBased          int `json:"rule_based"`
	FallbackClassified int `json:"fallback_classified"`
	Unclassified       int `json:"unclassified"`
}

// Total returns the number of transactions in the batch.
func (s Summary) Total() int {
	return s.UserLearned + s.RuleBased + s.FallbackClassified + s.Unclassified
}

func (s *Summary) record(method model.CategorizationMethod) {
	switch method {
	case model.MethodUserLearned:
		s.UserLearned++
	case model.MethodRuleBased:
		s.RuleBased++
	case model.MethodFallbackClassified:
		s.FallbackClassified++
	case model.MethodUnclassified:
		s.Unclassified++
	}
}

// Result is the categorized batch in input order.
type Result struct {
	Transactions []model.CategorizedTransaction `json:"categorized_transactions"`
	Summary      Summary                        `json:"summary"`
}

// Categorizer resolves categories through user feedback, then rules, then an
// optional fallback classifier. It holds no per-user state.
type Categorizer struct {
	rules      *RuleSet
	classifier service.Classifier
	logger     *slog.Logger
	timeout    time.Duration
	limit      int
}

// New creates a Categorizer with the default rule table. classifier may be nil.
func New(classifier service.Classifier, logger *slog.Logger) (*Categorizer, error) {
	return NewWithConfig(classifier, logger, Config{})
}

// NewWithConfig creates a Categorizer with explicit rules and limits.
func NewWithConfig(classifier service.Classifier, logger *slog.Logger, cfg Config) (*Categorizer, error) {
	rules := cfg.Rules
	if rules == nil {
		rules = DefaultRules()
	}

	ruleSet, err := NewRuleSet(rules)
	if err != nil {
		return nil, fmt.Errorf("failed to load category rules: %w", err)
	}

	timeout := cfg.FallbackTimeout
	if timeout <= 0 {
		timeout = DefaultFallbackTimeout
	}
	limit := cfg.MaxConcurrency
	if limit <= 0 {
		limit = DefaultMaxConcurrency
	}

	return &Categorizer{
		rules:      ruleSet,
		classifier: classifier,
		logger:     common.LoggerOrDefault(logger),
		timeout:    timeout,
		limit:      limit,
	}, nil
}

// Validate checks every transaction and reports all offending indices.
func Validate(transactions []model.Transaction) error {
	verr := &common.ValidationError{}
	for i, txn := range transactions {
		if txn.MerchantIdentifier() == "" {
			verr.Add(i, "merchant_name", "merchant name or description is required")
		}
		if math.IsNaN(txn.Amount) || math.IsInf(txn.Amount, 0) {
			verr.Add(i, "amount", "amount must be a finite number")
		}
	}
	return verr.OrNil()
}

// Categorize categorizes a batch. Invalid input rejects the whole batch with a
// *common.ValidationError; fallback failures only downgrade single records to
// unclassified.
func (c *Categorizer) Categorize(ctx context.Context, req Request) (*Result, error) {
	if err := Validate(req.Transactions); err != nil {
		return nil, err
	}

	feedback := newFeedbackIndex(req.Feedback)
	categorized := make([]model.CategorizedTransaction, len(req.Transactions))
	var pending []int

	for i, txn := range req.Transactions {
		key := merchant.KeyFor(txn)
		ct := model.CategorizedTransaction{
			Transaction: txn,
			MerchantKey: key,
		}

		if category, ok := feedback.lookup(key); ok {
			ct.Category = category
			ct.Method = model.MethodUserLearned
			ct.Confidence = UserLearnedConfidence
		} else if match := c.rules.Match(txn.Description, txn.MerchantName, key); match != nil {
			ct.Category = match.Category
			ct.Subcategory = match.Subcategory
			ct.Method = model.MethodRuleBased
			ct.Confidence = RuleConfidence
		} else {
			markUnclassified(&ct)
			pending = append(pending, i)
		}

		categorized[i] = ct
	}

	if len(pending) > 0 && req.AllowFallback && c.classifier != nil {
		c.classifyFallback(ctx, categorized, pending)
	}

	result := &Result{Transactions: categorized}
	for _, ct := range categorized {
		result.Summary.record(ct.Method)
	}

	c.logger.Info("Categorized transactions",
		"user_id", req.UserID,
		"count", len(categorized),
		"user_learned", result.Summary.UserLearned,
		"rule_based", result.Summary.RuleBased,
		"fallback_classified", result.Summary.FallbackClassified,
		"unclassified", result.Summary.Unclassified)

	return result, nil
}

// classifyFallback calls the classifier for each pending index. Every call is
// independent; failures leave the record unclassified.
func (c *Categorizer) classifyFallback(ctx context.Context, categorized []model.CategorizedTransaction, pending []int) {
	var g errgroup.Group
	g.SetLimit(c.limit)

	for _, idx := range pending {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}

			callCtx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()

			txn := categorized[idx].Transaction
			res, err := c.classifier.Classify(callCtx, txn.Description, txn.MerchantName, txn.Amount)
			if err != nil {
				if errors.Is(err, context.DeadlineExceeded) {
					err = fmt.Errorf("%w: timed out after %s", common.ErrCollaboratorUnavailable, c.timeout)
				} else {
					err = fmt.Errorf("%w: %w", common.ErrCollaboratorUnavailable, err)
				}
				c.logger.Warn("Fallback classifier failed",
					"transaction_id", txn.ID,
					"merchant", categorized[idx].MerchantKey,
					"error", err)
				return nil
			}

			category := strings.TrimSpace(res.Category)
			if category == "" {
				return nil
			}

			categorized[idx].Category = category
			categorized[idx].Method = model.MethodFallbackClassified
			categorized[idx].Confidence = clampConfidence(res.Confidence)
			return nil
		})
	}

	_ = g.Wait() //nolint:errcheck // workers never return errors
}

func markUnclassified(ct *model.CategorizedTransaction) {
	ct.Category = model.CategoryUncategorized
	ct.Subcategory = ""
	ct.Method = model.MethodUnclassified
	ct.Confidence = 0
}

func clampConfidence(confidence float64) float64 {
	if math.IsNaN(confidence) || confidence < 0 {
		return 0
	}
	return math.Min(confidence, MaxFallbackConfidence)
}

// feedbackIndex resolves corrections by normalized merchant key.
type feedbackIndex struct {
	exact    map[string]string
	prefixes []string // longest first
}

func newFeedbackIndex(history model.FeedbackHistory) feedbackIndex {
	idx := feedbackIndex{exact: make(map[string]string, len(history))}

	// Sorted so that two spellings normalizing to one key resolve the same way
	// on every call.
	raw := make([]string, 0, len(history))
	for k := range history {
		raw = append(raw, k)
	}
	sort.Strings(raw)

	for _, k := range raw {
		category := strings.TrimSpace(history[k])
		key := merchant.Normalize(k)
		if key == "" || category == "" {
			continue
		}
		if _, exists := idx.exact[key]; !exists {
			idx.prefixes = append(idx.prefixes, key)
		}
		idx.exact[key] = category
	}

	sort.SliceStable(idx.prefixes, func(i, j int) bool {
		return len(idx.prefixes[i]) > len(idx.prefixes[j])
	})
	return idx
}

// lookup tries an exact key match, then the longest feedback key that is a
// whole-word prefix of key.
func (f feedbackIndex) lookup(key string) (string, bool) {
	if key == "" {
		return "", false
	}
	if category, ok := f.exact[key]; ok {
		return category, true
	}
	for _, prefix := range f.prefixes {
		if strings.HasPrefix(key, prefix+" ") {
			return f.exact[prefix], true
		}
	}
	return "", false
}
