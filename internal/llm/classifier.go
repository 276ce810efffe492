package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/spice-insights/internal/common"
	"github.com/Veraticus/spice-insights/internal/merchant"
	"github.com/Veraticus/spice-insights/internal/model"
	"github.com/Veraticus/spice-insights/internal/service"
)

// Defaults for the classifier.
const (
	DefaultCacheTTL    = 24 * time.Hour
	DefaultTemperature = 0.2
	DefaultMaxTokens   = 100
)

// Config holds configuration for the LLM classifier.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	RedisURL    string
	Categories  []string
	MaxRetries  int
	RetryDelay  time.Duration
	CacheTTL    time.Duration
	RateLimit   int
	Temperature float64
	MaxTokens   int
}

func (c Config) temperature() float64 {
	if c.Temperature == 0 {
		return DefaultTemperature
	}
	return c.Temperature
}

func (c Config) maxTokens() int {
	if c.MaxTokens == 0 {
		return DefaultMaxTokens
	}
	return c.MaxTokens
}

// DefaultCategories is the category list offered to the model.
func DefaultCategories() []string {
	return []string{
		model.CategoryHousing,
		model.CategoryFoodDelivery,
		model.CategoryFoodDining,
		model.CategoryTransportation,
		model.CategoryShopping,
		model.CategorySubscriptions,
		model.CategoryEntertainment,
		model.CategoryHealthFitness,
		model.CategoryFinancialServices,
		"Travel",
		"Personal Care",
		"Education",
		"Gifts & Donations",
		"Pets",
		"Income",
		"Transfers",
	}
}

// Classifier implements service.Classifier with a language model.
type Classifier struct {
	client      Client
	cache       Cache
	logger      *slog.Logger
	rateLimiter *rateLimiter
	categories  []string
	retryOpts   service.RetryOptions
}

var _ service.Classifier = (*Classifier)(nil)

// NewClassifier creates a classifier from the configuration. A RedisURL
// selects the Redis cache; otherwise answers are cached in memory.
func NewClassifier(ctx context.Context, cfg Config, logger *slog.Logger) (*Classifier, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	var cache Cache
	if cfg.RedisURL != "" {
		cache, err = NewRedisCache(ctx, cfg.RedisURL, cfg.CacheTTL, logger)
		if err != nil {
			return nil, err
		}
	} else {
		cache = newMemoryCache(cfg.CacheTTL)
	}

	return newClassifier(client, cache, cfg, logger), nil
}

func newClassifier(client Client, cache Cache, cfg Config, logger *slog.Logger) *Classifier {
	retryOpts := service.RetryOptions{
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: cfg.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
	if retryOpts.MaxAttempts == 0 {
		retryOpts.MaxAttempts = 3
	}
	if retryOpts.InitialDelay == 0 {
		retryOpts.InitialDelay = time.Second
	}

	categories := cfg.Categories
	if len(categories) == 0 {
		categories = DefaultCategories()
	}

	return &Classifier{
		client:      client,
		cache:       cache,
		logger:      common.LoggerOrDefault(logger),
		rateLimiter: newRateLimiter(cfg.RateLimit),
		categories:  categories,
		retryOpts:   retryOpts,
	}
}

// Classify asks the model for one category. Answers outside the allowed list
// come back as an empty category so the caller treats them as unclassified.
func (c *Classifier) Classify(ctx context.Context, description, merchantName string, amount float64) (service.Classification, error) {
	key := cacheKey(description, merchantName)
	if key != "" {
		if cached, found := c.cache.Get(ctx, key); found {
			c.logger.Debug("cache hit for merchant", "merchant", merchantName)
			return cached, nil
		}
	}

	prompt := buildPrompt(description, merchantName, amount, c.categories)

	var result service.Classification
	err := common.WithRetry(ctx, func() error {
		if err := c.rateLimiter.wait(ctx); err != nil {
			return &common.RetryableError{Err: err, Retryable: false}
		}

		content, err := c.client.Complete(ctx, systemPrompt, prompt)
		if err != nil {
			return err
		}

		answer, confidence, err := parseClassification(content)
		if err != nil {
			return err
		}

		result = service.Classification{Confidence: confidence}
		if category, ok := allowedCategory(answer, c.categories); ok {
			result.Category = category
		} else if answer != "" {
			c.logger.Debug("model answered outside the category list",
				"merchant", merchantName,
				"answer", answer)
		}
		return nil
	}, c.retryOpts)
	if err != nil {
		return service.Classification{}, fmt.Errorf("LLM classification failed: %w", err)
	}

	if result.Category != "" && key != "" {
		c.cache.Set(ctx, key, result)
	}

	c.logger.Info("transaction classified",
		"merchant", merchantName,
		"category", result.Category,
		"confidence", result.Confidence)

	return result, nil
}

// Close releases the cache and rate limiter.
func (c *Classifier) Close() error {
	c.rateLimiter.Close()
	return c.cache.Close()
}

// cacheKey groups by merchant identity so one answer serves every spelling.
func cacheKey(description, merchantName string) string {
	if key := merchant.Normalize(merchantName); key != "" {
		return key
	}
	return merchant.Normalize(description)
}
