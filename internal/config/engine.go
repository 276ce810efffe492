package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/Veraticus/spice-insights/internal/budget"
	"github.com/Veraticus/spice-insights/internal/classification"
	"github.com/Veraticus/spice-insights/internal/common"
	"github.com/Veraticus/spice-insights/internal/pattern"
	"github.com/Veraticus/spice-insights/internal/subscription"
)

// EngineConfig holds the tunables shared by the CLI commands.
type EngineConfig struct {
	AlertThresholds   []float64
	WindowDays        int
	WindowMonths      int
	ClassifierTimeout time.Duration
	UsageTimeout      time.Duration
	MaxConcurrency    int
}

// DefaultEngineConfig returns the package defaults.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		WindowDays:        pattern.DefaultWindowDays,
		WindowMonths:      subscription.DefaultWindowMonths,
		ClassifierTimeout: classification.DefaultFallbackTimeout,
		UsageTimeout:      subscription.DefaultUsageTimeout,
		MaxConcurrency:    classification.DefaultMaxConcurrency,
		AlertThresholds:   append([]float64(nil), budget.DefaultThresholds...),
	}
}

// LoadEngineConfig reads the engine section, keeping defaults for unset keys.
func LoadEngineConfig() (EngineConfig, error) {
	cfg := DefaultEngineConfig()

	if viper.IsSet("engine.window_days") {
		cfg.WindowDays = viper.GetInt("engine.window_days")
	}
	if viper.IsSet("engine.window_months") {
		cfg.WindowMonths = viper.GetInt("engine.window_months")
	}
	if viper.IsSet("engine.classifier_timeout") {
		cfg.ClassifierTimeout = viper.GetDuration("engine.classifier_timeout")
	}
	if viper.IsSet("engine.usage_timeout") {
		cfg.UsageTimeout = viper.GetDuration("engine.usage_timeout")
	}
	if viper.IsSet("engine.max_concurrency") {
		cfg.MaxConcurrency = viper.GetInt("engine.max_concurrency")
	}
	if viper.IsSet("engine.alert_thresholds") {
		thresholds, err := floatSlice(viper.Get("engine.alert_thresholds"))
		if err != nil {
			return cfg, fmt.Errorf("%w: engine.alert_thresholds: %w", common.ErrInvalidConfig, err)
		}
		cfg.AlertThresholds = thresholds
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// floatSlice accepts a YAML list, a comma-separated env value or a single number.
func floatSlice(raw any) ([]float64, error) {
	var items []any
	switch v := raw.(type) {
	case string:
		for _, part := range strings.Split(v, ",") {
			items = append(items, part)
		}
	case []string:
		for _, part := range v {
			items = append(items, part)
		}
	default:
		var err error
		if items, err = cast.ToSliceE(raw); err != nil {
			items = []any{raw}
		}
	}

	values := make([]float64, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			item = strings.TrimSpace(s)
		}
		v, err := cast.ToFloat64E(item)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	sort.Float64s(values)
	return values, nil
}

// Validate rejects values the engine cannot work with.
func (c EngineConfig) Validate() error {
	if c.WindowDays < 1 {
		return fmt.Errorf("%w: engine.window_days must be at least 1", common.ErrInvalidConfig)
	}
	if c.WindowMonths < 1 {
		return fmt.Errorf("%w: engine.window_months must be at least 1", common.ErrInvalidConfig)
	}
	if c.ClassifierTimeout <= 0 || c.UsageTimeout <= 0 {
		return fmt.Errorf("%w: engine timeouts must be positive", common.ErrInvalidConfig)
	}
	if c.MaxConcurrency < 1 {
		return fmt.Errorf("%w: engine.max_concurrency must be at least 1", common.ErrInvalidConfig)
	}
	for _, th := range c.AlertThresholds {
		if th <= 0 {
			return fmt.Errorf("%w: alert thresholds must be positive, got %v", common.ErrInvalidConfig, th)
		}
	}
	return nil
}
