package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/Veraticus/spice-insights/internal/common"
	"github.com/Veraticus/spice-insights/internal/llm"
)

// LoadLLMConfig reads the llm section. An empty provider means no fallback
// classifier is configured and returns a nil config.
// It follows this precedence for API keys:
// 1. Viper configuration (from config file or SPICE_ env vars)
// 2. Direct environment variables (OPENAI_API_KEY, ANTHROPIC_API_KEY)
func LoadLLMConfig() (*llm.Config, error) {
	provider := strings.ToLower(viper.GetString("llm.provider"))
	if provider == "" {
		return nil, nil
	}

	cfg := llm.Config{
		Provider:    provider,
		APIKey:      viper.GetString("llm.api_key"),
		Model:       viper.GetString("llm.model"),
		BaseURL:     viper.GetString("llm.base_url"),
		RedisURL:    viper.GetString("llm.redis_url"),
		Categories:  viper.GetStringSlice("llm.categories"),
		Temperature: viper.GetFloat64("llm.temperature"),
		MaxTokens:   viper.GetInt("llm.max_tokens"),
		MaxRetries:  viper.GetInt("llm.max_retries"),
		RetryDelay:  viper.GetDuration("llm.retry_delay"),
		CacheTTL:    viper.GetDuration("llm.cache_ttl"),
		RateLimit:   viper.GetInt("llm.rate_limit"),
	}

	if cfg.APIKey == "" {
		switch provider {
		case "openai":
			cfg.APIKey = os.Getenv("OPENAI_API_KEY")
		case "anthropic":
			cfg.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		default:
			return nil, fmt.Errorf("%w: unsupported LLM provider: %s", common.ErrInvalidConfig, provider)
		}
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: %s API key not found in config or environment", common.ErrMissingConfig, provider)
	}

	if cfg.RedisURL == "" {
		cfg.RedisURL = os.Getenv("REDIS_URL")
	}

	return &cfg, nil
}
