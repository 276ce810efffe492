package config

import (
	"os"

	"github.com/spf13/viper"

	"github.com/Veraticus/spice-insights/internal/simplefin"
)

// LoadSimpleFINConfig reads simplefin.access_url, falling back to the
// SIMPLEFIN_ACCESS_URL environment variable.
func LoadSimpleFINConfig() (*simplefin.Config, error) {
	cfg := simplefin.Config{AccessURL: viper.GetString("simplefin.access_url")}
	if cfg.AccessURL == "" {
		cfg.AccessURL = os.Getenv("SIMPLEFIN_ACCESS_URL")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
