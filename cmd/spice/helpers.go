package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/spice-insights/internal/config"
	"github.com/Veraticus/spice-insights/internal/engine"
	"github.com/Veraticus/spice-insights/internal/llm"
	"github.com/Veraticus/spice-insights/internal/model"
	"github.com/Veraticus/spice-insights/internal/storage"
)

// initStorage opens the database with proper path expansion and migrates it.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(config.DatabasePath())
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// newEngine builds an engine from the engine config section. When
// withClassifier is set and an LLM provider is configured, the returned
// cleanup closes it.
func newEngine(ctx context.Context, cfg config.EngineConfig, withClassifier bool) (*engine.Engine, func(), error) {
	engineCfg := engine.Config{
		ClassifierTimeout: cfg.ClassifierTimeout,
		UsageTimeout:      cfg.UsageTimeout,
		MaxConcurrency:    cfg.MaxConcurrency,
	}
	cleanup := func() {}

	if withClassifier {
		llmCfg, err := config.LoadLLMConfig()
		if err != nil {
			return nil, nil, err
		}
		if llmCfg != nil {
			classifier, err := llm.NewClassifier(ctx, *llmCfg, slog.Default())
			if err != nil {
				return nil, nil, fmt.Errorf("failed to create classifier: %w", err)
			}
			engineCfg.Classifier = classifier
			cleanup = func() {
				if err := classifier.Close(); err != nil {
					slog.Warn("Failed to close classifier", "error", err)
				}
			}
			slog.Debug("Fallback classifier enabled", "provider", llmCfg.Provider)
		}
	}

	eng, err := engine.New(engineCfg, slog.Default())
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return eng, cleanup, nil
}

// userID returns the user ID sent with engine calls.
func userID() string {
	return viper.GetString("user.id")
}

// emit writes a response either as JSON or through render. A failed
// response always yields an error.
func emit[T any](cmd *cobra.Command, resp engine.Response[T], render func(io.Writer, T) error) error {
	if viper.GetBool("output.json") {
		if err := writeJSON(cmd.OutOrStdout(), resp); err != nil {
			return err
		}
		return resp.Err()
	}

	if !resp.OK() {
		return fmt.Errorf("request %s failed: %w", resp.RequestID, resp.Err())
	}
	return render(cmd.OutOrStdout(), resp.Data)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// expandFiles resolves glob patterns, keeping plain paths that exist.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			// If no glob matches, check if it's a direct file
			if _, err := os.Stat(pattern); err != nil {
				slog.Warn("No files found matching pattern", "pattern", pattern)
				continue
			}
			matches = []string{pattern}
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}

	sort.Strings(files)
	return files, nil
}

// monthsSpanned counts the calendar months between the earliest and latest
// dated transactions, inclusive. Undated records are ignored.
func monthsSpanned(categorized []model.CategorizedTransaction) int {
	var first, last time.Time
	for _, ct := range categorized {
		if !ct.HasDate() {
			continue
		}
		if first.IsZero() || ct.Date.Before(first) {
			first = ct.Date
		}
		if ct.Date.After(last) {
			last = ct.Date
		}
	}
	if first.IsZero() {
		return 1
	}
	return (last.Year()-first.Year())*12 + int(last.Month()-first.Month()) + 1
}

// latestMonth returns the first day of the month holding the newest dated
// transaction, or of the current month when nothing is dated.
func latestMonth(categorized []model.CategorizedTransaction, now time.Time) time.Time {
	latest := now
	found := false
	for _, ct := range categorized {
		if ct.HasDate() && (!found || ct.Date.After(latest)) {
			latest = ct.Date
			found = true
		}
	}
	return time.Date(latest.Year(), latest.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// monthExpenses keeps the expenses dated within month. The result is never nil.
func monthExpenses(categorized []model.CategorizedTransaction, month time.Time) []model.CategorizedTransaction {
	kept := make([]model.CategorizedTransaction, 0, len(categorized))
	for _, ct := range categorized {
		if ct.IsExpense() && ct.HasDate() && ct.Date.Year() == month.Year() && ct.Date.Month() == month.Month() {
			kept = append(kept, ct)
		}
	}
	return kept
}
