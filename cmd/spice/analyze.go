package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-insights/internal/cli"
	"github.com/Veraticus/spice-insights/internal/config"
	"github.com/Veraticus/spice-insights/internal/engine"
	"github.com/Veraticus/spice-insights/internal/pattern"
	"github.com/Veraticus/spice-insights/internal/service"
	"github.com/Veraticus/spice-insights/internal/storage"
)

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Find recurring expenses, spending spikes and habits",
		Long: `Analyze categorized transactions for recurring expenses, seasonal spending
spikes, unusual charges and day-of-week habits. Run categorize first.`,
		RunE: runAnalyze,
	}

	cmd.Flags().Int("window-days", 0, "Days of history to analyze, ending at the newest transaction (default from engine.window_days)")

	return cmd
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.LoadEngineConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("window-days") {
		cfg.WindowDays, _ = cmd.Flags().GetInt("window-days")
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	eng, cleanup, err := newEngine(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer cleanup()

	resp, err := analyzeStored(ctx, eng, store, cfg.WindowDays)
	if err != nil {
		return err
	}
	return emit(cmd, resp, cli.RenderAnalysis)
}

func analyzeStored(ctx context.Context, eng *engine.Engine, store *storage.SQLiteStorage, windowDays int) (engine.Response[*pattern.Result], error) {
	history, err := store.GetCategorizedTransactions(ctx, service.TransactionFilter{})
	if err != nil {
		return engine.Response[*pattern.Result]{}, fmt.Errorf("failed to load categorized transactions: %w", err)
	}

	return eng.Analyze(ctx, engine.AnalyzeInput{
		UserID:     userID(),
		History:    history,
		WindowDays: windowDays,
	}), nil
}
