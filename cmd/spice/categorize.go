package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-insights/internal/classification"
	"github.com/Veraticus/spice-insights/internal/cli"
	"github.com/Veraticus/spice-insights/internal/config"
	"github.com/Veraticus/spice-insights/internal/engine"
	"github.com/Veraticus/spice-insights/internal/model"
	"github.com/Veraticus/spice-insights/internal/service"
	"github.com/Veraticus/spice-insights/internal/storage"
)

func categorizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categorize",
		Short: "Categorize stored transactions",
		Long: `Categorize transactions using your corrections first, then the built-in
merchant rules, then the configured LLM classifier (llm.provider) if any.

By default only transactions without a category are processed.`,
		RunE: runCategorize,
	}

	cmd.Flags().Bool("no-fallback", false, "Skip the fallback classifier")
	cmd.Flags().Bool("all", false, "Recategorize every stored transaction")
	cmd.Flags().Bool("dry-run", false, "Show results without saving")

	return cmd
}

type categorizeOptions struct {
	all           bool
	allowFallback bool
	dryRun        bool
}

func runCategorize(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	noFallback, _ := cmd.Flags().GetBool("no-fallback")
	all, _ := cmd.Flags().GetBool("all")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	cfg, err := config.LoadEngineConfig()
	if err != nil {
		return err
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	eng, cleanup, err := newEngine(ctx, cfg, !noFallback)
	if err != nil {
		return err
	}
	defer cleanup()

	resp, err := categorizeStored(ctx, eng, store, categorizeOptions{
		all:           all,
		allowFallback: !noFallback,
		dryRun:        dryRun,
	})
	if err != nil {
		return err
	}

	return emit(cmd, resp, cli.RenderCategorization)
}

// categorizeStored runs the categorizer over stored transactions and saves
// the results unless the run was canceled or is a dry run.
func categorizeStored(ctx context.Context, eng *engine.Engine, store *storage.SQLiteStorage, opts categorizeOptions) (engine.Response[*classification.Result], error) {
	var none engine.Response[*classification.Result]

	var (
		txns []model.Transaction
		err  error
	)
	if opts.all {
		txns, err = store.GetTransactions(ctx, service.TransactionFilter{})
	} else {
		txns, err = store.GetUncategorizedTransactions(ctx)
	}
	if err != nil {
		return none, fmt.Errorf("failed to load transactions: %w", err)
	}

	corrections, err := store.GetAllCorrections(ctx)
	if err != nil {
		return none, fmt.Errorf("failed to load corrections: %w", err)
	}

	resp := eng.Categorize(ctx, engine.CategorizeInput{
		UserID:                  userID(),
		Transactions:            txns,
		FeedbackHistory:         model.FeedbackFromCorrections(corrections),
		AllowFallbackClassifier: &opts.allowFallback,
	})
	if !resp.OK() || opts.dryRun {
		return resp, nil
	}

	// Nothing partial is written after an interrupt.
	if err := ctx.Err(); err != nil {
		return none, err
	}
	if len(resp.Data.Transactions) > 0 {
		if err := store.SaveCategorizations(ctx, resp.Data.Transactions); err != nil {
			return none, fmt.Errorf("failed to save categorizations: %w", err)
		}
	}

	slog.Info("Categorization complete",
		"request_id", resp.RequestID,
		"count", resp.Data.Summary.Total(),
		"unclassified", resp.Data.Summary.Unclassified)
	return resp, nil
}
