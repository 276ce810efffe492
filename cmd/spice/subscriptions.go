package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-insights/internal/cli"
	"github.com/Veraticus/spice-insights/internal/config"
	"github.com/Veraticus/spice-insights/internal/engine"
	"github.com/Veraticus/spice-insights/internal/service"
	"github.com/Veraticus/spice-insights/internal/storage"
	"github.com/Veraticus/spice-insights/internal/subscription"
)

func subscriptionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subscriptions",
		Short: "Detect subscriptions and overlapping services",
		Long: `Detect monthly charges that look like subscriptions, estimate what they
cost per month, and flag services that overlap with each other.`,
		RunE: runSubscriptions,
	}

	cmd.Flags().Int("window-months", 0, "Months of history to scan (default from engine.window_months)")

	return cmd
}

func runSubscriptions(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.LoadEngineConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("window-months") {
		cfg.WindowMonths, _ = cmd.Flags().GetInt("window-months")
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

	resp, err := detectStored(ctx, eng, store, cfg.WindowMonths)
	if err != nil {
		return err
	}
	return emit(cmd, resp, cli.RenderSubscriptions)
}

func detectStored(ctx context.Context, eng *engine.Engine, store *storage.SQLiteStorage, windowMonths int) (engine.Response[*subscription.Result], error) {
	txns, err := store.GetTransactions(ctx, service.TransactionFilter{})
	if err != nil {
		return engine.Response[*subscription.Result]{}, fmt.Errorf("failed to load transactions: %w", err)
	}

	return eng.DetectSubscriptions(ctx, engine.SubscriptionInput{
		UserID:       userID(),
		Transactions: txns,
		WindowMonths: windowMonths,
	}), nil
}
