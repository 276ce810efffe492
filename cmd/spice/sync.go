package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/spice-insights/internal/cli"
	"github.com/Veraticus/spice-insights/internal/common"
	"github.com/Veraticus/spice-insights/internal/config"
	"github.com/Veraticus/spice-insights/internal/plaid"
	"github.com/Veraticus/spice-insights/internal/service"
	"github.com/Veraticus/spice-insights/internal/simplefin"
)

func syncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Import transactions from Plaid or SimpleFIN",
		Long: `Fetch transactions from an already linked feed and store them in the local
database. Transactions are deduplicated automatically.

Plaid requires plaid.client_id, plaid.secret and plaid.access_token in the
config file, or the PLAID_CLIENT_ID, PLAID_SECRET and PLAID_ACCESS_TOKEN
variables. SimpleFIN requires simplefin.access_url or SIMPLEFIN_ACCESS_URL.`,
		RunE: runSync,
	}

	cmd.Flags().IntP("days", "d", 30, "Number of days to import, ending today")
	cmd.Flags().String("source", "plaid", "Feed to sync from (plaid, simplefin)")
	cmd.Flags().Bool("list-accounts", false, "List available accounts without importing")

	_ = viper.BindPFlag("sync.days", cmd.Flags().Lookup("days"))
	_ = viper.BindPFlag("sync.source", cmd.Flags().Lookup("source"))

	return cmd
}

func runSync(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	client, err := newFetcher(viper.GetString("sync.source"))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if listOnly, _ := cmd.Flags().GetBool("list-accounts"); listOnly {
		accounts, err := client.GetAccounts(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, cli.FormatTitle("Accounts"))
		for _, id := range accounts {
			fmt.Fprintf(out, "  %s\n", id)
		}
		return nil
	}

	days := viper.GetInt("sync.days")
	if days <= 0 {
		return fmt.Errorf("--days must be positive, got %d", days)
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	end := time.Now().UTC()
	fetched, inserted, err := syncTransactions(ctx, client, store, end.AddDate(0, 0, -days), end)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Fetched %d transactions, %d new", fetched, inserted)))
	return nil
}

// newFetcher builds the transaction feed named by source.
func newFetcher(source string) (service.TransactionFetcher, error) {
	switch source {
	case "plaid", "":
		cfg, err := config.LoadPlaidConfig()
		if err != nil {
			return nil, err
		}
		client, err := plaid.NewClient(*cfg, slog.Default())
		if err != nil {
			return nil, fmt.Errorf("failed to create Plaid client: %w", err)
		}
		return client, nil
	case "simplefin":
		cfg, err := config.LoadSimpleFINConfig()
		if err != nil {
			return nil, err
		}
		client, err := simplefin.NewClient(*cfg, slog.Default())
		if err != nil {
			return nil, fmt.Errorf("failed to create SimpleFIN client: %w", err)
		}
		return client, nil
	}
	return nil, fmt.Errorf("%w: unknown sync source %q (plaid, simplefin)", common.ErrInvalidConfig, source)
}

// syncTransactions copies one date range from a feed into storage and
// returns the fetched and inserted counts.
func syncTransactions(ctx context.Context, fetcher service.TransactionFetcher, store service.Storage, start, end time.Time) (int, int, error) {
	txns, err := fetcher.GetTransactions(ctx, start, end)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to fetch transactions: %w", err)
	}
	if len(txns) == 0 {
		return 0, 0, nil
	}

	inserted, err := store.SaveTransactions(ctx, txns)
	if err != nil {
		return len(txns), 0, fmt.Errorf("failed to save transactions: %w", err)
	}
	return len(txns), inserted, nil
}
