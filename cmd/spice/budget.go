package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-insights/internal/budget"
	"github.com/Veraticus/spice-insights/internal/cli"
	"github.com/Veraticus/spice-insights/internal/common"
	"github.com/Veraticus/spice-insights/internal/config"
	"github.com/Veraticus/spice-insights/internal/engine"
	"github.com/Veraticus/spice-insights/internal/model"
	"github.com/Veraticus/spice-insights/internal/service"
	"github.com/Veraticus/spice-insights/internal/storage"
)

func budgetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Manage monthly category budgets",
		Long:  `Set monthly limits per category and check spending against them.`,
	}

	cmd.AddCommand(budgetSetCmd())
	cmd.AddCommand(budgetStatusCmd())
	cmd.AddCommand(budgetDeleteCmd())

	return cmd
}

func budgetSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <category> <monthly-limit>",
		Short: "Create or replace a category budget",
		Example: `  spice budget set Shopping 300
  spice budget set "Food Delivery" 150 --thresholds 50,80,100`,
		Args: cobra.ExactArgs(2),
		RunE: runBudgetSet,
	}

	cmd.Flags().Float64Slice("thresholds", nil, "Alert thresholds in percent (default from engine.alert_thresholds)")

	return cmd
}

func budgetStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show spending against budgets and any alerts",
		Long: `Recompute each budget from the categorized expenses of one month and
report threshold alerts. Defaults to the month of the newest transaction.`,
		RunE: runBudgetStatus,
	}

	cmd.Flags().Bool("variance", false, "Include variance analysis and reallocation suggestions")
	cmd.Flags().String("month", "", "Month to evaluate (format: 2006-01)")
	cmd.Flags().StringP("personality", "p", "", "Money personality for tailored alert messages")

	return cmd
}

func budgetDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <category>",
		Short: "Remove a category budget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteBudget(ctx, args[0]); err != nil {
				if errors.Is(err, common.ErrNotFound) {
					return common.NewUserError(fmt.Sprintf("No budget is set for %q", args[0]), err)
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Removed budget for %s", args[0])))
			return nil
		},
	}
}

func runBudgetSet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	limit, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid monthly limit %q: %w", args[1], err)
	}

	cfg, err := config.LoadEngineConfig()
	if err != nil {
		return err
	}
	thresholds := cfg.AlertThresholds
	if cmd.Flags().Changed("thresholds") {
		thresholds, _ = cmd.Flags().GetFloat64Slice("thresholds")
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

	resp, err := setBudget(ctx, eng, store, budget.CategorySpec{
		Name:            args[0],
		MonthlyLimit:    limit,
		AlertThresholds: thresholds,
	})
	if err != nil {
		return err
	}
	return emit(cmd, resp, cli.RenderBudget)
}

// setBudget validates and builds the category through the engine, then
// stores it.
func setBudget(ctx context.Context, eng *engine.Engine, store *storage.SQLiteStorage, spec budget.CategorySpec) (engine.Response[*budget.AlertResult], error) {
	resp := eng.Budget(ctx, engine.BudgetInput{
		UserID:    userID(),
		Operation: engine.BudgetCreate,
		Specs:     []budget.CategorySpec{spec},
	})
	if !resp.OK() {
		return resp, nil
	}

	for _, c := range resp.Data.Categories {
		if err := store.SaveBudget(ctx, c); err != nil {
			return resp, fmt.Errorf("failed to save budget: %w", err)
		}
	}
	return resp, nil
}

func runBudgetStatus(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	variance, _ := cmd.Flags().GetBool("variance")
	monthFlag, _ := cmd.Flags().GetString("month")
	personality, _ := cmd.Flags().GetString("personality")

	var month time.Time
	if monthFlag != "" {
		m, err := time.Parse("2006-01", monthFlag)
		if err != nil {
			return fmt.Errorf("invalid month %q (expected 2006-01): %w", monthFlag, err)
		}
		month = m
	}

	var profile *model.PersonalityProfile
	if personality != "" {
		p, err := parseProfile(personality, "")
		if err != nil {
			return err
		}
		profile = &p
	}

	cfg, err := config.LoadEngineConfig()
	if err != nil {
		return err
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

	resp, err := budgetStatus(ctx, eng, store, budgetStatusOptions{
		month:    month,
		profile:  profile,
		variance: variance,
	})
	if err != nil {
		return err
	}
	return emit(cmd, resp, cli.RenderBudget)
}

type budgetStatusOptions struct {
	month    time.Time
	profile  *model.PersonalityProfile
	variance bool
}

// budgetStatus evaluates stored budgets against one month of expenses and
// persists the refreshed spending snapshot.
func budgetStatus(ctx context.Context, eng *engine.Engine, store *storage.SQLiteStorage, opts budgetStatusOptions) (engine.Response[*budget.AlertResult], error) {
	var none engine.Response[*budget.AlertResult]

	budgets, err := store.GetBudgets(ctx)
	if err != nil {
		return none, fmt.Errorf("failed to load budgets: %w", err)
	}

	categorized, err := store.GetCategorizedTransactions(ctx, service.TransactionFilter{})
	if err != nil {
		return none, fmt.Errorf("failed to load categorized transactions: %w", err)
	}

	month := opts.month
	if month.IsZero() {
		month = latestMonth(categorized, time.Now().UTC())
	}

	resp := eng.Budget(ctx, engine.BudgetInput{
		UserID:          userID(),
		Operation:       engine.BudgetAlerts,
		Profile:         opts.profile,
		Categories:      budgets,
		Transactions:    monthExpenses(categorized, month),
		IncludeVariance: opts.variance,
	})
	if !resp.OK() {
		return resp, nil
	}

	if err := ctx.Err(); err != nil {
		return none, err
	}
	for _, c := range resp.Data.Categories {
		if err := store.SaveBudget(ctx, c); err != nil {
			return none, fmt.Errorf("failed to save budget %q: %w", c.CategoryName, err)
		}
	}
	return resp, nil
}
