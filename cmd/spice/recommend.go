package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-insights/internal/classification"
	"github.com/Veraticus/spice-insights/internal/cli"
	"github.com/Veraticus/spice-insights/internal/config"
	"github.com/Veraticus/spice-insights/internal/engine"
	"github.com/Veraticus/spice-insights/internal/model"
	"github.com/Veraticus/spice-insights/internal/optimize"
	"github.com/Veraticus/spice-insights/internal/service"
	"github.com/Veraticus/spice-insights/internal/storage"
)

func recommendCmd() *cobra.Command {
	types := make([]string, 0, len(model.PersonalityTypes()))
	for _, p := range model.PersonalityTypes() {
		types = append(types, string(p))
	}

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Suggest savings tailored to your money personality",
		Long: fmt.Sprintf(`Rank savings opportunities from your average monthly spending per category,
adjusted for your money personality. Overlapping subscriptions are included.

Personality types: %s`, strings.Join(types, ", ")),
		RunE: runRecommend,
	}

	cmd.Flags().StringP("personality", "p", "", "Primary money personality (required)")
	cmd.Flags().String("secondary", "", "Secondary money personality")
	cmd.Flags().Bool("skip-subscriptions", false, "Do not include subscription opportunities")
	_ = cmd.MarkFlagRequired("personality")

	return cmd
}

func runRecommend(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	primary, _ := cmd.Flags().GetString("personality")
	secondary, _ := cmd.Flags().GetString("secondary")
	skipSubs, _ := cmd.Flags().GetBool("skip-subscriptions")

	profile, err := parseProfile(primary, secondary)
	if err != nil {
		return err
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

	resp, err := recommendStored(ctx, eng, store, profile, cfg.WindowMonths, !skipSubs)
	if err != nil {
		return err
	}
	return emit(cmd, resp, cli.RenderRecommendations)
}

func parseProfile(primary, secondary string) (model.PersonalityProfile, error) {
	var profile model.PersonalityProfile

	p, err := model.ParsePersonalityType(primary)
	if err != nil {
		return profile, err
	}
	profile.Primary = p

	if secondary != "" {
		s, err := model.ParsePersonalityType(secondary)
		if err != nil {
			return profile, err
		}
		profile.Secondary = s
	}
	return profile, nil
}

// recommendStored averages stored categorized spending per month and ranks
// opportunities, optionally merging in subscription findings.
func recommendStored(ctx context.Context, eng *engine.Engine, store *storage.SQLiteStorage, profile model.PersonalityProfile, windowMonths int, withSubscriptions bool) (engine.Response[*optimize.Result], error) {
	var none engine.Response[*optimize.Result]

	categorized, err := store.GetCategorizedTransactions(ctx, service.TransactionFilter{})
	if err != nil {
		return none, fmt.Errorf("failed to load categorized transactions: %w", err)
	}

	var additional []model.OptimizationOpportunity
	if withSubscriptions {
		subs, err := detectStored(ctx, eng, store, windowMonths)
		if err != nil {
			return none, err
		}
		if !subs.OK() {
			return none, fmt.Errorf("subscription detection failed: %w", subs.Err())
		}
		additional = subs.Data.Opportunities
	}

	return eng.Recommend(ctx, engine.RecommendInput{
		UserID:         userID(),
		CategoryTotals: classification.CategoryTotals(categorized, monthsSpanned(categorized)),
		Profile:        profile,
		Additional:     additional,
	}), nil
}
