package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-insights/internal/cli"
	"github.com/Veraticus/spice-insights/internal/common"
	"github.com/Veraticus/spice-insights/internal/model"
)

func correctCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "correct <merchant> <category>",
		Short: "Teach spice the right category for a merchant",
		Long: `Record a category correction for a merchant. Every future categorize run
uses it before any rule or classifier, for any spelling of the merchant
that normalizes to the same key.

Examples:
  spice correct "STARBUCKS #1234" "Food & Dining"
  spice correct --delete "STARBUCKS"
  spice correct --list`,
		Args: func(cmd *cobra.Command, args []string) error {
			if list, _ := cmd.Flags().GetBool("list"); list {
				return cobra.NoArgs(cmd, args)
			}
			if del, _ := cmd.Flags().GetBool("delete"); del {
				return cobra.ExactArgs(1)(cmd, args)
			}
			return cobra.ExactArgs(2)(cmd, args)
		},
		RunE: runCorrect,
	}

	cmd.Flags().Bool("delete", false, "Remove the correction for a merchant")
	cmd.Flags().Bool("list", false, "List stored corrections")

	return cmd
}

func runCorrect(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	out := cmd.OutOrStdout()
	if list, _ := cmd.Flags().GetBool("list"); list {
		corrections, err := store.GetAllCorrections(ctx)
		if err != nil {
			return err
		}
		return cli.RenderCorrections(out, corrections)
	}

	if del, _ := cmd.Flags().GetBool("delete"); del {
		if err := store.DeleteCorrection(ctx, args[0]); err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return common.NewUserError(fmt.Sprintf("No correction is stored for %q", args[0]), err)
			}
			return fmt.Errorf("failed to delete correction: %w", err)
		}
		fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Removed correction for %s", args[0])))
		return nil
	}

	category := strings.TrimSpace(args[1])
	if category == "" {
		return fmt.Errorf("category cannot be empty")
	}

	correction := &model.Correction{
		MerchantKey: args[0],
		Category:    category,
		Source:      model.SourceUser,
	}
	if err := store.SaveCorrection(ctx, correction); err != nil {
		return fmt.Errorf("failed to save correction: %w", err)
	}

	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("%s will be categorized as %s", correction.MerchantKey, category)))
	return nil
}
