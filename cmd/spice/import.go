package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-insights/internal/cli"
	"github.com/Veraticus/spice-insights/internal/common"
	"github.com/Veraticus/spice-insights/internal/model"
	"github.com/Veraticus/spice-insights/internal/ofx"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [files...]",
		Short: "Import transactions from OFX/QFX files",
		Long: `Import financial transactions from OFX or QFX (Quicken) files exported from your bank.

Transactions are deduplicated automatically, so re-importing an overlapping
export is safe.

Examples:
  # Import single file
  spice import ~/Downloads/chase_jan_2024.qfx

  # Import all QFX files in a directory
  spice import ~/Downloads/*.qfx`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImport,
	}

	cmd.Flags().BoolP("dry-run", "d", false, "Preview import without saving")

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	files, err := expandFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no files found to import")
	}

	slog.Info("Importing OFX files", "file_count", len(files), "dry_run", dryRun)

	parser := ofx.NewParser(slog.Default())
	bar := cli.NewProgressBar(cmd.ErrOrStderr(), len(files), "Parsing")

	var all []model.Transaction
	failed := 0
	for _, path := range files {
		txns, err := parseOFXFile(cmd, parser, path)
		_ = bar.Add(1)
		if err != nil {
			// One unreadable export should not block the rest.
			common.LogError(err, "Failed to parse OFX file", common.Fields{"file": path})
			failed++
			continue
		}
		all = append(all, txns...)
	}
	_ = bar.Finish()

	if err := ctx.Err(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if dryRun {
		fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Dry run: parsed %d transactions from %d files", len(all), len(files)-failed)))
		return nil
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	inserted, err := store.SaveTransactions(ctx, all)
	if err != nil {
		return fmt.Errorf("failed to save transactions: %w", err)
	}

	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Imported %d new transactions (%d duplicates skipped)",
		inserted, len(all)-inserted)))
	if failed > 0 {
		fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("%d files could not be parsed", failed)))
	}
	return nil
}

func parseOFXFile(cmd *cobra.Command, parser *ofx.Parser, path string) ([]model.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	txns, err := parser.ParseFile(cmd.Context(), f)
	if err != nil {
		return nil, err
	}
	slog.Debug("Parsed file", "file", filepath.Base(path), "transactions", len(txns))
	return txns, nil
}
