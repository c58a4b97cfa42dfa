package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"place_pulse/internal/adapters/extract"
	"place_pulse/internal/app"
	"place_pulse/internal/shared"
)

func newImportCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "import <extract.csv>",
		Short: "Load a review extract into the store",
		Long:  "Reads a flat CSV review extract, resolves places and reviewers against their natural keys, and writes feedback events in batched transactions. Safe to re-run on the same file.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), args[0], configPath)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "YAML overrides for batch size, matching policy and column names")

	return cmd
}

func runImport(ctx context.Context, path, configPath string) error {
	cfg := shared.Load()

	var fileCfg shared.ImportFile
	if configPath != "" {
		var err error
		fileCfg, err = shared.LoadImportFile(configPath)
		if err != nil {
			return err
		}
	}
	cols := fileCfg.Columns.WithDefaults()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open extract: %w", err)
	}
	defer f.Close()

	rows, err := extract.NewReader(f, cols)
	if err != nil {
		return err
	}

	repo, db, err := openRepo(cfg)
	if err != nil {
		return err
	}
	defer closeDB(db)

	svc := app.NewImportService(repo, cfg.ImportOptions(fileCfg))
	counters, err := svc.Run(ctx, rows)
	if err != nil {
		return err
	}

	log.Info().
		Int64("rows", counters.Rows).
		Int64("places", counters.Places).
		Int64("reviewers", counters.Reviewers).
		Int64("feedback", counters.Feedback).
		Int64("skipped", counters.Skipped).
		Int("commits", counters.Commits).
		Msg("import completed")

	invalidateAggregates(cfg)
	return nil
}
