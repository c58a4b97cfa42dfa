package cli

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"place_pulse/internal/adapters/vader"
	"place_pulse/internal/app"
	"place_pulse/internal/shared"
)

func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify",
		Short: "Label unclassified feedback by text polarity",
		Long:  "Scores the text of every feedback event that has no sentiment label yet and writes positive/neutral/negative labels in batched transactions. Already-labeled events are never touched.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(cmd.Context())
		},
	}
}

func runClassify(ctx context.Context) error {
	cfg := shared.Load()

	repo, db, err := openRepo(cfg)
	if err != nil {
		return err
	}
	defer closeDB(db)

	svc := app.NewClassificationService(repo, vader.New(), cfg.ClassifyN)
	counters, err := svc.Run(ctx)
	if err != nil {
		return err
	}

	log.Info().
		Int64("scanned", counters.Scanned).
		Int64("positive", counters.Positive).
		Int64("neutral", counters.Neutral).
		Int64("negative", counters.Negative).
		Int64("faults", counters.Faults).
		Int("flushes", counters.Flushes).
		Msg("classification completed")

	invalidateAggregates(cfg)
	return nil
}
