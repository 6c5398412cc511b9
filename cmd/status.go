package main

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/storelake/remodel-cli/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show target collection counts and the most recent run",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := store.NewMongo(ctx, cfg.Mongo, cfg.Build.BatchSize)
		if err != nil {
			return eris.Wrap(err, "connect store")
		}
		defer func() { _ = st.Close(context.Background()) }()

		counts, err := st.Counts(ctx)
		if err != nil {
			return eris.Wrap(err, "count targets")
		}
		fields := make([]zap.Field, 0, len(counts))
		for coll, n := range counts {
			fields = append(fields, zap.Int64(coll, n))
		}
		zap.L().Info("target collections", fields...)

		run, err := st.LatestRun(ctx)
		if err != nil {
			return eris.Wrap(err, "latest run")
		}
		if run == nil {
			zap.L().Info("no runs recorded")
			return nil
		}
		zap.L().Info("latest run",
			zap.String("run_id", run.ID),
			zap.String("status", string(run.Status)),
			zap.Time("started_at", run.StartedAt),
			zap.Int("stages", len(run.Stages)),
		)
		for _, s := range run.Stages {
			zap.L().Info("stage",
				zap.String("name", s.Name),
				zap.String("status", s.Status),
				zap.Int("docs", s.Docs),
				zap.Int64("duration_ms", s.DurationMS),
			)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
