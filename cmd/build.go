package main

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/storelake/remodel-cli/internal/pipeline"
	"github.com/storelake/remodel-cli/internal/store"
)

var buildNormalize bool

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Run the full remodeling pipeline",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := store.NewMongo(ctx, cfg.Mongo, cfg.Build.BatchSize)
		if err != nil {
			return eris.Wrap(err, "connect store")
		}
		defer func() { _ = st.Close(context.Background()) }()

		p := pipeline.New(cfg, st)
		run, err := p.Run(ctx)
		if err != nil {
			return eris.Wrap(err, "build")
		}

		if buildNormalize {
			if _, err := p.Normalize(ctx); err != nil {
				return eris.Wrap(err, "normalize")
			}
		}

		zap.L().Info("build complete",
			zap.String("run_id", run.ID),
			zap.Int("stages", len(run.Stages)),
		)
		return nil
	},
}

func init() {
	buildCmd.Flags().BoolVar(&buildNormalize, "normalize", false, "run the text-normalization pass after the build")
	rootCmd.AddCommand(buildCmd)
}
