package main

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/storelake/remodel-cli/internal/pipeline"
	"github.com/storelake/remodel-cli/internal/store"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Clean the *_norm text fields of the built collections",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := store.NewMongo(ctx, cfg.Mongo, cfg.Build.BatchSize)
		if err != nil {
			return eris.Wrap(err, "connect store")
		}
		defer func() { _ = st.Close(context.Background()) }()

		modified, err := pipeline.New(cfg, st).Normalize(ctx)
		if err != nil {
			return eris.Wrap(err, "normalize")
		}

		zap.L().Info("normalize complete", zap.Int64("modified", modified))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(normalizeCmd)
}
