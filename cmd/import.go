package main

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/storelake/remodel-cli/internal/source"
	"github.com/storelake/remodel-cli/internal/store"
)

var (
	importFromPostgres bool
	importManifestPath string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load the normalized source collections into the document store",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if importFromPostgres == (importManifestPath != "") {
			return eris.New("pass exactly one of --from-postgres and --manifest")
		}

		st, err := store.NewMongo(ctx, cfg.Mongo, cfg.Build.BatchSize)
		if err != nil {
			return eris.Wrap(err, "connect store")
		}
		defer func() { _ = st.Close(context.Background()) }()

		if importFromPostgres {
			if cfg.Source.PostgresURL == "" {
				return eris.New("postgres URL is required (REMODEL_SOURCE_POSTGRES_URL)")
			}
			pool, err := pgxpool.New(ctx, cfg.Source.PostgresURL)
			if err != nil {
				return eris.Wrap(err, "connect postgres")
			}
			defer pool.Close()

			exp := source.NewExporter(pool, cfg.Source.TablePrefix, cfg.Build.BatchSize)
			if err := exp.Export(ctx, st); err != nil {
				return eris.Wrap(err, "export from postgres")
			}
		} else {
			m, err := source.LoadManifest(importManifestPath)
			if err != nil {
				return eris.Wrap(err, "load manifest")
			}
			if err := m.Import(ctx, st, cfg.Build.BatchSize); err != nil {
				return eris.Wrap(err, "import manifest")
			}
		}

		zap.L().Info("import complete")
		return nil
	},
}

func init() {
	importCmd.Flags().BoolVar(&importFromPostgres, "from-postgres", false, "export the source tables straight from Postgres")
	importCmd.Flags().StringVar(&importManifestPath, "manifest", "", "path to a YAML manifest of JSON-lines dump files")
	rootCmd.AddCommand(importCmd)
}
