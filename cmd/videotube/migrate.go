package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/videotube-app/videotube/internal/config"
	"github.com/videotube-app/videotube/internal/logx"
	"github.com/videotube-app/videotube/internal/store"
	"github.com/videotube-app/videotube/migrations"
)

func newMigrateCommand(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(config.New(), *configFile)
			if err != nil {
				return err
			}
			log := logx.New(cfg.LogLevel, cfg.LogFormat)

			pool, err := store.NewPool(cmd.Context(), cfg.DBDSN, cfg.DBMaxConns)
			if err != nil {
				return fmt.Errorf("database connection failed: %w", err)
			}
			defer pool.Close()

			return migrate(cmd.Context(), pool, log)
		},
	}
}

func migrate(ctx context.Context, pool *pgxpool.Pool, log logrus.FieldLogger) error {
	return store.Migrate(ctx, pool, migrations.FS, migrations.Files, func(name string) {
		log.WithField("file", name).Info("migration applied")
	})
}
