package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/donaldgifford/vehicle-deal-checker/internal/config"
	"github.com/donaldgifford/vehicle-deal-checker/internal/store"
	"github.com/donaldgifford/vehicle-deal-checker/pkg/logger"
)

func migrateCmd() *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  "Applies the embedded SQL migrations for evaluation history. Already-applied migrations are skipped.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if list {
				versions, err := store.MigrationVersions()
				if err != nil {
					return err
				}
				for _, v := range versions {
					cmd.Println(v)
				}
				return nil
			}
			return runMigrate(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&list, "list", false, "list embedded migrations without connecting")
	return cmd
}

func runMigrate(parent context.Context) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if !cfg.Database.Enabled() {
		return fmt.Errorf("database.host is not set; evaluation history is disabled")
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	ctx, cancel := context.WithTimeout(parent, 60*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	log.Info("running migrations", "host", cfg.Database.Host, "database", cfg.Database.Name)

	applied, err := store.RunMigrations(ctx, pool)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	log.Info("migrations complete", "applied", len(applied), "versions", applied)
	return nil
}
