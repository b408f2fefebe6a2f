package cli

import (
	"context"

	"github.com/spf13/cobra"

	"mcq-assessment-service/internal/config"
	"mcq-assessment-service/internal/infra/postgres"
)

// NewMigrateCmd applies database migrations.
func NewMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrations(cmd.Context(), *configPath)
		},
	}
}

func runMigrations(ctx context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	return runMigrationsWithConfig(ctx, cfg)
}

func runMigrationsWithConfig(ctx context.Context, cfg config.Config) error {
	db, err := postgres.Open(cfg.Postgres.URL)
	if err != nil {
		return err
	}
	defer db.Close()

	group, err := postgres.Migrate(ctx, db)
	if err != nil {
		return err
	}
	if group.IsZero() {
		config.Logger().Info("no new migrations to apply")
		return nil
	}
	config.Logger().WithField("group", group.String()).Info("migrations applied")
	return nil
}

func loadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	config.InitLogger(cfg)
	return cfg, nil
}
