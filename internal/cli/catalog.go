package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"mcq-assessment-service/internal/config"
	"mcq-assessment-service/internal/infra/postgres"
)

// NewCatalogCmd registers the course and technology names used in certificate titles.
func NewCatalogCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage course and technology names",
	}
	cmd.AddCommand(
		catalogPutCmd(configPath, "course <id> <title>", "Register or rename a course", (*postgres.Catalog).PutCourse),
		catalogPutCmd(configPath, "technology <id> <name>", "Register or rename a technology", (*postgres.Catalog).PutTechnology),
	)
	return cmd
}

func catalogPutCmd(configPath *string, use, short string, put func(*postgres.Catalog, context.Context, string, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if cfg.Postgres.URL == "" {
				return errors.New("postgres.url (or DATABASE_URL) must be set")
			}
			db, err := postgres.Open(cfg.Postgres.URL)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := put(postgres.NewCatalog(db), cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			config.Logger().WithField("id", args[0]).Info("catalog entry saved")
			return nil
		},
	}
}
