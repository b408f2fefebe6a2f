package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"mcq-assessment-service/internal/auth"
	"mcq-assessment-service/internal/config"
	"mcq-assessment-service/internal/domain"
	"mcq-assessment-service/internal/infra/postgres"
)

// NewTokenCmd mints a bearer token for local testing and operator scripts.
// With Postgres configured the user row is created too, so the token can earn points.
func NewTokenCmd(configPath *string) *cobra.Command {
	var role, name string
	cmd := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Print a signed bearer token for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if cfg.Auth.JWTSecret == "" {
				return errors.New("auth.jwt_secret (or JWT_SECRET) must be set")
			}
			switch role {
			case auth.RoleAdmin, auth.RoleInstructor, auth.RoleUser:
			default:
				return fmt.Errorf("unknown role %q", role)
			}
			if cfg.Postgres.URL != "" {
				db, err := postgres.Open(cfg.Postgres.URL)
				if err != nil {
					return err
				}
				defer db.Close()
				if name == "" {
					name = args[0]
				}
				if err := postgres.NewUserStore(db).Put(cmd.Context(), domain.User{ID: args[0], Name: name, Role: role}); err != nil {
					return fmt.Errorf("register user: %w", err)
				}
			}
			svc := auth.NewService(cfg.Auth.JWTSecret, cfg.Auth.Issuer, config.TTLDuration(cfg.Auth.TokenTTL, 8*time.Hour))
			tok, err := svc.IssueJWT(args[0], role)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", auth.RoleUser, "role claim: admin, instructor or user")
	cmd.Flags().StringVar(&name, "name", "", "display name stored with the user (defaults to the id)")
	return cmd
}
