package app

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/catalog-admin/catalog-admin/internal/daemon"
	"github.com/catalog-admin/catalog-admin/internal/db/controller/acl"
)

func init() { //nolint: gochecknoinits
	rootCmd.AddCommand(migrateCmd, seedCmd)
}

var (
	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database tables",
		RunE: func(_ *cobra.Command, _ []string) error {
			if _, err := daemon.Open(&cfg); err != nil {
				return err //nolint:wrapcheck
			}

			log.Info().Str("engine", cfg.DB.Engine).Msg("database migrated")

			return nil
		},
	}

	seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Create the default permissions, roles and users",
		Long: `Create the default permissions, roles and users.
Running it again restores the grants of the built-in roles. Cached authorizations
of running instances expire after rbac.cachettl.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			gdb, err := daemon.Open(&cfg)
			if err != nil {
				return err //nolint:wrapcheck
			}

			store, err := acl.New(gdb)
			if err != nil {
				return err //nolint:wrapcheck
			}

			return daemon.Seed(cmd.Context(), store, cfg.Seed) //nolint:wrapcheck
		},
	}
)
