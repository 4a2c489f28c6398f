// Package app implements the main application commands.
package app

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/catalog-admin/catalog-admin/internal/config"
	"github.com/catalog-admin/catalog-admin/internal/logger"
)

var (
	configPath string // Path to the configuration file
	devMode    bool

	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "catalog-admin",
	Short: "Catalog Admin is the backend of the product catalog administration",
	Long: `Catalog Admin serves the JSON API of the product catalog administration
with role based access control over users, roles, permissions, products and categories.`,
	Args: cobra.OnlyValidArgs,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		var err error
		if cfg, err = config.ReadConfig(configPath); err != nil {
			return err //nolint:wrapcheck
		}

		if devMode {
			cfg.DevMode = true
		}

		return logger.Init(cfg.Log) //nolint:wrapcheck
	},
	SilenceUsage: true,
}

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./etc/", "config file or directory holding main.toml")
	rootCmd.PersistentFlags().BoolVar(&devMode, "dev", false, "Enable dev mode")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background()) //nolint:wrapcheck
}
