// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"

	"github.com/PontoAdmin/ponto-admin/internal/config"
)

var (
	cfg        config.Config // configuration read by the PreRun of each command
	configPath string        // directory holding main.toml
)

var rootCmd = &cobra.Command{
	Use:   "ponto-admin",
	Short: "Ponto Admin is the back office for attendance, payroll and PIX payments",
	Long: `Ponto Admin is the back office for employee attendance, payroll and PIX
payment batches, with per-user permissions, an audit log and client error tracking.`,
	Args: cobra.OnlyValidArgs,
}

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./etc/", "directory holding main.toml")
}

// readConfig loads the configuration into cfg.
func readConfig(_ *cobra.Command, _ []string) error {
	var err error

	cfg, err = config.ReadConfig(configPath)

	return err
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
