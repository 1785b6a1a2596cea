// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "go-agora",
	Short: "go-agora serves the governance api of several DAOs",
	Long: `go-agora serves proposals, votes, delegates, statements, staking,
retro funding and citizen data of several DAOs from one process.
The tenant of a request is selected by its host or the X-Agora-Tenant header.`,
	Args:          cobra.OnlyValidArgs,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./etc/", "directory holding main.toml")
	rootCmd.PersistentFlags().BoolVar(&devMode, "dev", false, "Enable dev mode")
}

var (
	configPath string // Path to the configuration directory
	devMode    bool
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
