package app

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/GoAgora/go-agora/internal/config"
	"github.com/GoAgora/go-agora/internal/daemon"
	"github.com/GoAgora/go-agora/internal/logger"
)

func init() { //nolint: gochecknoinits
	rootCmd.AddCommand(startCmd)
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the go-agora web service",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if err = logger.Init(cfg.Log); err != nil {
			return errors.Wrap(err, "failed to init logger")
		}

		defer func() { _ = logger.Close() }()

		d, err := daemon.New(rootContext(cmd), &cfg)
		if err != nil {
			return err
		}

		return d.Start()
	},
}

// loadConfig reads the configuration. --dev is applied before validation
// through AGORA_DEV, so a dev setup may leave the jwt secret empty.
func loadConfig() (config.Config, error) {
	if devMode {
		if err := os.Setenv(config.DevModeEnv, "true"); err != nil {
			return config.Config{}, errors.Wrap(err, "failed to enable dev mode")
		}
	}

	return config.ReadConfig(configPath)
}

// rootContext is used when a command runs without a context, e.g. in tests.
func rootContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}

	return context.Background()
}
