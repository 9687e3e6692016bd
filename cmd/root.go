package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/community-cli/internal/config"
)

var (
	cfg *config.Config

	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:           "community-cli",
	Short:         "Local community content for real estate newsletters",
	Long:          "Resolves a zip code to a city, gathers vetted local places and events per category from Google Places or an LLM, and caches month-scoped results.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		c, err := config.LoadFile(configPath)
		if err != nil {
			return err
		}
		if logLevel != "" {
			c.Log.Level = logLevel
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return err
		}
		zap.L().Debug("config loaded",
			zap.String("command", cmd.Name()),
			zap.String("primary", cfg.Providers.Primary),
			zap.String("cache_driver", cfg.Cache.Driver),
		)
		return nil
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log.level (debug, info, warn, error)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if cfg != nil {
			zap.L().Error("command failed", zap.Error(err))
			_ = zap.L().Sync()
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
