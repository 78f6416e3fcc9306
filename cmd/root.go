package cmd

import (
	"fmt"
	"os"

	"livelist/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "livelist",
	Short: "Live List Service",
	Long: `Livelist serves a live composite of ordered lists.
Member lists can be held in memory, listed from an S3 prefix or persisted in a database,
and every edit reaches subscribers as a precise diff of the flattened list.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// configDir is the directory searched for the .env file.
var configDir string

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console output with ISO8601 timestamps reads better from a terminal.
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configDir, "config-dir", ".", "Directory containing the .env file")
}
