package cmd

import (
	"fmt"
	"os"

	"kiosk-sync/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "kiosk-sync",
	Short: "Shop-floor kiosk sync engine",
	Long: `kiosk-sync mirrors plants, lines, stations and documents from the
remote MES API into the kiosk's local database, and drives the remote
system's asynchronous bulk export workflow.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console format at debug level gives readable CLI error output
		// (ISO8601 timestamps instead of epoch)
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			// Absolute fallback if logger creation fails (rare)
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
