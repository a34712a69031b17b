package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"kiosk-sync/core/config"
	"kiosk-sync/core/database"
	"kiosk-sync/core/logger"
	"kiosk-sync/core/remote"
	"kiosk-sync/feature/sync"
	"kiosk-sync/feature/sync/models"

	"github.com/spf13/cobra"
)

var runsLimit int

// runsCmd lists recent sync run audit rows.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent sync run log entries",
	RunE:  runRuns,
}

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "Maximum number of runs to list")
	RootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = l.Sync() }()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := models.Migrate(db); err != nil {
		return fmt.Errorf("failed to migrate tables: %w", err)
	}

	service := sync.NewService(db, remote.NewClient(cfg.Remote), l, cfg.Sync.DocumentCategory)
	runs, err := service.RecentRuns(ctx, runsLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(runs)
}
