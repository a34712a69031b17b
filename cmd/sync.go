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

var syncUser string

// syncCmd runs one reconciliation stage or the whole pipeline.
var syncCmd = &cobra.Command{
	Use:   "sync [plants|lines|stations|documents|all]",
	Short: "Reconcile local mirror tables against the remote MES API",
	Long: `Reconcile the kiosk's local tables against the remote system.

Stages run in dependency order (plants, lines, stations, documents); each
stage requires its parent stage to have resolved remote identifiers first.
The full result, including per-record errors, is printed as JSON and one
sync_runs audit row is recorded per invocation.

Examples:
  # Full pipeline
  kiosk-sync sync all

  # One stage, attributed to an operator
  kiosk-sync sync stations --user jdoe`,
	Args: cobra.ExactArgs(1),
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringVar(&syncUser, "user", "", "User to attribute the run to in the audit log")
	RootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
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

	client := remote.NewClient(cfg.Remote)
	service := sync.NewService(db, client, l, cfg.Sync.DocumentCategory)

	result, err := service.Run(ctx, args[0], syncUser)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}
