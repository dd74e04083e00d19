package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/orbitdrive/orbitdrive/internal/app"
	"github.com/orbitdrive/orbitdrive/internal/config"
	"github.com/orbitdrive/orbitdrive/internal/db"
	"github.com/orbitdrive/orbitdrive/internal/logger"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp loads config and wires the full application. The caller must
// defer a.Close().
func newApp() (*app.App, error) {
	cfg := config.Load()
	logger.Init(cfg.IsDevelopment(), cfg.SentryDSN)

	a, err := app.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

var rootCmd = &cobra.Command{
	Use:   "drivectl",
	Short: "Operational tooling for the file storage service",
}

// migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()

		database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer db.Close(database)

		if err := db.RunMigrations(database.DB, cfg.DBDriver); err != nil {
			return fmt.Errorf("applying migrations: %w", err)
		}

		fmt.Println("Migrations applied")
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()

		database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer db.Close(database)

		if err := db.MigrateDown(database.DB, cfg.DBDriver); err != nil {
			return fmt.Errorf("rolling back migration: %w", err)
		}

		fmt.Println("Migration rolled back")
		return nil
	},
}

// sweep-orphans command
var sweepOrphansCmd = &cobra.Command{
	Use:   "sweep-orphans",
	Short: "Remove stored objects no version row references",
	RunE: func(cmd *cobra.Command, args []string) error {
		timeout, _ := cmd.Flags().GetDuration("timeout")

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		count, err := a.SweepService.SweepOrphans(ctx)
		if err != nil {
			return fmt.Errorf("sweeping orphans: %w", err)
		}

		fmt.Printf("Removed %d orphaned object(s)\n", count)
		return nil
	},
}

// recalc-quota command
var recalcQuotaCmd = &cobra.Command{
	Use:   "recalc-quota OWNER_ID",
	Short: "Rebuild an owner's usage counters from the files table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		quota, err := a.QuotaService.Recalculate(args[0])
		if err != nil {
			return fmt.Errorf("recalculating quota: %w", err)
		}

		fmt.Printf("Owner:      %s\n", quota.OwnerID)
		fmt.Printf("Used:       %d bytes (%.1f%%)\n", quota.UsedBytes, quota.PercentUsed())
		fmt.Printf("Files:      %d\n", quota.FileCount)
		fmt.Printf("Quota:      %d bytes\n", quota.QuotaBytes)
		return nil
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(sweepOrphansCmd)
	sweepOrphansCmd.Flags().DurationP("timeout", "t", 10*time.Minute, "Abort the sweep after this long")
	rootCmd.AddCommand(recalcQuotaCmd)
}
