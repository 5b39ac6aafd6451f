package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/alfredjeanlab/sitekeep/internal/migration"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:     "migrate",
	Short:   "Move legacy local-cache content into the remote store",
	GroupID: "migration",
}

func newEngine() (*migration.Engine, error) {
	gw, err := gateway()
	if err != nil {
		return nil, err
	}
	c, err := localCache()
	if err != nil {
		return nil, err
	}
	return migration.NewEngine(c, migration.DefaultMigrators(gw, c, logger), cfg.LeaseTTL, logger), nil
}

var migrateRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the one-time migration if it has not completed yet",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		report, err := engine.RunCompleteMigration(ctx)
		if errors.Is(err, migration.ErrMigrationInFlight) {
			return fmt.Errorf("%w; retry after %s", err, cfg.LeaseTTL)
		}
		if report != nil {
			if jsonOutput {
				if perr := printJSON(os.Stdout, toReportJSON(report)); perr != nil {
					return perr
				}
			} else {
				printReport(os.Stdout, report)
			}
		}
		if err != nil {
			return err
		}
		if strict, _ := cmd.Flags().GetBool("strict"); strict && len(report.Failed()) > 0 {
			return fmt.Errorf("%d migration steps failed", len(report.Failed()))
		}
		return nil
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether this cache has been migrated",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := localCache()
		if err != nil {
			return err
		}
		engine := migration.NewEngine(c, nil, cfg.LeaseTTL, logger)
		state, lease := engine.Status()
		if jsonOutput {
			out := map[string]any{"state": state}
			if lease != nil {
				out["lease"] = lease
			}
			return printJSON(os.Stdout, out)
		}
		printState(os.Stdout, state, lease)
		return nil
	},
}

var migrateResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the completion flag so the next run migrates again",
	Long: `Clear the completion flag and any lease.

Legacy keys removed by an earlier run are not restored, so a new run only
migrates keys written since then.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := localCache()
		if err != nil {
			return err
		}
		if err := migration.NewEngine(c, nil, cfg.LeaseTTL, logger).Reset(); err != nil {
			return err
		}
		fmt.Println("Migration state reset")
		return nil
	},
}

func init() {
	migrateRunCmd.Flags().Bool("strict", false, "exit non-zero when any step fails")

	migrateCmd.AddCommand(migrateRunCmd)
	migrateCmd.AddCommand(migrateStatusCmd)
	migrateCmd.AddCommand(migrateResetCmd)
}
