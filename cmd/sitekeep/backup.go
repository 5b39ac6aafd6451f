package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alfredjeanlab/sitekeep/internal/backup"
	"github.com/alfredjeanlab/sitekeep/internal/config"
	"github.com/alfredjeanlab/sitekeep/internal/store/postgres"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var backupCmd = &cobra.Command{
	Use:     "backup",
	Short:   "Export, push and restore JSONL backups",
	GroupID: "system",
}

// backupDestinations builds the destinations configured in the environment.
// A destination that cannot be created is logged and left out.
func backupDestinations(ctx context.Context, cfg *config.Config, logger *zap.Logger) []backup.Destination {
	var dests []backup.Destination
	if cfg.BackupS3Bucket != "" {
		s3Dest, err := backup.NewS3Destination(ctx,
			cfg.BackupS3Bucket, cfg.BackupS3Key, cfg.BackupS3Region, cfg.BackupS3Endpoint)
		if err != nil {
			logger.Error("failed to create S3 backup destination", zap.Error(err))
		} else {
			dests = append(dests, s3Dest)
			logger.Info("backup S3 destination enabled",
				zap.String("bucket", cfg.BackupS3Bucket), zap.String("key", cfg.BackupS3Key))
		}
	}
	if cfg.BackupGitRepo != "" {
		dests = append(dests, backup.NewGitDestination(cfg.BackupGitRepo, cfg.BackupGitFile, cfg.BackupGitBranch))
		logger.Info("backup git destination enabled",
			zap.String("repo", cfg.BackupGitRepo), zap.String("file", cfg.BackupGitFile))
	}
	return dests
}

func openStore() (*postgres.PostgresStore, error) {
	if err := cfg.RequireDatabase(); err != nil {
		return nil, err
	}
	s, err := postgres.New(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	closers = append(closers, s.Close)
	return s, nil
}

var backupExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a JSONL export of the database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}

		var w io.Writer = os.Stdout
		if path, _ := cmd.Flags().GetString("output"); path != "" && path != "-" {
			f, err := os.Create(path)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		return backup.ExportJSONL(context.Background(), st, w)
	},
}

var backupPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Export once to every configured destination",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		ctx := context.Background()

		dests := backupDestinations(ctx, cfg, logger)
		if path, _ := cmd.Flags().GetString("file"); path != "" {
			dests = append(dests, backup.NewFileDestination(path))
		}
		if len(dests) == 0 {
			return fmt.Errorf("no backup destination configured (set SITEKEEP_BACKUP_S3_BUCKET, SITEKEEP_BACKUP_GIT_REPO or --file)")
		}

		if err := backup.NewScheduler(st, dests, 0, logger).RunOnce(ctx); err != nil {
			return err
		}
		for _, d := range dests {
			fmt.Printf("Pushed to %s\n", d)
		}
		return nil
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore <file>",
	Short: "Upsert every record of a JSONL export into the database",
	Long: `Upsert every record of a JSONL export into the database in a single
transaction. Records not present in the export are left untouched. Use "-"
to read from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}

		var r io.Reader = os.Stdin
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			r = f
		}

		stats, err := backup.ImportJSONL(context.Background(), st, r)
		if err != nil {
			return fmt.Errorf("restoring %s: %w", args[0], err)
		}
		if jsonOutput {
			return printJSON(os.Stdout, stats)
		}
		fmt.Printf("Restored %d settings, %d pages, %d posts\n", stats.Settings, stats.Content, stats.Posts)
		return nil
	},
}

func init() {
	backupExportCmd.Flags().StringP("output", "o", "-", "file to write (\"-\" for stdout)")
	backupPushCmd.Flags().String("file", "", "also write the export to this local file")

	backupCmd.AddCommand(backupExportCmd)
	backupCmd.AddCommand(backupPushCmd)
	backupCmd.AddCommand(backupRestoreCmd)
}
