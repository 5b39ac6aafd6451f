package main

import (
	"fmt"
	"os"

	"github.com/alfredjeanlab/sitekeep/internal/client"
	"github.com/alfredjeanlab/sitekeep/internal/config"
	"github.com/alfredjeanlab/sitekeep/internal/localcache"
	"github.com/alfredjeanlab/sitekeep/internal/logging"
	"github.com/alfredjeanlab/sitekeep/internal/store/postgres"
	"github.com/alfredjeanlab/sitekeep/internal/ui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	envFile    string
	jsonOutput bool
	direct     bool
	noColor    bool
	logFormat  string

	cfg    *config.Config
	logger *zap.Logger

	remote  client.Gateway
	cache   localcache.Cache
	closers []func() error
)

var rootCmd = &cobra.Command{
	Use:           "sitekeep <command>",
	Short:         "Site content and settings store",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if noColor {
			ui.ForceNoColor()
		}
		if err := config.LoadEnvFile(envFile); err != nil {
			return err
		}
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = c

		l, err := logging.New(cfg.LogLevel, logging.Format(logFormat))
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil && logger != nil {
				logger.Warn("close failed", zap.Error(err))
			}
		}
		closers = nil
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// gateway returns the remote store, opening it on first use. With --direct
// the CLI talks to Postgres in-process instead of over HTTP.
func gateway() (client.Gateway, error) {
	if remote != nil {
		return remote, nil
	}
	if direct {
		if err := cfg.RequireDatabase(); err != nil {
			return nil, err
		}
		s, err := postgres.New(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		remote = client.NewStoreGateway(s)
	} else {
		remote = client.NewHTTPClient(cfg.RemoteURL, cfg.AuthToken, cfg.RemoteTimeout)
	}
	closers = append(closers, remote.Close)
	return remote, nil
}

// localCache returns the local cache, opening it on first use. Redis replaces
// the file cache when SITEKEEP_REDIS_URL is set.
func localCache() (localcache.Cache, error) {
	if cache != nil {
		return cache, nil
	}
	if cfg.RedisURL != "" {
		r, err := localcache.NewRedis(cfg.RedisURL, logger)
		if err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		closers = append(closers, r.Close)
		cache = r
		return cache, nil
	}
	f, err := localcache.OpenFile(cfg.CachePath, logger)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	cache = f
	return cache, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&direct, "direct", false, "talk to Postgres directly instead of the HTTP API")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", string(logging.FormatConsole), "log format (console or json)")

	rootCmd.AddGroup(
		&cobra.Group{ID: "content", Title: "Content:"},
		&cobra.Group{ID: "migration", Title: "Migration:"},
		&cobra.Group{ID: "system", Title: "System:"},
	)

	cobra.EnableCommandSorting = false
	rootCmd.SetHelpFunc(colorizedHelpFunc())

	// Content
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(settingCmd)
	rootCmd.AddCommand(contentCmd)
	rootCmd.AddCommand(postCmd)

	// Migration
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(cacheCmd)

	// System
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(watchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", ui.RenderFail("Error:"), err)
		os.Exit(1)
	}
}
