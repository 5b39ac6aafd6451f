package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alfredjeanlab/sitekeep/internal/backup"
	"github.com/alfredjeanlab/sitekeep/internal/config"
	"github.com/alfredjeanlab/sitekeep/internal/events"
	"github.com/alfredjeanlab/sitekeep/internal/server"
	"github.com/alfredjeanlab/sitekeep/internal/store"
	"github.com/alfredjeanlab/sitekeep/internal/store/memstore"
	"github.com/alfredjeanlab/sitekeep/internal/store/postgres"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "Start the sitekeep HTTP API",
	GroupID: "system",
	RunE: func(cmd *cobra.Command, args []string) error {
		inMemory, _ := cmd.Flags().GetBool("in-memory")

		var st store.Store
		if inMemory {
			st = memstore.New()
			logger.Warn("using in-memory store, data is lost on exit")
		} else {
			if err := cfg.RequireDatabase(); err != nil {
				return err
			}
			pg, err := postgres.New(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			st = pg
		}

		var publisher events.Publisher
		if cfg.NATSURL != "" {
			pub, err := events.NewNATSPublisher(cfg.NATSURL)
			if err != nil {
				st.Close()
				return err
			}
			publisher = pub
			logger.Info("events enabled", zap.String("nats_url", cfg.NATSURL))
		} else {
			publisher = &events.NoopPublisher{}
			logger.Info("events disabled (SITEKEEP_NATS_URL not set)")
		}

		contentServer := server.NewContentServer(st, publisher, logger)
		httpServer := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           contentServer.NewHTTPHandler(cfg.AuthToken),
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			logger.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("HTTP server error", zap.Error(err))
			}
		}()

		scheduler := startBackups(cfg, st, logger)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received signal, shutting down", zap.Stringer("signal", sig))

		if scheduler != nil {
			scheduler.Stop()
			logger.Info("backup scheduler stopped")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", zap.Error(err))
		}
		logger.Info("HTTP server stopped")

		if err := publisher.Close(); err != nil {
			logger.Error("error closing publisher", zap.Error(err))
		}
		if err := st.Close(); err != nil {
			logger.Error("error closing store", zap.Error(err))
		}

		logger.Info("shutdown complete")
		return nil
	},
}

// startBackups starts a scheduler for every configured destination. It
// returns nil when backups are disabled or nothing is configured.
func startBackups(cfg *config.Config, st store.Store, logger *zap.Logger) *backup.Scheduler {
	if cfg.BackupInterval <= 0 {
		return nil
	}
	dests := backupDestinations(context.Background(), cfg, logger)
	if len(dests) == 0 {
		logger.Warn("backup interval set but no destination configured")
		return nil
	}

	scheduler := backup.NewScheduler(st, dests, cfg.BackupInterval, logger)
	scheduler.Start()
	logger.Info("backup scheduler started", zap.Duration("interval", cfg.BackupInterval))
	return scheduler
}

func init() {
	serveCmd.Flags().Bool("in-memory", false, "serve from an in-memory store instead of Postgres")
}
