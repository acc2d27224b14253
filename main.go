// ffclip/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"ffclip/api"
	"ffclip/config"
	"ffclip/engine"
	"ffclip/ffmpeg"
	"ffclip/logging"
	"ffclip/task"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:          "ffclip",
		Short:        "Media clipping service: extract, concatenate and partition video files",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configFile)
		},
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "path to a YAML config file")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and task scheduler (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configFile)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "probe <file>",
		Short: "Print the metadata of a media file as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProbe(cmd, configFile, args[0])
		},
	})
	return root
}

func runServe(parent context.Context, configFile string) error {
	// 1. Load configuration
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := logging.New(cfg)

	// 2. Initialize dependencies (backend first)
	runner, err := ffmpeg.NewRunner(cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to initialize ffmpeg runner")
		return err
	}
	eng := engine.New(cfg, runner, logger)

	// 3. Initialize task manager and inject the engine
	taskManager, err := task.NewManager(cfg, eng, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to initialize task manager")
		return err
	}

	// 4. Set up router and server
	if logger.GetLevel() > zerolog.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.SetupRouter(taskManager, eng, eng, cfg, logger)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.WithCORS(router, cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 5. Start background services and HTTP server
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	taskManager.Start(ctx)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()
	if ok, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		logger.Warn().Err(err).Msg("systemd readiness notification failed")
	} else if ok {
		logger.Debug().Msg("notified systemd of readiness")
	}

	// 6. Wait for interrupt signal for graceful shutdown
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		logger.Error().Err(err).Msg("listen failed")
		return err
	}

	// Restore default behavior on the interrupt signal and notify user of shutdown.
	stop()
	logger.Info().Msg("shutting down gracefully, press Ctrl+C again to force")
	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)

	// Open event streams never finish on their own, so the grace period ends
	// with a hard close.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("server forced to shutdown")
		_ = srv.Close()
	}

	logger.Info().Msg("server exiting")
	return nil
}

func runProbe(cmd *cobra.Command, configFile, path string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := logging.New(cfg)

	runner, err := ffmpeg.NewRunner(cfg, logger)
	if err != nil {
		return err
	}
	meta, err := engine.New(cfg, runner, logger).Probe(cmd.Context(), path)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}
