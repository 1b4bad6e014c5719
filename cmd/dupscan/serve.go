package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/dupscan/internal/metrics"
	"github.com/kailas-cloud/dupscan/internal/report"
	chiTransport "github.com/kailas-cloud/dupscan/internal/transport/chi"
	"github.com/kailas-cloud/dupscan/internal/usecase/detection"
	healthuc "github.com/kailas-cloud/dupscan/internal/usecase/health"
	reportuc "github.com/kailas-cloud/dupscan/internal/usecase/report"
	"github.com/kailas-cloud/dupscan/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve health, metrics and on-demand runs over HTTP",
	Args:  cobra.NoArgs,
	RunE:  serveCmdRun,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serveCmdRun(cmd *cobra.Command, _ []string) error {
	cfg, env, err := loadConfig()
	if err != nil {
		return err
	}

	opts, err := runOptions(cfg.Detection)
	if err != nil {
		return err
	}

	logger, err := newLogger(env, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting dupscan server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("store_driver", cfg.Store.Driver),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Register comparison metrics explicitly (no init())
	metrics.RegisterComparisonMetrics()

	source, closeSource, err := openSource(ctx, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer closeSource()

	writer, err := report.New(cfg.Report.Format, cfg.Report.Path, cfg.Report.Sheet)
	if err != nil {
		return err
	}

	svc := detection.New(source, reportuc.NewExporter(writer, logger), cfg.Store.Collection, logger).
		WithProgressInterval(time.Duration(cfg.Detection.ProgressIntervalSec) * time.Second)

	healthSvc := healthuc.New(source).
		WithCheck("report_dir", healthuc.PingFunc(func(context.Context) error {
			return dirWritable(filepath.Dir(writer.Path()))
		}))

	server := chiTransport.NewServer(svc, healthSvc, opts, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Router(cfg.HTTP.APIKeys),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}

// dirWritable reports whether a report could be created in dir.
func dirWritable(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".dupscan-health-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}
