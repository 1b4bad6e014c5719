package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/dupscan/internal/config"
	"github.com/kailas-cloud/dupscan/internal/domain"
	domdoc "github.com/kailas-cloud/dupscan/internal/domain/document"
	"github.com/kailas-cloud/dupscan/internal/metrics"
	"github.com/kailas-cloud/dupscan/internal/report"
	"github.com/kailas-cloud/dupscan/internal/usecase/detection"
	reportuc "github.com/kailas-cloud/dupscan/internal/usecase/report"
	"github.com/kailas-cloud/dupscan/internal/version"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Compare every document pair once and write the report",
	Long: `Loads the configured collection, scores every unordered document pair,
keeps pairs at or above the threshold and writes them ranked by score.

Flags override the corresponding config values. SIGINT/SIGTERM stops handing
out new comparisons; the run then fails without writing a report.`,
	Args: cobra.NoArgs,
	RunE: runDetectionCmd,
}

var (
	runThreshold float64
	runWorkers   int
	runTextField string
	runOut       string
	runFormat    string
	runAutoJunk  bool
	runNoWrite   bool
)

func init() {
	runCmd.Flags().Float64VarP(&runThreshold, "threshold", "t", config.DefaultThreshold, "Minimum similarity percentage to report (inclusive)")
	runCmd.Flags().IntVarP(&runWorkers, "workers", "w", config.DefaultWorkers, "Concurrent comparison tasks")
	runCmd.Flags().StringVar(&runTextField, "text-field", string(domdoc.Raw), "Text to compare: raw or normalized")
	runCmd.Flags().StringVarP(&runOut, "out", "o", "", "Report path; extension selects xlsx, csv or json")
	runCmd.Flags().StringVar(&runFormat, "format", "", "Report format, overrides the extension")
	runCmd.Flags().BoolVar(&runAutoJunk, "autojunk", false, "Ignore very frequent characters when seeding matches")
	runCmd.Flags().BoolVar(&runNoWrite, "no-write", false, "Compute and print the summary without writing a report")

	rootCmd.AddCommand(runCmd)
}

// applyRunFlags overrides config values with explicitly set flags.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("threshold") {
		t := runThreshold
		cfg.Detection.Threshold = &t
	}
	if flags.Changed("workers") {
		cfg.Detection.Workers = runWorkers
	}
	if flags.Changed("text-field") {
		cfg.Detection.TextField = runTextField
	}
	if flags.Changed("autojunk") {
		cfg.Detection.AutoJunk = runAutoJunk
	}
	if flags.Changed("out") {
		cfg.Report.Path = runOut
	}
	if flags.Changed("format") {
		cfg.Report.Format = runFormat
	}
}

func runDetectionCmd(cmd *cobra.Command, _ []string) error {
	cfg, env, err := loadConfig()
	if err != nil {
		return err
	}
	applyRunFlags(cmd, &cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	opts, err := runOptions(cfg.Detection)
	if err != nil {
		return err
	}
	opts.Write = !runNoWrite

	logger, err := newLogger(env, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting dupscan run",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.String("store_driver", cfg.Store.Driver),
		zap.String("collection", cfg.Store.Collection),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.RegisterComparisonMetrics()

	source, closeSource, err := openSource(ctx, cfg.Store, logger)
	if err != nil {
		return fmt.Errorf("fetch documents: %w: %w", domain.ErrStoreUnavailable, err)
	}
	defer closeSource()

	writer, err := report.New(cfg.Report.Format, cfg.Report.Path, cfg.Report.Sheet)
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	svc := detection.New(source, reportuc.NewExporter(writer, logger), cfg.Store.Collection, logger).
		WithProgressInterval(time.Duration(cfg.Detection.ProgressIntervalSec) * time.Second)

	res, runErr := svc.Run(ctx, opts)
	pushMetrics(cfg.Metrics, logger)

	if runErr == nil || detection.IsWriterFailure(runErr) {
		printSummary(cmd, &res, writer.Path())
	}
	return runErr
}

func printSummary(cmd *cobra.Command, res *detection.Result, path string) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Run: %s\n", res.RunID)
	fmt.Fprintf(w, "Documents: %d (excluded %d)\n", res.Documents, res.Excluded)
	fmt.Fprintf(w, "Pairs compared: %d\n", res.Pairs)
	fmt.Fprintf(w, "Matches: %d\n", len(res.Matches))
	if len(res.Failures) > 0 {
		fmt.Fprintf(w, "Failed tasks: %d\n", len(res.Failures))
	}
	if res.Written {
		fmt.Fprintf(w, "Report: %s\n", path)
	}
}

// pushMetrics is best effort: a run that finished is not failed by a
// missing Pushgateway.
func pushMetrics(cfg config.MetricsConfig, logger *zap.Logger) {
	if cfg.PushgatewayURL == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := metrics.Push(ctx, cfg.PushgatewayURL, cfg.Job); err != nil {
		logger.Warn("Failed to push metrics", zap.Error(err))
	}
}
