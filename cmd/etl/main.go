package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	httpadapter "github.com/MHBws/dengue-climate-etl/internal/adapter/http"
	kafkaadapter "github.com/MHBws/dengue-climate-etl/internal/adapter/kafka"
	"github.com/MHBws/dengue-climate-etl/internal/adapter/sqlite"
	"github.com/MHBws/dengue-climate-etl/internal/config"
	"github.com/MHBws/dengue-climate-etl/internal/observability"
	"github.com/MHBws/dengue-climate-etl/internal/pipeline"
)

var (
	flagDengueDir    string
	flagClimateDir   string
	flagOutputCSV    string
	flagOutputXLSX   string
	flagIntermediate string
	flagWorkers      int
)

var rootCmd = &cobra.Command{
	Use:   "etl",
	Short: "Consolidates dengue case/death releases and weather-station data",
	Long: `etl merges semi-structured DATASUS dengue exports and INMET station
files into one record set keyed by year, month, and state, exported as
semicolon-delimited CSV and optional XLSX, SQLite, and Kafka outputs.`,
	SilenceUsage: true,
}

var consolidateCmd = &cobra.Command{
	Use:   "consolidate",
	Short: "Run the full consolidation: dengue files, climate merge, export",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runConsolidate(cmd.Context())
	},
}

var climateCmd = &cobra.Command{
	Use:   "climate",
	Short: "Aggregate station files into the climate intermediate file only",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runClimate(cmd.Context())
	},
}

func init() {
	for _, cmd := range []*cobra.Command{consolidateCmd, climateCmd} {
		cmd.Flags().StringVar(&flagDengueDir, "dengue-dir", "", "directory of dengue case/death CSV files")
		cmd.Flags().StringVar(&flagClimateDir, "climate-dir", "", "directory of weather-station CSV files")
		cmd.Flags().StringVar(&flagOutputCSV, "output", "", "consolidated CSV output path")
		cmd.Flags().StringVar(&flagOutputXLSX, "xlsx", "", "consolidated XLSX output path")
		cmd.Flags().StringVar(&flagIntermediate, "intermediate", "", "climate intermediate file path")
		cmd.Flags().IntVar(&flagWorkers, "workers", 0, "climate worker-pool size")
	}
	rootCmd.AddCommand(consolidateCmd, climateCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the environment config and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flagDengueDir != "" {
		cfg.DengueDir = flagDengueDir
	}
	if flagClimateDir != "" {
		cfg.ClimateDir = flagClimateDir
	}
	if flagOutputCSV != "" {
		cfg.OutputCSV = flagOutputCSV
	}
	if flagOutputXLSX != "" {
		cfg.OutputXLSX = flagOutputXLSX
	}
	if flagIntermediate != "" {
		cfg.IntermediatePath = flagIntermediate
	}
	if flagWorkers > 0 {
		cfg.Workers = flagWorkers
	}
	return cfg, nil
}

func runConsolidate(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return err
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	var sinks []pipeline.RecordSink

	if cfg.SQLitePath != "" {
		sink, err := sqlite.Open(cfg.SQLitePath, logger)
		if err != nil {
			logger.Error("sqlite sink open failed", "error", err)
			return err
		}
		defer sink.Close()
		sinks = append(sinks, sink)
		logger.Info("sqlite sink enabled", "path", cfg.SQLitePath)
	}

	if cfg.KafkaEnabled {
		publisher := kafkaadapter.NewPublisher(cfg, logger)
		defer publisher.Close()
		sinks = append(sinks, publisher)
		logger.Info("kafka publishing enabled", "topic", cfg.KafkaTopic)
	}

	p := pipeline.New(cfg, logger, metrics, sinks...)

	shutdownSrv := startMetricsServer(cfg, p, logger)
	defer shutdownSrv()

	summary, err := p.Run(ctx)
	if err != nil {
		logger.Error("consolidation failed", "error", err, "summary", summary.String())
		return err
	}
	return nil
}

func runClimate(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return err
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	p := pipeline.New(cfg, logger, metrics)
	aggregates, err := p.RunClimateOnly(ctx)
	if err != nil {
		logger.Error("climate aggregation failed", "error", err)
		return err
	}
	logger.Info("climate aggregation complete",
		"aggregates", len(aggregates), "file", cfg.IntermediatePath)
	return nil
}

// startMetricsServer starts the health/metrics HTTP surface when configured.
// Returns a shutdown function; a no-op when METRICS_ADDR is unset.
func startMetricsServer(cfg *config.Config, ready httpadapter.ReadinessChecker, logger *slog.Logger) func() {
	if cfg.MetricsAddr == "" {
		return func() {}
	}

	srv := httpadapter.NewServer(cfg.MetricsAddr, ready, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
	}
}
