package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all pipeline settings, populated from environment variables.
type Config struct {
	// Input directories.
	DengueDir  string
	ClimateDir string

	// Output artifacts.
	OutputCSV        string
	OutputXLSX       string
	IntermediatePath string

	// SQLite sink; empty disables it.
	SQLitePath string

	// Kafka publishing, feature-flagged.
	KafkaBrokers []string
	KafkaTopic   string
	KafkaEnabled bool

	// Climate worker-pool size.
	Workers int

	// HTTP metrics/health surface; empty disables it.
	MetricsAddr string

	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	workers, err := parseWorkers()
	if err != nil {
		return nil, err
	}

	kafkaBrokers := parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092"))
	kafkaEnabled := false
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		DengueDir:        envOrDefault("DENGUE_DIR", "dados_dengue"),
		ClimateDir:       envOrDefault("CLIMATE_DIR", "dados_clima"),
		OutputCSV:        envOrDefault("OUTPUT_CSV", "dengue_consolidado.csv"),
		OutputXLSX:       os.Getenv("OUTPUT_XLSX"),
		IntermediatePath: envOrDefault("CLIMATE_INTERMEDIATE", "clima_consolidado.csv"),
		SQLitePath:       os.Getenv("SQLITE_PATH"),
		KafkaBrokers:     kafkaBrokers,
		KafkaTopic:       envOrDefault("KAFKA_TOPIC", "consolidated-dengue-records"),
		KafkaEnabled:     kafkaEnabled,
		Workers:          workers,
		MetricsAddr:      os.Getenv("METRICS_ADDR"),
		LogLevel:         envOrDefault("LOG_LEVEL", "info"),
		LogFormat:        envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:  shutdownTimeout,
	}

	if cfg.DengueDir == "" {
		return nil, errors.New("DENGUE_DIR is required")
	}
	if cfg.OutputCSV == "" {
		return nil, errors.New("OUTPUT_CSV is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_TOPIC is not set")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseWorkers() (int, error) {
	s := envOrDefault("WORKERS", "4")
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, errors.New("invalid WORKERS")
	}
	return n, nil
}
