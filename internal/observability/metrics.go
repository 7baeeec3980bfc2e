package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for one
// consolidation run. They mirror the numbers the pipeline also returns in
// its summary; the summary is the source of truth, metrics are for scraping.
type Metrics struct {
	FilesProcessed      prometheus.Counter
	FilesSkipped        prometheus.Counter
	FileFailures        prometheus.Counter
	ObservationsApplied prometheus.Counter
	RecordsExported     prometheus.Counter
	PipelineRunning     prometheus.Gauge

	ParseDuration prometheus.Histogram

	// Climate wave metrics.
	ClimateStationsRead      prometheus.Counter
	ClimateStationFailures   prometheus.Counter
	ClimateAggregatesWritten prometheus.Counter
	ClimateWriteFailures     prometheus.Counter
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.FilesProcessed,
		m.FilesSkipped,
		m.FileFailures,
		m.ObservationsApplied,
		m.RecordsExported,
		m.PipelineRunning,
		m.ParseDuration,
		m.ClimateStationsRead,
		m.ClimateStationFailures,
		m.ClimateAggregatesWritten,
		m.ClimateWriteFailures,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FilesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dengue_etl",
			Name:      "files_processed_total",
			Help:      "Source files fully parsed and consolidated.",
		}),
		FilesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dengue_etl",
			Name:      "files_skipped_total",
			Help:      "Source files skipped with a logged reason.",
		}),
		FileFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dengue_etl",
			Name:      "file_failures_total",
			Help:      "Source files that failed fatally.",
		}),
		ObservationsApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dengue_etl",
			Name:      "observations_applied_total",
			Help:      "Raw observations merged into the consolidation store.",
		}),
		RecordsExported: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dengue_etl",
			Name:      "records_exported_total",
			Help:      "Consolidated records written to the output sinks.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "dengue_etl",
			Name:      "pipeline_running",
			Help:      "1 while a consolidation run is active.",
		}),
		ParseDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dengue_etl",
			Name:      "parse_duration_seconds",
			Help:      "Duration of one source file parse.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		ClimateStationsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dengue_etl",
			Name:      "climate_stations_read_total",
			Help:      "Station files read in the climate read wave.",
		}),
		ClimateStationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dengue_etl",
			Name:      "climate_station_failures_total",
			Help:      "Station files skipped during the read wave.",
		}),
		ClimateAggregatesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dengue_etl",
			Name:      "climate_aggregates_written_total",
			Help:      "Monthly aggregates appended to the intermediate file.",
		}),
		ClimateWriteFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dengue_etl",
			Name:      "climate_write_failures_total",
			Help:      "Aggregate writes lost to intermediate file errors.",
		}),
	}
}
