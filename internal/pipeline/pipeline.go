// Package pipeline sequences the consolidation run: dengue file parsing,
// climate aggregation and merge, and export to the configured outputs.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/MHBws/dengue-climate-etl/internal/adapter/csvio"
	"github.com/MHBws/dengue-climate-etl/internal/adapter/xlsx"
	"github.com/MHBws/dengue-climate-etl/internal/climate"
	"github.com/MHBws/dengue-climate-etl/internal/config"
	"github.com/MHBws/dengue-climate-etl/internal/dengue"
	"github.com/MHBws/dengue-climate-etl/internal/domain"
	"github.com/MHBws/dengue-climate-etl/internal/observability"
	"github.com/MHBws/dengue-climate-etl/internal/schema"
)

// RecordSink receives the final consolidated snapshot.
type RecordSink interface {
	PublishBatch(ctx context.Context, records []*domain.ConsolidatedRecord) error
}

// Pipeline orchestrates one consolidation run.
type Pipeline struct {
	cfg     *config.Config
	parser  *dengue.Parser
	store   *dengue.Store
	logger  *slog.Logger
	metrics *observability.Metrics
	sinks   []RecordSink
	ready   atomic.Bool
}

// New creates a Pipeline. Sinks are optional extra destinations for the
// consolidated snapshot, on top of the CSV and XLSX artifacts.
func New(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics, sinks ...RecordSink) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		parser:  dengue.NewParser(logger),
		store:   dengue.NewStore(),
		logger:  logger,
		metrics: metrics,
		sinks:   sinks,
	}
}

// CheckReadiness returns nil once the run has exported its first snapshot.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no consolidated output yet")
	}
	return nil
}

// Run executes the full consolidation: dengue files, climate aggregation,
// climate merge, then export. Per-file problems never abort the run; only
// environment-level failures (unlistable input directory, unwritable output)
// return an error.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	var summary Summary

	if err := p.consolidateDengue(ctx, &summary); err != nil {
		return summary, err
	}
	if err := p.aggregateClimate(ctx); err != nil {
		return summary, err
	}
	summary.Merged = p.mergeClimate()

	exported, err := p.export(ctx)
	if err != nil {
		return summary, err
	}
	summary.Exported = exported
	p.ready.Store(true)

	p.logRunStatistics(summary)
	return summary, nil
}

// RunClimateOnly runs just the climate aggregation waves, producing the
// intermediate file without touching dengue data.
func (p *Pipeline) RunClimateOnly(ctx context.Context) ([]climate.Aggregate, error) {
	paths, err := listClimateFiles(p.cfg.ClimateDir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		p.logger.Warn("no climate station files found", "dir", p.cfg.ClimateDir)
		return nil, nil
	}

	w := climate.NewIntermediateWriter(p.cfg.IntermediatePath)
	agg := climate.NewAggregator(p.cfg.Workers, p.logger, p.metrics)
	return agg.Run(ctx, paths, w)
}

func (p *Pipeline) consolidateDengue(ctx context.Context, summary *Summary) error {
	files, err := listDengueFiles(p.cfg.DengueDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		p.logger.Warn("no dengue files found", "dir", p.cfg.DengueDir)
		return nil
	}

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		outcome := p.consolidateFile(path)
		summary.Add(outcome)

		switch outcome.Kind {
		case OutcomeOK:
			p.metrics.FilesProcessed.Inc()
			p.metrics.ObservationsApplied.Add(float64(outcome.Observations))
		case OutcomeSkipped:
			p.metrics.FilesSkipped.Inc()
			p.logger.Warn("file skipped", "file", outcome.File, "reason", outcome.Reason)
		case OutcomeFailed:
			p.metrics.FileFailures.Inc()
			p.logger.Error("file failed", "file", outcome.File, "error", outcome.Err)
		}
	}
	return nil
}

// consolidateFile parses one source file and applies its observations.
// The error taxonomy: a missing data section skips the file, a read error
// or a missing year fails it, and either way the batch continues.
func (p *Pipeline) consolidateFile(path string) Outcome {
	start := time.Now()
	observations, err := p.parser.Parse(path)
	p.metrics.ParseDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		if errors.Is(err, schema.ErrNoDataStart) {
			return Outcome{File: path, Kind: OutcomeSkipped, Reason: "no data section"}
		}
		return Outcome{File: path, Kind: OutcomeFailed, Err: err}
	}
	if len(observations) == 0 {
		return Outcome{File: path, Kind: OutcomeSkipped, Reason: "no canonical rows"}
	}

	for _, obs := range observations {
		p.store.Apply(obs)
	}
	return Outcome{File: path, Kind: OutcomeOK, Observations: len(observations)}
}

func (p *Pipeline) aggregateClimate(ctx context.Context) error {
	if p.cfg.ClimateDir == "" {
		return nil
	}
	if _, err := os.Stat(p.cfg.ClimateDir); errors.Is(err, fs.ErrNotExist) {
		p.logger.Warn("climate directory missing, skipping aggregation", "dir", p.cfg.ClimateDir)
		return nil
	}
	_, err := p.RunClimateOnly(ctx)
	return err
}

// mergeClimate loads the intermediate file and merges its rows into the
// store. A missing or unusable file skips the merge with a logged reason.
func (p *Pipeline) mergeClimate() int {
	rows, err := readClimateRows(p.cfg.IntermediatePath)
	if err != nil {
		p.logger.Warn("climate merge skipped", "file", p.cfg.IntermediatePath, "reason", err)
		return 0
	}
	return p.store.MergeClimate(rows)
}

func (p *Pipeline) export(ctx context.Context) (int, error) {
	snapshot := p.store.Snapshot()

	if err := csvio.WriteConsolidated(p.cfg.OutputCSV, snapshot); err != nil {
		return 0, err
	}
	p.metrics.RecordsExported.Add(float64(len(snapshot)))
	p.logger.Info("consolidated csv written", "file", p.cfg.OutputCSV, "records", len(snapshot))

	refs := make([]*domain.ConsolidatedRecord, len(snapshot))
	for i := range snapshot {
		refs[i] = &snapshot[i]
	}

	if p.cfg.OutputXLSX != "" {
		if err := xlsx.Export(p.cfg.OutputXLSX, refs); err != nil {
			return 0, err
		}
		p.logger.Info("consolidated xlsx written", "file", p.cfg.OutputXLSX)
	}

	for _, sink := range p.sinks {
		if err := sink.PublishBatch(ctx, refs); err != nil {
			return 0, fmt.Errorf("sink publish: %w", err)
		}
	}

	return len(snapshot), nil
}

// logRunStatistics mirrors the console statistics of the legacy pipeline:
// totals plus the distinct years and regions covered.
func (p *Pipeline) logRunStatistics(summary Summary) {
	snapshot := p.store.Snapshot()

	var cases, deaths int
	years := make(map[int]struct{})
	regions := make(map[string]struct{})
	for _, rec := range snapshot {
		cases += rec.Cases
		deaths += rec.Deaths
		years[rec.Year] = struct{}{}
		regions[rec.Region] = struct{}{}
	}

	p.logger.Info("run complete",
		"summary", summary.String(),
		"records", len(snapshot),
		"total_cases", cases,
		"total_deaths", deaths,
		"distinct_years", len(years),
		"distinct_regions", len(regions),
	)
}

// listDengueFiles returns the .csv files directly under dir, sorted.
func listDengueFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list dengue dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// listClimateFiles walks dir recursively: station files commonly sit in
// per-year subdirectories.
func listClimateFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".csv") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list climate dir: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

// climateColumns are the resolved indexes of the intermediate file header.
type climateColumns struct {
	year          int
	month         int
	region        int
	temperature   int
	precipitation int
}

// climateHeaderRules map lowercase header substrings to each column, in
// evaluation order. English names first (this pipeline's own output), then
// the legacy Portuguese synonyms.
var climateHeaderRules = []struct {
	assign   func(*climateColumns, int)
	patterns []string
}{
	{func(c *climateColumns, i int) { c.year = i }, []string{"year", "ano"}},
	{func(c *climateColumns, i int) { c.month = i }, []string{"month", "mês", "mes"}},
	{func(c *climateColumns, i int) { c.region = i }, []string{"region", "uf", "estado"}},
	{func(c *climateColumns, i int) { c.temperature = i }, []string{"temperatura", "temp"}},
	{func(c *climateColumns, i int) { c.precipitation = i }, []string{"precipita", "chuva"}},
}

func resolveClimateColumns(header []string) (climateColumns, error) {
	cols := climateColumns{year: -1, month: -1, region: -1, temperature: -1, precipitation: -1}
	for _, rule := range climateHeaderRules {
	patterns:
		for _, pattern := range rule.patterns {
			for i, cell := range header {
				if strings.Contains(strings.ToLower(strings.TrimSpace(cell)), pattern) {
					rule.assign(&cols, i)
					break patterns
				}
			}
		}
	}
	if cols.year < 0 || cols.month < 0 || cols.region < 0 ||
		cols.temperature < 0 || cols.precipitation < 0 {
		return cols, errors.New("intermediate header missing a required column")
	}
	return cols, nil
}

// readClimateRows parses the intermediate file into merge-ready rows.
// Rows with an unparseable year, a non-canonical month, or a region that
// normalizes to nothing are dropped.
func readClimateRows(path string) ([]dengue.ClimateRow, error) {
	lines, err := csvio.ReadLines(path)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, errors.New("intermediate file is empty")
	}

	header, err := csvio.ParseRecord(lines[0])
	if err != nil {
		return nil, err
	}
	cols, err := resolveClimateColumns(header)
	if err != nil {
		return nil, err
	}

	var rows []dengue.ClimateRow
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields, err := csvio.ParseRecord(line)
		if err != nil || cols.year >= len(fields) || cols.month >= len(fields) ||
			cols.region >= len(fields) || cols.temperature >= len(fields) || cols.precipitation >= len(fields) {
			continue
		}

		year, err := strconv.Atoi(strings.TrimSpace(fields[cols.year]))
		if err != nil {
			continue
		}
		month := domain.NormalizeMonth(fields[cols.month])
		if !month.Valid() {
			continue
		}
		region, result := domain.NormalizeRegion(fields[cols.region])
		if result != domain.RegionCanonical {
			continue
		}

		rows = append(rows, dengue.ClimateRow{
			Year:           year,
			Month:          month,
			Region:         region,
			AvgTemperature: domain.CleanTemperature(fields[cols.temperature]),
			Precipitation:  domain.CleanDecimal(fields[cols.precipitation]),
		})
	}
	return rows, nil
}
