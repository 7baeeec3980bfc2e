package climate

import (
	"context"
	"log/slog"
	"math"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/MHBws/dengue-climate-etl/internal/domain"
	"github.com/MHBws/dengue-climate-etl/internal/observability"
)

// sentinelMonth absorbs unparseable day labels; its bucket is discarded
// after grouping, never aggregated.
const sentinelMonth = 13

// fallbackYear is used when no plausible year appears anywhere in a path.
// Legacy behavior, kept and logged.
const fallbackYear = 2000

var fourDigitsRe = regexp.MustCompile(`^\d{4}$`)

// Aggregate is one finished (year, month, region) climate summary.
type Aggregate struct {
	Year               int
	Month              domain.Month
	Region             string
	TotalPrecipitation float64
	AvgTemperature     float64
}

// Aggregator runs the three-wave pipeline: read station files concurrently
// into a shared (year, region) grouping, aggregate each group independently,
// and write each finished aggregate to the intermediate file.
//
// The grouping map is the only state shared during the read wave; a single
// mutex makes the create-bucket-and-append step atomic. The aggregate wave
// shares nothing. The write wave serializes on the writer's own lock.
type Aggregator struct {
	workers int
	logger  *slog.Logger
	metrics *observability.Metrics

	mu     sync.Mutex
	groups map[int]map[string][]*StationData
}

// NewAggregator creates an Aggregator with the given worker-pool size.
func NewAggregator(workers int, logger *slog.Logger, metrics *observability.Metrics) *Aggregator {
	if workers < 1 {
		workers = 1
	}
	return &Aggregator{
		workers: workers,
		logger:  logger,
		metrics: metrics,
		groups:  make(map[int]map[string][]*StationData),
	}
}

// Run executes the three waves over the given station files. Waves do not
// overlap: all reads finish before aggregation, all aggregation before
// writing. A failing unit is logged and contributes nothing; it never aborts
// siblings. Returns the aggregates written.
func (a *Aggregator) Run(ctx context.Context, paths []string, w *IntermediateWriter) ([]Aggregate, error) {
	sort.Strings(paths)

	if err := a.readWave(ctx, paths); err != nil {
		return nil, err
	}
	aggregates, err := a.aggregateWave(ctx)
	if err != nil {
		return nil, err
	}
	if err := a.writeWave(ctx, aggregates, w); err != nil {
		return nil, err
	}
	return aggregates, nil
}

// readWave reads every station file through the worker pool, appending each
// parsed station to its (year, region) bucket under the lock.
func (a *Aggregator) readWave(ctx context.Context, paths []string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)

	for _, path := range paths {
		path := path
		g.Go(func() error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			year := YearFromPath(path)
			st, err := ReadStation(path)
			if err != nil {
				a.logger.Warn("skipping station file", "file", path, "error", err)
				a.metrics.ClimateStationFailures.Inc()
				return nil
			}
			a.metrics.ClimateStationsRead.Inc()

			a.mu.Lock()
			byRegion, ok := a.groups[year]
			if !ok {
				byRegion = make(map[string][]*StationData)
				a.groups[year] = byRegion
			}
			byRegion[st.Region] = append(byRegion[st.Region], st)
			a.mu.Unlock()
			return nil
		})
	}
	return g.Wait()
}

// aggregateWave processes each (year, region) group in parallel. Groups share
// no mutable state; results are collected under a local lock and sorted so
// output is independent of scheduling.
func (a *Aggregator) aggregateWave(ctx context.Context) ([]Aggregate, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)

	var mu sync.Mutex
	var results []Aggregate

	for year, byRegion := range a.groups {
		year := year
		for region, stations := range byRegion {
			region, stations := region, stations
			g.Go(func() error {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				aggs := aggregateGroup(year, region, stations)
				mu.Lock()
				results = append(results, aggs...)
				mu.Unlock()
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Year != results[j].Year {
			return results[i].Year < results[j].Year
		}
		if mi, mj := results[i].Month.Index(), results[j].Month.Index(); mi != mj {
			return mi < mj
		}
		return results[i].Region < results[j].Region
	})
	return results, nil
}

// writeWave appends every aggregate to the intermediate file through the
// worker pool. The writer serializes the read-append-rewrite cycle; a failed
// write loses that single aggregate, nothing else.
func (a *Aggregator) writeWave(ctx context.Context, aggregates []Aggregate, w *IntermediateWriter) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)

	for _, agg := range aggregates {
		agg := agg
		g.Go(func() error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err := w.Append(agg); err != nil {
				a.logger.Error("aggregate write lost", "year", agg.Year, "month", agg.Month, "region", agg.Region, "error", err)
				a.metrics.ClimateWriteFailures.Inc()
				return nil
			}
			a.metrics.ClimateAggregatesWritten.Inc()
			return nil
		})
	}
	return g.Wait()
}

// aggregateGroup unions the daily rows of every station in one (year, region)
// group and reduces them to monthly sums and averages.
//
// Stations are sorted by path first: summation order is then fixed, so a run
// with one worker and a run with N workers produce identical values.
// Temperature is the mean of per-day (max+min)/2 averages; a day missing
// either side contributes a zero placeholder, a kept imprecision of the
// legacy pipeline. Results round to two decimals.
func aggregateGroup(year int, region string, stations []*StationData) []Aggregate {
	sort.Slice(stations, func(i, j int) bool { return stations[i].Path < stations[j].Path })

	type bucket struct {
		precipitation float64
		tempSum       float64
		days          int
	}
	buckets := make(map[int]*bucket)

	for _, st := range stations {
		for _, day := range st.Days {
			month := monthFromLabel(day.Label)
			b, ok := buckets[month]
			if !ok {
				b = &bucket{}
				buckets[month] = b
			}
			b.precipitation += day.Precipitation
			if day.HasTempMax && day.HasTempMin {
				b.tempSum += (day.TempMax + day.TempMin) / 2
			}
			b.days++
		}
	}

	delete(buckets, sentinelMonth)

	months := make([]int, 0, len(buckets))
	for m := range buckets {
		months = append(months, m)
	}
	sort.Ints(months)

	aggregates := make([]Aggregate, 0, len(months))
	for _, m := range months {
		b := buckets[m]
		aggregates = append(aggregates, Aggregate{
			Year:               year,
			Month:              domain.MonthFromNumber(m),
			Region:             region,
			TotalPrecipitation: round2(b.precipitation),
			AvgTemperature:     round2(b.tempSum / float64(b.days)),
		})
	}
	return aggregates
}

// monthFromLabel parses the month half of a "day/month" label. Anything
// malformed or out of range resolves to the sentinel month.
func monthFromLabel(label string) int {
	parts := strings.Split(label, "/")
	if len(parts) < 2 {
		return sentinelMonth
	}
	m, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || m < 1 || m > 12 {
		return sentinelMonth
	}
	return m
}

// YearFromPath finds the station file's year: a four-digit path segment in
// [1900, 2100], then a four-digit underscore token of the filename, then the
// fallback year.
func YearFromPath(path string) int {
	for _, segment := range strings.Split(filepath.ToSlash(path), "/") {
		if y, ok := plausibleYear(segment); ok {
			return y
		}
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	for _, token := range strings.Split(stem, "_") {
		if y, ok := plausibleYear(token); ok {
			return y
		}
	}

	return fallbackYear
}

func plausibleYear(token string) (int, bool) {
	if !fourDigitsRe.MatchString(token) {
		return 0, false
	}
	y, _ := strconv.Atoi(token)
	if y < 1900 || y > 2100 {
		return 0, false
	}
	return y, true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
