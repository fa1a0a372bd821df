// Package processor turns normalized log tables into per-metric time
// series and serves the statistics and system-info queries. Every call
// reads the logs fresh; nothing is cached across requests.
package processor

import (
	"errors"
	"log"
	"sort"
	"strings"
	"time"

	"hwdash/internal/logstore"
	"hwdash/internal/models"
)

// metricColumns maps each metric type to its candidate sensor columns in
// priority order. The first candidate with at least one valid data point
// wins; candidates after it are never merged in.
var metricColumns = map[models.MetricType][]string{
	models.MetricCPUTemp:     {"CPU Total"},
	models.MetricGPUTemp:     {"GPU Core"},
	models.MetricCPUUsage:    {"CPU Total"},
	models.MetricGPUUsage:    {"GPU Core"},
	models.MetricFanSpeed:    {"GPU Fan"},
	models.MetricMemoryUsage: {"Memory"},
	models.MetricDiskUsage:   {"Used Space"},
}

// cpuCorePrefix identifies dynamically enumerated per-core columns that
// extend the CPU temperature candidates.
const cpuCorePrefix = "CPU Core #"

// Processor extracts metric time series from the log store
type Processor struct {
	store *logstore.Store
}

// New creates a processor over a log store
func New(store *logstore.Store) *Processor {
	return &Processor{store: store}
}

// ListAvailableDates returns the dates that have a log file, ascending
func (p *Processor) ListAvailableDates() ([]time.Time, error) {
	return p.store.ListAvailableDates()
}

// GetMetricsForPeriod loads every date in [start, end], normalizes each
// file, and extracts one time series per requested metric type. Dates with
// missing or oversized files are skipped with a warning. Metric types with
// no matching column are omitted from the result.
func (p *Processor) GetMetricsForPeriod(start, end time.Time, metricTypes []models.MetricType) ([]models.TimeSeries, error) {
	tables, err := p.loadPeriod(start, end)
	if err != nil {
		return nil, err
	}
	if len(tables) == 0 {
		return nil, nil
	}

	// The whole end date is included in the range
	from := truncateToDay(start)
	to := truncateToDay(end).Add(24*time.Hour - time.Second)

	if metricTypes == nil {
		metricTypes = models.AllMetricTypes()
	}

	coreColumns := discoverCPUCores(tables)

	var results []models.TimeSeries
	for _, metricType := range metricTypes {
		candidates := metricColumns[metricType]
		if metricType == models.MetricCPUTemp {
			candidates = append(append([]string{}, candidates...), coreColumns...)
		}

		for _, source := range candidates {
			timestamps, values := extract(tables, source, from, to)
			if len(values) == 0 {
				continue
			}
			results = append(results, models.TimeSeries{
				MetricType: metricType,
				Component:  source,
				Unit:       metricType.Unit(),
				Timestamps: timestamps,
				Values:     values,
			})
			break
		}
	}

	return results, nil
}

// loadPeriod loads and normalizes every date in the inclusive range,
// skipping dates whose file is absent or over the size cap. Each raw table
// is released as soon as its normalized form exists, so peak memory tracks
// the requested range rather than the full log history.
func (p *Processor) loadPeriod(start, end time.Time) ([]*logstore.Table, error) {
	var tables []*logstore.Table
	for date := truncateToDay(start); !date.After(truncateToDay(end)); date = date.AddDate(0, 0, 1) {
		table, err := p.store.Load(date)
		if err != nil {
			if errors.Is(err, logstore.ErrMissingData) {
				log.Printf("Warning: no data for date: %s", date.Format(logstore.DateLayout))
				continue
			}
			if errors.Is(err, logstore.ErrOversizedFile) {
				log.Printf("Warning: skipping oversized log for date: %s", date.Format(logstore.DateLayout))
				continue
			}
			return nil, err
		}
		tables = append(tables, table)
	}
	return tables, nil
}

// discoverCPUCores collects per-core column labels across the period's
// tables, in first-seen order.
func discoverCPUCores(tables []*logstore.Table) []string {
	seen := make(map[string]bool)
	var cores []string
	for _, table := range tables {
		for _, name := range table.SourceNames() {
			if strings.Contains(name, cpuCorePrefix) && !seen[name] {
				seen[name] = true
				cores = append(cores, name)
			}
		}
	}
	return cores
}

// extract gathers the (timestamp, value) pairs for one source column
// across all tables, keeping only valid cells inside [from, to], ordered
// by timestamp. When the paired slices ever diverge in length the longer
// one is truncated to match, keeping the earliest entries.
func extract(tables []*logstore.Table, source string, from, to time.Time) ([]time.Time, []float64) {
	type pair struct {
		ts time.Time
		v  float64
	}
	var pairs []pair
	for _, table := range tables {
		col := table.ColumnBySource(source)
		if col == nil {
			continue
		}
		for i := range col.Values {
			if !col.Valid[i] {
				continue
			}
			ts := table.Timestamps[i]
			if ts.Before(from) || ts.After(to) {
				continue
			}
			pairs = append(pairs, pair{ts: ts, v: col.Values[i]})
		}
	}
	if len(pairs) == 0 {
		return nil, nil
	}

	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].ts.Before(pairs[j].ts) })

	timestamps := make([]time.Time, len(pairs))
	values := make([]float64, len(pairs))
	for i, p := range pairs {
		timestamps[i] = p.ts
		values[i] = p.v
	}
	// Documented lossy policy: truncate the longer side to the shorter
	if len(timestamps) > len(values) {
		timestamps = timestamps[:len(values)]
	} else if len(values) > len(timestamps) {
		values = values[:len(timestamps)]
	}
	return timestamps, values
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
