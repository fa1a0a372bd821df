// Package detector flags outlier points in metric time series. Three
// independent rules each nominate a set of indices; the union of the sets
// is the anomaly set. Each rule lives in its own method so it can be
// tested and replaced on its own.
package detector

import (
	"fmt"
	"math"
	"sort"
	"time"

	"hwdash/internal/config"
	"hwdash/internal/models"
	"hwdash/internal/stats"
)

// AnomalyDetector applies the configured detection rules to value arrays
type AnomalyDetector struct {
	cfg *config.Analysis
}

// New creates a detector with fixed analysis parameters
func New(cfg *config.Analysis) *AnomalyDetector {
	return &AnomalyDetector{cfg: cfg}
}

// Result carries the flagged events together with their positions in the
// input arrays, so baseline computation can remove them by index.
type Result struct {
	Events  []models.AnomalyEvent
	Indices []int
}

// Detect runs every rule over the series and unions the flagged indices.
// Series shorter than the configured minimum yield no anomalies.
func (d *AnomalyDetector) Detect(values []float64, timestamps []time.Time, metricType models.MetricType) Result {
	if len(values) < d.cfg.MinDataPoints || len(values) != len(timestamps) {
		return Result{}
	}

	zFlags := d.zScoreOutliers(values, metricType)
	iqrFlags := d.iqrOutliers(values, metricType)
	thresholdFlags := d.thresholdOutliers(values, metricType)

	flagged := make(map[int]bool)
	for _, set := range []map[int]bool{zFlags, iqrFlags, thresholdFlags} {
		for idx := range set {
			flagged[idx] = true
		}
	}
	if len(flagged) == 0 {
		return Result{}
	}

	indices := make([]int, 0, len(flagged))
	for idx := range flagged {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	low, high := d.expectedRange(values)

	result := Result{Indices: indices}
	for _, idx := range indices {
		value := values[idx]
		severity := d.severity(metricType, value, zFlags[idx] && iqrFlags[idx])
		result.Events = append(result.Events, models.AnomalyEvent{
			Timestamp: timestamps[idx],
			Value:     value,
			Severity:  severity,
			Description: fmt.Sprintf("%s reading of %.1f%s outside expected range %.1f-%.1f",
				metricType.DisplayName(), value, metricType.Unit(), low, high),
			ExpectedLow:  low,
			ExpectedHigh: high,
		})
	}
	return result
}

// zScoreOutliers flags values whose standardized distance from the mean
// exceeds the configured threshold.
func (d *AnomalyDetector) zScoreOutliers(values []float64, _ models.MetricType) map[int]bool {
	flagged := make(map[int]bool)
	mean := stats.Mean(values)
	stdDev := stats.StdDev(values, mean)
	if stdDev == 0 {
		return flagged
	}
	for i, v := range values {
		if math.Abs((v-mean)/stdDev) > d.cfg.ZScoreThreshold {
			flagged[i] = true
		}
	}
	return flagged
}

// iqrOutliers flags values outside [Q1 - k*IQR, Q3 + k*IQR] computed over
// the full array.
func (d *AnomalyDetector) iqrOutliers(values []float64, _ models.MetricType) map[int]bool {
	flagged := make(map[int]bool)
	q1 := stats.Percentile(values, 25)
	q3 := stats.Percentile(values, 75)
	iqr := q3 - q1
	low := q1 - d.cfg.IQRMultiplier*iqr
	high := q3 + d.cfg.IQRMultiplier*iqr
	for i, v := range values {
		if v < low || v > high {
			flagged[i] = true
		}
	}
	return flagged
}

// thresholdOutliers flags temperature readings at or above the metric's
// critical threshold. Other metric classes have no fixed rule.
func (d *AnomalyDetector) thresholdOutliers(values []float64, metricType models.MetricType) map[int]bool {
	flagged := make(map[int]bool)
	if !metricType.IsTemperature() {
		return flagged
	}
	th, ok := d.cfg.ThresholdsFor(metricType)
	if !ok {
		return flagged
	}
	for i, v := range values {
		if v >= th.Critical {
			flagged[i] = true
		}
	}
	return flagged
}

// severity classifies one flagged value. Temperatures grade against the
// metric's thresholds; other metrics grade on rule agreement.
func (d *AnomalyDetector) severity(metricType models.MetricType, value float64, bothStatistical bool) string {
	if metricType.IsTemperature() {
		if th, ok := d.cfg.ThresholdsFor(metricType); ok {
			switch {
			case value >= th.Critical:
				return models.SeveritySevere
			case value >= th.Warning:
				return models.SeverityModerate
			}
		}
		return models.SeverityMinor
	}
	if bothStatistical {
		return models.SeverityModerate
	}
	return models.SeverityMinor
}

// expectedRange is the 5th/95th percentile band for arrays of at least 10
// points, otherwise the observed min/max.
func (d *AnomalyDetector) expectedRange(values []float64) (float64, float64) {
	if len(values) >= 10 {
		return stats.Percentile(values, 5), stats.Percentile(values, 95)
	}
	return stats.Min(values), stats.Max(values)
}
