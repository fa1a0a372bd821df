package detector

import (
	"hwdash/internal/stats"
)

// Baseline computes descriptive statistics over the series with the
// flagged indices removed. When removal leaves fewer than the configured
// minimum data points, the unfiltered series is used instead and the
// second return reports the fallback so callers can surface a
// reliability warning.
func (d *AnomalyDetector) Baseline(values []float64, flagged []int) (map[string]float64, bool) {
	filtered := RemoveIndices(values, flagged)
	if len(filtered) < d.cfg.MinDataPoints {
		return stats.Describe(values), true
	}
	return stats.Describe(filtered), false
}

// RemoveIndices returns values without the entries at the given
// positions. Removal is by index, not by value, so duplicate readings
// elsewhere in the series are never removed by mistake. An empty index
// list returns the input unchanged.
func RemoveIndices(values []float64, indices []int) []float64 {
	if len(indices) == 0 {
		return values
	}
	drop := make(map[int]bool, len(indices))
	for _, idx := range indices {
		drop[idx] = true
	}
	kept := make([]float64, 0, len(values)-len(indices))
	for i, v := range values {
		if !drop[i] {
			kept = append(kept, v)
		}
	}
	return kept
}
