// Package stats provides the descriptive statistics used by the anomaly
// detector and the insights engine. Percentiles use linear interpolation
// between closest ranks; standard deviation is the population form.
package stats

import (
	"math"
	"sort"
)

// Mean returns the arithmetic mean, or 0 for an empty slice
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev returns the population standard deviation around mean
func StdDev(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sumSquares := 0.0
	for _, v := range values {
		d := v - mean
		sumSquares += d * d
	}
	return math.Sqrt(sumSquares / float64(len(values)))
}

// Percentile returns the p-th percentile (0-100) of values
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}

	rank := p / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}
	frac := rank - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}

// Median returns the 50th percentile
func Median(values []float64) float64 {
	return Percentile(values, 50)
}

// Min returns the smallest value, or 0 for an empty slice
func Min(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	min := values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

// Max returns the largest value, or 0 for an empty slice
func Max(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	max := values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

// Describe computes the full descriptive summary of values
func Describe(values []float64) map[string]float64 {
	if len(values) == 0 {
		return map[string]float64{}
	}
	mean := Mean(values)
	q25 := Percentile(values, 25)
	q75 := Percentile(values, 75)
	return map[string]float64{
		"mean":   mean,
		"median": Median(values),
		"std":    StdDev(values, mean),
		"min":    Min(values),
		"max":    Max(values),
		"q25":    q25,
		"q75":    q75,
		"iqr":    q75 - q25,
	}
}

// Slope fits an ordinary least squares line over (index, value) pairs and
// returns its slope. A slice shorter than 2 has no trend.
func Slope(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}

	meanX := float64(n-1) / 2
	meanY := Mean(values)

	var covXY, varX float64
	for i, v := range values {
		dx := float64(i) - meanX
		covXY += dx * (v - meanY)
		varX += dx * dx
	}
	if varX == 0 {
		return 0
	}
	return covXY / varX
}
