package models

import (
	"strings"
	"time"
)

// MetricType identifies a hardware measurement extracted from the logs
type MetricType string

const (
	MetricCPUTemp     MetricType = "cpu_temperature"
	MetricGPUTemp     MetricType = "gpu_temperature"
	MetricCPUUsage    MetricType = "cpu_usage"
	MetricGPUUsage    MetricType = "gpu_usage"
	MetricFanSpeed    MetricType = "fan_speed"
	MetricMemoryUsage MetricType = "memory_usage"
	MetricDiskUsage   MetricType = "disk_usage"
)

// AllMetricTypes returns every known metric type in a stable order
func AllMetricTypes() []MetricType {
	return []MetricType{
		MetricCPUTemp,
		MetricGPUTemp,
		MetricCPUUsage,
		MetricGPUUsage,
		MetricFanSpeed,
		MetricMemoryUsage,
		MetricDiskUsage,
	}
}

// ParseMetricType validates a caller-supplied metric type string
func ParseMetricType(s string) (MetricType, bool) {
	for _, m := range AllMetricTypes() {
		if string(m) == s {
			return m, true
		}
	}
	return "", false
}

// IsTemperature reports whether the metric is a temperature reading
func (m MetricType) IsTemperature() bool {
	return m == MetricCPUTemp || m == MetricGPUTemp
}

// IsUsage reports whether the metric is a utilization percentage
func (m MetricType) IsUsage() bool {
	return m == MetricCPUUsage || m == MetricGPUUsage || m == MetricMemoryUsage
}

// Unit returns the display unit for the metric
func (m MetricType) Unit() string {
	switch m {
	case MetricCPUTemp, MetricGPUTemp:
		return "°C"
	case MetricFanSpeed:
		return "RPM"
	case MetricCPUUsage, MetricGPUUsage, MetricMemoryUsage, MetricDiskUsage:
		return "%"
	}
	return ""
}

// DisplayName returns a human-readable name, e.g. "CPU Temperature"
func (m MetricType) DisplayName() string {
	words := strings.Split(string(m), "_")
	for i, w := range words {
		switch w {
		case "cpu", "gpu":
			words[i] = strings.ToUpper(w)
		default:
			if len(w) > 0 {
				words[i] = strings.ToUpper(w[:1]) + w[1:]
			}
		}
	}
	return strings.Join(words, " ")
}

// TimeSeries holds one metric's aligned timestamps and values for a period.
// len(Timestamps) == len(Values) always holds for series built by the processor.
type TimeSeries struct {
	MetricType MetricType  `json:"metric_type"`
	Component  string      `json:"component"`
	Unit       string      `json:"unit"`
	Timestamps []time.Time `json:"timestamps"`
	Values     []float64   `json:"values"`
}

// Anomaly severity levels
const (
	SeverityMinor    = "minor"
	SeverityModerate = "moderate"
	SeveritySevere   = "severe"
)

// AnomalyEvent is a single flagged data point
type AnomalyEvent struct {
	Timestamp    time.Time `json:"timestamp"`
	Value        float64   `json:"value"`
	Severity     string    `json:"severity"`
	Description  string    `json:"description"`
	ExpectedLow  float64   `json:"expected_low"`
	ExpectedHigh float64   `json:"expected_high"`
}

// InsightLevel classifies the severity of an insight
type InsightLevel string

const (
	LevelInfo     InsightLevel = "info"
	LevelWarning  InsightLevel = "warning"
	LevelCritical InsightLevel = "critical"
	LevelSuccess  InsightLevel = "success"
)

// ParseInsightLevel validates a caller-supplied level string
func ParseInsightLevel(s string) (InsightLevel, bool) {
	switch InsightLevel(s) {
	case LevelInfo, LevelWarning, LevelCritical, LevelSuccess:
		return InsightLevel(s), true
	}
	return "", false
}

// Insight is a generated finding about one metric over one period
type Insight struct {
	ID              string                 `json:"id"`
	Title           string                 `json:"title"`
	Description     string                 `json:"description"`
	Level           InsightLevel           `json:"level"`
	MetricType      MetricType             `json:"metric_type"`
	Component       string                 `json:"component"`
	GeneratedAt     time.Time              `json:"generated_at"`
	Recommendations []string               `json:"recommendations"`
	Data            map[string]interface{} `json:"data"`
	Events          []AnomalyEvent         `json:"events"`
	PeriodStart     time.Time              `json:"period_start"`
	PeriodEnd       time.Time              `json:"period_end"`
	AnomalyCount    int                    `json:"anomaly_count"`
	BaselineStats   map[string]float64     `json:"baseline_stats"`
}

// Period is the analyzed date range as reported back to callers
type Period struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// HealthSummary is the aggregate rollup of all insights for a period
type HealthSummary struct {
	OverallHealth       string               `json:"overall_health"`
	InsightCounts       map[InsightLevel]int `json:"insight_counts"`
	TotalInsights       int                  `json:"total_insights"`
	TotalAnomalies      int                  `json:"total_anomalies"`
	Warnings            int                  `json:"warnings"`
	CriticalIssues      int                  `json:"critical_issues"`
	RecommendationCount int                  `json:"recommendations"`
	Period              Period               `json:"period"`
}
