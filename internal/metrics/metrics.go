package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ingestion metrics
var (
	// LogFilesTotal tracks log file load attempts by outcome
	LogFilesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hwdash_log_files_total",
			Help: "Total number of log file load attempts by outcome",
		},
		[]string{"outcome"},
	)

	// LogRowsTotal tracks the number of rows read from log files
	LogRowsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hwdash_log_rows_total",
			Help: "Total number of data rows read from log files",
		},
	)

	// RowsDroppedTotal tracks rows dropped during normalization
	RowsDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hwdash_rows_dropped_total",
			Help: "Total number of rows dropped during normalization",
		},
		[]string{"reason"},
	)

	// AnalysesTotal tracks analysis operations by type and status
	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hwdash_analyses_total",
			Help: "Total number of analysis operations executed",
		},
		[]string{"operation", "status"},
	)

	// AnalysisDuration tracks the duration of analysis operations
	AnalysisDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hwdash_analysis_duration_seconds",
			Help:    "Duration of analysis operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// InsightsGenerated tracks generated insights by level
	InsightsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hwdash_insights_generated_total",
			Help: "Total number of insights generated by level",
		},
		[]string{"level"},
	)

	// AppInfo provides static information about the application
	AppInfo = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hwdash_app_info",
			Help: "Application information (always 1)",
		},
	)

	// AppStartTime records when the application started
	AppStartTime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hwdash_app_start_time_seconds",
			Help: "Unix timestamp of when the application started",
		},
	)
)

func init() {
	// Set app info to 1 (always visible)
	AppInfo.Set(1)
	// Record app start time
	AppStartTime.SetToCurrentTime()
}

// RecordFileLoad records the outcome of a log file load attempt
func RecordFileLoad(outcome string) {
	LogFilesTotal.WithLabelValues(outcome).Inc()
}

// RecordAnalysis records an analysis operation execution
func RecordAnalysis(operation string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	AnalysesTotal.WithLabelValues(operation, status).Inc()
	AnalysisDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
