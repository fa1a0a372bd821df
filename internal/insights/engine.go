// Package insights turns metric time series into typed findings and
// rolls them up into an overall health summary. Generation is an ordered
// list of independent stage functions; each stage may emit zero or more
// insights and never depends on another stage's output.
package insights

import (
	"time"

	"github.com/google/uuid"

	"hwdash/internal/config"
	"hwdash/internal/detector"
	"hwdash/internal/metrics"
	"hwdash/internal/models"
	"hwdash/internal/processor"
)

// Engine generates insights for date ranges. It holds only immutable
// configuration, so independent calls may run concurrently.
type Engine struct {
	processor *processor.Processor
	detector  *detector.AnomalyDetector
	cfg       *config.Analysis
}

// NewEngine creates an insights engine over a processor and detector
func NewEngine(p *processor.Processor, d *detector.AnomalyDetector, cfg *config.Analysis) *Engine {
	return &Engine{processor: p, detector: d, cfg: cfg}
}

// metricContext is the per-metric input shared by all stage functions
type metricContext struct {
	series     models.TimeSeries
	baseline   map[string]float64
	result     detector.Result
	unreliable bool
	start, end time.Time
}

// stageFunc is one independent insight-generation rule
type stageFunc func(ctx metricContext) []models.Insight

// metricStages returns the per-metric stages in emission order
func (e *Engine) metricStages() []stageFunc {
	return []stageFunc{
		e.anomalyStage,
		e.thresholdStage,
		e.reliabilityStage,
		e.variabilityStage,
		e.optimalStage,
	}
}

// AnalyzePeriod extracts every available metric for the range, detects
// anomalies, and runs the full stage list per metric, then the
// cross-metric and trend stages. The result is a fresh computation; no
// insight is persisted anywhere.
func (e *Engine) AnalyzePeriod(start, end time.Time) ([]models.Insight, error) {
	series, err := e.processor.GetMetricsForPeriod(start, end, nil)
	if err != nil {
		return nil, err
	}

	var insights []models.Insight
	contexts := make([]metricContext, 0, len(series))
	for _, s := range series {
		result := e.detector.Detect(s.Values, s.Timestamps, s.MetricType)
		baseline, fallback := e.detector.Baseline(s.Values, result.Indices)
		ctx := metricContext{
			series:   s,
			baseline: baseline,
			result:   result,
			// The fallback only matters when removal actually discarded data
			unreliable: fallback && len(result.Indices) > 0,
			start:      start,
			end:        end,
		}
		contexts = append(contexts, ctx)
		for _, stage := range e.metricStages() {
			insights = append(insights, stage(ctx)...)
		}
	}

	insights = append(insights, e.crossMetricInsights(series, start, end)...)

	for _, ctx := range contexts {
		insights = append(insights, e.trendStage(ctx)...)
	}

	for _, insight := range insights {
		metrics.InsightsGenerated.WithLabelValues(string(insight.Level)).Inc()
	}
	return insights, nil
}

// GetHealthSummary reduces all insights for the period into one status
func (e *Engine) GetHealthSummary(start, end time.Time) (*models.HealthSummary, error) {
	insights, err := e.AnalyzePeriod(start, end)
	if err != nil {
		return nil, err
	}

	counts := map[models.InsightLevel]int{
		models.LevelCritical: 0,
		models.LevelWarning:  0,
		models.LevelInfo:     0,
		models.LevelSuccess:  0,
	}
	totalAnomalies := 0
	withRecommendations := 0
	for _, insight := range insights {
		counts[insight.Level]++
		totalAnomalies += insight.AnomalyCount
		if len(insight.Recommendations) > 0 {
			withRecommendations++
		}
	}

	overall := "normal"
	switch {
	case counts[models.LevelCritical] > 0:
		overall = "critical"
	case counts[models.LevelWarning] > 0:
		overall = "warning"
	case counts[models.LevelSuccess] > counts[models.LevelInfo]:
		overall = "good"
	}

	return &models.HealthSummary{
		OverallHealth:       overall,
		InsightCounts:       counts,
		TotalInsights:       len(insights),
		TotalAnomalies:      totalAnomalies,
		Warnings:            counts[models.LevelWarning],
		CriticalIssues:      counts[models.LevelCritical],
		RecommendationCount: withRecommendations,
		Period: models.Period{
			StartDate: start.Format("2006-01-02"),
			EndDate:   end.Format("2006-01-02"),
		},
	}, nil
}

// newInsight builds an insight with the shared bookkeeping fields set
func newInsight(title, description string, level models.InsightLevel,
	metricType models.MetricType, component string,
	start, end time.Time, recommendations []string) models.Insight {
	return models.Insight{
		ID:              uuid.NewString(),
		Title:           title,
		Description:     description,
		Level:           level,
		MetricType:      metricType,
		Component:       component,
		GeneratedAt:     time.Now().UTC(),
		Recommendations: recommendations,
		Data:            map[string]interface{}{},
		PeriodStart:     start,
		PeriodEnd:       end,
		BaselineStats:   map[string]float64{},
	}
}
