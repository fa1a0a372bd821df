package insights

import (
	"fmt"
	"strings"
	"time"

	"hwdash/internal/models"
	"hwdash/internal/stats"
)

// anomalyStage emits one aggregate insight when the detector flagged
// anything. Severity counts and the baseline band go into the description;
// the individual events ride along on the insight.
func (e *Engine) anomalyStage(ctx metricContext) []models.Insight {
	events := ctx.result.Events
	if len(events) == 0 {
		return nil
	}

	var severe, moderate, minor int
	for _, ev := range events {
		switch ev.Severity {
		case models.SeveritySevere:
			severe++
		case models.SeverityModerate:
			moderate++
		default:
			minor++
		}
	}

	level := models.LevelInfo
	if severe > 0 {
		level = models.LevelCritical
	} else if moderate > 0 {
		level = models.LevelWarning
	}

	name := ctx.series.MetricType.DisplayName()
	description := fmt.Sprintf(
		"Detected %d anomalies in %s (%d severe, %d moderate, %d minor). Baseline: %.1f±%.1f%s.",
		len(events), strings.ToLower(name), severe, moderate, minor,
		ctx.baseline["mean"], ctx.baseline["std"], ctx.series.Unit)

	insight := newInsight(
		fmt.Sprintf("%s Anomalies Detected", name),
		description,
		level,
		ctx.series.MetricType,
		ctx.series.Component,
		ctx.start, ctx.end,
		anomalyRecommendations(ctx.series.MetricType),
	)
	insight.Events = events
	insight.AnomalyCount = len(events)
	insight.BaselineStats = ctx.baseline
	insight.Data["severe_count"] = severe
	insight.Data["moderate_count"] = moderate
	insight.Data["minor_count"] = minor
	return []models.Insight{insight}
}

// thresholdStage compares temperatures by observed maximum and usage
// metrics by baseline mean against the configured thresholds. When both
// critical and warning apply, critical wins.
func (e *Engine) thresholdStage(ctx metricContext) []models.Insight {
	metricType := ctx.series.MetricType
	th, ok := e.cfg.ThresholdsFor(metricType)
	if !ok {
		return nil
	}
	name := metricType.DisplayName()

	if metricType.IsTemperature() {
		maxVal := stats.Max(ctx.series.Values)
		if maxVal >= th.Critical {
			return []models.Insight{newInsight(
				fmt.Sprintf("Critical %s", name),
				fmt.Sprintf("Maximum %s reached %.1f°C, which is critically high. "+
					"Immediate action required to prevent hardware damage.",
					strings.ToLower(name), maxVal),
				models.LevelCritical,
				metricType,
				ctx.series.Component,
				ctx.start, ctx.end,
				criticalTemperatureRecommendations(),
			)}
		}
		if maxVal >= th.Warning {
			return []models.Insight{newInsight(
				fmt.Sprintf("High %s", name),
				fmt.Sprintf("Maximum %s reached %.1f°C, which is above recommended levels. "+
					"Monitor closely and consider cooling improvements.",
					strings.ToLower(name), maxVal),
				models.LevelWarning,
				metricType,
				ctx.series.Component,
				ctx.start, ctx.end,
				coolingRecommendations(metricType),
			)}
		}
		return nil
	}

	if metricType.IsUsage() {
		mean := ctx.baseline["mean"]
		if mean >= th.Warning {
			return []models.Insight{newInsight(
				fmt.Sprintf("High %s", name),
				fmt.Sprintf("Average %s is %.1f%%, indicating high system load. "+
					"Consider optimizing applications or upgrading hardware.",
					strings.ToLower(name), mean),
				models.LevelWarning,
				metricType,
				ctx.series.Component,
				ctx.start, ctx.end,
				usageRecommendations(),
			)}
		}
	}
	return nil
}

// reliabilityStage warns when baseline statistics had to fall back to the
// unfiltered series because anomaly removal discarded too much data.
func (e *Engine) reliabilityStage(ctx metricContext) []models.Insight {
	if !ctx.unreliable {
		return nil
	}
	name := ctx.series.MetricType.DisplayName()
	return []models.Insight{newInsight(
		fmt.Sprintf("Unreliable %s Baseline", name),
		fmt.Sprintf("Anomaly removal left too few %s readings for reliable statistics; "+
			"the baseline was computed from the unfiltered series instead.",
			strings.ToLower(name)),
		models.LevelWarning,
		ctx.series.MetricType,
		ctx.series.Component,
		ctx.start, ctx.end,
		reliabilityRecommendations(),
	)}
}

// variabilityStage flags series whose spread exceeds 30% of the mean
func (e *Engine) variabilityStage(ctx metricContext) []models.Insight {
	mean := ctx.baseline["mean"]
	std := ctx.baseline["std"]
	if std <= mean*0.3 {
		return nil
	}
	name := ctx.series.MetricType.DisplayName()
	return []models.Insight{newInsight(
		fmt.Sprintf("Variable %s", name),
		fmt.Sprintf("%s shows high variability (std: %.1f). "+
			"This may indicate inconsistent workload or cooling issues.", name, std),
		models.LevelInfo,
		ctx.series.MetricType,
		ctx.series.Component,
		ctx.start, ctx.end,
		variabilityRecommendations(),
	)}
}

// optimalStage rewards temperature metrics whose mean sits at or below
// the optimal ceiling. It stays quiet whenever the threshold stage fired,
// so a metric never reports optimal and high for the same period.
func (e *Engine) optimalStage(ctx metricContext) []models.Insight {
	metricType := ctx.series.MetricType
	if !metricType.IsTemperature() {
		return nil
	}
	th, ok := e.cfg.ThresholdsFor(metricType)
	if !ok {
		return nil
	}
	if ctx.baseline["mean"] > th.OptimalMax || stats.Max(ctx.series.Values) >= th.Warning {
		return nil
	}
	name := metricType.DisplayName()
	return []models.Insight{newInsight(
		fmt.Sprintf("Optimal %s", name),
		fmt.Sprintf("Average %s is %.1f°C, which is within optimal range. "+
			"Your cooling system is working well.",
			strings.ToLower(name), ctx.baseline["mean"]),
		models.LevelSuccess,
		metricType,
		ctx.series.Component,
		ctx.start, ctx.end,
		optimalRecommendations(),
	)}
}

// trendStage fits a least-squares line over the series and reports
// sustained temperature movement in either direction. The numeric slope
// is recorded in the insight's data map.
func (e *Engine) trendStage(ctx metricContext) []models.Insight {
	if len(ctx.series.Values) < 10 {
		return nil
	}
	metricType := ctx.series.MetricType
	if !metricType.IsTemperature() {
		return nil
	}

	slope := stats.Slope(ctx.series.Values)
	name := metricType.DisplayName()

	if slope > e.cfg.TrendSensitivity {
		insight := newInsight(
			fmt.Sprintf("Increasing %s Trend", name),
			fmt.Sprintf("%s shows an increasing trend over time. "+
				"This may indicate deteriorating cooling performance.", name),
			models.LevelWarning,
			metricType,
			ctx.series.Component,
			ctx.start, ctx.end,
			trendWarningRecommendations(),
		)
		insight.Data["slope"] = slope
		return []models.Insight{insight}
	}

	if slope < -e.cfg.TrendSensitivity {
		insight := newInsight(
			fmt.Sprintf("Improving %s", name),
			fmt.Sprintf("%s shows a decreasing trend over time. "+
				"Your cooling improvements are working well.", name),
			models.LevelSuccess,
			metricType,
			ctx.series.Component,
			ctx.start, ctx.end,
			trendSuccessRecommendations(),
		)
		insight.Data["slope"] = slope
		return []models.Insight{insight}
	}
	return nil
}

// crossMetricInsights looks across metric series for system-level
// conditions no single metric can show.
func (e *Engine) crossMetricInsights(series []models.TimeSeries, start, end time.Time) []models.Insight {
	var cpuTemp, gpuTemp, cpuUsage *models.TimeSeries
	for i := range series {
		switch series[i].MetricType {
		case models.MetricCPUTemp:
			if cpuTemp == nil {
				cpuTemp = &series[i]
			}
		case models.MetricGPUTemp:
			if gpuTemp == nil {
				gpuTemp = &series[i]
			}
		case models.MetricCPUUsage:
			if cpuUsage == nil {
				cpuUsage = &series[i]
			}
		}
	}

	var insights []models.Insight

	if cpuTemp != nil && gpuTemp != nil {
		if stats.Mean(cpuTemp.Values) > 75 && stats.Mean(gpuTemp.Values) > 80 {
			insights = append(insights, newInsight(
				"High System Temperatures",
				"Both CPU and GPU are running at elevated temperatures. "+
					"This may indicate insufficient case airflow or cooling capacity.",
				models.LevelWarning,
				models.MetricCPUTemp,
				"system",
				start, end,
				systemTemperatureRecommendations(),
			))
		}
	}

	if cpuTemp != nil && cpuUsage != nil {
		// Index-aligned comparison, not a timestamp join
		n := len(cpuTemp.Values)
		if len(cpuUsage.Values) < n {
			n = len(cpuUsage.Values)
		}
		var highUsageTemps []float64
		for i := 0; i < n; i++ {
			if cpuUsage.Values[i] > 80 {
				highUsageTemps = append(highUsageTemps, cpuTemp.Values[i])
			}
		}
		if len(highUsageTemps) > 0 && stats.Mean(highUsageTemps) > 85 {
			insights = append(insights, newInsight(
				"Potential Thermal Throttling",
				"CPU temperatures are very high during high usage periods. "+
					"This may cause performance throttling.",
				models.LevelWarning,
				models.MetricCPUTemp,
				"cpu",
				start, end,
				throttlingRecommendations(),
			))
		}
	}

	return insights
}
