package insights

import "hwdash/internal/models"

// Recommendation catalogs. Plain functions rather than package vars so
// callers always get a fresh slice they can append to safely.

func coolingRecommendations(metricType models.MetricType) []string {
	switch metricType {
	case models.MetricCPUTemp:
		return []string{
			"Clean CPU cooler and heatsink",
			"Reapply thermal paste",
			"Check CPU cooler mounting",
			"Improve case airflow",
			"Consider upgrading CPU cooler",
		}
	case models.MetricGPUTemp:
		return []string{
			"Clean GPU heatsink and fans",
			"Check GPU fan speeds",
			"Improve case ventilation",
			"Consider aftermarket GPU cooler",
			"Monitor GPU power consumption",
		}
	}
	return []string{
		"Check system cooling",
		"Improve case airflow",
		"Clean dust from components",
		"Monitor ambient temperature",
	}
}

func criticalTemperatureRecommendations() []string {
	return []string{
		"Shutdown intensive applications immediately",
		"Check cooling system functionality",
		"Clean dust from heatsinks and fans",
		"Consider hardware replacement if issue persists",
	}
}

func usageRecommendations() []string {
	return []string{
		"Identify resource-intensive applications",
		"Close unnecessary background processes",
		"Consider hardware upgrade if usage is consistently high",
	}
}

func variabilityRecommendations() []string {
	return []string{
		"Monitor for patterns in usage",
		"Check for background processes causing spikes",
		"Verify cooling system consistency",
	}
}

func optimalRecommendations() []string {
	return []string{
		"Maintain current cooling setup",
		"Regular cleaning schedule is working",
		"Continue monitoring for changes",
	}
}

func anomalyRecommendations(metricType models.MetricType) []string {
	base := []string{
		"Review the flagged readings against workload at those times",
		"Check sensor cabling and drivers if readings look impossible",
	}
	if metricType.IsTemperature() {
		return append(base, "Inspect cooling if the spikes cluster together")
	}
	return base
}

func reliabilityRecommendations() []string {
	return []string{
		"Extend the analyzed date range to gather more readings",
		"Review anomaly thresholds if too many points are flagged",
	}
}

func trendWarningRecommendations() []string {
	return []string{
		"Clean dust from cooling components",
		"Check thermal paste condition",
		"Monitor fan speeds and noise",
		"Consider preventive maintenance",
	}
}

func trendSuccessRecommendations() []string {
	return []string{
		"Continue current maintenance routine",
		"Document what changes led to improvement",
		"Monitor for sustained improvement",
	}
}

func systemTemperatureRecommendations() []string {
	return []string{
		"Improve case airflow with additional fans",
		"Check case ventilation and cable management",
		"Consider upgrading to larger case with better airflow",
		"Monitor ambient room temperature",
	}
}

func throttlingRecommendations() []string {
	return []string{
		"Upgrade CPU cooler",
		"Apply high-quality thermal paste",
		"Check for proper cooler mounting",
		"Consider undervolting if supported",
	}
}
