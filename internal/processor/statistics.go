package processor

import (
	"fmt"
	"log"
	"time"

	"hwdash/internal/logstore"
	"hwdash/internal/models"
	"hwdash/internal/stats"
)

// GetStatistics returns the descriptive summary of one metric type over a
// period, combining every matching series. An empty map means no data.
func (p *Processor) GetStatistics(start, end time.Time, metricType models.MetricType) (map[string]float64, error) {
	series, err := p.GetMetricsForPeriod(start, end, []models.MetricType{metricType})
	if err != nil {
		return nil, err
	}

	var values []float64
	for _, s := range series {
		values = append(values, s.Values...)
	}
	if len(values) == 0 {
		return map[string]float64{}, nil
	}

	summary := stats.Describe(values)
	summary["count"] = float64(len(values))
	return summary, nil
}

// GetSystemInfo extracts a free-form hardware summary from the most
// recent log file. Failures to read the latest file degrade to an empty
// map rather than an error.
func (p *Processor) GetSystemInfo() (map[string]interface{}, error) {
	dates, err := p.store.ListAvailableDates()
	if err != nil {
		return nil, err
	}
	if len(dates) == 0 {
		return map[string]interface{}{}, nil
	}

	latest := dates[len(dates)-1]
	table, err := p.store.Load(latest)
	if err != nil {
		log.Printf("Error extracting system info: %v", err)
		return map[string]interface{}{}, nil
	}

	info := map[string]interface{}{
		"last_update": latest.Format(logstore.DateLayout),
	}

	if cores := len(discoverCPUCores([]*logstore.Table{table})); cores > 0 {
		info["cpu_model"] = fmt.Sprintf("CPU (%d cores)", cores)
	}
	if table.ColumnBySource("GPU Core") != nil {
		info["gpu_model"] = "Dedicated GPU"
	}

	if col := table.ColumnBySource("Memory"); col != nil {
		if avg, ok := columnMean(col); ok {
			info["memory_usage_avg"] = fmt.Sprintf("%.1f%%", avg)
		}
	}
	if col := table.ColumnBySource("GPU Memory Total"); col != nil {
		if first, ok := firstValid(col); ok {
			info["gpu_memory"] = fmt.Sprintf("%.1f GB", first/1024)
		}
	}

	return info, nil
}

func columnMean(col *logstore.Column) (float64, bool) {
	var valid []float64
	for i, v := range col.Values {
		if col.Valid[i] {
			valid = append(valid, v)
		}
	}
	if len(valid) == 0 {
		return 0, false
	}
	return stats.Mean(valid), true
}

func firstValid(col *logstore.Column) (float64, bool) {
	for i, v := range col.Values {
		if col.Valid[i] {
			return v, true
		}
	}
	return 0, false
}
