// Package server is the thin HTTP surface over the analytics engine. It
// owns request validation and response mapping; all analysis semantics
// live below it.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"hwdash/internal/insights"
	"hwdash/internal/logstore"
	"hwdash/internal/metrics"
	"hwdash/internal/models"
	"hwdash/internal/processor"
)

// Server represents the HTTP server
type Server struct {
	processor *processor.Processor
	engine    *insights.Engine
	handler   http.Handler
}

// NewServer creates a new HTTP server
func NewServer(p *processor.Processor, e *insights.Engine, allowedOrigins []string) *Server {
	s := &Server{
		processor: p,
		engine:    e,
	}

	router := mux.NewRouter()
	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/metrics/available-dates", s.handleAvailableDates).Methods(http.MethodGet)
	api.HandleFunc("/metrics/time-series", s.handleTimeSeries).Methods(http.MethodGet)
	api.HandleFunc("/metrics/statistics", s.handleStatistics).Methods(http.MethodGet)
	api.HandleFunc("/metrics/system-info", s.handleSystemInfo).Methods(http.MethodGet)
	api.HandleFunc("/insights/analyze", s.handleAnalyze).Methods(http.MethodGet)
	api.HandleFunc("/insights/health-summary", s.handleHealthSummary).Methods(http.MethodGet)
	api.HandleFunc("/insights/recent", s.handleRecentInsights).Methods(http.MethodGet)
	api.HandleFunc("/insights/by-level", s.handleInsightsByLevel).Methods(http.MethodGet)
	api.HandleFunc("/insights/by-metric", s.handleInsightsByMetric).Methods(http.MethodGet)
	api.HandleFunc("/insights/recommendations", s.handleRecommendations).Methods(http.MethodGet)

	s.handler = cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet},
		AllowCredentials: true,
	}).Handler(router)

	return s
}

// Handler exposes the configured handler chain, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	return http.ListenAndServe(addr, s.handler)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// parseDateRange reads and validates the start_date/end_date parameters
func parseDateRange(r *http.Request) (time.Time, time.Time, error) {
	start, err := time.Parse(logstore.DateLayout, r.URL.Query().Get("start_date"))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start_date: %w", err)
	}
	end, err := time.Parse(logstore.DateLayout, r.URL.Query().Get("end_date"))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end_date: %w", err)
	}
	return start, end, nil
}

// handleHealth returns the server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().String(),
	})
}

// handleAvailableDates returns the dates that have log data
func (s *Server) handleAvailableDates(w http.ResponseWriter, r *http.Request) {
	dates, err := s.processor.ListAvailableDates()
	if err != nil {
		http.Error(w, "Error retrieving available dates: "+err.Error(), http.StatusInternalServerError)
		return
	}

	formatted := make([]string, len(dates))
	for i, d := range dates {
		formatted[i] = d.Format(logstore.DateLayout)
	}

	dateRange := map[string]interface{}{"start": nil, "end": nil}
	if len(formatted) > 0 {
		dateRange["start"] = formatted[0]
		dateRange["end"] = formatted[len(formatted)-1]
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"dates":      formatted,
		"count":      len(formatted),
		"date_range": dateRange,
	})
}

// handleTimeSeries returns per-metric time series for a period
func (s *Server) handleTimeSeries(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseDateRange(r)
	if err != nil {
		http.Error(w, "Invalid date format: "+err.Error(), http.StatusBadRequest)
		return
	}

	var metricTypes []models.MetricType
	for _, raw := range r.URL.Query()["metric_types"] {
		m, ok := models.ParseMetricType(raw)
		if !ok {
			http.Error(w, "Unknown metric type: "+raw, http.StatusBadRequest)
			return
		}
		metricTypes = append(metricTypes, m)
	}

	data, err := s.processor.GetMetricsForPeriod(start, end, metricTypes)
	if err != nil {
		http.Error(w, "Error retrieving time series data: "+err.Error(), http.StatusInternalServerError)
		return
	}

	totalRecords := 0
	for _, series := range data {
		totalRecords += len(series.Values)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":          data,
		"time_range":    "custom",
		"total_records": totalRecords,
	})
}

// handleStatistics returns the statistical summary for one metric type
func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseDateRange(r)
	if err != nil {
		http.Error(w, "Invalid date format: "+err.Error(), http.StatusBadRequest)
		return
	}
	metricType, ok := models.ParseMetricType(r.URL.Query().Get("metric_type"))
	if !ok {
		http.Error(w, "Unknown metric type", http.StatusBadRequest)
		return
	}

	started := time.Now()
	summary, err := s.processor.GetStatistics(start, end, metricType)
	metrics.RecordAnalysis("statistics", time.Since(started), err)
	if err != nil {
		http.Error(w, "Error calculating statistics: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if len(summary) == 0 {
		http.Error(w, "No data found for "+string(metricType), http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"metric_type": metricType,
		"period":      periodOf(start, end),
		"statistics":  summary,
	})
}

// handleSystemInfo returns the hardware summary from the latest log
func (s *Server) handleSystemInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.processor.GetSystemInfo()
	if err != nil {
		http.Error(w, "Error retrieving system info: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// handleAnalyze runs the full insight analysis for a period
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseDateRange(r)
	if err != nil {
		http.Error(w, "Invalid date format: "+err.Error(), http.StatusBadRequest)
		return
	}

	started := time.Now()
	result, err := s.engine.AnalyzePeriod(start, end)
	metrics.RecordAnalysis("analyze_period", time.Since(started), err)
	if err != nil {
		http.Error(w, "Error analyzing data: "+err.Error(), http.StatusInternalServerError)
		return
	}

	summary := map[string]interface{}{
		"total_insights": len(result),
		"critical_count": countByLevel(result, models.LevelCritical),
		"warning_count":  countByLevel(result, models.LevelWarning),
		"info_count":     countByLevel(result, models.LevelInfo),
		"success_count":  countByLevel(result, models.LevelSuccess),
		"period":         periodOf(start, end),
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"insights": result,
		"summary":  summary,
	})
}

// handleHealthSummary returns the aggregate health rollup for a period
func (s *Server) handleHealthSummary(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseDateRange(r)
	if err != nil {
		http.Error(w, "Invalid date format: "+err.Error(), http.StatusBadRequest)
		return
	}

	started := time.Now()
	summary, err := s.engine.GetHealthSummary(start, end)
	metrics.RecordAnalysis("health_summary", time.Since(started), err)
	if err != nil {
		http.Error(w, "Error generating health summary: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// handleRecentInsights analyzes the last N days and returns the most
// important insights first.
func (s *Server) handleRecentInsights(w http.ResponseWriter, r *http.Request) {
	days := 7
	if raw := r.URL.Query().Get("days"); raw != "" {
		d, err := strconv.Atoi(raw)
		if err != nil || d < 1 || d > 30 {
			http.Error(w, "days must be between 1 and 30", http.StatusBadRequest)
			return
		}
		days = d
	}

	end := time.Now()
	start := end.AddDate(0, 0, -days)

	result, err := s.engine.AnalyzePeriod(start, end)
	if err != nil {
		http.Error(w, "Error retrieving recent insights: "+err.Error(), http.StatusInternalServerError)
		return
	}

	sort.SliceStable(result, func(i, j int) bool {
		ri, rj := levelRank(result[i].Level), levelRank(result[j].Level)
		if ri != rj {
			return ri > rj
		}
		return result[i].GeneratedAt.After(result[j].GeneratedAt)
	})

	top := result
	if len(top) > 10 {
		top = top[:10]
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"insights": top,
		"period": map[string]interface{}{
			"start_date": start.Format(logstore.DateLayout),
			"end_date":   end.Format(logstore.DateLayout),
			"days":       days,
		},
		"total_insights": len(result),
		"showing":        len(top),
	})
}

// handleInsightsByLevel filters a period's insights to one level
func (s *Server) handleInsightsByLevel(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseDateRange(r)
	if err != nil {
		http.Error(w, "Invalid date format: "+err.Error(), http.StatusBadRequest)
		return
	}
	level, ok := models.ParseInsightLevel(r.URL.Query().Get("level"))
	if !ok {
		http.Error(w, "Unknown insight level", http.StatusBadRequest)
		return
	}

	result, err := s.engine.AnalyzePeriod(start, end)
	if err != nil {
		http.Error(w, "Error filtering insights: "+err.Error(), http.StatusInternalServerError)
		return
	}

	filtered := make([]models.Insight, 0)
	for _, insight := range result {
		if insight.Level == level {
			filtered = append(filtered, insight)
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"insights": filtered,
		"level":    level,
		"period":   periodOf(start, end),
		"count":    len(filtered),
	})
}

// handleInsightsByMetric filters a period's insights to one metric type
func (s *Server) handleInsightsByMetric(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseDateRange(r)
	if err != nil {
		http.Error(w, "Invalid date format: "+err.Error(), http.StatusBadRequest)
		return
	}
	metricType, ok := models.ParseMetricType(r.URL.Query().Get("metric_type"))
	if !ok {
		http.Error(w, "Unknown metric type", http.StatusBadRequest)
		return
	}

	result, err := s.engine.AnalyzePeriod(start, end)
	if err != nil {
		http.Error(w, "Error filtering insights: "+err.Error(), http.StatusInternalServerError)
		return
	}

	filtered := make([]models.Insight, 0)
	for _, insight := range result {
		if insight.MetricType == metricType {
			filtered = append(filtered, insight)
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"insights":    filtered,
		"metric_type": metricType,
		"period":      periodOf(start, end),
		"count":       len(filtered),
	})
}

// handleRecommendations flattens and deduplicates the recommendations of
// every insight for a period, preserving first-seen order.
func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseDateRange(r)
	if err != nil {
		http.Error(w, "Invalid date format: "+err.Error(), http.StatusBadRequest)
		return
	}

	result, err := s.engine.AnalyzePeriod(start, end)
	if err != nil {
		http.Error(w, "Error retrieving recommendations: "+err.Error(), http.StatusInternalServerError)
		return
	}

	seen := make(map[string]bool)
	unique := make([]map[string]interface{}, 0)
	for _, insight := range result {
		for _, rec := range insight.Recommendations {
			if seen[rec] {
				continue
			}
			seen[rec] = true
			unique = append(unique, map[string]interface{}{
				"recommendation": rec,
				"insight_title":  insight.Title,
				"insight_level":  insight.Level,
				"metric_type":    insight.MetricType,
				"component":      insight.Component,
			})
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"recommendations":       unique,
		"period":                periodOf(start, end),
		"total_recommendations": len(unique),
		"insights_analyzed":     len(result),
	})
}

func periodOf(start, end time.Time) models.Period {
	return models.Period{
		StartDate: start.Format(logstore.DateLayout),
		EndDate:   end.Format(logstore.DateLayout),
	}
}

func countByLevel(result []models.Insight, level models.InsightLevel) int {
	n := 0
	for _, insight := range result {
		if insight.Level == level {
			n++
		}
	}
	return n
}

func levelRank(level models.InsightLevel) int {
	switch level {
	case models.LevelCritical:
		return 3
	case models.LevelWarning:
		return 2
	case models.LevelInfo:
		return 1
	}
	return 0
}
