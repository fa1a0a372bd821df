package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hwdash/internal/config"
	"hwdash/internal/detector"
	"hwdash/internal/insights"
	"hwdash/internal/logstore"
	"hwdash/internal/processor"
)

func newTestServer(t *testing.T, files map[string]string) *Server {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	cfg := &config.Analysis{
		ZScoreThreshold:  2.5,
		IQRMultiplier:    1.5,
		MinDataPoints:    10,
		TrendSensitivity: 0.1,
		Thresholds:       config.DefaultThresholds(),
	}
	store := logstore.New(config.Data{
		Directory:      dir,
		FilePrefix:     "OpenHardwareMonitorLog",
		MaxFileSizeMB:  10,
		MaxRowsPerFile: 10000,
		ChunkSize:      1000,
	})
	p := processor.New(store)
	e := insights.NewEngine(p, detector.New(cfg), cfg)
	return NewServer(p, e, []string{"*"})
}

func get(t *testing.T, s *Server, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)

	var body map[string]interface{}
	if rr.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	}
	return rr, body
}

// Twelve readings of a cool, lightly loaded machine
const healthyDay = "Time,CPU Total,Memory\n" +
	"2024-01-10 10:00:00,45.0,50.0\n" +
	"2024-01-10 10:01:00,45.0,50.0\n" +
	"2024-01-10 10:02:00,45.0,50.0\n" +
	"2024-01-10 10:03:00,45.0,50.0\n" +
	"2024-01-10 10:04:00,45.0,50.0\n" +
	"2024-01-10 10:05:00,45.0,50.0\n" +
	"2024-01-10 10:06:00,45.0,50.0\n" +
	"2024-01-10 10:07:00,45.0,50.0\n" +
	"2024-01-10 10:08:00,45.0,50.0\n" +
	"2024-01-10 10:09:00,45.0,50.0\n" +
	"2024-01-10 10:10:00,45.0,50.0\n" +
	"2024-01-10 10:11:00,45.0,50.0\n"

const rangeQuery = "start_date=2024-01-10&end_date=2024-01-10"

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t, nil)

	rr, body := get(t, s, "/health")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
}

func TestHandleAvailableDates(t *testing.T) {
	s := newTestServer(t, map[string]string{
		"2024-01-10.csv":                        healthyDay,
		"OpenHardwareMonitorLog-2024-01-12.csv": healthyDay,
		"notes.txt":                             "ignored",
	})

	rr, body := get(t, s, "/api/v1/metrics/available-dates")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, float64(2), body["count"])
	assert.Equal(t, []interface{}{"2024-01-10", "2024-01-12"}, body["dates"])

	dateRange := body["date_range"].(map[string]interface{})
	assert.Equal(t, "2024-01-10", dateRange["start"])
	assert.Equal(t, "2024-01-12", dateRange["end"])
}

func TestHandleAvailableDates_Empty(t *testing.T) {
	s := newTestServer(t, nil)

	rr, body := get(t, s, "/api/v1/metrics/available-dates")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, float64(0), body["count"])

	dateRange := body["date_range"].(map[string]interface{})
	assert.Nil(t, dateRange["start"])
	assert.Nil(t, dateRange["end"])
}

func TestHandleTimeSeries(t *testing.T) {
	s := newTestServer(t, map[string]string{"2024-01-10.csv": healthyDay})

	rr, body := get(t, s, "/api/v1/metrics/time-series?"+rangeQuery+"&metric_types=memory_usage")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, float64(12), body["total_records"])

	data := body["data"].([]interface{})
	require.Len(t, data, 1)
	series := data[0].(map[string]interface{})
	assert.Equal(t, "memory_usage", series["metric_type"])
	assert.Equal(t, "Memory", series["component"])
}

func TestHandleTimeSeries_BadRequests(t *testing.T) {
	s := newTestServer(t, map[string]string{"2024-01-10.csv": healthyDay})

	tests := []struct {
		name string
		path string
	}{
		{"missing dates", "/api/v1/metrics/time-series"},
		{"malformed date", "/api/v1/metrics/time-series?start_date=10-01-2024&end_date=2024-01-10"},
		{"unknown metric type", "/api/v1/metrics/time-series?" + rangeQuery + "&metric_types=bogus"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, _ := get(t, s, tt.path)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestHandleStatistics(t *testing.T) {
	s := newTestServer(t, map[string]string{"2024-01-10.csv": healthyDay})

	rr, body := get(t, s, "/api/v1/metrics/statistics?"+rangeQuery+"&metric_type=memory_usage")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "memory_usage", body["metric_type"])

	statistics := body["statistics"].(map[string]interface{})
	assert.Equal(t, float64(50), statistics["mean"])
	assert.Equal(t, float64(12), statistics["count"])
}

func TestHandleStatistics_NoData(t *testing.T) {
	s := newTestServer(t, map[string]string{"2024-01-10.csv": healthyDay})

	// No fan column in the fixture
	rr, _ := get(t, s, "/api/v1/metrics/statistics?"+rangeQuery+"&metric_type=fan_speed")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandleStatistics_UnknownMetric(t *testing.T) {
	s := newTestServer(t, map[string]string{"2024-01-10.csv": healthyDay})

	rr, _ := get(t, s, "/api/v1/metrics/statistics?"+rangeQuery+"&metric_type=bogus")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleSystemInfo(t *testing.T) {
	s := newTestServer(t, map[string]string{"2024-01-10.csv": healthyDay})

	rr, body := get(t, s, "/api/v1/metrics/system-info")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "2024-01-10", body["last_update"])
}

func TestHandleAnalyze(t *testing.T) {
	s := newTestServer(t, map[string]string{"2024-01-10.csv": healthyDay})

	rr, body := get(t, s, "/api/v1/insights/analyze?"+rangeQuery)
	assert.Equal(t, http.StatusOK, rr.Code)

	summary := body["summary"].(map[string]interface{})
	assert.Equal(t, float64(1), summary["total_insights"])
	assert.Equal(t, float64(1), summary["success_count"])
	assert.Equal(t, float64(0), summary["critical_count"])

	insightList := body["insights"].([]interface{})
	require.Len(t, insightList, 1)
	insight := insightList[0].(map[string]interface{})
	assert.Equal(t, "Optimal CPU Temperature", insight["title"])
	assert.NotEmpty(t, insight["id"])
}

func TestHandleHealthSummary(t *testing.T) {
	s := newTestServer(t, map[string]string{"2024-01-10.csv": healthyDay})

	rr, body := get(t, s, "/api/v1/insights/health-summary?"+rangeQuery)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "good", body["overall_health"])
	assert.Equal(t, float64(1), body["total_insights"])

	period := body["period"].(map[string]interface{})
	assert.Equal(t, "2024-01-10", period["start_date"])
}

func TestHandleRecentInsights_Validation(t *testing.T) {
	s := newTestServer(t, nil)

	for _, days := range []string{"0", "31", "abc"} {
		rr, _ := get(t, s, "/api/v1/insights/recent?days="+days)
		assert.Equal(t, http.StatusBadRequest, rr.Code, "days=%s", days)
	}
}

func TestHandleRecentInsights_Defaults(t *testing.T) {
	s := newTestServer(t, nil)

	rr, body := get(t, s, "/api/v1/insights/recent")
	assert.Equal(t, http.StatusOK, rr.Code)

	period := body["period"].(map[string]interface{})
	assert.Equal(t, float64(7), period["days"])
	assert.Equal(t, float64(0), body["showing"])
}

func TestHandleInsightsByLevel(t *testing.T) {
	s := newTestServer(t, map[string]string{"2024-01-10.csv": healthyDay})

	rr, body := get(t, s, "/api/v1/insights/by-level?"+rangeQuery+"&level=success")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, float64(1), body["count"])

	rr, body = get(t, s, "/api/v1/insights/by-level?"+rangeQuery+"&level=critical")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, float64(0), body["count"])
	assert.NotNil(t, body["insights"], "empty filter result is a list, not null")

	rr, _ = get(t, s, "/api/v1/insights/by-level?"+rangeQuery+"&level=bogus")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleInsightsByMetric(t *testing.T) {
	s := newTestServer(t, map[string]string{"2024-01-10.csv": healthyDay})

	rr, body := get(t, s, "/api/v1/insights/by-metric?"+rangeQuery+"&metric_type=cpu_temperature")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, float64(1), body["count"])

	rr, body = get(t, s, "/api/v1/insights/by-metric?"+rangeQuery+"&metric_type=disk_usage")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, float64(0), body["count"])
}

func TestHandleRecommendations(t *testing.T) {
	s := newTestServer(t, map[string]string{"2024-01-10.csv": healthyDay})

	rr, body := get(t, s, "/api/v1/insights/recommendations?"+rangeQuery)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, float64(1), body["insights_analyzed"])

	recs := body["recommendations"].([]interface{})
	require.NotEmpty(t, recs)

	seen := make(map[string]bool)
	for _, raw := range recs {
		rec := raw.(map[string]interface{})
		text := rec["recommendation"].(string)
		assert.False(t, seen[text], "recommendation %q duplicated", text)
		seen[text] = true
		assert.Equal(t, "Optimal CPU Temperature", rec["insight_title"])
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/insights/analyze", nil)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
