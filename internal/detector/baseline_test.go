package detector

import (
	"testing"

	"hwdash/internal/models"
)

func TestRemoveIndices(t *testing.T) {
	tests := []struct {
		name    string
		values  []float64
		indices []int
		want    []float64
	}{
		{
			name:    "no indices returns input unchanged",
			values:  []float64{1, 2, 3},
			indices: nil,
			want:    []float64{1, 2, 3},
		},
		{
			name:    "removes by position not value",
			values:  []float64{5, 5, 5, 9},
			indices: []int{1},
			want:    []float64{5, 5, 9},
		},
		{
			name:    "removes multiple",
			values:  []float64{1, 100, 2, 200, 3},
			indices: []int{1, 3},
			want:    []float64{1, 2, 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RemoveIndices(tt.values, tt.indices)
			if len(got) != len(tt.want) {
				t.Fatalf("RemoveIndices() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("RemoveIndices()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestRemoveIndices_ZeroAnomaliesIsIdentity(t *testing.T) {
	values := []float64{60, 61, 62}
	got := RemoveIndices(values, []int{})
	if len(got) != len(values) {
		t.Fatalf("RemoveIndices() changed length: %d -> %d", len(values), len(got))
	}
	for i := range got {
		if got[i] != values[i] {
			t.Errorf("RemoveIndices()[%d] = %v, want %v", i, got[i], values[i])
		}
	}
}

func TestBaseline_FiltersAnomalies(t *testing.T) {
	d := New(testConfig())

	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 1000}
	summary, fallback := d.Baseline(values, []int{10})

	if fallback {
		t.Error("Baseline() reported fallback with enough points remaining")
	}
	if summary["mean"] != 5.5 {
		t.Errorf("baseline mean = %v, want 5.5 after removing outlier", summary["mean"])
	}
	if summary["max"] != 10 {
		t.Errorf("baseline max = %v, want 10 after removing outlier", summary["max"])
	}
}

func TestBaseline_FallbackWhenTooFewRemain(t *testing.T) {
	d := New(testConfig())

	// Removing 3 of 11 points leaves 8, below the 10-point minimum
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 900, 901, 902}
	summary, fallback := d.Baseline(values, []int{8, 9, 10})

	if !fallback {
		t.Error("Baseline() should report fallback when removal leaves too few points")
	}
	// Fallback statistics come from the unfiltered series
	if summary["max"] != 902 {
		t.Errorf("fallback max = %v, want 902 (unfiltered)", summary["max"])
	}
}

func TestBaseline_Statistics(t *testing.T) {
	d := New(testConfig())

	summary, _ := d.Baseline([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, nil)

	want := map[string]float64{
		"mean":   5.5,
		"median": 5.5,
		"min":    1,
		"max":    10,
		"q25":    3.25,
		"q75":    7.75,
		"iqr":    4.5,
	}
	for key, expected := range want {
		if summary[key] != expected {
			t.Errorf("Baseline()[%q] = %v, want %v", key, summary[key], expected)
		}
	}
}

func TestDetectThenBaseline_Integration(t *testing.T) {
	d := New(testConfig())

	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 100, 200}
	result := d.Detect(values, timestampsFor(values), models.MetricCPUUsage)
	if len(result.Indices) == 0 {
		t.Fatal("Detect() found nothing to remove")
	}

	summary, fallback := d.Baseline(values, result.Indices)
	if fallback {
		t.Error("unexpected fallback")
	}
	if summary["max"] >= 100 {
		t.Errorf("baseline max = %v, anomalous values should be excluded", summary["max"])
	}
}
