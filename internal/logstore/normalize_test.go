package logstore

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNormalize_HeaderDetection(t *testing.T) {
	raw := &RawTable{
		Rows: [][]string{
			{"OpenHardwareMonitor v0.9.5"},
			{"", "/amdcpu/0/load/0", "/ram/load/0"},
			{"Time", "CPU Total", "Memory"},
			{"2024-01-10 10:00:00", "42.5", "55.1"},
			{"2024-01-10 10:01:00", "43.0", "55.3"},
		},
	}

	table := Normalize(raw, day(2024, 1, 10))

	if table.Len() != 2 {
		t.Fatalf("Len() = %d, want 2 (decorative rows dropped)", table.Len())
	}
	if len(table.Columns) != 2 {
		t.Fatalf("columns = %d, want 2", len(table.Columns))
	}

	col := table.ColumnBySource("CPU Total")
	if col == nil {
		t.Fatal("CPU Total column not found")
	}
	if !col.Valid[0] || col.Values[0] != 42.5 {
		t.Errorf("CPU Total[0] = %v (valid=%v), want 42.5", col.Values[0], col.Valid[0])
	}

	wantTS := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)
	if !table.Timestamps[0].Equal(wantTS) {
		t.Errorf("Timestamps[0] = %v, want %v", table.Timestamps[0], wantTS)
	}
}

func TestNormalize_NoMarkerRow(t *testing.T) {
	// Without a marker the first row is the header
	raw := &RawTable{
		Rows: [][]string{
			{"timestamp", "GPU Core"},
			{"2024-01-10 09:00:00", "61.0"},
		},
	}

	table := Normalize(raw, day(2024, 1, 10))
	if table.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", table.Len())
	}
	if table.ColumnBySource("GPU Core") == nil {
		t.Error("GPU Core column not found")
	}
}

func TestNormalize_DuplicateColumns(t *testing.T) {
	raw := &RawTable{
		Rows: [][]string{
			{"Time", "CPU Total", "CPU Total", "Memory"},
			{"2024-01-10 10:00:00", "10.0", "99.0", "50.0"},
		},
	}

	table := Normalize(raw, day(2024, 1, 10))

	if len(table.Columns) != 3 {
		t.Fatalf("columns = %d, want 3", len(table.Columns))
	}
	if table.Columns[0].Name != "CPU Total" || table.Columns[1].Name != "CPU Total #2" {
		t.Errorf("duplicate names = %q, %q; want unique identifiers",
			table.Columns[0].Name, table.Columns[1].Name)
	}

	// Extraction by source label must hit the first occurrence
	col := table.ColumnBySource("CPU Total")
	if col == nil || col.Values[0] != 10.0 {
		t.Errorf("ColumnBySource returned wrong occurrence: %+v", col)
	}
}

func TestNormalize_BadTimestampDropsRow(t *testing.T) {
	raw := &RawTable{
		Rows: [][]string{
			{"Time", "CPU Total"},
			{"2024-01-10 10:00:00", "40.0"},
			{"not-a-time", "41.0"},
			{"2024-01-10 10:02:00", "42.0"},
		},
	}

	table := Normalize(raw, day(2024, 1, 10))

	if table.Len() != 2 {
		t.Fatalf("Len() = %d, want 2 (bad timestamp row dropped)", table.Len())
	}
	col := table.ColumnBySource("CPU Total")
	if col.Values[1] != 42.0 {
		t.Errorf("values after drop = %v, want [40 42]", col.Values)
	}
}

func TestNormalize_BadCellInvalidatesOnlyItsColumn(t *testing.T) {
	raw := &RawTable{
		Rows: [][]string{
			{"Time", "CPU Total", "Memory"},
			{"2024-01-10 10:00:00", "N/A", "51.5"},
		},
	}

	table := Normalize(raw, day(2024, 1, 10))

	cpu := table.ColumnBySource("CPU Total")
	mem := table.ColumnBySource("Memory")
	if cpu.Valid[0] {
		t.Error("unparsable cell should be invalid")
	}
	if !mem.Valid[0] || mem.Values[0] != 51.5 {
		t.Error("sibling column should keep its valid value")
	}
}

func TestNormalize_SynthesizedTimestamps(t *testing.T) {
	raw := &RawTable{
		Rows: [][]string{
			{"CPU Total", "Memory"},
			{"40.0", "50.0"},
			{"41.0", "51.0"},
			{"42.0", "52.0"},
		},
	}

	date := day(2024, 1, 10)
	table := Normalize(raw, date)

	if table.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", table.Len())
	}
	if !table.Timestamps[0].Equal(date) {
		t.Errorf("Timestamps[0] = %v, want midnight", table.Timestamps[0])
	}
	if !table.Timestamps[2].Equal(date.Add(2 * time.Minute)) {
		t.Errorf("Timestamps[2] = %v, want midnight+2m", table.Timestamps[2])
	}
}

func TestNormalize_ClockOnlyTimestamps(t *testing.T) {
	raw := &RawTable{
		Rows: [][]string{
			{"Time", "CPU Total"},
			{"13:45:10", "40.0"},
		},
	}

	table := Normalize(raw, day(2024, 1, 10))
	want := time.Date(2024, 1, 10, 13, 45, 10, 0, time.UTC)
	if table.Len() != 1 || !table.Timestamps[0].Equal(want) {
		t.Errorf("clock-only timestamp = %v, want %v", table.Timestamps[0], want)
	}
}

func TestNormalize_Empty(t *testing.T) {
	table := Normalize(&RawTable{}, day(2024, 1, 10))
	if table.Len() != 0 || len(table.Columns) != 0 {
		t.Errorf("Normalize(empty) = %d rows %d cols, want empty table", table.Len(), len(table.Columns))
	}
}
