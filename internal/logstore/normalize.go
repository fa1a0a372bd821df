package logstore

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"hwdash/internal/metrics"
)

// headerMarker identifies the real header row inside the decorative
// preamble some logging tools write before it.
const headerMarker = "Time"

// timeColumnNames are the header labels recognized as the wall-clock
// column, tried in order.
var timeColumnNames = []string{"Time", "time", "timestamp"}

// timestampLayouts are the cell formats accepted for wall-clock values
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"01/02/2006 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// syntheticInterval spaces synthesized timestamps when a file carries no
// time column at all.
const syntheticInterval = time.Minute

// Normalize turns a raw table into a typed one: it promotes the real
// header row, derives the timestamp column (synthesizing one when absent),
// rewrites duplicate column labels to unique names, and coerces every
// sensor column to numeric with per-cell validity.
func Normalize(raw *RawTable, date time.Time) *Table {
	header, dataRows := splitHeader(raw.Rows)
	table := &Table{Date: date}
	if len(header) == 0 {
		return table
	}

	names := uniqueNames(header)
	timeIdx := findTimeColumn(header)

	// Build the timestamp column first; rows with unparsable wall-clock
	// cells are dropped entirely.
	var keep []int
	if timeIdx >= 0 {
		for i, row := range dataRows {
			ts, err := parseTimestamp(cell(row, timeIdx), date)
			if err != nil {
				metrics.RowsDroppedTotal.WithLabelValues("bad_timestamp").Inc()
				continue
			}
			keep = append(keep, i)
			table.Timestamps = append(table.Timestamps, ts)
		}
	} else {
		// No time-like column: synthesize timestamps from midnight on
		for i := range dataRows {
			keep = append(keep, i)
			table.Timestamps = append(table.Timestamps, date.Add(time.Duration(i)*syntheticInterval))
		}
	}

	for colIdx, source := range header {
		if colIdx == timeIdx {
			continue
		}
		col := Column{
			Name:   names[colIdx],
			Source: source,
			Values: make([]float64, len(keep)),
			Valid:  make([]bool, len(keep)),
		}
		for outIdx, rowIdx := range keep {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell(dataRows[rowIdx], colIdx)), 64)
			if err != nil {
				// A bad cell invalidates only this column's entry
				continue
			}
			col.Values[outIdx] = v
			col.Valid[outIdx] = true
		}
		table.Columns = append(table.Columns, col)
	}

	return table
}

// splitHeader locates the first row whose leading cell contains the
// header marker and promotes it; everything before it is decorative. When
// no marker row exists the first row is the header.
func splitHeader(rows [][]string) ([]string, [][]string) {
	if len(rows) == 0 {
		return nil, nil
	}
	for i, row := range rows {
		if len(row) > 0 && strings.Contains(row[0], headerMarker) {
			return row, rows[i+1:]
		}
	}
	return rows[0], rows[1:]
}

// uniqueNames rewrites duplicate header labels to distinct identifiers so
// downstream code never has to disambiguate at runtime.
func uniqueNames(header []string) []string {
	counts := make(map[string]int)
	names := make([]string, len(header))
	for i, label := range header {
		counts[label]++
		if counts[label] == 1 {
			names[i] = label
		} else {
			names[i] = fmt.Sprintf("%s #%d", label, counts[label])
		}
	}
	return names
}

// findTimeColumn returns the index of the first recognized time-like
// column label, or -1 when the header has none.
func findTimeColumn(header []string) int {
	for _, candidate := range timeColumnNames {
		for i, label := range header {
			if label == candidate {
				return i
			}
		}
	}
	return -1
}

// parseTimestamp parses a wall-clock cell, trying full layouts first and
// falling back to a bare clock time anchored to the log's date.
func parseTimestamp(s string, date time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	if clock, err := time.Parse("15:04:05", s); err == nil {
		return time.Date(date.Year(), date.Month(), date.Day(),
			clock.Hour(), clock.Minute(), clock.Second(), 0, date.Location()), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// cell returns the i-th field of a possibly ragged row
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
