package logstore

import "time"

// RawTable holds one log file's rows exactly as read, before header
// detection and type coercion.
type RawTable struct {
	Date      time.Time
	Rows      [][]string
	Truncated bool // row cap was hit while reading
}

// Column is one named, homogeneous numeric column. Duplicate header labels
// are rewritten to unique names at normalization time; Source keeps the
// original label so extraction can still target the first occurrence.
type Column struct {
	Name   string
	Source string
	Values []float64
	Valid  []bool
}

// Table is the normalized form of one date's log: an ordered list of named
// numeric columns sharing a single timestamp column.
type Table struct {
	Date       time.Time
	Timestamps []time.Time
	Columns    []Column
}

// Len returns the number of rows in the table
func (t *Table) Len() int {
	return len(t.Timestamps)
}

// ColumnBySource returns the first column carrying the given original
// header label, or nil if the table has none.
func (t *Table) ColumnBySource(source string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Source == source {
			return &t.Columns[i]
		}
	}
	return nil
}

// SourceNames returns the original header labels in column order,
// without duplicates.
func (t *Table) SourceNames() []string {
	seen := make(map[string]bool)
	var names []string
	for i := range t.Columns {
		if !seen[t.Columns[i].Source] {
			seen[t.Columns[i].Source] = true
			names = append(names, t.Columns[i].Source)
		}
	}
	return names
}
