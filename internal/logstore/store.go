// Package logstore discovers and loads the daily hardware log files and
// normalizes them into typed tables. Missing and oversized files are
// reported through sentinel errors so callers can skip the affected date
// without failing a whole period.
package logstore

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"hwdash/internal/config"
	"hwdash/internal/metrics"
)

// DateLayout is the calendar-date format used in log filenames
const DateLayout = "2006-01-02"

const logExt = ".csv"

var (
	// ErrMissingData indicates no log file exists for the requested date
	ErrMissingData = errors.New("no log file for date")

	// ErrOversizedFile indicates the log file exceeds the configured size cap
	ErrOversizedFile = errors.New("log file exceeds size cap")
)

// Store reads daily log files from a single directory
type Store struct {
	dir         string
	prefix      string
	maxFileSize int64
	maxRows     int
	chunkRows   int
}

// New creates a store over the configured log directory
func New(cfg config.Data) *Store {
	s := &Store{
		dir:         cfg.Directory,
		prefix:      cfg.FilePrefix,
		maxFileSize: int64(cfg.MaxFileSizeMB) * 1024 * 1024,
		maxRows:     cfg.MaxRowsPerFile,
		chunkRows:   cfg.ChunkSize,
	}
	// A non-positive chunk size would keep LoadRaw's read loop from ever
	// advancing; fall back to reading the whole row budget at once.
	if s.chunkRows <= 0 {
		s.chunkRows = s.maxRows
	}
	return s
}

// ListAvailableDates scans the log directory for dated filenames and
// returns the parsed dates sorted ascending, deduplicated. Filenames
// whose date token does not parse are ignored.
func (s *Store) ListAvailableDates() ([]time.Time, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read log directory %s: %w", s.dir, err)
	}

	seen := make(map[time.Time]bool)
	var dates []time.Time
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		date, ok := parseFilenameDate(entry.Name())
		if !ok {
			continue
		}
		if !seen[date] {
			seen[date] = true
			dates = append(dates, date)
		}
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates, nil
}

// parseFilenameDate extracts the trailing ISO date token from a log
// filename of the form <date>.csv or <prefix>-<date>.csv.
func parseFilenameDate(name string) (time.Time, bool) {
	if !strings.EqualFold(filepath.Ext(name), logExt) {
		return time.Time{}, false
	}
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	if len(stem) < len(DateLayout) {
		return time.Time{}, false
	}
	token := stem[len(stem)-len(DateLayout):]
	// A prefixed name must separate the prefix from the date with a dash
	if len(stem) > len(DateLayout) && stem[len(stem)-len(DateLayout)-1] != '-' {
		return time.Time{}, false
	}
	date, err := time.Parse(DateLayout, token)
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}

// resolvePath finds the log file for a date, trying the bare name first
// and then the prefixed form.
func (s *Store) resolvePath(date time.Time) (string, os.FileInfo, error) {
	names := []string{date.Format(DateLayout) + logExt}
	if s.prefix != "" {
		names = append(names, s.prefix+"-"+date.Format(DateLayout)+logExt)
	}

	for _, name := range names {
		path := filepath.Join(s.dir, name)
		info, err := os.Stat(path)
		if err == nil {
			return path, info, nil
		}
		if !os.IsNotExist(err) {
			return "", nil, fmt.Errorf("failed to stat %s: %w", path, err)
		}
	}
	return "", nil, fmt.Errorf("%w: %s", ErrMissingData, date.Format(DateLayout))
}

// LoadRaw reads the log file for a date, enforcing the file-size cap and
// the per-file row cap. Large files are read in bounded chunks of rows so
// memory stays proportional to the cap rather than the file size.
func (s *Store) LoadRaw(date time.Time) (*RawTable, error) {
	path, info, err := s.resolvePath(date)
	if err != nil {
		if errors.Is(err, ErrMissingData) {
			metrics.RecordFileLoad("missing")
		}
		return nil, err
	}

	if s.maxFileSize > 0 && info.Size() > s.maxFileSize {
		metrics.RecordFileLoad("oversized")
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrOversizedFile, path, info.Size())
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // log rows are ragged

	table := &RawTable{Date: date}
	for len(table.Rows) < s.maxRows {
		chunk := s.chunkRows
		if remaining := s.maxRows - len(table.Rows); remaining < chunk {
			chunk = remaining
		}
		n, err := readChunk(reader, table, chunk)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		if n < chunk {
			metrics.RecordFileLoad("loaded")
			metrics.LogRowsTotal.Add(float64(len(table.Rows)))
			return table, nil
		}
	}

	// Row cap reached; anything still unread is skipped
	if _, err := reader.Read(); err != io.EOF {
		table.Truncated = true
		log.Printf("Warning: row cap (%d) reached for %s, remaining rows skipped", s.maxRows, path)
	}
	metrics.RecordFileLoad("loaded")
	metrics.LogRowsTotal.Add(float64(len(table.Rows)))
	return table, nil
}

// readChunk appends up to limit records to the table and reports how many
// were read. Unparsable CSV lines are skipped rather than failing the file.
func readChunk(reader *csv.Reader, table *RawTable, limit int) (int, error) {
	read := 0
	for read < limit {
		record, err := reader.Read()
		if err == io.EOF {
			return read, nil
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				metrics.RowsDroppedTotal.WithLabelValues("malformed_row").Inc()
				continue
			}
			return read, err
		}
		table.Rows = append(table.Rows, record)
		read++
	}
	return read, nil
}

// Load reads and normalizes the log file for a date in one step
func (s *Store) Load(date time.Time) (*Table, error) {
	raw, err := s.LoadRaw(date)
	if err != nil {
		return nil, err
	}
	return Normalize(raw, date), nil
}
