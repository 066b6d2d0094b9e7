package datastore

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/attendcast/attendcast/internal/analytics"
	"github.com/attendcast/attendcast/internal/services"
)

// Column names of the attendance table
const (
	ColApplicationID     = "application_id"
	ColYear              = "year"
	ColMonth             = "month"
	ColAvgTrueProportion = "avg_true_proportion"
)

var (
	errorHeader    = []string{"application_id", "model", "mse"}
	forecastHeader = []string{"application_id", "date", "model", "prediction", "mse"}
)

// CSVSource reads the attendance table from a CSV file with a header row
type CSVSource struct {
	path string
}

// NewCSVSource creates a CSVSource
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

// ReadRecords reads every record of the file
func (s *CSVSource) ReadRecords(ctx context.Context) ([]analytics.AttendanceRecord, error) {
	file, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", s.path, err)
	}
	defer func() { _ = file.Close() }()

	return ParseRecordsCSV(bufio.NewReader(file))
}

// Close does nothing
func (s *CSVSource) Close() error { return nil }

// ParseRecordsCSV parses an attendance table. Column names are matched case
// insensitively and may appear in any order; extra columns are ignored.
func ParseRecordsCSV(r io.Reader) ([]analytics.AttendanceRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("empty attendance table")
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	idx := map[string]int{}
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	cols := make([]int, 4)
	for i, name := range []string{ColApplicationID, ColYear, ColMonth, ColAvgTrueProportion} {
		pos, ok := idx[name]
		if !ok {
			return nil, fmt.Errorf("missing column %s", name)
		}
		cols[i] = pos
	}

	var records []analytics.AttendanceRecord
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		year, err := strconv.Atoi(strings.TrimSpace(row[cols[1]]))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid year %q", line, row[cols[1]])
		}
		month, err := strconv.Atoi(strings.TrimSpace(row[cols[2]]))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid month %q", line, row[cols[2]])
		}
		value, err := parseProportion(row[cols[3]])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid proportion %q", line, row[cols[3]])
		}

		records = append(records, analytics.AttendanceRecord{
			EntityID:          strings.TrimSpace(row[cols[0]]),
			Year:              year,
			Month:             month,
			AvgTrueProportion: value,
		})
	}

	return records, nil
}

// parseProportion parses a proportion cell. An empty, NA or null cell is a
// missing value and yields NaN.
func parseProportion(cell string) (float64, error) {
	cell = strings.TrimSpace(cell)
	switch strings.ToLower(cell) {
	case "", "na", "null":
		return math.NaN(), nil
	}
	return strconv.ParseFloat(cell, 64)
}

// CSVSink writes the error and forecast tables to two CSV files,
// replacing their previous contents.
type CSVSink struct {
	errorsPath    string
	forecastsPath string
}

// NewCSVSink creates a CSVSink
func NewCSVSink(errorsPath, forecastsPath string) *CSVSink {
	return &CSVSink{errorsPath: errorsPath, forecastsPath: forecastsPath}
}

// WriteResults writes both tables
func (s *CSVSink) WriteResults(ctx context.Context, result *services.RunResult) error {
	errorRows := make([][]string, 0, len(result.Errors))
	for _, e := range result.Errors {
		errorRows = append(errorRows, []string{e.EntityID, e.Model, formatFloat(e.MSE)})
	}
	if err := writeCSVFile(s.errorsPath, errorHeader, errorRows); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	forecastRows := make([][]string, 0, len(result.Forecasts))
	for _, p := range result.Forecasts {
		forecastRows = append(forecastRows, []string{
			p.EntityID, p.Date, p.Model, formatFloat(p.Prediction), formatFloat(p.MSE),
		})
	}
	return writeCSVFile(s.forecastsPath, forecastHeader, forecastRows)
}

// Close does nothing
func (s *CSVSink) Close() error { return nil }

// writeCSVFile writes to a temporary file and renames it into place
func writeCSVFile(path string, header []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	bufferedWriter := bufio.NewWriter(tmp)
	csvWriter := csv.NewWriter(bufferedWriter)

	if err := csvWriter.Write(header); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := csvWriter.WriteAll(rows); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := bufferedWriter.Flush(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
