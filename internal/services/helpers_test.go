package services

import (
	"bytes"
	"testing"

	"github.com/attendcast/attendcast/internal/analytics"
	"github.com/attendcast/attendcast/internal/logging"
	"github.com/rs/zerolog"
)

// monthlyRecords generates a linear monthly series starting September 2022
func monthlyRecords(id string, months int, base, slope float64) []analytics.AttendanceRecord {
	records := make([]analytics.AttendanceRecord, months)
	for i := 0; i < months; i++ {
		date := analytics.MonthStart(2022, 9).AddDate(0, i, 0)
		records[i] = analytics.AttendanceRecord{
			EntityID:          id,
			Year:              date.Year(),
			Month:             int(date.Month()),
			AvgTrueProportion: base + slope*float64(i),
		}
	}
	return records
}

func newTestLogger(t *testing.T) (*logging.Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	return logging.NewWithWriter(&buf, zerolog.DebugLevel), &buf
}

func newTestService(t *testing.T) *ForecastService {
	t.Helper()
	logger, _ := newTestLogger(t)
	return NewForecastService(logger, DefaultForecastOptions())
}
