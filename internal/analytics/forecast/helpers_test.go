package forecast

import (
	"testing"

	"github.com/attendcast/attendcast/internal/analytics"
	"github.com/attendcast/attendcast/internal/analytics/features"
)

// Common test data and helpers for all forecast tests

var testStart = analytics.MonthStart(2022, 9)

// generateLinearRecords creates monthly records with value = base + slope*i
func generateLinearRecords(id string, months int, base, slope float64) []analytics.AttendanceRecord {
	records := make([]analytics.AttendanceRecord, months)
	for i := 0; i < months; i++ {
		d := testStart.AddDate(0, i, 0)
		records[i] = analytics.AttendanceRecord{
			EntityID:          id,
			Year:              d.Year(),
			Month:             int(d.Month()),
			AvgTrueProportion: base + slope*float64(i),
		}
	}
	return records
}

// buildSeries runs the feature builder and returns the single resulting series
func buildSeries(t *testing.T, records []analytics.AttendanceRecord) analytics.EntitySeries {
	t.Helper()
	series, err := features.Build(records, features.LagLenient)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(series) != 1 {
		t.Fatalf("Expected 1 series, got %d", len(series))
	}
	return series[0]
}

// trainAndForecast runs the trainer and forecaster with the default config
func trainAndForecast(t *testing.T, series analytics.EntitySeries) (*TrainingResult, *Result) {
	t.Helper()
	cfg := DefaultConfig()
	tr, err := NewTrainer(cfg).Train(series)
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	res, err := NewForecaster(cfg.Horizon).Forecast(tr.Models, tr.LastLag, tr.LastDate)
	if err != nil {
		t.Fatalf("Forecast failed: %v", err)
	}
	return tr, res
}
