package datastore

import (
	"context"
	"testing"

	"github.com/attendcast/attendcast/internal/analytics"
	"github.com/attendcast/attendcast/internal/analytics/forecast"
	"github.com/attendcast/attendcast/internal/logging"
	"github.com/attendcast/attendcast/internal/services"
	"github.com/stretchr/testify/require"
)

// sampleResult is a hand-built run with two schools
func sampleResult() *services.RunResult {
	res := &services.RunResult{RunID: "run-1", Entities: 2}
	for _, id := range []string{"A", "B"} {
		for _, model := range forecast.DefaultKinds {
			res.Errors = append(res.Errors, forecast.ErrorRecord{EntityID: id, Model: model, MSE: 0.0004})
			for _, date := range []string{"2024-09", "2024-10"} {
				res.Forecasts = append(res.Forecasts, forecast.ForecastPoint{
					EntityID:   id,
					Date:       date,
					Model:      model,
					Prediction: 0.93,
					MSE:        0.0004,
				})
			}
		}
	}
	return res
}

func linearRecords(id string, months int, base, slope float64) []analytics.AttendanceRecord {
	records := make([]analytics.AttendanceRecord, months)
	for i := range records {
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

// runForecast runs the default pipeline over records
func runForecast(t *testing.T, records []analytics.AttendanceRecord) *services.RunResult {
	t.Helper()
	svc := services.NewForecastService(logging.Nop(), services.DefaultForecastOptions())
	res, err := svc.Run(context.Background(), records)
	require.NoError(t, err)
	return res
}

func floatPtr(v float64) *float64 {
	return &v
}
