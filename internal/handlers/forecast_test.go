package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/attendcast/attendcast/internal/analytics"
	"github.com/attendcast/attendcast/internal/datastore"
	"github.com/attendcast/attendcast/internal/models"
	"github.com/attendcast/attendcast/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSink struct{}

func (failingSink) WriteResults(context.Context, *services.RunResult) error {
	return errors.New("table locked")
}

func (failingSink) Close() error { return nil }

func twoSchools() []analytics.AttendanceRecord {
	return append(linearRecords("A", 24, 0.80, 0.005), linearRecords("B", 24, 0.90, -0.002)...)
}

func TestHandler_RunForecast_JSON(t *testing.T) {
	app := newTestApp(t, nil)

	resp, body := postJSON(t, app, "/v1/forecasts", models.ForecastRequest{Records: twoSchools()})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var out models.ForecastResponse
	require.NoError(t, json.Unmarshal(body, &out))

	assert.NotEmpty(t, out.RunID)
	assert.Equal(t, 2, out.Entities)
	assert.Len(t, out.Errors, 6)
	assert.Len(t, out.Forecasts, 36)
	assert.Empty(t, out.Skipped)
	assert.False(t, out.Persisted)
	assert.Equal(t, "2024-09", out.Forecasts[0].Date)
}

func TestHandler_RunForecast_CSV(t *testing.T) {
	app := newTestApp(t, nil)

	resp, body := doRequest(t, app, http.MethodPost, "/v1/forecasts", "text/csv", []byte(recordsCSV(linearRecords("A", 12, 0.95, 0))))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var out models.ForecastResponse
	require.NoError(t, json.Unmarshal(body, &out))
	require.Len(t, out.Forecasts, 18)
	for _, p := range out.Forecasts {
		assert.InDelta(t, 0.95, p.Prediction, 1e-9)
	}
}

func TestHandler_RunForecast_Overrides(t *testing.T) {
	app := newTestApp(t, nil)

	resp, body := postJSON(t, app, "/v1/forecasts", models.ForecastRequest{
		Records: linearRecords("A", 12, 0.9, 0.001),
		Horizon: 3,
		Models:  []string{"OLS"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var out models.ForecastResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Len(t, out.Errors, 1)
	assert.Len(t, out.Forecasts, 3)
}

func TestHandler_RunForecast_BadRequests(t *testing.T) {
	app := newTestApp(t, nil)

	tests := []struct {
		name        string
		contentType string
		body        string
		status      int
		code        string
	}{
		{"malformed json", "application/json", `{"records":`, http.StatusBadRequest, services.CodeInvalidInput},
		{"no records", "application/json", `{"records":[]}`, http.StatusBadRequest, services.CodeInvalidInput},
		{"bad csv", "text/csv", "application_id,year\nA,2023\n", http.StatusBadRequest, services.CodeInvalidInput},
		{"bad override", "application/json", `{"records":[{"application_id":"A","year":2023,"month":9,"avg_true_proportion":0.9}],"lag_policy":"fuzzy"}`, http.StatusBadRequest, services.CodeInvalidInput},
		{"unknown model", "application/json", `{"records":[{"application_id":"A","year":2023,"month":9,"avg_true_proportion":0.9}],"models":["svm"]}`, http.StatusBadRequest, services.CodeInvalidInput},
		{"month out of range", "application/json", `{"records":[{"application_id":"A","year":2023,"month":13,"avg_true_proportion":0.9}]}`, http.StatusUnprocessableEntity, services.CodeFeatureConstruction},
		{"single record", "application/json", `{"records":[{"application_id":"A","year":2023,"month":9,"avg_true_proportion":0.9}]}`, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := doRequest(t, app, http.MethodPost, "/v1/forecasts", tt.contentType, []byte(tt.body))
			assert.Equal(t, tt.status, resp.StatusCode, string(body))
			if tt.code == "" {
				return
			}

			var errResp models.ErrorResponse
			require.NoError(t, json.Unmarshal(body, &errResp))
			assert.Equal(t, tt.code, errResp.Error.Code)
		})
	}
}

func TestHandler_RunForecast_PersistWithoutSink(t *testing.T) {
	app := newTestApp(t, nil)

	resp, _ := postJSON(t, app, "/v1/forecasts?persist=true", models.ForecastRequest{Records: twoSchools()})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandler_RunForecast_MissingProportion(t *testing.T) {
	app := newTestApp(t, nil)

	a := linearRecords("A", 12, 0.9, 0.001)
	a[4].AvgTrueProportion = math.NaN()
	b := linearRecords("B", 12, 0.8, 0.002)

	// A blank cell is a missing value too.
	table := recordsCSV(append(a, b...)) + "B,2023,9,\n"

	resp, body := doRequest(t, app, http.MethodPost, "/v1/forecasts", "text/csv", []byte(table))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var out models.ForecastResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, 2, out.Entities)
	assert.Empty(t, out.Skipped)
	assert.Len(t, out.Errors, 6)

	perSchool := map[string]int{}
	for _, p := range out.Forecasts {
		perSchool[p.EntityID]++
	}
	assert.Equal(t, map[string]int{"A": 18, "B": 18}, perSchool)
}

func TestHandler_RunForecast_Persist(t *testing.T) {
	db := filepath.Join(t.TempDir(), "out.db")
	sink, err := datastore.OpenSQLiteSink(db, "ATTENDANCE_FORECAST_MSE", "ATTENDANCE_FORECAST_PREDICTIONS")
	require.NoError(t, err)
	defer func() { _ = sink.Close() }()

	app := newTestApp(t, sink)

	resp, body := postJSON(t, app, "/v1/forecasts?persist=true", models.ForecastRequest{Records: twoSchools()})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var out models.ForecastResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.True(t, out.Persisted)

	rows, err := sink.ErrorRows(context.Background(), out.RunID)
	require.NoError(t, err)
	assert.Len(t, rows, 6)
}

func TestHandler_RunForecast_PersistFailure(t *testing.T) {
	app := newTestApp(t, failingSink{})

	resp, body := postJSON(t, app, "/v1/forecasts?persist=true", models.ForecastRequest{Records: twoSchools()})
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)

	var errResp models.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &errResp))
	assert.Equal(t, services.CodeSinkFailed, errResp.Error.Code)
	assert.Equal(t, "table locked", errResp.Error.Message)
}
