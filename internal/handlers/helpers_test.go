package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/attendcast/attendcast/internal/analytics"
	"github.com/attendcast/attendcast/internal/config"
	"github.com/attendcast/attendcast/internal/datastore"
	"github.com/attendcast/attendcast/internal/logging"
	"github.com/attendcast/attendcast/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, sink datastore.Sink) *fiber.App {
	t.Helper()

	cfg := config.DefaultConfig().Forecast
	opts, err := services.OptionsFromConfig(cfg)
	require.NoError(t, err)

	logger := logging.Nop()
	h := New(logger, cfg, services.NewForecastService(logger, opts), sink)

	app := fiber.New()
	app.Get("/health", h.Health)
	app.Get("/v1/models", h.ListModels)
	app.Post("/v1/forecasts", h.RunForecast)
	app.Use(h.NotFound)
	return app
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

func recordsCSV(records []analytics.AttendanceRecord) string {
	var b strings.Builder
	b.WriteString("application_id,year,month,avg_true_proportion\n")
	for _, r := range records {
		fmt.Fprintf(&b, "%s,%d,%d,%g\n", r.EntityID, r.Year, r.Month, r.AvgTrueProportion)
	}
	return b.String()
}

func doRequest(t *testing.T, app *fiber.App, method, target, contentType string, body []byte) (*http.Response, []byte) {
	t.Helper()

	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set(fiber.HeaderContentType, contentType)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func postJSON(t *testing.T, app *fiber.App, target string, payload interface{}) (*http.Response, []byte) {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	return doRequest(t, app, http.MethodPost, target, fiber.MIMEApplicationJSON, body)
}
