package models

import "github.com/attendcast/attendcast/internal/analytics"

// ForecastRequest is the body of POST /v1/forecasts. The optional fields
// override the server's forecast configuration for this request only.
type ForecastRequest struct {
	Records   []analytics.AttendanceRecord `json:"records"`
	Horizon   int                          `json:"horizon,omitempty"`
	LagPolicy string                       `json:"lag_policy,omitempty"` // lenient, strict
	Split     string                       `json:"split,omitempty"`      // random, chronological
	Models    []string                     `json:"models,omitempty"`
}

// HasOverrides reports whether any configuration override is set
func (r *ForecastRequest) HasOverrides() bool {
	return r.Horizon != 0 || r.LagPolicy != "" || r.Split != "" || len(r.Models) > 0
}
