package services

import (
	"errors"

	"github.com/attendcast/attendcast/internal/analytics"
	"github.com/attendcast/attendcast/internal/analytics/forecast"
)

// Skip codes reported for schools that produced no rows
const (
	SkipInsufficientData = "INSUFFICIENT_DATA"
	SkipModelFit         = "MODEL_FIT"
	SkipInternal         = "INTERNAL"
)

// EntityResult is the outcome of training and forecasting one school.
// Err is set when the school produced no rows.
type EntityResult struct {
	EntityID  string
	Errors    []forecast.ErrorRecord
	Forecasts []forecast.ForecastPoint
	Failures  []forecast.ModelFailure // model kinds skipped for this school
	Err       error
}

// SkippedEntity describes a school left out of the output tables
type SkippedEntity struct {
	EntityID string `json:"application_id"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

// SkippedModel describes a model kind left out for one school
type SkippedModel struct {
	EntityID string `json:"application_id"`
	Model    string `json:"model"`
	Message  string `json:"message"`
}

// Accumulator collects the error and forecast tables of one run in the
// order schools are added. It is owned by a single run loop.
type Accumulator struct {
	errors        []forecast.ErrorRecord
	forecasts     []forecast.ForecastPoint
	skipped       []SkippedEntity
	skippedModels []SkippedModel
	entities      int
}

// NewAccumulator creates an Accumulator whose tables are empty, not nil
func NewAccumulator() *Accumulator {
	return &Accumulator{
		errors:    []forecast.ErrorRecord{},
		forecasts: []forecast.ForecastPoint{},
		skipped:   []SkippedEntity{},
	}
}

// Add appends one school's outcome
func (a *Accumulator) Add(r EntityResult) {
	a.entities++

	for _, f := range r.Failures {
		a.skippedModels = append(a.skippedModels, SkippedModel{
			EntityID: r.EntityID,
			Model:    f.Kind,
			Message:  f.Err.Error(),
		})
	}

	if r.Err != nil {
		a.skipped = append(a.skipped, SkippedEntity{
			EntityID: r.EntityID,
			Code:     skipCode(r.Err),
			Message:  r.Err.Error(),
		})
		return
	}

	a.errors = append(a.errors, r.Errors...)
	a.forecasts = append(a.forecasts, r.Forecasts...)
}

// Errors returns the error table
func (a *Accumulator) Errors() []forecast.ErrorRecord { return a.errors }

// Forecasts returns the forecast table
func (a *Accumulator) Forecasts() []forecast.ForecastPoint { return a.forecasts }

// Skipped returns the schools that produced no rows
func (a *Accumulator) Skipped() []SkippedEntity { return a.skipped }

// SkippedModels returns the model kinds dropped for individual schools
func (a *Accumulator) SkippedModels() []SkippedModel { return a.skippedModels }

// Entities returns the number of schools added
func (a *Accumulator) Entities() int { return a.entities }

func skipCode(err error) string {
	switch {
	case errors.Is(err, analytics.ErrInsufficientData):
		return SkipInsufficientData
	case errors.Is(err, analytics.ErrModelFit):
		return SkipModelFit
	default:
		return SkipInternal
	}
}
