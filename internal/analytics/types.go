// Package analytics provides the common attendance types shared by the
// feature builder, the regressors and the forecaster.
package analytics

import (
	"time"
)

// MonthLayout is the label format used for forecast months (YYYY-MM).
const MonthLayout = "2006-01"

// AttendanceRecord is one row of the monthly attendance table: the average
// proportion of sessions attended at one school for one calendar month.
type AttendanceRecord struct {
	EntityID          string  `json:"application_id"`
	Year              int     `json:"year"`
	Month             int     `json:"month"`
	AvgTrueProportion float64 `json:"avg_true_proportion"`
}

// Date returns the first day of the record's month in UTC.
func (r AttendanceRecord) Date() time.Time {
	return MonthStart(r.Year, time.Month(r.Month))
}

// LaggedRecord is an attendance record paired with the previous month's
// proportion, which is the single predictor used by every model.
type LaggedRecord struct {
	Date  time.Time
	Value float64
	Lag1  float64
}

// EntitySeries is the time-ordered, lagged series of one school.
type EntitySeries struct {
	EntityID string
	Records  []LaggedRecord
}

// Len returns the number of lagged records
func (s EntitySeries) Len() int {
	return len(s.Records)
}

// Lags extracts the predictor column
func (s EntitySeries) Lags() []float64 {
	lags := make([]float64, len(s.Records))
	for i, r := range s.Records {
		lags[i] = r.Lag1
	}
	return lags
}

// Values extracts the target column
func (s EntitySeries) Values() []float64 {
	values := make([]float64, len(s.Records))
	for i, r := range s.Records {
		values[i] = r.Value
	}
	return values
}

// Last returns the chronologically last record. It panics on an empty series.
func (s EntitySeries) Last() LaggedRecord {
	return s.Records[len(s.Records)-1]
}

// MonthStart returns midnight UTC on the first day of the given month.
func MonthStart(year int, month time.Month) time.Time {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
}

// NextMonth advances a month-start date by one calendar month.
func NextMonth(t time.Time) time.Time {
	return MonthStart(t.Year(), t.Month()).AddDate(0, 1, 0)
}

// MonthLabel formats a date as YYYY-MM
func MonthLabel(t time.Time) string {
	return t.Format(MonthLayout)
}
