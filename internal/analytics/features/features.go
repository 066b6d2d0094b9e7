// Package features turns the raw monthly attendance table into per-school
// series carrying a single lagged predictor.
package features

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/attendcast/attendcast/internal/analytics"
)

// LagPolicy controls how a gap in a school's monthly history affects Lag1.
type LagPolicy string

const (
	// LagLenient uses the previous available record as the lag even when
	// months are missing in between.
	LagLenient LagPolicy = "lenient"
	// LagStrict only accepts a lag from the immediately preceding calendar
	// month; records after a gap are dropped.
	LagStrict LagPolicy = "strict"
)

// ParseLagPolicy parses a policy name. An empty name means LagLenient.
func ParseLagPolicy(name string) (LagPolicy, error) {
	switch LagPolicy(strings.ToLower(strings.TrimSpace(name))) {
	case "", LagLenient:
		return LagLenient, nil
	case LagStrict:
		return LagStrict, nil
	default:
		return "", fmt.Errorf("unknown lag policy: %s (supported: lenient, strict)", name)
	}
}

// Validate checks a single record for malformed fields. A missing
// proportion is not malformed; Build drops it instead.
func Validate(r analytics.AttendanceRecord) error {
	if strings.TrimSpace(r.EntityID) == "" {
		return fmt.Errorf("%w: empty application id", analytics.ErrFeatureConstruction)
	}
	if r.Month < 1 || r.Month > 12 {
		return fmt.Errorf("%w: application %s: month %d out of range",
			analytics.ErrFeatureConstruction, r.EntityID, r.Month)
	}
	if r.Year < 1 || r.Year > 9999 {
		return fmt.Errorf("%w: application %s: year %d out of range",
			analytics.ErrFeatureConstruction, r.EntityID, r.Year)
	}
	return nil
}

// missing reports whether a proportion is absent (NaN) or unusable (Inf)
func missing(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}

// Build sorts the records by (application, month), attaches the previous
// month's proportion as Lag1 and drops every record without a valid lag.
// A record with a missing proportion is dropped together with the record
// that would take it as its lag.
// Series are returned in ascending application id order; schools left with
// no lagged record are omitted.
func Build(records []analytics.AttendanceRecord, policy LagPolicy) ([]analytics.EntitySeries, error) {
	for _, r := range records {
		if err := Validate(r); err != nil {
			return nil, err
		}
	}

	sorted := make([]analytics.AttendanceRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].EntityID != sorted[j].EntityID {
			return sorted[i].EntityID < sorted[j].EntityID
		}
		return sorted[i].Date().Before(sorted[j].Date())
	})

	var series []analytics.EntitySeries
	for start := 0; start < len(sorted); {
		end := start + 1
		for end < len(sorted) && sorted[end].EntityID == sorted[start].EntityID {
			end++
		}

		if s := lagGroup(sorted[start:end], policy); s.Len() > 0 {
			series = append(series, s)
		}
		start = end
	}

	return series, nil
}

// lagGroup builds the lagged series of one school's sorted records
func lagGroup(group []analytics.AttendanceRecord, policy LagPolicy) analytics.EntitySeries {
	s := analytics.EntitySeries{
		EntityID: group[0].EntityID,
		Records:  make([]analytics.LaggedRecord, 0, len(group)-1),
	}

	for i := 1; i < len(group); i++ {
		prev, cur := group[i-1], group[i]
		if missing(prev.AvgTrueProportion) || missing(cur.AvgTrueProportion) {
			continue
		}
		if policy == LagStrict && !analytics.NextMonth(prev.Date()).Equal(cur.Date()) {
			continue
		}
		s.Records = append(s.Records, analytics.LaggedRecord{
			Date:  cur.Date(),
			Value: cur.AvgTrueProportion,
			Lag1:  prev.AvgTrueProportion,
		})
	}

	return s
}
