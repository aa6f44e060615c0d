// Package stats computes descriptive statistics over normalized alert
// rows. Everything here is pure: no I/O, no mutation of inputs.
package stats

import (
	"math"
	"sort"

	"github.com/bgiacomelli/meli-compliance-monitoring/internal/models"
)

// Summary aggregates one extraction run. Distribution maps key on the
// raw field value; rows missing a value count under "".
type Summary struct {
	TotalAlerts          int            `json:"total_alerts"`
	StatusDistribution   map[string]int `json:"status_distribution"`
	TypeDistribution     map[string]int `json:"type_distribution"`
	ImpactDistribution   map[string]int `json:"impact_distribution"`
	AssignedPresent      int            `json:"assigned_present"`
	AssignedMissing      int            `json:"assigned_missing"`
	UnresolvedCount      int            `json:"unresolved_count"`
	MonetaryExposureMean float64        `json:"monetary_exposure_mean"`
	MonetaryExposureP95  float64        `json:"monetary_exposure_p95"`
}

// Summarize builds the summary for a row set. Status distribution
// values always sum to TotalAlerts.
func Summarize(rows []models.NormalizedRow) Summary {
	s := Summary{
		TotalAlerts:        len(rows),
		StatusDistribution: make(map[string]int),
		TypeDistribution:   make(map[string]int),
		ImpactDistribution: make(map[string]int),
	}

	var exposures []float64
	for i := range rows {
		r := &rows[i]
		s.StatusDistribution[r.Status]++
		s.TypeDistribution[r.TypeOfAlert]++
		s.ImpactDistribution[r.ImpactLevel]++

		if r.AssignedToName != "" {
			s.AssignedPresent++
		}
		if r.ResolutionDate == "" {
			s.UnresolvedCount++
		}
		if r.MonetaryExposure != nil {
			exposures = append(exposures, *r.MonetaryExposure)
		}
	}
	s.AssignedMissing = s.TotalAlerts - s.AssignedPresent
	s.MonetaryExposureMean = Mean(exposures)
	s.MonetaryExposureP95 = Percentile(exposures, 95)

	return s
}

// Mean returns the arithmetic mean rounded to 2 decimal places, or 0
// for an empty input.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return math.Round(sum/float64(len(values))*100) / 100
}

// Percentile returns the p-th percentile of values using linear
// interpolation between adjacent ranks, or 0 for an empty input. The
// input slice is not modified.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	xs := make([]float64, len(values))
	copy(xs, values)
	sort.Float64s(xs)

	k := float64(len(xs)-1) * (p / 100)
	f := math.Floor(k)
	c := math.Ceil(k)
	if f == c {
		return xs[int(k)]
	}
	return xs[int(f)]*(c-k) + xs[int(c)]*(k-f)
}
