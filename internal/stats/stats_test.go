package stats

import (
	"math"
	"testing"

	"github.com/bgiacomelli/meli-compliance-monitoring/internal/models"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		p      float64
		want   float64
	}{
		{name: "empty", values: nil, p: 95, want: 0},
		{name: "single", values: []float64{10}, p: 50, want: 10},
		{name: "median interpolated", values: []float64{10, 20, 30, 40}, p: 50, want: 25},
		{name: "p0 is min", values: []float64{30, 10, 20}, p: 0, want: 10},
		{name: "p100 is max", values: []float64{30, 10, 20}, p: 100, want: 30},
		{name: "p95 of 1..100", values: seq(1, 100), p: 95, want: 95.05},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.values, tt.p)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.values, tt.p, got, tt.want)
			}
		})
	}
}

func TestPercentile_Monotonic(t *testing.T) {
	values := []float64{4, 8, 15, 16, 23, 42}
	prev := math.Inf(-1)
	for p := 0.0; p <= 100; p += 5 {
		got := Percentile(values, p)
		if got < prev {
			t.Fatalf("Percentile not monotonic: p=%v gave %v after %v", p, got, prev)
		}
		prev = got
	}
}

func TestPercentile_DoesNotMutateInput(t *testing.T) {
	values := []float64{3, 1, 2}
	Percentile(values, 50)
	if values[0] != 3 || values[1] != 1 || values[2] != 2 {
		t.Errorf("input mutated: %v", values)
	}
}

func TestMean(t *testing.T) {
	if got := Mean(nil); got != 0 {
		t.Errorf("Mean(nil) = %v, want 0", got)
	}
	if got := Mean([]float64{1, 2, 2}); got != 1.67 {
		t.Errorf("Mean = %v, want 1.67 (2dp rounding)", got)
	}
}

func TestSummarize(t *testing.T) {
	rows := []models.NormalizedRow{
		{Status: "open", TypeOfAlert: "MISSING_INVOICE", ImpactLevel: "high",
			AssignedToName: "Ana", MonetaryExposure: f(100)},
		{Status: "open", TypeOfAlert: "WRONG_TAX_RATE", ImpactLevel: "low",
			MonetaryExposure: f(300)},
		{Status: "closed", TypeOfAlert: "MISSING_INVOICE", ImpactLevel: "high",
			AssignedToName: "Bruno", ResolutionDate: "2024-03-10T00:00:00Z"},
		// Malformed: closed but missing its resolution date.
		{Status: "closed", TypeOfAlert: "MISSING_INVOICE", ImpactLevel: ""},
	}

	s := Summarize(rows)

	if s.TotalAlerts != 4 {
		t.Errorf("TotalAlerts = %d, want 4", s.TotalAlerts)
	}
	if s.StatusDistribution["open"] != 2 || s.StatusDistribution["closed"] != 2 {
		t.Errorf("StatusDistribution = %v", s.StatusDistribution)
	}

	// Status counts must sum to the total.
	sum := 0
	for _, c := range s.StatusDistribution {
		sum += c
	}
	if sum != s.TotalAlerts {
		t.Errorf("status counts sum to %d, want %d", sum, s.TotalAlerts)
	}

	if s.ImpactDistribution[""] != 1 {
		t.Errorf("missing impact not counted under empty key: %v", s.ImpactDistribution)
	}
	if s.AssignedPresent != 2 || s.AssignedMissing != 2 {
		t.Errorf("assigned = %d/%d, want 2/2", s.AssignedPresent, s.AssignedMissing)
	}
	if s.UnresolvedCount != 3 {
		t.Errorf("UnresolvedCount = %d, want 3 (2 open + 1 malformed closed)", s.UnresolvedCount)
	}
	if s.MonetaryExposureMean != 200 {
		t.Errorf("mean = %v, want 200 over non-null exposures", s.MonetaryExposureMean)
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	if s.TotalAlerts != 0 || s.MonetaryExposureMean != 0 || s.MonetaryExposureP95 != 0 {
		t.Errorf("empty summary = %+v", s)
	}
}

func f(v float64) *float64 { return &v }

func seq(from, to int) []float64 {
	out := make([]float64, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, float64(i))
	}
	return out
}
