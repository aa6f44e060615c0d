package source

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"github.com/bgiacomelli/meli-compliance-monitoring/internal/models"
)

// Simulator vocabulary. Mirrors what the real compliance upstream emits.
var (
	simTypes         = []string{"MISSING_INVOICE", "WRONG_TAX_RATE", "INVOICE_AMOUNT_MISMATCH", "TAX_JURISDICTION_ERROR"}
	simImpacts       = []string{"low", "medium", "high", "critical"}
	simImpactWeights = []int{4, 3, 2, 1}
	simCategories    = []string{"Electronics", "Books", "Home", "Games", "Beauty"}
	simTaxCodes      = []string{"ICMS", "IPI", "PIS", "COFINS", "ISS"}
	simJurisdictions = []string{"BR-SP", "BR-RJ", "BR-MG", "BR-RS", "BR-PR"}
	simSLAHours      = []int{24, 48, 72, 168}
	simAssignees     = []string{"Ana", "Bruno", "Carla", "Diego", "Eva", "Felipe"}
)

// simTotal is the minimum number of alerts the simulated upstream
// claims to hold, so pagination always has enough to serve.
const simTotal = 200

// Simulator is a deterministic in-process stand-in for the compliance
// upstream. Listing is keyed by (seed, status) and detail by (seed, id):
// every call builds its own generator from the derived key, so repeated
// or out-of-order calls for the same entity produce identical payloads.
type Simulator struct {
	seed int64
	now  func() time.Time
}

// NewSimulator builds a simulator for the given run seed.
func NewSimulator(seed int64) *Simulator {
	return &Simulator{seed: seed, now: time.Now}
}

// Total reports how many alerts the simulated upstream claims to hold
// for a given page request.
func (s *Simulator) Total(limit, offset int) int {
	if total := limit + offset; total > simTotal {
		return total
	}
	return simTotal
}

// ListIDs returns one page of synthetic alert IDs. The ID at a given
// absolute index depends only on (seed, status, index), so page
// boundaries never change which alerts exist.
func (s *Simulator) ListIDs(_ context.Context, status string, limit, offset int) ([]string, error) {
	total := s.Total(limit, offset)

	end := offset + limit
	if end > total {
		end = total
	}
	if offset >= end {
		return nil, nil
	}

	ids := make([]string, 0, end-offset)
	for i := offset; i < end; i++ {
		rng := s.rng(status, fmt.Sprint(i))
		ids = append(ids, fmt.Sprintf("ALRT-%d-%d", 10_000+rng.Intn(90_000), i))
	}
	return ids, nil
}

// Detail returns the synthetic payload for one alert. Roughly one in
// twenty payloads carries its monetary exposure as a string, matching
// the type drift the real upstream exhibits.
func (s *Simulator) Detail(_ context.Context, id string) (models.RawAlert, error) {
	rng := s.rng("detail", id)

	created := s.now().UTC().
		Add(-time.Duration(rng.Intn(121)) * 24 * time.Hour).
		Add(-time.Duration(rng.Intn(24)) * time.Hour)

	isClosed := rng.Float64() < 0.35
	slaHours := simSLAHours[rng.Intn(len(simSLAHours))]

	var resolution any
	if isClosed {
		// Resolution lands within a window proportional to the SLA, so
		// long-SLA alerts close later than short-SLA ones.
		maxHours := slaHours * 4
		resolution = created.Add(time.Duration(1+rng.Intn(maxHours)) * time.Hour).Format(time.RFC3339)
	}

	var assigned any
	if rng.Float64() >= 0.10 {
		assigned = map[string]any{
			"id":   fmt.Sprintf("USR-%d", 1000+rng.Intn(9000)),
			"name": simAssignees[rng.Intn(len(simAssignees))],
		}
	}

	status := "closed"
	if !isClosed {
		status = [2]string{"open", "in_progress"}[rng.Intn(2)]
	}

	var exposure any = math.Round(rng.Float64()*50_000*100) / 100

	hasInvoice := rng.Float64() < 0.7
	var orderID any
	if rng.Float64() >= 0.2 {
		orderID = fmt.Sprintf("O%d", 10_000+rng.Intn(90_000))
	}
	var invoiceID any
	if hasInvoice && rng.Float64() < 0.85 {
		invoiceID = fmt.Sprintf("INV-%d", 10_000+rng.Intn(90_000))
	}

	// Inject type drift to exercise downstream normalization.
	if rng.Float64() < 0.05 {
		exposure = models.FormatFloat(exposure.(float64))
	}

	return models.RawAlert{
		"alert_id":           id,
		"type_of_alert":      simTypes[rng.Intn(len(simTypes))],
		"status":             status,
		"assigned_to":        assigned,
		"creation_date":      created.Format(time.RFC3339),
		"resolution_date":    resolution,
		"impact_level":       weightedChoice(rng, simImpacts, simImpactWeights),
		"sla_hours":          slaHours,
		"jurisdiction":       simJurisdictions[rng.Intn(len(simJurisdictions))],
		"category":           simCategories[rng.Intn(len(simCategories))],
		"tax_code":           simTaxCodes[rng.Intn(len(simTaxCodes))],
		"monetary_exposure":  exposure,
		"has_invoice_linked": hasInvoice,
		"order_id":           orderID,
		"invoice_id":         invoiceID,
	}, nil
}

// rng builds a generator whose seed is derived from the run seed and
// the entity key. No generator is ever shared between calls.
func (s *Simulator) rng(parts ...string) *rand.Rand {
	h := fnv.New64a()
	fmt.Fprintf(h, "%d", s.seed)
	for _, p := range parts {
		h.Write([]byte{0})
		h.Write([]byte(p))
	}
	return rand.New(rand.NewSource(int64(h.Sum64())))
}

// weightedChoice picks an element with probability proportional to its
// weight.
func weightedChoice(rng *rand.Rand, values []string, weights []int) string {
	total := 0
	for _, w := range weights {
		total += w
	}
	r := rng.Intn(total)
	for i, w := range weights {
		if r < w {
			return values[i]
		}
		r -= w
	}
	return values[len(values)-1]
}
