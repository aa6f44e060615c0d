package normalize

import (
	"testing"

	"github.com/bgiacomelli/meli-compliance-monitoring/internal/models"
)

func TestToNumber(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want *float64
	}{
		{name: "nil", in: nil, want: nil},
		{name: "int", in: 42, want: f(42)},
		{name: "float", in: 42.5, want: f(42.5)},
		{name: "numeric string", in: "42.5", want: f(42.5)},
		{name: "integer string", in: "7", want: f(7)},
		{name: "garbage string", in: "abc", want: nil},
		{name: "bool", in: true, want: nil},
		{name: "map", in: map[string]any{"v": 1}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToNumber(tt.in)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("ToNumber(%v) = %v, want %v", tt.in, got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Errorf("ToNumber(%v) = %v, want %v", tt.in, *got, *tt.want)
			}
		})
	}
}

func TestAlert_FullPayload(t *testing.T) {
	raw := models.RawAlert{
		"alert_id":      "ALRT-12345-0",
		"type_of_alert": "MISSING_INVOICE",
		"status":        "open",
		"assigned_to":   map[string]any{"id": "USR-1001", "name": "Ana"},
		"creation_date": "2024-03-01T10:00:00Z",
		"impact_level":  "high",
		"sla_hours":     float64(48),
		"jurisdiction":  "BR-SP",
		"category":      "Electronics",
		"tax_code":      "ICMS",
		// Drift case: quantity serialized as string.
		"monetary_exposure":  "1234.56",
		"has_invoice_linked": true,
		"order_id":           "O12345",
		"invoice_id":         "INV-99999",
	}

	row := Alert(raw)

	if row.AlertID != "ALRT-12345-0" {
		t.Errorf("AlertID = %q", row.AlertID)
	}
	if row.AssignedToName != "Ana" {
		t.Errorf("AssignedToName = %q, want Ana", row.AssignedToName)
	}
	if row.SLAHours != "48" {
		t.Errorf("SLAHours = %q, want 48", row.SLAHours)
	}
	if row.MonetaryExposure == nil || *row.MonetaryExposure != 1234.56 {
		t.Errorf("MonetaryExposure = %v, want 1234.56", row.MonetaryExposure)
	}
	if row.HasInvoiceLinked != "true" {
		t.Errorf("HasInvoiceLinked = %q, want true", row.HasInvoiceLinked)
	}
	if row.ResolutionDate != "" {
		t.Errorf("ResolutionDate = %q, want empty", row.ResolutionDate)
	}
}

func TestAlert_MalformedPayloads(t *testing.T) {
	// No subset of missing or mistyped fields may make Alert fail, and
	// the output record always carries all 15 columns.
	payloads := []models.RawAlert{
		{},
		nil,
		{"alert_id": 42},
		// Assignee that is not a mapping, and a mapping without a name.
		{"assigned_to": "Ana"},
		{"assigned_to": map[string]any{"id": "USR-1"}},
		{"monetary_exposure": "not-a-number"},
		{"monetary_exposure": map[string]any{"v": 1.0}},
		{"sla_hours": nil, "status": nil, "order_id": nil},
	}

	for i, raw := range payloads {
		row := Alert(raw)
		if got := len(row.Record()); got != len(models.Columns) {
			t.Errorf("payload %d: record has %d fields, want %d", i, got, len(models.Columns))
		}
		if row.MonetaryExposure != nil && raw["monetary_exposure"] != nil {
			if _, ok := raw["monetary_exposure"].(map[string]any); ok {
				t.Errorf("payload %d: exposure coerced from a mapping", i)
			}
		}
	}

	row := Alert(models.RawAlert{"assigned_to": "Ana"})
	if row.AssignedToName != "" {
		t.Errorf("AssignedToName = %q, want empty for non-mapping assignee", row.AssignedToName)
	}
}

func TestAlert_Idempotent(t *testing.T) {
	first := Alert(models.RawAlert{
		"alert_id":           "ALRT-1",
		"status":             "closed",
		"sla_hours":          float64(72),
		"monetary_exposure":  99.5,
		"has_invoice_linked": false,
	})

	// Feed the normalized row back in as a raw payload.
	again := Alert(models.RawAlert{
		"alert_id":           first.AlertID,
		"status":             first.Status,
		"sla_hours":          first.SLAHours,
		"monetary_exposure":  models.FormatFloat(*first.MonetaryExposure),
		"has_invoice_linked": first.HasInvoiceLinked,
	})

	if again.AlertID != first.AlertID || again.Status != first.Status ||
		again.SLAHours != first.SLAHours || again.HasInvoiceLinked != first.HasInvoiceLinked {
		t.Errorf("re-normalization drifted: %+v vs %+v", again, first)
	}
	if again.MonetaryExposure == nil || *again.MonetaryExposure != *first.MonetaryExposure {
		t.Errorf("exposure drifted: %v vs %v", again.MonetaryExposure, first.MonetaryExposure)
	}
}

func f(v float64) *float64 { return &v }
