// Package normalize flattens drifting upstream alert payloads into the
// fixed output schema.
package normalize

import (
	"encoding/json"
	"strconv"

	"github.com/bgiacomelli/meli-compliance-monitoring/internal/models"
)

// ToNumber converts a value of unknown shape to a float. Numeric values
// and numeric strings convert; everything else (including absence)
// yields nil. It never fails: the upstream deliberately serializes some
// quantities as strings and downstream code must absorb that.
func ToNumber(v any) *float64 {
	switch n := v.(type) {
	case nil:
		return nil
	case float64:
		return &n
	case float32:
		f := float64(n)
		return &f
	case int:
		f := float64(n)
		return &f
	case int64:
		f := float64(n)
		return &f
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return &f
		}
		return nil
	case string:
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			return &f
		}
		return nil
	default:
		return nil
	}
}

// Alert maps one raw alert payload to a NormalizedRow. Every output
// field is populated; missing or mistyped inputs become "" (nil for
// monetary exposure). The assignee name is taken only from a nested
// mapping carrying a "name" key. Alert is total: no input shape makes
// it fail.
func Alert(raw models.RawAlert) models.NormalizedRow {
	assignedName := ""
	if assigned := raw.Nested("assigned_to"); assigned != nil {
		if name, ok := assigned["name"].(string); ok {
			assignedName = name
		}
	}
	return models.NormalizedRow{
		AlertID:          raw.String("alert_id"),
		TypeOfAlert:      raw.String("type_of_alert"),
		Status:           raw.String("status"),
		AssignedToName:   assignedName,
		CreationDate:     raw.String("creation_date"),
		ResolutionDate:   raw.String("resolution_date"),
		ImpactLevel:      raw.String("impact_level"),
		SLAHours:         raw.String("sla_hours"),
		Jurisdiction:     raw.String("jurisdiction"),
		Category:         raw.String("category"),
		TaxCode:          raw.String("tax_code"),
		MonetaryExposure: ToNumber(raw["monetary_exposure"]),
		HasInvoiceLinked: raw.String("has_invoice_linked"),
		OrderID:          raw.String("order_id"),
		InvoiceID:        raw.String("invoice_id"),
	}
}
