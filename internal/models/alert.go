// Package models defines the alert data types shared across the pipeline.
package models

import "strconv"

// RawAlert is one alert payload as the upstream returns it. The upstream
// schema drifts: any field may be absent, null, or carry the wrong type
// (monetary_exposure in particular arrives as either a number or a
// numeric string). Consumers must treat every lookup as optional.
type RawAlert map[string]any

// IsNotFound reports whether the payload represents a 404-equivalent
// empty result.
func (r RawAlert) IsNotFound() bool {
	return len(r) == 0
}

// String returns the value under key rendered as a string. Absent and
// null values render as "". Non-string scalars (the drift case) are
// stringified rather than dropped.
func (r RawAlert) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case bool:
		return strconv.FormatBool(s)
	case float64:
		return FormatFloat(s)
	case int:
		return strconv.Itoa(s)
	default:
		return ""
	}
}

// Nested returns the map under key, or nil when the value is absent or
// not itself a mapping.
func (r RawAlert) Nested(key string) map[string]any {
	m, _ := r[key].(map[string]any)
	return m
}

// Columns is the ordered output schema for normalized alert rows.
var Columns = []string{
	"alert_id", "type_of_alert", "status", "assigned_to_name",
	"creation_date", "resolution_date", "impact_level", "sla_hours",
	"jurisdiction", "category", "tax_code", "monetary_exposure",
	"has_invoice_linked", "order_id", "invoice_id",
}

// NormalizedRow is one alert flattened to the fixed output schema.
// Every field is always present; absent upstream values normalize to
// "" (or nil for MonetaryExposure). MonetaryExposure is the only field
// with enforced typing: float or nil, never a string.
type NormalizedRow struct {
	AlertID          string   `json:"alert_id"`
	TypeOfAlert      string   `json:"type_of_alert"`
	Status           string   `json:"status"`
	AssignedToName   string   `json:"assigned_to_name"`
	CreationDate     string   `json:"creation_date"`
	ResolutionDate   string   `json:"resolution_date"`
	ImpactLevel      string   `json:"impact_level"`
	SLAHours         string   `json:"sla_hours"`
	Jurisdiction     string   `json:"jurisdiction"`
	Category         string   `json:"category"`
	TaxCode          string   `json:"tax_code"`
	MonetaryExposure *float64 `json:"monetary_exposure"`
	HasInvoiceLinked string   `json:"has_invoice_linked"`
	OrderID          string   `json:"order_id"`
	InvoiceID        string   `json:"invoice_id"`
}

// Record renders the row as an ordered CSV record matching Columns.
// Nil monetary exposure renders as an empty cell.
func (n *NormalizedRow) Record() []string {
	exposure := ""
	if n.MonetaryExposure != nil {
		exposure = FormatFloat(*n.MonetaryExposure)
	}
	return []string{
		n.AlertID, n.TypeOfAlert, n.Status, n.AssignedToName,
		n.CreationDate, n.ResolutionDate, n.ImpactLevel, n.SLAHours,
		n.Jurisdiction, n.Category, n.TaxCode, exposure,
		n.HasInvoiceLinked, n.OrderID, n.InvoiceID,
	}
}

// FormatFloat renders a float the way the upstream does: no exponent,
// no trailing zeros.
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
