// Package export writes normalized rows and run summaries as delimited
// text or JSON.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/bgiacomelli/meli-compliance-monitoring/internal/models"
	"github.com/bgiacomelli/meli-compliance-monitoring/internal/stats"
)

// Format defines the output format for exports.
type Format string

const (
	CSV  Format = "csv"
	JSON Format = "json"
)

// ParseFormat parses a string to Format.
func ParseFormat(s string) (Format, bool) {
	switch s {
	case "csv":
		return CSV, true
	case "json":
		return JSON, true
	default:
		return "", false
	}
}

// Exporter writes rows and summaries in a configured format.
type Exporter struct {
	format Format
	writer io.Writer
}

// NewExporter creates an exporter for the given format.
func NewExporter(format Format, w io.Writer) *Exporter {
	return &Exporter{format: format, writer: w}
}

// WriteRows writes the normalized rows in the configured format. CSV
// output carries the full 15-column header.
func (e *Exporter) WriteRows(rows []models.NormalizedRow) error {
	if e.format == JSON {
		enc := json.NewEncoder(e.writer)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	w := csv.NewWriter(e.writer)
	defer w.Flush()

	w.Write(models.Columns)
	for i := range rows {
		w.Write(rows[i].Record())
	}
	return w.Error()
}

// WriteSummary writes the run summary. CSV output is a single flattened
// record: scalar fields first, then one status_*/type_*/impact_* column
// per observed distribution key, keys sorted for stable output.
func (e *Exporter) WriteSummary(s stats.Summary) error {
	if e.format == JSON {
		enc := json.NewEncoder(e.writer)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}

	header := []string{
		"total_alerts", "assigned_present", "assigned_missing",
		"unresolved_count", "monetary_exposure_mean", "monetary_exposure_p95",
	}
	record := []string{
		strconv.Itoa(s.TotalAlerts),
		strconv.Itoa(s.AssignedPresent),
		strconv.Itoa(s.AssignedMissing),
		strconv.Itoa(s.UnresolvedCount),
		strconv.FormatFloat(s.MonetaryExposureMean, 'f', 2, 64),
		strconv.FormatFloat(s.MonetaryExposureP95, 'f', 2, 64),
	}

	for _, dist := range []struct {
		prefix string
		counts map[string]int
	}{
		{"status", s.StatusDistribution},
		{"type", s.TypeDistribution},
		{"impact", s.ImpactDistribution},
	} {
		for _, key := range sortedKeys(dist.counts) {
			header = append(header, dist.prefix+"_"+key)
			record = append(record, strconv.Itoa(dist.counts[key]))
		}
	}

	w := csv.NewWriter(e.writer)
	defer w.Flush()
	w.Write(header)
	w.Write(record)
	return w.Error()
}

// RowsPath returns the dated output path for the alerts file.
func RowsPath(dir string, now time.Time, format Format) string {
	return filepath.Join(dir, fmt.Sprintf("compliance_alerts_%s.%s", now.UTC().Format("20060102"), format))
}

// SummaryPath returns the dated output path for the summary file.
func SummaryPath(dir string, now time.Time, format Format) string {
	return filepath.Join(dir, fmt.Sprintf("compliance_summary_%s.%s", now.UTC().Format("20060102"), format))
}

// WriteFile creates path (and its directory) and streams fn's output
// into it.
func WriteFile(path string, fn func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
